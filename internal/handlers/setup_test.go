package handlers

import (
	"net/http"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tokosembako/kasir-pos/internal/auth"
	"github.com/tokosembako/kasir-pos/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Kategori{}, &models.Produk{}, &models.HargaVariasi{}, &models.Member{}, &models.Transaksi{}, &models.TransaksiItem{}, &models.Pengaturan{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Rahasia123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := models.User{Username: username, Nama: username, PasswordHash: string(hash), Role: role}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// asUser injects an authenticated user into the request context the way the
// session middleware would.
func asUser(r *http.Request, u models.User) *http.Request {
	return r.WithContext(auth.WithUserID(r.Context(), u.ID))
}
