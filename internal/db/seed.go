package db

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tokosembako/kasir-pos/internal/models"
)

// Seed creates the initial admin account and default store settings when
// missing. Safe to run repeatedly.
func Seed(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&models.User{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin := models.User{Username: "admin", PasswordHash: string(hash), Nama: "Administrator", Role: models.RoleAdmin}
		if err := conn.Create(&admin).Error; err != nil {
			return err
		}
		log.Println("[DB] Admin user created: admin / admin123")
	}

	defaults := map[string]string{
		"store_name":     "TOKO SEMBAKO",
		"store_address":  "Jl. Contoh No. 123",
		"store_phone":    "021-12345678",
		"receipt_footer": "Terima kasih atas kunjungan Anda",
		"tax_enabled":    "false",
		"tax_percentage": "0",
	}
	for key, value := range defaults {
		var n int64
		if err := conn.Model(&models.Pengaturan{}).Where("key = ?", key).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			if err := conn.Create(&models.Pengaturan{Key: key, Value: value}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
