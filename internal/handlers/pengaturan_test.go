package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tokosembako/kasir-pos/internal/backup"
	"github.com/tokosembako/kasir-pos/internal/models"
)

func TestPengaturanSaveAndRead(t *testing.T) {
	db := setupTestDB(t)
	admin := seedUser(t, db, "admin", models.RoleAdmin)
	h := NewPengaturanHandler(db, nil)

	form := url.Values{
		"store_name":  {"Toko Maju"},
		"tax_enabled": {"on"},
	}
	req := httptest.NewRequest(http.MethodPost, "/pengaturan", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req = asUser(req, admin)
	w := httptest.NewRecorder()
	h.Index(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	if got := models.GetSetting(db, "store_name", ""); got != "Toko Maju" {
		t.Fatalf("unexpected store_name %q", got)
	}
	if got := models.GetSetting(db, "tax_enabled", ""); got != "true" {
		t.Fatalf("expected normalized bool, got %q", got)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/pengaturan", nil)
	req2.Header.Set("Accept", "application/json")
	req2 = asUser(req2, admin)
	w2 := httptest.NewRecorder()
	h.Index(w2, req2)
	var settings map[string]string
	if err := json.Unmarshal(w2.Body.Bytes(), &settings); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if settings["store_name"] != "Toko Maju" {
		t.Fatalf("unexpected settings %v", settings)
	}
}

func TestPengaturanDeniedForKasir(t *testing.T) {
	db := setupTestDB(t)
	kasir := seedUser(t, db, "kasir", models.RoleKasir)
	h := NewPengaturanHandler(db, nil)

	req := httptest.NewRequest(http.MethodGet, "/pengaturan", nil)
	req.Header.Set("Accept", "application/json")
	req = asUser(req, kasir)
	w := httptest.NewRecorder()
	h.Index(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", w.Code)
	}
}

func TestBackupNow(t *testing.T) {
	db := setupTestDB(t)
	admin := seedUser(t, db, "admin", models.RoleAdmin)

	src := filepath.Join(t.TempDir(), "kasir.db")
	if err := os.WriteFile(src, []byte("data"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	dir := t.TempDir()
	h := NewPengaturanHandler(db, backup.NewManager(src, dir, 10))

	req := httptest.NewRequest(http.MethodPost, "/admin/backup-now", nil)
	req.Header.Set("Accept", "application/json")
	req = asUser(req, admin)
	w := httptest.NewRecorder()
	h.BackupNow(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one backup file, got %d err=%v", len(entries), err)
	}
}
