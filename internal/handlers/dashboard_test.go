package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tokosembako/kasir-pos/internal/models"
)

func TestDashboardTotalsJSON(t *testing.T) {
	db := setupTestDB(t)
	kasir := seedUser(t, db, "kasir", models.RoleKasir)
	db.Create(&models.Produk{Kode: "P1", Nama: "A", HargaBeli: 1, HargaJual: 2, Stok: 10, MinimalStok: 5})
	db.Create(&models.Produk{Kode: "P2", Nama: "B", HargaBeli: 1, HargaJual: 2, Stok: 2, MinimalStok: 5})
	db.Create(&models.Transaksi{KodeTransaksi: "TRX1", Tanggal: time.Now(), Total: 1, Bayar: 1})
	db.Create(&models.Transaksi{KodeTransaksi: "TRX2", Tanggal: time.Now().AddDate(0, 0, -1), Total: 1, Bayar: 1})
	h := NewDashboardHandler(db)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json")
	req = asUser(req, kasir)
	w := httptest.NewRecorder()
	h.Index(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var res struct {
		TotalProduk    int64 `json:"total_produk"`
		TotalTransaksi int64 `json:"total_transaksi"`
		ProdukHabis    int64 `json:"produk_habis"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.TotalProduk != 2 {
		t.Fatalf("expected 2 products got %d", res.TotalProduk)
	}
	if res.TotalTransaksi != 1 {
		t.Fatalf("expected only today's transaction, got %d", res.TotalTransaksi)
	}
	if res.ProdukHabis != 1 {
		t.Fatalf("expected 1 low-stock product got %d", res.ProdukHabis)
	}
}
