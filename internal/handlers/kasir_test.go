package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tokosembako/kasir-pos/internal/models"
	"github.com/tokosembako/kasir-pos/internal/services"
)

func postCheckout(t *testing.T, h *KasirHandler, user models.User, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/transaksi/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req = asUser(req, user)
	w := httptest.NewRecorder()
	h.Process(w, req)
	return w
}

func TestCheckoutEndpointSuccess(t *testing.T) {
	db := setupTestDB(t)
	kasir := seedUser(t, db, "kasir", models.RoleKasir)
	p := models.Produk{Kode: "P1", Nama: "Beras", HargaBeli: 5000, HargaJual: 10000, Stok: 10}
	db.Create(&p)
	h := NewKasirHandler(db, services.NewCheckoutService(db))

	w := postCheckout(t, h, kasir, `{"items":[{"produk_id":1,"jumlah":2,"harga":10000}],"bayar":25000,"payment_method":"tunai"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var res struct {
		Success       bool    `json:"success"`
		KodeTransaksi string  `json:"kode_transaksi"`
		Total         float64 `json:"total"`
		Kembalian     float64 `json:"kembalian"`
		Kasir         string  `json:"kasir"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, body=%s", w.Body.String())
	}
	if !strings.HasPrefix(res.KodeTransaksi, "TRX") {
		t.Fatalf("unexpected code %s", res.KodeTransaksi)
	}
	if res.Total != 20000 || res.Kembalian != 5000 {
		t.Fatalf("unexpected amounts %+v", res)
	}
	if res.Kasir != "kasir" {
		t.Fatalf("expected cashier name recorded got %q", res.Kasir)
	}
}

func TestCheckoutEndpointInsufficientStock(t *testing.T) {
	db := setupTestDB(t)
	kasir := seedUser(t, db, "kasir", models.RoleKasir)
	db.Create(&models.Produk{Kode: "P1", Nama: "Beras", HargaBeli: 5000, HargaJual: 10000, Stok: 3})
	h := NewKasirHandler(db, services.NewCheckoutService(db))

	w := postCheckout(t, h, kasir, `{"items":[{"produk_id":1,"jumlah":5,"harga":10000}],"bayar":100000}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var res struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Success || res.Message != "Stok Beras tidak cukup" {
		t.Fatalf("unexpected response %+v", res)
	}
}

func TestCheckoutEndpointBadNumberFormat(t *testing.T) {
	db := setupTestDB(t)
	kasir := seedUser(t, db, "kasir", models.RoleKasir)
	db.Create(&models.Produk{Kode: "P1", Nama: "Beras", HargaBeli: 5000, HargaJual: 10000, Stok: 3})
	h := NewKasirHandler(db, services.NewCheckoutService(db))

	w := postCheckout(t, h, kasir, `{"items":[{"produk_id":1,"jumlah":1,"harga":"abc"}],"bayar":10000}`)
	var res struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Success || res.Message != "Format angka tidak valid" {
		t.Fatalf("unexpected response %+v", res)
	}
}

func TestCheckoutEndpointEmptyCart(t *testing.T) {
	db := setupTestDB(t)
	kasir := seedUser(t, db, "kasir", models.RoleKasir)
	h := NewKasirHandler(db, services.NewCheckoutService(db))

	w := postCheckout(t, h, kasir, `{"items":[],"bayar":10000}`)
	var res struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Success || res.Message != "Keranjang kosong" {
		t.Fatalf("unexpected response %+v", res)
	}
}

func TestCheckoutEndpointRejectsGet(t *testing.T) {
	db := setupTestDB(t)
	h := NewKasirHandler(db, services.NewCheckoutService(db))
	req := httptest.NewRequest(http.MethodGet, "/transaksi/checkout", nil)
	w := httptest.NewRecorder()
	h.Process(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", w.Code)
	}
}
