package handlers

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/tokosembako/kasir-pos/internal/httpx"
	"github.com/tokosembako/kasir-pos/internal/middleware"
	"github.com/tokosembako/kasir-pos/internal/models"
)

type DashboardHandler struct{ DB *gorm.DB }

func NewDashboardHandler(db *gorm.DB) *DashboardHandler { return &DashboardHandler{DB: db} }

// Index renders the landing dashboard: product count, today's transaction
// count, and how many products are at or below their reorder threshold.
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	var totalProduk, produkHabis, transaksiHariIni int64
	h.DB.Model(&models.Produk{}).Count(&totalProduk)
	h.DB.Model(&models.Produk{}).Where("stok <= minimal_stok").Count(&produkHabis)
	today := time.Now().Format("2006-01-02")
	h.DB.Model(&models.Transaksi{}).Where("date(tanggal) = ?", today).Count(&transaksiHariIni)

	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"total_produk":    totalProduk,
			"total_transaksi": transaksiHariIni,
			"produk_habis":    produkHabis,
		})
		return
	}
	data := map[string]any{
		"User":           user,
		"TotalProduk":    totalProduk,
		"TotalTransaksi": transaksiHariIni,
		"ProdukHabis":    produkHabis,
		"CurrentTime":    time.Now(),
	}
	middleware.ClearFlash(w)
	renderTemplate(w, r, "index", data)
}
