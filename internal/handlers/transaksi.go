package handlers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/tokosembako/kasir-pos/internal/httpx"
	"github.com/tokosembako/kasir-pos/internal/models"
)

type TransaksiHandler struct{ DB *gorm.DB }

func NewTransaksiHandler(db *gorm.DB) *TransaksiHandler { return &TransaksiHandler{DB: db} }

// List: GET /transaksi with optional date range, payment method, and code
// substring filters.
func (h *TransaksiHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mulai := strings.TrimSpace(q.Get("tanggal_mulai"))
	selesai := strings.TrimSpace(q.Get("tanggal_selesai"))
	method := strings.TrimSpace(q.Get("payment_method"))
	kode := strings.TrimSpace(q.Get("kode"))

	dbq := h.DB.Model(&models.Transaksi{}).
		Preload("Items").Preload("Member").Preload("User")
	if mulai != "" {
		dbq = dbq.Where("date(tanggal) >= ?", mulai)
	}
	if selesai != "" {
		dbq = dbq.Where("date(tanggal) <= ?", selesai)
	}
	if method != "" {
		dbq = dbq.Where("payment_method = ?", method)
	}
	if kode != "" {
		dbq = dbq.Where("kode_transaksi LIKE ?", "%"+kode+"%")
	}

	var list []models.Transaksi
	if err := dbq.Order("tanggal DESC").Find(&list).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_transactions", nil)
		return
	}
	var total float64
	for _, t := range list {
		total += t.Total
	}

	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"items": list,
			"total": len(list),
			"sum":   total,
		})
		return
	}
	renderTemplate(w, r, "transaksi_list", map[string]any{
		"TransaksiList":  list,
		"TotalTransaksi": len(list),
		"TotalPenjualan": total,
		"TanggalMulai":   mulai,
		"TanggalSelesai": selesai,
		"PaymentMethod":  method,
		"Kode":           kode,
	})
}

// Struk: GET /transaksi/struk?id= renders a printable receipt with the store
// identity from settings.
func (h *TransaksiHandler) Struk(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var trx models.Transaksi
	err := h.DB.Preload("Items.Produk").Preload("Member").Preload("User").
		First(&trx, id).Error
	if err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}

	memberName := trx.MemberManual
	if trx.Member != nil {
		memberName = trx.Member.Nama
	}
	kasirName := ""
	if trx.User != nil {
		kasirName = trx.User.Nama
	}

	data := map[string]any{
		"Transaksi":     trx,
		"MemberName":    memberName,
		"KasirName":     kasirName,
		"StoreName":     models.GetSetting(h.DB, "store_name", "Toko Sembako"),
		"StoreAddress":  models.GetSetting(h.DB, "store_address", ""),
		"StorePhone":    models.GetSetting(h.DB, "store_phone", ""),
		"ReceiptFooter": models.GetSetting(h.DB, "receipt_footer", "Terima kasih atas kunjungan Anda"),
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, data)
		return
	}
	renderTemplate(w, r, "struk", data)
}
