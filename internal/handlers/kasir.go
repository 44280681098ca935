package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/tokosembako/kasir-pos/internal/httpx"
	"github.com/tokosembako/kasir-pos/internal/models"
	"github.com/tokosembako/kasir-pos/internal/services"
)

type KasirHandler struct {
	DB       *gorm.DB
	Checkout *services.CheckoutService
}

func NewKasirHandler(db *gorm.DB, co *services.CheckoutService) *KasirHandler {
	return &KasirHandler{DB: db, Checkout: co}
}

// Page: GET /kasir renders the cashier screen. Product data is fetched by the page
// itself through /api/produk.
func (h *KasirHandler) Page(w http.ResponseWriter, r *http.Request) {
	var kategoriList []models.Kategori
	if err := h.DB.Order("nama").Find(&kategoriList).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_categories", nil)
		return
	}
	var memberList []models.Member
	if err := h.DB.Order("nama").Find(&memberList).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_members", nil)
		return
	}
	renderTemplate(w, r, "kasir", map[string]any{
		"KategoriList": kategoriList,
		"MemberList":   memberList,
	})
}

// checkoutRequest is the wire form of a cart. Numeric fields arrive untyped
// because clients send both JSON numbers and numeric strings.
type checkoutRequest struct {
	Items []struct {
		ProdukID uint `json:"produk_id"`
		Jumlah   int  `json:"jumlah"`
		Harga    any  `json:"harga"`
	} `json:"items"`
	Bayar         any    `json:"bayar"`
	PaymentMethod string `json:"payment_method"`
	MemberID      uint   `json:"member_id"`
	MemberManual  string `json:"member_manual"`
}

var errBadNumber = errors.New("bad number")

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, errBadNumber
		}
		return f, nil
	case float64:
		return n, nil
	case string:
		if n == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, errBadNumber
		}
		return f, nil
	default:
		return 0, errBadNumber
	}
}

// Process: POST /transaksi/checkout. Validation failures answer 200 with
// success=false so the cashier screen can surface the message inline.
func (h *KasirHandler) Process(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var req checkoutRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		httpx.Fail(w, "Data tidak valid")
		return
	}

	bayar, err := toFloat(req.Bayar)
	if err != nil {
		httpx.Fail(w, "Format angka tidak valid")
		return
	}

	in := services.CheckoutInput{
		Bayar:         bayar,
		PaymentMethod: req.PaymentMethod,
		MemberID:      req.MemberID,
		MemberManual:  req.MemberManual,
	}
	for _, it := range req.Items {
		harga, herr := toFloat(it.Harga)
		if herr != nil {
			httpx.Fail(w, "Format angka tidak valid")
			return
		}
		in.Items = append(in.Items, services.CheckoutItem{
			ProdukID: it.ProdukID,
			Quantity: it.Jumlah,
			Price:    harga,
		})
	}

	var kasirName string
	if user, ok := currentUser(h.DB, r); ok {
		in.UserID = user.ID
		kasirName = user.Nama
	}

	result, err := h.Checkout.Checkout(in)
	if err != nil {
		if msg, ok := services.AsRejection(err); ok {
			httpx.Fail(w, msg)
			return
		}
		log.Printf("[Checkout] %v", err)
		httpx.Fail(w, "Terjadi kesalahan sistem")
		return
	}

	trx := result.Transaksi
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"transaksi_id":   trx.ID,
		"kode_transaksi": trx.KodeTransaksi,
		"subtotal":       trx.Subtotal,
		"total":          trx.Total,
		"bayar":          trx.Bayar,
		"kembalian":      trx.Kembalian,
		"payment_method": trx.PaymentMethod,
		"points_earned":  result.PointsEarned,
		"tanggal":        trx.Tanggal.Format("02-01-2006 15:04:05"),
		"kasir":          kasirName,
	})
}
