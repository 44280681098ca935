package handlers

import (
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tokosembako/kasir-pos/internal/httpx"
	"github.com/tokosembako/kasir-pos/internal/policy"
	"github.com/tokosembako/kasir-pos/internal/services"
)

type LaporanHandler struct {
	DB     *gorm.DB
	Report *services.ReportService
}

func NewLaporanHandler(db *gorm.DB) *LaporanHandler {
	return &LaporanHandler{DB: db, Report: services.NewReportService(db)}
}

// Index: GET /laporan?tanggal_mulai=&tanggal_selesai= (admin only). Without
// parameters the report covers the last 30 days.
func (h *LaporanHandler) Index(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, r)
	if !ok || policy.Authorize(user.Role, policy.ActionView, policy.ResourceLaporan) != nil {
		h.denied(w, r)
		return
	}

	q := r.URL.Query()
	mulai := strings.TrimSpace(q.Get("tanggal_mulai"))
	selesai := strings.TrimSpace(q.Get("tanggal_selesai"))
	if selesai == "" {
		selesai = time.Now().Format("2006-01-02")
	}
	if mulai == "" {
		mulai = time.Now().AddDate(0, 0, -30).Format("2006-01-02")
	}

	rep, err := h.Report.SalesBetween(mulai, selesai)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_build_report", nil)
		return
	}

	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, rep)
		return
	}
	renderTemplate(w, r, "laporan", map[string]any{
		"Report":        rep,
		"TransaksiList": rep.Transaksi,
	})
}

func (h *LaporanHandler) denied(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
