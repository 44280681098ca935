package handlers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/tokosembako/kasir-pos/internal/httpx"
	"github.com/tokosembako/kasir-pos/internal/middleware"
	"github.com/tokosembako/kasir-pos/internal/models"
	"github.com/tokosembako/kasir-pos/internal/services"
)

type MemberHandler struct{ DB *gorm.DB }

func NewMemberHandler(db *gorm.DB) *MemberHandler { return &MemberHandler{DB: db} }

// memberView augments a member row with its derived level for responses.
type memberView struct {
	models.Member
	Level string `json:"level"`
}

func withLevel(m models.Member) memberView {
	return memberView{Member: m, Level: services.LevelForPoints(m.Points)}
}

// List: GET /member with search over name or phone.
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("q"))
	dbq := h.DB.Model(&models.Member{})
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		dbq = dbq.Where("lower(nama) LIKE ? OR lower(no_telp) LIKE ?", like, like)
	}
	var list []models.Member
	if err := dbq.Order("nama").Find(&list).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_members", nil)
		return
	}
	views := make([]memberView, 0, len(list))
	for _, m := range list {
		views = append(views, withLevel(m))
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": views, "total": len(views)})
		return
	}
	renderTemplate(w, r, "member_list", map[string]any{"MemberList": views, "Search": search})
}

// Create: POST /member/tambah.
func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "member_form", map[string]any{"Title": "Tambah Member"})
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	nama := strings.TrimSpace(r.FormValue("nama"))
	if nama == "" {
		h.fail(w, r, "Nama member wajib diisi")
		return
	}
	m := models.Member{
		Nama:    nama,
		NoTelp:  strings.TrimSpace(r.FormValue("no_telp")),
		Alamat:  strings.TrimSpace(r.FormValue("alamat")),
		Catatan: strings.TrimSpace(r.FormValue("catatan")),
	}
	if err := h.DB.Create(&m).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_member", nil)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, withLevel(m))
		return
	}
	middleware.Flash(w, "Member berhasil ditambahkan!")
	http.Redirect(w, r, "/member", http.StatusSeeOther)
}

// Update: POST /member/edit?id=.
func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var m models.Member
	if err := h.DB.First(&m, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "member_form", map[string]any{"Title": "Edit Member", "Member": m})
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	nama := strings.TrimSpace(r.FormValue("nama"))
	if nama == "" {
		h.fail(w, r, "Nama member wajib diisi")
		return
	}
	updates := map[string]any{
		"nama":    nama,
		"no_telp": strings.TrimSpace(r.FormValue("no_telp")),
		"alamat":  strings.TrimSpace(r.FormValue("alamat")),
		"catatan": strings.TrimSpace(r.FormValue("catatan")),
	}
	if err := h.DB.Model(&m).Updates(updates).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_member", nil)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, withLevel(m))
		return
	}
	middleware.Flash(w, "Member berhasil diperbarui!")
	http.Redirect(w, r, "/member", http.StatusSeeOther)
}

// Delete: POST /member/hapus?id=. Historical transactions keep their rows;
// only the member reference is nulled.
func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	id, ok := queryID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var m models.Member
	if err := h.DB.First(&m, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaksi{}).Where("member_id = ?", m.ID).Update("member_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&m).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_member", nil)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		return
	}
	middleware.Flash(w, "Member berhasil dihapus!")
	http.Redirect(w, r, "/member", http.StatusSeeOther)
}

// Transactions: GET /member/transaksi?id= shows purchase history with totals.
func (h *MemberHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var m models.Member
	if err := h.DB.First(&m, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var list []models.Transaksi
	if err := h.DB.Where("member_id = ?", m.ID).Order("tanggal DESC").Find(&list).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_transactions", nil)
		return
	}
	var totalBelanja float64
	for _, t := range list {
		totalBelanja += t.Total
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"member":          withLevel(m),
			"items":           list,
			"total_transaksi": len(list),
			"total_belanja":   totalBelanja,
		})
		return
	}
	renderTemplate(w, r, "member_transaksi", map[string]any{
		"Member":         withLevel(m),
		"TransaksiList":  list,
		"TotalTransaksi": len(list),
		"TotalBelanja":   totalBelanja,
	})
}

func (h *MemberHandler) fail(w http.ResponseWriter, r *http.Request, msg string) {
	if wantsJSON(r) {
		httpx.JSONError(w, http.StatusBadRequest, msg, nil)
		return
	}
	middleware.Flash(w, msg)
	http.Redirect(w, r, "/member", http.StatusSeeOther)
}
