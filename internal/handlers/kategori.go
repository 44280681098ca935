package handlers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/tokosembako/kasir-pos/internal/httpx"
	"github.com/tokosembako/kasir-pos/internal/middleware"
	"github.com/tokosembako/kasir-pos/internal/models"
	"github.com/tokosembako/kasir-pos/internal/policy"
)

type KategoriHandler struct{ DB *gorm.DB }

func NewKategoriHandler(db *gorm.DB) *KategoriHandler { return &KategoriHandler{DB: db} }

func (h *KategoriHandler) List(w http.ResponseWriter, r *http.Request) {
	var list []models.Kategori
	if err := h.DB.Order("nama").Find(&list).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_categories", nil)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": list, "total": len(list)})
		return
	}
	renderTemplate(w, r, "kategori", map[string]any{"KategoriList": list})
}

func (h *KategoriHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, r)
	if !ok || !policy.Can(user.Role, policy.ActionCreate, policy.ResourceKategori) {
		h.denied(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	nama := strings.TrimSpace(r.FormValue("nama"))
	if nama == "" {
		h.fail(w, r, "Nama kategori wajib diisi")
		return
	}
	var count int64
	h.DB.Model(&models.Kategori{}).Where("nama = ?", nama).Count(&count)
	if count > 0 {
		h.fail(w, r, "Kategori sudah ada")
		return
	}
	k := models.Kategori{Nama: nama, Deskripsi: strings.TrimSpace(r.FormValue("deskripsi"))}
	if err := h.DB.Create(&k).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_category", nil)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, k)
		return
	}
	middleware.Flash(w, "Kategori berhasil ditambahkan!")
	http.Redirect(w, r, "/kategori", http.StatusSeeOther)
}

func (h *KategoriHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, r)
	if !ok || !policy.Can(user.Role, policy.ActionUpdate, policy.ResourceKategori) {
		h.denied(w, r)
		return
	}
	id, ok := queryID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var k models.Kategori
	if err := h.DB.First(&k, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	nama := strings.TrimSpace(r.FormValue("nama"))
	if nama == "" {
		h.fail(w, r, "Nama kategori wajib diisi")
		return
	}
	if err := h.DB.Model(&k).Updates(map[string]any{"nama": nama, "deskripsi": strings.TrimSpace(r.FormValue("deskripsi"))}).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_category", nil)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, k)
		return
	}
	middleware.Flash(w, "Kategori berhasil diperbarui!")
	http.Redirect(w, r, "/kategori", http.StatusSeeOther)
}

// Delete detaches products from the category before removing it, so the
// catalog keeps the rows.
func (h *KategoriHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	user, ok := currentUser(h.DB, r)
	if !ok || !policy.Can(user.Role, policy.ActionDelete, policy.ResourceKategori) {
		h.denied(w, r)
		return
	}
	id, ok := queryID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var k models.Kategori
	if err := h.DB.First(&k, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Produk{}).Where("kategori_id = ?", k.ID).Update("kategori_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&k).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_category", nil)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		return
	}
	middleware.Flash(w, "Kategori berhasil dihapus!")
	http.Redirect(w, r, "/kategori", http.StatusSeeOther)
}

// Products: GET /kategori/produk?id= lists a single category's products.
func (h *KategoriHandler) Products(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var k models.Kategori
	if err := h.DB.First(&k, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	var produkList []models.Produk
	if err := h.DB.Where("kategori_id = ?", k.ID).Order("kode").Find(&produkList).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"kategori": k, "items": produkList})
		return
	}
	renderTemplate(w, r, "produk_list", map[string]any{"ProdukList": produkList, "KategoriFilter": &k, "FilterStok": "semua"})
}

func (h *KategoriHandler) fail(w http.ResponseWriter, r *http.Request, msg string) {
	if wantsJSON(r) {
		httpx.JSONError(w, http.StatusBadRequest, msg, nil)
		return
	}
	middleware.Flash(w, msg)
	http.Redirect(w, r, "/kategori", http.StatusSeeOther)
}

func (h *KategoriHandler) denied(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	middleware.Flash(w, "Akses ditolak!")
	http.Redirect(w, r, "/kategori", http.StatusSeeOther)
}
