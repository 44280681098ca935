package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/tokosembako/kasir-pos/internal/httpx"
	"github.com/tokosembako/kasir-pos/internal/middleware"
	"github.com/tokosembako/kasir-pos/internal/models"
	"github.com/tokosembako/kasir-pos/internal/policy"
	"github.com/tokosembako/kasir-pos/internal/services"
	"github.com/tokosembako/kasir-pos/internal/validation"
)

type ProdukHandler struct{ DB *gorm.DB }

func NewProdukHandler(db *gorm.DB) *ProdukHandler { return &ProdukHandler{DB: db} }

// List: GET /produk with stock filter (semua|habis|hampir_habis|tersedia),
// free-text search over name/code, and category filter.
func (h *ProdukHandler) List(w http.ResponseWriter, r *http.Request) {
	filterStok := r.URL.Query().Get("filter")
	search := strings.TrimSpace(r.URL.Query().Get("q"))
	kategoriID := strings.TrimSpace(r.URL.Query().Get("kategori_id"))

	dbq := h.DB.Model(&models.Produk{})
	switch filterStok {
	case "habis":
		dbq = dbq.Where("stok = 0")
	case "hampir_habis":
		dbq = dbq.Where("stok > 0 AND stok <= minimal_stok")
	case "tersedia":
		dbq = dbq.Where("stok > 0")
	default:
		filterStok = "semua"
	}
	var kategoriFilter *models.Kategori
	if kid, err := strconv.Atoi(kategoriID); err == nil && kid > 0 {
		var k models.Kategori
		if err := h.DB.First(&k, kid).Error; err == nil {
			kategoriFilter = &k
			dbq = dbq.Where("kategori_id = ?", k.ID)
		}
	}
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		dbq = dbq.Where("lower(nama) LIKE ? OR lower(kode) LIKE ?", like, like)
	}

	var produkList []models.Produk
	if err := dbq.
		Preload("Kategori").
		Preload("HargaVariasi", func(db *gorm.DB) *gorm.DB { return db.Order("min_qty") }).
		Order("kode").
		Find(&produkList).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"items": produkList, "total": len(produkList)})
		return
	}
	var kategoriList []models.Kategori
	h.DB.Order("nama").Find(&kategoriList)
	renderTemplate(w, r, "produk_list", map[string]any{
		"ProdukList":     produkList,
		"KategoriList":   kategoriList,
		"FilterStok":     filterStok,
		"Search":         search,
		"KategoriFilter": kategoriFilter,
	})
}

// produkInput carries the fields shared by create and update, either as a
// JSON document or form fields with repeated variant_* rows.
type produkInput struct {
	Kode        string               `json:"kode"`
	Nama        string               `json:"nama"`
	Deskripsi   string               `json:"deskripsi"`
	HargaBeli   float64              `json:"harga_beli"`
	HargaJual   float64              `json:"harga_jual"`
	Stok        int                  `json:"stok"`
	KategoriID  uint                 `json:"kategori_id"`
	MinimalStok int                  `json:"minimal_stok"`
	Satuan      string               `json:"satuan"`
	Variasi     []models.HargaVariasi `json:"harga_variasi"`
}

func parseProdukInput(r *http.Request) (*produkInput, error) {
	var in produkInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			return nil, err
		}
		return &in, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	in.Kode = strings.TrimSpace(r.FormValue("kode"))
	in.Nama = strings.TrimSpace(r.FormValue("nama"))
	in.Deskripsi = strings.TrimSpace(r.FormValue("deskripsi"))
	in.Satuan = strings.TrimSpace(r.FormValue("satuan"))
	in.HargaBeli, _ = strconv.ParseFloat(r.FormValue("harga_beli"), 64)
	in.HargaJual, _ = strconv.ParseFloat(r.FormValue("harga_jual"), 64)
	in.Stok, _ = strconv.Atoi(r.FormValue("stok"))
	in.MinimalStok, _ = strconv.Atoi(r.FormValue("minimal_stok"))
	if v, err := strconv.Atoi(r.FormValue("kategori_id")); err == nil && v > 0 {
		in.KategoriID = uint(v)
	}
	minQtys := r.Form["variant_min_qty[]"]
	hargas := r.Form["variant_harga[]"]
	keterangans := r.Form["variant_keterangan[]"]
	for i := range minQtys {
		if i >= len(hargas) || minQtys[i] == "" || hargas[i] == "" {
			continue
		}
		mq, err1 := strconv.Atoi(minQtys[i])
		hg, err2 := strconv.ParseFloat(hargas[i], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		v := models.HargaVariasi{MinQty: mq, Harga: hg}
		if i < len(keterangans) {
			v.Keterangan = keterangans[i]
		}
		in.Variasi = append(in.Variasi, v)
	}
	return &in, nil
}

func (in *produkInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("kode", in.Kode, v)
	validation.Required("nama", in.Nama, v)
	validation.NonNegativeFloat("harga_beli", in.HargaBeli, v)
	validation.NonNegativeFloat("harga_jual", in.HargaJual, v)
	validation.NonNegativeInt("stok", in.Stok, v)
	return v
}

// Create: POST /produk/tambah. Admin only.
func (h *ProdukHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, r)
	if !ok || !policy.Can(user.Role, policy.ActionCreate, policy.ResourceProduk) {
		h.denied(w, r, "/produk")
		return
	}
	if r.Method == http.MethodGet {
		h.formPage(w, r, "Tambah Produk", nil, "")
		return
	}
	in, err := parseProdukInput(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		h.inputError(w, r, "Tambah Produk", nil, "Input tidak valid", v)
		return
	}
	tiers, err := services.NormalizeTiers(in.Variasi)
	if err != nil {
		h.inputError(w, r, "Tambah Produk", nil, err.Error(), nil)
		return
	}
	var count int64
	h.DB.Model(&models.Produk{}).Where("kode = ?", in.Kode).Count(&count)
	if count > 0 {
		h.inputError(w, r, "Tambah Produk", nil, "Kode produk sudah digunakan", nil)
		return
	}
	produk := models.Produk{
		Kode:        in.Kode,
		Nama:        in.Nama,
		Deskripsi:   in.Deskripsi,
		HargaBeli:   in.HargaBeli,
		HargaJual:   in.HargaJual,
		Stok:        in.Stok,
		MinimalStok: in.MinimalStok,
		Satuan:      in.Satuan,
	}
	if produk.Satuan == "" {
		produk.Satuan = "pcs"
	}
	if in.KategoriID != 0 {
		kid := in.KategoriID
		produk.KategoriID = &kid
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&produk).Error; err != nil {
			return err
		}
		for i := range tiers {
			tiers[i].ProdukID = produk.ID
		}
		if len(tiers) > 0 {
			if err := tx.Create(&tiers).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_product", nil)
		return
	}
	produk.HargaVariasi = tiers
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusCreated, produk)
		return
	}
	middleware.Flash(w, "Produk berhasil ditambahkan!")
	http.Redirect(w, r, "/produk", http.StatusSeeOther)
}

// Update: POST /produk/edit?id=. Admin only. The tier set is replaced
// wholesale, matching the edit form semantics.
func (h *ProdukHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, r)
	if !ok || !policy.Can(user.Role, policy.ActionUpdate, policy.ResourceProduk) {
		h.denied(w, r, "/produk")
		return
	}
	id, ok := queryID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var produk models.Produk
	if err := h.DB.Preload("HargaVariasi").First(&produk, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_product", nil)
		return
	}
	if r.Method == http.MethodGet {
		h.formPage(w, r, "Edit Produk", &produk, "")
		return
	}
	in, err := parseProdukInput(r)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_input", nil)
		return
	}
	if v := in.validate(); !v.Empty() {
		h.inputError(w, r, "Edit Produk", &produk, "Input tidak valid", v)
		return
	}
	tiers, err := services.NormalizeTiers(in.Variasi)
	if err != nil {
		h.inputError(w, r, "Edit Produk", &produk, err.Error(), nil)
		return
	}
	var count int64
	h.DB.Model(&models.Produk{}).Where("kode = ? AND id <> ?", in.Kode, produk.ID).Count(&count)
	if count > 0 {
		h.inputError(w, r, "Edit Produk", &produk, "Kode produk sudah digunakan", nil)
		return
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"kode":         in.Kode,
			"nama":         in.Nama,
			"deskripsi":    in.Deskripsi,
			"harga_beli":   in.HargaBeli,
			"harga_jual":   in.HargaJual,
			"stok":         in.Stok,
			"minimal_stok": in.MinimalStok,
			"satuan":       in.Satuan,
		}
		if in.KategoriID != 0 {
			updates["kategori_id"] = in.KategoriID
		} else {
			updates["kategori_id"] = nil
		}
		if err := tx.Model(&produk).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("produk_id = ?", produk.ID).Delete(&models.HargaVariasi{}).Error; err != nil {
			return err
		}
		for i := range tiers {
			tiers[i].ID = 0
			tiers[i].ProdukID = produk.ID
		}
		if len(tiers) > 0 {
			if err := tx.Create(&tiers).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_product", nil)
		return
	}
	if wantsJSON(r) {
		if err := h.DB.Preload("HargaVariasi", func(db *gorm.DB) *gorm.DB { return db.Order("min_qty") }).First(&produk, produk.ID).Error; err == nil {
			httpx.JSON(w, http.StatusOK, produk)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
		return
	}
	middleware.Flash(w, "Produk berhasil diperbarui!")
	http.Redirect(w, r, "/produk", http.StatusSeeOther)
}

// Delete: POST /produk/hapus?id=. Admin only.
func (h *ProdukHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	user, ok := currentUser(h.DB, r)
	if !ok || !policy.Can(user.Role, policy.ActionDelete, policy.ResourceProduk) {
		h.denied(w, r, "/produk")
		return
	}
	id, ok := queryID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var produk models.Produk
	if err := h.DB.First(&produk, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("produk_id = ?", produk.ID).Delete(&models.HargaVariasi{}).Error; err != nil {
			return err
		}
		return tx.Delete(&produk).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_product", nil)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
		return
	}
	middleware.Flash(w, "Produk berhasil dihapus!")
	http.Redirect(w, r, "/produk", http.StatusSeeOther)
}

// APIList: GET /api/produk returns in-stock products for the cashier screen,
// optionally filtered by search term and category, capped at 50 rows.
func (h *ProdukHandler) APIList(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	dbq := h.DB.Where("stok > 0")
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		dbq = dbq.Where("lower(nama) LIKE ? OR lower(kode) LIKE ?", like, like)
	}
	if kid, err := strconv.Atoi(r.URL.Query().Get("kategori_id")); err == nil && kid > 0 {
		dbq = dbq.Where("kategori_id = ?", kid)
	}
	var produkList []models.Produk
	if err := dbq.
		Preload("HargaVariasi", func(db *gorm.DB) *gorm.DB { return db.Order("min_qty") }).
		Limit(50).
		Find(&produkList).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	out := make([]models.KasirView, 0, len(produkList))
	for i := range produkList {
		out = append(out, produkList[i].ToKasirView())
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *ProdukHandler) formPage(w http.ResponseWriter, r *http.Request, title string, produk *models.Produk, errMsg string) {
	var kategoriList []models.Kategori
	h.DB.Order("nama").Find(&kategoriList)
	data := map[string]any{"Title": title, "KategoriList": kategoriList}
	if produk != nil {
		data["Produk"] = produk
	}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	renderTemplate(w, r, "produk_form", data)
}

func (h *ProdukHandler) inputError(w http.ResponseWriter, r *http.Request, title string, produk *models.Produk, msg string, v validation.Violations) {
	if wantsJSON(r) {
		httpx.JSONError(w, http.StatusBadRequest, msg, v)
		return
	}
	h.formPage(w, r, title, produk, msg)
}

func (h *ProdukHandler) denied(w http.ResponseWriter, r *http.Request, back string) {
	if wantsJSON(r) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	middleware.Flash(w, "Akses ditolak!")
	http.Redirect(w, r, back, http.StatusSeeOther)
}
