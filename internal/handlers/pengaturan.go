package handlers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/tokosembako/kasir-pos/internal/backup"
	"github.com/tokosembako/kasir-pos/internal/httpx"
	"github.com/tokosembako/kasir-pos/internal/middleware"
	"github.com/tokosembako/kasir-pos/internal/models"
	"github.com/tokosembako/kasir-pos/internal/policy"
)

// settingKeys are the editable store settings, in form order.
var settingKeys = []string{
	"store_name",
	"store_address",
	"store_phone",
	"receipt_footer",
	"tax_enabled",
	"tax_percentage",
}

type PengaturanHandler struct {
	DB     *gorm.DB
	Backup *backup.Manager
}

func NewPengaturanHandler(db *gorm.DB, bm *backup.Manager) *PengaturanHandler {
	return &PengaturanHandler{DB: db, Backup: bm}
}

// Index: GET/POST /pengaturan (admin only).
func (h *PengaturanHandler) Index(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, r)
	if !ok || policy.Authorize(user.Role, policy.ActionUpdate, policy.ResourcePengaturan) != nil {
		h.denied(w, r)
		return
	}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		for _, key := range settingKeys {
			if !r.Form.Has(key) {
				continue
			}
			value := strings.TrimSpace(r.FormValue(key))
			if key == "tax_enabled" {
				value = normalizeBool(value)
			}
			if err := models.SetSetting(h.DB, key, value); err != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "failed_to_save_settings", nil)
				return
			}
		}
		if wantsJSON(r) {
			httpx.JSON(w, http.StatusOK, map[string]string{"status": "saved"})
			return
		}
		middleware.Flash(w, "Pengaturan berhasil disimpan!")
		http.Redirect(w, r, "/pengaturan", http.StatusSeeOther)
		return
	}

	settings := map[string]string{}
	for _, key := range settingKeys {
		settings[key] = models.GetSetting(h.DB, key, "")
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, settings)
		return
	}
	renderTemplate(w, r, "pengaturan", map[string]any{"Settings": settings})
}

// BackupNow: POST /admin/backup-now (admin only). Runs a backup synchronously
// so the response can report whether a file was written.
func (h *PengaturanHandler) BackupNow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	user, ok := currentUser(h.DB, r)
	if !ok || policy.Authorize(user.Role, policy.ActionCreate, policy.ResourceBackup) != nil {
		h.denied(w, r)
		return
	}
	if h.Backup == nil {
		httpx.Fail(w, "Backup tidak tersedia")
		return
	}
	if h.Backup.Run() {
		httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "Backup berhasil dibuat"})
		return
	}
	httpx.Fail(w, "Backup gagal dibuat")
}

func normalizeBool(v string) string {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes", "ya":
		return "true"
	}
	return "false"
}

func (h *PengaturanHandler) denied(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
