package handlers

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tokosembako/kasir-pos/internal/auth"
	"github.com/tokosembako/kasir-pos/internal/httpx"
	"github.com/tokosembako/kasir-pos/internal/middleware"
	"github.com/tokosembako/kasir-pos/internal/models"
	"github.com/tokosembako/kasir-pos/internal/policy"
)

type AuthHandler struct{ DB *gorm.DB }

func NewAuthHandler(db *gorm.DB) *AuthHandler { return &AuthHandler{DB: db} }

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		if user, ok := currentUser(h.DB, r); ok && user != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "login", nil)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET,POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	if username == "" || password == "" {
		renderTemplate(w, r, "login", map[string]any{"Error": "Username dan password wajib diisi"})
		return
	}
	var user models.User
	if err := h.DB.Where("username = ?", username).First(&user).Error; err != nil {
		renderTemplate(w, r, "login", map[string]any{"Error": "Username atau password salah!"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		renderTemplate(w, r, "login", map[string]any{"Error": "Username atau password salah!"})
		return
	}
	auth.CreateSession(w, user.ID)
	middleware.Flash(w, "Login berhasil!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	middleware.Flash(w, "Anda telah logout.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Register shows the user management page (GET) and creates accounts (POST).
// Admin only.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(h.DB, r)
	if !ok || !policy.Can(user.Role, policy.ActionCreate, policy.ResourceUser) {
		h.denied(w, r)
		return
	}
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		nama := strings.TrimSpace(r.FormValue("nama"))
		password := r.FormValue("password")
		role := r.FormValue("role")
		if role != models.RoleAdmin && role != models.RoleKasir {
			role = models.RoleKasir
		}
		if username == "" || nama == "" {
			h.registerPage(w, r, "Username dan nama wajib diisi")
			return
		}
		if err := models.ValidatePasswordStrength(password); err != nil {
			h.registerPage(w, r, "Password tidak valid: "+err.Error())
			return
		}
		var count int64
		h.DB.Model(&models.User{}).Where("username = ?", username).Count(&count)
		if count > 0 {
			h.registerPage(w, r, "Username sudah digunakan")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			h.registerPage(w, r, "Gagal menyimpan user")
			return
		}
		newUser := models.User{Username: username, Nama: nama, PasswordHash: string(hash), Role: role}
		if err := h.DB.Create(&newUser).Error; err != nil {
			h.registerPage(w, r, "Gagal menyimpan user")
			return
		}
		if wantsJSON(r) {
			httpx.JSON(w, http.StatusCreated, newUser)
			return
		}
		middleware.Flash(w, "User "+username+" berhasil ditambahkan!")
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}
	h.registerPage(w, r, "")
}

func (h *AuthHandler) registerPage(w http.ResponseWriter, r *http.Request, errMsg string) {
	var users []models.User
	h.DB.Order("id").Find(&users)
	data := map[string]any{"Users": users}
	if errMsg != "" {
		data["Error"] = errMsg
	}
	renderTemplate(w, r, "register", data)
}

// DeleteUser removes an account. Admin only; self-delete is refused.
func (h *AuthHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}
	user, ok := currentUser(h.DB, r)
	if !ok || !policy.Can(user.Role, policy.ActionDelete, policy.ResourceUser) {
		httpx.JSON(w, http.StatusForbidden, map[string]any{"success": false, "message": "Akses ditolak!"})
		return
	}
	id, ok := queryID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if id == user.ID {
		httpx.JSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Tidak bisa menghapus akun sendiri!"})
		return
	}
	var target models.User
	if err := h.DB.First(&target, id).Error; err != nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	if err := h.DB.Delete(&target).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_delete_user", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "User " + target.Username + " berhasil dihapus!"})
}

func (h *AuthHandler) denied(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
		return
	}
	middleware.Flash(w, "Akses ditolak!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
