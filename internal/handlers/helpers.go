package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/tokosembako/kasir-pos/internal/auth"
	"github.com/tokosembako/kasir-pos/internal/models"
	"github.com/tokosembako/kasir-pos/internal/view"
)

// wantsJSON reports whether the client asked for JSON explicitly and does
// not also accept HTML.
func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// currentUser loads the authenticated user, preferring the middleware
// context and falling back to parsing the cookie directly.
func currentUser(db *gorm.DB, r *http.Request) (*models.User, bool) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok || uid == 0 {
		if parsed, ok2 := auth.ParseSession(r); ok2 {
			uid = parsed
		}
	}
	if uid == 0 {
		return nil, false
	}
	var user models.User
	if err := db.First(&user, uid).Error; err != nil {
		return nil, false
	}
	return &user, true
}

func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if err := view.Render(w, r, name+".html", data); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		if _, werr := w.Write([]byte("template error: " + err.Error())); werr != nil {
			_ = werr
		}
	}
}

func queryID(r *http.Request) (uint, bool) {
	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}
