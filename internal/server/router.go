package server

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"github.com/tokosembako/kasir-pos/internal/auth"
	"github.com/tokosembako/kasir-pos/internal/backup"
	"github.com/tokosembako/kasir-pos/internal/handlers"
	"github.com/tokosembako/kasir-pos/internal/httpx"
	"github.com/tokosembako/kasir-pos/internal/middleware"
	"github.com/tokosembako/kasir-pos/internal/models"
	"github.com/tokosembako/kasir-pos/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares
// applied. The backup manager may be nil (tests).
func New(db *gorm.DB, bm *backup.Manager) http.Handler {
	mux := http.NewServeMux()

	// Sessions for deleted users must stop working immediately.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	protected := func(h http.HandlerFunc) http.Handler {
		return auth.Middleware(auth.RequireAuth(h))
	}

	//revive:disable:unused-parameter simple handlers intentionally ignore *http.Request
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			if _, werr := w.Write([]byte(`{"status":"degraded"}`)); werr != nil {
				_ = werr
			}
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	//revive:enable:unused-parameter

	ah := handlers.NewAuthHandler(db)
	mux.HandleFunc("/login", ah.Login)
	mux.HandleFunc("/logout", ah.Logout)
	mux.Handle("/register", protected(ah.Register))
	mux.Handle("/user/hapus", protected(ah.DeleteUser))

	dh := handlers.NewDashboardHandler(db)
	mux.Handle("/", protected(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		dh.Index(w, r)
	}))

	ph := handlers.NewProdukHandler(db)
	mux.Handle("/produk", protected(ph.List))
	mux.Handle("/produk/tambah", protected(ph.Create))
	mux.Handle("/produk/edit", protected(ph.Update))
	mux.Handle("/produk/hapus", protected(ph.Delete))
	mux.Handle("/api/produk", protected(ph.APIList))

	kh := handlers.NewKategoriHandler(db)
	mux.Handle("/kategori", protected(kh.List))
	mux.Handle("/kategori/tambah", protected(kh.Create))
	mux.Handle("/kategori/edit", protected(kh.Update))
	mux.Handle("/kategori/hapus", protected(kh.Delete))
	mux.Handle("/kategori/produk", protected(kh.Products))

	mh := handlers.NewMemberHandler(db)
	mux.Handle("/member", protected(mh.List))
	mux.Handle("/member/tambah", protected(mh.Create))
	mux.Handle("/member/edit", protected(mh.Update))
	mux.Handle("/member/hapus", protected(mh.Delete))
	mux.Handle("/member/transaksi", protected(mh.Transactions))
	mux.Handle("/member/export", protected(mh.Export))
	mux.Handle("/member/template", protected(mh.Template))
	mux.Handle("/member/import", protected(mh.Import))

	checkout := services.NewCheckoutService(db)
	if bm != nil {
		checkout.OnCommit = bm.Trigger
	}
	kasir := handlers.NewKasirHandler(db, checkout)
	mux.Handle("/kasir", protected(kasir.Page))
	mux.Handle("/transaksi/checkout", protected(kasir.Process))

	th := handlers.NewTransaksiHandler(db)
	mux.Handle("/transaksi", protected(th.List))
	mux.Handle("/transaksi/struk", protected(th.Struk))

	lh := handlers.NewLaporanHandler(db)
	mux.Handle("/laporan", protected(lh.Index))

	sh := handlers.NewPengaturanHandler(db, bm)
	mux.Handle("/pengaturan", protected(sh.Index))
	mux.Handle("/admin/backup-now", protected(sh.BackupNow))

	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	return middleware.SecurityHeaders(middleware.Recover(middleware.Logging(mux)))
}
