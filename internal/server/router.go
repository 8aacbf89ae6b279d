package server

import (
	"context"
	"net/http"

	"github.com/diewo77/mediation-app/internal/auth"
	"github.com/diewo77/mediation-app/internal/handlers"
	"github.com/diewo77/mediation-app/internal/httpx"
	"github.com/diewo77/mediation-app/internal/middleware"
	"github.com/diewo77/mediation-app/internal/models"
	"github.com/diewo77/mediation-app/internal/services"
	"gorm.io/gorm"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// RequireAuth double-checks the session user still exists.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth endpoints
	ah := handlers.NewAuthHandler(db)
	mux.HandleFunc("/register", ah.Register)
	mux.HandleFunc("/login", ah.Login)
	mux.HandleFunc("/logout", ah.Logout)

	protect := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(h)
	}

	// Tiers endpoints
	tiersSvc := services.NewTiersService(db)
	th := handlers.NewTiersHandler(db, tiersSvc)
	mux.Handle("/tiers", protect(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			th.List(w, r)
		case http.MethodPost:
			th.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}))
	mux.Handle("/tiers/show", protect(th.Show))
	mux.Handle("/tiers/options", protect(th.Options))
	mux.Handle("/tiers/update", protect(th.Update))
	mux.Handle("/tiers/delete", protect(th.Delete))

	// Dossier endpoints
	dossierSvc := services.NewDossierService(db)
	dh := handlers.NewDossierHandler(db, dossierSvc)
	mux.Handle("/dossiers", protect(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			dh.List(w, r)
		case http.MethodPost:
			dh.Create(w, r)
		default:
			w.Header().Set("Allow", "GET,POST")
			httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		}
	}))
	mux.Handle("/dossiers/show", protect(dh.Show))
	mux.Handle("/dossiers/update", protect(dh.Update))
	mux.Handle("/dossiers/delete", protect(dh.Delete))
	mux.Handle("/dossiers/cloturer", protect(dh.Cloturer))
	mux.Handle("/dossiers/reouvrir", protect(dh.Reouvrir))

	return middleware.Prefs(auth.Middleware(withRecover(mux)))
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
