// Package router sets up all HTTP routes and middleware chains for the
// notedeck server. Every route that touches user-owned data sits behind
// the same session guard — listing, mutating, and serving uploads alike.
package router

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"notedeck/internal/handlers"
	"notedeck/internal/middleware"
	"notedeck/internal/session"
	"notedeck/web"
)

const (
	// authRateLimit caps login/register attempts per IP per window.
	authRateLimit  = 10
	authRateWindow = time.Minute
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, auth *handlers.Auth, notes *handlers.Notes, categories *handlers.Categories, uploads *handlers.Uploads) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))
	r.Use(middleware.CSRF)

	// Health check — no auth.
	r.Get("/health", healthHandler)

	// Static assets.
	staticFS, _ := fs.Sub(web.StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Public pages.
	r.Get("/", auth.Home)
	r.Post("/logout", auth.Logout)

	// Credential endpoints are rate-limited per IP.
	authLimiter := middleware.NewRateLimiter(authRateLimit, authRateWindow)
	r.Group(func(r chi.Router) {
		r.Use(authLimiter.Middleware)
		r.Get("/register", auth.RegisterPage)
		r.Post("/register", auth.RegisterSubmit)
		r.Get("/login", auth.LoginPage)
		r.Post("/login", auth.LoginSubmit)
	})

	// Second-factor verification — needs a (pending) session but not a
	// completed login.
	r.Get("/login/verify", auth.TwoFAVerifyPage)
	r.Post("/login/verify", auth.TwoFAVerifySubmit)

	// Authenticated area. One uniform guard for everything that reads
	// or mutates user-owned data, uploads included.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", notes.List)
			r.Post("/", notes.Create)
			r.Get("/search", notes.Search)
			r.Get("/{id}/edit", notes.EditPage)
			r.Post("/{id}/edit", notes.EditSubmit)
			r.Post("/{id}/delete", notes.Delete)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categories.List)
			r.Post("/", categories.Create)
			r.Get("/{id}/notes", categories.Notes)
			r.Get("/{id}/edit", categories.EditPage)
			r.Post("/{id}/edit", categories.EditSubmit)
			r.Post("/{id}/delete", categories.Delete)
		})

		r.Get("/uploads/thumbs/{filename}", uploads.Thumb)
		r.Get("/uploads/{filename}", uploads.Image)

		r.Get("/settings", auth.SettingsPage)
		r.Get("/settings/2fa", auth.TwoFASetupPage)
		r.Post("/settings/2fa", auth.TwoFASetupSubmit)
		r.Post("/settings/2fa/disable", auth.TwoFADisableSubmit)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
