package handlers

import (
	"log/slog"
	"net/http"

	"notedeck/internal/middleware"
	"notedeck/internal/render"
	"notedeck/internal/session"
	"notedeck/internal/store"
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	renderer  *render.Renderer
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(renderer *render.Renderer, sessions *session.Store, userStore *store.UserStore) *Auth {
	return &Auth{
		renderer:  renderer,
		sessions:  sessions,
		userStore: userStore,
	}
}

// Home renders the landing page.
func (a *Auth) Home(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "home", &render.PageData{Title: "Home"})
}

// RegisterPage renders the registration form.
func (a *Auth) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionFromCtx(r.Context()) != nil {
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
		return
	}
	a.renderer.Page(w, r, "register", &render.PageData{Title: "Sign Up"})
}

// RegisterSubmit processes the registration form. A successful
// registration logs the new user in immediately.
func (a *Auth) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	form := ParseRegisterForm(r)
	if errs := form.Validate(); len(errs) > 0 {
		a.renderer.Page(w, r, "register", &render.PageData{
			Title: "Sign Up",
			Data:  map[string]any{"Form": form, "Errors": errs},
		})
		return
	}

	user, err := a.userStore.Create(form.Username, form.Password)
	if err == store.ErrUsernameTaken {
		errs := Errors{{Field: "username", Message: "This username is already taken. Please choose a different one."}}
		a.renderer.Page(w, r, "register", &render.PageData{
			Title: "Sign Up",
			Data:  map[string]any{"Form": form, "Errors": errs},
		})
		return
	}
	if err != nil {
		slog.Error("register failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:   user.ID,
		Username: user.Username,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && !sess.TwoFAPending {
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
		return
	}
	a.renderer.Page(w, r, "login", &render.PageData{Title: "Log In"})
}

// LoginSubmit processes the login form. Users with the optional second
// factor enabled get a pending session and are sent to the code page;
// everyone else is logged in directly.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	form := ParseLoginForm(r)
	if errs := form.Validate(); len(errs) > 0 {
		a.renderer.Page(w, r, "login", &render.PageData{
			Title: "Log In",
			Data:  map[string]any{"Form": form, "Errors": errs},
		})
		return
	}

	user, err := a.userStore.FindByUsername(form.Username)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		a.renderer.Page(w, r, "login", &render.PageData{
			Title: "Log In",
			Data:  map[string]any{"Form": form, "Error": "An unexpected error occurred."},
		})
		return
	}

	// One message for both unknown username and wrong password.
	if user == nil || !a.userStore.CheckPassword(user, form.Password) {
		a.renderer.Page(w, r, "login", &render.PageData{
			Title: "Log In",
			Data:  map[string]any{"Form": form, "Error": "Username or password is incorrect. Please try again."},
		})
		return
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:       user.ID,
		Username:     user.Username,
		TwoFAPending: user.HasTwoFactor(),
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if user.HasTwoFactor() {
		http.Redirect(w, r, "/login/verify", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout destroys the session and redirects to the home page. Idempotent.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
