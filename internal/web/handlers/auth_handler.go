package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/tmaziere/taskboard/internal/services"
	"github.com/tmaziere/taskboard/internal/session"
	"github.com/tmaziere/taskboard/internal/store"
)

// AuthHandler handles the landing page and the login, register and logout
// routes.
type AuthHandler struct {
	service  services.AuthServiceProvider
	sessions session.Manager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.AuthServiceProvider, sessions session.Manager) *AuthHandler {
	return &AuthHandler{service: service, sessions: sessions}
}

// formError is the page model for the login and register forms.
type formError struct {
	Error string
}

// Index renders the landing page, or sends an authenticated browser
// straight to the dashboard.
func (h *AuthHandler) Index(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.sessions.CurrentUser(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	render(w, "index", nil)
}

// LoginForm renders the login form.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	render(w, "login", formError{})
}

// Login verifies the submitted credentials and establishes a session. The
// only errors surfaced to the user are "unknown username" and "wrong
// password", rendered inline on the form.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	err := h.service.Verify(username, password)
	switch {
	case errors.Is(err, store.ErrUnknownUser):
		render(w, "login", formError{Error: "unknown username"})
		return
	case errors.Is(err, services.ErrWrongPassword):
		log.Warn().Str("username", username).Msg("Failed authentication attempt")
		render(w, "login", formError{Error: "wrong password"})
		return
	case err != nil:
		log.Error().Err(err).Str("username", username).Msg("Failed to verify credentials")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.Establish(w, username); err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to establish session")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// RegisterForm renders the registration form.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	render(w, "register", formError{})
}

// Register creates the account and logs the new user straight in. A taken
// username is rendered inline on the form.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")

	err := h.service.Register(username, password)
	switch {
	case errors.Is(err, store.ErrUsernameTaken):
		render(w, "register", formError{Error: "username already taken"})
		return
	case err != nil:
		log.Error().Err(err).Str("username", username).Msg("Failed to register user")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.Establish(w, username); err != nil {
		log.Error().Err(err).Str("username", username).Msg("Failed to establish session")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// Logout clears the session and returns to the landing page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusFound)
}
