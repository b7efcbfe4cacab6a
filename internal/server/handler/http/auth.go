// Package http provides the HTML handlers for registration, login, logout
// and the tweet pages.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/GophTweeter/internal/middleware"
	"github.com/atinyakov/GophTweeter/internal/models"
	"github.com/atinyakov/GophTweeter/internal/password"
	"github.com/atinyakov/GophTweeter/internal/server/flash"
	"github.com/atinyakov/GophTweeter/internal/service"
	"github.com/atinyakov/GophTweeter/internal/session"
)

// UserService defines the account operations required by the HTTP handlers.
type UserService interface {
	// Register creates a new user. Returns service.ErrUsernameTaken on conflict.
	Register(ctx context.Context, username, password string) (*models.User, error)
	// Authenticate checks credentials. Returns service.ErrInvalidCredentials
	// for an unknown user or a wrong password.
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	// Get returns the user with the given id.
	Get(ctx context.Context, id int64) (*models.User, error)
}

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	// Users performs the underlying account operations.
	Users UserService
	// Sessions issues and revokes session tokens.
	Sessions session.Store
	// Views renders the HTML pages.
	Views *Renderer
	Log   *zap.Logger
	// SessionTTL is used as the cookie Max-Age.
	SessionTTL time.Duration
	// SecureCookies marks the session cookie Secure.
	SecureCookies bool
}

func credentialsForm(r *http.Request) Form {
	f := newForm()
	f.Values["username"] = r.PostFormValue("username")
	f.Values["password"] = r.PostFormValue("password")
	f.Require("username", "password")
	if len(f.Values["password"]) > password.MaxLength {
		f.AddError("password", fmt.Sprintf("Password must be at most %d bytes.", password.MaxLength))
	}
	return f
}

// RegisterForm renders the empty registration form.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.Views.Render(w, r, http.StatusOK, "register.html", &Page{Title: "Register"})
}

// Register creates an account from the posted form and logs the new user in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	form := credentialsForm(r)
	if !form.Valid() {
		h.renderRegister(w, r, http.StatusBadRequest, form)
		return
	}

	user, err := h.Users.Register(r.Context(), form.Values["username"], form.Values["password"])
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			form.AddError("username", "Username taken. Please pick another.")
			h.renderRegister(w, r, http.StatusConflict, form)
			return
		}
		h.Log.Error("register user", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := h.startSession(w, r, user.ID); err != nil {
		h.Log.Error("create session", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	flash.Set(w, r, flash.Success, "Welcome! Successfully created your account.")
	http.Redirect(w, r, "/tweets", http.StatusSeeOther)
}

func (h *AuthHandler) renderRegister(w http.ResponseWriter, r *http.Request, status int, form Form) {
	form.Values["password"] = ""
	h.Views.Render(w, r, status, "register.html", &Page{Title: "Register", Form: form})
}

// LoginForm renders the empty login form.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.Views.Render(w, r, http.StatusOK, "login.html", &Page{Title: "Login"})
}

// Login authenticates the posted credentials and starts a new session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	form := credentialsForm(r)
	if !form.Valid() {
		h.renderLogin(w, r, http.StatusBadRequest, form)
		return
	}

	user, err := h.Users.Authenticate(r.Context(), form.Values["username"], form.Values["password"])
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			form.AddError("form", "Invalid username/password.")
			h.renderLogin(w, r, http.StatusUnauthorized, form)
			return
		}
		h.Log.Error("authenticate", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if err := h.startSession(w, r, user.ID); err != nil {
		h.Log.Error("create session", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	flash.Set(w, r, flash.Primary, fmt.Sprintf("Welcome back %s!", user.Username))
	http.Redirect(w, r, "/tweets", http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, form Form) {
	form.Values["password"] = ""
	h.Views.Render(w, r, status, "login.html", &Page{Title: "Login", Form: form})
}

// Logout revokes the current session and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionTokenFromContext(r.Context()); token != "" {
		if err := h.Sessions.Destroy(r.Context(), token); err != nil {
			h.Log.Warn("destroy session", zap.Error(err))
		}
	}
	http.SetCookie(w, h.sessionCookie("", -1))
	flash.Set(w, r, flash.Info, "Goodbye!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// startSession replaces any existing session of the request with a fresh one.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, userID int64) error {
	if old := middleware.SessionTokenFromContext(r.Context()); old != "" {
		if err := h.Sessions.Destroy(r.Context(), old); err != nil {
			h.Log.Warn("destroy previous session", zap.Error(err))
		}
	}
	token, err := h.Sessions.Create(r.Context(), userID)
	if err != nil {
		return err
	}
	http.SetCookie(w, h.sessionCookie(token, int(h.SessionTTL.Seconds())))
	return nil
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
