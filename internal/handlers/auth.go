package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"blogpanel/internal/blog"
	"blogpanel/internal/middleware"
	"blogpanel/internal/session"
)

// Sessions is the part of the session store the auth handlers use.
type Sessions interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Auth groups the sign-in handlers.
type Auth struct {
	users    *blog.Users
	sessions Sessions
}

// NewAuth creates the auth handler group.
func NewAuth(users *blog.Users, sessions Sessions) *Auth {
	return &Auth{users: users, sessions: sessions}
}

// Login checks the form's email and password and starts a session.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(w, r); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid form data.")
		return
	}

	u, err := a.users.Authenticate(r.Context(), r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:  u.ID,
		Email:   u.Email,
		Name:    u.Name,
		IsAdmin: u.IsAdmin,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user signed in", "user_id", u.ID)
	writeJSON(w, http.StatusOK, newUserView(a.users, u))
}

// Logout ends the current session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in user.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeMessage(w, http.StatusUnauthorized, "Sign in required.")
		return
	}
	u, err := a.users.Get(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserView(a.users, u))
}
