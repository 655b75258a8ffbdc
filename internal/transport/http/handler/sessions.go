package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jobboard-api/internal/application/auth"
	"github.com/jobboard-api/internal/domain"
	"github.com/jobboard-api/internal/transport/http/middleware"
)

// CookieSigner signs the session ID stored in the session cookie.
type CookieSigner interface {
	Sign(sessionID string, expiresAt time.Time) (string, error)
}

// CookieConfig controls the attributes of the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// SessionHandler handles login and logout.
type SessionHandler struct {
	svc    auth.Service
	signer CookieSigner
	cookie CookieConfig
}

func NewSessionHandler(svc auth.Service, signer CookieSigner, cookie CookieConfig) *SessionHandler {
	return &SessionHandler{svc: svc, signer: signer, cookie: cookie}
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	expires := res.Session.ExpiresTime()
	token, err := h.signer.Sign(res.Session.SessionID, expires)
	if err != nil {
		// No cookie will reference the stored session.
		if delErr := h.svc.Logout(r.Context(), res.Session); delErr != nil {
			slog.Error("login: drop unsigned session", "user_id", res.Session.UserID, "err", delErr)
		}
		httpError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, UserEnvelope{
		Message: "Login successful",
		User:    toUserSummary(res.User),
	})
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFromContext(r.Context())
	if err := h.svc.Logout(r.Context(), sess); err != nil {
		httpError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	writeMessage(w, http.StatusOK, "Logged out successfully")
}
