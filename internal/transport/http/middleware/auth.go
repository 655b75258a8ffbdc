package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jobboard-api/internal/domain"
)

type contextKey string

const sessionKey contextKey = "session"

// Authenticator resolves a session ID to a live session.
type Authenticator interface {
	Authenticate(ctx context.Context, sessionID string) (*domain.Session, error)
}

// CookieVerifier checks the signed cookie value and returns the session ID.
type CookieVerifier interface {
	Verify(token string) (string, error)
}

// Session loads the session referenced by the cookie into the request
// context. Requests without a valid cookie pass through with no session;
// RequireSession and RequireRole do the rejecting.
func Session(auth Authenticator, verifier CookieVerifier, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(cookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			sid, err := verifier.Verify(c.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			sess, err := auth.Authenticate(r.Context(), sid)
			if err != nil {
				if !errors.Is(err, domain.ErrUnauthenticated) {
					slog.Error("load session", "err", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess *domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFromContext extracts the session loaded by Session.
func SessionFromContext(ctx context.Context) (*domain.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*domain.Session)
	return s, ok && s != nil
}
