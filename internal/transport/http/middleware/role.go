package middleware

import (
	"net/http"

	"github.com/jobboard-api/internal/domain"
)

// RequireSession rejects requests that carry no live session.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFromContext(r.Context()); !ok {
			writeJSONError(w, http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole returns middleware that allows access only to sessions whose
// role matches one of the provided role names (e.g. domain.RoleWorker).
func RequireRole(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, domain.ErrUnauthenticated.Error())
				return
			}
			for _, role := range allowedRoles {
				if sess.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeJSONError(w, http.StatusForbidden, "access denied")
		})
	}
}
