package handler

import (
	"fmt"
	"net/http"

	"github.com/jobboard-api/internal/domain"
	"github.com/jobboard-api/internal/transport/http/middleware"
)

// Dashboard greets any logged-in user.
func Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		httpError(w, r, domain.ErrUnauthenticated)
		return
	}
	writeMessage(w, http.StatusOK, fmt.Sprintf("Welcome to the dashboard, %s", sess.Name))
}

// RoleDashboard greets a user on the dashboard of role. Routing is expected
// to gate it with middleware.RequireRole(role).
func RoleDashboard(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.SessionFromContext(r.Context())
		if !ok {
			httpError(w, r, domain.ErrUnauthenticated)
			return
		}
		writeMessage(w, http.StatusOK, fmt.Sprintf("Welcome to the %s dashboard, %s", role, sess.Name))
	}
}
