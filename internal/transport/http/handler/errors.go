package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jobboard-api/internal/domain"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{domain.ErrConflict, http.StatusBadRequest},
	{domain.ErrNotFound, http.StatusBadRequest},
	{domain.ErrAlreadyVerified, http.StatusBadRequest},
	{domain.ErrInvalidCredentials, http.StatusBadRequest},
	{domain.ErrInvalidOrExpiredCode, http.StatusBadRequest},
	{domain.ErrNotVerified, http.StatusBadRequest},
	{domain.ErrNoChanges, http.StatusBadRequest},
	{domain.ErrUnauthenticated, http.StatusUnauthorized},
	{domain.ErrForbidden, http.StatusForbidden},
	{domain.ErrDeliveryFailed, http.StatusInternalServerError},
	{domain.ErrSession, http.StatusInternalServerError},
	{domain.ErrStore, http.StatusInternalServerError},
}

// httpError maps a service error to a status code and a {"message"} body.
// Only the sentinel's text reaches the client; wrapped driver errors are logged.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrInvalidInput) {
		// Validation errors carry only field and tag names.
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
			}
			writeMessage(w, m.status, m.err.Error())
			return
		}
	}
	slog.Error("unhandled error", "method", r.Method, "path", r.URL.Path, "err", err)
	writeMessage(w, http.StatusInternalServerError, "internal server error")
}
