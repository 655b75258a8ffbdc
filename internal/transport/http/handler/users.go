package handler

import (
	"errors"
	"net/http"

	"github.com/jobboard-api/internal/application/auth"
	"github.com/jobboard-api/internal/domain"
	"github.com/jobboard-api/internal/transport/http/middleware"
)

// UserHandler handles registration and profile endpoints.
type UserHandler struct {
	svc auth.Service
}

func NewUserHandler(svc auth.Service) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.svc.Register(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, UserEnvelope{
		Message: "User registered. Please verify OTP sent to email.",
		User:    toUserSummary(u),
	})
}

// UpdateProfile answers 404 when the account behind the session is gone.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		httpError(w, r, domain.ErrUnauthenticated)
		return
	}
	var req domain.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	_, u, err := h.svc.UpdateProfile(r.Context(), sess, req)
	if errors.Is(err, domain.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, domain.ErrNotFound.Error())
		return
	}
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, UserEnvelope{
		Message: "Profile updated successfully",
		User:    toUserSummary(u),
	})
}
