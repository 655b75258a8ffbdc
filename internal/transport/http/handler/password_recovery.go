package handler

import (
	"net/http"

	"github.com/jobboard-api/internal/application/auth"
	"github.com/jobboard-api/internal/domain"
)

// PasswordRecoveryHandler handles the emailed-code password reset flow.
type PasswordRecoveryHandler struct {
	svc auth.Service
}

func NewPasswordRecoveryHandler(svc auth.Service) *PasswordRecoveryHandler {
	return &PasswordRecoveryHandler{svc: svc}
}

func (h *PasswordRecoveryHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordResetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.RequestPasswordReset(r.Context(), req); err != nil {
		httpError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Password reset OTP sent to email.")
}

func (h *PasswordRecoveryHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req domain.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.ResetPassword(r.Context(), req); err != nil {
		httpError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Password reset successfully. You can now log in.")
}
