package handler

import (
	"net/http"

	"github.com/jobboard-api/internal/application/auth"
	"github.com/jobboard-api/internal/domain"
)

// EmailConfirmHandler handles OTP verification of a new account.
type EmailConfirmHandler struct {
	svc auth.Service
}

func NewEmailConfirmHandler(svc auth.Service) *EmailConfirmHandler {
	return &EmailConfirmHandler{svc: svc}
}

func (h *EmailConfirmHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.VerifyOTP(r.Context(), req); err != nil {
		httpError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Email verified successfully. You can now log in.")
}

func (h *EmailConfirmHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.ResendOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.ResendOTP(r.Context(), req); err != nil {
		httpError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "OTP resent successfully.")
}
