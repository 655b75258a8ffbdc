package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
// The text of each sentinel is safe to show to clients.
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrConflict             = errors.New("user already exists")
	ErrNotFound             = errors.New("user not found")
	ErrAlreadyVerified      = errors.New("user already verified")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired OTP")
	ErrNotVerified          = errors.New("email not verified, please verify the OTP first")
	ErrNoChanges            = errors.New("no valid fields to update")
	ErrUnauthenticated      = errors.New("unauthorized, please log in first")
	ErrForbidden            = errors.New("forbidden")
	ErrDeliveryFailed       = errors.New("failed to send OTP email")
	ErrStore                = errors.New("storage failure")
	ErrSession              = errors.New("session failure")
)
