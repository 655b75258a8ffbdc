package domain

import "time"

// Roles a user can hold. New accounts default to RoleClient.
const (
	RoleClient = "Client"
	RoleWorker = "Worker"
	RoleLeader = "Leader"
)

// ValidRole reports whether role is one of the fixed roles.
func ValidRole(role string) bool {
	switch role {
	case RoleClient, RoleWorker, RoleLeader:
		return true
	}
	return false
}

type User struct {
	UserID       string     `json:"id" dynamodbav:"user_id"`
	Name         string     `json:"name" dynamodbav:"name"`
	Email        string     `json:"email" dynamodbav:"email"`
	Phone        string     `json:"phone" dynamodbav:"phone"`
	PasswordHash string     `json:"-" dynamodbav:"password_hash"`
	Role         string     `json:"role" dynamodbav:"role"`
	IsVerified   bool       `json:"is_verified" dynamodbav:"is_verified"`
	OTP          *string    `json:"-" dynamodbav:"otp,omitempty"`
	OTPExpiry    *time.Time `json:"-" dynamodbav:"otp_expiry,omitempty"`
	CreatedAt    time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// HasPendingCode reports whether a one-time code is currently stored.
// OTP and OTPExpiry are always set or cleared together.
func (u *User) HasPendingCode() bool {
	return u.OTP != nil && u.OTPExpiry != nil
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,notblank"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,phone"`
	Password string `json:"password" validate:"required,min=8,bcryptlen,strongpassword"`
	Role     string `json:"role" validate:"omitempty,oneof=Client Worker Leader"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

type ResendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8,bcryptlen,strongpassword"`
}

// UpdateProfileRequest carries the optional profile fields. Absent fields are nil.
type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Role  *string `json:"role"`
}
