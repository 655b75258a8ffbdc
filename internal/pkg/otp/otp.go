// Package otp generates and checks the 6-digit one-time codes emailed to users.
package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"
)

const (
	minCode = 100000
	maxCode = 999999
)

// Generate returns a uniformly random code in [100000, 999999].
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(maxCode-minCode+1))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+minCode), nil
}

// Valid reports whether supplied matches stored and now is not past expiry.
// A missing stored code or expiry never validates.
func Valid(stored *string, expiry *time.Time, supplied string, now time.Time) bool {
	if stored == nil || expiry == nil {
		return false
	}
	match := subtle.ConstantTimeCompare([]byte(*stored), []byte(supplied)) == 1
	return match && !now.After(*expiry)
}
