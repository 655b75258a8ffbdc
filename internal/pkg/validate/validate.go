package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// phonePattern is a loose E.164 check: optional leading '+', 7 to 15 digits, no leading zero.
var phonePattern = regexp.MustCompile(`^\+?[1-9][0-9]{6,14}$`)

// passwordSpecials are the special characters accepted by the password policy.
const passwordSpecials = "@$!%*?&"

// maxPasswordBytes is bcrypt's input limit. It counts bytes, not runes.
const maxPasswordBytes = 72

// v is the package-level singleton validator. It is initialised once at
// package load time; custom tags are registered in init() before the first
// call to Struct.
var v = validator.New()

func init() {
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return Phone(fl.Field().String())
	})
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// Struct validates the given struct using its validate tags.
// Returns a human-readable error string or nil.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var msgs []string
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	return nil
}

// Phone reports whether s looks like an E.164 phone number.
func Phone(s string) bool {
	return phonePattern.MatchString(s)
}

// StrongPassword requires at least one lowercase letter, one uppercase letter,
// one digit and one of the special characters @$!%*?&.
func StrongPassword(s string) bool {
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return lower && upper && digit && special
}
