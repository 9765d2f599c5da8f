// Package validation holds input validation rules for user-supplied data.
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt input limit
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateUsername checks that a username is well formed.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength {
		return fmt.Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return fmt.Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username may only contain letters, numbers and underscores")
	}
	return nil
}

// ValidateEmail checks that an email address parses and has a domain.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email address")
	}
	if addr.Address != email {
		return fmt.Errorf("invalid email address")
	}
	if !strings.Contains(strings.SplitN(email, "@", 2)[1], ".") {
		return fmt.Errorf("email domain is incomplete")
	}
	return nil
}

// ValidatePassword enforces a minimum level of password complexity:
// length bounds plus at least one letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password must be at most %d characters", MaxPasswordLength)
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain at least one letter and one digit")
	}
	return nil
}
