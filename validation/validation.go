// Package validation holds the pure form-input validators shared by the auth
// gateway and host applications. None of the functions touch the network.
package validation

import (
	"regexp"
	"strings"
)

var (
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	fullNamePattern   = regexp.MustCompile(`^[a-zA-Z\s'-]+$`)
	upperPattern      = regexp.MustCompile(`[A-Z]`)
	lowerPattern      = regexp.MustCompile(`[a-z]`)
	digitPattern      = regexp.MustCompile(`[0-9]`)
	specialPattern    = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// PasswordResult reports the outcome of a password strength check. Errors
// contains one message per failed rule.
type PasswordResult struct {
	IsValid bool
	Errors  []string
}

// ValidateEmail reports whether email has the shape local@domain.tld.
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePassword checks password strength: minimum length, upper and lower
// case, a digit, and a special character.
func ValidatePassword(password string) PasswordResult {
	var errs []string

	if len(password) < 8 {
		errs = append(errs, "Password must be at least 8 characters long")
	}
	if !upperPattern.MatchString(password) {
		errs = append(errs, "Password must contain at least one uppercase letter")
	}
	if !lowerPattern.MatchString(password) {
		errs = append(errs, "Password must contain at least one lowercase letter")
	}
	if !digitPattern.MatchString(password) {
		errs = append(errs, "Password must contain at least one number")
	}
	if !specialPattern.MatchString(password) {
		errs = append(errs, "Password must contain at least one special character")
	}

	return PasswordResult{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}
}

// ValidateFullName accepts names of at least two characters made of letters,
// spaces, apostrophes and hyphens.
func ValidateFullName(name string) bool {
	trimmed := strings.TrimSpace(name)
	return len(trimmed) >= 2 && fullNamePattern.MatchString(name)
}

// ValidatePasswordMatch reports whether both entries agree and are non-empty.
func ValidatePasswordMatch(password, confirm string) bool {
	return password == confirm && len(password) > 0
}

// SanitizeEmail normalizes an email address for backend calls.
func SanitizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SanitizeFullName trims the name and collapses inner whitespace runs.
func SanitizeFullName(name string) string {
	return whitespacePattern.ReplaceAllString(strings.TrimSpace(name), " ")
}
