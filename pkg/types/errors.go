package types

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Backend error codes the module special-cases. Everything else passes
// through to callers unmodified.
const (
	// TextCodeNotFound is PostgREST's "no rows returned" code for single-row
	// selects.
	TextCodeNotFound = "PGRST116"
	// TextCodeUniqueViolation is Postgres's unique-constraint violation code.
	TextCodeUniqueViolation = "23505"
)

// BackendErrorCode extracts a known backend error code from err, either from
// a go-errors text code set by the adapter layer or from the raw error text
// the SDK surfaces.
func BackendErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) && rich.TextCode != "" {
		return rich.TextCode
	}
	msg := err.Error()
	for _, code := range []string{TextCodeNotFound, TextCodeUniqueViolation} {
		if strings.Contains(msg, code) {
			return code
		}
	}
	return ""
}

// IsNotFound reports whether err is the backend's single-row miss.
func IsNotFound(err error) bool {
	return BackendErrorCode(err) == TextCodeNotFound
}

// IsUniqueViolation reports whether err is a unique-constraint violation.
func IsUniqueViolation(err error) bool {
	return BackendErrorCode(err) == TextCodeUniqueViolation
}
