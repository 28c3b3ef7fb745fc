// Package contact canonicalizes Philippine mobile numbers and validates
// person names. One Normalize function serves both the strict registration
// path and the lenient request-lookup path; the mode flag replaces the two
// divergent helpers the system previously grew.
package contact

import (
	"regexp"
	"strings"

	dErrors "brgyconnect/pkg/domain-errors"
)

// Mode selects how much validation Normalize applies after the prefix
// rewrite.
type Mode int

const (
	// Strict rejects anything that does not come out as an 11-digit local
	// number starting with 09. Used for registration and account lookup.
	Strict Mode = iota
	// Lenient performs only the +63/63 prefix rewrite. Used when matching
	// document requests, where historic rows may carry unvalidated numbers.
	Lenient
)

var namePattern = regexp.MustCompile(`^[A-Za-z\s'-]+$`)

// Normalize canonicalizes a raw contact string into local 09XXXXXXXXX form.
func Normalize(raw string, mode Mode) (string, error) {
	c := strings.ReplaceAll(raw, " ", "")
	c = strings.ReplaceAll(c, "-", "")
	c = strings.TrimSpace(c)

	switch {
	case strings.HasPrefix(c, "+63"):
		c = "0" + c[3:]
	case strings.HasPrefix(c, "63"):
		c = "0" + c[2:]
	}

	if mode == Lenient {
		return c, nil
	}

	if !strings.HasPrefix(c, "0") {
		return "", dErrors.New(dErrors.CodeValidation, "Invalid contact number format")
	}
	if len(c) != 11 || !strings.HasPrefix(c, "09") {
		return "", dErrors.New(dErrors.CodeValidation, "Invalid contact number format")
	}
	return c, nil
}

// ValidateName checks that a name field contains only letters, spaces,
// hyphens, and apostrophes. fieldName feeds the error message.
func ValidateName(name, fieldName string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return dErrors.Newf(dErrors.CodeValidation, "%s cannot be empty", fieldName)
	}
	if !namePattern.MatchString(trimmed) {
		return dErrors.Newf(dErrors.CodeValidation,
			"%s contains invalid characters. Only letters, spaces, hyphens, and apostrophes are allowed.", fieldName)
	}
	return nil
}
