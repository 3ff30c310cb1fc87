package id

import (
	"strings"

	"github.com/google/uuid"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewToken returns a canonical random UUID, used for opaque single-use tokens.
func NewToken() string { return uuid.NewString() }

// IsToken reports whether s parses as a UUID.
func IsToken(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}
