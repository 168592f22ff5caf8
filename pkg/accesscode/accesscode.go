// Package accesscode produces the short public identifiers printed on
// unit tags. Codes are 8 uppercase hexadecimal characters drawn from a
// cryptographically strong source; global uniqueness is enforced by the
// database constraint, with callers regenerating on conflict.
package accesscode

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Length is the number of characters in a generated code.
const Length = 8

// Generate returns a fresh access code. The only failure mode is the
// random source itself becoming unreadable.
func Generate() (string, error) {
	buf := make([]byte, Length/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random source: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// IsWellFormed reports whether value has the shape of a generated code.
// It implies nothing about the code existing.
func IsWellFormed(value string) bool {
	if len(value) != Length {
		return false
	}
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
