// Package wireutil validates caller-supplied text before it is written to
// an engine as part of a protocol line.
package wireutil

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dmora/ucirun"
)

// MaxLen is the maximum byte length of one caller-supplied field.
const MaxLen = 4096

// Field rejects text that would break the line framing of the protocol:
// control characters (including CR and LF), and overlong input. what
// names the field in the returned error, which wraps ucirun.ErrInvalidInput.
func Field(what, s string) error {
	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: %s contains control characters", ucirun.ErrInvalidInput, what)
		}
	}
	if len(s) > MaxLen {
		return fmt.Errorf("%w: %s exceeds %d bytes", ucirun.ErrInvalidInput, what, MaxLen)
	}
	return nil
}

// Token is Field plus a requirement that s is a single non-empty word,
// as moves are.
func Token(what, s string) error {
	if s == "" {
		return fmt.Errorf("%w: %s is empty", ucirun.ErrInvalidInput, what)
	}
	if strings.ContainsFunc(s, unicode.IsSpace) {
		return fmt.Errorf("%w: %s %q contains whitespace", ucirun.ErrInvalidInput, what, s)
	}
	return Field(what, s)
}
