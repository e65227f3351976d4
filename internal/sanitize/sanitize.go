// Package sanitize cleans free text arriving from interactive clients.
package sanitize

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxSize is the byte limit applied when none is configured.
const DefaultMaxSize = 64 << 10

var (
	ErrTooLarge    = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8 = errors.New("input contains invalid UTF-8 sequences")
)

// Text enforces a size limit, validates UTF-8 and strips control characters
// other than newline, tab and carriage return. A limit <= 0 uses DefaultMaxSize.
func Text(input string, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxSize
	}
	// Reject rather than truncate so the result is deterministic.
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	if strings.IndexFunc(input, unsafeControl) < 0 {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}
