// Package normalize turns raw symptom descriptions into the canonical form
// consumed by the specialty classifier.
//
// Normalization is a pure, deterministic function: lowercase the text, drop
// characters that carry no clinical meaning, and collapse whitespace. Tokens
// that matter for classification — durations ("2 horas"), body parts,
// severity words — pass through unchanged apart from case. The function is
// idempotent, so normalizing already-normalized text is a no-op.
package normalize

import (
	"strings"
	"unicode"
)

// Normalize returns the canonical form of raw. Any input string, including
// the empty string, yields a valid result; there are no error conditions.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	lastSpace := true // swallow leading whitespace
	for _, r := range strings.ToLower(raw) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r) || isSeparator(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		default:
			// Noise character (emoji, symbols, stray markup): drop it.
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// isSeparator reports whether r is punctuation that separates clinical
// tokens and must therefore become a space rather than vanish, so that
// "fiebre,tos" does not collapse into a single bogus token.
func isSeparator(r rune) bool {
	switch r {
	case ',', ';', '.', ':', '/', '-', '(', ')', '¿', '?', '¡', '!':
		return true
	}
	return false
}
