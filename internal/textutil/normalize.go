// Package textutil implements the language-aware tokenizer, Unicode
// normalization and n-gram enumeration that the rest of the pipeline
// builds on (spec §4.2). Normalization is used for gazetteer and
// custom-entity utterance lookups; it never touches the raw value
// returned to callers.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFD decomposition, strips combining marks in the
// U+0300..U+036F block, then lowercases the result. It is idempotent:
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r >= 0x0300 && r <= 0x036F {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToLower(b.String())
}

// isWordRune reports whether r can be part of a token's surface value.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '\'' || r == '_'
}
