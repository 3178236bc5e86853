package textutil

import (
	"strings"

	"github.com/themobileprof/nlucore/pkg/nlu"
)

// Ngram is a contiguous run of tokens, joined for feature-key purposes,
// together with the char range it spans in the original utterance.
type Ngram struct {
	Text      string
	CharRange nlu.Range
	Tokens    []nlu.Token
}

// ComputeAllNgrams enumerates every contiguous ngram of length 1..maxLen
// (clamped to len(tokens)) over tokens, joined with language's separator.
// Order is stable: all length-1 spans left to right, then length-2, etc.,
// matching the order feature functions iterate candidate gazetteer matches.
func ComputeAllNgrams(tokens []nlu.Token, maxLen int, language string) []Ngram {
	if maxLen > len(tokens) {
		maxLen = len(tokens)
	}
	sep := Separator(language)

	var out []Ngram
	for n := 1; n <= maxLen; n++ {
		for start := 0; start+n <= len(tokens); start++ {
			span := tokens[start : start+n]
			values := make([]string, len(span))
			for i, t := range span {
				values[i] = t.Value
			}
			out = append(out, Ngram{
				Text:      strings.Join(values, sep),
				CharRange: nlu.Range{Start: span[0].CharRange.Start, End: span[len(span)-1].CharRange.End},
				Tokens:    span,
			})
		}
	}
	return out
}
