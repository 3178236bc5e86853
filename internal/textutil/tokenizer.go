package textutil

import (
	"github.com/themobileprof/nlucore/pkg/nlu"
)

// Tokenize splits an utterance into tokens, each carrying its surface
// value, byte range and char range relative to the original text.
// Language does not affect the scan: the scanning rule (letters,
// numbers, apostrophes and underscores are word runes, everything else
// is a boundary and never forms a token) is shared across languages,
// matching the "light" tokenizer tier of the original engine.
func Tokenize(text string, language string) []nlu.Token {
	var tokens []nlu.Token

	runeCharIdx := 0
	byteIdx := 0

	var curStartChar, curStartByte int
	var curRunes []rune
	inWord := false

	flush := func(endChar, endByte int) {
		if len(curRunes) == 0 {
			return
		}
		tokens = append(tokens, nlu.Token{
			Value:     string(curRunes),
			ByteRange: nlu.Range{Start: curStartByte, End: endByte},
			CharRange: nlu.Range{Start: curStartChar, End: endChar},
		})
		curRunes = nil
	}

	for _, r := range text {
		size := runeByteLen(r)
		if isWordRune(r) {
			if !inWord {
				curStartChar = runeCharIdx
				curStartByte = byteIdx
				inWord = true
			}
			curRunes = append(curRunes, r)
		} else {
			if inWord {
				flush(runeCharIdx, byteIdx)
				inWord = false
			}
		}
		runeCharIdx++
		byteIdx += size
	}
	if inWord {
		flush(runeCharIdx, byteIdx)
	}
	return tokens
}

func runeByteLen(r rune) int {
	switch {
	case r < 0x80:
		return 1
	case r < 0x800:
		return 2
	case r < 0x10000:
		return 3
	default:
		return 4
	}
}

// Separator returns the token join string for the given language:
// Japanese and Chinese ("ja", "zh") join tokens with no separator, every
// other language with a single space.
func Separator(language string) string {
	switch language {
	case "ja", "zh":
		return ""
	default:
		return " "
	}
}
