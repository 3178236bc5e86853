package textutil

import "github.com/themobileprof/nlucore/pkg/nlu"

// ByteToChar converts a byte offset into text to the corresponding char
// (Unicode scalar) offset. Offsets past the end of text return the
// text's total char length. Used wherever a collaborator (notably
// regexp, which reports match indexes in bytes) must be reconciled with
// the char-range coordinate system the rest of the pipeline uses (§4.2).
func ByteToChar(text string, byteOffset int) int {
	charIdx := 0
	b := 0
	for _, r := range text {
		if b >= byteOffset {
			return charIdx
		}
		b += runeByteLen(r)
		charIdx++
	}
	return charIdx
}

// ByteRangeToCharRange converts a half-open byte range into the
// equivalent half-open char range.
func ByteRangeToCharRange(text string, r nlu.Range) nlu.Range {
	return nlu.Range{Start: ByteToChar(text, r.Start), End: ByteToChar(text, r.End)}
}

// SliceChars returns the substring of text spanning the half-open char
// range r, clamped to text's bounds.
func SliceChars(text string, r nlu.Range) string {
	runes := []rune(text)
	start, end := r.Start, r.End
	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	if start >= end {
		return ""
	}
	return string(runes[start:end])
}
