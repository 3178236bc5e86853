// Package crf implements the linear-chain CRF pieces the slot filler
// (internal/slotfiller) builds on: tagging scheme conversions and an
// opaque CRF tagger abstraction (spec §4.5). The builtin-entity slot
// augmentation search lives in internal/slotfiller. Grounded in
// snips-nlu-lib's slot_filler package (crf_utils, crf_slot_filler) and
// in queries-core's tagger/features modules for the feature-side
// conventions the augmentation search depends on.
package crf

import (
	"strings"

	"github.com/themobileprof/nlucore/internal/errs"
)

// Scheme is one of the IO/BIO/BILOU tagging schemes used to encode a
// slot span as a sequence of per-token tags.
type Scheme int

const (
	SchemeIO Scheme = iota
	SchemeBIO
	SchemeBILOU
)

func (s Scheme) String() string {
	switch s {
	case SchemeIO:
		return "IO"
	case SchemeBIO:
		return "BIO"
	case SchemeBILOU:
		return "BILOU"
	default:
		return "unknown"
	}
}

// ParseScheme maps the manifest's numeric tagging scheme code to a
// Scheme. The codes (0, 1, 2) match the order the original
// TaggingScheme enum declares IO/BIO/BILOU in.
func ParseScheme(code int) (Scheme, error) {
	switch code {
	case 0:
		return SchemeIO, nil
	case 1:
		return SchemeBIO, nil
	case 2:
		return SchemeBILOU, nil
	default:
		return 0, &errs.UnknownTaggingSchemeError{Code: code}
	}
}

const outsideTag = "O"

// prefixFor returns the scheme-specific tag prefix ("B-", "I-", "L-",
// "U-") for position index within a slot span of length sliceLength.
func prefixFor(scheme Scheme, index, sliceLength int) string {
	switch scheme {
	case SchemeIO:
		return "I-"
	case SchemeBIO:
		if index == 0 {
			return "B-"
		}
		return "I-"
	case SchemeBILOU:
		if sliceLength == 1 {
			return "U-"
		}
		if index == 0 {
			return "B-"
		}
		if index == sliceLength-1 {
			return "L-"
		}
		return "I-"
	default:
		return "I-"
	}
}

// PositiveTagging returns the full tag ("B-slot_name", "U-slot_name",
// ...) for position index of a slot span of length sliceLength labeled
// slotName.
func PositiveTagging(scheme Scheme, slotName string, index, sliceLength int) string {
	return prefixFor(scheme, index, sliceLength) + slotName
}

// SchemePrefix returns the bare prefix (no label) that a token at
// tokenIndex would receive if it were part of a slot spanning the
// (sorted, contiguous) token indexes in span — used by the
// is_in_collection feature to decide whether a gazetteer match looks
// like the beginning, middle or end of an entity.
func SchemePrefix(tokenIndex int, span []int, scheme Scheme) string {
	pos := -1
	for i, idx := range span {
		if idx == tokenIndex {
			pos = i
			break
		}
	}
	if pos < 0 {
		return outsideTag
	}
	return prefixFor(scheme, pos, len(span))
}

// decodeTag splits a full tag into its scheme prefix and its (possibly
// base64-encoded) slot label. "O" has no label.
func decodeTag(tag string) (prefix, label string, isOutside bool) {
	if tag == outsideTag {
		return "", "", true
	}
	idx := strings.Index(tag, "-")
	if idx < 0 {
		return "", tag, false
	}
	return tag[:idx+1], tag[idx+1:], false
}
