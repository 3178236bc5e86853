package crf

import (
	"encoding/base64"
)

// EncodeTag base64-encodes a full tag ("B-slot_name") for storage inside
// the underlying CRF tagger's label alphabet. The original Rust engine
// does this because python-crfsuite's training format only tolerates a
// restricted ASCII label charset; slot names are free-form Unicode, so
// every tag exchanged with the tagger backend is wrapped in base64.
func EncodeTag(tag string) string {
	return base64.StdEncoding.EncodeToString([]byte(tag))
}

// DecodeTag reverses EncodeTag. A tag the tagger backend didn't produce
// via EncodeTag (e.g. a raw "O") is returned unchanged if it fails to
// base64-decode.
func DecodeTag(encoded string) string {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return encoded
	}
	return string(raw)
}

// SlotRange is one contiguous token span decoded from a tag sequence.
type SlotRange struct {
	SlotName       string
	StartTokenIdx  int
	EndTokenIdx    int // exclusive
}

// TagsToSlotRanges converts a decoded tag sequence (one tag per token,
// already run through DecodeTag) into slot spans. A malformed sequence —
// e.g. a BILOU "L-" with no preceding "B-", or an "I-" for a label with
// no open span — is coerced rather than rejected: an orphaned "L-"
// becomes a single-token span, and an orphaned "I-" opens a new span
// that following "I-"/"L-" tags of the same label extend. This engine's original has no BILOU
// decoder to follow literally, so this coercion rule is this
// implementation's own choice (see the project's Open Questions record).
func TagsToSlotRanges(tags []string, scheme Scheme) []SlotRange {
	var ranges []SlotRange
	var open *SlotRange

	flush := func() {
		if open != nil {
			ranges = append(ranges, *open)
			open = nil
		}
	}

	for i, tag := range tags {
		prefix, label, isOutside := decodeTag(tag)
		if isOutside {
			flush()
			continue
		}
		switch prefix {
		case "U-":
			flush()
			ranges = append(ranges, SlotRange{SlotName: label, StartTokenIdx: i, EndTokenIdx: i + 1})
		case "B-":
			flush()
			open = &SlotRange{SlotName: label, StartTokenIdx: i, EndTokenIdx: i + 1}
		case "L-":
			if open != nil && open.SlotName == label {
				open.EndTokenIdx = i + 1
				flush()
			} else {
				flush()
				ranges = append(ranges, SlotRange{SlotName: label, StartTokenIdx: i, EndTokenIdx: i + 1})
			}
		case "I-":
			if open != nil && open.SlotName == label {
				open.EndTokenIdx = i + 1
			} else {
				flush()
				open = &SlotRange{SlotName: label, StartTokenIdx: i, EndTokenIdx: i + 1}
			}
		default:
			flush()
		}
	}
	flush()
	return ranges
}
