// Package slotfiller implements the CRF slot filler (spec §4.5): it
// drives the feature pipeline (internal/features) and a CRF tagger
// (internal/crf) to tag an utterance, then augments the tagged slots
// with any surplus builtin entities the tagger's training data never
// saw enough examples of, via a permutation search over candidate slot
// names scored by CRF sequence probability. Grounded in
// snips-nlu-lib's CRFSlotFiller / SlotFiller trait and its
// augment_slots algorithm.
package slotfiller

import (
	"sort"

	"github.com/themobileprof/nlucore/internal/crf"
	"github.com/themobileprof/nlucore/internal/features"
	"github.com/themobileprof/nlucore/internal/resources"
	"github.com/themobileprof/nlucore/internal/textutil"
	"github.com/themobileprof/nlucore/pkg/nlu"
)

// SlotFiller is the per-intent capability the probabilistic intent
// parser (C8) drives to recover slots once an intent has been chosen.
type SlotFiller interface {
	GetTaggingScheme() crf.Scheme
	GetSlots(text string) ([]nlu.InternalSlot, error)
	GetSequenceProbability(tokens []nlu.Token, tags []string) (float64, error)
}

// CRFSlotFiller is the default SlotFiller: feature pipeline + CRF tagger
// + tagging scheme + builtin-entity augmentation.
type CRFSlotFiller struct {
	Tagger           crf.Tagger
	FeaturePipeline  *features.Pipeline
	Scheme           crf.Scheme
	Builtin          *resources.CachingBuiltinEntityParser
	Language         string
	SlotNameToEntity map[string]string // slot name -> entity identifier, this intent only
	MaxPermutations  int               // exhaustive-search cutoff; 0 means use the package default
}

const defaultMaxPermutations = 256

func (f *CRFSlotFiller) GetTaggingScheme() crf.Scheme { return f.Scheme }

func (f *CRFSlotFiller) GetSlots(text string) ([]nlu.InternalSlot, error) {
	tokens := textutil.Tokenize(text, f.Language)
	if len(tokens) == 0 {
		return nil, nil
	}

	var builtins []nlu.BuiltinEntity
	if f.Builtin != nil {
		builtins = f.Builtin.Extract(text, nil, true)
	}

	feats := f.FeaturePipeline.Compute(tokens, builtins)
	rawTags, err := f.Tagger.Tag(feats)
	if err != nil {
		return nil, err
	}
	tags := decodeAll(rawTags)

	tags = f.augment(feats, tags, tokens, builtins)

	ranges := crf.TagsToSlotRanges(tags, f.Scheme)
	out := make([]nlu.InternalSlot, 0, len(ranges))
	for _, r := range ranges {
		start := tokens[r.StartTokenIdx].CharRange.Start
		end := tokens[r.EndTokenIdx-1].CharRange.End
		out = append(out, nlu.InternalSlot{
			Value:     textutil.SliceChars(text, nlu.Range{Start: start, End: end}),
			CharRange: nlu.Range{Start: start, End: end},
			Entity:    f.SlotNameToEntity[r.SlotName],
			SlotName:  r.SlotName,
		})
	}
	return out, nil
}

func (f *CRFSlotFiller) GetSequenceProbability(tokens []nlu.Token, tags []string) (float64, error) {
	var builtins []nlu.BuiltinEntity
	feats := f.FeaturePipeline.Compute(tokens, builtins)
	return f.Tagger.Probability(feats, encodeAll(tags))
}

func decodeAll(tags []string) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = crf.DecodeTag(t)
	}
	return out
}

func encodeAll(tags []string) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = crf.EncodeTag(t)
	}
	return out
}

// entityToSlotNames inverts SlotNameToEntity so augmentation can find,
// for a given builtin kind, every slot name in this intent willing to
// receive it.
func (f *CRFSlotFiller) entityToSlotNames() map[string][]string {
	out := make(map[string][]string)
	for slotName, entity := range f.SlotNameToEntity {
		out[entity] = append(out[entity], slotName)
	}
	for _, names := range out {
		sort.Strings(names)
	}
	return out
}
