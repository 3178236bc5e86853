package slotfiller

import (
	"testing"

	"github.com/themobileprof/nlucore/internal/crf"
	"github.com/themobileprof/nlucore/internal/features"
	"github.com/themobileprof/nlucore/internal/resources"
	"github.com/themobileprof/nlucore/pkg/nlu"
)

// trivialTagger always tags everything "O" and reports a flat
// probability for any sequence, enough to exercise augmentation without
// needing a trained weight table.
type trivialTagger struct{ labels []string }

func (t *trivialTagger) Labels() []string { return t.labels }
func (t *trivialTagger) Tag(feats []map[string]string) ([]string, error) {
	tags := make([]string, len(feats))
	for i := range tags {
		tags[i] = "O"
	}
	return tags, nil
}
func (t *trivialTagger) Probability(feats []map[string]string, tags []string) (float64, error) {
	score := 0.0
	for _, tag := range tags {
		if tag != "O" {
			score++
		}
	}
	return score, nil
}

func TestCRFSlotFiller_AugmentsSurplusBuiltin(t *testing.T) {
	pipeline, err := features.NewPipeline(nil, features.Deps{})
	if err != nil {
		t.Fatal(err)
	}
	filler := &CRFSlotFiller{
		Tagger:          &trivialTagger{labels: []string{"O", "B-number_of_cups", "I-number_of_cups"}},
		FeaturePipeline: pipeline,
		Scheme:          crf.SchemeBIO,
		Builtin:         resources.NewCachingBuiltinEntityParser(resources.NewRuleBasedBuiltinEntityParser(), 10),
		Language:        "en",
		SlotNameToEntity: map[string]string{
			"number_of_cups": string(nlu.KindNumber),
		},
	}

	slots, err := filler.GetSlots("make me two cups of coffee please")
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 1 {
		t.Fatalf("got %d slots, want 1: %+v", len(slots), slots)
	}
	if slots[0].SlotName != "number_of_cups" {
		t.Errorf("slot name = %q, want number_of_cups", slots[0].SlotName)
	}
	if slots[0].Value != "two" {
		t.Errorf("slot value = %q, want two", slots[0].Value)
	}
}

func TestCRFSlotFiller_NoSlotsWhenEmptyInput(t *testing.T) {
	pipeline, _ := features.NewPipeline(nil, features.Deps{})
	filler := &CRFSlotFiller{
		Tagger:          &trivialTagger{},
		FeaturePipeline: pipeline,
		Scheme:          crf.SchemeBIO,
		Language:        "en",
	}
	slots, err := filler.GetSlots("")
	if err != nil {
		t.Fatal(err)
	}
	if len(slots) != 0 {
		t.Fatalf("got %d slots, want 0", len(slots))
	}
}
