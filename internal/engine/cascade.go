package engine

import (
	"github.com/themobileprof/nlucore/internal/parsers/deterministic"
	"github.com/themobileprof/nlucore/internal/parsers/lookup"
	"github.com/themobileprof/nlucore/internal/parsers/probabilistic"
	"github.com/themobileprof/nlucore/pkg/nlu"
)

// cascadeParser is the polymorphic capability every intent parser unit
// shares (spec §9 DESIGN NOTES: "dynamic dispatch... implement as a
// small trait/interface"). The engine iterates a slice of these in
// declared order without caring which concrete unit produced a match.
type cascadeParser interface {
	GetIntent(text string, intentsFilter []string) *nlu.IntentResult
	GetSlots(text, intentName string) ([]nlu.InternalSlot, error)
	name() string
}

// deterministicUnit adapts *deterministic.Parser (error-free GetSlots)
// to cascadeParser.
type deterministicUnit struct{ p *deterministic.Parser }

func (u deterministicUnit) GetIntent(text string, filter []string) *nlu.IntentResult {
	return u.p.GetIntent(text, filter)
}
func (u deterministicUnit) GetSlots(text, intentName string) ([]nlu.InternalSlot, error) {
	return u.p.GetSlots(text, intentName), nil
}
func (u deterministicUnit) name() string { return "deterministic_intent_parser" }

// lookupUnit adapts *lookup.Parser to cascadeParser.
type lookupUnit struct{ p *lookup.Parser }

func (u lookupUnit) GetIntent(text string, filter []string) *nlu.IntentResult {
	return u.p.GetIntent(text, filter)
}
func (u lookupUnit) GetSlots(text, intentName string) ([]nlu.InternalSlot, error) {
	return u.p.GetSlots(text, intentName), nil
}
func (u lookupUnit) name() string { return "lookup_intent_parser" }

// probabilisticUnit adapts *probabilistic.Parser to cascadeParser.
type probabilisticUnit struct{ p *probabilistic.Parser }

func (u probabilisticUnit) GetIntent(text string, filter []string) *nlu.IntentResult {
	return u.p.GetIntent(text, filter)
}
func (u probabilisticUnit) GetSlots(text, intentName string) ([]nlu.InternalSlot, error) {
	return u.p.GetSlots(text, intentName)
}
func (u probabilisticUnit) name() string { return "probabilistic_intent_parser" }

// RankIntents exposes the classifier's full ranked distribution so
// Engine.GetIntents can return more than a single best guess.
func (u probabilisticUnit) RankIntents(text string, filter []string) []nlu.IntentResult {
	return u.p.RankIntents(text, filter)
}

// intentRanker is the optional capability a cascadeParser unit may
// implement to contribute a full ranked intent list to
// Engine.GetIntents (spec §6) instead of just a single best guess.
type intentRanker interface {
	RankIntents(text string, intentsFilter []string) []nlu.IntentResult
}
