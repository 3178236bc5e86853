// Package probabilistic implements the probabilistic intent parser
// (C8): the TF-IDF + logistic-regression intent classifier composed
// with a per-intent CRF slot filler, grounded in snips-nlu-lib's
// ProbabilisticIntentParser.
package probabilistic

import (
	"github.com/themobileprof/nlucore/internal/classifier"
	"github.com/themobileprof/nlucore/internal/slotfiller"
	"github.com/themobileprof/nlucore/pkg/nlu"
)

// Parser composes an intent classifier with the slot fillers registered
// for each intent it can classify.
type Parser struct {
	Classifier  *classifier.IntentClassifier
	SlotFillers map[string]slotfiller.SlotFiller
}

// GetIntent delegates directly to the classifier.
func (p *Parser) GetIntent(text string, intentsFilter []string) *nlu.IntentResult {
	if p.Classifier == nil {
		return nil
	}
	return p.Classifier.GetIntent(text, intentsFilter)
}

// RankIntents exposes the classifier's full ranked distribution,
// supporting Engine::get_intents (spec §6) without committing to a
// single best match.
func (p *Parser) RankIntents(text string, intentsFilter []string) []nlu.IntentResult {
	if p.Classifier == nil {
		return nil
	}
	return p.Classifier.RankIntents(text, intentsFilter)
}

// GetSlots runs the slot filler registered for intentName. A tagger
// failure is recoverable: the parser simply returns no slots (spec §7),
// leaving the caller free to fall through to remaining parsers.
func (p *Parser) GetSlots(text, intentName string) ([]nlu.InternalSlot, error) {
	filler, ok := p.SlotFillers[intentName]
	if !ok {
		return nil, nil
	}
	slots, err := filler.GetSlots(text)
	if err != nil {
		return nil, nil
	}
	return slots, nil
}
