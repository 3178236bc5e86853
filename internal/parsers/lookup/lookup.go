// Package lookup implements the third intent_parsers unit_name the
// model artifact format allows but spec.md leaves undescribed:
// lookup_intent_parser. It is a fast exact-match table from a
// normalized utterance straight to an intent name, tried at whatever
// position it holds in the declared intent_parsers order, grounded on snips-nlu-rs's
// lookup_intent_parser (see SPEC_FULL.md supplemented features).
package lookup

import (
	"github.com/themobileprof/nlucore/internal/textutil"
	"github.com/themobileprof/nlucore/pkg/nlu"
)

// Config is the on-disk shape of a lookup_intent_parser unit's embedded
// configuration.
type Config struct {
	// Map keys are the normalized form (textutil.Normalize) of a
	// training utterance; values are the intent it was labeled with.
	Map map[string]string `json:"map"`
}

// Parser is a read-only exact-match table, immutable after New returns.
type Parser struct {
	table map[string]string
}

// New builds a Parser from cfg. No load-time validation is needed: an
// empty table simply never matches.
func New(cfg Config) *Parser {
	table := make(map[string]string, len(cfg.Map))
	for k, v := range cfg.Map {
		table[k] = v
	}
	return &Parser{table: table}
}

// GetIntent normalizes text and looks it up verbatim. intentsFilter, when
// non-empty, rejects a hit whose intent isn't in the list.
func (p *Parser) GetIntent(text string, intentsFilter []string) *nlu.IntentResult {
	intent, ok := p.table[textutil.Normalize(text)]
	if !ok {
		return nil
	}
	if len(intentsFilter) > 0 {
		allowed := false
		for _, n := range intentsFilter {
			if n == intent {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil
		}
	}
	return &nlu.IntentResult{IntentName: intent, Probability: 1.0}
}

// GetSlots always returns no slots: the lookup table only ever
// classified an intent, never extracted spans.
func (p *Parser) GetSlots(text, intentName string) []nlu.InternalSlot {
	return nil
}
