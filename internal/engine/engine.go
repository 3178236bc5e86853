// Package engine implements the engine orchestrator (C9): it holds the
// dataset metadata, the ordered cascade of intent parser units, and the
// slot resolver, and exposes the public Parse/GetIntents/GetSlots API
// (spec §4.9, §6). Grounded in snips-nlu-lib's SnipsNluEngine /
// nlu_engine.rs for the orchestration shape, and the teacher's
// internal/intent package for the error-handling and telemetry style
// a single parse call follows.
package engine

import (
	"time"

	"github.com/themobileprof/nlucore/internal/errs"
	"github.com/themobileprof/nlucore/internal/slots"
	"github.com/themobileprof/nlucore/internal/telemetry"
	"github.com/themobileprof/nlucore/pkg/nlu"
)

// ModelVersion is the engine's compiled-in model format version. A
// loaded model artifact declaring a different version fails
// construction with errs.WrongModelVersionError (spec §4.9, §6).
const ModelVersion = "1.0.0"

// Engine is immutable after construction and safe to call from any
// number of goroutines concurrently (spec §5): every parser unit and
// the shared resource store are read-only once built.
type Engine struct {
	dataset   nlu.DatasetMetadata
	parsers   []cascadeParser
	resolver  *slots.Resolver
	telemetry *telemetry.Logger
}

// ModelVersion reports the compiled-in model format version this
// engine instance was built against.
func (e *Engine) ModelVersion() string { return ModelVersion }

// Parse runs the full cascade (spec §4.9). With no parsers configured,
// or on empty input, it returns {Input, nil, nil}. Otherwise the first
// parser in declared order to return an intent wins: its raw internal
// slots are resolved against dataset metadata and returned alongside
// the intent.
func (e *Engine) Parse(input string, intentsFilter []string) nlu.ParserResult {
	start := time.Now()
	traceID := telemetry.NewTraceID()
	result := nlu.ParserResult{Input: input}

	if input == "" {
		e.trace(traceID, input, "", nil, 0, start)
		return result
	}

	for _, p := range e.parsers {
		intent := p.GetIntent(input, intentsFilter)
		if intent == nil {
			continue
		}

		internalSlots, err := p.GetSlots(input, intent.IntentName)
		if err != nil {
			internalSlots = nil
		}

		result.Intent = intent
		result.Slots = e.resolver.Resolve(input, internalSlots)
		e.trace(traceID, input, p.name(), intent, len(result.Slots), start)
		return result
	}

	e.trace(traceID, input, "", nil, 0, start)
	return result
}

// GetIntents returns the ranked intent list for input (spec §6): the
// first parser in the cascade able to contribute a ranking wins.
// A parser with no ranking capability (deterministic, lookup) reports
// either a singleton at probability 1 or nothing.
func (e *Engine) GetIntents(input string) []nlu.IntentResult {
	if input == "" {
		return nil
	}
	for _, p := range e.parsers {
		if ranker, ok := p.(intentRanker); ok {
			if ranked := ranker.RankIntents(input, nil); ranked != nil {
				return ranked
			}
			continue
		}
		if intent := p.GetIntent(input, nil); intent != nil {
			return []nlu.IntentResult{*intent}
		}
	}
	return nil
}

// GetSlots runs the slot filler registered for intentName directly,
// with no intent classification step (spec §6). intentName must be
// one dataset_metadata already declares a slot-name mapping for.
func (e *Engine) GetSlots(input, intentName string) ([]nlu.ResolvedSlot, error) {
	if _, ok := e.dataset.SlotNameMappings[intentName]; !ok {
		return nil, &errs.UnknownIntentError{IntentName: intentName}
	}
	if input == "" {
		return nil, nil
	}

	for _, p := range e.parsers {
		internalSlots, err := p.GetSlots(input, intentName)
		if err != nil || len(internalSlots) == 0 {
			continue
		}
		return e.resolver.Resolve(input, internalSlots), nil
	}
	return nil, nil
}

func (e *Engine) trace(traceID, input, matchedParser string, intent *nlu.IntentResult, slotCount int, start time.Time) {
	if e.telemetry == nil {
		return
	}
	intentName := ""
	if intent != nil {
		intentName = intent.IntentName
	}
	e.telemetry.RecordParse(traceID, input, matchedParser, intentName, slotCount, time.Since(start))
}
