// Package slots reconciles the raw spans a parser found (internal slots)
// against the builtin and custom entity parsers to produce the final,
// typed slots returned to callers (spec §4.3), grounded in
// resolve_builtin_slots from the original rule-based pipeline.
package slots

import (
	"github.com/themobileprof/nlucore/internal/resources"
	"github.com/themobileprof/nlucore/internal/textutil"
	"github.com/themobileprof/nlucore/pkg/nlu"
)

// Resolver reconciles InternalSlot spans against the builtin and custom
// entity parsers loaded for one language, plus the dataset's custom
// entity definitions (for the automatically-extensible fallback rule).
type Resolver struct {
	Builtin  *resources.CachingBuiltinEntityParser
	Custom   *resources.CachingCustomEntityParser
	Entities map[string]nlu.EntityDef
	Language string
}

// Resolve converts each internal slot into a ResolvedSlot, dropping any
// slot that fails to resolve (spec §4.3). Custom-entity matches are
// pre-extracted once over the whole input, matching the algorithm's
// "pre-extracted custom-entity matches" input.
func (r *Resolver) Resolve(text string, internal []nlu.InternalSlot) []nlu.ResolvedSlot {
	out := make([]nlu.ResolvedSlot, 0, len(internal))

	var builtinEntities []nlu.BuiltinEntity
	if r.Builtin != nil {
		builtinEntities = r.Builtin.Extract(text, nil, true)
	}
	var customMatches []resources.CustomEntityMatch
	if r.Custom != nil {
		customMatches = r.Custom.Extract(text, nil, true)
	}

	for _, slot := range internal {
		if nlu.IsBuiltinKind(slot.Entity) {
			if resolved, ok := r.resolveBuiltin(slot, builtinEntities); ok {
				out = append(out, resolved)
			}
			continue
		}
		if resolved, ok := r.resolveCustom(slot, customMatches); ok {
			out = append(out, resolved)
		}
	}
	return out
}

func (r *Resolver) resolveBuiltin(slot nlu.InternalSlot, fullTextEntities []nlu.BuiltinEntity) (nlu.ResolvedSlot, bool) {
	kind := nlu.BuiltinKind(slot.Entity)

	for _, e := range fullTextEntities {
		if e.Kind == kind && e.CharRange == slot.CharRange {
			return builtinResolvedSlot(slot, e), true
		}
	}

	if r.Builtin == nil {
		return nlu.ResolvedSlot{}, false
	}
	isolated := r.Builtin.Extract(slot.Value, []nlu.BuiltinKind{kind}, true)
	for _, e := range isolated {
		if e.Kind == kind {
			return builtinResolvedSlot(slot, e), true
		}
	}
	return nlu.ResolvedSlot{}, false
}

func builtinResolvedSlot(slot nlu.InternalSlot, entity nlu.BuiltinEntity) nlu.ResolvedSlot {
	rng := slot.CharRange
	return nlu.ResolvedSlot{
		RawValue:  slot.Value,
		Value:     nlu.SlotValue{Builtin: entity.Parsed},
		CharRange: &rng,
		Entity:    slot.Entity,
		SlotName:  slot.SlotName,
	}
}

// resolveCustom implements spec §4.3's custom-slot algorithm: a match in
// the whole-input pre-extraction wins first; failing that, the parser is
// re-run on just the slot's surface; failing that, an
// automatically-extensible entity accepts the raw value verbatim, and
// anything else is dropped (spec §8 invariant 3).
func (r *Resolver) resolveCustom(slot nlu.InternalSlot, fullTextMatches []resources.CustomEntityMatch) (nlu.ResolvedSlot, bool) {
	for _, m := range fullTextMatches {
		if m.EntityName == slot.Entity && m.CharRange == slot.CharRange {
			return customResolvedSlot(slot, m.Resolved), true
		}
	}

	if r.Custom != nil {
		if matches := r.Custom.Extract(slot.Value, []string{slot.Entity}, true); len(matches) > 0 {
			return customResolvedSlot(slot, matches[0].Resolved), true
		}
	}

	if def, ok := r.Entities[slot.Entity]; ok && def.AutomaticallyExtensible {
		return customResolvedSlot(slot, slot.Value), true
	}
	return nlu.ResolvedSlot{}, false
}

func customResolvedSlot(slot nlu.InternalSlot, canonical string) nlu.ResolvedSlot {
	rng := slot.CharRange
	return nlu.ResolvedSlot{
		RawValue:  slot.Value,
		Value:     nlu.SlotValue{Custom: canonical},
		CharRange: &rng,
		Entity:    slot.Entity,
		SlotName:  slot.SlotName,
	}
}

// NormalizeUtteranceKey normalizes a raw dataset utterance surface form
// the way EntityDef.Utterances keys are stored (spec §3): NFD + strip
// diacritics + lowercase, never altering the raw value returned to
// callers.
func NormalizeUtteranceKey(raw string) string {
	return textutil.Normalize(raw)
}
