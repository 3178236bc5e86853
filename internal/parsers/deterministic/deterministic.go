// Package deterministic implements the rule-based intent parser (C7):
// per-intent lists of compiled, case-insensitive regexes matched against
// text with builtin entities substituted by placeholders, grounded in
// snips-nlu-rs's deterministic_intent_parser (regex_intent_parser.rs)
// and its placeholder-substitution preprocessing.
package deterministic

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/themobileprof/nlucore/internal/resources"
	"github.com/themobileprof/nlucore/internal/textutil"
	"github.com/themobileprof/nlucore/pkg/nlu"
)

// Config is the on-disk shape of a deterministic_intent_parser unit's
// embedded configuration (spec §6).
type Config struct {
	IntentOrder           []string                     `json:"intent_order"`
	Patterns              map[string][]string          `json:"patterns"`
	GroupNamesToSlotNames map[string]string             `json:"group_names_to_slot_names"`
	SlotNamesToEntities   map[string]map[string]string `json:"slot_names_to_entities"`
}

// Parser is the deterministic, regex-cascade intent parser. It owns its
// own compiled patterns and is immutable after New returns.
type Parser struct {
	builtin               *resources.CachingBuiltinEntityParser
	language              string
	intentOrder           []string
	regexes               map[string][]*regexp.Regexp
	groupNamesToSlotNames map[string]string
	slotNamesToEntities   map[string]map[string]string
}

// New compiles cfg's patterns. An invalid regex is a fatal load-time
// error (spec §7).
func New(cfg Config, language string, builtin *resources.CachingBuiltinEntityParser) (*Parser, error) {
	regexes := make(map[string][]*regexp.Regexp, len(cfg.Patterns))
	for intent, patterns := range cfg.Patterns {
		compiled := make([]*regexp.Regexp, 0, len(patterns))
		for _, pattern := range patterns {
			re, err := regexp.Compile("(?i)" + pattern)
			if err != nil {
				return nil, fmt.Errorf("deterministic parser: compiling pattern for intent %q: %w", intent, err)
			}
			compiled = append(compiled, re)
		}
		regexes[intent] = compiled
	}

	order := cfg.IntentOrder
	if len(order) == 0 {
		order = make([]string, 0, len(cfg.Patterns))
		for intent := range cfg.Patterns {
			order = append(order, intent)
		}
		sort.Strings(order)
	}

	return &Parser{
		builtin:               builtin,
		language:              language,
		intentOrder:           order,
		regexes:               regexes,
		groupNamesToSlotNames: cfg.GroupNamesToSlotNames,
		slotNamesToEntities:   cfg.SlotNamesToEntities,
	}, nil
}

// GetIntent tries every intent's regex list in declared order,
// respecting intentsFilter when non-empty, and returns the first intent
// whose list contains a matching pattern with probability 1.0.
func (p *Parser) GetIntent(text string, intentsFilter []string) *nlu.IntentResult {
	rewritten, _ := replaceBuiltins(text, p.builtin)
	allowed := filterSet(intentsFilter)

	for _, intent := range p.intentOrder {
		if allowed != nil && !allowed[intent] {
			continue
		}
		for _, re := range p.regexes[intent] {
			if re.MatchString(rewritten) {
				return &nlu.IntentResult{IntentName: intent, Probability: 1.0}
			}
		}
	}
	return nil
}

// GetSlots extracts internal slots for intentName by re-running every
// one of its regexes against the placeholder-substituted text and
// reading off named capture groups (spec §4.7). Results are
// deduplicated for overlap and sorted by start.
func (p *Parser) GetSlots(text, intentName string) []nlu.InternalSlot {
	rewritten, mappings := replaceBuiltins(text, p.builtin)
	slotEntities := p.slotNamesToEntities[intentName]

	var raw []nlu.InternalSlot
	for _, re := range p.regexes[intentName] {
		match := re.FindStringSubmatchIndex(rewritten)
		if match == nil {
			continue
		}
		names := re.SubexpNames()
		for gi, name := range names {
			if gi == 0 || name == "" {
				continue
			}
			start, end := match[2*gi], match[2*gi+1]
			if start < 0 {
				continue
			}
			slotName, ok := p.groupNamesToSlotNames[name]
			if !ok {
				continue
			}
			rewrittenRange := textutil.ByteRangeToCharRange(rewritten, nlu.Range{Start: start, End: end})
			originalRange := mapToOriginal(rewrittenRange, mappings)
			raw = append(raw, nlu.InternalSlot{
				Value:     textutil.SliceChars(text, originalRange),
				CharRange: originalRange,
				Entity:    slotEntities[slotName],
				SlotName:  slotName,
			})
		}
	}

	return dedupeOverlapping(raw, p.language)
}

func filterSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}

// dedupeOverlapping keeps, among overlapping slots, the one spanning
// more tokens (ties broken by more characters), preserving any
// non-overlapping slot. The result is sorted by start. Running it twice
// is a no-op (spec §8 property 7): every kept pair is already
// non-overlapping, so a second pass finds nothing to merge.
func dedupeOverlapping(slots []nlu.InternalSlot, language string) []nlu.InternalSlot {
	var kept []nlu.InternalSlot
	for _, s := range slots {
		replacedAt := -1
		dropped := false
		for i, k := range kept {
			if !s.CharRange.Overlaps(k.CharRange) {
				continue
			}
			if moreSignificant(s, k, language) {
				replacedAt = i
			} else {
				dropped = true
			}
			break
		}
		switch {
		case dropped:
			continue
		case replacedAt >= 0:
			kept[replacedAt] = s
		default:
			kept = append(kept, s)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].CharRange.Start < kept[j].CharRange.Start })
	return kept
}

func moreSignificant(a, b nlu.InternalSlot, language string) bool {
	ta, tb := len(textutil.Tokenize(a.Value, language)), len(textutil.Tokenize(b.Value, language))
	if ta != tb {
		return ta > tb
	}
	return a.CharRange.Len() > b.CharRange.Len()
}

// placeholderMapping records where one builtin entity's placeholder
// landed in the rewritten text, and the original span it stands in for.
type placeholderMapping struct {
	Placeholder nlu.Range
	Original    nlu.Range
}

// replaceBuiltins extracts builtin entities from text and rewrites it
// with each one substituted by its kind's placeholder token (spec
// §4.7), returning the rewritten text and the range mapping needed to
// translate capture-group spans back to the original text.
func replaceBuiltins(text string, builtin *resources.CachingBuiltinEntityParser) (string, []placeholderMapping) {
	if builtin == nil {
		return text, nil
	}
	entities := builtin.Extract(text, nil, true)
	sort.Slice(entities, func(i, j int) bool { return entities[i].CharRange.Start < entities[j].CharRange.Start })

	runes := []rune(text)
	var b strings.Builder
	var mappings []placeholderMapping
	cursor := 0
	outPos := 0

	for _, e := range entities {
		if e.CharRange.Start < cursor {
			continue
		}
		gap := string(runes[cursor:e.CharRange.Start])
		b.WriteString(gap)
		outPos += len([]rune(gap))

		placeholder := nlu.PlaceholderName(e.Kind)
		phStart := outPos
		b.WriteString(placeholder)
		outPos += len([]rune(placeholder))

		mappings = append(mappings, placeholderMapping{
			Placeholder: nlu.Range{Start: phStart, End: outPos},
			Original:    e.CharRange,
		})
		cursor = e.CharRange.End
	}
	b.WriteString(string(runes[cursor:]))
	return b.String(), mappings
}

// mapToOriginal translates a char range in the rewritten text back to
// the original text's coordinates. A range exactly matching a
// placeholder's span maps to that placeholder's original span;
// otherwise each endpoint is shifted by the total length difference
// every placeholder fully preceding it introduced.
func mapToOriginal(rewritten nlu.Range, mappings []placeholderMapping) nlu.Range {
	for _, m := range mappings {
		if rewritten == m.Placeholder {
			return m.Original
		}
	}
	return nlu.Range{
		Start: translatePoint(rewritten.Start, mappings),
		End:   translatePoint(rewritten.End, mappings),
	}
}

func translatePoint(pos int, mappings []placeholderMapping) int {
	shift := 0
	for _, m := range mappings {
		if pos <= m.Placeholder.Start {
			break
		}
		if pos >= m.Placeholder.End {
			shift += m.Original.Len() - m.Placeholder.Len()
			continue
		}
		return m.Original.Start
	}
	return pos + shift
}
