package resources

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/themobileprof/nlucore/internal/textutil"
	"github.com/themobileprof/nlucore/pkg/nlu"
)

// BuiltinEntityParser extracts snips/* builtin entities from free text,
// optionally restricted to a subset of kinds (spec §4.1, §6).
type BuiltinEntityParser interface {
	Parse(text string, kinds []nlu.BuiltinKind) []nlu.BuiltinEntity
}

var numberWords = map[string]float64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
	"thirty": 30, "forty": 40, "fifty": 50, "sixty": 60, "seventy": 70,
	"eighty": 80, "ninety": 90, "hundred": 100, "thousand": 1000,
}

var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
	"eleventh": 11, "twelfth": 12,
}

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var (
	reDigits     = regexp.MustCompile(`(?i)[0-9]+(\.[0-9]+)?`)
	reOrdinalNum = regexp.MustCompile(`(?i)\b([0-9]+)(st|nd|rd|th)\b`)
	rePercent    = regexp.MustCompile(`(?i)\b([0-9]+(?:\.[0-9]+)?)\s*(%|percent)\b`)
	reMoney      = regexp.MustCompile(`(?i)\b([0-9]+(?:\.[0-9]+)?)\s*(dollars?|euros?|\$|€)\b`)
	reTemp       = regexp.MustCompile(`(?i)\b([0-9]+(?:\.[0-9]+)?)\s*(degrees?|°)\s*(celsius|fahrenheit|c|f)?\b`)
	reDuration   = regexp.MustCompile(`(?i)\b([0-9]+)\s*(seconds?|minutes?|hours?|days?|weeks?|months?|years?)\b`)
	reClockTime  = regexp.MustCompile(`(?i)\b(1[0-2]|[1-9])(:[0-5][0-9])?\s?(am|pm)\b`)
	reRelDay     = regexp.MustCompile(`(?i)\b(today|tomorrow|tonight|this morning|this afternoon|this evening|yesterday)\b`)
)

// ruleBasedBuiltinEntityParser is a small, regexp-driven stand-in for the
// original ontology-backed builtin entity parser (spec §4.1 lists the
// kinds; no dedicated entity-extraction library appears anywhere in the
// retrieved example corpus, so this is built on regexp, the one
// stdlib dependency already justified for the rule-based parser, C7).
type ruleBasedBuiltinEntityParser struct{}

// NewRuleBasedBuiltinEntityParser returns the default English-oriented
// builtin entity parser.
func NewRuleBasedBuiltinEntityParser() BuiltinEntityParser {
	return &ruleBasedBuiltinEntityParser{}
}

func (p *ruleBasedBuiltinEntityParser) Parse(text string, kinds []nlu.BuiltinKind) []nlu.BuiltinEntity {
	wanted := kindSet(kinds)
	var out []nlu.BuiltinEntity

	if wanted == nil || wanted[nlu.KindPercentage] {
		out = append(out, matchPercentage(text)...)
	}
	if wanted == nil || wanted[nlu.KindAmountOfMoney] {
		out = append(out, matchMoney(text)...)
	}
	if wanted == nil || wanted[nlu.KindTemperature] {
		out = append(out, matchTemperature(text)...)
	}
	if wanted == nil || wanted[nlu.KindDuration] {
		out = append(out, matchDuration(text)...)
	}
	if wanted == nil || wanted[nlu.KindOrdinal] {
		out = append(out, matchOrdinal(text)...)
	}
	if wanted == nil || wanted[nlu.KindTime] || wanted[nlu.KindTimeInterval] {
		out = append(out, matchTime(text, wanted)...)
	}
	if wanted == nil || wanted[nlu.KindNumber] {
		out = append(out, matchNumber(text, out)...)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CharRange.Start < out[j].CharRange.Start })
	return removeOverlapping(out)
}

func kindSet(kinds []nlu.BuiltinKind) map[nlu.BuiltinKind]bool {
	if len(kinds) == 0 {
		return nil
	}
	m := make(map[nlu.BuiltinKind]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}

// removeOverlapping keeps, among mutually overlapping entities, the
// longest char span (first-seen wins on ties), mirroring the dedup
// policy used for overlapping slots in the rule-based intent parser.
func removeOverlapping(in []nlu.BuiltinEntity) []nlu.BuiltinEntity {
	var out []nlu.BuiltinEntity
	for _, e := range in {
		keep := true
		for i, kept := range out {
			if !e.CharRange.Overlaps(kept.CharRange) {
				continue
			}
			if e.CharRange.Len() > kept.CharRange.Len() {
				out[i] = e
			}
			keep = false
			break
		}
		if keep {
			out = append(out, e)
		}
	}
	return out
}

func matchNumber(text string, already []nlu.BuiltinEntity) []nlu.BuiltinEntity {
	var out []nlu.BuiltinEntity
	for _, loc := range reDigits.FindAllStringIndex(text, -1) {
		v, err := strconv.ParseFloat(text[loc[0]:loc[1]], 64)
		if err != nil {
			continue
		}
		out = append(out, nlu.BuiltinEntity{
			Value:     text[loc[0]:loc[1]],
			CharRange: textutil.ByteRangeToCharRange(text, nlu.Range{Start: loc[0], End: loc[1]}),
			Kind:      nlu.KindNumber,
			Parsed:    nlu.NumberValue{Value: v},
		})
	}
	lower := strings.ToLower(text)
	for word, v := range numberWords {
		for _, loc := range findWordIndexes(lower, word) {
			out = append(out, nlu.BuiltinEntity{
				Value:     text[loc[0]:loc[1]],
				CharRange: textutil.ByteRangeToCharRange(text, nlu.Range{Start: loc[0], End: loc[1]}),
				Kind:      nlu.KindNumber,
				Parsed:    nlu.NumberValue{Value: v},
			})
		}
	}
	return out
}

func matchOrdinal(text string) []nlu.BuiltinEntity {
	var out []nlu.BuiltinEntity
	for _, m := range reOrdinalNum.FindAllStringSubmatchIndex(text, -1) {
		v, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}
		out = append(out, nlu.BuiltinEntity{
			Value:     text[m[0]:m[1]],
			CharRange: textutil.ByteRangeToCharRange(text, nlu.Range{Start: m[0], End: m[1]}),
			Kind:      nlu.KindOrdinal,
			Parsed:    nlu.OrdinalValue{Value: v},
		})
	}
	lower := strings.ToLower(text)
	for word, v := range ordinalWords {
		for _, loc := range findWordIndexes(lower, word) {
			out = append(out, nlu.BuiltinEntity{
				Value:     text[loc[0]:loc[1]],
				CharRange: textutil.ByteRangeToCharRange(text, nlu.Range{Start: loc[0], End: loc[1]}),
				Kind:      nlu.KindOrdinal,
				Parsed:    nlu.OrdinalValue{Value: v},
			})
		}
	}
	return out
}

func matchPercentage(text string) []nlu.BuiltinEntity {
	var out []nlu.BuiltinEntity
	for _, m := range rePercent.FindAllStringSubmatchIndex(text, -1) {
		v, err := strconv.ParseFloat(text[m[2]:m[3]], 64)
		if err != nil {
			continue
		}
		out = append(out, nlu.BuiltinEntity{
			Value:     text[m[0]:m[1]],
			CharRange: textutil.ByteRangeToCharRange(text, nlu.Range{Start: m[0], End: m[1]}),
			Kind:      nlu.KindPercentage,
			Parsed:    nlu.PercentageValue{Value: v},
		})
	}
	return out
}

func matchMoney(text string) []nlu.BuiltinEntity {
	var out []nlu.BuiltinEntity
	for _, m := range reMoney.FindAllStringSubmatchIndex(text, -1) {
		v, err := strconv.ParseFloat(text[m[2]:m[3]], 64)
		if err != nil {
			continue
		}
		unit := text[m[4]:m[5]]
		out = append(out, nlu.BuiltinEntity{
			Value:     text[m[0]:m[1]],
			CharRange: textutil.ByteRangeToCharRange(text, nlu.Range{Start: m[0], End: m[1]}),
			Kind:      nlu.KindAmountOfMoney,
			Parsed:    nlu.AmountOfMoneyValue{Value: v, Unit: normalizeCurrency(unit), Precision: "exact"},
		})
	}
	return out
}

func normalizeCurrency(unit string) string {
	switch strings.ToLower(strings.TrimSuffix(unit, "s")) {
	case "dollar", "$":
		return "USD"
	case "euro", "€":
		return "EUR"
	default:
		return strings.ToUpper(unit)
	}
}

func matchTemperature(text string) []nlu.BuiltinEntity {
	var out []nlu.BuiltinEntity
	for _, m := range reTemp.FindAllStringSubmatchIndex(text, -1) {
		v, err := strconv.ParseFloat(text[m[2]:m[3]], 64)
		if err != nil {
			continue
		}
		unit := "celsius"
		if m[6] >= 0 {
			switch strings.ToLower(text[m[6]:m[7]]) {
			case "f", "fahrenheit":
				unit = "fahrenheit"
			}
		}
		out = append(out, nlu.BuiltinEntity{
			Value:     text[m[0]:m[1]],
			CharRange: textutil.ByteRangeToCharRange(text, nlu.Range{Start: m[0], End: m[1]}),
			Kind:      nlu.KindTemperature,
			Parsed:    nlu.TemperatureValue{Value: v, Unit: unit},
		})
	}
	return out
}

func matchDuration(text string) []nlu.BuiltinEntity {
	var out []nlu.BuiltinEntity
	for _, m := range reDuration.FindAllStringSubmatchIndex(text, -1) {
		n, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}
		d := nlu.DurationValue{Precision: "exact"}
		switch strings.ToLower(strings.TrimSuffix(text[m[4]:m[5]], "s")) {
		case "second":
			d.Seconds = n
		case "minute":
			d.Minutes = n
		case "hour":
			d.Hours = n
		case "day":
			d.Days = n
		case "week":
			d.Weeks = n
		case "month":
			d.Months = n
		case "year":
			d.Years = n
		}
		out = append(out, nlu.BuiltinEntity{
			Value:     text[m[0]:m[1]],
			CharRange: textutil.ByteRangeToCharRange(text, nlu.Range{Start: m[0], End: m[1]}),
			Kind:      nlu.KindDuration,
			Parsed:    d,
		})
	}
	return out
}

// matchTime finds relative-day and clock-time spans and, when two such
// spans are joined by "or"/"to"/"-", merges them into a TimeInterval
// spanning both, matching the "Meeting this evening or tomorrow at 11am"
// style scenario from the rule-based parser test fixtures.
func matchTime(text string, wanted map[nlu.BuiltinKind]bool) []nlu.BuiltinEntity {
	type span struct {
		start, end int
		value      string
	}
	var spans []span
	lower := strings.ToLower(text)

	for _, loc := range reRelDay.FindAllStringIndex(text, -1) {
		spans = append(spans, span{loc[0], loc[1], text[loc[0]:loc[1]]})
	}
	for _, loc := range reClockTime.FindAllStringIndex(text, -1) {
		spans = append(spans, span{loc[0], loc[1], text[loc[0]:loc[1]]})
	}
	for _, day := range weekdays {
		for _, loc := range findWordIndexes(lower, day) {
			spans = append(spans, span{loc[0], loc[1], text[loc[0]:loc[1]]})
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var out []nlu.BuiltinEntity
	wantTime := wanted == nil || wanted[nlu.KindTime]
	wantInterval := wanted == nil || wanted[nlu.KindTimeInterval]

	used := make([]bool, len(spans))
	if wantInterval {
		for i := 0; i < len(spans)-1; i++ {
			if used[i] {
				continue
			}
			between := strings.ToLower(strings.TrimSpace(text[spans[i].end:spans[i+1].start]))
			if between == "or" || between == "to" || between == "-" {
				out = append(out, nlu.BuiltinEntity{
					Value:     text[spans[i].start:spans[i+1].end],
					CharRange: textutil.ByteRangeToCharRange(text, nlu.Range{Start: spans[i].start, End: spans[i+1].end}),
					Kind:      nlu.KindTimeInterval,
					Parsed:    nlu.TimeIntervalValue{From: spans[i].value, To: spans[i+1].value},
				})
				used[i], used[i+1] = true, true
			}
		}
	}
	if wantTime {
		for i, s := range spans {
			if used[i] {
				continue
			}
			out = append(out, nlu.BuiltinEntity{
				Value:     s.value,
				CharRange: textutil.ByteRangeToCharRange(text, nlu.Range{Start: s.start, End: s.end}),
				Kind:      nlu.KindTime,
				Parsed:    nlu.TimeValue{Value: s.value, Grain: "unknown", Precision: "approximate"},
			})
		}
	}
	return out
}

func findWordIndexes(lowerText, word string) [][]int {
	re := regexp.MustCompile(`\b` + regexp.QuoteMeta(word) + `\b`)
	return re.FindAllStringIndex(lowerText, -1)
}

// builtinCacheKey mirrors the original CachingBuiltinEntityParser's
// cache key: a lowercased input plus the sorted set of requested kinds,
// so that two calls filtering on the same kinds (in any order) share a
// cache entry.
type builtinCacheKey struct {
	input string
	kinds string
}

func newBuiltinCacheKey(input string, kinds []nlu.BuiltinKind) builtinCacheKey {
	sorted := make([]string, len(kinds))
	for i, k := range kinds {
		sorted[i] = string(k)
	}
	sort.Strings(sorted)
	return builtinCacheKey{input: strings.ToLower(input), kinds: strings.Join(sorted, ",")}
}

// CachingBuiltinEntityParser wraps a BuiltinEntityParser with an LRU
// cache keyed by (lowercased input, sorted kind filter), grounded
// directly on the original CachingBuiltinEntityParser's extract_entities
// method: use_cache=false always bypasses the cache, and a cache hit is
// shared across callers using the same filter set.
type CachingBuiltinEntityParser struct {
	mu     sync.Mutex
	parser BuiltinEntityParser
	cache  *cache[builtinCacheKey, []nlu.BuiltinEntity]
}

// NewCachingBuiltinEntityParser wraps parser with an LRU of the given
// capacity.
func NewCachingBuiltinEntityParser(parser BuiltinEntityParser, cacheCapacity int) *CachingBuiltinEntityParser {
	return &CachingBuiltinEntityParser{
		parser: parser,
		cache:  newCache[builtinCacheKey, []nlu.BuiltinEntity](cacheCapacity),
	}
}

// Extract returns the builtin entities found in sentence, restricted to
// kinds when non-empty. useCache disables the LRU entirely when false.
func (c *CachingBuiltinEntityParser) Extract(sentence string, kinds []nlu.BuiltinKind, useCache bool) []nlu.BuiltinEntity {
	if !useCache {
		return c.parser.Parse(strings.ToLower(sentence), kinds)
	}
	key := newBuiltinCacheKey(sentence, kinds)

	c.mu.Lock()
	defer c.mu.Unlock()
	if hit, ok := c.cache.get(key); ok {
		return cloneEntities(hit)
	}
	result := c.parser.Parse(key.input, kinds)
	c.cache.put(key, result)
	return cloneEntities(result)
}

func cloneEntities(in []nlu.BuiltinEntity) []nlu.BuiltinEntity {
	out := make([]nlu.BuiltinEntity, len(in))
	copy(out, in)
	return out
}
