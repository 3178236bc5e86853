package resources

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/themobileprof/nlucore/internal/textutil"
	"github.com/themobileprof/nlucore/pkg/nlu"
)

// DiskTier is an optional persistent cache sitting behind a caching
// parser's in-memory LRU, extending the cache model of spec §5 across
// process restarts. internal/resources/diskcache.Cache satisfies this.
type DiskTier interface {
	Get(key string) (string, bool, error)
	Put(key, value string) error
}

// CustomEntityMatch is one gazetteer-style hit for a dataset-declared
// custom entity: a span of the input resolving to a canonical value.
type CustomEntityMatch struct {
	Value      string
	Resolved   string
	CharRange  nlu.Range
	EntityName string
	TokenCount int
}

// customParser matches ngrams of the input against the per-entity
// utterance tables from the dataset, longest match first, mirroring the
// GazetteerParser used by the original custom entity parser.
type customParser struct {
	entities map[string]nlu.EntityDef
	maxNgram int
	language string
}

func newCustomParser(entities map[string]nlu.EntityDef, maxNgram int, language string) *customParser {
	if maxNgram <= 0 {
		maxNgram = 4
	}
	return &customParser{entities: entities, maxNgram: maxNgram, language: language}
}

// parse returns every non-overlapping custom-entity match in text,
// restricted to entityNames when non-empty. Overlap resolution prefers
// the match spanning more tokens, then more characters, then the
// earliest start (spec §4.3 edge policy).
func (p *customParser) parse(text string, entityNames []string) []CustomEntityMatch {
	wanted := make(map[string]bool, len(entityNames))
	for _, n := range entityNames {
		wanted[n] = true
	}

	tokens := textutil.Tokenize(text, p.language)
	ngrams := textutil.ComputeAllNgrams(tokens, p.maxNgram, p.language)

	var matches []CustomEntityMatch
	for entityName, def := range p.entities {
		if len(wanted) > 0 && !wanted[entityName] {
			continue
		}
		for _, ng := range ngrams {
			normalized := textutil.Normalize(ng.Text)
			if resolved, ok := def.Utterances[normalized]; ok {
				matches = append(matches, CustomEntityMatch{
					Value:      ng.Text,
					Resolved:   resolved,
					CharRange:  ng.CharRange,
					EntityName: entityName,
					TokenCount: len(ng.Tokens),
				})
			}
		}
	}

	// Edge policy (spec §4.3): among overlapping candidates, prefer more
	// tokens, then more characters, then earliest start.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].TokenCount != matches[j].TokenCount {
			return matches[i].TokenCount > matches[j].TokenCount
		}
		li, lj := matches[i].CharRange.Len(), matches[j].CharRange.Len()
		if li != lj {
			return li > lj
		}
		return matches[i].CharRange.Start < matches[j].CharRange.Start
	})

	var out []CustomEntityMatch
	for _, m := range matches {
		overlaps := false
		for _, kept := range out {
			if m.CharRange.Overlaps(kept.CharRange) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CharRange.Start < out[j].CharRange.Start })
	return out
}

type customCacheKey struct {
	input string
	kinds string
}

func newCustomCacheKey(input string, kinds []string) customCacheKey {
	sorted := append([]string(nil), kinds...)
	sort.Strings(sorted)
	return customCacheKey{input: strings.ToLower(input), kinds: strings.Join(sorted, ",")}
}

// CachingCustomEntityParser wraps a dataset-derived gazetteer parser with
// an LRU keyed by (lowercased input, sorted entity-name filter), mirroring
// CachingBuiltinEntityParser and the original's CachingCustomEntityParser.
type CachingCustomEntityParser struct {
	mu     sync.Mutex
	parser *customParser
	cache  *cache[customCacheKey, []CustomEntityMatch]
	disk   DiskTier
}

// NewCachingCustomEntityParser builds a caching parser over the dataset's
// custom entities for the given language.
func NewCachingCustomEntityParser(entities map[string]nlu.EntityDef, maxNgram int, language string, cacheCapacity int) *CachingCustomEntityParser {
	return &CachingCustomEntityParser{
		parser: newCustomParser(entities, maxNgram, language),
		cache:  newCache[customCacheKey, []CustomEntityMatch](cacheCapacity),
	}
}

// SetDiskTier attaches a second-tier persistent cache behind the
// in-memory LRU. A nil tier (the default) disables it.
func (c *CachingCustomEntityParser) SetDiskTier(d DiskTier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disk = d
}

// Extract returns custom-entity matches in sentence, restricted to
// entityNames when non-empty. useCache disables both cache tiers
// entirely.
func (c *CachingCustomEntityParser) Extract(sentence string, entityNames []string, useCache bool) []CustomEntityMatch {
	if !useCache {
		return c.parser.parse(sentence, entityNames)
	}
	key := newCustomCacheKey(sentence, entityNames)

	c.mu.Lock()
	defer c.mu.Unlock()
	if hit, ok := c.cache.get(key); ok {
		return cloneCustomMatches(hit)
	}

	diskKey := key.input + "|" + key.kinds
	if c.disk != nil {
		if raw, ok, err := c.disk.Get(diskKey); err == nil && ok {
			var matches []CustomEntityMatch
			if json.Unmarshal([]byte(raw), &matches) == nil {
				c.cache.put(key, matches)
				return cloneCustomMatches(matches)
			}
		}
	}

	result := c.parser.parse(sentence, entityNames)
	c.cache.put(key, result)
	if c.disk != nil {
		if data, err := json.Marshal(result); err == nil {
			c.disk.Put(diskKey, string(data))
		}
	}
	return cloneCustomMatches(result)
}

func cloneCustomMatches(in []CustomEntityMatch) []CustomEntityMatch {
	out := make([]CustomEntityMatch, len(in))
	copy(out, in)
	return out
}
