// Package features implements the configurable per-token feature
// pipeline the CRF slot filler and, indirectly, the logistic regression
// featurizer draw on (spec §4.4), grounded in queries-core's
// pipeline/probabilistic/features.go-equivalent feature functions
// (is_digit, is_first, is_last, prefix/suffix, shape, ngram,
// is_in_collection) translated from features.rs and features_utils.rs.
package features

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/themobileprof/nlucore/internal/crf"
	"github.com/themobileprof/nlucore/internal/errs"
	"github.com/themobileprof/nlucore/internal/resources"
	"github.com/themobileprof/nlucore/internal/textutil"
	"github.com/themobileprof/nlucore/pkg/nlu"
)

// Func computes one feature's value for the token at index, given the
// full token sequence and the builtin entities already extracted for
// the whole utterance. ok is false when the feature does not apply at
// that position (e.g. prefix longer than the word).
type Func func(tokens []nlu.Token, index int, builtins []nlu.BuiltinEntity) (value string, ok bool)

// Config names one configured feature: which factory builds it, the
// factory's arguments, and the token offsets (relative to the token
// being tagged) it should be evaluated at and reported under.
type Config struct {
	Name    string
	Factory string
	Args    map[string]any
	Offsets []int
}

// Factory builds a Func from a feature's declared arguments.
type Factory func(args map[string]any, deps Deps) (Func, error)

// Deps bundles the shared resources a feature factory may need.
type Deps struct {
	Store    *resources.Store
	Scheme   crf.Scheme
	Language string
}

var registry = map[string]Factory{
	"is_digit":              buildIsDigit,
	"is_first":              buildIsFirst,
	"is_last":               buildIsLast,
	"length":                buildLength,
	"prefix":                buildPrefix,
	"suffix":                buildSuffix,
	"shape_ngram":            buildShapeNgram,
	"ngram":                  buildNgram,
	"word_cluster":           buildWordCluster,
	"entity_match":           buildEntityMatch,
	"builtin_entity_match":   buildBuiltinEntityMatch,
}

// Build resolves cfg.Factory against the registry and constructs the
// Func. An unknown factory name is a fatal load-time error.
func Build(cfg Config, deps Deps) (Func, error) {
	factory, ok := registry[cfg.Factory]
	if !ok {
		return nil, &errs.UnknownFeatureFactoryError{Name: cfg.Factory}
	}
	return factory(cfg.Args, deps)
}

// Pipeline computes, for every token in an utterance, the map of
// feature-key -> value produced by every configured feature at every
// declared offset. A feature key is the feature's Name for offset 0,
// and "name[+k]"/"name[-k]" for non-zero offsets, matching the way the
// original feature processor reports context features from neighboring
// tokens.
type Pipeline struct {
	configs []Config
	funcs   []Func
}

// NewPipeline builds every configured feature up front; a failure to
// build any one of them aborts construction (fatal, load-time).
func NewPipeline(configs []Config, deps Deps) (*Pipeline, error) {
	funcs := make([]Func, len(configs))
	for i, cfg := range configs {
		fn, err := Build(cfg, deps)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", cfg.Name, err)
		}
		funcs[i] = fn
	}
	return &Pipeline{configs: configs, funcs: funcs}, nil
}

// Compute returns one feature map per token. builtins is the set of
// builtin entities already extracted for the whole utterance, consumed
// by the builtin_entity_match feature.
func (p *Pipeline) Compute(tokens []nlu.Token, builtins []nlu.BuiltinEntity) []map[string]string {
	out := make([]map[string]string, len(tokens))
	for i := range out {
		out[i] = make(map[string]string)
	}
	for ci, cfg := range p.configs {
		fn := p.funcs[ci]
		offsets := cfg.Offsets
		if len(offsets) == 0 {
			offsets = []int{0}
		}
		for _, offset := range offsets {
			key := featureKey(cfg.Name, offset)
			for i := range tokens {
				srcIdx := i + offset
				if srcIdx < 0 || srcIdx >= len(tokens) {
					continue
				}
				if value, ok := fn(tokens, srcIdx, builtins); ok {
					out[i][key] = value
				}
			}
		}
	}
	return out
}

func featureKey(name string, offset int) string {
	switch {
	case offset == 0:
		return name
	case offset > 0:
		return fmt.Sprintf("%s[+%d]", name, offset)
	default:
		return fmt.Sprintf("%s[%d]", name, offset)
	}
}

func buildIsDigit(map[string]any, Deps) (Func, error) {
	isDigit := regexp.MustCompile(`^[0-9]+$`)
	return func(tokens []nlu.Token, i int, builtins []nlu.BuiltinEntity) (string, bool) {
		if isDigit.MatchString(tokens[i].Value) {
			return "1", true
		}
		return "", false
	}, nil
}

func buildIsFirst(map[string]any, Deps) (Func, error) {
	return func(tokens []nlu.Token, i int, builtins []nlu.BuiltinEntity) (string, bool) {
		if i == 0 {
			return "1", true
		}
		return "", false
	}, nil
}

func buildIsLast(map[string]any, Deps) (Func, error) {
	return func(tokens []nlu.Token, i int, builtins []nlu.BuiltinEntity) (string, bool) {
		if i == len(tokens)-1 {
			return "1", true
		}
		return "", false
	}, nil
}

func buildLength(map[string]any, Deps) (Func, error) {
	return func(tokens []nlu.Token, i int, builtins []nlu.BuiltinEntity) (string, bool) {
		return strconv.Itoa(len([]rune(tokens[i].Value))), true
	}, nil
}

func intArg(args map[string]any, key string, def int) int {
	if v, ok := args[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		}
	}
	return def
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func buildPrefix(args map[string]any, _ Deps) (Func, error) {
	n := intArg(args, "prefix_size", 1)
	return func(tokens []nlu.Token, i int, builtins []nlu.BuiltinEntity) (string, bool) {
		runes := []rune(strings.ToLower(tokens[i].Value))
		if len(runes) < n {
			return "", false
		}
		return string(runes[:n]), true
	}, nil
}

func buildSuffix(args map[string]any, _ Deps) (Func, error) {
	n := intArg(args, "suffix_size", 1)
	return func(tokens []nlu.Token, i int, builtins []nlu.BuiltinEntity) (string, bool) {
		runes := []rune(strings.ToLower(tokens[i].Value))
		if len(runes) < n {
			return "", false
		}
		return string(runes[len(runes)-n:]), true
	}, nil
}

var (
	reLower = regexp.MustCompile(`^[a-z]+$`)
	reUpper = regexp.MustCompile(`^[A-Z]+$`)
	reTitle = regexp.MustCompile(`^[A-Z][a-z]+$`)
)

func shapeOf(word string) string {
	switch {
	case reLower.MatchString(word):
		return "xxx"
	case reUpper.MatchString(word):
		return "XXX"
	case reTitle.MatchString(word):
		return "Xxx"
	default:
		return "xX"
	}
}

func buildShapeNgram(args map[string]any, _ Deps) (Func, error) {
	n := intArg(args, "n", 1)
	return func(tokens []nlu.Token, i int, builtins []nlu.BuiltinEntity) (string, bool) {
		end := i + n
		if end > len(tokens) {
			return "", false
		}
		shapes := make([]string, n)
		for k := 0; k < n; k++ {
			shapes[k] = shapeOf(tokens[i+k].Value)
		}
		return strings.Join(shapes, " "), true
	}, nil
}

func buildNgram(args map[string]any, deps Deps) (Func, error) {
	n := intArg(args, "n", 1)
	useStemming := false
	if v, ok := args["use_stemming"]; ok {
		if b, ok := v.(bool); ok {
			useStemming = b
		}
	}
	return func(tokens []nlu.Token, i int, builtins []nlu.BuiltinEntity) (string, bool) {
		if i+n > len(tokens) {
			return "", false
		}
		values := make([]string, n)
		for k := 0; k < n; k++ {
			v := strings.ToLower(tokens[i+k].Value)
			if useStemming && deps.Store != nil {
				v = deps.Store.Stem(v)
			}
			values[k] = v
		}
		return strings.Join(values, " "), true
	}, nil
}

func buildWordCluster(args map[string]any, deps Deps) (Func, error) {
	name := stringArg(args, "cluster_name")
	var clusterer resources.WordClusterer
	if deps.Store != nil {
		clusterer, _ = deps.Store.WordClusterer(name)
	}
	return func(tokens []nlu.Token, i int, builtins []nlu.BuiltinEntity) (string, bool) {
		if clusterer == nil {
			return "", false
		}
		return clusterer.Cluster(strings.ToLower(tokens[i].Value))
	}, nil
}

// buildEntityMatch implements is_in_collection: the longest ngram
// containing the token that also appears (case-insensitively) in
// collection wins, and the reported value is the scheme prefix ("B-",
// "I-", "L-", "U-") the token would receive if that ngram were tagged
// as one entity.
func buildEntityMatch(args map[string]any, deps Deps) (Func, error) {
	rawCollection, _ := args["collection"].([]any)
	collection := make(map[string]bool, len(rawCollection))
	for _, v := range rawCollection {
		if s, ok := v.(string); ok {
			collection[strings.ToLower(s)] = true
		}
	}
	language := deps.Language

	return func(tokens []nlu.Token, i int, builtins []nlu.BuiltinEntity) (string, bool) {
		ngrams := textutil.ComputeAllNgrams(tokens, len(tokens), language)

		var best *textutil.Ngram
		bestLen := 0
		for idx := range ngrams {
			ng := &ngrams[idx]
			if !containsTokenIndex(ng, tokens, i) {
				continue
			}
			if !collection[strings.ToLower(ng.Text)] {
				continue
			}
			if len(ng.Tokens) > bestLen {
				best = ng
				bestLen = len(ng.Tokens)
			}
		}
		if best == nil {
			return "", false
		}
		span := tokenSpanIndexes(tokens, best.Tokens)
		return strings.TrimSuffix(crf.SchemePrefix(i, span, deps.Scheme), "-"), true
	}, nil
}

func containsTokenIndex(ng *textutil.Ngram, tokens []nlu.Token, index int) bool {
	for _, t := range ng.Tokens {
		if t.CharRange == tokens[index].CharRange {
			return true
		}
	}
	return false
}

func tokenSpanIndexes(tokens []nlu.Token, span []nlu.Token) []int {
	out := make([]int, 0, len(span))
	for _, s := range span {
		for i, t := range tokens {
			if t.CharRange == s.CharRange {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

// buildBuiltinEntityMatch tags tokens overlapping a pre-computed builtin
// entity span of the requested kind, reporting the same scheme-prefix
// convention as entity_match.
func buildBuiltinEntityMatch(args map[string]any, deps Deps) (Func, error) {
	kind := nlu.BuiltinKind(stringArg(args, "builtin_entity_kind"))
	return func(tokens []nlu.Token, i int, builtins []nlu.BuiltinEntity) (string, bool) {
		tokenRange := tokens[i].CharRange
		var span []int
		for _, e := range builtins {
			if e.Kind != kind || !e.CharRange.Overlaps(tokenRange) {
				continue
			}
			span = tokensOverlapping(tokens, e.CharRange)
			break
		}
		if span == nil {
			return "", false
		}
		return strings.TrimSuffix(crf.SchemePrefix(i, span, deps.Scheme), "-"), true
	}, nil
}

func tokensOverlapping(tokens []nlu.Token, r nlu.Range) []int {
	var out []int
	for i, t := range tokens {
		if t.CharRange.Overlaps(r) {
			out = append(out, i)
		}
	}
	return out
}
