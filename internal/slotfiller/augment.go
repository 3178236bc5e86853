package slotfiller

import (
	"sort"

	"github.com/themobileprof/nlucore/internal/crf"
	"github.com/themobileprof/nlucore/pkg/nlu"
)

// augment looks for builtin entities the tagger's output does not
// already cover, and — for each one whose kind some slot in this intent
// accepts — searches assignments of candidate slot names to those
// surplus spans, scoring every assignment by the tagger's sequence
// probability and keeping the highest-scoring one. Ties are broken by
// the order candidates and entities are encountered (first wins), which
// keeps the search deterministic.
func (f *CRFSlotFiller) augment(feats []map[string]string, tags []string, tokens []nlu.Token, builtins []nlu.BuiltinEntity) []string {
	entityToSlots := f.entityToSlotNames()
	if len(entityToSlots) == 0 || len(builtins) == 0 {
		return tags
	}

	covered := coveredTokenIndexes(tags)
	surplus := surplusEntitiesByKind(tokens, builtins, covered, entityToSlots)
	if len(surplus) == 0 {
		return tags
	}

	best := tags
	bestScore := f.sequenceProbability(feats, tags)

	kinds := make([]string, 0, len(surplus))
	for kind := range surplus {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		entities := surplus[kind]
		candidates := entityToSlots[kind]
		assignments := candidateAssignments(len(entities), candidates, f.maxPermutations())
		for _, assignment := range assignments {
			candidate := applyAssignment(best, entities, assignment, f.Scheme)
			score := f.sequenceProbability(feats, candidate)
			if score > bestScore {
				bestScore = score
				best = candidate
			}
		}
	}
	return best
}

func (f *CRFSlotFiller) maxPermutations() int {
	if f.MaxPermutations > 0 {
		return f.MaxPermutations
	}
	return defaultMaxPermutations
}

func (f *CRFSlotFiller) sequenceProbability(feats []map[string]string, tags []string) float64 {
	p, err := f.Tagger.Probability(feats, tags)
	if err != nil {
		return 0
	}
	return p
}

// coveredTokenIndexes returns the set of token positions already
// assigned a non-"O" tag.
func coveredTokenIndexes(tags []string) map[int]bool {
	covered := make(map[int]bool, len(tags))
	for i, t := range tags {
		if t != "O" {
			covered[i] = true
		}
	}
	return covered
}

type surplusEntity struct {
	tokenIndexes []int
}

// surplusEntitiesByKind groups builtin entities, by kind, whose token
// span does not overlap any already-tagged token and whose kind is the
// entity of at least one slot in this intent.
func surplusEntitiesByKind(tokens []nlu.Token, builtins []nlu.BuiltinEntity, covered map[int]bool, entityToSlots map[string][]string) map[string][]surplusEntity {
	out := make(map[string][]surplusEntity)
	for _, e := range builtins {
		kind := string(e.Kind)
		if _, wanted := entityToSlots[kind]; !wanted {
			continue
		}
		span := tokensOverlappingRange(tokens, e.CharRange)
		if len(span) == 0 {
			continue
		}
		overlapsCovered := false
		for _, idx := range span {
			if covered[idx] {
				overlapsCovered = true
				break
			}
		}
		if overlapsCovered {
			continue
		}
		out[kind] = append(out[kind], surplusEntity{tokenIndexes: span})
	}
	return out
}

func tokensOverlappingRange(tokens []nlu.Token, r nlu.Range) []int {
	var out []int
	for i, t := range tokens {
		if t.CharRange.Overlaps(r) {
			out = append(out, i)
		}
	}
	return out
}

// candidateAssignments enumerates every way to assign n surplus
// entities (in order) to candidate slot names, one name per entity,
// repeats allowed (two surplus spans of the same kind may both resolve
// to the same slot name). If the full cross product exceeds maxCombos,
// falls back to a single greedy assignment (each entity gets the first
// candidate) so augmentation degrades to O(1) rather than refusing to
// run.
func candidateAssignments(n int, candidates []string, maxCombos int) [][]string {
	if n == 0 || len(candidates) == 0 {
		return nil
	}
	total := 1
	for i := 0; i < n; i++ {
		total *= len(candidates)
		if total > maxCombos {
			greedy := make([]string, n)
			for i := range greedy {
				greedy[i] = candidates[0]
			}
			return [][]string{greedy}
		}
	}

	var out [][]string
	current := make([]string, n)
	var rec func(pos int)
	rec = func(pos int) {
		if pos == n {
			out = append(out, append([]string(nil), current...))
			return
		}
		for _, c := range candidates {
			current[pos] = c
			rec(pos + 1)
		}
	}
	rec(0)
	return out
}

// applyAssignment returns a copy of base with each surplus entity's
// token span re-tagged under the slot name the assignment gives it.
func applyAssignment(base []string, entities []surplusEntity, assignment []string, scheme crf.Scheme) []string {
	out := append([]string(nil), base...)
	for i, e := range entities {
		slotName := assignment[i]
		n := len(e.tokenIndexes)
		for pos, tokenIdx := range e.tokenIndexes {
			out[tokenIdx] = crf.PositiveTagging(scheme, slotName, pos, n)
		}
	}
	return out
}
