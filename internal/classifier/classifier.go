package classifier

import (
	"sort"

	"github.com/themobileprof/nlucore/pkg/nlu"
)

// IntentClassifier picks the most likely intent for an utterance among
// the intents the probabilistic parser was trained on. An empty string
// in IntentNames marks the "no intent" / out-of-scope class: a
// prediction that lands there yields no result, matching the original
// classifier's Option<String> intent slots.
type IntentClassifier struct {
	IntentNames []string
	Featurizer  *Featurizer
	LogReg      *MulticlassLogisticRegression
}

// GetIntent returns the best-scoring intent for text, or nil if the
// input is empty, no intents were trained, or the featurizer is unset.
// When intentsFilter is non-empty, only those intent names may be
// predicted; every other class (including "no intent") is masked out of
// the softmax rather than merely discarded afterward.
func (c *IntentClassifier) GetIntent(text string, intentsFilter []string) *nlu.IntentResult {
	if text == "" || len(c.IntentNames) == 0 || c.Featurizer == nil {
		return nil
	}

	allowed := c.allowedMask(intentsFilter)
	if len(c.IntentNames) == 1 {
		if c.IntentNames[0] == "" || (allowed != nil && !allowed[0]) {
			return nil
		}
		return &nlu.IntentResult{IntentName: c.IntentNames[0], Probability: 1.0}
	}

	features := c.Featurizer.Transform(text)
	probabilities := c.LogReg.Run(features, allowed)

	bestIdx := 0
	bestScore := -1.0
	for i, p := range probabilities {
		if p > bestScore {
			bestScore = p
			bestIdx = i
		}
	}

	if bestIdx >= len(c.IntentNames) || c.IntentNames[bestIdx] == "" || (allowed != nil && !allowed[bestIdx]) {
		return nil
	}
	return &nlu.IntentResult{IntentName: c.IntentNames[bestIdx], Probability: bestScore}
}

// RankIntents returns every intent this classifier knows about, sorted
// by descending probability, supporting Engine::get_intents (spec §6).
// The "no intent" class is never reported.
func (c *IntentClassifier) RankIntents(text string, intentsFilter []string) []nlu.IntentResult {
	if text == "" || len(c.IntentNames) == 0 || c.Featurizer == nil {
		return nil
	}

	if len(c.IntentNames) == 1 {
		if c.IntentNames[0] == "" {
			return nil
		}
		return []nlu.IntentResult{{IntentName: c.IntentNames[0], Probability: 1.0}}
	}

	features := c.Featurizer.Transform(text)
	allowed := c.allowedMask(intentsFilter)
	probabilities := c.LogReg.Run(features, allowed)

	out := make([]nlu.IntentResult, 0, len(probabilities))
	for i, p := range probabilities {
		if i >= len(c.IntentNames) || c.IntentNames[i] == "" {
			continue
		}
		out = append(out, nlu.IntentResult{IntentName: c.IntentNames[i], Probability: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Probability > out[j].Probability })
	return out
}

func (c *IntentClassifier) allowedMask(intentsFilter []string) []bool {
	if len(intentsFilter) == 0 {
		return nil
	}
	wanted := make(map[string]bool, len(intentsFilter))
	for _, n := range intentsFilter {
		wanted[n] = true
	}
	mask := make([]bool, len(c.IntentNames))
	for i, name := range c.IntentNames {
		mask[i] = wanted[name]
	}
	return mask
}
