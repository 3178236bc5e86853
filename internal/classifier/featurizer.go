// Package classifier implements the TF-IDF featurizer and multinomial
// logistic regression intent classifier (spec §4.6), grounded in
// queries-core's probabilistic/intent_classifier/featurizer.rs and
// models/logreg.rs.
package classifier

import (
	"math"
	"strings"

	"github.com/themobileprof/nlucore/internal/resources"
	"github.com/themobileprof/nlucore/internal/textutil"
)

// maxEntityNgram bounds how many tokens an entity-utterance substitution
// span may cover when scanning for entity_utterances_to_feature_names
// matches, mirroring the custom-entity parser's own ngram cap.
const maxEntityNgram = 4

// Featurizer turns an utterance into the fixed-length feature vector the
// logistic regression classifier expects: term counts weighted by a
// pretrained IDF diagonal, L2-normalized, then reduced to the trained
// best_features index set (spec §4.6).
type Featurizer struct {
	BestFeatures []int
	Vocabulary   map[string]int
	IDFDiag      []float64
	StopWords    map[string]bool
	SublinearTF  bool
	Language     string

	// EntityUtterancesToFeatureNames maps a normalized dataset-entity
	// surface form to the stable vocabulary token it should count as,
	// so a featurizer trained on "new york" generalizes across
	// paraphrases of the same custom entity.
	EntityUtterancesToFeatureNames map[string]string

	// WordClusterName, when set, appends a synthetic "cluster_<id>"
	// term for every token that resolves against this named clusterer
	// in Store.
	WordClusterName string
	Store           *resources.Store
}

// Transform computes the feature vector for input.
func (f *Featurizer) Transform(input string) []float64 {
	language := f.Language
	if language == "" {
		language = "en"
	}
	terms := f.extractTerms(strings.ToLower(input), language)

	vocabSize := 0
	for _, idx := range f.Vocabulary {
		if idx+1 > vocabSize {
			vocabSize = idx + 1
		}
	}

	rawCounts := make([]float64, vocabSize)
	for _, term := range terms {
		idx, ok := f.Vocabulary[term]
		if !ok {
			continue
		}
		rawCounts[idx]++
	}

	weighted := make([]float64, vocabSize)
	for idx, count := range rawCounts {
		if count == 0 {
			continue
		}
		tf := count
		if f.SublinearTF {
			tf = 1 + math.Log(count)
		}
		weighted[idx] = tf * f.IDFDiag[idx]
	}

	var norm float64
	for _, w := range weighted {
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		norm = 1
	}
	for i := range weighted {
		weighted[i] /= norm
	}

	selected := make([]float64, len(f.BestFeatures))
	for i, fi := range f.BestFeatures {
		selected[i] = weighted[fi]
	}
	return selected
}

// extractTerms tokenizes input and greedily substitutes the longest
// entity-utterance match at each position (spec §4.6), optionally
// emitting an extra word-cluster term alongside every surviving token.
// Stop words are dropped before either substitution lookup succeeds or
// fails, matching the original featurizer's filter-then-featurize order.
func (f *Featurizer) extractTerms(input, language string) []string {
	tokens := textutil.Tokenize(input, language)
	kept := tokens[:0]
	for _, tok := range tokens {
		if !f.StopWords[tok.Value] {
			kept = append(kept, tok)
		}
	}
	tokens = kept
	sep := textutil.Separator(language)

	var terms []string
	for i := 0; i < len(tokens); {
		if len(f.EntityUtterancesToFeatureNames) > 0 {
			matchedSpan := 0
			maxSpan := maxEntityNgram
			if i+maxSpan > len(tokens) {
				maxSpan = len(tokens) - i
			}
			for n := maxSpan; n >= 1; n-- {
				values := make([]string, n)
				for k := 0; k < n; k++ {
					values[k] = tokens[i+k].Value
				}
				normalized := textutil.Normalize(strings.Join(values, sep))
				if featureName, ok := f.EntityUtterancesToFeatureNames[normalized]; ok {
					terms = append(terms, featureName)
					matchedSpan = n
					break
				}
			}
			if matchedSpan > 0 {
				i += matchedSpan
				continue
			}
		}

		word := tokens[i].Value
		if !f.StopWords[word] {
			terms = append(terms, word)
			if f.WordClusterName != "" && f.Store != nil {
				if clusterer, ok := f.Store.WordClusterer(f.WordClusterName); ok {
					if cluster, ok := clusterer.Cluster(word); ok {
						terms = append(terms, "cluster_"+cluster)
					}
				}
			}
		}
		i++
	}
	return terms
}
