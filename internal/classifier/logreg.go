package classifier

import "math"

// MulticlassLogisticRegression scores a feature vector against a
// trained weight matrix (one column per class, one row per feature,
// plus an intercept row), returning a softmax probability distribution.
type MulticlassLogisticRegression struct {
	Intercept []float64   // one per class
	Weights   [][]float64 // [feature][class]
}

// Run returns one probability per class. allowed, when non-nil, masks
// out classes the caller excluded (e.g. an intents whitelist/blacklist)
// by pinning their pre-softmax score to -Inf, so a masked class's
// probability mass is redistributed rather than merely zeroed after the
// fact.
func (r *MulticlassLogisticRegression) Run(features []float64, allowed []bool) []float64 {
	nbClasses := len(r.Intercept)
	scores := make([]float64, nbClasses)
	copy(scores, r.Intercept)

	for fi, fv := range features {
		if fi >= len(r.Weights) {
			break
		}
		row := r.Weights[fi]
		for c := 0; c < nbClasses && c < len(row); c++ {
			scores[c] += fv * row[c]
		}
	}

	if allowed != nil {
		for c := range scores {
			if c >= len(allowed) || !allowed[c] {
				scores[c] = math.Inf(-1)
			}
		}
	}

	return softmax(scores)
}

func softmax(scores []float64) []float64 {
	max := math.Inf(-1)
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	out := make([]float64, len(scores))
	if math.IsInf(max, -1) {
		return out
	}
	var sum float64
	for i, s := range scores {
		e := math.Exp(s - max)
		out[i] = e
		sum += e
	}
	if sum == 0 {
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
