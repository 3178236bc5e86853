package classifier

import "testing"

func trivialFeaturizer() *Featurizer {
	return &Featurizer{
		BestFeatures: []int{0, 1},
		Vocabulary:   map[string]int{"coffee": 0, "music": 1},
		IDFDiag:      []float64{1, 1},
	}
}

func TestIntentClassifier_EmptyInputReturnsNil(t *testing.T) {
	c := &IntentClassifier{
		IntentNames: []string{"", "order_coffee"},
		Featurizer:  trivialFeaturizer(),
		LogReg:      &MulticlassLogisticRegression{Intercept: []float64{0, 0}, Weights: [][]float64{{0, 0}, {0, 0}}},
	}
	if got := c.GetIntent("", nil); got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestIntentClassifier_SingleIntentShortCircuits(t *testing.T) {
	c := &IntentClassifier{
		IntentNames: []string{"order_coffee"},
		Featurizer:  trivialFeaturizer(),
	}
	got := c.GetIntent("make me a coffee", nil)
	if got == nil || got.IntentName != "order_coffee" || got.Probability != 1.0 {
		t.Fatalf("got %+v, want order_coffee @ 1.0", got)
	}
}

func TestIntentClassifier_SingleNoneIntentReturnsNil(t *testing.T) {
	c := &IntentClassifier{
		IntentNames: []string{""},
		Featurizer:  trivialFeaturizer(),
	}
	if got := c.GetIntent("anything", nil); got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestIntentClassifier_PicksBestScoringIntent(t *testing.T) {
	c := &IntentClassifier{
		IntentNames: []string{"", "order_coffee", "play_music"},
		Featurizer:  trivialFeaturizer(),
		LogReg: &MulticlassLogisticRegression{
			Intercept: []float64{0, 0, 0},
			Weights: [][]float64{
				{0, 5, -5}, // coffee feature
				{0, -5, 5}, // music feature
			},
		},
	}
	got := c.GetIntent("coffee please", nil)
	if got == nil || got.IntentName != "order_coffee" {
		t.Fatalf("got %+v, want order_coffee", got)
	}
}

func TestIntentClassifier_FilterExcludesIntent(t *testing.T) {
	c := &IntentClassifier{
		IntentNames: []string{"", "order_coffee", "play_music"},
		Featurizer:  trivialFeaturizer(),
		LogReg: &MulticlassLogisticRegression{
			Intercept: []float64{0, 0, 0},
			Weights: [][]float64{
				{0, 5, -5},
				{0, -5, 5},
			},
		},
	}
	got := c.GetIntent("coffee please", []string{"play_music"})
	if got == nil || got.IntentName != "play_music" {
		t.Fatalf("got %+v, want play_music (order_coffee excluded by filter)", got)
	}
}

func TestIntentClassifier_RankIntentsSortsDescendingAndDropsNone(t *testing.T) {
	c := &IntentClassifier{
		IntentNames: []string{"", "order_coffee", "play_music"},
		Featurizer:  trivialFeaturizer(),
		LogReg: &MulticlassLogisticRegression{
			Intercept: []float64{0, 0, 0},
			Weights: [][]float64{
				{0, 5, -5},
				{0, -5, 5},
			},
		},
	}
	ranked := c.RankIntents("coffee please", nil)
	if len(ranked) != 2 {
		t.Fatalf("got %d ranked intents, want 2 (none-class excluded): %+v", len(ranked), ranked)
	}
	if ranked[0].IntentName != "order_coffee" || ranked[0].Probability < ranked[1].Probability {
		t.Fatalf("got %+v, want order_coffee ranked first", ranked)
	}
}
