package classifier

import "testing"

func TestFeaturizer_Transform(t *testing.T) {
	f := &Featurizer{
		BestFeatures: []int{0, 1, 2, 3, 6},
		Vocabulary: map[string]int{
			"awful":     0,
			"beautiful": 1,
			"bird":      2,
			"blue":      3,
			"hello":     4,
			"nice":      5,
			"world":     6,
		},
		StopWords: map[string]bool{"the": true, "is": true},
		IDFDiag: []float64{
			2.252762968495368,
			2.252762968495368,
			1.5596157879354227,
			2.252762968495368,
			1.8472978603872037,
			1.8472978603872037,
			1.5596157879354227,
		},
	}

	got := f.Transform("hello this bird is a beautiful bird")
	want := []float64{0, 0.527808526514, 0.730816799167, 0, 0}

	if len(got) != len(want) {
		t.Fatalf("got %d features, want %d", len(got), len(want))
	}
	for i := range want {
		if diff := got[i] - want[i]; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("feature[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFeaturizer_EntityUtteranceSubstitution(t *testing.T) {
	f := &Featurizer{
		BestFeatures: []int{0},
		Vocabulary:   map[string]int{"CITY_FEATURE": 0},
		IDFDiag:      []float64{1},
		EntityUtterancesToFeatureNames: map[string]string{
			"new york": "CITY_FEATURE",
		},
	}

	got := f.Transform("flights to new york please")
	if len(got) != 1 || got[0] == 0 {
		t.Fatalf("expected the multi-word entity match to produce a non-zero CITY_FEATURE weight, got %v", got)
	}
}
