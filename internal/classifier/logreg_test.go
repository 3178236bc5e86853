package classifier

import "testing"

func TestMulticlassLogisticRegression_Run(t *testing.T) {
	r := &MulticlassLogisticRegression{
		Intercept: []float64{0.98, 0.32, -0.76},
		Weights: [][]float64{
			{2.5, -0.6, 0.5},
			{1.2, 2.2, -2.7},
			{1.5, 0.1, -3.2},
			{-0.9, -2.4, 1.8},
		},
	}

	got := r.Run([]float64{0.4, -2.3, 1.9, 1.3}, nil)
	want := []float64{2.66969214e-01, 3.98406851e-05, 7.32990945e-01}

	if len(got) != len(want) {
		t.Fatalf("got %d classes, want %d", len(got), len(want))
	}
	for i := range want {
		if diff := got[i] - want[i]; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("class[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMulticlassLogisticRegression_Run_MaskedClass(t *testing.T) {
	r := &MulticlassLogisticRegression{
		Intercept: []float64{0.98, 0.32, -0.76},
		Weights: [][]float64{
			{2.5, -0.6, 0.5},
			{1.2, 2.2, -2.7},
			{1.5, 0.1, -3.2},
			{-0.9, -2.4, 1.8},
		},
	}

	got := r.Run([]float64{0.4, -2.3, 1.9, 1.3}, []bool{true, true, false})
	if got[2] != 0 {
		t.Errorf("masked class probability = %v, want 0", got[2])
	}
	sum := got[0] + got[1] + got[2]
	if diff := sum - 1.0; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("probabilities sum = %v, want 1", sum)
	}
}
