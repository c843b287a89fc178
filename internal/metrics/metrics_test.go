package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/replisim/internal/dynamo"
)

func TestEntropy(t *testing.T) {
	tests := []struct {
		state    dynamo.State
		expected float64
	}{
		{dynamo.State{1, 0}, 0},
		{dynamo.State{0.5, 0.5}, math.Ln2},
		{dynamo.State{0.25, 0.25, 0.25, 0.25}, math.Log(4)},
	}

	for _, tt := range tests {
		if got := Entropy(tt.state); math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("Entropy(%v) = %v, want %v", tt.state, got, tt.expected)
		}
	}
}

func TestDiversityReset(t *testing.T) {
	m := NewDiversity()
	m.OnStep(dynamo.State{0.5, 0.5}, 0)
	if m.Value() == 0 {
		t.Error("expected non-zero diversity")
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero diversity after reset")
	}
}

func TestRichness(t *testing.T) {
	m := NewRichness()
	m.OnStep(dynamo.State{0.5, 0.5, 0}, 0)
	m.OnStep(dynamo.State{1, 0, 0}, 0.1)
	if m.Value() != 1 {
		t.Errorf("expected richness 1, got %v", m.Value())
	}
}

func TestExtinctions(t *testing.T) {
	m := NewExtinctions()
	m.OnStep(dynamo.State{0.4, 0.3, 0.3}, 0)
	m.OnStep(dynamo.State{0.5, 0.5, 0}, 0.1)
	m.OnStep(dynamo.State{1, 0, 0}, 0.2)
	m.OnStep(dynamo.State{1, 0, 0}, 0.3)
	if m.Value() != 2 {
		t.Errorf("expected 2 extinctions, got %v", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestMeanFitness(t *testing.T) {
	fit := dynamo.FitnessFunc(func(x dynamo.State) []float64 { return []float64{1, 3} })
	m := NewMeanFitness(fit)
	m.OnStep(dynamo.State{0.5, 0.5}, 0)
	m.OnStep(dynamo.State{0, 1}, 0.1)
	// (2 + 3) / 2
	if math.Abs(m.Value()-2.5) > 1e-12 {
		t.Errorf("expected 2.5, got %v", m.Value())
	}
}

func TestMetricsAsSolverObservers(t *testing.T) {
	fit := dynamo.FitnessFunc(func(x dynamo.State) []float64 { return []float64{1, 2} })
	s, err := dynamo.New(dynamo.DefaultConfig(2), []float64{0.5, 0.5}, fit)
	if err != nil {
		t.Fatal(err)
	}

	ms := []dynamo.Metric{NewDiversity(), NewRichness(), NewMeanFitness(fit)}
	for _, m := range ms {
		s.AddObserver(m)
	}
	if _, err := s.Run(100); err != nil {
		t.Fatal(err)
	}

	for _, m := range ms {
		if m.Value() <= 0 {
			t.Errorf("%s = %v, expected positive", m.Name(), m.Value())
		}
	}
}
