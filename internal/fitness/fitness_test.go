package fitness

import (
	"math"
	"testing"

	"github.com/san-kum/replisim/internal/dynamo"
)

func TestLinearFitness(t *testing.T) {
	l, err := NewLinear([]float64{0.1, -0.1}, [][]float64{{1, 2}, {3, 4}})
	if err != nil {
		t.Fatal(err)
	}

	f := l.Fitness(dynamo.State{0.5, 0.5})
	want := []float64{0.1 + 1.5, -0.1 + 3.5}
	for i := range want {
		if math.Abs(f[i]-want[i]) > 1e-12 {
			t.Errorf("f[%d] = %v, want %v", i, f[i], want[i])
		}
	}
}

func TestNewLinear_Invalid(t *testing.T) {
	tests := []struct {
		name string
		g    []float64
		v    [][]float64
	}{
		{"empty", nil, nil},
		{"ragged", nil, [][]float64{{1, 2}, {3}}},
		{"growth length", []float64{1}, [][]float64{{1, 2}, {3, 4}}},
		{"nan", nil, [][]float64{{math.NaN(), 0}, {0, 0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLinear(tt.g, tt.v); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestNewLinear_CopiesInputs(t *testing.T) {
	v := [][]float64{{1, 0}, {0, 1}}
	l, _ := NewLinear(nil, v)
	v[0][0] = 99
	if l.Interactions[0][0] != 1 {
		t.Error("NewLinear kept a reference to the caller's matrix")
	}
}

func TestFitnessDoesNotModifyState(t *testing.T) {
	models := []dynamo.FitnessModel{
		NewConstant(1, 2, 3),
		RockPaperScissors(1, 2),
		Random(3, 1, 7),
	}
	for _, m := range models {
		x := dynamo.State{0.2, 0.3, 0.5}
		m.Fitness(x)
		if x[0] != 0.2 || x[1] != 0.3 || x[2] != 0.5 {
			t.Errorf("%T modified its input", m)
		}
	}
}

func TestHawkDoveEquilibrium(t *testing.T) {
	v, c := 2.0, 3.0
	hd := HawkDove(v, c)
	p := v / c
	f := hd.Fitness(dynamo.State{p, 1 - p})
	if math.Abs(f[0]-f[1]) > 1e-12 {
		t.Errorf("hawk and dove fitness differ at equilibrium: %v", f)
	}
}

func TestRockPaperScissorsBarycenter(t *testing.T) {
	f := RockPaperScissors(1, 1).Fitness(Uniform(3))
	for i := 1; i < 3; i++ {
		if math.Abs(f[i]-f[0]) > 1e-12 {
			t.Errorf("barycenter should be neutral, got %v", f)
		}
	}
}

func TestPrisonersDilemmaDefectionDominates(t *testing.T) {
	pd := PrisonersDilemma(5, 3, 1, 0)
	for _, c := range []float64{0, 0.3, 0.7, 1} {
		f := pd.Fitness(dynamo.State{c, 1 - c})
		if f[1] <= f[0] {
			t.Errorf("defectors should outscore cooperators at share %v: %v", c, f)
		}
	}
}

func TestRandomDeterministic(t *testing.T) {
	a := Random(4, 0.5, 11)
	b := Random(4, 0.5, 11)
	for i := range a.Interactions {
		for j := range a.Interactions[i] {
			if a.Interactions[i][j] != b.Interactions[i][j] {
				t.Fatalf("entry %d,%d differs", i, j)
			}
			if math.Abs(a.Interactions[i][j]) > 0.5 {
				t.Errorf("entry %d,%d out of range: %v", i, j, a.Interactions[i][j])
			}
		}
	}
}

func TestScaled(t *testing.T) {
	l, err := NewLinear([]float64{1, -1}, [][]float64{{0, 2}, {3, 0}})
	if err != nil {
		t.Fatal(err)
	}
	s := l.Scaled(2)
	x := dynamo.State{0.5, 0.5}
	got, want := s.Fitness(x), l.Fitness(x)
	for i := range got {
		if got[i] != 2*want[i] {
			t.Errorf("f[%d] = %v, want %v", i, got[i], 2*want[i])
		}
	}
	if l.Interactions[0][1] != 2 {
		t.Error("Scaled modified the receiver")
	}
}

func TestGame(t *testing.T) {
	for _, name := range ListGames() {
		g, err := Game(name)
		if err != nil {
			t.Fatalf("Game(%q) failed: %v", name, err)
		}
		if len(g.Fitness(g.DefaultState())) != g.Dim() {
			t.Errorf("%s: fitness length mismatch", name)
		}
	}

	if _, err := Game("chicken"); err == nil {
		t.Error("expected error for unknown game")
	}
}

func TestUniform(t *testing.T) {
	x := Uniform(4)
	if !x.IsSimplex(dynamo.Tolerance) {
		t.Errorf("Uniform(4) = %v not on simplex", x)
	}
}
