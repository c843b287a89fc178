package fitness

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/san-kum/replisim/internal/dynamo"
)

// Linear is f(x) = g + V x. A nil Growth is treated as zero, which makes
// V an ordinary payoff matrix.
type Linear struct {
	Growth       []float64
	Interactions [][]float64
}

// NewLinear checks that V is square, g matches it and every entry is finite.
func NewLinear(growth []float64, interactions [][]float64) (*Linear, error) {
	d := len(interactions)
	if d == 0 {
		return nil, fmt.Errorf("fitness: empty interaction matrix")
	}
	for i, row := range interactions {
		if len(row) != d {
			return nil, fmt.Errorf("fitness: interaction row %d has %d entries, want %d", i, len(row), d)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("fitness: interaction[%d][%d] is not finite", i, j)
			}
		}
	}
	if growth != nil && len(growth) != d {
		return nil, fmt.Errorf("fitness: growth has %d entries, want %d", len(growth), d)
	}

	l := &Linear{Interactions: make([][]float64, d)}
	for i, row := range interactions {
		l.Interactions[i] = append([]float64(nil), row...)
	}
	if growth != nil {
		l.Growth = append([]float64(nil), growth...)
	}
	return l, nil
}

func (l *Linear) Dim() int { return len(l.Interactions) }

func (l *Linear) Fitness(x dynamo.State) []float64 {
	d := len(l.Interactions)
	f := make([]float64, d)
	for i := 0; i < d; i++ {
		acc := 0.0
		if l.Growth != nil {
			acc = l.Growth[i]
		}
		row := l.Interactions[i]
		for j := 0; j < d && j < len(x); j++ {
			acc += row[j] * x[j]
		}
		f[i] = acc
	}
	return f
}

func (l *Linear) DefaultState() dynamo.State { return Uniform(l.Dim()) }

// Scaled returns a copy with g and V multiplied by k.
func (l *Linear) Scaled(k float64) *Linear {
	out := &Linear{Interactions: make([][]float64, len(l.Interactions))}
	for i, row := range l.Interactions {
		out.Interactions[i] = make([]float64, len(row))
		for j, v := range row {
			out.Interactions[i][j] = k * v
		}
	}
	if l.Growth != nil {
		out.Growth = make([]float64, len(l.Growth))
		for i, v := range l.Growth {
			out.Growth[i] = k * v
		}
	}
	return out
}

// Random draws V uniformly from [-scale, scale] and leaves g at zero. The
// same seed always yields the same matrix.
func Random(dim int, scale float64, seed int64) *Linear {
	rng := rand.New(rand.NewPCG(uint64(seed), 0))
	v := make([][]float64, dim)
	for i := range v {
		v[i] = make([]float64, dim)
		for j := range v[i] {
			v[i][j] = (2*rng.Float64() - 1) * scale
		}
	}
	return &Linear{Interactions: v}
}

// Uniform returns the barycenter of the (n-1)-simplex.
func Uniform(n int) dynamo.State {
	x := make(dynamo.State, n)
	for i := range x {
		x[i] = 1 / float64(n)
	}
	return x
}
