package dynamo

import (
	"math"

	"github.com/san-kum/replisim/internal/noise"
)

// Tolerance bounds the deviation of a sanitized state's sum from 1.
const Tolerance = 1e-9

// State is a point on the probability simplex: one share per component.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) Sum() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v
	}
	return sum
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// IsSimplex reports whether s is non-negative and sums to 1 within tol.
func (s State) IsSimplex(tol float64) bool {
	if len(s) == 0 || !s.IsValid() {
		return false
	}
	for _, v := range s {
		if v < 0 {
			return false
		}
	}
	return math.Abs(s.Sum()-1) <= tol
}

// Support returns the number of components with a positive share.
func (s State) Support() int {
	n := 0
	for _, v := range s {
		if v > 0 {
			n++
		}
	}
	return n
}

// FitnessModel maps a state to one fitness value per component. It must not
// modify x. Values of any sign or magnitude are accepted.
type FitnessModel interface {
	Fitness(x State) []float64
}

// FitnessFunc adapts a plain function to FitnessModel.
type FitnessFunc func(x State) []float64

func (f FitnessFunc) Fitness(x State) []float64 { return f(x) }

// NoiseProcess produces the stochastic increment for one step. It owns its
// random source.
type NoiseProcess interface {
	Increment(x []float64, dt float64) []float64
}

// System is an autonomous-or-not vector field dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Integrator advances x by one raw step of sys. The result is not sanitized.
type Integrator interface {
	Step(sys System, x State, t float64, dt float64) State
}

// Observer is notified with every accepted state.
type Observer interface {
	OnStep(x State, t float64)
}

type Metric interface {
	Observer
	Name() string
	Value() float64
	Reset()
}

// Config holds the solver parameters.
type Config struct {
	// Dim is the number of components, at least 2.
	Dim int
	// Dt is the step size, strictly positive.
	Dt float64
	// Cutoff is the extinction threshold; shares below it are set to 0.
	Cutoff float64
	// Seed drives the noise process built from Noise.
	Seed int64
	// Noise selects the default noise process. The zero value means none.
	Noise noise.Kind
	// SaveEvery records every n-th step in Run. 0 means every step.
	SaveEvery int
}

func DefaultConfig(dim int) Config {
	return Config{
		Dim:       dim,
		Dt:        0.01,
		Cutoff:    1e-9,
		SaveEvery: 1,
	}
}

// Validate reports the first invalid field as a *ConfigError.
func (c Config) Validate() error {
	if c.Dim < 2 {
		return &ConfigError{Field: "dim", Value: c.Dim, Reason: "must be at least 2"}
	}
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return &ConfigError{Field: "dt", Value: c.Dt, Reason: "must be positive and finite"}
	}
	if c.Cutoff < 0 || math.IsNaN(c.Cutoff) || c.Cutoff >= 1 {
		return &ConfigError{Field: "cutoff", Value: c.Cutoff, Reason: "must be in [0, 1)"}
	}
	if c.SaveEvery < 0 {
		return &ConfigError{Field: "save_every", Value: c.SaveEvery, Reason: "must not be negative"}
	}
	if err := c.Noise.Validate(); err != nil {
		return &ConfigError{Field: "noise", Value: c.Noise, Reason: "malformed noise parameters", Err: err}
	}
	return nil
}

func (c Config) saveEvery() int {
	if c.SaveEvery <= 0 {
		return 1
	}
	return c.SaveEvery
}
