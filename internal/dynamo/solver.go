package dynamo

import (
	"fmt"

	"github.com/san-kum/replisim/internal/noise"
)

// replicatorField is dX_i/dt = X_i (f_i(X) - sum_j X_j f_j(X)).
type replicatorField struct {
	fitness FitnessModel
	dim     int

	// first failure seen while the integrator evaluated the field
	err error
}

// Replicator returns the deterministic replicator field for dim components,
// for use with an Integrator outside a Solver. A fitness model returning the
// wrong number of values yields a zero derivative.
func Replicator(fitness FitnessModel, dim int) System {
	return &replicatorField{fitness: fitness, dim: dim}
}

func (r *replicatorField) StateDim() int { return r.dim }

func (r *replicatorField) Derive(x State, t float64) State {
	out := make(State, len(x))
	f := r.fitness.Fitness(x)
	if len(f) != len(x) {
		if r.err == nil {
			r.err = fmt.Errorf("%w: fitness returned %d values for %d components", ErrDimensionMismatch, len(f), len(x))
		}
		return out
	}

	mean := 0.0
	for i := range x {
		mean += x[i] * f[i]
	}
	for i := range x {
		out[i] = x[i] * (f[i] - mean)
	}
	return out
}

type euler struct{}

func (euler) Step(sys System, x State, t float64, dt float64) State {
	dx := sys.Derive(x, t)
	result := make(State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}

// Solver integrates one replicator trajectory. Each step applies the
// integrator's drift, adds the noise increment, then sanitizes; the order is
// fixed so that violations introduced by the noise are caught.
//
// A Solver is NOT safe for concurrent use.
type Solver struct {
	cfg        Config
	field      *replicatorField
	integrator Integrator
	noise      NoiseProcess
	observers  []Observer

	x     State
	t     float64
	steps int
}

type Option func(*Solver)

// WithNoise installs p instead of the process described by Config.Noise.
func WithNoise(p NoiseProcess) Option {
	return func(s *Solver) { s.noise = p }
}

// WithIntegrator replaces the default explicit Euler scheme.
func WithIntegrator(integ Integrator) Option {
	return func(s *Solver) { s.integrator = integ }
}

// New validates cfg, sanitizes x0 and returns a solver positioned at t=0.
// All failures are *ConfigError.
func New(cfg Config, x0 []float64, fitness FitnessModel, opts ...Option) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if fitness == nil {
		return nil, &ConfigError{Field: "fitness", Value: nil, Reason: "fitness model is required"}
	}
	if len(x0) != cfg.Dim {
		return nil, &ConfigError{Field: "initial_state", Value: len(x0), Reason: fmt.Sprintf("expected %d components", cfg.Dim), Err: ErrDimensionMismatch}
	}
	if !State(x0).IsValid() {
		return nil, &ConfigError{Field: "initial_state", Value: x0, Reason: "must be finite", Err: ErrInvalidState}
	}
	x, err := Sanitized(x0, cfg.Cutoff)
	if err != nil {
		return nil, &ConfigError{Field: "initial_state", Value: x0, Reason: "cannot be sanitized", Err: err}
	}

	s := &Solver{
		cfg:   cfg,
		field: &replicatorField{fitness: fitness, dim: cfg.Dim},
		x:     x,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.integrator == nil {
		s.integrator = euler{}
	}
	if s.noise == nil && !cfg.Noise.IsNone() {
		p, err := noise.New(cfg.Noise, cfg.Seed)
		if err != nil {
			return nil, &ConfigError{Field: "noise", Value: cfg.Noise, Reason: "malformed noise parameters", Err: err}
		}
		s.noise = p
	}
	return s, nil
}

func (s *Solver) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// State returns a copy of the current state.
func (s *Solver) State() State { return s.x.Clone() }

func (s *Solver) Time() float64  { return s.t }
func (s *Solver) Steps() int     { return s.steps }
func (s *Solver) Config() Config { return s.cfg }

// Step advances the state by Dt and returns a copy of it. On failure the
// solver keeps its last accepted state and time, and the error is a
// *SimulationError wrapping ErrDegenerateState or ErrDimensionMismatch.
func (s *Solver) Step() (State, error) {
	dt := s.cfg.Dt

	s.field.err = nil
	next := s.integrator.Step(s.field, s.x, s.t, dt)
	if s.field.err != nil {
		return nil, s.fail(s.field.err)
	}
	if len(next) != len(s.x) {
		return nil, s.fail(fmt.Errorf("%w: integrator returned %d components", ErrDimensionMismatch, len(next)))
	}

	if s.noise != nil {
		inc := s.noise.Increment(s.x, dt)
		if len(inc) != len(next) {
			return nil, s.fail(fmt.Errorf("%w: noise returned %d components", ErrDimensionMismatch, len(inc)))
		}
		for i := range next {
			next[i] += inc[i]
		}
	}

	if err := Sanitize(next, s.cfg.Cutoff); err != nil {
		return nil, s.fail(err)
	}

	s.x = next
	s.steps++
	s.t = float64(s.steps) * dt

	for _, obs := range s.observers {
		obs.OnStep(s.x, s.t)
	}
	return s.x.Clone(), nil
}

func (s *Solver) fail(err error) error {
	return &SimulationError{Step: s.steps + 1, Time: s.t, State: s.x.Clone(), Wrapped: err}
}

// Run takes n steps, recording the current state first and then every
// SaveEvery-th step. If a step fails the samples recorded so far are returned
// together with the *SimulationError.
func (s *Solver) Run(n int) (*Trajectory, error) {
	if n < 0 {
		return nil, &ConfigError{Field: "steps", Value: n, Reason: "must not be negative"}
	}
	every := s.cfg.saveEvery()
	rec := NewRecorder(every, n/every+1)
	rec.Record(0, s.t, s.x)

	for i := 1; i <= n; i++ {
		x, err := s.Step()
		if err != nil {
			return rec.Trajectory(), err
		}
		rec.Record(i, s.t, x)
	}
	return rec.Trajectory(), nil
}
