package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/replisim/internal/config"
	"github.com/san-kum/replisim/internal/dynamo"
	"github.com/san-kum/replisim/internal/logging"
)

// Sink receives the trajectory of every finished epoch. Epochs are numbered from 1.
type Sink interface {
	WriteEpoch(epoch int, traj *dynamo.Trajectory) error
}

type Result struct {
	Final   dynamo.State
	Time    float64
	Steps   int
	Epochs  int
	Metrics map[string]float64
}

// Experiment runs a configured replicator system for cfg.Epochs epochs of
// cfg.EpochLen steps each. Every epoch starts from the final state of the
// previous one, with the noise process carried over.
type Experiment struct {
	cfg     *config.Config
	model   Model
	solver  *dynamo.Solver
	metrics []dynamo.Metric
	sink    Sink
	logger  *slog.Logger
}

type Option func(*Experiment)

func WithSink(s Sink) Option {
	return func(e *Experiment) { e.sink = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

// WithMetrics replaces the registry's default metrics.
func WithMetrics(ms ...dynamo.Metric) Option {
	return func(e *Experiment) { e.metrics = ms }
}

func New(cfg *config.Config, reg *Registry, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		reg = NewRegistry()
	}

	model, err := reg.GetModel(cfg.Fitness)
	if err != nil {
		return nil, err
	}
	integ, err := reg.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	sc, err := cfg.SolverConfig(model.Dim)
	if err != nil {
		return nil, err
	}

	e := &Experiment{
		cfg:     cfg,
		model:   model,
		metrics: reg.DefaultMetrics(model.Fitness),
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}

	x0 := cfg.GetInitState(model.Dim)
	if len(cfg.InitState) == 0 && model.Default != nil {
		x0 = model.Default
	}
	e.solver, err = dynamo.New(sc, x0, model.Fitness, dynamo.WithIntegrator(integ))
	if err != nil {
		return nil, err
	}
	for _, m := range e.metrics {
		e.solver.AddObserver(m)
	}
	return e, nil
}

func (e *Experiment) Dim() int { return e.model.Dim }

func (e *Experiment) Solver() *dynamo.Solver { return e.solver }

// Run executes all epochs. The context is checked between steps; on
// cancellation or a failed step the partial epoch is still handed to the
// sink and the returned Result describes the last accepted state.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	for _, m := range e.metrics {
		m.Reset()
		m.OnStep(e.solver.State(), e.solver.Time())
	}

	res := &Result{Metrics: make(map[string]float64)}
	var runErr error
	for epoch := 1; epoch <= e.cfg.Epochs; epoch++ {
		e.logger.Debug("epoch started", "epoch", epoch, "t", e.solver.Time())

		traj, err := e.runEpoch(ctx)
		if traj.Len() > 0 && e.sink != nil {
			if serr := e.sink.WriteEpoch(epoch, traj); serr != nil {
				runErr = fmt.Errorf("epoch %d: %w", epoch, serr)
				break
			}
		}
		if err != nil {
			runErr = fmt.Errorf("epoch %d: %w", epoch, err)
			break
		}
		res.Epochs = epoch

		e.logger.Info("epoch finished",
			"epoch", epoch,
			"t", e.solver.Time(),
			"samples", traj.Len(),
			"support", e.solver.State().Support(),
		)
	}

	res.Final = e.solver.State()
	res.Time = e.solver.Time()
	res.Steps = e.solver.Steps()
	for _, m := range e.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res, runErr
}

func (e *Experiment) runEpoch(ctx context.Context) (*dynamo.Trajectory, error) {
	n := e.cfg.EpochLen
	every := max(e.solver.Config().SaveEvery, 1)
	rec := dynamo.NewRecorder(every, n/every+1)
	rec.Record(0, e.solver.Time(), e.solver.State())

	for i := 1; i <= n; i++ {
		select {
		case <-ctx.Done():
			return rec.Trajectory(), ctx.Err()
		default:
		}

		x, err := e.solver.Step()
		if err != nil {
			e.logger.Warn("step failed", "step", e.solver.Steps()+1, "error", err)
			return rec.Trajectory(), err
		}
		rec.Record(i, e.solver.Time(), x)

		if e.logger.Enabled(ctx, logging.LevelTrace) {
			e.logger.Log(ctx, logging.LevelTrace, "step", "step", e.solver.Steps(), "state", x)
		}
	}
	return rec.Trajectory(), nil
}
