package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/replisim/internal/config"
	"github.com/san-kum/replisim/internal/dynamo"
	"github.com/san-kum/replisim/internal/fitness"
	"github.com/san-kum/replisim/internal/integrators"
	"github.com/san-kum/replisim/internal/metrics"
)

// Model is a fitness model together with the number of strategies it is
// defined on and the state a run starts from when none is configured.
type Model struct {
	Fitness dynamo.FitnessModel
	Dim     int
	Default dynamo.State
}

type Registry struct {
	models      map[string]func(config.FitnessConfig) (Model, error)
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func(config.FitnessConfig) (Model, error)),
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.models["constant"] = func(fc config.FitnessConfig) (Model, error) {
		c := fitness.NewConstant(fc.Values...)
		return Model{Fitness: c, Dim: c.Dim(), Default: c.DefaultState()}, nil
	}
	r.models["linear"] = func(fc config.FitnessConfig) (Model, error) {
		l, err := fitness.NewLinear(fc.Growth, fc.Interactions)
		if err != nil {
			return Model{}, err
		}
		return linearModel(l), nil
	}
	r.models["game"] = func(fc config.FitnessConfig) (Model, error) {
		g, err := fitness.Game(fc.Game)
		if err != nil {
			return Model{}, err
		}
		// scale 0 means unset
		if fc.Scale > 0 && fc.Scale != 1 {
			g = g.Scaled(fc.Scale)
		}
		return linearModel(g), nil
	}
	r.models["random"] = func(fc config.FitnessConfig) (Model, error) {
		if fc.Dim < 2 {
			return Model{}, fmt.Errorf("random model needs at least 2 strategies, got %d", fc.Dim)
		}
		return linearModel(fitness.Random(fc.Dim, fc.Scale, fc.Seed)), nil
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["heun"] = func() dynamo.Integrator { return integrators.NewHeun() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }

	return r
}

func linearModel(l *fitness.Linear) Model {
	return Model{Fitness: l, Dim: l.Dim(), Default: l.DefaultState()}
}

func (r *Registry) GetModel(fc config.FitnessConfig) (Model, error) {
	fn, ok := r.models[fc.Model]
	if !ok {
		return Model{}, fmt.Errorf("unknown fitness model: %s", fc.Model)
	}
	return fn(fc)
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListModels() []string {
	return sortedKeys(r.models)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func (r *Registry) DefaultMetrics(f dynamo.FitnessModel) []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewDiversity(),
		metrics.NewRichness(),
		metrics.NewExtinctions(),
		metrics.NewMeanFitness(f),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
