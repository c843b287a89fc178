package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/replisim/internal/dynamo"
	"github.com/san-kum/replisim/internal/noise"
)

const (
	DefaultDt        = 0.01
	DefaultCutoff    = 1e-9
	DefaultEpochLen  = 1000
	DefaultEpochs    = 1
	DefaultSaveEvery = 10
	DefaultScale     = 1.0
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("noisetype", func(fl validator.FieldLevel) bool {
		name := strings.ToLower(strings.TrimSpace(fl.Field().String()))
		return name == "" || slices.Contains(noise.TypeNames(), name)
	})
}

type Config struct {
	Name       string        `yaml:"name,omitempty"`
	Fitness    FitnessConfig `yaml:"fitness"`
	Integrator string        `yaml:"integrator" validate:"oneof=euler heun rk4"`
	Dt         float64       `yaml:"dt" validate:"gt=0"`
	Cutoff     float64       `yaml:"cutoff" validate:"gte=0,lt=1"`
	Seed       int64         `yaml:"seed"`
	EpochLen   int           `yaml:"epoch_len" validate:"gte=1"`
	Epochs     int           `yaml:"epochs" validate:"gte=1"`
	SaveEvery  int           `yaml:"save_every" validate:"gte=1"`
	InitState  []float64     `yaml:"init_state,omitempty" validate:"omitempty,min=2"`
	Noise      NoiseConfig   `yaml:"noise"`
}

// FitnessConfig selects a fitness model. Only the fields relevant to Model are read.
type FitnessConfig struct {
	Model        string      `yaml:"model" validate:"oneof=constant linear game random"`
	Game         string      `yaml:"game,omitempty" validate:"required_if=Model game"`
	Values       []float64   `yaml:"values,omitempty" validate:"required_if=Model constant"`
	Growth       []float64   `yaml:"growth,omitempty"`
	Interactions [][]float64 `yaml:"interactions,omitempty" validate:"required_if=Model linear"`
	Dim          int         `yaml:"dim,omitempty" validate:"required_if=Model random"`
	Scale        float64     `yaml:"scale,omitempty" validate:"gte=0"`
	Seed         int64       `yaml:"seed,omitempty"`
}

type NoiseConfig struct {
	Type   string         `yaml:"type" validate:"noisetype"`
	Params map[string]any `yaml:"params,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "rock_paper_scissors",
		Fitness: FitnessConfig{
			Model: "game",
			Game:  "rock_paper_scissors",
			Scale: DefaultScale,
		},
		Integrator: "rk4",
		Dt:         DefaultDt,
		Cutoff:     DefaultCutoff,
		EpochLen:   DefaultEpochLen,
		Epochs:     DefaultEpochs,
		SaveEvery:  DefaultSaveEvery,
		Noise:      NoiseConfig{Type: string(noise.TypeNone)},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks struct tags and the noise parameters.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.NoiseKind(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) NoiseKind() (noise.Kind, error) {
	return noise.ParseKind(c.Noise.Type, c.Noise.Params)
}

// SolverConfig maps the file config onto the solver parameters for dim components.
func (c *Config) SolverConfig(dim int) (dynamo.Config, error) {
	kind, err := c.NoiseKind()
	if err != nil {
		return dynamo.Config{}, err
	}
	sc := dynamo.Config{
		Dim:       dim,
		Dt:        c.Dt,
		Cutoff:    c.Cutoff,
		Seed:      c.Seed,
		Noise:     kind,
		SaveEvery: c.SaveEvery,
	}
	return sc, sc.Validate()
}

// GetInitState returns the configured initial state, or the uniform state when none is set.
func (c *Config) GetInitState(dim int) []float64 {
	if len(c.InitState) > 0 {
		x := make([]float64, len(c.InitState))
		copy(x, c.InitState)
		return x
	}
	x := make([]float64, dim)
	for i := range x {
		x[i] = 1 / float64(dim)
	}
	return x
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.InitState = slices.Clone(c.InitState)
	cp.Fitness.Values = slices.Clone(c.Fitness.Values)
	cp.Fitness.Growth = slices.Clone(c.Fitness.Growth)
	if c.Fitness.Interactions != nil {
		cp.Fitness.Interactions = make([][]float64, len(c.Fitness.Interactions))
		for i, row := range c.Fitness.Interactions {
			cp.Fitness.Interactions[i] = slices.Clone(row)
		}
	}
	if c.Noise.Params != nil {
		cp.Noise.Params = make(map[string]any, len(c.Noise.Params))
		for k, v := range c.Noise.Params {
			cp.Noise.Params[k] = v
		}
	}
	return &cp
}
