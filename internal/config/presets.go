package config

import "sort"

var Presets = map[string]*Config{
	"hawk_dove": {
		Name:       "hawk_dove",
		Fitness:    FitnessConfig{Model: "game", Game: "hawk_dove"},
		Integrator: "rk4", Dt: 0.01, Cutoff: 1e-9, EpochLen: 5000, Epochs: 1, SaveEvery: 10,
		InitState: []float64{0.1, 0.9},
		Noise:     NoiseConfig{Type: "none"},
	},
	"rps_cycle": {
		Name:       "rps_cycle",
		Fitness:    FitnessConfig{Model: "game", Game: "rock_paper_scissors"},
		Integrator: "rk4", Dt: 0.01, Cutoff: 1e-9, EpochLen: 10000, Epochs: 1, SaveEvery: 10,
		InitState: []float64{0.5, 0.3, 0.2},
		Noise:     NoiseConfig{Type: "none"},
	},
	"rps_noisy": {
		Name:       "rps_noisy",
		Fitness:    FitnessConfig{Model: "game", Game: "rock_paper_scissors"},
		Integrator: "euler", Dt: 0.01, Cutoff: 1e-6, EpochLen: 10000, Epochs: 1, SaveEvery: 10,
		Seed:      1,
		InitState: []float64{0.5, 0.3, 0.2},
		Noise:     NoiseConfig{Type: "white", Params: map[string]any{"sigma": 0.05}},
	},
	"prisoners_dilemma": {
		Name:       "prisoners_dilemma",
		Fitness:    FitnessConfig{Model: "game", Game: "prisoners_dilemma"},
		Integrator: "rk4", Dt: 0.01, Cutoff: 1e-6, EpochLen: 3000, Epochs: 1, SaveEvery: 10,
		InitState: []float64{0.9, 0.1},
		Noise:     NoiseConfig{Type: "none"},
	},
	"random_deterministic": {
		Name:       "random_deterministic",
		Fitness:    FitnessConfig{Model: "random", Dim: 10, Scale: 1.0, Seed: 7},
		Integrator: "rk4", Dt: 0.01, Cutoff: 1e-5, EpochLen: 1000, Epochs: 10, SaveEvery: 10,
		Noise: NoiseConfig{Type: "none"},
	},
	"random_demographic": {
		Name:       "random_demographic",
		Fitness:    FitnessConfig{Model: "random", Dim: 10, Scale: 0.5, Seed: 7},
		Integrator: "rk4", Dt: 0.01, Cutoff: 1e-5, EpochLen: 1000, Epochs: 10, SaveEvery: 10,
		Seed:  1,
		Noise: NoiseConfig{Type: "demographic", Params: map[string]any{"sigma": 0.1}},
	},
	"random_colored": {
		Name:       "random_colored",
		Fitness:    FitnessConfig{Model: "random", Dim: 5, Scale: 0.5, Seed: 3},
		Integrator: "heun", Dt: 0.01, Cutoff: 1e-5, EpochLen: 2000, Epochs: 2, SaveEvery: 10,
		Seed:  1,
		Noise: NoiseConfig{Type: "ou", Params: map[string]any{"sigma": 0.5, "tau": 1.0}},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
