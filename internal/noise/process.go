package noise

import (
	"math"
	"math/rand/v2"
)

// pcgStream is the fixed second word of the PCG state; the seed alone selects the sequence.
const pcgStream = 0x9e3779b97f4a7c15

// Process turns standard normal draws into per-component increments for one
// trajectory. It owns its random source and must not be shared between
// goroutines.
type Process struct {
	kind Kind
	seed int64
	rng  *rand.Rand

	// ou state, one entry per component
	eta []float64
}

// New returns a process for kind seeded with seed.
func New(kind Kind, seed int64) (*Process, error) {
	kind = kind.normalized()
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	p := &Process{kind: kind}
	p.Reseed(seed)
	return p, nil
}

func (p *Process) Kind() Kind { return p.kind }

// Reseed restarts the random sequence and clears any accumulated state.
func (p *Process) Reseed(seed int64) {
	p.seed = seed
	p.rng = rand.New(rand.NewPCG(uint64(seed), pcgStream))
	p.eta = nil
}

// Increment returns the perturbation to add to x over a step of length dt.
// x is read, never written.
func (p *Process) Increment(x []float64, dt float64) []float64 {
	out := make([]float64, len(x))
	sqrtDt := math.Sqrt(dt)

	switch p.kind.Type {
	case TypeNone:
	case TypeWhite:
		for i := range x {
			out[i] = p.kind.Sigma * sqrtDt * p.rng.NormFloat64()
		}
	case TypeProportional:
		for i, v := range x {
			out[i] = p.kind.Sigma * v * sqrtDt * p.rng.NormFloat64()
		}
	case TypeDemographic:
		for i, v := range x {
			out[i] = p.kind.Sigma * math.Sqrt(math.Max(v, 0)) * sqrtDt * p.rng.NormFloat64()
		}
	case TypeOU:
		if len(p.eta) != len(x) {
			p.eta = make([]float64, len(x))
		}
		decay := math.Exp(-dt / p.kind.Tau)
		spread := p.kind.Sigma * math.Sqrt(1-decay*decay)
		for i := range x {
			p.eta[i] = p.eta[i]*decay + spread*p.rng.NormFloat64()
			out[i] = p.eta[i] * dt
		}
	default:
		panic("noise: unhandled kind " + string(p.kind.Type))
	}
	return out
}

// Correlation returns a copy of the ou state, or nil for memoryless kinds.
func (p *Process) Correlation() []float64 {
	if p.eta == nil {
		return nil
	}
	c := make([]float64, len(p.eta))
	copy(c, p.eta)
	return c
}
