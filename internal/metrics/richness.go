package metrics

import "github.com/san-kum/replisim/internal/dynamo"

// Richness counts the components with a positive share in the last observed state.
type Richness struct {
	name  string
	count int
}

func NewRichness() *Richness {
	return &Richness{name: "richness"}
}

func (r *Richness) Name() string { return r.name }

func (r *Richness) OnStep(x dynamo.State, t float64) {
	r.count = x.Support()
}

func (r *Richness) Value() float64 { return float64(r.count) }

func (r *Richness) Reset() { r.count = 0 }

// Extinctions counts transitions of a component from a positive share to zero.
type Extinctions struct {
	name   string
	alive  []bool
	events int
}

func NewExtinctions() *Extinctions {
	return &Extinctions{name: "extinctions"}
}

func (e *Extinctions) Name() string { return e.name }

func (e *Extinctions) OnStep(x dynamo.State, t float64) {
	if len(e.alive) != len(x) {
		e.alive = make([]bool, len(x))
		for i, v := range x {
			e.alive[i] = v > 0
		}
		return
	}
	for i, v := range x {
		if e.alive[i] && v == 0 {
			e.events++
		}
		e.alive[i] = v > 0
	}
}

func (e *Extinctions) Value() float64 { return float64(e.events) }

func (e *Extinctions) Reset() {
	e.alive = nil
	e.events = 0
}
