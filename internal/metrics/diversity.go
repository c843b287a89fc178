package metrics

import (
	"math"

	"github.com/san-kum/replisim/internal/dynamo"
)

// Diversity is the Shannon entropy -sum x_i ln x_i of the last observed state.
type Diversity struct {
	name    string
	value   float64
	samples int
}

func NewDiversity() *Diversity {
	return &Diversity{name: "diversity"}
}

func (d *Diversity) Name() string {
	return d.name
}

func (d *Diversity) OnStep(x dynamo.State, t float64) {
	d.value = Entropy(x)
	d.samples++
}

func (d *Diversity) Value() float64 {
	return d.value
}

func (d *Diversity) Reset() {
	d.value = 0
	d.samples = 0
}

// Entropy returns the Shannon entropy of x in nats; zero shares contribute nothing.
func Entropy(x dynamo.State) float64 {
	h := 0.0
	for _, v := range x {
		if v > 0 {
			h -= v * math.Log(v)
		}
	}
	return h
}
