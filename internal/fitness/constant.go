package fitness

import "github.com/san-kum/replisim/internal/dynamo"

// Constant assigns every component a fixed fitness regardless of the state.
type Constant struct {
	Values []float64
}

func NewConstant(values ...float64) *Constant {
	v := make([]float64, len(values))
	copy(v, values)
	return &Constant{Values: v}
}

func (c *Constant) Dim() int { return len(c.Values) }

func (c *Constant) Fitness(x dynamo.State) []float64 {
	f := make([]float64, len(c.Values))
	copy(f, c.Values)
	return f
}

func (c *Constant) DefaultState() dynamo.State { return Uniform(len(c.Values)) }
