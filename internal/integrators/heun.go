package integrators

import "github.com/san-kum/replisim/internal/dynamo"

// Heun is the explicit trapezoidal predictor-corrector, second order.
type Heun struct {
	predict dynamo.State
}

func NewHeun() *Heun {
	return &Heun{}
}

func (h *Heun) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	if len(h.predict) != n {
		h.predict = make(dynamo.State, n)
	}

	k1 := dyn.Derive(x, t)
	for i := 0; i < n; i++ {
		h.predict[i] = x[i] + dt*k1[i]
	}
	k2 := dyn.Derive(h.predict, t+dt)

	result := make(dynamo.State, n)
	half := dt * 0.5
	for i := 0; i < n; i++ {
		result[i] = x[i] + half*(k1[i]+k2[i])
	}
	return result
}
