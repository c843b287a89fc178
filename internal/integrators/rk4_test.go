package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/replisim/internal/dynamo"
)

type simpleDynamics struct{}

func (s *simpleDynamics) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (s *simpleDynamics) StateDim() int { return 2 }

// logistic is the two-strategy replicator x' = x(1-x) in its first component.
type logistic struct{}

func (l *logistic) Derive(x dynamo.State, t float64) dynamo.State {
	g := x[0] * (1 - x[0])
	return dynamo.State{g, -g}
}

func (l *logistic) StateDim() int { return 2 }

func logisticExact(x0, t float64) float64 {
	return x0 * math.Exp(t) / (1 - x0 + x0*math.Exp(t))
}

func TestRK4Accuracy(t *testing.T) {
	dyn := &simpleDynamics{}
	integ := NewRK4()

	x0 := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	x := x0
	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestIntegratorsOrder(t *testing.T) {
	tests := []struct {
		name  string
		integ dynamo.Integrator
		tol   float64
	}{
		{"euler", NewEuler(), 1e-2},
		{"heun", NewHeun(), 1e-4},
		{"rk4", NewRK4(), 1e-8},
	}

	dyn := &logistic{}
	dt := 0.01
	steps := 200
	want := logisticExact(0.1, float64(steps)*dt)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := dynamo.State{0.1, 0.9}
			for i := 0; i < steps; i++ {
				x = tt.integ.Step(dyn, x, float64(i)*dt, dt)
			}
			if math.Abs(x[0]-want) > tt.tol {
				t.Errorf("x0 = %.10f, want %.10f (tol %g)", x[0], want, tt.tol)
			}
			if math.Abs(x[0]+x[1]-1) > 1e-12 {
				t.Errorf("mass not conserved: %v", x[0]+x[1])
			}
		})
	}
}

func TestIntegratorsDoNotModifyInput(t *testing.T) {
	for _, integ := range []dynamo.Integrator{NewEuler(), NewHeun(), NewRK4()} {
		x := dynamo.State{0.3, 0.7}
		integ.Step(&logistic{}, x, 0, 0.1)
		if x[0] != 0.3 || x[1] != 0.7 {
			t.Errorf("%T modified its input: %v", integ, x)
		}
	}
}
