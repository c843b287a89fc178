package metrics

import "github.com/san-kum/replisim/internal/dynamo"

// MeanFitness averages the population fitness sum_i x_i f_i(x) over all
// observed states.
type MeanFitness struct {
	name    string
	fitness dynamo.FitnessModel
	sum     float64
	samples int
}

func NewMeanFitness(fitness dynamo.FitnessModel) *MeanFitness {
	return &MeanFitness{name: "mean_fitness", fitness: fitness}
}

func (m *MeanFitness) Name() string {
	return m.name
}

func (m *MeanFitness) OnStep(x dynamo.State, t float64) {
	f := m.fitness.Fitness(x)
	avg := 0.0
	for i := range x {
		if i < len(f) {
			avg += x[i] * f[i]
		}
	}
	m.sum += avg
	m.samples++
}

func (m *MeanFitness) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanFitness) Reset() {
	m.sum = 0
	m.samples = 0
}
