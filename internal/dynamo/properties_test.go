package dynamo_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/replisim/internal/dynamo"
	"github.com/san-kum/replisim/internal/fitness"
	"github.com/san-kum/replisim/internal/integrators"
	"github.com/san-kum/replisim/internal/noise"
)

func runSolver(cfg dynamo.Config, x0 []float64, fit dynamo.FitnessModel, steps int, opts ...dynamo.Option) *dynamo.Trajectory {
	s, err := dynamo.New(cfg, x0, fit, opts...)
	Expect(err).NotTo(HaveOccurred())
	traj, err := s.Run(steps)
	Expect(err).NotTo(HaveOccurred())
	return traj
}

func expectOnSimplex(traj *dynamo.Trajectory) {
	for _, sample := range traj.Samples {
		Expect(sample.State.Sum()).To(BeNumerically("~", 1, dynamo.Tolerance))
		for _, v := range sample.State {
			Expect(v).To(BeNumerically(">=", 0))
		}
	}
}

var _ = Describe("Solver", func() {
	var cfg dynamo.Config

	BeforeEach(func() {
		cfg = dynamo.DefaultConfig(3)
		cfg.Dt = 0.01
		cfg.Cutoff = 1e-9
	})

	Describe("simplex invariant", func() {
		DescribeTable("holds after every step",
			func(kind noise.Kind, integ dynamo.Integrator) {
				cfg.Noise = kind
				cfg.Seed = 17
				fit := fitness.Random(3, 2, 5)
				traj := runSolver(cfg, []float64{0.6, 0.3, 0.1}, fit, 2000, dynamo.WithIntegrator(integ))
				Expect(traj.Len()).To(Equal(2001))
				expectOnSimplex(traj)
			},
			Entry("deterministic euler", noise.None(), integrators.NewEuler()),
			Entry("deterministic rk4", noise.None(), integrators.NewRK4()),
			Entry("white noise", noise.White(0.3), integrators.NewEuler()),
			Entry("proportional noise", noise.Proportional(0.5), integrators.NewHeun()),
			Entry("demographic noise", noise.Demographic(0.5), integrators.NewRK4()),
			Entry("colored noise", noise.OrnsteinUhlenbeck(2, 0.1), integrators.NewEuler()),
		)

		It("survives a step size large enough to overshoot the boundary", func() {
			cfg.Dim = 2
			cfg.Dt = 5
			traj := runSolver(cfg, []float64{0.5, 0.5}, fitness.NewConstant(0, 10), 3)
			expectOnSimplex(traj)
			last, _ := traj.Final()
			Expect(last.State[0]).To(Equal(0.0))
			Expect(last.State[1]).To(BeNumerically("~", 1, dynamo.Tolerance))
		})
	})

	Describe("reproducibility", func() {
		It("is bit-identical without noise", func() {
			fit := fitness.RockPaperScissors(1, 2)
			a := runSolver(cfg, []float64{0.5, 0.3, 0.2}, fit, 1000)
			b := runSolver(cfg, []float64{0.5, 0.3, 0.2}, fit, 1000)
			Expect(a.Samples).To(Equal(b.Samples))
		})

		It("is bit-identical for a fixed seed with white noise", func() {
			cfg.Noise = noise.White(0.2)
			cfg.Seed = 1234
			fit := fitness.RockPaperScissors(1, 1)
			a := runSolver(cfg, []float64{0.5, 0.3, 0.2}, fit, 1000)
			b := runSolver(cfg, []float64{0.5, 0.3, 0.2}, fit, 1000)
			Expect(a.Samples).To(Equal(b.Samples))
		})

		It("differs for a different seed", func() {
			cfg.Noise = noise.White(0.2)
			fit := fitness.RockPaperScissors(1, 1)
			cfg.Seed = 1
			a := runSolver(cfg, []float64{0.5, 0.3, 0.2}, fit, 100)
			cfg.Seed = 2
			b := runSolver(cfg, []float64{0.5, 0.3, 0.2}, fit, 100)
			Expect(a.Samples).NotTo(Equal(b.Samples))
		})

		It("uses an injected process instead of the configured kind", func() {
			cfg.Noise = noise.White(0.2)
			p, err := noise.New(noise.None(), 0)
			Expect(err).NotTo(HaveOccurred())
			traj := runSolver(cfg, []float64{0.25, 0.25, 0.5}, fitness.NewConstant(1, 1, 1), 100, dynamo.WithNoise(p))
			last, _ := traj.Final()
			Expect(last.State).To(Equal(dynamo.State{0.25, 0.25, 0.5}))
		})
	})

	Describe("dynamics", func() {
		It("leaves a neutral state fixed", func() {
			traj := runSolver(cfg, []float64{0.25, 0.25, 0.5}, fitness.NewConstant(2, 2, 2), 1000)
			for _, sample := range traj.Samples {
				Expect(sample.State).To(Equal(dynamo.State{0.25, 0.25, 0.5}))
			}
		})

		It("approaches the hawk-dove mixed equilibrium", func() {
			cfg.Dim = 2
			traj := runSolver(cfg, []float64{0.1, 0.9}, fitness.HawkDove(2, 3), 5000, dynamo.WithIntegrator(integrators.NewRK4()))
			last, _ := traj.Final()
			Expect(last.State[0]).To(BeNumerically("~", 2.0/3.0, 1e-3))
		})

		It("drives cooperators extinct in the prisoner's dilemma", func() {
			cfg.Dim = 2
			cfg.Cutoff = 1e-6
			traj := runSolver(cfg, []float64{0.9, 0.1}, fitness.PrisonersDilemma(5, 3, 1, 0), 20000)
			last, _ := traj.Final()
			Expect(last.State[0]).To(Equal(0.0))
			Expect(last.State[1]).To(BeNumerically("~", 1, dynamo.Tolerance))
		})

		It("keeps extinct components extinct without additive noise", func() {
			cfg.Noise = noise.Demographic(0.5)
			cfg.Seed = 3
			traj := runSolver(cfg, []float64{0.5, 0.5, 0}, fitness.RockPaperScissors(1, 1), 500)
			for _, sample := range traj.Samples {
				Expect(sample.State[2]).To(Equal(0.0))
			}
		})
	})
})

var _ = Describe("Sanitize", func() {
	It("renormalizes over the surviving components", func() {
		x, err := dynamo.Sanitized([]float64{0.5, 0.5, -1e-10}, 1e-9)
		Expect(err).NotTo(HaveOccurred())
		Expect(x).To(Equal(dynamo.State{0.5, 0.5, 0}))
	})

	It("reports a fully extinct state", func() {
		_, err := dynamo.Sanitized([]float64{1e-10, 1e-11, -3}, 1e-9)
		Expect(err).To(MatchError(dynamo.ErrDegenerateState))
	})

	It("is idempotent on valid states", func() {
		x := dynamo.State{0.1, 0.2, 0.7}
		once, err := dynamo.Sanitized(x, 1e-9)
		Expect(err).NotTo(HaveOccurred())
		twice, err := dynamo.Sanitized(once, 1e-9)
		Expect(err).NotTo(HaveOccurred())
		for i := range x {
			Expect(math.Abs(once[i] - x[i])).To(BeNumerically("<=", dynamo.Tolerance))
			Expect(math.Abs(twice[i] - once[i])).To(BeNumerically("<=", dynamo.Tolerance))
		}
	})
})
