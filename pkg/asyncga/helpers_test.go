package asyncga

import (
	"io"
	"log/slog"
	"math/rand"
	"time"
)

type stubRuntime struct {
	rng       *rand.Rand
	iteration int
	popLen    int
	slept     time.Duration
	best      *Fitness
}

func newStubRuntime(seed int64, popLen int) *stubRuntime {
	return &stubRuntime{rng: rand.New(rand.NewSource(seed)), popLen: popLen}
}

func (s *stubRuntime) Iteration() int         { return s.iteration }
func (s *stubRuntime) Elapsed() time.Duration { return 0 }
func (s *stubRuntime) PopulationLength() int  { return s.popLen }
func (s *stubRuntime) Rand() *rand.Rand       { return s.rng }
func (s *stubRuntime) Sleep(d time.Duration)  { s.slept += d }
func (s *stubRuntime) Best() (Fitness, bool) {
	if s.best == nil {
		return Fitness{}, false
	}
	return *s.best, true
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// scored builds a chromosome that already carries a fitness estimate.
func scored[T any](genes []T, mean float64) *Chromosome[T] {
	c := NewChromosome(genes)
	c.record(mean, 0)
	return c
}

// scoredPopulation returns a sorted population with the given means.
func scoredPopulation(means ...float64) Population[int] {
	pop := make(Population[int], 0, len(means))
	for i, m := range means {
		pop = append(pop, scored([]int{i}, m))
	}
	pop.Sort()
	return pop
}

func sphere(c *Chromosome[float64]) (float64, error) {
	var sum float64
	for _, g := range c.Genes {
		d := g - 5
		sum += d * d
	}
	return sum, nil
}

func sphereProblem() Problem[float64] {
	return ProblemFuncs[float64]{
		Gene:    func(rng *rand.Rand) float64 { return rng.Float64() * 10 },
		Fitness: Repeated(sphere),
	}
}
