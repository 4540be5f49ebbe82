package asyncga

import (
	"math/rand"
	"time"
)

// Runtime is the engine state visible to policies. All policies are invoked on
// the engine's single logical thread, so the random source needs no locking.
type Runtime interface {
	// Iteration is the number of generations started so far.
	Iteration() int
	// Elapsed is the time since the engine started evolving.
	Elapsed() time.Duration
	// PopulationLength is the configured target population size.
	PopulationLength() int
	// Rand is the engine-owned random source.
	Rand() *rand.Rand
	// Sleep suspends the caller while fitness tasks keep running.
	Sleep(d time.Duration)
	// Best is the fitness of the current best chromosome, if any.
	Best() (Fitness, bool)
}
