package asyncga

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Fitness holds the running statistics of a chromosome's fitness samples.
// Lower means are better.
type Fitness struct {
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
}

// Estimate is the fitness bookkeeping shared by every chromosome, independent
// of its gene type. Age and fitness are written by the chromosome's fitness
// task; the active flag is cleared by the engine or by the task on exit.
type Estimate struct {
	id       string
	age      int
	fitness  Fitness
	sampled  bool
	active   bool
	finished bool
	started  time.Time
}

func newEstimate() Estimate {
	return Estimate{
		id:      uuid.NewString(),
		active:  true,
		started: time.Now(),
	}
}

// ID is a stable identifier, unique per chromosome.
func (e *Estimate) ID() string {
	return e.id
}

// Age is the number of fitness samples incorporated so far.
func (e *Estimate) Age() int {
	return e.age
}

// Fitness returns the current estimate. It is the zero value until
// HasFitness reports true.
func (e *Estimate) Fitness() Fitness {
	return e.fitness
}

// HasFitness reports whether at least one sample has been incorporated.
func (e *Estimate) HasFitness() bool {
	return e.sampled
}

// IsActive reports whether the fitness task may still incorporate samples.
func (e *Estimate) IsActive() bool {
	return e.active
}

// Deactivate asks the fitness task to stop at its next yield point. Once
// inactive a chromosome never becomes active again.
func (e *Estimate) Deactivate() {
	e.active = false
}

// Finished reports whether the fitness task has returned.
func (e *Estimate) Finished() bool {
	return e.finished
}

// Started is the time fitness estimation began.
func (e *Estimate) Started() time.Time {
	return e.started
}

func (e *Estimate) record(mean, variance float64) {
	e.age++
	e.fitness = Fitness{Mean: mean, Variance: variance}
	e.sampled = true
}

func (e *Estimate) finish() {
	e.active = false
	e.finished = true
}

// Chromosome is one candidate solution: an ordered gene sequence plus its
// fitness estimate.
type Chromosome[T any] struct {
	Genes []T
	Estimate
}

// NewChromosome wraps genes in an active chromosome with no fitness yet.
// The gene slice is copied.
func NewChromosome[T any](genes []T) *Chromosome[T] {
	return &Chromosome[T]{
		Genes:    slices.Clone(genes),
		Estimate: newEstimate(),
	}
}

// Len returns the number of genes.
func (c *Chromosome[T]) Len() int {
	return len(c.Genes)
}

// CloneGenes returns a copy of the gene sequence.
func (c *Chromosome[T]) CloneGenes() []T {
	return slices.Clone(c.Genes)
}

func (c *Chromosome[T]) String() string {
	if !c.sampled {
		return fmt.Sprintf("%v (unsampled, age=%d)", c.Genes, c.age)
	}
	return fmt.Sprintf("%v (mean=%.6g variance=%.6g age=%d)", c.Genes, c.fitness.Mean, c.fitness.Variance, c.age)
}
