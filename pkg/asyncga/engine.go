package asyncga

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"asyncga/internal/coop"
	"asyncga/internal/telemetry"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	originSeed   = "seed"
	originChild  = "child"
	originMutant = "mutant"
)

// Engine evolves a population of chromosomes with genes of type T.
type Engine[T any] struct {
	cfg Config[T]
}

// New validates cfg and fills in the default policies for every unset one.
func New[T any](cfg Config[T]) (*Engine[T], error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Engine[T]{cfg: cfg}, nil
}

// Config returns the effective configuration, defaults included.
func (e *Engine[T]) Config() Config[T] {
	return e.cfg
}

// Evolve runs the genetic algorithm. It yields a snapshot of the sorted
// population after seeding and after every generation. If the run fails, the
// error is yielded once with a nil population, after every fitness task has
// been drained. Breaking out of the loop stops the run and drains as well.
//
// Each call starts an independent run with its own scheduler, random source
// seeded from Config.Seed, and iteration counter.
func (e *Engine[T]) Evolve(ctx context.Context) iter.Seq2[Population[T], error] {
	return func(yield func(Population[T], error) bool) {
		r := e.newRun()
		ctx, span := telemetry.StartRun(ctx, r.cfg.PopulationLength, r.cfg.ChromosomeLength, string(r.cfg.FitnessMode))
		r.span = span
		defer span.End()

		var (
			err           error
			stopped       bool
			inConsumer    bool
			consumerPanic any
			// returned stays false while runtime.Goexit unwinds the
			// consumer, e.g. t.FailNow inside the loop body.
			returned bool
		)
		emit := func(pop Population[T]) bool {
			inConsumer = true
			ok := yield(pop, nil)
			inConsumer = false
			stopped = !ok
			return ok
		}

		defer func() {
			if !returned {
				err = errConsumerExited
			}
			if drainErr := r.drain(); drainErr != nil {
				err = errors.Join(err, drainErr)
			}
			r.finish(ctx, err)

			if consumerPanic != nil {
				panic(consumerPanic)
			}
			if returned && err != nil && !stopped {
				yield(nil, err)
			}
		}()

		err = func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					if inConsumer {
						consumerPanic = rec
						return
					}
					err = &PolicyError{Policy: r.policy, Err: fmt.Errorf("panic: %v", rec)}
				}
			}()
			return r.evolve(ctx, emit)
		}()
		returned = true
	}
}

// Run evolves to completion and returns the final population.
func (e *Engine[T]) Run(ctx context.Context) (Population[T], error) {
	var last Population[T]
	for pop, err := range e.Evolve(ctx) {
		if err != nil {
			return last, err
		}
		last = pop
	}
	return last, nil
}

// Main is Run under its conventional entry-point name.
func (e *Engine[T]) Main(ctx context.Context) (Population[T], error) {
	return e.Run(ctx)
}

func (e *Engine[T]) newRun() *run[T] {
	id := uuid.NewString()
	return &run[T]{
		cfg:     e.cfg,
		id:      id,
		log:     e.cfg.Logger.With("run", id),
		sched:   coop.NewScheduler(),
		arena:   newArena(),
		rng:     rand.New(rand.NewSource(e.cfg.Seed)),
		started: time.Now(),
		policy:  "engine",
	}
}

// run is the state of one Evolve call. It is only touched by the task holding
// the scheduler baton.
type run[T any] struct {
	cfg   Config[T]
	id    string
	log   *slog.Logger
	span  trace.Span
	sched *coop.Scheduler
	arena *arena
	rng   *rand.Rand

	started    time.Time
	iteration  int
	population Population[T]

	// policy names the policy being invoked, for panics raised by it.
	policy string
}

func (r *run[T]) Iteration() int {
	return r.iteration
}

func (r *run[T]) Elapsed() time.Duration {
	return time.Since(r.started)
}

func (r *run[T]) PopulationLength() int {
	return r.cfg.PopulationLength
}

func (r *run[T]) Rand() *rand.Rand {
	return r.rng
}

func (r *run[T]) Sleep(d time.Duration) {
	r.sched.Sleep(d)
}

func (r *run[T]) Best() (Fitness, bool) {
	var (
		best  Fitness
		found bool
	)
	for _, c := range r.population {
		if !c.HasFitness() {
			continue
		}
		if !found || c.fitness.Mean < best.Mean {
			best, found = c.fitness, true
		}
	}
	return best, found
}

func (r *run[T]) info() RunInfo {
	return RunInfo{
		ID:               r.id,
		FitnessMode:      r.cfg.FitnessMode,
		PopulationLength: r.cfg.PopulationLength,
		ChromosomeLength: r.cfg.ChromosomeLength,
		Seed:             r.cfg.Seed,
		Started:          r.started,
	}
}

func (r *run[T]) evolve(ctx context.Context, emit func(Population[T]) bool) error {
	r.log.Info("seeding population",
		"population_length", r.cfg.PopulationLength,
		"chromosome_length", r.cfg.ChromosomeLength,
		"fitness_mode", r.cfg.FitnessMode,
	)
	if err := r.seed(ctx); err != nil {
		return err
	}
	if r.cfg.Observer != nil {
		r.policy = "observer"
		if err := r.cfg.Observer.Setup(ctx, r.info(), r.population.Clone()); err != nil {
			return policyError("observer", err)
		}
	}
	if !emit(r.population.Clone()) {
		return nil
	}

	var (
		prev *Chromosome[T]
		err  error
	)
	for parent := range r.parents(&err) {
		if prev == nil {
			prev = parent
			continue
		}
		if genErr := r.generation(ctx, prev, parent); genErr != nil {
			err = genErr
			break
		}
		prev = parent

		r.report()
		if r.cfg.Observer != nil {
			r.policy = "observer"
			if obsErr := r.cfg.Observer.Generation(ctx, r, r.population.Clone()); obsErr != nil {
				err = policyError("observer", obsErr)
				break
			}
		}
		if !emit(r.population.Clone()) {
			break
		}
		r.sched.Yield()
		r.policy = "selector"
	}
	return err
}

func (r *run[T]) seed(ctx context.Context) error {
	for range r.cfg.PopulationLength {
		genes := make([]T, 0, r.cfg.ChromosomeLength)
		for range r.cfg.ChromosomeLength {
			r.policy = "problem"
			genes = append(genes, r.cfg.Problem.InitialGene(r.rng))
			r.sched.Yield()
		}
		c, err := r.await(ctx, r.spawn(genes, originSeed))
		if err != nil {
			return err
		}
		if c != nil {
			r.population = append(r.population, c)
		}
	}
	if len(r.population) == 0 {
		return fmt.Errorf("%w: no chromosome of the initial population produced a sample", ErrNoSamples)
	}
	r.population.Sort()
	return r.arena.sweep()
}

// parents streams parents until the terminator stops the run. The terminator
// is consulted before the first draw and after every parent, and the
// population is re-sorted before each draw since estimates keep moving.
func (r *run[T]) parents(errp *error) iter.Seq[*Chromosome[T]] {
	return func(yield func(*Chromosome[T]) bool) {
		for r.active() {
			drawn := false
			r.population.Sort()
			r.policy = "selector"
			for parent := range r.cfg.Selector.Select(r, &r.population) {
				drawn = true
				if !yield(parent) || !r.active() {
					return
				}
				r.population.Sort()
				r.policy = "selector"
			}
			if !drawn {
				*errp = policyError("selector", ErrNoParents)
				return
			}
		}
	}
}

func (r *run[T]) active() bool {
	r.policy = "terminator"
	return r.cfg.Terminator.IsActive(r)
}

func (r *run[T]) generation(ctx context.Context, parent1, parent2 *Chromosome[T]) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.iteration++

	r.policy = "crosser"
	children, err := r.createAll(ctx, r.cfg.Crosser.Cross(r, parent1, parent2), originChild)
	if err != nil {
		return err
	}
	for _, child := range children {
		child.Deactivate()
		r.policy = "mutator"
		mutants, err := r.createAll(ctx, r.cfg.Mutator.Mutate(r, child), originMutant)
		if err != nil {
			return err
		}
		r.population = append(r.population, mutants...)
	}

	r.population.Sort()
	r.policy = "filter"
	for removed := range r.cfg.Filter.FilterNonsurvivors(r, &r.population) {
		removed.Deactivate()
	}
	if !r.population.IsSorted() {
		return policyError("filter", ErrPopulationOrder)
	}
	if err := r.arena.sweep(); err != nil {
		return err
	}
	telemetry.Generations.Inc()
	return nil
}

// createAll spawns a fitness task for every gene sequence first, so their
// estimates progress together, then waits for each in order. Discarded
// candidates are left out of the result.
func (r *run[T]) createAll(ctx context.Context, genes iter.Seq[[]T], origin string) ([]*Chromosome[T], error) {
	var spawned []*Chromosome[T]
	for g := range genes {
		spawned = append(spawned, r.spawn(g, origin))
	}
	created := spawned[:0]
	for _, c := range spawned {
		mature, err := r.await(ctx, c)
		if err != nil {
			return nil, err
		}
		if mature != nil {
			created = append(created, mature)
		}
	}
	return created, nil
}

func (r *run[T]) spawn(genes []T, origin string) *Chromosome[T] {
	c := &Chromosome[T]{Genes: genes, Estimate: newEstimate()}
	task := r.sched.Spawn(c.ID(), func() error {
		return r.estimate(c)
	})
	r.arena.add(&c.Estimate, task)
	telemetry.Chromosomes.WithLabelValues(origin).Inc()
	telemetry.TasksRunning.Inc()
	return c
}

// await polls maturity, yielding to the fitness tasks between checks. It
// returns nil without error for an unsampled chromosome under
// UnsampledDiscard.
func (r *run[T]) await(ctx context.Context, c *Chromosome[T]) (*Chromosome[T], error) {
	task := r.arena.task(c.ID())
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.policy = "maturity"
		if r.cfg.Maturity.IsMature(r, &c.Estimate) {
			return c, nil
		}
		if task.Done() {
			break
		}
		r.sched.Yield()
	}

	r.arena.release(c.ID())
	if err := task.Err(); err != nil {
		return nil, policyError("fitness", err)
	}
	if !c.HasFitness() {
		if r.cfg.OnUnsampled == UnsampledDiscard {
			r.log.Debug("discarding unsampled chromosome", "chromosome", c.ID())
			return nil, nil
		}
		return nil, fmt.Errorf("%w: chromosome %s", ErrNoSamples, c.ID())
	}
	return c, nil
}

// estimate is the body of a fitness task. It folds samples into the
// chromosome's estimate, yielding after each one, until the source ends or
// the chromosome is deactivated. The active flag is read only after a sample,
// so every task that starts takes at least one.
func (r *run[T]) estimate(c *Chromosome[T]) error {
	defer func() {
		c.finish()
		telemetry.TasksRunning.Dec()
	}()

	acc, err := NewAccumulator(r.cfg.FitnessMode)
	if err != nil {
		return err
	}
	for sample, err := range r.cfg.Problem.FitnessOf(c) {
		if err != nil {
			return policyError("fitness", err)
		}
		if math.IsNaN(sample) {
			return policyError("fitness", ErrNaNSample)
		}
		f := acc.Add(sample)
		c.record(f.Mean, f.Variance)
		telemetry.Samples.Inc()

		r.sched.Yield()
		if !c.IsActive() {
			telemetry.TasksCancelled.Inc()
			return nil
		}
	}
	return nil
}

// drain deactivates every chromosome and waits for all fitness tasks.
func (r *run[T]) drain() error {
	for _, c := range r.population {
		c.Deactivate()
	}
	r.arena.deactivateAll()
	r.sched.Join()
	return r.arena.sweep()
}

func (r *run[T]) report() {
	best, _ := r.Best()
	telemetry.GenerationEvent(r.span, r.iteration, len(r.population), best.Mean)
	r.log.Debug("generation",
		"iteration", r.iteration,
		"population", len(r.population),
		"best_mean", best.Mean,
		"best_variance", best.Variance,
		"outstanding_tasks", r.arena.len(),
	)
}

func (r *run[T]) finish(ctx context.Context, err error) {
	telemetry.Runs.WithLabelValues(telemetry.RunResult(err)).Inc()
	if err != nil {
		r.span.RecordError(err)
		r.span.SetStatus(codes.Error, err.Error())
		r.log.Error("evolve failed", "iteration", r.iteration, "error", err)
	} else {
		best, _ := r.Best()
		r.log.Info("evolve finished",
			"generations", r.iteration,
			"best_mean", best.Mean,
			"elapsed", r.Elapsed(),
		)
	}

	if r.cfg.Observer != nil {
		pop := r.population.Clone()
		if perr := guard("observer", func() { r.cfg.Observer.Finish(ctx, r, pop, err) }); perr != nil {
			r.log.Warn("observer finish", "error", perr)
		}
	}
}
