package asyncga

import (
	"iter"
	"log/slog"
	"math/rand"
)

// Defaults applied by New to a zero Config.
const (
	// DefaultMinAge is the sample count AgeMaturity requires before growth.
	DefaultMinAge = 10
	// DefaultStatisticThreshold bounds the standard error for StatisticsMaturity.
	DefaultStatisticThreshold = 0.1
	// DefaultNoiseDeviation is the NoiseMutator standard deviation.
	DefaultNoiseDeviation = 1.0
	// DefaultMaxIteration is the generation limit of the default terminator.
	DefaultMaxIteration = 50
)

// Problem supplies the domain: how to draw an initial gene and how to sample
// a chromosome's fitness. FitnessOf may yield forever; the engine stops
// pulling once the chromosome is deactivated. Lower fitness is better.
type Problem[T any] interface {
	InitialGene(rng *rand.Rand) T
	FitnessOf(c *Chromosome[T]) iter.Seq2[float64, error]
}

// ProblemFuncs adapts a pair of functions to Problem.
type ProblemFuncs[T any] struct {
	Gene    func(rng *rand.Rand) T
	Fitness func(c *Chromosome[T]) iter.Seq2[float64, error]
}

func (p ProblemFuncs[T]) InitialGene(rng *rand.Rand) T {
	return p.Gene(rng)
}

func (p ProblemFuncs[T]) FitnessOf(c *Chromosome[T]) iter.Seq2[float64, error] {
	return p.Fitness(c)
}

// Repeated turns a single-shot fitness function into an endless sample
// stream, for noisy fitness that should be re-evaluated until mature.
func Repeated[T any](fn func(c *Chromosome[T]) (float64, error)) func(c *Chromosome[T]) iter.Seq2[float64, error] {
	return func(c *Chromosome[T]) iter.Seq2[float64, error] {
		return func(yield func(float64, error) bool) {
			for {
				v, err := fn(c)
				if !yield(v, err) || err != nil {
					return
				}
			}
		}
	}
}

// Once yields a single exact sample, for deterministic fitness.
func Once[T any](fn func(c *Chromosome[T]) (float64, error)) func(c *Chromosome[T]) iter.Seq2[float64, error] {
	return func(c *Chromosome[T]) iter.Seq2[float64, error] {
		return func(yield func(float64, error) bool) {
			yield(fn(c))
		}
	}
}

// UnsampledPolicy decides what happens to a chromosome whose fitness source
// ends before producing a sample.
type UnsampledPolicy int

const (
	// UnsampledFail aborts the run with ErrNoSamples.
	UnsampledFail UnsampledPolicy = iota
	// UnsampledDiscard drops the chromosome and carries on.
	UnsampledDiscard
)

// Config describes an engine. Lengths and Problem are required; New fills
// every nil policy and the Logger with a default.
type Config[T any] struct {
	ChromosomeLength int
	PopulationLength int
	FitnessMode      FitnessMode
	Seed             int64

	Problem    Problem[T]
	Crosser    Crosser[T]
	Mutator    Mutator[T]
	Filter     Filter[T]
	Maturity   Maturity
	Selector   Selector[T]
	Terminator Terminator

	OnUnsampled UnsampledPolicy
	Observer    Observer[T]
	Logger      *slog.Logger
}

// withDefaults validates cfg and fills unset policies.
func (cfg Config[T]) withDefaults() (Config[T], error) {
	if cfg.ChromosomeLength <= 0 {
		return Config[T]{}, configError("chromosome length must be > 0, got %d", cfg.ChromosomeLength)
	}
	if cfg.PopulationLength <= 0 {
		return Config[T]{}, configError("population length must be > 0, got %d", cfg.PopulationLength)
	}
	if cfg.Problem == nil {
		return Config[T]{}, configError("problem is required")
	}
	mode, err := ParseFitnessMode(string(cfg.FitnessMode))
	if err != nil {
		return Config[T]{}, err
	}
	cfg.FitnessMode = mode

	switch cfg.OnUnsampled {
	case UnsampledFail, UnsampledDiscard:
	default:
		return Config[T]{}, configError("unknown unsampled policy %d", cfg.OnUnsampled)
	}

	if cfg.Crosser == nil {
		cfg.Crosser = SinglePointCrosser[T]{}
	}
	if cfg.Mutator == nil {
		if noise, ok := any(NoiseMutator{Deviation: DefaultNoiseDeviation}).(Mutator[T]); ok {
			cfg.Mutator = noise
		} else {
			cfg.Mutator = GeneMutator[T]{Gene: cfg.Problem.InitialGene}
		}
	}
	if cfg.Filter == nil {
		cfg.Filter = EliteFilter[T]{Size: cfg.PopulationLength}
	}
	if cfg.Maturity == nil {
		cfg.Maturity = AllMature(
			AgeMaturity{MinAge: DefaultMinAge, GrowWithIteration: true},
			StatisticsMaturity{Threshold: DefaultStatisticThreshold},
		)
	}
	if cfg.Selector == nil {
		cfg.Selector = TournamentSelector[T]()
	}
	if cfg.Terminator == nil {
		cfg.Terminator = MaxIteration{Max: DefaultMaxIteration}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg, nil
}
