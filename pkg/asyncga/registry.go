package asyncga

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"
)

var (
	ErrPolicyExists   = errors.New("policy already registered")
	ErrPolicyNotFound = errors.New("policy not found")
)

// PolicyKind groups registered policies by the Config field they fill.
type PolicyKind string

const (
	KindSelector   PolicyKind = "selector"
	KindCrosser    PolicyKind = "crosser"
	KindMutator    PolicyKind = "mutator"
	KindFilter     PolicyKind = "filter"
	KindMaturity   PolicyKind = "maturity"
	KindTerminator PolicyKind = "terminator"
)

// Params are the numeric parameters of a named policy.
type Params map[string]float64

func (p Params) Float(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

func (p Params) Int(key string, def int) int {
	if v, ok := p[key]; ok {
		return int(math.Round(v))
	}
	return def
}

func (p Params) Bool(key string, def bool) bool {
	if v, ok := p[key]; ok {
		return v != 0
	}
	return def
}

func (p Params) Duration(key string, def time.Duration) time.Duration {
	if v, ok := p[key]; ok {
		return time.Duration(v * float64(time.Second))
	}
	return def
}

// PolicyFactory builds a policy for float64 genes. cfg is the configuration
// being assembled; factories may read it but must not modify it.
type PolicyFactory func(p Params, cfg *Config[float64]) (any, error)

var policyRegistry = struct {
	mu sync.RWMutex
	m  map[PolicyKind]map[string]PolicyFactory
}{
	m: make(map[PolicyKind]map[string]PolicyFactory),
}

// RegisterPolicy makes a policy available to Settings under name.
func RegisterPolicy(kind PolicyKind, name string, factory PolicyFactory) error {
	if name == "" {
		return errors.New("policy name is required")
	}
	if factory == nil {
		return errors.New("policy factory is required")
	}

	policyRegistry.mu.Lock()
	defer policyRegistry.mu.Unlock()

	byName, ok := policyRegistry.m[kind]
	if !ok {
		byName = make(map[string]PolicyFactory)
		policyRegistry.m[kind] = byName
	}
	if _, exists := byName[name]; exists {
		return fmt.Errorf("%w: %s %s", ErrPolicyExists, kind, name)
	}
	byName[name] = factory
	return nil
}

// ResolvePolicy builds the policy registered under kind and name.
func ResolvePolicy(kind PolicyKind, name string, p Params, cfg *Config[float64]) (any, error) {
	policyRegistry.mu.RLock()
	factory, ok := policyRegistry.m[kind][name]
	policyRegistry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrPolicyNotFound, kind, name)
	}
	policy, err := factory(p, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrConfiguration, kind, name, err)
	}
	return policy, nil
}

func ListPolicies(kind PolicyKind) []string {
	policyRegistry.mu.RLock()
	defer policyRegistry.mu.RUnlock()

	names := make([]string, 0, len(policyRegistry.m[kind]))
	for name := range policyRegistry.m[kind] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func mustRegister(kind PolicyKind, name string, factory PolicyFactory) {
	if err := RegisterPolicy(kind, name, factory); err != nil {
		panic(err)
	}
}

func init() {
	mustRegister(KindSelector, "tournament", func(Params, *Config[float64]) (any, error) {
		return TournamentSelector[float64](), nil
	})
	mustRegister(KindSelector, "roulette", func(Params, *Config[float64]) (any, error) {
		return RouletteSelector[float64](), nil
	})
	mustRegister(KindSelector, "random", func(Params, *Config[float64]) (any, error) {
		return RandomSelector[float64]{}, nil
	})

	mustRegister(KindCrosser, "single_point", func(p Params, _ *Config[float64]) (any, error) {
		return SinglePointCrosser[float64]{Repeat: p.Int("repeat", 1)}, nil
	})
	mustRegister(KindCrosser, "uniform", func(p Params, _ *Config[float64]) (any, error) {
		return UniformCrosser[float64]{Repeat: p.Int("repeat", 1)}, nil
	})
	mustRegister(KindCrosser, "arithmetic", func(Params, *Config[float64]) (any, error) {
		return ArithmeticCrosser{}, nil
	})

	mustRegister(KindMutator, "noise", func(p Params, _ *Config[float64]) (any, error) {
		deviation := p.Float("deviation", DefaultNoiseDeviation)
		if deviation < 0 {
			return nil, fmt.Errorf("deviation must be >= 0, got %g", deviation)
		}
		return NoiseMutator{Repeat: p.Int("repeat", 1), Deviation: deviation}, nil
	})
	mustRegister(KindMutator, "swap", func(p Params, _ *Config[float64]) (any, error) {
		return SwapMutator[float64]{Repeat: p.Int("repeat", 1)}, nil
	})
	mustRegister(KindMutator, "gene", func(p Params, cfg *Config[float64]) (any, error) {
		if cfg.Problem == nil {
			return nil, errors.New("gene mutator needs the problem to be set first")
		}
		return GeneMutator[float64]{Repeat: p.Int("repeat", 1), Gene: cfg.Problem.InitialGene}, nil
	})

	mustRegister(KindFilter, "elite", func(p Params, _ *Config[float64]) (any, error) {
		return EliteFilter[float64]{Size: p.Int("size", 0)}, nil
	})
	mustRegister(KindFilter, "tournament", func(p Params, _ *Config[float64]) (any, error) {
		return TournamentFilter[float64](p.Int("size", 0)), nil
	})
	mustRegister(KindFilter, "roulette", func(p Params, _ *Config[float64]) (any, error) {
		return RouletteFilter[float64](p.Int("size", 0)), nil
	})

	mustRegister(KindMaturity, "age", func(p Params, _ *Config[float64]) (any, error) {
		return AgeMaturity{MinAge: p.Int("min_age", DefaultMinAge), GrowWithIteration: p.Bool("grow", true)}, nil
	})
	mustRegister(KindMaturity, "deterministic", func(Params, *Config[float64]) (any, error) {
		return DeterministicMaturity{}, nil
	})
	mustRegister(KindMaturity, "statistics", func(p Params, _ *Config[float64]) (any, error) {
		return StatisticsMaturity{Threshold: p.Float("threshold", DefaultStatisticThreshold)}, nil
	})
	mustRegister(KindMaturity, "variance", func(p Params, _ *Config[float64]) (any, error) {
		return VarianceMaturity{Threshold: p.Float("threshold", DefaultStatisticThreshold)}, nil
	})
	mustRegister(KindMaturity, "time", func(p Params, _ *Config[float64]) (any, error) {
		return TimeMaturity{Timeout: p.Duration("seconds", time.Second)}, nil
	})

	mustRegister(KindTerminator, "max_iteration", func(p Params, _ *Config[float64]) (any, error) {
		return MaxIteration{Max: p.Int("max", DefaultMaxIteration)}, nil
	})
	mustRegister(KindTerminator, "time_limit", func(p Params, _ *Config[float64]) (any, error) {
		d := p.Duration("seconds", 0)
		if d <= 0 {
			return nil, errors.New("seconds must be > 0")
		}
		return NewTimeLimit(d), nil
	})
	mustRegister(KindTerminator, "target_fitness", func(p Params, _ *Config[float64]) (any, error) {
		target, ok := p["target"]
		if !ok {
			return nil, errors.New("target is required")
		}
		return TargetFitness{Target: target}, nil
	})
}
