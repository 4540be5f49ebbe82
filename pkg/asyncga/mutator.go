package asyncga

import (
	"iter"
	"math/rand"
	"slices"
)

// Mutator derives gene sequences from one chromosome. The chromosome itself
// is never modified: mutations apply to a copy of its genes, accumulate across
// Repeat steps, and each step yields a fresh clone of the copy.
type Mutator[T any] interface {
	Mutate(rt Runtime, c *Chromosome[T]) iter.Seq[[]T]
}

func mutateCopy[T any](c *Chromosome[T], repeat int, step func(genes []T) bool) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		genes := c.CloneGenes()
		if len(genes) == 0 {
			return
		}
		for range repeats(repeat) {
			if !step(genes) {
				return
			}
			if !yield(slices.Clone(genes)) {
				return
			}
		}
	}
}

// GeneMutator replaces one random gene with a freshly generated one.
type GeneMutator[T any] struct {
	Repeat int
	Gene   func(rng *rand.Rand) T
}

func (m GeneMutator[T]) Mutate(rt Runtime, c *Chromosome[T]) iter.Seq[[]T] {
	return mutateCopy(c, m.Repeat, func(genes []T) bool {
		genes[rt.Rand().Intn(len(genes))] = m.Gene(rt.Rand())
		return true
	})
}

// NoiseMutator adds gaussian noise with standard deviation Deviation to one
// random gene.
type NoiseMutator struct {
	Repeat    int
	Deviation float64
}

func (m NoiseMutator) Mutate(rt Runtime, c *Chromosome[float64]) iter.Seq[[]float64] {
	return mutateCopy(c, m.Repeat, func(genes []float64) bool {
		genes[rt.Rand().Intn(len(genes))] += rt.Rand().NormFloat64() * m.Deviation
		return true
	})
}

// IntMutator increments or decrements one random gene.
type IntMutator struct {
	Repeat int
}

func (m IntMutator) Mutate(rt Runtime, c *Chromosome[int]) iter.Seq[[]int] {
	return mutateCopy(c, m.Repeat, func(genes []int) bool {
		delta := 1
		if rt.Rand().Intn(2) == 0 {
			delta = -1
		}
		genes[rt.Rand().Intn(len(genes))] += delta
		return true
	})
}

// SwapMutator exchanges two distinct random genes. Chromosomes shorter than
// two genes yield nothing.
type SwapMutator[T any] struct {
	Repeat int
}

func (m SwapMutator[T]) Mutate(rt Runtime, c *Chromosome[T]) iter.Seq[[]T] {
	return mutateCopy(c, m.Repeat, func(genes []T) bool {
		if len(genes) < 2 {
			return false
		}
		i := rt.Rand().Intn(len(genes))
		j := rt.Rand().Intn(len(genes) - 1)
		if j >= i {
			j++
		}
		genes[i], genes[j] = genes[j], genes[i]
		return true
	})
}

// MutatorChain runs every mutator on the same chromosome and concatenates
// the results.
type MutatorChain[T any] []Mutator[T]

// ChainMutators combines mutators by concatenating their outputs.
func ChainMutators[T any](mutators ...Mutator[T]) MutatorChain[T] {
	return MutatorChain[T](mutators)
}

func (c MutatorChain[T]) Mutate(rt Runtime, chromosome *Chromosome[T]) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		for _, m := range c {
			for genes := range m.Mutate(rt, chromosome) {
				if !yield(genes) {
					return
				}
			}
		}
	}
}
