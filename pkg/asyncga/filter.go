package asyncga

import (
	"iter"
)

// Filter removes nonsurvivors from an over-capacity population, yielding
// each chromosome as it is removed.
type Filter[T any] interface {
	FilterNonsurvivors(rt Runtime, pop *Population[T]) iter.Seq[*Chromosome[T]]
}

func targetSize(rt Runtime, size int) int {
	if size > 0 {
		return size
	}
	return rt.PopulationLength()
}

// EliteFilter drops the worst chromosomes from the tail of the sorted
// population until it holds Size members. A zero Size means the engine's
// population length.
type EliteFilter[T any] struct {
	Size int
}

func (f EliteFilter[T]) FilterNonsurvivors(rt Runtime, pop *Population[T]) iter.Seq[*Chromosome[T]] {
	return func(yield func(*Chromosome[T]) bool) {
		size := targetSize(rt, f.Size)
		for len(*pop) > size {
			if !yield(pop.Pop()) {
				return
			}
		}
	}
}

// WeightedFilter removes random chromosomes while the population is over
// Size. Weights are shifted so the minimum is zero and passed through Key;
// higher weights are more likely to be removed.
type WeightedFilter[T any] struct {
	Size    int
	Weights Weigher[T]
	Key     func(float64) float64
}

func (f WeightedFilter[T]) FilterNonsurvivors(rt Runtime, pop *Population[T]) iter.Seq[*Chromosome[T]] {
	return func(yield func(*Chromosome[T]) bool) {
		size := targetSize(rt, f.Size)
		for len(*pop) > size {
			weights := shiftWeights(f.Weights(*pop), f.Key)
			if !yield(pop.Remove(drawWeighted(rt.Rand(), weights))) {
				return
			}
		}
	}
}

// TournamentFilter removes chromosomes with probability growing with the
// square of their rank. The best member is never removed.
func TournamentFilter[T any](size int) WeightedFilter[T] {
	return WeightedFilter[T]{Size: size, Weights: RankWeights[T], Key: Square}
}

// RouletteFilter removes chromosomes in proportion to their fitness means.
func RouletteFilter[T any](size int) WeightedFilter[T] {
	return WeightedFilter[T]{Size: size, Weights: MeanWeights[T]}
}

// FilterChain runs every filter in order and concatenates what they remove.
type FilterChain[T any] []Filter[T]

// ChainFilters combines filters by concatenating their outputs.
func ChainFilters[T any](filters ...Filter[T]) FilterChain[T] {
	return FilterChain[T](filters)
}

func (c FilterChain[T]) FilterNonsurvivors(rt Runtime, pop *Population[T]) iter.Seq[*Chromosome[T]] {
	return func(yield func(*Chromosome[T]) bool) {
		for _, f := range c {
			for removed := range f.FilterNonsurvivors(rt, pop) {
				if !yield(removed) {
					return
				}
			}
		}
	}
}
