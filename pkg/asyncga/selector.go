package asyncga

import (
	"iter"
)

// Selector streams parents drawn from the population. The stream may be
// infinite; the engine stops pulling when it no longer needs parents and
// restarts Select when a stream ends. The population may be re-sorted and
// resized between draws.
type Selector[T any] interface {
	Select(rt Runtime, pop *Population[T]) iter.Seq[*Chromosome[T]]
}

// WeightedSelector re-sorts the population, weighs every member, reverses the
// weights so the best (lowest fitness) member receives the largest one, shifts
// them so the minimum is zero, applies Key and draws one parent per call.
type WeightedSelector[T any] struct {
	Weights Weigher[T]
	Key     func(float64) float64
}

func (s WeightedSelector[T]) Select(rt Runtime, pop *Population[T]) iter.Seq[*Chromosome[T]] {
	return func(yield func(*Chromosome[T]) bool) {
		if len(*pop) == 0 {
			return
		}
		pop.Sort()
		weights := shiftWeights(reversed(s.Weights(*pop)), s.Key)
		yield((*pop)[drawWeighted(rt.Rand(), weights)])
	}
}

// TournamentSelector favours chromosomes by squared rank: the best member has
// weight (n-1)^2 and the worst is never picked.
func TournamentSelector[T any]() WeightedSelector[T] {
	return WeightedSelector[T]{Weights: RankWeights[T], Key: Square}
}

// RouletteSelector favours chromosomes in proportion to their fitness means,
// mirrored so lower means are more likely.
func RouletteSelector[T any]() WeightedSelector[T] {
	return WeightedSelector[T]{Weights: MeanWeights[T]}
}

// RandomSelector draws parents uniformly and indefinitely.
type RandomSelector[T any] struct{}

func (RandomSelector[T]) Select(rt Runtime, pop *Population[T]) iter.Seq[*Chromosome[T]] {
	return func(yield func(*Chromosome[T]) bool) {
		for len(*pop) > 0 {
			if !yield((*pop)[rt.Rand().Intn(len(*pop))]) {
				return
			}
		}
	}
}
