package asyncga

import (
	"iter"
	"math"
)

// Crosser breeds gene sequences from two parents. Each call produces a finite
// sequence and is not restartable. Yielded slices are owned by the caller.
type Crosser[T any] interface {
	Cross(rt Runtime, parent1, parent2 *Chromosome[T]) iter.Seq[[]T]
}

func repeats(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

// UniformCrosser picks every gene from either parent at random.
type UniformCrosser[T any] struct {
	Repeat int
}

func (c UniformCrosser[T]) Cross(rt Runtime, parent1, parent2 *Chromosome[T]) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		n := min(parent1.Len(), parent2.Len())
		for range repeats(c.Repeat) {
			child := make([]T, n)
			for i := range child {
				if rt.Rand().Intn(2) == 0 {
					child[i] = parent1.Genes[i]
				} else {
					child[i] = parent2.Genes[i]
				}
			}
			if !yield(child) {
				return
			}
		}
	}
}

// SinglePointCrosser cuts both parents at one random index in [1, length) and
// yields the two complementary splices.
type SinglePointCrosser[T any] struct {
	Repeat int
}

func (c SinglePointCrosser[T]) Cross(rt Runtime, parent1, parent2 *Chromosome[T]) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		n := min(parent1.Len(), parent2.Len())
		if n < 2 {
			return
		}
		for range repeats(c.Repeat) {
			cut := 1 + rt.Rand().Intn(n-1)
			if !yield(splice(parent1.Genes, parent2.Genes, cut)) {
				return
			}
			if !yield(splice(parent2.Genes, parent1.Genes, cut)) {
				return
			}
		}
	}
}

func splice[T any](head, tail []T, cut int) []T {
	out := make([]T, 0, len(tail))
	out = append(out, head[:cut]...)
	return append(out, tail[cut:]...)
}

// ArithmeticCrosser yields the gene-wise average of two float parents.
type ArithmeticCrosser struct{}

func (ArithmeticCrosser) Cross(_ Runtime, parent1, parent2 *Chromosome[float64]) iter.Seq[[]float64] {
	return func(yield func([]float64) bool) {
		n := min(parent1.Len(), parent2.Len())
		child := make([]float64, n)
		for i := range child {
			child[i] = (parent1.Genes[i] + parent2.Genes[i]) / 2
		}
		yield(child)
	}
}

// IntArithmeticCrosser yields the gene-wise average of two integer parents,
// rounding odd sums up or down with a fair coin.
type IntArithmeticCrosser struct{}

func (IntArithmeticCrosser) Cross(rt Runtime, parent1, parent2 *Chromosome[int]) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		n := min(parent1.Len(), parent2.Len())
		child := make([]int, n)
		for i := range child {
			child[i] = IntAverage(parent1.Genes[i], parent2.Genes[i], rt.Rand().Float64())
		}
		yield(child)
	}
}

// IntAverage computes round((a+b-1)/2 + u) for u drawn from [0, 1).
func IntAverage(a, b int, u float64) int {
	return int(math.RoundToEven(float64(a+b-1)/2 + u))
}

// CrosserChain runs every crosser on the same parents and concatenates the
// offspring.
type CrosserChain[T any] []Crosser[T]

// ChainCrossers combines crossers by concatenating their outputs.
func ChainCrossers[T any](crossers ...Crosser[T]) CrosserChain[T] {
	return CrosserChain[T](crossers)
}

func (c CrosserChain[T]) Cross(rt Runtime, parent1, parent2 *Chromosome[T]) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		for _, crosser := range c {
			for child := range crosser.Cross(rt, parent1, parent2) {
				if !yield(child) {
					return
				}
			}
		}
	}
}
