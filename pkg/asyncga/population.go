package asyncga

import (
	"cmp"
	"math"
	"slices"
)

// Population is kept sorted by ascending fitness mean, so index 0 is the best
// chromosome. Order among equal means is unspecified.
type Population[T any] []*Chromosome[T]

// compareFitness orders by mean, with NaN after every number.
func compareFitness[T any](a, b *Chromosome[T]) int {
	am, bm := a.fitness.Mean, b.fitness.Mean
	switch an, bn := math.IsNaN(am), math.IsNaN(bm); {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	}
	return cmp.Compare(am, bm)
}

// Sort restores ascending fitness order in place.
func (p Population[T]) Sort() {
	slices.SortStableFunc(p, compareFitness[T])
}

// IsSorted reports whether the population is ascending by fitness mean.
func (p Population[T]) IsSorted() bool {
	return slices.IsSortedFunc(p, compareFitness[T])
}

// Best returns the chromosome at the head of the population.
func (p Population[T]) Best() (*Chromosome[T], bool) {
	if len(p) == 0 {
		return nil, false
	}
	return p[0], true
}

// Clone returns a snapshot of the membership and order. Chromosomes are shared.
func (p Population[T]) Clone() Population[T] {
	return slices.Clone(p)
}

// Remove deletes and returns the chromosome at index i.
func (p *Population[T]) Remove(i int) *Chromosome[T] {
	c := (*p)[i]
	*p = slices.Delete(*p, i, i+1)
	return c
}

// Pop removes and returns the last (worst) chromosome.
func (p *Population[T]) Pop() *Chromosome[T] {
	return p.Remove(len(*p) - 1)
}

func (p Population[T]) means() []float64 {
	out := make([]float64, len(p))
	for i, c := range p {
		out[i] = c.fitness.Mean
	}
	return out
}
