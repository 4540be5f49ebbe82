package asyncga

import (
	"math/rand"
)

// Weigher assigns one raw weight per member of a sorted population.
type Weigher[T any] func(pop Population[T]) []float64

// RankWeights weighs each chromosome by its rank index (0 for the best).
func RankWeights[T any](pop Population[T]) []float64 {
	out := make([]float64, len(pop))
	for i := range pop {
		out[i] = float64(i)
	}
	return out
}

// MeanWeights weighs each chromosome by its fitness mean.
func MeanWeights[T any](pop Population[T]) []float64 {
	return pop.means()
}

// Square is the key transform used by tournament selection and filtering.
func Square(w float64) float64 {
	return w * w
}

// shiftWeights moves weights so the minimum is zero, then applies key.
func shiftWeights(weights []float64, key func(float64) float64) []float64 {
	if len(weights) == 0 {
		return weights
	}
	lowest := weights[0]
	for _, w := range weights[1:] {
		if w < lowest {
			lowest = w
		}
	}
	out := make([]float64, len(weights))
	for i, w := range weights {
		out[i] = w - lowest
		if key != nil {
			out[i] = key(out[i])
		}
	}
	return out
}

// drawWeighted picks an index with probability proportional to its weight.
// Zero weights are never drawn unless every weight is zero, in which case the
// draw is uniform.
func drawWeighted(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return rng.Intn(len(weights))
	}

	pick := rng.Float64() * total
	acc := 0.0
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		acc += w
		last = i
		if pick < acc {
			return i
		}
	}
	return last
}

func reversed(weights []float64) []float64 {
	out := make([]float64, len(weights))
	for i, w := range weights {
		out[len(weights)-1-i] = w
	}
	return out
}
