package asyncga

import (
	"slices"

	"asyncga/internal/model"

	"gonum.org/v1/gonum/stat"
)

// Diagnostics summarizes one population snapshot.
type Diagnostics = model.GenerationDiagnostics

// Summarize computes fitness and age statistics over the sampled members of
// pop. Unsampled members only count towards Population and Active.
func Summarize[T any](generation int, pop Population[T]) Diagnostics {
	d := Diagnostics{Generation: generation, Population: len(pop)}

	means := make([]float64, 0, len(pop))
	ages := make([]float64, 0, len(pop))
	for _, c := range pop {
		if c.IsActive() {
			d.Active++
		}
		if !c.HasFitness() {
			continue
		}
		means = append(means, c.fitness.Mean)
		ages = append(ages, float64(c.age))
	}
	if len(means) == 0 {
		return d
	}

	if best, ok := pop.Best(); ok {
		d.BestVariance = best.fitness.Variance
	}
	d.MeanFitness = stat.Mean(means, nil)
	d.MeanAge = stat.Mean(ages, nil)
	if len(means) > 1 {
		d.StdDevFitness = stat.StdDev(means, nil)
	}

	slices.Sort(means)
	d.BestFitness = means[0]
	d.WorstFitness = means[len(means)-1]
	d.MedianFitness = stat.Quantile(0.5, stat.Empirical, means, nil)
	return d
}
