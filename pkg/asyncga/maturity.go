package asyncga

import (
	"math"
	"time"
)

// Maturity decides whether a chromosome's fitness estimate is usable. Every
// implementation also requires the estimate to have at least one sample.
type Maturity interface {
	IsMature(rt Runtime, e *Estimate) bool
}

// AgeMaturity requires a minimum number of samples. With GrowWithIteration
// the requirement becomes MinAge + sqrt(iteration).
type AgeMaturity struct {
	MinAge            int
	GrowWithIteration bool
}

func (m AgeMaturity) IsMature(rt Runtime, e *Estimate) bool {
	need := float64(m.MinAge)
	if m.GrowWithIteration {
		need += math.Sqrt(float64(rt.Iteration()))
	}
	return e.HasFitness() && float64(e.Age()) >= need
}

// DeterministicMaturity waits until the fitness source is exhausted, for
// fitness functions that yield a finite, exact series.
type DeterministicMaturity struct{}

func (DeterministicMaturity) IsMature(_ Runtime, e *Estimate) bool {
	return e.HasFitness() && e.Finished()
}

// StatisticsMaturity requires the standard error of the mean,
// sqrt(variance/(age-1)), to fall below Threshold. It is never satisfied with
// fewer than two samples.
type StatisticsMaturity struct {
	Threshold float64
}

func (m StatisticsMaturity) IsMature(_ Runtime, e *Estimate) bool {
	if !e.HasFitness() || e.Age() <= 1 {
		return false
	}
	variance := math.Max(e.Fitness().Variance, 0)
	return math.Sqrt(variance/float64(e.Age()-1)) < m.Threshold
}

// TimeMaturity requires Timeout to have passed since estimation began. The
// caller is suspended for the remainder instead of polling.
type TimeMaturity struct {
	Timeout time.Duration
}

func (m TimeMaturity) IsMature(rt Runtime, e *Estimate) bool {
	if !e.HasFitness() {
		return false
	}
	if remaining := m.Timeout - time.Since(e.Started()); remaining > 0 {
		rt.Sleep(remaining)
	}
	return true
}

// VarianceMaturity requires the fitness variance to fall below Threshold.
type VarianceMaturity struct {
	Threshold float64
}

func (m VarianceMaturity) IsMature(_ Runtime, e *Estimate) bool {
	return e.HasFitness() && e.Fitness().Variance < m.Threshold
}

// MaturityChain is satisfied only when every check is. An empty chain only
// requires a sample.
type MaturityChain []Maturity

// AllMature combines checks with logical AND, evaluated in order.
func AllMature(checks ...Maturity) MaturityChain {
	return MaturityChain(checks)
}

func (c MaturityChain) IsMature(rt Runtime, e *Estimate) bool {
	if !e.HasFitness() {
		return false
	}
	for _, m := range c {
		if !m.IsMature(rt, e) {
			return false
		}
	}
	return true
}
