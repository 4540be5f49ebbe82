package asyncga

import (
	"fmt"
	"strings"
)

// FitnessMode selects how raw fitness samples are folded into the estimate.
type FitnessMode string

const (
	// FitnessMoving is an exponential moving average biased toward recent
	// samples, for fitness that drifts over time.
	FitnessMoving FitnessMode = "moving"
	// FitnessSquare is a cumulative arithmetic average weighing every sample
	// equally, for stationary fitness.
	FitnessSquare FitnessMode = "square"
)

const movingDecay = 0.01

// ParseFitnessMode accepts "moving" or "square"; the empty string means moving.
func ParseFitnessMode(s string) (FitnessMode, error) {
	switch FitnessMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", FitnessMoving:
		return FitnessMoving, nil
	case FitnessSquare:
		return FitnessSquare, nil
	default:
		return "", fmt.Errorf("%w: unknown fitness mode %q", ErrConfiguration, s)
	}
}

// Accumulator folds samples into a running mean and variance in O(1) memory.
type Accumulator interface {
	Add(sample float64) Fitness
}

// NewAccumulator returns the update rule for mode.
func NewAccumulator(mode FitnessMode) (Accumulator, error) {
	switch mode {
	case FitnessMoving:
		return &MovingAverage{}, nil
	case FitnessSquare:
		return &CumulativeAverage{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown fitness mode %q", ErrConfiguration, mode)
	}
}

// MovingAverage is a bias-corrected exponential moving average with decay 0.01.
type MovingAverage struct {
	weight   float64
	mean     float64
	variance float64
}

func (m *MovingAverage) Add(sample float64) Fitness {
	m.weight += movingDecay * (1 - m.weight)
	m.mean += movingDecay * (sample - m.mean)
	m.variance += movingDecay * (m.mean/m.weight - m.variance)
	return Fitness{Mean: m.mean / m.weight, Variance: m.variance / m.weight}
}

// CumulativeAverage tracks the arithmetic mean and mean of squares
// incrementally; the variance is the population variance of all samples.
type CumulativeAverage struct {
	n           int
	mean        float64
	meanSquares float64
}

func (c *CumulativeAverage) Add(sample float64) Fitness {
	c.n++
	n := float64(c.n)
	c.mean += (sample - c.mean) / n
	c.meanSquares += (sample*sample - c.meanSquares) / n
	return Fitness{Mean: c.mean, Variance: c.meanSquares - c.mean*c.mean}
}
