package asyncga

import "time"

// Terminator decides whether the engine keeps generating.
type Terminator interface {
	IsActive(rt Runtime) bool
}

// MaxIteration stops after Max generations.
type MaxIteration struct {
	Max int
}

func (t MaxIteration) IsActive(rt Runtime) bool {
	return rt.Iteration() < t.Max
}

// TimeLimit stops once a wall-clock deadline has passed.
type TimeLimit struct {
	deadline time.Time
}

// NewTimeLimit fixes the deadline at d from now.
func NewTimeLimit(d time.Duration) TimeLimit {
	return TimeLimit{deadline: time.Now().Add(d)}
}

func (t TimeLimit) Deadline() time.Time {
	return t.deadline
}

func (t TimeLimit) IsActive(Runtime) bool {
	return time.Now().Before(t.deadline)
}

// TargetFitness stops once the best fitness mean reaches Target.
type TargetFitness struct {
	Target float64
}

func (t TargetFitness) IsActive(rt Runtime) bool {
	best, ok := rt.Best()
	return !ok || best.Mean > t.Target
}

// TerminatorChain keeps running only while every check is active.
type TerminatorChain []Terminator

// AllActive combines checks with logical AND, evaluated in order.
func AllActive(checks ...Terminator) TerminatorChain {
	return TerminatorChain(checks)
}

func (c TerminatorChain) IsActive(rt Runtime) bool {
	for _, t := range c {
		if !t.IsActive(rt) {
			return false
		}
	}
	return true
}
