package asyncga

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration reports an engine or policy configuration that can never run.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrNoSamples reports a chromosome whose fitness source finished without
	// producing a single sample, leaving its fitness undefined.
	ErrNoSamples = errors.New("chromosome fitness was never sampled")
	// ErrPopulationOrder reports a population that is not ascending by fitness
	// mean where selection or filtering requires it.
	ErrPopulationOrder = errors.New("population is not sorted by ascending fitness")
	// ErrNoParents reports a selector call that produced no parents.
	ErrNoParents = errors.New("selector produced no parents")
	// ErrNaNSample reports a fitness function that yielded NaN.
	ErrNaNSample = errors.New("fitness sample is NaN")

	errConsumerExited = errors.New("consumer goroutine exited during evolve")
)

// PolicyError wraps a failure raised by a user supplied policy: a fitness
// function, crosser, mutator, selector, filter or observer.
type PolicyError struct {
	Policy string
	Err    error
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("%s policy failed: %v", e.Policy, e.Err)
}

func (e *PolicyError) Unwrap() error {
	return e.Err
}

func policyError(policy string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PolicyError
	if errors.As(err, &pe) {
		return err
	}
	return &PolicyError{Policy: policy, Err: err}
}

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

// guard runs fn and converts a panic into a PolicyError for policy.
func guard(policy string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = &PolicyError{Policy: policy, Err: e}
				return
			}
			err = &PolicyError{Policy: policy, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	fn()
	return nil
}
