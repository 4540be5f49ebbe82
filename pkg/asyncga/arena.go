package asyncga

import (
	"errors"

	"asyncga/internal/coop"
)

// arena owns every outstanding fitness task of a run, keyed by chromosome ID.
// Entries leave the arena when the engine observes their task finished.
type arena struct {
	entries map[string]arenaEntry
}

type arenaEntry struct {
	estimate *Estimate
	task     *coop.Task
}

func newArena() *arena {
	return &arena{entries: make(map[string]arenaEntry)}
}

func (a *arena) add(e *Estimate, t *coop.Task) {
	a.entries[e.ID()] = arenaEntry{estimate: e, task: t}
}

func (a *arena) task(id string) *coop.Task {
	return a.entries[id].task
}

func (a *arena) release(id string) {
	delete(a.entries, id)
}

func (a *arena) len() int {
	return len(a.entries)
}

// deactivateAll asks every outstanding task to stop at its next yield point.
func (a *arena) deactivateAll() {
	for _, entry := range a.entries {
		entry.estimate.Deactivate()
	}
}

// sweep drops finished tasks and returns their joined errors.
func (a *arena) sweep() error {
	var errs []error
	for id, entry := range a.entries {
		if !entry.task.Done() {
			continue
		}
		delete(a.entries, id)
		if err := entry.task.Err(); err != nil {
			errs = append(errs, policyError("fitness", err))
		}
	}
	return errors.Join(errs...)
}
