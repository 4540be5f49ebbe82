// Package coop runs cooperative tasks on a single logical thread.
//
// Every task is backed by a goroutine, but only the goroutine holding the
// baton executes; the rest are parked on their resume channel. The baton moves
// only at explicit suspension points (Yield, Sleep, task exit), so state shared
// between tasks needs no locking as long as it is touched by the baton holder.
package coop

import (
	"fmt"
	"time"
)

// Scheduler multiplexes tasks onto the goroutine that created it.
//
// A Scheduler must only be used by the task currently holding the baton. The
// creating goroutine holds it initially and acts as the main task.
type Scheduler struct {
	current  *Task
	queue    []*Task
	sleepers []sleeper
	live     int
	spawned  int
}

type sleeper struct {
	task *Task
	wake time.Time
}

// Task is a handle to a unit of cooperative work.
type Task struct {
	name   string
	resume chan struct{}
	done   bool
	err    error
}

// NewScheduler returns a scheduler whose main task is the caller.
func NewScheduler() *Scheduler {
	return &Scheduler{
		current: &Task{name: "main", resume: make(chan struct{}, 1)},
	}
}

// Name returns the task name given at spawn.
func (t *Task) Name() string {
	return t.name
}

// Done reports whether the task body has returned.
func (t *Task) Done() bool {
	return t.done
}

// Err returns the error the task finished with. It is nil while running.
func (t *Task) Err() error {
	return t.err
}

// Live returns the number of spawned tasks that have not finished.
func (s *Scheduler) Live() int {
	return s.live
}

// Spawn queues fn as a new task. It starts running the next time the caller
// suspends; a panic inside fn is recovered into the task error.
func (s *Scheduler) Spawn(name string, fn func() error) *Task {
	s.spawned++
	if name == "" {
		name = fmt.Sprintf("task-%d", s.spawned)
	}
	t := &Task{name: name, resume: make(chan struct{}, 1)}
	s.live++
	go func() {
		<-t.resume
		t.err = call(t.name, fn)
		s.exit(t)
	}()
	s.queue = append(s.queue, t)
	return t
}

func call(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", name, r)
		}
	}()
	return fn()
}

// Yield moves the current task to the back of the run queue and lets every
// other runnable task make progress first.
func (s *Scheduler) Yield() {
	cur := s.current
	s.queue = append(s.queue, cur)
	s.switchFrom(cur)
}

// Sleep suspends the current task for at least d. Other tasks keep running;
// the thread only blocks when nothing else is runnable.
func (s *Scheduler) Sleep(d time.Duration) {
	if d <= 0 {
		s.Yield()
		return
	}
	cur := s.current
	s.sleepers = append(s.sleepers, sleeper{task: cur, wake: time.Now().Add(d)})
	s.switchFrom(cur)
}

// Wait suspends the current task until t has finished.
func (s *Scheduler) Wait(t *Task) error {
	for !t.done {
		s.Yield()
	}
	return t.err
}

// Join suspends the current task until every spawned task has finished.
func (s *Scheduler) Join() {
	for s.live > 0 {
		s.Yield()
	}
}

func (s *Scheduler) switchFrom(cur *Task) {
	next := s.next()
	if next == nil || next == cur {
		s.current = cur
		return
	}
	s.current = next
	next.resume <- struct{}{}
	<-cur.resume
}

func (s *Scheduler) exit(t *Task) {
	t.done = true
	s.live--
	next := s.next()
	if next == nil {
		return
	}
	s.current = next
	next.resume <- struct{}{}
}

// next pops the next runnable task, blocking on the earliest sleeper when the
// run queue is empty. It returns nil when nothing is left to run.
func (s *Scheduler) next() *Task {
	for {
		s.wake(time.Now())
		if len(s.queue) > 0 {
			t := s.queue[0]
			s.queue[0] = nil
			s.queue = s.queue[1:]
			return t
		}
		if len(s.sleepers) == 0 {
			return nil
		}
		earliest := s.sleepers[0].wake
		for _, sl := range s.sleepers[1:] {
			if sl.wake.Before(earliest) {
				earliest = sl.wake
			}
		}
		time.Sleep(time.Until(earliest))
	}
}

func (s *Scheduler) wake(now time.Time) {
	kept := s.sleepers[:0]
	for _, sl := range s.sleepers {
		if !sl.wake.After(now) {
			s.queue = append(s.queue, sl.task)
			continue
		}
		kept = append(kept, sl)
	}
	for i := len(kept); i < len(s.sleepers); i++ {
		s.sleepers[i] = sleeper{}
	}
	s.sleepers = kept
}
