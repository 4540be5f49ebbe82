package coop

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSchedulerInterleavesTasksAtYieldPoints(t *testing.T) {
	s := NewScheduler()
	var trace []string

	for _, name := range []string{"a", "b"} {
		s.Spawn(name, func() error {
			for i := 0; i < 3; i++ {
				trace = append(trace, name)
				s.Yield()
			}
			return nil
		})
	}
	s.Join()

	require.Equal(t, []string{"a", "b", "a", "b", "a", "b"}, trace)
	require.Zero(t, s.Live())
}

func TestSchedulerSpawnDoesNotRunUntilCallerSuspends(t *testing.T) {
	s := NewScheduler()
	ran := false
	task := s.Spawn("", func() error {
		ran = true
		return nil
	})
	require.False(t, ran)
	require.False(t, task.Done())

	require.NoError(t, s.Wait(task))
	require.True(t, ran)
	require.True(t, task.Done())
	require.Equal(t, "task-1", task.Name())
}

func TestSchedulerSleepLetsOthersRun(t *testing.T) {
	s := NewScheduler()
	var trace []string

	sleepy := s.Spawn("sleepy", func() error {
		s.Sleep(20 * time.Millisecond)
		trace = append(trace, "sleepy")
		return nil
	})
	busy := s.Spawn("busy", func() error {
		trace = append(trace, "busy")
		return nil
	})

	start := time.Now()
	require.NoError(t, s.Wait(sleepy))
	require.NoError(t, s.Wait(busy))
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	require.Equal(t, []string{"busy", "sleepy"}, trace)
}

func TestSchedulerMainTaskCanSleep(t *testing.T) {
	s := NewScheduler()
	start := time.Now()
	s.Sleep(5 * time.Millisecond)
	require.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func TestSchedulerRecoversTaskPanics(t *testing.T) {
	s := NewScheduler()
	failing := s.Spawn("boom", func() error {
		panic("kaboom")
	})
	plain := s.Spawn("plain", func() error {
		return errors.New("plain failure")
	})
	s.Join()

	require.ErrorContains(t, failing.Err(), "kaboom")
	require.EqualError(t, plain.Err(), "plain failure")
}
