package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsJobOnStart(t *testing.T) {
	s := NewScheduler(context.Background())
	var calls atomic.Int32
	s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	s.Start()
	s.Start()
	assert.Eventually(t, func() bool { return s.Runs("tick") == 1 }, time.Second, 5*time.Millisecond)

	s.Stop()
	assert.Equal(t, int32(1), calls.Load())
	select {
	case <-s.Done():
	default:
		t.Fatal("Done should be closed after Stop")
	}
}

func TestScheduler_FailingAndPanickingJobsAreCounted(t *testing.T) {
	s := NewScheduler(context.Background())
	s.AddJob("fails", time.Hour, func(ctx context.Context) error { return errors.New("boom") })
	s.AddJob("panics", time.Hour, func(ctx context.Context) error { panic("boom") })

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return s.Runs("fails") == 1 && s.Runs("panics") == 1
	}, time.Second, 5*time.Millisecond)
}

func TestScheduler_RegisterAfterStart(t *testing.T) {
	s := NewScheduler(context.Background())
	s.Start()
	defer s.Stop()

	s.AddJob("late", time.Hour, func(ctx context.Context) error { return nil })
	assert.Eventually(t, func() bool { return s.Runs("late") == 1 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_JobTimeout(t *testing.T) {
	s := NewScheduler(context.Background())
	var gotErr atomic.Value
	s.Register(Job{
		Name:     "slow",
		Interval: time.Hour,
		Timeout:  20 * time.Millisecond,
		Fn: func(ctx context.Context) error {
			<-ctx.Done()
			gotErr.Store(ctx.Err())
			return ctx.Err()
		},
	})

	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return s.Runs("slow") == 1 }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, gotErr.Load().(error), context.DeadlineExceeded)
}

func TestScheduler_ParentCancelStopsJobs(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	s := NewScheduler(parent)
	s.AddJob("tick", time.Hour, func(ctx context.Context) error { return nil })
	s.Start()

	cancel()
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not observe parent cancellation")
	}
	s.Stop()
}
