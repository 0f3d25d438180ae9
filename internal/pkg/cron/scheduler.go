package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultJobTimeout bounds a single run of a job registered through AddJob.
const DefaultJobTimeout = 10 * time.Minute

// Job is a function executed once on start and then on every Interval tick.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Fn       func(ctx context.Context) error
}

// Scheduler runs interval jobs until its parent context is cancelled or Stop is called.
type Scheduler struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	jobs    []Job
	runs    map[string]int
	started bool
}

func NewScheduler(parent context.Context) *Scheduler {
	ctx, cancel := context.WithCancel(parent)
	return &Scheduler{
		ctx:    ctx,
		cancel: cancel,
		runs:   make(map[string]int),
	}
}

// AddJob registers fn with DefaultJobTimeout.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.Register(Job{Name: name, Interval: interval, Timeout: DefaultJobTimeout, Fn: fn})
}

// Register adds a job. A job registered after Start begins running immediately.
func (s *Scheduler) Register(job Job) {
	if job.Timeout <= 0 {
		job.Timeout = DefaultJobTimeout
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, job)
	slog.Info("Cron job registered", "job", job.Name, "interval", job.Interval)
	if s.started {
		s.wg.Add(1)
		go s.loop(job)
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(job)
	}
	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Done is closed once the scheduler has been stopped or its parent context cancelled.
func (s *Scheduler) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Stop cancels all jobs and waits for running ones to return.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

// Runs reports how many times the named job has completed, successfully or not.
func (s *Scheduler) Runs(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[name]
}

func (s *Scheduler) loop(job Job) {
	defer s.wg.Done()

	s.execute(job)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.execute(job)
		}
	}
}

func (s *Scheduler) execute(job Job) {
	ctx, cancel := context.WithTimeout(s.ctx, job.Timeout)
	defer cancel()

	start := time.Now()
	err := runSafely(ctx, job.Fn)

	s.mu.Lock()
	s.runs[job.Name]++
	s.mu.Unlock()

	if err != nil {
		slog.Error("Cron job failed", "job", job.Name, "error", err, "duration", time.Since(start))
		return
	}
	slog.Debug("Cron job finished", "job", job.Name, "duration", time.Since(start))
}

// runSafely keeps a panicking job from taking the process down.
func runSafely(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("job panicked: %v", p)
		}
	}()
	return fn(ctx)
}
