package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	robfig "github.com/robfig/cron/v3"
)

// Job is a named background task run on a cron schedule.
type Job struct {
	Name string
	Spec string
	Fn   func(ctx context.Context) error
}

// Scheduler runs jobs on robfig/cron. Overlapping runs of the same job are
// skipped and panics are recovered.
type Scheduler struct {
	cron   *robfig.Cron
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	jobs   []Job
}

// NewScheduler creates a scheduler evaluating specs in loc. A nil loc means
// time.Local.
func NewScheduler(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	logger := slogLogger{}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron: robfig.New(
			robfig.WithLocation(loc),
			robfig.WithLogger(logger),
			robfig.WithChain(robfig.Recover(logger), robfig.SkipIfStillRunning(logger)),
		),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers fn under spec, a standard five-field expression or a
// descriptor such as "@every 1m".
func (s *Scheduler) AddJob(name, spec string, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := Job{Name: name, Spec: spec, Fn: fn}
	if _, err := s.cron.AddFunc(spec, func() { s.execute(s.ctx, job) }); err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	s.jobs = append(s.jobs, job)
	slog.Info("cron job registered", "name", name, "spec", spec)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("cron scheduler started", "job_count", len(s.cron.Entries()))
}

// Stop cancels running jobs and waits for them to return or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	slog.Info("stopping cron scheduler")
	done := s.cron.Stop()
	s.cancel()

	select {
	case <-done.Done():
		slog.Info("cron scheduler stopped")
	case <-ctx.Done():
		slog.Warn("cron scheduler stop timed out", "error", ctx.Err())
	}
}

// RunOnce runs every registered job once, in registration order.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	jobs := append([]Job(nil), s.jobs...)
	s.mu.Unlock()

	for _, job := range jobs {
		s.execute(ctx, job)
	}
}

func (s *Scheduler) execute(ctx context.Context, job Job) {
	start := time.Now()
	slog.Debug("cron job starting", "name", job.Name)

	if err := job.Fn(ctx); err != nil {
		slog.Error("cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
		return
	}
	slog.Debug("cron job completed", "name", job.Name, "duration", time.Since(start))
}

// slogLogger adapts slog to robfig's logger.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
