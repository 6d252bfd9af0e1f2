package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one pipeline run.
type Job func(ctx context.Context) error

// cronLogger routes cron's own messages through zap.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}

// Scheduler re-runs the pipeline on a cron schedule. Runs never overlap:
// a tick that arrives while the previous run is still going is skipped.
type Scheduler struct {
	Cron   *cron.Cron
	Job    Job
	Logger *zap.Logger
	Ctx    context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, job Job, logger *zap.Logger) *Scheduler {
	cl := cronLogger{l: logger.Sugar()}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		Job:    job,
		Logger: logger,
		Ctx:    ctx,
	}
}

// Register adds the refresh task for a six-field (seconds first) cron spec.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	s.Logger.Info("refresh task registered", zap.String("cron", spec))
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started")
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// RunNow executes the job immediately on the calling goroutine.
func (s *Scheduler) RunNow() error {
	return s.Job(s.Ctx)
}

func (s *Scheduler) refreshTask() {
	if s.Ctx.Err() != nil {
		return
	}
	s.Logger.Info("running refresh task")
	if err := s.Job(s.Ctx); err != nil {
		s.Logger.Error("refresh task failed", zap.Error(err))
	}
}
