// Package scheduler wraps robfig/cron behind an explicit handle that is
// constructed once at startup and passed to anything that needs to register
// jobs. Background sweeps may overlap with user requests and with each other
// across restarts; that is safe because every sweep is idempotent.
package scheduler

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// JobFunc adapts a plain function to the Job interface.
type JobFunc struct {
	JobName string
	Fn      func() error
}

// Name returns the job's name.
func (j JobFunc) Name() string { return j.JobName }

// Run executes the job function.
func (j JobFunc) Run() error { return j.Fn() }

// Scheduler manages background jobs
type Scheduler struct {
	cron *cron.Cron
	log  *zap.SugaredLogger
}

// New creates a new scheduler
func New(log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		log:  log.With("component", "scheduler"),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Scheduler stopped")
}

// AddJob registers a new job with a cron schedule.
// Schedule examples:
//   - "0 * * * *"    - Every hour
//   - "@hourly"      - Every hour
//   - "@every 1m"    - Every minute
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.log.Debugw("Running job", "job", job.Name())

		if err := job.Run(); err != nil {
			s.log.Errorw("Job failed", "job", job.Name(), "error", err)
		} else {
			s.log.Debugw("Job completed", "job", job.Name())
		}
	})
	if err != nil {
		return err
	}

	s.log.Infow("Job registered", "schedule", schedule, "job", job.Name())
	return nil
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.log.Infow("Running job immediately", "job", job.Name())
	return job.Run()
}
