// Package scheduler runs the daily shift job on a cron schedule in the
// restaurant's time zone.
package scheduler

import (
	"context"
	"errors"
	"time"

	"backoffice-backend/internal/config"
	"backoffice-backend/internal/pipeline"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultSpec fires shortly after the 03:00 close.
const DefaultSpec = "5 3 * * *"

type Job func(ctx context.Context) error

type Scheduler struct {
	cron    *cron.Cron
	job     Job
	timeout time.Duration
	logger  logrus.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc
}

// New parses spec in loc and registers job. A run is bounded by timeout
// when it is positive.
func New(spec string, loc *time.Location, timeout time.Duration, job Job, logger logrus.FieldLogger) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSpec
	}
	if logger == nil {
		logger = config.GetLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		job:     job,
		timeout: timeout,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	if _, err := s.cron.AddFunc(spec, s.Run); err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.WithField("next", s.Next()).Info("scheduler started")
}

// Stop cancels a running job and waits for it to return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next is the next planned run, zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Run executes the job once. It is what the cron entry calls.
func (s *Scheduler) Run() {
	ctx := pipeline.WithTrigger(s.ctx, pipeline.TriggerCron)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	err := s.job(ctx)
	switch {
	case errors.Is(err, pipeline.ErrAlreadyProcessing):
		s.logger.Info("scheduled run skipped, processing already in progress")
	case err != nil:
		config.LogError(s.logger, "scheduler", "Run", "scheduled shift processing", nil, err)
	default:
		s.logger.Info("scheduled run finished")
	}
}
