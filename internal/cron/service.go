package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/karatworks/aurumpos-backend/pkg/logger"
	"github.com/karatworks/aurumpos-backend/pkg/metrics"
)

const defaultInterval = 24 * time.Hour

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Locker   Locker
	Metrics  *metrics.CronJobMetrics
}

// Service executes registered cron jobs, each on its own cadence. A
// per-job redis lock keeps a job single-flight across instances.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	locker   Locker
	metrics  *metrics.CronJobMetrics
}

// NewService builds a cron service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Locker == nil {
		return nil, fmt.Errorf("locker required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		locker:   params.Locker,
		metrics:  params.Metrics,
	}, nil
}

// Run starts every registered job on its own ticker and blocks until
// the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	entries := s.registry.Entries()
	if len(entries) == 0 {
		s.logg.Warn(ctx, "no cron jobs registered")
		<-ctx.Done()
		return ctx.Err()
	}

	locks := make([]Lock, len(entries))
	for i, entry := range entries {
		lock, err := s.locker.LockFor(entry.Job.Name())
		if err != nil {
			return fmt.Errorf("lock for %s: %w", entry.Job.Name(), err)
		}
		locks[i] = lock
	}

	var wg sync.WaitGroup
	for i, entry := range entries {
		wg.Add(1)
		go func(entry Entry, lock Lock) {
			defer wg.Done()
			s.runLoop(ctx, entry, lock)
		}(entry, locks[i])
	}
	wg.Wait()
	return ctx.Err()
}

func (s *Service) runLoop(ctx context.Context, entry Entry, lock Lock) {
	loopCtx := s.logg.WithField(ctx, "job", entry.Job.Name())
	if err := s.runCycle(loopCtx, entry, lock); err != nil {
		s.logg.Error(loopCtx, "scheduled run failed", err)
	}
	ticker := time.NewTicker(entry.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(loopCtx, "cron loop stopped")
			return
		case <-ticker.C:
			if err := s.runCycle(loopCtx, entry, lock); err != nil {
				s.logg.Error(loopCtx, "scheduled run failed", err)
			}
		}
	}
}

func (s *Service) runCycle(ctx context.Context, entry Entry, lock Lock) error {
	locked, err := lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("lock acquire: %w", err)
	}
	if !locked {
		s.logg.Info(ctx, "another instance owns the job; skipping this cycle")
		return nil
	}
	defer func() {
		if relErr := lock.Release(ctx); relErr != nil {
			s.logg.Error(ctx, "failed to release cron lock", relErr)
		}
	}()

	s.runJob(ctx, entry.Job)
	return nil
}

func (s *Service) runJob(ctx context.Context, job Job) {
	jobCtx := s.logg.WithField(ctx, "event", "cron.job")
	s.logg.Info(jobCtx, "job start")
	start := time.Now()
	rows, err := job.Run(jobCtx)
	duration := time.Since(start)
	s.observeDuration(job.Name(), duration)
	s.addRowsProcessed(job.Name(), rows)
	jobCtx = s.logg.WithFields(jobCtx, map[string]any{
		"duration_ms": duration.Milliseconds(),
		"rows":        rows,
	})
	if err != nil {
		s.logg.Error(jobCtx, "job failed", err)
		s.recordFailure(job.Name())
		return
	}
	s.logg.Info(jobCtx, "job completed")
	s.recordSuccess(job.Name())
}

func (s *Service) observeDuration(job string, duration time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDuration(job, duration)
}

func (s *Service) addRowsProcessed(job string, rows int64) {
	if s.metrics == nil {
		return
	}
	s.metrics.AddRowsProcessed(job, rows)
}

func (s *Service) recordSuccess(job string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncSuccess(job)
}

func (s *Service) recordFailure(job string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncFailure(job)
}
