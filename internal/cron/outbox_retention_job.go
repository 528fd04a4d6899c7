package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/karatworks/aurumpos-backend/pkg/logger"
)

const (
	outboxRetentionDays    = 14
	outboxTerminalAttempts = 5
	dlqDepthWindow         = 24 * time.Hour
)

// OutboxRetentionJobParams configure the outbox cleanup.
type OutboxRetentionJobParams struct {
	Logger           *logger.Logger
	Repository       outboxRetentionRepo
	DLQ              dlqRetentionRepo
	Retention        int
	TerminalAttempts int
}

type outboxRetentionRepo interface {
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time, terminalAttempts int) (int64, error)
}

type dlqRetentionRepo interface {
	CountSince(ctx context.Context, since time.Time) (int64, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewOutboxRetentionJob builds the cron job that trims delivered and
// dead outbox rows, including aged DLQ entries.
func NewOutboxRetentionJob(params OutboxRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("outbox repository required")
	}
	if params.DLQ == nil {
		return nil, fmt.Errorf("dlq repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = outboxRetentionDays
	}
	terminalAttempts := params.TerminalAttempts
	if terminalAttempts <= 0 {
		terminalAttempts = outboxTerminalAttempts
	}
	return &outboxRetentionJob{
		logg:             params.Logger,
		repo:             params.Repository,
		dlq:              params.DLQ,
		retention:        retention,
		terminalAttempts: terminalAttempts,
		now:              time.Now,
	}, nil
}

type outboxRetentionJob struct {
	logg             *logger.Logger
	repo             outboxRetentionRepo
	dlq              dlqRetentionRepo
	retention        int
	terminalAttempts int
	now              func() time.Time
}

func (j *outboxRetentionJob) Name() string { return "outbox-retention" }

func (j *outboxRetentionJob) Run(ctx context.Context) (int64, error) {
	now := j.now().UTC()
	cutoff := now.Add(-time.Duration(j.retention) * 24 * time.Hour)

	deleted, err := j.repo.DeleteFinishedBefore(ctx, cutoff, j.terminalAttempts)
	if err != nil {
		return 0, fmt.Errorf("outbox retention: %w", err)
	}
	dlqDeleted, err := j.dlq.DeleteBefore(ctx, cutoff)
	if err != nil {
		return deleted, fmt.Errorf("dlq retention: %w", err)
	}
	dlqRecent, err := j.dlq.CountSince(ctx, now.Add(-dlqDepthWindow))
	if err != nil {
		return deleted + dlqDeleted, fmt.Errorf("dlq depth: %w", err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":            cutoff,
		"retention_days":    j.retention,
		"terminal_attempts": j.terminalAttempts,
		"rows_deleted":      deleted,
		"dlq_rows_deleted":  dlqDeleted,
		"dlq_last_24h":      dlqRecent,
	})
	if dlqRecent > 0 {
		j.logg.Warn(logCtx, "outbox retention cleanup complete; recent dlq arrivals need review")
		return deleted + dlqDeleted, nil
	}
	j.logg.Info(logCtx, "outbox retention cleanup complete")
	return deleted + dlqDeleted, nil
}
