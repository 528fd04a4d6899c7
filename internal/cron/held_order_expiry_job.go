package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/karatworks/aurumpos-backend/internal/audit"
	"github.com/karatworks/aurumpos-backend/internal/pricing"
	"github.com/karatworks/aurumpos-backend/internal/register"
	"github.com/karatworks/aurumpos-backend/internal/stores"
	"github.com/karatworks/aurumpos-backend/pkg/enums"
	"github.com/karatworks/aurumpos-backend/pkg/logger"
	"github.com/karatworks/aurumpos-backend/pkg/outbox"
	"github.com/karatworks/aurumpos-backend/pkg/outbox/payloads"
)

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type storeLister interface {
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

type settingsReader interface {
	Settings(ctx context.Context, storeID uuid.UUID) (*stores.RegisterSettings, error)
}

// HeldOrderExpiryJobParams configure the held order sweeper.
type HeldOrderExpiryJobParams struct {
	Logger           *logger.Logger
	DB               txRunner
	Stores           storeLister
	Settings         settingsReader
	Sessions         register.SessionStore
	Outbox           outboxEmitter
	AuditRepo        audit.Repository
	FallbackTTLHours int
}

// NewHeldOrderExpiryJob builds the cron job that drops stale held orders.
func NewHeldOrderExpiryJob(params HeldOrderExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Stores == nil {
		return nil, fmt.Errorf("store lister required")
	}
	if params.Settings == nil {
		return nil, fmt.Errorf("settings reader required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if params.AuditRepo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &heldOrderExpiryJob{
		logg:        params.Logger,
		db:          params.DB,
		stores:      params.Stores,
		settings:    params.Settings,
		sessions:    params.Sessions,
		outbox:      params.Outbox,
		auditRepo:   params.AuditRepo,
		fallbackTTL: params.FallbackTTLHours,
		now:         time.Now,
	}, nil
}

type heldOrderExpiryJob struct {
	logg        *logger.Logger
	db          txRunner
	stores      storeLister
	settings    settingsReader
	sessions    register.SessionStore
	outbox      outboxEmitter
	auditRepo   audit.Repository
	fallbackTTL int
	now         func() time.Time
}

func (j *heldOrderExpiryJob) Name() string { return "held-order-expiry" }

// Run sweeps every register session and drops held orders older than
// the store TTL. Per-store and per-register failures are collected so
// one broken session never stops the sweep; orders expired before a
// failure still count.
func (j *heldOrderExpiryJob) Run(ctx context.Context) (int64, error) {
	now := j.now().UTC()
	storeIDs, err := j.stores.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list stores: %w", err)
	}

	var errs []error
	var expired int64
	for _, storeID := range storeIDs {
		count, err := j.sweepStore(ctx, storeID, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("store %s: %w", storeID, err))
		}
		expired += count
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"stores_swept":   len(storeIDs),
		"orders_expired": expired,
	})
	j.logg.Info(logCtx, "held order expiry sweep complete")
	return expired, multierr.Combine(errs...)
}

func (j *heldOrderExpiryJob) sweepStore(ctx context.Context, storeID uuid.UUID, now time.Time) (int64, error) {
	settings, err := j.settings.Settings(ctx, storeID)
	if err != nil {
		return 0, fmt.Errorf("load settings: %w", err)
	}
	ttlHours := settings.HeldOrderTTLHours
	if ttlHours <= 0 {
		ttlHours = j.fallbackTTL
	}
	if ttlHours <= 0 {
		return 0, nil
	}
	cutoff := now.Add(-time.Duration(ttlHours) * time.Hour)

	registerIDs, err := j.sessions.ListRegisterIDs(ctx, storeID)
	if err != nil {
		return 0, fmt.Errorf("list registers: %w", err)
	}

	var errs []error
	var expired int64
	for _, registerID := range registerIDs {
		count, err := j.sweepRegister(ctx, storeID, registerID, cutoff, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("register %s: %w", registerID, err))
			continue
		}
		expired += count
	}
	return expired, multierr.Combine(errs...)
}

// sweepRegister commits the outbox and audit rows before the session is
// saved back. A failed save leaves the dropped orders in redis for the
// next sweep; the existence check keeps their events from doubling.
func (j *heldOrderExpiryJob) sweepRegister(ctx context.Context, storeID uuid.UUID, registerID string, cutoff, now time.Time) (int64, error) {
	session, err := j.sessions.Get(ctx, storeID, registerID)
	if err != nil {
		return 0, err
	}
	if session == nil {
		return 0, nil
	}

	dropped := session.ExpireHeldBefore(cutoff)
	if len(dropped) == 0 {
		return 0, nil
	}

	err = j.db.WithTx(ctx, func(tx *gorm.DB) error {
		for _, held := range dropped {
			if err := j.recordExpiry(ctx, tx, storeID, registerID, held, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := j.sessions.Save(ctx, session); err != nil {
		return 0, fmt.Errorf("save session: %w", err)
	}
	return int64(len(dropped)), nil
}

// recordExpiry writes the expiry event and its audit row. A previous
// sweep may have recorded the event without managing to save the
// session; in that case both writes are skipped.
func (j *heldOrderExpiryJob) recordExpiry(ctx context.Context, tx *gorm.DB, storeID uuid.UUID, registerID string, held register.HeldOrder, now time.Time) error {
	event := outbox.DomainEvent{
		StoreID:       storeID,
		EventType:     enums.EventHeldOrderExpired,
		AggregateType: enums.AggregateRegister,
		AggregateID:   held.ID,
		Version:       1,
		OccurredAt:    now,
		Data: payloads.HeldOrderExpiredEvent{
			HeldOrderID: held.ID,
			StoreID:     storeID,
			RegisterID:  registerID,
			OrderName:   held.Label,
			ItemCount:   int(pricing.Quantity(held.Items)),
			HeldAt:      held.HeldAt,
			ExpiredAt:   now,
		},
	}
	emitted, err := j.outbox.EmitIfNotExists(ctx, tx, event)
	if err != nil {
		return fmt.Errorf("emit expiry event: %w", err)
	}
	if !emitted {
		return nil
	}

	auditEvent, err := audit.NewEvent(storeID, audit.Actor{}, enums.AuditHeldOrderExpired, "held_order", held.ID.String(), map[string]any{
		"registerId": registerID,
		"label":      held.Label,
		"heldAt":     held.HeldAt,
	})
	if err != nil {
		return err
	}
	if _, err := j.auditRepo.WithTx(tx).Insert(ctx, auditEvent); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
