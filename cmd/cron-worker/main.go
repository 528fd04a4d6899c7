package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/karatworks/aurumpos-backend/internal/audit"
	"github.com/karatworks/aurumpos-backend/internal/cron"
	"github.com/karatworks/aurumpos-backend/internal/register"
	"github.com/karatworks/aurumpos-backend/internal/stores"
	"github.com/karatworks/aurumpos-backend/pkg/config"
	"github.com/karatworks/aurumpos-backend/pkg/db"
	"github.com/karatworks/aurumpos-backend/pkg/logger"
	"github.com/karatworks/aurumpos-backend/pkg/metrics"
	"github.com/karatworks/aurumpos-backend/pkg/migrate"
	"github.com/karatworks/aurumpos-backend/pkg/outbox"
	"github.com/karatworks/aurumpos-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gormDB := dbClient.DB()
	auditRepo := audit.NewRepository(gormDB)
	storeRepo := stores.NewRepository(gormDB)
	outboxRepo := outbox.NewRepository(gormDB)
	outboxService := outbox.NewService(outboxRepo, logg)

	storeService, err := stores.NewService(dbClient, storeRepo, auditRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create store service", err)
		os.Exit(1)
	}
	sessionStore, err := register.NewRedisStore(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create register session store", err)
		os.Exit(1)
	}

	heldOrderJob, err := cron.NewHeldOrderExpiryJob(cron.HeldOrderExpiryJobParams{
		Logger:           logg,
		DB:               dbClient,
		Stores:           storeRepo,
		Settings:         storeService,
		Sessions:         sessionStore,
		Outbox:           outboxService,
		AuditRepo:        auditRepo,
		FallbackTTLHours: cfg.Cron.HeldOrderTTLHours,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create held order expiry job", err)
		os.Exit(1)
	}
	auditJob, err := cron.NewAuditRetentionJob(cron.AuditRetentionJobParams{
		Logger:     logg,
		Repository: auditRepo,
		Retention:  cfg.Cron.AuditRetentionDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create audit retention job", err)
		os.Exit(1)
	}
	outboxJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:           logg,
		Repository:       outboxRepo,
		DLQ:              outbox.NewDLQRepository(gormDB),
		Retention:        cfg.Cron.OutboxRetentionDays,
		TerminalAttempts: cfg.Outbox.MaxAttempts,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox retention job", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(
		cron.Entry{Job: heldOrderJob, Interval: cfg.Cron.HeldOrderInterval},
		cron.Entry{Job: auditJob, Interval: cfg.Cron.AuditInterval},
		cron.Entry{Job: outboxJob, Interval: cfg.Cron.OutboxInterval},
	)

	locker, err := cron.NewRedisLocker(redisClient, cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron locker", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Locker:   locker,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
