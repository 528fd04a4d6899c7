package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/karatworks/aurumpos-backend/api/routes"
	"github.com/karatworks/aurumpos-backend/internal/audit"
	"github.com/karatworks/aurumpos-backend/internal/auth"
	"github.com/karatworks/aurumpos-backend/internal/catalog"
	"github.com/karatworks/aurumpos-backend/internal/customers"
	"github.com/karatworks/aurumpos-backend/internal/ledger"
	"github.com/karatworks/aurumpos-backend/internal/payments"
	"github.com/karatworks/aurumpos-backend/internal/register"
	"github.com/karatworks/aurumpos-backend/internal/sales"
	"github.com/karatworks/aurumpos-backend/internal/stores"
	"github.com/karatworks/aurumpos-backend/internal/users"
	"github.com/karatworks/aurumpos-backend/pkg/auth/session"
	"github.com/karatworks/aurumpos-backend/pkg/config"
	"github.com/karatworks/aurumpos-backend/pkg/db"
	"github.com/karatworks/aurumpos-backend/pkg/logger"
	"github.com/karatworks/aurumpos-backend/pkg/metrics"
	"github.com/karatworks/aurumpos-backend/pkg/migrate"
	"github.com/karatworks/aurumpos-backend/pkg/outbox"
	"github.com/karatworks/aurumpos-backend/pkg/redis"
	"github.com/karatworks/aurumpos-backend/pkg/square"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	userRepo := users.NewRepository(gormDB)
	auditRepo := audit.NewRepository(gormDB)
	catalogRepo := catalog.NewRepository(gormDB)
	customerRepo := customers.NewRepository(gormDB)
	ledgerRepo := ledger.NewRepository(gormDB)
	salesRepo := sales.NewRepository(gormDB)
	storeRepo := stores.NewRepository(gormDB)
	outboxService := outbox.NewService(outbox.NewRepository(gormDB), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		Limiter:        redisClient,
		JWTConfig:      cfg.JWT,
		RateLimitCfg:   cfg.AuthRateLimit,
		PasswordCfg:    cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	auditService, err := audit.NewService(auditRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create audit service", err)
		os.Exit(1)
	}
	catalogService, err := catalog.NewService(dbClient, catalogRepo, auditRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	customerService, err := customers.NewService(dbClient, customerRepo, auditRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create customer service", err)
		os.Exit(1)
	}
	storeService, err := stores.NewService(dbClient, storeRepo, auditRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create store service", err)
		os.Exit(1)
	}
	userService, err := users.NewService(dbClient, userRepo, auditRepo, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}
	ledgerService, err := ledger.NewService(dbClient, ledgerRepo, auditRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	sessionStore, err := register.NewRedisStore(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create register session store", err)
		os.Exit(1)
	}
	registerService, err := register.NewService(sessionStore, catalogService, customerService, storeService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	// Card capture is optional; without Square credentials the register
	// accepts card tenders as externally-captured references only.
	var cardService payments.Service
	if cfg.Square.AccessToken != "" {
		squareClient, sqErr := square.NewClient(context.Background(), cfg.Square, logg)
		if sqErr != nil {
			logg.Error(context.Background(), "failed to create square client", sqErr)
			os.Exit(1)
		}
		cardService, err = payments.NewService(squareClient)
		if err != nil {
			logg.Error(context.Background(), "failed to create payments service", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "square access token not set, card capture disabled")
	}

	promRegistry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(promRegistry)
	saleMetrics := metrics.NewSaleMetrics(promRegistry)

	salesService, err := sales.NewService(
		dbClient,
		salesRepo,
		sessionStore,
		catalogRepo,
		customerRepo,
		ledgerRepo,
		auditRepo,
		storeService,
		userRepo,
		cardService,
		outboxService,
		saleMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			promRegistry,
			httpMetrics,
			sessionManager,
			authService,
			catalogService,
			customerService,
			registerService,
			salesService,
			ledgerService,
			auditService,
			storeService,
			userService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server shut down gracefully")
}
