package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cimillas/funding-pool/internal/app"
	"github.com/cimillas/funding-pool/internal/clock"
	"github.com/cimillas/funding-pool/internal/config"
	"github.com/cimillas/funding-pool/internal/logger"
	"github.com/cimillas/funding-pool/internal/storage/postgres"
	transporthttp "github.com/cimillas/funding-pool/internal/transport/http"
	"github.com/cimillas/funding-pool/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if path, err := config.LoadDotEnv(); err != nil {
		log.Printf("WARN: failed to load .env: %v", err)
	} else if path != "" {
		log.Printf("loaded env from %s", path)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logr, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logr.Sync() }()

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logr.Fatalw("connect to db", "error", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logr.Fatalw("db ping", "error", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logr.Fatalw("apply migrations", "error", err)
	}

	treasury := postgres.NewLedgerTreasury(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	orderSvc := app.NewOrderService(orderRepo, treasury, clock.NewSystem(),
		app.WithDefaultThreshold(cfg.DefaultThreshold))
	poolRepo := postgres.NewPoolRepository(pool)
	poolSvc := app.NewPoolService(poolRepo, treasury, clock.NewSystem(),
		app.WithPoolDefaultThreshold(cfg.DefaultThreshold),
		app.WithDetailsLockPolicy(detailsLockPolicy(cfg.DetailsLock)))

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/orders", transporthttp.HandlePlaceOrder(orderSvc))
	mux.Handle("/orders/", transporthttp.HandleOrder(orderSvc))
	mux.Handle("/projects/", transporthttp.HandleProject(poolSvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(
		transporthttp.RateLimit(cfg.RateRPS, cfg.RateBurst,
			transporthttp.CORS(cfg.CORSOrigins, mux)),
		logr,
	)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logr.Infow("api listening", "port", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Errorw("server error", "error", err)
		}
	case <-stopCtx.Done():
		logr.Infow("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logr.Errorw("server shutdown error", "error", err)
	}
	logr.Infow("server stopped")
}

func detailsLockPolicy(mode string) app.DetailsLockPolicy {
	switch mode {
	case "after_release":
		return app.LockAfterRelease
	case "after_first_investment":
		return app.LockAfterFirstInvestment
	default:
		return app.LockNever
	}
}
