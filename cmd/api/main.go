package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campuswallet/registration/internal/catalog"
	"github.com/campuswallet/registration/internal/config"
	"github.com/campuswallet/registration/internal/handler"
	"github.com/campuswallet/registration/internal/logging"
	"github.com/campuswallet/registration/internal/metrics"
	"github.com/campuswallet/registration/internal/middleware"
	"github.com/campuswallet/registration/internal/repository"
	"github.com/campuswallet/registration/internal/service/registration"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("registration-api", cfg.LogLevel, cfg.AppEnv)

	db, err := connectDB(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	semesters := repository.NewSemesterRepository(db)
	allocations := repository.NewAllocationRepository(db)
	wallets := repository.NewWalletRepository(db)
	transactions := repository.NewTransactionRepository(db)

	courseCatalog := catalog.New(semesters, allocations)
	engineMetrics := metrics.New(prometheus.DefaultRegisterer)
	settlement := registration.NewService(
		semesters, transactions, wallets, allocations, courseCatalog,
		db, engineMetrics, cfg.RegisterTimeout, cfg.DebitMaxRetries,
	)

	// A pending row that survived a restart proves its settlement never
	// committed; fail it so the student can try again.
	recoverCtx, cancelRecover := context.WithTimeout(context.Background(), 30*time.Second)
	recovered, err := settlement.RecoverStale(recoverCtx, cfg.RecoveryPendingAge)
	cancelRecover()
	if err != nil {
		slog.Error("stale transaction recovery failed", "error", err)
		os.Exit(1)
	}
	if recovered > 0 {
		slog.Info("recovered stale transactions", "count", recovered)
	}

	registrationHandler := handler.NewRegistrationHandler(courseCatalog, settlement)
	walletHandler := handler.NewWalletHandler(wallets)
	healthHandler := handler.NewHealthHandler(db)

	authed := func(h http.HandlerFunc) http.Handler {
		return middleware.Auth(cfg.JWTSecret)(h)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /api/v1/allocated-courses", authed(registrationHandler.GetAllocatedCourses))
	mux.Handle("POST /api/v1/register-allocated-courses", authed(registrationHandler.RegisterAllocatedCourses))
	mux.Handle("GET /api/v1/wallet", authed(walletHandler.GetWallet))
	mux.HandleFunc("GET /health", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)
	mux.Handle("GET /metrics", promhttp.Handler())

	chain := middleware.Recovery(middleware.RequestID(middleware.Logging(mux)))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           chain,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func connectDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connectDB: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeS) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTimeS) * time.Second)

	for i := range 30 {
		if err = db.Ping(); err == nil {
			return db, nil
		}
		slog.Info("waiting for database", "attempt", i+1)
		time.Sleep(time.Second)
	}

	db.Close()
	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", err)
}
