package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/baharkarakas/campus-registration/internal/api"
	"github.com/baharkarakas/campus-registration/internal/auth"
	"github.com/baharkarakas/campus-registration/internal/config"
	"github.com/baharkarakas/campus-registration/internal/db"
	"github.com/baharkarakas/campus-registration/internal/logger"
	"github.com/baharkarakas/campus-registration/internal/metrics"
	repo "github.com/baharkarakas/campus-registration/internal/repository"
	"github.com/baharkarakas/campus-registration/internal/repository/memory"
	"github.com/baharkarakas/campus-registration/internal/repository/postgres"
	"github.com/baharkarakas/campus-registration/internal/services"
	"github.com/baharkarakas/campus-registration/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", logger.Err(err))
		os.Exit(1)
	}
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("store", logger.Err(err))
		os.Exit(1)
	}
	defer closeStore()

	wp := worker.NewPool(cfg.AuditWorkers, 1024)
	defer wp.Stop()

	metrics.Init()
	r := api.NewRouter(api.RouterDeps{
		Cfg:    cfg,
		Users:  services.NewUserService(repos.Users),
		Tokens: auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL),
		Audit:  services.NewAuditService(repos.AuditLogs, wp, log),
		Log:    log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting",
			"port", cfg.HTTPPort,
			"store", cfg.StoreDriver,
			"require_valid_token", cfg.JWT.RequireValid,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", logger.Err(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", logger.Err(err))
	}
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repo.Repositories, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("using in-memory store, data is lost on exit")
		return memory.NewRepositories(), func() {}, nil
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return repo.Repositories{}, nil, err
	}
	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return repo.Repositories{}, nil, err
		}
	}
	return postgres.NewRepositories(pool), pool.Close, nil
}
