// Package main is the entry point for the church year API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zapponejosh/churchyear/internal/api"
	"github.com/zapponejosh/churchyear/internal/config"
	"github.com/zapponejosh/churchyear/internal/database"
	"github.com/zapponejosh/churchyear/internal/logger"
	"github.com/zapponejosh/churchyear/internal/sanctoral"
	"github.com/zapponejosh/churchyear/internal/scheduler"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup structured logging
	log := logger.Setup(cfg)

	log.Info("starting church year API",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("log_level", cfg.LogLevel),
		slog.String("sanctoral", cfg.SanctoralSource),
	)

	if err := run(cfg, log); err != nil {
		log.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("church year API stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var db *database.DB
	if cfg.UsesDatabase() {
		var err error
		db, err = openDatabase(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer db.Close()
	}

	handlers, err := api.NewHandlers(db, cfg, log)
	if err != nil {
		return err
	}

	if cfg.SnapshotCron != "" {
		sched, err := scheduler.New(cfg.SnapshotCron, handlers.Snapshotter(), log)
		if err != nil {
			return err
		}
		sched.Start()
		defer func() { <-sched.Stop().Done() }()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.SetupRoutes(handlers, cfg, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("church year API ready", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		log.Info("signal received, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openDatabase opens and migrates the store, seeding the built-in
// sanctorale on first start.
func openDatabase(ctx context.Context, cfg *config.Config, log *slog.Logger) (*database.DB, error) {
	db, err := database.Open(database.DefaultConfig(cfg.DatabasePath), log)
	if err != nil {
		return nil, err
	}

	if _, err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	n, err := db.CountSanctoralDays(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	if n == 0 {
		days, err := sanctoral.Default()
		if err != nil {
			db.Close()
			return nil, err
		}
		if _, err := db.SeedSanctoral(ctx, days); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}
