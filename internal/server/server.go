// Package server runs the b2zi HTTP server until the process is signalled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/mogusu300/b2zi-merchant/config"
	"github.com/mogusu300/b2zi-merchant/internal/kernel"
	"github.com/mogusu300/b2zi-merchant/pkg/cache"
	"github.com/mogusu300/b2zi-merchant/pkg/database"
	"github.com/mogusu300/b2zi-merchant/pkg/logger"
	"github.com/mogusu300/b2zi-merchant/pkg/migration"
)

const shutdownTimeout = 15 * time.Second

// Start boots config, logging, the database and Redis, serves HTTP and shuts
// down gracefully on SIGINT or SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if uri := config.LogMongoURI(); uri != "" {
		closeLogs, err := logger.EnableMongo(uri, config.LogMongoDB())
		if err != nil {
			logger.Warn("mongo log sink disabled", "error", err)
		} else {
			defer closeLogs()
		}
	}

	if err := database.Connect(); err != nil {
		return err
	}
	defer database.Close() //nolint:errcheck

	if config.AutoMigrate() {
		if err := migration.New(database.DB).Quiet().Run(); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	if config.RedisAddr() != "" {
		if err := cache.Connect(ctx); err != nil {
			logger.Warn("redis unavailable, view counts kept in memory", "error", err)
		} else {
			defer cache.Close() //nolint:errcheck
		}
	}

	k, err := kernel.NewHTTPKernel(database.DB, cache.NewCounter())
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("b2zi listening", "addr", srv.Addr, "env", config.AppEnv(), "db", config.DatabaseDriver())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
