package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/leadline/internal/config"
	"github.com/dukerupert/leadline/internal/database"
	"github.com/dukerupert/leadline/internal/logging"
	"github.com/dukerupert/leadline/internal/monitoring"
	"github.com/dukerupert/leadline/internal/server"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("info", "").Error("load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.Env)

	if enabled, err := monitoring.Init(cfg.SentryDSN, cfg.Env, version); err != nil {
		logger.Error("sentry init", "error", err)
	} else if enabled {
		logger.Info("sentry enabled", "env", cfg.Env)
	}
	defer monitoring.Flush(2 * time.Second)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv, err := server.New(db, cfg, logger)
	if err != nil {
		logger.Error("failed to build server", "error", err)
		os.Exit(1)
	}

	if cfg.SeedAdmin() {
		if err := srv.SeedAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
			logger.Error("failed to seed admin", "error", err)
			os.Exit(1)
		}
	}

	// Hourly sweep of expired sessions and rate limit windows
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.Cleanup(cleanupCtx)
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("leadline running", "addr", cfg.Addr(), "base_url", cfg.BaseURL, "version", version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cleanupCancel()
	srv.Hub().Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	srv.Wait()
}
