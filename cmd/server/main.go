package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/restaurants/internal/config"
	"github.com/JonMunkholm/restaurants/internal/core"
	"github.com/JonMunkholm/restaurants/internal/logging"
	"github.com/JonMunkholm/restaurants/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"dataset", cfg.Dataset.Path,
		"encodings", cfg.Dataset.Encodings,
		"reload_interval", cfg.Dataset.ReloadInterval,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ladder, err := core.NewDecodingLadder(cfg.Dataset.Encodings)
	if err != nil {
		slog.Error("invalid dataset encodings", "error", err)
		os.Exit(1)
	}

	// A failed startup load is not fatal: the server starts and every
	// search reports the load error until a reload succeeds.
	service := core.OpenService(context.Background(), cfg.Dataset.Path, core.LoadOptions{
		Ladder:   ladder,
		Comma:    cfg.Dataset.Comma(),
		MaxBytes: cfg.Dataset.MaxBytes,
	})
	if snap := service.Snapshot(); snap.Usable() {
		slog.Info("dataset ready",
			"rows", snap.Table.Len(),
			"encoding", snap.Table.Encoding(),
			"load_id", snap.Table.LoadID().String(),
		)
	} else {
		slog.Warn("dataset unavailable, serving errors until reload", "error", snap.Err)
	}

	server := web.NewServer(service, cfg)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartReloadScheduler(jobCtx, cfg.Dataset.ReloadInterval)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := service.Close(shutdownCtx); err != nil {
			slog.Warn("reload did not complete in time", "error", err)
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
