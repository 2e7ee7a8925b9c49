package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mapletrack/internal/app"
	"mapletrack/internal/archive"
	"mapletrack/internal/checklist"
	"mapletrack/internal/config"
	"mapletrack/internal/gate"
	"mapletrack/internal/logging"
	"mapletrack/internal/period"
	"mapletrack/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	if cfg.StorageBackend == store.BackendSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			logger.Fatal("failed to create data dir", zap.Error(err))
		}
	}
	rows, err := store.OpenStore(ctx, cfg.StorageBackend, cfg.DSN())
	if err != nil {
		logger.Fatal("database connection failed", zap.String("backend", cfg.StorageBackend), zap.Error(err))
	}
	defer rows.Close()

	clock := period.SystemClock{}
	opts := checklist.Options{
		Logger:          logger,
		Clock:           clock,
		RetentionMonths: cfg.RetentionMonths,
		CleanupInterval: cfg.CleanupInterval,
		FanoutLimit:     cfg.FanoutLimit,
	}

	if strings.TrimSpace(cfg.RedisURL) != "" {
		logger.Info("using redis for the cleanup gate")
		redisGate, err := gate.NewRedisGate(cfg.RedisURL)
		if err != nil {
			logger.Fatal("redis connection failed", zap.Error(err))
		}
		defer redisGate.Close()
		opts.Gate = redisGate
	} else {
		logger.Info("using in-process cleanup gate")
		opts.Gate = gate.NewMemoryGate(clock.Now)
	}

	if archiveCfg := cfg.Archive.Archiver(); archiveCfg.Enabled() {
		archiver, err := archive.NewMinioArchiver(ctx, archiveCfg)
		if err != nil {
			logger.Fatal("archive bucket unavailable", zap.String("endpoint", archiveCfg.Endpoint), zap.Error(err))
		}
		logger.Info("archiving expired rows", zap.String("bucket", archiveCfg.Bucket))
		opts.Archiver = archiver
	}

	service := checklist.NewService(rows, opts)
	httpServer := app.NewHTTPServer(service, rows, cfg, logger)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("mapletrack API listening", zap.String("addr", cfg.Addr), zap.String("backend", rows.Backend()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}
