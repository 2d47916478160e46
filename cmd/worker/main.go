// Package main provides the retention worker entry point for the call screening service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/call-screener/internal/config"
	"github.com/call-screener/internal/logging"
	"github.com/call-screener/internal/storage"
	"github.com/call-screener/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.GetGlobalLogger().WithError(err).Fatal("Failed to load configuration")
	}

	// Initialize structured logging
	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()

	// Connect to Postgres
	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	eventRepo := storage.NewCallEventRepository(postgres)

	// Warm the Redis membership cache so the first screening decisions after
	// a restart skip Postgres. Best effort: a cold cache only costs latency.
	if redisCache, err := storage.NewRedisCache(&cfg.Database.Redis); err != nil {
		logger.WithError(err).Warn("Redis unavailable, skipping membership cache warm")
	} else {
		defer redisCache.Close()
		warmMembershipCache(logger, cfg, postgres, redisCache)
	}

	retentionWorker := worker.NewRetentionWorker(
		eventRepo,
		cfg.Screening.RetentionDays,
		cfg.Screening.PruneInterval,
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		retentionWorker.Run(ctx)
		close(done)
	}()

	logger.WithFields(map[string]interface{}{
		"retention_days": cfg.Screening.RetentionDays,
		"interval":       cfg.Screening.PruneInterval.String(),
	}).Info("Retention worker started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down retention worker...")
	cancel()
	<-done

	logger.Info("Retention worker exited")
}

func warmMembershipCache(logger *logging.Logger, cfg *config.Config, postgres *storage.PostgresDB, cache *storage.RedisCache) {
	whitelistRepo := storage.NewWhitelistRepository(postgres)
	blacklistRepo := storage.NewBlacklistRepository(postgres)
	index := storage.NewScreeningIndex(whitelistRepo, blacklistRepo, cache, cfg.Screening.MembershipCacheTTL)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Screening.EvaluationTimeout*10)
	defer cancel()

	numbers, err := whitelistRepo.AllNormalizedNumbers(ctx)
	if err != nil {
		logger.WithError(err).Warn("Failed to list whitelist numbers for cache warm")
		return
	}

	warmed := 0
	for _, number := range numbers {
		if _, err := index.WhitelistMatch(ctx, number); err != nil {
			logger.WithError(err).WithField("number", number).Warn("Cache warm lookup failed")
			continue
		}
		warmed++
	}

	logger.WithField("entries", warmed).Info("Membership cache warmed")
}
