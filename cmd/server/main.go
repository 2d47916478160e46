// Package main provides the API server entry point for the call screening service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/call-screener/internal/api"
	"github.com/call-screener/internal/billing"
	"github.com/call-screener/internal/config"
	"github.com/call-screener/internal/contacts"
	"github.com/call-screener/internal/logging"
	"github.com/call-screener/internal/phone"
	"github.com/call-screener/internal/screening"
	"github.com/call-screener/internal/service"
	"github.com/call-screener/internal/storage"
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
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	// Connect to Postgres
	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	// Connect to Redis. The membership cache is optional: without it every
	// screening lookup goes to Postgres.
	var cache *storage.RedisCache
	redisCache, err := storage.NewRedisCache(&cfg.Database.Redis)
	if err != nil {
		logger.WithError(err).Warn("Redis unavailable, screening lookups will skip the cache")
	} else {
		cache = redisCache
		defer redisCache.Close()
	}

	logger.Info("Database connections established")

	// Initialize repositories
	whitelistRepo := storage.NewWhitelistRepository(postgres)
	blacklistRepo := storage.NewBlacklistRepository(postgres)
	eventRepo := storage.NewCallEventRepository(postgres)
	contactRepo := storage.NewContactRepository(postgres)
	settingsRepo := storage.NewSettingsRepository(postgres)
	subscriptionRepo := storage.NewSubscriptionRepository(postgres)

	// Initialize the screening pipeline
	normalizer := phone.NewNormalizer(cfg.Screening.DefaultRegion)
	index := storage.NewScreeningIndex(whitelistRepo, blacklistRepo, cache, cfg.Screening.MembershipCacheTTL)
	directory := contacts.NewDirectory(contactRepo, normalizer)
	subscriptions := billing.NewManager(subscriptionRepo, settingsRepo, cfg.Screening.TrialDays)

	engine := screening.NewEngine(index, directory, eventRepo, subscriptions)
	screeningService := screening.NewService(engine, normalizer, settingsRepo, directory, eventRepo, cfg.Screening.EvaluationTimeout)

	listService := service.NewListService(normalizer, whitelistRepo, blacklistRepo, eventRepo, directory, index)

	logger.Info("Services initialized")

	serverConfig := &api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RateLimitRPS:    cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst:  cfg.RateLimit.Burst,
	}

	server := api.NewServer(serverConfig, screeningService, listService, eventRepo, settingsRepo, directory, subscriptions)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Server started successfully")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
