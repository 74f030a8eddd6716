// Package main provides the API server entry point for the BM streak service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bm-streak/internal/api"
	"github.com/bm-streak/internal/config"
	"github.com/bm-streak/internal/logging"
	"github.com/bm-streak/internal/notification"
	"github.com/bm-streak/internal/retry"
	"github.com/bm-streak/internal/service"
	"github.com/bm-streak/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.WithError(err).Fatal("Failed to load configuration")
	}

	// Initialize structured logging
	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	if cfg.Logging.File != "" {
		logging.InitGlobalLoggerWithFile(logLevel, logFormat, &logging.FileOptions{
			Path:       cfg.Logging.File,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
		})
	} else {
		logging.InitGlobalLogger(logLevel, logFormat)
	}

	logger := logging.GetGlobalLogger()
	defer func() { _ = logger.Sync() }()

	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	// Connect to Redis, retrying while it comes up
	retryCfg := retry.DefaultRetryConfig()
	if cfg.Redis.ConnectAttempts > 0 {
		retryCfg.MaxAttempts = cfg.Redis.ConnectAttempts
	}

	var store *storage.RedisStore
	err = retry.Do(context.Background(), retryCfg, func(ctx context.Context, attempt int) error {
		var connErr error
		store, connErr = storage.NewRedisStore(&cfg.Redis)
		return connErr
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer store.Close()
	logger.WithField("prefix", cfg.Redis.KeyPrefix).Info("Redis connection established")

	// Initialize repositories
	streakRepo := storage.NewStreakRepository(store)
	sendLimitRepo := storage.NewSendLimitRepository(store)
	leaderboardRepo := storage.NewLeaderboardRepository(store)
	milestoneRepo := storage.NewMilestoneRepository(store)
	receiptRepo := storage.NewReceiptRepository(store)
	notificationRepo := storage.NewNotificationRepository(store)

	// Notifications are best-effort and run off the request path
	notificationClient := notification.NewClient(&cfg.Notification)
	var notifier service.Notifier
	var dispatcher *notification.Dispatcher
	if cfg.Notification.Enabled {
		dispatcher = notification.NewDispatcher(notificationRepo, notificationClient, &cfg.Notification)
		dispatcher.Start()
		notifier = dispatcher
	} else {
		logger.Info("Notifications disabled")
	}

	// Initialize services
	checkInService := service.NewCheckInService(streakRepo, leaderboardRepo, milestoneRepo, notifier, nil)
	sendService := service.NewSendService(streakRepo, sendLimitRepo, leaderboardRepo, receiptRepo, notifier, nil)
	queryService := service.NewQueryService(streakRepo, sendLimitRepo, leaderboardRepo, receiptRepo, nil)

	serverConfig := &api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RateLimitRPS:    float64(cfg.RateLimit.RequestsPerSecond),
		RateLimitBurst:  cfg.RateLimit.Burst,
		TrustProxy:      cfg.RateLimit.TrustProxy,
	}

	server := api.NewServer(serverConfig, checkInService, sendService, queryService, notificationClient, store)

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
		logger.WithError(err).Error("Server forced to shutdown")
	}
	if dispatcher != nil {
		if err := dispatcher.Stop(ctx); err != nil {
			logger.WithError(err).Warn("Notification queue not fully drained")
		}
	}

	logger.Info("Server exited")
}
