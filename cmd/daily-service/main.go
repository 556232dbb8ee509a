package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang-divergence-signals/internal/query/config"
	"golang-divergence-signals/internal/query/repository"
	"golang-divergence-signals/internal/query/service"
	"golang-divergence-signals/pkg/logger"
	"golang-divergence-signals/pkg/postgres"
	"golang-divergence-signals/pkg/redis"
	"golang-divergence-signals/pkg/telegram"
	"golang-divergence-signals/pkg/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	runNow     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the scheduled daily signal push service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Daily Signal Service", zap.String("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", zap.Error(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer redisClient.Close()

	// Initialize Telegram notifier
	telegramNotifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxMessagesPerMinute)
	if err != nil {
		appLogger.Fatal("Failed to initialize Telegram notifier", zap.Error(err))
	}

	// Initialize repositories and services
	eventRepo := repository.NewDivergenceEventRepository(db.DB)
	priceRepo := repository.NewDailyPriceRepository(db.DB)
	querySvc := service.NewQueryService(eventRepo, priceRepo, appLogger)
	dailySvc := service.NewDailyService(cfg, querySvc, telegramNotifier, redisClient.Client, appLogger)

	if runNow {
		date := utils.Truncate(utils.TimeNowCST())
		if err := dailySvc.RunOnce(ctx, date); err != nil {
			appLogger.Fatal("Immediate signal push failed", zap.Error(err))
		}
		return
	}

	if err := dailySvc.Start(ctx); err != nil {
		appLogger.Fatal("Failed to start daily service", zap.Error(err))
	}

	appLogger.Info("Daily signal service started. Waiting for schedule...")

	// Wait for interrupt signal to gracefully shut down the service
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down daily signal service...")
	cancel()
	dailySvc.Stop()
	appLogger.Info("Daily signal service stopped.")
}

func main() {
	rootCmd := &cobra.Command{Use: "daily-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")
	serveCmd.Flags().BoolVar(&runNow, "now", false, "Run one push cycle immediately and exit")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing daily-service CLI: %s\n", err)
		os.Exit(1)
	}
}
