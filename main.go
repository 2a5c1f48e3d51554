package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"report-console/config"
	"report-console/internal/api"
	"report-console/internal/database"
	"report-console/internal/services"
	"report-console/pkg/logger"

	"go.uber.org/zap"
)

// @title report-console API
// @version 1.0
// @description Backend for the research report console: report generation tasks and schedules.

// @host localhost:8000
// @BasePath /api

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	}); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	for _, dir := range []string{filepath.Dir(cfg.DBPath), cfg.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Log.Fatal("failed to create directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	if _, err := database.Connect(cfg.DBPath); err != nil {
		logger.Log.Fatal("failed to connect database", zap.Error(err))
	}

	if err := database.ConnectRedis(cfg); err != nil {
		logger.Log.Fatal("failed to connect redis", zap.Error(err))
	}

	scheduler := services.NewScheduler()
	if err := scheduler.Start(); err != nil {
		logger.Log.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer scheduler.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go services.StartWorker(ctx, &services.SimulatedGenerator{
		OutputDir:  cfg.OutputDir,
		StageDelay: cfg.GeneratorStageDelay,
	})

	// Stop the worker and scheduler cleanly on SIGINT/SIGTERM.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Log.Info("shutting down")
		cancel()
		scheduler.Stop()
		logger.Sync()
		os.Exit(0)
	}()

	router := api.NewRouter(scheduler)

	logger.Log.Info("server starting", zap.String("addr", cfg.ServerAddr))
	if err := router.Run(cfg.ServerAddr); err != nil {
		logger.Log.Fatal("failed to run server", zap.Error(err))
	}
}
