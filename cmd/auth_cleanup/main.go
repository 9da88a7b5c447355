package main

import (
	"context"
	"flag"
	"time"

	"propzy/internal/config"
	"propzy/internal/database"
	"propzy/internal/pkg/logger"
	"propzy/internal/repository"

	"go.uber.org/zap"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "only report how many password-reset tokens would be deleted")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatal("config", zap.Error(err))
	}
	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		logger.L().Fatal("logger", zap.Error(err))
	}
	defer func() { _ = log.Sync() }()

	db, err := database.ConnectWithOptions(cfg.DatabaseURL, database.Options{LogLevel: cfg.DBLogLevel})
	if err != nil {
		log.Fatal("database connect", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	ctx := context.Background()
	resets := repository.NewPasswordResetRepository(db)
	now := time.Now().UTC()

	if *dryRun {
		n, err := resets.CountStale(ctx, now)
		if err != nil {
			log.Fatal("count stale password resets", zap.Error(err))
		}
		log.Info("auth cleanup dry run", zap.Int64("password_resets", n))
		return
	}

	n, err := resets.DeleteStale(ctx, now)
	if err != nil {
		log.Fatal("cleanup password resets", zap.Error(err))
	}
	log.Info("auth cleanup completed", zap.Int64("password_resets", n))
}
