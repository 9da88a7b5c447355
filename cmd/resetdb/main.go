package main

import (
	"flag"

	"propzy/internal/config"
	"propzy/internal/database"
	"propzy/internal/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	confirm := flag.Bool("confirm", false, "required: drop every table and re-run migrations")
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

	if !*confirm {
		log.Fatal("refusing to reset the database without -confirm")
	}

	db, err := database.ConnectWithOptions(cfg.DatabaseURL, database.Options{LogLevel: cfg.DBLogLevel})
	if err != nil {
		log.Fatal("database connect", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	if err := database.Reset(db); err != nil {
		log.Fatal("database reset", zap.Error(err))
	}
	log.Info("database reset complete", zap.String("env", cfg.AppEnv))
}
