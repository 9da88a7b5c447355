package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"propzy/internal/api"
	"propzy/internal/cache"
	"propzy/internal/config"
	"propzy/internal/database"
	"propzy/internal/mailer"
	"propzy/internal/modules/auth"
	jwtsvc "propzy/internal/pkg/jwt"
	"propzy/internal/pkg/logger"
	"propzy/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatal("config", zap.Error(err))
	}

	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		logger.L().Fatal("logger", zap.Error(err))
	}
	logger.Set(log)
	defer func() { _ = log.Sync() }()

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.ConnectWithOptions(cfg.DatabaseURL, database.Options{LogLevel: cfg.DBLogLevel})
	if err != nil {
		log.Fatal("database connect", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("database migrate", zap.Error(err))
	}

	ctx := context.Background()

	assets, staticDir, err := buildAssetHost(ctx, cfg)
	if err != nil {
		log.Fatal("asset host", zap.Error(err))
	}

	var redisClient *redis.Client
	var sender auth.Mailer
	switch cfg.Mail.Driver {
	case "smtp":
		sender = mailer.NewSMTPSender(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort, cfg.Mail.SMTPUsername, cfg.Mail.SMTPPassword, cfg.Mail.From)
	case "redis":
		redisClient, err = cache.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("redis connect", zap.Error(err))
		}
		sender = mailer.NewRedisSender(redisClient, cfg.Mail.From)
	default:
		sender = mailer.NewLogSender(log.Named("mail"))
	}

	router := api.NewRouter(api.Deps{
		Config:    cfg,
		DB:        db,
		Tokens:    jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL),
		Assets:    assets,
		Mailer:    sender,
		Logger:    log,
		StaticDir: staticDir,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http server listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("env", cfg.AppEnv),
			zap.String("asset_host", cfg.Assets.Host),
			zap.String("mail_driver", cfg.Mail.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	if redisClient != nil {
		if err := cache.DisconnectRedis(redisClient); err != nil {
			log.Error("redis close", zap.Error(err))
		}
	}
	if err := database.Close(db); err != nil {
		log.Error("database close", zap.Error(err))
	}
	log.Info("server stopped")
}

// buildAssetHost returns the configured host and, for the local host, the
// directory to serve statically.
func buildAssetHost(ctx context.Context, cfg *config.Config) (storage.AssetHost, string, error) {
	if cfg.Assets.Host == "s3" {
		host, err := storage.NewS3Host(ctx, storage.S3Config{
			Region:          cfg.Assets.AWSRegion,
			AccessKeyID:     cfg.Assets.AWSAccessKeyID,
			SecretAccessKey: cfg.Assets.AWSSecretAccessKey,
			Bucket:          cfg.Assets.S3Bucket,
			PublicURL:       cfg.Assets.S3PublicURL,
			Endpoint:        cfg.Assets.S3Endpoint,
		})
		return host, "", err
	}
	host := storage.NewLocalHost(cfg.Assets.UploadDir, cfg.Assets.BaseURL)
	return host, host.Dir(), nil
}
