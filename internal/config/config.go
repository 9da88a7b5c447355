package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr         = ":8080"
	defaultDatabaseURL      = "propzy.db"
	defaultJWTSecret        = "change-me-jwt-secret"
	defaultJWTTTL           = "168h"
	defaultResetTokenPepper = "change-me-reset-pepper"
	defaultResetTokenTTL    = "1h"
	defaultShutdownTimeout  = "10s"
)

type Config struct {
	AppEnv          string
	HTTPAddr        string
	DatabaseURL     string
	DBLogLevel      string
	LogLevel        string
	ShutdownTimeout time.Duration

	JWTSecret        string
	JWTTTL           time.Duration
	ResetTokenPepper string
	ResetTokenTTL    time.Duration
	FrontendURL      string

	CORSAllowedOrigins []string

	Assets AssetConfig
	Mail   MailConfig
	Redis  RedisConfig

	MetricsToken string

	AdminEmail    string
	AdminPassword string
}

type AssetConfig struct {
	Host        string // local | s3
	UploadDir   string
	BaseURL     string
	MaxUploadMB int64

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	S3Bucket           string
	S3PublicURL        string
	S3Endpoint         string
}

type MailConfig struct {
	Driver       string // log | smtp | redis
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	From         string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "development"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" && os.Getenv("HTTP_ADDR") == "" {
		cfg.HTTPAddr = ":" + port
	}
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.DBLogLevel = strings.ToLower(strings.TrimSpace(getEnv("DB_LOG_LEVEL", "warn")))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info")))

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.ResetTokenPepper = strings.TrimSpace(getEnv("RESET_TOKEN_PEPPER", defaultResetTokenPepper))
	cfg.FrontendURL = strings.TrimRight(strings.TrimSpace(getEnv("FRONTEND_URL", "http://localhost:3000")), "/")

	var err error
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL); err != nil {
		return nil, err
	}
	if cfg.ResetTokenTTL, err = parseDurationEnv("RESET_TOKEN_TTL", defaultResetTokenTTL); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = parseDurationEnv("SHUTDOWN_TIMEOUT", defaultShutdownTimeout); err != nil {
		return nil, err
	}

	cfg.Assets = AssetConfig{
		Host:               strings.ToLower(strings.TrimSpace(getEnv("ASSET_HOST", "local"))),
		UploadDir:          strings.TrimSpace(getEnv("UPLOAD_DIR", "./uploads")),
		BaseURL:            strings.TrimRight(strings.TrimSpace(getEnv("UPLOAD_BASE_URL", "/static")), "/"),
		AWSRegion:          strings.TrimSpace(os.Getenv("AWS_REGION")),
		AWSAccessKeyID:     strings.TrimSpace(os.Getenv("AWS_ACCESS_KEY_ID")),
		AWSSecretAccessKey: strings.TrimSpace(os.Getenv("AWS_SECRET_ACCESS_KEY")),
		S3Bucket:           strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3PublicURL:        strings.TrimRight(strings.TrimSpace(os.Getenv("S3_PUBLIC_URL")), "/"),
		S3Endpoint:         strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
	}
	maxMB, err := parseIntEnv("MAX_UPLOAD_MB", 50)
	if err != nil {
		return nil, err
	}
	cfg.Assets.MaxUploadMB = int64(maxMB)

	smtpPort, err := parseIntEnv("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	cfg.Mail = MailConfig{
		Driver:       strings.ToLower(strings.TrimSpace(getEnv("MAIL_DRIVER", "log"))),
		SMTPHost:     strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPPort:     smtpPort,
		SMTPUsername: strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		From:         strings.TrimSpace(getEnv("SMTP_FROM", "no-reply@propzy.local")),
	}

	redisDB, err := parseIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.Redis = RedisConfig{
		Addr:     strings.TrimSpace(getEnv("REDIS_ADDR", "localhost:6379")),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	}

	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	cfg.MetricsToken = strings.TrimSpace(os.Getenv("METRICS_TOKEN"))
	cfg.AdminEmail = strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProdLike reports whether strict settings apply.
func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.ResetTokenTTL <= 0 {
		return fmt.Errorf("RESET_TOKEN_TTL must be > 0")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.Assets.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be > 0")
	}

	switch cfg.DBLogLevel {
	case "silent", "error", "warn", "info":
	default:
		return fmt.Errorf("DB_LOG_LEVEL must be one of: silent, error, warn, info")
	}

	switch cfg.Assets.Host {
	case "local":
		if cfg.Assets.UploadDir == "" {
			return fmt.Errorf("UPLOAD_DIR must not be empty when ASSET_HOST=local")
		}
	case "s3":
		if cfg.Assets.AWSRegion == "" || cfg.Assets.S3Bucket == "" {
			return fmt.Errorf("AWS_REGION and S3_BUCKET are required when ASSET_HOST=s3")
		}
	default:
		return fmt.Errorf("ASSET_HOST must be one of: local, s3")
	}

	switch cfg.Mail.Driver {
	case "log", "redis":
	case "smtp":
		if cfg.Mail.SMTPHost == "" || cfg.Mail.From == "" {
			return fmt.Errorf("SMTP_HOST and SMTP_FROM are required when MAIL_DRIVER=smtp")
		}
	default:
		return fmt.Errorf("MAIL_DRIVER must be one of: log, smtp, redis")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/staging JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.ResetTokenPepper, defaultResetTokenPepper) {
			return fmt.Errorf("in prod/staging RESET_TOKEN_PEPPER must be set and not default")
		}
		if cfg.Mail.Driver == "log" {
			return fmt.Errorf("in prod/staging MAIL_DRIVER must not be log")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "staging" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
