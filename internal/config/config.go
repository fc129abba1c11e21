package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App struct {
		ENV         string
		SeedOnStart bool
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		Driver   string
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		LogLevel string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	GRPC struct {
		Host string
		Port string
	}

	// Store bounds every document store call.
	Store struct {
		Timeout    time.Duration
		MaxRetries int
	}

	Blob struct {
		Driver        string
		PublicBaseURL string
		CloudName     string
		APIKey        string
		APISecret     string
		Folder        string
	}

	Auth struct {
		JWTSecret string
		Issuer    string
		TokenTTL  time.Duration
	}

	Feed struct {
		PageSize int
	}
}

func New() *Config {
	cfg := &Config{}

	// App
	cfg.App.ENV = getEnvDefault("APP_ENV", "production")
	cfg.App.SeedOnStart = isTruthy(os.Getenv("SEED_ON_START"))

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "fitsocial")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.Driver = strings.ToLower(getEnvDefault("DB_DRIVER", "mysql"))
	cfg.DB.LogLevel = getEnvDefault("DB_LOG_LEVEL", "warn")
	cfg.DB.DSN = os.Getenv("DB_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	}
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", defaultDBPort(cfg.DB.Driver))
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "fitsocial")
		cfg.DB.DSN = buildDSN(cfg)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	// gRPC
	cfg.GRPC.Host = getEnvDefault("GRPC_HOST", "127.0.0.1")
	cfg.GRPC.Port = getEnvDefault("GRPC_PORT", "50051")

	// Document store
	cfg.Store.Timeout = getEnvDuration("STORE_TIMEOUT", 5*time.Second)
	cfg.Store.MaxRetries = getEnvInt("STORE_MAX_RETRIES", 5)

	// Blob store
	cfg.Blob.Driver = strings.ToLower(getEnvDefault("BLOB_DRIVER", "redis"))
	cfg.Blob.PublicBaseURL = getEnvDefault("BLOB_PUBLIC_BASE_URL", "http://localhost:8080/blobs")
	cfg.Blob.CloudName = os.Getenv("CLOUDINARY_CLOUD_NAME")
	cfg.Blob.APIKey = os.Getenv("CLOUDINARY_API_KEY")
	cfg.Blob.APISecret = os.Getenv("CLOUDINARY_API_SECRET")
	cfg.Blob.Folder = getEnvDefault("CLOUDINARY_FOLDER", "fitsocial")

	// Auth
	cfg.Auth.JWTSecret = getEnvDefault("JWT_SECRET", "insecure-development-secret")
	cfg.Auth.Issuer = getEnvDefault("JWT_ISSUER", "fitsocial")
	cfg.Auth.TokenTTL = getEnvDuration("JWT_TTL", 24*time.Hour)

	// Feed
	cfg.Feed.PageSize = getEnvInt("FEED_PAGE_SIZE", 20)

	return cfg
}

// buildDSN assembles a driver specific DSN from the discrete DB_* variables.
func buildDSN(cfg *Config) string {
	switch cfg.DB.Driver {
	case "postgres":
		return fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name,
		)
	case "sqlite":
		return cfg.DB.Name + ".db"
	default:
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}
}

func defaultDBPort(driver string) string {
	if driver == "postgres" {
		return "5432"
	}
	return "3306"
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	if v, err := strconv.Atoi(getEnvDefault(k, "")); err == nil {
		return v
	}
	return def
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnvDefault(k, "")); err == nil {
		return d
	}
	return def
}

// ShouldSeed reports whether demo data should replace the database at boot.
// Seeding wipes every collection, so it only happens on explicit request.
func (c *Config) ShouldSeed() bool {
	return c.App.SeedOnStart
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
