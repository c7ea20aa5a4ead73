package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"time"

	"surfaura/pkg/client"
	kafka_config "surfaura/pkg/kafka/config"
	"surfaura/pkg/logger"
	"surfaura/pkg/store"
	"surfaura/pkg/store/memory"
	"surfaura/pkg/store/mongostore"

	"github.com/joho/godotenv"
)

var (
	mongoSchemeRegex = regexp.MustCompile(`^mongodb(\+srv)?://`)
	credentialRegex  = regexp.MustCompile(`(mongodb(\+srv)?://)[^:/@]+:[^@]+@`)
)

type Config struct {
	DatabaseURL      string
	DatabaseName     string
	StoreDriver      string
	MongoConnTimeout time.Duration
	StoreTimeout     time.Duration

	Port      string
	LogLevel  string
	LogFormat string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout       time.Duration
	IdempotencyTTL       time.Duration
	IdempotencyRedisAddr string
	MaxRequestSize       int
	CORSMaxAge           time.Duration

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	Kafka *kafka_config.Config

	Log    *logger.Logger
	Client *client.Client
	Store  store.Store
}

// Load reads .env (when present) and the environment, then exits on invalid
// configuration.
func Load(serviceName string) *Config {
	cfg, err := Parse(serviceName)
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// Parse is Load without the exit. The returned config and its logger are
// usable even when validation fails.
func Parse(serviceName string) (*Config, error) {
	envFileErr := loadEnvFile(".env")

	cfg := &Config{
		DatabaseURL:      getEnvStr(EnvDatabaseURL, ""),
		DatabaseName:     getEnvStr(EnvDatabaseName, DefaultDatabaseName),
		StoreDriver:      getEnvStr(EnvStoreDriver, DefaultStoreDriver),
		MongoConnTimeout: getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),
		StoreTimeout:     getEnvDuration(EnvStoreTimeout, DefaultStoreTimeout),

		Port:      getEnvStr(EnvPort, DefaultPort),
		LogLevel:  getEnvStr(EnvLogLevel, DefaultLogLevel),
		LogFormat: getEnvStr(EnvLogFormat, DefaultLogFormat),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout:       getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL:       getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		IdempotencyRedisAddr: getEnvStr(EnvIdempotencyRedisAddr, ""),
		MaxRequestSize:       getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),
		CORSMaxAge:           getEnvDuration(EnvCORSMaxAge, DefaultCORSMaxAge),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		Client: client.NewClient(),
	}

	cfg.Log = logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		AddSource: true,
		Service:   serviceName,
	})

	if envFileErr != nil {
		cfg.Log.Warn("Failed to read .env file", "error", envFileErr)
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		return cfg, err
	}
	cfg.Kafka = kafkaCfg

	return cfg, cfg.Validate()
}

// loadEnvFile never overrides variables that are already set.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// SetStore opens the configured document store. A missing or unreachable
// database is logged and leaves an unavailable store in place; the process
// keeps running so catalog and diagnostics endpoints still answer.
func (cfg *Config) SetStore(ctx context.Context) {
	if cfg.StoreDriver == StoreDriverMemory {
		cfg.Store = memory.New()
		cfg.Log.Warn("Using in-memory document store; bookings are lost on restart")
		return
	}

	if cfg.DatabaseURL == "" {
		cfg.Log.Warn("DATABASE_URL is not set; booking storage is unavailable")
	} else if err := cfg.Client.SetMongo(ctx, cfg.Log, cfg.DatabaseURL, cfg.MongoConnTimeout); err != nil {
		cfg.Log.Error("MongoDB connection failed; booking storage is unavailable",
			"error", err,
			"uri", redactMongoURI(cfg.DatabaseURL),
		)
	}

	cfg.Store = mongostore.New(cfg.Client.Mongo, cfg.DatabaseName, cfg.StoreTimeout, cfg.StoreTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	switch cfg.StoreDriver {
	case StoreDriverMongo:
		if cfg.DatabaseURL != "" && !mongoSchemeRegex.MatchString(cfg.DatabaseURL) {
			errors = append(errors, fmt.Sprintf("DatabaseURL must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.DatabaseURL)))
		}
		if cfg.DatabaseName == "" {
			errors = append(errors, "DatabaseName cannot be empty")
		}
	case StoreDriverMemory:
	default:
		errors = append(errors, fmt.Sprintf("StoreDriver must be %q or %q, got: %q", StoreDriverMongo, StoreDriverMemory, cfg.StoreDriver))
	}

	if cfg.LogFormat != logger.JSON && cfg.LogFormat != logger.TEXT {
		errors = append(errors, fmt.Sprintf("LogFormat must be %q or %q, got: %q", logger.JSON, logger.TEXT, cfg.LogFormat))
	}

	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.StoreTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("StoreTimeout must be positive, got: %s", cfg.StoreTimeout))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.CORSMaxAge < 0 {
		errors = append(errors, fmt.Sprintf("CORSMaxAge cannot be negative, got: %s", cfg.CORSMaxAge))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	} else if cfg.WriteTimeout <= cfg.RequestTimeout {
		errors = append(errors, fmt.Sprintf("WriteTimeout (%s) must be greater than RequestTimeout (%s)", cfg.WriteTimeout, cfg.RequestTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"database_url", redactMongoURI(cfg.DatabaseURL),
		"database_name", cfg.DatabaseName,
		"store_driver", cfg.StoreDriver,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"store_timeout", cfg.StoreTimeout,
		"port", cfg.Port,
		"log_level", cfg.LogLevel,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"idempotency_redis_set", cfg.IdempotencyRedisAddr != "",
		"max_request_size", cfg.MaxRequestSize,
		"cors_max_age", cfg.CORSMaxAge,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
	)
	if cfg.Kafka != nil {
		cfg.Kafka.LogConfiguration(cfg.Log.Info)
	}
}

func redactMongoURI(uri string) string {
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown(ctx context.Context) {
	cfg.Client.GracefulShutdown(ctx, cfg.Log)
}
