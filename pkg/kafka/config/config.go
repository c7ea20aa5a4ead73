package kafka_config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the event bus settings. Leaving KAFKA_BROKERS empty disables
// event publishing altogether.
type Config struct {
	Brokers       []string `envconfig:"KAFKA_BROKERS"`
	BookingsTopic string   `envconfig:"KAFKA_BOOKINGS_TOPIC" default:"surfaura.bookings"`
	DLQTopic      string   `envconfig:"KAFKA_DLQ_TOPIC"`

	ProducerMaxAttempts  int           `envconfig:"KAFKA_PRODUCER_MAX_ATTEMPTS" default:"3"`
	ProducerBatchTimeout time.Duration `envconfig:"KAFKA_PRODUCER_BATCH_TIMEOUT" default:"10ms"`
	ProducerRequireAcks  int           `envconfig:"KAFKA_PRODUCER_REQUIRE_ACKS" default:"-1"` // -1 = all, 0 = none, 1 = leader only
	ProducerCompression  string        `envconfig:"KAFKA_PRODUCER_COMPRESSION" default:"snappy"`
	ProducerAsync        bool          `envconfig:"KAFKA_PRODUCER_ASYNC" default:"false"`
	PublishTimeout       time.Duration `envconfig:"KAFKA_PUBLISH_TIMEOUT" default:"5s"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read kafka configuration: %w", err)
	}

	brokers := make([]string, 0, len(cfg.Brokers))
	for _, broker := range cfg.Brokers {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	cfg.Brokers = brokers

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) Enabled() bool {
	return cfg != nil && len(cfg.Brokers) > 0
}

// Validate only checks producer settings when publishing is enabled.
func (cfg *Config) Validate() error {
	if !cfg.Enabled() {
		return nil
	}

	var errors []string

	if cfg.BookingsTopic == "" {
		errors = append(errors, "KAFKA_BOOKINGS_TOPIC cannot be empty when brokers are configured")
	}

	if cfg.DLQTopic != "" && cfg.DLQTopic == cfg.BookingsTopic {
		errors = append(errors, fmt.Sprintf("KAFKA_DLQ_TOPIC must differ from the bookings topic, got: %s", cfg.DLQTopic))
	}

	if cfg.ProducerMaxAttempts <= 0 {
		errors = append(errors, fmt.Sprintf("ProducerMaxAttempts must be positive, got: %d", cfg.ProducerMaxAttempts))
	}

	if cfg.ProducerBatchTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ProducerBatchTimeout must be positive, got: %s", cfg.ProducerBatchTimeout))
	}

	validCompressions := map[string]bool{
		"none": true, "gzip": true, "snappy": true, "lz4": true, "zstd": true,
	}
	if !validCompressions[cfg.ProducerCompression] {
		errors = append(errors, fmt.Sprintf("ProducerCompression must be one of [none, gzip, snappy, lz4, zstd], got: %s", cfg.ProducerCompression))
	}

	validAcks := map[int]bool{-1: true, 0: true, 1: true}
	if !validAcks[cfg.ProducerRequireAcks] {
		errors = append(errors, fmt.Sprintf("ProducerRequireAcks must be -1, 0, or 1, got: %d", cfg.ProducerRequireAcks))
	}

	if cfg.PublishTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("PublishTimeout must be positive, got: %s", cfg.PublishTimeout))
	}

	if len(errors) > 0 {
		errMsg := "kafka configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration(logFunc func(msg string, keysAndValues ...any)) {
	if logFunc == nil {
		return
	}

	if !cfg.Enabled() {
		logFunc("Kafka disabled, booking events will not be published")
		return
	}

	logFunc("Kafka configuration loaded successfully",
		"brokers", cfg.Brokers,
		"bookings_topic", cfg.BookingsTopic,
		"dlq_topic", cfg.DLQTopic,
		"producer_max_attempts", cfg.ProducerMaxAttempts,
		"producer_batch_timeout", cfg.ProducerBatchTimeout,
		"producer_require_acks", cfg.ProducerRequireAcks,
		"producer_compression", cfg.ProducerCompression,
		"producer_async", cfg.ProducerAsync,
		"publish_timeout", cfg.PublishTimeout,
	)
}
