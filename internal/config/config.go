package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
)

// Config holds all configuration for the storefront runtime.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"STOREFRONT_HTTP_PORT" envDefault:"8090"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	RateLimitRPS    float64       `env:"RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst  int           `env:"RATE_LIMIT_BURST" envDefault:"100"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// REST backend
	BackendURL        string        `env:"BACKEND_URL" envDefault:"http://localhost:5000/api"`
	BackendTimeout    time.Duration `env:"BACKEND_TIMEOUT" envDefault:"15s"`
	BackendMaxRetries int           `env:"BACKEND_MAX_RETRIES" envDefault:"2"`
	BreakerTimeout    time.Duration `env:"BACKEND_BREAKER_TIMEOUT" envDefault:"20s"`
	BreakerMinReqs    uint32        `env:"BACKEND_BREAKER_MIN_REQUESTS" envDefault:"5"`
	BreakerRatio      float64       `env:"BACKEND_BREAKER_FAILURE_RATIO" envDefault:"0.5"`

	// Storage
	StorageDriver string        `env:"STORAGE_DRIVER" envDefault:"file"`
	StorageDir    string        `env:"STORAGE_DIR" envDefault:".storefront"`
	StoragePrefix string        `env:"STORAGE_KEY_PREFIX" envDefault:"storefront:"`
	RedisHost     string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass     string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	RedisSlowCmd  time.Duration `env:"REDIS_SLOW_COMMAND_THRESHOLD" envDefault:"100ms"`

	// Kafka event forwarding
	KafkaEnabled  bool     `env:"KAFKA_FORWARD_ENABLED" envDefault:"false"`
	KafkaBrokers  []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaChannels []string `env:"KAFKA_FORWARD_CHANNELS" envSeparator:","`

	// Tracing
	TracingEnabled bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTLPEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	SampleRate     float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Session behaviour
	PriceCeiling    float64       `env:"FILTER_PRICE_CEILING" envDefault:"47000"`
	PollInterval    time.Duration `env:"PREFERENCES_POLL_INTERVAL" envDefault:"500ms"`
	DefaultLanguage string        `env:"DEFAULT_LANGUAGE" envDefault:"en"`
	SystemDarkTheme bool          `env:"SYSTEM_DARK_THEME" envDefault:"false"`
}

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadWithDotenv(cfg, ".env"); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.BackendURL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	switch c.StorageDriver {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("invalid storage driver: %q", c.StorageDriver)
	}
	if c.StorageDriver == "file" && c.StorageDir == "" {
		return fmt.Errorf("STORAGE_DIR is required for the file driver")
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %v", c.SampleRate)
	}
	if c.PollInterval <= 0 || c.PollInterval > time.Second {
		return fmt.Errorf("PREFERENCES_POLL_INTERVAL must be positive and at most 1s, got %s", c.PollInterval)
	}
	if c.PriceCeiling <= 0 {
		return fmt.Errorf("invalid price ceiling: %v", c.PriceCeiling)
	}
	switch c.DefaultLanguage {
	case "en", "ar":
	default:
		return fmt.Errorf("invalid default language: %q", c.DefaultLanguage)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when forwarding is enabled")
	}
	return nil
}
