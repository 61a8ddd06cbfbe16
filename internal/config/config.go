// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN; required for the server, migrate, and seed commands.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTSecret is the HMAC signing secret for access tokens. Rotating it invalidates
	// all outstanding tokens; sessions remain the server-side source of truth.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTTTL is the access token lifetime (e.g. "24h"). Cookie Max-Age is kept equal to this.
	JWTTTL string `mapstructure:"JWT_TTL"`
	// SessionRetention is how long inactive session rows are kept before the sweeper
	// deletes them (e.g. "24h"). Independent of JWTTTL.
	SessionRetention string `mapstructure:"SESSION_RETENTION"`
	// SessionSweepInterval is how often the session sweeper runs (e.g. "1h").
	SessionSweepInterval string `mapstructure:"SESSION_SWEEP_INTERVAL"`
	// CookieSecure sets the Secure flag on the auth cookie. Must be true in production.
	CookieSecure bool `mapstructure:"COOKIE_SECURE"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12. Changing it requires a
	// re-hash migration policy for stored credentials.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint (e.g. http://localhost:4317).
	// Empty disables OTel export (no-op providers).
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`

	// Telemetry (optional). When Kafka brokers are set, the HTTP server emits telemetry to Kafka.
	// TelemetryKafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// TelemetryKafkaTopic is the Kafka topic for telemetry events (default namhatta-telemetry).
	TelemetryKafkaTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the telemetry worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the telemetry worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("SESSION_RETENTION", "24h")
	v.SetDefault("SESSION_SWEEP_INTERVAL", "1h")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "namhatta-telemetry")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "namhatta-telemetry-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.Env == "production" {
		if cfg.JWTSecret == "" {
			return nil, errors.New("config: JWT_SECRET must be set when APP_ENV=production")
		}
		if !cfg.CookieSecure {
			return nil, errors.New("config: COOKIE_SECURE must be true when APP_ENV=production")
		}
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// TokenTTL parses JWTTTL as a time.Duration. Returns 24h if unset or invalid.
func (c *Config) TokenTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTTTL)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// Retention parses SessionRetention as a time.Duration. Returns 24h if unset or invalid.
func (c *Config) Retention() time.Duration {
	d, err := time.ParseDuration(c.SessionRetention)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// SweepInterval parses SessionSweepInterval as a time.Duration. Returns 1h if unset or invalid.
func (c *Config) SweepInterval() time.Duration {
	d, err := time.ParseDuration(c.SessionSweepInterval)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if telemetry is enabled (non-empty list) and to create the producer.
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil || c.TelemetryKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.TelemetryKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
