package config

import (
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/OlegEV/moysklad-autoproduction/pkg/config"
)

// Config holds all configuration for the autoproduction service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// MoySklad API
	Token          string `env:"MOYSKLAD_TOKEN"`
	BaseURL        string `env:"MOYSKLAD_BASE_URL" envDefault:"https://api.moysklad.ru/api/remap/1.2"`
	TimeoutSeconds int    `env:"MOYSKLAD_TIMEOUT_SECONDS" envDefault:"30"`
	CBEnabled      bool   `env:"MOYSKLAD_CB_ENABLED" envDefault:"false"`

	// Replenishment rules
	StoreName         string  `env:"STORE_NAME"`
	TechCardFieldName string  `env:"TECH_CARD_FIELD_NAME"`
	MinStockThreshold float64 `env:"MIN_STOCK_THRESHOLD" envDefault:"2.0"`
	TriggerEntity     string  `env:"TRIGGER_ENTITY" envDefault:"demand"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Values pasted from .env files sometimes carry surrounding quotes.
	cfg.Token = stripQuotes(cfg.Token)
	cfg.StoreName = stripQuotes(cfg.StoreName)
	cfg.TechCardFieldName = stripQuotes(cfg.TechCardFieldName)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Token == "" {
		return fmt.Errorf("MOYSKLAD_TOKEN must be set")
	}
	if c.StoreName == "" {
		return fmt.Errorf("STORE_NAME must be set")
	}
	if c.TechCardFieldName == "" {
		return fmt.Errorf("TECH_CARD_FIELD_NAME must be set")
	}
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.TimeoutSeconds < 1 {
		return fmt.Errorf("invalid MOYSKLAD_TIMEOUT_SECONDS: %d", c.TimeoutSeconds)
	}
	if c.MinStockThreshold < 0 {
		return fmt.Errorf("MIN_STOCK_THRESHOLD must not be negative: %g", c.MinStockThreshold)
	}
	switch c.TriggerEntity {
	case "demand", "customerorder":
	default:
		return fmt.Errorf("TRIGGER_ENTITY must be demand or customerorder, got %q", c.TriggerEntity)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS must be set when KAFKA_ENABLED is true")
	}
	return nil
}

// Timeout returns the MoySklad client timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
