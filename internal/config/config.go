package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Database DatabaseConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Whois    WhoisConfig
	Gateway  GatewayConfig
	Checkout CheckoutConfig
	LogLevel string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

type AuthConfig struct {
	APIKeys []string // Valid API keys for the internal lead endpoints
}

type DatabaseConfig struct {
	URL           string // Empty means in-memory repositories
	RunMigrations bool
}

type RedisConfig struct {
	URL             string
	AvailabilityTTL time.Duration
}

type RabbitMQConfig struct {
	URL          string
	LeadExchange string
}

type WhoisConfig struct {
	BaseURL string
	APIKey  string // Used only when no whoapi secret is stored
}

type GatewayConfig struct {
	BaseURL string
}

type CheckoutConfig struct {
	SuggestionDebounce time.Duration
	PromoDebounce      time.Duration
	SessionIdle        time.Duration
	SweepSchedule      string // cron spec for idle session expiry
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("READ_TIMEOUT", 15)
	v.SetDefault("WRITE_TIMEOUT", 15)
	v.SetDefault("SHUTDOWN_TIMEOUT", 30)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("INTERNAL_API_KEYS", "apitest")
	v.SetDefault("RUN_MIGRATIONS", false)
	v.SetDefault("AVAILABILITY_CACHE_TTL_SECONDS", 600)
	v.SetDefault("LEAD_EVENTS_EXCHANGE", "order.leads")
	v.SetDefault("WHOIS_API_URL", "https://whoisjson.com")
	v.SetDefault("PAYMENT_GATEWAY_URL", "http://localhost:8090")
	v.SetDefault("SUGGESTION_DEBOUNCE_MS", 450)
	v.SetDefault("PROMO_DEBOUNCE_MS", 450)
	v.SetDefault("SESSION_IDLE_MINUTES", 60)
	v.SetDefault("SESSION_SWEEP_SCHEDULE", "@every 5m")

	// PORT wins over SERVER_PORT so hosted platforms can inject it
	_ = v.BindEnv("PORT", "PORT", "SERVER_PORT")
	_ = v.BindEnv("DATABASE_URL")
	_ = v.BindEnv("REDIS_URL")
	_ = v.BindEnv("RABBITMQ_URL")
	_ = v.BindEnv("WHOIS_API_KEY")

	cfg := &Config{
		Server: ServerConfig{
			Port:            strings.TrimSpace(v.GetString("PORT")),
			Host:            v.GetString("HOST"),
			ReadTimeout:     v.GetInt("READ_TIMEOUT"),
			WriteTimeout:    v.GetInt("WRITE_TIMEOUT"),
			ShutdownTimeout: v.GetInt("SHUTDOWN_TIMEOUT"),
		},
		Auth: AuthConfig{
			APIKeys: splitList(v.GetString("INTERNAL_API_KEYS")),
		},
		Database: DatabaseConfig{
			URL:           strings.TrimSpace(v.GetString("DATABASE_URL")),
			RunMigrations: v.GetBool("RUN_MIGRATIONS"),
		},
		Redis: RedisConfig{
			URL:             strings.TrimSpace(v.GetString("REDIS_URL")),
			AvailabilityTTL: time.Duration(v.GetInt("AVAILABILITY_CACHE_TTL_SECONDS")) * time.Second,
		},
		RabbitMQ: RabbitMQConfig{
			URL:          strings.TrimSpace(v.GetString("RABBITMQ_URL")),
			LeadExchange: v.GetString("LEAD_EVENTS_EXCHANGE"),
		},
		Whois: WhoisConfig{
			BaseURL: strings.TrimSpace(v.GetString("WHOIS_API_URL")),
			APIKey:  strings.TrimSpace(v.GetString("WHOIS_API_KEY")),
		},
		Gateway: GatewayConfig{
			BaseURL: strings.TrimSpace(v.GetString("PAYMENT_GATEWAY_URL")),
		},
		Checkout: CheckoutConfig{
			SuggestionDebounce: time.Duration(v.GetInt("SUGGESTION_DEBOUNCE_MS")) * time.Millisecond,
			PromoDebounce:      time.Duration(v.GetInt("PROMO_DEBOUNCE_MS")) * time.Millisecond,
			SessionIdle:        time.Duration(v.GetInt("SESSION_IDLE_MINUTES")) * time.Minute,
			SweepSchedule:      strings.TrimSpace(v.GetString("SESSION_SWEEP_SCHEDULE")),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("at least one internal API key must be configured")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	if c.Checkout.SuggestionDebounce < 0 || c.Checkout.PromoDebounce < 0 {
		return fmt.Errorf("debounce delays must not be negative")
	}

	if c.Redis.AvailabilityTTL < 0 {
		return fmt.Errorf("AVAILABILITY_CACHE_TTL_SECONDS must not be negative")
	}

	if c.Checkout.SessionIdle <= 0 {
		return fmt.Errorf("SESSION_IDLE_MINUTES must be positive")
	}

	if c.Checkout.SweepSchedule == "" {
		return fmt.Errorf("SESSION_SWEEP_SCHEDULE is required")
	}

	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("PAYMENT_GATEWAY_URL is required")
	}

	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
