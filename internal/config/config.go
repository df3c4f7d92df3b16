// Package config loads all runtime settings from the environment, with
// an optional config.json for local development.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const minSecretLen = 32

type Config struct {
	Environment string // "development" or "production"

	DatabaseURL string

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	TokenSecret    string
	TokenTTL       time.Duration
	PasswordPepper string

	HTTPAddress    string
	AllowedOrigins []string
	LogLevel       string

	RateLimitWindow time.Duration
	RateLimitMax    int

	// Pre-auth throttle for /register and /login.
	IPRateLimitRPS   int
	IPRateLimitBurst int

	HashWorkers int64
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	for _, key := range []string{
		"ENVIRONMENT", "DATABASE_URL",
		"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB",
		"TOKEN_SECRET", "TOKEN_TTL", "PASSWORD_PEPPER",
		"HTTP_ADDRESS", "ALLOWED_ORIGINS", "LOG_LEVEL",
		"RATE_LIMIT_WINDOW", "RATE_LIMIT_MAX",
		"IP_RATE_LIMIT_RPS", "IP_RATE_LIMIT_BURST",
		"HASH_WORKERS",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("HTTP_ADDRESS", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("RATE_LIMIT_WINDOW", "60s")
	v.SetDefault("RATE_LIMIT_MAX", 100)
	v.SetDefault("IP_RATE_LIMIT_RPS", 5)
	v.SetDefault("IP_RATE_LIMIT_BURST", 10)
	v.SetDefault("HASH_WORKERS", 4)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Environment:      v.GetString("ENVIRONMENT"),
		DatabaseURL:      v.GetString("DATABASE_URL"),
		RedisAddress:     v.GetString("REDIS_ADDRESS"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
		TokenSecret:      v.GetString("TOKEN_SECRET"),
		TokenTTL:         v.GetDuration("TOKEN_TTL"),
		PasswordPepper:   v.GetString("PASSWORD_PEPPER"),
		HTTPAddress:      v.GetString("HTTP_ADDRESS"),
		AllowedOrigins:   v.GetStringSlice("ALLOWED_ORIGINS"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		RateLimitWindow:  v.GetDuration("RATE_LIMIT_WINDOW"),
		RateLimitMax:     v.GetInt("RATE_LIMIT_MAX"),
		IPRateLimitRPS:   v.GetInt("IP_RATE_LIMIT_RPS"),
		IPRateLimitBurst: v.GetInt("IP_RATE_LIMIT_BURST"),
		HashWorkers:      v.GetInt64("HASH_WORKERS"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.TokenSecret == "" {
		return nil, fmt.Errorf("TOKEN_SECRET is required")
	}
	// A guessable signing secret voids every token ever issued.
	if cfg.Environment == "production" && len(cfg.TokenSecret) < minSecretLen {
		return nil, fmt.Errorf("TOKEN_SECRET must be at least %d characters in production", minSecretLen)
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL must be positive")
	}
	if cfg.RateLimitWindow <= 0 || cfg.RateLimitMax <= 0 {
		return nil, fmt.Errorf("rate limit window and max must be positive")
	}

	return cfg, nil
}
