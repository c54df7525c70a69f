package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config keeps runtime settings for the server.
type Config struct {
	Addr             string        `yaml:"addr"`
	DatabaseURL      string        `yaml:"database_url"`
	Environment      string        `yaml:"environment"`
	JWTSecret        string        `yaml:"jwt_secret"`
	JWTRefreshSecret string        `yaml:"jwt_refresh_secret"`
	AccessTokenTTL   time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL  time.Duration `yaml:"refresh_token_ttl"`
	TelegramToken    string        `yaml:"telegram_token"`
	LogFile          string        `yaml:"log_file"`
	Debug            bool          `yaml:"debug"`
}

// Production reports whether stack traces should be withheld from error
// responses.
func (c Config) Production() bool {
	return c.Environment == "production"
}

// Load reads configuration from an optional YAML file (TASKBOARD_CONFIG)
// and environment variables, env taking precedence over the file.
func Load() (Config, error) {
	cfg := Config{
		Addr:            ":3000",
		DatabaseURL:     "taskboard.db",
		Environment:     "development",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}

	if path := strings.TrimSpace(os.Getenv("TASKBOARD_CONFIG")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.JWTRefreshSecret == "" {
		return cfg, fmt.Errorf("JWT_REFRESH_SECRET is required")
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("ADDR")); v != "" {
		cfg.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("ENVIRONMENT")); v != "" {
		cfg.Environment = v
	}
	if v := strings.TrimSpace(os.Getenv("JWT_SECRET")); v != "" {
		cfg.JWTSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("JWT_REFRESH_SECRET")); v != "" {
		cfg.JWTRefreshSecret = v
	}
	if v := strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")); v != "" {
		cfg.TelegramToken = v
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FILE")); v != "" {
		cfg.LogFile = v
	}
	if v := strings.TrimSpace(os.Getenv("DEBUG")); v == "1" || v == "true" {
		cfg.Debug = true
	}
	if v := strings.TrimSpace(os.Getenv("ACCESS_TOKEN_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.AccessTokenTTL = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("REFRESH_TOKEN_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RefreshTokenTTL = d
		}
	}
}
