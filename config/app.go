package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"hotel-pms/utils"

	"github.com/BurntSushi/toml"
)

type ServerConfig struct {
	Port            string   `toml:"port"`
	CorsOrigins     []string `toml:"cors_origins"`
	ShutdownTimeout int      `toml:"shutdown_timeout_seconds"`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	TTLHours  int    `toml:"ttl_hours"`
}

type BillingConfig struct {
	RemainingAlertMinutes int `toml:"remaining_alert_minutes"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

type AppConfig struct {
	Server  ServerConfig  `toml:"server"`
	Auth    AuthConfig    `toml:"auth"`
	Billing BillingConfig `toml:"billing"`
	Metrics MetricsConfig `toml:"metrics"`
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Server:  ServerConfig{Port: "8080", ShutdownTimeout: 15},
		Auth:    AuthConfig{TTLHours: 12},
		Billing: BillingConfig{RemainingAlertMinutes: 30},
		Metrics: MetricsConfig{Enabled: true, ServiceName: "hotel-pms", Path: "/metrics"},
	}
}

// LoadAppConfig reads the optional TOML file named by PMS_CONFIG_FILE
// (default config.toml) and then applies environment overrides. A missing
// file is not an error.
func LoadAppConfig() (AppConfig, error) {
	cfg := defaultAppConfig()
	path := utils.EnvOrDefault("PMS_CONFIG_FILE", "config.toml")
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}

	cfg.Server.Port = utils.EnvOrDefault("PORT", cfg.Server.Port)
	if raw := utils.EnvOrDefault("CORS_ORIGINS", ""); raw != "" {
		cfg.Server.CorsOrigins = splitList(raw)
	}
	cfg.Auth.JWTSecret = utils.EnvOrDefault("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.TTLHours = utils.EnvInt("JWT_TTL_HOURS", cfg.Auth.TTLHours)
	cfg.Billing.RemainingAlertMinutes = utils.EnvInt("REMAINING_ALERT_MINUTES", cfg.Billing.RemainingAlertMinutes)
	cfg.Metrics.Enabled = utils.EnvBool("METRICS_ENABLED", cfg.Metrics.Enabled)

	if cfg.Auth.JWTSecret == "" {
		return cfg, errors.New("JWT_SECRET (or auth.jwt_secret) is required")
	}
	if cfg.Auth.TTLHours <= 0 {
		cfg.Auth.TTLHours = 12
	}
	if cfg.Billing.RemainingAlertMinutes <= 0 {
		cfg.Billing.RemainingAlertMinutes = 30
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	return cfg, nil
}

func (c AppConfig) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TTLHours) * time.Hour
}

func (c AppConfig) ShutdownTimeout() time.Duration {
	if c.Server.ShutdownTimeout <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.Server.ShutdownTimeout) * time.Second
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
