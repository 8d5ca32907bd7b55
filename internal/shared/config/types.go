// Package config defines the configuration structures shared across layers.
package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// BillingConfig configures the external billing provider integration.
type BillingConfig struct {
	// WebhookSecret is the shared secret used to verify webhook signatures.
	WebhookSecret string `mapstructure:"webhook_secret"`
	// EventDedupeTTLHours controls how long processed event ids are retained.
	EventDedupeTTLHours int `mapstructure:"event_dedupe_ttl_hours"`
	// RequestTimeoutSeconds bounds calls to the billing provider.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds"`
}

func (b *BillingConfig) DedupeTTL() time.Duration {
	if b.EventDedupeTTLHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(b.EventDedupeTTLHours) * time.Hour
}

func (b *BillingConfig) RequestTimeout() time.Duration {
	if b.RequestTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(b.RequestTimeoutSeconds) * time.Second
}

// GovernanceConfig configures the entitlement and reconciliation behavior.
type GovernanceConfig struct {
	// ReconcileIntervalMinutes is the period of the reconciliation sweep.
	ReconcileIntervalMinutes int `mapstructure:"reconcile_interval_minutes"`
	// TrialWarningDays is the window before trial end that triggers a
	// trial_ending notification.
	TrialWarningDays int `mapstructure:"trial_warning_days"`
	// Timezone is the business timezone used for daily quota boundaries.
	Timezone string `mapstructure:"timezone"`
}

func (g *GovernanceConfig) ReconcileInterval() time.Duration {
	if g.ReconcileIntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(g.ReconcileIntervalMinutes) * time.Minute
}

func (g *GovernanceConfig) WarningWindow() time.Duration {
	days := g.TrialWarningDays
	if days <= 0 {
		days = 3
	}
	return time.Duration(days) * 24 * time.Hour
}
