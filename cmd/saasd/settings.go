package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	goSaaS "github.com/MrEthical07/goSaaS"
)

// Settings is the process environment.
type Settings struct {
	AuthSecret          string `mapstructure:"AUTH_SECRET"`
	PostgresURL         string `mapstructure:"POSTGRES_URL"`
	RedisURL            string `mapstructure:"REDIS_URL"`
	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	BaseURL             string `mapstructure:"BASE_URL"`
	HTTPAddr            string `mapstructure:"HTTP_ADDR"`
	CORSOrigins         string `mapstructure:"CORS_ORIGINS"`
	LogLevel            string `mapstructure:"LOG_LEVEL"`
	LogPretty           bool   `mapstructure:"LOG_PRETTY"`
	Production          bool   `mapstructure:"PRODUCTION"`
	SlidingSessions     bool   `mapstructure:"SLIDING_SESSIONS"`
	AuditEnabled        bool   `mapstructure:"AUDIT_ENABLED"`
}

var settingKeys = []string{
	"AUTH_SECRET", "POSTGRES_URL", "REDIS_URL", "STRIPE_SECRET_KEY", "STRIPE_WEBHOOK_SECRET",
	"BASE_URL", "HTTP_ADDR", "CORS_ORIGINS", "LOG_LEVEL", "LOG_PRETTY", "PRODUCTION",
	"SLIDING_SESSIONS", "AUDIT_ENABLED",
}

// LoadSettings reads the environment through viper.
func LoadSettings() (*Settings, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("BASE_URL", "http://localhost:3000")
	v.SetDefault("HTTP_ADDR", ":3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("PRODUCTION", false)
	v.SetDefault("SLIDING_SESSIONS", false)
	v.SetDefault("AUDIT_ENABLED", false)
	// Unmarshal only sees keys viper knows about; AutomaticEnv alone does not register them.
	for _, k := range settingKeys {
		if err := v.BindEnv(k); err != nil {
			return nil, err
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return &s, nil
}

// EngineConfig maps the environment onto the engine configuration.
func (s *Settings) EngineConfig() goSaaS.Config {
	cfg := goSaaS.DefaultConfig()
	cfg.ProductionMode = s.Production
	cfg.Session.Secret = []byte(s.AuthSecret)
	cfg.Session.SecureCookie = strings.HasPrefix(s.BaseURL, "https://") || s.Production
	cfg.Session.SlidingRenewal = s.SlidingSessions
	cfg.Audit.Enabled = s.AuditEnabled
	return cfg
}

// Origins splits CORS_ORIGINS on commas.
func (s *Settings) Origins() []string {
	var out []string
	for _, o := range strings.Split(s.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Logger builds the process logger: console output when LOG_PRETTY is set, JSON otherwise.
func (s *Settings) Logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if s.LogPretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}
