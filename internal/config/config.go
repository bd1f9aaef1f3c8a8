package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultAdminPassword = "admin123"
)

type Config struct {
	AppEnv              string        `mapstructure:"APP_ENV"`
	Port                string        `mapstructure:"PORT"`
	DatabaseURL         string        `mapstructure:"DATABASE_URL"`
	LogLevel            string        `mapstructure:"LOG_LEVEL"`
	JWTSecret           string        `mapstructure:"JWT_SECRET"`
	JWTTTL              time.Duration `mapstructure:"JWT_TTL"`
	CORSAllowedOrigins  []string      `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RateLimitPerMin     int           `mapstructure:"RATE_LIMIT_PER_MIN"`
	RateLimitBurst      int           `mapstructure:"RATE_LIMIT_BURST"`
	RedisAddr           string        `mapstructure:"REDIS_ADDR"`
	RedisPassword       string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB             int           `mapstructure:"REDIS_DB"`
	EventsChannel       string        `mapstructure:"EVENTS_CHANNEL"`
	AdminEmail          string        `mapstructure:"ADMIN_EMAIL"`
	AdminPassword       string        `mapstructure:"ADMIN_PASSWORD"`
	AdminProviderName   string        `mapstructure:"ADMIN_PROVIDER_NAME"`
	ShutdownGracePeriod time.Duration `mapstructure:"SHUTDOWN_GRACE_PERIOD"`
}

var defaults = map[string]any{
	"APP_ENV":               "dev",
	"PORT":                  "8080",
	"DATABASE_URL":          "shecare.db",
	"LOG_LEVEL":             "info",
	"JWT_SECRET":            defaultJWTSecret,
	"JWT_TTL":               "24h",
	"CORS_ALLOWED_ORIGINS":  "http://localhost:3000,http://127.0.0.1:3000",
	"RATE_LIMIT_PER_MIN":    30,
	"RATE_LIMIT_BURST":      10,
	"REDIS_ADDR":            "",
	"REDIS_PASSWORD":        "",
	"REDIS_DB":              0,
	"EVENTS_CHANNEL":        "shecare:bookings",
	"ADMIN_EMAIL":           "",
	"ADMIN_PASSWORD":        "",
	"ADMIN_PROVIDER_NAME":   "",
	"SHUTDOWN_GRACE_PERIOD": "10s",
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.JWTSecret = strings.TrimSpace(cfg.JWTSecret)
	cfg.AdminEmail = strings.TrimSpace(cfg.AdminEmail)
	cfg.AdminProviderName = strings.TrimSpace(cfg.AdminProviderName)
	cfg.CORSAllowedOrigins = cleanList(cfg.CORSAllowedOrigins)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

// HasBootstrapAdmin reports whether an admin account should be ensured at startup.
func (c *Config) HasBootstrapAdmin() bool {
	return c.AdminEmail != "" && c.AdminPassword != "" && c.AdminProviderName != ""
}

func validateConfig(cfg *Config) error {
	if cfg.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.RateLimitPerMin <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MIN must be > 0")
	}
	if cfg.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be > 0")
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return fmt.Errorf("SHUTDOWN_GRACE_PERIOD must be > 0")
	}
	if cfg.EventsChannel == "" {
		return fmt.Errorf("EVENTS_CHANNEL must not be empty")
	}

	partial := cfg.AdminEmail != "" || cfg.AdminPassword != "" || cfg.AdminProviderName != ""
	if partial && !cfg.HasBootstrapAdmin() {
		return fmt.Errorf("ADMIN_EMAIL, ADMIN_PASSWORD and ADMIN_PROVIDER_NAME must be set together")
	}

	if isProdLike(cfg.AppEnv) {
		if cfg.JWTSecret == defaultJWTSecret {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.AdminPassword == defaultAdminPassword {
			return fmt.Errorf("in prod/release ADMIN_PASSWORD must not be the demo password")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		// viper leaves a single comma-joined element when the value came from env
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
