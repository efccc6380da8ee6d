/**
 * @description
 * This file handles the configuration management for the budget API.
 * It uses the Viper library to read settings from environment variables or a .env file.
 *
 * @dependencies
 * - github.com/spf13/viper: For configuration management.
 */
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	ServerPort                   string `mapstructure:"SERVER_PORT"`
	AppEnv                       string `mapstructure:"APP_ENV"`
	NotionAPIKey                 string `mapstructure:"NOTION_API_KEY"`
	NotionTransactionsDatabaseID string `mapstructure:"NOTION_TRANSACTIONS_DATABASE_ID"`
	NotionCategoriesDatabaseID   string `mapstructure:"NOTION_CATEGORIES_DATABASE_ID"`
	NotionAccountsDatabaseID     string `mapstructure:"NOTION_ACCOUNTS_DATABASE_ID"`
	NotionAPIBaseURL             string `mapstructure:"NOTION_API_BASE_URL"`
	NotionVersion                string `mapstructure:"NOTION_VERSION"`
	NotionTimeoutSeconds         int    `mapstructure:"NOTION_TIMEOUT_SECONDS"`
	RabbitMQURL                  string `mapstructure:"RABBITMQ_URL"`
	RabbitMQExchange             string `mapstructure:"RABBITMQ_EXCHANGE"`
	CORSAllowedOrigins           string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	UpstreamProbeSchedule        string `mapstructure:"UPSTREAM_PROBE_SCHEDULE"`
	LogLevel                     string `mapstructure:"LOG_LEVEL"`
	LogFormat                    string `mapstructure:"LOG_FORMAT"`
}

// LoadConfig reads configuration from file or environment variables. It does
// not validate; call Validate before serving.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "3000")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("NOTION_API_BASE_URL", "https://api.notion.com")
	viper.SetDefault("NOTION_VERSION", "2022-06-28")
	viper.SetDefault("NOTION_TIMEOUT_SECONDS", 60)
	viper.SetDefault("RABBITMQ_EXCHANGE", "budget_events")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("UPSTREAM_PROBE_SCHEDULE", "@every 5m")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")

	// Bind envs explicitly so containers pick them up reliably. PORT and
	// NODE_ENV are accepted for hosts that set those names.
	_ = viper.BindEnv("SERVER_PORT", "SERVER_PORT", "PORT")
	_ = viper.BindEnv("APP_ENV", "APP_ENV", "NODE_ENV")
	_ = viper.BindEnv("NOTION_API_KEY")
	_ = viper.BindEnv("NOTION_TRANSACTIONS_DATABASE_ID")
	_ = viper.BindEnv("NOTION_CATEGORIES_DATABASE_ID")
	_ = viper.BindEnv("NOTION_ACCOUNTS_DATABASE_ID")
	_ = viper.BindEnv("NOTION_API_BASE_URL")
	_ = viper.BindEnv("NOTION_VERSION")
	_ = viper.BindEnv("NOTION_TIMEOUT_SECONDS")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("RABBITMQ_EXCHANGE")
	_ = viper.BindEnv("CORS_ALLOWED_ORIGINS")
	_ = viper.BindEnv("UPSTREAM_PROBE_SCHEDULE")
	_ = viper.BindEnv("LOG_LEVEL")
	_ = viper.BindEnv("LOG_FORMAT")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.UpstreamProbeSchedule = strings.TrimSpace(config.UpstreamProbeSchedule)
	return &config, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.NotionAPIKey) == "" {
		errs = append(errs, errors.New("NOTION_API_KEY is required"))
	}
	for _, db := range []struct{ key, value string }{
		{"NOTION_TRANSACTIONS_DATABASE_ID", c.NotionTransactionsDatabaseID},
		{"NOTION_CATEGORIES_DATABASE_ID", c.NotionCategoriesDatabaseID},
		{"NOTION_ACCOUNTS_DATABASE_ID", c.NotionAccountsDatabaseID},
	} {
		switch {
		case strings.TrimSpace(db.value) == "":
			errs = append(errs, fmt.Errorf("%s is required", db.key))
		case len(strings.ReplaceAll(db.value, "-", "")) != 32:
			errs = append(errs, fmt.Errorf("%s must be 32 characters without hyphens, got %q", db.key, db.value))
		}
	}

	if port, err := strconv.Atoi(c.ServerPort); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT must be a TCP port, got %q", c.ServerPort))
	}
	if c.NotionTimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("NOTION_TIMEOUT_SECONDS must be positive, got %d", c.NotionTimeoutSeconds))
	}
	if u, err := url.Parse(c.NotionAPIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("NOTION_API_BASE_URL must be an absolute URL, got %q", c.NotionAPIBaseURL))
	}

	if raw := strings.Trim(strings.TrimSpace(c.RabbitMQURL), "\"'"); raw != "" {
		if u, err := url.Parse(raw); err != nil || (u.Scheme != "amqp" && u.Scheme != "amqps") {
			errs = append(errs, errors.New("RABBITMQ_URL must use the amqp:// or amqps:// scheme"))
		}
	}
	if c.UpstreamProbeSchedule != "" {
		if _, err := cron.ParseStandard(c.UpstreamProbeSchedule); err != nil {
			errs = append(errs, fmt.Errorf("UPSTREAM_PROBE_SCHEDULE is invalid: %w", err))
		}
	}

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the service runs in production mode, which
// hides error detail from responses.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// NotionTimeout is the per-request deadline for Notion calls.
func (c *Config) NotionTimeout() time.Duration {
	return time.Duration(c.NotionTimeoutSeconds) * time.Second
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// ParseLogLevel maps LOG_LEVEL onto a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", level)
	}
}
