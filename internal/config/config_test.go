package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

const validDatabaseID = "1a2b3c4d5e6f47a8b9c0d1e2f3a4b5c6"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("NOTION_API_KEY", "secret_abc")
	t.Setenv("NOTION_TRANSACTIONS_DATABASE_ID", validDatabaseID)
	t.Setenv("NOTION_CATEGORIES_DATABASE_ID", "1a2b3c4d-5e6f-47a8-b9c0-d1e2f3a4b5c6")
	t.Setenv("NOTION_ACCOUNTS_DATABASE_ID", validDatabaseID)
}

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if cfg.ServerPort != "3000" {
		t.Fatalf("expected default port 3000, got %q", cfg.ServerPort)
	}
	if cfg.AppEnv != "development" || cfg.IsProduction() {
		t.Fatalf("expected development mode, got %q", cfg.AppEnv)
	}
	if cfg.NotionTimeout().Seconds() != 60 {
		t.Fatalf("expected 60s timeout, got %s", cfg.NotionTimeout())
	}
	if cfg.UpstreamProbeSchedule != "@every 5m" {
		t.Fatalf("unexpected probe schedule %q", cfg.UpstreamProbeSchedule)
	}
	if got := cfg.AllowedOrigins(); len(got) != 1 || got[0] != "*" {
		t.Fatalf("expected wildcard origin, got %v", got)
	}
}

func TestLoadConfig_AcceptsPortAndNodeEnvAliases(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	setRequiredEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("NODE_ENV", "production")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Fatalf("expected PORT alias to apply, got %q", cfg.ServerPort)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected NODE_ENV alias to select production, got %q", cfg.AppEnv)
	}
}

func TestLoadConfig_PrimaryNameWinsOverAlias(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("PORT", "8080")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "9000" {
		t.Fatalf("expected SERVER_PORT to win, got %q", cfg.ServerPort)
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := &Config{
		ServerPort:                 "http",
		NotionAPIBaseURL:           "https://api.notion.com",
		NotionTimeoutSeconds:       60,
		NotionCategoriesDatabaseID: "short",
		NotionAccountsDatabaseID:   validDatabaseID,
		RabbitMQURL:                "redis://localhost",
		UpstreamProbeSchedule:      "whenever",
		LogLevel:                   "loud",
		LogFormat:                  "xml",
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{
		"NOTION_API_KEY is required",
		"NOTION_TRANSACTIONS_DATABASE_ID is required",
		"NOTION_CATEGORIES_DATABASE_ID must be 32 characters",
		"SERVER_PORT",
		"RABBITMQ_URL",
		"UPSTREAM_PROBE_SCHEDULE",
		"LOG_LEVEL",
		"LOG_FORMAT",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected error to mention %q, got %v", want, err)
		}
	}
	if strings.Contains(err.Error(), "NOTION_ACCOUNTS_DATABASE_ID") {
		t.Errorf("valid accounts id reported as invalid: %v", err)
	}
}

func TestAllowedOrigins_SplitsList(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " https://a.example , ,https://b.example"}
	got := cfg.AllowedOrigins()
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", got)
	}
}
