package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_PATH", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LLM_ENDPOINT", "")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("LLM_MODELS", "")
	t.Setenv("SENTRY_DSN", "")
	t.Setenv("ENV", "")
	t.Setenv("OUTPUT_DIR", "")
	t.Setenv("RATE_LIMIT_RPS", "")
	t.Setenv("RATE_LIMIT_BURST", "")
	t.Setenv("RATE_LIMIT_TTL", "")
	t.Setenv("SHUTDOWN_GRACE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.DBPath != defaultDBPath {
		t.Errorf("expected default DB path %q, got %q", defaultDBPath, cfg.DBPath)
	}

	if cfg.ServerPort != defaultServerPort {
		t.Errorf("expected default server port %d, got %d", defaultServerPort, cfg.ServerPort)
	}

	if cfg.LogLevel != defaultLogLevel {
		t.Errorf("expected default log level %q, got %q", defaultLogLevel, cfg.LogLevel)
	}

	if cfg.Environment != defaultEnvironment {
		t.Errorf("expected default environment %q, got %q", defaultEnvironment, cfg.Environment)
	}

	if cfg.OutputDir != defaultOutputDir {
		t.Errorf("expected default output dir %q, got %q", defaultOutputDir, cfg.OutputDir)
	}

	if cfg.ShutdownGrace != defaultShutdownGrace {
		t.Errorf("expected shutdown grace %s, got %s", defaultShutdownGrace, cfg.ShutdownGrace)
	}

	if cfg.RateLimitRPS != defaultRateLimitRPS {
		t.Errorf("expected rate limit rps %v, got %v", defaultRateLimitRPS, cfg.RateLimitRPS)
	}

	if cfg.RateLimitBurst != defaultRateLimitBurst {
		t.Errorf("expected rate limit burst %d, got %d", defaultRateLimitBurst, cfg.RateLimitBurst)
	}

	if cfg.LLMModels != nil {
		t.Errorf("expected nil LLMModels, got %v", cfg.LLMModels)
	}

	if cfg.LLMEndpoint != "" {
		t.Errorf("expected empty LLM endpoint, got %q", cfg.LLMEndpoint)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/test.db")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LLM_ENDPOINT", "https://example.test/v1")
	t.Setenv("LLM_API_KEY", "secret-key")
	t.Setenv("LLM_MODELS", `["gpt-test-1","gpt-test-2"]`)
	t.Setenv("ENV", "production")
	t.Setenv("OUTPUT_DIR", "/tmp/out")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "4")
	t.Setenv("RATE_LIMIT_TTL", "90s")
	t.Setenv("SHUTDOWN_GRACE", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("expected DB path override, got %q", cfg.DBPath)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.ServerPort)
	}

	if cfg.LLMAPIKey != "secret-key" {
		t.Errorf("expected API key override, got %q", cfg.LLMAPIKey)
	}

	if len(cfg.LLMModels) != 2 || cfg.LLMModels[0] != "gpt-test-1" {
		t.Errorf("expected parsed models, got %v", cfg.LLMModels)
	}

	if cfg.OutputDir != "/tmp/out" {
		t.Errorf("expected output dir override, got %q", cfg.OutputDir)
	}

	if cfg.RateLimitRPS != 2.5 {
		t.Errorf("expected rate limit rps 2.5, got %v", cfg.RateLimitRPS)
	}

	if cfg.RateLimitBurst != 4 {
		t.Errorf("expected rate limit burst 4, got %d", cfg.RateLimitBurst)
	}

	if cfg.RateLimitTTL != 90*time.Second {
		t.Errorf("expected rate limit ttl 90s, got %s", cfg.RateLimitTTL)
	}

	if cfg.ShutdownGrace != 3*time.Second {
		t.Errorf("expected shutdown grace 3s, got %s", cfg.ShutdownGrace)
	}
}

func TestLoadRejectsInvalidRateLimitTTL(t *testing.T) {
	t.Setenv("RATE_LIMIT_TTL", "soon")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid RATE_LIMIT_TTL")
	} else if !strings.Contains(err.Error(), "RATE_LIMIT_TTL") {
		t.Fatalf("expected RATE_LIMIT_TTL in error, got %v", err)
	}
}

func TestLoadAcceptsModelsObject(t *testing.T) {
	t.Setenv("LLM_MODELS", `{"models":["planner-model"]}`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if len(cfg.LLMModels) != 1 || cfg.LLMModels[0] != "planner-model" {
		t.Errorf("expected models object to parse, got %v", cfg.LLMModels)
	}
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid port")
	} else if !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Fatalf("expected SERVER_PORT in error, got %v", err)
	}
}

func TestLoadRejectsInvalidModelsJSON(t *testing.T) {
	t.Setenv("LLM_MODELS", "{not json")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid LLM_MODELS")
	}
}
