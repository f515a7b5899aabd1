package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" || cfg.OpenAI.MaxTokens != 1200 || cfg.OpenAI.ReadTimeout != 180*time.Second {
		t.Fatalf("openai=%+v", cfg.OpenAI)
	}
	if cfg.DB.Driver != "postgres" || cfg.ArtifactsDir != "artifacts" || cfg.Port != "8080" {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.yaml")
	yml := `
port: "9090"
openai:
  model: gpt-4.1-mini
  max_tokens: 800
  read_timeout: 60s
db:
  driver: sqlite
  dsn: plans.db
redis:
  addr: localhost:6379
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(configPathEnv, path)
	t.Setenv("OPENAI_MAX_TOKENS", "1500")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("PLAN_CACHE_TTL_SECONDS", "30")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "9090" || cfg.OpenAI.Model != "gpt-4.1-mini" || cfg.OpenAI.ReadTimeout != time.Minute {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.OpenAI.MaxTokens != 1500 || cfg.OpenAI.APIKey != "sk-env" || cfg.Redis.PlanTTL != 30*time.Second {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.DB.Driver != "sqlite" || cfg.DB.DSN != "plans.db" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for explicit missing file")
	}

	t.Setenv(configPathEnv, "")
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "mongo")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
