package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ExpandsEnvAndDefaults(t *testing.T) {
	t.Setenv("TEST_ANTHROPIC_KEY", "sk-ant-test")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
anthropic:
  api_key: ${TEST_ANTHROPIC_KEY}
pushover:
  enabled: true
  token: tok
  user_key: usr
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Anthropic.APIKey != "sk-ant-test" {
		t.Errorf("api key not expanded: %q", cfg.Anthropic.APIKey)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("server addr default: %q", cfg.Server.Addr)
	}
	if cfg.Provider.LLM != "claude" {
		t.Errorf("provider default: %q", cfg.Provider.LLM)
	}
	if cfg.Conversation.MaxTurns != 10 {
		t.Errorf("max turns default: %d", cfg.Conversation.MaxTurns)
	}
	if cfg.Anthropic.Model != "claude-sonnet-4-20250514" {
		t.Errorf("model default: %q", cfg.Anthropic.Model)
	}
	if !cfg.Pushover.Enabled || cfg.Pushover.Token != "tok" {
		t.Errorf("pushover: %+v", cfg.Pushover)
	}
}

func TestLoad_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  addr: ":9090"
provider:
  llm: gemini
conversation:
  max_turns: 4
log:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr != ":9090" || cfg.Provider.LLM != "gemini" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Conversation.MaxTurns != 4 {
		t.Errorf("max turns: %d", cfg.Conversation.MaxTurns)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("log: %+v", cfg.Log)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
