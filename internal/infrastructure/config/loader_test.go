package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadWritesDefaultOnFirstRun(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir) // keep the ruleset seed inside the test dir
	path := filepath.Join(dir, "config.yaml")

	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Error("default config file must be written on first run")
	}
	if cfg.Gateway.Endpoint != "https://openrouter.ai/api/v1/chat/completions" {
		t.Errorf("endpoint = %q", cfg.Gateway.Endpoint)
	}
	if cfg.Gateway.MaxAttempts != 3 || cfg.Gateway.TimeoutSeconds != 25 {
		t.Errorf("gateway settings = %+v", cfg.Gateway)
	}
	if cfg.Execution.TimeoutSeconds != 90 {
		t.Errorf("execution timeout = %d", cfg.Execution.TimeoutSeconds)
	}
	want := []string{
		"liquid/lfm-2.5-1.2b-thinking:free",
		"liquid/lfm-2.5-1.2b:free",
		"stepfun-ai/step-3.5-flash:free",
	}
	if diff := cmp.Diff(want, cfg.Models); diff != "" {
		t.Errorf("models mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadHydratesPartialConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	partial := "gateway:\n  timeout_seconds: 5\nmodels:\n  - custom/model\n" +
		"security:\n  rules_file: " + filepath.Join(dir, "ruleset.yaml") + "\n"
	if err := os.WriteFile(path, []byte(partial), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gateway.TimeoutSeconds != 5 {
		t.Errorf("explicit timeout overridden: %d", cfg.Gateway.TimeoutSeconds)
	}
	if cfg.Gateway.MaxAttempts != 3 {
		t.Errorf("missing max_attempts not hydrated: %d", cfg.Gateway.MaxAttempts)
	}
	if len(cfg.Models) != 1 || cfg.Models[0] != "custom/model" {
		t.Errorf("models = %v", cfg.Models)
	}
	// a ruleset seed lands next to the configured path
	if _, err := os.Stat(filepath.Join(dir, "ruleset.yaml")); err != nil {
		t.Error("ruleset seed not written")
	}
}

func TestLoadResolvesRelativeStatePaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "config.yaml")
	content := "security:\n  rules_file: custom-rules.yaml\naudit:\n  log_file: custom-audit.log\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	wantRules := filepath.Join(dir, ".jarvis", "custom-rules.yaml")
	if cfg.Security.RulesFile != wantRules {
		t.Errorf("rules_file = %q, want %q", cfg.Security.RulesFile, wantRules)
	}
	wantAudit := filepath.Join(dir, ".jarvis", "custom-audit.log")
	if cfg.Audit.LogFile != wantAudit {
		t.Errorf("log_file = %q, want %q", cfg.Audit.LogFile, wantAudit)
	}
}

func TestLoadHonorsEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alt.yaml")
	content := "execution:\n  shell: /bin/bash\nsecurity:\n  rules_file: " +
		filepath.Join(dir, "ruleset.yaml") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JARVIS_CONFIG", path)

	cfg, err := NewFileLoader("").Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Execution.Shell != "/bin/bash" {
		t.Errorf("shell = %q, env override ignored", cfg.Execution.Shell)
	}
}
