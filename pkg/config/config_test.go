package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Log.Level)
	}
	if len(cfg.Agents.Dirs) != 1 || cfg.Agents.Dirs[0] != "agents" {
		t.Errorf("expected default agents dir, got %v", cfg.Agents.Dirs)
	}
	if cfg.Agents.DefaultPermission != "ask" {
		t.Errorf("expected default permission ask, got %s", cfg.Agents.DefaultPermission)
	}
	if len(cfg.Agents.Modes) != 3 {
		t.Errorf("expected default mode set, got %v", cfg.Agents.Modes)
	}
	if cfg.Telemetry.Exporter != "stdout" {
		t.Errorf("expected stdout exporter, got %s", cfg.Telemetry.Exporter)
	}
	if cfg.Audit.Enabled {
		t.Errorf("audit should be off by default")
	}
}

func TestLoadEnv(t *testing.T) {
	os.Setenv("ROSTER_LOG_LEVEL", "debug")
	defer os.Unsetenv("ROSTER_LOG_LEVEL")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug from env, got %s", cfg.Log.Level)
	}
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()

	content := `
agents:
  dirs:
    - /etc/roster/agents
    - ./local-agents
  modes:
    - primary
    - subagent
  default_permission: deny
  watch: true
log:
  level: warn
  format: json
audit:
  enabled: true
  path: /var/lib/roster/audit.db
`
	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Agents.Dirs) != 2 {
		t.Errorf("expected 2 agent dirs, got %v", cfg.Agents.Dirs)
	}
	if cfg.Agents.DefaultPermission != "deny" {
		t.Errorf("expected deny, got %s", cfg.Agents.DefaultPermission)
	}
	if !cfg.Agents.Watch {
		t.Errorf("expected watch enabled")
	}
	if cfg.Log.Format != "json" {
		t.Errorf("expected json log format, got %s", cfg.Log.Format)
	}
	if !cfg.Audit.Enabled || cfg.Audit.Path != "/var/lib/roster/audit.db" {
		t.Errorf("unexpected audit config: %+v", cfg.Audit)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
