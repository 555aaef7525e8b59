package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Log       LogConfig       `koanf:"log"`
	Agents    AgentsConfig    `koanf:"agents"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Audit     AuditConfig     `koanf:"audit"`
	MCP       MCPConfig       `koanf:"mcp"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type AgentsConfig struct {
	// Dirs are scanned in order; later directories can shadow earlier names.
	Dirs []string `koanf:"dirs"`
	// Modes is the closed set of invocation modes this host recognizes.
	Modes []string `koanf:"modes"`
	// DefaultPermission applies when a document is silent about a capability.
	DefaultPermission string `koanf:"default_permission"` // allow, deny, ask
	Watch             bool   `koanf:"watch"`
	WatchIntervalMS   int    `koanf:"watch_interval_ms"`
}

type TelemetryConfig struct {
	Exporter     string `koanf:"exporter"` // stdout, otlp
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

type AuditConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"` // SQLite database file
}

type MCPConfig struct {
	Name    string `koanf:"name"`
	Version string `koanf:"version"`
}

// Load builds configuration from defaults, an optional YAML file, and
// ROSTER_-prefixed environment variables, in that order of precedence.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	k.Set("log.level", "info")
	k.Set("log.format", "text")
	k.Set("agents.dirs", []string{"agents"})
	k.Set("agents.modes", []string{"primary", "subagent", "all"})
	k.Set("agents.default_permission", "ask")
	k.Set("agents.watch", false)
	k.Set("agents.watch_interval_ms", 1000)
	k.Set("telemetry.exporter", "stdout")
	k.Set("audit.enabled", false)
	k.Set("audit.path", "roster-audit.db")
	k.Set("mcp.name", "roster")
	k.Set("mcp.version", "dev")

	// 1. Load from file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// 2. Load from ENV (ROSTER_LOG_LEVEL -> log.level)
	if err := k.Load(env.Provider("ROSTER_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "ROSTER_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
