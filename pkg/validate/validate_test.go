package validate

import (
	"strings"
	"testing"

	"github.com/rosterkit/roster/pkg/agentdef"
)

func fieldSet(issues []Issue) map[string]bool {
	out := make(map[string]bool, len(issues))
	for _, i := range issues {
		out[i.Field] = true
	}
	return out
}

func TestDefinitionClean(t *testing.T) {
	temp := 0.3
	def := agentdef.Definition{
		Name:        "architecture-guardian",
		Description: "Keeps module boundaries intact.",
		Mode:        "subagent",
		Temperature: &temp,
		Permissions: map[string]agentdef.Permission{
			"read": agentdef.PermissionAllow,
			"bash": agentdef.PermissionAsk,
		},
	}
	if issues := Definition(def, Options{}); len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestMissingDescription(t *testing.T) {
	def := agentdef.Definition{Name: "quiet-agent"}
	issues := Definition(def, Options{})
	if !fieldSet(issues)["description"] {
		t.Fatalf("expected description issue, got %v", issues)
	}
}

func TestUnrecognizedMode(t *testing.T) {
	def := agentdef.Definition{
		Name:        "reviewer",
		Description: "Reviews things.",
		Mode:        "daemon",
	}
	issues := Definition(def, Options{})
	if !fieldSet(issues)["mode"] {
		t.Fatalf("expected mode issue, got %v", issues)
	}

	// The mode set belongs to the host, not to this package.
	issues = Definition(def, Options{Modes: []string{"daemon"}})
	if fieldSet(issues)["mode"] {
		t.Fatalf("host-recognized mode flagged: %v", issues)
	}
}

func TestTemperatureRange(t *testing.T) {
	for _, tt := range []struct {
		temp float64
		want bool
	}{
		{0.0, false},
		{1.0, false},
		{1.5, true},
		{-0.1, true},
	} {
		temp := tt.temp
		def := agentdef.Definition{
			Name:        "dialed-agent",
			Description: "Has opinions about sampling.",
			Temperature: &temp,
		}
		got := fieldSet(Definition(def, Options{}))["temperature"]
		if got != tt.want {
			t.Errorf("temperature %g: issue=%v, want %v", tt.temp, got, tt.want)
		}
	}
}

func TestPermissionTriState(t *testing.T) {
	def := agentdef.Definition{
		Name:        "gatekeeper",
		Description: "Guards the tools.",
		Permissions: map[string]agentdef.Permission{
			"read":  agentdef.PermissionAllow,
			"bash":  "maybe",
			"fetch": agentdef.PermissionAsk,
		},
	}
	issues := Definition(def, Options{})
	if len(issues) != 1 {
		t.Fatalf("expected exactly one issue, got %v", issues)
	}
	if issues[0].Field != "permissions.bash" || issues[0].Value != "maybe" {
		t.Fatalf("unexpected issue: %+v", issues[0])
	}
}

func TestNameFormat(t *testing.T) {
	def := agentdef.Definition{
		Name:        "Security Reviewer",
		Description: "Capitalized and spaced.",
	}
	issues := Definition(def, Options{})
	if !fieldSet(issues)["name"] {
		t.Fatalf("expected name format issue, got %v", issues)
	}
}

func TestDescriptionLength(t *testing.T) {
	def := agentdef.Definition{
		Name:        "verbose-agent",
		Description: strings.Repeat("x", 1025),
	}
	issues := Definition(def, Options{})
	if !fieldSet(issues)["description"] {
		t.Fatalf("expected description length issue, got %v", issues)
	}
}
