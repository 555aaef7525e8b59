package agentdef

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	rostererrors "github.com/rosterkit/roster/pkg/errors"
)

func TestParse(t *testing.T) {
	content := `---
name: security-reviewer
description: Reviews changes for injection risks and secret leakage.
mode: subagent
temperature: 0.2

# tool access is enforced by the host, not here
permissions:
  read: allow
  edit: deny
  bash: ask
  webfetch: false
tools:
  grep: true
team: platform
---

You are a security reviewer. Flag anything that smells like an injection
vector and never suggest disabling a check.
`
	def, err := Parse([]byte(content))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if def.Name != "security-reviewer" {
		t.Fatalf("unexpected name: %s", def.Name)
	}
	if def.Mode != "subagent" {
		t.Fatalf("unexpected mode: %s", def.Mode)
	}
	if !def.HasTemperature() || *def.Temperature != 0.2 {
		t.Fatalf("unexpected temperature: %v", def.Temperature)
	}
	if def.Permissions["read"] != PermissionAllow {
		t.Errorf("read should be allow, got %q", def.Permissions["read"])
	}
	if def.Permissions["bash"] != PermissionAsk {
		t.Errorf("bash should be ask, got %q", def.Permissions["bash"])
	}
	if def.Permissions["webfetch"] != PermissionDeny {
		t.Errorf("boolean false should normalize to deny, got %q", def.Permissions["webfetch"])
	}
	if !def.Tools["grep"] {
		t.Errorf("expected grep tool enabled")
	}
	if def.Extra["team"] != "platform" {
		t.Errorf("unknown keys must be preserved, got %v", def.Extra)
	}
	if def.Body == "" || def.Body[:8] != "You are " {
		t.Errorf("body not preserved: %q", def.Body)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no leading delimiter", "name: x\n---\nbody\n"},
		{"unterminated block", "---\nname: x\n"},
		{"not a mapping", "---\n- one\n- two\n---\nbody\n"},
		{"bad yaml", "---\nname: [unclosed\n---\nbody\n"},
		{"temperature wrong type", "---\ntemperature: fast\n---\nbody\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			if err == nil {
				t.Fatalf("expected error")
			}
			if rostererrors.CodeOf(err) != rostererrors.CodeMalformedDocument {
				t.Fatalf("expected MALFORMED_DOCUMENT, got %v", err)
			}
		})
	}
}

func TestParseDelimiterOnlyOnOwnLine(t *testing.T) {
	content := `---
name: release-notes
description: Summarizes changes --- breaking ones first.
---

Group entries by area.

---

End each summary with open questions.
`
	def, err := Parse([]byte(content))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if def.Description != "Summarizes changes --- breaking ones first." {
		t.Fatalf("dashes inside a value were treated as a delimiter: %q", def.Description)
	}
	if !strings.Contains(def.Body, "---") {
		t.Fatalf("horizontal rule stripped from body: %q", def.Body)
	}
	if !strings.Contains(def.Body, "open questions") {
		t.Fatalf("body truncated at horizontal rule: %q", def.Body)
	}
}

func TestParseFileNameFallback(t *testing.T) {
	dir := t.TempDir()
	content := `---
description: Keeps the dependency graph acyclic.
---

Guard the architecture.
`
	path := filepath.Join(dir, "architecture-guardian.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	def, err := ParseFile(path)
	if err != nil {
		t.Fatalf("parse file: %v", err)
	}
	if def.Name != "architecture-guardian" {
		t.Fatalf("expected name from file stem, got %q", def.Name)
	}
	if def.Path != path {
		t.Fatalf("expected path recorded, got %q", def.Path)
	}
}

func TestParseDeclaredNameWins(t *testing.T) {
	dir := t.TempDir()
	content := `---
name: benchmarks
description: Runs and interprets benchmark suites.
---
`
	path := filepath.Join(dir, "bench.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	def, err := ParseFile(path)
	if err != nil {
		t.Fatalf("parse file: %v", err)
	}
	if def.Name != "benchmarks" {
		t.Fatalf("declared name must win over file stem, got %q", def.Name)
	}
}

func TestPermissionFallback(t *testing.T) {
	def := Definition{Permissions: map[string]Permission{"edit": PermissionDeny}}
	if got := def.Permission("edit", PermissionAsk); got != PermissionDeny {
		t.Errorf("declared permission ignored: %q", got)
	}
	if got := def.Permission("bash", PermissionAsk); got != PermissionAsk {
		t.Errorf("fallback not applied: %q", got)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	temp := 0.7
	def := Definition{
		Name:        "benchmark-agent",
		Description: "Runs benchmarks and summarizes regressions.",
		Mode:        "subagent",
		Model:       "small-fast",
		Temperature: &temp,
		Permissions: map[string]Permission{
			"read": PermissionAllow,
			"bash": PermissionAsk,
		},
		Tools: map[string]bool{"grep": true, "edit": false},
		Extra: map[string]any{"team": "perf"},
		Body:  "Benchmark everything twice before calling it a regression.",
	}

	raw, err := Render(def)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse rendered document: %v", err)
	}

	if got.Name != def.Name || got.Description != def.Description ||
		got.Mode != def.Mode || got.Model != def.Model {
		t.Fatalf("scalar fields did not round-trip: %+v", got)
	}
	if !got.HasTemperature() || *got.Temperature != temp {
		t.Fatalf("temperature did not round-trip: %v", got.Temperature)
	}
	if len(got.Permissions) != 2 || got.Permissions["bash"] != PermissionAsk {
		t.Fatalf("permissions did not round-trip: %v", got.Permissions)
	}
	if len(got.Tools) != 2 || !got.Tools["grep"] || got.Tools["edit"] {
		t.Fatalf("tools did not round-trip: %v", got.Tools)
	}
	if got.Extra["team"] != "perf" {
		t.Fatalf("extra keys did not round-trip: %v", got.Extra)
	}
	if got.Body != def.Body {
		t.Fatalf("body did not round-trip: %q", got.Body)
	}
}

func TestNameFromPath(t *testing.T) {
	if got := NameFromPath("/agents/code-reviewer.md"); got != "code-reviewer" {
		t.Errorf("unexpected name: %q", got)
	}
	if got := NameFromPath("plain"); got != "plain" {
		t.Errorf("unexpected name: %q", got)
	}
}
