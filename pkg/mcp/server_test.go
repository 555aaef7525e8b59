package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"github.com/rosterkit/roster/pkg/agentdef"
	"github.com/rosterkit/roster/pkg/registry"
)

func fixtureServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	docs := map[string]string{
		"security-reviewer.md": `---
description: Reviews changes for injection risks.
mode: subagent
permissions:
  bash: ask
---

Flag anything dangerous.
`,
		"benchmark-agent.md": `---
description: Runs benchmark suites.
mode: subagent
---

Benchmark twice.
`,
	}
	for name, content := range docs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	reg, report, err := registry.NewLoader().Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return NewServer("roster-test", "v0.0.1", registry.NewSnapshot(reg, report))
}

func textOf(t *testing.T, result *mcptypes.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatalf("empty tool result")
	}
	text, ok := result.Content[0].(mcptypes.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", result.Content[0])
	}
	return text.Text
}

func TestHandleList(t *testing.T) {
	s := fixtureServer(t)

	result, err := s.handleList(context.Background(), mcptypes.CallToolRequest{})
	if err != nil {
		t.Fatalf("list_agents: %v", err)
	}

	var summaries []agentSummary
	if err := json.Unmarshal([]byte(textOf(t, result)), &summaries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(summaries))
	}
	// Bodies never leak through the listing.
	if summaries[0].Name == "" || summaries[0].Description == "" {
		t.Fatalf("incomplete summary: %+v", summaries[0])
	}
}

func TestHandleGet(t *testing.T) {
	s := fixtureServer(t)

	request := mcptypes.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{"name": "security-reviewer"}

	result, err := s.handleGet(context.Background(), request)
	if err != nil {
		t.Fatalf("get_agent: %v", err)
	}

	var record agentRecord
	if err := json.Unmarshal([]byte(textOf(t, result)), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record.Name != "security-reviewer" {
		t.Fatalf("unexpected agent: %+v", record)
	}
	if record.Body == "" {
		t.Fatalf("expected full body in get_agent")
	}
	if record.Permissions["bash"] != "ask" {
		t.Fatalf("permissions not included: %+v", record.Permissions)
	}
}

func TestHandleGetCapability(t *testing.T) {
	s := fixtureServer(t)
	WithDefaultPermission(agentdef.PermissionDeny)(s)

	request := mcptypes.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{
		"name":       "security-reviewer",
		"capability": "bash",
	}
	result, err := s.handleGet(context.Background(), request)
	if err != nil {
		t.Fatalf("get_agent: %v", err)
	}
	var record agentRecord
	if err := json.Unmarshal([]byte(textOf(t, result)), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record.Capability == nil || record.Capability.Permission != agentdef.PermissionAsk {
		t.Fatalf("declared capability not resolved: %+v", record.Capability)
	}

	// Undeclared capabilities fall back to the configured default.
	request.Params.Arguments = map[string]interface{}{
		"name":       "security-reviewer",
		"capability": "webfetch",
	}
	result, err = s.handleGet(context.Background(), request)
	if err != nil {
		t.Fatalf("get_agent: %v", err)
	}
	record = agentRecord{}
	if err := json.Unmarshal([]byte(textOf(t, result)), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record.Capability == nil || record.Capability.Permission != agentdef.PermissionDeny {
		t.Fatalf("default permission not applied: %+v", record.Capability)
	}
}

func TestHandleGetUnknown(t *testing.T) {
	s := fixtureServer(t)

	request := mcptypes.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{"name": "nonexistent"}

	result, err := s.handleGet(context.Background(), request)
	if err != nil {
		t.Fatalf("lookup misses must not fail the call: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected an error result for unknown agent")
	}
}

func TestHandleGetMissingName(t *testing.T) {
	s := fixtureServer(t)

	result, err := s.handleGet(context.Background(), mcptypes.CallToolRequest{})
	if err != nil {
		t.Fatalf("missing argument must not fail the call: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected an error result when name is missing")
	}
}
