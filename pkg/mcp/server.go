// Package mcp exposes the agent registry to MCP hosts over stdio. The host
// remains responsible for invoking models with persona bodies and for
// enforcing the declared permissions; this server only hands out records.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rosterkit/roster/pkg/agentdef"
	rostererrors "github.com/rosterkit/roster/pkg/errors"
	"github.com/rosterkit/roster/pkg/registry"
	"github.com/rosterkit/roster/pkg/telemetry"
)

// Server wraps the mcp-go server around a registry snapshot. Reads always go
// through the snapshot, so hot reloads are visible without restarting.
type Server struct {
	mcpServer   *server.MCPServer
	snapshot    *registry.Snapshot
	logger      *slog.Logger
	metrics     *telemetry.RegistryMetrics
	defaultPerm agentdef.Permission
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the logger for request handling.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics wires OTEL counters for lookup misses.
func WithMetrics(m *telemetry.RegistryMetrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithDefaultPermission sets the permission reported for capabilities a
// persona does not declare.
func WithDefaultPermission(p agentdef.Permission) Option {
	return func(s *Server) {
		if p != "" {
			s.defaultPerm = p
		}
	}
}

// agentSummary is the list_agents row: enough to pick an agent, without the
// instruction body.
type agentSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Mode        string `json:"mode,omitempty"`
}

// agentRecord is the full get_agent payload.
type agentRecord struct {
	Name        string                         `json:"name"`
	Description string                         `json:"description"`
	Mode        string                         `json:"mode,omitempty"`
	Model       string                         `json:"model,omitempty"`
	Temperature *float64                       `json:"temperature,omitempty"`
	Permissions map[string]agentdef.Permission `json:"permissions,omitempty"`
	Tools       map[string]bool                `json:"tools,omitempty"`
	Body        string                         `json:"body"`
	Path        string                         `json:"path,omitempty"`

	// Capability echoes the requested capability with its resolved
	// permission; absent capabilities resolve to the configured default.
	Capability *capabilityGrant `json:"capability,omitempty"`
}

type capabilityGrant struct {
	Name       string              `json:"name"`
	Permission agentdef.Permission `json:"permission"`
}

// NewServer creates an MCP server publishing list_agents and get_agent.
func NewServer(name, version string, snapshot *registry.Snapshot, opts ...Option) *Server {
	s := &Server{
		mcpServer:   server.NewMCPServer(name, version),
		snapshot:    snapshot,
		logger:      slog.Default(),
		defaultPerm: agentdef.PermissionAsk,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	listTool := mcp.NewTool("list_agents",
		mcp.WithDescription("List registered agent personas with name, description, and invocation mode."),
	)
	s.mcpServer.AddTool(listTool, s.handleList)

	getTool := mcp.NewTool("get_agent",
		mcp.WithDescription("Fetch one agent persona, including its full instruction body."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Registered agent name."),
		),
		mcp.WithString("capability",
			mcp.Description("Optional capability to resolve an effective permission for."),
		),
	)
	s.mcpServer.AddTool(getTool, s.handleGet)
}

func (s *Server) handleList(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reg := s.snapshot.Registry()
	summaries := make([]agentSummary, 0, reg.Len())
	for _, def := range reg.All() {
		summaries = append(summaries, agentSummary{
			Name:        def.Name,
			Description: def.Description,
			Mode:        def.Mode,
		})
	}
	s.logger.DebugContext(ctx, "list_agents", "count", len(summaries))
	return jsonResult(summaries)
}

func (s *Server) handleGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	name, _ := args["name"].(string)
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}

	def, err := s.snapshot.Registry().Get(name)
	if err != nil {
		if rostererrors.CodeOf(err) == rostererrors.CodeNotFound {
			s.metrics.RecordLookupMiss(ctx, name)
			return mcp.NewToolResultError(fmt.Sprintf("agent %q not registered", name)), nil
		}
		return nil, err
	}

	record := agentRecord{
		Name:        def.Name,
		Description: def.Description,
		Mode:        def.Mode,
		Model:       def.Model,
		Temperature: def.Temperature,
		Permissions: def.Permissions,
		Tools:       def.Tools,
		Body:        def.Body,
		Path:        def.Path,
	}
	if capability, _ := args["capability"].(string); capability != "" {
		record.Capability = &capabilityGrant{
			Name:       capability,
			Permission: def.Permission(capability, s.defaultPerm),
		}
	}
	return jsonResult(record)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ServeStdio starts the server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
