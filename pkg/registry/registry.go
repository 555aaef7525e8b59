// SPDX-License-Identifier: Apache-2.0
// Package registry loads agent persona documents from disk and exposes
// read-only lookup over the parsed definitions. A load never aborts on a
// bad document: malformed files are skipped and reported, semantic findings
// are advisory, and duplicate names resolve last-loaded-wins.
package registry

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/rosterkit/roster/pkg/agentdef"
	rostererrors "github.com/rosterkit/roster/pkg/errors"
	"github.com/rosterkit/roster/pkg/telemetry"
	"github.com/rosterkit/roster/pkg/validate"
)

// Registry is the immutable in-memory collection of parsed definitions.
// Once built it is read-only and safe for any number of concurrent readers.
type Registry struct {
	byName map[string]agentdef.Definition
	order  []string
}

// FileError records one document that could not be parsed.
type FileError struct {
	Path string `json:"path"`
	Err  error  `json:"error"`
}

// Duplicate records a name collision. The document at Path replaced the one
// at Previous.
type Duplicate struct {
	Name     string `json:"name"`
	Previous string `json:"previous"`
	Path     string `json:"path"`
}

// Report is the outcome of one load. A report with zero loaded definitions
// is a valid end state, not an error.
type Report struct {
	ID         string           `json:"id"`
	Dirs       []string         `json:"dirs"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Loaded     int              `json:"loaded"`
	Malformed  []FileError      `json:"malformed,omitempty"`
	Duplicates []Duplicate      `json:"duplicates,omitempty"`
	Issues     []validate.Issue `json:"issues,omitempty"`
}

// Loader scans directories and builds registries.
type Loader struct {
	modes   []string
	logger  *slog.Logger
	metrics *telemetry.RegistryMetrics
}

// Option configures a Loader.
type Option func(*Loader)

// WithModes sets the host-recognized mode set used for advisory validation.
func WithModes(modes []string) Option {
	return func(l *Loader) {
		if len(modes) > 0 {
			l.modes = modes
		}
	}
}

// WithLogger sets the logger for load events.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMetrics wires OTEL counters for load outcomes.
func WithMetrics(m *telemetry.RegistryMetrics) Option {
	return func(l *Loader) {
		l.metrics = m
	}
}

// NewLoader creates a Loader with the given options.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		modes:  validate.DefaultModes,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load scans the given directories for *.md persona documents, in directory
// order then os.ReadDir order within each. Only an unreadable directory
// fails the load; everything else is skipped and reported.
func (l *Loader) Load(ctx context.Context, dirs ...string) (*Registry, *Report, error) {
	ctx, span := otel.Tracer("roster/registry").Start(ctx, "registry.load")
	defer span.End()

	report := &Report{
		ID:        uuid.NewString(),
		Dirs:      dirs,
		StartedAt: time.Now().UTC(),
	}
	reg := &Registry{byName: make(map[string]agentdef.Definition)}

	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, nil, rostererrors.New(rostererrors.CodeInvalidInput,
				"cannot read agents directory", err).WithContext("dir", dir)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			l.loadOne(ctx, reg, report, path)
		}
	}

	report.Loaded = len(reg.order)
	report.FinishedAt = time.Now().UTC()

	span.SetAttributes(telemetry.LoadAttributes(report.ID, dirs, report.Loaded,
		len(report.Malformed), len(report.Duplicates), len(report.Issues))...)
	l.logger.InfoContext(ctx, "registry loaded",
		"report_id", report.ID,
		"loaded", report.Loaded,
		"malformed", len(report.Malformed),
		"duplicates", len(report.Duplicates),
		"issues", len(report.Issues),
	)
	l.metrics.RecordLoad(ctx, report.Loaded, len(report.Malformed), len(report.Duplicates), len(report.Issues))

	return reg, report, nil
}

func (l *Loader) loadOne(ctx context.Context, reg *Registry, report *Report, path string) {
	def, err := agentdef.ParseFile(path)
	if err != nil {
		report.Malformed = append(report.Malformed, FileError{Path: path, Err: err})
		l.logger.WarnContext(ctx, "skipping malformed document", "path", path, "error", err)
		return
	}

	if prev, exists := reg.byName[def.Name]; exists {
		report.Duplicates = append(report.Duplicates, Duplicate{
			Name:     def.Name,
			Previous: prev.Path,
			Path:     def.Path,
		})
		l.logger.WarnContext(ctx, "duplicate agent name, last-loaded wins",
			"agent", def.Name, "previous", prev.Path, "path", def.Path)
		reg.remove(def.Name)
	}

	reg.byName[def.Name] = def
	reg.order = append(reg.order, def.Name)
	trace.SpanFromContext(ctx).AddEvent("agent registered",
		trace.WithAttributes(telemetry.AgentAttributes(def.Name, def.Mode, def.Path)...))

	report.Issues = append(report.Issues, validate.Definition(def, validate.Options{Modes: l.modes})...)
}

func (r *Registry) remove(name string) {
	delete(r.byName, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

// Get returns the definition for name or a NOT_FOUND error.
func (r *Registry) Get(name string) (agentdef.Definition, error) {
	def, ok := r.byName[name]
	if !ok {
		return agentdef.Definition{}, rostererrors.NotFound(name)
	}
	return def, nil
}

// List returns agent names in discovery order.
func (r *Registry) List() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns every definition in discovery order.
func (r *Registry) All() []agentdef.Definition {
	out := make([]agentdef.Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	return len(r.order)
}
