// Copyright 2026 © The Roster Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rosterkit/roster/pkg/agentdef"
	"github.com/rosterkit/roster/pkg/audit"
	"github.com/rosterkit/roster/pkg/mcp"
	"github.com/rosterkit/roster/pkg/registry"
	"github.com/rosterkit/roster/pkg/telemetry"
)

// runServe loads the registry and publishes it to an MCP host over stdio.
// With agents.watch enabled, document changes rebuild the registry wholesale
// and swap it under the running server.
func runServe(ctx context.Context, global globalFlags, args []string) {
	if len(args) > 0 {
		fatal(fmt.Errorf("unexpected args: %v", args))
	}

	cfg := loadConfig(global)

	shutdown, err := telemetry.InitWithConfig("roster", version, telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		fatal(fmt.Errorf("init telemetry: %w", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("telemetry shutdown failed", "error", err)
		}
	}()

	metrics, err := telemetry.NewRegistryMetrics()
	if err != nil {
		fatal(fmt.Errorf("init metrics: %w", err))
	}

	loader := registry.NewLoader(
		registry.WithModes(cfg.Agents.Modes),
		registry.WithMetrics(metrics),
	)

	var store *audit.Store
	if cfg.Audit.Enabled {
		store, err = audit.Open(cfg.Audit.Path)
		if err != nil {
			fatal(err)
		}
		defer store.Close()
	}

	record := func(reg *registry.Registry, report *registry.Report) {
		if store == nil {
			return
		}
		if err := store.RecordLoad(ctx, report, reg); err != nil {
			slog.Error("failed to record load report", "error", err)
		}
	}

	var snapshot *registry.Snapshot
	if cfg.Agents.Watch {
		interval := time.Duration(cfg.Agents.WatchIntervalMS) * time.Millisecond
		watcher, err := registry.NewWatcher(ctx, loader, cfg.Agents.Dirs,
			registry.WithWatchInterval(interval))
		if err != nil {
			fatal(err)
		}
		watcher.OnReload(record)
		watcher.Start(ctx)
		defer watcher.Stop()
		snapshot = watcher.Snapshot()
	} else {
		reg, report, err := loader.Load(ctx, cfg.Agents.Dirs...)
		if err != nil {
			fatal(err)
		}
		snapshot = registry.NewSnapshot(reg, report)
	}
	record(snapshot.Registry(), snapshot.Report())

	server := mcp.NewServer(cfg.MCP.Name, cfg.MCP.Version, snapshot,
		mcp.WithMetrics(metrics),
		mcp.WithDefaultPermission(agentdef.Permission(cfg.Agents.DefaultPermission)))

	slog.Info("serving registry over MCP stdio",
		"agents", snapshot.Registry().Len(),
		"watch", cfg.Agents.Watch,
	)
	if err := server.ServeStdio(); err != nil {
		fatal(err)
	}
}
