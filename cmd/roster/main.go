// Copyright 2026 © The Roster Authors
// SPDX-License-Identifier: Apache-2.0

// Package main implements the roster CLI.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rosterkit/roster/pkg/config"
	"github.com/rosterkit/roster/pkg/registry"
	"github.com/rosterkit/roster/pkg/telemetry"
)

const version = "v0.1.0"

type globalFlags struct {
	ConfigPath string
	JSON       bool
	Help       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	global, args, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		fatal(err)
	}
	if global.Help || len(args) == 0 {
		printUsage()
		if len(args) == 0 && !global.Help {
			os.Exit(2)
		}
		return
	}

	command := args[0]
	rest := args[1:]

	switch command {
	case "list":
		runList(ctx, global, rest)
	case "get":
		runGet(ctx, global, rest)
	case "validate":
		runValidate(ctx, global, rest)
	case "serve":
		runServe(ctx, global, rest)
	case "init":
		runInit(global, rest)
	case "audit":
		runAudit(ctx, global, rest)
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		printUsage()
		os.Exit(2)
	}
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	fs := flag.NewFlagSet("roster", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var global globalFlags
	fs.StringVar(&global.ConfigPath, "config", "", "Path to config.yaml")
	fs.BoolVar(&global.JSON, "json", false, "JSON output")
	fs.BoolVar(&global.Help, "help", false, "Show usage")
	fs.Usage = printUsage

	if err := fs.Parse(args); err != nil {
		return globalFlags{}, nil, err
	}
	return global, fs.Args(), nil
}

// loadConfig resolves configuration and applies the log settings.
func loadConfig(global globalFlags) *config.Config {
	cfg, err := config.Load(global.ConfigPath)
	if err != nil {
		fatal(fmt.Errorf("load config: %w", err))
	}
	telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	return cfg
}

// buildRegistry performs a one-shot load with the configured directories.
func buildRegistry(ctx context.Context, cfg *config.Config) (*registry.Registry, *registry.Report) {
	loader := registry.NewLoader(registry.WithModes(cfg.Agents.Modes))
	reg, report, err := loader.Load(ctx, cfg.Agents.Dirs...)
	if err != nil {
		fatal(err)
	}
	return reg, report
}

func printJSON(value any) {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(payload))
}

func printUsage() {
	fmt.Println(`roster - agent persona registry

Usage:
  roster [global flags] <command> [args]

Global flags:
  --config <path>      Path to config.yaml
  --json               JSON output

Commands:
  list
  get <name>
  validate
  serve
  init <name>
  audit reports [--limit N]
  audit events <report-id> [--status loaded|malformed|duplicate]
  version

Configuration can also come from ROSTER_* environment variables,
e.g. ROSTER_LOG_LEVEL=debug.`)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
