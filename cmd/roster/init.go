// Copyright 2026 © The Roster Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rosterkit/roster/pkg/agentdef"
)

func runInit(global globalFlags, args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)

	dir := fs.String("dir", "agents", "Directory for the new persona document")
	mode := fs.String("mode", "subagent", "Invocation mode: primary, subagent, all")
	description := fs.String("description", "", "One-line summary of the persona")
	overwrite := fs.Bool("overwrite", false, "Overwrite an existing document")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: roster init <name> [flags]

Scaffold a new agent persona document.

Arguments:
  name    Agent name (lowercase kebab-case, becomes <dir>/<name>.md)

Flags:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  roster init security-reviewer --description "Reviews changes for security issues"
  roster init benchmark-agent --mode subagent --dir ./agents
`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: name argument required")
		fs.Usage()
		os.Exit(1)
	}
	name := fs.Arg(0)

	desc := *description
	if desc == "" {
		desc = fmt.Sprintf("Describe what the %s persona is responsible for.", name)
	}

	def := agentdef.Definition{
		Name:        name,
		Description: desc,
		Mode:        *mode,
		Permissions: map[string]agentdef.Permission{
			"read": agentdef.PermissionAllow,
			"edit": agentdef.PermissionAsk,
			"bash": agentdef.PermissionAsk,
		},
		Body: fmt.Sprintf(`You are the %s agent.

Describe the persona's focus areas, the checks it performs, and the tone it
uses when reporting findings.`, name),
	}

	raw, err := agentdef.Render(def)
	if err != nil {
		fatal(err)
	}

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		fatal(err)
	}
	path := filepath.Join(*dir, name+".md")
	if _, err := os.Stat(path); err == nil && !*overwrite {
		fmt.Fprintf(os.Stderr, "Error: %s already exists. Use --overwrite to replace.\n", path)
		os.Exit(1)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		fatal(err)
	}

	fmt.Printf("Created %s\n", path)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  edit the document body")
	fmt.Println("  roster validate")
}
