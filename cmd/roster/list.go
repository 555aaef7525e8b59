// Copyright 2026 © The Roster Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/rosterkit/roster/pkg/agentdef"
	rostererrors "github.com/rosterkit/roster/pkg/errors"
)

type listRow struct {
	Name        string `json:"name"`
	Mode        string `json:"mode,omitempty"`
	Description string `json:"description"`
	Path        string `json:"path,omitempty"`
}

func runList(ctx context.Context, global globalFlags, args []string) {
	if len(args) > 0 {
		fatal(fmt.Errorf("unexpected args: %v", args))
	}

	cfg := loadConfig(global)
	reg, _ := buildRegistry(ctx, cfg)

	rows := make([]listRow, 0, reg.Len())
	for _, def := range reg.All() {
		rows = append(rows, listRow{
			Name:        def.Name,
			Mode:        def.Mode,
			Description: truncate(def.Description, 72),
			Path:        def.Path,
		})
	}

	if global.JSON {
		printJSON(rows)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMODE\tDESCRIPTION")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\n", row.Name, row.Mode, row.Description)
	}
	w.Flush()
}

func runGet(ctx context.Context, global globalFlags, args []string) {
	if len(args) != 1 {
		fatal(fmt.Errorf("usage: roster get <name>"))
	}
	name := args[0]

	cfg := loadConfig(global)
	reg, _ := buildRegistry(ctx, cfg)

	def, err := reg.Get(name)
	if err != nil {
		if rostererrors.CodeOf(err) == rostererrors.CodeNotFound {
			fmt.Fprintf(os.Stderr, "agent %q not registered; run `roster list` to see what loaded\n", name)
			os.Exit(1)
		}
		fatal(err)
	}

	if global.JSON {
		printJSON(getResult{
			Name:        def.Name,
			Description: def.Description,
			Mode:        def.Mode,
			Model:       def.Model,
			Temperature: def.Temperature,
			Permissions: def.Permissions,
			Tools:       def.Tools,
			Path:        def.Path,
			Body:        def.Body,
		})
		return
	}

	fmt.Printf("Name:        %s\n", def.Name)
	fmt.Printf("Description: %s\n", def.Description)
	if def.Mode != "" {
		fmt.Printf("Mode:        %s\n", def.Mode)
	}
	if def.Model != "" {
		fmt.Printf("Model:       %s\n", def.Model)
	}
	if def.HasTemperature() {
		fmt.Printf("Temperature: %g\n", *def.Temperature)
	}
	if len(def.Permissions) > 0 {
		fmt.Println("Permissions:")
		for capability, p := range def.Permissions {
			fmt.Printf("  %s: %s\n", capability, p)
		}
	}
	fmt.Printf("Source:      %s\n", def.Path)
	fmt.Println()
	fmt.Println(def.Body)
}

type getResult struct {
	Name        string                         `json:"name"`
	Description string                         `json:"description"`
	Mode        string                         `json:"mode,omitempty"`
	Model       string                         `json:"model,omitempty"`
	Temperature *float64                       `json:"temperature,omitempty"`
	Permissions map[string]agentdef.Permission `json:"permissions,omitempty"`
	Tools       map[string]bool                `json:"tools,omitempty"`
	Path        string                         `json:"path"`
	Body        string                         `json:"body"`
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}
