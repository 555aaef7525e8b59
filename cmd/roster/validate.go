// Copyright 2026 © The Roster Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rosterkit/roster/pkg/registry"
)

type validateResult struct {
	Loaded    int           `json:"loaded"`
	Documents []checkResult `json:"documents"`
	Overall   string        `json:"overall"`
}

type checkResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warn", "error"
	Message string `json:"message,omitempty"`
}

// exitCode maps the overall status onto the process exit: only a fully clean
// report exits 0. Validation findings are advisory for loading, but validate
// exists to surface them, so they fail the command too.
func (r validateResult) exitCode() int {
	if r.Overall == "ok" {
		return 0
	}
	return 1
}

func summarizeValidation(reg *registry.Registry, report *registry.Report) validateResult {
	result := validateResult{
		Loaded:    report.Loaded,
		Documents: []checkResult{},
	}
	hasError := false
	hasWarn := false

	issuesByAgent := make(map[string][]string)
	for _, issue := range report.Issues {
		issuesByAgent[issue.Agent] = append(issuesByAgent[issue.Agent], issue.String())
	}
	dupesByName := make(map[string]registry.Duplicate)
	for _, dup := range report.Duplicates {
		dupesByName[dup.Name] = dup
	}

	for _, def := range reg.All() {
		check := checkResult{Name: def.Name, Status: "ok"}
		if issues := issuesByAgent[def.Name]; len(issues) > 0 {
			check.Status = "warn"
			check.Message = issues[0]
			if len(issues) > 1 {
				check.Message = fmt.Sprintf("%s (+%d more)", issues[0], len(issues)-1)
			}
			hasWarn = true
		}
		if dup, ok := dupesByName[def.Name]; ok {
			check.Status = "warn"
			check.Message = fmt.Sprintf("shadowed %s", dup.Previous)
			hasWarn = true
		}
		result.Documents = append(result.Documents, check)
	}

	for _, fe := range report.Malformed {
		result.Documents = append(result.Documents, checkResult{
			Name:    fe.Path,
			Status:  "error",
			Message: fe.Err.Error(),
		})
		hasError = true
	}

	switch {
	case hasError:
		result.Overall = "error"
	case hasWarn:
		result.Overall = "warn"
	default:
		result.Overall = "ok"
	}
	return result
}

func runValidate(ctx context.Context, global globalFlags, args []string) {
	if len(args) > 0 {
		fatal(fmt.Errorf("unexpected args: %v", args))
	}

	cfg := loadConfig(global)
	reg, report := buildRegistry(ctx, cfg)
	result := summarizeValidation(reg, report)

	if global.JSON {
		printJSON(result)
	} else {
		for _, check := range result.Documents {
			if check.Message != "" {
				fmt.Printf("%-5s %s: %s\n", check.Status, check.Name, check.Message)
			} else {
				fmt.Printf("%-5s %s\n", check.Status, check.Name)
			}
		}
		fmt.Printf("\n%d loaded, overall: %s\n", result.Loaded, result.Overall)
	}

	if code := result.exitCode(); code != 0 {
		os.Exit(code)
	}
}
