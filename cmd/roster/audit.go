// Copyright 2026 © The Roster Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rosterkit/roster/pkg/audit"
)

func runAudit(ctx context.Context, global globalFlags, args []string) {
	if len(args) == 0 {
		fatal(fmt.Errorf("usage: roster audit <reports|events> [flags]"))
	}

	cfg := loadConfig(global)
	store, err := audit.Open(cfg.Audit.Path)
	if err != nil {
		fatal(err)
	}
	defer store.Close()

	switch args[0] {
	case "reports":
		runAuditReports(ctx, global, store, args[1:])
	case "events":
		runAuditEvents(ctx, global, store, args[1:])
	default:
		fatal(fmt.Errorf("unknown audit subcommand: %s", args[0]))
	}
}

func runAuditReports(ctx context.Context, global globalFlags, store *audit.Store, args []string) {
	fs := flag.NewFlagSet("audit reports", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Maximum reports to show")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	reports, err := store.Reports(ctx, *limit)
	if err != nil {
		fatal(err)
	}

	if global.JSON {
		printJSON(reports)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tLOADED\tMALFORMED\tDUPLICATES\tISSUES")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Loaded, r.Malformed, r.Duplicates, r.Issues)
	}
	w.Flush()
}

func runAuditEvents(ctx context.Context, global globalFlags, store *audit.Store, args []string) {
	fs := flag.NewFlagSet("audit events", flag.ExitOnError)
	status := fs.String("status", "", "Filter by status: loaded, malformed, duplicate")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fatal(fmt.Errorf("usage: roster audit events <report-id> [--status s]"))
	}

	events, err := store.Events(ctx, fs.Arg(0), *status)
	if err != nil {
		fatal(err)
	}

	if global.JSON {
		printJSON(events)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tAGENT\tPATH\tDETAIL")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Status, e.Agent, e.Path, e.Detail)
	}
	w.Flush()
}
