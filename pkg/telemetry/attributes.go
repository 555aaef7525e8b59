// Copyright 2026 © The Roster Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic conventions for Roster registry telemetry.
// These follow OpenTelemetry naming conventions where applicable.
const (
	// Agent attributes
	AttrAgentName = "roster.agent.name"
	AttrAgentMode = "roster.agent.mode"
	AttrAgentPath = "roster.agent.path"

	// Registry load attributes
	AttrReportID      = "roster.load.report_id"
	AttrLoadDirs      = "roster.load.dirs"
	AttrLoadLoaded    = "roster.load.loaded"
	AttrLoadMalformed = "roster.load.malformed"
	AttrLoadDupes     = "roster.load.duplicates"
	AttrLoadIssues    = "roster.load.validation_issues"
)

// AgentAttributes returns common attributes for spans that touch one agent.
func AgentAttributes(name, mode, path string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrAgentName, name),
	}
	if mode != "" {
		attrs = append(attrs, attribute.String(AttrAgentMode, mode))
	}
	if path != "" {
		attrs = append(attrs, attribute.String(AttrAgentPath, path))
	}
	return attrs
}

// LoadAttributes returns attributes describing one registry build.
func LoadAttributes(reportID string, dirs []string, loaded, malformed, duplicates, issues int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrReportID, reportID),
		attribute.StringSlice(AttrLoadDirs, dirs),
		attribute.Int(AttrLoadLoaded, loaded),
		attribute.Int(AttrLoadMalformed, malformed),
		attribute.Int(AttrLoadDupes, duplicates),
		attribute.Int(AttrLoadIssues, issues),
	}
}
