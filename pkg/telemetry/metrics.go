// SPDX-License-Identifier: Apache-2.0
// Package telemetry provides observability for Roster: slog configuration,
// OTEL SDK setup, and registry load metrics.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RegistryMetrics tracks load outcomes and lookup misses for monitoring.
// A nil receiver is valid and records nothing, so callers wire it optionally.
type RegistryMetrics struct {
	// loadedGauge tracks definitions in the current registry
	loadedGauge metric.Int64Gauge

	// malformedCounter tracks documents skipped as unparsable
	malformedCounter metric.Int64Counter

	// duplicateCounter tracks name collisions resolved last-wins
	duplicateCounter metric.Int64Counter

	// issueCounter tracks advisory validation findings
	issueCounter metric.Int64Counter

	// missCounter tracks registry lookup misses
	missCounter metric.Int64Counter
}

// NewRegistryMetrics creates a registry metrics tracker with OTEL meters.
func NewRegistryMetrics() (*RegistryMetrics, error) {
	meter := otel.Meter("roster/registry")

	loadedGauge, err := meter.Int64Gauge(
		"roster.registry.loaded",
		metric.WithDescription("Definitions in the current registry"),
	)
	if err != nil {
		return nil, err
	}

	malformedCounter, err := meter.Int64Counter(
		"roster.registry.malformed",
		metric.WithDescription("Documents skipped as unparsable"),
	)
	if err != nil {
		return nil, err
	}

	duplicateCounter, err := meter.Int64Counter(
		"roster.registry.duplicates",
		metric.WithDescription("Duplicate agent names resolved last-loaded-wins"),
	)
	if err != nil {
		return nil, err
	}

	issueCounter, err := meter.Int64Counter(
		"roster.registry.validation_issues",
		metric.WithDescription("Advisory validation findings"),
	)
	if err != nil {
		return nil, err
	}

	missCounter, err := meter.Int64Counter(
		"roster.registry.lookup_misses",
		metric.WithDescription("Registry lookups for unknown agents"),
	)
	if err != nil {
		return nil, err
	}

	return &RegistryMetrics{
		loadedGauge:      loadedGauge,
		malformedCounter: malformedCounter,
		duplicateCounter: duplicateCounter,
		issueCounter:     issueCounter,
		missCounter:      missCounter,
	}, nil
}

// RecordLoad records the outcome of one registry build.
func (rm *RegistryMetrics) RecordLoad(ctx context.Context, loaded, malformed, duplicates, issues int) {
	if rm == nil {
		return
	}
	rm.loadedGauge.Record(ctx, int64(loaded))
	if malformed > 0 {
		rm.malformedCounter.Add(ctx, int64(malformed))
	}
	if duplicates > 0 {
		rm.duplicateCounter.Add(ctx, int64(duplicates))
	}
	if issues > 0 {
		rm.issueCounter.Add(ctx, int64(issues))
	}
}

// RecordLookupMiss records a Get for an agent that is not registered.
func (rm *RegistryMetrics) RecordLookupMiss(ctx context.Context, agent string) {
	if rm == nil {
		return
	}
	rm.missCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("agent", agent)),
	)
}
