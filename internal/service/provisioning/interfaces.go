// Package provisioning orchestrates the numbering engine: batch validation
// of contact records, collision-free number generation with persistence, and
// prefix grouping of contacts against a generated pool.
package provisioning

import (
	"context"

	"github.com/google/uuid"

	"github.com/fieldtel/number-provisioning-backend/internal/domain/numbering"
)

// NumberRepository persists generated numbers and reloads the used-number
// seed so uniqueness survives process restarts.
type NumberRepository interface {
	// StoreGenerated persists one batch of generated numbers.
	StoreGenerated(ctx context.Context, batchID uuid.UUID, numbers []numbering.GeneratedNumber) error
	// LoadUsed returns every previously provisioned full number and prefix.
	LoadUsed(ctx context.Context) (fullNumbers []string, prefixes []string, err error)
	// CountByCountry reports how many numbers each country has provisioned.
	CountByCountry(ctx context.Context) (map[string]int, error)
}

// UniquenessStore shares the uniqueness sets across service instances.
type UniquenessStore interface {
	// Seed merges the store's known numbers and prefixes into sets.
	Seed(ctx context.Context, sets *numbering.UniquenessSets) error
	// Record adds newly accepted numbers and prefixes to the store.
	Record(ctx context.Context, fullNumbers, prefixes []string) error
}

// MetricsCollector receives engine outcome counters.
type MetricsCollector interface {
	RecordValidation(country string, outcome string)
	RecordGeneration(country string, requested, produced int)
	RecordGrouping(groups, dropped int)
}

// NoopMetrics discards all measurements.
type NoopMetrics struct{}

func (NoopMetrics) RecordValidation(string, string)  {}
func (NoopMetrics) RecordGeneration(string, int, int) {}
func (NoopMetrics) RecordGrouping(int, int)           {}
