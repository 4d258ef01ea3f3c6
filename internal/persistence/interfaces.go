// Package persistence provides database abstraction interfaces for storing enriched records
package persistence

import (
	"context"

	"marquee/internal/core"
	"marquee/internal/store"
)

// RecordRepository handles enriched record persistence operations. It mirrors
// the SQLite store surface so either backend can sit behind the same
// consumer interfaces.
type RecordRepository interface {
	// FindByThemeID retrieves the record for a source title by its theme ID
	FindByThemeID(ctx context.Context, themeID string) (*core.EnrichedRecord, error)

	// Create inserts a new record
	Create(ctx context.Context, record *core.EnrichedRecord) error

	// Update fully overwrites an existing record
	Update(ctx context.Context, record *core.EnrichedRecord) error

	// Upsert creates the record when absent and overwrites it otherwise
	Upsert(ctx context.Context, record *core.EnrichedRecord) (bool, error)

	// ListRecords retrieves records with pagination and kind filtering
	ListRecords(ctx context.Context, opts store.ListOptions) ([]core.EnrichedRecord, error)

	// CountRecords returns the total number of records
	CountRecords(ctx context.Context) (int, error)

	// DeleteRecord removes a record by theme ID
	DeleteRecord(ctx context.Context, themeID string) error

	// GetStats returns store statistics in the shared shape
	GetStats(ctx context.Context) (*store.StoreStats, error)
}

// Database represents the main database interface that aggregates all repositories
type Database interface {
	// Records returns the enriched record repository
	Records() RecordRepository

	// Close closes the database connection
	Close() error

	// Ping verifies the database connection
	Ping(ctx context.Context) error
}
