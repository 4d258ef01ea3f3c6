package enrich

import (
	"context"

	"marquee/internal/core"
	"marquee/internal/llm"
)

// MetadataResolver produces canonical metadata for one source title
type MetadataResolver interface {
	// Resolve returns complete metadata; failures degrade to defaults inside
	Resolve(ctx context.Context, src core.SourceTitle) core.ResolvedMetadata
}

// ReviewSynthesizer fabricates the audience review set for a resolved title
type ReviewSynthesizer interface {
	// Synthesize returns a bounded batch of template reviews
	Synthesize(md core.ResolvedMetadata) []core.Review
}

// CopyGenerator produces the promotional copy fields of a record
type CopyGenerator interface {
	// GenerateCopy renders one copy field; false means the caller must degrade
	GenerateCopy(ctx context.Context, kind llm.CopyKind, md core.ResolvedMetadata) (string, bool)

	// GenerateHashtags returns social tags, falling back internally
	GenerateHashtags(ctx context.Context, md core.ResolvedMetadata) []string

	// GenerateKeywords returns search keywords, falling back internally
	GenerateKeywords(ctx context.Context, md core.ResolvedMetadata) []string
}

// RecordStore persists enriched records keyed by theme ID
type RecordStore interface {
	// FindByThemeID retrieves the existing record, or store.ErrNotFound
	FindByThemeID(ctx context.Context, themeID string) (*core.EnrichedRecord, error)

	// Create inserts a new record
	Create(ctx context.Context, record *core.EnrichedRecord) error

	// Update fully overwrites an existing record
	Update(ctx context.Context, record *core.EnrichedRecord) error
}
