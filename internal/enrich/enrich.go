// Package enrich orchestrates the end-to-end enrichment workflow.
// It coordinates the resolver, review synthesizer and copy generator per
// source title and upserts exactly one record per theme ID.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"marquee/internal/core"
	"marquee/internal/llm"
	"marquee/internal/logger"
	"marquee/internal/reviews"
	"marquee/internal/store"

	"github.com/go-playground/validator/v10"
)

// Pipeline runs the enrichment loop over a batch of source titles.
type Pipeline struct {
	resolver MetadataResolver
	reviewer ReviewSynthesizer
	copygen  CopyGenerator
	records  RecordStore
	validate *validator.Validate
	log      *slog.Logger
}

// NewPipeline creates a new pipeline with all collaborators wired
func NewPipeline(resolver MetadataResolver, reviewer ReviewSynthesizer, copygen CopyGenerator, records RecordStore) *Pipeline {
	return &Pipeline{
		resolver: resolver,
		reviewer: reviewer,
		copygen:  copygen,
		records:  records,
		validate: validator.New(),
		log:      logger.Get(),
	}
}

// Options configures one enrichment run.
type Options struct {
	Delay      time.Duration // Pause between titles; a throttle, not a correctness mechanism
	OnProgress func(Event)   // Optional per-title progress callback
}

// Stats tracks enrichment run metrics.
type Stats struct {
	Titles   int // Titles attempted
	Created  int // New records written
	Updated  int // Existing records overwritten
	Degraded int // Titles enriched with fallback or default content
	Failed   int // Titles skipped after an error
	Elapsed  time.Duration
}

// Event reports the outcome of one title for progress displays.
type Event struct {
	Index    int    // Zero-based position in the run
	Total    int    // Titles in the run
	ThemeID  string // Catalog identity
	Title    string // Display title
	Created  bool   // New record rather than an update
	Fallback bool   // Generative fallback contributed to the metadata
	Degraded bool   // Some field fell back to a default
	Err      error  // Per-title failure; nil on success
}

// Run enriches every title and upserts one record per theme ID. Collaborator
// failures degrade individual fields and the run continues; a duplicate
// theme ID write aborts the whole run.
func (p *Pipeline) Run(ctx context.Context, titles []core.SourceTitle, opts Options) (Stats, error) {
	start := time.Now()
	stats := Stats{Titles: len(titles)}

	for i, src := range titles {
		if err := ctx.Err(); err != nil {
			stats.Elapsed = time.Since(start)
			return stats, err
		}
		if i > 0 && opts.Delay > 0 {
			if err := sleep(ctx, opts.Delay); err != nil {
				stats.Elapsed = time.Since(start)
				return stats, err
			}
		}

		event := Event{Index: i, Total: len(titles), ThemeID: src.ID, Title: src.Title}

		outcome, err := p.enrichTitle(ctx, src)
		if err != nil {
			stats.Failed++
			event.Err = err
			emit(opts.OnProgress, event)
			if errors.Is(err, store.ErrDuplicateTheme) {
				stats.Elapsed = time.Since(start)
				return stats, err
			}
			p.log.Warn("Skipping title after enrichment failure", "theme_id", src.ID, "title", src.Title, "error", err)
			continue
		}

		if outcome.created {
			stats.Created++
		} else {
			stats.Updated++
		}
		if outcome.degraded {
			stats.Degraded++
		}

		event.Created = outcome.created
		event.Fallback = outcome.fallback
		event.Degraded = outcome.degraded
		emit(opts.OnProgress, event)
	}

	stats.Elapsed = time.Since(start)
	return stats, nil
}

// titleOutcome summarizes one successfully persisted title.
type titleOutcome struct {
	created  bool
	fallback bool
	degraded bool
}

// enrichTitle runs the per-title flow: resolve, synthesize reviews, generate
// copy, validate, find-or-create upsert.
func (p *Pipeline) enrichTitle(ctx context.Context, src core.SourceTitle) (titleOutcome, error) {
	md := p.resolver.Resolve(ctx, src)
	revs := p.reviewer.Synthesize(md)
	summary := reviews.Summarize(revs)

	record, degraded := p.assembleRecord(ctx, src, md, revs, summary)

	if err := p.validate.Struct(record); err != nil {
		return titleOutcome{}, fmt.Errorf("record validation failed: %w", err)
	}

	created, err := p.upsert(ctx, record)
	if err != nil {
		return titleOutcome{}, err
	}

	return titleOutcome{
		created:  created,
		fallback: md.FallbackUsed,
		degraded: degraded || md.FallbackUsed,
	}, nil
}

// assembleRecord builds the full record from resolved metadata, reviews and
// generated copy. Copy generation failures degrade to deterministic content;
// the bool reports whether any field degraded.
func (p *Pipeline) assembleRecord(ctx context.Context, src core.SourceTitle, md core.ResolvedMetadata, revs []core.Review, summary core.ReviewSummary) (*core.EnrichedRecord, bool) {
	degraded := false

	keywords := p.copygen.GenerateKeywords(ctx, md)

	whyWatch, ok := p.copygen.GenerateCopy(ctx, llm.CopyWhyWatch, md)
	if !ok {
		// The original catalog simply went without the section
		whyWatch = ""
		degraded = true
		p.log.Warn("Why-watch copy unavailable", "title", md.Title)
	}

	synopsis, ok := p.copygen.GenerateCopy(ctx, llm.CopySynopsis, md)
	if !ok {
		synopsis = llm.FallbackSynopsis(md)
		degraded = true
		p.log.Warn("Synopsis rewrite unavailable, using template", "title", md.Title)
	}

	whereWatch, ok := p.copygen.GenerateCopy(ctx, llm.CopyWhereWatch, md)
	if !ok {
		whereWatch = ""
		degraded = true
		p.log.Warn("Where-watch copy unavailable", "title", md.Title)
	}

	quality, ok := p.copygen.GenerateCopy(ctx, llm.CopyQuality, md)
	if !ok {
		quality = core.DefaultQuality
		degraded = true
	}

	hashtags := p.copygen.GenerateHashtags(ctx, md)

	return &core.EnrichedRecord{
		ThemeID:       src.ID,
		Kind:          md.Kind,
		Title:         md.Title,
		Year:          md.Year,
		Genre:         md.Genre,
		Director:      md.Director,
		Cast:          md.Cast,
		Language:      md.Language,
		Duration:      md.Duration,
		ContentRating: md.ContentRating,
		Rating:        summary.AverageRating,
		Quality:       quality,
		Synopsis:      synopsis,
		WhyWatch:      whyWatch,
		WhereWatch:    whereWatch,
		WatchURL:      md.WatchURL,
		PosterURL:     md.PosterURL,
		Hashtags:      hashtags,
		Keywords:      keywords,
		Reviews:       revs,
	}, degraded
}

// upsert looks up the record's theme ID and either creates a new record or
// fully overwrites the existing one, keeping its identity and creation time.
func (p *Pipeline) upsert(ctx context.Context, record *core.EnrichedRecord) (bool, error) {
	existing, err := p.records.FindByThemeID(ctx, record.ThemeID)
	if errors.Is(err, store.ErrNotFound) {
		if err := p.records.Create(ctx, record); err != nil {
			return false, fmt.Errorf("failed to create record: %w", err)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up record: %w", err)
	}

	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt
	if err := p.records.Update(ctx, record); err != nil {
		return false, fmt.Errorf("failed to update record: %w", err)
	}
	return false, nil
}

// emit delivers a progress event when a callback is registered.
func emit(fn func(Event), event Event) {
	if fn != nil {
		fn(event)
	}
}

// sleep waits out the configured delay unless the context ends first.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
