// Package catalog loads the source titles an enrichment run works through
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"marquee/internal/core"
	"marquee/internal/logger"
)

// Options select the slice of the catalog a run covers. Batch parameters
// live here so the enrichment core stays free of them.
type Options struct {
	Kind   core.ContentKind // Empty means both movies and shows
	Offset int              // Number of titles to skip
	Limit  int              // Maximum titles returned (0 = all)
}

// Source enumerates source titles awaiting enrichment. Implementations are
// read-only; the pipeline never writes back to the catalog.
type Source interface {
	List(ctx context.Context, opts Options) ([]core.SourceTitle, error)
}

// FileSource reads titles from a JSON catalog file: an array of
// {id, title, kind, language, release_date} objects.
type FileSource struct {
	path string
}

// NewFileSource creates a catalog source backed by a JSON file
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// List loads the catalog file and returns the selected titles. Entries
// without an id or title are skipped, not fatal.
func (f *FileSource) List(ctx context.Context, opts Options) ([]core.SourceTitle, error) {
	content, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", f.path, err)
	}

	var entries []core.SourceTitle
	if err := json.Unmarshal(content, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", f.path, err)
	}

	log := logger.Get()
	titles := make([]core.SourceTitle, 0, len(entries))
	for i, entry := range entries {
		if entry.ID == "" || entry.Title == "" {
			log.Warn("Skipping catalog entry without id or title", "file", f.path, "index", i)
			continue
		}
		if entry.Kind == "" {
			entry.Kind = core.KindMovie
		}
		if entry.Kind != core.KindMovie && entry.Kind != core.KindShow {
			log.Warn("Skipping catalog entry with unknown kind", "file", f.path, "index", i, "kind", string(entry.Kind))
			continue
		}
		titles = append(titles, entry)
	}

	return selectTitles(titles, opts), nil
}

// StaticSource serves a fixed title list; used by tests and one-off runs.
type StaticSource struct {
	Titles []core.SourceTitle
}

// List returns the selected slice of the static titles.
func (s *StaticSource) List(ctx context.Context, opts Options) ([]core.SourceTitle, error) {
	return selectTitles(s.Titles, opts), nil
}

// selectTitles applies kind filtering, then offset/limit paging.
func selectTitles(titles []core.SourceTitle, opts Options) []core.SourceTitle {
	selected := make([]core.SourceTitle, 0, len(titles))
	for _, title := range titles {
		if opts.Kind != "" && title.Kind != opts.Kind {
			continue
		}
		selected = append(selected, title)
	}

	if opts.Offset >= len(selected) {
		return []core.SourceTitle{}
	}
	selected = selected[opts.Offset:]

	if opts.Limit > 0 && opts.Limit < len(selected) {
		selected = selected[:opts.Limit]
	}
	return selected
}
