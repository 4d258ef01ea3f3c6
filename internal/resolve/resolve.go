package resolve

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"marquee/internal/core"
	"marquee/internal/extract"
	"marquee/internal/logger"
	"marquee/internal/search"
)

// Blobs shorter than this are considered too thin to mine, triggering the
// optional top-result page fetch.
const minBlobLength = 200

// Generator is the slice of the generative client the resolver needs.
type Generator interface {
	GenerateCast(ctx context.Context, kind core.ContentKind, title, year, language string) []core.CastMember
	GenerateCharacterNames(ctx context.Context, kind core.ContentKind, title string, realNames []string) ([]string, bool)
	GenerateMetadata(ctx context.Context, kind core.ContentKind, title, year, language string) (core.PartialMetadata, bool)
}

// PageFetcher supplies the text of a result page. Optional; a nil fetcher
// disables page fetching regardless of configuration.
type PageFetcher interface {
	FetchPageText(ctx context.Context, url string) (string, error)
}

// Options configure a Resolver.
type Options struct {
	Kind             core.ContentKind // used when a title carries no kind; defaults to movie
	SnippetCount     int              // snippets concatenated into the extraction blob (default 3)
	MaxResults       int              // results requested per search (default 5)
	FetchPages       bool             // append top-result page text when snippets run thin
	WatchURLTemplate string           // %s slot for the slugified title
	PosterTemplate   string           // %s slot for the slugified title
}

// Resolver turns a catalog title into complete metadata. It escalates
// through search-snippet extraction, generative fallback, and deterministic
// defaults; Resolve is total and never returns an error.
type Resolver struct {
	provider  search.Provider
	generator Generator
	fetcher   PageFetcher
	opts      Options
}

// NewResolver creates a resolver. fetcher may be nil.
func NewResolver(provider search.Provider, generator Generator, fetcher PageFetcher, opts Options) *Resolver {
	if !opts.Kind.Valid() {
		opts.Kind = core.KindMovie
	}
	if opts.SnippetCount <= 0 {
		opts.SnippetCount = 3
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 5
	}
	return &Resolver{
		provider:  provider,
		generator: generator,
		fetcher:   fetcher,
		opts:      opts,
	}
}

// Resolve produces complete metadata for src. Every failure degrades to the
// next strategy; the deterministic defaults guarantee a full record even when
// both search and generation are down.
func (r *Resolver) Resolve(ctx context.Context, src core.SourceTitle) core.ResolvedMetadata {
	md := core.ResolvedMetadata{
		Title: src.Title,
		Kind:  r.kindFor(src),
	}

	blob := r.searchBlob(ctx, src)

	var partial core.PartialMetadata
	if blob != "" {
		partial = extract.Extract(blob, src.Title)
	}

	// Escalate to generation when extraction found none of the fields that
	// make a record worth keeping.
	if !hasCoreFields(partial) {
		generated, ok := r.generator.GenerateMetadata(ctx, md.Kind, src.Title, src.Year(), src.Language)
		md.FallbackUsed = true
		if ok {
			partial = mergePartial(partial, generated)
		} else {
			logger.Warn("Metadata generation failed, applying defaults", "title", src.Title)
		}
	}

	md.Year = partial.Year
	md.Genre = partial.Genre
	md.Director = partial.Director
	md.Plot = partial.Plot
	md.Duration = partial.Duration
	md.Language = partial.Language
	md.ContentRating = partial.ContentRating
	md.Cast = r.resolveCast(ctx, src, partial.Cast)

	// Catalog values always win over anything extracted or generated.
	if year := src.Year(); year != "" {
		md.Year = year
	}
	if src.Language != "" {
		md.Language = src.Language
	}

	applyDefaults(&md)

	slug := Slugify(md.Title)
	if r.opts.WatchURLTemplate != "" {
		md.WatchURL = fmt.Sprintf(r.opts.WatchURLTemplate, slug)
	}
	if r.opts.PosterTemplate != "" {
		md.PosterURL = fmt.Sprintf(r.opts.PosterTemplate, slug)
	}

	return md
}

// searchBlob queries the provider and concatenates the leading snippets.
// Failures return an empty blob; the caller escalates.
func (r *Resolver) searchBlob(ctx context.Context, src core.SourceTitle) string {
	if r.provider == nil {
		return ""
	}

	query := r.buildQuery(src)
	results, err := r.provider.Search(ctx, query, search.Config{
		MaxResults: r.opts.MaxResults,
		Language:   searchLanguage(src.Language),
	})
	if err != nil {
		logger.Warn("Search failed, escalating to generation", "title", src.Title, "error", err.Error())
		return ""
	}
	if len(results) == 0 {
		return ""
	}

	var parts []string
	for i, result := range results {
		if i >= r.opts.SnippetCount {
			break
		}
		if snippet := strings.TrimSpace(result.Snippet); snippet != "" {
			parts = append(parts, snippet)
		}
	}
	blob := strings.Join(parts, " ")

	if r.opts.FetchPages && r.fetcher != nil && len(blob) < minBlobLength {
		if text, err := r.fetcher.FetchPageText(ctx, results[0].URL); err == nil && text != "" {
			blob = strings.TrimSpace(blob + " " + text)
		} else if err != nil {
			logger.Debug("Page fetch failed", "url", results[0].URL, "error", err.Error())
		}
	}

	return blob
}

// kindFor prefers the kind carried by the catalog title, so mixed batches
// resolve each title as what it is.
func (r *Resolver) kindFor(src core.SourceTitle) core.ContentKind {
	if src.Kind.Valid() {
		return src.Kind
	}
	return r.opts.Kind
}

// buildQuery assembles the search query from the catalog fields.
func (r *Resolver) buildQuery(src core.SourceTitle) string {
	parts := []string{src.Title}
	if year := src.Year(); year != "" {
		parts = append(parts, year)
	}
	if src.Language != "" {
		parts = append(parts, src.Language)
	}
	parts = append(parts, r.kindFor(src).Noun(), "plot cast")
	return strings.Join(parts, " ")
}

// resolveCast fills character names for extracted pairs and falls back to
// full cast generation when extraction came up empty.
func (r *Resolver) resolveCast(ctx context.Context, src core.SourceTitle, cast []core.CastMember) []core.CastMember {
	if len(cast) == 0 {
		return r.generator.GenerateCast(ctx, r.kindFor(src), src.Title, src.Year(), src.Language)
	}

	var missing []string
	for _, member := range cast {
		if member.CharacterName == "" {
			missing = append(missing, member.RealName)
		}
	}
	if len(missing) == 0 {
		return cast
	}

	// One batched call for every unresolved name; answers pair positionally.
	names, ok := r.generator.GenerateCharacterNames(ctx, r.kindFor(src), src.Title, missing)
	if !ok {
		names = make([]string, len(missing))
	}

	next := 0
	for i := range cast {
		if cast[i].CharacterName != "" {
			continue
		}
		if next < len(names) && names[next] != "" {
			cast[i].CharacterName = names[next]
		} else {
			cast[i].CharacterName = fmt.Sprintf("Character %d", i+1)
		}
		next++
	}

	return cast
}

// hasCoreFields reports whether extraction found enough to skip generation.
// Cast and duration alone do not make a usable record.
func hasCoreFields(partial core.PartialMetadata) bool {
	return partial.Year != "" || partial.Genre != "" || partial.Director != "" || partial.Plot != ""
}

// mergePartial fills empty fields of extracted from generated. Extracted
// values always win.
func mergePartial(extracted, generated core.PartialMetadata) core.PartialMetadata {
	if extracted.Year == "" {
		extracted.Year = generated.Year
	}
	if extracted.Genre == "" {
		extracted.Genre = generated.Genre
	}
	if extracted.Director == "" {
		extracted.Director = generated.Director
	}
	if extracted.Plot == "" {
		extracted.Plot = generated.Plot
	}
	if extracted.Duration == "" {
		extracted.Duration = generated.Duration
	}
	if extracted.Language == "" {
		extracted.Language = generated.Language
	}
	if extracted.ContentRating == "" {
		extracted.ContentRating = generated.ContentRating
	}
	if len(extracted.Cast) == 0 {
		extracted.Cast = generated.Cast
	}
	return extracted
}

// applyDefaults fills every still-empty field with its deterministic default
// so a record is always complete.
func applyDefaults(md *core.ResolvedMetadata) {
	if md.Year == "" {
		md.Year = core.DefaultYear
	}
	if md.Genre == "" {
		md.Genre = core.DefaultGenre
	}
	if md.Director == "" {
		md.Director = core.DefaultDirector
	}
	if md.Plot == "" {
		md.Plot = core.DefaultPlot(md.Title)
	}
	if md.Duration == "" {
		md.Duration = core.DefaultDuration
	}
	if md.Language == "" {
		md.Language = core.DefaultLanguage
	}
	if md.ContentRating == "" {
		md.ContentRating = core.DefaultContentRating
	}
	if len(md.Cast) == 0 {
		md.Cast = core.DefaultCast()
	}
}

// searchLanguage maps a catalog language name to a search hl hint. Only
// languages the catalog actually carries are mapped; everything else defaults
// to English.
func searchLanguage(language string) string {
	switch strings.ToLower(language) {
	case "", "english":
		return "en"
	case "hindi":
		return "hi"
	case "gujarati":
		return "gu"
	case "punjabi":
		return "pa"
	case "marathi":
		return "mr"
	case "bengali":
		return "bn"
	case "tamil":
		return "ta"
	case "telugu":
		return "te"
	default:
		return "en"
	}
}

var (
	slugStripRegex = regexp.MustCompile(`[^a-z0-9 -]`)
	slugJoinRegex  = regexp.MustCompile(`[ -]+`)
)

// Slugify lowercases a title, strips special characters and joins words with
// hyphens, matching the watch URL scheme.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugStripRegex.ReplaceAllString(slug, "")
	slug = slugJoinRegex.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
