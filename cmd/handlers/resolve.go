package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marquee/internal/core"
	"marquee/internal/llm"
	"marquee/internal/render"
	"marquee/internal/resolve"
	"marquee/internal/reviews"

	"github.com/spf13/cobra"
)

// NewResolveCmd creates the resolve command for one-off metadata probes
func NewResolveCmd() *cobra.Command {
	var (
		year     string
		language string
		kind     string
		saveDir  string
	)

	cmd := &cobra.Command{
		Use:   "resolve [title]",
		Short: "Resolve metadata for a single title",
		Long: `Resolve complete metadata for one title without touching the content
store. Useful for checking what the search and fallback layers produce
before running a full batch.

Examples:
  marquee resolve "The Lighthouse" --year 2019
  marquee resolve "Dark Harbor" --kind show --save enriched`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(strings.Join(args, " "), year, language, kind, saveDir)
		},
	}

	cmd.Flags().StringVar(&year, "year", "", "Release year hint")
	cmd.Flags().StringVar(&language, "language", "", "Language hint (e.g. English)")
	cmd.Flags().StringVar(&kind, "kind", "movie", "Content kind: movie or show")
	cmd.Flags().StringVar(&saveDir, "save", "", "Write the record's markdown and JSON files to this directory")

	return cmd
}

func runResolve(title, year, language, kind, saveDir string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	contentKind := core.ContentKind(kind)
	if !contentKind.Valid() {
		return fmt.Errorf("unknown kind %q: expected movie or show", kind)
	}

	resolver, llmClient, err := newResolverStack(contentKind)
	if err != nil {
		return err
	}
	defer llmClient.Close()

	src := core.SourceTitle{
		ID:          resolve.Slugify(title),
		Title:       title,
		Kind:        contentKind,
		Language:    language,
		ReleaseDate: year,
	}

	fmt.Printf("🔍 Resolving: %q\n\n", title)

	md := resolver.Resolve(ctx, src)

	fmt.Println("✨ Resolved metadata")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("Title:     %s\n", md.Title)
	fmt.Printf("Kind:      %s\n", md.Kind.Noun())
	fmt.Printf("Year:      %s\n", md.Year)
	fmt.Printf("Genre:     %s\n", md.Genre)
	fmt.Printf("Director:  %s\n", md.Director)
	fmt.Printf("Duration:  %s\n", md.Duration)
	fmt.Printf("Language:  %s\n", md.Language)
	fmt.Printf("Rated:     %s\n", md.ContentRating)
	fmt.Printf("Plot:      %s\n", md.Plot)
	fmt.Println("Cast:")
	for _, member := range md.Cast {
		fmt.Printf("  - %s as %s\n", member.RealName, member.CharacterName)
	}
	if md.WatchURL != "" {
		fmt.Printf("Watch:     %s\n", md.WatchURL)
	}
	if md.PosterURL != "" {
		fmt.Printf("Poster:    %s\n", md.PosterURL)
	}
	if md.FallbackUsed {
		fmt.Println("\n💡 Generative fallback contributed to this metadata")
	}

	revs := newSynthesizer().Synthesize(md)
	summary := reviews.Summarize(revs)
	fmt.Printf("\n📝 Reviews preview: %d synthesized, %.1f/5.0 average (%s)\n",
		summary.Count, summary.AverageRating, summary.DominantTone)

	if saveDir == "" {
		return nil
	}

	record := recordFromMetadata(src, md, revs, summary)
	mdPath, jsonPath, err := render.WriteRecordFiles(record, saveDir)
	if err != nil {
		return fmt.Errorf("failed to write record files: %w", err)
	}

	fmt.Printf("\n✅ Record written: %s, %s\n", mdPath, jsonPath)
	return nil
}

// recordFromMetadata builds an exportable record from a probe resolution.
// Copy fields use the deterministic fallbacks; spending generative calls on
// copy is the full pipeline's job.
func recordFromMetadata(src core.SourceTitle, md core.ResolvedMetadata, revs []core.Review, summary core.ReviewSummary) *core.EnrichedRecord {
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
		Quality:       core.DefaultQuality,
		Synopsis:      llm.FallbackSynopsis(md),
		WatchURL:      md.WatchURL,
		PosterURL:     md.PosterURL,
		Hashtags:      llm.FallbackHashtags(md),
		Keywords:      llm.FallbackKeywords(md),
		Reviews:       revs,
	}
}
