package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"marquee/internal/catalog"
	"marquee/internal/config"
	"marquee/internal/core"
	"marquee/internal/cost"
	"marquee/internal/enrich"
	"marquee/internal/fetch"
	"marquee/internal/llm"
	"marquee/internal/logger"
	"marquee/internal/resolve"
	"marquee/internal/reviews"
	"marquee/internal/search"
	"marquee/internal/tui"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"
)

// NewEnrichCmd creates the enrich command that runs the full pipeline
func NewEnrichCmd() *cobra.Command {
	var (
		inputFile string
		kind      string
		offset    int
		limit     int
		delay     time.Duration
		dryRun    bool
		watch     bool
	)

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Enrich catalog titles into complete records",
		Long: `Run the full enrichment pipeline over a batch of catalog titles.

For each title the pipeline resolves metadata (search snippets, then
generative fallback, then deterministic defaults), synthesizes audience
reviews, generates promotional copy, and upserts exactly one record per
theme ID into the content store.

Examples:
  # Enrich every title in the configured catalog
  marquee enrich

  # Enrich the next 25 shows from a specific catalog file
  marquee enrich --input catalog.json --kind show --offset 50 --limit 25

  # Estimate API costs without making any calls
  marquee enrich --dry-run

  # Follow the run in a live full-screen view
  marquee enrich --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("delay") {
				delay = config.GetEnrichDelay()
			}
			return runEnrich(inputFile, kind, offset, limit, delay, dryRun, watch)
		},
	}

	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Catalog file (defaults to catalog.path from config)")
	cmd.Flags().StringVar(&kind, "kind", "", "Only enrich titles of this kind: movie or show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Skip this many catalog titles")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum titles to enrich (0 = all)")
	cmd.Flags().DurationVar(&delay, "delay", 2*time.Second, "Pause between titles")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Estimate costs without making API calls")
	cmd.Flags().BoolVar(&watch, "watch", false, "Show live progress in a full-screen view")

	return cmd
}

func runEnrich(inputFile, kind string, offset, limit int, delay time.Duration, dryRun, watch bool) error {
	cfg := config.Get()

	if inputFile == "" {
		inputFile = cfg.Catalog.Path
	}
	if kind == "" {
		kind = cfg.Catalog.Kind
	}
	catalogKind := core.ContentKind(kind)
	if kind != "" && !catalogKind.Valid() {
		return fmt.Errorf("unknown kind %q: expected movie or show", kind)
	}

	logger.Info("Starting enrichment run", "input", inputFile, "kind", kind, "offset", offset, "limit", limit, "dry_run", dryRun)

	source := catalog.NewFileSource(inputFile)
	titles, err := source.List(context.Background(), catalog.Options{Kind: catalogKind, Offset: offset, Limit: limit})
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if len(titles) == 0 {
		logger.Warn("No titles selected from catalog", "input", inputFile)
		fmt.Println("⚠️  No titles selected from the catalog")
		return nil
	}

	if dryRun {
		return runCostEstimation(titles)
	}

	// One batch process per data dir. The store's unique index is the real
	// uniqueness guarantee; the lock keeps two runs from interleaving.
	if err := os.MkdirAll(cfg.App.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	lock := flock.New(filepath.Join(cfg.App.DataDir, "marquee.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another marquee enrich run is already using %s", cfg.App.DataDir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("Failed to release run lock", "error", err.Error())
		}
	}()

	backend, closeStore, err := openRecordStore()
	if err != nil {
		return err
	}
	defer closeRecordStore(closeStore)

	resolver, llmClient, err := newResolverStack(catalogKind)
	if err != nil {
		return err
	}
	defer llmClient.Close()

	pipeline := enrich.NewPipeline(resolver, newSynthesizer(), llmClient, backend)

	var stats enrich.Stats
	if watch {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		stats, err = tui.Watch(len(titles), cancel, func(onProgress func(enrich.Event)) (enrich.Stats, error) {
			return pipeline.Run(ctx, titles, enrich.Options{Delay: delay, OnProgress: onProgress})
		})
	} else {
		fmt.Printf("🎬 Enriching %d titles from %s\n\n", len(titles), inputFile)
		stats, err = pipeline.Run(context.Background(), titles, enrich.Options{Delay: delay, OnProgress: printProgress})
	}

	if errors.Is(err, context.Canceled) {
		fmt.Println("\n⚠️  Run cancelled")
		err = nil
	}

	printRunSummary(stats)

	if err != nil {
		return fmt.Errorf("enrichment run aborted: %w", err)
	}
	return nil
}

// runCostEstimation prints the projected generative API cost for a batch
// without making any calls.
func runCostEstimation(titles []core.SourceTitle) error {
	logger.Info("Dry run mode - performing cost estimation", "titles", len(titles))

	model := config.GetGeminiModel()
	if model == "" {
		model = llm.DefaultModel
	}

	estimate, err := cost.EstimateRunCost(titles, model)
	if err != nil {
		return fmt.Errorf("failed to estimate costs: %w", err)
	}

	fmt.Print(estimate.FormatEstimate())
	return nil
}

// newSynthesizer builds the review synthesizer, seeded when configured so
// repeated runs produce identical review sets.
func newSynthesizer() *reviews.Synthesizer {
	if seed := config.Get().Reviews.Seed; seed != 0 {
		return reviews.NewSeededSynthesizer(seed)
	}
	return reviews.NewSynthesizer()
}

// newResolverStack builds the resolver with its search, generation and page
// fetch collaborators from configuration. The search provider is optional:
// when it cannot be built the resolver leans on the generative fallback.
func newResolverStack(kind core.ContentKind) (*resolve.Resolver, *llm.Client, error) {
	cfg := config.Get()

	providerType := search.ProviderType(cfg.Search.DefaultProvider)
	provider, err := search.NewProviderFactory().CreateProvider(providerType, config.GetSearchProviderConfig(cfg.Search.DefaultProvider))
	if err != nil {
		logger.Warn("Search provider unavailable, relying on generative fallback", "provider", cfg.Search.DefaultProvider, "error", err.Error())
		provider = nil
	}

	llmClient, err := llm.NewClient(cfg.AI.Gemini.Model)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	var fetcher resolve.PageFetcher
	if cfg.Search.FetchPages {
		timeout, err := time.ParseDuration(cfg.Search.Timeout)
		if err != nil {
			timeout = 0
		}
		fetcher = fetch.NewClient(timeout)
	}

	resolver := resolve.NewResolver(provider, llmClient, fetcher, resolve.Options{
		Kind:             kind,
		SnippetCount:     cfg.Search.SnippetCount,
		MaxResults:       cfg.Search.MaxResults,
		FetchPages:       cfg.Search.FetchPages,
		WatchURLTemplate: cfg.Enrich.WatchURLTemplate,
		PosterTemplate:   cfg.Enrich.PosterURLTemplate,
	})
	return resolver, llmClient, nil
}

// printProgress writes one line per finished title in plain-terminal mode.
func printProgress(event enrich.Event) {
	switch {
	case event.Err != nil:
		fmt.Printf("[%d/%d] ❌ %s: %v\n", event.Index+1, event.Total, event.Title, event.Err)
	case event.Created:
		fmt.Printf("[%d/%d] ✅ %s created%s\n", event.Index+1, event.Total, event.Title, progressNote(event))
	default:
		fmt.Printf("[%d/%d] ✅ %s updated%s\n", event.Index+1, event.Total, event.Title, progressNote(event))
	}
}

// progressNote annotates a progress line with how the title degraded.
func progressNote(event enrich.Event) string {
	switch {
	case event.Fallback:
		return " (generated metadata)"
	case event.Degraded:
		return " (degraded copy)"
	default:
		return ""
	}
}

// printRunSummary prints the final stats block after a run.
func printRunSummary(stats enrich.Stats) {
	fmt.Println()
	fmt.Println("📊 Enrichment Summary")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("Titles:   %d\n", stats.Titles)
	fmt.Printf("Created:  %d\n", stats.Created)
	fmt.Printf("Updated:  %d\n", stats.Updated)
	fmt.Printf("Degraded: %d\n", stats.Degraded)
	fmt.Printf("Failed:   %d\n", stats.Failed)
	fmt.Printf("Elapsed:  %s\n", stats.Elapsed.Round(time.Millisecond))
}
