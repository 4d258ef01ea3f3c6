package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marquee/internal/config"
	"marquee/internal/core"
	"marquee/internal/logger"
	"marquee/internal/persistence"
	"marquee/internal/render"
	"marquee/internal/store"

	"github.com/spf13/cobra"
)

// recordBackend is the slice of the content store the CLI needs. Both the
// SQLite store and the Postgres record repository satisfy it.
type recordBackend interface {
	FindByThemeID(ctx context.Context, themeID string) (*core.EnrichedRecord, error)
	Create(ctx context.Context, record *core.EnrichedRecord) error
	Update(ctx context.Context, record *core.EnrichedRecord) error
	ListRecords(ctx context.Context, opts store.ListOptions) ([]core.EnrichedRecord, error)
	CountRecords(ctx context.Context) (int, error)
	DeleteRecord(ctx context.Context, themeID string) error
	GetStats(ctx context.Context) (*store.StoreStats, error)
}

// openRecordStore opens the backend selected by store.backend and returns
// it with its close function.
func openRecordStore() (recordBackend, func() error, error) {
	cfg := config.Get()

	switch cfg.Store.Backend {
	case "", "sqlite":
		s, err := store.NewStore(cfg.App.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open record store: %w", err)
		}
		return s, s.Close, nil
	case "postgres":
		if cfg.Store.Postgres.URL == "" {
			return nil, nil, fmt.Errorf("postgres backend selected but store.postgres.url is not configured")
		}
		db, err := persistence.NewPostgresDB(cfg.Store.Postgres.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return db.Records(), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}

// closeRecordStore logs a close failure rather than masking the command error.
func closeRecordStore(closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Error("Failed to close record store", err)
	}
}

// NewRecordsCmd creates the records command for inspecting the content store
func NewRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect and export enriched records",
		Long: `Inspect the content store and export enriched records.

Subcommands:
  list    List enriched records
  show    Show one record
  export  Write a record's markdown and JSON files
  stats   Show content store statistics
  delete  Remove a record

Examples:
  marquee records list --kind movie --limit 20
  marquee records show lighthouse-2019
  marquee records export lighthouse-2019 --output enriched
  marquee records stats`,
	}

	cmd.AddCommand(newRecordsListCmd())
	cmd.AddCommand(newRecordsShowCmd())
	cmd.AddCommand(newRecordsExportCmd())
	cmd.AddCommand(newRecordsStatsCmd())
	cmd.AddCommand(newRecordsDeleteCmd())

	return cmd
}

func newRecordsListCmd() *cobra.Command {
	var (
		kind   string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List enriched records",
		Long:  `List enriched records ordered by most recent update.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordsList(kind, limit, offset)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Only list movies or shows")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum records to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "Records to skip")

	return cmd
}

func newRecordsShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show [theme-id]",
		Short: "Show one enriched record",
		Long:  `Render a single record as markdown, or dump it as JSON.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordsShow(args[0], asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the record as JSON")

	return cmd
}

func newRecordsExportCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "export [theme-id...]",
		Short: "Write markdown and JSON files for records",
		Long:  `Export one or more records as presentation-ready markdown plus raw JSON.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordsExport(args, outputDir)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (defaults to output.directory from config)")

	return cmd
}

func newRecordsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show content store statistics",
		Long:  `Display record counts, the average review rating, and storage usage.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordsStats()
		},
	}
}

func newRecordsDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete [theme-id]",
		Short: "Remove a record from the content store",
		Long:  `Delete the enriched record for a theme ID. The source catalog is never touched.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecordsDelete(args[0], force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip confirmation prompt")

	return cmd
}

func runRecordsList(kind string, limit, offset int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	recordKind := core.ContentKind(kind)
	if kind != "" && !recordKind.Valid() {
		return fmt.Errorf("unknown kind %q: expected movie or show", kind)
	}

	backend, closeStore, err := openRecordStore()
	if err != nil {
		return err
	}
	defer closeRecordStore(closeStore)

	records, err := backend.ListRecords(ctx, store.ListOptions{Kind: recordKind, Limit: limit, Offset: offset})
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	total, err := backend.CountRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	if len(records) == 0 {
		fmt.Println("No enriched records found")
		fmt.Println("\nRun 'marquee enrich' to populate the store")
		return nil
	}

	fmt.Printf("📚 Enriched Records (%d of %d)\n", len(records), total)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("%-20s %-6s %-32s %-5s %-6s %s\n", "THEME ID", "KIND", "TITLE", "YEAR", "RATING", "UPDATED")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	for _, record := range records {
		fmt.Printf("%-20s %-6s %-32s %-5s %-6.1f %s\n",
			truncate(record.ThemeID, 20), record.Kind, truncate(record.Title, 32),
			record.Year, record.Rating, record.UpdatedAt.Format("2006-01-02"))
	}

	return nil
}

func runRecordsShow(themeID string, asJSON bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend, closeStore, err := openRecordStore()
	if err != nil {
		return err
	}
	defer closeRecordStore(closeStore)

	record, err := backend.FindByThemeID(ctx, themeID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no record for theme ID %q", themeID)
	}
	if err != nil {
		return fmt.Errorf("failed to load record: %w", err)
	}

	if asJSON {
		data, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Print(render.RenderRecordMarkdown(record))
	return nil
}

func runRecordsExport(themeIDs []string, outputDir string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if outputDir == "" {
		outputDir = config.GetOutputDirectory()
	}

	backend, closeStore, err := openRecordStore()
	if err != nil {
		return err
	}
	defer closeRecordStore(closeStore)

	for _, themeID := range themeIDs {
		record, err := backend.FindByThemeID(ctx, themeID)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no record for theme ID %q", themeID)
		}
		if err != nil {
			return fmt.Errorf("failed to load record: %w", err)
		}

		mdPath, jsonPath, err := render.WriteRecordFiles(record, outputDir)
		if err != nil {
			return fmt.Errorf("failed to export %s: %w", themeID, err)
		}

		fmt.Printf("✅ %s exported: %s, %s\n", themeID, mdPath, jsonPath)
	}

	return nil
}

func runRecordsStats() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend, closeStore, err := openRecordStore()
	if err != nil {
		return err
	}
	defer closeRecordStore(closeStore)

	stats, err := backend.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	fmt.Println("📊 Content Store Statistics")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("🎬 Records: %d (%d movies, %d shows)\n", stats.RecordCount, stats.MovieCount, stats.ShowCount)
	fmt.Printf("⭐ Average rating: %.1f/5.0\n", stats.AverageRating)
	fmt.Printf("💾 Store size: %.2f MB\n", float64(stats.StoreSize)/1024/1024)
	if !stats.LastUpdated.IsZero() {
		fmt.Printf("📅 Last updated: %s\n", stats.LastUpdated.Format("2006-01-02 15:04:05"))
	}

	return nil
}

func runRecordsDelete(themeID string, force bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if !force {
		fmt.Printf("⚠️  This will delete the record for %s. Continue? [y/N]: ", themeID)
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" && response != "yes" {
			fmt.Println("Delete cancelled")
			return nil
		}
	}

	backend, closeStore, err := openRecordStore()
	if err != nil {
		return err
	}
	defer closeRecordStore(closeStore)

	if err := backend.DeleteRecord(ctx, themeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no record for theme ID %q", themeID)
		}
		return fmt.Errorf("failed to delete record: %w", err)
	}

	fmt.Printf("✅ Record %s deleted\n", themeID)
	return nil
}
