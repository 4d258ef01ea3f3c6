package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marquee/internal/config"
	"marquee/internal/search"

	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command for probing the search layer
func NewSearchCmd() *cobra.Command {
	var (
		provider   string
		maxResults int
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Probe the search provider",
		Long: `Run a raw query against a search provider and print the ranked
snippets the metadata extractor would see.

Examples:
  marquee search "The Lighthouse 2019 movie plot cast"
  marquee search "Dark Harbor" --provider mock`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(strings.Join(args, " "), provider, maxResults)
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "Search provider: serper, google, duckduckgo, mock (defaults from config)")
	cmd.Flags().IntVarP(&maxResults, "max-results", "n", 0, "Maximum results (defaults from config)")

	return cmd
}

func runSearch(query, providerName string, maxResults int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := config.Get()
	if providerName == "" {
		providerName = cfg.Search.DefaultProvider
	}
	if maxResults <= 0 {
		maxResults = cfg.Search.MaxResults
	}

	provider, err := search.NewProviderFactory().CreateProvider(search.ProviderType(providerName), config.GetSearchProviderConfig(providerName))
	if err != nil {
		return fmt.Errorf("failed to create search provider %q: %w", providerName, err)
	}

	fmt.Printf("🔍 Searching via %s: %q\n\n", provider.GetName(), query)

	results, err := provider.Search(ctx, query, search.Config{
		MaxResults: maxResults,
		Language:   cfg.Search.Language,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("❌ No results found")
		return nil
	}

	fmt.Printf("✨ Found %d results:\n\n", len(results))

	for _, result := range results {
		fmt.Printf("[%d] %s\n", result.Rank, result.Title)
		fmt.Printf("    %s\n", result.URL)
		if result.Snippet != "" {
			fmt.Printf("    %s\n", truncate(result.Snippet, 160))
		}
		fmt.Println()
	}

	fmt.Printf("💡 Use 'marquee resolve \"<title>\"' to turn snippets into metadata\n")

	return nil
}

// truncate truncates a string to a maximum length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
