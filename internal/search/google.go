package search

import (
	"context"
	"fmt"
	"time"

	customsearch "google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"marquee/internal/logger"
)

// GoogleProvider implements Provider using the Google Custom Search API
type GoogleProvider struct {
	apiKey    string
	searchID  string
	svc       *customsearch.Service
	rateLimit time.Duration
	lastCall  time.Time
}

// NewGoogleProvider creates a new Google Custom Search provider
func NewGoogleProvider(apiKey, searchID string) *GoogleProvider {
	return &GoogleProvider{
		apiKey:    apiKey,
		searchID:  searchID,
		rateLimit: 100 * time.Millisecond, // Google CSE has generous rate limits
	}
}

// GetName returns the name of this provider
func (g *GoogleProvider) GetName() string {
	return "Google Custom Search"
}

// service lazily builds the customsearch client. Construction needs a
// context, which the constructor does not have.
func (g *GoogleProvider) service(ctx context.Context) (*customsearch.Service, error) {
	if g.svc != nil {
		return g.svc, nil
	}
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google CSE service: %w", err)
	}
	g.svc = svc
	return svc, nil
}

// Search performs a search using the Google Custom Search API
func (g *GoogleProvider) Search(ctx context.Context, query string, config Config) ([]Result, error) {
	// Respect rate limiting
	if elapsed := time.Since(g.lastCall); elapsed < g.rateLimit {
		time.Sleep(g.rateLimit - elapsed)
	}
	g.lastCall = time.Now()

	svc, err := g.service(ctx)
	if err != nil {
		return nil, err
	}

	// Google CSE allows at most 10 results per request
	num := config.MaxResults
	if num <= 0 || num > 10 {
		num = 10
	}

	call := svc.Cse.List().Q(query).Cx(g.searchID).Num(int64(num))
	if config.Language != "" {
		call = call.Hl(config.Language)
	}

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("google CSE request failed: %w", err)
	}

	// Convert to Result format
	var results []Result
	for i, item := range resp.Items {
		results = append(results, Result{
			URL:     item.Link,
			Title:   item.Title,
			Snippet: item.Snippet,
			Domain:  item.DisplayLink,
			Source:  "Google",
			Rank:    i + 1,
		})
	}

	logger.Info("Google Custom Search completed", "query", query, "results_found", len(results))

	return results, nil
}
