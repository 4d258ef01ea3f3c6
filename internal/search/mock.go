package search

import (
	"context"
	"fmt"
)

// MockProvider implements Provider for testing purposes
type MockProvider struct {
	name    string
	results []Result
	err     error
}

// NewMockProvider creates a new mock search provider. The canned results
// carry snippet text shaped like real title search results so extraction
// code paths exercise their patterns.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		name: "Mock",
		results: []Result{
			{
				URL:     "https://films.example.com/reviews/1",
				Title:   "Review roundup",
				Snippet: "A 2019 thriller directed by Alan Park, starring Jane Doe and John Smith. Runtime: 109 minutes.",
				Domain:  "films.example.com",
				Source:  "Mock",
				Rank:    1,
			},
			{
				URL:     "https://cinema.example.org/articles/2",
				Title:   "Feature article",
				Snippet: "Jane Doe as Mara Quinn anchors this taut drama about obsession and memory.",
				Domain:  "cinema.example.org",
				Source:  "Mock",
				Rank:    2,
			},
			{
				URL:     "https://screens.example.net/news/3",
				Title:   "Streaming guide",
				Snippet: "Now streaming in select regions; critics called it the year's most assured debut.",
				Domain:  "screens.example.net",
				Source:  "Mock",
				Rank:    3,
			},
		},
	}
}

// GetName returns the name of this provider
func (m *MockProvider) GetName() string {
	return m.name
}

// Search returns the canned results, or the configured error
func (m *MockProvider) Search(ctx context.Context, query string, config Config) ([]Result, error) {
	if m.err != nil {
		return nil, m.err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("mock search canceled: %w", err)
	}

	maxResults := config.MaxResults
	if maxResults <= 0 || maxResults > len(m.results) {
		maxResults = len(m.results)
	}

	results := make([]Result, maxResults)
	copy(results, m.results[:maxResults])

	return results, nil
}

// SetResults allows customization of mock results for testing
func (m *MockProvider) SetResults(results []Result) {
	m.results = results
}

// SetError makes every subsequent Search call fail with err
func (m *MockProvider) SetError(err error) {
	m.err = err
}

// SetName allows customization of provider name for testing
func (m *MockProvider) SetName(name string) {
	m.name = name
}
