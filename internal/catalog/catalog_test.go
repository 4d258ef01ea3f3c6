package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"marquee/internal/core"
)

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write catalog file: %v", err)
	}
	return path
}

func TestFileSource_List(t *testing.T) {
	path := writeCatalogFile(t, `[
		{"id": "movie-1", "title": "The Lighthouse", "kind": "movie", "language": "English", "release_date": "2019-10-18"},
		{"id": "show-1", "title": "Harbor Lights", "kind": "show", "release_date": "2021"}
	]`)

	source := NewFileSource(path)
	titles, err := source.List(context.Background(), Options{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(titles) != 2 {
		t.Fatalf("Expected 2 titles, got %d", len(titles))
	}
	if titles[0].ID != "movie-1" {
		t.Errorf("Expected id movie-1, got %s", titles[0].ID)
	}
	if titles[0].Kind != core.KindMovie {
		t.Errorf("Expected kind movie, got %s", titles[0].Kind)
	}
	if titles[0].Language != "English" {
		t.Errorf("Expected language English, got %s", titles[0].Language)
	}
	if titles[1].Year() != "2021" {
		t.Errorf("Expected year 2021, got %s", titles[1].Year())
	}
}

func TestFileSource_DefaultsKindToMovie(t *testing.T) {
	path := writeCatalogFile(t, `[{"id": "t1", "title": "Untagged Title"}]`)

	titles, err := NewFileSource(path).List(context.Background(), Options{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(titles) != 1 {
		t.Fatalf("Expected 1 title, got %d", len(titles))
	}
	if titles[0].Kind != core.KindMovie {
		t.Errorf("Expected kind to default to movie, got %s", titles[0].Kind)
	}
}

func TestFileSource_SkipsInvalidEntries(t *testing.T) {
	path := writeCatalogFile(t, `[
		{"id": "", "title": "No ID"},
		{"id": "t2", "title": ""},
		{"id": "t3", "title": "Bad Kind", "kind": "podcast"},
		{"id": "t4", "title": "Good Title", "kind": "movie"}
	]`)

	titles, err := NewFileSource(path).List(context.Background(), Options{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(titles) != 1 {
		t.Fatalf("Expected 1 valid title, got %d", len(titles))
	}
	if titles[0].ID != "t4" {
		t.Errorf("Expected the valid entry t4, got %s", titles[0].ID)
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	source := NewFileSource(filepath.Join(t.TempDir(), "missing.json"))
	if _, err := source.List(context.Background(), Options{}); err == nil {
		t.Error("Expected error for missing catalog file")
	}
}

func TestFileSource_MalformedJSON(t *testing.T) {
	path := writeCatalogFile(t, `{"not": "an array"}`)
	if _, err := NewFileSource(path).List(context.Background(), Options{}); err == nil {
		t.Error("Expected error for malformed catalog JSON")
	}
}

func TestStaticSource_Selection(t *testing.T) {
	source := &StaticSource{Titles: []core.SourceTitle{
		{ID: "m1", Title: "Movie One", Kind: core.KindMovie},
		{ID: "s1", Title: "Show One", Kind: core.KindShow},
		{ID: "m2", Title: "Movie Two", Kind: core.KindMovie},
		{ID: "m3", Title: "Movie Three", Kind: core.KindMovie},
	}}

	tests := []struct {
		name     string
		opts     Options
		expected []string
	}{
		{
			name:     "no options returns all",
			opts:     Options{},
			expected: []string{"m1", "s1", "m2", "m3"},
		},
		{
			name:     "kind filter",
			opts:     Options{Kind: core.KindMovie},
			expected: []string{"m1", "m2", "m3"},
		},
		{
			name:     "offset skips",
			opts:     Options{Offset: 2},
			expected: []string{"m2", "m3"},
		},
		{
			name:     "limit caps",
			opts:     Options{Limit: 2},
			expected: []string{"m1", "s1"},
		},
		{
			name:     "kind then paging",
			opts:     Options{Kind: core.KindMovie, Offset: 1, Limit: 1},
			expected: []string{"m2"},
		},
		{
			name:     "offset past end",
			opts:     Options{Offset: 10},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			titles, err := source.List(context.Background(), tt.opts)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(titles) != len(tt.expected) {
				t.Fatalf("Expected %d titles, got %d", len(tt.expected), len(titles))
			}
			for i, id := range tt.expected {
				if titles[i].ID != id {
					t.Errorf("Expected id %s at position %d, got %s", id, i, titles[i].ID)
				}
			}
		})
	}
}
