package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"marquee/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRecord(themeID string) *core.EnrichedRecord {
	return &core.EnrichedRecord{
		ThemeID:  themeID,
		Kind:     core.KindMovie,
		Title:    "The Lighthouse",
		Year:     "2019",
		Genre:    "Thriller",
		Director: "Robert Eggers",
		Cast: []core.CastMember{
			{RealName: "Willem Dafoe", CharacterName: "Thomas Wake"},
			{RealName: "Robert Pattinson", CharacterName: "Ephraim Winslow"},
		},
		Language:      "English",
		Duration:      "109 min",
		ContentRating: "R",
		Rating:        4.2,
		Quality:       "HD",
		Synopsis:      "Two lighthouse keepers descend into madness on a remote island.",
		WhyWatch:      "A hypnotic two-hander with career-best performances.",
		WhereWatch:    "Streaming now on Marquee.",
		WatchURL:      "https://watch.example.com/titles/the-lighthouse",
		PosterURL:     "https://images.example.com/posters/the-lighthouse.jpg",
		Hashtags:      []string{"#TheLighthouse", "#ThrillerMovies"},
		Keywords:      []string{"the lighthouse movie", "the lighthouse plot"},
		Reviews: []core.Review{
			{ID: "r1", Author: "FilmCritic42", Rating: 4.5, Content: "A masterpiece.", Date: "2025-06-01", Source: "Public Review Database"},
		},
	}
}

func TestNewStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewStore(tmpDir)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	if store.db == nil {
		t.Error("Store database should not be nil")
	}

	// Check that database file was created
	dbPath := filepath.Join(tmpDir, "marquee.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file should be created")
	}
}

func TestNewStore_InvalidDirectory(t *testing.T) {
	// Try to create store in a file (not directory)
	tmpDir := t.TempDir()
	invalidPath := filepath.Join(tmpDir, "file.txt")
	_ = os.WriteFile(invalidPath, []byte("test"), 0644)

	_, err := NewStore(invalidPath)
	if err == nil {
		t.Error("Expected error when creating store in invalid directory")
	}
}

func TestCreate_FindByThemeID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := testRecord("movie-42")
	if err := store.Create(ctx, record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if record.ID == "" {
		t.Error("Create should assign an ID")
	}
	if record.CreatedAt.IsZero() || record.UpdatedAt.IsZero() {
		t.Error("Create should stamp timestamps")
	}

	found, err := store.FindByThemeID(ctx, "movie-42")
	if err != nil {
		t.Fatalf("FindByThemeID failed: %v", err)
	}

	if found.ThemeID != "movie-42" {
		t.Errorf("Expected theme_id movie-42, got %s", found.ThemeID)
	}
	if found.Kind != core.KindMovie {
		t.Errorf("Expected kind movie, got %s", found.Kind)
	}
	if found.Title != record.Title {
		t.Errorf("Expected title %q, got %q", record.Title, found.Title)
	}
	if found.Rating != 4.2 {
		t.Errorf("Expected rating 4.2, got %.1f", found.Rating)
	}
	if len(found.Cast) != 2 || found.Cast[0].RealName != "Willem Dafoe" {
		t.Errorf("Cast did not round-trip: %+v", found.Cast)
	}
	if len(found.Reviews) != 1 || found.Reviews[0].Author != "FilmCritic42" {
		t.Errorf("Reviews did not round-trip: %+v", found.Reviews)
	}
	if len(found.Hashtags) != 2 || found.Hashtags[0] != "#TheLighthouse" {
		t.Errorf("Hashtags did not round-trip: %+v", found.Hashtags)
	}
	if len(found.Keywords) != 2 {
		t.Errorf("Keywords did not round-trip: %+v", found.Keywords)
	}
}

func TestFindByThemeID_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.FindByThemeID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCreate_DuplicateThemeID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, testRecord("movie-42")); err != nil {
		t.Fatalf("First create failed: %v", err)
	}

	err := store.Create(ctx, testRecord("movie-42"))
	if !errors.Is(err, ErrDuplicateTheme) {
		t.Errorf("Expected ErrDuplicateTheme, got %v", err)
	}
}

func TestUpdate_FullOverwrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := testRecord("movie-42")
	if err := store.Create(ctx, record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated := testRecord("movie-42")
	updated.Title = "The Lighthouse (Restored)"
	updated.Rating = 4.8
	updated.Hashtags = nil
	if err := store.Update(ctx, updated); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	found, err := store.FindByThemeID(ctx, "movie-42")
	if err != nil {
		t.Fatalf("FindByThemeID failed: %v", err)
	}
	if found.Title != "The Lighthouse (Restored)" {
		t.Errorf("Expected overwritten title, got %q", found.Title)
	}
	if found.Rating != 4.8 {
		t.Errorf("Expected overwritten rating, got %.1f", found.Rating)
	}
	if len(found.Hashtags) != 0 {
		t.Errorf("Expected hashtags cleared by overwrite, got %+v", found.Hashtags)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.Update(context.Background(), testRecord("missing"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpsert_CreateThenUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := testRecord("movie-42")
	created, err := store.Upsert(ctx, first)
	if err != nil {
		t.Fatalf("First upsert failed: %v", err)
	}
	if !created {
		t.Error("First upsert should create")
	}

	second := testRecord("movie-42")
	second.Title = "The Lighthouse (Second Run)"
	created, err = store.Upsert(ctx, second)
	if err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}
	if created {
		t.Error("Second upsert should update, not create")
	}
	if second.ID != first.ID {
		t.Errorf("Expected upsert to preserve record ID %s, got %s", first.ID, second.ID)
	}

	count, err := store.CountRecords(ctx)
	if err != nil {
		t.Fatalf("CountRecords failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected exactly 1 record after two upserts, got %d", count)
	}

	found, err := store.FindByThemeID(ctx, "movie-42")
	if err != nil {
		t.Fatalf("FindByThemeID failed: %v", err)
	}
	if found.Title != "The Lighthouse (Second Run)" {
		t.Errorf("Expected updated title, got %q", found.Title)
	}
	if !found.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("Expected upsert to preserve created_at %v, got %v", first.CreatedAt, found.CreatedAt)
	}
}

func TestListRecords(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	movie := testRecord("movie-1")
	if err := store.Create(ctx, movie); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	show := testRecord("show-1")
	show.Kind = core.KindShow
	show.Title = "Harbor Lights"
	if err := store.Create(ctx, show); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	all, err := store.ListRecords(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 records, got %d", len(all))
	}

	shows, err := store.ListRecords(ctx, ListOptions{Kind: core.KindShow})
	if err != nil {
		t.Fatalf("ListRecords with kind filter failed: %v", err)
	}
	if len(shows) != 1 {
		t.Fatalf("Expected 1 show record, got %d", len(shows))
	}
	if shows[0].ThemeID != "show-1" {
		t.Errorf("Expected show-1, got %s", shows[0].ThemeID)
	}

	limited, err := store.ListRecords(ctx, ListOptions{Limit: 1})
	if err != nil {
		t.Fatalf("ListRecords with limit failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("Expected 1 record with limit 1, got %d", len(limited))
	}

	offset, err := store.ListRecords(ctx, ListOptions{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("ListRecords with offset failed: %v", err)
	}
	if len(offset) != 1 {
		t.Fatalf("Expected 1 record with offset 1, got %d", len(offset))
	}
	if limited[0].ThemeID == offset[0].ThemeID {
		t.Error("Offset should advance past the first record")
	}
}

func TestDeleteRecord(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Create(ctx, testRecord("movie-42")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.DeleteRecord(ctx, "movie-42"); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}
	if _, err := store.FindByThemeID(ctx, "movie-42"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteRecord(ctx, "movie-42"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting a missing record, got %v", err)
	}
}

func TestGetStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	movie := testRecord("movie-1")
	movie.Rating = 4.0
	if err := store.Create(ctx, movie); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	show := testRecord("show-1")
	show.Kind = core.KindShow
	show.Rating = 3.0
	if err := store.Create(ctx, show); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stats, err := store.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.RecordCount != 2 {
		t.Errorf("Expected 2 records, got %d", stats.RecordCount)
	}
	if stats.MovieCount != 1 {
		t.Errorf("Expected 1 movie, got %d", stats.MovieCount)
	}
	if stats.ShowCount != 1 {
		t.Errorf("Expected 1 show, got %d", stats.ShowCount)
	}
	if stats.AverageRating != 3.5 {
		t.Errorf("Expected average rating 3.5, got %.2f", stats.AverageRating)
	}
	if stats.StoreSize == 0 {
		t.Error("Store size should be non-zero")
	}
}

func TestGetStats_Empty(t *testing.T) {
	store := newTestStore(t)

	stats, err := store.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.RecordCount != 0 {
		t.Errorf("Expected 0 records, got %d", stats.RecordCount)
	}
	if stats.AverageRating != 0 {
		t.Errorf("Expected zero average rating for empty store, got %.2f", stats.AverageRating)
	}
}

func TestTimestampsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := testRecord("movie-42")
	record.CreatedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := store.Create(ctx, record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := store.FindByThemeID(ctx, "movie-42")
	if err != nil {
		t.Fatalf("FindByThemeID failed: %v", err)
	}
	if !found.CreatedAt.Equal(record.CreatedAt) {
		t.Errorf("Expected created_at %v, got %v", record.CreatedAt, found.CreatedAt)
	}
	if found.UpdatedAt.IsZero() {
		t.Error("UpdatedAt should be stamped")
	}
}
