// Package store implements the default SQLite-backed content store for
// enriched records. The theme_id uniqueness invariant lives here, in the
// schema, rather than in application locking.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"marquee/internal/core"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// Store represents the SQLite-based content store
type Store struct {
	db   *sql.DB
	path string
}

// ListOptions filter and page record listings. Shared with the Postgres
// backend so the two stay interchangeable behind one interface.
type ListOptions struct {
	Kind   core.ContentKind // Empty means both movies and shows
	Limit  int              // Maximum number of results (0 applies the default)
	Offset int              // Number of results to skip
}

// defaultListLimit caps unpaged listings.
const defaultListLimit = 100

// NewStore creates a new store instance with SQLite database
func NewStore(dataDir string) (*Store, error) {
	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "marquee.db")
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:   db,
		path: dbPath,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables
func (s *Store) initialize() error {
	// One row per enriched title; theme_id carries the uniqueness invariant.
	// Nested values (cast, reviews, tags) are stored as JSON text.
	recordsTable := `
	CREATE TABLE IF NOT EXISTS enriched_records (
		id TEXT PRIMARY KEY,
		theme TEXT NOT NULL,
		theme_id TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		year TEXT,
		genre TEXT,
		director TEXT,
		cast_json TEXT,
		language TEXT,
		duration TEXT,
		content_rating TEXT,
		rating REAL,
		quality TEXT,
		synopsis TEXT,
		why_watch TEXT,
		where_watch TEXT,
		watch_url TEXT,
		poster_url TEXT,
		hashtags_json TEXT,
		keywords_json TEXT,
		reviews_json TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`

	themeIndex := `
	CREATE INDEX IF NOT EXISTS idx_enriched_records_theme
	ON enriched_records (theme);`

	statements := []string{recordsTable, themeIndex}
	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// recordColumns is the canonical column order used by every SELECT so
// scanRecord never drifts from the queries.
const recordColumns = `id, theme, theme_id, title, year, genre, director, cast_json,
	language, duration, content_rating, rating, quality, synopsis, why_watch,
	where_watch, watch_url, poster_url, hashtags_json, keywords_json,
	reviews_json, created_at, updated_at`

// FindByThemeID retrieves the enriched record for a source title, or
// ErrNotFound when the title has never been enriched.
func (s *Store) FindByThemeID(ctx context.Context, themeID string) (*core.EnrichedRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM enriched_records WHERE theme_id = ?`
	record, err := scanRecord(s.db.QueryRowContext(ctx, query, themeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}
	return record, nil
}

// Create inserts a new enriched record. A theme_id collision surfaces as
// ErrDuplicateTheme; with correct find-or-create usage it never fires.
func (s *Store) Create(ctx context.Context, record *core.EnrichedRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	castJSON, hashtagsJSON, keywordsJSON, reviewsJSON, err := marshalNested(record)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO enriched_records
	(` + recordColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		record.ID,
		string(record.Kind),
		record.ThemeID,
		record.Title,
		record.Year,
		record.Genre,
		record.Director,
		castJSON,
		record.Language,
		record.Duration,
		record.ContentRating,
		record.Rating,
		record.Quality,
		record.Synopsis,
		record.WhyWatch,
		record.WhereWatch,
		record.WatchURL,
		record.PosterURL,
		hashtagsJSON,
		keywordsJSON,
		reviewsJSON,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateTheme, record.ThemeID)
		}
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// Update overwrites every field of the record identified by theme_id. This is
// a full overwrite, not a merge: re-running the pipeline replaces the record's
// contents wholesale.
func (s *Store) Update(ctx context.Context, record *core.EnrichedRecord) error {
	record.UpdatedAt = time.Now().UTC()

	castJSON, hashtagsJSON, keywordsJSON, reviewsJSON, err := marshalNested(record)
	if err != nil {
		return err
	}

	query := `
	UPDATE enriched_records SET
		theme = ?, title = ?, year = ?, genre = ?, director = ?, cast_json = ?,
		language = ?, duration = ?, content_rating = ?, rating = ?, quality = ?,
		synopsis = ?, why_watch = ?, where_watch = ?, watch_url = ?,
		poster_url = ?, hashtags_json = ?, keywords_json = ?, reviews_json = ?,
		updated_at = ?
	WHERE theme_id = ?`

	result, err := s.db.ExecContext(ctx, query,
		string(record.Kind),
		record.Title,
		record.Year,
		record.Genre,
		record.Director,
		castJSON,
		record.Language,
		record.Duration,
		record.ContentRating,
		record.Rating,
		record.Quality,
		record.Synopsis,
		record.WhyWatch,
		record.WhereWatch,
		record.WatchURL,
		record.PosterURL,
		hashtagsJSON,
		keywordsJSON,
		reviewsJSON,
		record.UpdatedAt,
		record.ThemeID,
	)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, record.ThemeID)
	}
	return nil
}

// Upsert creates the record when its theme_id is new and fully overwrites it
// otherwise. Returns true when a new record was created.
func (s *Store) Upsert(ctx context.Context, record *core.EnrichedRecord) (bool, error) {
	existing, err := s.FindByThemeID(ctx, record.ThemeID)
	if errors.Is(err, ErrNotFound) {
		if err := s.Create(ctx, record); err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	// Identity and creation time survive the overwrite.
	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt
	if err := s.Update(ctx, record); err != nil {
		return false, err
	}
	return false, nil
}

// ListRecords returns enriched records ordered by most recently updated.
func (s *Store) ListRecords(ctx context.Context, opts ListOptions) ([]core.EnrichedRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT ` + recordColumns + ` FROM enriched_records`
	args := []any{}
	if opts.Kind != "" {
		query += ` WHERE theme = ?`
		args = append(args, string(opts.Kind))
	}
	query += ` ORDER BY updated_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []core.EnrichedRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// CountRecords returns the number of enriched records in the store.
func (s *Store) CountRecords(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM enriched_records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// DeleteRecord removes the record for a theme ID. Deleting an absent record
// returns ErrNotFound.
func (s *Store) DeleteRecord(ctx context.Context, themeID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM enriched_records WHERE theme_id = ?`, themeID)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, themeID)
	}
	return nil
}

// StoreStats represents content store statistics
type StoreStats struct {
	RecordCount   int
	MovieCount    int
	ShowCount     int
	AverageRating float64
	StoreSize     int64
	LastUpdated   time.Time
}

// GetStats returns statistics about the content store
func (s *Store) GetStats(ctx context.Context) (*StoreStats, error) {
	stats := &StoreStats{}

	counts := map[string]*int{
		`SELECT COUNT(*) FROM enriched_records`:                       &stats.RecordCount,
		`SELECT COUNT(*) FROM enriched_records WHERE theme = 'movie'`: &stats.MovieCount,
		`SELECT COUNT(*) FROM enriched_records WHERE theme = 'show'`:  &stats.ShowCount,
	}
	for query, target := range counts {
		if err := s.db.QueryRowContext(ctx, query).Scan(target); err != nil {
			return nil, fmt.Errorf("failed to get count: %w", err)
		}
	}

	var avg sql.NullFloat64
	if err := s.db.QueryRowContext(ctx, `SELECT AVG(rating) FROM enriched_records`).Scan(&avg); err != nil {
		return nil, fmt.Errorf("failed to get average rating: %w", err)
	}
	if avg.Valid {
		stats.AverageRating = avg.Float64
	}

	// Store size comes from the database file itself
	if fileInfo, err := os.Stat(s.path); err == nil {
		stats.StoreSize = fileInfo.Size()
		stats.LastUpdated = fileInfo.ModTime()
	}

	return stats, nil
}

// scanner abstracts sql.Row and sql.Rows so one scan helper serves both.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one row in recordColumns order.
func scanRecord(row scanner) (*core.EnrichedRecord, error) {
	var record core.EnrichedRecord
	var theme string
	var castJSON, hashtagsJSON, keywordsJSON, reviewsJSON sql.NullString

	err := row.Scan(
		&record.ID,
		&theme,
		&record.ThemeID,
		&record.Title,
		&record.Year,
		&record.Genre,
		&record.Director,
		&castJSON,
		&record.Language,
		&record.Duration,
		&record.ContentRating,
		&record.Rating,
		&record.Quality,
		&record.Synopsis,
		&record.WhyWatch,
		&record.WhereWatch,
		&record.WatchURL,
		&record.PosterURL,
		&hashtagsJSON,
		&keywordsJSON,
		&reviewsJSON,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Kind = core.ContentKind(theme)
	if err := unmarshalInto(castJSON, &record.Cast); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cast: %w", err)
	}
	if err := unmarshalInto(hashtagsJSON, &record.Hashtags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hashtags: %w", err)
	}
	if err := unmarshalInto(keywordsJSON, &record.Keywords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keywords: %w", err)
	}
	if err := unmarshalInto(reviewsJSON, &record.Reviews); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reviews: %w", err)
	}
	return &record, nil
}

// marshalNested renders the record's slice fields as JSON column values.
func marshalNested(record *core.EnrichedRecord) (cast, hashtags, keywords, reviews string, err error) {
	fields := []struct {
		name  string
		value any
		out   *string
	}{
		{"cast", record.Cast, &cast},
		{"hashtags", record.Hashtags, &hashtags},
		{"keywords", record.Keywords, &keywords},
		{"reviews", record.Reviews, &reviews},
	}
	for _, field := range fields {
		encoded, merr := json.Marshal(field.value)
		if merr != nil {
			return "", "", "", "", fmt.Errorf("failed to marshal %s: %w", field.name, merr)
		}
		*field.out = string(encoded)
	}
	return cast, hashtags, keywords, reviews, nil
}

// unmarshalInto decodes a nullable JSON column. NULL and empty values leave
// the target at its zero value.
func unmarshalInto(column sql.NullString, target any) error {
	if !column.Valid || column.String == "" || column.String == "null" {
		return nil
	}
	return json.Unmarshal([]byte(column.String), target)
}

// isUniqueViolation reports whether err is the SQLite unique-constraint
// error for the theme_id index.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
