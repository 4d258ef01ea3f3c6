// Package persistence provides database implementations
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marquee/internal/core"
	"marquee/internal/store"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresDB implements the Database interface for PostgreSQL
type PostgresDB struct {
	db      *sql.DB
	records RecordRepository
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pgDB := &PostgresDB{db: db}
	pgDB.records = &postgresRecordRepo{db: db}

	return pgDB, nil
}

func (p *PostgresDB) Records() RecordRepository { return p.records }

func (p *PostgresDB) Close() error {
	return p.db.Close()
}

func (p *PostgresDB) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// postgresRecordRepo implements RecordRepository for PostgreSQL
type postgresRecordRepo struct {
	db *sql.DB
}

// recordColumns keeps every SELECT aligned with scanRecord.
const recordColumns = `id, theme, theme_id, title, year, genre, director, cast_json,
	language, duration, content_rating, rating, quality, synopsis, why_watch,
	where_watch, watch_url, poster_url, hashtags_json, keywords_json,
	reviews_json, created_at, updated_at`

func (r *postgresRecordRepo) FindByThemeID(ctx context.Context, themeID string) (*core.EnrichedRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM enriched_records WHERE theme_id = $1`
	record, err := scanRecord(r.db.QueryRowContext(ctx, query, themeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}
	return record, nil
}

func (r *postgresRecordRepo) Create(ctx context.Context, record *core.EnrichedRecord) error {
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
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23)
	`

	_, err = r.db.ExecContext(ctx, query,
		record.ID, string(record.Kind), record.ThemeID, record.Title,
		record.Year, record.Genre, record.Director, castJSON,
		record.Language, record.Duration, record.ContentRating, record.Rating,
		record.Quality, record.Synopsis, record.WhyWatch, record.WhereWatch,
		record.WatchURL, record.PosterURL, hashtagsJSON, keywordsJSON,
		reviewsJSON, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", store.ErrDuplicateTheme, record.ThemeID)
		}
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

func (r *postgresRecordRepo) Update(ctx context.Context, record *core.EnrichedRecord) error {
	record.UpdatedAt = time.Now().UTC()

	castJSON, hashtagsJSON, keywordsJSON, reviewsJSON, err := marshalNested(record)
	if err != nil {
		return err
	}

	query := `
		UPDATE enriched_records SET
			theme = $2, title = $3, year = $4, genre = $5, director = $6,
			cast_json = $7, language = $8, duration = $9, content_rating = $10,
			rating = $11, quality = $12, synopsis = $13, why_watch = $14,
			where_watch = $15, watch_url = $16, poster_url = $17,
			hashtags_json = $18, keywords_json = $19, reviews_json = $20,
			updated_at = $21
		WHERE theme_id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		record.ThemeID, string(record.Kind), record.Title, record.Year,
		record.Genre, record.Director, castJSON, record.Language,
		record.Duration, record.ContentRating, record.Rating, record.Quality,
		record.Synopsis, record.WhyWatch, record.WhereWatch, record.WatchURL,
		record.PosterURL, hashtagsJSON, keywordsJSON, reviewsJSON,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, record.ThemeID)
	}
	return nil
}

func (r *postgresRecordRepo) Upsert(ctx context.Context, record *core.EnrichedRecord) (bool, error) {
	existing, err := r.FindByThemeID(ctx, record.ThemeID)
	if errors.Is(err, store.ErrNotFound) {
		if err := r.Create(ctx, record); err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt
	if err := r.Update(ctx, record); err != nil {
		return false, err
	}
	return false, nil
}

func (r *postgresRecordRepo) ListRecords(ctx context.Context, opts store.ListOptions) ([]core.EnrichedRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100 // Default limit
	}

	query := `SELECT ` + recordColumns + ` FROM enriched_records`
	args := []any{}
	if opts.Kind != "" {
		query += ` WHERE theme = $1 ORDER BY updated_at DESC LIMIT $2 OFFSET $3`
		args = append(args, string(opts.Kind), limit, opts.Offset)
	} else {
		query += ` ORDER BY updated_at DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, opts.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
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

func (r *postgresRecordRepo) CountRecords(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM enriched_records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

func (r *postgresRecordRepo) DeleteRecord(ctx context.Context, themeID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM enriched_records WHERE theme_id = $1`, themeID)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, themeID)
	}
	return nil
}

// GetStats returns the same statistics shape as the SQLite store so the CLI
// can report on either backend. Size comes from the table relation.
func (r *postgresRecordRepo) GetStats(ctx context.Context) (*store.StoreStats, error) {
	stats := &store.StoreStats{}

	counts := map[string]*int{
		`SELECT COUNT(*) FROM enriched_records`:                       &stats.RecordCount,
		`SELECT COUNT(*) FROM enriched_records WHERE theme = 'movie'`: &stats.MovieCount,
		`SELECT COUNT(*) FROM enriched_records WHERE theme = 'show'`:  &stats.ShowCount,
	}
	for query, target := range counts {
		if err := r.db.QueryRowContext(ctx, query).Scan(target); err != nil {
			return nil, fmt.Errorf("failed to get count: %w", err)
		}
	}

	var avg sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, `SELECT AVG(rating) FROM enriched_records`).Scan(&avg); err != nil {
		return nil, fmt.Errorf("failed to get average rating: %w", err)
	}
	if avg.Valid {
		stats.AverageRating = avg.Float64
	}

	if err := r.db.QueryRowContext(ctx, `SELECT pg_total_relation_size('enriched_records')`).Scan(&stats.StoreSize); err != nil {
		return nil, fmt.Errorf("failed to get table size: %w", err)
	}

	var last sql.NullTime
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(updated_at) FROM enriched_records`).Scan(&last); err != nil {
		return nil, fmt.Errorf("failed to get last update: %w", err)
	}
	if last.Valid {
		stats.LastUpdated = last.Time
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
	var castJSON, hashtagsJSON, keywordsJSON, reviewsJSON []byte

	err := row.Scan(
		&record.ID, &theme, &record.ThemeID, &record.Title,
		&record.Year, &record.Genre, &record.Director, &castJSON,
		&record.Language, &record.Duration, &record.ContentRating, &record.Rating,
		&record.Quality, &record.Synopsis, &record.WhyWatch, &record.WhereWatch,
		&record.WatchURL, &record.PosterURL, &hashtagsJSON, &keywordsJSON,
		&reviewsJSON, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Kind = core.ContentKind(theme)
	if len(castJSON) > 0 {
		if err := json.Unmarshal(castJSON, &record.Cast); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cast: %w", err)
		}
	}
	if len(hashtagsJSON) > 0 {
		if err := json.Unmarshal(hashtagsJSON, &record.Hashtags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal hashtags: %w", err)
		}
	}
	if len(keywordsJSON) > 0 {
		if err := json.Unmarshal(keywordsJSON, &record.Keywords); err != nil {
			return nil, fmt.Errorf("failed to unmarshal keywords: %w", err)
		}
	}
	if len(reviewsJSON) > 0 {
		if err := json.Unmarshal(reviewsJSON, &record.Reviews); err != nil {
			return nil, fmt.Errorf("failed to unmarshal reviews: %w", err)
		}
	}
	return &record, nil
}

// marshalNested renders the record's slice fields as JSONB column values.
func marshalNested(record *core.EnrichedRecord) (cast, hashtags, keywords, reviews []byte, err error) {
	if cast, err = json.Marshal(record.Cast); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal cast: %w", err)
	}
	if hashtags, err = json.Marshal(record.Hashtags); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal hashtags: %w", err)
	}
	if keywords, err = json.Marshal(record.Keywords); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal keywords: %w", err)
	}
	if reviews, err = json.Marshal(record.Reviews); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal reviews: %w", err)
	}
	return cast, hashtags, keywords, reviews, nil
}

// isUniqueViolation reports whether err is the Postgres unique_violation
// error (class 23505) raised by the theme_id constraint.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
