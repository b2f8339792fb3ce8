package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"urlshortener/internal/model"
)

var (
	// ErrNotFound means no mapping exists for the given key.
	ErrNotFound = errors.New("mapping not found")
	// ErrCodeExists means an insert hit the short_url unique constraint.
	ErrCodeExists = errors.New("short code already exists")
	// ErrUnavailable means the store could not be reached in time.
	// It is never returned for a missing row.
	ErrUnavailable = errors.New("store unavailable")
)

const pgUniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS urls (
	id           BIGSERIAL PRIMARY KEY,
	original_url TEXT        NOT NULL,
	short_url    VARCHAR(64) NOT NULL UNIQUE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	clicks       BIGINT      NOT NULL DEFAULT 0
)`

const columns = `id, short_url, original_url, created_at, clicks`

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// InitSchema creates the urls table and its lookup index if absent.
// Safe to run against an already-initialized database.
func (r *Repo) InitSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create urls table: %w", mapErr(err))
	}
	idx := `CREATE INDEX IF NOT EXISTS idx_urls_original_url ON urls (original_url)`
	if _, err := r.DB.ExecContext(ctx, idx); err != nil {
		return fmt.Errorf("create original_url index: %w", mapErr(err))
	}
	return nil
}

func (r *Repo) Ping(ctx context.Context) error {
	if err := r.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *Repo) GetByShortCode(ctx context.Context, code string) (*model.URLMapping, error) {
	q := `SELECT ` + columns + ` FROM urls WHERE short_url = $1`
	return scanMapping(r.DB.QueryRowContext(ctx, q, code))
}

// GetByOriginalURL returns the canonical mapping for original. The column
// carries no unique constraint, so the oldest row wins if a race ever
// produced more than one.
func (r *Repo) GetByOriginalURL(ctx context.Context, original string) (*model.URLMapping, error) {
	q := `SELECT ` + columns + ` FROM urls WHERE original_url = $1 ORDER BY id LIMIT 1`
	return scanMapping(r.DB.QueryRowContext(ctx, q, original))
}

// Create inserts a new mapping with zero clicks. A short_url unique
// violation comes back as ErrCodeExists.
func (r *Repo) Create(ctx context.Context, code, original string) (*model.URLMapping, error) {
	q := `INSERT INTO urls (short_url, original_url) VALUES ($1, $2) RETURNING ` + columns
	return scanMapping(r.DB.QueryRowContext(ctx, q, code, original))
}

// IncrementClicks bumps the click counter by one and returns the updated
// row. The single UPDATE is atomic on the database side, so concurrent
// redirects to the same code never lose an increment.
func (r *Repo) IncrementClicks(ctx context.Context, code string) (*model.URLMapping, error) {
	q := `UPDATE urls SET clicks = clicks + 1 WHERE short_url = $1 RETURNING ` + columns
	return scanMapping(r.DB.QueryRowContext(ctx, q, code))
}

func scanMapping(row *sql.Row) (*model.URLMapping, error) {
	var m model.URLMapping
	if err := row.Scan(&m.ID, &m.ShortCode, &m.OriginalURL, &m.CreatedAt, &m.Clicks); err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

// mapErr translates driver-level failures into the package's sentinels.
func mapErr(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation:
		return fmt.Errorf("%w: %s", ErrCodeExists, pgErr.ConstraintName)
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, driver.ErrBadConn):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
