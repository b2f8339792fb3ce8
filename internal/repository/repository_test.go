package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapErrNoRows(t *testing.T) {
	if got := mapErr(sql.ErrNoRows); !errors.Is(got, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", got)
	}
}

func TestMapErrUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "urls_short_url_key"}
	got := mapErr(pgErr)
	if !errors.Is(got, ErrCodeExists) {
		t.Fatalf("expected ErrCodeExists, got %v", got)
	}
	// other constraint classes must not masquerade as duplicates
	if got := mapErr(&pgconn.PgError{Code: "23503"}); errors.Is(got, ErrCodeExists) {
		t.Fatalf("foreign key violation mapped to ErrCodeExists")
	}
}

func TestMapErrUnavailable(t *testing.T) {
	for _, err := range []error{
		context.DeadlineExceeded,
		context.Canceled,
		fmt.Errorf("query: %w", context.DeadlineExceeded),
	} {
		got := mapErr(err)
		if !errors.Is(got, ErrUnavailable) {
			t.Errorf("mapErr(%v): expected ErrUnavailable, got %v", err, got)
		}
		if errors.Is(got, ErrNotFound) {
			t.Errorf("mapErr(%v): timeout surfaced as not found", err)
		}
	}
}

func TestMapErrPassthrough(t *testing.T) {
	err := errors.New("boom")
	if got := mapErr(err); !errors.Is(got, err) {
		t.Fatalf("expected passthrough, got %v", got)
	}
}
