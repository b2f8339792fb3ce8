package service

import (
	"context"
	"errors"
	"fmt"

	"urlshortener/internal/model"
	"urlshortener/internal/repository"
	"urlshortener/internal/util"
)

// Store is the persistence surface the service needs.
// *repository.Repo implements it.
type Store interface {
	GetByShortCode(ctx context.Context, code string) (*model.URLMapping, error)
	GetByOriginalURL(ctx context.Context, original string) (*model.URLMapping, error)
	Create(ctx context.Context, code, original string) (*model.URLMapping, error)
	IncrementClicks(ctx context.Context, code string) (*model.URLMapping, error)
	Ping(ctx context.Context) error
}

var (
	ErrInvalidURL  = errors.New("invalid url")
	ErrInvalidCode = errors.New("invalid custom code")
	// ErrCodeTaken means the requested custom code already maps a
	// different URL.
	ErrCodeTaken = errors.New("custom code already taken")
)

type Service struct {
	Store   Store
	CodeLen int
}

func NewService(st Store, codeLen int) *Service {
	if codeLen <= 0 {
		codeLen = util.DefaultCodeLength
	}
	return &Service{Store: st, CodeLen: codeLen}
}

// Shorten returns the mapping for original, creating it if absent.
// Re-shortening an already-known URL is idempotent: the existing row comes
// back untouched, custom code or not. A fresh mapping gets customCode when
// supplied, otherwise the deterministic generated code.
func (s *Service) Shorten(ctx context.Context, original, customCode string) (*model.URLMapping, error) {
	if !util.ValidateURL(original) {
		return nil, ErrInvalidURL
	}

	if m, err := s.Store.GetByOriginalURL(ctx, original); err == nil {
		return m, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	code := customCode
	if code != "" {
		if !util.ValidateCustomCode(code) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCode, code)
		}
		// Pre-check only; the insert's unique constraint is the
		// final authority.
		if _, err := s.Store.GetByShortCode(ctx, code); err == nil {
			return nil, fmt.Errorf("%w: %q", ErrCodeTaken, code)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	} else {
		code = util.ShortCode(original, s.CodeLen)
	}

	m, err := s.Store.Create(ctx, code, original)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, repository.ErrCodeExists) {
		return nil, err
	}

	// Insert conflicted after the checks above passed. If a racing request
	// already shortened the same URL, converge on the winner. Otherwise the
	// clash is real: a taken custom code, or a truncated-hash collision
	// with an unrelated URL, which is not retried with a longer code.
	if existing, lookupErr := s.Store.GetByOriginalURL(ctx, original); lookupErr == nil {
		return existing, nil
	}
	if customCode != "" {
		return nil, fmt.Errorf("%w: %q", ErrCodeTaken, customCode)
	}
	return nil, err
}

// Resolve maps code to its target URL and counts the visit. The increment
// happens exactly once per successful call, inside the store's atomic
// update, before the target is returned.
func (s *Service) Resolve(ctx context.Context, code string) (string, error) {
	m, err := s.Store.IncrementClicks(ctx, code)
	if err != nil {
		return "", err
	}
	return m.OriginalURL, nil
}

// Stats returns the current mapping snapshot without counting a visit.
func (s *Service) Stats(ctx context.Context, code string) (*model.URLMapping, error) {
	return s.Store.GetByShortCode(ctx, code)
}

func (s *Service) Health(ctx context.Context) error {
	return s.Store.Ping(ctx)
}
