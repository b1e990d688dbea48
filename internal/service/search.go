package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/pixgrid/internal/domain"
)

// DefaultSearchTimeout bounds one page fetch when no timeout is configured
const DefaultSearchTimeout = 20 * time.Second

// SearchService runs page fetches against the configured provider
type SearchService struct {
	searcher domain.ImageSearcher
	timeout  time.Duration
	logger   *slog.Logger
}

// NewSearchService creates a new search service
func NewSearchService(
	searcher domain.ImageSearcher,
	timeout time.Duration,
	logger *slog.Logger,
) *SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultSearchTimeout
	}
	return &SearchService{
		searcher: searcher,
		timeout:  timeout,
		logger:   logger,
	}
}

// Fetch retrieves one page. Every failure is returned as a *domain.FetchError
// so the gallery surfaces a single error kind.
func (s *SearchService) Fetch(ctx context.Context, q domain.SearchQuery) (domain.ImagePage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	page, err := s.searcher.Search(ctx, q)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.logger.Debug("search cancelled", "query", q.Text, "page", q.Page)
		} else {
			s.logger.Error("search failed", "error", err, "query", q.Text, "page", q.Page)
		}
		return domain.ImagePage{}, asFetchError(err)
	}

	s.logger.Info("search complete",
		"query", q.Text,
		"page", q.Page,
		"count", len(page.Images),
		"total", page.Total,
		"elapsed", time.Since(start))
	return page, nil
}

// asFetchError normalizes err into a *domain.FetchError
func asFetchError(err error) error {
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewFetchError(domain.FetchNetwork, fmt.Errorf("request timed out: %w", err))
	}
	return domain.NewFetchError(domain.FetchNetwork, err)
}
