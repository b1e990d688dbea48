package domain

import "context"

// ImageSearcher is implemented by every image provider backend.
// One call issues exactly one HTTP request.
type ImageSearcher interface {
	Search(ctx context.Context, q SearchQuery) (ImagePage, error)
}

// HistoryStore persists submitted search queries, newest first.
// It never stores results.
type HistoryStore interface {
	Add(query string) error
	Recent(limit int) ([]string, error)
	Remove(query string) error
	Clear() error
	Close() error
}
