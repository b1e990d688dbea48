package service

import (
	"log/slog"
	"strings"

	"github.com/mmcdole/pixgrid/internal/domain"
	"github.com/sahilm/fuzzy"
)

// HistoryService records submitted queries and suggests them back
type HistoryService struct {
	store  domain.HistoryStore
	limit  int
	logger *slog.Logger
}

// NewHistoryService creates a history service. limit caps how many recent
// queries are considered for suggestions.
func NewHistoryService(store domain.HistoryStore, limit int, logger *slog.Logger) *HistoryService {
	if logger == nil {
		logger = slog.Default()
	}
	if limit <= 0 {
		limit = 50
	}
	return &HistoryService{
		store:  store,
		limit:  limit,
		logger: logger,
	}
}

// Record stores a submitted query
func (s *HistoryService) Record(query string) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Add(query); err != nil {
		s.logger.Error("failed to record query", "error", err, "query", query)
		return err
	}
	return nil
}

// Recent returns stored queries, newest first
func (s *HistoryService) Recent() ([]string, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.Recent(s.limit)
}

// Suggest returns stored queries matching prefix. An empty prefix returns the
// full history newest first; otherwise queries are ranked by fuzzy score.
func (s *HistoryService) Suggest(prefix string) ([]string, error) {
	recent, err := s.Recent()
	if err != nil {
		return nil, err
	}

	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return recent, nil
	}

	matches := fuzzy.Find(strings.ToLower(prefix), lowerAll(recent))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, recent[m.Index])
	}
	return out, nil
}

// Forget removes a query from history
func (s *HistoryService) Forget(query string) error {
	if s.store == nil {
		return nil
	}
	return s.store.Remove(query)
}

// Clear wipes the history
func (s *HistoryService) Clear() error {
	if s.store == nil {
		return nil
	}
	return s.store.Clear()
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
