// Package viewmodel holds the gallery's search state machine. It performs no
// I/O: intents that need the network return a FetchRequest which the caller
// runs and reports back with FetchSucceeded or FetchFailed.
package viewmodel

import (
	"strings"

	"github.com/mmcdole/pixgrid/internal/domain"
)

// DefaultPageSize matches the page size the gallery has always used
const DefaultPageSize = 12

// Phase is the admission state of the search fetch slot
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FetchRequest is a page fetch the caller must execute.
// Generation tags the request so late responses can be recognised.
type FetchRequest struct {
	Query      string
	Page       int
	PerPage    int
	Generation uint64
}

// SearchQuery converts the request into a provider query
func (r FetchRequest) SearchQuery() domain.SearchQuery {
	return domain.SearchQuery{Text: r.Query, Page: r.Page, PerPage: r.PerPage}
}

// Search owns the query, page cursor, accumulated results and selection.
// It is not safe for concurrent use; the TUI mutates it only from Update.
type Search struct {
	query    string
	page     int
	pageSize int
	results  []domain.Image
	total    int

	phase      Phase
	lastError  error
	generation uint64
	// inflight is the generation of the admitted fetch, valid while loading
	inflight uint64

	selected *domain.Image
}

// NewSearch creates an empty view-model. A non-positive pageSize falls back
// to DefaultPageSize.
func NewSearch(pageSize int) *Search {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Search{
		page:     1,
		pageSize: pageSize,
	}
}

// SubmitQuery starts a new search. Blank text is ignored, as is resubmitting
// the current query unless the last fetch failed. A new query supersedes any
// fetch still in flight.
func (s *Search) SubmitQuery(text string) *FetchRequest {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if text == s.query && s.phase != PhaseFailed {
		return nil
	}

	s.query = text
	s.results = nil
	s.total = 0
	s.page = 1
	s.lastError = nil
	return s.admit()
}

// LoadNextPage requests the page under the cursor. It is a no-op while a
// fetch is in flight or before anything has been loaded.
func (s *Search) LoadNextPage() *FetchRequest {
	if s.phase == PhaseLoading || len(s.results) == 0 {
		return nil
	}
	s.lastError = nil
	return s.admit()
}

// admit claims the fetch slot and returns the request for the current page
func (s *Search) admit() *FetchRequest {
	s.generation++
	s.inflight = s.generation
	s.phase = PhaseLoading
	return &FetchRequest{
		Query:      s.query,
		Page:       s.page,
		PerPage:    s.pageSize,
		Generation: s.generation,
	}
}

// accepts reports whether a completion for gen belongs to the admitted fetch
func (s *Search) accepts(gen uint64) bool {
	return s.phase == PhaseLoading && gen == s.inflight
}

// FetchSucceeded appends a page. It returns false when the response is stale
// and was discarded.
func (s *Search) FetchSucceeded(gen uint64, page domain.ImagePage) bool {
	if !s.accepts(gen) {
		return false
	}
	s.results = append(s.results, page.Images...)
	if page.Total > 0 {
		s.total = page.Total
	}
	s.page++
	s.phase = PhaseIdle
	return true
}

// FetchFailed records err, keeping results that were already loaded. It
// returns false when the response is stale and was discarded.
func (s *Search) FetchFailed(gen uint64, err error) bool {
	if !s.accepts(gen) {
		return false
	}
	s.lastError = err
	s.phase = PhaseFailed
	return true
}

// SelectImage opens the detail overlay for img
func (s *Search) SelectImage(img domain.Image) {
	s.selected = &img
}

// ClearSelection closes the detail overlay
func (s *Search) ClearSelection() {
	s.selected = nil
}

// Accessors

func (s *Search) Query() string           { return s.query }
func (s *Search) Page() int               { return s.page }
func (s *Search) PageSize() int           { return s.pageSize }
func (s *Search) Total() int              { return s.total }
func (s *Search) Phase() Phase            { return s.phase }
func (s *Search) LastError() error        { return s.lastError }
func (s *Search) Generation() uint64      { return s.generation }
func (s *Search) Selected() *domain.Image { return s.selected }

// Results returns a copy of the accumulated results in arrival order
func (s *Search) Results() []domain.Image {
	out := make([]domain.Image, len(s.results))
	copy(out, s.results)
	return out
}

// ResultCount returns the number of accumulated results
func (s *Search) ResultCount() int {
	return len(s.results)
}

// Derived view flags

func (s *Search) IsLoading() bool    { return s.phase == PhaseLoading }
func (s *Search) ShowLoadMore() bool { return len(s.results) > 0 && !s.IsLoading() }
func (s *Search) ShowError() bool    { return s.lastError != nil }
func (s *Search) ShowOverlay() bool  { return s.selected != nil }

// IsEmptyResult reports a completed search that found nothing
func (s *Search) IsEmptyResult() bool {
	return s.query != "" && s.phase == PhaseIdle && len(s.results) == 0
}
