package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/pixgrid/internal/domain"
	"github.com/mmcdole/pixgrid/internal/service"
	"github.com/mmcdole/pixgrid/internal/viewmodel"
)

// opener hands a URL to an external program (consumer-defined interface)
type opener interface {
	Open(url string) error
}

// Command factories for async operations

// SearchCmd executes a fetch admitted by the view-model
func SearchCmd(ctx context.Context, svc *service.SearchService, req viewmodel.FetchRequest) tea.Cmd {
	return func() tea.Msg {
		page, err := svc.Fetch(ctx, req.SearchQuery())
		if err != nil {
			return SearchFailedMsg{Gen: req.Generation, Err: err}
		}
		return SearchResultsMsg{Gen: req.Generation, Page: page}
	}
}

// PreviewCmd loads the full image for the overlay
func PreviewCmd(ctx context.Context, svc *service.PreviewService, img domain.Image, cols, rows int) tea.Cmd {
	return func() tea.Msg {
		url := img.FullURL
		if url == "" {
			url = img.ThumbnailURL
		}
		p, err := svc.Load(ctx, url, cols, rows)
		if err != nil {
			return PreviewFailedMsg{ImageID: img.ID, Err: err}
		}
		return PreviewLoadedMsg{ImageID: img.ID, Preview: p}
	}
}

// ThumbnailCmd loads a card thumbnail sized to the cols x rows card box
func ThumbnailCmd(ctx context.Context, svc *service.PreviewService, img domain.Image, cols, rows int) tea.Cmd {
	return func() tea.Msg {
		p, err := svc.Load(ctx, img.ThumbnailURL, cols, rows)
		if err != nil {
			return ThumbnailFailedMsg{ImageID: img.ID, Cols: cols, Rows: rows, Err: err}
		}
		return ThumbnailLoadedMsg{ImageID: img.ID, Cols: cols, Rows: rows, Image: p.Image}
	}
}

// SuggestCmd looks up history entries matching prefix
func SuggestCmd(svc *service.HistoryService, prefix string) tea.Cmd {
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		suggestions, err := svc.Suggest(prefix)
		if err != nil {
			return ErrMsg{Err: err, Context: "reading history"}
		}
		return SuggestionsMsg{Prefix: prefix, Suggestions: suggestions}
	}
}

// RecordQueryCmd stores a submitted query in history, then reloads the
// suggestions for the now empty search bar
func RecordQueryCmd(svc *service.HistoryService, query string) tea.Cmd {
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		if err := svc.Record(query); err != nil {
			return ErrMsg{Err: err, Context: "saving history"}
		}
		suggestions, err := svc.Suggest("")
		if err != nil {
			return ErrMsg{Err: err, Context: "reading history"}
		}
		return SuggestionsMsg{Prefix: "", Suggestions: suggestions}
	}
}

// ForgetQueryCmd drops one query from history and reloads the suggestions
// for draft
func ForgetQueryCmd(svc *service.HistoryService, query, draft string) tea.Cmd {
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		if err := svc.Forget(query); err != nil {
			return ErrMsg{Err: err, Context: "updating history"}
		}
		suggestions, err := svc.Suggest(draft)
		if err != nil {
			return ErrMsg{Err: err, Context: "reading history"}
		}
		return SuggestionsMsg{Prefix: draft, Suggestions: suggestions}
	}
}

// ClearHistoryCmd removes every stored query
func ClearHistoryCmd(svc *service.HistoryService) tea.Cmd {
	if svc == nil {
		return nil
	}
	return func() tea.Msg {
		if err := svc.Clear(); err != nil {
			return ErrMsg{Err: err, Context: "clearing history"}
		}
		return HistoryClearedMsg{}
	}
}

// OpenExternalCmd opens the full-size image in an external viewer
func OpenExternalCmd(o opener, img domain.Image) tea.Cmd {
	return func() tea.Msg {
		url := img.FullURL
		if url == "" {
			url = img.PageURL
		}
		if err := o.Open(url); err != nil {
			return ErrMsg{Err: err, Context: "opening viewer"}
		}
		return OpenedExternalMsg{Image: img}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
