package tui

import (
	"image"

	"github.com/mmcdole/pixgrid/internal/domain"
	"github.com/mmcdole/pixgrid/internal/service"
)

// Message types for the TUI

// ErrMsg represents an error outside the search flow
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// SearchResultsMsg carries a fetched page for the fetch tagged Gen
type SearchResultsMsg struct {
	Gen  uint64
	Page domain.ImagePage
}

// SearchFailedMsg reports a failed fetch for the fetch tagged Gen
type SearchFailedMsg struct {
	Gen uint64
	Err error
}

// PreviewLoadedMsg carries the scaled full image for the overlay
type PreviewLoadedMsg struct {
	ImageID string
	Preview service.Preview
}

// PreviewFailedMsg reports a full image that could not be loaded
type PreviewFailedMsg struct {
	ImageID string
	Err     error
}

// ThumbnailLoadedMsg carries a card thumbnail scaled for a Cols x Rows box
type ThumbnailLoadedMsg struct {
	ImageID string
	Cols    int
	Rows    int
	Image   image.Image
}

// ThumbnailFailedMsg reports a card thumbnail that could not be loaded
type ThumbnailFailedMsg struct {
	ImageID string
	Cols    int
	Rows    int
	Err     error
}

// SuggestionsMsg carries history suggestions for the draft Prefix
type SuggestionsMsg struct {
	Prefix      string
	Suggestions []string
}

// HistoryClearedMsg signals that every stored query was removed
type HistoryClearedMsg struct{}

// OpenedExternalMsg signals the image was handed to an external viewer
type OpenedExternalMsg struct {
	Image domain.Image
}

// TickMsg is a general tick message for animations
type TickMsg struct{}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}
