package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/pixgrid/internal/tui/styles"
)

// SearchBar is the query input with history recall
type SearchBar struct {
	input textinput.Model
	width int

	// suggestions are history entries matching draft, best first
	suggestions []string
	suggestIdx  int // -1 while editing the draft
	draft       string
}

// NewSearchBar creates a focused search bar
func NewSearchBar() SearchBar {
	ti := textinput.New()
	ti.Placeholder = "Search images..."
	ti.CharLimit = 100
	ti.Prompt = "Search: "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle
	ti.Focus()

	return SearchBar{
		input:      ti,
		suggestIdx: -1,
	}
}

// Focus focuses the input
func (s *SearchBar) Focus() tea.Cmd {
	return s.input.Focus()
}

// Blur removes focus from the input
func (s *SearchBar) Blur() {
	s.input.Blur()
}

// Focused reports whether the input has focus
func (s SearchBar) Focused() bool {
	return s.input.Focused()
}

// SetWidth sets the total rendered width including the border
func (s *SearchBar) SetWidth(width int) {
	s.width = width
	s.input.Width = max(width-BorderWidth-HorizontalPadding-len(s.input.Prompt)-1, 1)
}

// Value returns the typed query
func (s SearchBar) Value() string {
	return s.input.Value()
}

// SetValue replaces the typed query
func (s *SearchBar) SetValue(v string) {
	s.input.SetValue(v)
	s.input.CursorEnd()
	s.draft = v
	s.suggestIdx = -1
}

// Draft returns the text the user typed, ignoring any recalled suggestion
func (s SearchBar) Draft() string {
	return s.draft
}

// Reset clears the input after a submit
func (s *SearchBar) Reset() {
	s.input.Reset()
	s.draft = ""
	s.suggestIdx = -1
	s.suggestions = nil
}

// SetSuggestions replaces the history suggestions for the current draft
func (s *SearchBar) SetSuggestions(suggestions []string) {
	s.suggestions = suggestions
	s.suggestIdx = -1
}

// Suggestions returns the current history suggestions
func (s SearchBar) Suggestions() []string {
	return s.suggestions
}

// Highlighted returns the recalled suggestion, or "" while editing the draft
func (s SearchBar) Highlighted() string {
	if s.suggestIdx < 0 || s.suggestIdx >= len(s.suggestions) {
		return ""
	}
	return s.suggestions[s.suggestIdx]
}

// DropSuggestion removes query from the suggestions and puts the draft back
func (s *SearchBar) DropSuggestion(query string) {
	var kept []string
	for _, q := range s.suggestions {
		if q != query {
			kept = append(kept, q)
		}
	}
	s.suggestions = kept
	s.suggestIdx = -1
	s.input.SetValue(s.draft)
	s.input.CursorEnd()
}

// Update handles typing and history recall. changed reports whether the draft
// text was edited, so the caller can refresh suggestions.
func (s SearchBar) Update(msg tea.Msg) (bar SearchBar, cmd tea.Cmd, changed bool) {
	if !s.input.Focused() {
		return s, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, SearchBarKeys.Previous):
			s.recall(s.suggestIdx + 1)
			return s, nil, false
		case key.Matches(keyMsg, SearchBarKeys.Next):
			s.recall(s.suggestIdx - 1)
			return s, nil, false
		}
	}

	s.input, cmd = s.input.Update(msg)
	if v := s.input.Value(); v != s.draft {
		s.draft = v
		s.suggestIdx = -1
		changed = true
	}
	return s, cmd, changed
}

// recall shows suggestion idx, or the draft when idx drops below zero
func (s *SearchBar) recall(idx int) {
	if len(s.suggestions) == 0 {
		return
	}
	idx = min(idx, len(s.suggestions)-1)
	if idx < 0 {
		s.suggestIdx = -1
		s.input.SetValue(s.draft)
	} else {
		s.suggestIdx = idx
		s.input.SetValue(s.suggestions[idx])
	}
	s.input.CursorEnd()
}

// View renders the search bar
func (s SearchBar) View() string {
	style := styles.InactiveBorder
	if s.input.Focused() {
		style = styles.ActiveBorder
	}

	line := s.input.View()
	if s.input.Focused() && len(s.suggestions) > 0 {
		hint := fmt.Sprintf("  ↑ %d recent", len(s.suggestions))
		if s.suggestIdx >= 0 {
			hint = fmt.Sprintf("  %d/%d", s.suggestIdx+1, len(s.suggestions))
		}
		line += styles.DimStyle.Render(hint)
	}

	frameW, _ := style.GetFrameSize()
	return style.
		Width(max(s.width-frameW, 1)).
		Padding(0, 1).
		Render(line)
}
