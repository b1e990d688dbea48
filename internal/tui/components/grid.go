package components

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/pixgrid/internal/domain"
	"github.com/mmcdole/pixgrid/internal/service"
	"github.com/mmcdole/pixgrid/internal/tui/styles"
)

// Layout constants for grid
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Padding inside the border (Padding(0,1) = 1 left + 1 right)
	HorizontalPadding = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2

	// Title line at top of content area
	TitleLines = 1

	// Cell rows for the thumbnail at the top of a card
	ThumbnailLines = 6

	// Text lines under the thumbnail: tags, size, author
	CardTextLines = 3

	// MinCardWidth is the narrowest card used when fitting columns to width
	MinCardWidth = 26
)

// CardHeight is the rendered height of one card including its border
const CardHeight = ThumbnailLines + CardTextLines + BorderHeight

// cellBox is a size in terminal cells
type cellBox struct {
	cols, rows int
}

// thumbnail is a rendered card image for one box size
type thumbnail struct {
	rendered string
	box      cellBox
	failed   bool
}

// Grid shows loaded images as cards in rows
type Grid struct {
	images []domain.Image

	// Selection, in filtered index space
	cursor    int
	rowOffset int

	// Dimensions
	width        int
	height       int
	fixedColumns int // 0 = fit to width
	columns      int
	visibleRows  int
	focused      bool
	showAuthor   bool

	title     string
	emptyText string

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filteredIdx  []int // indices into images

	// Thumbnails by image ID, and the box each pending load was asked for
	thumbs  map[string]thumbnail
	pending map[string]cellBox
}

// NewGrid creates a new grid component
func NewGrid(columns int, showAuthor bool) Grid {
	ti := textinput.New()
	ti.Placeholder = "filter by tag..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	g := Grid{
		fixedColumns: max(columns, 0),
		showAuthor:   showAuthor,
		filterInput:  ti,
		columns:      1,
		visibleRows:  1,
		thumbs:       make(map[string]thumbnail),
		pending:      make(map[string]cellBox),
	}
	return g
}

// SetImages replaces the grid content, keeping the cursor where possible
func (g *Grid) SetImages(images []domain.Image) {
	g.images = images
	if g.filterActive {
		g.applyFilter(false)
	}
	g.clampCursor()
}

// Reset drops all images and any filter
func (g *Grid) Reset() {
	g.images = nil
	g.cursor = 0
	g.rowOffset = 0
	g.thumbs = make(map[string]thumbnail)
	g.pending = make(map[string]cellBox)
	g.clearFilter()
}

// SetTitle sets the text shown on the first line
func (g *Grid) SetTitle(title string) {
	g.title = title
}

// SetEmptyText sets the hint shown when there is nothing to display
func (g *Grid) SetEmptyText(text string) {
	g.emptyText = text
}

// SetSize updates the component dimensions
func (g *Grid) SetSize(width, height int) {
	g.width = width
	g.height = height
	g.recalcLayout()
}

// recalcLayout derives columns and visible rows from the size
func (g *Grid) recalcLayout() {
	inner := g.width - BorderWidth - HorizontalPadding
	if g.fixedColumns > 0 {
		g.columns = g.fixedColumns
	} else {
		g.columns = max(inner/MinCardWidth, 1)
	}

	interiorHeight := g.height - BorderHeight - TitleLines - ScrollIndicatorLines
	if g.filterActive {
		interiorHeight--
	}
	g.visibleRows = max(interiorHeight/CardHeight, 1)
	g.ensureVisible()
}

// SetFocused sets the focus state
func (g *Grid) SetFocused(focused bool) {
	g.focused = focused
}

// IsFocused returns the focus state
func (g Grid) IsFocused() bool {
	return g.focused
}

// Cursor returns the cursor position in filtered index space
func (g Grid) Cursor() int {
	return g.cursor
}

// Count returns the number of visible (filtered) images
func (g Grid) Count() int {
	if g.filteredIdx != nil {
		return len(g.filteredIdx)
	}
	return len(g.images)
}

// IsEmpty returns true if there are no cards to show
func (g Grid) IsEmpty() bool {
	return g.Count() == 0
}

// Selected returns the image under the cursor
func (g Grid) Selected() *domain.Image {
	if g.cursor < 0 || g.cursor >= g.Count() {
		return nil
	}
	img := g.images[g.mapIndex(g.cursor)]
	return &img
}

// SelectIndex moves the cursor to images[idx]. It returns false when idx is
// hidden by the active filter or out of range.
func (g *Grid) SelectIndex(idx int) bool {
	if idx < 0 || idx >= len(g.images) {
		return false
	}
	if g.filteredIdx == nil {
		g.cursor = idx
		g.ensureVisible()
		return true
	}
	for pos, raw := range g.filteredIdx {
		if raw == idx {
			g.cursor = pos
			g.ensureVisible()
			return true
		}
	}
	return false
}

// cardWidth returns the total width of one card including its border
func (g Grid) cardWidth() int {
	inner := g.width - BorderWidth - HorizontalPadding
	return max(inner/max(g.columns, 1), 8)
}

// ThumbnailBox returns the cell box a card thumbnail is drawn in
func (g Grid) ThumbnailBox() (cols, rows int) {
	frameW, _ := styles.CardStyle.GetFrameSize()
	return max(g.cardWidth()-frameW, 1), ThumbnailLines
}

// visibleImages returns the images on the rows currently on screen
func (g Grid) visibleImages() []domain.Image {
	cols := max(g.columns, 1)
	start := g.rowOffset * cols
	end := min((g.rowOffset+g.visibleRows)*cols, g.Count())

	var visible []domain.Image
	for i := start; i < end; i++ {
		visible = append(visible, g.images[g.mapIndex(i)])
	}
	return visible
}

// RequestThumbnails returns the on-screen images that have no thumbnail for
// the current box and marks them pending. Off-screen cards are never returned.
func (g *Grid) RequestThumbnails() []domain.Image {
	cols, rows := g.ThumbnailBox()
	box := cellBox{cols, rows}

	var missing []domain.Image
	for _, img := range g.visibleImages() {
		if img.ThumbnailURL == "" {
			continue
		}
		if t, ok := g.thumbs[img.ID]; ok && t.box == box {
			continue
		}
		if p, ok := g.pending[img.ID]; ok && p == box {
			continue
		}
		g.pending[img.ID] = box
		missing = append(missing, img)
	}
	return missing
}

// SetThumbnail stores a loaded thumbnail. It returns false, dropping img, when
// no load for imageID at that box size is pending.
func (g *Grid) SetThumbnail(imageID string, cols, rows int, img image.Image) bool {
	box := cellBox{cols, rows}
	if !g.takePending(imageID, box) {
		return false
	}
	g.thumbs[imageID] = thumbnail{rendered: RenderHalfBlocks(img), box: box}
	return true
}

// SetThumbnailFailed marks a thumbnail that could not be loaded so it is not
// requested again at the same size
func (g *Grid) SetThumbnailFailed(imageID string, cols, rows int) bool {
	box := cellBox{cols, rows}
	if !g.takePending(imageID, box) {
		return false
	}
	g.thumbs[imageID] = thumbnail{box: box, failed: true}
	return true
}

func (g *Grid) takePending(imageID string, box cellBox) bool {
	if p, ok := g.pending[imageID]; !ok || p != box {
		return false
	}
	delete(g.pending, imageID)
	return true
}

// mapIndex maps a cursor position to the index in images
func (g Grid) mapIndex(i int) int {
	if g.filteredIdx != nil && i < len(g.filteredIdx) {
		return g.filteredIdx[i]
	}
	return i
}

func (g *Grid) clampCursor() {
	count := g.Count()
	if g.cursor >= count {
		g.cursor = count - 1
	}
	if g.cursor < 0 {
		g.cursor = 0
	}
	g.ensureVisible()
}

// ensureVisible scrolls so the cursor row is on screen
func (g *Grid) ensureVisible() {
	row := g.cursor / max(g.columns, 1)
	if row < g.rowOffset {
		g.rowOffset = row
	}
	if row >= g.rowOffset+g.visibleRows {
		g.rowOffset = row - g.visibleRows + 1
	}
	if g.rowOffset < 0 {
		g.rowOffset = 0
	}
}

// IsFiltering returns true if filter mode is active
func (g Grid) IsFiltering() bool {
	return g.filterActive
}

// IsFilterTyping returns true if filter is active and the input has focus
func (g Grid) IsFilterTyping() bool {
	return g.filterActive && g.filterInput.Focused()
}

// FilterQuery returns the active filter text
func (g Grid) FilterQuery() string {
	return g.filterQuery
}

// ToggleFilter activates the filter input
func (g *Grid) ToggleFilter() {
	g.filterActive = true
	g.filterInput.Focus()
	g.recalcLayout()
}

// ClearFilter deactivates the filter and shows all images
func (g *Grid) ClearFilter() {
	g.clearFilter()
}

func (g *Grid) clearFilter() {
	g.filterActive = false
	g.filterQuery = ""
	g.filteredIdx = nil
	g.filterInput.SetValue("")
	g.filterInput.Blur()
	g.recalcLayout()
}

// applyFilter narrows images to the filter query. The results slice itself is
// never touched.
func (g *Grid) applyFilter(resetCursor bool) {
	query := g.filterInput.Value()
	g.filterQuery = query

	if strings.TrimSpace(query) == "" {
		g.filteredIdx = nil
	} else {
		g.filteredIdx = service.FilterImages(g.images, query)
	}

	if resetCursor {
		g.cursor = 0
		g.rowOffset = 0
	}
}

// Update handles messages
func (g Grid) Update(msg tea.Msg) (Grid, tea.Cmd) {
	if !g.focused {
		return g, nil
	}

	// Filter input has focus: typing mode
	if g.IsFilterTyping() {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch {
			case key.Matches(keyMsg, GridKeys.Escape):
				g.clearFilter()
				return g, nil
			case key.Matches(keyMsg, GridKeys.Enter):
				g.filterInput.Blur()
				return g, nil
			case keyMsg.String() == "backspace" && g.filterInput.Value() == "":
				g.clearFilter()
				return g, nil
			}
		}

		var cmd tea.Cmd
		g.filterInput, cmd = g.filterInput.Update(msg)
		g.applyFilter(true)
		return g, cmd
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return g, nil
	}

	if key.Matches(keyMsg, GridKeys.Filter) {
		if g.filterActive {
			g.filterInput.Focus()
		} else {
			g.ToggleFilter()
		}
		return g, nil
	}
	if g.filterActive && key.Matches(keyMsg, GridKeys.Escape) {
		g.clearFilter()
		return g, nil
	}

	count := g.Count()
	if count == 0 {
		return g, nil
	}

	cols := max(g.columns, 1)
	switch {
	case key.Matches(keyMsg, GridKeys.Right):
		if g.cursor < count-1 {
			g.cursor++
		}
	case key.Matches(keyMsg, GridKeys.Left):
		if g.cursor > 0 {
			g.cursor--
		}
	case key.Matches(keyMsg, GridKeys.Down):
		if g.cursor+cols < count {
			g.cursor += cols
		} else if g.cursor/cols < (count-1)/cols {
			// partial last row
			g.cursor = count - 1
		}
	case key.Matches(keyMsg, GridKeys.Up):
		if g.cursor-cols >= 0 {
			g.cursor -= cols
		}
	case key.Matches(keyMsg, GridKeys.Home):
		g.cursor = 0
	case key.Matches(keyMsg, GridKeys.End):
		g.cursor = count - 1
	case key.Matches(keyMsg, GridKeys.HalfDown):
		g.cursor = min(g.cursor+cols*max(g.visibleRows/2, 1), count-1)
	case key.Matches(keyMsg, GridKeys.HalfUp):
		g.cursor = max(g.cursor-cols*max(g.visibleRows/2, 1), 0)
	}
	g.ensureVisible()

	return g, nil
}

// View renders the component
func (g Grid) View() string {
	style := styles.InactiveBorder
	if g.focused {
		style = styles.ActiveBorder
	}

	frameW, frameH := style.GetFrameSize()
	return style.
		Width(max(g.width-frameW, 1)).
		Height(max(g.height-frameH, 1)).
		Padding(0, 1).
		Render(g.renderCards())
}

func (g Grid) renderCards() string {
	innerWidth := g.width - BorderWidth - HorizontalPadding

	titleLine := " "
	if g.title != "" {
		titleLine = styles.AccentStyle.Render(styles.Truncate(g.title, innerWidth))
	}

	count := g.Count()
	if count == 0 {
		msg := g.emptyText
		if g.filterActive && g.filterQuery != "" {
			msg = "No matches"
		}
		content := titleLine + "\n \n" + styles.DimStyle.Render(msg)
		if g.filterActive {
			content += "\n" + g.renderFilterBar()
		}
		return content
	}

	cols := max(g.columns, 1)
	cardWidth := g.cardWidth()
	totalRows := (count + cols - 1) / cols
	endRow := min(g.rowOffset+g.visibleRows, totalRows)

	var rows []string
	for r := g.rowOffset; r < endRow; r++ {
		var cards []string
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if i >= count {
				break
			}
			cards = append(cards, g.renderCard(g.images[g.mapIndex(i)], i == g.cursor, cardWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}

	// Always reserve the indicator lines to prevent layout shifts
	header := " "
	if g.rowOffset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if endRow < totalRows {
		footer = styles.DimStyle.Render("↓ more")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(rows, "\n") + "\n" + footer
	if g.filterActive {
		content += "\n" + g.renderFilterBar()
	}
	return content
}

// renderCard renders one image card of the given total width
func (g Grid) renderCard(img domain.Image, selected bool, width int) string {
	style := styles.CardStyle
	titleStyle := styles.SubtitleStyle
	if selected && g.focused {
		style = styles.CardSelectedStyle
		titleStyle = styles.TitleStyle
	}

	frameW, _ := style.GetFrameSize()
	textWidth := max(width-frameW, 1)

	size := img.Dimensions()
	if size == "" {
		size = "size unknown"
	}
	author := ""
	if g.showAuthor && img.Author != "" {
		author = "by " + img.Author
	}

	lines := []string{
		g.renderThumbnail(img, textWidth),
		titleStyle.Render(styles.Pad(styles.Truncate(img.GetTitle(), textWidth), textWidth)),
		styles.DimStyle.Render(styles.Pad(size, textWidth)),
		styles.DimStyle.Render(styles.Pad(styles.Truncate(author, textWidth), textWidth)),
	}

	return style.Width(textWidth + style.GetHorizontalPadding()).Render(strings.Join(lines, "\n"))
}

// renderThumbnail centers the card image in its box, or a placeholder while
// it loads
func (g Grid) renderThumbnail(img domain.Image, width int) string {
	cols, rows := g.ThumbnailBox()

	content := styles.DimStyle.Render(styles.Truncate("no preview", width))
	if t, ok := g.thumbs[img.ID]; ok && t.box == (cellBox{cols, rows}) {
		if !t.failed {
			content = t.rendered
		}
	} else if img.ThumbnailURL != "" {
		content = styles.DimStyle.Render(styles.Truncate("loading...", width))
	}
	return lipgloss.Place(width, ThumbnailLines, lipgloss.Center, lipgloss.Center, content)
}

// renderFilterBar renders the filter input bar
func (g Grid) renderFilterBar() string {
	input := g.filterInput.View()
	if g.filterQuery == "" {
		return input
	}
	return input + styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", g.Count(), len(g.images)))
}
