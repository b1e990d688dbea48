package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/pixgrid/internal/service"
	"github.com/mmcdole/pixgrid/internal/tui/components"
	"github.com/mmcdole/pixgrid/internal/tui/styles"
	"github.com/mmcdole/pixgrid/internal/viewmodel"
)

// Focus identifies the pane that receives keys
type Focus int

const (
	FocusSearch Focus = iota
	FocusGrid
)

// Vertical layout
const (
	SearchBarHeight = 3
	BannerHeight    = 1
	LoadMoreHeight  = 1

	// single footer line
	ChromeHeight = 1
)

const (
	tickInterval       = 100 * time.Millisecond
	statusTimeout      = 3 * time.Second
	errorStatusTimeout = 5 * time.Second
)

// ErrorBannerPrefix is shown before the message of a failed fetch
const ErrorBannerPrefix = "Sorry something went wrong, try again later!"

// SubmitQueryMsg submits a query as if typed into the search bar
type SubmitQueryMsg struct {
	Text string
}

// Options configures a new Model
type Options struct {
	PageSize     int
	GridColumns  int // 0 = fit to width
	ShowAuthor   bool
	InitialQuery string
}

// inflight holds cancel funcs for running fetches. It is shared by pointer so
// copies of Model made by Update see the same slots.
type inflight struct {
	search  context.CancelFunc
	preview context.CancelFunc

	// thumbnail loads for the current result set share one context
	thumbCtx    context.Context
	thumbCancel context.CancelFunc
}

// Model is the main Bubble Tea model for the application
type Model struct {
	Ready bool

	// Search state machine
	Search *viewmodel.Search

	// Services
	SearchSvc  *service.SearchService
	HistorySvc *service.HistoryService
	PreviewSvc *service.PreviewService
	Opener     opener

	// UI Components
	SearchBar components.SearchBar
	Grid      components.Grid
	Overlay   components.Overlay
	Help      help.Model

	// Dimensions
	Width  int
	Height int

	// UI state
	Focus        Focus
	ShowHelp     bool
	StatusMsg    string
	StatusIsErr  bool
	SpinnerFrame int

	initialQuery string
	fetches      *inflight
}

// NewModel creates a new application model
func NewModel(
	searchSvc *service.SearchService,
	historySvc *service.HistoryService,
	previewSvc *service.PreviewService,
	o opener,
	opts Options,
) Model {
	grid := components.NewGrid(opts.GridColumns, opts.ShowAuthor)
	grid.SetEmptyText("Type a query and press enter to search")

	h := help.New()
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpDescStyle
	h.Styles.FullKey = styles.HelpKeyStyle
	h.Styles.FullDesc = styles.HelpDescStyle

	return Model{
		Search:       viewmodel.NewSearch(opts.PageSize),
		SearchSvc:    searchSvc,
		HistorySvc:   historySvc,
		PreviewSvc:   previewSvc,
		Opener:       o,
		SearchBar:    components.NewSearchBar(),
		Grid:         grid,
		Overlay:      components.NewOverlay(opts.ShowAuthor),
		Help:         h,
		Focus:        FocusSearch,
		initialQuery: strings.TrimSpace(opts.InitialQuery),
		fetches:      &inflight{},
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		TickCmd(tickInterval),
		SuggestCmd(m.HistorySvc, ""),
	}
	if m.initialQuery != "" {
		q := m.initialQuery
		cmds = append(cmds, func() tea.Msg { return SubmitQueryMsg{Text: q} })
	}
	return tea.Batch(cmds...)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	m.updateLayout()
	if thumbs := m.loadThumbnails(); thumbs != nil {
		cmd = tea.Batch(cmd, thumbs)
	}
	return m, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		// Rescale the open preview to the new box
		if m.Overlay.IsVisible() && !m.Overlay.IsLoading() {
			cmd := m.loadPreview()
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case SubmitQueryMsg:
		return m.submit(msg.Text)

	case TickMsg:
		m.SpinnerFrame++
		m.Overlay.SetSpinnerFrame(m.SpinnerFrame)
		return m, TickCmd(tickInterval)

	case SearchResultsMsg:
		return m.handleResults(msg)

	case SearchFailedMsg:
		if m.Search.FetchFailed(msg.Gen, msg.Err) {
			m.releaseSearch()
			slog.Warn("search failed", "query", m.Search.Query(), "page", m.Search.Page(), "error", msg.Err)
		}
		return m, nil

	case PreviewLoadedMsg:
		if sel := m.Search.Selected(); sel == nil || sel.ID != msg.ImageID {
			return m, nil
		}
		p := msg.Preview
		m.Overlay.SetPreview(msg.ImageID, p.Image, p.SourceWidth, p.SourceHeight)
		return m, nil

	case PreviewFailedMsg:
		if sel := m.Search.Selected(); sel == nil || sel.ID != msg.ImageID {
			return m, nil
		}
		if !errors.Is(msg.Err, context.Canceled) {
			slog.Warn("preview failed", "image", m.Overlay.ImageID(), "error", msg.Err)
			m.Overlay.SetError(msg.ImageID, msg.Err)
		}
		return m, nil

	case ThumbnailLoadedMsg:
		m.Grid.SetThumbnail(msg.ImageID, msg.Cols, msg.Rows, msg.Image)
		return m, nil

	case ThumbnailFailedMsg:
		if m.Grid.SetThumbnailFailed(msg.ImageID, msg.Cols, msg.Rows) {
			slog.Debug("thumbnail failed", "image", msg.ImageID, "error", msg.Err)
		}
		return m, nil

	case SuggestionsMsg:
		if msg.Prefix == m.SearchBar.Draft() {
			m.SearchBar.SetSuggestions(msg.Suggestions)
		}
		return m, nil

	case HistoryClearedMsg:
		m.SearchBar.SetSuggestions(nil)
		m.StatusMsg = "Search history cleared"
		m.StatusIsErr = false
		return m, ClearStatusCmd(statusTimeout)

	case OpenedExternalMsg:
		m.StatusMsg = "Opened in viewer: " + styles.Truncate(msg.Image.GetTitle(), 40)
		m.StatusIsErr = false
		return m, ClearStatusCmd(statusTimeout)

	case ErrMsg:
		slog.Error("tui error", "context", msg.Context, "error", msg.Err)
		m.StatusMsg = msg.Error()
		m.StatusIsErr = true
		return m, ClearStatusCmd(errorStatusTimeout)

	case StatusMsg:
		m.StatusMsg = msg.Message
		m.StatusIsErr = msg.IsError
		return m, ClearStatusCmd(statusTimeout)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

// handleKeyMsg routes keys to the overlay, the search bar or the grid
func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.cancelAll()
		return m, tea.Quit
	}

	if m.ShowHelp {
		m.ShowHelp = false
		return m, nil
	}

	if m.Search.ShowOverlay() {
		return m.handleOverlayKey(msg)
	}

	if m.Focus == FocusSearch {
		return m.handleSearchKey(msg)
	}
	return m.handleGridKey(msg)
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Submit):
		return m.submit(m.SearchBar.Value())

	case key.Matches(msg, Keys.Focus):
		if !m.Grid.IsEmpty() {
			m.focusGrid()
		}
		return m, nil

	case key.Matches(msg, Keys.Escape):
		if !m.Grid.IsEmpty() {
			m.focusGrid()
			return m, nil
		}
		m.SearchBar.SetValue("")
		return m, SuggestCmd(m.HistorySvc, "")

	case key.Matches(msg, components.SearchBarKeys.Forget) && m.SearchBar.Highlighted() != "":
		query := m.SearchBar.Highlighted()
		m.SearchBar.DropSuggestion(query)
		return m, ForgetQueryCmd(m.HistorySvc, query, m.SearchBar.Draft())

	case key.Matches(msg, components.SearchBarKeys.ClearHistory):
		return m, ClearHistoryCmd(m.HistorySvc)
	}

	var cmd tea.Cmd
	var changed bool
	m.SearchBar, cmd, changed = m.SearchBar.Update(msg)
	if changed {
		return m, tea.Batch(cmd, SuggestCmd(m.HistorySvc, m.SearchBar.Draft()))
	}
	return m, cmd
}

func (m Model) handleGridKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	// Filter typing owns every key
	if m.Grid.IsFilterTyping() {
		var cmd tea.Cmd
		m.Grid, cmd = m.Grid.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		m.cancelAll()
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.ShowHelp = true
		return m, nil

	case key.Matches(msg, Keys.Focus), key.Matches(msg, Keys.Search):
		cmd := m.focusSearch()
		return m, cmd

	case key.Matches(msg, Keys.Escape):
		if m.Grid.IsFiltering() {
			var cmd tea.Cmd
			m.Grid, cmd = m.Grid.Update(msg)
			return m, cmd
		}
		cmd := m.focusSearch()
		return m, cmd

	case key.Matches(msg, Keys.Open):
		if img := m.Grid.Selected(); img != nil {
			m.Search.SelectImage(*img)
			m.Overlay.Show(*img)
			cmd := m.loadPreview()
			return m, cmd
		}
		return m, nil

	case key.Matches(msg, Keys.LoadMore):
		return m.loadMore()

	case key.Matches(msg, Keys.External):
		if img := m.Grid.Selected(); img != nil && m.Opener != nil {
			return m, OpenExternalCmd(m.Opener, *img)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.Grid, cmd = m.Grid.Update(msg)
	return m, cmd
}

func (m Model) handleOverlayKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Escape):
		m.closeOverlay()
	case key.Matches(msg, Keys.Quit):
		m.cancelAll()
		return m, tea.Quit
	case key.Matches(msg, Keys.Help):
		m.ShowHelp = true
	case key.Matches(msg, Keys.Retry):
		if sel := m.Search.Selected(); sel != nil && m.Overlay.Err() != nil && m.Overlay.ImageID() == sel.ID {
			m.Overlay.Show(*sel)
			cmd := m.loadPreview()
			return m, cmd
		}
	case key.Matches(msg, Keys.External):
		if sel := m.Search.Selected(); sel != nil && m.Opener != nil {
			return m, OpenExternalCmd(m.Opener, *sel)
		}
	}
	return m, nil
}

// submit hands text to the view-model and starts the admitted fetch
func (m Model) submit(text string) (Model, tea.Cmd) {
	req := m.Search.SubmitQuery(text)
	m.SearchBar.Reset()

	if req == nil {
		if !m.Grid.IsEmpty() {
			m.focusGrid()
		}
		return m, SuggestCmd(m.HistorySvc, "")
	}

	slog.Info("search submitted", "query", req.Query, "generation", req.Generation)

	m.Grid.Reset()
	m.releaseThumbnails()
	m.Grid.SetTitle(fmt.Sprintf("Results for %q", req.Query))
	m.Grid.SetEmptyText(fmt.Sprintf("No images found for %q", req.Query))

	return m, tea.Batch(
		m.startFetch(*req),
		RecordQueryCmd(m.HistorySvc, req.Query),
	)
}

// loadMore requests the next page when the view-model admits it
func (m Model) loadMore() (Model, tea.Cmd) {
	req := m.Search.LoadNextPage()
	if req == nil {
		return m, nil
	}
	slog.Debug("loading next page", "query", req.Query, "page", req.Page)
	return m, m.startFetch(*req)
}

// startFetch cancels any superseded fetch and runs req
func (m Model) startFetch(req viewmodel.FetchRequest) tea.Cmd {
	m.releaseSearch()
	ctx, cancel := context.WithCancel(context.Background())
	m.fetches.search = cancel
	return SearchCmd(ctx, m.SearchSvc, req)
}

func (m Model) handleResults(msg SearchResultsMsg) (Model, tea.Cmd) {
	prev := m.Search.ResultCount()
	if !m.Search.FetchSucceeded(msg.Gen, msg.Page) {
		return m, nil
	}
	m.releaseSearch()
	m.Grid.SetImages(m.Search.Results())

	switch {
	case prev > 0 && len(msg.Page.Images) > 0:
		// Jump to the first image of the new batch
		if !m.Grid.SelectIndex(prev) {
			m.Grid.ClearFilter()
			m.Grid.SelectIndex(prev)
		}
	case prev == 0 && !m.Grid.IsEmpty() && m.Focus == FocusSearch && m.SearchBar.Value() == "":
		m.focusGrid()
	}
	return m, nil
}

// loadPreview fetches the selected image sized for the overlay box
func (m *Model) loadPreview() tea.Cmd {
	sel := m.Search.Selected()
	if sel == nil {
		return nil
	}
	if m.PreviewSvc == nil {
		m.Overlay.SetError(sel.ID, errors.New("preview unavailable"))
		return nil
	}
	if m.fetches.preview != nil {
		m.fetches.preview()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.fetches.preview = cancel

	cols, rows := m.Overlay.ImageBox()
	return PreviewCmd(ctx, m.PreviewSvc, *sel, cols, rows)
}

func (m *Model) closeOverlay() {
	m.Search.ClearSelection()
	m.Overlay.Hide()
	if m.fetches.preview != nil {
		m.fetches.preview()
		m.fetches.preview = nil
	}
}

func (m *Model) releaseSearch() {
	if m.fetches.search != nil {
		m.fetches.search()
		m.fetches.search = nil
	}
}

// loadThumbnails starts loads for on-screen cards that have no thumbnail yet
func (m *Model) loadThumbnails() tea.Cmd {
	if !m.Ready || m.PreviewSvc == nil {
		return nil
	}
	missing := m.Grid.RequestThumbnails()
	if len(missing) == 0 {
		return nil
	}
	if m.fetches.thumbCtx == nil {
		m.fetches.thumbCtx, m.fetches.thumbCancel = context.WithCancel(context.Background())
	}

	cols, rows := m.Grid.ThumbnailBox()
	cmds := make([]tea.Cmd, 0, len(missing))
	for _, img := range missing {
		cmds = append(cmds, ThumbnailCmd(m.fetches.thumbCtx, m.PreviewSvc, img, cols, rows))
	}
	return tea.Batch(cmds...)
}

// releaseThumbnails cancels thumbnail loads for a result set that is gone
func (m *Model) releaseThumbnails() {
	if m.fetches.thumbCancel != nil {
		m.fetches.thumbCancel()
	}
	m.fetches.thumbCtx = nil
	m.fetches.thumbCancel = nil
}

func (m *Model) cancelAll() {
	m.releaseThumbnails()
	m.releaseSearch()
	if m.fetches.preview != nil {
		m.fetches.preview()
		m.fetches.preview = nil
	}
}

func (m *Model) focusGrid() {
	m.Focus = FocusGrid
	m.SearchBar.Blur()
	m.Grid.SetFocused(true)
}

func (m *Model) focusSearch() tea.Cmd {
	m.Focus = FocusSearch
	m.Grid.SetFocused(false)
	return m.SearchBar.Focus()
}

// updateLayout sizes components for the current window and banner state
func (m *Model) updateLayout() {
	if !m.Ready {
		return
	}
	gridHeight := m.Height - SearchBarHeight - LoadMoreHeight - ChromeHeight
	if m.Search.ShowError() {
		gridHeight -= BannerHeight
	}
	m.SearchBar.SetWidth(m.Width)
	m.Grid.SetSize(m.Width, max(gridHeight, components.CardHeight))
	m.Overlay.SetSize(m.Width, m.Height)
}

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.ShowHelp {
		return m.renderHelp()
	}

	if m.Search.ShowOverlay() {
		return lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.Overlay.View())
	}

	parts := []string{m.SearchBar.View()}
	if m.Search.ShowError() {
		parts = append(parts, m.renderBanner())
	}
	parts = append(parts,
		m.Grid.View(),
		m.renderLoadMore(),
		m.renderFooter(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// ErrorBanner formats the banner text for a failed fetch
func ErrorBanner(err error) string {
	return fmt.Sprintf("%s (%s)", ErrorBannerPrefix, err.Error())
}

func (m Model) renderBanner() string {
	text := styles.Truncate(ErrorBanner(m.Search.LastError()), m.Width-2)
	return styles.BannerStyle.Width(m.Width).Render(text)
}

// renderLoadMore renders the spinner while fetching, or the load more hint
func (m Model) renderLoadMore() string {
	var line string
	switch {
	case m.Search.IsLoading():
		label := "Searching..."
		if m.Search.ResultCount() > 0 {
			label = "Loading more..."
		}
		line = RenderSpinner(m.SpinnerFrame) + " " + styles.DimStyle.Render(label)
	case m.Search.ShowLoadMore():
		line = styles.LoadMoreStyle.Render("m  Load more")
	default:
		line = " "
	}
	return lipgloss.PlaceHorizontal(m.Width, lipgloss.Center, line)
}

// renderFooter renders a single-line minimal footer
func (m Model) renderFooter() string {
	var left string
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.DimStyle.Render(m.StatusMsg)
		}
	}

	center := styles.DimStyle.Render(m.resultCounter())
	right := m.Help.ShortHelpView(m.shortHelp())

	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center)
	rightWidth := lipgloss.Width(right)

	if leftWidth+centerWidth+rightWidth >= m.Width {
		gap := max(m.Width-leftWidth-rightWidth, 0)
		return left + strings.Repeat(" ", gap) + right
	}

	available := m.Width - leftWidth - rightWidth
	leftPad := (available - centerWidth) / 2
	rightPad := available - centerWidth - leftPad

	return left + strings.Repeat(" ", leftPad) + center + strings.Repeat(" ", rightPad) + right
}

// resultCounter renders e.g. "24 / 500 images · next page 3"
func (m Model) resultCounter() string {
	if m.Search.Query() == "" {
		return ""
	}
	count := m.Search.ResultCount()
	var s string
	if total := m.Search.Total(); total > 0 {
		s = fmt.Sprintf("%d / %d images", count, total)
	} else {
		s = fmt.Sprintf("%d images", count)
	}
	if q := m.Grid.FilterQuery(); q != "" {
		s += fmt.Sprintf(" · %d shown", m.Grid.Count())
	}
	s += fmt.Sprintf(" · next page %d", m.Search.Page())
	if m.Grid.IsFocused() && !m.Grid.IsEmpty() {
		s += fmt.Sprintf(" · #%d", m.Grid.Cursor()+1)
	}
	return s
}

// shortHelp lists the footer hints for the focused pane
func (m Model) shortHelp() []key.Binding {
	if m.Grid.IsFocused() {
		return Keys.ShortHelp()
	}
	return []key.Binding{Keys.Submit, components.SearchBarKeys.Previous, Keys.Focus}
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	h := m.Help
	h.ShowAll = true

	gridKeys := [][]key.Binding{
		{
			components.GridKeys.Up,
			components.GridKeys.Down,
			components.GridKeys.Left,
			components.GridKeys.Right,
		},
		{
			components.GridKeys.Home,
			components.GridKeys.End,
			components.GridKeys.HalfDown,
			components.GridKeys.HalfUp,
			components.GridKeys.Filter,
		},
		{
			components.SearchBarKeys.Previous,
			components.SearchBarKeys.Next,
			components.SearchBarKeys.Forget,
			components.SearchBarKeys.ClearHistory,
		},
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render("pixgrid"),
		h.FullHelpView(Keys.FullHelp()),
		"",
		h.FullHelpView(gridKeys),
		"",
		styles.DimStyle.Render("Press any key to return..."),
	)

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(content))
}

// RenderSpinner renders a loading spinner
func RenderSpinner(frame int) string {
	return styles.SpinnerStyle.Render(styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])
}
