package components

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/pixgrid/internal/domain"
	"github.com/mmcdole/pixgrid/internal/tui/styles"
)

// Overlay chrome: border, padding and the info lines under the image
const (
	overlayFrameWidth  = 6 // border 2 + padding 4
	overlayFrameHeight = 4 // border 2 + padding 2
	overlayInfoLines   = 4 // blank, tags, size/author, key hints
)

// Overlay is the detail modal showing the full-size image
type Overlay struct {
	visible bool
	img     domain.Image

	loading  bool
	err      error
	rendered string

	sourceWidth  int
	sourceHeight int

	width        int
	height       int
	spinnerFrame int
	showAuthor   bool
}

// NewOverlay creates a hidden overlay
func NewOverlay(showAuthor bool) Overlay {
	return Overlay{showAuthor: showAuthor}
}

// Show opens the overlay for img and marks its preview as loading
func (o *Overlay) Show(img domain.Image) {
	o.visible = true
	o.img = img
	o.loading = true
	o.err = nil
	o.rendered = ""
	o.sourceWidth = img.Width
	o.sourceHeight = img.Height
}

// Hide closes the overlay
func (o *Overlay) Hide() {
	o.visible = false
	o.loading = false
	o.rendered = ""
	o.err = nil
}

// IsVisible returns whether the overlay is shown
func (o Overlay) IsVisible() bool {
	return o.visible
}

// IsLoading returns whether the full image is still loading
func (o Overlay) IsLoading() bool {
	return o.visible && o.loading
}

// ImageID returns the id of the image being shown
func (o Overlay) ImageID() string {
	return o.img.ID
}

// Err returns the preview error, if any
func (o Overlay) Err() error {
	return o.err
}

// SetSize sets the screen size the overlay is centered in
func (o *Overlay) SetSize(width, height int) {
	o.width = width
	o.height = height
}

// SetSpinnerFrame advances the loading spinner
func (o *Overlay) SetSpinnerFrame(frame int) {
	o.spinnerFrame = frame
}

// ImageBox returns the cell box available for the image
func (o Overlay) ImageBox() (cols, rows int) {
	cols = max(o.width-overlayFrameWidth-4, 1)
	rows = max(o.height-overlayFrameHeight-overlayInfoLines-2, 1)
	return cols, rows
}

// SetPreview shows a scaled image. It returns false when imageID is not the
// image on display, in which case the preview is dropped.
func (o *Overlay) SetPreview(imageID string, img image.Image, sourceWidth, sourceHeight int) bool {
	if !o.visible || imageID != o.img.ID {
		return false
	}
	o.loading = false
	o.err = nil
	o.rendered = RenderHalfBlocks(img)
	if sourceWidth > 0 && sourceHeight > 0 {
		o.sourceWidth = sourceWidth
		o.sourceHeight = sourceHeight
	}
	return true
}

// SetError records a failed preview for imageID
func (o *Overlay) SetError(imageID string, err error) bool {
	if !o.visible || imageID != o.img.ID {
		return false
	}
	o.loading = false
	o.err = err
	return true
}

// View renders the overlay box; the caller places it on screen
func (o Overlay) View() string {
	if !o.visible {
		return ""
	}

	cols, rows := o.ImageBox()

	var body string
	switch {
	case o.loading:
		spin := styles.SpinnerStyle.Render(styles.SpinnerFrames[o.spinnerFrame%len(styles.SpinnerFrames)])
		body = lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center,
			spin+" "+styles.DimStyle.Render("Loading full image..."))
	case o.err != nil:
		body = lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center,
			styles.ErrorStyle.Render(styles.Truncate(o.err.Error(), cols)))
	default:
		body = lipgloss.PlaceHorizontal(cols, lipgloss.Center, o.rendered)
	}

	var meta []string
	if o.sourceWidth > 0 && o.sourceHeight > 0 {
		meta = append(meta, fmt.Sprintf("%dx%d", o.sourceWidth, o.sourceHeight))
	}
	if o.showAuthor && o.img.Author != "" {
		meta = append(meta, "by "+o.img.Author)
	}

	hints := styles.AccentStyle.Render("esc") + styles.DimStyle.Render(" close  ") +
		styles.AccentStyle.Render("o") + styles.DimStyle.Render(" open in viewer")
	if o.err != nil {
		hints += styles.DimStyle.Render("  ") + styles.AccentStyle.Render("r") + styles.DimStyle.Render(" retry")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		body,
		"",
		styles.TitleStyle.Render(styles.Truncate(o.img.GetTitle(), cols)),
		styles.SubtitleStyle.Render(styles.Truncate(strings.Join(meta, " · "), cols)),
		hints,
	)

	return styles.ModalStyle.Render(content)
}

// RenderHalfBlocks draws img with one "▀" per cell: the foreground carries the
// upper pixel and the background the lower one.
func RenderHalfBlocks(img image.Image) string {
	b := img.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			cell := lipgloss.NewStyle().Foreground(hexColor(img.At(x, y)))
			if y+1 < b.Max.Y {
				cell = cell.Background(hexColor(img.At(x, y+1)))
			}
			sb.WriteString(cell.Render("▀"))
		}
	}
	return sb.String()
}

func hexColor(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
