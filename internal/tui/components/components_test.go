package components

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/pixgrid/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImages(tags ...string) []domain.Image {
	images := make([]domain.Image, len(tags))
	for i, tag := range tags {
		images[i] = domain.Image{ID: fmt.Sprint(i), Tags: tag, Width: 100, Height: 50}
	}
	return images
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestGridSelectIndexRespectsFilter(t *testing.T) {
	g := NewGrid(3, false)
	g.SetSize(90, 30)
	g.SetFocused(true)
	g.SetImages(testImages("cat", "dog", "cat, kitten", "bird"))

	require.True(t, g.SelectIndex(3))
	assert.Equal(t, 3, g.Cursor())

	g, _ = g.Update(keyPress("/"))
	g, _ = g.Update(keyPress("cat"))
	assert.Equal(t, 2, g.Count())

	assert.False(t, g.SelectIndex(1), "dog is filtered out")
	require.True(t, g.SelectIndex(2))
	assert.Equal(t, "2", g.Selected().ID)
}

func TestGridFixedColumnsNavigation(t *testing.T) {
	g := NewGrid(3, false)
	g.SetSize(90, 30)
	g.SetFocused(true)
	g.SetImages(testImages("a", "b", "c", "d", "e"))

	g, _ = g.Update(keyPress("j"))
	assert.Equal(t, 3, g.Cursor())
	g, _ = g.Update(keyPress("l"))
	g, _ = g.Update(keyPress("l"))
	assert.Equal(t, 4, g.Cursor(), "stops at the last card")
	g, _ = g.Update(keyPress("k"))
	assert.Equal(t, 1, g.Cursor())
}

func TestGridDownIntoPartialRow(t *testing.T) {
	g := NewGrid(3, false)
	g.SetSize(90, 30)
	g.SetFocused(true)
	g.SetImages(testImages("a", "b", "c", "d"))

	g, _ = g.Update(keyPress("l"))
	g, _ = g.Update(keyPress("l"))
	g, _ = g.Update(keyPress("j"))
	assert.Equal(t, 3, g.Cursor())
}

func TestGridViewShowsCards(t *testing.T) {
	g := NewGrid(0, true)
	g.SetSize(80, 20)
	g.SetTitle(`Results for "cats"`)
	images := testImages("tabby cat")
	images[0].Author = "alice"
	g.SetImages(images)

	view := g.View()
	assert.Contains(t, view, `Results for "cats"`)
	assert.Contains(t, view, "tabby cat")
	assert.Contains(t, view, "100x50")
	assert.Contains(t, view, "by alice")
}

func TestGridResetClearsFilter(t *testing.T) {
	g := NewGrid(2, false)
	g.SetSize(60, 20)
	g.SetFocused(true)
	g.SetImages(testImages("a", "b"))
	g.ToggleFilter()
	require.True(t, g.IsFiltering())

	g.Reset()
	assert.False(t, g.IsFiltering())
	assert.True(t, g.IsEmpty())
}

func TestSearchBarRecall(t *testing.T) {
	s := NewSearchBar()
	s.SetWidth(60)

	var changed bool
	s, _, changed = s.Update(keyPress("mo"))
	assert.True(t, changed)
	s.SetSuggestions([]string{"mountain", "moon"})

	s, _, changed = s.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.False(t, changed)
	assert.Equal(t, "mountain", s.Value())
	s, _, _ = s.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "moon", s.Value())
	s, _, _ = s.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "moon", s.Value(), "stays on the oldest entry")

	s, _, _ = s.Update(tea.KeyMsg{Type: tea.KeyDown})
	s, _, _ = s.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "mo", s.Value(), "back to the draft")
	assert.Equal(t, "mo", s.Draft())

	s.Reset()
	assert.Empty(t, s.Value())
	assert.Empty(t, s.Suggestions())
}

func TestOverlayDropsStalePreview(t *testing.T) {
	o := NewOverlay(true)
	o.SetSize(100, 40)
	o.Show(domain.Image{ID: "a", Tags: "cat", Author: "bob"})
	require.True(t, o.IsLoading())

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	assert.False(t, o.SetPreview("b", img, 0, 0))
	assert.True(t, o.IsLoading())

	assert.True(t, o.SetPreview("a", img, 640, 480))
	assert.False(t, o.IsLoading())
	view := o.View()
	assert.Contains(t, view, "640x480")
	assert.Contains(t, view, "by bob")

	o.Hide()
	assert.False(t, o.SetError("a", errors.New("late")))
}

func TestOverlayImageBoxFitsScreen(t *testing.T) {
	o := NewOverlay(false)
	o.SetSize(100, 40)
	cols, rows := o.ImageBox()
	assert.Less(t, cols, 100)
	assert.Less(t, rows, 40)
	assert.Positive(t, cols)
	assert.Positive(t, rows)
}

func TestRenderHalfBlocks(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 3; x++ {
			img.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}

	out := RenderHalfBlocks(img)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3, "two pixel rows per line, odd height rounds up")
	for _, line := range lines {
		assert.Equal(t, 3, lipgloss.Width(line))
		assert.Equal(t, 3, strings.Count(line, "▀"))
	}
}

func solidImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 20, G: 180, B: 160, A: 255})
		}
	}
	return img
}

func TestGridRequestsThumbnailsForVisibleRows(t *testing.T) {
	g := NewGrid(2, false)
	// room for exactly one row of cards
	g.SetSize(60, BorderHeight+TitleLines+ScrollIndicatorLines+CardHeight)
	g.SetFocused(true)

	images := testImages("a", "b", "c", "d", "e", "f")
	for i := range images {
		if i != 1 {
			images[i].ThumbnailURL = fmt.Sprintf("https://img.test/%d.jpg", i)
		}
	}
	g.SetImages(images)

	var ids []string
	for _, img := range g.RequestThumbnails() {
		ids = append(ids, img.ID)
	}
	assert.Equal(t, []string{"0"}, ids, "only the first row, and only cards with a url")
	assert.Empty(t, g.RequestThumbnails(), "pending loads are not requested twice")
	assert.Contains(t, g.View(), "loading...")
	assert.Contains(t, g.View(), "no preview")

	cols, rows := g.ThumbnailBox()
	assert.False(t, g.SetThumbnail("2", cols, rows, solidImage(4, 4)), "never requested")
	assert.True(t, g.SetThumbnail("0", cols, rows, solidImage(4, 4)))
	assert.False(t, g.SetThumbnail("0", cols, rows, solidImage(4, 4)), "already delivered")
	assert.Contains(t, g.View(), "▀")
	assert.NotContains(t, g.View(), "loading...")

	g, _ = g.Update(keyPress("j"))
	ids = nil
	for _, img := range g.RequestThumbnails() {
		ids = append(ids, img.ID)
	}
	assert.Equal(t, []string{"2", "3"}, ids)
}

func TestGridThumbnailDroppedAfterReset(t *testing.T) {
	g := NewGrid(2, false)
	g.SetSize(60, 30)
	images := testImages("a", "b")
	images[0].ThumbnailURL = "https://img.test/0.jpg"
	g.SetImages(images)
	require.Len(t, g.RequestThumbnails(), 1)
	cols, rows := g.ThumbnailBox()

	g.Reset()
	g.SetImages(images)
	assert.False(t, g.SetThumbnail("0", cols, rows, solidImage(4, 4)))
	assert.False(t, g.SetThumbnailFailed("0", cols, rows))
	assert.NotContains(t, g.View(), "▀")
	assert.Len(t, g.RequestThumbnails(), 1, "the new result set asks again")
}

func TestGridThumbnailFollowsBoxSize(t *testing.T) {
	g := NewGrid(2, false)
	g.SetSize(60, 30)
	images := testImages("a")
	images[0].ThumbnailURL = "https://img.test/0.jpg"
	g.SetImages(images)
	require.Len(t, g.RequestThumbnails(), 1)
	oldCols, rows := g.ThumbnailBox()

	g.SetSize(80, 30)
	newCols, _ := g.ThumbnailBox()
	require.NotEqual(t, oldCols, newCols)

	assert.Len(t, g.RequestThumbnails(), 1, "a resized card needs a new thumbnail")
	assert.False(t, g.SetThumbnail("0", oldCols, rows, solidImage(4, 4)), "sized for the old box")
	assert.True(t, g.SetThumbnailFailed("0", newCols, rows))
	assert.Empty(t, g.RequestThumbnails(), "failures are not retried at the same size")
	assert.Contains(t, g.View(), "no preview")
}

func TestSearchBarDropSuggestion(t *testing.T) {
	s := NewSearchBar()
	s.SetWidth(60)
	s.SetSuggestions([]string{"mountain", "moon", "river"})
	assert.Empty(t, s.Highlighted(), "nothing recalled yet")

	s, _, _ = s.Update(tea.KeyMsg{Type: tea.KeyUp})
	s, _, _ = s.Update(tea.KeyMsg{Type: tea.KeyUp})
	require.Equal(t, "moon", s.Highlighted())

	s.DropSuggestion("moon")
	assert.Equal(t, []string{"mountain", "river"}, s.Suggestions())
	assert.Empty(t, s.Highlighted())
	assert.Empty(t, s.Value(), "the draft is restored")
}
