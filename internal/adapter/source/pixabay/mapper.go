package pixabay

import (
	"strconv"

	"github.com/mmcdole/pixgrid/internal/domain"
)

// MapImage converts a Pixabay hit to a domain image.
// Returns false for hits without a usable image URL.
func MapImage(h Hit) (domain.Image, bool) {
	thumb := h.WebformatURL
	if thumb == "" {
		thumb = h.PreviewURL
	}
	full := h.LargeImageURL
	if full == "" {
		full = h.WebformatURL
	}
	if thumb == "" || full == "" {
		return domain.Image{}, false
	}

	return domain.Image{
		ID:           strconv.FormatInt(h.ID, 10),
		ThumbnailURL: thumb,
		FullURL:      full,
		Tags:         h.Tags,
		Width:        h.ImageWidth,
		Height:       h.ImageHeight,
		Author:       h.User,
		PageURL:      h.PageURL,
	}, true
}

// MapPage converts a search response, preserving hit order
func MapPage(resp SearchResponse) domain.ImagePage {
	images := make([]domain.Image, 0, len(resp.Hits))
	for _, h := range resp.Hits {
		if img, ok := MapImage(h); ok {
			images = append(images, img)
		}
	}
	return domain.ImagePage{Images: images, Total: resp.TotalHits}
}
