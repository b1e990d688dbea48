package pexels

import (
	"strconv"

	"github.com/mmcdole/pixgrid/internal/domain"
)

// firstNonEmpty returns the first non-empty string
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// MapImage converts a Pexels photo to a domain image
func MapImage(p Photo) (domain.Image, bool) {
	thumb := firstNonEmpty(p.Src.Medium, p.Src.Small, p.Src.Tiny)
	full := firstNonEmpty(p.Src.Large2x, p.Src.Original, p.Src.Large)
	if thumb == "" || full == "" {
		return domain.Image{}, false
	}

	return domain.Image{
		ID:           strconv.FormatInt(p.ID, 10),
		ThumbnailURL: thumb,
		FullURL:      full,
		Tags:         p.Alt,
		Width:        p.Width,
		Height:       p.Height,
		Author:       p.Photographer,
		PageURL:      p.URL,
	}, true
}

// MapPage converts a search response, preserving photo order
func MapPage(resp SearchResponse) domain.ImagePage {
	images := make([]domain.Image, 0, len(resp.Photos))
	for _, p := range resp.Photos {
		if img, ok := MapImage(p); ok {
			images = append(images, img)
		}
	}
	return domain.ImagePage{Images: images, Total: resp.TotalResults}
}
