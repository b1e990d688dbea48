package domain

import (
	"fmt"
	"strings"
)

// Image describes one search hit. Values are never mutated after mapping.
type Image struct {
	ID           string `json:"id"`
	ThumbnailURL string `json:"thumbnail_url"`
	FullURL      string `json:"full_url"`
	Tags         string `json:"tags"` // alt text / comma separated tags
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Author       string `json:"author,omitempty"`
	PageURL      string `json:"page_url,omitempty"`
}

// GetID returns the provider-scoped identifier
func (i Image) GetID() string {
	return i.ID
}

// GetTitle returns the text shown on a grid card
func (i Image) GetTitle() string {
	if i.Tags == "" {
		return "untitled"
	}
	return i.Tags
}

// TagList splits the tag string into trimmed, non-empty tags
func (i Image) TagList() []string {
	parts := strings.Split(i.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// Dimensions returns "WxH" or an empty string when unknown
func (i Image) Dimensions() string {
	if i.Width <= 0 || i.Height <= 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", i.Width, i.Height)
}

// SearchQuery is one page request against an image provider
type SearchQuery struct {
	Text    string
	Page    int // 1-based
	PerPage int
}

// ImagePage is one page of results from a provider
type ImagePage struct {
	Images []Image
	Total  int // total hits reachable through paging, 0 if unknown
}
