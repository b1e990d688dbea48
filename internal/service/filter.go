package service

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/pixgrid/internal/domain"
)

// FilterImages returns the indices of images whose tags or author match query,
// best matches first. A blank query matches everything in original order.
func FilterImages(images []domain.Image, query string) []int {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		all := make([]int, len(images))
		for i := range images {
			all[i] = i
		}
		return all
	}

	type ranked struct {
		index int
		score int
	}

	var hits []ranked
	for i, img := range images {
		if score, ok := matchScore(img, query); ok {
			hits = append(hits, ranked{index: i, score: score})
		}
	}

	// Lower score = better match, arrival order breaks ties
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].score < hits[b].score
	})

	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.index
	}
	return out
}

// matchScore scores the best matching tag of img
func matchScore(img domain.Image, query string) (int, bool) {
	best := -1
	targets := img.TagList()
	if img.Author != "" {
		targets = append(targets, img.Author)
	}
	for _, target := range targets {
		target = strings.ToLower(target)
		var score int
		switch {
		case target == query:
			score = 0
		case strings.HasPrefix(target, query):
			score = 10
		case strings.Contains(target, query):
			score = 50
		case fuzzy.MatchFold(query, target):
			score = 100 + fuzzy.RankMatchFold(query, target)
		default:
			continue
		}
		if best < 0 || score < best {
			best = score
		}
	}
	return best, best >= 0
}
