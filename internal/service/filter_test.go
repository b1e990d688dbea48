package service

import (
	"testing"

	"github.com/mmcdole/pixgrid/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestFilterImages(t *testing.T) {
	images := []domain.Image{
		{ID: "0", Tags: "cat, kitten, pet"},
		{ID: "1", Tags: "dog, puppy"},
		{ID: "2", Tags: "wildcat, forest"},
		{ID: "3", Tags: "cat"},
		{ID: "4", Tags: "lake", Author: "Catherine"},
	}

	tests := []struct {
		name  string
		query string
		want  []int
	}{
		{"blank keeps order", "", []int{0, 1, 2, 3, 4}},
		{"exact before prefix before contains", "cat", []int{0, 3, 4, 2}},
		{"case insensitive", "PUPPY", []int{1}},
		{"fuzzy subsequence", "ktn", []int{0}},
		{"no match", "zebra", []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterImages(images, tt.query))
		})
	}
}

func TestFilterImagesDoesNotMutate(t *testing.T) {
	images := []domain.Image{{ID: "0", Tags: "b"}, {ID: "1", Tags: "a"}}
	FilterImages(images, "a")
	assert.Equal(t, "0", images[0].ID)
	assert.Equal(t, "1", images[1].ID)
}
