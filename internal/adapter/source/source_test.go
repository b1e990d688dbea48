package source

import (
	"testing"

	"github.com/mmcdole/pixgrid/internal/adapter"
	"github.com/mmcdole/pixgrid/internal/adapter/source/pexels"
	"github.com/mmcdole/pixgrid/internal/adapter/source/pixabay"
	"github.com/mmcdole/pixgrid/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientPicksProvider(t *testing.T) {
	px, err := NewClient(&SourceConfig{Type: adapter.ProviderPixabay, APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &pixabay.Client{}, px)

	pe, err := NewClient(&SourceConfig{Type: adapter.ProviderPexels, APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &pexels.Client{}, pe)
}

func TestNewClientErrors(t *testing.T) {
	_, err := NewClient(nil, nil)
	assert.Error(t, err)

	_, err = NewClient(&SourceConfig{Type: adapter.ProviderPixabay}, nil)
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	_, err = NewClient(&SourceConfig{Type: "flickr", APIKey: "k"}, nil)
	assert.ErrorContains(t, err, "unknown provider")
}

func TestNewClientFromConfig(t *testing.T) {
	cfg := adapter.DefaultConfig()
	cfg.Provider.APIKey = "abc"
	c, err := NewClientFromConfig(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &pixabay.Client{}, c)
}
