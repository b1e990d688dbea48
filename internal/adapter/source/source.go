package source

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/pixgrid/internal/adapter"
	"github.com/mmcdole/pixgrid/internal/adapter/source/pexels"
	"github.com/mmcdole/pixgrid/internal/adapter/source/pixabay"
	"github.com/mmcdole/pixgrid/internal/domain"
)

// SourceConfig contains the configuration needed to create an image source
type SourceConfig struct {
	Type       adapter.ProviderType
	APIKey     string
	BaseURL    string // empty = provider default
	ImageType  string // pixabay only
	SafeSearch bool   // pixabay only; pexels has no switch
}

// NewClient creates an ImageSearcher for the configured provider.
// This factory hides which backend answers the gallery's searches.
func NewClient(cfg *SourceConfig, logger *slog.Logger) (domain.ImageSearcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("source config is nil")
	}

	if cfg.APIKey == "" {
		return nil, domain.ErrNotConfigured
	}

	switch cfg.Type {
	case adapter.ProviderPixabay:
		return pixabay.NewClient(cfg.BaseURL, cfg.APIKey, pixabay.Options{
			ImageType:  cfg.ImageType,
			SafeSearch: cfg.SafeSearch,
		}, logger), nil

	case adapter.ProviderPexels:
		return pexels.NewClient(cfg.BaseURL, cfg.APIKey, logger), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}

// NewClientFromConfig creates an ImageSearcher from the application config
func NewClientFromConfig(cfg *adapter.Config, logger *slog.Logger) (domain.ImageSearcher, error) {
	return NewClient(&SourceConfig{
		Type:       cfg.Provider.Type,
		APIKey:     cfg.Provider.APIKey,
		BaseURL:    cfg.Provider.BaseURL,
		ImageType:  cfg.Search.ImageType,
		SafeSearch: cfg.Search.SafeSearch,
	}, logger)
}
