package adapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ProviderPixabay, cfg.Provider.Type)
	assert.Equal(t, 12, cfg.Search.PageSize)
	assert.False(t, cfg.IsConfigured())
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
provider:
  type: pexels
  api_key: secret
search:
  page_size: 24
  timeout: 5s
viewer:
  command: imv
  args: ["-f"]
history:
  enabled: false
`)

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderPexels, cfg.Provider.Type)
	assert.Equal(t, "secret", cfg.Provider.APIKey)
	assert.Equal(t, 24, cfg.Search.PageSize)
	assert.Equal(t, 5*time.Second, cfg.Search.Timeout)
	assert.Equal(t, "imv", cfg.Viewer.Command)
	assert.Equal(t, []string{"-f"}, cfg.Viewer.Args)
	assert.False(t, cfg.History.Enabled)
	// untouched keys keep defaults
	assert.Equal(t, "photo", cfg.Search.ImageType)
	assert.True(t, cfg.IsConfigured())
}

func TestLoadConfigEnvOverride(t *testing.T) {
	path := writeConfig(t, "provider:\n  api_key: from-file\n")
	t.Setenv("PIXGRID_PROVIDER_API_KEY", "from-env")

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Provider.APIKey)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := writeConfig(t, "search:\n  page_size: 500\n")
	_, err := LoadConfigFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page_size")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"unknown provider", func(c *Config) { c.Provider.Type = "flickr" }, "unknown provider"},
		{"page size too small", func(c *Config) { c.Search.PageSize = 2 }, "page_size"},
		{"zero timeout", func(c *Config) { c.Search.Timeout = 0 }, "timeout"},
		{"negative history", func(c *Config) { c.History.MaxEntries = -1 }, "max_entries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSaveConfigToRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider.APIKey = "k-123"
	cfg.Search.Timeout = 7 * time.Second
	cfg.Viewer.Command = "feh"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveConfigTo(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "k-123", loaded.Provider.APIKey)
	assert.Equal(t, 7*time.Second, loaded.Search.Timeout)
	assert.Equal(t, "feh", loaded.Viewer.Command)
}

func TestSwitchProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider.APIKey = "pixabay-key"
	cfg.Provider.BaseURL = "http://pixabay.local"

	require.NoError(t, cfg.SwitchProvider("PIXABAY"))
	assert.Equal(t, "pixabay-key", cfg.Provider.APIKey, "same provider keeps its key")
	assert.True(t, cfg.IsConfigured())

	require.NoError(t, cfg.SwitchProvider("pexels"))
	assert.Equal(t, ProviderPexels, cfg.Provider.Type)
	assert.Empty(t, cfg.Provider.APIKey)
	assert.Empty(t, cfg.Provider.BaseURL)
	assert.False(t, cfg.IsConfigured(), "a new provider needs its own key")

	err := cfg.SwitchProvider("flickr")
	assert.ErrorContains(t, err, "unknown provider type")
	assert.Equal(t, ProviderPexels, cfg.Provider.Type)
}
