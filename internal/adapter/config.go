package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ProviderType identifies the image search backend
type ProviderType string

const (
	ProviderPixabay ProviderType = "pixabay"
	ProviderPexels  ProviderType = "pexels"
)

// Page size bounds accepted by every supported provider
const (
	MinPageSize = 3
	MaxPageSize = 200
)

// Config holds all application configuration
type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`
	Search   SearchConfig   `mapstructure:"search"`
	Viewer   ViewerConfig   `mapstructure:"viewer"`
	UI       UIConfig       `mapstructure:"ui"`
	History  HistoryConfig  `mapstructure:"history"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ProviderConfig holds image API configuration
type ProviderConfig struct {
	Type    ProviderType `mapstructure:"type"`     // "pixabay" or "pexels"
	APIKey  string       `mapstructure:"api_key"`  // provider API key
	BaseURL string       `mapstructure:"base_url"` // empty = provider default
}

// SearchConfig holds paging and filtering options
type SearchConfig struct {
	PageSize   int           `mapstructure:"page_size"`
	ImageType  string        `mapstructure:"image_type"` // pixabay only: all, photo, illustration, vector
	SafeSearch bool          `mapstructure:"safe_search"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// ViewerConfig holds the external image viewer
type ViewerConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	GridColumns int  `mapstructure:"grid_columns"` // 0 = fit to width
	ShowAuthor  bool `mapstructure:"show_author"`
}

// HistoryConfig holds search history configuration
type HistoryConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	MaxEntries int  `mapstructure:"max_entries"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Type: ProviderPixabay,
		},
		Search: SearchConfig{
			PageSize:   12,
			ImageType:  "photo",
			SafeSearch: true,
			Timeout:    20 * time.Second,
		},
		UI: UIConfig{
			GridColumns: 0,
			ShowAuthor:  true,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 50,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// envKeyReplacer maps nested keys to env names: provider.api_key -> PROVIDER_API_KEY
var envKeyReplacer = strings.NewReplacer(".", "_")

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "pixgrid", "pixgrid.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "pixgrid", "pixgrid.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "pixgrid")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "pixgrid")
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "pixgrid")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "pixgrid")
	}
}

// GetDataPath returns the directory holding the history database
func GetDataPath() string {
	return defaultDataPath()
}

// newViper builds a viper instance bound to the config search paths and env
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(defaultConfigPath())
	v.AddConfigPath(".")

	// Environment variable overrides, e.g. PIXGRID_PROVIDER_API_KEY
	v.SetEnvPrefix("PIXGRID")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	setDefaults(v, DefaultConfig())
	return v
}

// setDefaults registers every key so AutomaticEnv can resolve it on Unmarshal
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("provider.type", string(cfg.Provider.Type))
	v.SetDefault("provider.api_key", cfg.Provider.APIKey)
	v.SetDefault("provider.base_url", cfg.Provider.BaseURL)
	v.SetDefault("search.page_size", cfg.Search.PageSize)
	v.SetDefault("search.image_type", cfg.Search.ImageType)
	v.SetDefault("search.safe_search", cfg.Search.SafeSearch)
	v.SetDefault("search.timeout", cfg.Search.Timeout)
	v.SetDefault("viewer.command", cfg.Viewer.Command)
	v.SetDefault("viewer.args", cfg.Viewer.Args)
	v.SetDefault("ui.grid_columns", cfg.UI.GridColumns)
	v.SetDefault("ui.show_author", cfg.UI.ShowAuthor)
	v.SetDefault("history.enabled", cfg.History.Enabled)
	v.SetDefault("history.max_entries", cfg.History.MaxEntries)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return loadConfig(newViper())
}

// LoadConfigFile loads configuration from an explicit file path
func LoadConfigFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	return loadConfig(v)
}

func loadConfig(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail at request time
func (c *Config) Validate() error {
	switch c.Provider.Type {
	case ProviderPixabay, ProviderPexels:
	default:
		return fmt.Errorf("unknown provider type: %q", c.Provider.Type)
	}
	if c.Search.PageSize < MinPageSize || c.Search.PageSize > MaxPageSize {
		return fmt.Errorf("search.page_size must be between %d and %d, got %d",
			MinPageSize, MaxPageSize, c.Search.PageSize)
	}
	if c.Search.Timeout <= 0 {
		return fmt.Errorf("search.timeout must be positive")
	}
	if c.History.MaxEntries < 0 {
		return fmt.Errorf("history.max_entries must not be negative")
	}
	return nil
}

// SwitchProvider selects provider p. The key and base URL belong to the old
// provider, so they are cleared when the type changes and the setup flow runs
// again.
func (c *Config) SwitchProvider(p ProviderType) error {
	p = ProviderType(strings.ToLower(strings.TrimSpace(string(p))))
	switch p {
	case ProviderPixabay, ProviderPexels:
	default:
		return fmt.Errorf("unknown provider type: %q", p)
	}
	if p != c.Provider.Type {
		c.Provider.Type = p
		c.Provider.APIKey = ""
		c.Provider.BaseURL = ""
	}
	return nil
}

// IsConfigured returns true if an API key is available
func (c *Config) IsConfigured() bool {
	return c.Provider.APIKey != ""
}

// SaveConfig saves the current configuration to the default config file
func SaveConfig(cfg *Config) error {
	return SaveConfigTo(cfg, filepath.Join(defaultConfigPath(), "config.yaml"))
}

// SaveConfigTo writes cfg to path, creating the directory if needed
func SaveConfigTo(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	// Set fields individually to ensure snake_case key names
	v.Set("provider.type", string(cfg.Provider.Type))
	v.Set("provider.api_key", cfg.Provider.APIKey)
	v.Set("provider.base_url", cfg.Provider.BaseURL)

	v.Set("search.page_size", cfg.Search.PageSize)
	v.Set("search.image_type", cfg.Search.ImageType)
	v.Set("search.safe_search", cfg.Search.SafeSearch)
	v.Set("search.timeout", cfg.Search.Timeout.String())

	v.Set("viewer.command", cfg.Viewer.Command)
	v.Set("viewer.args", cfg.Viewer.Args)

	v.Set("ui.grid_columns", cfg.UI.GridColumns)
	v.Set("ui.show_author", cfg.UI.ShowAuthor)

	v.Set("history.enabled", cfg.History.Enabled)
	v.Set("history.max_entries", cfg.History.MaxEntries)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to restrict config file: %w", err)
	}

	return nil
}
