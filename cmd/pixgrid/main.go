package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/pixgrid/internal/adapter"
	"github.com/mmcdole/pixgrid/internal/adapter/source"
	"github.com/mmcdole/pixgrid/internal/domain"
	"github.com/mmcdole/pixgrid/internal/service"
	"github.com/mmcdole/pixgrid/internal/store"
	"github.com/mmcdole/pixgrid/internal/tui"
	"github.com/mmcdole/pixgrid/internal/tui/styles"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

func main() {
	var (
		showVersion bool
		query       string
		provider    string
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&query, "q", "", "search for `query` on startup")
	flag.StringVar(&provider, "provider", "", "image provider to use (pixabay or pexels)")
	flag.Parse()

	if showVersion {
		fmt.Printf("pixgrid %s\n", Version)
		return
	}

	if err := run(query, provider); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(query, provider string) error {
	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if provider != "" {
		if err := cfg.SwitchProvider(adapter.ProviderType(provider)); err != nil {
			return err
		}
	}

	logger, logFile, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		defer logFile.Close()
	}
	slog.SetDefault(logger)

	logger.Info("starting pixgrid", "version", Version, "provider", cfg.Provider.Type)

	if !cfg.IsConfigured() {
		return runSetupFlow(cfg, logger)
	}

	searcher, err := source.NewClientFromConfig(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create image source: %w", err)
	}

	historyDir := ""
	if cfg.History.Enabled {
		historyDir = adapter.GetDataPath()
	}
	history, err := store.NewHistoryStore(historyDir, cfg.History.MaxEntries)
	if err != nil {
		// History is optional; keep going with an in-memory store
		logger.Warn("history unavailable", "error", err)
		history, _ = store.NewHistoryStore("", cfg.History.MaxEntries)
	}
	defer history.Close()

	launcher := adapter.NewLauncher(cfg.Viewer, logger)

	searchSvc := service.NewSearchService(searcher, cfg.Search.Timeout, logger)
	historySvc := service.NewHistoryService(history, cfg.History.MaxEntries, logger)
	previewSvc := service.NewPreviewService(nil, logger)

	model := tui.NewModel(searchSvc, historySvc, previewSvc, launcher, tui.Options{
		PageSize:     cfg.Search.PageSize,
		GridColumns:  cfg.UI.GridColumns,
		ShowAuthor:   cfg.UI.ShowAuthor,
		InitialQuery: query,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// runSetupFlow asks for a provider and API key on first run
func runSetupFlow(cfg *adapter.Config, logger *slog.Logger) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("%w: set provider.api_key in the config file or PIXGRID_PROVIDER_API_KEY",
			domain.ErrNotConfigured)
	}

	fmt.Println()
	fmt.Println("Welcome to pixgrid!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Printf("Image provider [pixabay/pexels] (%s): ", cfg.Provider.Type)
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		choice := strings.ToLower(strings.TrimSpace(input))
		if choice == "" {
			break
		}
		switch adapter.ProviderType(choice) {
		case adapter.ProviderPixabay, adapter.ProviderPexels:
			cfg.Provider.Type = adapter.ProviderType(choice)
		default:
			fmt.Printf("Unknown provider %q. Please try again.\n", choice)
			continue
		}
		break
	}

	for {
		fmt.Printf("Enter your %s API key: ", cfg.Provider.Type)
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}
		cfg.Provider.APIKey = strings.TrimSpace(string(raw))
		if cfg.Provider.APIKey == "" {
			fmt.Println("API key cannot be empty. Please try again.")
			continue
		}

		if err := verifyKeyWithSpinner(cfg, logger); err != nil {
			fmt.Printf("✗ Could not verify key: %v\n", err)
			fmt.Println("Please check the key and try again.")
			fmt.Println()
			continue
		}
		break
	}

	if err := adapter.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run pixgrid again to start searching.")

	return nil
}

// verifyKeyWithSpinner issues one small search to check the key
func verifyKeyWithSpinner(cfg *adapter.Config, logger *slog.Logger) error {
	searcher, err := source.NewClientFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		_, err := searcher.Search(ctx, domain.SearchQuery{Text: "nature", Page: 1, PerPage: adapter.MinPageSize})
		errCh <- err
	}()

	frame := 0
	fmt.Printf("\r%s Checking API key...", styles.SpinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case err := <-errCh:
			fmt.Print(clearSpinnerLine)
			if errors.Is(err, domain.ErrAuthFailed) {
				return fmt.Errorf("key rejected by %s", cfg.Provider.Type)
			}
			if err != nil {
				return err
			}
			fmt.Println("✓ Key accepted")
			return nil

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Checking API key...", styles.SpinnerFrames[frame%len(styles.SpinnerFrames)])

		case <-ctx.Done():
			fmt.Print(clearSpinnerLine)
			return fmt.Errorf("verification timed out")
		}
	}
}
