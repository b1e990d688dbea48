package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

// Launcher opens full-size image URLs in an external viewer
type Launcher struct {
	command string   // configured viewer command, empty to auto-detect
	args    []string // additional arguments for the viewer
	logger  *slog.Logger

	goos     string
	lookPath func(file string) (string, error)
	start    func(name string, args ...string) error
}

// viewerConfig describes a viewer that can open remote URLs directly
type viewerConfig struct {
	args []string // flags placed before the URL
}

// viewers registry of known URL-capable image viewers
var viewers = map[string]viewerConfig{
	"feh":      {args: []string{"--scale-down", "--auto-zoom"}},
	"eog":      {},
	"gwenview": {},
}

// candidateViewers defines the preferred viewer order for each platform.
// Platforms without an entry go straight to the system opener.
var candidateViewers = map[string][]string{
	"linux":   {"feh", "eog", "gwenview"},
	"freebsd": {"feh"},
}

// NewLauncher creates a Launcher for the configured viewer
func NewLauncher(cfg ViewerConfig, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command:  cfg.Command,
		args:     cfg.Args,
		logger:   logger,
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		start:    startDetached,
	}
}

// startDetached starts a process without waiting for it
func startDetached(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Open shows url in the configured viewer, a detected viewer, or the system default
func (l *Launcher) Open(url string) error {
	if url == "" {
		return fmt.Errorf("no image URL to open")
	}

	// Tier 1: user configured a specific viewer
	if l.command != "" {
		args := append(append([]string{}, l.args...), url)
		l.logger.Info("opening with configured viewer", "command", l.command, "args", args)
		if err := l.start(l.command, args...); err != nil {
			return fmt.Errorf("failed to start %s: %w", l.command, err)
		}
		return nil
	}

	// Tier 2: first installed candidate for this platform
	for _, name := range candidateViewers[l.goos] {
		if _, err := l.lookPath(name); err != nil {
			l.logger.Debug("viewer not installed", "viewer", name)
			continue
		}
		args := append(append([]string{}, viewers[name].args...), url)
		if err := l.start(name, args...); err != nil {
			l.logger.Debug("viewer failed to start", "viewer", name, "error", err)
			continue
		}
		l.logger.Info("opened with detected viewer", "viewer", name)
		return nil
	}

	// Tier 3: system default handler
	return l.openDefault(url)
}

// openDefault opens the URL using the system default handler
func (l *Launcher) openDefault(url string) error {
	var name string
	var args []string

	switch l.goos {
	case "darwin":
		name, args = "open", []string{url}
	case "windows":
		name, args = "cmd", []string{"/c", "start", "", url}
	default:
		name, args = "xdg-open", []string{url}
	}

	l.logger.Info("opening with system default", "os", l.goos, "url", url)
	if err := l.start(name, args...); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}
