package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register gif decoder
	_ "image/jpeg" // register jpeg decoder
	_ "image/png"  // register png decoder
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/pixgrid/internal/domain"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register webp decoder
)

const (
	defaultPreviewTimeout = 30 * time.Second
	maxPreviewBytes       = 32 << 20
	maxPreviewPixels      = 50_000_000
	userAgent             = "pixgrid/1.0"
)

// Preview is a full-size image scaled down to a terminal cell box
type Preview struct {
	Image        image.Image
	SourceWidth  int
	SourceHeight int
	Format       string
}

// PreviewService downloads and scales full-size images for the detail overlay
type PreviewService struct {
	httpClient *http.Client
	logger     *slog.Logger
	maxPixels  int64
}

// NewPreviewService creates a preview loader. A nil client gets a default one.
func NewPreviewService(httpClient *http.Client, logger *slog.Logger) *PreviewService {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultPreviewTimeout}
	}
	return &PreviewService{
		httpClient: httpClient,
		logger:     logger,
		maxPixels:  maxPreviewPixels,
	}
}

// Load fetches url and scales it to fit cols x rows terminal cells. Each cell
// holds two vertical pixels, so the target box is cols x rows*2 pixels.
func (s *PreviewService) Load(ctx context.Context, url string, cols, rows int) (Preview, error) {
	if cols <= 0 || rows <= 0 {
		return Preview{}, errors.New("preview box must be positive")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Preview{}, domain.NewFetchError(domain.FetchNetwork, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("preview request failed", "error", err, "url", url)
		return Preview{}, domain.NewFetchError(domain.FetchNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("preview request error", "status", resp.StatusCode, "url", url)
		return Preview{}, domain.NewStatusError(resp.StatusCode, errors.New(http.StatusText(resp.StatusCode)))
	}

	// Read the header first so oversized images are refused before decoding
	body := io.LimitReader(resp.Body, maxPreviewBytes)
	var header bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(body, &header))
	if err != nil {
		s.logger.Error("preview decode failed", "error", err, "url", url)
		return Preview{}, domain.NewFetchError(domain.FetchParse, fmt.Errorf("failed to decode image: %w", err))
	}
	if int64(cfg.Width)*int64(cfg.Height) > s.maxPixels {
		s.logger.Warn("preview too large", "url", url, "width", cfg.Width, "height", cfg.Height)
		return Preview{}, domain.NewFetchError(domain.FetchParse, fmt.Errorf("image too large: %dx%d", cfg.Width, cfg.Height))
	}

	src, format, err := image.Decode(io.MultiReader(&header, body))
	if err != nil {
		s.logger.Error("preview decode failed", "error", err, "url", url)
		return Preview{}, domain.NewFetchError(domain.FetchParse, fmt.Errorf("failed to decode image: %w", err))
	}

	bounds := src.Bounds()
	s.logger.Debug("preview loaded", "url", url, "format", format, "width", bounds.Dx(), "height", bounds.Dy())

	return Preview{
		Image:        Fit(src, cols, rows*2),
		SourceWidth:  bounds.Dx(),
		SourceHeight: bounds.Dy(),
		Format:       format,
	}, nil
}

// Fit scales src to fit within maxWidth x maxHeight keeping its aspect ratio.
// Images are never upscaled.
func Fit(src image.Image, maxWidth, maxHeight int) image.Image {
	srcBounds := src.Bounds()
	srcWidth := srcBounds.Dx()
	srcHeight := srcBounds.Dy()
	if srcWidth == 0 || srcHeight == 0 {
		return src
	}

	scale := min(float64(maxWidth)/float64(srcWidth), float64(maxHeight)/float64(srcHeight))
	if scale > 1.0 {
		scale = 1.0
	}

	dstWidth := max(int(float64(srcWidth)*scale), 1)
	dstHeight := max(int(float64(srcHeight)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, srcBounds, draw.Over, nil)
	return dst
}
