package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mmcdole/pixgrid/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPreviewLoad(t *testing.T) {
	data := solidPNG(t, 100, 50)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer srv.Close()

	svc := NewPreviewService(srv.Client(), nil)
	p, err := svc.Load(context.Background(), srv.URL+"/full.png", 20, 10)
	require.NoError(t, err)

	assert.Equal(t, "png", p.Format)
	assert.Equal(t, 100, p.SourceWidth)
	assert.Equal(t, 50, p.SourceHeight)
	assert.Equal(t, 20, p.Image.Bounds().Dx())
	assert.Equal(t, 10, p.Image.Bounds().Dy())
}

func TestPreviewLoadErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing.jpg":
			http.NotFound(w, r)
		default:
			w.Write([]byte("definitely not an image"))
		}
	}))
	defer srv.Close()

	svc := NewPreviewService(srv.Client(), nil)

	tests := []struct {
		name string
		path string
		kind domain.FetchKind
	}{
		{"status", "/missing.jpg", domain.FetchStatus},
		{"decode", "/garbage.jpg", domain.FetchParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Load(context.Background(), srv.URL+tt.path, 20, 10)
			var fe *domain.FetchError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.kind, fe.Kind)
		})
	}
}

func TestPreviewLoadRefusesOversizedImage(t *testing.T) {
	data := solidPNG(t, 100, 50)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	svc := NewPreviewService(srv.Client(), nil)
	svc.maxPixels = 100*50 - 1

	_, err := svc.Load(context.Background(), srv.URL+"/huge.png", 20, 10)
	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, domain.FetchParse, fe.Kind)
	assert.Contains(t, err.Error(), "image too large: 100x50")

	svc.maxPixels = 100 * 50
	p, err := svc.Load(context.Background(), srv.URL+"/fits.png", 20, 10)
	require.NoError(t, err)
	assert.Equal(t, 100, p.SourceWidth)
}

func TestPreviewLoadRejectsEmptyBox(t *testing.T) {
	svc := NewPreviewService(nil, nil)
	_, err := svc.Load(context.Background(), "http://127.0.0.1/x.png", 0, 10)
	assert.Error(t, err)
}

func TestFitNeverUpscales(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 4))
	out := Fit(src, 80, 80)
	assert.Equal(t, 8, out.Bounds().Dx())
	assert.Equal(t, 4, out.Bounds().Dy())
}

func TestFitKeepsAspect(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 100))
	out := Fit(src, 40, 40)
	assert.Equal(t, 40, out.Bounds().Dx())
	assert.Equal(t, 10, out.Bounds().Dy())
}
