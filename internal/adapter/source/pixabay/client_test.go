package pixabay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mmcdole/pixgrid/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `{
  "total": 4692,
  "totalHits": 500,
  "hits": [
    {
      "id": 195893,
      "pageURL": "https://pixabay.com/en/blossom-bloom-flower-195893/",
      "type": "photo",
      "tags": "blossom, bloom, flower",
      "previewURL": "https://cdn.pixabay.com/photo/2013/10/15/09/12/flower-195893_150.jpg",
      "webformatURL": "https://pixabay.com/get/35bbf209e13e39d2_640.jpg",
      "largeImageURL": "https://pixabay.com/get/ed6a99fd0a76647_1280.jpg",
      "imageWidth": 4000,
      "imageHeight": 2250,
      "user": "Josch13"
    },
    {
      "id": 7,
      "tags": "broken",
      "previewURL": "",
      "webformatURL": "",
      "largeImageURL": ""
    }
  ]
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", Options{ImageType: "photo", SafeSearch: true}, nil)
}

func TestSearchSendsQueryAndMapsHits(t *testing.T) {
	var got *http.Request
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePage))
	})

	page, err := c.Search(context.Background(), domain.SearchQuery{Text: "yellow flowers", Page: 2, PerPage: 12})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/api/", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "test-key", q.Get("key"))
	assert.Equal(t, "yellow flowers", q.Get("q"))
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "12", q.Get("per_page"))
	assert.Equal(t, "photo", q.Get("image_type"))
	assert.Equal(t, "true", q.Get("safesearch"))

	assert.Equal(t, 500, page.Total)
	require.Len(t, page.Images, 1, "hits without URLs are dropped")
	img := page.Images[0]
	assert.Equal(t, "195893", img.ID)
	assert.Equal(t, "https://pixabay.com/get/35bbf209e13e39d2_640.jpg", img.ThumbnailURL)
	assert.Equal(t, "https://pixabay.com/get/ed6a99fd0a76647_1280.jpg", img.FullURL)
	assert.Equal(t, "blossom, bloom, flower", img.Tags)
	assert.Equal(t, "Josch13", img.Author)
	assert.Equal(t, "4000x2250", img.Dimensions())
}

func TestSearchClampsPerPage(t *testing.T) {
	var perPage string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		perPage = r.URL.Query().Get("per_page")
		_, _ = w.Write([]byte(`{"hits":[]}`))
	})

	_, err := c.Search(context.Background(), domain.SearchQuery{Text: "x", Page: 1, PerPage: 1})
	require.NoError(t, err)
	assert.Equal(t, "3", perPage)

	_, err = c.Search(context.Background(), domain.SearchQuery{Text: "x", Page: 1, PerPage: 1000})
	require.NoError(t, err)
	assert.Equal(t, "200", perPage)
}

func TestSearchEmptyQuery(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "k", Options{}, nil)
	_, err := c.Search(context.Background(), domain.SearchQuery{Text: "  ", Page: 1, PerPage: 12})
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
}

func TestSearchStatusErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantAuth   bool
		wantInBody string
	}{
		{"invalid key", http.StatusBadRequest, "[ERROR 400] Invalid API key", true, ""},
		{"out of range", http.StatusBadRequest, "[ERROR 400] \"page\" is out of valid range.", false, "out of valid range"},
		{"rate limited", http.StatusTooManyRequests, "", false, "Too Many Requests"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.Search(context.Background(), domain.SearchQuery{Text: "cats", Page: 1, PerPage: 12})
			require.Error(t, err)

			var fe *domain.FetchError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, domain.FetchStatus, fe.Kind)
			assert.Equal(t, tt.status, fe.Status)
			assert.Equal(t, tt.wantAuth, errors.Is(err, domain.ErrAuthFailed))
			if tt.wantInBody != "" {
				assert.Contains(t, err.Error(), tt.wantInBody)
			}
		})
	}
}

func TestSearchMalformedBody(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits": [`))
	})

	_, err := c.Search(context.Background(), domain.SearchQuery{Text: "cats", Page: 1, PerPage: 12})
	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, domain.FetchParse, fe.Kind)
}

func TestSearchCancelledContext(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Search(ctx, domain.SearchQuery{Text: "cats", Page: 1, PerPage: 12})
	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, domain.FetchNetwork, fe.Kind)
	assert.ErrorIs(t, err, context.Canceled)
}
