package pixabay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/pixgrid/internal/domain"
)

const (
	DefaultBaseURL = "https://pixabay.com"
	defaultTimeout = 30 * time.Second
	userAgent      = "pixgrid/1.0"

	minPerPage = 3
	maxPerPage = 200
)

// Options tunes the search parameters sent with every request
type Options struct {
	ImageType  string // all, photo, illustration, vector
	SafeSearch bool
}

// Client implements domain.ImageSearcher for Pixabay
type Client struct {
	baseURL    string
	apiKey     string
	opts       Options
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Pixabay API client
func NewClient(baseURL, apiKey string, opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		opts:    opts,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// Search fetches one page of images matching q
func (c *Client) Search(ctx context.Context, q domain.SearchQuery) (domain.ImagePage, error) {
	if strings.TrimSpace(q.Text) == "" {
		return domain.ImagePage{}, domain.ErrEmptyQuery
	}

	query := url.Values{}
	query.Set("key", c.apiKey)
	query.Set("q", q.Text)
	query.Set("page", strconv.Itoa(max(q.Page, 1)))
	query.Set("per_page", strconv.Itoa(clampPerPage(q.PerPage)))
	if c.opts.ImageType != "" {
		query.Set("image_type", c.opts.ImageType)
	}
	query.Set("safesearch", strconv.FormatBool(c.opts.SafeSearch))

	body, err := c.doRequest(ctx, "/api/", query)
	if err != nil {
		return domain.ImagePage{}, err
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("pixabay parse error", "error", err, "bodyLen", len(body))
		return domain.ImagePage{}, domain.NewFetchError(domain.FetchParse, fmt.Errorf("failed to parse response: %w", err))
	}

	page := MapPage(resp)
	c.logger.Debug("pixabay search complete", "query", q.Text, "page", q.Page, "hits", len(page.Images), "total", page.Total)
	return page, nil
}

// doRequest performs a GET and returns the body of a 200 response
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, domain.NewFetchError(domain.FetchNetwork, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("pixabay request", "path", path, "q", query.Get("q"), "page", query.Get("page"))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("pixabay request failed", "error", err)
		return nil, domain.NewFetchError(domain.FetchNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewFetchError(domain.FetchNetwork, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		// Pixabay answers errors with a plain text body such as "[ERROR 400] ..."
		msg := strings.TrimSpace(string(body))
		c.logger.Error("pixabay request error", "status", resp.StatusCode, "body", msg)
		if isKeyError(resp.StatusCode, msg) {
			return nil, domain.NewStatusError(resp.StatusCode, domain.ErrAuthFailed)
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, domain.NewStatusError(resp.StatusCode, errors.New(msg))
	}

	return body, nil
}

// isKeyError reports whether Pixabay rejected the API key
func isKeyError(status int, body string) bool {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return true
	}
	return status == http.StatusBadRequest && strings.Contains(strings.ToLower(body), "invalid api key")
}

// clampPerPage keeps per_page inside the range Pixabay accepts
func clampPerPage(n int) int {
	return min(max(n, minPerPage), maxPerPage)
}
