package pexels

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
	DefaultBaseURL = "https://api.pexels.com"
	defaultTimeout = 30 * time.Second
	userAgent      = "pixgrid/1.0"
	maxPerPage     = 80
)

// Client implements domain.ImageSearcher for Pexels
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Pexels API client
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
}

// Search fetches one page of photos matching q
func (c *Client) Search(ctx context.Context, q domain.SearchQuery) (domain.ImagePage, error) {
	if strings.TrimSpace(q.Text) == "" {
		return domain.ImagePage{}, domain.ErrEmptyQuery
	}

	query := url.Values{}
	query.Set("query", q.Text)
	query.Set("page", strconv.Itoa(max(q.Page, 1)))
	query.Set("per_page", strconv.Itoa(min(max(q.PerPage, 1), maxPerPage)))

	body, err := c.doRequest(ctx, "/v1/search", query)
	if err != nil {
		return domain.ImagePage{}, err
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("pexels parse error", "error", err, "bodyLen", len(body))
		return domain.ImagePage{}, domain.NewFetchError(domain.FetchParse, fmt.Errorf("failed to parse response: %w", err))
	}

	page := MapPage(resp)
	c.logger.Debug("pexels search complete", "query", q.Text, "page", q.Page, "photos", len(page.Images), "total", page.Total)
	return page, nil
}

// doRequest performs an authenticated GET and returns the body of a 200 response
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, domain.NewFetchError(domain.FetchNetwork, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("pexels request", "path", path, "query", query.Get("query"), "page", query.Get("page"))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("pexels request failed", "error", err)
		return nil, domain.NewFetchError(domain.FetchNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewFetchError(domain.FetchNetwork, fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, domain.NewStatusError(resp.StatusCode, domain.ErrAuthFailed)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("pexels request error", "status", resp.StatusCode, "bodyLen", len(body))
		return nil, domain.NewStatusError(resp.StatusCode, errors.New(errorMessage(resp.StatusCode, body)))
	}

	return body, nil
}

// errorMessage extracts the API error text, falling back to the status text
func errorMessage(status int, body []byte) string {
	var e ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return http.StatusText(status)
}
