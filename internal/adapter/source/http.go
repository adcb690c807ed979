package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// HTTPClient fetches the document with a single GET. It does not retry.
type HTTPClient struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates a fetcher for url with the given request timeout.
func NewHTTPClient(url string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch returns the response body. Any status other than 2xx is an error.
func (c *HTTPClient) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", c.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("data source error: status %d: %s", resp.StatusCode, body)
	}

	data, err := readDocument(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("document fetched", "url", c.url, "bytes", len(data), "duration", time.Since(start))
	return data, nil
}
