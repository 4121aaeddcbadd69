package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxResponseBytes bounds provider and geolocation response bodies
const maxResponseBytes = 4 << 20

// JSONClient performs bounded GET requests against JSON APIs
type JSONClient struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

// NewJSONClient creates a JSON client. A nil httpClient uses a default client.
func NewJSONClient(httpClient *http.Client, userAgent string, timeout time.Duration) *JSONClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &JSONClient{
		client:    httpClient,
		userAgent: userAgent,
		timeout:   timeout,
	}
}

// GetJSON fetches rawURL and decodes the body. Bodies that are not valid JSON
// are returned as a trimmed string.
func (c *JSONClient) GetJSON(ctx context.Context, rawURL string) (any, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var body any
	if err := json.Unmarshal(data, &body); err != nil {
		return strings.TrimSpace(string(data)), nil
	}
	return body, nil
}
