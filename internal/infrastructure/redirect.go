package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// RedirectResolver follows share-link redirects with a header-only request
type RedirectResolver struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	logger    *zap.Logger
}

// NewRedirectResolver creates a resolver that follows at most maxRedirects hops
func NewRedirectResolver(userAgent string, timeout time.Duration, maxRedirects int, logger *zap.Logger) *RedirectResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
	return &RedirectResolver{
		client:    client,
		userAgent: userAgent,
		timeout:   timeout,
		logger:    logger,
	}
}

// Resolve returns the URL reached after redirects, or rawURL on any failure
func (r *RedirectResolver) Resolve(ctx context.Context, rawURL string) string {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		r.logger.Debug("URL resolution failed", zap.String("url", rawURL), zap.Error(err))
		return rawURL
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("URL resolution failed", zap.String("url", rawURL), zap.Error(err))
		return rawURL
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		r.logger.Debug("URL resolution failed",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode))
		return rawURL
	}

	return resp.Request.URL.String()
}
