package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yourusername/xmd-bot/internal/domain"
	"github.com/yourusername/xmd-bot/internal/infrastructure"
	"go.uber.org/zap"
)

// JSONFetcher performs a bounded GET against a JSON API
type JSONFetcher interface {
	GetJSON(ctx context.Context, rawURL string) (any, error)
}

// URLResolver follows redirects of a share link. It never fails; on error
// it returns the input unchanged.
type URLResolver interface {
	Resolve(ctx context.Context, rawURL string) string
}

// DownloadResolver turns a Facebook link into a direct media URL
type DownloadResolver struct {
	redirects URLResolver
	fetcher   JSONFetcher
	providers []domain.Provider
	metrics   *infrastructure.Metrics
	logger    *zap.Logger
}

// NewDownloadResolver creates a resolver querying providers in order
func NewDownloadResolver(
	redirects URLResolver,
	fetcher JSONFetcher,
	providers []domain.Provider,
	metrics *infrastructure.Metrics,
	logger *zap.Logger,
) *DownloadResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DownloadResolver{
		redirects: redirects,
		fetcher:   fetcher,
		providers: providers,
		metrics:   metrics,
		logger:    logger,
	}
}

// Resolve validates rawURL, follows its redirects and queries the providers
func (r *DownloadResolver) Resolve(ctx context.Context, rawURL string) (*domain.MediaResult, error) {
	req := domain.DownloadRequest{RawURL: strings.TrimSpace(rawURL)}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	resolved := r.FollowRedirects(ctx, req.RawURL)
	return r.Query(ctx, resolved.FinalURL)
}

// FollowRedirects resolves share and short links to their final URL
func (r *DownloadResolver) FollowRedirects(ctx context.Context, rawURL string) domain.ResolvedURL {
	final := r.redirects.Resolve(ctx, rawURL)
	if final != rawURL {
		r.logger.Debug("Resolved share link", zap.String("url", rawURL), zap.String("resolved", final))
	}
	return domain.ResolvedURL{FinalURL: final}
}

// Query tries each provider in priority order and returns the first valid
// media URL. It returns ErrProvidersExhausted when none succeeds.
func (r *DownloadResolver) Query(ctx context.Context, resolvedURL string) (*domain.MediaResult, error) {
	result, _, err := FirstSuccess(ctx, r.providers, func(ctx context.Context, p domain.Provider) (*domain.MediaResult, error) {
		r.logger.Debug("Trying provider", zap.String("provider", p.Name()))

		media, err := r.queryProvider(ctx, p, resolvedURL)
		r.metrics.ObserveProvider(p.Name(), err == nil)
		if err != nil {
			r.logger.Info("Provider failed", zap.String("provider", p.Name()), zap.Error(err))
			return nil, err
		}

		r.logger.Info("Provider succeeded",
			zap.String("provider", p.Name()),
			zap.String("title", media.Title))
		return media, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrProvidersExhausted, err)
	}
	return result, nil
}

func (r *DownloadResolver) queryProvider(ctx context.Context, p domain.Provider, resolvedURL string) (*domain.MediaResult, error) {
	body, err := r.fetcher.GetJSON(ctx, p.BuildRequest(resolvedURL))
	if err != nil {
		return nil, &domain.ProviderError{Provider: p.Name(), Err: err}
	}

	candidate, ok := p.ParseResponse(body)
	if !ok || !domain.IsValidMediaURL(candidate) {
		return nil, &domain.ProviderError{Provider: p.Name(), Err: domain.ErrNoValidCandidate}
	}

	return &domain.MediaResult{
		URL:      candidate,
		Title:    infrastructure.ExtractTitle(body),
		Provider: p.Name(),
	}, nil
}
