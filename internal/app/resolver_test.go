package app

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/xmd-bot/internal/domain"
	"github.com/yourusername/xmd-bot/internal/infrastructure"
)

func newFakeProviders() []domain.Provider {
	return []domain.Provider{
		fakeProvider{name: "first", field: "url"},
		fakeProvider{name: "second", field: "url"},
		fakeProvider{name: "third", field: "url"},
	}
}

func TestResolve_CatsScenario(t *testing.T) {
	providers := infrastructure.DefaultProviders(nil)
	fetcher := newFakeFetcher()
	fetcher.bodies[providers[0].BuildRequest("https://facebook.com/video/123")] = map[string]any{
		"result": map[string]any{"media": map[string]any{"video_hd": "https://cdn.example/v.mp4"}},
		"title":  "Cats",
	}

	resolver := NewDownloadResolver(&fakeRedirects{}, fetcher, providers, nil, nil)
	media, err := resolver.Resolve(context.Background(), "https://facebook.com/video/123")

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/v.mp4", media.URL)
	assert.Equal(t, "Cats", media.Title)
	assert.Equal(t, infrastructure.ProviderHanggts, media.Provider)
	assert.Equal(t, 1, fetcher.callCount())
}

func TestResolve_RejectsWithoutNetwork(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want error
	}{
		{name: "empty", url: "", want: domain.ErrMissingURL},
		{name: "whitespace", url: "   ", want: domain.ErrMissingURL},
		{name: "not a url", url: "not-a-url", want: domain.ErrUnsupportedURL},
		{name: "other host", url: "https://youtube.com/watch?v=1", want: domain.ErrUnsupportedURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			redirects := &fakeRedirects{}
			fetcher := newFakeFetcher()
			resolver := NewDownloadResolver(redirects, fetcher, newFakeProviders(), nil, nil)

			_, err := resolver.Resolve(context.Background(), tt.url)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 0, redirects.calls)
			assert.Equal(t, 0, fetcher.callCount())
		})
	}
}

func TestResolve_UsesRedirectTarget(t *testing.T) {
	providers := newFakeProviders()
	redirects := &fakeRedirects{final: map[string]string{
		"https://fb.watch/abc": "https://www.facebook.com/watch?v=42",
	}}
	fetcher := newFakeFetcher()
	fetcher.bodies[providers[0].BuildRequest("https://www.facebook.com/watch?v=42")] = map[string]any{
		"url": "https://cdn.example/42.mp4",
	}

	resolver := NewDownloadResolver(redirects, fetcher, providers, nil, nil)
	media, err := resolver.Resolve(context.Background(), "https://fb.watch/abc")

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/42.mp4", media.URL)
	assert.Equal(t, domain.DefaultVideoTitle, media.Title)
}

func TestQuery_InvalidCandidateFallsThrough(t *testing.T) {
	providers := newFakeProviders()
	fetcher := newFakeFetcher()
	resolved := "https://facebook.com/video/1"
	fetcher.bodies[providers[0].BuildRequest(resolved)] = map[string]any{"url": "ftp://cdn.example/v.mp4"}
	fetcher.bodies[providers[1].BuildRequest(resolved)] = map[string]any{"url": "not a url"}
	fetcher.bodies[providers[2].BuildRequest(resolved)] = map[string]any{"url": "https://cdn.example/v.mp4"}

	reg := prometheus.NewRegistry()
	resolver := NewDownloadResolver(&fakeRedirects{}, fetcher, providers, infrastructure.NewMetrics(reg), nil)
	media, err := resolver.Query(context.Background(), resolved)

	require.NoError(t, err)
	assert.Equal(t, "third", media.Provider)
	assert.Equal(t, 3, fetcher.callCount())
}

func TestQuery_ShortCircuitsOnFirstSuccess(t *testing.T) {
	providers := newFakeProviders()
	fetcher := newFakeFetcher()
	resolved := "https://facebook.com/video/1"
	fetcher.errs[providers[0].BuildRequest(resolved)] = errors.New("timeout")
	fetcher.bodies[providers[1].BuildRequest(resolved)] = map[string]any{"url": "https://cdn.example/2.mp4"}
	fetcher.bodies[providers[2].BuildRequest(resolved)] = map[string]any{"url": "https://cdn.example/3.mp4"}

	resolver := NewDownloadResolver(&fakeRedirects{}, fetcher, providers, nil, nil)
	media, err := resolver.Query(context.Background(), resolved)

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/2.mp4", media.URL)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestQuery_AllProvidersTimeOut(t *testing.T) {
	providers := newFakeProviders()
	fetcher := newFakeFetcher()
	resolved := "https://facebook.com/video/1"
	for _, p := range providers {
		fetcher.errs[p.BuildRequest(resolved)] = context.DeadlineExceeded
	}

	resolver := NewDownloadResolver(&fakeRedirects{}, fetcher, providers, nil, nil)
	media, err := resolver.Query(context.Background(), resolved)

	assert.Nil(t, media)
	assert.ErrorIs(t, err, domain.ErrProvidersExhausted)
	assert.Equal(t, 3, fetcher.callCount())
}
