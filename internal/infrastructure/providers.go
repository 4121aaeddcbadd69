package infrastructure

import (
	"net/url"

	"github.com/yourusername/xmd-bot/internal/domain"
)

// Provider names, in priority order
const (
	ProviderHanggts = "Hanggts API"
	ProviderSiputzx = "API 2 (alternative)"
	ProviderFabdl   = "API 3 (fallback)"
)

// Endpoint keys accepted in resolver.endpoints. Config keys are case-insensitive.
const (
	EndpointHanggts = "hanggts"
	EndpointSiputzx = "siputzx"
	EndpointFabdl   = "fabdl"
)

var defaultEndpoints = map[string]string{
	EndpointHanggts: "https://api.hanggts.xyz/download/facebook",
	EndpointSiputzx: "https://api.siputzx.my.id/api/downloader/fbdl",
	EndpointFabdl:   "https://api.fabdl.com/facebook/video",
}

// HTTPProvider is a download API queried with GET <endpoint>?url=<encoded url>
type HTTPProvider struct {
	name     string
	endpoint string
	rules    []domain.ExtractionRule
}

// NewHTTPProvider creates a provider with its ordered extraction rules
func NewHTTPProvider(name, endpoint string, rules ...domain.ExtractionRule) *HTTPProvider {
	return &HTTPProvider{
		name:     name,
		endpoint: endpoint,
		rules:    rules,
	}
}

// Name returns the provider name
func (p *HTTPProvider) Name() string {
	return p.name
}

// BuildRequest embeds the percent-encoded resolved URL as the url query parameter
func (p *HTTPProvider) BuildRequest(resolvedURL string) string {
	return p.endpoint + "?url=" + url.QueryEscape(resolvedURL)
}

// ParseResponse applies the provider's extraction rules in order
func (p *HTTPProvider) ParseResponse(body any) (string, bool) {
	return domain.ApplyRules(body, p.rules)
}

// DefaultProviders returns the three download providers in priority order.
// overrides replaces the endpoint of a provider by endpoint key.
func DefaultProviders(overrides map[string]string) []domain.Provider {
	endpoint := func(key string) string {
		if e, ok := overrides[key]; ok && e != "" {
			return e
		}
		return defaultEndpoints[key]
	}

	return []domain.Provider{
		NewHTTPProvider(ProviderHanggts, endpoint(EndpointHanggts),
			FieldRule("result", "media", "video_hd"),
			FieldRule("result", "media", "video_sd"),
			FieldRule("result", "url"),
			FieldRule("data", "url"),
			FieldRule("url"),
			BareStringRule(),
		),
		NewHTTPProvider(ProviderSiputzx, endpoint(EndpointSiputzx),
			FieldRule("result", "hd"),
			FieldRule("result", "sd"),
		),
		NewHTTPProvider(ProviderFabdl, endpoint(EndpointFabdl),
			FieldRule("video"),
		),
	}
}
