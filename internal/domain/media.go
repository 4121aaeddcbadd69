package domain

import (
	"net/url"
	"strings"

	"github.com/samber/lo"
)

// BrowserUserAgent is sent to Facebook and the download providers
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultVideoTitle is used when a provider response carries no title
const DefaultVideoTitle = "Facebook Video"

// AcceptedHosts lists the host substrings a Facebook link must contain
var AcceptedHosts = []string{
	"facebook.com",
	"fb.watch",
	"fb.com",
	"m.facebook.com",
	"web.facebook.com",
}

// DownloadRequest is a single download invocation
type DownloadRequest struct {
	RawURL string
}

// ResolvedURL is the destination reached after following redirects
type ResolvedURL struct {
	FinalURL string
}

// MediaResult is the direct media URL produced by the first successful provider
type MediaResult struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Provider string `json:"provider"`
}

// Validate checks the request before any network call is made
func (r DownloadRequest) Validate() error {
	if strings.TrimSpace(r.RawURL) == "" {
		return ErrMissingURL
	}
	if !IsSupportedURL(r.RawURL) {
		return ErrUnsupportedURL
	}
	return nil
}

// IsSupportedURL reports whether rawURL contains one of the accepted hosts
func IsSupportedURL(rawURL string) bool {
	return lo.SomeBy(AcceptedHosts, func(host string) bool {
		return strings.Contains(rawURL, host)
	})
}

// IsValidMediaURL reports whether candidate parses as an absolute http(s) URL
func IsValidMediaURL(candidate string) bool {
	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
