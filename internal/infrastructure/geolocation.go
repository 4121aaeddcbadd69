package infrastructure

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yourusername/xmd-bot/internal/domain"
)

// Geolocation provider names
const (
	GeoProviderIPAPI  = "ipapi"
	GeoProviderIPInfo = "ipinfo"
)

type jsonGetter interface {
	GetJSON(ctx context.Context, rawURL string) (any, error)
}

// IPAPILocator queries ipapi.co style responses (city, country_name, country_code)
type IPAPILocator struct {
	client jsonGetter
	url    string
}

// NewIPAPILocator creates the primary locator
func NewIPAPILocator(client jsonGetter, url string) *IPAPILocator {
	return &IPAPILocator{client: client, url: url}
}

// Locate returns the location when both city and country_name are present
func (l *IPAPILocator) Locate(ctx context.Context) (*domain.LocationInfo, error) {
	body, err := l.client.GetJSON(ctx, l.url)
	if err != nil {
		return nil, err
	}
	city, _ := getStringFromPath(body, "city")
	country, _ := getStringFromPath(body, "country_name")
	if city == "" || country == "" {
		return nil, fmt.Errorf("incomplete location response")
	}
	return buildLocation(body, city, country, "country_code"), nil
}

// IPInfoLocator queries ipinfo.io style responses (city, country)
type IPInfoLocator struct {
	client jsonGetter
	url    string
}

// NewIPInfoLocator creates the secondary locator
func NewIPInfoLocator(client jsonGetter, url string) *IPInfoLocator {
	return &IPInfoLocator{client: client, url: url}
}

// Locate returns the location when both city and country are present
func (l *IPInfoLocator) Locate(ctx context.Context) (*domain.LocationInfo, error) {
	body, err := l.client.GetJSON(ctx, l.url)
	if err != nil {
		return nil, err
	}
	city, _ := getStringFromPath(body, "city")
	country, _ := getStringFromPath(body, "country")
	if city == "" || country == "" {
		return nil, fmt.Errorf("incomplete location response")
	}
	return buildLocation(body, city, country, "country"), nil
}

func buildLocation(body any, city, country, countryCodeKey string) *domain.LocationInfo {
	countryCode, _ := getStringFromPath(body, countryCodeKey)
	region, _ := getStringFromPath(body, "region")
	timezone, _ := getStringFromPath(body, "timezone")
	ip, _ := getStringFromPath(body, "ip")
	return &domain.LocationInfo{
		City:        city,
		Country:     country,
		CountryCode: countryCode,
		Region:      region,
		Timezone:    timezone,
		IP:          ip,
	}
}

// namedLocator pairs a locator with its metrics label
type namedLocator struct {
	name    string
	locator domain.Locator
}

// FallbackLocator tries the primary locator, then the secondary on failure
type FallbackLocator struct {
	locators []namedLocator
	metrics  *Metrics
	logger   *zap.Logger
}

// NewFallbackLocator creates the primary/secondary geolocation chain
func NewFallbackLocator(primary, secondary domain.Locator, metrics *Metrics, logger *zap.Logger) *FallbackLocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackLocator{
		locators: []namedLocator{
			{name: GeoProviderIPAPI, locator: primary},
			{name: GeoProviderIPInfo, locator: secondary},
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Locate returns the first successful lookup
func (f *FallbackLocator) Locate(ctx context.Context) (*domain.LocationInfo, error) {
	var lastErr error
	for _, l := range f.locators {
		location, err := l.locator.Locate(ctx)
		if err == nil {
			f.metrics.ObserveGeolocation(l.name, true)
			return location, nil
		}
		f.metrics.ObserveGeolocation(l.name, false)
		f.logger.Info("Geolocation lookup failed", zap.String("provider", l.name), zap.Error(err))
		lastErr = err
	}
	return nil, fmt.Errorf("geolocation unavailable: %w", lastErr)
}
