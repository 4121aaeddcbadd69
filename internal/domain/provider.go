package domain

// Provider is a third-party download API for Facebook videos
type Provider interface {
	// Name returns the provider name used in logs and metrics
	Name() string

	// BuildRequest returns the request URL for the resolved Facebook URL
	BuildRequest(resolvedURL string) string

	// ParseResponse extracts a candidate media URL from a decoded JSON body
	ParseResponse(body any) (string, bool)
}

// ExtractionRule extracts a media URL from one known response shape
type ExtractionRule func(body any) (string, bool)

// ApplyRules returns the first candidate produced by rules, in order
func ApplyRules(body any, rules []ExtractionRule) (string, bool) {
	for _, rule := range rules {
		if candidate, ok := rule(body); ok {
			return candidate, true
		}
	}
	return "", false
}
