package infrastructure

import (
	"strings"

	"github.com/yourusername/xmd-bot/internal/domain"
)

// lookupPath walks a decoded JSON value along object keys
func lookupPath(body any, path ...string) (any, bool) {
	current := body
	for _, key := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// getStringFromPath returns the non-empty string at path
func getStringFromPath(body any, path ...string) (string, bool) {
	value, ok := lookupPath(body, path...)
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// FieldRule extracts the string found at a nested object path
func FieldRule(path ...string) domain.ExtractionRule {
	return func(body any) (string, bool) {
		return getStringFromPath(body, path...)
	}
}

// BareStringRule accepts a response body that is itself an http URL string
func BareStringRule() domain.ExtractionRule {
	return func(body any) (string, bool) {
		s, ok := body.(string)
		if !ok || !strings.HasPrefix(s, "http") {
			return "", false
		}
		return s, true
	}
}

// ExtractTitle returns the top-level title or the default video title
func ExtractTitle(body any) string {
	if title, ok := getStringFromPath(body, "title"); ok {
		return title
	}
	return domain.DefaultVideoTitle
}
