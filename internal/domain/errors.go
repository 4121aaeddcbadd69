package domain

import (
	"errors"
	"fmt"
)

// User input errors are reported immediately, before any network call
var (
	ErrMissingURL     = errors.New("no url provided")
	ErrUnsupportedURL = errors.New("unsupported link")
)

// ErrProvidersExhausted is returned when no provider yields a valid media URL
var ErrProvidersExhausted = errors.New("all download providers failed")

// ErrNoValidCandidate marks a provider response without a usable media URL
var ErrNoValidCandidate = errors.New("no valid media url in response")

// ProviderError wraps a single provider's failure. It is recovered locally.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// DeliveryKind identifies the payload that could not be delivered
type DeliveryKind string

const (
	DeliveryVideo    DeliveryKind = "video"
	DeliveryDocument DeliveryKind = "document"
)

// DeliveryError reports that the messaging channel rejected a media payload
type DeliveryError struct {
	Kind DeliveryKind
	Err  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("failed to deliver %s: %v", e.Kind, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// IsUserInputError reports whether err should be answered with a usage hint
func IsUserInputError(err error) bool {
	return errors.Is(err, ErrMissingURL) || errors.Is(err, ErrUnsupportedURL)
}
