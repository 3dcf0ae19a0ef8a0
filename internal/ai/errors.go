package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrColdStart matches provider errors caused by a model that is still
	// loading. Callers may retry after a delay; the client never does.
	ErrColdStart = errors.New("model is loading (cold start), retry later")
	// ErrMissingCredentials is returned when a provider is built without an API key.
	ErrMissingCredentials = errors.New("api credentials are missing")
)

// ProviderError carries the upstream status and message of a failed call.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode == http.StatusServiceUnavailable {
		return fmt.Sprintf("%s: %s", e.Provider, ErrColdStart)
	}
	return fmt.Sprintf("%s error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

// Is reports cold starts as ErrColdStart.
func (e *ProviderError) Is(target error) bool {
	return target == ErrColdStart && e.StatusCode == http.StatusServiceUnavailable
}

// IsColdStart reports whether err is a provider cold start.
func IsColdStart(err error) bool {
	return errors.Is(err, ErrColdStart)
}

// UnsupportedProviderError is returned for an unknown provider tag.
type UnsupportedProviderError struct {
	Tag string
}

func (e *UnsupportedProviderError) Error() string {
	return fmt.Sprintf("unsupported ai provider: %s", e.Tag)
}

// NewProviderError builds a ProviderError from a raw HTTP error body.
func NewProviderError(provider string, status int, body []byte) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: status,
		Message:    ErrorMessage(body),
	}
}

// ErrorMessage extracts the upstream message from a JSON error body. The
// "error" member may be a string or an object with a "message"; anything else
// yields the trimmed raw body.
func ErrorMessage(body []byte) string {
	raw := strings.TrimSpace(string(body))

	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Error) == 0 {
		return raw
	}

	var text string
	if err := json.Unmarshal(payload.Error, &text); err == nil {
		return text
	}

	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Error, &nested); err == nil && nested.Message != "" {
		return nested.Message
	}

	return string(payload.Error)
}
