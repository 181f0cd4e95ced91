package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ExternalAPIError is returned when the provider answers with a non-2xx status,
// with an error message in an otherwise successful body, or with a body that
// cannot be decoded.
type ExternalAPIError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *ExternalAPIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("external API %s returned status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("external API %s returned status %d: %s", e.Endpoint, e.Status, e.Message)
}

// Retryable reports whether the status is worth another attempt
func (e *ExternalAPIError) Retryable() bool {
	switch e.Status {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// IsExternalAPIError reports whether err wraps an ExternalAPIError
func IsExternalAPIError(err error) bool {
	var apiErr *ExternalAPIError
	return errors.As(err, &apiErr)
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
