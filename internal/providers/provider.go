// Package providers implements schema.LLMProvider over direct HTTP calls to
// OpenAI-compatible endpoints and the Anthropic Messages API.
package providers

import (
	"fmt"
	"net/http"
	"strings"
)

// StatusError is returned when the endpoint answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, friendlyHTTPError(e.StatusCode, e.Body))
}

func friendlyHTTPError(code int, body string) string {
	if code == http.StatusTooManyRequests {
		return "rate limit exceeded"
	}
	s := strings.TrimSpace(body)
	if len(s) > 300 {
		s = s[:300]
	}
	return s
}
