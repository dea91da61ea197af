package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx response from the volunteer backend
type APIError struct {
	StatusCode int
	Message    string
}

var (
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized, Message: "session expired or invalid"}
	ErrForbidden    = &APIError{StatusCode: http.StatusForbidden, Message: "not permitted"}
	ErrNotFound     = &APIError{StatusCode: http.StatusNotFound, Message: "not found"}
)

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Is matches any APIError carrying the same status code, so errors.Is(err, ErrForbidden) holds for every 403
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// maxPlainMessage bounds how much of a non-JSON body is surfaced verbatim
const maxPlainMessage = 300

// newAPIError extracts the user-facing message from an error body.
// A plain string body is used as is, a JSON body contributes its message or error field,
// anything else falls back to a generic message.
func newAPIError(statusCode int, body []byte) *APIError {
	return &APIError{StatusCode: statusCode, Message: extractMessage(statusCode, body)}
}

func extractMessage(statusCode int, body []byte) string {
	fallback := fmt.Sprintf("request failed (%d %s)", statusCode, http.StatusText(statusCode))

	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return fallback
	}

	switch trimmed[0] {
	case '{':
		var payload map[string]any
		if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
			return fallback
		}
		for _, key := range []string{"message", "error"} {
			if s, ok := payload[key].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
		return fallback
	case '"':
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err == nil && s != "" {
			return s
		}
		return fallback
	case '[', '<':
		return fallback
	}

	if len(trimmed) > maxPlainMessage {
		return fallback
	}
	return trimmed
}
