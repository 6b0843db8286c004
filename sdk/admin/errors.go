package admin

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrSessionExpired is returned when a request failed with 401 and the
// subsequent refresh attempt also failed. By the time a caller observes it,
// both stored tokens have been cleared and the session-expired callback has
// fired. Inspect with errors.Is.
var ErrSessionExpired = errors.New("admin: session expired")

// genericErrorMessage is the fallback when a failure response carries neither
// an error nor a message field.
const genericErrorMessage = "request failed"

// APIError is a backend-reported failure: any non-2xx status, or a 2xx whose
// envelope carries success=false.
type APIError struct {
	// StatusCode is the HTTP status of the failing response.
	StatusCode int
	// Message is the user-facing message extracted from the envelope.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("admin: HTTP %d: %s", e.StatusCode, e.Message)
}

// newAPIError builds an APIError from a raw response body, extracting the
// message preferentially from the envelope's error field, then message,
// falling back to a generic string.
func newAPIError(statusCode int, body []byte) *APIError {
	return &APIError{StatusCode: statusCode, Message: extractErrorMessage(body)}
}

func extractErrorMessage(body []byte) string {
	if v := gjson.GetBytes(body, "error"); v.Type == gjson.String && v.Str != "" {
		return v.Str
	}
	if v := gjson.GetBytes(body, "message"); v.Type == gjson.String && v.Str != "" {
		return v.Str
	}
	return genericErrorMessage
}
