package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrNotFound marks a 404 on a single-document lookup.
var ErrNotFound = errors.New("document not found")

// APIError is the normalized form of every non-2xx response. Message is
// what a user may be shown: the server's error field when the body was
// parsable, the operation's generic fallback otherwise. Raw transport
// errors never reach callers uninterpreted.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// newAPIError builds the typed failure for a non-2xx response. The body is
// never assumed to be well-formed JSON.
func newAPIError(op string, resp *http.Response, fallback string) *APIError {
	message := fallback

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil && len(body) > 0 {
		var payload struct {
			Error string `json:"error"`
		}
		if jsonErr := json.Unmarshal(body, &payload); jsonErr == nil && payload.Error != "" {
			message = payload.Error
		}
	}

	return &APIError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}

// transportError wraps a failed round trip (DNS, refused connection,
// timeout) so the operation still reads as one failure.
func transportError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
