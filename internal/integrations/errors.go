// Package integrations holds the shared contract for external provider
// clients: the error type every client maps provider failures into, and
// small helpers for classifying those failures
package integrations

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Error represents a failed call to an external provider. Callers decide
// recoverability; some handlers special-case specific provider messages
// into success paths
type Error struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s request failed with status %d: %s", e.Service, e.StatusCode, e.Message)
}

// NewError builds an Error for one provider response
func NewError(service string, statusCode int, message string) *Error {
	return &Error{Service: service, StatusCode: statusCode, Message: message}
}

// AsError extracts an *Error from an error chain
func AsError(err error) (*Error, bool) {
	var provErr *Error
	if errors.As(err, &provErr) {
		return provErr, true
	}
	return nil, false
}

// ErrorFromResponse drains a non-success provider response into an Error,
// extracting a human-readable message from common JSON error envelopes
func ErrorFromResponse(service string, resp *http.Response) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	message := http.StatusText(resp.StatusCode)

	// Providers disagree on the field carrying the message; probe the usual
	// suspects
	var envelope struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Title   string `json:"title"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch {
		case envelope.Detail != "":
			message = envelope.Detail
		case envelope.Message != "":
			message = envelope.Message
		case envelope.Error.Message != "":
			message = envelope.Error.Message
		case envelope.Title != "":
			message = envelope.Title
		}
	}

	return NewError(service, resp.StatusCode, message)
}
