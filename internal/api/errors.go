package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

var (
	ErrTimeout          = errors.New("Request timeout - please try again")
	ErrNetwork          = errors.New("Network error - please check if the backend server is running")
	ErrMalformedPayload = errors.New("malformed payload")
)

// HTTPError is a non-2xx response from the backend.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

func newHTTPError(code int, body []byte) *HTTPError {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	e := &HTTPError{StatusCode: code}
	if json.Unmarshal(body, &payload) == nil {
		e.Message = payload.Error
		if e.Message == "" {
			e.Message = payload.Message
		}
	}
	return e
}

// PayloadError reports a response body that does not have the expected shape.
type PayloadError struct {
	Op     string
	Reason string
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *PayloadError) Unwrap() error {
	return ErrMalformedPayload
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.StatusCode == http.StatusNotFound
}

func transportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return ErrTimeout
	}
	return fmt.Errorf("%w (%s)", ErrNetwork, strings.TrimSpace(cause(err)))
}

// cause strips the method and URL prefix *url.Error adds.
func cause(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
