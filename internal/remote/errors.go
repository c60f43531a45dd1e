package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	// ErrUnreachable wraps transport failures: no connection, DNS, timeouts.
	ErrUnreachable = errors.New("remote unreachable")
	// ErrUnauthorized wraps 401 and 403 responses.
	ErrUnauthorized = errors.New("remote rejected credentials")
)

// StatusError is a non-2xx response from the API.
type StatusError struct {
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e == nil {
		return ""
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.StatusCode, msg)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.StatusCode)
}

// Unwrap lets errors.Is match ErrUnauthorized on auth failures.
func (e *StatusError) Unwrap() error {
	if e == nil {
		return nil
	}
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}

// IsTransient reports whether retrying the same request later may succeed.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnreachable) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= 500:
			return true
		}
	}
	return false
}

func newStatusError(path string, resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Path:       path,
		StatusCode: resp.StatusCode,
		Message:    errorMessage(body),
	}
}

func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(payload.Error); msg != "" {
			return msg
		}
	}
	return strings.TrimSpace(string(body))
}
