package backend

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("backend rejected credentials")
	ErrBadResponse  = errors.New("malformed backend response")
)

// APIError is a non-2xx backend response. Detail carries the backend's own
// message verbatim so callers can surface it to the user unchanged.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// Is lets a 401 APIError match the ErrUnauthorized sentinel without losing
// the backend's detail message.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Detail extracts the backend's message from err, or returns fallback.
func Detail(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
