package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is matched by errors returned for 401 responses.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is matched by errors returned for 404 responses.
	ErrNotFound = errors.New("not found")
)

// Error is returned for any non-2xx response.
type Error struct {
	Op      string // e.g. "loading goals"
	Status  int
	Message string // the server's "error" field, if any
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, http.StatusText(e.Status))
}

// Is maps status codes onto the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}
