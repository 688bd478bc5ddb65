package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation marks input rejected before any network call.
	ErrValidation = errors.New("validation failed")
	// ErrNetwork marks transport failures: the request never got a reply.
	ErrNetwork = errors.New("network error")
	// ErrBackend marks a reply with a failure status or unusable body.
	ErrBackend = errors.New("backend error")
	// ErrUnauthorized marks a rejected or expired token.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// BackendError is a non-2xx reply. 401 and 403 also match ErrUnauthorized.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

func (e *BackendError) Is(target error) bool {
	switch target {
	case ErrBackend:
		return true
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	default:
		return false
	}
}
