package acquire

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTemporary marks failures that may succeed when retried.
	ErrTemporary = errors.New("temporary acquisition failure")

	// ErrPermanent marks failures that will not go away by retrying.
	ErrPermanent = errors.New("permanent acquisition failure")

	// ErrProductNotFound is returned when the service does not know a product.
	ErrProductNotFound = errors.New("product not found at source")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)

// IsRetryable reports whether err is a temporary acquisition failure.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTemporary)
}

// StatusError is an unexpected HTTP status from the remote service.
// It unwraps to ErrTemporary for 429 and 5xx and to ErrPermanent otherwise.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500 {
		return ErrTemporary
	}
	return ErrPermanent
}
