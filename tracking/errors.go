package tracking

import "errors"

var (
	// ErrStoreRequired is returned when a nil store is passed to a constructor.
	ErrStoreRequired = errors.New("store is required")

	// ErrSourceRequired is returned when a nil source is passed to a constructor.
	ErrSourceRequired = errors.New("source is required")

	// ErrInvalidPages is returned when an import is asked for fewer than one page.
	ErrInvalidPages = errors.New("pages must be at least 1")
)
