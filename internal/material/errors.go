package material

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Lookup when a compound has no priced entry.
	ErrNotFound = errors.New("material not found")
	// ErrDuplicateMaterial flags a compound registered more than once.
	ErrDuplicateMaterial = errors.New("duplicate material registration")
	// ErrInvalidPrice is returned for negative or non-finite prices.
	ErrInvalidPrice = errors.New("invalid price")
)

// NotFoundError names the compound a lookup failed for.
type NotFoundError struct {
	Compound string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrNotFound, e.Compound)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
