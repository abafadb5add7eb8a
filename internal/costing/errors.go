package costing

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingPrice is returned when a raw material has no price at
	// resolution time.
	ErrMissingPrice = errors.New("missing price")
	// ErrInvalidQuantity is returned for a non-positive or non-finite batch size.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrMissingMolarMass is returned for molar-basis steps lacking molar masses.
	ErrMissingMolarMass = errors.New("missing molar mass")
	// ErrMissingDensity is returned for solvents lacking a density.
	ErrMissingDensity = errors.New("missing density")
	// ErrInvalidOverride is returned for overrides that match nothing or
	// carry an unusable value.
	ErrInvalidOverride = errors.New("invalid override")
)

// MissingPriceError names the raw material that could not be priced.
type MissingPriceError struct {
	Compound string
	Err      error
}

func (e *MissingPriceError) Error() string {
	return fmt.Sprintf("%s: %q", ErrMissingPrice, e.Compound)
}

func (e *MissingPriceError) Is(target error) bool { return target == ErrMissingPrice }

func (e *MissingPriceError) Unwrap() error { return e.Err }

// PropertyError reports a physical property missing for a step input.
type PropertyError struct {
	Step     string
	Compound string
	Err      error
}

func (e *PropertyError) Error() string {
	return fmt.Sprintf("step %q, compound %q: %s", e.Step, e.Compound, e.Err)
}

func (e *PropertyError) Unwrap() error { return e.Err }
