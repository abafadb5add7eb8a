package route

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateProducer is returned when two steps produce the same compound.
	ErrDuplicateProducer = errors.New("duplicate producer")
	// ErrCycleDetected is matched by every *CycleError.
	ErrCycleDetected = errors.New("cycle detected")
	// ErrInvalidYield is returned when a yield is outside (0,1].
	ErrInvalidYield = errors.New("invalid yield")
	// ErrEmptyInputs is returned for a step without inputs whose output was
	// not declared as a raw material.
	ErrEmptyInputs = errors.New("step has no inputs")
	// ErrInvalidStep covers the remaining malformed step definitions.
	ErrInvalidStep = errors.New("invalid step")
	// ErrUnresolvedRawMaterial is returned by Validate for a leaf compound
	// without a registry price.
	ErrUnresolvedRawMaterial = errors.New("unresolved raw material")
	// ErrNoTarget is returned by Validate when no target compound was set.
	ErrNoTarget = errors.New("no target compound")
	// ErrUnknownStep is returned when replacing a step that does not exist.
	ErrUnknownStep = errors.New("unknown step")
)

// StepError ties a construction failure to the step that caused it.
type StepError struct {
	Output string
	Detail string
	Err    error
}

func (e *StepError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("step %q: %s", e.Output, e.Err)
	}
	return fmt.Sprintf("step %q: %s: %s", e.Output, e.Err, e.Detail)
}

func (e *StepError) Unwrap() error { return e.Err }

// CycleError lists the compounds forming a dependency cycle. The chain
// starts and ends with the same compound; each element consumes the next.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCycleDetected, strings.Join(e.Chain, " -> "))
}

func (e *CycleError) Is(target error) bool { return target == ErrCycleDetected }

// UnresolvedError names a raw material that has no price.
type UnresolvedError struct {
	Compound string
	Err      error
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("%s: %q", ErrUnresolvedRawMaterial, e.Compound)
}

func (e *UnresolvedError) Is(target error) bool { return target == ErrUnresolvedRawMaterial }

func (e *UnresolvedError) Unwrap() error { return e.Err }

func stepErr(output string, err error, format string, args ...any) error {
	return &StepError{Output: output, Err: err, Detail: fmt.Sprintf(format, args...)}
}
