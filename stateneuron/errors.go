package stateneuron

import (
	"errors"
	"fmt"
)

var (
	// ErrInconsistentSize is wrapped by every SizeError.
	ErrInconsistentSize = errors.New("stateneuron: inconsistent size")

	// ErrUnknownKey is returned for status and recordable names the neuron
	// does not have.
	ErrUnknownKey = errors.New("stateneuron: unknown key")

	// ErrBadValue is returned for status values of the wrong type or out of
	// range, and for writes to read-only entries.
	ErrBadValue = errors.New("stateneuron: bad value")

	// ErrStepOrder is returned when Update is asked to process steps that do
	// not continue the previous call.
	ErrStepOrder = errors.New("stateneuron: steps must be contiguous and increasing")
)

// A SizeError reports an array whose length does not match the population
// and window sizes.
type SizeError struct {
	Field   string
	Want    int
	Got     int
	AtLeast bool
}

func (e *SizeError) Error() string {
	if e.AtLeast {
		return fmt.Sprintf("stateneuron: inconsistent size of %q: need at least %d, got %d",
			e.Field, e.Want, e.Got)
	}

	return fmt.Sprintf("stateneuron: inconsistent size of %q: want %d, got %d",
		e.Field, e.Want, e.Got)
}

// Unwrap returns ErrInconsistentSize.
func (e *SizeError) Unwrap() error {
	return ErrInconsistentSize
}
