package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned when a row or column lies outside the grid's fixed range.
	ErrOutOfBounds = errors.New("grid: position out of bounds")

	// ErrInvalidBounds is returned by New when the bounds are inverted.
	ErrInvalidBounds = errors.New("grid: invalid bounds")
)

// OutOfBoundsError records the rejected position and the grid's range.
type OutOfBoundsError struct {
	Row, Col int
	Bounds   Bounds
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("%v: (%d,%d) outside %s", ErrOutOfBounds, e.Row, e.Col, e.Bounds)
}

// Is makes errors.Is(err, ErrOutOfBounds) match.
func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}
