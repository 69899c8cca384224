package grid

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds       = errors.New("grid: coordinate out of bounds")
	ErrInvalidDimensions = errors.New("grid: invalid dimensions")
	ErrInvalidBrightness = errors.New("grid: invalid brightness")
	ErrPayloadSize       = errors.New("grid: payload size mismatch")
)

// OutOfBoundsError reports the rejected coordinate of a strict accessor.
type OutOfBoundsError struct {
	Column int
	Row    int
	Width  int
	Height int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("grid: coordinate (%d, %d) out of bounds for %dx%d grid", e.Column, e.Row, e.Width, e.Height)
}

func (e *OutOfBoundsError) Unwrap() error {
	return ErrOutOfBounds
}
