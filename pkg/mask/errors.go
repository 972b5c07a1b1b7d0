package mask

import (
	"errors"
	"fmt"
)

// Mask errors. Callers match them with errors.Is; returned errors usually wrap
// one of these with extra context.
var (
	ErrOutOfRange        = errors.New("vertex index out of range")
	ErrNotFound          = errors.New("not found")
	ErrLengthMismatch    = errors.New("vertex count mismatch")
	ErrInvalidIterations = errors.New("smoothing iterations must be >= 0")
)

func lengthError(what string, got, want int) error {
	return fmt.Errorf("%w: %s has %d entries, want %d", ErrLengthMismatch, what, got, want)
}
