package cloth

import (
	"errors"
	"fmt"
)

// Domain errors for engine operations.
var (
	// ErrNotInitialized indicates an operation on an engine that was never initialized.
	ErrNotInitialized = errors.New("cloth: engine not initialized")

	// ErrInvalidInput indicates a malformed mesh, handle or argument.
	ErrInvalidInput = errors.New("cloth: invalid input")

	// ErrNotFound indicates an unknown or already removed garment handle.
	ErrNotFound = fmt.Errorf("%w: garment not found", ErrInvalidInput)

	// ErrInvalidTimestep indicates a negative or non-finite time delta.
	ErrInvalidTimestep = fmt.Errorf("%w: timestep must be finite and non-negative", ErrInvalidInput)

	// ErrInvalidConfig indicates a configuration value outside its valid range.
	ErrInvalidConfig = fmt.Errorf("%w: invalid configuration", ErrInvalidInput)
)

// GarmentError wraps an error with the garment operation that produced it.
type GarmentError struct {
	Op     string
	Handle Handle
	Err    error
}

func (e *GarmentError) Error() string {
	return fmt.Sprintf("%s garment %d: %v", e.Op, e.Handle, e.Err)
}

func (e *GarmentError) Unwrap() error {
	return e.Err
}
