package intervalmap

import (
	"errors"
	"fmt"
)

var (
	// ErrValueOperation wraps any failure to copy or store a value during
	// Assign.
	ErrValueOperation = errors.New("intervalmap: value operation failed")

	ErrNotCanonical = errors.New("intervalmap: breakpoints not canonical")
)

func wrapValueError(err error) error {
	if errors.Is(err, ErrValueOperation) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrValueOperation, err)
}

// CanonicalError describes the first breakpoint violating canonical form.
type CanonicalError[K, V any] struct {
	Index      int
	Breakpoint Breakpoint[K, V]

	reason string
}

func (e *CanonicalError[K, V]) Error() string {
	return fmt.Sprintf("%v: %s at index %d (key %v, value %v)",
		ErrNotCanonical, e.reason, e.Index, e.Breakpoint.Key, e.Breakpoint.Value)
}

func (e *CanonicalError[K, V]) Unwrap() error {
	return ErrNotCanonical
}
