package gravel

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrBadRange marks a malformed index range or output window.
	ErrBadRange = errors.New("bad range")
	// ErrDepthExceeded marks a sort whose recursion went deeper than maxDepth.
	ErrDepthExceeded = errors.New("sort recursion depth exceeded")
	// ErrUnsupportedSwap marks a Swap on a comparator that can only be sorted
	// through a sort map.
	ErrUnsupportedSwap = errors.New("swap not supported")
)

// badRange returns an assertion failure wrapping ErrBadRange.
func badRange(format string, args ...interface{}) error {
	return errors.WithAssertionFailure(errors.Wrapf(ErrBadRange, format, args...))
}

// checkRange panics unless [first, first+n) lies within [0, length).
func checkRange(length, first, n int) {
	if first < 0 || n < 0 || first > length-n {
		panic(badRange("range [%d,%d+%d) outside [0,%d)", first, first, n, length))
	}
}

// SortError represents a panic raised while a Sorter was running, either by a
// comparator or by one of the fatal precondition checks of the sort engine
type SortError struct {
	// Cause is the original panic value
	Cause interface{}
	// Context names the Sorter operation that failed
	Context string
}

func (e *SortError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("sort panic in %s: %v", e.Context, e.Cause)
	}
	return fmt.Sprintf("sort panic: %v", e.Cause)
}

func (e *SortError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}

// NewSortError creates a SortError
func NewSortError(cause interface{}, context string) error {
	return &SortError{Cause: cause, Context: context}
}
