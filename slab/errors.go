package slab

import "github.com/cockroachdb/errors"

var (
	// ErrCorrupted is raised when a byte slice withdrawn from the pool does
	// not carry the availability stamp: something wrote through a slice after
	// it was put back.
	ErrCorrupted = errors.New("pooled slice stamp violated")

	// ErrExhausted is raised when an allocation still fails after every retry.
	ErrExhausted = errors.New("pool allocation budget exhausted")

	// ErrWrongSize is raised when a slice put to the pool does not have the
	// pool length for its element type.
	ErrWrongSize = errors.New("slice does not have pool length")
)

func corrupted(slot byte) error {
	return errors.WithAssertionFailure(errors.Wrapf(ErrCorrupted, "slot 0 holds %#x, want %#x", slot, Stamp))
}

func wrongSize(kind string, got, want int) error {
	return errors.WithAssertionFailure(errors.Wrapf(ErrWrongSize, "%s slice of length %d, want %d", kind, got, want))
}
