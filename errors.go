package slicepool

import (
	"errors"

	"github.com/holmberd/go-slicepool/internal/chunk"
)

var (
	ErrNoSpace     = errors.New("not enough contiguous free space")
	ErrClosed      = errors.New("pool is closed")
	ErrInvalidSize = errors.New("allocation size must be positive")

	// ErrCorrupted is the panic value (or wrapped by it) when a chunk is released
	// that is not checked out. A pool that panicked with it stays unusable.
	ErrCorrupted = chunk.ErrCorrupted
)
