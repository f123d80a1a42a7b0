package slicepool

import (
	"fmt"
	"iter"
	"sync/atomic"
)

// Handle is the single accessor to one checked-out chunk.
//
// A handle is not synchronized: distinct handles may be used from different
// goroutines, but sharing one handle between goroutines needs external
// locking. Release must be called exactly once the view is no longer needed,
// typically with defer.
type Handle[T any] struct {
	pool     *Pool[T]
	offset   int
	view     []T
	released atomic.Bool
}

// Slice returns the view. Its capacity equals its length, so appending to it
// never writes into a neighbouring chunk. It returns nil after Release.
func (h *Handle[T]) Slice() []T {
	if h.released.Load() {
		return nil
	}
	return h.view
}

// Len returns the number of elements in the view, 0 after Release.
func (h *Handle[T]) Len() int {
	return len(h.Slice())
}

// Offset returns the index of the view's first element in the backing storage.
func (h *Handle[T]) Offset() int {
	return h.offset
}

// At returns the i'th element of the view. It panics if i is out of range.
func (h *Handle[T]) At(i int) T {
	return h.Slice()[i]
}

// Set stores v at the i'th element of the view. It panics if i is out of range.
func (h *Handle[T]) Set(i int, v T) {
	h.Slice()[i] = v
}

// All returns an iterator over the indexes and elements of the view.
func (h *Handle[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range h.Slice() {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Release returns the chunk to the pool. Only the first call has an effect.
func (h *Handle[T]) Release() {
	if !h.released.CompareAndSwap(false, true) {
		return
	}
	h.pool.release(h.offset, h.view)
	h.pool.drop()
}

func (h *Handle[T]) String() string {
	return fmt.Sprint(h.Slice())
}
