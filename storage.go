package slicepool

// Storage is the fixed-length backing store a pool carves chunks out of.
// Slice must return the same slice for the lifetime of the storage.
//
// Storage that also implements io.Closer is closed once the pool and every
// handle allocated from it have let go of it.
type Storage[T any] interface {
	Slice() []T
}

type sliceStorage[T any] []T

func (s sliceStorage[T]) Slice() []T {
	return s
}

// FromSlice wraps a heap slice as Storage. The pool takes over the slice;
// callers should not keep using it directly.
func FromSlice[T any](s []T) Storage[T] {
	return sliceStorage[T](s)
}
