package testutils

import (
	"sync/atomic"
)

// MockStorage is a heap slice storage that records how often it is closed.
type MockStorage[T any] struct {
	Elems    []T
	CloseErr error // Returned by Close when set.

	closeCalls atomic.Int64
}

// NewMockStorage returns storage holding the given elements.
func NewMockStorage[T any](elems ...T) *MockStorage[T] {
	return &MockStorage[T]{Elems: elems}
}

// Seq returns storage holding 10, 20, ... n*10.
func Seq(n int) *MockStorage[int] {
	elems := make([]int, n)
	for i := range elems {
		elems[i] = (i + 1) * 10
	}
	return &MockStorage[int]{Elems: elems}
}

func (s *MockStorage[T]) Slice() []T {
	return s.Elems
}

func (s *MockStorage[T]) Close() error {
	s.closeCalls.Add(1)
	return s.CloseErr
}

func (s *MockStorage[T]) CloseCalls() int64 {
	return s.closeCalls.Load()
}

func (s *MockStorage[T]) Reset() {
	s.closeCalls.Store(0)
}
