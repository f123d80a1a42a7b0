package slicepool

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

const (
	KiB = 1024
	MiB = KiB * KiB
	GiB = MiB * KiB

	// MaxMapBytes is the largest mapping Map will request.
	MaxMapBytes = 64 * GiB
)

// Mapped is Storage backed by anonymous memory obtained with mmap, outside
// the Go heap. The GC does not scan it, so T must not contain pointers.
type Mapped[T any] struct {
	mu    sync.Mutex
	data  []byte
	elems []T
}

// Map maps memory for n elements of T.
func Map[T any](n int) (*Mapped[T], error) {
	if n < 0 {
		return nil, fmt.Errorf("invalid element count: %d", n)
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if n == 0 || elemSize == 0 {
		// Nothing to map.
		return &Mapped[T]{elems: make([]T, n)}, nil
	}
	if n > MaxMapBytes/elemSize {
		return nil, fmt.Errorf(
			"cannot map %d elements of %d bytes: exceeds %s",
			n, elemSize, humanize.IBytes(MaxMapBytes),
		)
	}

	size := n * elemSize
	data, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE,
	)
	if err != nil {
		return nil, fmt.Errorf("cannot allocate %s via mmap: %w", humanize.IBytes(uint64(size)), err)
	}
	return &Mapped[T]{
		data:  data,
		elems: unsafe.Slice((*T)(unsafe.Pointer(&data[0])), n),
	}, nil
}

func (m *Mapped[T]) Slice() []T {
	return m.elems
}

// Bytes returns the size of the mapping, 0 once closed.
func (m *Mapped[T]) Bytes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// Close releases the mapping back to the operating system. Any slice taken
// from the storage must not be used afterwards.
func (m *Mapped[T]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil
	}
	data := m.data
	m.data, m.elems = nil, nil
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("failed to unmap %s: %w", humanize.IBytes(uint64(len(data))), err)
	}
	return nil
}
