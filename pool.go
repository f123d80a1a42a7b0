// Package slicepool partitions one fixed-length slice into non-overlapping
// chunks that are checked out as mutable sub-slices and returned when done.
//
// Free chunks are selected best fit and coalesced with their free neighbours
// on release, so repeated allocate/release cycles do not fragment the pool.
// The pool tracks every live range, which guarantees that no two live
// handles ever share an index of the backing slice.
//
// Three sharing disciplines are available:
//
//   - Borrow: the pool works over a caller-owned slice and must only be used
//     from one goroutine.
//   - NewShared: the pool and its handles share ownership of the storage,
//     which is closed when the last of them lets go. One goroutine only.
//   - New: like NewShared but with atomic reference counting and a mutex
//     around the chunk table. Safe for concurrent use.
package slicepool

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/holmberd/go-slicepool/internal/chunk"
	"github.com/holmberd/go-slicepool/internal/refs"
)

// Chunk describes the index range [Offset, Offset+Size) of the backing storage.
type Chunk = chunk.Chunk

type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}

// Pool hands out non-overlapping views of a single backing slice.
type Pool[T any] struct {
	guard  sync.Locker
	table  *chunk.Table
	mem    []T
	refs   refs.Counter
	logger *slog.Logger
	clear  bool

	closed atomic.Bool
	allocs atomic.Uint64
	misses atomic.Uint64
}

func newPool[T any](mem []T, guard sync.Locker, config Config) *Pool[T] {
	return &Pool[T]{
		guard:  guard,
		table:  chunk.New(len(mem)),
		mem:    mem,
		refs:   refs.None{},
		logger: config.logger(),
		clear:  config.ClearOnRelease,
	}
}

// Borrow creates a pool over a slice owned by the caller. The slice must
// outlive the pool and its handles, and is never closed by the pool.
// The pool is not safe for concurrent use.
func Borrow[T any](s []T, config Config) *Pool[T] {
	return newPool(s, nopLocker{}, config)
}

// NewShared creates a pool that shares ownership of storage with the
// handles it allocates. The pool is not safe for concurrent use.
func NewShared[T any](storage Storage[T], config Config) *Pool[T] {
	p := newPool(storage.Slice(), nopLocker{}, config)
	p.refs = refs.NewLocal(p.closer(storage))
	return p
}

// New creates a pool that shares ownership of storage with the handles it
// allocates. The pool and its handles are safe for concurrent use.
func New[T any](storage Storage[T], config Config) *Pool[T] {
	p := newPool(storage.Slice(), &sync.Mutex{}, config)
	p.refs = refs.NewAtomic(p.closer(storage))
	return p
}

func (p *Pool[T]) closer(storage Storage[T]) func() error {
	c, ok := storage.(io.Closer)
	if !ok {
		return nil
	}
	return func() error {
		p.logger.Debug("closing pool storage", "len", len(p.mem))
		return c.Close()
	}
}

// Len returns the length of the backing storage.
func (p *Pool[T]) Len() int {
	return len(p.mem)
}

// Allocate checks out size contiguous elements.
// It returns false if size is not positive, if the pool is closed, or if no
// free chunk is large enough. The returned handle must be released.
func (p *Pool[T]) Allocate(size int) (*Handle[T], bool) {
	if size <= 0 || p.closed.Load() {
		return nil, false
	}
	if !p.refs.Acquire() {
		return nil, false
	}

	c, ok := p.allocate(size)
	if !ok {
		p.misses.Add(1)
		p.logger.Debug("no free chunk for allocation", "size", size, "len", len(p.mem))
		p.drop()
		return nil, false
	}
	p.allocs.Add(1)
	return &Handle[T]{
		pool:   p,
		offset: c.Offset,
		view:   p.mem[c.Offset:c.End():c.End()],
	}, true
}

// With allocates size elements, passes the view to fn and releases it once
// fn returns or panics.
func (p *Pool[T]) With(size int, fn func(s []T) error) error {
	if size <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	h, ok := p.Allocate(size)
	if !ok {
		if p.closed.Load() {
			return ErrClosed
		}
		return ErrNoSpace
	}
	defer h.Release()
	return fn(h.Slice())
}

// Close drops the pool's reference to its storage. Owned storage is closed
// when the last outstanding handle is released, or now if there is none.
// Handles stay valid after Close; further allocations fail.
func (p *Pool[T]) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.refs.Drop()
}

// Chunks returns a snapshot of the chunk layout ordered by offset.
func (p *Pool[T]) Chunks() []Chunk {
	p.guard.Lock()
	defer p.guard.Unlock()
	return p.table.Chunks()
}

// Check verifies the chunk layout invariants. It returns an error wrapping
// ErrCorrupted on violation.
func (p *Pool[T]) Check() error {
	p.guard.Lock()
	defer p.guard.Unlock()
	return p.table.Check()
}

// Fingerprint returns a hash identifying the current chunk layout.
func (p *Pool[T]) Fingerprint() uint64 {
	p.guard.Lock()
	defer p.guard.Unlock()
	return p.table.Fingerprint()
}

func (p *Pool[T]) UpdateStats(s *Stats) {
	var cs chunk.Stats
	p.guard.Lock()
	p.table.UpdateStats(&cs)
	p.guard.Unlock()

	s.Chunks += cs.Chunks
	s.FreeChunks += cs.FreeChunks
	s.FreeSize += cs.FreeSize
	s.UsedSize += cs.UsedSize
	s.LargestFree = max(s.LargestFree, cs.LargestFree)
	s.Allocations += p.allocs.Load()
	s.Misses += p.misses.Load()
}

func (p *Pool[T]) allocate(size int) (chunk.Chunk, bool) {
	p.guard.Lock()
	defer p.guard.Unlock()
	return p.table.Allocate(size)
}

func (p *Pool[T]) release(offset int, view []T) {
	if p.clear {
		clear(view)
	}
	p.guard.Lock()
	defer p.guard.Unlock()
	p.table.Release(offset)
}

// drop gives up one storage reference. Nobody is left to return a close
// error to, so it is logged.
func (p *Pool[T]) drop() {
	if err := p.refs.Drop(); err != nil {
		p.logger.Error("failed to close pool storage", "error", err)
	}
}
