// Package refs implements shared-ownership counters that run a finalizer
// exactly once, when the last reference is dropped.
package refs

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Counter tracks the referents of a shared resource.
type Counter interface {
	// Acquire adds a reference. It returns false if the resource is already
	// released.
	Acquire() bool
	// Drop removes a reference. The finalizer runs when the count reaches
	// zero and its error is returned to the caller that dropped last.
	Drop() error
	// Count returns the number of live references.
	Count() int64
}

// Local is a non-atomic counter. It must only be used from one goroutine.
type Local struct {
	n       int64
	release func() error
}

// NewLocal returns a counter holding one reference.
func NewLocal(release func() error) *Local {
	return &Local{n: 1, release: release}
}

func (c *Local) Acquire() bool {
	if c.n <= 0 {
		return false
	}
	c.n++
	return true
}

func (c *Local) Drop() error {
	if c.n <= 0 {
		panic(fmt.Errorf("reference count underflow: %d", c.n))
	}
	c.n--
	if c.n > 0 || c.release == nil {
		return nil
	}
	return c.release()
}

func (c *Local) Count() int64 {
	return c.n
}

// Atomic is a counter that is safe for concurrent use.
type Atomic struct {
	n    atomic.Int64
	once sync.Once

	release func() error
}

// NewAtomic returns a counter holding one reference.
func NewAtomic(release func() error) *Atomic {
	c := &Atomic{release: release}
	c.n.Store(1)
	return c
}

func (c *Atomic) Acquire() bool {
	for {
		n := c.n.Load()
		if n <= 0 {
			return false
		}
		if c.n.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (c *Atomic) Drop() (err error) {
	n := c.n.Add(-1)
	if n < 0 {
		panic(fmt.Errorf("reference count underflow: %d", n))
	}
	if n > 0 || c.release == nil {
		return nil
	}
	c.once.Do(func() { err = c.release() })
	return err
}

func (c *Atomic) Count() int64 {
	return c.n.Load()
}

// None is a counter for resources whose lifetime is managed by someone else.
type None struct{}

func (None) Acquire() bool { return true }
func (None) Drop() error   { return nil }
func (None) Count() int64  { return 0 }
