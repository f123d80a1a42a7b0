// Package chunk implements the bookkeeping for partitioning an index range
// [0, total) into contiguous free and occupied chunks.
//
// A Table knows nothing about the storage it describes. It only tracks which
// index ranges are checked out, selects ranges with a best-fit policy and
// coalesces adjacent free ranges on release.
//
// A Table is not safe for concurrent use. Callers sharing one across
// goroutines must guard every method with a mutex.
package chunk

import (
	"errors"
	"fmt"
	"slices"
)

var ErrCorrupted = errors.New("chunk table is corrupted")

// Chunk is the half-open index range [Offset, Offset+Size).
type Chunk struct {
	Offset int
	Size   int
	Free   bool
}

// End returns the first index past the chunk.
func (c Chunk) End() int {
	return c.Offset + c.Size
}

func (c Chunk) String() string {
	state := "used"
	if c.Free {
		state = "free"
	}
	return fmt.Sprintf("[%d,%d) %s", c.Offset, c.End(), state)
}

// Table is an offset-ordered list of chunks covering [0, total).
//
// After every mutation the chunks are contiguous, cover the whole range and
// no two neighbours are both free.
type Table struct {
	chunks    []Chunk
	total     int
	corrupted bool
}

// New creates a table with a single free chunk spanning [0, total).
// A zero total yields an empty table that satisfies no allocation.
func New(total int) *Table {
	if total < 0 {
		panic(fmt.Errorf("invalid chunk table size: %d", total))
	}
	t := &Table{total: total}
	if total > 0 {
		t.chunks = []Chunk{{Offset: 0, Size: total, Free: true}}
	}
	return t
}

// Len returns the number of chunks.
func (t *Table) Len() int {
	return len(t.chunks)
}

// Total returns the size of the range covered by the table.
func (t *Table) Total() int {
	return t.total
}

// Chunks returns a copy of the current chunk list.
func (t *Table) Chunks() []Chunk {
	return slices.Clone(t.chunks)
}

// Allocate reserves size indices using best fit: the smallest free chunk
// that can hold size wins, ties going to the lowest offset.
// It returns false if size is not positive or no free chunk is large enough.
func (t *Table) Allocate(size int) (Chunk, bool) {
	t.mustBeSound()
	if size <= 0 {
		return Chunk{}, false
	}

	index := -1
	for i, c := range t.chunks {
		if !c.Free || c.Size < size {
			continue
		}
		if index == -1 || c.Size < t.chunks[index].Size {
			index = i
			if c.Size == size {
				break // Exact fit, nothing smaller can qualify.
			}
		}
	}
	if index == -1 {
		return Chunk{}, false
	}

	delta := t.chunks[index].Size - size
	t.chunks[index].Size = size
	t.chunks[index].Free = false
	if delta == 0 {
		return t.chunks[index], true
	}

	// Hand the surplus to a free neighbour before growing the list.
	switch {
	case index > 0 && t.chunks[index-1].Free:
		t.chunks[index-1].Size += delta
		t.chunks[index].Offset += delta
	case index+1 < len(t.chunks) && t.chunks[index+1].Free:
		t.chunks[index+1].Size += delta
		t.chunks[index+1].Offset -= delta
	default:
		t.chunks = slices.Insert(t.chunks, index+1, Chunk{
			Offset: t.chunks[index].End(),
			Size:   delta,
			Free:   true,
		})
	}
	return t.chunks[index], true
}

// Release returns the occupied chunk starting at offset and merges it with
// whichever neighbours are free.
//
// Releasing an offset that is not the start of an occupied chunk breaks the
// caller contract. The table is marked corrupted and Release panics; every
// later call panics as well.
func (t *Table) Release(offset int) {
	t.mustBeSound()

	index, found := slices.BinarySearchFunc(t.chunks, offset, func(c Chunk, off int) int {
		return c.Offset - off
	})
	if !found {
		t.corrupted = true
		panic(fmt.Errorf("%w: no chunk at offset %d", ErrCorrupted, offset))
	}
	if t.chunks[index].Free {
		t.corrupted = true
		panic(fmt.Errorf("%w: chunk at offset %d is already free", ErrCorrupted, offset))
	}

	precedingFree := index > 0 && t.chunks[index-1].Free
	followingFree := index+1 < len(t.chunks) && t.chunks[index+1].Free

	start, end := index, index
	if precedingFree {
		start = index - 1
	}
	if followingFree {
		end = index + 1
	}

	merged := Chunk{Offset: t.chunks[start].Offset, Free: true}
	for _, c := range t.chunks[start : end+1] {
		merged.Size += c.Size
	}
	t.chunks[start] = merged
	t.chunks = slices.Delete(t.chunks, start+1, end+1)
}

// Check verifies the table invariants.
func (t *Table) Check() error {
	if t.corrupted {
		return ErrCorrupted
	}
	if t.total == 0 {
		if len(t.chunks) != 0 {
			return fmt.Errorf("%w: empty range holds %d chunks", ErrCorrupted, len(t.chunks))
		}
		return nil
	}
	if len(t.chunks) == 0 {
		return fmt.Errorf("%w: no chunks cover [0,%d)", ErrCorrupted, t.total)
	}

	var errs []error
	if first := t.chunks[0]; first.Offset != 0 {
		errs = append(errs, fmt.Errorf("first chunk %v does not start at 0", first))
	}
	for i, c := range t.chunks {
		if c.Size <= 0 {
			errs = append(errs, fmt.Errorf("chunk %d %v has non-positive size", i, c))
		}
		if i == 0 {
			continue
		}
		prev := t.chunks[i-1]
		if prev.End() != c.Offset {
			errs = append(errs, fmt.Errorf("chunk %d %v does not follow %v", i, c, prev))
		}
		if prev.Free && c.Free {
			errs = append(errs, fmt.Errorf("adjacent free chunks %v and %v", prev, c))
		}
	}
	if last := t.chunks[len(t.chunks)-1]; last.End() != t.total {
		errs = append(errs, fmt.Errorf("last chunk %v does not end at %d", last, t.total))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrCorrupted, errors.Join(errs...))
	}
	return nil
}

func (t *Table) mustBeSound() {
	if t.corrupted {
		panic(ErrCorrupted)
	}
}
