package slicepool

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Stats represents pool stats. Sizes are in elements.
type Stats struct {
	Chunks      int    // Number of chunks in the layout.
	FreeChunks  int    // Number of free chunks.
	FreeSize    int    // Elements not checked out.
	UsedSize    int    // Elements checked out.
	LargestFree int    // Largest allocation that can currently succeed.
	Allocations uint64 // Successful allocations since creation.
	Misses      uint64 // Allocations that found no free chunk.
}

func (s *Stats) Reset() {
	*s = Stats{}
}

// Fragmentation returns the share of free elements that sit outside the
// largest free chunk, from 0 (one free chunk) to close to 1.
func (s Stats) Fragmentation() float64 {
	if s.FreeSize == 0 {
		return 0
	}
	return 1 - float64(s.LargestFree)/float64(s.FreeSize)
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"chunks=%d free=%s/%d used=%s largest=%s allocs=%s misses=%s",
		s.Chunks,
		humanize.Comma(int64(s.FreeSize)), s.FreeChunks,
		humanize.Comma(int64(s.UsedSize)),
		humanize.Comma(int64(s.LargestFree)),
		humanize.Comma(int64(s.Allocations)),
		humanize.Comma(int64(s.Misses)),
	)
}
