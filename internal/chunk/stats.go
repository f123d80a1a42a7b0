package chunk

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Stats represents a snapshot of the table layout.
type Stats struct {
	Chunks      int // Total number of chunks.
	FreeChunks  int // Number of free chunks.
	FreeSize    int // Indices not checked out.
	UsedSize    int // Indices checked out.
	LargestFree int // Size of the largest free chunk, the largest allocation that can succeed.
}

// Reset resets stats for re-use.
func (s *Stats) Reset() {
	*s = Stats{}
}

// UpdateStats adds the current layout to s.
func (t *Table) UpdateStats(s *Stats) {
	s.Chunks += len(t.chunks)
	for _, c := range t.chunks {
		if !c.Free {
			s.UsedSize += c.Size
			continue
		}
		s.FreeChunks++
		s.FreeSize += c.Size
		s.LargestFree = max(s.LargestFree, c.Size)
	}
}

// Fingerprint returns a hash of the chunk layout. Tables with the same
// boundaries and free flags have the same fingerprint.
func (t *Table) Fingerprint() uint64 {
	var buf [2*binary.MaxVarintLen64 + 1]byte
	d := xxhash.New()
	for _, c := range t.chunks {
		n := binary.PutUvarint(buf[:], uint64(c.Offset))
		n += binary.PutUvarint(buf[n:], uint64(c.Size))
		if c.Free {
			buf[n] = 1
		} else {
			buf[n] = 0
		}
		d.Write(buf[:n+1])
	}
	return d.Sum64()
}
