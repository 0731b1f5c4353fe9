package world

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// ErrInvalidRange is returned for a load range outside [0, removeRange].
var ErrInvalidRange = errors.New("world: load range must be between 0 and remove range")

// RangeTracker decides which chunks should exist around a reference chunk.
// Chunks within LoadRange are required; chunks beyond RemoveRange are for delete;
// the band in between is kept as hysteresis so boundary chunks do not thrash.
type RangeTracker struct {
	loadRange   int
	removeRange int
	ref         atomic.Pointer[ChunkCoord]
}

// NewRangeTracker creates a tracker referenced at the origin.
func NewRangeTracker(loadRange, removeRange int) (*RangeTracker, error) {
	if loadRange < 0 || loadRange > removeRange {
		return nil, errors.Wrapf(ErrInvalidRange, "load=%d remove=%d", loadRange, removeRange)
	}
	t := &RangeTracker{loadRange: loadRange, removeRange: removeRange}
	t.ref.Store(&ChunkCoord{})
	return t, nil
}

func (t *RangeTracker) LoadRange() int   { return t.loadRange }
func (t *RangeTracker) RemoveRange() int { return t.removeRange }

// Reference returns the current reference chunk.
func (t *RangeTracker) Reference() ChunkCoord {
	return *t.ref.Load()
}

// Update moves the reference and reports whether it changed.
func (t *RangeTracker) Update(ref ChunkCoord) bool {
	if *t.ref.Load() == ref {
		return false
	}
	t.ref.Store(&ref)
	return true
}

// IsRequired reports whether c lies within the load range of the reference.
func (t *RangeTracker) IsRequired(c ChunkCoord) bool {
	return Chebyshev(t.Reference(), c) <= t.loadRange
}

// IsForDelete reports whether c lies beyond the remove range of the reference.
func (t *RangeTracker) IsForDelete(c ChunkCoord) bool {
	return Chebyshev(t.Reference(), c) > t.removeRange
}

// RequiredCoords lists every required coordinate in rings around the reference,
// nearest ring first.
func (t *RangeTracker) RequiredCoords() []ChunkCoord {
	ref := t.Reference()
	side := 2*t.loadRange + 1
	out := make([]ChunkCoord, 0, side*side)
	out = append(out, ref)
	for r := 1; r <= t.loadRange; r++ {
		x0, x1 := ref.X-r, ref.X+r
		z0, z1 := ref.Z-r, ref.Z+r
		for x := x0; x <= x1; x++ {
			out = append(out, ChunkCoord{X: x, Z: z0})
		}
		for z := z0 + 1; z <= z1-1; z++ {
			out = append(out, ChunkCoord{X: x1, Z: z})
		}
		for x := x1; x >= x0; x-- {
			out = append(out, ChunkCoord{X: x, Z: z1})
		}
		for z := z1 - 1; z >= z0+1; z-- {
			out = append(out, ChunkCoord{X: x0, Z: z})
		}
	}
	return out
}
