package world

import (
	"cubecity/internal/pool"

	"github.com/pkg/errors"
)

// ErrShapeMismatch is returned when a block buffer cannot back a grid of the requested dims.
var ErrShapeMismatch = errors.New("world: block buffer does not match grid shape")

// BlockGrid is a fixed-shape 3-D array of block ids for one chunk. Index order is
// x fastest, then z, then y, so a horizontal layer is contiguous.
type BlockGrid struct {
	dims   Dims
	blocks []BlockType
}

// NewBlockGrid wraps buf as a grid of the given dims. buf must hold at least
// dims.Volume() blocks; the grid uses exactly that prefix.
func NewBlockGrid(dims Dims, buf []BlockType) (*BlockGrid, error) {
	if !dims.Valid() {
		return nil, errors.Wrapf(ErrShapeMismatch, "invalid dims %v", dims)
	}
	if len(buf) < dims.Volume() {
		return nil, errors.Wrapf(ErrShapeMismatch, "buffer of %d blocks for %v grid", len(buf), dims)
	}
	return &BlockGrid{dims: dims, blocks: buf[:dims.Volume()]}, nil
}

// GridFromHandle wraps a pooled block buffer. A mismatch is a programming error and panics.
func GridFromHandle(h *pool.Handle[[]BlockType], dims Dims) *BlockGrid {
	g, err := NewBlockGrid(dims, h.Resource())
	if err != nil {
		panic(err)
	}
	return g
}

// NewGridArena returns an arena for block buffers. Buffers are zero-filled
// (all air) when released so a reused chunk never inherits stale ids.
func NewGridArena(granularity int) *pool.Arena[[]BlockType] {
	return pool.NewSliceArena[BlockType]("blocks", granularity, true)
}

func (g *BlockGrid) Dims() Dims { return g.dims }

func (g *BlockGrid) index(x, y, z int) int {
	return (y*g.dims.Z+z)*g.dims.X + x
}

// InBounds reports whether the local coordinate lies inside the grid.
func (g *BlockGrid) InBounds(x, y, z int) bool {
	return x >= 0 && x < g.dims.X && y >= 0 && y < g.dims.Y && z >= 0 && z < g.dims.Z
}

// At returns the block at the local coordinate, or air outside the grid.
func (g *BlockGrid) At(x, y, z int) BlockType {
	if !g.InBounds(x, y, z) {
		return BlockTypeAir
	}
	return g.blocks[g.index(x, y, z)]
}

// Set stores b at the local coordinate. It reports false outside the grid.
func (g *BlockGrid) Set(x, y, z int, b BlockType) bool {
	if !g.InBounds(x, y, z) {
		return false
	}
	g.blocks[g.index(x, y, z)] = b
	return true
}

// FillColumn sets blocks [y0, y1) of column (x, z) to b, clamped to the grid height.
func (g *BlockGrid) FillColumn(x, z, y0, y1 int, b BlockType) {
	y0 = max(y0, 0)
	y1 = min(y1, g.dims.Y)
	for y := y0; y < y1; y++ {
		g.blocks[g.index(x, y, z)] = b
	}
}

// Blocks exposes the raw backing slice.
func (g *BlockGrid) Blocks() []BlockType { return g.blocks }

// CopyFrom overwrites g with the contents of src. Both grids must share dims.
func (g *BlockGrid) CopyFrom(src *BlockGrid) error {
	if g.dims != src.dims {
		return errors.Wrapf(ErrShapeMismatch, "copy %v into %v", src.dims, g.dims)
	}
	copy(g.blocks, src.blocks)
	return nil
}

// SolidCount returns the number of non-air cells.
func (g *BlockGrid) SolidCount() int {
	n := 0
	for _, b := range g.blocks {
		if b != BlockTypeAir {
			n++
		}
	}
	return n
}
