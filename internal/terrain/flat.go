package terrain

import "cubecity/internal/world"

// Flat produces the same column everywhere.
type Flat struct {
	height int
}

// NewFlat creates a flat generator whose columns reach height. Rock fills
// every cell below height-1; the cell at height-1 is dirt when height is
// above the dirt cap level and air otherwise.
func NewFlat(height int) *Flat {
	return &Flat{height: height}
}

func (f *Flat) Generate(_ world.ChunkCoord, grid *world.BlockGrid) {
	d := grid.Dims()
	for x := range d.X {
		for z := range d.Z {
			fillColumn(grid, x, z, f.height)
		}
	}
}
