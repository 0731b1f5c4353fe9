package terrain

import (
	"math/bits"
	"math/rand/v2"

	"cubecity/internal/world"
)

// DiamondSquare samples a precomputed diamond-square heightmap that tiles
// across the world. The field is built once in NewDiamondSquare and only read
// afterwards.
type DiamondSquare struct {
	size   int // field side, a power of two
	field  []float32
	base   float32
	spread float32
}

// NewDiamondSquare builds a field large enough to cover tiles chunks per side.
func NewDiamondSquare(seed int64, dims world.Dims, tiles int) *DiamondSquare {
	side := max(dims.X, dims.Z) * max(tiles, 1)
	size := 1 << bits.Len(uint(side-1))
	if size < 2 {
		size = 2
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x5DEECE66D))
	ds := &DiamondSquare{
		size:   size,
		field:  make([]float32, (size+1)*(size+1)),
		base:   float32(dims.Y) / 4,
		spread: float32(dims.Y) / 4,
	}
	ds.build(rng)
	return ds
}

func (d *DiamondSquare) at(x, z int) float32     { return d.field[z*(d.size+1)+x] }
func (d *DiamondSquare) set(x, z int, v float32) { d.field[z*(d.size+1)+x] = v }

func (d *DiamondSquare) build(rng *rand.Rand) {
	n := d.size
	jitter := func(scale float32) float32 { return (rng.Float32()*2 - 1) * scale }

	// Corners share one value so the field tiles without a seam.
	c := jitter(0.5)
	d.set(0, 0, c)
	d.set(n, 0, c)
	d.set(0, n, c)
	d.set(n, n, c)

	scale := float32(1)
	for step := n; step > 1; step /= 2 {
		half := step / 2
		for z := half; z < n; z += step {
			for x := half; x < n; x += step {
				avg := (d.at(x-half, z-half) + d.at(x+half, z-half) + d.at(x-half, z+half) + d.at(x+half, z+half)) / 4
				d.set(x, z, avg+jitter(scale))
			}
		}
		for z := 0; z < n; z += half {
			for x := (z/half + 1) % 2 * half; x < n; x += step {
				sum := d.at(x, (z-half+n)%n) + d.at(x, (z+half)%n) + d.at((x-half+n)%n, z) + d.at((x+half)%n, z)
				v := sum/4 + jitter(scale)
				d.set(x, z, v)
				// Keep opposite edges equal.
				if x == 0 {
					d.set(n, z, v)
				}
				if z == 0 {
					d.set(x, n, v)
				}
			}
		}
		scale /= 2
	}
}

// HeightAt returns the surface height at world block X,Z.
func (d *DiamondSquare) HeightAt(worldX, worldZ int) int {
	x := ((worldX % d.size) + d.size) % d.size
	z := ((worldZ % d.size) + d.size) % d.size
	return int(d.base + d.at(x, z)*d.spread)
}

func (d *DiamondSquare) Generate(c world.ChunkCoord, grid *world.BlockGrid) {
	dims := grid.Dims()
	for x := range dims.X {
		for z := range dims.Z {
			fillColumn(grid, x, z, d.HeightAt(c.X*dims.X+x, c.Z*dims.Z+z))
		}
	}
}
