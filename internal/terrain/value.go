package terrain

import (
	"math"

	"cubecity/internal/world"
)

// ValueNoise is a rolling-hills heightmap built from octave value noise.
type ValueNoise struct {
	seed        int64
	scale       float64
	baseHeight  int
	amp         float64
	octaves     int
	persistence float64
	lacunarity  float64
}

// NewValueNoise creates a value-noise generator with default shaping.
func NewValueNoise(seed int64) *ValueNoise {
	return &ValueNoise{
		seed:        seed,
		scale:       1.0 / 64.0,
		baseHeight:  32,
		amp:         32,
		octaves:     4,
		persistence: 0.5,
		lacunarity:  2.0,
	}
}

// HeightAt computes the surface height at world block X,Z.
func (g *ValueNoise) HeightAt(worldX, worldZ int) int {
	n := octaveNoise2D(float64(worldX)*g.scale, float64(worldZ)*g.scale, g.seed, g.octaves, g.persistence, g.lacunarity)
	h := float64(g.baseHeight) + (n-0.5)*2*g.amp
	return max(int(math.Floor(h)), 0)
}

func (g *ValueNoise) Generate(c world.ChunkCoord, grid *world.BlockGrid) {
	d := grid.Dims()
	for x := range d.X {
		for z := range d.Z {
			fillColumn(grid, x, z, g.HeightAt(c.X*d.X+x, c.Z*d.Z+z))
		}
	}
}
