package terrain

import (
	"math"

	"cubecity/internal/world"

	"github.com/ojrac/opensimplex-go"
)

// Simplex shapes terrain with fractal OpenSimplex noise.
type Simplex struct {
	noise       opensimplex.Noise
	frequency   float64
	octaves     int
	persistence float64
	amplitude   float64
}

// NewSimplex creates a simplex generator. The underlying noise tables are
// read-only after construction.
func NewSimplex(seed int64) *Simplex {
	return &Simplex{
		noise:       opensimplex.NewNormalized(seed),
		frequency:   0.04,
		octaves:     4,
		persistence: 0.5,
		amplitude:   48,
	}
}

func (s *Simplex) sample(x, z float64) float64 {
	sum, norm := 0.0, 0.0
	amp, freq := 1.0, s.frequency
	for range s.octaves {
		sum += s.noise.Eval2(x*freq, z*freq) * amp
		norm += amp
		amp *= s.persistence
		freq *= 2
	}
	return sum / norm
}

// HeightAt returns the surface height at world block X,Z.
func (s *Simplex) HeightAt(worldX, worldZ int) int {
	return int(math.Round(s.sample(float64(worldX), float64(worldZ)) * s.amplitude))
}

func (s *Simplex) Generate(c world.ChunkCoord, grid *world.BlockGrid) {
	d := grid.Dims()
	for x := range d.X {
		for z := range d.Z {
			fillColumn(grid, x, z, s.HeightAt(c.X*d.X+x, c.Z*d.Z+z))
		}
	}
}
