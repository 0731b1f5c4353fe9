// Package terrain fills chunk block grids. Generators run on worker goroutines,
// so every implementation must be safe for concurrent Generate calls on
// different grids and must not mutate shared state after construction.
package terrain

import (
	"sync/atomic"

	"cubecity/internal/world"

	"github.com/pkg/errors"
)

// Generator fills an all-air grid with the blocks of chunk c.
type Generator interface {
	Generate(c world.ChunkCoord, grid *world.BlockGrid)
}

// Strategy indices used by NewDefault.
const (
	StrategySimplex = iota
	StrategyValueNoise
	StrategyDiamondSquare
	StrategyFlat
)

// ErrUnknownStrategy is returned when selecting an index outside the composite.
var ErrUnknownStrategy = errors.New("terrain: unknown strategy index")

// Composite dispatches to one of several generators selected by index.
// The active index may be changed while workers are generating; each Generate
// call reads it once.
type Composite struct {
	gens   []Generator
	active atomic.Int32
}

// NewComposite creates a composite with strategy 0 active.
func NewComposite(gens ...Generator) *Composite {
	if len(gens) == 0 {
		panic("terrain: composite needs at least one generator")
	}
	return &Composite{gens: gens}
}

// NewDefault builds the stock composite in Strategy* order.
func NewDefault(seed int64, dims world.Dims) *Composite {
	return NewComposite(
		NewSimplex(seed),
		NewValueNoise(seed),
		NewDiamondSquare(seed, dims, 64),
		NewFlat(dims.Y/4),
	)
}

// SetActive selects the generator used by subsequent Generate calls.
func (c *Composite) SetActive(i int) error {
	if i < 0 || i >= len(c.gens) {
		return errors.Wrapf(ErrUnknownStrategy, "%d (have %d)", i, len(c.gens))
	}
	c.active.Store(int32(i))
	return nil
}

// Active returns the selected strategy index.
func (c *Composite) Active() int { return int(c.active.Load()) }

// Len returns the number of registered strategies.
func (c *Composite) Len() int { return len(c.gens) }

func (c *Composite) Generate(coord world.ChunkCoord, grid *world.BlockGrid) {
	c.gens[c.active.Load()].Generate(coord, grid)
}

// minColumn is the lowest surface any strategy produces; everything below
// hardRockLevel is bedrock-like hard rock.
const (
	minColumn     = 6
	hardRockLevel = 6
	dirtCapLevel  = 15
)

// fillColumn lays out one column: hard rock at the bottom, stone above it and a
// dirt cap on columns tall enough to have one.
func fillColumn(grid *world.BlockGrid, x, z, height int) {
	h := min(max(height, minColumn), grid.Dims().Y)
	grid.FillColumn(x, z, 0, min(hardRockLevel, h-1), world.BlockTypeHardRock)
	grid.FillColumn(x, z, hardRockLevel, h-1, world.BlockTypeStone)
	if h > dirtCapLevel {
		grid.Set(x, h-1, z, world.BlockTypeDirt)
	}
}
