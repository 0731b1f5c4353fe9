package world

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Dims is the block footprint of a single chunk.
type Dims struct {
	X, Y, Z int
}

// DefaultDims is the 16x128x16 column used unless configured otherwise.
var DefaultDims = Dims{X: 16, Y: 128, Z: 16}

// Volume returns the number of blocks in a chunk of these dimensions.
func (d Dims) Volume() int {
	return d.X * d.Y * d.Z
}

// Valid reports whether every axis is positive.
func (d Dims) Valid() bool {
	return d.X > 0 && d.Y > 0 && d.Z > 0
}

func (d Dims) String() string {
	return fmt.Sprintf("%dx%dx%d", d.X, d.Y, d.Z)
}

// ChunkCoord addresses a chunk column on the horizontal grid.
type ChunkCoord struct {
	X, Z int
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Z)
}

// Add offsets the coordinate by whole chunks.
func (c ChunkCoord) Add(dx, dz int) ChunkCoord {
	return ChunkCoord{X: c.X + dx, Z: c.Z + dz}
}

// Origin returns the world-space position of the chunk's (0,0,0) block.
func (c ChunkCoord) Origin(d Dims) mgl32.Vec3 {
	return mgl32.Vec3{float32(c.X * d.X), 0, float32(c.Z * d.Z)}
}

// Chebyshev returns the chessboard distance between two chunk coordinates.
func Chebyshev(a, b ChunkCoord) int {
	return max(abs(a.X-b.X), abs(a.Z-b.Z))
}

// ChunkFromWorld converts a continuous world position to the chunk containing it.
func ChunkFromWorld(pos mgl32.Vec3, d Dims) ChunkCoord {
	bx := int(math.Floor(float64(pos.X())))
	bz := int(math.Floor(float64(pos.Z())))
	return ChunkCoord{X: floorDiv(bx, d.X), Z: floorDiv(bz, d.Z)}
}

// SplitWorld splits world block coordinates into a chunk and chunk-local X/Z.
func SplitWorld(wx, wz int, d Dims) (c ChunkCoord, lx, lz int) {
	c = ChunkCoord{X: floorDiv(wx, d.X), Z: floorDiv(wz, d.Z)}
	return c, mod(wx, d.X), mod(wz, d.Z)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
