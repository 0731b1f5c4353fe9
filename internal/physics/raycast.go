// Package physics answers spatial queries against streamed blocks.
package physics

import (
	"math"

	"cubecity/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 6.0
)

// Blocks reports whether the block cell at integer coordinates stops a ray.
// Cell (x, y, z) spans [x, x+1) on each axis.
type Blocks interface {
	IsSolid(x, y, z int) bool
}

// SolidFunc adapts a function to Blocks.
type SolidFunc func(x, y, z int) bool

func (f SolidFunc) IsSolid(x, y, z int) bool { return f(x, y, z) }

// RaycastResult stores the result of a raycast operation
type RaycastResult struct {
	HitPosition      [3]int
	AdjacentPosition [3]int
	Distance         float32
	Hit              bool
}

// Raycast walks the cells crossed by the ray from start along direction and
// stops at the first solid one between minDist and maxDist. AdjacentPosition
// is the cell the ray occupied just before the hit.
func Raycast(start, direction mgl32.Vec3, minDist, maxDist float32, blocks Blocks) RaycastResult {
	defer profiling.Track("physics.Raycast")()
	if direction.Len() == 0 {
		return RaycastResult{}
	}
	dir := direction.Normalize()

	var cell, step [3]int
	var tMax, tDelta [3]float32
	for i := range 3 {
		cell[i] = int(math.Floor(float64(start[i])))
		switch {
		case dir[i] > 0:
			step[i] = 1
			tMax[i] = (float32(cell[i]+1) - start[i]) / dir[i]
			tDelta[i] = 1 / dir[i]
		case dir[i] < 0:
			step[i] = -1
			tMax[i] = (start[i] - float32(cell[i])) / -dir[i]
			tDelta[i] = -1 / dir[i]
		default:
			tMax[i] = math.MaxFloat32
			tDelta[i] = math.MaxFloat32
		}
	}

	prev := cell
	dist := float32(0)
	for dist <= maxDist {
		if dist >= minDist && blocks.IsSolid(cell[0], cell[1], cell[2]) {
			return RaycastResult{
				HitPosition:      cell,
				AdjacentPosition: prev,
				Distance:         dist,
				Hit:              true,
			}
		}
		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		prev = cell
		dist = tMax[axis]
		cell[axis] += step[axis]
		tMax[axis] += tDelta[axis]
	}
	return RaycastResult{}
}
