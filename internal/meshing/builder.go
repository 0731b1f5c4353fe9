package meshing

import (
	"cubecity/internal/profiling"
	"cubecity/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// AtlasTiles is the number of tiles per side of the texture atlas.
const AtlasTiles = 4

// Unit cube corners.
var corners = [8]mgl32.Vec3{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// faceCorners lists, per world.BlockFace, the corners of the quad in the order
// the index pattern expects.
var faceCorners = [world.NumFaces][VerticesPerFace]int{
	world.FaceBack:   {0, 3, 1, 2},
	world.FaceFront:  {5, 6, 4, 7},
	world.FaceTop:    {3, 7, 2, 6},
	world.FaceBottom: {1, 5, 0, 4},
	world.FaceLeft:   {4, 7, 0, 3},
	world.FaceRight:  {1, 2, 5, 6},
}

// Two counter-clockwise triangles seen from outside the block.
var quadIndices = [IndicesPerFace]uint32{0, 1, 2, 2, 1, 3}

// AtlasUV returns the four texture coordinates for tile id, matching the
// corner order of faceCorners. Row 0 of the atlas is its visual top.
func AtlasUV(id int) [VerticesPerFace]mgl32.Vec2 {
	const n = float32(1) / AtlasTiles
	row := id / AtlasTiles
	col := id % AtlasTiles
	x := float32(col) * n
	y := 1 - float32(row)*n - n
	return [VerticesPerFace]mgl32.Vec2{
		{x, y + n},
		{x, y},
		{x + n, y + n},
		{x + n, y},
	}
}

// Builder is a face-culling mesher. It holds no per-build state, so one
// Builder may be shared by every worker.
type Builder struct {
	blocks *world.BlockRegistry
	arenas Arenas
}

func NewBuilder(blocks *world.BlockRegistry, arenas Arenas) *Builder {
	return &Builder{blocks: blocks, arenas: arenas}
}

// Arenas returns the arenas the builder draws from.
func (b *Builder) Arenas() Arenas { return b.arenas }

// faceVisible decides whether face f of the solid cell at x,y,z is drawn.
// Below the grid floor counts as solid; past a side or the top counts as empty.
func faceVisible(g *world.BlockGrid, x, y, z int, f world.BlockFace) bool {
	dx, dy, dz := f.Normal()
	nx, ny, nz := x+dx, y+dy, z+dz
	if ny < 0 {
		return false
	}
	if !g.InBounds(nx, ny, nz) {
		return true
	}
	return g.At(nx, ny, nz) == world.BlockTypeAir
}

// Build meshes grid. The caller owns the returned Mesh and must Release it.
func (b *Builder) Build(grid *world.BlockGrid) *Mesh {
	defer profiling.Track("meshing.Build")()

	solid := grid.SolidCount()
	maxFaces := solid * world.NumFaces
	sv := b.arenas.ScratchVertices.Get(maxFaces * VerticesPerFace)
	si := b.arenas.ScratchIndices.Get(maxFaces * IndicesPerFace)
	defer sv.Release()
	defer si.Release()
	verts := sv.Resource()
	idx := si.Resource()

	d := grid.Dims()
	faces := 0
	for y := range d.Y {
		for z := range d.Z {
			for x := range d.X {
				bt := grid.At(x, y, z)
				if bt == world.BlockTypeAir {
					continue
				}
				origin := mgl32.Vec3{float32(x), float32(y), float32(z)}
				for f := world.BlockFace(0); f < world.NumFaces; f++ {
					if !faceVisible(grid, x, y, z, f) {
						continue
					}
					uv := AtlasUV(b.blocks.TextureID(bt, f))
					base := faces * VerticesPerFace
					for i, c := range faceCorners[f] {
						verts[base+i] = Vertex{Position: origin.Add(corners[c]), UV: uv[i]}
					}
					ib := faces * IndicesPerFace
					for i, q := range quadIndices {
						idx[ib+i] = uint32(base) + q
					}
					faces++
				}
			}
		}
	}

	m := &Mesh{
		vertices: b.arenas.Vertices.Get(faces * VerticesPerFace),
		indices:  b.arenas.Indices.Get(faces * IndicesPerFace),
		faces:    faces,
	}
	copy(m.vertices.Resource(), verts[:faces*VerticesPerFace])
	copy(m.indices.Resource(), idx[:faces*IndicesPerFace])
	m.digest = digest(m.Vertices(), m.Indices())
	return m
}
