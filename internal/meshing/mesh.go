// Package meshing turns block grids into indexed, textured triangle meshes.
package meshing

import (
	"encoding/binary"
	"math"

	"cubecity/internal/pool"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is one corner of a face in chunk-local space.
type Vertex struct {
	Position mgl32.Vec3
	UV       mgl32.Vec2
}

// VertexStride is number of float32 per vertex (pos.xyz + uv).
const VertexStride = 5

const (
	VerticesPerFace = 4
	IndicesPerFace  = 6
)

// Arenas supplies the buffers a Builder works in. Scratch buffers are sized for
// the worst case and returned after every build; output buffers are leased to
// the caller inside a Mesh.
type Arenas struct {
	ScratchVertices *pool.Arena[[]Vertex]
	ScratchIndices  *pool.Arena[[]uint32]
	Vertices        *pool.Arena[[]Vertex]
	Indices         *pool.Arena[[]uint32]
}

// NewArenas creates a fresh set of arenas. Scratch buffers are overwritten
// before they are read so they skip clearing.
func NewArenas(granularity int) Arenas {
	return Arenas{
		ScratchVertices: pool.NewSliceArena[Vertex]("mesh.scratch.vertices", granularity, false),
		ScratchIndices:  pool.NewSliceArena[uint32]("mesh.scratch.indices", granularity, false),
		Vertices:        pool.NewSliceArena[Vertex]("mesh.vertices", granularity, false),
		Indices:         pool.NewSliceArena[uint32]("mesh.indices", granularity, false),
	}
}

// Stats returns the counters of every arena.
func (a Arenas) Stats() []pool.Stats {
	return []pool.Stats{
		a.ScratchVertices.Stats(),
		a.ScratchIndices.Stats(),
		a.Vertices.Stats(),
		a.Indices.Stats(),
	}
}

// Mesh is the output of a build. It owns one vertex and one index lease until Release.
type Mesh struct {
	vertices *pool.Handle[[]Vertex]
	indices  *pool.Handle[[]uint32]
	faces    int
	digest   uint64
}

// Vertices returns the mesh vertices. The slice is only valid until Release.
func (m *Mesh) Vertices() []Vertex {
	return m.vertices.Resource()[:m.faces*VerticesPerFace]
}

// Indices returns the triangle list indices. The slice is only valid until Release.
func (m *Mesh) Indices() []uint32 {
	return m.indices.Resource()[:m.faces*IndicesPerFace]
}

// FaceCount returns the number of emitted quads.
func (m *Mesh) FaceCount() int { return m.faces }

// Empty reports whether the mesh has no faces.
func (m *Mesh) Empty() bool { return m.faces == 0 }

// Digest fingerprints the vertex and index data. Equal digests mean a remesh
// produced the same geometry.
func (m *Mesh) Digest() uint64 { return m.digest }

// Release returns both buffers to their arenas.
func (m *Mesh) Release() {
	m.vertices.Release()
	m.indices.Release()
}

func digest(vertices []Vertex, indices []uint32) uint64 {
	d := xxhash.New()
	var buf [20]byte
	for _, v := range vertices {
		binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(v.Position[0]))
		binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(v.Position[1]))
		binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(v.Position[2]))
		binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(v.UV[0]))
		binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(v.UV[1]))
		d.Write(buf[:])
	}
	for _, i := range indices {
		binary.LittleEndian.PutUint32(buf[0:], i)
		d.Write(buf[:4])
	}
	return d.Sum64()
}
