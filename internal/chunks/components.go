package chunks

import (
	"cubecity/internal/gpu"
	"cubecity/internal/meshing"
	"cubecity/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/arche/ecs"
	"github.com/mlange-42/arche/generic"
	"github.com/pkg/errors"
)

// ChunkComponent tags an entity as the scene node of a chunk.
type ChunkComponent struct {
	Coord world.ChunkCoord
}

// PositionComponent is the world-space origin of the chunk's block (0,0,0).
type PositionComponent struct {
	Origin mgl32.Vec3
}

// RenderComponent is attached only once both buffers of Geometry exist.
type RenderComponent struct {
	Geometry *Geometry
}

// Components wraps the arche world the manager records chunks in and the
// component mappers it writes through. Renderers only read through it.
type Components struct {
	world *ecs.World

	chunks    generic.Map[ChunkComponent]
	positions generic.Map[PositionComponent]
	renders   generic.Map[RenderComponent]

	spawn  generic.Map2[ChunkComponent, PositionComponent]
	attach generic.Map1[RenderComponent]

	all      *generic.Filter1[ChunkComponent]
	rendered *generic.Filter1[RenderComponent]
	drawable *generic.Filter2[RenderComponent, PositionComponent]
}

// NewComponents registers the chunk components with w.
func NewComponents(w *ecs.World) Components {
	return Components{
		world:     w,
		chunks:    generic.NewMap[ChunkComponent](w),
		positions: generic.NewMap[PositionComponent](w),
		renders:   generic.NewMap[RenderComponent](w),
		spawn:     generic.NewMap2[ChunkComponent, PositionComponent](w),
		attach:    generic.NewMap1[RenderComponent](w),
		all:       generic.NewFilter1[ChunkComponent](),
		rendered:  generic.NewFilter1[RenderComponent](),
		drawable:  generic.NewFilter2[RenderComponent, PositionComponent](),
	}
}

// World returns the underlying arche world.
func (c Components) World() *ecs.World { return c.world }

func (c Components) spawnChunk(coord world.ChunkCoord, origin mgl32.Vec3) ecs.Entity {
	return c.spawn.NewWith(&ChunkComponent{Coord: coord}, &PositionComponent{Origin: origin})
}

// setRender attaches geo to e, replacing an existing render component.
func (c Components) setRender(e ecs.Entity, geo *Geometry) {
	if c.renders.Has(e) {
		c.renders.Get(e).Geometry = geo
		return
	}
	c.attach.Assign(e, &RenderComponent{Geometry: geo})
}

// Chunk returns the chunk component of a live entity.
func (c Components) Chunk(e ecs.Entity) (*ChunkComponent, bool) {
	if !c.world.Alive(e) || !c.chunks.Has(e) {
		return nil, false
	}
	return c.chunks.Get(e), true
}

// Position returns the position component of a live entity.
func (c Components) Position(e ecs.Entity) (*PositionComponent, bool) {
	if !c.world.Alive(e) || !c.positions.Has(e) {
		return nil, false
	}
	return c.positions.Get(e), true
}

// EachRender calls fn for every entity with a render component. fn must not
// add or remove entities or components.
func (c Components) EachRender(fn func(e ecs.Entity, r *RenderComponent)) {
	q := c.rendered.Query(c.world)
	for q.Next() {
		fn(q.Entity(), q.Get())
	}
}

// EachDrawable calls fn for every entity that has both geometry and a position.
func (c Components) EachDrawable(fn func(r *RenderComponent, p *PositionComponent)) {
	q := c.drawable.Query(c.world)
	for q.Next() {
		fn(q.Get())
	}
}

// Renders returns the number of entities with a render component.
func (c Components) Renders() int {
	q := c.rendered.Query(c.world)
	n := q.Count()
	q.Close()
	return n
}

// Entities returns the number of chunk entities.
func (c Components) Entities() int {
	q := c.all.Query(c.world)
	n := q.Count()
	q.Close()
	return n
}

// Geometry is a chunk's device-side mesh. It is owned by exactly one record.
type Geometry struct {
	Vertices gpu.VertexBuffer
	Indices  gpu.IndexBuffer
	Digest   uint64
	Faces    int
}

// Dispose frees both buffers.
func (g *Geometry) Dispose() error {
	verr := g.Vertices.Dispose()
	ierr := g.Indices.Dispose()
	if verr != nil {
		return verr
	}
	return ierr
}

// upload copies mesh into a vertex and index buffer, undoing the first if the
// second fails.
func upload(f gpu.Factory, mesh *meshing.Mesh) (*Geometry, error) {
	vb, err := f.NewVertexBuffer(mesh.Vertices())
	if err != nil {
		return nil, errors.Wrap(err, "vertex buffer")
	}
	ib, err := f.NewIndexBuffer(mesh.Indices())
	if err != nil {
		vb.Dispose()
		return nil, errors.Wrap(err, "index buffer")
	}
	return &Geometry{Vertices: vb, Indices: ib, Digest: mesh.Digest(), Faces: mesh.FaceCount()}, nil
}
