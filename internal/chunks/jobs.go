package chunks

import (
	"fmt"

	"cubecity/internal/meshing"
	"cubecity/internal/pool"
	"cubecity/internal/world"
)

type generateRequest struct {
	coord world.ChunkCoord
	seq   uint64
}

func (r generateRequest) String() string { return fmt.Sprintf("generate %v#%d", r.coord, r.seq) }

type generateResponse struct {
	coord world.ChunkCoord
	seq   uint64
	grid  *pool.Handle[[]world.BlockType]
	mesh  *meshing.Mesh
}

type remeshRequest struct {
	coord world.ChunkCoord
	seq   uint64
	grid  *pool.Handle[[]world.BlockType]
}

func (r remeshRequest) String() string { return fmt.Sprintf("remesh %v#%d", r.coord, r.seq) }

type remeshResponse struct {
	coord world.ChunkCoord
	seq   uint64
	grid  *pool.Handle[[]world.BlockType]
	mesh  *meshing.Mesh
}

func (r generateResponse) release() {
	r.grid.Release()
	r.mesh.Release()
}

func (r remeshResponse) release() {
	r.grid.Release()
	r.mesh.Release()
}

// generate runs on a worker. It touches only the arenas, the generator and the
// mesher, all of which are safe for concurrent use.
func (m *Manager) generate(req generateRequest) (generateResponse, error) {
	h := m.blocks.Get(m.dims.Volume())
	ok := false
	defer func() {
		if !ok {
			h.Release()
		}
	}()

	grid := world.GridFromHandle(h, m.dims)
	m.gen.Generate(req.coord, grid)
	mesh := m.mesher.Build(grid)

	ok = true
	return generateResponse{coord: req.coord, seq: req.seq, grid: h, mesh: mesh}, nil
}

// remesh runs on a worker. The request's grid reference travels into the response.
func (m *Manager) remesh(req remeshRequest) (remeshResponse, error) {
	mesh := m.mesher.Build(world.GridFromHandle(req.grid, m.dims))
	return remeshResponse{coord: req.coord, seq: req.seq, grid: req.grid, mesh: mesh}, nil
}
