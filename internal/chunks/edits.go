package chunks

import (
	"cubecity/internal/dispatch"
	"cubecity/internal/pool"
	"cubecity/internal/profiling"
	"cubecity/internal/world"

	"github.com/pkg/errors"
)

// SetBlock queues a block change at world block coordinates. Edits are applied
// on the next Tick; every chunk touched in one tick is remeshed once.
func (m *Manager) SetBlock(worldX, y, worldZ int, b world.BlockType) error {
	c, lx, lz := world.SplitWorld(worldX, worldZ, m.dims)
	rec, ok := m.records[c]
	if !ok || rec.state != StateResident {
		return errors.Wrapf(ErrNotResident, "chunk %v", c)
	}
	if y < 0 || y >= m.dims.Y {
		return errors.Wrapf(ErrOutOfBounds, "y=%d outside [0,%d)", y, m.dims.Y)
	}
	m.edits = append(m.edits, edit{coord: c, x: lx, y: y, z: lz, block: b})
	return nil
}

// BlockAt reads the newest applied contents of a resident chunk. Edits still
// queued for the next Tick are not visible.
func (m *Manager) BlockAt(worldX, y, worldZ int) (world.BlockType, bool) {
	c, lx, lz := world.SplitWorld(worldX, worldZ, m.dims)
	rec, ok := m.records[c]
	if !ok || rec.state != StateResident {
		return world.BlockTypeAir, false
	}
	h := rec.grid
	if rec.pending != nil {
		h = rec.pending
	}
	return world.GridFromHandle(h, m.dims).At(lx, y, lz), true
}

type stagedGrid struct {
	coord world.ChunkCoord
	h     *pool.Handle[[]world.BlockType]
	grid  *world.BlockGrid
}

// applyEdits copies each touched grid, applies its edits to the copy and
// queues a remesh. Grids already handed to workers are never written.
func (m *Manager) applyEdits() {
	if len(m.edits) == 0 {
		return
	}
	defer profiling.Track("chunks.applyEdits")()

	var staged []stagedGrid
	index := make(map[world.ChunkCoord]int)
	for _, ed := range m.edits {
		rec, ok := m.records[ed.coord]
		if !ok || rec.state != StateResident {
			m.log.Debug("dropping edit for unloaded chunk", "coord", ed.coord)
			continue
		}
		i, ok := index[ed.coord]
		if !ok {
			src := rec.grid
			if rec.pending != nil {
				src = rec.pending
			}
			h := m.blocks.Get(m.dims.Volume())
			g := world.GridFromHandle(h, m.dims)
			if err := g.CopyFrom(world.GridFromHandle(src, m.dims)); err != nil {
				panic(err)
			}
			i = len(staged)
			index[ed.coord] = i
			staged = append(staged, stagedGrid{coord: ed.coord, h: h, grid: g})
		}
		staged[i].grid.Set(ed.x, ed.y, ed.z, ed.block)
	}
	m.edits = m.edits[:0]

	for _, s := range staged {
		rec := m.records[s.coord]
		if rec.pending != nil {
			rec.pending.Release()
		}
		m.nextSeq++
		rec.pending = s.h
		rec.pendingSeq = m.nextSeq
		if !m.enqueueRemesh(rec) {
			m.remeshBacklog = append(m.remeshBacklog, s.coord)
		}
	}
}

// enqueueRemesh hands the record's pending grid to a worker. It reports false
// when the queue pushed back and the remesh must be retried.
func (m *Manager) enqueueRemesh(rec *record) bool {
	rec.pending.AddUser()
	err := m.remesher.Enqueue(remeshRequest{coord: rec.coord, seq: rec.pendingSeq, grid: rec.pending})
	if err == nil {
		rec.remeshWaiting = false
		return true
	}
	rec.pending.Release()
	if errors.Is(err, dispatch.ErrQueueSaturated) {
		m.count("chunks.saturated", &m.stats.Saturated)
		rec.remeshWaiting = true
		return false
	}
	m.log.Error("enqueue remesh", "coord", rec.coord, "err", err)
	rec.remeshWaiting = false
	return true
}

func (m *Manager) retryRemesh() {
	if len(m.remeshBacklog) == 0 {
		return
	}
	keep := m.remeshBacklog[:0]
	for _, c := range m.remeshBacklog {
		rec, ok := m.records[c]
		if !ok || rec.pending == nil || !rec.remeshWaiting {
			continue
		}
		if !m.enqueueRemesh(rec) {
			keep = append(keep, c)
		}
	}
	m.remeshBacklog = keep
}

func (m *Manager) drainRemeshed() {
	for {
		resp, ok, err := m.remesher.TryPoll()
		if !ok {
			return
		}
		if err != nil {
			m.remeshFault(err)
			continue
		}
		m.applyRemesh(resp)
	}
}

func (m *Manager) applyRemesh(resp remeshResponse) {
	rec, ok := m.records[resp.coord]
	if !ok || rec.state != StateResident || rec.pending == nil || rec.pendingSeq != resp.seq {
		m.log.Debug("discarding stale remesh", "coord", resp.coord, "seq", resp.seq)
		resp.release()
		m.count("chunks.discarded", &m.stats.Discarded)
		return
	}

	var geo *Geometry
	if resp.mesh.Digest() == rec.geometry.Digest && resp.mesh.FaceCount() == rec.geometry.Faces {
		m.count("chunks.uploads_skipped", &m.stats.UploadsSkipped)
	} else {
		var err error
		geo, err = upload(m.factory, resp.mesh)
		if err != nil {
			m.log.Error("remesh upload failed", "coord", rec.coord, "err", err)
			resp.release()
			rec.pending.Release()
			rec.pending = nil
			return
		}
	}
	resp.mesh.Release()

	old := rec.grid
	rec.grid = rec.pending
	rec.pending = nil
	old.Release()
	resp.grid.Release()

	if geo != nil {
		prev := rec.geometry
		rec.geometry = geo
		m.attachRender(rec, geo)
		if err := prev.Dispose(); err != nil {
			m.log.Error("dispose replaced geometry", "coord", rec.coord, "err", err)
		}
	}
	m.count("chunks.remeshed", &m.stats.Remeshed)
}

func (m *Manager) attachRender(rec *record, geo *Geometry) {
	if !m.registry.Alive(rec.entity) {
		m.log.Warn("chunk entity missing, recreating", "coord", rec.coord)
		rec.entity = m.newEntity(rec.coord)
	}
	m.comps.setRender(rec.entity, geo)
}

func (m *Manager) remeshFault(err error) {
	m.count("chunks.faults", &m.stats.Faults)
	var wf *dispatch.WorkerFault
	if !errors.As(err, &wf) {
		m.log.Error("chunk remesh failed", "err", err)
		return
	}
	req, ok := wf.Request.(remeshRequest)
	if !ok {
		m.log.Error("chunk remesh failed", "err", err)
		return
	}
	m.log.Error("chunk remesh failed", "coord", req.coord, "err", err)
	req.grid.Release()
	if rec, found := m.records[req.coord]; found && rec.pending != nil && rec.pendingSeq == req.seq {
		rec.pending.Release()
		rec.pending = nil
	}
}
