// Package chunks owns the lifecycle of streamed terrain chunks: which ones
// exist, their block grids, their GPU geometry and their registry entities.
//
// All Manager methods must be called from one goroutine (the simulation tick).
// Generation and meshing run on worker goroutines that never touch the
// registry or the GPU factory; their results are applied by Tick.
package chunks

import (
	"log/slog"

	"cubecity/internal/config"
	"cubecity/internal/dispatch"
	"cubecity/internal/gpu"
	"cubecity/internal/meshing"
	"cubecity/internal/pool"
	"cubecity/internal/profiling"
	"cubecity/internal/terrain"
	"cubecity/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/arche/ecs"
	"github.com/pkg/errors"
)

var (
	// ErrNotResident is returned when editing a chunk that has no installed grid.
	ErrNotResident = errors.New("chunks: chunk is not resident")
	// ErrOutOfBounds is returned for edits above or below the chunk.
	ErrOutOfBounds = errors.New("chunks: block position outside the chunk")
	// ErrMissingDependency is returned by NewManager when a required collaborator is nil.
	ErrMissingDependency = errors.New("chunks: missing dependency")
)

// Deps are the collaborators a Manager needs. World and Logger are optional.
type Deps struct {
	Generator terrain.Generator
	Blocks    *world.BlockRegistry
	Factory   gpu.Factory
	World     *ecs.World
	Logger    *slog.Logger
}

// Stats is a snapshot of the manager's bookkeeping.
type Stats struct {
	Records    int
	Requested  int
	Generating int
	Cancelled  int
	Resident   int

	PendingGenerate int
	PendingRemesh   int

	Installed      int64
	Remeshed       int64
	Discarded      int64
	Saturated      int64
	Faults         int64
	UploadsSkipped int64
}

type edit struct {
	coord   world.ChunkCoord
	x, y, z int
	block   world.BlockType
}

// Manager is the chunk lifecycle manager.
type Manager struct {
	cfg     config.Config
	dims    world.Dims
	log     *slog.Logger
	tracker *world.RangeTracker
	dirty   bool
	closed  bool

	gen     terrain.Generator
	mesher  *meshing.Builder
	blocks  *pool.Arena[[]world.BlockType]
	factory gpu.Factory

	registry *ecs.World
	comps    Components

	generator *dispatch.Dispatcher[generateRequest, generateResponse]
	remesher  *dispatch.Dispatcher[remeshRequest, remeshResponse]

	records       map[world.ChunkCoord]*record
	waiting       []world.ChunkCoord
	remeshBacklog []world.ChunkCoord
	edits         []edit
	nextSeq       uint64

	stats Stats
}

// NewManager validates cfg and starts the worker pools.
func NewManager(cfg config.Config, deps Deps) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch {
	case deps.Generator == nil:
		return nil, errors.Wrap(ErrMissingDependency, "generator")
	case deps.Blocks == nil:
		return nil, errors.Wrap(ErrMissingDependency, "block registry")
	case deps.Factory == nil:
		return nil, errors.Wrap(ErrMissingDependency, "gpu factory")
	}
	if deps.World == nil {
		w := ecs.NewWorld()
		deps.World = &w
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	tracker, err := world.NewRangeTracker(cfg.LoadRange, cfg.RemoveRange)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		cfg:      cfg,
		dims:     cfg.Dims(),
		log:      deps.Logger.With("component", "chunks"),
		tracker:  tracker,
		dirty:    true,
		gen:      deps.Generator,
		mesher:   meshing.NewBuilder(deps.Blocks, meshing.NewArenas(cfg.BucketGranularity)),
		blocks:   world.NewGridArena(cfg.BucketGranularity),
		factory:  deps.Factory,
		registry: deps.World,
		comps:    NewComponents(deps.World),
		records:  make(map[world.ChunkCoord]*record),
	}
	m.generator = dispatch.New(m.generate, dispatch.Options{
		Name:     "generate",
		Workers:  cfg.Workers,
		Capacity: cfg.QueueCapacity,
		Logger:   deps.Logger,
	})
	m.remesher = dispatch.New(m.remesh, dispatch.Options{
		Name:     "remesh",
		Workers:  cfg.Workers,
		Capacity: cfg.QueueCapacity,
		Logger:   deps.Logger,
	})
	return m, nil
}

// Tick advances the manager one step around the viewpoint at pos.
func (m *Manager) Tick(pos mgl32.Vec3) {
	defer profiling.Track("chunks.Tick")()
	if m.closed {
		return
	}

	ref := world.ChunkFromWorld(pos, m.dims)
	if m.tracker.Update(ref) || m.dirty {
		m.dirty = false
		m.refresh()
	}
	m.dispatchWaiting()
	m.retryRemesh()
	m.drainGenerated()
	m.drainRemeshed()
	m.applyEdits()
}

// refresh unloads chunks beyond the remove range and requests every chunk
// within the load range, nearest ring first.
func (m *Manager) refresh() {
	defer profiling.Track("chunks.refresh")()
	for c := range m.records {
		if m.tracker.IsForDelete(c) {
			m.Unload(c)
		}
	}
	for _, c := range m.tracker.RequiredCoords() {
		m.request(c)
	}
}

// Request asks for chunk c. Requesting a chunk that already exists is a no-op,
// except that a cancelled in-flight chunk is revived.
func (m *Manager) Request(c world.ChunkCoord) {
	if rec, ok := m.records[c]; ok && rec.job != jobCancelled {
		m.log.Warn("duplicate chunk request", "coord", c, "state", rec.state)
		return
	}
	m.request(c)
}

func (m *Manager) request(c world.ChunkCoord) {
	if rec, ok := m.records[c]; ok {
		if rec.job == jobCancelled {
			rec.job = jobInFlight
			m.log.Debug("chunk revived", "coord", c)
		}
		return
	}
	e := m.newEntity(c)
	m.records[c] = &record{coord: c, state: StateRequested, entity: e}
	m.waiting = append(m.waiting, c)
}

func (m *Manager) newEntity(c world.ChunkCoord) ecs.Entity {
	return m.comps.spawnChunk(c, c.Origin(m.dims))
}

// dispatchWaiting enqueues Requested chunks in request order until the
// per-tick budget is spent or the queue pushes back.
func (m *Manager) dispatchWaiting() {
	budget := m.cfg.MaxDispatchPerTick
	i := 0
	for ; i < len(m.waiting) && budget > 0; i++ {
		c := m.waiting[i]
		rec, ok := m.records[c]
		if !ok || rec.state != StateRequested {
			continue
		}
		req := generateRequest{coord: c, seq: m.nextSeq + 1}
		if err := m.generator.Enqueue(req); err != nil {
			if errors.Is(err, dispatch.ErrQueueSaturated) {
				m.count("chunks.saturated", &m.stats.Saturated)
			} else {
				m.log.Error("enqueue generation", "coord", c, "err", err)
			}
			break
		}
		m.nextSeq++
		rec.state = StateGenerating
		rec.job = jobInFlight
		rec.genSeq = req.seq
		budget--
	}
	m.waiting = append(m.waiting[:0], m.waiting[i:]...)
}

func (m *Manager) drainGenerated() {
	for {
		resp, ok, err := m.generator.TryPoll()
		if !ok {
			return
		}
		if err != nil {
			m.generationFault(err)
			continue
		}
		m.installGenerated(resp)
	}
}

func (m *Manager) installGenerated(resp generateResponse) {
	rec, ok := m.records[resp.coord]
	if !ok || rec.state != StateGenerating || rec.genSeq != resp.seq {
		m.log.Warn("discarding generation result for unknown chunk", "coord", resp.coord)
		resp.release()
		m.count("chunks.discarded", &m.stats.Discarded)
		return
	}
	if rec.job == jobCancelled {
		m.log.Debug("discarding result of cancelled chunk", "coord", resp.coord)
		resp.release()
		m.count("chunks.discarded", &m.stats.Discarded)
		m.forget(rec)
		return
	}

	geo, err := upload(m.factory, resp.mesh)
	resp.mesh.Release()
	if err != nil {
		m.log.Error("chunk upload failed", "coord", rec.coord, "err", err)
		resp.grid.Release()
		rec.state = StateRequested
		rec.job = jobIdle
		m.waiting = append(m.waiting, rec.coord)
		return
	}

	rec.grid = resp.grid
	rec.geometry = geo
	rec.state = StateResident
	rec.job = jobIdle
	m.attachRender(rec, geo)
	m.count("chunks.installed", &m.stats.Installed)
}

func (m *Manager) generationFault(err error) {
	m.count("chunks.faults", &m.stats.Faults)
	var wf *dispatch.WorkerFault
	if !errors.As(err, &wf) {
		m.log.Error("chunk generation failed", "err", err)
		return
	}
	req, ok := wf.Request.(generateRequest)
	if !ok {
		m.log.Error("chunk generation failed", "err", err)
		return
	}
	m.log.Error("chunk generation failed", "coord", req.coord, "err", err)

	rec, found := m.records[req.coord]
	if !found || rec.state != StateGenerating || rec.genSeq != req.seq {
		return
	}
	if rec.job == jobCancelled {
		m.forget(rec)
		return
	}
	rec.state = StateRequested
	rec.job = jobIdle
	m.waiting = append(m.waiting, rec.coord)
}

// Unload removes chunk c. A chunk still generating is only marked cancelled;
// its record goes away when the result comes back.
func (m *Manager) Unload(c world.ChunkCoord) {
	rec, ok := m.records[c]
	if !ok {
		m.log.Debug("unload of unknown chunk", "coord", c)
		return
	}
	switch rec.state {
	case StateRequested:
		m.forget(rec)
	case StateGenerating:
		rec.job = jobCancelled
	case StateResident:
		if err := rec.geometry.Dispose(); err != nil {
			m.log.Error("dispose chunk geometry", "coord", c, "err", err)
		}
		rec.geometry = nil
		rec.grid.Release()
		rec.grid = nil
		if rec.pending != nil {
			rec.pending.Release()
			rec.pending = nil
		}
		m.forget(rec)
	}
}

// forget deletes the record and its entity.
func (m *Manager) forget(rec *record) {
	if m.registry.Alive(rec.entity) {
		m.registry.RemoveEntity(rec.entity)
	} else {
		m.log.Warn("chunk entity already gone", "coord", rec.coord)
	}
	delete(m.records, rec.coord)
}

// State returns the lifecycle state of chunk c.
func (m *Manager) State(c world.ChunkCoord) (State, bool) {
	rec, ok := m.records[c]
	if !ok {
		return 0, false
	}
	return rec.state, true
}

// Len returns the number of chunk records.
func (m *Manager) Len() int { return len(m.records) }

// Reference returns the chunk the tracker is centred on.
func (m *Manager) Reference() world.ChunkCoord { return m.tracker.Reference() }

// SetRanges replaces the load and remove ranges. The next Tick re-evaluates
// every chunk against them.
func (m *Manager) SetRanges(load, remove int) error {
	t, err := world.NewRangeTracker(load, remove)
	if err != nil {
		return err
	}
	t.Update(m.tracker.Reference())
	m.tracker = t
	m.dirty = true
	return nil
}

// Components exposes the component mappers for renderers.
func (m *Manager) Components() Components { return m.comps }

// Registry returns the arche world chunks are recorded in.
func (m *Manager) Registry() *ecs.World { return m.registry }

// Dims returns the chunk dimensions.
func (m *Manager) Dims() world.Dims { return m.dims }

// ArenaStats returns the counters of every arena the manager draws from.
func (m *Manager) ArenaStats() []pool.Stats {
	return append([]pool.Stats{m.blocks.Stats()}, m.mesher.Arenas().Stats()...)
}

func (m *Manager) Stats() Stats {
	s := m.stats
	s.Records = len(m.records)
	for _, rec := range m.records {
		switch rec.state {
		case StateRequested:
			s.Requested++
		case StateGenerating:
			s.Generating++
			if rec.job == jobCancelled {
				s.Cancelled++
			}
		case StateResident:
			s.Resident++
		}
	}
	s.PendingGenerate = m.generator.Pending()
	s.PendingRemesh = m.remesher.Pending()
	return s
}

func (m *Manager) count(name string, field *int64) {
	*field++
	profiling.Add(name, 1)
}

// Close stops the workers, waits for running jobs and releases every chunk
// and every result still queued.
func (m *Manager) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.generator.Close()
	m.remesher.Close()

	for c := range m.records {
		m.Unload(c)
	}
	m.edits = m.edits[:0]
	m.drainGenerated()
	m.drainRemeshed()

	for c, rec := range m.records {
		m.log.Warn("chunk left after close", "coord", c, "state", rec.state)
	}
}
