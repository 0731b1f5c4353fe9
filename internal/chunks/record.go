package chunks

import (
	"fmt"

	"cubecity/internal/pool"
	"cubecity/internal/world"

	"github.com/mlange-42/arche/ecs"
)

// State is the lifecycle stage of a chunk.
type State int

const (
	StateRequested State = iota
	StateGenerating
	StateResident
)

func (s State) String() string {
	switch s {
	case StateRequested:
		return "requested"
	case StateGenerating:
		return "generating"
	case StateResident:
		return "resident"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// jobFlag tracks the generation job of a record.
type jobFlag int

const (
	jobIdle jobFlag = iota
	jobInFlight
	jobCancelled
)

type record struct {
	coord  world.ChunkCoord
	state  State
	entity ecs.Entity

	job    jobFlag
	genSeq uint64

	grid     *pool.Handle[[]world.BlockType]
	geometry *Geometry

	// Copy-on-write remesh. pending holds the record's reference to the newest
	// edited grid; a queued job holds a second one.
	pending       *pool.Handle[[]world.BlockType]
	pendingSeq    uint64
	remeshWaiting bool
}
