package gpu

import (
	"sync/atomic"

	"cubecity/internal/meshing"

	"github.com/pkg/errors"
)

// ErrInjected is returned by Memory when FailAfter has been reached.
var ErrInjected = errors.New("gpu: injected allocation failure")

// Memory is a Factory that keeps buffers in host memory. It counts live buffers
// so leaks and double disposal show up in tests and headless runs.
type Memory struct {
	liveVertex atomic.Int64
	liveIndex  atomic.Int64
	created    atomic.Int64
	uploads    atomic.Int64

	// FailAfter, when positive, makes every allocation after that many succeed fail.
	FailAfter int64
}

// MemoryStats is a snapshot of Memory counters.
type MemoryStats struct {
	LiveVertexBuffers int64
	LiveIndexBuffers  int64
	Created           int64
	// UploadedBytes counts bytes copied into buffers.
	UploadedBytes int64
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) allocate() error {
	n := m.created.Add(1)
	if m.FailAfter > 0 && n > m.FailAfter {
		m.created.Add(-1)
		return errors.WithStack(ErrInjected)
	}
	return nil
}

func (m *Memory) NewVertexBuffer(vertices []meshing.Vertex) (VertexBuffer, error) {
	if err := m.allocate(); err != nil {
		return nil, err
	}
	b := &memVertexBuffer{owner: m, data: append([]meshing.Vertex(nil), vertices...)}
	m.liveVertex.Add(1)
	m.uploads.Add(int64(len(vertices)) * meshing.VertexStride * 4)
	return b, nil
}

func (m *Memory) NewIndexBuffer(indices []uint32) (IndexBuffer, error) {
	if err := m.allocate(); err != nil {
		return nil, err
	}
	b := &memIndexBuffer{owner: m, data: append([]uint32(nil), indices...)}
	m.liveIndex.Add(1)
	m.uploads.Add(int64(len(indices)) * 4)
	return b, nil
}

func (m *Memory) Stats() MemoryStats {
	return MemoryStats{
		LiveVertexBuffers: m.liveVertex.Load(),
		LiveIndexBuffers:  m.liveIndex.Load(),
		Created:           m.created.Load(),
		UploadedBytes:     m.uploads.Load(),
	}
}

type memVertexBuffer struct {
	owner    *Memory
	data     []meshing.Vertex
	disposed bool
}

func (b *memVertexBuffer) Len() int { return len(b.data) }

// Vertices exposes the stored copy.
func (b *memVertexBuffer) Vertices() []meshing.Vertex { return b.data }

func (b *memVertexBuffer) Dispose() error {
	if b.disposed {
		return errors.WithStack(ErrDisposed)
	}
	b.disposed = true
	b.data = nil
	b.owner.liveVertex.Add(-1)
	return nil
}

type memIndexBuffer struct {
	owner    *Memory
	data     []uint32
	disposed bool
}

func (b *memIndexBuffer) Len() int { return len(b.data) }

func (b *memIndexBuffer) Dispose() error {
	if b.disposed {
		return errors.WithStack(ErrDisposed)
	}
	b.disposed = true
	b.data = nil
	b.owner.liveIndex.Add(-1)
	return nil
}
