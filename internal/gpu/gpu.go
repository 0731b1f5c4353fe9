// Package gpu abstracts the creation of geometry buffers so the chunk core never
// depends on a particular rendering API.
package gpu

import (
	"cubecity/internal/meshing"

	"github.com/pkg/errors"
)

// ErrDisposed is returned when a disposed buffer is disposed again.
var ErrDisposed = errors.New("gpu: buffer already disposed")

// VertexBuffer is a device-side copy of mesh vertices.
type VertexBuffer interface {
	Len() int
	Dispose() error
}

// IndexBuffer is a device-side copy of triangle indices.
type IndexBuffer interface {
	Len() int
	Dispose() error
}

// Factory creates buffers from mesh data. Implementations copy the data, so the
// caller may release its slices as soon as the call returns. Factories are only
// called from the tick goroutine.
type Factory interface {
	NewVertexBuffer(vertices []meshing.Vertex) (VertexBuffer, error)
	NewIndexBuffer(indices []uint32) (IndexBuffer, error)
}
