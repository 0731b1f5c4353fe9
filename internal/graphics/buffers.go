package graphics

import (
	"unsafe"

	"cubecity/internal/gpu"
	"cubecity/internal/meshing"

	"github.com/faiface/mainthread"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// GLFactory creates OpenGL buffers for chunk meshes. Calls are marshalled to
// the main thread, so it may be used from the tick goroutine.
type GLFactory struct{}

var _ gpu.Factory = GLFactory{}

// VertexArray is a VAO with its vertex buffer and attribute layout.
type VertexArray struct {
	VAO, VBO uint32
	count    int
	disposed bool
}

// IndexBuffer is an element array buffer.
type IndexBuffer struct {
	EBO      uint32
	count    int
	disposed bool
}

func (GLFactory) NewVertexBuffer(vertices []meshing.Vertex) (gpu.VertexBuffer, error) {
	va := &VertexArray{count: len(vertices)}
	stride := int32(meshing.VertexStride * 4)
	mainthread.Call(func() {
		gl.GenVertexArrays(1, &va.VAO)
		gl.GenBuffers(1, &va.VBO)
		gl.BindVertexArray(va.VAO)
		gl.BindBuffer(gl.ARRAY_BUFFER, va.VBO)
		if len(vertices) > 0 {
			gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*int(stride), gl.Ptr(vertices), gl.STATIC_DRAW)
		}
		gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
		gl.EnableVertexAttribArray(0)
		gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, stride, unsafe.Offsetof(meshing.Vertex{}.UV))
		gl.EnableVertexAttribArray(1)
		gl.BindVertexArray(0)
	})
	return va, nil
}

func (GLFactory) NewIndexBuffer(indices []uint32) (gpu.IndexBuffer, error) {
	ib := &IndexBuffer{count: len(indices)}
	mainthread.Call(func() {
		gl.GenBuffers(1, &ib.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ib.EBO)
		if len(indices) > 0 {
			gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
		}
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
	})
	return ib, nil
}

func (va *VertexArray) Len() int { return va.count }

func (va *VertexArray) Dispose() error {
	if va.disposed {
		return gpu.ErrDisposed
	}
	va.disposed = true
	vao, vbo := va.VAO, va.VBO
	mainthread.CallNonBlock(func() {
		gl.DeleteVertexArrays(1, &vao)
		gl.DeleteBuffers(1, &vbo)
	})
	return nil
}

func (ib *IndexBuffer) Len() int { return ib.count }

func (ib *IndexBuffer) Dispose() error {
	if ib.disposed {
		return gpu.ErrDisposed
	}
	ib.disposed = true
	ebo := ib.EBO
	mainthread.CallNonBlock(func() {
		gl.DeleteBuffers(1, &ebo)
	})
	return nil
}
