package graphics

import (
	"image"

	"cubecity/internal/chunks"
	"cubecity/internal/profiling"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	WinWidth  = 1280
	WinHeight = 720
)

var skyColor = mgl32.Vec3{0.55, 0.75, 0.95}

// ChunkRenderer draws every entity that has both a render and a position
// component. It must be used on the GL thread.
type ChunkRenderer struct {
	shader  *Shader
	atlas   uint32
	comps   chunks.Components
	FogEnd  float32
	Visible int
}

func NewChunkRenderer(comps chunks.Components, atlasImg *image.RGBA) (*ChunkRenderer, error) {
	shader, err := NewShader(chunkVertexShader, chunkFragmentShader)
	if err != nil {
		return nil, err
	}
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)
	return &ChunkRenderer{
		shader: shader,
		atlas:  UploadAtlas(atlasImg),
		comps:  comps,
		FogEnd: 200,
	}, nil
}

func (r *ChunkRenderer) Render(cam *Camera) {
	defer profiling.Track("graphics.Render")()

	gl.ClearColor(skyColor.X(), skyColor.Y(), skyColor.Z(), 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.shader.Use()
	r.shader.SetMatrix4("proj", cam.GetProjectionMatrix())
	r.shader.SetMatrix4("view", cam.GetViewMatrix())
	r.shader.SetVector3("fogColor", skyColor)
	r.shader.SetFloat("fogEnd", r.FogEnd)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.atlas)
	r.shader.SetInt("atlas", 0)

	r.Visible = 0
	r.comps.EachDrawable(func(rc *chunks.RenderComponent, pos *chunks.PositionComponent) {
		if rc.Geometry == nil {
			return
		}
		va, ok1 := rc.Geometry.Vertices.(*VertexArray)
		ib, ok2 := rc.Geometry.Indices.(*IndexBuffer)
		if !ok1 || !ok2 || ib.Len() == 0 {
			return
		}
		r.shader.SetVector3("origin", pos.Origin)
		gl.BindVertexArray(va.VAO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ib.EBO)
		gl.DrawElementsWithOffset(gl.TRIANGLES, int32(ib.Len()), gl.UNSIGNED_INT, 0)
		r.Visible++
	})
	gl.BindVertexArray(0)
}

// Delete frees the shader and atlas texture.
func (r *ChunkRenderer) Delete() {
	r.shader.Delete()
	gl.DeleteTextures(1, &r.atlas)
}
