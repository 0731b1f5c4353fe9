package graphics

import (
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// UploadAtlas uploads the block atlas as a 2D texture. Rows are flipped so
// texture v=1 is the top of the image, matching the mesher's UVs. Must run on
// the GL thread.
func UploadAtlas(img *image.RGBA) uint32 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	flipped := make([]byte, len(img.Pix))
	for y := range h {
		src := img.Pix[y*img.Stride : y*img.Stride+w*4]
		copy(flipped[(h-1-y)*w*4:], src)
	}

	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA,
		int32(w),
		int32(h),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(flipped),
	)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return texture
}
