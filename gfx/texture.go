package gfx

import (
	"image"
	"image/color"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// paletteUnit is the texture unit the palette is bound to.
const paletteUnit = 0

// TextureObject is a 2D RGBA texture backed by an image.
type TextureObject struct {
	texID uint32
	image *image.RGBA
}

func newTexture(img *image.RGBA) *TextureObject {
	var texID uint32
	gl.GenTextures(1, &texID)
	gl.ActiveTexture(gl.TEXTURE0 + paletteUnit)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

	t := &TextureObject{texID: texID}
	t.Update(img)
	return t
}

// Update uploads @img, reallocating the texture when the size changed.
func (t *TextureObject) Update(img *image.RGBA) {
	gl.ActiveTexture(gl.TEXTURE0 + paletteUnit)
	gl.BindTexture(gl.TEXTURE_2D, t.texID)
	size := img.Rect.Size()
	if t.image == nil || t.image.Rect.Size() != size {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(size.X), int32(size.Y),
			0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	} else {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(size.X), int32(size.Y),
			gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	}
	t.image = img
}

// Bind binds the texture to its unit.
func (t *TextureObject) Bind() {
	gl.ActiveTexture(gl.TEXTURE0 + paletteUnit)
	gl.BindTexture(gl.TEXTURE_2D, t.texID)
}

// Delete frees the texture.
func (t *TextureObject) Delete() {
	gl.DeleteTextures(1, &t.texID)
}

// paletteImage lays out flattened rgb triples as an n x 1 image.
func paletteImage(rgb []float32) *image.RGBA {
	n := len(rgb) / 3
	if n == 0 {
		n = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, n, 1))
	for i := 0; i+2 < len(rgb); i += 3 {
		img.SetRGBA(i/3, 0, color.RGBA{
			R: toByte(rgb[i]), G: toByte(rgb[i+1]), B: toByte(rgb[i+2]), A: 255,
		})
	}
	return img
}

func toByte(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
