package gfx

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	ml "github.com/go-gl/mathgl/mgl32"
)

var (
	square = [6]ml.Vec2{
		{-1, 1},
		{-1, -1},
		{1, -1},

		{-1, 1},
		{1, 1},
		{1, -1},
	}
	uvCord = [6]ml.Vec2{
		{0, 1},
		{0, 0},
		{1, 0},

		{0, 1},
		{1, 1},
		{1, 0},
	}
)

// quadVertices interleaves position and texture coordinates of the full screen quad.
func quadVertices() []float32 {
	out := make([]float32, 0, 4*len(square))
	for i := range square {
		out = append(out, square[i].X(), square[i].Y(), uvCord[i].X(), uvCord[i].Y())
	}
	return out
}

// VertexArrayObject points to a vertex buffer that has already been
// loaded into grpahics memory.
type VertexArrayObject struct {
	vaoID  uint32
	vboID  uint32
	length int32
}

// newQuad uploads the full screen quad.
func newQuad() *VertexArrayObject {
	vertices := quadVertices()
	const stride = 4 * 4

	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(vertices), gl.Ptr(vertices), gl.STATIC_DRAW)

	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	gl.EnableVertexAttribArray(vertPosLocation)
	gl.VertexAttribPointer(vertPosLocation, 2, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(texPosLocation)
	gl.VertexAttribPointer(texPosLocation, 2, gl.FLOAT, false, stride, gl.PtrOffset(2*4))

	gl.BindVertexArray(0)

	return &VertexArrayObject{vaoID: vao, vboID: vbo, length: int32(len(square))}
}

// Draw draws a VertexArrayObject to the current frame buffer
func (v *VertexArrayObject) Draw() {
	gl.BindVertexArray(v.vaoID)
	gl.DrawArrays(gl.TRIANGLES, 0, v.length)
	gl.BindVertexArray(0)
}

// Delete frees the buffers.
func (v *VertexArrayObject) Delete() {
	gl.DeleteVertexArrays(1, &v.vaoID)
	gl.DeleteBuffers(1, &v.vboID)
}
