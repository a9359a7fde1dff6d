// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ink

import "github.com/gogpu/ink/gpucore"

// Float2 is a two-component float vector.
type Float2 [2]float32

// Float4 is a four-component float vector.
type Float4 [4]float32

// Vec2 is a point in user pixel space (origin top-left, y down).
type Vec2 struct {
	X, Y float64
}

// V2 is a convenience function to create a Vec2.
func V2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors.
func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Y: v.Y + w.Y}
}

// Mul returns the vector scaled by a scalar.
func (v Vec2) Mul(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Float2 converts to a two-component float vector.
func (v Vec2) Float2() Float2 {
	return Float2{float32(v.X), float32(v.Y)}
}

// Float4 converts to a homogeneous 2D position (z = 0, w = 1).
func (v Vec2) Float4() Float4 {
	return Float4{float32(v.X), float32(v.Y), 0, 1}
}

// Vertex is one corner of a textured quad.
type Vertex struct {
	Position Float4
	TexCoord Float2
}

// NewVertex builds a vertex from a pixel-space position and a texture
// coordinate.
func NewVertex(pos, texCoord Vec2) Vertex {
	return Vertex{
		Position: pos.Float4(),
		TexCoord: texCoord.Float2(),
	}
}

// Point is a round dot of a given diameter.
type Point struct {
	Position Float4
	Color    Float4

	// Size is the point diameter in pixels.
	Size float32
}

// NewPoint builds a point at (x, y) in pixel space.
func NewPoint(x, y float64, c RGBA, size float64) Point {
	return Point{
		Position: Float4{float32(x), float32(y), 0, 1},
		Color:    c.Float4(),
		Size:     float32(size),
	}
}

// ColorBuffer is the fragment tint bound for textured draws.
type ColorBuffer struct {
	Color Float4
}

// NewColorBuffer creates a ColorBuffer from RGBA components in [0, 1].
func NewColorBuffer(r, g, b, a float32) ColorBuffer {
	return ColorBuffer{Color: Float4{r, g, b, a}}
}

// Bytes returns the 16-byte encoding.
func (c ColorBuffer) Bytes() []byte {
	buf := make([]byte, gpucore.ColorSize)
	gpucore.PutFloat32s(buf, c.Color[:]...)
	return buf
}

// Uniforms is the per-frame payload uploaded to the GPU.
type Uniforms struct {
	ScaleMatrix Matrix4
}

// NewUniforms returns the uniforms for a drawable of the given pixel size.
func NewUniforms(width, height float32) Uniforms {
	return Uniforms{ScaleMatrix: PixelToClip(width, height)}
}

// Bytes returns the 64-byte encoding.
func (u Uniforms) Bytes() []byte {
	return u.ScaleMatrix.Bytes()
}

// EncodeVertices returns the wire encoding of vertices.
func EncodeVertices(vertices []Vertex) []byte {
	buf := make([]byte, len(vertices)*gpucore.VertexStride)
	off := 0
	for i := range vertices {
		v := &vertices[i]
		off += gpucore.PutFloat32s(buf[off:],
			v.Position[0], v.Position[1], v.Position[2], v.Position[3],
			v.TexCoord[0], v.TexCoord[1])
	}
	return buf
}

// EncodePoints returns the wire encoding of points.
func EncodePoints(points []Point) []byte {
	buf := make([]byte, len(points)*gpucore.PointStride)
	off := 0
	for i := range points {
		p := &points[i]
		off += gpucore.PutFloat32s(buf[off:],
			p.Position[0], p.Position[1], p.Position[2], p.Position[3],
			p.Color[0], p.Color[1], p.Color[2], p.Color[3],
			p.Size)
	}
	return buf
}

// QuadVertices returns two triangles covering the axis-aligned square of
// side size centred at c, with texture coordinates spanning [0, 1].
func QuadVertices(c Vec2, size float64) []Vertex {
	h := size / 2
	tl := NewVertex(V2(c.X-h, c.Y-h), V2(0, 0))
	tr := NewVertex(V2(c.X+h, c.Y-h), V2(1, 0))
	bl := NewVertex(V2(c.X-h, c.Y+h), V2(0, 1))
	br := NewVertex(V2(c.X+h, c.Y+h), V2(1, 1))
	return []Vertex{tl, tr, bl, tr, br, bl}
}
