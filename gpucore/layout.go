// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpucore

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Byte sizes of the wire layouts.
const (
	// VertexStride is position (16 bytes) + texCoord (8 bytes).
	VertexStride = 24

	// PointStride is position (16 bytes) + color (16 bytes) + size (4 bytes).
	PointStride = 36

	// ColorSize is one vec4<f32>.
	ColorSize = 16

	// UniformSize is one mat4x4<f32>.
	UniformSize = 64
)

// Binding indices.
const (
	// VertexIndex is the vertex binding that holds geometry.
	VertexIndex = 0

	// UniformIndex is the vertex binding that holds the transform matrix.
	UniformIndex = 1

	// ColorIndex is the fragment binding that holds the tint color.
	ColorIndex = 0

	// BrushTextureIndex is the fragment texture binding of the brush.
	BrushTextureIndex = 0

	// maxBindings bounds every binding table.
	maxBindings = 4
)

// CheckIndex validates a binding index.
func CheckIndex(index int) error {
	if index < 0 || index >= maxBindings {
		return fmt.Errorf("%w: %d", ErrBufferIndex, index)
	}
	return nil
}

// VertexRecord is a decoded Vertex.
type VertexRecord struct {
	Position [4]float32
	TexCoord [2]float32
}

// PointRecord is a decoded Point.
type PointRecord struct {
	Position [4]float32
	Color    [4]float32
	Size     float32
}

// PutFloat32s writes vals into buf as little-endian float32 values and
// returns the number of bytes written.
func PutFloat32s(buf []byte, vals ...float32) int {
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return len(vals) * 4
}

// Float32At reads the little-endian float32 at byte offset off.
func Float32At(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

// DecodeVertex decodes the Vertex record at the start of b.
func DecodeVertex(b []byte) VertexRecord {
	var v VertexRecord
	for i := range v.Position {
		v.Position[i] = Float32At(b, i*4)
	}
	v.TexCoord[0] = Float32At(b, 16)
	v.TexCoord[1] = Float32At(b, 20)
	return v
}

// DecodePoint decodes the Point record at the start of b.
func DecodePoint(b []byte) PointRecord {
	var p PointRecord
	for i := range p.Position {
		p.Position[i] = Float32At(b, i*4)
		p.Color[i] = Float32At(b, 16+i*4)
	}
	p.Size = Float32At(b, 32)
	return p
}

// DecodeMatrix decodes a 64-byte uniform matrix.
func DecodeMatrix(b []byte) [16]float32 {
	var m [16]float32
	for i := range m {
		m[i] = Float32At(b, i*4)
	}
	return m
}

// DecodeColor decodes a 16-byte color.
func DecodeColor(b []byte) [4]float32 {
	var c [4]float32
	for i := range c {
		c[i] = Float32At(b, i*4)
	}
	return c
}

// ApplyMatrix maps a position through a row-major matrix using the
// row-vector convention (p' = p * m).
func ApplyMatrix(m [16]float32, p [4]float32) [4]float32 {
	var out [4]float32
	for col := 0; col < 4; col++ {
		out[col] = p[0]*m[col] + p[1]*m[4+col] + p[2]*m[8+col] + p[3]*m[12+col]
	}
	return out
}

// RecordCount returns how many whole records of layout fit in n bytes.
func RecordCount(layout VertexLayout, n int) int {
	stride := layout.Stride()
	if stride == 0 {
		return 0
	}
	return n / stride
}
