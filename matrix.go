// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ink

import (
	"github.com/chewxy/math32"

	"github.com/gogpu/ink/gpucore"
)

// Matrix4 is a 4x4 affine transform stored as 16 float32 values in
// row-major order:
//
//	| m0  m1  m2  m3  |
//	| m4  m5  m6  m7  |
//	| m8  m9  m10 m11 |
//	| m12 m13 m14 m15 |
//
// Points are row vectors, so a point maps as p' = p * M and the
// translation lives in m12, m13, m14. The same 64 bytes read as a
// column-major mat4x4<f32> give M * p in WGSL.
//
// Matrix4 is a value type. WithScale, WithRotation and WithTranslation
// return a new matrix and overwrite only the fields they own; they do not
// multiply. Composing rotation with scale this way is not a general
// transform composition, since both write the diagonal.
type Matrix4 [16]float32

// Identity returns the identity matrix.
func Identity() Matrix4 {
	return Matrix4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// WithScale returns m with the diagonal scale factors set.
func (m Matrix4) WithScale(x, y, z float32) Matrix4 {
	m[0] = x
	m[5] = y
	m[10] = z
	return m
}

// WithTranslation returns m with the translation row set.
func (m Matrix4) WithTranslation(x, y, z float32) Matrix4 {
	m[12] = x
	m[13] = y
	m[14] = z
	return m
}

// WithRotation returns m with the 3x3 block set to the XYZ Euler rotation
// for angles x, y, z in radians.
func (m Matrix4) WithRotation(x, y, z float32) Matrix4 {
	sx, cx := math32.Sin(x), math32.Cos(x)
	sy, cy := math32.Sin(y), math32.Cos(y)
	sz, cz := math32.Sin(z), math32.Cos(z)

	m[0] = cy * cz
	m[4] = cz*sx*sy - cx*sz
	m[8] = cx*cz*sy + sx*sz
	m[1] = cy * sz
	m[5] = cx*cz + sx*sy*sz
	m[9] = -cz*sx + cx*sy*sz
	m[2] = -sy
	m[6] = cy * sx
	m[10] = cx * cy
	return m
}

// PixelToClip returns the transform from pixel space (origin top-left, y
// down, x in [0,width], y in [0,height]) to clip space (x in [-1,1], y in
// [1,-1]). Scale is applied first, then the translation row is set; the
// order matters because both are field writes.
func PixelToClip(width, height float32) Matrix4 {
	return Identity().
		WithScale(2/width, -2/height, 1).
		WithTranslation(-1, 1, 0)
}

// Transform maps v through the matrix.
func (m Matrix4) Transform(v Float4) Float4 {
	return Float4(gpucore.ApplyMatrix(m, v))
}

// TransformPoint maps the 2D point (x, y, 0, 1) and returns its x and y.
func (m Matrix4) TransformPoint(x, y float32) (float32, float32) {
	out := m.Transform(Float4{x, y, 0, 1})
	return out[0], out[1]
}

// IsIdentity returns true if the matrix is the identity matrix.
func (m Matrix4) IsIdentity() bool {
	return m == Identity()
}

// Floats returns the 16 values as a slice.
func (m Matrix4) Floats() []float32 {
	out := make([]float32, 16)
	copy(out, m[:])
	return out
}

// Bytes returns the 64-byte little-endian uniform encoding.
func (m Matrix4) Bytes() []byte {
	buf := make([]byte, gpucore.UniformSize)
	gpucore.PutFloat32s(buf, m[:]...)
	return buf
}
