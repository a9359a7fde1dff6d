// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ink

// DisplayTransform returns the transform that presents the texture in a
// view of viewWidth by viewHeight points.
//
// Texture pixel p lands at view pixel p*Zoom - ContentOffset, where the
// view is Scale times its size in points. Only scale and translation
// fields are written, so the result can be uploaded in place of the
// render target's own transform when drawing the texture as a quad.
func (rt *RenderTarget) DisplayTransform(viewWidth, viewHeight float64) Matrix4 {
	scale := rt.Scale
	if scale <= 0 {
		scale = 1
	}
	zoom := rt.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	w := viewWidth * scale
	h := viewHeight * scale
	if w <= 0 || h <= 0 {
		return Identity()
	}

	return Identity().
		WithScale(float32(2*zoom/w), float32(-2*zoom/h), 1).
		WithTranslation(
			float32(-2*rt.ContentOffset.X/w-1),
			float32(2*rt.ContentOffset.Y/h+1),
			0)
}

// DisplayQuad returns the two triangles that cover the whole texture in
// texture pixel space, with texture coordinates spanning [0, 1]. Draw it
// with DisplayTransform to present the target.
func (rt *RenderTarget) DisplayQuad() []Vertex {
	w, h := float64(rt.width), float64(rt.height)
	tl := NewVertex(V2(0, 0), V2(0, 0))
	tr := NewVertex(V2(w, 0), V2(1, 0))
	bl := NewVertex(V2(0, h), V2(0, 1))
	br := NewVertex(V2(w, h), V2(1, 1))
	return []Vertex{tl, tr, bl, tr, br, bl}
}
