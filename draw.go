// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ink

import (
	"fmt"

	"github.com/gogpu/ink/gpucore"
)

// DrawPoints encodes one render pass that draws points with pipeline. It
// opens a command buffer if needed and leaves it open; call Commit to
// submit. An empty slice is not an error and encodes nothing.
func (rt *RenderTarget) DrawPoints(pipeline gpucore.RenderPipeline, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	return rt.draw(pipeline, gpucore.PrimitiveTypePoint, EncodePoints(points), len(points), nil, nil)
}

// DrawVertices encodes one render pass that draws vertices as a triangle
// list, tinted by color and textured with brush. A nil brush draws the
// tint as a solid color.
func (rt *RenderTarget) DrawVertices(pipeline gpucore.RenderPipeline, vertices []Vertex, color ColorBuffer, brush gpucore.Texture) error {
	if len(vertices) == 0 {
		return nil
	}
	return rt.draw(pipeline, gpucore.PrimitiveTypeTriangle, EncodeVertices(vertices), len(vertices), &color, brush)
}

func (rt *RenderTarget) draw(pipeline gpucore.RenderPipeline, kind gpucore.PrimitiveType, geometry []byte, count int, color *ColorBuffer, brush gpucore.Texture) error {
	rt.PrepareForDraw()
	enc, err := rt.MakeEncoder()
	if err != nil {
		return err
	}

	enc.SetRenderPipeline(pipeline)
	enc.SetVertexBytes(geometry, gpucore.VertexIndex)
	if rt.uniforms != nil {
		enc.SetVertexBuffer(rt.uniforms, 0, gpucore.UniformIndex)
	} else {
		enc.SetVertexBytes(rt.transform.Bytes(), gpucore.UniformIndex)
	}
	if color != nil {
		enc.SetFragmentBytes(color.Bytes(), gpucore.ColorIndex)
	}
	if brush != nil {
		enc.SetFragmentTexture(brush, gpucore.BrushTextureIndex)
	}
	enc.DrawPrimitives(kind, 0, count)

	if err := enc.EndEncoding(); err != nil {
		return fmt.Errorf("ink: draw %v: %w", kind, err)
	}
	return nil
}
