// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/gogpu/ink/backend"
	"github.com/gogpu/ink/gpucore"
)

// execute runs every pass of cb. It is called on the executor goroutine.
func (d *Device) execute(cb *CommandBuffer) error {
	for _, p := range cb.passes {
		if err := d.executePass(p); err != nil {
			backend.Logger().Warn("software: render pass failed", "pass", p.label, "err", err)
			return err
		}
	}
	return nil
}

func (d *Device) executePass(p *renderPass) error {
	t := p.target
	t.mu.Lock()
	defer t.mu.Unlock()

	var saved []uint8
	if p.store == gpucore.StoreActionDontCare {
		saved = append([]uint8(nil), t.img.Pix...)
	}

	if p.load == gpucore.LoadActionClear {
		draw.Draw(t.img, t.img.Rect, image.NewUniform(clearColor(p.clear)), image.Point{}, draw.Src)
	}

	for i := range p.draws {
		dc := &p.draws[i]
		switch dc.kind {
		case gpucore.PrimitiveTypePoint:
			d.drawPoints(t.img, dc)
		case gpucore.PrimitiveTypeTriangle, gpucore.PrimitiveTypeTriangleStrip:
			drawTriangles(t.img, dc, brushImage(dc.brush, t))
		default:
			return fmt.Errorf("software: unsupported primitive %v", dc.kind)
		}
	}

	if saved != nil {
		copy(t.img.Pix, saved)
	}
	return nil
}

// brushImage returns the pixels to sample for brush. The target lock is
// already held, so a brush that is the target itself is copied instead of
// being locked again.
func brushImage(brush, target *Texture) *image.RGBA {
	if brush == nil {
		return nil
	}
	if brush == target {
		out := image.NewRGBA(target.img.Rect)
		copy(out.Pix, target.img.Pix)
		return out
	}
	return brush.snapshot()
}

// clearColor converts a straight-alpha clear color.
func clearColor(c gpucore.ClearColor) color.NRGBA {
	return color.NRGBA{R: unorm8(c.R), G: unorm8(c.G), B: unorm8(c.B), A: unorm8(c.A)}
}

func unorm8(v float64) uint8 {
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 1:
		return 255
	}
	return uint8(math.Round(v * 255))
}

// toPixel maps a clip-space position to pixel space of a w x h target.
func toPixel(clip [4]float32, w, h int) (float32, float32) {
	x, y := clip[0], clip[1]
	if cw := clip[3]; cw != 0 && cw != 1 {
		x /= cw
		y /= cw
	}
	return (x + 1) / 2 * float32(w), (1 - y) / 2 * float32(h)
}

// drawPoints stamps one disc per Point record. Records with a non-finite
// position or size are skipped.
func (d *Device) drawPoints(dst *image.RGBA, dc *drawCall) {
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	for i := 0; i < dc.count; i++ {
		p := gpucore.DecodePoint(dc.geometry[i*gpucore.PointStride:])
		if !(p.Size > 0) || !finite(p.Size) {
			continue
		}
		x, y := toPixel(gpucore.ApplyMatrix(dc.matrix, p.Position), w, h)
		if !finite(x) || !finite(y) {
			continue
		}
		c := color.NRGBA{
			R: unorm8(float64(p.Color[0])),
			G: unorm8(float64(p.Color[1])),
			B: unorm8(float64(p.Color[2])),
			A: unorm8(float64(p.Color[3])),
		}
		if c.A == 0 {
			continue
		}
		src := image.NewUniform(c)
		r := p.Size / 2

		switch {
		case discCovers(x, y, r, w, h):
			draw.Draw(dst, dst.Rect, src, image.Point{}, draw.Over)
		case !discTouches(x, y, r, w, h):
		case p.Size > maxCachedDiameter:
			mask, origin := clippedDisc(x, y, r, w, h)
			draw.DrawMask(dst, mask.Rect.Add(origin), src, image.Point{}, mask, mask.Rect.Min, draw.Over)
		default:
			mask, origin := d.stamps.stamp(x, y, p.Size)
			draw.DrawMask(dst, mask.Rect.Add(origin), src, image.Point{}, mask, mask.Rect.Min, draw.Over)
		}
	}
}

func finite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

// circle appends a closed circle to z.
func circle(z *vector.Rasterizer, cx, cy, r float32) {
	k := r * kappa
	z.MoveTo(cx+r, cy)
	z.CubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
	z.CubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
	z.CubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
	z.CubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	z.ClosePath()
}

// drawTriangles rasterizes a triangle list or strip.
func drawTriangles(dst *image.RGBA, dc *drawCall, brush *image.RGBA) {
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	verts := make([]triVertex, dc.count)
	for i := range verts {
		v := gpucore.DecodeVertex(dc.geometry[i*gpucore.VertexStride:])
		x, y := toPixel(gpucore.ApplyMatrix(dc.matrix, v.Position), w, h)
		verts[i] = triVertex{x: x, y: y, u: v.TexCoord[0], v: v.TexCoord[1]}
	}

	switch dc.kind {
	case gpucore.PrimitiveTypeTriangle:
		for i := 0; i+2 < len(verts); i += 3 {
			fillTriangle(dst, [3]triVertex{verts[i], verts[i+1], verts[i+2]}, dc.tint, brush)
		}
	case gpucore.PrimitiveTypeTriangleStrip:
		for i := 0; i+2 < len(verts); i++ {
			fillTriangle(dst, [3]triVertex{verts[i], verts[i+1], verts[i+2]}, dc.tint, brush)
		}
	}
}

type triVertex struct {
	x, y float32
	u, v float32
}

func fillTriangle(dst *image.RGBA, tri [3]triVertex, tint [4]float32, brush *image.RGBA) {
	area := (tri[1].x-tri[0].x)*(tri[2].y-tri[0].y) - (tri[2].x-tri[0].x)*(tri[1].y-tri[0].y)
	if area == 0 || math.IsNaN(float64(area)) {
		return
	}

	minX, minY := tri[0].x, tri[0].y
	maxX, maxY := minX, minY
	for _, v := range tri[1:] {
		minX, maxX = min(minX, v.x), max(maxX, v.x)
		minY, maxY = min(minY, v.y), max(maxY, v.y)
	}
	bounds := image.Rect(
		int(math.Floor(float64(minX))), int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY))),
	).Intersect(dst.Rect)
	if bounds.Empty() {
		return
	}

	z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	z.DrawOp = draw.Over
	ox, oy := float32(bounds.Min.X), float32(bounds.Min.Y)
	z.MoveTo(tri[0].x-ox, tri[0].y-oy)
	z.LineTo(tri[1].x-ox, tri[1].y-oy)
	z.LineTo(tri[2].x-ox, tri[2].y-oy)
	z.ClosePath()

	var src image.Image
	if brush == nil {
		src = image.NewUniform(premultiply(tint, 1))
	} else {
		src = &triangleShader{tri: tri, area: area, tint: tint, brush: brush, bounds: bounds}
	}
	z.Draw(dst, bounds, src, bounds.Min)
}

// premultiply returns tint scaled by coverage as premultiplied color.
func premultiply(tint [4]float32, scale float32) color.RGBA {
	a := clamp01(tint[3]) * scale
	return color.RGBA{
		R: uint8(clamp01(tint[0])*a*255 + 0.5),
		G: uint8(clamp01(tint[1])*a*255 + 0.5),
		B: uint8(clamp01(tint[2])*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	}
}

func clamp01(v float32) float32 {
	switch {
	case v < 0 || v != v:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// triangleShader is an image.Image that shades a triangle by sampling
// the brush at interpolated texture coordinates and multiplying by the
// tint. Sampling is nearest neighbour with clamped coordinates.
type triangleShader struct {
	tri    [3]triVertex
	area   float32
	tint   [4]float32
	brush  *image.RGBA
	bounds image.Rectangle
}

func (s *triangleShader) ColorModel() color.Model { return color.RGBAModel }

func (s *triangleShader) Bounds() image.Rectangle { return s.bounds }

func (s *triangleShader) At(x, y int) color.Color {
	px, py := float32(x)+0.5, float32(y)+0.5
	t := &s.tri
	w0 := ((t[1].x-px)*(t[2].y-py) - (t[2].x-px)*(t[1].y-py)) / s.area
	w1 := ((t[2].x-px)*(t[0].y-py) - (t[0].x-px)*(t[2].y-py)) / s.area
	w2 := 1 - w0 - w1
	u := w0*t[0].u + w1*t[1].u + w2*t[2].u
	v := w0*t[0].v + w1*t[1].v + w2*t[2].v

	b := s.brush.Rect
	sx := b.Min.X + clampInt(int(u*float32(b.Dx())), 0, b.Dx()-1)
	sy := b.Min.Y + clampInt(int(v*float32(b.Dy())), 0, b.Dy()-1)
	c := s.brush.RGBAAt(sx, sy)

	a := clamp01(s.tint[3])
	return color.RGBA{
		R: uint8(float32(c.R)*clamp01(s.tint[0])*a + 0.5),
		G: uint8(float32(c.G)*clamp01(s.tint[1])*a + 0.5),
		B: uint8(float32(c.B)*clamp01(s.tint[2])*a + 0.5),
		A: uint8(float32(c.A)*a + 0.5),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// copyImage copies src into dst at the origin, clipped to dst.
func copyImage(dst *image.RGBA, src image.Image) {
	draw.Draw(dst, dst.Rect, src, src.Bounds().Min, draw.Src)
}
