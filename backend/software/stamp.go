// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package software

import (
	"image"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/vector"
)

// stampSteps is the sub-pixel resolution of cached disc masks.
const stampSteps = 4

// maxCachedDiameter bounds the masks worth caching.
const maxCachedDiameter = 128

// maxPointReach is how far outside the target, in pixels, a disc centre
// may lie and still be drawn. Discs that cover the whole target are drawn
// regardless.
const maxPointReach = 1 << 16

// stampKey identifies a disc mask by diameter and sub-pixel phase, all in
// units of 1/stampSteps pixel.
type stampKey struct {
	diameter int32
	phaseX   int32
	phaseY   int32
}

// stampCache caches anti-aliased disc coverage masks.
type stampCache struct {
	cache *lru.Cache[stampKey, *image.Alpha]
}

func newStampCache(size int) *stampCache {
	if size < 1 {
		return &stampCache{}
	}
	c, err := lru.New[stampKey, *image.Alpha](size)
	if err != nil {
		return &stampCache{}
	}
	return &stampCache{cache: c}
}

// Len returns the number of cached masks.
func (s *stampCache) Len() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Len()
}

// stamp returns the coverage mask of a disc of the given diameter centred
// at (x, y) in pixel space, and the pixel offset where the mask origin
// lands.
func (s *stampCache) stamp(x, y, diameter float32) (*image.Alpha, image.Point) {
	left := float64(x - diameter/2)
	top := float64(y - diameter/2)
	ix, iy := math.Floor(left), math.Floor(top)

	key := stampKey{
		diameter: quantize(float64(diameter)),
		phaseX:   quantize(left - ix),
		phaseY:   quantize(top - iy),
	}
	origin := image.Pt(int(ix), int(iy))

	if s.cache != nil && key.diameter <= maxCachedDiameter*stampSteps {
		if m, ok := s.cache.Get(key); ok {
			return m, origin
		}
		m := renderDisc(key)
		s.cache.Add(key, m)
		return m, origin
	}
	return renderDisc(key), origin
}

func quantize(v float64) int32 {
	return int32(math.Round(v * stampSteps))
}

// renderDisc rasterizes the disc described by key into a new mask.
func renderDisc(key stampKey) *image.Alpha {
	d := float32(key.diameter) / stampSteps
	px := float32(key.phaseX) / stampSteps
	py := float32(key.phaseY) / stampSteps

	size := int(math.Ceil(float64(d+max(px, py)))) + 1
	mask := image.NewAlpha(image.Rect(0, 0, size, size))

	z := vector.NewRasterizer(size, size)
	circle(z, px+d/2, py+d/2, d/2)
	z.Draw(mask, mask.Rect, image.Opaque, image.Point{})
	return mask
}

// discCovers reports whether the disc of radius r at (x, y) fully covers
// every pixel of a w x h target.
func discCovers(x, y, r float32, w, h int) bool {
	inner := float64(r) - 1
	if inner <= 0 {
		return false
	}
	cx, cy := float64(x), float64(y)
	for _, c := range [4][2]float64{{0, 0}, {float64(w), 0}, {0, float64(h)}, {float64(w), float64(h)}} {
		if math.Hypot(c[0]-cx, c[1]-cy) > inner {
			return false
		}
	}
	return true
}

// discTouches reports whether the disc of radius r at (x, y) can reach a
// pixel of a w x h target.
func discTouches(x, y, r float32, w, h int) bool {
	fw, fh := float32(w), float32(h)
	if x < -maxPointReach || y < -maxPointReach || x > fw+maxPointReach || y > fh+maxPointReach {
		return false
	}
	return x+r > 0 && y+r > 0 && x-r < fw && y-r < fh
}

// clippedDisc rasterizes only the part of the disc that falls inside a
// w x h target. The caller guarantees discTouches.
func clippedDisc(x, y, r float32, w, h int) (*image.Alpha, image.Point) {
	x0 := max(int(math.Floor(float64(x-r))), 0)
	y0 := max(int(math.Floor(float64(y-r))), 0)
	x1 := min(int(math.Ceil(float64(x+r)))+1, w)
	y1 := min(int(math.Ceil(float64(y+r)))+1, h)

	mask := image.NewAlpha(image.Rect(0, 0, x1-x0, y1-y0))
	z := vector.NewRasterizer(x1-x0, y1-y0)
	circle(z, x-float32(x0), y-float32(y0), r)
	z.Draw(mask, mask.Rect, image.Opaque, image.Point{})
	return mask, image.Pt(x0, y0)
}
