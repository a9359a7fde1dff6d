// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ink

import (
	"image/color"
	"math"
)

// RGBA is a straight-alpha color with components in [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// RGB creates an opaque color.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// RGBAf creates a color from straight-alpha components.
func RGBAf(r, g, b, a float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: a}
}

// FromColor converts a standard color.Color to RGBA.
func FromColor(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA{
		R: float64(n.R) / 255,
		G: float64(n.G) / 255,
		B: float64(n.B) / 255,
		A: float64(n.A) / 255,
	}
}

// Color converts to color.NRGBA.
func (c RGBA) Color() color.Color {
	return color.NRGBA{
		R: to8(c.R),
		G: to8(c.G),
		B: to8(c.B),
		A: to8(c.A),
	}
}

// Float4 returns the color as a four-component vector, clamped to [0, 1].
func (c RGBA) Float4() Float4 {
	return Float4{
		float32(clamp01(c.R)),
		float32(clamp01(c.G)),
		float32(clamp01(c.B)),
		float32(clamp01(c.A)),
	}
}

// WithAlpha returns c with a different alpha.
func (c RGBA) WithAlpha(a float64) RGBA {
	c.A = a
	return c
}

// Hex creates a color from a hex string.
// Supports "RGB", "RGBA", "RRGGBB" and "RRGGBBAA", with or without '#'.
// Malformed input yields opaque black.
func Hex(hex string) RGBA {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	var v [4]uint32
	v[3] = 255
	switch len(hex) {
	case 3, 4:
		for i := range hex {
			d, ok := hexDigit(hex[i])
			if !ok {
				return RGB(0, 0, 0)
			}
			v[i] = d * 17
		}
	case 6, 8:
		for i := 0; i < len(hex); i += 2 {
			hi, ok1 := hexDigit(hex[i])
			lo, ok2 := hexDigit(hex[i+1])
			if !ok1 || !ok2 {
				return RGB(0, 0, 0)
			}
			v[i/2] = hi<<4 | lo
		}
	default:
		return RGB(0, 0, 0)
	}

	return RGBA{
		R: float64(v[0]) / 255,
		G: float64(v[1]) / 255,
		B: float64(v[2]) / 255,
		A: float64(v[3]) / 255,
	}
}

func hexDigit(c byte) (uint32, bool) {
	switch {
	case '0' <= c && c <= '9':
		return uint32(c - '0'), true
	case 'a' <= c && c <= 'f':
		return uint32(c-'a') + 10, true
	case 'A' <= c && c <= 'F':
		return uint32(c-'A') + 10, true
	}
	return 0, false
}

// HSL creates an opaque color from hue in degrees, saturation and
// lightness in [0, 1]. Hue wraps, so -120 and 240 are the same.
func HSL(h, s, l float64) RGBA {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	a := s * math.Min(l, 1-l)
	channel := func(n float64) float64 {
		k := math.Mod(n+h/30, 12)
		return l - a*math.Max(-1, math.Min(math.Min(k-3, 9-k), 1))
	}
	return RGB(channel(0), channel(8), channel(4))
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func to8(x float64) uint8 {
	return uint8(math.Round(clamp01(x) * 255))
}

// Common colors.
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(1, 1, 1)
	Red         = RGB(1, 0, 0)
	Green       = RGB(0, 1, 0)
	Blue        = RGB(0, 0, 1)
	Transparent = RGBAf(0, 0, 0, 0)
)
