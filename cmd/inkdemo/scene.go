// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/ink"
)

// Scene is a list of frames replayed onto one render target.
type Scene struct {
	Width  int     `yaml:"width" toml:"width"`
	Height int     `yaml:"height" toml:"height"`
	Brush  string  `yaml:"brush" toml:"brush"`
	Frames []Frame `yaml:"frames" toml:"frames"`
}

// Frame is encoded into one command buffer and committed.
type Frame struct {
	Clear   bool     `yaml:"clear" toml:"clear"`
	Strokes []Stroke `yaml:"strokes" toml:"strokes"`
	Quads   []Quad   `yaml:"quads" toml:"quads"`
}

// Stroke is a polyline stamped with round points.
type Stroke struct {
	Color   string      `yaml:"color" toml:"color"`
	Size    float64     `yaml:"size" toml:"size"`
	Spacing float64     `yaml:"spacing" toml:"spacing"`
	Points  [][]float64 `yaml:"points" toml:"points"`
}

// Quad is a square drawn with the brush texture.
type Quad struct {
	X     float64 `yaml:"x" toml:"x"`
	Y     float64 `yaml:"y" toml:"y"`
	Size  float64 `yaml:"size" toml:"size"`
	Color string  `yaml:"color" toml:"color"`
}

var errSceneFormat = errors.New("inkdemo: unknown scene format")

// LoadScene reads a scene file. The format follows the extension:
// .yaml, .yml or .toml.
func LoadScene(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := ParseScene(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Brush != "" && !filepath.IsAbs(s.Brush) {
		s.Brush = filepath.Join(filepath.Dir(path), s.Brush)
	}
	return s, nil
}

// ParseScene decodes and validates a scene.
func ParseScene(data []byte, ext string) (*Scene, error) {
	var s Scene
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&s); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", errSceneFormat, ext)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scene) validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("scene size %dx%d must be positive", s.Width, s.Height)
	}
	for i, f := range s.Frames {
		for j, st := range f.Strokes {
			for k, p := range st.Points {
				if len(p) != 2 {
					return fmt.Errorf("frame %d stroke %d point %d: want [x, y], got %d values", i, j, k, len(p))
				}
			}
		}
	}
	return nil
}

// Stamps returns the points that cover the stroke, spaced evenly along
// each segment. Spacing defaults to a quarter of the size.
func (st Stroke) Stamps() []ink.Point {
	if len(st.Points) == 0 || st.Size <= 0 {
		return nil
	}
	c := ink.Hex(st.Color)
	spacing := st.Spacing
	if spacing <= 0 {
		spacing = st.Size / 4
	}

	first := st.Points[0]
	out := []ink.Point{ink.NewPoint(first[0], first[1], c, st.Size)}
	for i := 1; i < len(st.Points); i++ {
		a, b := st.Points[i-1], st.Points[i]
		dx, dy := b[0]-a[0], b[1]-a[1]
		n := int(math.Ceil(math.Hypot(dx, dy) / spacing))
		for k := 1; k <= n; k++ {
			t := float64(k) / float64(n)
			out = append(out, ink.NewPoint(a[0]+dx*t, a[1]+dy*t, c, st.Size))
		}
	}
	return out
}

// Tint returns the quad color, white when unset.
func (q Quad) Tint() ink.ColorBuffer {
	c := ink.White
	if q.Color != "" {
		c = ink.Hex(q.Color)
	}
	f := c.Float4()
	return ink.NewColorBuffer(f[0], f[1], f[2], f[3])
}
