// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/gogpu/naga"
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

func TestShadersCompile(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"point", pointShaderSource},
		{"vertex", vertexShaderSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spirv, err := naga.Compile(tt.source)
			if err != nil {
				t.Fatalf("compile %s shader: %v", tt.name, err)
			}
			if len(spirv) < 20 || len(spirv)%4 != 0 {
				t.Fatalf("%s shader: SPIR-V has %d bytes", tt.name, len(spirv))
			}
			if magic := binary.LittleEndian.Uint32(spirv); magic != spirvMagic {
				t.Errorf("%s shader: magic %#x, want %#x", tt.name, magic, spirvMagic)
			}
		})
	}
}

func TestShaderInterfaces(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		required []string
	}{
		{
			name:   "point",
			source: pointShaderSource,
			required: []string{
				"@vertex", "@fragment", "fn vs_main", "fn fs_main",
				"@group(0) @binding(0)",
				"@location(0) position: vec4<f32>",
				"@location(1) color: vec4<f32>",
				"@location(2) corner: vec2<f32>",
				"@location(3) size: f32",
				"discard",
			},
		},
		{
			name:   "vertex",
			source: vertexShaderSource,
			required: []string{
				"@vertex", "@fragment", "fn vs_main", "fn fs_main",
				"@group(0) @binding(1) var brush: texture_2d<f32>",
				"@group(0) @binding(2) var brush_sampler: sampler",
				"@location(0) position: vec4<f32>",
				"@location(1) tex_coord: vec2<f32>",
				"textureSample",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, want := range tt.required {
				if !strings.Contains(tt.source, want) {
					t.Errorf("%s shader missing %q", tt.name, want)
				}
			}
		})
	}
}
