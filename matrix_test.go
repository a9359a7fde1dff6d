// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ink

import (
	"encoding/binary"
	"math"
	"testing"
)

const eps = 1e-5

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < eps
}

func TestIdentity(t *testing.T) {
	m := Identity()
	for i, v := range m {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if v != want {
			t.Errorf("Identity()[%d] = %v, want %v", i, v, want)
		}
	}
	if !m.IsIdentity() {
		t.Error("Identity().IsIdentity() = false")
	}

	// Identity returns a fresh value each time.
	m[3] = 9
	if Identity()[3] != 0 {
		t.Error("modifying a copy leaked into Identity()")
	}
}

func TestRotationZeroIsIdentity(t *testing.T) {
	if m := Identity().WithRotation(0, 0, 0); m != Identity() {
		t.Errorf("WithRotation(0,0,0) = %v, want identity", m)
	}
}

func TestWithRotation(t *testing.T) {
	m := Identity().WithRotation(0, 0, math.Pi/2)
	x, y := m.TransformPoint(1, 0)
	if !near(x, 0) || !near(y, 1) {
		t.Errorf("z rotation by pi/2 maps (1,0) to (%v,%v), want (0,1)", x, y)
	}

	m = Identity().WithRotation(math.Pi, 0, 0)
	out := m.Transform(Float4{0, 1, 0, 1})
	if !near(out[1], -1) || !near(out[2], 0) {
		t.Errorf("x rotation by pi maps (0,1,0) to %v, want (0,-1,0)", out)
	}
}

func TestWithScaleAndTranslationOverwrite(t *testing.T) {
	m := Identity().WithScale(2, 3, 4).WithScale(5, 6, 7)
	if m[0] != 5 || m[5] != 6 || m[10] != 7 {
		t.Errorf("second WithScale must overwrite: %v", m)
	}

	m = Identity().WithTranslation(1, 2, 3).WithTranslation(4, 5, 6)
	if m[12] != 4 || m[13] != 5 || m[14] != 6 {
		t.Errorf("second WithTranslation must overwrite: %v", m)
	}

	// Receivers are values.
	base := Identity()
	_ = base.WithScale(9, 9, 9)
	if !base.IsIdentity() {
		t.Error("WithScale mutated its receiver")
	}
}

func TestPixelToClip(t *testing.T) {
	sizes := []struct{ w, h float32 }{
		{100, 100},
		{1, 1},
		{640, 480},
		{3, 7919},
	}
	for _, s := range sizes {
		m := PixelToClip(s.w, s.h)
		tests := []struct {
			px, py float32
			cx, cy float32
		}{
			{0, 0, -1, 1},
			{s.w, s.h, 1, -1},
			{s.w / 2, s.h / 2, 0, 0},
			{s.w, 0, 1, 1},
			{0, s.h, -1, -1},
		}
		for _, tt := range tests {
			x, y := m.TransformPoint(tt.px, tt.py)
			if !near(x, tt.cx) || !near(y, tt.cy) {
				t.Errorf("PixelToClip(%v,%v) maps (%v,%v) to (%v,%v), want (%v,%v)",
					s.w, s.h, tt.px, tt.py, x, y, tt.cx, tt.cy)
			}
		}
	}
}

func TestPixelToClipFields(t *testing.T) {
	m := PixelToClip(200, 50)
	want := Matrix4{
		0.01, 0, 0, 0,
		0, -0.04, 0, 0,
		0, 0, 1, 0,
		-1, 1, 0, 1,
	}
	for i := range want {
		if !near(m[i], want[i]) {
			t.Errorf("m[%d] = %v, want %v", i, m[i], want[i])
		}
	}
}

func TestMatrixBytes(t *testing.T) {
	m := PixelToClip(4, 8)
	b := m.Bytes()
	if len(b) != 64 {
		t.Fatalf("len(Bytes()) = %d, want 64", len(b))
	}
	for i := range m {
		got := math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
		if got != m[i] {
			t.Errorf("float %d = %v, want %v", i, got, m[i])
		}
	}

	f := m.Floats()
	f[0] = 42
	if m[0] == 42 {
		t.Error("Floats() must return a copy")
	}
}
