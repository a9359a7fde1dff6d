// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ink

import "testing"

func TestTargetOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []TargetOption
		want targetOptions
	}{
		{
			name: "defaults",
			want: targetOptions{label: "ink-render-target", scale: 1, zoom: 1},
		},
		{
			name: "all set",
			opts: []TargetOption{WithLabel("canvas"), WithScale(2), WithZoom(3), WithContentOffset(V2(4, 5))},
			want: targetOptions{label: "canvas", scale: 2, zoom: 3, contentOffset: V2(4, 5)},
		},
		{
			name: "invalid values ignored",
			opts: []TargetOption{WithLabel(""), WithScale(0), WithZoom(-1)},
			want: targetOptions{label: "ink-render-target", scale: 1, zoom: 1},
		},
		{
			name: "last wins",
			opts: []TargetOption{WithZoom(2), WithZoom(4)},
			want: targetOptions{label: "ink-render-target", scale: 1, zoom: 4},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := defaultTargetOptions()
			for _, opt := range tt.opts {
				opt(&o)
			}
			if o != tt.want {
				t.Errorf("options = %+v, want %+v", o, tt.want)
			}
		})
	}
}

func TestNewRenderTargetAppliesOptions(t *testing.T) {
	rt := NewRenderTarget(8, 8, nil, WithLabel("opts"), WithScale(2), WithZoom(1.5), WithContentOffset(V2(1, 2)))
	if rt.Label() != "opts" || rt.Scale != 2 || rt.Zoom != 1.5 || rt.ContentOffset != V2(1, 2) {
		t.Errorf("options not applied: label=%q scale=%v zoom=%v offset=%v",
			rt.Label(), rt.Scale, rt.Zoom, rt.ContentOffset)
	}
	if rt.Descriptor().Label != "opts" {
		t.Errorf("descriptor label = %q, want opts", rt.Descriptor().Label)
	}
}
