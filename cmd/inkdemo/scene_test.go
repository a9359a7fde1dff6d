// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/ink/backend/software"
)

func TestLoadSceneYAML(t *testing.T) {
	s, err := LoadScene(filepath.Join("testdata", "strokes.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 256, s.Width)
	assert.Equal(t, 256, s.Height)
	require.Len(t, s.Frames, 2)
	require.Len(t, s.Frames[0].Strokes, 2)
	assert.Equal(t, 12.0, s.Frames[0].Strokes[0].Size)
	assert.Equal(t, []float64{224, 224}, s.Frames[0].Strokes[0].Points[1])
	require.Len(t, s.Frames[1].Quads, 1)
	assert.Equal(t, 48.0, s.Frames[1].Quads[0].Size)
}

func TestLoadSceneTOML(t *testing.T) {
	s, err := LoadScene(filepath.Join("testdata", "strokes.toml"))
	require.NoError(t, err)
	assert.Equal(t, 128, s.Width)
	require.Len(t, s.Frames, 1)
	assert.True(t, s.Frames[0].Clear)
	require.Len(t, s.Frames[0].Strokes, 1)
	assert.Equal(t, "#00ff00", s.Frames[0].Strokes[0].Color)
	require.Len(t, s.Frames[0].Quads, 1)
}

func TestLoadSceneBrushPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yml")
	require.NoError(t, os.WriteFile(path, []byte("width: 4\nheight: 4\nbrush: dot.png\n"), 0o600))

	s, err := LoadScene(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dot.png"), s.Brush)
}

func TestParseSceneErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		ext  string
	}{
		{"unknown extension", "width: 1", ".json"},
		{"zero size", "width: 0\nheight: 4\n", ".yaml"},
		{"unknown field", "width: 4\nheight: 4\ncolour: red\n", ".yaml"},
		{"short point", "width: 4\nheight: 4\nframes:\n  - strokes:\n      - points: [[1]]\n", ".yaml"},
		{"bad toml", "width = ", ".toml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScene([]byte(tt.data), tt.ext)
			assert.Error(t, err)
		})
	}

	_, err := ParseScene(nil, ".ini")
	assert.ErrorIs(t, err, errSceneFormat)
}

func TestStrokeStamps(t *testing.T) {
	st := Stroke{Color: "#ff0000", Size: 8, Points: [][]float64{{0, 0}, {10, 0}}}
	stamps := st.Stamps()
	// Default spacing is size/4, so 10 pixels take 5 steps after the start.
	require.Len(t, stamps, 6)
	assert.Equal(t, float32(0), stamps[0].Position[0])
	assert.Equal(t, float32(10), stamps[5].Position[0])
	assert.Equal(t, float32(8), stamps[3].Size)
	assert.Equal(t, float32(1), stamps[3].Color[0])

	assert.Empty(t, Stroke{Size: 0, Points: [][]float64{{1, 1}}}.Stamps())
	assert.Empty(t, Stroke{Size: 4}.Stamps())
	assert.Len(t, Stroke{Size: 4, Points: [][]float64{{1, 1}}}.Stamps(), 1)
}

func TestQuadTint(t *testing.T) {
	assert.Equal(t, [4]float32{1, 1, 1, 1}, [4]float32(Quad{}.Tint().Color))
	assert.Equal(t, [4]float32{0, 0, 1, 1}, [4]float32(Quad{Color: "#0000ff"}.Tint().Color))
}

func TestRenderSoftware(t *testing.T) {
	s, err := ParseScene([]byte(`
width: 32
height: 32
frames:
  - strokes:
      - color: "#ff0000"
        size: 6
        points: [[4, 16], [28, 16]]
  - quads:
      - x: 16
        y: 4
        size: 4
        color: "#0000ff"
`), ".yaml")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	img, err := render(ctx, software.New(), s)
	require.NoError(t, err)

	// The stroke from the first frame survives the second one.
	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(16, 16))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, img.RGBAAt(16, 4))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(16, 28))
}

func TestRenderBrush(t *testing.T) {
	dir := t.TempDir()
	brushPath := filepath.Join(dir, "brush.png")
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	require.NoError(t, savePNG(brushPath, src))

	s := &Scene{
		Width:  8,
		Height: 8,
		Brush:  brushPath,
		Frames: []Frame{{Quads: []Quad{{X: 4, Y: 4, Size: 8, Color: "#00ff00"}}}},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	img, err := render(ctx, software.New(), s)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{G: 255, A: 255}, img.RGBAAt(4, 4))

	s.Brush = filepath.Join(dir, "missing.png")
	_, err = render(ctx, software.New(), s)
	assert.Error(t, err)
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(1, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	require.NoError(t, savePNG(path, img))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	got, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), got.Bounds())
	r, g, b, a := got.At(1, 1).RGBA()
	assert.Equal(t, []uint32{10, 20, 30, 255}, []uint32{r >> 8, g >> 8, b >> 8, a >> 8})
}
