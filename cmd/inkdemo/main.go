// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command inkdemo replays a scene file onto an ink render target and
// saves the accumulated texture as a PNG.
//
// Usage:
//
//	inkdemo -scene strokes.yaml -output strokes.png [-backend software]
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"golang.org/x/image/draw"

	"github.com/gogpu/ink"
	"github.com/gogpu/ink/backend"
	_ "github.com/gogpu/ink/backend/software"
	_ "github.com/gogpu/ink/backend/wgpu"
	"github.com/gogpu/ink/gpucore"
)

func main() {
	var (
		scenePath = flag.String("scene", "", "scene file (.yaml, .yml or .toml)")
		output    = flag.String("output", "ink.png", "output file")
		name      = flag.String("backend", "", "backend name (default: best available)")
		timeout   = flag.Duration("timeout", 10*time.Second, "GPU wait timeout")
		verbose   = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		ink.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}
	if *scenePath == "" {
		log.Fatalf("missing -scene (available backends: %v)", backend.Available())
	}

	scene, err := LoadScene(*scenePath)
	if err != nil {
		log.Fatalf("Failed to load scene: %v", err)
	}

	dev, used, err := openDevice(*name)
	if err != nil {
		log.Fatalf("Failed to open device: %v", err)
	}
	if c, ok := dev.(io.Closer); ok {
		defer c.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	img, err := render(ctx, dev, scene)
	if err != nil {
		log.Fatalf("Failed to render: %v", err)
	}
	if err := savePNG(*output, img); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	log.Printf("Scene saved to %s (%dx%d, %d frames, %s backend)\n",
		*output, scene.Width, scene.Height, len(scene.Frames), used)
}

func openDevice(name string) (gpucore.Device, string, error) {
	if name == "" {
		return backend.OpenDefault()
	}
	dev, err := backend.Open(name)
	return dev, name, err
}

// render replays every frame of scene, waiting for each one, and reads
// the texture back.
func render(ctx context.Context, dev gpucore.Device, scene *Scene) (*image.RGBA, error) {
	rt := ink.NewRenderTarget(scene.Width, scene.Height, dev, ink.WithLabel("inkdemo"))
	defer rt.Dispose()
	if err := rt.Err(); err != nil {
		return nil, err
	}

	points, err := dev.MakeRenderPipeline(&gpucore.RenderPipelineDescriptor{
		Label:       "inkdemo-points",
		Layout:      gpucore.VertexLayoutPoint,
		ColorFormat: ink.TargetFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("point pipeline: %w", err)
	}
	quads, err := dev.MakeRenderPipeline(&gpucore.RenderPipelineDescriptor{
		Label:       "inkdemo-quads",
		Layout:      gpucore.VertexLayoutVertex,
		ColorFormat: ink.TargetFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("quad pipeline: %w", err)
	}

	var brush gpucore.Texture
	if scene.Brush != "" {
		brush, err = loadBrush(dev, scene.Brush)
		if err != nil {
			return nil, err
		}
		defer brush.Release()
	}

	for i, f := range scene.Frames {
		if f.Clear {
			rt.Clear()
		}
		if err := drawFrame(rt, f, points, quads, brush); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		cb := rt.Commit()
		if cb == nil {
			continue
		}
		if err := cb.Wait(ctx); err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		ink.Logger().Debug("inkdemo: frame done", "frame", i, "strokes", len(f.Strokes), "quads", len(f.Quads))
	}

	return dev.ReadPixels(ctx, rt.Texture())
}

func drawFrame(rt *ink.RenderTarget, f Frame, points, quads gpucore.RenderPipeline, brush gpucore.Texture) error {
	for _, st := range f.Strokes {
		if err := rt.DrawPoints(points, st.Stamps()); err != nil {
			return err
		}
	}
	for _, q := range f.Quads {
		verts := ink.QuadVertices(ink.V2(q.X, q.Y), q.Size)
		if err := rt.DrawVertices(quads, verts, q.Tint(), brush); err != nil {
			return err
		}
	}
	return nil
}

// loadBrush decodes an image file into a shader-readable texture.
func loadBrush(dev gpucore.Device, path string) (gpucore.Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode brush %s: %w", path, err)
	}

	// Brush samples are premultiplied.
	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)

	tex, err := dev.MakeTexture(&gpucore.TextureDescriptor{
		Label:  "inkdemo-brush",
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: gpucore.TextureFormatRGBA8Unorm,
		Usage:  gpucore.TextureUsageShaderRead | gpucore.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("brush texture: %w", err)
	}
	up, ok := tex.(gpucore.TextureUploader)
	if !ok {
		tex.Release()
		return nil, fmt.Errorf("brush texture: %s device cannot upload pixels", dev.Name())
	}
	if err := up.Upload(rgba); err != nil {
		tex.Release()
		return nil, fmt.Errorf("brush upload: %w", err)
	}
	return tex, nil
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
