// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package ink

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/gogpu/ink/backend/software"
	"github.com/gogpu/ink/gpucore"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

type fixture struct {
	dev    *software.Device
	points gpucore.RenderPipeline
	quads  gpucore.RenderPipeline
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{dev: software.New()}
	var err error
	f.points, err = f.dev.MakeRenderPipeline(&gpucore.RenderPipelineDescriptor{
		Layout:      gpucore.VertexLayoutPoint,
		ColorFormat: TargetFormat,
	})
	if err != nil {
		t.Fatalf("point pipeline: %v", err)
	}
	f.quads, err = f.dev.MakeRenderPipeline(&gpucore.RenderPipelineDescriptor{
		Layout:      gpucore.VertexLayoutVertex,
		ColorFormat: TargetFormat,
	})
	if err != nil {
		t.Fatalf("vertex pipeline: %v", err)
	}
	return f
}

// commitAndRead commits rt, waits for the GPU and reads the texture back.
func (f *fixture) commitAndRead(t *testing.T, rt *RenderTarget) *image.RGBA {
	t.Helper()
	ctx := testContext(t)
	if cb := rt.Commit(); cb != nil {
		if err := cb.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	img, err := f.dev.ReadPixels(ctx, rt.Texture())
	if err != nil {
		t.Fatalf("ReadPixels: %v", err)
	}
	return img
}

func TestDrawPointEndToEnd(t *testing.T) {
	f := newFixture(t)
	rt := NewRenderTarget(100, 100, f.dev)
	defer rt.Dispose()

	rt.Clear()
	rt.PrepareForDraw()
	enc, err := rt.MakeEncoder()
	if err != nil {
		t.Fatalf("MakeEncoder: %v", err)
	}
	enc.SetRenderPipeline(f.points)
	enc.SetVertexBytes(EncodePoints([]Point{NewPoint(50, 50, Red, 4)}), gpucore.VertexIndex)
	enc.SetVertexBuffer(rt.UniformBuffer(), 0, gpucore.UniformIndex)
	enc.DrawPrimitives(gpucore.PrimitiveTypePoint, 0, 1)
	if err := enc.EndEncoding(); err != nil {
		t.Fatalf("EndEncoding: %v", err)
	}

	img := f.commitAndRead(t, rt)
	c := img.RGBAAt(50, 50)
	if c.R < 250 || c.G > 5 || c.B > 5 || c.A < 250 {
		t.Errorf("pixel (50,50) = %v, want opaque red", c)
	}
	if c := img.RGBAAt(0, 0); c.A != 0 {
		t.Errorf("pixel (0,0) = %v, want transparent", c)
	}
}

func TestClearThenCommitIsTransparent(t *testing.T) {
	f := newFixture(t)
	rt := NewRenderTarget(16, 16, f.dev)
	defer rt.Dispose()

	if err := rt.DrawPoints(f.points, []Point{NewPoint(8, 8, Red, 8)}); err != nil {
		t.Fatalf("DrawPoints: %v", err)
	}
	f.commitAndRead(t, rt)

	rt.Clear()
	rt.PrepareForDraw()
	img := f.commitAndRead(t, rt)
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			t.Fatalf("alpha at byte %d = %d after Clear, want 0", i, img.Pix[i])
		}
	}
}

func TestSequentialCommitsAccumulate(t *testing.T) {
	f := newFixture(t)
	rt := NewRenderTarget(32, 32, f.dev)
	defer rt.Dispose()

	if err := rt.DrawPoints(f.points, []Point{NewPoint(8, 8, Red, 6)}); err != nil {
		t.Fatalf("first draw: %v", err)
	}
	f.commitAndRead(t, rt)

	if err := rt.DrawPoints(f.points, []Point{NewPoint(24, 24, Blue, 6)}); err != nil {
		t.Fatalf("second draw: %v", err)
	}
	img := f.commitAndRead(t, rt)

	if c := img.RGBAAt(8, 8); c.R < 250 || c.A < 250 {
		t.Errorf("first stroke lost: pixel (8,8) = %v", c)
	}
	if c := img.RGBAAt(24, 24); c.B < 250 || c.A < 250 {
		t.Errorf("second stroke missing: pixel (24,24) = %v", c)
	}
}

func TestDrawVerticesTint(t *testing.T) {
	f := newFixture(t)
	rt := NewRenderTarget(16, 16, f.dev)
	defer rt.Dispose()

	err := rt.DrawVertices(f.quads, QuadVertices(V2(8, 8), 8), NewColorBuffer(0, 1, 0, 1), nil)
	if err != nil {
		t.Fatalf("DrawVertices: %v", err)
	}
	img := f.commitAndRead(t, rt)
	if c := img.RGBAAt(8, 8); c.G != 255 || c.R != 0 || c.A != 255 {
		t.Errorf("pixel (8,8) = %v, want opaque green", c)
	}
	if c := img.RGBAAt(1, 1); c.A != 0 {
		t.Errorf("pixel (1,1) = %v, want transparent", c)
	}
}

func TestDrawEmptyIsNoop(t *testing.T) {
	f := newFixture(t)
	rt := NewRenderTarget(4, 4, f.dev)
	defer rt.Dispose()

	if err := rt.DrawPoints(f.points, nil); err != nil {
		t.Errorf("DrawPoints(nil) = %v", err)
	}
	if err := rt.DrawVertices(f.quads, nil, ColorBuffer{}, nil); err != nil {
		t.Errorf("DrawVertices(nil) = %v", err)
	}
	if rt.State() != CommandStateNoBuffer {
		t.Errorf("empty draws opened a command buffer")
	}
}

func TestDrawWithWrongPipeline(t *testing.T) {
	f := newFixture(t)
	rt := NewRenderTarget(4, 4, f.dev)
	defer rt.Dispose()

	err := rt.DrawPoints(f.quads, []Point{NewPoint(1, 1, Red, 2)})
	if !errors.Is(err, gpucore.ErrLayoutMismatch) {
		t.Errorf("DrawPoints with vertex pipeline = %v, want ErrLayoutMismatch", err)
	}
}

func TestPrepareForDrawIdempotent(t *testing.T) {
	f := newFixture(t)
	rt := NewRenderTarget(4, 4, f.dev)
	defer rt.Dispose()

	if rt.State() != CommandStateNoBuffer {
		t.Fatalf("initial state = %v", rt.State())
	}
	rt.PrepareForDraw()
	first := rt.CommandBuffer()
	rt.PrepareForDraw()
	if first == nil || rt.CommandBuffer() != first {
		t.Error("second PrepareForDraw replaced the command buffer")
	}
	if rt.State() != CommandStateBufferOpen {
		t.Errorf("state = %v, want BufferOpen", rt.State())
	}

	cb := rt.Commit()
	if cb != first {
		t.Error("Commit returned a different buffer")
	}
	if err := cb.Wait(testContext(t)); err != nil {
		t.Errorf("Wait: %v", err)
	}
	if rt.State() != CommandStateNoBuffer || rt.CommandBuffer() != nil {
		t.Error("Commit did not forget the buffer")
	}
}

func TestCommitWithoutBuffer(t *testing.T) {
	rt := NewRenderTarget(4, 4, newFixture(t).dev)
	defer rt.Dispose()

	if cb := rt.Commit(); cb != nil {
		t.Errorf("Commit without buffer = %v, want nil", cb)
	}
	if rt.State() != CommandStateNoBuffer {
		t.Errorf("state = %v, want NoBuffer", rt.State())
	}
}

func TestCommitWithActiveEncoder(t *testing.T) {
	f := newFixture(t)
	rt := NewRenderTarget(4, 4, f.dev)
	defer rt.Dispose()

	rt.PrepareForDraw()
	if _, err := rt.MakeEncoder(); err != nil {
		t.Fatalf("MakeEncoder: %v", err)
	}
	if cb := rt.Commit(); cb != nil {
		t.Errorf("Commit with an unended encoder = %v, want nil", cb)
	}
	if rt.State() != CommandStateNoBuffer {
		t.Errorf("state = %v, want NoBuffer", rt.State())
	}

	// The target stays usable for the next frame.
	if err := rt.DrawPoints(f.points, []Point{NewPoint(2, 2, Red, 4)}); err != nil {
		t.Fatalf("DrawPoints: %v", err)
	}
	img := f.commitAndRead(t, rt)
	if got := img.RGBAAt(2, 2); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("pixel = %v, want opaque red", got)
	}
}

func TestDrawPointsOutOfRange(t *testing.T) {
	f := newFixture(t)
	rt := NewRenderTarget(100, 100, f.dev)
	defer rt.Dispose()

	points := []Point{
		NewPoint(math.NaN(), 50, Red, 4),
		NewPoint(50, 50, Red, math.Inf(1)),
		NewPoint(-1e9, -1e9, Red, 8),
		NewPoint(50, 50, Red, 200000),
	}
	if err := rt.DrawPoints(f.points, points); err != nil {
		t.Fatalf("DrawPoints: %v", err)
	}
	img := f.commitAndRead(t, rt)
	for _, pt := range []image.Point{{0, 0}, {99, 0}, {50, 50}, {99, 99}} {
		if got := img.RGBAAt(pt.X, pt.Y); got != (color.RGBA{R: 255, A: 255}) {
			t.Errorf("pixel %v = %v, want opaque red", pt, got)
		}
	}
}

func TestMakeEncoderErrors(t *testing.T) {
	f := newFixture(t)
	rt := NewRenderTarget(4, 4, f.dev)

	if _, err := rt.MakeEncoder(); !errors.Is(err, ErrNoOpenCommandBuffer) {
		t.Errorf("MakeEncoder before PrepareForDraw = %v, want ErrNoOpenCommandBuffer", err)
	}

	rt.PrepareForDraw()
	enc, err := rt.MakeEncoder()
	if err != nil {
		t.Fatalf("MakeEncoder: %v", err)
	}
	if _, err := rt.MakeEncoder(); !errors.Is(err, gpucore.ErrEncoderActive) {
		t.Errorf("second open encoder = %v, want ErrEncoderActive", err)
	}
	if err := enc.EndEncoding(); err != nil {
		t.Fatalf("EndEncoding: %v", err)
	}

	rt.Dispose()
	if _, err := rt.MakeEncoder(); !errors.Is(err, ErrDisposed) {
		t.Errorf("MakeEncoder after Dispose = %v, want ErrDisposed", err)
	}
}

func TestDegenerateSize(t *testing.T) {
	f := newFixture(t)
	for _, size := range [][2]int{{0, 10}, {10, 0}, {-1, -1}} {
		rt := NewRenderTarget(size[0], size[1], f.dev)
		if rt.Texture() != nil {
			t.Errorf("%v: texture allocated", size)
		}
		if rt.Lifecycle() != LifecycleDegenerate {
			t.Errorf("%v: lifecycle = %v", size, rt.Lifecycle())
		}
		if !errors.Is(rt.Err(), ErrDegenerateSize) {
			t.Errorf("%v: Err = %v", size, rt.Err())
		}

		rt.PrepareForDraw()
		_, err := rt.MakeEncoder()
		if !errors.Is(err, ErrNoBoundTexture) || !errors.Is(err, ErrDegenerateSize) {
			t.Errorf("%v: MakeEncoder = %v", size, err)
		}
		if err := rt.DrawPoints(f.points, []Point{NewPoint(0, 0, Red, 1)}); !errors.Is(err, ErrNoBoundTexture) {
			t.Errorf("%v: DrawPoints = %v", size, err)
		}
		rt.Dispose()
	}
}

func TestDegenerateRecoversOnResizeTexture(t *testing.T) {
	rt := NewRenderTarget(0, 0, newFixture(t).dev)
	defer rt.Dispose()

	rt.ResizeTexture(8, 4)
	if rt.Lifecycle() != LifecycleReady || rt.Err() != nil {
		t.Fatalf("lifecycle = %v, err = %v", rt.Lifecycle(), rt.Err())
	}
	if rt.Texture().Width() != 8 || rt.Texture().Height() != 4 {
		t.Errorf("texture is %dx%d", rt.Texture().Width(), rt.Texture().Height())
	}
}

func TestNilDevice(t *testing.T) {
	rt := NewRenderTarget(8, 8, nil)
	if !errors.Is(rt.Err(), ErrNoDevice) {
		t.Errorf("Err = %v, want ErrNoDevice", rt.Err())
	}
	if rt.UniformBuffer() != nil || rt.Texture() != nil {
		t.Error("nil device allocated resources")
	}
	if rt.Transform() != PixelToClip(8, 8) {
		t.Error("transform must be computed without a device")
	}

	rt.PrepareForDraw()
	if _, err := rt.MakeEncoder(); !errors.Is(err, ErrNoOpenCommandBuffer) {
		t.Errorf("MakeEncoder = %v, want ErrNoOpenCommandBuffer", err)
	}
	rt.Clear()
	rt.Resize(4, 4)
	if cb := rt.Commit(); cb != nil {
		t.Error("Commit without device returned a buffer")
	}
	rt.Dispose()
}

func TestClearKeepsDescriptorInSync(t *testing.T) {
	rt := NewRenderTarget(8, 8, newFixture(t).dev)
	defer rt.Dispose()

	old := rt.Texture()
	desc := rt.Descriptor()
	rt.Clear()

	if rt.Texture() == old {
		t.Error("Clear kept the old texture")
	}
	if rt.Descriptor() != desc {
		t.Error("Clear replaced the descriptor")
	}
	att := desc.ColorAttachments[0]
	if att.Texture != rt.Texture() {
		t.Error("descriptor texture differs from Texture()")
	}
	if att.LoadAction != gpucore.LoadActionLoad || att.StoreAction != gpucore.StoreActionStore {
		t.Errorf("attachment actions = %v/%v, want Load/Store", att.LoadAction, att.StoreAction)
	}
}

func TestResizeDoesNotReallocate(t *testing.T) {
	rt := NewRenderTarget(8, 8, newFixture(t).dev)
	defer rt.Dispose()

	tex := rt.Texture()
	rt.Resize(20, 10)

	if rt.Texture() != tex {
		t.Error("Resize replaced the texture")
	}
	if w, h := rt.Size(); w != 20 || h != 10 {
		t.Errorf("Size = %dx%d, want 20x10", w, h)
	}
	if rt.Transform() != PixelToClip(20, 10) {
		t.Errorf("Transform = %v", rt.Transform())
	}
	ub := rt.UniformBuffer()
	if ub == nil || Matrix4(gpucore.DecodeMatrix(ub.Contents())) != PixelToClip(20, 10) {
		t.Error("uniform buffer does not hold the new transform")
	}
}

func TestResizeTexture(t *testing.T) {
	f := newFixture(t)
	rt := NewRenderTarget(8, 8, f.dev)
	defer rt.Dispose()

	if err := rt.DrawPoints(f.points, []Point{NewPoint(4, 4, Red, 8)}); err != nil {
		t.Fatalf("DrawPoints: %v", err)
	}
	f.commitAndRead(t, rt)

	old := rt.Texture()
	rt.ResizeTexture(12, 6)
	if rt.Texture() == old {
		t.Fatal("ResizeTexture kept the texture")
	}
	if rt.Descriptor().ColorAttachments[0].Texture != rt.Texture() {
		t.Error("descriptor not updated")
	}

	rt.PrepareForDraw()
	img := f.commitAndRead(t, rt)
	if img.Rect != image.Rect(0, 0, 12, 6) {
		t.Errorf("bounds = %v", img.Rect)
	}
	if c := img.RGBAAt(4, 4); c.A != 0 {
		t.Errorf("resized texture is not blank: %v", c)
	}
}

func TestDispose(t *testing.T) {
	f := newFixture(t)
	rt := NewRenderTarget(8, 8, f.dev)

	if err := rt.DrawPoints(f.points, []Point{NewPoint(4, 4, Red, 4)}); err != nil {
		t.Fatalf("DrawPoints: %v", err)
	}
	cb := rt.CommandBuffer()
	rt.Dispose()

	if cb.Status() == gpucore.CommandBufferStatusNotEnqueued {
		t.Error("Dispose did not commit the open buffer")
	}
	if err := cb.Wait(testContext(t)); err != nil {
		t.Errorf("Wait: %v", err)
	}
	if rt.Lifecycle() != LifecycleDisposed || !errors.Is(rt.Err(), ErrDisposed) {
		t.Errorf("lifecycle = %v, err = %v", rt.Lifecycle(), rt.Err())
	}
	if rt.Texture() != nil || rt.UniformBuffer() != nil {
		t.Error("Dispose kept resources")
	}

	// Everything after Dispose is a no-op.
	rt.Dispose()
	rt.Clear()
	rt.ResizeTexture(4, 4)
	rt.PrepareForDraw()
	if rt.Texture() != nil || rt.State() != CommandStateNoBuffer {
		t.Error("disposed target came back to life")
	}
}

func TestStateStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{CommandStateNoBuffer.String(), "NoBuffer"},
		{CommandStateBufferOpen.String(), "BufferOpen"},
		{CommandState(9).String(), "CommandState(9)"},
		{LifecycleReady.String(), "Ready"},
		{LifecycleDegenerate.String(), "Degenerate"},
		{LifecycleDisposed.String(), "Disposed"},
		{LifecycleState(7).String(), "LifecycleState(7)"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
