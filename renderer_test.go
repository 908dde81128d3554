package main

import (
	"image"
	"image/color"
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"
)

func newTestRenderer(seed int64) (*FrameRenderer, *PhaseScheduler) {
	lib := NewFieldLibrary(seed)
	sched := NewPhaseScheduler(lib.Len(), rand.New(rand.NewSource(seed)), time.Unix(0, 0))
	return NewFrameRenderer(lib), sched
}

func TestRenderFrameGridSize(t *testing.T) {
	fr, sched := newTestRenderer(1)
	cfg := DefaultRenderConfig()
	cfg.Resolution = 4

	frame, ok := fr.RenderFrame(800, 600, cfg, sched, AudioSignal{}, time.Unix(0, 0))
	if !ok {
		t.Fatal("Expected a frame for 800x600")
	}
	if w, h := frame.Image.Rect.Dx(), frame.Image.Rect.Dy(); w != 200 || h != 150 {
		t.Errorf("Expected 200x150 sample grid, got %dx%d", w, h)
	}
	if frame.SurfaceW != 800 || frame.SurfaceH != 600 || frame.Factor != 4 {
		t.Errorf("Unexpected frame geometry: %+v", frame)
	}
}

func TestRenderFrameSkipsEmptyGrid(t *testing.T) {
	fr, sched := newTestRenderer(1)
	cfg := DefaultRenderConfig()
	cfg.Resolution = 1000

	frame, ok := fr.RenderFrame(800, 600, cfg, sched, AudioSignal{}, time.Unix(0, 0))
	if ok || frame != nil {
		t.Fatal("Expected the frame to be skipped when res exceeds the surface")
	}

	cfg.Resolution = 1
	if _, ok := fr.RenderFrame(0, 600, cfg, sched, AudioSignal{}, time.Unix(0, 0)); ok {
		t.Error("Expected a zero-width surface to be skipped")
	}
	if _, ok := fr.RenderFrame(800, 0, cfg, sched, AudioSignal{}, time.Unix(0, 0)); ok {
		t.Error("Expected a zero-height surface to be skipped")
	}

	// skipped frames still advance the clock
	if got := fr.Time(); math.Abs(got-0.03) > 1e-12 {
		t.Errorf("Expected time 0.03 after three skipped frames, got %v", got)
	}
}

func TestRenderFrameZeroIntensityIsMidGrey(t *testing.T) {
	fr, sched := newTestRenderer(9)
	cfg := DefaultRenderConfig()
	cfg.ColorIntensity = 0
	sig := AudioSignal{Bass: 1, Mids: 1, Highs: 1, Level: 1}

	// mid cross-fade so both phases contribute
	frame, ok := fr.RenderFrame(320, 200, cfg, sched, sig, time.Unix(0, 0).Add(400*time.Millisecond))
	if !ok {
		t.Fatal("Expected a frame")
	}
	pix := frame.Image.Pix
	for i := 0; i < len(pix); i += 4 {
		if pix[i] != 128 || pix[i+1] != 128 || pix[i+2] != 128 || pix[i+3] != 255 {
			t.Fatalf("Pixel %d = %v, want (128,128,128,255)", i/4, pix[i:i+4])
		}
	}
}

func TestRenderFrameTimeAccumulator(t *testing.T) {
	a, schedA := newTestRenderer(1)
	b, schedB := newTestRenderer(1)
	cfg := DefaultRenderConfig()

	cfg.Speed = 2
	for i := 0; i < 5; i++ {
		f, _ := a.RenderFrame(64, 64, cfg, schedA, AudioSignal{}, time.Unix(0, 0))
		a.Release(f)
	}
	if got := a.Time(); math.Abs(got-0.1) > 1e-12 {
		t.Errorf("Expected 0.1 after five frames at speed 2, got %v", got)
	}

	cfg.Speed = 0.5
	f, _ := b.RenderFrame(64, 64, cfg, schedB, AudioSignal{}, time.Unix(0, 0))
	if math.Abs(f.Time-0.005) > 1e-12 {
		t.Errorf("Expected frame time 0.005, got %v", f.Time)
	}
	if b.Time() == a.Time() {
		t.Error("Renderers share a clock")
	}
}

func TestRenderFrameManualPhaseMatchesField(t *testing.T) {
	fr, sched := newTestRenderer(5)
	cfg := DefaultRenderConfig()
	cfg.Mode = ModeManual
	cfg.ManualPhase = 2
	cfg.Resolution = 8
	sig := AudioSignal{Bass: 0.4, Mids: 0.2, Highs: 0.6}

	const sw, sh = 160, 96
	frame, ok := fr.RenderFrame(sw, sh, cfg, sched, sig, time.Unix(3, 0))
	if !ok {
		t.Fatal("Expected a frame")
	}
	if frame.Current != 2 || frame.Next != 2 {
		t.Fatalf("Expected manual phase 2, got %d->%d", frame.Current, frame.Next)
	}

	eval := fr.Library().Phase(2).Eval
	for _, p := range []image.Point{{0, 0}, {7, 3}, {19, 11}} {
		px, py := float64(p.X*8), float64(p.Y*8)
		dx, dy := px-sw/2, py-sh/2
		s := Sample{X: px, Y: py, Angle: math.Atan2(dy, dx), Distance: math.Sqrt(dx*dx + dy*dy)}
		c := eval(s, frame.Time, sig)
		want := color.RGBA{toChannel(c.R, 1), toChannel(c.G, 1), toChannel(c.B, 1), 255}
		if got := frame.Image.RGBAAt(p.X, p.Y); got != want {
			t.Errorf("Sample %v = %v, want %v", p, got, want)
		}
	}
}

func TestRenderFrameDeterministic(t *testing.T) {
	a, schedA := newTestRenderer(11)
	b, schedB := newTestRenderer(11)
	cfg := DefaultRenderConfig()
	now := time.Unix(0, 0).Add(300 * time.Millisecond)
	sig := AudioSignal{Bass: 0.7}

	fa, _ := a.RenderFrame(240, 120, cfg, schedA, sig, now)
	fb, _ := b.RenderFrame(240, 120, cfg, schedB, sig, now)
	if string(fa.Image.Pix) != string(fb.Image.Pix) {
		t.Error("Equal seeds and inputs produced different frames")
	}
}

func TestFrameUpscale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.SetRGBA(0, 0, color.RGBA{10, 0, 0, 255})
	src.SetRGBA(1, 0, color.RGBA{20, 0, 0, 255})
	src.SetRGBA(0, 1, color.RGBA{30, 0, 0, 255})
	src.SetRGBA(1, 1, color.RGBA{40, 0, 0, 255})

	// 7x5 is not a whole multiple of the factor; the edge repeats.
	f := &Frame{Image: src, SurfaceW: 7, SurfaceH: 5, Factor: 3}
	dst := f.Upscale()

	if w, h := dst.Rect.Dx(), dst.Rect.Dy(); w != 7 || h != 5 {
		t.Fatalf("Expected 7x5, got %dx%d", w, h)
	}
	tests := []struct {
		x, y int
		want uint8
	}{
		{0, 0, 10}, {2, 2, 10}, {3, 0, 20}, {6, 2, 20},
		{0, 3, 30}, {2, 4, 30}, {3, 3, 40}, {6, 4, 40},
	}
	for _, tt := range tests {
		if got := dst.RGBAAt(tt.x, tt.y).R; got != tt.want {
			t.Errorf("(%d,%d): got %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestToChannel(t *testing.T) {
	tests := []struct {
		v, intensity float64
		want         uint8
	}{
		{0, 1, 128},
		{1, 1, 255},
		{-1, 1, 1},
		{0.5, 1, 191},
		{1, 2, 255},
		{-1, 2, 0},
		{1, 0, 128},
		{math.NaN(), 1, 128},
		{math.Inf(1), 0, 128},
	}
	for _, tt := range tests {
		if got := toChannel(tt.v, tt.intensity); got != tt.want {
			t.Errorf("toChannel(%v, %v) = %d, want %d", tt.v, tt.intensity, got, tt.want)
		}
	}
}

func TestRendererReleaseReusesBuffers(t *testing.T) {
	fr, sched := newTestRenderer(2)
	cfg := DefaultRenderConfig()

	big, _ := fr.RenderFrame(400, 400, cfg, sched, AudioSignal{}, time.Unix(0, 0))
	fr.Release(big)
	if big.Image != nil {
		t.Error("Release should detach the image from the frame")
	}
	fr.Release(nil)

	small, ok := fr.RenderFrame(40, 40, cfg, sched, AudioSignal{}, time.Unix(0, 0))
	if !ok {
		t.Fatal("Expected a frame")
	}
	if w, h := small.Image.Rect.Dx(), small.Image.Rect.Dy(); w != 10 || h != 10 {
		t.Errorf("Reused buffer has wrong bounds %dx%d", w, h)
	}
	if len(small.Image.Pix) != 10*10*4 || small.Image.Stride != 40 {
		t.Errorf("Reused buffer has wrong layout: len=%d stride=%d", len(small.Image.Pix), small.Image.Stride)
	}
}

func TestTerminalSurfaceBlit(t *testing.T) {
	ts := NewTerminalSurface()
	if w, h := ts.PixelSize(40, 12); w != 40 || h != 24 {
		t.Errorf("PixelSize(40,12) = %dx%d, want 40x24", w, h)
	}

	fr, sched := newTestRenderer(3)
	cfg := DefaultRenderConfig()
	cfg.Resolution = 2
	w, h := ts.PixelSize(40, 12)
	frame, ok := fr.RenderFrame(w, h, cfg, sched, AudioSignal{}, time.Unix(0, 0))
	if !ok {
		t.Fatal("Expected a frame")
	}

	out := ts.Blit(frame, 40, 12)
	if lines := strings.Count(out, "\n") + 1; lines != 12 {
		t.Errorf("Expected 12 lines, got %d", lines)
	}
	if cells := strings.Count(out, "▀"); cells != 40*12 {
		t.Errorf("Expected %d half-block cells, got %d", 40*12, cells)
	}
}

func TestTerminalSurfaceBlank(t *testing.T) {
	ts := NewTerminalSurface()
	out := ts.Blank(5, 3)
	if out != "     \n     \n     " {
		t.Errorf("Unexpected blank output %q", out)
	}
	if ts.Blank(0, 3) != "" || ts.Blank(3, 0) != "" {
		t.Error("Expected empty output for an empty area")
	}
	if got := ts.Blit(nil, 2, 2); got != "  \n  " {
		t.Errorf("Blit(nil) = %q", got)
	}
}
