package main

import (
	"image"
	"math"
	"runtime"
	"sync"
	"time"
)

// timeStep is how far the field clock moves per frame at speed 1.
const timeStep = 0.01

// Frame is one rendered low-resolution field plus what is needed to blit it.
type Frame struct {
	Image      *image.RGBA // sampleW x sampleH
	SurfaceW   int
	SurfaceH   int
	Factor     int
	Current    int
	Next       int
	Transition float64
	Time       float64
}

// Upscale nearest-neighbour resamples the frame to the full surface. Surface
// pixels past the last whole sample repeat the edge sample.
func (f *Frame) Upscale() *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, f.SurfaceW, f.SurfaceH))
	sw, sh := f.Image.Rect.Dx(), f.Image.Rect.Dy()
	for y := 0; y < f.SurfaceH; y++ {
		sy := min(y/f.Factor, sh-1)
		srcRow := f.Image.Pix[sy*f.Image.Stride:]
		dstRow := dst.Pix[y*dst.Stride:]
		for x := 0; x < f.SurfaceW; x++ {
			sx := min(x/f.Factor, sw-1)
			copy(dstRow[x*4:x*4+4], srcRow[sx*4:sx*4+4])
		}
	}
	return dst
}

// FrameRenderer evaluates the phase field for every sample of a frame. Each
// renderer owns its own field clock.
type FrameRenderer struct {
	lib     *FieldLibrary
	cache   *PerformanceCache
	time    float64
	workers int
}

func NewFrameRenderer(lib *FieldLibrary) *FrameRenderer {
	return &FrameRenderer{
		lib:     lib,
		cache:   NewPerformanceCache(),
		workers: runtime.NumCPU(),
	}
}

func (fr *FrameRenderer) Library() *FieldLibrary { return fr.lib }

// Time is the field clock.
func (fr *FrameRenderer) Time() float64 { return fr.time }

// RenderFrame renders one frame for a surfaceW x surfaceH display. It returns
// false, without touching any buffer, when the sample grid would be empty.
func (fr *FrameRenderer) RenderFrame(surfaceW, surfaceH int, cfg RenderConfig, sched *PhaseScheduler, sig AudioSignal, now time.Time) (*Frame, bool) {
	fr.time += timeStep * cfg.Speed
	current, next, transition := sched.Advance(now, cfg)

	res := cfg.Resolution
	if res < 1 {
		res = 1
	}
	sampleW, sampleH := surfaceW/res, surfaceH/res
	if sampleW <= 0 || sampleH <= 0 {
		return nil, false
	}

	img := fr.cache.GetImage(sampleW, sampleH)
	frame := &Frame{
		Image:      img,
		SurfaceW:   surfaceW,
		SurfaceH:   surfaceH,
		Factor:     res,
		Current:    current,
		Next:       next,
		Transition: transition,
		Time:       fr.time,
	}

	job := rowJob{
		img:        img,
		res:        float64(res),
		halfW:      float64(surfaceW) / 2,
		halfH:      float64(surfaceH) / 2,
		cur:        fr.lib.Phase(current).Eval,
		nxt:        fr.lib.Phase(next).Eval,
		blend:      current != next,
		transition: transition,
		intensity:  cfg.ColorIntensity,
		t:          fr.time,
		sig:        sig,
	}

	workers := min(fr.workers, sampleH)
	if workers <= 1 {
		job.rows(0, sampleH)
		return frame, true
	}

	// Each worker owns a contiguous block of rows.
	var wg sync.WaitGroup
	rowsPer := (sampleH + workers - 1) / workers
	for start := 0; start < sampleH; start += rowsPer {
		end := min(start+rowsPer, sampleH)
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			job.rows(y0, y1)
		}(start, end)
	}
	wg.Wait()

	return frame, true
}

// Release hands a frame's buffer back for reuse. The frame must not be used
// afterwards.
func (fr *FrameRenderer) Release(f *Frame) {
	if f == nil {
		return
	}
	fr.cache.ReturnImage(f.Image)
	f.Image = nil
}

type rowJob struct {
	img          *image.RGBA
	res          float64
	halfW, halfH float64
	cur, nxt     FieldFunc
	blend        bool
	transition   float64
	intensity    float64
	t            float64
	sig          AudioSignal
}

func (j rowJob) rows(y0, y1 int) {
	w := j.img.Rect.Dx()
	for y := y0; y < y1; y++ {
		py := float64(y) * j.res
		dy := py - j.halfH
		row := j.img.Pix[y*j.img.Stride:]
		for x := 0; x < w; x++ {
			px := float64(x) * j.res
			dx := px - j.halfW
			s := Sample{
				X:        px,
				Y:        py,
				Angle:    math.Atan2(dy, dx),
				Distance: math.Sqrt(dx*dx + dy*dy),
			}

			c := j.cur(s, j.t, j.sig)
			if j.blend {
				c = c.Lerp(j.nxt(s, j.t, j.sig), j.transition)
			}

			i := x * 4
			row[i] = toChannel(c.R, j.intensity)
			row[i+1] = toChannel(c.G, j.intensity)
			row[i+2] = toChannel(c.B, j.intensity)
			row[i+3] = 255
		}
	}
}

// toChannel maps a blended offset to 0..255 around the 128 midpoint.
func toChannel(v, intensity float64) uint8 {
	c := 128 + 127*v*intensity
	if math.IsNaN(c) {
		return 128
	}
	if c <= 0 {
		return 0
	}
	if c >= 255 {
		return 255
	}
	return uint8(c)
}
