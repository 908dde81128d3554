package main

import (
	"math/rand"
	"time"
)

// Visualizer is the core shared by both display surfaces: it owns the field
// library, the phase scheduler, the frame renderer and the settings handler,
// and reads the audio signal each frame. Frontends call Tick from their own
// per-frame callback; there is no internal render loop.
type Visualizer struct {
	renderer  *FrameRenderer
	scheduler *PhaseScheduler
	settings  *Settings
	bus       *SignalBus

	stream     *AudioStream
	audioErr   error
	audioLabel string

	lastFrame  *Frame
	frameCount int
	fpsWindow  time.Time
	fps        float64
}

// NewVisualizer wires the core around lib. seed drives the phase picker.
func NewVisualizer(lib *FieldLibrary, seed int64, settings *Settings, start time.Time) *Visualizer {
	return &Visualizer{
		renderer:  NewFrameRenderer(lib),
		scheduler: NewPhaseScheduler(lib.Len(), rand.New(rand.NewSource(seed)), start),
		settings:  settings,
		bus:       &SignalBus{},
		fpsWindow: start,
	}
}

func (v *Visualizer) Library() *FieldLibrary { return v.renderer.Library() }

func (v *Visualizer) Settings() *Settings { return v.settings }

func (v *Visualizer) Signal() AudioSignal { return v.bus.Load() }

func (v *Visualizer) Phase() PhaseState { return v.scheduler.State() }

func (v *Visualizer) FPS() float64 { return v.fps }

// LastFrame is the most recent rendered frame, nil if the last tick was
// skipped.
func (v *Visualizer) LastFrame() *Frame { return v.lastFrame }

// Tick renders one frame for the given surface. The previous frame's buffer
// is recycled, so callers must be done with it.
func (v *Visualizer) Tick(surfaceW, surfaceH int, now time.Time) (*Frame, bool) {
	v.renderer.Release(v.lastFrame)
	v.lastFrame = nil

	v.countFrame(now)

	frame, ok := v.renderer.RenderFrame(surfaceW, surfaceH, v.settings.Config(), v.scheduler, v.bus.Load(), now)
	if !ok {
		return nil, false
	}
	v.lastFrame = frame
	return frame, true
}

func (v *Visualizer) countFrame(now time.Time) {
	v.frameCount++
	if elapsed := now.Sub(v.fpsWindow); elapsed >= time.Second {
		v.fps = float64(v.frameCount) / elapsed.Seconds()
		v.frameCount = 0
		v.fpsWindow = now
	}
}

// AttachAudio takes the result of StartAudio and starts the audio loop. A
// failure is remembered for the UI and the visualizer carries on silent.
func (v *Visualizer) AttachAudio(stream *AudioStream, err error, bufferSize int) {
	if err != nil {
		if err != errNoAudio {
			LogError("Audio failed to start: %v", err)
			v.audioErr = err
		}
		return
	}

	v.stream = stream
	v.audioLabel = stream.Label
	v.audioErr = nil
	LogInfo("Audio source %s at %dHz", stream.Label, stream.SampleRate)

	go RunAudioLoop(stream, bufferSize, v.bus)
}

// AudioStatus describes the audio source for the panel.
func (v *Visualizer) AudioStatus() string {
	switch {
	case v.audioErr != nil:
		return "Audio failed to start: " + v.audioErr.Error()
	case v.stream != nil:
		return "Audio: " + v.audioLabel
	}
	return "Audio: off"
}

// PlayingTrack reports whether the source is a file we play ourselves.
func (v *Visualizer) PlayingTrack() (string, bool) {
	if v.stream == nil {
		return "", false
	}
	return v.audioLabel, v.stream.local
}

func (v *Visualizer) Close() {
	if v.stream != nil {
		if err := v.stream.Stop(); err != nil {
			LogError("Stopping audio: %v", err)
		}
		v.stream = nil
	}
}

func (v *Visualizer) AudioFailed() bool { return v.audioErr != nil }
