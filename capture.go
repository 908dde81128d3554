package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gordonklaus/portaudio"
)

// AudioStream is a running audio source. Samples are mono blocks; the channel
// closes when the source ends or Stop is called.
type AudioStream struct {
	Samples    <-chan []float32
	SampleRate int
	Label      string
	Stop       func() error

	local bool // decoded from a file and played by us
}

var errNoAudio = errors.New("audio disabled")

// StartAudio activates the configured source. The caller keeps rendering with
// a silent signal if it fails.
func StartAudio(cfg AppConfig) (*AudioStream, error) {
	source := cfg.Source
	if source == "auto" {
		if cfg.Track != "" {
			source = "file"
		} else {
			source = "portaudio"
		}
	}

	switch source {
	case "file":
		if cfg.Track == "" {
			return nil, fmt.Errorf("file source needs a track")
		}
		return StartFilePlayback(cfg.Track, cfg.BufferSize)
	case "pulse":
		return StartAudioCapture(cfg.SampleRate, cfg.BufferSize)
	case "portaudio":
		if err := detectAudioSetup(); err != nil {
			LogWarn("Audio device probe failed: %v", err)
		}
		return startPortAudio(cfg.SampleRate, cfg.BufferSize, 1)
	case "none":
		return nil, errNoAudio
	}
	return nil, fmt.Errorf("unknown audio source %q", cfg.Source)
}

// RunAudioLoop analyses every block from stream into bus until the stream
// closes. It is the audio side of the shared signal and never touches the
// renderer.
func RunAudioLoop(stream *AudioStream, bufferSize int, bus *SignalBus) {
	processor := NewAudioProcessor(stream.SampleRate, bufferSize)
	for buffer := range stream.Samples {
		bus.Store(processor.ProcessBuffer(buffer))
	}
	bus.Store(AudioSignal{})
	LogInfo("Audio stream %s ended", stream.Label)
}

func isLoopbackName(name string) bool {
	name = strings.ToLower(name)
	// Linux: monitor, Mac: BlackHole, Windows: Stereo Mix / loopback audio devices
	return strings.Contains(name, "monitor") ||
		strings.Contains(name, "blackhole") ||
		strings.Contains(name, "stereo mix") ||
		strings.Contains(name, "loopback") ||
		strings.Contains(name, "what u hear") // Creative Sound Blaster
}

func detectAudioSetup() error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return err
	}

	for _, device := range devices {
		if isLoopbackName(device.Name) {
			return nil
		}
	}
	LogWarn("System audio loopback device not detected; the visualizer will follow the default input")
	return nil
}

func selectCaptureDevice() (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	// Try to find loopback/monitor device (system audio output)
	for _, device := range devices {
		if device.MaxInputChannels == 0 {
			continue // Skip output-only devices
		}
		if isLoopbackName(device.Name) {
			LogInfo("Selected audio device: %s", device.Name)
			return device, nil
		}
	}

	// Fall back to default input device
	defaultInput, err := portaudio.DefaultInputDevice()
	if err != nil {
		return nil, fmt.Errorf("no suitable audio device found: %w", err)
	}

	LogWarn("Using default input device: %s (may not capture system audio)", defaultInput.Name)
	return defaultInput, nil
}

func startPortAudio(sampleRate int, framesPerBuf int, inChannels int) (*AudioStream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}

	// stream buffer used for stream.Read
	buffer := make([]float32, framesPerBuf*inChannels)

	device, err := selectCaptureDevice()
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("device selection failed: %w", err)
	}

	// Prefer the device's default sample rate when available to avoid
	// "Invalid sample rate" errors from PortAudio/ALSA.
	sr := sampleRate
	if device.DefaultSampleRate > 0 {
		sr = int(device.DefaultSampleRate)
	}

	streamParams := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: inChannels,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      float64(sr),
		FramesPerBuffer: framesPerBuf,
	}

	stream, err := portaudio.OpenStream(streamParams, buffer)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("start stream: %w", err)
	}

	ch := make(chan []float32, 8)
	done := make(chan struct{})
	doneDone := make(chan struct{})

	// reader loop
	go func() {
		defer close(doneDone)
		defer stream.Close()
		defer stream.Stop()
		defer close(ch)

		for {
			select {
			case <-done:
				return
			default:
			}

			if err := stream.Read(); err != nil {
				LogError("PortAudio read error: %v", err)
				return
			}
			buf := downmix(buffer, inChannels)

			select {
			case ch <- buf:
			case <-done:
				return
			default:
				// analyser is behind, drop this block
			}
		}
	}()

	stop := func() error {
		close(done)
		<-doneDone
		return portaudio.Terminate()
	}

	return &AudioStream{
		Samples:    ch,
		SampleRate: sr,
		Label:      device.Name,
		Stop:       stop,
	}, nil
}

// downmix averages interleaved channels into a fresh mono block.
func downmix(interleaved []float32, channels int) []float32 {
	if channels <= 1 {
		out := make([]float32, len(interleaved))
		copy(out, interleaved)
		return out
	}
	out := make([]float32, len(interleaved)/channels)
	for i := range out {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += interleaved[i*channels+c]
		}
		out[i] = sum / float32(channels)
	}
	return out
}
