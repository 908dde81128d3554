package main

import (
	"sync"
	"testing"
)

func TestSignalBusZeroValue(t *testing.T) {
	var bus SignalBus
	if got := bus.Load(); got != (AudioSignal{}) {
		t.Errorf("Expected silence from an empty bus, got %+v", got)
	}
}

func TestSignalBusStoreLoad(t *testing.T) {
	var bus SignalBus
	want := AudioSignal{Bass: 0.5, Mids: 0.25, Highs: 0.125, Level: 0.3}
	bus.Store(want)
	if got := bus.Load(); got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

// TestSignalBusConcurrent checks readers only ever see whole snapshots.
func TestSignalBusConcurrent(t *testing.T) {
	var bus SignalBus
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			v := float64(i%2) / 2
			bus.Store(AudioSignal{Bass: v, Mids: v, Highs: v, Level: v})
		}
	}()

	for i := 0; i < 1000; i++ {
		sig := bus.Load()
		if sig.Bass != sig.Mids || sig.Mids != sig.Highs || sig.Highs != sig.Level {
			t.Fatalf("Torn read: %+v", sig)
		}
	}
	wg.Wait()
}

func TestRunAudioLoopEndsInSilence(t *testing.T) {
	ch := make(chan []float32, 4)
	ch <- sineBuffer(100, testBufferSize)
	ch <- sineBuffer(100, testBufferSize)
	close(ch)

	var bus SignalBus
	bus.Store(AudioSignal{Bass: 1})
	RunAudioLoop(&AudioStream{Samples: ch, SampleRate: testSampleRate, Label: "test"}, testBufferSize, &bus)

	if got := bus.Load(); got != (AudioSignal{}) {
		t.Errorf("Expected silence after the stream ended, got %+v", got)
	}
}

func TestDownmix(t *testing.T) {
	stereo := []float32{1, 0, 0.5, 0.5, -1, 1}
	got := downmix(stereo, 2)
	want := []float32{0.5, 0.5, 0}
	if len(got) != len(want) {
		t.Fatalf("Expected %d frames, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Frame %d = %v, want %v", i, got[i], want[i])
		}
	}

	mono := []float32{0.1, 0.2}
	copied := downmix(mono, 1)
	mono[0] = 9
	if copied[0] != 0.1 {
		t.Error("Mono downmix should copy, not alias")
	}
}

func TestIsLoopbackName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Monitor of Built-in Audio", true},
		{"BlackHole 2ch", true},
		{"Stereo Mix (Realtek)", true},
		{"USB Microphone", false},
	}
	for _, tt := range tests {
		if got := isLoopbackName(tt.name); got != tt.want {
			t.Errorf("isLoopbackName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestStartAudioNone(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.Source = "none"
	if _, err := StartAudio(cfg); err != errNoAudio {
		t.Errorf("Expected errNoAudio, got %v", err)
	}

	cfg.Source = "file"
	cfg.Track = ""
	if _, err := StartAudio(cfg); err == nil {
		t.Error("Expected an error for a file source without a track")
	}
}
