package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
)

// decodeTrack opens a wav, mp3 or flac file by extension.
func decodeTrack(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to open audio file: %w", err)
	}

	var (
		stream beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		stream, format, err = wav.Decode(f)
	case ".mp3":
		stream, format, err = mp3.Decode(f)
	case ".flac":
		stream, format, err = flac.Decode(f)
	default:
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("unsupported audio format %q", filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %q: %w", path, err)
	}
	return stream, format, nil
}

// analysisTap passes audio through to the speaker untouched and collects a
// mono copy in blockSize chunks for the analyser.
type analysisTap struct {
	src       beep.Streamer
	blockSize int
	block     []float32
	out       chan<- []float32
}

func (t *analysisTap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.src.Stream(samples)
	for _, s := range samples[:n] {
		t.block = append(t.block, float32((s[0]+s[1])/2))
		if len(t.block) == t.blockSize {
			select {
			case t.out <- t.block:
			default:
				// analyser is behind, drop this block
			}
			t.block = make([]float32, 0, t.blockSize)
		}
	}
	return n, ok
}

func (t *analysisTap) Err() error { return t.src.Err() }

// StartFilePlayback plays path on the default output device and feeds the
// analyser from the same samples that reach the speaker.
func StartFilePlayback(path string, bufferSize int) (*AudioStream, error) {
	stream, format, err := decodeTrack(path)
	if err != nil {
		return nil, err
	}

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		stream.Close()
		return nil, fmt.Errorf("speaker init: %w", err)
	}

	ch := make(chan []float32, 8)
	tap := &analysisTap{
		src:       stream,
		blockSize: bufferSize,
		block:     make([]float32, 0, bufferSize),
		out:       ch,
	}

	var closeOnce sync.Once
	finish := func() { closeOnce.Do(func() { close(ch) }) }

	speaker.Play(beep.Seq(tap, beep.Callback(func() {
		LogInfo("Track finished: %s", path)
		go finish()
	})))
	LogInfo("Playing %s at %dHz", path, format.SampleRate)

	stop := func() error {
		speaker.Clear()
		finish()
		speaker.Close()
		return stream.Close()
	}

	return &AudioStream{
		Samples:    ch,
		SampleRate: int(format.SampleRate),
		Label:      filepath.Base(path),
		Stop:       stop,
		local:      true,
	}, nil
}
