//go:build linux
// +build linux

package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strings"
	"sync"
)

// StartAudioCapture captures system audio on Linux from the default sink's
// PulseAudio/PipeWire monitor.
func StartAudioCapture(sampleRate, bufferSize int) (*AudioStream, error) {
	defaultSink, err := getDefaultSink()
	if err != nil {
		return nil, fmt.Errorf("failed to get default sink: %w", err)
	}

	monitorSource := defaultSink + ".monitor"
	LogInfo("Capturing from monitor source: %s", monitorSource)

	// float32le, stereo, at the requested rate
	cmd := exec.Command("parec",
		"--device="+monitorSource,
		"--format=float32le",
		"--channels=2",
		fmt.Sprintf("--rate=%d", sampleRate),
		"--latency-msec=20",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start parec: %w", err)
	}

	LogInfo("Started parec capture: %dHz stereo, buffer=%d", sampleRate, bufferSize)

	audioChan := make(chan []float32, 8)
	done := make(chan struct{})

	go func() {
		defer func() {
			cmd.Process.Kill()
			cmd.Wait()
			close(audioChan)
		}()

		raw := make([]byte, bufferSize*2*4) // 2 channels * 4 bytes per float32
		stereo := make([]float32, bufferSize*2)

		for {
			select {
			case <-done:
				return
			default:
			}

			if _, err := io.ReadFull(stdout, raw); err != nil {
				if err != io.EOF {
					LogError("Stream read error: %v", err)
				}
				return
			}

			for i := range stereo {
				stereo[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4 : (i+1)*4]))
			}

			select {
			case audioChan <- downmix(stereo, 2):
			default:
				// Channel full, skip this buffer
			}
		}
	}()

	var once sync.Once
	stopFunc := func() error {
		once.Do(func() { close(done) })
		return nil
	}

	return &AudioStream{
		Samples:    audioChan,
		SampleRate: sampleRate,
		Label:      monitorSource,
		Stop:       stopFunc,
	}, nil
}

// getDefaultSink queries PulseAudio/PipeWire for the current default sink
func getDefaultSink() (string, error) {
	output, err := exec.Command("pactl", "info").Output()
	if err != nil {
		return "", fmt.Errorf("failed to run pactl: %w", err)
	}

	for _, line := range strings.Split(string(output), "\n") {
		if strings.Contains(line, "Default Sink:") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) == 2 {
				return strings.TrimSpace(parts[1]), nil
			}
		}
	}

	return "", fmt.Errorf("could not find default sink")
}
