//go:build !linux
// +build !linux

package main

import "fmt"

// StartAudioCapture needs parec, which only exists on Linux.
func StartAudioCapture(sampleRate, bufferSize int) (*AudioStream, error) {
	return nil, fmt.Errorf("pulse capture is only available on linux; use -source=portaudio")
}
