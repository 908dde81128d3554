package main

import (
	"fmt"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/mdlayher/waveform"
)

// SaveSnapshot writes the frame, upscaled to its surface, as a PNG in dir.
func SaveSnapshot(frame *Frame, dir string, now time.Time) (string, error) {
	if frame == nil || frame.Image == nil {
		return "", fmt.Errorf("no frame to save")
	}

	path := filepath.Join(dir, fmt.Sprintf("phase-%s.png", now.Format("20060102-150405.000")))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer out.Close()

	if err := png.Encode(out, frame.Upscale()); err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return path, nil
}

// generateWaveform draws the track's amplitude envelope to a PNG.
func generateWaveform(inputPath, outputPath string) error {
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	opts := []waveform.OptionsFunc{
		waveform.Resolution(1024),
		waveform.Scale(2, 2),
		waveform.FGColorFunction(
			waveform.SolidColor(color.RGBA{0xFF, 0x00, 0xC8, 255}),
		),
		waveform.BGColorFunction(
			waveform.SolidColor(color.RGBA{0x1A, 0x00, 0x33, 255}),
		),
	}

	wf, err := waveform.New(f, opts...)
	if err != nil {
		return fmt.Errorf("failed to create waveform: %w", err)
	}

	vals, err := wf.Compute()
	if err != nil {
		return fmt.Errorf("failed to compute waveform: %w", err)
	}
	img := wf.Draw(vals)

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}

	return nil
}
