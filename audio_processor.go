package main

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
)

// Analyser shaping, matching a browser AnalyserNode's defaults.
const (
	minDecibels     = -100.0
	maxDecibels     = -30.0
	smoothingFactor = 0.8
)

// Band edges as fractions of the Nyquist range. These are the 10/40 bin
// splits of a 64-bin analyser.
const (
	bassEdge = 10.0 / 64.0
	midsEdge = 40.0 / 64.0
)

type AudioProcessor struct {
	sampleRate int
	bufferSize int
	fft        *fourier.FFT
	window     []float64
	smoothed   []float64 // per-bin magnitude after time smoothing
	levels     []float64 // per-bin byte-scaled level in [0,1]
	windowed   []float64
}

func NewAudioProcessor(sampleRate, bufferSize int) *AudioProcessor {
	bins := bufferSize/2 + 1
	return &AudioProcessor{
		sampleRate: sampleRate,
		bufferSize: bufferSize,
		fft:        fourier.NewFFT(bufferSize),
		window:     window.Hann(ones(bufferSize)),
		smoothed:   make([]float64, bins),
		levels:     make([]float64, bins),
		windowed:   make([]float64, bufferSize),
	}
}

func ones(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = 1
	}
	return s
}

// ProcessBuffer runs one analysis step and bucket-averages the spectrum into
// bass, mids and highs. Short buffers are zero padded; long ones truncated.
func (ap *AudioProcessor) ProcessBuffer(buffer []float32) AudioSignal {
	for i := range ap.windowed {
		var s float64
		if i < len(buffer) {
			s = float64(buffer[i])
		}
		ap.windowed[i] = s * ap.window[i]
	}

	coeffs := ap.fft.Coefficients(nil, ap.windowed)

	// skip DC, it only carries offset
	n := float64(ap.bufferSize)
	for i := 1; i < len(coeffs) && i < len(ap.smoothed); i++ {
		magnitude := cmplx.Abs(coeffs[i]) / n
		ap.smoothed[i] = smoothingFactor*ap.smoothed[i] + (1-smoothingFactor)*magnitude
		ap.levels[i] = decibelLevel(ap.smoothed[i])
	}

	bins := ap.levels[1:]
	bassEnd := int(math.Round(float64(len(bins)) * bassEdge))
	midsEnd := int(math.Round(float64(len(bins)) * midsEdge))

	return AudioSignal{
		Bass:  bucketAverage(bins[:bassEnd]),
		Mids:  bucketAverage(bins[bassEnd:midsEnd]),
		Highs: bucketAverage(bins[midsEnd:]),
		Level: bucketAverage(bins),
	}
}

// decibelLevel maps a linear magnitude onto [0,1] across the analyser's
// decibel window.
func decibelLevel(magnitude float64) float64 {
	if magnitude <= 0 {
		return 0
	}
	db := 20 * math.Log10(magnitude)
	v := (db - minDecibels) / (maxDecibels - minDecibels)
	return math.Max(0, math.Min(1, v))
}

func bucketAverage(bins []float64) float64 {
	if len(bins) == 0 {
		return 0
	}
	return floats.Sum(bins) / float64(len(bins))
}
