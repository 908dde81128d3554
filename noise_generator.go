package main

import (
	"github.com/ojrac/opensimplex-go"
)

// NoiseGenerator wraps a seeded opensimplex source. It holds no animation
// state; time is always passed in by the caller.
type NoiseGenerator struct {
	noise opensimplex.Noise
}

func NewNoiseGenerator(seed int64) *NoiseGenerator {
	return &NoiseGenerator{
		noise: opensimplex.New(seed),
	}
}

// GenerateFBM sums octaves of 3D noise and normalizes back to [-1, 1].
func (ng *NoiseGenerator) GenerateFBM(x, y, z float64, octaves int, persistence float64) float64 {
	var total, frequency, amplitude, maxValue float64 = 0, 1, 1, 0

	for i := 0; i < octaves; i++ {
		total += ng.noise.Eval3(x*frequency, y*frequency, z*frequency) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	if maxValue == 0 {
		return 0
	}
	return total / maxValue
}
