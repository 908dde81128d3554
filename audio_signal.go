package main

import "sync/atomic"

// AudioSignal is one analysed snapshot of the playing audio. All fields are
// in [0, 1]; the zero value is silence.
type AudioSignal struct {
	Bass  float64
	Mids  float64
	Highs float64
	Level float64
}

// SignalBus carries the latest AudioSignal from the audio loop to the render
// loop. Readers may see a value one audio frame old.
type SignalBus struct {
	latest atomic.Pointer[AudioSignal]
}

func (b *SignalBus) Store(sig AudioSignal) {
	b.latest.Store(&sig)
}

func (b *SignalBus) Load() AudioSignal {
	if p := b.latest.Load(); p != nil {
		return *p
	}
	return AudioSignal{}
}
