package main

import "math"

// Sample is the geometry of one pixel, measured on the full-resolution
// surface. Angle and Distance are relative to the surface centre.
type Sample struct {
	X, Y     float64
	Angle    float64
	Distance float64
}

// Channels is a colour offset before scaling. Each channel is nominally in
// [-1, 1].
type Channels struct {
	R, G, B float64
}

// Lerp blends c towards o by t.
func (c Channels) Lerp(o Channels, t float64) Channels {
	return Channels{
		R: c.R + (o.R-c.R)*t,
		G: c.G + (o.G-c.G)*t,
		B: c.B + (o.B-c.B)*t,
	}
}

// FieldFunc maps pixel geometry, time and the current audio snapshot to a
// colour offset. Implementations must be pure.
type FieldFunc func(s Sample, t float64, a AudioSignal) Channels

// Phase is a named field function. Its position in the library is its
// selection index.
type Phase struct {
	Name string
	Eval FieldFunc
}

// FieldLibrary is the fixed, ordered phase registry. It is immutable after
// construction.
type FieldLibrary struct {
	phases []Phase
	sin    *SineTable
	noise  *NoiseGenerator
}

// NewFieldLibrary builds the registry. The seed only affects the noise-based
// phase.
func NewFieldLibrary(seed int64) *FieldLibrary {
	lib := &FieldLibrary{
		sin:   NewSineTable(),
		noise: NewNoiseGenerator(seed),
	}
	lib.phases = []Phase{
		{Name: "vortex", Eval: lib.vortex},
		{Name: "waves", Eval: lib.waves},
		{Name: "plasma", Eval: lib.plasma},
		{Name: "spiral", Eval: lib.spiral},
		{Name: "netgrid", Eval: lib.netgrid},
		{Name: "nebula", Eval: lib.nebula},
	}
	return lib
}

func (l *FieldLibrary) Len() int { return len(l.phases) }

func (l *FieldLibrary) Phase(i int) Phase { return l.phases[i] }

// Names lists phase names in selection order.
func (l *FieldLibrary) Names() []string {
	names := make([]string, len(l.phases))
	for i, p := range l.phases {
		names[i] = p.Name
	}
	return names
}

// Index returns the selection index for name, or -1.
func (l *FieldLibrary) Index(name string) int {
	for i, p := range l.phases {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// vortex: radial rings against angular spokes.
func (l *FieldLibrary) vortex(s Sample, t float64, a AudioSignal) Channels {
	return Channels{
		R: l.sin.Sin(s.Distance*(0.02+a.Bass*0.05) - t),
		G: l.sin.Cos(s.Angle*(3+a.Mids*5) + t),
		B: l.sin.Sin(s.Distance*(0.01+a.Highs*0.03) + t),
	}
}

// waves: axis-aligned interference bands.
func (l *FieldLibrary) waves(s Sample, t float64, a AudioSignal) Channels {
	return Channels{
		R: l.sin.Sin(s.X*0.01 + t + a.Mids*10),
		G: l.sin.Sin(s.Y*0.01 + t*1.5),
		B: l.sin.Sin((s.X+s.Y)*0.01 + t + a.Bass*3),
	}
}

func (l *FieldLibrary) plasma(s Sample, t float64, a AudioSignal) Channels {
	v := l.sin.Sin(s.X*(0.02+a.Highs*0.05)+t) +
		l.sin.Sin(s.Y*(0.02+a.Mids*0.03)+t)
	return Channels{
		R: l.sin.Sin(v + t + a.Bass*3),
		G: l.sin.Sin(v + t*1.3),
		B: l.sin.Sin(v + t*1.6 + a.Highs*2),
	}
}

// spiral rotates with t, so bands wind around the centre.
func (l *FieldLibrary) spiral(s Sample, t float64, a AudioSignal) Channels {
	rot := s.Angle + t
	return Channels{
		R: l.sin.Sin(s.Distance*(0.05+a.Bass) - rot + a.Mids*3),
		G: l.sin.Cos(s.Distance*0.03 + rot + t),
		B: l.sin.Sin(s.Distance*0.01 + rot - t + a.Highs*2),
	}
}

// netgrid crosses diagonal bands with a slow x*y moiré.
func (l *FieldLibrary) netgrid(s Sample, t float64, a AudioSignal) Channels {
	return Channels{
		R: l.sin.Sin((s.X+s.Y+t*100)*0.01 + a.Bass*3),
		G: l.sin.Sin((s.X-s.Y+t*50)*0.01 + a.Mids*5),
		B: l.sin.Cos((s.X*s.Y+t*25)*0.00005 + a.Highs*4),
	}
}

func (l *FieldLibrary) nebula(s Sample, t float64, a AudioSignal) Channels {
	if math.IsNaN(s.X) || math.IsNaN(s.Y) || math.IsInf(s.X, 0) || math.IsInf(s.Y, 0) {
		return Channels{}
	}
	n := l.noise.GenerateFBM(s.X*0.004, s.Y*0.004, t*0.2+a.Bass*0.5, 3, 0.5)
	return Channels{
		R: l.sin.Sin(n*4 + t),
		G: l.sin.Sin(n*4 + t*1.2 + a.Mids*3 + 2*math.Pi/3),
		B: l.sin.Sin(n*4 + t*0.8 + a.Highs*2 + 4*math.Pi/3),
	}
}
