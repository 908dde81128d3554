package main

import "math"

type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeManual Mode = "manual"
)

// Slider ranges for the settings panel.
const (
	minSpeed, maxSpeed, speedStep          = 0.1, 5.0, 0.1
	minColor, maxColor, colorStep          = 0.0, 2.0, 0.1
	minResolution, maxResolution           = 1, 32
	minDuration, maxDuration, durationStep = 1.0, 600.0, 1.0
)

// RenderConfig is the per-frame settings snapshot. Frontends hold it by value
// and hand a copy to every RenderFrame call.
type RenderConfig struct {
	Speed          float64
	ColorIntensity float64
	Resolution     int
	PhaseDuration  float64 // seconds a phase is held in auto mode
	Mode           Mode
	Debug          bool
	ManualPhase    int
}

func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Speed:          1,
		ColorIntensity: 1,
		Resolution:     4,
		PhaseDuration:  20,
		Mode:           ModeAuto,
		Debug:          false,
		ManualPhase:    0,
	}
}

// Normalize clamps every field into range. Non-finite values and unknown
// modes are replaced by their defaults.
func (c RenderConfig) Normalize(phaseCount int) RenderConfig {
	def := DefaultRenderConfig()

	c.Speed = clampOr(c.Speed, minSpeed, maxSpeed, def.Speed)
	c.ColorIntensity = clampOr(c.ColorIntensity, minColor, maxColor, def.ColorIntensity)
	c.PhaseDuration = clampOr(c.PhaseDuration, minDuration, maxDuration, def.PhaseDuration)

	if c.Resolution < minResolution {
		c.Resolution = minResolution
	} else if c.Resolution > maxResolution {
		c.Resolution = maxResolution
	}

	if c.Mode != ModeAuto && c.Mode != ModeManual {
		c.Mode = def.Mode
	}

	if phaseCount <= 0 || c.ManualPhase < 0 {
		c.ManualPhase = 0
	} else if c.ManualPhase >= phaseCount {
		c.ManualPhase = phaseCount - 1
	}
	return c
}

func clampOr(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return math.Max(lo, math.Min(hi, v))
}

// SettingAction is one discrete edit from a frontend.
type SettingAction int

const (
	ActionSpeedUp SettingAction = iota
	ActionSpeedDown
	ActionColorUp
	ActionColorDown
	ActionResolutionUp
	ActionResolutionDown
	ActionDurationUp
	ActionDurationDown
	ActionToggleMode
	ActionToggleDebug
	ActionNextPhase
	ActionPrevPhase
)

// settingRow is one adjustable row of the settings panel.
type settingRow struct {
	label string
	up    SettingAction
	down  SettingAction
}

var settingRows = []settingRow{
	{label: "Speed", up: ActionSpeedUp, down: ActionSpeedDown},
	{label: "Color", up: ActionColorUp, down: ActionColorDown},
	{label: "Resolution", up: ActionResolutionUp, down: ActionResolutionDown},
	{label: "Duration", up: ActionDurationUp, down: ActionDurationDown},
	{label: "Mode", up: ActionToggleMode, down: ActionToggleMode},
	{label: "Debug", up: ActionToggleDebug, down: ActionToggleDebug},
	{label: "Phase", up: ActionNextPhase, down: ActionPrevPhase},
}

// Settings is the settings-change handler. It owns the current snapshot and
// writes every change through to the store.
type Settings struct {
	cfg        RenderConfig
	phaseCount int
	store      *SettingsStore
}

// NewSettings wraps an initial config. store may be nil for an unpersisted
// session.
func NewSettings(cfg RenderConfig, phaseCount int, store *SettingsStore) *Settings {
	return &Settings{
		cfg:        cfg.Normalize(phaseCount),
		phaseCount: phaseCount,
		store:      store,
	}
}

func (s *Settings) Config() RenderConfig { return s.cfg }

// Apply performs action and returns the new snapshot.
func (s *Settings) Apply(action SettingAction) RenderConfig {
	c := s.cfg
	switch action {
	case ActionSpeedUp:
		c.Speed = roundStep(c.Speed+speedStep, speedStep)
	case ActionSpeedDown:
		c.Speed = roundStep(c.Speed-speedStep, speedStep)
	case ActionColorUp:
		c.ColorIntensity = roundStep(c.ColorIntensity+colorStep, colorStep)
	case ActionColorDown:
		c.ColorIntensity = roundStep(c.ColorIntensity-colorStep, colorStep)
	case ActionResolutionUp:
		c.Resolution++
	case ActionResolutionDown:
		c.Resolution--
	case ActionDurationUp:
		c.PhaseDuration += durationStep
	case ActionDurationDown:
		c.PhaseDuration -= durationStep
	case ActionToggleMode:
		if c.Mode == ModeAuto {
			c.Mode = ModeManual
		} else {
			c.Mode = ModeAuto
		}
	case ActionToggleDebug:
		c.Debug = !c.Debug
	case ActionNextPhase:
		if s.phaseCount > 0 {
			c.ManualPhase = (c.ManualPhase + 1) % s.phaseCount
		}
	case ActionPrevPhase:
		if s.phaseCount > 0 {
			c.ManualPhase = (c.ManualPhase - 1 + s.phaseCount) % s.phaseCount
		}
	}
	return s.commit(c)
}

// SelectPhase switches to manual mode on phase i.
func (s *Settings) SelectPhase(i int) RenderConfig {
	c := s.cfg
	c.Mode = ModeManual
	c.ManualPhase = i
	return s.commit(c)
}

func (s *Settings) commit(c RenderConfig) RenderConfig {
	s.cfg = c.Normalize(s.phaseCount)
	if s.store != nil {
		if err := s.store.Save(s.cfg); err != nil {
			LogError("Failed to persist settings: %v", err)
		}
	}
	return s.cfg
}

// roundStep snaps v to the step grid so repeated float steps do not drift.
func roundStep(v, step float64) float64 {
	return math.Round(v/step) * step
}
