package main

import (
	"math"
	"testing"
)

const testPhases = 6

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRenderConfigNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   RenderConfig
		want RenderConfig
	}{
		{
			name: "defaults unchanged",
			in:   DefaultRenderConfig(),
			want: DefaultRenderConfig(),
		},
		{
			name: "clamps high",
			in:   RenderConfig{Speed: 50, ColorIntensity: 9, Resolution: 500, PhaseDuration: 1e6, Mode: ModeManual, ManualPhase: 40},
			want: RenderConfig{Speed: maxSpeed, ColorIntensity: maxColor, Resolution: maxResolution, PhaseDuration: maxDuration, Mode: ModeManual, ManualPhase: testPhases - 1},
		},
		{
			name: "clamps low",
			in:   RenderConfig{Speed: -1, ColorIntensity: -1, Resolution: 0, PhaseDuration: 0, Mode: ModeAuto, ManualPhase: -3},
			want: RenderConfig{Speed: minSpeed, ColorIntensity: minColor, Resolution: minResolution, PhaseDuration: minDuration, Mode: ModeAuto},
		},
		{
			name: "non-finite and unknown fall back",
			in:   RenderConfig{Speed: math.NaN(), ColorIntensity: math.Inf(1), Resolution: 4, PhaseDuration: math.Inf(-1), Mode: "sideways"},
			want: RenderConfig{Speed: 1, ColorIntensity: 1, Resolution: 4, PhaseDuration: 20, Mode: ModeAuto},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(testPhases); got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalizeEmptyRegistry(t *testing.T) {
	c := DefaultRenderConfig()
	c.ManualPhase = 3
	if got := c.Normalize(0).ManualPhase; got != 0 {
		t.Errorf("Expected phase 0 with no phases, got %d", got)
	}
}

func TestSettingsApplySteps(t *testing.T) {
	s := NewSettings(DefaultRenderConfig(), testPhases, nil)

	cfg := s.Apply(ActionSpeedUp)
	if !approx(cfg.Speed, 1.1) {
		t.Errorf("Expected speed 1.1, got %v", cfg.Speed)
	}
	for i := 0; i < 100; i++ {
		cfg = s.Apply(ActionSpeedUp)
	}
	if cfg.Speed != maxSpeed {
		t.Errorf("Expected speed capped at %v, got %v", maxSpeed, cfg.Speed)
	}
	for i := 0; i < 100; i++ {
		cfg = s.Apply(ActionSpeedDown)
	}
	if !approx(cfg.Speed, minSpeed) {
		t.Errorf("Expected speed floored at %v, got %v", minSpeed, cfg.Speed)
	}

	for i := 0; i < 15; i++ {
		cfg = s.Apply(ActionColorDown)
	}
	if cfg.ColorIntensity != 0 {
		t.Errorf("Expected color floored at 0, got %v", cfg.ColorIntensity)
	}

	cfg = s.Apply(ActionResolutionUp)
	if cfg.Resolution != 5 {
		t.Errorf("Expected resolution 5, got %d", cfg.Resolution)
	}
	cfg = s.Apply(ActionDurationDown)
	if cfg.PhaseDuration != 19 {
		t.Errorf("Expected duration 19, got %v", cfg.PhaseDuration)
	}

	cfg = s.Apply(ActionToggleDebug)
	if !cfg.Debug {
		t.Error("Expected debug on")
	}
	if s.Config() != cfg {
		t.Error("Config() disagrees with the snapshot Apply returned")
	}
}

func TestSettingsRepeatedStepsDoNotDrift(t *testing.T) {
	s := NewSettings(DefaultRenderConfig(), testPhases, nil)
	for i := 0; i < 7; i++ {
		s.Apply(ActionColorDown)
	}
	if got := s.Config().ColorIntensity; !approx(got, 0.3) {
		t.Errorf("Expected color 0.3 after seven steps down, got %v", got)
	}
}

func TestSettingsPhaseWraparound(t *testing.T) {
	s := NewSettings(DefaultRenderConfig(), testPhases, nil)

	if got := s.Apply(ActionPrevPhase).ManualPhase; got != testPhases-1 {
		t.Errorf("Expected prev from 0 to wrap to %d, got %d", testPhases-1, got)
	}
	if got := s.Apply(ActionNextPhase).ManualPhase; got != 0 {
		t.Errorf("Expected next to wrap to 0, got %d", got)
	}
}

func TestSettingsModeToggle(t *testing.T) {
	s := NewSettings(DefaultRenderConfig(), testPhases, nil)
	if s.Apply(ActionToggleMode).Mode != ModeManual {
		t.Error("Expected manual after one toggle")
	}
	if s.Apply(ActionToggleMode).Mode != ModeAuto {
		t.Error("Expected auto after two toggles")
	}
}

func TestSettingsSelectPhase(t *testing.T) {
	s := NewSettings(DefaultRenderConfig(), testPhases, nil)

	cfg := s.SelectPhase(3)
	if cfg.Mode != ModeManual || cfg.ManualPhase != 3 {
		t.Errorf("Expected manual phase 3, got %s %d", cfg.Mode, cfg.ManualPhase)
	}
	if got := s.SelectPhase(99).ManualPhase; got != testPhases-1 {
		t.Errorf("Expected out-of-range selection clamped, got %d", got)
	}
}

func TestSettingValueLabels(t *testing.T) {
	names := NewFieldLibrary(1).Names()
	cfg := DefaultRenderConfig()
	cfg.ManualPhase = 2

	for _, row := range settingRows {
		if settingValue(cfg, row.label, names) == "" {
			t.Errorf("Row %q renders an empty value", row.label)
		}
	}
}
