package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig holds process-level options. Render settings live in the
// settings store instead; this file only says how to run.
type AppConfig struct {
	Source       string `yaml:"source"` // auto, portaudio, pulse, file, none
	Track        string `yaml:"track"`
	SampleRate   int    `yaml:"sample_rate"`
	BufferSize   int    `yaml:"buffer_size"`
	FPS          int    `yaml:"fps"`
	Display      string `yaml:"display"` // terminal, window
	SettingsDB   string `yaml:"settings_db"`
	LogFile      string `yaml:"log_file"`
	LogDebug     bool   `yaml:"log_debug"`
	Seed         int64  `yaml:"seed"`        // 0 picks one from the clock
	StartPhase   string `yaml:"start_phase"` // phase name to hold in manual mode
	SnapshotDir  string `yaml:"snapshot_dir"`
	WindowWidth  int    `yaml:"window_width"`
	WindowHeight int    `yaml:"window_height"`
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		Source:       "auto",
		SampleRate:   44100,
		BufferSize:   2048,
		FPS:          60,
		Display:      "terminal",
		SettingsDB:   "phase_visualizer.db",
		LogFile:      "phase_visualizer.log",
		SnapshotDir:  ".",
		WindowWidth:  1280,
		WindowHeight: 720,
	}
}

// LoadAppConfig reads a YAML file over the defaults. A missing file is not
// an error.
func LoadAppConfig(path string) (AppConfig, error) {
	cfg := DefaultAppConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultAppConfig(), fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg.validate(), nil
}

// validate replaces values the rest of the program cannot run with.
func (c AppConfig) validate() AppConfig {
	def := DefaultAppConfig()
	if c.SampleRate <= 0 {
		c.SampleRate = def.SampleRate
	}
	// the FFT is happiest with powers of two
	if c.BufferSize < 64 || c.BufferSize&(c.BufferSize-1) != 0 {
		c.BufferSize = def.BufferSize
	}
	if c.FPS <= 0 || c.FPS > 240 {
		c.FPS = def.FPS
	}
	switch c.Display {
	case "terminal", "window":
	default:
		c.Display = def.Display
	}
	switch c.Source {
	case "auto", "portaudio", "pulse", "file", "none":
	default:
		c.Source = def.Source
	}
	if c.WindowWidth <= 0 {
		c.WindowWidth = def.WindowWidth
	}
	if c.WindowHeight <= 0 {
		c.WindowHeight = def.WindowHeight
	}
	if c.SnapshotDir == "" {
		c.SnapshotDir = def.SnapshotDir
	}
	return c
}

// FrameInterval is the tick period for the terminal frontend.
func (c AppConfig) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FPS)
}

// cliOptions are the command-line flags. Flags that are set override the
// config file.
type cliOptions struct {
	configPath string
	waveform   string
	fs         *flag.FlagSet
	overrides  AppConfig
}

func newCLIOptions(args []string) (*cliOptions, error) {
	o := &cliOptions{fs: flag.NewFlagSet("phase_visualizer", flag.ContinueOnError)}
	fl := o.fs

	fl.StringVar(&o.configPath, "config", "phase_visualizer.yaml", "path to the YAML config file")
	fl.StringVar(&o.waveform, "waveform", "", "render the track's waveform to this PNG and exit")

	// audio
	fl.StringVar(&o.overrides.Source, "source", "", "audio source: auto, portaudio, pulse, file, none")
	fl.StringVar(&o.overrides.Track, "track", "", "audio file to play and analyse (wav, mp3, flac)")
	fl.IntVar(&o.overrides.SampleRate, "sample-rate", 0, "capture sample rate in Hz")
	fl.IntVar(&o.overrides.BufferSize, "buffer", 0, "analysis buffer size in frames (power of two)")

	// display
	fl.StringVar(&o.overrides.Display, "display", "", "display surface: terminal or window")
	fl.IntVar(&o.overrides.FPS, "fps", 0, "terminal frame rate")

	// storage
	fl.StringVar(&o.overrides.SettingsDB, "db", "", "settings database path")
	fl.StringVar(&o.overrides.LogFile, "log", "", "log file path")
	fl.BoolVar(&o.overrides.LogDebug, "log-debug", false, "write debug lines to the log")
	fl.Int64Var(&o.overrides.Seed, "seed", 0, "noise and phase seed, 0 for random")
	fl.StringVar(&o.overrides.StartPhase, "phase", "", "start in manual mode on this phase (vortex, waves, plasma, spiral, netgrid, nebula)")

	if err := fl.Parse(args); err != nil {
		return nil, err
	}
	return o, nil
}

// apply overlays every flag the user actually passed.
func (o *cliOptions) apply(cfg AppConfig) AppConfig {
	o.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			cfg.Source = o.overrides.Source
		case "track":
			cfg.Track = o.overrides.Track
		case "sample-rate":
			cfg.SampleRate = o.overrides.SampleRate
		case "buffer":
			cfg.BufferSize = o.overrides.BufferSize
		case "display":
			cfg.Display = o.overrides.Display
		case "fps":
			cfg.FPS = o.overrides.FPS
		case "db":
			cfg.SettingsDB = o.overrides.SettingsDB
		case "log":
			cfg.LogFile = o.overrides.LogFile
		case "log-debug":
			cfg.LogDebug = o.overrides.LogDebug
		case "seed":
			cfg.Seed = o.overrides.Seed
		case "phase":
			cfg.StartPhase = o.overrides.StartPhase
		}
	})
	return cfg.validate()
}
