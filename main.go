package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	opts, err := newCLIOptions(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		os.Exit(2)
	}

	app, err := LoadAppConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
	}
	app = opts.apply(app)

	if opts.waveform != "" {
		if app.Track == "" {
			log.Fatal("-waveform needs -track")
		}
		if err := generateWaveform(app.Track, opts.waveform); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Waveform written to %s\n", opts.waveform)
		return
	}

	if err := InitLogger(app.LogFile, app.LogDebug); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	defer CloseLogger()

	defer func() {
		if r := recover(); r != nil {
			LogPanic(r, "main")
			panic(r)
		}
	}()

	if err := run(app); err != nil {
		LogError("%v", err)
		log.Fatal(err)
	}
}

func run(app AppConfig) error {
	seed := app.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	LogInfo("Config: source=%s display=%s fps=%d buffer=%d seed=%d", app.Source, app.Display, app.FPS, app.BufferSize, seed)

	lib := NewFieldLibrary(seed)
	phaseCount := lib.Len()

	// An unreadable settings database only costs persistence.
	cfg := DefaultRenderConfig()
	store, err := OpenSettingsStore(app.SettingsDB)
	if err != nil {
		LogError("Settings store unavailable, running unpersisted: %v", err)
		store = nil
	} else {
		defer store.Close()
		if cfg, err = store.Load(phaseCount); err != nil {
			LogError("Loading settings: %v", err)
		}
	}

	settings := NewSettings(cfg, phaseCount, store)
	if app.StartPhase != "" {
		if i := lib.Index(app.StartPhase); i >= 0 {
			settings.SelectPhase(i)
		} else {
			LogWarn("Unknown phase %q, keeping stored settings", app.StartPhase)
		}
	}

	vis := NewVisualizer(lib, seed, settings, time.Now())
	defer vis.Close()

	if app.Display == "window" {
		stream, err := StartAudio(app)
		vis.AttachAudio(stream, err, app.BufferSize)
		return RunWindow(vis, app)
	}

	var media *MediaSessionProvider
	if m, err := NewMediaSessionProvider(); err != nil {
		LogInfo("Now-playing metadata unavailable: %v", err)
	} else {
		media = m
		defer media.Close()
	}

	p := tea.NewProgram(initialModel(vis, app, media), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
