package main

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Persisted setting keys.
const (
	keySpeed    = "speed"
	keyColor    = "color"
	keyRes      = "res"
	keyDuration = "duration"
	keyMode     = "mode"
	keyDebug    = "debug"
	keyPhase    = "phase"
)

// SettingsStore is a flat key-value table of string settings in SQLite.
type SettingsStore struct {
	conn *sqlx.DB
}

type settingEntry struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// OpenSettingsStore opens or creates the settings database at path.
func OpenSettingsStore(path string) (*SettingsStore, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open settings db: %w", err)
	}
	// one writer at a time; sqlite serializes anyway
	conn.SetMaxOpenConns(1)

	store := &SettingsStore{conn: conn}
	if err := store.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

func (s *SettingsStore) Close() error {
	return s.conn.Close()
}

func (s *SettingsStore) migrate() error {
	_, err := s.conn.Exec(`
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	return err
}

// Get returns the raw value of key and whether it was present.
func (s *SettingsStore) Get(key string) (string, bool, error) {
	var value string
	err := s.conn.Get(&value, `SELECT value FROM settings WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Set writes a single raw value.
func (s *SettingsStore) Set(key, value string) error {
	if _, err := s.conn.Exec(upsertSetting, key, value); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

const upsertSetting = `
	INSERT INTO settings (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value`

// Save writes every key of cfg in one transaction.
func (s *SettingsStore) Save(cfg RenderConfig) error {
	tx, err := s.conn.Beginx()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, e := range encodeSettings(cfg) {
		if _, err := tx.Exec(upsertSetting, e.Key, e.Value); err != nil {
			return fmt.Errorf("save %q: %w", e.Key, err)
		}
	}
	return tx.Commit()
}

// Load reads the stored settings. Missing or malformed keys keep their
// defaults; only a failure to query the table is returned as an error, and
// even then the defaults are returned alongside it.
func (s *SettingsStore) Load(phaseCount int) (RenderConfig, error) {
	cfg := DefaultRenderConfig()

	var entries []settingEntry
	if err := s.conn.Select(&entries, `SELECT key, value FROM settings`); err != nil {
		return cfg, fmt.Errorf("load settings: %w", err)
	}

	for _, e := range entries {
		if err := decodeSetting(&cfg, e.Key, e.Value); err != nil {
			LogWarn("Ignoring stored setting %s=%q: %v", e.Key, e.Value, err)
		}
	}
	return cfg.Normalize(phaseCount), nil
}

func encodeSettings(cfg RenderConfig) []settingEntry {
	return []settingEntry{
		{Key: keySpeed, Value: strconv.FormatFloat(cfg.Speed, 'g', -1, 64)},
		{Key: keyColor, Value: strconv.FormatFloat(cfg.ColorIntensity, 'g', -1, 64)},
		{Key: keyRes, Value: strconv.Itoa(cfg.Resolution)},
		{Key: keyDuration, Value: strconv.FormatFloat(cfg.PhaseDuration, 'g', -1, 64)},
		{Key: keyMode, Value: string(cfg.Mode)},
		{Key: keyDebug, Value: strconv.FormatBool(cfg.Debug)},
		{Key: keyPhase, Value: strconv.Itoa(cfg.ManualPhase)},
	}
}

// decodeSetting applies one stored value to cfg. Unknown keys are ignored.
func decodeSetting(cfg *RenderConfig, key, value string) error {
	var err error
	switch key {
	case keySpeed:
		cfg.Speed, err = parseFinite(value, cfg.Speed)
	case keyColor:
		cfg.ColorIntensity, err = parseFinite(value, cfg.ColorIntensity)
	case keyDuration:
		cfg.PhaseDuration, err = parseFinite(value, cfg.PhaseDuration)
	case keyRes:
		var v int
		if v, err = strconv.Atoi(value); err == nil {
			cfg.Resolution = v
		}
	case keyPhase:
		var v int
		if v, err = strconv.Atoi(value); err == nil {
			cfg.ManualPhase = v
		}
	case keyDebug:
		var v bool
		if v, err = strconv.ParseBool(value); err == nil {
			cfg.Debug = v
		}
	case keyMode:
		switch Mode(value) {
		case ModeAuto, ModeManual:
			cfg.Mode = Mode(value)
		default:
			err = fmt.Errorf("unknown mode")
		}
	}
	return err
}

func parseFinite(value string, fallback float64) (float64, error) {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback, fmt.Errorf("not a finite number")
	}
	return v, nil
}
