package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
)

const mprisPrefix = "org.mpris.MediaPlayer2."

// MediaSessionProvider reads MPRIS now-playing data from the session bus.
type MediaSessionProvider struct {
	lastMetadata AudioMetadata
	conn         *dbus.Conn
	lastCheck    time.Time
}

func NewMediaSessionProvider() (*MediaSessionProvider, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}

	return &MediaSessionProvider{
		conn:         conn,
		lastMetadata: DefaultMetadata(),
	}, nil
}

func (msp *MediaSessionProvider) Close() error {
	if msp.conn != nil {
		return msp.conn.Close()
	}
	return nil
}

// GetCurrentMedia returns the playing player's metadata, or the first named
// player if none is playing. Results are cached for two seconds.
func (msp *MediaSessionProvider) GetCurrentMedia() AudioMetadata {
	if time.Since(msp.lastCheck) < 2*time.Second {
		return msp.lastMetadata
	}
	msp.lastCheck = time.Now()

	players, err := msp.listPlayers()
	if err != nil {
		LogError("Failed to list D-Bus names: %v", err)
		return msp.lastMetadata
	}
	if len(players) == 0 {
		return msp.lastMetadata
	}

	var fallback *AudioMetadata
	for _, playerName := range players {
		metadata := msp.queryPlayer(playerName)
		if metadata.IsPlaying {
			msp.lastMetadata = metadata
			return metadata
		}
		if fallback == nil && metadata.AppName != "Unknown" {
			m := metadata
			fallback = &m
		}
	}
	if fallback != nil {
		msp.lastMetadata = *fallback
	}
	return msp.lastMetadata
}

func (msp *MediaSessionProvider) listPlayers() ([]string, error) {
	var names []string
	if err := msp.conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return nil, err
	}

	var players []string
	for _, name := range names {
		if strings.HasPrefix(name, mprisPrefix) {
			players = append(players, name)
		}
	}
	return players, nil
}

func (msp *MediaSessionProvider) queryPlayer(busName string) AudioMetadata {
	obj := msp.conn.Object(busName, "/org/mpris/MediaPlayer2")

	var status string
	if err := obj.Call("org.freedesktop.DBus.Properties.Get", 0, "org.mpris.MediaPlayer2.Player", "PlaybackStatus").Store(&status); err != nil {
		return DefaultMetadata()
	}

	isPlaying := status == "Playing"

	var metadataVariant dbus.Variant
	if err := obj.Call("org.freedesktop.DBus.Properties.Get", 0, "org.mpris.MediaPlayer2.Player", "Metadata").Store(&metadataVariant); err != nil {
		return AudioMetadata{AppName: extractAppName(busName), IsPlaying: isPlaying}
	}

	metadataMap, ok := metadataVariant.Value().(map[string]dbus.Variant)
	if !ok {
		return AudioMetadata{AppName: extractAppName(busName), IsPlaying: isPlaying}
	}

	return metadataFromMap(extractAppName(busName), isPlaying, metadataMap)
}
