package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/godbus/dbus/v5"
)

// AudioMetadata represents currently playing media information
type AudioMetadata struct {
	AppName    string
	ArtistName string
	SongName   string
	AlbumName  string
	IsPlaying  bool
}

// DefaultMetadata returns a placeholder when no media info is available
func DefaultMetadata() AudioMetadata {
	return AudioMetadata{
		AppName:    "No Media Playing",
		ArtistName: "Unknown Artist",
		SongName:   "Listening...",
		IsPlaying:  false,
	}
}

// TrackMetadata describes a file the visualizer is playing itself.
func TrackMetadata(label string) AudioMetadata {
	return AudioMetadata{
		AppName:   "phase_visualizer",
		SongName:  label,
		IsPlaying: true,
	}
}

var (
	nowPlayingLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF")).Bold(true)
	nowPlayingValue = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	nowPlayingState = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00"))
)

// RenderMetadata renders the now-playing block of the settings panel.
func RenderMetadata(metadata AudioMetadata, width int) string {
	var output strings.Builder

	valueWidth := width - 10
	output.WriteString(nowPlayingLabel.Render("Source "))
	output.WriteString(nowPlayingValue.Render(truncateString(metadata.AppName, valueWidth)))
	output.WriteString("\n")

	if metadata.ArtistName != "" {
		output.WriteString(nowPlayingLabel.Render("Artist "))
		output.WriteString(nowPlayingValue.Render(truncateString(metadata.ArtistName, valueWidth)))
		output.WriteString("\n")
	}

	if metadata.SongName != "" {
		output.WriteString(nowPlayingLabel.Render("Track  "))
		output.WriteString(nowPlayingValue.Render(truncateString(metadata.SongName, valueWidth)))
		output.WriteString("\n")
	}

	statusChar := "█"
	if !metadata.IsPlaying {
		statusChar = "▌▌"
	}
	output.WriteString(nowPlayingState.Render(fmt.Sprintf("[%s] %s", statusChar, getStatusText(metadata.IsPlaying))))

	return output.String()
}

func getStatusText(isPlaying bool) string {
	if isPlaying {
		return "PLAYING"
	}
	return "PAUSED"
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:max(maxLen, 0)])
	}
	return string(r[:maxLen-3]) + "..."
}

func extractAppName(busName string) string {
	parts := strings.Split(busName, ".")
	if len(parts) < 4 {
		return "Unknown"
	}

	appName := parts[3]

	if len(appName) > 0 {
		appName = strings.ToUpper(appName[:1]) + appName[1:]
	}

	return appName
}

func metadataFromMap(appName string, isPlaying bool, metadata map[string]dbus.Variant) AudioMetadata {
	artist := extractStringArray(metadata, "xesam:artist")
	album := extractString(metadata, "xesam:album")
	title := extractString(metadata, "xesam:title")
	if artist == "" && album != "" {
		artist = album
	}

	return AudioMetadata{
		AppName:    appName,
		ArtistName: artist,
		SongName:   title,
		AlbumName:  album,
		IsPlaying:  isPlaying,
	}
}

func extractString(metadata map[string]dbus.Variant, key string) string {
	variant, ok := metadata[key]
	if !ok {
		return ""
	}

	str, ok := variant.Value().(string)
	if !ok {
		return ""
	}

	return str
}

func extractStringArray(metadata map[string]dbus.Variant, key string) string {
	variant, ok := metadata[key]
	if !ok {
		return ""
	}

	strArray, ok := variant.Value().([]string)
	if ok && len(strArray) > 0 {
		return strings.Join(strArray, ", ")
	}

	str, ok := variant.Value().(string)
	if ok {
		return str
	}

	return ""
}
