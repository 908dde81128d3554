package main

import (
	"strings"
	"testing"

	"github.com/godbus/dbus/v5"
)

func TestMeterSettles(t *testing.T) {
	m := newMeter("bass", 60)
	for i := 0; i < 300; i++ {
		m.update(0.5)
	}
	if m.pos < 0.49 || m.pos > 0.51 {
		t.Errorf("Expected the meter to settle near 0.5, got %v", m.pos)
	}
	if n := strings.Count(m.view(), "█"); n < meterWidth/2-1 || n > meterWidth/2 {
		t.Errorf("Expected a half-full bar, got %q", m.view())
	}
}

func TestCrossFadeSwatch(t *testing.T) {
	p := newSettingsPanel(NewFieldLibrary(1).Names(), 60)

	start := p.crossFadeSwatch(PhaseState{Current: 1, Next: 3, Transition: 0})
	if d := start.DistanceLab(p.accents[1]); d > 1e-6 {
		t.Errorf("At transition 0 the swatch should be the current accent, distance %v", d)
	}
	end := p.crossFadeSwatch(PhaseState{Current: 1, Next: 3, Transition: 1})
	if d := end.DistanceLab(p.accents[3]); d > 1e-6 {
		t.Errorf("At transition 1 the swatch should be the next accent, distance %v", d)
	}

	empty := &settingsPanel{}
	if c := empty.crossFadeSwatch(PhaseState{}); c.Hex() != "#000000" {
		t.Errorf("Expected black with no phases, got %s", c.Hex())
	}
}

func TestPanelViewListsPhases(t *testing.T) {
	names := NewFieldLibrary(1).Names()
	p := newSettingsPanel(names, 60)
	out := p.view(panelState{
		cfg:      DefaultRenderConfig(),
		names:    names,
		phase:    PhaseState{Current: 0, Next: 1, Transition: 0.5},
		audio:    "Audio: off",
		metadata: DefaultMetadata(),
	})
	for _, name := range names {
		if !strings.Contains(out, name) {
			t.Errorf("Panel is missing phase %q", name)
		}
	}
	for _, row := range settingRows {
		if !strings.Contains(out, row.label) {
			t.Errorf("Panel is missing row %q", row.label)
		}
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer title", 8, "a lon..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, ""},
		{"日本語のタイトル", 5, "日本..."},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestExtractAppName(t *testing.T) {
	if got := extractAppName("org.mpris.MediaPlayer2.spotify"); got != "Spotify" {
		t.Errorf("Expected Spotify, got %q", got)
	}
	if got := extractAppName("org.mpris"); got != "Unknown" {
		t.Errorf("Expected Unknown, got %q", got)
	}
}

func TestMetadataFromMap(t *testing.T) {
	md := metadataFromMap("Spotify", true, map[string]dbus.Variant{
		"xesam:artist": dbus.MakeVariant([]string{"A", "B"}),
		"xesam:title":  dbus.MakeVariant("Song"),
		"xesam:album":  dbus.MakeVariant("Record"),
	})
	if md.ArtistName != "A, B" || md.SongName != "Song" || md.AlbumName != "Record" || !md.IsPlaying {
		t.Errorf("Unexpected metadata %+v", md)
	}

	// album stands in for a missing artist
	md = metadataFromMap("vlc", false, map[string]dbus.Variant{
		"xesam:album": dbus.MakeVariant("Record"),
	})
	if md.ArtistName != "Record" || md.IsPlaying {
		t.Errorf("Unexpected metadata %+v", md)
	}
}

func TestRenderMetadata(t *testing.T) {
	out := RenderMetadata(TrackMetadata("song.wav"), 30)
	if !strings.Contains(out, "song.wav") || !strings.Contains(out, "PLAYING") {
		t.Errorf("Unexpected now-playing block %q", out)
	}
	if strings.Contains(out, "Artist") {
		t.Error("Empty artist should be omitted")
	}
}
