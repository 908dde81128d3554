package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	panelWidth = 34
	meterWidth = 18
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#FF00FF")).
			Padding(0, 1).
			Width(panelWidth - 2)
	panelTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF00FF"))
	panelRow      = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	panelSelected = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1A0033")).Background(lipgloss.Color("#00FFFF"))
	panelFaint    = lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("#888888"))
	panelError    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555"))
)

// meter is a spring-smoothed level bar. The spring only affects the panel;
// the renderer always sees the raw signal.
type meter struct {
	label  string
	pos    float64
	vel    float64
	spring harmonica.Spring
}

func newMeter(label string, fps int) meter {
	return meter{label: label, spring: harmonica.NewSpring(harmonica.FPS(fps), 8.0, 0.6)}
}

func (m *meter) update(target float64) {
	m.pos, m.vel = m.spring.Update(m.pos, m.vel, target)
}

func (m meter) view() string {
	level := max(0, min(1, m.pos))
	filled := int(level * meterWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", meterWidth-filled)
	return fmt.Sprintf("%-6s %s", m.label, bar)
}

// settingsPanel renders the togglable settings sidebar.
type settingsPanel struct {
	meters  [4]meter
	accents []colorful.Color
}

func newSettingsPanel(names []string, fps int) *settingsPanel {
	p := &settingsPanel{
		meters: [4]meter{
			newMeter("bass", fps),
			newMeter("mids", fps),
			newMeter("highs", fps),
			newMeter("level", fps),
		},
		accents: make([]colorful.Color, len(names)),
	}
	for i := range names {
		p.accents[i] = phaseAccent(i, len(names))
	}
	return p
}

// phaseAccent spreads phases evenly around the hue wheel.
func phaseAccent(i, n int) colorful.Color {
	if n <= 0 {
		n = 1
	}
	return colorful.Hsv(360*float64(i)/float64(n), 0.75, 0.95)
}

func (p *settingsPanel) update(sig AudioSignal) {
	p.meters[0].update(sig.Bass)
	p.meters[1].update(sig.Mids)
	p.meters[2].update(sig.Highs)
	p.meters[3].update(sig.Level)
}

// crossFadeSwatch is the blend of the two active phase accents at the
// current transition, in Lab space.
func (p *settingsPanel) crossFadeSwatch(st PhaseState) colorful.Color {
	if len(p.accents) == 0 {
		return colorful.Color{}
	}
	a := p.accents[st.Current%len(p.accents)]
	b := p.accents[st.Next%len(p.accents)]
	return a.BlendLab(b, st.Transition).Clamped()
}

type panelState struct {
	cfg      RenderConfig
	names    []string
	phase    PhaseState
	selected int
	audio    string
	audioErr bool
	metadata AudioMetadata
	status   string
}

func (p *settingsPanel) view(s panelState) string {
	var b strings.Builder

	b.WriteString(panelTitle.Render("SETTINGS"))
	b.WriteString("\n")
	for i, row := range settingRows {
		line := fmt.Sprintf("%-10s %s", row.label, settingValue(s.cfg, row.label, s.names))
		if i == s.selected {
			b.WriteString(panelSelected.Render("▶ " + line))
		} else {
			b.WriteString(panelRow.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(panelTitle.Render("PHASES"))
	b.WriteString("\n")
	for i, name := range s.names {
		marker := "  "
		switch {
		case i == s.phase.Current && i == s.phase.Next:
			marker = "● "
		case i == s.phase.Current:
			marker = "◐ "
		case i == s.phase.Next:
			marker = "◑ "
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(p.accents[i].Hex()))
		b.WriteString(style.Render(fmt.Sprintf("%s%d %s", marker, i+1, name)))
		b.WriteString("\n")
	}
	swatch := p.crossFadeSwatch(s.phase)
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(swatch.Hex())).Render(strings.Repeat("█", 6)))
	b.WriteString(panelFaint.Render(fmt.Sprintf(" fade %3.0f%%", s.phase.Transition*100)))
	b.WriteString("\n\n")

	b.WriteString(panelTitle.Render("AUDIO"))
	b.WriteString("\n")
	for _, m := range p.meters {
		b.WriteString(panelRow.Render(m.view()))
		b.WriteString("\n")
	}
	if s.audioErr {
		b.WriteString(panelError.Render(truncateString(s.audio, panelWidth-4)))
	} else {
		b.WriteString(panelFaint.Render(truncateString(s.audio, panelWidth-4)))
	}
	b.WriteString("\n\n")

	b.WriteString(RenderMetadata(s.metadata, panelWidth-4))
	if s.status != "" {
		b.WriteString("\n\n")
		b.WriteString(panelFaint.Render(truncateString(s.status, panelWidth-4)))
	}

	return panelStyle.Render(b.String())
}

func settingValue(cfg RenderConfig, label string, names []string) string {
	switch label {
	case "Speed":
		return fmt.Sprintf("%.1fx", cfg.Speed)
	case "Color":
		return fmt.Sprintf("%.1f", cfg.ColorIntensity)
	case "Resolution":
		return fmt.Sprintf("1/%d", cfg.Resolution)
	case "Duration":
		return fmt.Sprintf("%.0fs", cfg.PhaseDuration)
	case "Mode":
		return string(cfg.Mode)
	case "Debug":
		if cfg.Debug {
			return "on"
		}
		return "off"
	case "Phase":
		if cfg.ManualPhase >= 0 && cfg.ManualPhase < len(names) {
			return names[cfg.ManualPhase]
		}
	}
	return ""
}
