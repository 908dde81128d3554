package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const footerRows = 1

type model struct {
	width  int
	height int

	vis      *Visualizer
	app      AppConfig
	surface  *TerminalSurface
	panel    *settingsPanel
	media    *MediaSessionProvider
	metadata AudioMetadata

	panelOpen bool
	selected  int
	view      string
	status    string
	ready     bool
}

type (
	tickMsg         time.Time
	metadataMsg     AudioMetadata
	audioStartedMsg struct {
		stream *AudioStream
		err    error
	}
)

func initialModel(vis *Visualizer, app AppConfig, media *MediaSessionProvider) model {
	LogInfo("Creating initial TUI model")

	return model{
		vis:      vis,
		app:      app,
		surface:  NewTerminalSurface(),
		panel:    newSettingsPanel(vis.Library().Names(), app.FPS),
		media:    media,
		metadata: DefaultMetadata(),
	}
}

func (m model) Init() tea.Cmd {
	LogInfo("TUI Init() called")
	return tea.Batch(
		tickCmd(m.app.FrameInterval()),
		startAudioCmd(m.app),
		pollMetadataCmd(m.media, 0),
	)
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// startAudioCmd activates audio off the UI goroutine; the result comes back
// as an audioStartedMsg.
func startAudioCmd(app AppConfig) tea.Cmd {
	return func() tea.Msg {
		stream, err := StartAudio(app)
		return audioStartedMsg{stream: stream, err: err}
	}
}

func pollMetadataCmd(media *MediaSessionProvider, delay time.Duration) tea.Cmd {
	if media == nil {
		return nil
	}
	return func() tea.Msg {
		time.Sleep(delay)
		return metadataMsg(media.GetCurrentMedia())
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		LogInfo("Window resized: %dx%d", m.width, m.height)

	case tickMsg:
		m.renderFrame(time.Time(msg))
		return m, tickCmd(m.app.FrameInterval())

	case audioStartedMsg:
		m.vis.AttachAudio(msg.stream, msg.err, m.app.BufferSize)
		if label, ok := m.vis.PlayingTrack(); ok {
			m.metadata = TrackMetadata(label)
		}

	case metadataMsg:
		if _, ok := m.vis.PlayingTrack(); !ok {
			m.metadata = AudioMetadata(msg)
		}
		return m, pollMetadataCmd(m.media, 2*time.Second)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	settings := m.vis.Settings()

	switch key := msg.String(); key {
	case "q", "ctrl+c", "esc":
		LogInfo("User requested quit via key: %s", key)
		return m, tea.Quit
	case "tab":
		m.panelOpen = !m.panelOpen
	case "up", "k":
		m.selected = (m.selected - 1 + len(settingRows)) % len(settingRows)
	case "down", "j":
		m.selected = (m.selected + 1) % len(settingRows)
	case "right", "l", "+":
		settings.Apply(settingRows[m.selected].up)
	case "left", "h", "-":
		settings.Apply(settingRows[m.selected].down)
	case "m":
		settings.Apply(ActionToggleMode)
	case "d":
		settings.Apply(ActionToggleDebug)
	case "]":
		settings.Apply(ActionNextPhase)
	case "[":
		settings.Apply(ActionPrevPhase)
	case "s":
		path, err := SaveSnapshot(m.vis.LastFrame(), m.app.SnapshotDir, time.Now())
		if err != nil {
			LogError("Snapshot failed: %v", err)
			m.status = "Snapshot failed: " + err.Error()
		} else {
			LogInfo("Snapshot saved to %s", path)
			m.status = "Saved " + path
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < m.vis.Library().Len() {
				settings.SelectPhase(i)
			}
		}
	}
	return m, nil
}

// renderArea is the cell area left for the field.
func (m model) renderArea() (cols, rows int) {
	cols = m.width
	if m.panelOpen {
		cols -= panelWidth
	}
	rows = m.height - footerRows
	return max(cols, 0), max(rows, 0)
}

func (m *model) renderFrame(now time.Time) {
	m.panel.update(m.vis.Signal())
	if !m.ready {
		return
	}

	cols, rows := m.renderArea()
	w, h := m.surface.PixelSize(cols, rows)
	frame, ok := m.vis.Tick(w, h, now)
	if !ok {
		m.view = m.surface.Blank(cols, rows)
		return
	}
	m.view = m.surface.Blit(frame, cols, rows)
}

var footerStyle = lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("#888888"))

func (m model) View() string {
	if !m.ready || m.width == 0 {
		return "Initializing visualizer..."
	}

	body := m.view
	if m.panelOpen {
		cfg := m.vis.Settings().Config()
		panel := m.panel.view(panelState{
			cfg:      cfg,
			names:    m.vis.Library().Names(),
			phase:    m.vis.Phase(),
			selected: m.selected,
			audio:    m.vis.AudioStatus(),
			audioErr: m.vis.AudioFailed(),
			metadata: m.metadata,
			status:   m.status,
		})
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, panel)
	}

	return body + "\n" + footerStyle.Render(truncateString(m.footer(), m.width))
}

func (m model) footer() string {
	cfg := m.vis.Settings().Config()
	if !cfg.Debug {
		text := "q quit | tab settings | m mode | [ ] phase | s snapshot"
		if m.vis.AudioFailed() {
			text = m.vis.AudioStatus() + " | " + text
		}
		return text
	}

	names := m.vis.Library().Names()
	st := m.vis.Phase()
	cols, rows := m.renderArea()
	w, h := m.surface.PixelSize(cols, rows)
	sig := m.vis.Signal()
	return fmt.Sprintf("%.0f fps | grid %dx%d | %s -> %s %.2f | t=%.2f | b%.2f m%.2f h%.2f",
		m.vis.FPS(),
		w/cfg.Resolution, h/cfg.Resolution,
		names[st.Current], names[st.Next], st.Transition,
		m.vis.renderer.Time(),
		sig.Bass, sig.Mids, sig.Highs,
	)
}
