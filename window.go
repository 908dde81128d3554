package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// windowGame drives the visualizer from ebiten's frame loop. Update handles
// input and Draw renders and blits one frame at the window size.
type windowGame struct {
	vis  *Visualizer
	app  AppConfig
	meta AudioMetadata

	field     *ebiten.Image // low-res frame, reallocated on size change
	panelOpen bool
	selected  int
	status    string
}

var windowKeys = map[ebiten.Key]SettingAction{
	ebiten.KeyM:            ActionToggleMode,
	ebiten.KeyD:            ActionToggleDebug,
	ebiten.KeyBracketRight: ActionNextPhase,
	ebiten.KeyBracketLeft:  ActionPrevPhase,
}

// RunWindow opens a resizable window and blocks until it closes.
func RunWindow(vis *Visualizer, app AppConfig) error {
	g := &windowGame{vis: vis, app: app, meta: DefaultMetadata()}
	if label, ok := vis.PlayingTrack(); ok {
		g.meta = TrackMetadata(label)
	}

	ebiten.SetWindowSize(app.WindowWidth, app.WindowHeight)
	ebiten.SetWindowTitle("phase visualizer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil && err != ebiten.Termination {
		return fmt.Errorf("window: %w", err)
	}
	return nil
}

func (g *windowGame) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		LogInfo("User requested quit from window")
		return ebiten.Termination
	}

	settings := g.vis.Settings()
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.panelOpen = !g.panelOpen
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		g.selected = (g.selected - 1 + len(settingRows)) % len(settingRows)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) {
		g.selected = (g.selected + 1) % len(settingRows)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyRight) {
		settings.Apply(settingRows[g.selected].up)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) {
		settings.Apply(settingRows[g.selected].down)
	}
	for key, action := range windowKeys {
		if inpututil.IsKeyJustPressed(key) {
			settings.Apply(action)
		}
	}
	for i := 0; i < min(9, g.vis.Library().Len()); i++ {
		if inpututil.IsKeyJustPressed(ebiten.Key1 + ebiten.Key(i)) {
			settings.SelectPhase(i)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if path, err := SaveSnapshot(g.vis.LastFrame(), g.app.SnapshotDir, time.Now()); err != nil {
			LogError("Snapshot failed: %v", err)
			g.status = "Snapshot failed: " + err.Error()
		} else {
			g.status = "Saved " + path
		}
	}
	return nil
}

func (g *windowGame) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	frame, ok := g.vis.Tick(b.Dx(), b.Dy(), time.Now())
	if ok {
		g.blit(screen, frame)
	}

	cfg := g.vis.Settings().Config()
	var overlay []string
	if cfg.Debug {
		overlay = append(overlay, g.debugLine(frame))
	}
	if g.vis.AudioFailed() {
		overlay = append(overlay, g.vis.AudioStatus())
	}
	if g.panelOpen {
		overlay = append(overlay, g.panelText(cfg))
	}
	if len(overlay) > 0 {
		ebitenutil.DebugPrint(screen, strings.Join(overlay, "\n"))
	}
}

// blit writes the low-res pixels and scales them up to fill the window.
func (g *windowGame) blit(screen *ebiten.Image, frame *Frame) {
	sw, sh := frame.Image.Rect.Dx(), frame.Image.Rect.Dy()
	if g.field == nil || g.field.Bounds().Dx() != sw || g.field.Bounds().Dy() != sh {
		if g.field != nil {
			g.field.Deallocate()
		}
		g.field = ebiten.NewImage(sw, sh)
	}
	g.field.WritePixels(frame.Image.Pix)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(
		float64(frame.SurfaceW)/float64(sw),
		float64(frame.SurfaceH)/float64(sh),
	)
	op.Filter = ebiten.FilterNearest
	screen.DrawImage(g.field, op)
}

func (g *windowGame) debugLine(frame *Frame) string {
	st := g.vis.Phase()
	names := g.vis.Library().Names()
	grid := "skipped"
	if frame != nil {
		grid = fmt.Sprintf("%dx%d", frame.Image.Rect.Dx(), frame.Image.Rect.Dy())
	}
	return fmt.Sprintf("%.0f fps | grid %s | %s -> %s %.2f",
		g.vis.FPS(), grid, names[st.Current], names[st.Next], st.Transition)
}

func (g *windowGame) panelText(cfg RenderConfig) string {
	names := g.vis.Library().Names()
	var b strings.Builder
	b.WriteString("SETTINGS (arrows to edit, tab to hide)\n")
	for i, row := range settingRows {
		cursor := "  "
		if i == g.selected {
			cursor = "> "
		}
		fmt.Fprintf(&b, "%s%-10s %s\n", cursor, row.label, settingValue(cfg, row.label, names))
	}
	b.WriteString("PHASES\n")
	st := g.vis.Phase()
	for i, name := range names {
		marker := " "
		if i == st.Current {
			marker = "*"
		}
		fmt.Fprintf(&b, " %s%d %s\n", marker, i+1, name)
	}
	fmt.Fprintf(&b, "%s\n%s - %s\n", g.vis.AudioStatus(), g.meta.AppName, g.meta.SongName)
	if g.status != "" {
		b.WriteString(g.status + "\n")
	}
	return b.String()
}

// Layout keeps the screen at the window's size so the field fills it.
func (g *windowGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
