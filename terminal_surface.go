package main

import (
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TerminalSurface blits frames into a terminal as half-block cells. Each
// cell carries two vertical pixels, so a cols x rows terminal is a
// cols x 2*rows pixel surface.
type TerminalSurface struct {
	cache *PerformanceCache
}

func NewTerminalSurface() *TerminalSurface {
	return &TerminalSurface{cache: NewPerformanceCache()}
}

// PixelSize is the surface size for a cols x rows cell area.
func (ts *TerminalSurface) PixelSize(cols, rows int) (int, int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	return cols, rows * 2
}

// Blank fills a cols x rows area with spaces, used for skipped frames.
func (ts *TerminalSurface) Blank(cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	line := strings.Repeat(" ", cols)
	lines := make([]string, rows)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// Blit upscales f onto cols x rows cells, nearest neighbour.
func (ts *TerminalSurface) Blit(f *Frame, cols, rows int) string {
	if f == nil || f.Image == nil {
		return ts.Blank(cols, rows)
	}

	sb := ts.cache.GetBuilder()
	defer ts.cache.ReturnBuilder(sb)

	img := f.Image
	pixelH := rows * 2

	for y := 0; y < pixelH; y += 2 {
		x := 0
		for x < cols {
			// Group horizontal runs with same FG/BG for efficiency
			start := x
			fg := ts.colorAt(img, f.Factor, x, y)
			bg := ts.colorAt(img, f.Factor, x, y+1)

			x++
			for x < cols {
				if ts.colorAt(img, f.Factor, x, y) != fg || ts.colorAt(img, f.Factor, x, y+1) != bg {
					break
				}
				x++
			}

			// Upper Half Block: foreground = top pixel, background = bottom pixel
			style := ts.cache.GetStyleFGBG(fg, bg)
			sb.WriteString(style.Render(strings.Repeat("▀", x-start)))
		}
		if y < pixelH-2 {
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// colorAt maps a surface pixel to its sample and returns it as a hex colour.
func (ts *TerminalSurface) colorAt(img *image.RGBA, factor, x, y int) lipgloss.Color {
	sx := min(x/factor, img.Rect.Dx()-1)
	sy := min(y/factor, img.Rect.Dy()-1)
	i := img.PixOffset(sx, sy)
	return uint8ToHex(img.Pix[i], img.Pix[i+1], img.Pix[i+2])
}
