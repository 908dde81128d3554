package main

import (
	"image"
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

const sineTableSize = 8192

// SineTable is an interpolated sine lookup. It is never written after
// NewSineTable returns, so field functions can share one freely.
type SineTable struct {
	table []float64
	size  int
}

func NewSineTable() *SineTable {
	table := make([]float64, sineTableSize)
	for i := 0; i < sineTableSize; i++ {
		angle := float64(i) / float64(sineTableSize) * 2 * math.Pi
		table[i] = math.Sin(angle)
	}
	return &SineTable{table: table, size: sineTableSize}
}

// Sin returns 0 for NaN and infinite angles.
func (st *SineTable) Sin(angle float64) float64 {
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return 0
	}
	normalized := math.Mod(angle, 2*math.Pi)
	if normalized < 0 {
		normalized += 2 * math.Pi
	}
	tablePos := (normalized / (2 * math.Pi)) * float64(st.size)
	index := int(tablePos)
	fraction := tablePos - float64(index)
	val1 := st.table[index%st.size]
	val2 := st.table[(index+1)%st.size]
	return val1 + fraction*(val2-val1)
}

func (st *SineTable) Cos(angle float64) float64 {
	return st.Sin(angle + math.Pi/2)
}

// PerformanceCache pools the per-frame buffers and lipgloss styles so the
// 60 FPS paths do not allocate on every tick.
type PerformanceCache struct {
	framePool   sync.Pool
	styleCache  map[string]lipgloss.Style
	styleMu     sync.RWMutex
	builderPool sync.Pool
}

func NewPerformanceCache() *PerformanceCache {
	return &PerformanceCache{
		styleCache: make(map[string]lipgloss.Style, 3000),
		framePool: sync.Pool{
			New: func() interface{} {
				return image.NewRGBA(image.Rect(0, 0, 0, 0))
			},
		},
		builderPool: sync.Pool{
			New: func() interface{} {
				return new(strings.Builder)
			},
		},
	}
}

// GetImage returns a width x height RGBA image, reusing pooled pixel memory
// when it is large enough. Contents are not cleared.
func (pc *PerformanceCache) GetImage(width, height int) *image.RGBA {
	img := pc.framePool.Get().(*image.RGBA)
	need := width * height * 4
	if cap(img.Pix) < need {
		return image.NewRGBA(image.Rect(0, 0, width, height))
	}
	img.Pix = img.Pix[:need]
	img.Stride = width * 4
	img.Rect = image.Rect(0, 0, width, height)
	return img
}

func (pc *PerformanceCache) ReturnImage(img *image.RGBA) {
	if img == nil {
		return
	}
	pc.framePool.Put(img)
}

func (pc *PerformanceCache) GetStyleFGBG(fg, bg lipgloss.Color) lipgloss.Style {
	key := string(fg) + "," + string(bg)
	pc.styleMu.RLock()
	style, ok := pc.styleCache[key]
	pc.styleMu.RUnlock()
	if ok {
		return style
	}

	pc.styleMu.Lock()
	defer pc.styleMu.Unlock()
	if style, ok = pc.styleCache[key]; ok {
		return style
	}
	style = lipgloss.NewStyle().Foreground(fg).Background(bg)
	pc.styleCache[key] = style
	return style
}

func (pc *PerformanceCache) GetBuilder() *strings.Builder {
	sb := pc.builderPool.Get().(*strings.Builder)
	sb.Reset()
	return sb
}

func (pc *PerformanceCache) ReturnBuilder(sb *strings.Builder) {
	pc.builderPool.Put(sb)
}

func uint8ToHex(r, g, b uint8) lipgloss.Color {
	const hex = "0123456789ABCDEF"
	var res [7]byte
	res[0] = '#'
	res[1] = hex[r>>4]
	res[2] = hex[r&0x0F]
	res[3] = hex[g>>4]
	res[4] = hex[g&0x0F]
	res[5] = hex[b>>4]
	res[6] = hex[b&0x0F]
	return lipgloss.Color(string(res[:]))
}
