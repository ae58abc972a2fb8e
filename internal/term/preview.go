// Package term draws frames on a terminal with tcell.
package term

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/coreman2200/funtimes-embers/internal/particle"
	"github.com/coreman2200/funtimes-embers/internal/render"
)

// Cell is one rasterized terminal cell. A zero Rune is empty.
type Cell struct {
	Rune    rune
	R, G, B float32
	lum     float32
}

func glyph(size float32) rune {
	switch {
	case size < 0.25:
		return '.'
	case size < 0.6:
		return '+'
	case size < 1.5:
		return '*'
	default:
		return '@'
	}
}

// Rasterize projects every particle through cam onto a cols x rows grid.
// The brightest particle of a cell wins it.
func Rasterize(dst []Cell, cols, rows int, cam render.Camera, b particle.Buffers) {
	for i := range dst {
		dst[i] = Cell{}
	}
	for i := 0; i < b.Len(); i++ {
		p := mgl64.Vec3{float64(b.Positions[i*3]), float64(b.Positions[i*3+1]), float64(b.Positions[i*3+2])}
		col, row, ok := cam.Cell(p, cols, rows)
		if !ok {
			continue
		}
		a := b.Opacities[i]
		r, g, bl := b.Colors[i*3]*a, b.Colors[i*3+1]*a, b.Colors[i*3+2]*a
		lum := 0.2126*r + 0.7152*g + 0.0722*bl
		c := &dst[row*cols+col]
		if c.Rune != 0 && c.lum >= lum {
			continue
		}
		*c = Cell{Rune: glyph(b.Sizes[i]), R: r, G: g, B: bl, lum: lum}
	}
}

func channel(x float32) int32 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 255
	}
	return int32(x*255 + 0.5)
}

// Preview is a render.Sink on a tcell screen. The bottom row is a status line.
type Preview struct {
	Camera render.Camera

	mu     sync.Mutex
	screen tcell.Screen
	cells  []Cell
	status string
	done   bool
}

// Open initialises the terminal.
func Open(cam render.Camera) (*Preview, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := s.Init(); err != nil {
		return nil, err
	}
	return NewPreview(s, cam), nil
}

// NewPreview wraps an initialised screen.
func NewPreview(s tcell.Screen, cam render.Camera) *Preview {
	s.HideCursor()
	return &Preview{Camera: cam, screen: s}
}

// SetStatus adds text after the frame counters, e.g. the active effect.
func (p *Preview) SetStatus(s string) {
	p.mu.Lock()
	p.status = s
	p.mu.Unlock()
}

func (p *Preview) Draw(f *render.Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return nil
	}
	cols, rows := p.screen.Size()
	rows-- // status line
	if cols <= 0 || rows <= 0 {
		return nil
	}
	if len(p.cells) != cols*rows {
		p.cells = make([]Cell, cols*rows)
	}
	Rasterize(p.cells, cols, rows, p.Camera, f.Particles)

	p.screen.Clear()
	for i, c := range p.cells {
		if c.Rune == 0 {
			continue
		}
		st := tcell.StyleDefault.Foreground(tcell.NewRGBColor(channel(c.R), channel(c.G), channel(c.B)))
		p.screen.SetContent(i%cols, i/cols, c.Rune, nil, st)
	}
	line := fmt.Sprintf("frame %d  t %.1fs  emitters %d  particles %d  %s",
		f.ID, f.T, f.Emitters, f.Particles.Len(), p.status)
	bar := tcell.StyleDefault.Reverse(true)
	for x := 0; x < cols; x++ {
		r := ' '
		if x < len(line) {
			r = rune(line[x])
		}
		p.screen.SetContent(x, rows, r, nil, bar)
	}
	p.screen.Show()
	return nil
}

// Close restores the terminal.
func (p *Preview) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.done {
		p.done = true
		p.screen.Fini()
	}
	return nil
}

// Events handles keys until ctx is done or the screen closes: Esc, q and
// Ctrl-C call onQuit, space calls onLaunch.
func (p *Preview) Events(ctx context.Context, onQuit, onLaunch func()) {
	evs := make(chan tcell.Event, 16)
	go func() {
		defer close(evs)
		for {
			ev := p.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case evs <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-evs:
			if !ok {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q'):
					if onQuit != nil {
						onQuit()
					}
					return
				case ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
					if onLaunch != nil {
						onLaunch()
					}
				}
			case *tcell.EventResize:
				p.screen.Sync()
			}
		}
	}
}
