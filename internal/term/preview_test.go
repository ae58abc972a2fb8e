package term

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-embers/internal/particle"
	"github.com/coreman2200/funtimes-embers/internal/render"
)

var cam = render.Camera{Min: mgl64.Vec3{0, 0, -1}, Max: mgl64.Vec3{10, 10, 1}}

func dot(b *particle.Buffers, x, y float64, c colorful.Color, size, opacity float64) {
	b.Append(&particle.Particle{Pos: mgl64.Vec3{x, y, 0}, Color: c, Size: size, Opacity: opacity, Life: 1})
}

func TestRasterizeProjectsAndPicksBrightest(t *testing.T) {
	var b particle.Buffers
	dot(&b, 0.5, 9.5, colorful.Color{R: 1}, 0.1, 0.2)       // top-left, dim red
	dot(&b, 0.6, 9.6, colorful.Color{G: 1}, 2, 1)           // same cell, bright green
	dot(&b, 9.5, 0.5, colorful.Color{B: 1}, 0.3, 1)         // bottom-right
	dot(&b, 50, 50, colorful.Color{R: 1, G: 1, B: 1}, 1, 1) // off camera

	cells := make([]Cell, 10*10)
	Rasterize(cells, 10, 10, cam, b)

	tl := cells[0]
	assert.Equal(t, '@', tl.Rune)
	assert.Equal(t, float32(1), tl.G)
	assert.Zero(t, tl.R)

	br := cells[9*10+9]
	assert.Equal(t, '+', br.Rune)
	assert.Equal(t, float32(1), br.B)

	n := 0
	for _, c := range cells {
		if c.Rune != 0 {
			n++
		}
	}
	assert.Equal(t, 2, n)
}

func TestRasterizeScalesByOpacity(t *testing.T) {
	var b particle.Buffers
	dot(&b, 5, 5, colorful.Color{R: 1, G: 0.5}, 1, 0.5)
	cells := make([]Cell, 100)
	Rasterize(cells, 10, 10, cam, b)
	c := cells[4*10+5]
	assert.InDelta(t, 0.5, c.R, 1e-6)
	assert.InDelta(t, 0.25, c.G, 1e-6)
}

func newSim(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	s := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, s.Init())
	s.SetSize(10, 11)
	return s
}

func TestPreviewDrawsCellsAndStatus(t *testing.T) {
	s := newSim(t)
	p := NewPreview(s, cam)
	defer p.Close()
	p.SetStatus("burst")

	f := &render.Frame{ID: 3, Emitters: 1}
	dot(&f.Particles, 0.5, 9.5, colorful.Color{R: 1}, 1, 1)
	require.NoError(t, p.Draw(f))

	r, _, st, _ := s.GetContent(0, 0)
	assert.Equal(t, '*', r)
	fg, _, _ := st.Decompose()
	assert.Equal(t, tcell.NewRGBColor(255, 0, 0), fg)

	var status strings.Builder
	for x := 0; x < 10; x++ {
		r, _, _, _ := s.GetContent(x, 10)
		status.WriteRune(r)
	}
	assert.Equal(t, "frame 3  t", status.String())
}

func TestEventsKeys(t *testing.T) {
	s := newSim(t)
	p := NewPreview(s, cam)
	defer p.Close()

	launches := 0
	quit := make(chan struct{})
	go p.Events(context.Background(), func() { close(quit) }, func() { launches++ })

	s.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)
	s.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)
	s.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case <-quit:
	case <-time.After(2 * time.Second):
		t.Fatal("q did not quit")
	}
	assert.Equal(t, 2, launches)
}

func TestEventsStopsOnContext(t *testing.T) {
	s := newSim(t)
	p := NewPreview(s, cam)
	defer p.Close()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { p.Events(ctx, nil, nil); close(done) }()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Events did not return")
	}
}
