package render

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Sink receives every finished frame. Draw must not keep references into the
// frame's buffers past the call unless it copies them; the engine never
// mutates a frame after handing it out, so keeping the *Frame is fine.
type Sink interface {
	Draw(f *Frame) error
	Close() error
}

// Camera is an orthographic view of a world box.
type Camera struct {
	Min, Max mgl64.Vec3
}

// DefaultCamera frames both mid-air bursts and shells climbing from the ground.
var DefaultCamera = Camera{
	Min: mgl64.Vec3{-60, -30, -60},
	Max: mgl64.Vec3{60, 100, 60},
}

// Normalize maps a world point into [0,1]^3 (unclamped).
func (c Camera) Normalize(p mgl64.Vec3) mgl64.Vec3 {
	var out mgl64.Vec3
	for i := 0; i < 3; i++ {
		span := c.Max[i] - c.Min[i]
		if span == 0 {
			continue
		}
		out[i] = (p[i] - c.Min[i]) / span
	}
	return out
}

// Cell projects p onto a cols x rows grid looking down -Z, row 0 at the top.
func (c Camera) Cell(p mgl64.Vec3, cols, rows int) (col, row int, ok bool) {
	n := c.Normalize(p)
	if n[0] < 0 || n[0] >= 1 || n[1] < 0 || n[1] >= 1 {
		return 0, 0, false
	}
	col = int(n[0] * float64(cols))
	row = rows - 1 - int(n[1]*float64(rows))
	return col, row, col >= 0 && col < cols && row >= 0 && row < rows
}

// Scene owns the launch volume, the camera and the output sinks for the
// lifetime of one engine.
type Scene struct {
	Bounds Bounds
	Camera Camera

	sinks  []Sink
	closed bool
	log    zerolog.Logger
}

func NewScene(b Bounds, cam Camera, sinks ...Sink) *Scene {
	s := &Scene{Bounds: b, Camera: cam, log: log.Logger.With().Str("component", "scene").Logger()}
	for _, k := range sinks {
		s.AddSink(k)
	}
	return s
}

func (s *Scene) AddSink(k Sink) {
	if k == nil || s.closed {
		return
	}
	s.sinks = append(s.sinks, k)
}

func (s *Scene) Sinks() []Sink { return s.sinks }

// Close closes every sink once. Later calls are no-ops.
func (s *Scene) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	for _, k := range s.sinks {
		if err := k.Close(); err != nil {
			s.log.Warn().Err(err).Msg("sink close failed")
			errs = append(errs, err)
		}
	}
	s.sinks = nil
	return errors.Join(errs...)
}

func (s *Scene) Closed() bool { return s.closed }
