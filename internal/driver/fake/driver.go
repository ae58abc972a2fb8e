// Package fake is a headless sink: it logs a compact per-frame summary and
// keeps the frames for inspection.
package fake

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-embers/internal/particle"
	"github.com/coreman2200/funtimes-embers/internal/render"
)

// Sink logs every Every-th frame (every frame if zero) and records up to
// Keep frames (none if zero, all if negative).
type Sink struct {
	Every int
	Keep  int

	mu     sync.Mutex
	Count  int
	frames []*render.Frame
	totals map[particle.EventKind]int
	peak   int
	log    zerolog.Logger
}

func New(every, keep int) *Sink {
	return &Sink{
		Every:  every,
		Keep:   keep,
		totals: map[particle.EventKind]int{},
		log:    log.With().Str("component", "fake").Logger(),
	}
}

func (d *Sink) Draw(f *render.Frame) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Count++
	for _, ev := range f.Events {
		d.totals[ev.Kind]++
	}
	if n := f.Particles.Len(); n > d.peak {
		d.peak = n
	}
	if d.Keep < 0 || len(d.frames) < d.Keep {
		d.frames = append(d.frames, f)
	}
	if d.Every <= 0 || d.Count%d.Every == 0 {
		c := f.Centroid()
		d.log.Info().
			Uint64("frame", f.ID).
			Float64("t", f.T).
			Int("emitters", f.Emitters).
			Int("particles", f.Particles.Len()).
			Floats64("centroid", c[:]).
			Int("launched", f.Count(particle.EventLaunched)).
			Int("exploded", f.Count(particle.EventExploded)).
			Msg("frame")
	}
	return nil
}

// Frames returns the recorded frames.
func (d *Sink) Frames() []*render.Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*render.Frame(nil), d.frames...)
}

// Total is the number of events of kind seen so far.
func (d *Sink) Total(kind particle.EventKind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.totals[kind]
}

// Peak is the largest particle count of any frame.
func (d *Sink) Peak() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.peak
}

// Close logs the run totals.
func (d *Sink) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.log.Info().
		Int("frames", d.Count).
		Int("launched", d.totals[particle.EventLaunched]).
		Int("exploded", d.totals[particle.EventExploded]).
		Int("expired", d.totals[particle.EventExpired]).
		Int("peak_particles", d.peak).
		Msg("run summary")
	return nil
}
