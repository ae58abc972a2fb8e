package render

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/coreman2200/funtimes-embers/internal/particle"
)

// Frame is one immutable snapshot of the whole simulation.
type Frame struct {
	ID       uint64
	T        float64 // simulated seconds since the engine started
	DT       time.Duration
	Emitters int

	Particles particle.Buffers
	Events    []particle.Event
}

// Centroid is the mean particle position, or the origin for an empty frame.
func (f *Frame) Centroid() mgl64.Vec3 {
	n := f.Particles.Len()
	if n == 0 {
		return mgl64.Vec3{}
	}
	var c mgl64.Vec3
	for i := 0; i < n; i++ {
		c[0] += float64(f.Particles.Positions[i*3])
		c[1] += float64(f.Particles.Positions[i*3+1])
		c[2] += float64(f.Particles.Positions[i*3+2])
	}
	return c.Mul(1 / float64(n))
}

// Count returns the number of events of the given kind.
func (f *Frame) Count(kind particle.EventKind) int {
	n := 0
	for _, ev := range f.Events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}
