// Package particle implements fixed-capacity particle emitters: spawn a burst,
// integrate it one frame at a time, and retire particles as their life runs out.
package particle

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// NominalFrame is the step length all per-step constants are tuned for.
// A Step of exactly NominalFrame advances the simulation by one unit.
const NominalFrame = time.Second / 60

// Particle is one simulated point.
type Particle struct {
	Pos mgl64.Vec3
	Vel mgl64.Vec3

	Color    colorful.Color
	Size     float64
	BaseSize float64
	Opacity  float64

	// Life runs from 1 down to 0; the particle is dead at Life <= 0.
	Life float64
}

// Alive reports whether the particle still takes part in stepping and rendering.
func (p *Particle) Alive() bool { return p.Life > 0 }

// Physics holds the per-emitter integration constants. Gravity and Decay are
// expressed per nominal step.
type Physics struct {
	Gravity float64
	Drag    float64 // velocity multiplier per step; 0 is treated as 1 (no drag)
	Decay   float64

	// SizeFromLife shrinks each particle to BaseSize*Life as it decays.
	SizeFromLife bool
}

func (ph Physics) drag() float64 {
	if ph.Drag <= 0 {
		return 1
	}
	return ph.Drag
}

// normalize converts a wall-clock delta into nominal steps.
func normalize(dt time.Duration) float64 {
	if dt <= 0 {
		return 0
	}
	return float64(dt) / float64(NominalFrame)
}

// integrate advances one particle by dtn nominal steps.
func integrate(p *Particle, ph Physics, dtn float64) {
	p.Vel[1] -= ph.Gravity * dtn
	if d := ph.drag(); d != 1 {
		p.Vel = p.Vel.Mul(d)
	}
	p.Pos = p.Pos.Add(p.Vel.Mul(dtn))
	p.Life -= ph.Decay
	if ph.SizeFromLife {
		p.Size = p.BaseSize * clamp01(p.Life)
	}
}

// retire compacts ps in place, keeping live particles in order.
func retire(ps []Particle) []Particle {
	n := 0
	for i := range ps {
		if ps[i].Alive() {
			ps[n] = ps[i]
			n++
		}
	}
	return ps[:n]
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
