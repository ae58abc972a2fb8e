package particle

import (
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// PlumeOpts configures a continuous smoke source.
type PlumeOpts struct {
	Rate        float64 // chance per step of emitting one particle
	Duration    int     // emitting steps; 0 emits until Stop
	Radius      float64 // horizontal spawn jitter around the origin
	Rise        float64 // mean upward speed
	Drift       float64 // horizontal speed jitter
	Color       colorful.Color
	Size        float64
	Growth      float64 // size added per step
	BaseOpacity float64
	Decay       float64
	Prime       int // particles emitted immediately
}

// Plume emits smoke one particle at a time. Particles rise, fade and swell;
// the plume expires once it stopped emitting and its last particle is gone.
type Plume struct {
	origin mgl64.Vec3
	opts   PlumeOpts
	rng    *rand.Rand

	live     []Particle
	steps    int
	stopped  bool
	expired  bool
	released bool
}

func NewPlume(origin mgl64.Vec3, o PlumeOpts, rng *rand.Rand) *Plume {
	if o.Size <= 0 {
		o.Size = 1
	}
	if o.BaseOpacity <= 0 {
		o.BaseOpacity = 0.7
	}
	p := &Plume{origin: origin, opts: o, rng: rng}
	for i := 0; i < min(o.Prime, MaxParticles); i++ {
		p.emit()
	}
	return p
}

func (p *Plume) emit() {
	o := p.opts
	pos := p.origin.Add(mgl64.Vec3{
		(p.rng.Float64() - 0.5) * 2 * o.Radius,
		0,
		(p.rng.Float64() - 0.5) * 2 * o.Radius,
	})
	vel := mgl64.Vec3{
		(p.rng.Float64() - 0.5) * o.Drift,
		o.Rise * (0.5 + p.rng.Float64()),
		(p.rng.Float64() - 0.5) * o.Drift,
	}
	p.live = append(p.live, Particle{
		Pos:      pos,
		Vel:      vel,
		Color:    o.Color,
		Size:     o.Size,
		BaseSize: o.Size,
		Opacity:  o.BaseOpacity,
		Life:     1,
	})
}

func (p *Plume) Step(dt time.Duration) bool {
	if p.expired || p.released {
		return false
	}
	if !p.stopped {
		if p.rng.Float64() < p.opts.Rate {
			p.emit()
		}
		p.steps++
		if p.opts.Duration > 0 && p.steps >= p.opts.Duration {
			p.stopped = true
		}
	}

	dtn := normalize(dt)
	ph := Physics{Decay: p.opts.Decay}
	for i := range p.live {
		q := &p.live[i]
		integrate(q, ph, dtn)
		q.Size += p.opts.Growth * dtn
		q.Opacity = p.opts.BaseOpacity * clamp01(q.Life)
	}
	p.live = retire(p.live)

	if p.stopped && len(p.live) == 0 {
		p.expired = true
	}
	return !p.expired
}

// Stop ends emission; live particles finish fading.
func (p *Plume) Stop() { p.stopped = true }

func (p *Plume) Emitting() bool  { return !p.stopped }
func (p *Plume) IsExpired() bool { return p.expired }
func (p *Plume) Live() int       { return len(p.live) }

func (p *Plume) AppendSnapshot(dst *Buffers) {
	for i := range p.live {
		dst.Append(&p.live[i])
	}
}

func (p *Plume) Release() {
	p.live = nil
	p.stopped = true
	p.expired = true
	p.released = true
}

func (p *Plume) Released() bool { return p.released }
