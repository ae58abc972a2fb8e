package particle

import (
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// MaxParticles caps the particles a single emitter allocates at once.
const MaxParticles = 200_000

// Burst is a single explosion: every particle is created at once at the same
// origin and the burst is over when the last one dies.
type Burst struct {
	Physics Physics

	live     []Particle
	spawned  int
	steps    int
	expired  bool
	released bool
}

// BurstOpts bundles the look of a burst.
type BurstOpts struct {
	Count    int
	Color    ColorPolicy
	Velocity VelocityPolicy
	Physics  Physics
	Size     float64
	Opacity  float64 // 0 means fully opaque
}

// Spawn allocates count particles at origin, at most MaxParticles. A count of
// zero or less returns a burst that is already expired.
func Spawn(origin mgl64.Vec3, count int, color ColorPolicy, velocity VelocityPolicy, ph Physics, rng *rand.Rand) *Burst {
	return SpawnBurst(origin, BurstOpts{
		Count:    count,
		Color:    color,
		Velocity: velocity,
		Physics:  ph,
		Size:     1,
	}, rng)
}

// SpawnBurst is Spawn with the full option set.
func SpawnBurst(origin mgl64.Vec3, o BurstOpts, rng *rand.Rand) *Burst {
	b := &Burst{Physics: o.Physics}
	if o.Count <= 0 {
		b.expired = true
		return b
	}
	o.Count = min(o.Count, MaxParticles)
	if o.Velocity == nil {
		o.Velocity = Still{}
	}
	if o.Color == nil {
		o.Color = Solid{}
	}
	opacity := o.Opacity
	if opacity <= 0 {
		opacity = 1
	}

	b.live = make([]Particle, o.Count)
	for i := range b.live {
		b.live[i] = Particle{
			Pos:      origin,
			Vel:      o.Velocity.Velocity(i, o.Count, rng),
			Color:    o.Color.Color(i, rng),
			Size:     o.Size,
			BaseSize: o.Size,
			Opacity:  opacity,
			Life:     1,
		}
	}
	b.spawned = o.Count
	return b
}

// Step integrates every live particle and drops the ones whose life ran out.
// Once it has returned false it keeps returning false.
func (b *Burst) Step(dt time.Duration) bool {
	if b.expired || b.released {
		return false
	}
	dtn := normalize(dt)
	for i := range b.live {
		integrate(&b.live[i], b.Physics, dtn)
	}
	b.live = retire(b.live)
	b.steps++
	if len(b.live) == 0 {
		b.expired = true
	}
	return !b.expired
}

func (b *Burst) IsExpired() bool { return b.expired }
func (b *Burst) Live() int       { return len(b.live) }
func (b *Burst) Spawned() int    { return b.spawned }
func (b *Burst) Steps() int      { return b.steps }

// Particles exposes the live set for inspection. Callers must not modify it.
func (b *Burst) Particles() []Particle { return b.live }

func (b *Burst) AppendSnapshot(dst *Buffers) {
	for i := range b.live {
		dst.Append(&b.live[i])
	}
}

// Snapshot returns a fresh copy of the live particles.
func (b *Burst) Snapshot() Buffers { return Snapshot(b) }

func (b *Burst) Release() {
	b.live = nil
	b.released = true
	b.expired = true
}

func (b *Burst) Released() bool { return b.released }
