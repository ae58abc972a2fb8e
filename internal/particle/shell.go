package particle

import (
	"math"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// ShellState is the phase of a Shell.
type ShellState string

const (
	StateAscending ShellState = "ascending"
	StateExploded  ShellState = "exploded"
)

// ShellOpts configures a two-phase firework.
type ShellOpts struct {
	Launch        mgl64.Vec3 // initial rocket velocity
	RocketColor   colorful.Color
	RocketSize    float64
	AscentGravity float64

	// The rocket bursts once it is falling and below ExplodeBelow.
	// +Inf bursts at the apex.
	ExplodeBelow float64
	// Fuse forces the burst after this many ascent steps; 0 means 600.
	Fuse int

	TrailChance float64
	TrailDecay  float64

	Burst BurstOpts
}

// Shell is a rocket that rises, then bursts into a particle shower.
// The ascending → exploded transition happens at most once.
type Shell struct {
	opts ShellOpts
	rng  *rand.Rand

	state       ShellState
	rocket      Particle
	hasRocket   bool
	ascentSteps int
	transitions int

	trails trail
	burst  *Burst

	events   []Event
	expired  bool
	released bool
}

// NewShell places a rocket at origin.
func NewShell(origin mgl64.Vec3, o ShellOpts, rng *rand.Rand) *Shell {
	if o.RocketSize <= 0 {
		o.RocketSize = 1
	}
	if o.Fuse <= 0 {
		o.Fuse = 600
	}
	if o.TrailDecay <= 0 {
		o.TrailDecay = 0.1
	}
	return &Shell{
		opts:  o,
		rng:   rng,
		state: StateAscending,
		rocket: Particle{
			Pos:      origin,
			Vel:      o.Launch,
			Color:    o.RocketColor,
			Size:     o.RocketSize,
			BaseSize: o.RocketSize,
			Opacity:  1,
			Life:     1,
		},
		hasRocket: true,
		trails:    trail{ph: Physics{Decay: o.TrailDecay, SizeFromLife: true}},
	}
}

// trail holds the fading sparks a rocket drops while it climbs. Unlike a
// Burst it never expires: it may run empty and be refilled.
type trail struct {
	ph   Physics
	live []Particle
}

func (t *trail) add(p Particle) { t.live = append(t.live, p) }

func (t *trail) step(dt time.Duration) {
	dtn := normalize(dt)
	for i := range t.live {
		integrate(&t.live[i], t.ph, dtn)
	}
	t.live = retire(t.live)
}

func (t *trail) Live() int { return len(t.live) }

func (t *trail) appendSnapshot(dst *Buffers) {
	for i := range t.live {
		dst.Append(&t.live[i])
	}
}

func (s *Shell) Step(dt time.Duration) bool {
	if s.expired || s.released {
		return false
	}
	if s.state == StateAscending {
		s.ascend(dt)
	} else if s.burst != nil {
		s.burst.Step(dt)
	}
	s.trails.step(dt)

	if s.state == StateAscending || s.trails.Live() > 0 || (s.burst != nil && s.burst.Live() > 0) {
		return true
	}
	s.expired = true
	return false
}

func (s *Shell) ascend(dt time.Duration) {
	integrate(&s.rocket, Physics{Gravity: s.opts.AscentGravity}, normalize(dt))
	s.ascentSteps++

	if s.opts.TrailChance > 0 && s.rng.Float64() < s.opts.TrailChance {
		s.trails.add(Particle{
			Pos:      s.rocket.Pos,
			Color:    s.rocket.Color,
			Size:     s.rocket.Size,
			BaseSize: s.rocket.Size,
			Opacity:  0.6,
			Life:     1,
		})
	}

	falling := s.rocket.Vel[1] < 0 && s.rocket.Pos[1] < s.opts.ExplodeBelow
	if falling || s.ascentSteps >= s.opts.Fuse {
		s.explode()
	}
}

func (s *Shell) explode() {
	if s.state != StateAscending {
		return
	}
	at := s.rocket.Pos
	s.state = StateExploded
	s.transitions++
	s.hasRocket = false
	s.burst = SpawnBurst(at, s.opts.Burst, s.rng)
	s.events = append(s.events, Event{Kind: EventExploded, Pos: at, Color: s.rocket.Color})
}

func (s *Shell) State() ShellState { return s.state }

// Transitions counts ascending → exploded changes; it is never more than 1.
func (s *Shell) Transitions() int { return s.transitions }

// Rocket returns the ascending-phase particle while it is still in the draw set.
func (s *Shell) Rocket() (Particle, bool) { return s.rocket, s.hasRocket }

// Burst returns the exploded-phase emitter, nil before the transition.
func (s *Shell) Burst() *Burst { return s.burst }

func (s *Shell) IsExpired() bool { return s.expired }

func (s *Shell) Live() int {
	n := s.trails.Live()
	if s.hasRocket {
		n++
	}
	if s.burst != nil {
		n += s.burst.Live()
	}
	return n
}

func (s *Shell) AppendSnapshot(dst *Buffers) {
	if s.hasRocket {
		dst.Append(&s.rocket)
	}
	s.trails.appendSnapshot(dst)
	if s.burst != nil {
		s.burst.AppendSnapshot(dst)
	}
}

func (s *Shell) Events() []Event {
	ev := s.events
	s.events = nil
	return ev
}

func (s *Shell) Release() {
	s.trails.live = nil
	if s.burst != nil {
		s.burst.Release()
	}
	s.hasRocket = false
	s.released = true
	s.expired = true
}

func (s *Shell) Released() bool { return s.released }

// AtApex is the ExplodeBelow value for shells that burst at the top of their climb.
var AtApex = math.Inf(1)
