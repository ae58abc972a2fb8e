package render

import (
	"errors"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-embers/internal/effect"
	"github.com/coreman2200/funtimes-embers/internal/particle"
)

// SpawnPolicy controls automatic launches of the active effect.
type SpawnPolicy struct {
	Probability float64 // chance per tick
	MaxLive     int     // 0 means unbounded
}

type Options struct {
	Seed   int64
	Spawn  SpawnPolicy
	Logger *zerolog.Logger
}

// live is one emitter owned by the engine.
type live struct {
	effect string
	at     mgl64.Vec3
	em     particle.Emitter
}

// Engine steps every live emitter once per Tick, retires the expired ones and
// hands a fresh Frame to each sink of its Scene.
type Engine struct {
	Scene  *Scene
	Reg    *effect.Registry
	Params *effect.Params
	Spawn  SpawnPolicy

	active effect.Effect
	preset string

	rng      *rand.Rand
	emitters []live
	pending  []particle.Event

	frameID uint64
	simT    float64
	t0      time.Time
	last    *Frame
	log     zerolog.Logger

	// metrics (last durations in ms)
	Last struct {
		StepMS  float64
		DrawMS  float64
		TotalMS float64
	}
}

func NewEngine(scene *Scene, reg *effect.Registry, p *effect.Params, opts Options) (*Engine, error) {
	if scene == nil {
		return nil, errors.New("scene is nil")
	}
	if reg == nil {
		return nil, errors.New("registry is nil")
	}
	if p == nil {
		p = effect.NewParams()
	}
	l := log.Logger
	if opts.Logger != nil {
		l = *opts.Logger
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Engine{
		Scene:  scene,
		Reg:    reg,
		Params: p,
		Spawn:  opts.Spawn,
		rng:    rand.New(rand.NewSource(seed)),
		t0:     time.Now(),
		log:    l.With().Str("component", "engine").Logger(),
	}, nil
}

func (e *Engine) timeScale() float64 {
	if e.Params != nil && e.Params.TimeScale > 0 {
		return e.Params.TimeScale
	}
	return 1
}

// Now returns wall seconds since engine start, scaled by TimeScale.
func (e *Engine) Now() float64 {
	return time.Since(e.t0).Seconds() * e.timeScale()
}

// SimTime is the simulated time reached by Tick.
func (e *Engine) SimTime() float64 { return e.simT }

// Tick advances the simulation by dt and draws one frame. The frame reaches
// every sink even if some of them fail; their errors are joined.
func (e *Engine) Tick(dt time.Duration) error {
	start := time.Now()
	if scale := e.timeScale(); scale != 1 {
		dt = time.Duration(float64(dt) * scale)
	}

	events := e.pending
	e.pending = nil

	if e.active != nil && e.Spawn.Probability > 0 && e.rng.Float64() < e.Spawn.Probability {
		if e.Spawn.MaxLive <= 0 || len(e.emitters) < e.Spawn.MaxLive {
			events = append(events, e.launch(e.active, e.Params, e.Scene.Bounds.Sample(e.rng)))
		}
	}

	total := 0
	n := 0
	for _, l := range e.emitters {
		alive := l.em.Step(dt)
		if src, ok := l.em.(particle.EventSource); ok {
			for _, ev := range src.Events() {
				if ev.Effect == "" {
					ev.Effect = l.effect
				}
				events = append(events, ev)
			}
		}
		if !alive {
			l.em.Release()
			events = append(events, particle.Event{Kind: particle.EventExpired, Pos: l.at, Effect: l.effect})
			continue
		}
		total += l.em.Live()
		e.emitters[n] = l
		n++
	}
	for i := n; i < len(e.emitters); i++ {
		e.emitters[i] = live{}
	}
	e.emitters = e.emitters[:n]
	e.simT += dt.Seconds()
	e.Last.StepMS = float64(time.Since(start).Microseconds()) / 1000.0

	e.frameID++
	f := &Frame{ID: e.frameID, T: e.simT, DT: dt, Emitters: n, Events: events}
	f.Particles.Grow(total)
	for _, l := range e.emitters {
		l.em.AppendSnapshot(&f.Particles)
	}
	e.last = f

	drawStart := time.Now()
	var errs []error
	for _, s := range e.Scene.Sinks() {
		if err := s.Draw(f); err != nil {
			e.log.Warn().Err(err).Uint64("frame", f.ID).Msg("sink draw failed")
			errs = append(errs, err)
		}
	}
	e.Last.DrawMS = float64(time.Since(drawStart).Microseconds()) / 1000.0
	e.Last.TotalMS = float64(time.Since(start).Microseconds()) / 1000.0
	return errors.Join(errs...)
}

func (e *Engine) launch(eff effect.Effect, p *effect.Params, at mgl64.Vec3) particle.Event {
	em := eff.Launch(at, p, e.rng)
	e.emitters = append(e.emitters, live{effect: eff.Name(), at: at, em: em})
	e.log.Debug().Str("effect", eff.Name()).Int("live", len(e.emitters)).Msg("launch")
	return particle.Event{Kind: particle.EventLaunched, Pos: at, Effect: eff.Name()}
}

// Launch fires one emitter of the named effect at a point. An empty preset
// reuses the live params when the effect is the active one, and the effect's
// first preset otherwise; the live params are never modified.
func (e *Engine) Launch(name, preset string, at mgl64.Vec3) error {
	eff, err := e.Reg.Lookup(name)
	if err != nil {
		return err
	}
	p := e.Params
	if preset != "" || eff != e.active {
		p = e.Params.Clone()
		if preset == "" {
			preset = firstPreset(eff)
		}
		if preset != "" {
			if err := eff.ApplyPreset(preset, p); err != nil {
				return err
			}
		}
	}
	e.pending = append(e.pending, e.launch(eff, p, at))
	return nil
}

// LaunchRandom is Launch at a random point of the scene bounds.
func (e *Engine) LaunchRandom(name, preset string) error {
	return e.Launch(name, preset, e.Scene.Bounds.Sample(e.rng))
}

// SetEffect makes name the effect used by the spawn policy.
// If preset is empty and the effect changes, its first preset is applied.
func (e *Engine) SetEffect(name, preset string) error {
	eff, err := e.Reg.Lookup(name)
	if err != nil {
		return err
	}
	if preset == "" && eff != e.active {
		preset = firstPreset(eff)
	}
	if preset != "" {
		if err := eff.ApplyPreset(preset, e.Params); err != nil {
			return err
		}
	}
	e.active = eff
	if preset != "" {
		e.preset = preset
	}
	e.log.Info().Str("effect", name).Str("preset", e.preset).Msg("active effect")
	return nil
}

func firstPreset(eff effect.Effect) string {
	if ps := eff.Presets(); len(ps) > 0 {
		return ps[0]
	}
	return ""
}

// Active returns the current effect and preset names.
func (e *Engine) Active() (string, string) {
	if e.active == nil {
		return "", ""
	}
	return e.active.Name(), e.preset
}

// SetParam sets a live param; "TimeScale" goes to Params.TimeScale.
func (e *Engine) SetParam(name string, v float64) {
	if name == "TimeScale" {
		e.Params.TimeScale = v
		return
	}
	e.Params.Set(name, v)
}

func (e *Engine) SetBool(name string, b bool) { e.Params.SetBool(name, b) }

// Reseed restarts the random source, so a show replays the same launches.
func (e *Engine) Reseed(seed int64) { e.rng = rand.New(rand.NewSource(seed)) }

// Live is the number of emitters currently owned by the engine.
func (e *Engine) Live() int { return len(e.emitters) }

// LastFrame is the frame produced by the most recent Tick, nil before the first.
func (e *Engine) LastFrame() *Frame { return e.last }

// Clear releases every live emitter without drawing.
func (e *Engine) Clear() {
	for i := range e.emitters {
		e.emitters[i].em.Release()
		e.emitters[i] = live{}
	}
	e.emitters = e.emitters[:0]
	e.pending = nil
}
