// Package app wires the engine, the show player, the sinks and the control
// surface together.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-embers/internal/calib"
	"github.com/coreman2200/funtimes-embers/internal/effect"
	"github.com/coreman2200/funtimes-embers/internal/layout"
	"github.com/coreman2200/funtimes-embers/internal/led"
	"github.com/coreman2200/funtimes-embers/internal/render"
	"github.com/coreman2200/funtimes-embers/internal/sequence"
	"github.com/coreman2200/funtimes-embers/internal/ws"
)

var (
	ErrNoShow = errors.New("no show loaded")
	ErrNoCube = errors.New("no LED cube attached")
)

// Power limits for the cube output.
type Power struct {
	LimitAmps   float64
	WhiteCap    float64
	SoftStartMs int
}

type Options struct {
	Layout layout.Layout
	// Driver is the cube output; nil runs without a cube.
	Driver led.Driver
	Bounds render.Bounds
	Camera render.Camera
	FPS    int

	Effect     string
	Preset     string
	Spawn      render.SpawnPolicy
	Seed       int64
	Brightness float64
	Power      Power
	// ToneMap sends cube frames through the filmic curve instead of linear gain.
	ToneMap bool
	// Params override preset values.
	Params map[string]float64

	// Sinks are extra outputs such as the terminal preview.
	Sinks []render.Sink

	Show      *sequence.Program
	StartShow bool

	// Manual skips the conductor goroutine; the caller drives Step.
	Manual bool
}

type Core struct {
	mu    sync.Mutex
	Eng   *render.Engine
	Reg   *effect.Registry
	Seq   *sequence.Player
	Hub   *ws.Hub
	Voxel *render.VoxelSink

	hasShow    bool
	brightness float64
	softStart  float64
	elapsed    float64

	cancel context.CancelFunc
	done   chan struct{}
	log    zerolog.Logger
}

func applyPostDefaults(p *effect.Params, pw Power) {
	budget := 3000.0
	if pw.LimitAmps > 0 {
		budget = pw.LimitAmps * 1000
	}
	whiteCap := 2.2
	if pw.WhiteCap > 0 {
		whiteCap = pw.WhiteCap
	}
	for k, v := range map[string]float64{
		"Budget_mA":   budget,
		"LEDChan_mA":  20,
		"LimiterKnee": 0.9,
		"WhiteCap":    whiteCap,
		"ExposureEV":  0,
		"OutputGamma": 2.2,
	} {
		p.Set(k, v)
	}
}

func InitCore(ctx context.Context, o Options) (*Core, error) {
	// 1) Registry
	reg := effect.Builtins()

	// 2) Params: post defaults, brightness
	p := effect.NewParams()
	applyPostDefaults(p, o.Power)
	p.SetBool("ToneMap", o.ToneMap)
	if o.Brightness <= 0 {
		o.Brightness = 1
	}
	p.Set("Brightness", o.Brightness)

	// 3) Scene and sinks
	if o.Bounds == (render.Bounds{}) {
		o.Bounds = render.DefaultLaunchBounds
	}
	if o.Camera == (render.Camera{}) {
		o.Camera = render.DefaultCamera
	}
	scene := render.NewScene(o.Bounds, o.Camera, o.Sinks...)
	c := &Core{
		Reg:        reg,
		brightness: o.Brightness,
		softStart:  float64(o.Power.SoftStartMs) / 1000,
		log:        log.With().Str("component", "core").Logger(),
	}
	if o.Driver != nil {
		c.Voxel = render.NewVoxelSink(o.Driver, o.Layout, o.Camera, p)
		scene.AddSink(c.Voxel)
	}
	c.Hub = ws.NewHub(c)
	c.Hub.Topology = topology(reg, o)
	scene.AddSink(c.Hub)

	// 4) Engine
	eng, err := render.NewEngine(scene, reg, p, render.Options{Seed: o.Seed, Spawn: o.Spawn})
	if err != nil {
		return nil, err
	}
	c.Eng = eng
	if o.Effect != "" {
		if err := eng.SetEffect(o.Effect, o.Preset); err != nil {
			return nil, err
		}
	}
	for k, v := range o.Params {
		eng.SetParam(k, v)
	}

	// 5) Sequencer wiring (hooks -> engine); called with c.mu held
	hooks := sequence.Hooks{
		SetEffect: func(name, preset string) {
			if name == "" {
				return
			}
			if err := eng.SetEffect(name, preset); err != nil {
				c.log.Warn().Err(err).Str("effect", name).Str("preset", preset).Msg("show effect")
			}
		},
		SetParam: eng.SetParam,
		SetBool:  eng.SetBool,
		Launch: func(cue sequence.Cue) {
			var err error
			if cue.Random {
				err = eng.LaunchRandom(cue.Effect, cue.Preset)
			} else {
				err = eng.Launch(cue.Effect, cue.Preset, cue.At())
			}
			if err != nil {
				c.log.Warn().Err(err).Str("effect", cue.Effect).Msg("show cue")
			}
		},
	}
	c.Seq = sequence.NewPlayer(hooks)
	if o.Show != nil {
		if err := c.LoadShow(*o.Show); err != nil {
			return nil, err
		}
		if o.StartShow {
			c.Seq.Start()
		}
	}

	// 6) Frame/timeline loop
	if !o.Manual {
		ctx, cancel := context.WithCancel(ctx)
		c.cancel = cancel
		c.done = make(chan struct{})
		go func() {
			defer close(c.done)
			NewConductor(c, o.FPS).Run(ctx)
		}()
	}
	return c, nil
}

func topology(reg *effect.Registry, o Options) map[string]any {
	presets := map[string][]string{}
	for _, name := range reg.List() {
		e, _ := reg.Get(name)
		presets[name] = e.Presets()
	}
	return map[string]any{
		"dim":     map[string]int{"x": o.Layout.Dim.X, "y": o.Layout.Dim.Y, "z": o.Layout.Dim.Z},
		"effects": presets,
		"camera":  map[string]any{"min": o.Camera.Min, "max": o.Camera.Max},
		"bounds":  map[string]any{"min": o.Bounds.Min, "max": o.Bounds.Max},
		"tests":   calib.Kinds(),
	}
}

// Step advances the show and the engine by dt.
func (c *Core) Step(dt time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elapsed += dt.Seconds()
	if c.softStart > 0 && c.elapsed <= c.softStart+dt.Seconds() {
		c.Eng.Params.Set("Brightness", c.brightness*min(1, c.elapsed/c.softStart))
	}
	c.Seq.Tick(dt.Seconds())
	return c.Eng.Tick(dt)
}

// LoadShow replaces the show program; a non-zero seed reseeds the engine.
func (c *Core) LoadShow(prog sequence.Program) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	running := c.Seq.State == sequence.Running
	if err := c.Seq.Load(prog); err != nil {
		return err
	}
	if prog.Seed != 0 {
		c.Eng.Reseed(prog.Seed)
	}
	c.hasShow = true
	if running {
		c.Seq.Start()
	}
	c.log.Info().Int("clips", len(prog.Clips)).Bool("loop", prog.Loop).Msg("show loaded")
	return nil
}

// Close stops the loop and closes every sink.
func (c *Core) Close() error {
	if c.cancel != nil {
		c.cancel()
		<-c.done
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Eng.Clear()
	return c.Eng.Scene.Close()
}

// ---- ws.Controller ----

func (c *Core) Launch(name, preset string, at *[3]float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if name == "" {
		name, _ = c.Eng.Active()
	}
	if at == nil {
		return c.Eng.LaunchRandom(name, preset)
	}
	return c.Eng.Launch(name, preset, mgl64.Vec3(*at))
}

func (c *Core) SetEffect(name, preset string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Eng.SetEffect(name, preset)
}

func (c *Core) SetParam(name string, v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if name == "Brightness" {
		c.brightness = v
	}
	c.Eng.SetParam(name, v)
}

func (c *Core) SetBool(name string, b bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Eng.SetBool(name, b)
}

func (c *Core) Show(cmd string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasShow {
		return ErrNoShow
	}
	switch cmd {
	case "start":
		c.Seq.Start()
	case "stop":
		c.Seq.Stop()
	case "pause":
		c.Seq.Pause()
	case "resume":
		c.Seq.Resume()
	default:
		return fmt.Errorf("unknown show command %q", cmd)
	}
	return nil
}

func (c *Core) RunTest(name string) error {
	k, ok := calib.Parse(name)
	if !ok {
		return fmt.Errorf("unknown test %q (have %v)", name, calib.Kinds())
	}
	if c.Voxel == nil {
		return ErrNoCube
	}
	c.Voxel.RunCalibration(k)
	return nil
}

func (c *Core) Status() ws.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	name, preset := c.Eng.Active()
	s := ws.Status{Effect: name, Preset: preset, Live: c.Eng.Live()}
	if f := c.Eng.LastFrame(); f != nil {
		s.Particles = f.Particles.Len()
	}
	if c.Voxel != nil {
		s.EstAmps = led.EstimateAmps(c.Voxel.RGB(), c.Eng.Params.Get("LEDChan_mA", 20))
	}
	if c.hasShow {
		s.Show = c.Seq.Status()
	}
	return s
}
