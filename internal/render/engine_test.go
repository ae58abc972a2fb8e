package render

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-embers/internal/effect"
	"github.com/coreman2200/funtimes-embers/internal/particle"
)

// dotEffect launches a single still particle that lives for Steps steps.
type dotEffect struct{ launched int }

func (d *dotEffect) Name() string      { return "dot" }
func (d *dotEffect) Presets() []string { return []string{"default"} }
func (d *dotEffect) ApplyPreset(name string, p *effect.Params) error {
	if name != "default" {
		return effect.ErrUnknownPreset
	}
	p.Set("Steps", 4)
	return nil
}
func (d *dotEffect) Launch(at mgl64.Vec3, p *effect.Params, rng *rand.Rand) particle.Emitter {
	d.launched++
	return particle.Spawn(at, 1, particle.Solid{}, particle.Still{},
		particle.Physics{Decay: 1 / p.Get("Steps", 4)}, rng)
}

// recordSink keeps every frame it is given.
type recordSink struct {
	frames []*Frame
	err    error
	closed int
}

func (r *recordSink) Draw(f *Frame) error { r.frames = append(r.frames, f); return r.err }
func (r *recordSink) Close() error        { r.closed++; return nil }

func newTestEngine(t *testing.T, sinks ...Sink) (*Engine, *dotEffect) {
	t.Helper()
	reg := effect.NewRegistry()
	dot := &dotEffect{}
	reg.Register(dot)
	reg.Register(effect.NewBurst())
	e, err := NewEngine(NewScene(DefaultLaunchBounds, DefaultCamera, sinks...), reg, nil, Options{Seed: 1})
	require.NoError(t, err)
	return e, dot
}

func TestMixAlpha(t *testing.T) {
	n := 10
	a := make([]Color, n)
	b := make([]Color, n)
	dst := make([]Color, n)
	for i := 0; i < n; i++ {
		a[i] = Color{1, 0, 0} // red
		b[i] = Color{0, 0, 1} // blue
	}
	Mix(dst, a, b, 0.5)
	if dst[0].R < 0.49 || dst[0].R > 0.51 || dst[0].B < 0.49 || dst[0].B > 0.51 {
		t.Fatalf("expected ~purple at alpha=0.5, got %#v", dst[0])
	}
}

func TestNewEngineNeedsSceneAndRegistry(t *testing.T) {
	_, err := NewEngine(nil, effect.NewRegistry(), nil, Options{})
	assert.Error(t, err)
	_, err = NewEngine(NewScene(Bounds{}, Camera{}), nil, nil, Options{})
	assert.Error(t, err)
}

func TestExpiredEmittersAreRemovedAndReleased(t *testing.T) {
	sink := &recordSink{}
	e, _ := newTestEngine(t, sink)
	require.NoError(t, e.Launch("dot", "", mgl64.Vec3{1, 2, 3}))
	require.NoError(t, e.Launch("dot", "", mgl64.Vec3{4, 5, 6}))

	// launches are queued until the next tick
	assert.Equal(t, 2, e.Live())
	held := []particle.Emitter{e.emitters[0].em, e.emitters[1].em}

	for i := 0; i < 10; i++ {
		require.NoError(t, e.Tick(particle.NominalFrame))
	}
	assert.Equal(t, 0, e.Live())
	for _, em := range held {
		assert.True(t, em.Released(), "expired emitters must be released")
	}

	launched, expired := 0, 0
	for _, f := range sink.frames {
		launched += f.Count(particle.EventLaunched)
		expired += f.Count(particle.EventExpired)
	}
	assert.Equal(t, 2, launched)
	assert.Equal(t, 2, expired)
	assert.Len(t, sink.frames, 10)
}

func TestFrameIsASnapshot(t *testing.T) {
	sink := &recordSink{}
	e, _ := newTestEngine(t, sink)
	require.NoError(t, e.Launch("dot", "", mgl64.Vec3{1, 2, 3}))
	require.NoError(t, e.Tick(particle.NominalFrame))
	first := sink.frames[0]
	require.Equal(t, 1, first.Particles.Len())
	assert.Equal(t, []float32{1, 2, 3}, first.Particles.Positions)

	require.NoError(t, e.Tick(particle.NominalFrame))
	assert.Equal(t, uint64(1), first.ID)
	assert.Equal(t, uint64(2), e.LastFrame().ID)
	assert.Equal(t, 1, first.Particles.Len(), "old frames never change")
}

func TestSpawnPolicy(t *testing.T) {
	e, dot := newTestEngine(t)
	require.NoError(t, e.SetEffect("dot", ""))
	e.Spawn = SpawnPolicy{Probability: 1, MaxLive: 3}
	for i := 0; i < 3; i++ {
		require.NoError(t, e.Tick(particle.NominalFrame))
	}
	assert.Equal(t, 3, dot.launched)
	// decay 0.25: the first dot is still alive, so the cap holds
	require.NoError(t, e.Tick(particle.NominalFrame))
	assert.Equal(t, 3, dot.launched)
	assert.LessOrEqual(t, e.Live(), 3)
}

func TestSpawnPolicyDisabled(t *testing.T) {
	e, dot := newTestEngine(t)
	require.NoError(t, e.SetEffect("dot", ""))
	for i := 0; i < 50; i++ {
		require.NoError(t, e.Tick(particle.NominalFrame))
	}
	assert.Zero(t, dot.launched)
}

func TestSetEffectUnknown(t *testing.T) {
	e, _ := newTestEngine(t)
	assert.ErrorIs(t, e.SetEffect("laser", ""), effect.ErrUnknownEffect)
	assert.ErrorIs(t, e.SetEffect("burst", "Teal"), effect.ErrUnknownPreset)
	require.NoError(t, e.SetEffect("burst", "Gold"))
	name, preset := e.Active()
	assert.Equal(t, "burst", name)
	assert.Equal(t, "Gold", preset)
	assert.Equal(t, 4000.0, e.Params.Get("Count", 0))
}

func TestManualLaunchKeepsLiveParams(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.SetEffect("burst", "Crimson"))
	require.NoError(t, e.Launch("burst", "Gold", mgl64.Vec3{}))
	assert.Equal(t, 10000.0, e.Params.Get("Count", 0))
	assert.Equal(t, 4000, e.emitters[0].em.Live())
}

func TestSinkErrorsDoNotStopTheFrame(t *testing.T) {
	bad := &recordSink{err: errors.New("unplugged")}
	good := &recordSink{}
	e, _ := newTestEngine(t, bad, good)
	err := e.Tick(particle.NominalFrame)
	assert.ErrorContains(t, err, "unplugged")
	assert.Len(t, good.frames, 1)
}

func TestTimeScaleStretchesSteps(t *testing.T) {
	sink := &recordSink{}
	e, _ := newTestEngine(t, sink)
	e.Params.TimeScale = 0.5
	require.NoError(t, e.Tick(time.Second))
	assert.InDelta(t, 0.5, e.SimTime(), 1e-9)
	assert.Equal(t, 500*time.Millisecond, sink.frames[0].DT)
}

func TestSceneCloseOnce(t *testing.T) {
	a, b := &recordSink{}, &recordSink{}
	s := NewScene(DefaultLaunchBounds, DefaultCamera, a, b)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, a.closed)
	assert.Equal(t, 1, b.closed)
	assert.True(t, s.Closed())
}

func TestClearReleasesEverything(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.Launch("dot", "", mgl64.Vec3{}))
	em := e.emitters[0].em
	e.Clear()
	assert.Equal(t, 0, e.Live())
	assert.True(t, em.Released())
}

func TestTimeScaleParamAndReseed(t *testing.T) {
	e, _ := newTestEngine(t)
	e.SetParam("TimeScale", 2)
	assert.Equal(t, 2.0, e.Params.TimeScale)
	_, set := e.Params.Params["TimeScale"]
	assert.False(t, set)

	e.Reseed(7)
	a := e.Scene.Bounds.Sample(e.rng)
	e.Reseed(7)
	assert.Equal(t, a, e.Scene.Bounds.Sample(e.rng))
}

func TestLaunchWithHugeCountDoesNotPanic(t *testing.T) {
	e, _ := newTestEngine(t)
	require.NoError(t, e.SetEffect("burst", "Gold"))
	e.SetParam("Count", 1e16)
	require.NotPanics(t, func() {
		require.NoError(t, e.Launch("burst", "", mgl64.Vec3{}))
	})
	assert.Equal(t, particle.MaxParticles, e.emitters[0].em.Live())
}

func TestPresetOutputIgnoresPreviousEffect(t *testing.T) {
	opacity := func(e *Engine) float32 {
		require.NoError(t, e.SetEffect("burst", "Crimson"))
		e.SetParam("Count", 5)
		require.NoError(t, e.Launch("burst", "", mgl64.Vec3{}))
		require.NoError(t, e.Tick(particle.NominalFrame))
		return e.LastFrame().Particles.Opacities[0]
	}
	fresh, _ := newTestEngine(t)
	used, _ := newTestEngine(t)
	used.Reg.Register(effect.NewShell())
	require.NoError(t, used.SetEffect("shell", "Classic"))
	assert.Equal(t, opacity(fresh), opacity(used))
}
