package effect

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-embers/internal/particle"
)

func TestBuiltinsSorted(t *testing.T) {
	assert.Equal(t, []string{"burst", "shell", "smoke"}, Builtins().List())
}

func TestLookupUnknown(t *testing.T) {
	_, err := Builtins().Lookup("sparkler")
	assert.True(t, errors.Is(err, ErrUnknownEffect))
}

func TestApplyPresetUnknown(t *testing.T) {
	err := NewBurst().ApplyPreset("Teal", NewParams())
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestEveryPresetLaunchesAndExpires(t *testing.T) {
	reg := Builtins()
	for _, name := range reg.List() {
		e, _ := reg.Get(name)
		for _, pr := range e.Presets() {
			p := NewParams()
			require.NoError(t, e.ApplyPreset(pr, p), "%s/%s", name, pr)
			// keep the test light; counts do not change the lifetime
			p.Set("Count", 50)

			em := e.Launch(mgl64.Vec3{0, 0, 0}, p, rand.New(rand.NewSource(1)))
			require.NotNil(t, em)
			steps := 0
			for em.Step(particle.NominalFrame) {
				steps++
				require.Less(t, steps, 5000, "%s/%s never expired", name, pr)
			}
			assert.True(t, em.IsExpired())
			em.Release()
			assert.True(t, em.Released())
		}
	}
}

func TestCrimsonMatchesYanhuaConstants(t *testing.T) {
	p := NewParams()
	require.NoError(t, NewBurst().ApplyPreset("Crimson", p))
	assert.Equal(t, 10000.0, p.Get("Count", 0))
	assert.Equal(t, 0.05, p.Get("Gravity", 0))
	assert.Equal(t, 0.015, p.Get("Decay", 0))

	b := NewBurst().Launch(mgl64.Vec3{}, p, rand.New(rand.NewSource(3))).(*particle.Burst)
	assert.Equal(t, 10000, b.Spawned())
	for _, q := range b.Particles()[:100] {
		assert.Equal(t, 1.0, q.Color.R)
		assert.Less(t, q.Color.G, 0.2)
	}
}

func TestShellPresetsBurstAtApex(t *testing.T) {
	p := NewParams()
	require.NoError(t, NewShell().ApplyPreset("Sphere", p))
	p.Set("Count", 10)
	s := NewShell().Launch(mgl64.Vec3{}, p, rand.New(rand.NewSource(2))).(*particle.Shell)
	for s.State() == particle.StateAscending {
		s.Step(time.Second / 60)
	}
	assert.Equal(t, 1, s.Transitions())
	ev := s.Events()
	require.Len(t, ev, 1)
	// apex of a ~5 unit/step climb at 0.15 gravity is well above the classic threshold
	assert.Greater(t, ev[0].Pos.Y(), 40.0)
}

func TestParamsCloneIsDeep(t *testing.T) {
	p := NewParams()
	p.Set("Count", 1)
	p.SetBool("AtApex", true)
	p.SetStr("Color", "hue")
	c := p.Clone()
	c.Set("Count", 2)
	c.SetStr("Color", "palette")
	assert.Equal(t, 1.0, p.Get("Count", 0))
	assert.Equal(t, "hue", p.Str("Color", ""))
	assert.True(t, c.Bool("AtApex", false))
}

func TestColorPolicy(t *testing.T) {
	p := NewParams()
	assert.Equal(t, particle.DefaultPalette, colorPolicy(p))
	p.SetStr("Color", "#00ff00")
	assert.Equal(t, particle.Solid{C: particle.DefaultPalette.Colors[1]}, colorPolicy(p))
	p.Set("ColorJitter", 0.1)
	assert.IsType(t, particle.Jitter{}, colorPolicy(p))
	p.SetStr("Color", "not-a-colour")
	assert.Equal(t, particle.DefaultPalette, colorPolicy(p))
}

func TestPresetIgnoresThePreviousEffect(t *testing.T) {
	reg := Builtins()
	launch := func(e Effect, p *Params) particle.Buffers {
		em := e.Launch(mgl64.Vec3{1, 2, 3}, p, rand.New(rand.NewSource(5)))
		for i := 0; i < 3; i++ {
			em.Step(particle.NominalFrame)
		}
		return particle.Snapshot(em)
	}
	for _, name := range reg.List() {
		e, _ := reg.Get(name)
		for _, pr := range e.Presets() {
			fresh := NewParams()
			require.NoError(t, e.ApplyPreset(pr, fresh))

			used := NewParams()
			for _, other := range reg.List() {
				o, _ := reg.Get(other)
				for _, opr := range o.Presets() {
					require.NoError(t, o.ApplyPreset(opr, used))
				}
			}
			require.NoError(t, e.ApplyPreset(pr, used))

			assert.Equal(t, launch(e, fresh), launch(e, used), "%s/%s output", name, pr)
		}
	}
}

func TestCrimsonIsOpaqueAfterShell(t *testing.T) {
	p := NewParams()
	require.NoError(t, NewShell().ApplyPreset("Classic", p))
	require.NoError(t, NewBurst().ApplyPreset("Crimson", p))
	p.Set("Count", 10)
	em := NewBurst().Launch(mgl64.Vec3{}, p, rand.New(rand.NewSource(1)))
	b := particle.Snapshot(em)
	require.Equal(t, 10, b.Len())
	assert.Equal(t, float32(1), b.Opacities[0])
}

func TestParamsIntClamps(t *testing.T) {
	p := NewParams()
	assert.Equal(t, 7, p.Int("Count", 7, 100))
	p.Set("Count", 1e16)
	assert.Equal(t, 100, p.Int("Count", 7, 100))
	p.Set("Count", -3)
	assert.Equal(t, 0, p.Int("Count", 7, 100))
	p.Set("Count", math.NaN())
	assert.Equal(t, 0, p.Int("Count", 7, 100))
	p.Set("Count", 42.9)
	assert.Equal(t, 42, p.Int("Count", 7, 100))
}

func TestHugeCountsAreCapped(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, e := range []Effect{NewBurst(), NewShell()} {
		p := NewParams()
		require.NoError(t, e.ApplyPreset(e.Presets()[0], p))
		p.Set("Count", math.Inf(1))
		p.Set("Fuse", 1)
		em := e.Launch(mgl64.Vec3{}, p, rng)
		for i := 0; i < 2; i++ {
			em.Step(particle.NominalFrame)
		}
		assert.LessOrEqual(t, em.Live(), particle.MaxParticles+1, e.Name())
		em.Release()
	}

	p := NewParams()
	require.NoError(t, NewSmoke().ApplyPreset("Column", p))
	p.Set("Prime", 1e16)
	p.Set("Duration", 1e300)
	em := NewSmoke().Launch(mgl64.Vec3{}, p, rng)
	assert.Equal(t, particle.MaxParticles, em.Live())
}
