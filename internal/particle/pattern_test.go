package particle

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFibonacciSphereMagnitude(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	f := FibonacciSphere{Base: 2, Jitter: 1.5}
	for i := 0; i < 500; i++ {
		l := f.Velocity(i, 500, rng).Len()
		assert.GreaterOrEqual(t, l, 2.0-1e-9)
		assert.Less(t, l, 2*(1+1.5)+1e-9)
	}
}

func TestUniformSphereSpeedRange(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	u := UniformSphere{MinSpeed: 2, MaxSpeed: 4}
	for i := 0; i < 500; i++ {
		l := u.Velocity(i, 500, rng).Len()
		assert.GreaterOrEqual(t, l, 2.0-1e-9)
		assert.Less(t, l, 4.0+1e-9)
	}
}

func TestConeStaysInsideHalfAngle(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	c := Cone{Dir: mgl64.Vec3{1, 1, 0}, HalfAngle: math.Pi / 6, MinSpeed: 1, MaxSpeed: 2}
	axis := c.Dir.Normalize()
	for i := 0; i < 500; i++ {
		v := c.Velocity(i, 500, rng)
		cos := v.Normalize().Dot(axis)
		assert.GreaterOrEqual(t, cos, math.Cos(c.HalfAngle)-1e-9)
	}
}

func TestConeDefaultsToUp(t *testing.T) {
	v := Cone{HalfAngle: 0, MinSpeed: 3, MaxSpeed: 3}.Velocity(0, 1, rand.New(rand.NewSource(4)))
	assert.InDelta(t, 3, v.Y(), 1e-9)
	assert.InDelta(t, 0, v.X(), 1e-9)
}

func TestRingLift(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	r := Ring{Rings: 2, Base: 0, Lift: 0.5}
	v := r.Velocity(3, 10, rng)
	assert.Equal(t, mgl64.Vec3{0, 0.5, 0}, v)
}

func TestWillowAlwaysRises(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	for i := 0; i < 200; i++ {
		assert.GreaterOrEqual(t, Willow{Base: 1}.Velocity(i, 200, rng).Y(), 0.0)
	}
}

func TestPatternByName(t *testing.T) {
	for _, name := range []string{"sphere", "uniform", "ring", "willow", "fountain"} {
		p, ok := PatternByName(name, 1)
		require.True(t, ok, name)
		assert.NotNil(t, p)
	}
	_, ok := PatternByName("spiral", 1)
	assert.False(t, ok)
}

func TestBasisIsOrthonormal(t *testing.T) {
	for _, n := range []mgl64.Vec3{{0, 1, 0}, {1, 0, 0}, mgl64.Vec3{1, 2, 3}.Normalize()} {
		u, v := basis(n)
		assert.InDelta(t, 1, u.Len(), 1e-9)
		assert.InDelta(t, 1, v.Len(), 1e-9)
		assert.InDelta(t, 0, u.Dot(n), 1e-9)
		assert.InDelta(t, 0, v.Dot(n), 1e-9)
		assert.InDelta(t, 0, u.Dot(v), 1e-9)
	}
}
