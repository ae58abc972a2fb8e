package particle

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// VelocityPolicy picks the initial velocity of particle i out of n.
type VelocityPolicy interface {
	Velocity(i, n int, rng *rand.Rand) mgl64.Vec3
}

// VelocityFunc adapts a plain function to VelocityPolicy.
type VelocityFunc func(i, n int, rng *rand.Rand) mgl64.Vec3

func (f VelocityFunc) Velocity(i, n int, rng *rand.Rand) mgl64.Vec3 { return f(i, n, rng) }

// Still gives every particle zero velocity.
type Still struct{}

func (Still) Velocity(int, int, *rand.Rand) mgl64.Vec3 { return mgl64.Vec3{} }

// UniformSphere draws a random direction from independent polar angles and a
// speed in [MinSpeed, MaxSpeed).
type UniformSphere struct {
	MinSpeed, MaxSpeed float64
}

func (u UniformSphere) Velocity(_, _ int, rng *rand.Rand) mgl64.Vec3 {
	phi := rng.Float64() * 2 * math.Pi
	theta := rng.Float64() * math.Pi
	v := u.MinSpeed + rng.Float64()*(u.MaxSpeed-u.MinSpeed)
	return mgl64.Vec3{
		v * math.Sin(theta) * math.Cos(phi),
		v * math.Sin(theta) * math.Sin(phi),
		v * math.Cos(theta),
	}
}

// FibonacciSphere spreads n particles evenly over the sphere along a golden
// spiral. Magnitude is Base*(1+rand*Jitter).
type FibonacciSphere struct {
	Base, Jitter float64
}

func (f FibonacciSphere) Velocity(i, n int, rng *rand.Rand) mgl64.Vec3 {
	if n <= 0 {
		n = 1
	}
	phi := math.Acos(-1 + 2*float64(i)/float64(n))
	theta := math.Sqrt(float64(n)*math.Pi) * phi
	dir := mgl64.Vec3{
		math.Cos(theta) * math.Sin(phi),
		math.Sin(theta) * math.Sin(phi),
		math.Cos(phi),
	}
	return dir.Mul(f.Base * (1 + rng.Float64()*f.Jitter))
}

// Ring lays particles out on Rings flat circles with a small depth wobble and
// an upward bias of Lift.
type Ring struct {
	Rings  int
	Base   float64
	Spread float64 // depth wobble amplitude
	Lift   float64
}

func (r Ring) Velocity(i, n int, rng *rand.Rand) mgl64.Vec3 {
	rings := r.Rings
	if rings <= 0 {
		rings = 1
	}
	per := n / rings
	if per < 1 {
		per = 1
	}
	angle := float64(i%per) / float64(per) * 2 * math.Pi
	v := mgl64.Vec3{
		math.Cos(angle),
		math.Sin(angle),
		(rng.Float64() - 0.5) * r.Spread,
	}.Mul(r.Base * (0.8 + rng.Float64()*0.4))
	v[1] += r.Lift
	return v
}

// Willow throws particles outwards with a strong upward component so they
// droop under gravity.
type Willow struct {
	Base float64
}

func (w Willow) Velocity(_, _ int, rng *rand.Rand) mgl64.Vec3 {
	angle := rng.Float64() * 2 * math.Pi
	return mgl64.Vec3{
		math.Cos(angle),
		math.Abs(math.Sin(angle)) * 2,
		math.Sin(angle),
	}.Mul(w.Base * (0.5 + rng.Float64()*0.5))
}

// Cone emits uniformly inside a cone of HalfAngle radians around Dir.
type Cone struct {
	Dir                mgl64.Vec3
	HalfAngle          float64
	MinSpeed, MaxSpeed float64
}

func (c Cone) Velocity(_, _ int, rng *rand.Rand) mgl64.Vec3 {
	axis := c.Dir
	if axis.Len() == 0 {
		axis = mgl64.Vec3{0, 1, 0}
	}
	axis = axis.Normalize()
	u, v := basis(axis)

	cosMax := math.Cos(c.HalfAngle)
	cosT := 1 - rng.Float64()*(1-cosMax)
	sinT := math.Sqrt(math.Max(0, 1-cosT*cosT))
	phi := rng.Float64() * 2 * math.Pi

	dir := axis.Mul(cosT).
		Add(u.Mul(sinT * math.Cos(phi))).
		Add(v.Mul(sinT * math.Sin(phi)))
	speed := c.MinSpeed + rng.Float64()*(c.MaxSpeed-c.MinSpeed)
	return dir.Mul(speed)
}

// basis returns two unit vectors orthogonal to the unit vector n and to each other.
func basis(n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	ref := mgl64.Vec3{1, 0, 0}
	if math.Abs(n[0]) > 0.9 {
		ref = mgl64.Vec3{0, 1, 0}
	}
	u := n.Cross(ref).Normalize()
	return u, n.Cross(u)
}

// PatternByName resolves the burst shapes used by presets and show files.
func PatternByName(name string, base float64) (VelocityPolicy, bool) {
	switch name {
	case "sphere":
		return FibonacciSphere{Base: base, Jitter: 1}, true
	case "uniform":
		return UniformSphere{MinSpeed: base, MaxSpeed: 2 * base}, true
	case "ring":
		return Ring{Rings: 3, Base: base, Spread: 0.2, Lift: 0.5}, true
	case "willow":
		return Willow{Base: base}, true
	case "fountain":
		return Cone{Dir: mgl64.Vec3{0, 1, 0}, HalfAngle: math.Pi / 8, MinSpeed: base, MaxSpeed: 1.5 * base}, true
	}
	return nil, false
}
