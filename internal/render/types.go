package render

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// Color is a linear RGB voxel value; channels may exceed 1 before post.
type Color struct{ R, G, B float32 }

// Bounds is an axis-aligned box in world units.
type Bounds struct{ Min, Max mgl64.Vec3 }

// Sample returns a uniformly random point inside b.
func (b Bounds) Sample(rng *rand.Rand) mgl64.Vec3 {
	var p mgl64.Vec3
	for i := 0; i < 3; i++ {
		p[i] = b.Min[i] + rng.Float64()*(b.Max[i]-b.Min[i])
	}
	return p
}

func (b Bounds) Contains(p mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// DefaultLaunchBounds is the volume random launches are drawn from.
var DefaultLaunchBounds = Bounds{
	Min: mgl64.Vec3{-30, 0, -20},
	Max: mgl64.Vec3{30, 25, 20},
}
