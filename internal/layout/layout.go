package layout

import "github.com/go-gl/mathgl/mgl64"

type Dim struct{ X, Y, Z int }

type Serpentine struct {
	XFlipEveryRow   bool
	YFlipEveryPanel bool
}

type Layout struct {
	Dim        Dim
	Order      Serpentine
	PanelGapMM float64
	PitchMM    float64
}

// Index maps x,y,z -> linear LED index (0..N-1)
func (l Layout) Index(x, y, z int) int {
	yy := y
	xx := x
	if (y%2 == 1) && l.Order.XFlipEveryRow {
		xx = l.Dim.X - 1 - x
	}
	if l.Order.YFlipEveryPanel && (z%2 == 1) {
		yy = l.Dim.Y - 1 - y
	}
	perPanel := l.Dim.X * l.Dim.Y
	return z*perPanel + yy*l.Dim.X + xx
}

func (l Layout) Count() int {
	return l.Dim.X * l.Dim.Y * l.Dim.Z
}

// ExtentMM is the physical size of the cube: pitch spacing within a panel,
// panel gap between panels.
func (l Layout) ExtentMM() mgl64.Vec3 {
	return mgl64.Vec3{
		float64(max(0, l.Dim.X-1)) * l.PitchMM,
		float64(max(0, l.Dim.Y-1)) * l.PitchMM,
		float64(max(0, l.Dim.Z-1)) * l.PanelGapMM,
	}
}

// LUT returns the position of every LED, indexed like Index, with each axis
// fitted to [0,1]. A single-LED axis sits at 0.5.
func (l Layout) LUT() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, l.Count())
	for z := 0; z < l.Dim.Z; z++ {
		for y := 0; y < l.Dim.Y; y++ {
			for x := 0; x < l.Dim.X; x++ {
				out[l.Index(x, y, z)] = mgl64.Vec3{
					unit(x, l.Dim.X),
					unit(y, l.Dim.Y),
					unit(z, l.Dim.Z),
				}
			}
		}
	}
	return out
}

// Coord is the inverse of Index.
func (l Layout) Coord(i int) (x, y, z int) {
	perPanel := l.Dim.X * l.Dim.Y
	z = i / perPanel
	rem := i % perPanel
	yy := rem / l.Dim.X
	xx := rem % l.Dim.X
	y = yy
	if l.Order.YFlipEveryPanel && z%2 == 1 {
		y = l.Dim.Y - 1 - yy
	}
	x = xx
	if l.Order.XFlipEveryRow && y%2 == 1 {
		x = l.Dim.X - 1 - xx
	}
	return x, y, z
}

func unit(i, n int) float64 {
	if n <= 1 {
		return 0.5
	}
	return float64(i) / float64(n-1)
}
