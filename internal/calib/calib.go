// Package calib drives wiring test patterns on the physical cube.
package calib

import "github.com/coreman2200/funtimes-embers/internal/layout"

type Kind string

const (
	None       Kind = ""
	IndexSweep Kind = "index_sweep"
	RGBTest    Kind = "rgb_channels"
	PlaneZ     Kind = "plane_z"
)

// Kinds lists the runnable patterns.
func Kinds() []Kind { return []Kind{IndexSweep, RGBTest, PlaneZ} }

// Parse resolves a pattern name; ok is false for unknown names.
func Parse(name string) (Kind, bool) {
	for _, k := range Kinds() {
		if string(k) == name {
			return k, true
		}
	}
	return None, false
}

type Runner struct {
	kind   Kind
	step   int
	cycles int
}

// NewRunner starts a pattern. RGBTest has no natural end and runs for
// cycles frames (3 if zero).
func NewRunner(kind Kind, cycles int) *Runner {
	if cycles <= 0 {
		cycles = 3
	}
	return &Runner{kind: kind, cycles: cycles}
}

func (r *Runner) Kind() Kind { return r.kind }

// Step fills rgb for the next frame; returns false when complete.
func (r *Runner) Step(l layout.Layout, rgb []byte) bool {
	n := l.Count()
	if len(rgb) < n*3 {
		return false
	}
	clear(rgb[:n*3])

	switch r.kind {
	case IndexSweep:
		idx := r.step
		if idx >= n {
			return false
		}
		rgb[idx*3+0], rgb[idx*3+1], rgb[idx*3+2] = 255, 255, 255
	case RGBTest:
		if r.step >= r.cycles {
			return false
		}
		ch := r.step % 3
		for i := 0; i < n; i++ {
			rgb[i*3+ch] = 255
		}
	case PlaneZ:
		perPanel := l.Dim.X * l.Dim.Y
		z := r.step
		if z >= l.Dim.Z {
			return false
		}
		for i := z * perPanel; i < (z+1)*perPanel; i++ {
			rgb[i*3+1], rgb[i*3+2] = 255, 255 // cyan
		}
	default:
		return false
	}
	r.step++
	return true
}
