package render

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/coreman2200/funtimes-embers/internal/calib"
	"github.com/coreman2200/funtimes-embers/internal/effect"
	"github.com/coreman2200/funtimes-embers/internal/layout"
	"github.com/coreman2200/funtimes-embers/internal/led"
	"github.com/coreman2200/funtimes-embers/internal/particle"
)

// Voxelize splats every particle into the LED lattice. Each particle adds its
// colour times opacity times gain, with a linear falloff over radius
// (normalised cube units), to every LED in reach.
func Voxelize(dst []Color, l layout.Layout, lut []mgl64.Vec3, cam Camera, b particle.Buffers, radius, gain float64) {
	for i := range dst {
		dst[i] = Color{}
	}
	if radius <= 0 || l.Count() == 0 {
		return
	}
	span := [3]int{l.Dim.X - 1, l.Dim.Y - 1, l.Dim.Z - 1}
	for i := 0; i < b.Len(); i++ {
		p := cam.Normalize(mgl64.Vec3{
			float64(b.Positions[i*3]),
			float64(b.Positions[i*3+1]),
			float64(b.Positions[i*3+2]),
		})
		var lo, hi [3]int
		visible := true
		for a := 0; a < 3; a++ {
			lo[a] = int(math.Floor((p[a] - radius) * float64(span[a])))
			hi[a] = int(math.Ceil((p[a] + radius) * float64(span[a])))
			if span[a] == 0 {
				lo[a], hi[a] = 0, 0
			}
			lo[a] = max(lo[a], 0)
			hi[a] = min(hi[a], span[a])
			if lo[a] > hi[a] {
				visible = false
			}
		}
		if !visible {
			continue
		}
		k := float32(float64(b.Opacities[i]) * gain)
		c := Color{b.Colors[i*3] * k, b.Colors[i*3+1] * k, b.Colors[i*3+2] * k}
		for z := lo[2]; z <= hi[2]; z++ {
			for y := lo[1]; y <= hi[1]; y++ {
				for x := lo[0]; x <= hi[0]; x++ {
					idx := l.Index(x, y, z)
					d := p.Sub(lut[idx]).Len()
					if d >= radius {
						continue
					}
					w := float32(1 - d/radius)
					dst[idx].R += c.R * w
					dst[idx].G += c.G * w
					dst[idx].B += c.B * w
				}
			}
		}
	}
}

// VoxelSink renders frames onto an LED cube: voxelize, afterglow, LED post,
// 8-bit, write. While a calibration pattern runs it replaces the particles.
//
// Params read: "VoxelRadius" (0.12), "VoxelGain" (0.15), "Afterglow" (0.6,
// share of the previous frame kept), "Brightness" (1) and the ApplyLED set.
type VoxelSink struct {
	Drv    led.Driver
	Layout layout.Layout
	Camera Camera
	Params *effect.Params

	mu    sync.Mutex
	lut   []mgl64.Vec3
	cur   []Color
	prev  []Color
	out   []Color
	rgb   []byte
	calib *calib.Runner

	Frames int
}

func NewVoxelSink(drv led.Driver, l layout.Layout, cam Camera, p *effect.Params) *VoxelSink {
	n := l.Count()
	return &VoxelSink{
		Drv:    drv,
		Layout: l,
		Camera: cam,
		Params: p,
		lut:    l.LUT(),
		cur:    make([]Color, n),
		prev:   make([]Color, n),
		out:    make([]Color, n),
		rgb:    make([]byte, n*3),
	}
}

// RunCalibration starts a wiring pattern; it ends by itself.
func (v *VoxelSink) RunCalibration(k calib.Kind) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.calib = calib.NewRunner(k, 0)
}

// Calibrating reports whether a pattern is still running.
func (v *VoxelSink) Calibrating() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calib != nil
}

func (v *VoxelSink) Draw(f *Frame) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.calib != nil {
		if v.calib.Step(v.Layout, v.rgb) {
			v.Frames++
			return v.write()
		}
		v.calib = nil
	}

	p := v.Params
	Voxelize(v.cur, v.Layout, v.lut, v.Camera, f.Particles, p.Get("VoxelRadius", 0.12), p.Get("VoxelGain", 0.15))
	keep := p.Get("Afterglow", 0.6)
	Mix(v.out, v.cur, v.prev, keep)
	Lighten(v.out, v.cur)
	copy(v.prev, v.out)

	ApplyLED(v.out, p)
	bright := float32(p.Get("Brightness", 1))
	for i, c := range v.out {
		v.rgb[i*3+0] = toByte(c.R * bright)
		v.rgb[i*3+1] = toByte(c.G * bright)
		v.rgb[i*3+2] = toByte(c.B * bright)
	}
	v.Frames++
	return v.write()
}

func (v *VoxelSink) write() error {
	if v.Drv == nil {
		return nil
	}
	return v.Drv.Write(v.rgb)
}

// RGB returns a copy of the last 8-bit frame.
func (v *VoxelSink) RGB() []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]byte(nil), v.rgb...)
}

func (v *VoxelSink) Close() error {
	if v.Drv == nil {
		return nil
	}
	return v.Drv.Close()
}

func toByte(x float32) byte {
	return byte(clamp01(x)*255 + 0.5)
}
