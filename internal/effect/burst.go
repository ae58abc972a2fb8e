package effect

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/funtimes-embers/internal/particle"
)

// Burst is a single spherical explosion that appears in mid-air.
type Burst struct{ presets presetTable }

func NewBurst() *Burst {
	b := &Burst{}
	b.presets.base = preset{
		params: map[string]float64{
			"Count": 10000, "Gravity": 0.05, "Drag": 1, "Decay": 0.015,
			"MinSpeed": 2, "MaxSpeed": 4, "Size": 0.3, "Opacity": 1, "ColorJitter": 0,
		},
		strings: map[string]string{"Color": "palette", "Pattern": "uniform"},
	}
	b.presets.add("Crimson", preset{
		params:  map[string]float64{"ColorJitter": 0.2},
		strings: map[string]string{"Color": "#ff0000", "Pattern": "uniform"},
	})
	b.presets.add("Gold", preset{
		params: map[string]float64{
			"Count": 4000, "Gravity": 0.03, "Drag": 0.98, "Decay": 0.01,
			"MinSpeed": 1, "MaxSpeed": 3, "Size": 0.25, "ColorJitter": 0.1,
		},
		strings: map[string]string{"Color": "#ffd700", "Pattern": "uniform"},
	})
	b.presets.add("Rainbow", preset{
		params:  map[string]float64{"Count": 6000},
		strings: map[string]string{"Color": "palette", "Pattern": "sphere"},
	})
	return b
}

func (b *Burst) Name() string      { return "burst" }
func (b *Burst) Presets() []string { return b.presets.list() }

func (b *Burst) ApplyPreset(name string, p *Params) error {
	return b.presets.apply(b.Name(), name, p)
}

func (b *Burst) Launch(at mgl64.Vec3, p *Params, rng *rand.Rand) particle.Emitter {
	minS, maxS := p.Get("MinSpeed", 2), p.Get("MaxSpeed", 4)
	var vel particle.VelocityPolicy = particle.UniformSphere{MinSpeed: minS, MaxSpeed: maxS}
	if name := p.Str("Pattern", "uniform"); name != "uniform" {
		if v, ok := particle.PatternByName(name, minS); ok {
			vel = v
		}
	}
	return particle.SpawnBurst(at, particle.BurstOpts{
		Count:    p.Int("Count", 10000, particle.MaxParticles),
		Color:    colorPolicy(p),
		Velocity: vel,
		Physics: particle.Physics{
			Gravity:      p.Get("Gravity", 0.05),
			Drag:         p.Get("Drag", 1),
			Decay:        p.Get("Decay", 0.015),
			SizeFromLife: true,
		},
		Size:    p.Get("Size", 0.3),
		Opacity: p.Get("Opacity", 1),
	}, rng)
}

// colorPolicy reads "Color": "palette", "hue" or a hex colour, jittered by
// "ColorJitter". Unparsable colours fall back to the palette.
func colorPolicy(p *Params) particle.ColorPolicy {
	switch c := p.Str("Color", "palette"); c {
	case "palette":
		return particle.DefaultPalette
	case "hue":
		return particle.Hue{Saturation: 1, Value: 1}
	default:
		base, err := colorful.Hex(c)
		if err != nil {
			return particle.DefaultPalette
		}
		if j := p.Get("ColorJitter", 0); j > 0 {
			return particle.Jitter{Base: base, Amount: j}
		}
		return particle.Solid{C: base}
	}
}
