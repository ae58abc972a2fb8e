package effect

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/coreman2200/funtimes-embers/internal/particle"
)

// Shell launches a rocket that climbs, leaves a trail and bursts.
type Shell struct{ presets presetTable }

func shellBase() map[string]float64 {
	return map[string]float64{
		"Count": 7000, "AscentSpeed": 5, "AscentJitter": 1, "AscentDrift": 0.5,
		"AscentGravity": 0.15, "ExplodeBelow": 20, "TrailChance": 0.3, "TrailDecay": 0.1,
		"Gravity": 0.08, "Drag": 0.97, "Decay": 0.01,
		"BurstSpeed": 2, "BurstJitter": 1.5, "Size": 0.3, "Opacity": 0.8, "ColorJitter": 0,
		"Fuse": 0,
	}
}

func NewShell() *Shell {
	s := &Shell{}
	s.presets.base = preset{
		params:  shellBase(),
		bools:   map[string]bool{"AtApex": false},
		strings: map[string]string{"Pattern": "sphere", "Color": "palette"},
	}
	s.presets.add("Classic", preset{})
	s.presets.add("Sphere", preset{
		bools:   map[string]bool{"AtApex": true},
		strings: map[string]string{"Pattern": "sphere", "Color": "palette"},
	})
	s.presets.add("Ring", preset{
		params:  map[string]float64{"Count": 3000, "BurstSpeed": 1.5},
		bools:   map[string]bool{"AtApex": true},
		strings: map[string]string{"Pattern": "ring", "Color": "palette"},
	})
	s.presets.add("Willow", preset{
		params: map[string]float64{
			"Count": 4000, "Gravity": 0.04, "Drag": 0.98, "Decay": 0.006,
			"BurstSpeed": 1, "ColorJitter": 0.15,
		},
		bools:   map[string]bool{"AtApex": true},
		strings: map[string]string{"Pattern": "willow", "Color": "#ffd700"},
	})
	return s
}

func (s *Shell) Name() string      { return "shell" }
func (s *Shell) Presets() []string { return s.presets.list() }

func (s *Shell) ApplyPreset(name string, p *Params) error {
	return s.presets.apply(s.Name(), name, p)
}

func (s *Shell) Launch(at mgl64.Vec3, p *Params, rng *rand.Rand) particle.Emitter {
	drift := p.Get("AscentDrift", 0.5)
	launch := mgl64.Vec3{
		(rng.Float64() - 0.5) * drift,
		p.Get("AscentSpeed", 5) + (rng.Float64()-0.5)*2*p.Get("AscentJitter", 1),
		(rng.Float64() - 0.5) * drift,
	}

	below := p.Get("ExplodeBelow", 20)
	if p.Bool("AtApex", false) {
		below = particle.AtApex
	}

	base := p.Get("BurstSpeed", 2)
	var vel particle.VelocityPolicy
	switch pattern := p.Str("Pattern", "sphere"); pattern {
	case "sphere":
		vel = particle.FibonacciSphere{Base: base, Jitter: p.Get("BurstJitter", 1.5)}
	default:
		v, ok := particle.PatternByName(pattern, base)
		if !ok {
			v = particle.FibonacciSphere{Base: base, Jitter: 1}
		}
		vel = v
	}

	colors := colorPolicy(p)
	return particle.NewShell(at, particle.ShellOpts{
		Launch:        launch,
		RocketColor:   colors.Color(0, rng),
		RocketSize:    p.Get("Size", 0.3) * 2,
		AscentGravity: p.Get("AscentGravity", 0.15),
		ExplodeBelow:  below,
		Fuse:          p.Int("Fuse", 0, MaxSteps),
		TrailChance:   p.Get("TrailChance", 0.3),
		TrailDecay:    p.Get("TrailDecay", 0.1),
		Burst: particle.BurstOpts{
			Count:    p.Int("Count", 7000, particle.MaxParticles),
			Color:    colors,
			Velocity: vel,
			Physics: particle.Physics{
				Gravity: p.Get("Gravity", 0.08),
				Drag:    p.Get("Drag", 0.97),
				Decay:   p.Get("Decay", 0.01),
			},
			Size:    p.Get("Size", 0.3),
			Opacity: p.Get("Opacity", 0.8),
		},
	}, rng)
}
