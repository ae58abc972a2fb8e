package effect

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/funtimes-embers/internal/particle"
)

// Smoke is a rising, swelling plume.
type Smoke struct{ presets presetTable }

func NewSmoke() *Smoke {
	s := &Smoke{}
	s.presets.base = preset{
		params: map[string]float64{
			"Rate": 0.5, "Duration": 300, "Radius": 2.5, "Rise": 0.1, "Drift": 0.05,
			"Size": 2, "Growth": 0.005, "BaseOpacity": 0.7, "Decay": 0.0043, "Prime": 0,
		},
		strings: map[string]string{"Color": "#888888"},
	}
	s.presets.add("Haze", preset{})
	s.presets.add("Column", preset{
		params: map[string]float64{
			"Rate": 0.9, "Duration": 240, "Radius": 0.5, "Rise": 0.25, "Drift": 0.02,
			"Size": 1, "Growth": 0.01, "BaseOpacity": 0.6, "Decay": 0.008, "Prime": 5,
		},
		strings: map[string]string{"Color": "#cccccc"},
	})
	return s
}

func (s *Smoke) Name() string      { return "smoke" }
func (s *Smoke) Presets() []string { return s.presets.list() }

func (s *Smoke) ApplyPreset(name string, p *Params) error {
	return s.presets.apply(s.Name(), name, p)
}

func (s *Smoke) Launch(at mgl64.Vec3, p *Params, rng *rand.Rand) particle.Emitter {
	c, err := colorful.Hex(p.Str("Color", "#888888"))
	if err != nil {
		c = colorful.Color{R: 0.5, G: 0.5, B: 0.5}
	}
	return particle.NewPlume(at, particle.PlumeOpts{
		Rate:        p.Get("Rate", 0.5),
		Duration:    p.Int("Duration", 300, MaxSteps),
		Radius:      p.Get("Radius", 2.5),
		Rise:        p.Get("Rise", 0.1),
		Drift:       p.Get("Drift", 0.05),
		Color:       c,
		Size:        p.Get("Size", 2),
		Growth:      p.Get("Growth", 0.005),
		BaseOpacity: p.Get("BaseOpacity", 0.7),
		Decay:       p.Get("Decay", 0.0043),
		Prime:       p.Int("Prime", 0, particle.MaxParticles),
	}, rng)
}
