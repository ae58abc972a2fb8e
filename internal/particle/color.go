package particle

import (
	"fmt"
	"math/rand"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ColorPolicy picks the spawn colour of particle i.
type ColorPolicy interface {
	Color(i int, rng *rand.Rand) colorful.Color
}

// Solid paints every particle the same colour.
type Solid struct{ C colorful.Color }

func (s Solid) Color(int, *rand.Rand) colorful.Color { return s.C }

// Jitter lifts each zero channel of Base by a random amount in [0, Amount).
// Crimson bursts use it: full red with a little green and blue noise.
type Jitter struct {
	Base   colorful.Color
	Amount float64
}

func (j Jitter) Color(_ int, rng *rand.Rand) colorful.Color {
	c := j.Base
	if c.R == 0 {
		c.R = rng.Float64() * j.Amount
	}
	if c.G == 0 {
		c.G = rng.Float64() * j.Amount
	}
	if c.B == 0 {
		c.B = rng.Float64() * j.Amount
	}
	return c.Clamped()
}

// Palette picks uniformly from Colors.
type Palette struct{ Colors []colorful.Color }

func (p Palette) Color(_ int, rng *rand.Rand) colorful.Color {
	if len(p.Colors) == 0 {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	return p.Colors[rng.Intn(len(p.Colors))]
}

// Pick returns one random palette entry.
func (p Palette) Pick(rng *rand.Rand) colorful.Color { return p.Color(0, rng) }

// Hue picks a random hue at fixed saturation and value.
type Hue struct {
	Saturation, Value float64
}

func (h Hue) Color(_ int, rng *rand.Rand) colorful.Color {
	return colorful.Hsv(rng.Float64()*360, h.Saturation, h.Value)
}

// DefaultPalette is the twelve-colour firework set.
var DefaultPalette = MustParsePalette(
	"#ff0000", "#00ff00", "#0000ff", "#ff00ff",
	"#ffff00", "#00ffff", "#ff8c00", "#ff1493",
	"#4169e1", "#ffd700", "#00fa9a", "#9400d3",
)

// ParsePalette reads hex colours such as "#ff8c00".
func ParsePalette(hexes ...string) (Palette, error) {
	p := Palette{Colors: make([]colorful.Color, 0, len(hexes))}
	for _, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			return Palette{}, fmt.Errorf("palette colour %q: %w", h, err)
		}
		p.Colors = append(p.Colors, c)
	}
	return p, nil
}

func MustParsePalette(hexes ...string) Palette {
	p, err := ParsePalette(hexes...)
	if err != nil {
		panic(err)
	}
	return p
}
