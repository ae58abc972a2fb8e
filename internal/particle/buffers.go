package particle

// Buffers is the flat per-particle data handed to renderers. Positions and
// Colors carry 3 floats per particle, Sizes and Opacities 1.
//
// A Buffers value returned by an emitter is a copy: the emitter never writes
// to it again, so a sink may keep it for as long as it likes.
type Buffers struct {
	Positions []float32
	Colors    []float32
	Sizes     []float32
	Opacities []float32
}

// Len is the number of particles in the buffers.
func (b *Buffers) Len() int { return len(b.Sizes) }

// Reset truncates all slices, keeping their capacity.
func (b *Buffers) Reset() {
	b.Positions = b.Positions[:0]
	b.Colors = b.Colors[:0]
	b.Sizes = b.Sizes[:0]
	b.Opacities = b.Opacities[:0]
}

// Append adds one particle.
func (b *Buffers) Append(p *Particle) {
	b.Positions = append(b.Positions, float32(p.Pos[0]), float32(p.Pos[1]), float32(p.Pos[2]))
	b.Colors = append(b.Colors, float32(p.Color.R), float32(p.Color.G), float32(p.Color.B))
	b.Sizes = append(b.Sizes, float32(p.Size))
	b.Opacities = append(b.Opacities, float32(p.Opacity))
}

// Concat appends every particle of o.
func (b *Buffers) Concat(o Buffers) {
	b.Positions = append(b.Positions, o.Positions...)
	b.Colors = append(b.Colors, o.Colors...)
	b.Sizes = append(b.Sizes, o.Sizes...)
	b.Opacities = append(b.Opacities, o.Opacities...)
}

// Grow reserves room for n more particles.
func (b *Buffers) Grow(n int) {
	if n <= 0 {
		return
	}
	b.Positions = grow(b.Positions, 3*n)
	b.Colors = grow(b.Colors, 3*n)
	b.Sizes = grow(b.Sizes, n)
	b.Opacities = grow(b.Opacities, n)
}

func grow(s []float32, n int) []float32 {
	if cap(s)-len(s) >= n {
		return s
	}
	out := make([]float32, len(s), len(s)+n)
	copy(out, s)
	return out
}
