package fake

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-embers/internal/particle"
	"github.com/coreman2200/funtimes-embers/internal/render"
)

func TestSinkSummarises(t *testing.T) {
	var buf bytes.Buffer
	d := New(2, 1)
	d.log = zerolog.New(&buf)

	f1 := &render.Frame{ID: 1, Events: []particle.Event{{Kind: particle.EventLaunched}}}
	f1.Particles.Append(&particle.Particle{Pos: mgl64.Vec3{2, 4, 6}, Life: 1})
	f1.Particles.Append(&particle.Particle{Pos: mgl64.Vec3{0, 0, 0}, Life: 1})
	f2 := &render.Frame{ID: 2, Events: []particle.Event{{Kind: particle.EventExploded}, {Kind: particle.EventExpired}}}
	require.NoError(t, d.Draw(f1))
	require.NoError(t, d.Draw(f2))

	assert.Equal(t, 2, d.Count)
	assert.Equal(t, 1, d.Total(particle.EventLaunched))
	assert.Equal(t, 1, d.Total(particle.EventExpired))
	assert.Equal(t, 2, d.Peak())
	require.Len(t, d.Frames(), 1)
	assert.Same(t, f1, d.Frames()[0])

	// only every second frame is logged
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, 2.0, entry["frame"])

	buf.Reset()
	require.NoError(t, d.Close())
	assert.Contains(t, buf.String(), `"peak_particles":2`)
}

func TestSinkCentroid(t *testing.T) {
	var buf bytes.Buffer
	d := New(0, -1)
	d.log = zerolog.New(&buf)
	f := &render.Frame{ID: 1}
	f.Particles.Append(&particle.Particle{Pos: mgl64.Vec3{2, 4, 6}, Life: 1})
	f.Particles.Append(&particle.Particle{Pos: mgl64.Vec3{0, 0, 0}, Life: 1})
	require.NoError(t, d.Draw(f))
	assert.Contains(t, buf.String(), `"centroid":[1,2,3]`)
}
