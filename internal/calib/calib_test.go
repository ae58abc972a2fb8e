package calib

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreman2200/funtimes-embers/internal/layout"
)

func TestIndexSweepLightsOneLEDPerFrame(t *testing.T) {
	l := layout.Layout{Dim: layout.Dim{X: 2, Y: 2, Z: 2}}
	rgb := make([]byte, l.Count()*3)
	r := NewRunner(IndexSweep, 0)
	for i := 0; i < l.Count(); i++ {
		if !r.Step(l, rgb) {
			t.Fatalf("sweep ended early at %d", i)
		}
		lit := 0
		for j := 0; j < l.Count(); j++ {
			if rgb[j*3] == 255 {
				lit++
				assert.Equal(t, i, j)
			}
		}
		assert.Equal(t, 1, lit)
	}
	assert.False(t, r.Step(l, rgb))
}

func TestPlaneZ(t *testing.T) {
	l := layout.Layout{Dim: layout.Dim{X: 2, Y: 1, Z: 3}}
	rgb := make([]byte, l.Count()*3)
	r := NewRunner(PlaneZ, 0)
	assert.True(t, r.Step(l, rgb))
	assert.Equal(t, []byte{0, 255, 255, 0, 255, 255, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, rgb)
	assert.True(t, r.Step(l, rgb))
	assert.True(t, r.Step(l, rgb))
	assert.False(t, r.Step(l, rgb))
}

func TestRGBCycles(t *testing.T) {
	l := layout.Layout{Dim: layout.Dim{X: 1, Y: 1, Z: 1}}
	rgb := make([]byte, 3)
	r := NewRunner(RGBTest, 3)
	want := [][]byte{{255, 0, 0}, {0, 255, 0}, {0, 0, 255}}
	for _, w := range want {
		assert.True(t, r.Step(l, rgb))
		assert.Equal(t, w, rgb)
	}
	assert.False(t, r.Step(l, rgb))
}

func TestParse(t *testing.T) {
	k, ok := Parse("plane_z")
	assert.True(t, ok)
	assert.Equal(t, PlaneZ, k)
	_, ok = Parse("strobe")
	assert.False(t, ok)
}
