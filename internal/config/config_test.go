package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cubeYAML = `
driver: spi
color_order: GRB
brightness: 0.5
fps: 50
dim: {x: 5, y: 26, z: 5}
pitch_mm: 10
panel_gap_mm: 50
x_flip_every_row: true
power: {limit_amps: 3, white_cap: 2.2}
spi: {dev: /dev/spidev0.0, speed_hz: 2400000}
effect: shell
preset: Willow
spawn: {probability: 0.05, max_live: 8}
params:
  Gravity: 0.06
show: {path: shows/finale.yaml, watch: true}
`

const cubeTOML = `
driver = "sim"
fps = 30
effect = "burst"
preset = "Gold"

[dim]
x = 8
y = 8
z = 8

[spawn]
probability = 0.1
max_live = 4

[camera]
min = [-10.0, 0.0, -10.0]
max = [10.0, 40.0, 10.0]

[params]
Decay = 0.02
`

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	c, err := Load(write(t, "config.yaml", cubeYAML))
	require.NoError(t, err)
	assert.Equal(t, "spi", c.Driver)
	assert.Equal(t, Dim{5, 26, 5}, c.Dim)
	assert.Equal(t, 2400000, c.SPI.SpeedHz)
	assert.Equal(t, "Willow", c.Preset)
	assert.Equal(t, Spawn{Probability: 0.05, MaxLive: 8}, c.Spawn)
	assert.Equal(t, 0.06, c.Params["Gravity"])
	assert.True(t, c.Show.Watch)
	assert.True(t, c.Camera.IsZero())
}

func TestLoadTOML(t *testing.T) {
	c, err := Load(write(t, "config.toml", cubeTOML))
	require.NoError(t, err)
	assert.Equal(t, "sim", c.Driver)
	assert.Equal(t, 30, c.FPS)
	assert.Equal(t, Dim{8, 8, 8}, c.Dim)
	assert.Equal(t, 4, c.Spawn.MaxLive)
	assert.Equal(t, [3]float64{10, 40, 10}, c.Camera.Max)
	assert.Equal(t, 0.02, c.Params["Decay"])
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.toml"} {
		path := filepath.Join(t.TempDir(), name)
		in := &Config{Driver: "sim", FPS: 60, Effect: "smoke", Dim: Dim{3, 3, 3}}
		require.NoError(t, Save(path, in), name)
		out, err := Load(path)
		require.NoError(t, err, name)
		assert.Equal(t, in.Effect, out.Effect, name)
		assert.Equal(t, in.Dim, out.Dim, name)
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	_, err = Load(write(t, "bad.toml", "fps = [\n"))
	assert.ErrorContains(t, err, "bad.toml")
}

func TestExampleConfigLoads(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config.example.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "shows/finale.yaml", c.Show.Path)
	assert.Equal(t, 800, c.Power.SoftStartMs)
}
