// Package config reads the cube and show settings from YAML or TOML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type PowerCfg struct {
	LimitAmps   float64 `yaml:"limit_amps" toml:"limit_amps"`
	WhiteCap    float64 `yaml:"white_cap" toml:"white_cap"`
	SoftStartMs int     `yaml:"soft_start_ms" toml:"soft_start_ms"`
}

type Dim struct {
	X int `yaml:"x" toml:"x"`
	Y int `yaml:"y" toml:"y"`
	Z int `yaml:"z" toml:"z"`
}

type SPI struct {
	Dev     string `yaml:"dev" toml:"dev"`           // e.g. /dev/spidev0.0
	SpeedHz int    `yaml:"speed_hz" toml:"speed_hz"` // e.g. 2400000
}

// Box is an axis-aligned world box; a zero box means "use the default".
type Box struct {
	Min [3]float64 `yaml:"min" toml:"min"`
	Max [3]float64 `yaml:"max" toml:"max"`
}

func (b Box) IsZero() bool { return b == Box{} }

type Spawn struct {
	Probability float64 `yaml:"probability" toml:"probability"`
	MaxLive     int     `yaml:"max_live" toml:"max_live"`
}

type Show struct {
	Path  string `yaml:"path" toml:"path"`
	Watch bool   `yaml:"watch" toml:"watch"`
	Start bool   `yaml:"start" toml:"start"`
}

type Config struct {
	Driver     string  `yaml:"driver" toml:"driver"` // "spi" | "sim"
	ColorOrder string  `yaml:"color_order" toml:"color_order"`
	Brightness float64 `yaml:"brightness" toml:"brightness"`
	FPS        int     `yaml:"fps" toml:"fps"`
	Addr       string  `yaml:"addr,omitempty" toml:"addr,omitempty"`

	Dim             Dim     `yaml:"dim" toml:"dim"`
	PitchMM         float64 `yaml:"pitch_mm" toml:"pitch_mm"`
	PanelGapMM      float64 `yaml:"panel_gap_mm" toml:"panel_gap_mm"`
	XFlipEveryRow   bool    `yaml:"x_flip_every_row" toml:"x_flip_every_row"`
	YFlipEveryPanel bool    `yaml:"y_flip_every_panel" toml:"y_flip_every_panel"`

	Power   PowerCfg `yaml:"power" toml:"power"`
	ToneMap bool     `yaml:"tone_map,omitempty" toml:"tone_map,omitempty"`
	SPI     SPI      `yaml:"spi,omitempty" toml:"spi,omitempty"`

	// Fireworks
	Effect string             `yaml:"effect,omitempty" toml:"effect,omitempty"`
	Preset string             `yaml:"preset,omitempty" toml:"preset,omitempty"`
	Seed   int64              `yaml:"seed,omitempty" toml:"seed,omitempty"`
	Spawn  Spawn              `yaml:"spawn" toml:"spawn"`
	Bounds Box                `yaml:"bounds,omitempty" toml:"bounds,omitempty"`
	Camera Box                `yaml:"camera,omitempty" toml:"camera,omitempty"`
	Params map[string]float64 `yaml:"params,omitempty" toml:"params,omitempty"`
	Show   Show               `yaml:"show,omitempty" toml:"show,omitempty"`

	// Outputs besides the cube
	Term bool   `yaml:"term,omitempty" toml:"term,omitempty"`
	WAV  string `yaml:"wav,omitempty" toml:"wav,omitempty"`
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads path as TOML when it ends in .toml and as YAML otherwise.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if isTOML(path) {
		err = toml.Unmarshal(b, &c)
	} else {
		err = yaml.Unmarshal(b, &c)
	}
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	var (
		b   []byte
		err error
	)
	if isTOML(path) {
		b, err = toml.Marshal(c)
	} else {
		b, err = yaml.Marshal(c)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
