package sequence

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrNoClips is returned when a program has nothing to play.
var ErrNoClips = errors.New("program has no clips")

// Keyframe represents a value at time T (seconds) with an easing function
// that applies to the segment starting at this keyframe.
type Keyframe struct {
	T    float64 `json:"t" yaml:"t"`
	V    float64 `json:"v" yaml:"v"`
	Ease string  `json:"ease,omitempty" yaml:"ease,omitempty"` // "linear","smooth","cubic"
}

// Envelope is a sorted list of keyframes; Eval(t) interpolates a value.
// In show files it is written as a bare list of keyframes.
type Envelope struct {
	Keys []Keyframe
}

// Cue launches one emitter when the clip reaches AtS. An empty Effect
// uses the clip's effect; Random picks a point in the launch bounds
// instead of X,Y,Z.
type Cue struct {
	AtS    float64 `json:"atS" yaml:"atS"`
	Effect string  `json:"effect,omitempty" yaml:"effect,omitempty"`
	Preset string  `json:"preset,omitempty" yaml:"preset,omitempty"`
	X      float64 `json:"x,omitempty" yaml:"x,omitempty"`
	Y      float64 `json:"y,omitempty" yaml:"y,omitempty"`
	Z      float64 `json:"z,omitempty" yaml:"z,omitempty"`
	Random bool    `json:"random,omitempty" yaml:"random,omitempty"`
}

func (c Cue) At() mgl64.Vec3 { return mgl64.Vec3{c.X, c.Y, c.Z} }

// Clip is one segment of a show: selects an effect + preset for the spawn
// policy, sets duration, automates parameters and fires launch cues.
type Clip struct {
	Name      string              `json:"name" yaml:"name"`
	Effect    string              `json:"effect" yaml:"effect"`
	Preset    string              `json:"preset,omitempty" yaml:"preset,omitempty"`
	DurationS float64             `json:"durationS" yaml:"durationS"`
	Params    map[string]Envelope `json:"params,omitempty" yaml:"params,omitempty"` // numeric params over time
	Bools     map[string]Envelope `json:"bools,omitempty" yaml:"bools,omitempty"`   // 0..1 thresholded to bool
	Cues      []Cue               `json:"cues,omitempty" yaml:"cues,omitempty"`
}

// Program is a full sequence of clips.
type Program struct {
	Version string `json:"version" yaml:"version"` // e.g., "show.v1"
	Loop    bool   `json:"loop,omitempty" yaml:"loop,omitempty"`
	Seed    int64  `json:"seed,omitempty" yaml:"seed,omitempty"`
	Clips   []Clip `json:"clips" yaml:"clips"`
}

// PlayerState enumerates sequencer states.
type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
	Paused  PlayerState = "paused"
)

// Hooks are dependency-injected callbacks into the engine.
type Hooks struct {
	// Set the effect/preset the spawn policy uses.
	SetEffect func(name, preset string)
	// Parameter and boolean setters for the live params.
	SetParam func(name string, v float64)
	SetBool  func(name string, b bool)
	// One-shot launch for a cue.
	Launch func(c Cue)
}

// Player owns the current Program timeline and uses Hooks to drive the engine.
type Player struct {
	State PlayerState

	prog Program
	nowS float64 // position within the current pass
	idx  int     // current clip index
	pass int     // completed loops

	fired []bool // cues of the current clip already launched

	hooks Hooks
}
