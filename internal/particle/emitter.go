package particle

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Emitter owns one effect instance from spawn to expiry.
type Emitter interface {
	// Step advances every live particle by dt and reports whether any survive.
	Step(dt time.Duration) bool
	// IsExpired is true once Step has reported no survivors.
	IsExpired() bool
	// Live is the number of particles currently alive.
	Live() int
	// AppendSnapshot copies the live particles into dst.
	AppendSnapshot(dst *Buffers)
	// Release frees the emitter's buffers. The emitter must not be stepped afterwards.
	Release()
	Released() bool
}

// EventSource is implemented by emitters that report phase changes.
type EventSource interface {
	// Events returns and clears the pending events.
	Events() []Event
}

// EventKind classifies an Event.
type EventKind string

const (
	EventLaunched EventKind = "launched"
	EventExploded EventKind = "exploded"
	EventExpired  EventKind = "expired"
)

// Event marks a lifecycle moment of an emitter.
type Event struct {
	Kind   EventKind      `json:"kind"`
	Pos    mgl64.Vec3     `json:"pos"`
	Color  colorful.Color `json:"-"`
	Effect string         `json:"effect,omitempty"`
}

// Snapshot returns the live particles of e as a fresh Buffers.
func Snapshot(e Emitter) Buffers {
	var b Buffers
	b.Grow(e.Live())
	e.AppendSnapshot(&b)
	return b
}
