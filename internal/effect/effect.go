// Package effect turns named presets into particle emitters. Every effect is one
// algorithm from package particle; presets only differ in their constants.
package effect

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/coreman2200/funtimes-embers/internal/particle"
)

var (
	ErrUnknownEffect = errors.New("unknown effect")
	ErrUnknownPreset = errors.New("unknown preset")
)

// MaxSteps bounds step-count params such as a plume's Duration or a shell's Fuse.
const MaxSteps = 1 << 20

// Params are the live tunables shared by the engine, the show player and the
// control surface. Effects read them at launch time.
type Params struct {
	TimeScale float64
	Params    map[string]float64
	Bools     map[string]bool
	Strings   map[string]string
}

func NewParams() *Params {
	return &Params{
		TimeScale: 1,
		Params:    map[string]float64{},
		Bools:     map[string]bool{},
		Strings:   map[string]string{},
	}
}

// Get returns the value of key or def when it is not set.
func (p *Params) Get(key string, def float64) float64 {
	if p == nil {
		return def
	}
	if v, ok := p.Params[key]; ok {
		return v
	}
	return def
}

func (p *Params) Bool(key string, def bool) bool {
	if p == nil {
		return def
	}
	if v, ok := p.Bools[key]; ok {
		return v
	}
	return def
}

func (p *Params) Str(key, def string) string {
	if p == nil {
		return def
	}
	if v, ok := p.Strings[key]; ok && v != "" {
		return v
	}
	return def
}

func (p *Params) Set(key string, v float64) {
	if p.Params == nil {
		p.Params = map[string]float64{}
	}
	p.Params[key] = v
}

func (p *Params) SetBool(key string, v bool) {
	if p.Bools == nil {
		p.Bools = map[string]bool{}
	}
	p.Bools[key] = v
}

func (p *Params) SetStr(key, v string) {
	if p.Strings == nil {
		p.Strings = map[string]string{}
	}
	p.Strings[key] = v
}

// Int reads key as a count clamped to [0, limit]; NaN reads as 0.
func (p *Params) Int(key string, def, limit int) int {
	v := p.Get(key, float64(def))
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= float64(limit):
		return limit
	}
	return int(v)
}

// Clone returns a deep copy.
func (p *Params) Clone() *Params {
	out := NewParams()
	if p == nil {
		return out
	}
	out.TimeScale = p.TimeScale
	for k, v := range p.Params {
		out.Params[k] = v
	}
	for k, v := range p.Bools {
		out.Bools[k] = v
	}
	for k, v := range p.Strings {
		out.Strings[k] = v
	}
	return out
}

// Effect is a family of emitters sharing one algorithm.
type Effect interface {
	Name() string
	Presets() []string
	// ApplyPreset writes the preset's constants into p.
	ApplyPreset(name string, p *Params) error
	// Launch creates one emitter at the given point using the current params.
	Launch(at mgl64.Vec3, p *Params, rng *rand.Rand) particle.Emitter
}

type Registry struct{ m map[string]Effect }

func NewRegistry() *Registry { return &Registry{m: map[string]Effect{}} }

// Builtins returns a registry holding burst, shell and smoke.
func Builtins() *Registry {
	r := NewRegistry()
	r.Register(NewBurst())
	r.Register(NewShell())
	r.Register(NewSmoke())
	return r
}

func (r *Registry) Register(e Effect) {
	if e == nil {
		return
	}
	r.m[e.Name()] = e
}

func (r *Registry) Get(name string) (Effect, bool) { e, ok := r.m[name]; return e, ok }

// Lookup is Get with an ErrUnknownEffect error.
func (r *Registry) Lookup(name string) (Effect, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %q (no registry)", ErrUnknownEffect, name)
	}
	e, ok := r.m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, name)
	}
	return e, nil
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// preset is one named constant set.
type preset struct {
	params  map[string]float64
	bools   map[string]bool
	strings map[string]string
}

// presetTable keeps the preset order stable for Presets(). base holds every
// key the effect's Launch reads; a preset only lists what it changes, so
// applying one never leaves keys from another effect in play.
type presetTable struct {
	base  preset
	names []string
	m     map[string]preset
}

func (t *presetTable) add(name string, p preset) {
	if t.m == nil {
		t.m = map[string]preset{}
	}
	t.names = append(t.names, name)
	t.m[name] = p
}

func (t *presetTable) list() []string { return append([]string(nil), t.names...) }

func (t *presetTable) apply(effect, name string, p *Params) error {
	pr, ok := t.m[name]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrUnknownPreset, effect, name)
	}
	if p == nil {
		return nil
	}
	for _, src := range []preset{t.base, pr} {
		for k, v := range src.params {
			p.Set(k, v)
		}
		for k, v := range src.bools {
			p.SetBool(k, v)
		}
		for k, v := range src.strings {
			p.SetStr(k, v)
		}
	}
	return nil
}
