// Package audio records firework events as a soundtrack.
package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// chirp is a sine whose frequency glides from f0 to f1 over n samples.
type chirp struct {
	f0, f1 float64
	phase  float64
	pos, n int
	rate   beep.SampleRate
}

func (c *chirp) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if c.pos >= c.n {
			return i, i > 0
		}
		u := float64(c.pos) / float64(c.n)
		f := c.f0 + (c.f1-c.f0)*u
		v := math.Sin(2 * math.Pi * c.phase)
		samples[i][0], samples[i][1] = v, v
		c.phase += f / float64(c.rate)
		c.phase -= math.Floor(c.phase)
		c.pos++
	}
	return len(samples), true
}

func (c *chirp) Err() error { return nil }

// rumble is low-passed noise.
type rumble struct {
	rng    *rand.Rand
	alpha  float64
	y      float64
	pos, n int
}

func (r *rumble) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		if r.pos >= r.n {
			return i, i > 0
		}
		r.y += r.alpha * (r.rng.Float64()*2 - 1 - r.y)
		samples[i][0], samples[i][1] = r.y*3, r.y*3
		r.pos++
	}
	return len(samples), true
}

func (r *rumble) Err() error { return nil }

// envelope applies a linear attack and an exponential release.
type envelope struct {
	s      beep.Streamer
	attack int
	tau    float64
	pos    int
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.s.Stream(samples)
	for i := 0; i < n; i++ {
		g := 1.0
		if e.pos < e.attack {
			g = float64(e.pos) / float64(e.attack)
		} else if e.tau > 0 {
			g = math.Exp(-float64(e.pos-e.attack) / e.tau)
		}
		samples[i][0] *= g
		samples[i][1] *= g
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.s.Err() }

func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// Whistle is the rising tone of a shell climbing.
func Whistle(rate beep.SampleRate, d time.Duration, vol float64) beep.Streamer {
	n := rate.N(d)
	c := &chirp{f0: 700, f1: 2200, n: n, rate: rate}
	env := &envelope{s: c, attack: rate.N(30 * time.Millisecond), tau: float64(n) / 2}
	return newVolume(env, vol)
}

// Boom is a decaying noise burst for an explosion.
func Boom(rate beep.SampleRate, d time.Duration, vol float64, rng *rand.Rand) beep.Streamer {
	n := rate.N(d)
	r := &rumble{rng: rng, alpha: 0.08, n: n}
	env := &envelope{s: r, attack: rate.N(5 * time.Millisecond), tau: float64(n) / 5}
	return newVolume(env, vol)
}
