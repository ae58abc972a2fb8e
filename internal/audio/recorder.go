package audio

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/wav"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-embers/internal/particle"
	"github.com/coreman2200/funtimes-embers/internal/render"
)

const (
	DefaultRate = beep.SampleRate(44100)

	whistleLen = 900 * time.Millisecond
	boomLen    = 1800 * time.Millisecond
	tail       = 2 * time.Second
)

type cue struct {
	at   float64 // seconds of simulated time
	kind particle.EventKind
	pan  float64 // -1 left .. 1 right
}

// Recorder is a render.Sink that turns Launched and Exploded events into
// timed cues and writes them as a WAV file on Close.
type Recorder struct {
	Path   string
	Rate   beep.SampleRate
	Camera render.Camera
	// MaxCues bounds memory on long runs; later cues are dropped.
	MaxCues int

	mu      sync.Mutex
	cues    []cue
	end     float64
	dropped int
	seed    int64
	closed  bool
	log     zerolog.Logger
}

func NewRecorder(path string, cam render.Camera, seed int64) *Recorder {
	return &Recorder{
		Path:    path,
		Rate:    DefaultRate,
		Camera:  cam,
		MaxCues: 4096,
		seed:    seed,
		log:     log.With().Str("component", "audio").Logger(),
	}
}

func (r *Recorder) Draw(f *render.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.end = f.T
	for _, ev := range f.Events {
		if ev.Kind != particle.EventLaunched && ev.Kind != particle.EventExploded {
			continue
		}
		if r.MaxCues > 0 && len(r.cues) >= r.MaxCues {
			r.dropped++
			continue
		}
		pan := r.Camera.Normalize(ev.Pos)[0]*2 - 1
		r.cues = append(r.cues, cue{at: f.T, kind: ev.Kind, pan: max(-1, min(1, pan))})
	}
	return nil
}

// Cues returns the number of recorded cues.
func (r *Recorder) Cues() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cues)
}

// Streamer mixes every cue into one stream lasting until the last frame
// plus a tail.
func (r *Recorder) Streamer() (beep.Streamer, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rate := r.Rate
	total := rate.N(time.Duration(r.end*float64(time.Second)) + tail)
	rng := rand.New(rand.NewSource(r.seed))

	mixer := &beep.Mixer{}
	mixer.Add(beep.Silence(total))
	for _, c := range r.cues {
		var s beep.Streamer
		switch c.kind {
		case particle.EventLaunched:
			s = Whistle(rate, whistleLen, 0.25)
		default:
			s = Boom(rate, boomLen, 0.6, rng)
		}
		s = &effects.Pan{Streamer: s, Pan: c.pan}
		offset := rate.N(time.Duration(c.at * float64(time.Second)))
		mixer.Add(beep.Seq(beep.Silence(offset), s))
	}
	return beep.Take(total, mixer), total
}

// Encode writes the mixed cues as 16-bit stereo WAV.
func (r *Recorder) Encode(w io.WriteSeeker) error {
	s, _ := r.Streamer()
	return wav.Encode(w, s, beep.Format{SampleRate: r.Rate, NumChannels: 2, Precision: 2})
}

// Close writes the WAV file once. Without a Path nothing is written.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed || r.Path == "" {
		r.closed = true
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	n, dropped := len(r.cues), r.dropped
	r.mu.Unlock()

	f, err := os.Create(r.Path)
	if err != nil {
		return fmt.Errorf("audio: %w", err)
	}
	if err := r.Encode(f); err != nil {
		f.Close()
		return fmt.Errorf("audio: encode %s: %w", r.Path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	r.log.Info().Str("path", r.Path).Int("cues", n).Int("dropped", dropped).Msg("soundtrack written")
	return nil
}
