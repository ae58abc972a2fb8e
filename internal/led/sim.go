package led

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrClosed = errors.New("led driver closed")

// Sim is an in-memory driver: it keeps the last frame and counts writes.
type Sim struct {
	mu     sync.Mutex
	count  int
	frames int
	last   []byte
	closed bool
	log    zerolog.Logger
}

// NewSim returns a Sim for count LEDs; 0 accepts any frame length.
func NewSim(count int) *Sim {
	return &Sim{count: count, log: log.Logger.With().Str("driver", "sim").Logger()}
}

func (s *Sim) Write(rgb []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.count > 0 && len(rgb) != s.count*3 {
		return fmt.Errorf("rgb length %d does not match count %d", len(rgb), s.count)
	}
	s.last = append(s.last[:0], rgb...)
	s.frames++
	if s.frames%600 == 0 {
		s.log.Debug().Int("frames", s.frames).Msg("sim frames written")
	}
	return nil
}

func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Sim) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Last returns a copy of the most recent frame.
func (s *Sim) Last() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.last...)
}
