package led

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

type SPIOpts struct {
	Dev        string // spireg name, "" for the first port
	Count      int
	ColorOrder string // strip channel order, e.g. "GRB"
	SpeedHz    int    // SPI clock; the NRZ bit rate is a third of it
}

// SPI drives WS2812 strips through an SPI port using periph's NRZ encoder.
type SPI struct {
	mu    sync.Mutex
	port  spi.PortCloser
	dev   *nrzled.Dev
	count int
	perm  [3]int
	buf   []byte
}

// NewSPI initialises the periph host drivers and opens the port.
func NewSPI(o SPIOpts) (*SPI, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p, err := spireg.Open(o.Dev)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", o.Dev, err)
	}
	s, err := Wrap(p, o)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	log.Info().Str("port", p.String()).Int("count", o.Count).Str("order", o.ColorOrder).Msg("spi driver ready")
	return s, nil
}

// Wrap builds the driver on an already opened port.
func Wrap(p spi.PortCloser, o SPIOpts) (*SPI, error) {
	if o.Count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", o.Count)
	}
	if o.SpeedHz <= 0 {
		o.SpeedHz = 2400000
	}
	perm, err := permutation(o.ColorOrder)
	if err != nil {
		return nil, err
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: o.Count,
		Channels:  3,
		Freq:      physic.Frequency(o.SpeedHz/3) * physic.Hertz,
	})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	return &SPI{port: p, dev: d, count: o.Count, perm: perm, buf: make([]byte, o.Count*3)}, nil
}

// permutation maps a strip order to the source channel nrzled must receive in
// each slot. nrzled puts slot 1 on the wire first, then slots 0 and 2 (GRB).
func permutation(order string) ([3]int, error) {
	if order == "" {
		order = "GRB"
	}
	order = strings.ToUpper(order)
	if len(order) != 3 {
		return [3]int{}, fmt.Errorf("color order %q: want 3 channels", order)
	}
	var ch [3]int
	for i := 0; i < 3; i++ {
		switch order[i] {
		case 'R':
			ch[i] = 0
		case 'G':
			ch[i] = 1
		case 'B':
			ch[i] = 2
		default:
			return [3]int{}, fmt.Errorf("color order %q: unknown channel %q", order, order[i])
		}
	}
	if ch[0] == ch[1] || ch[1] == ch[2] || ch[0] == ch[2] {
		return [3]int{}, fmt.Errorf("color order %q: repeated channel", order)
	}
	return [3]int{ch[1], ch[0], ch[2]}, nil
}

func (s *SPI) Write(rgb []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return ErrClosed
	}
	if len(rgb) != s.count*3 {
		return fmt.Errorf("rgb length %d does not match count %d", len(rgb), s.count)
	}
	for i := 0; i < s.count; i++ {
		px := rgb[i*3 : i*3+3]
		s.buf[i*3+0] = px[s.perm[0]]
		s.buf[i*3+1] = px[s.perm[1]]
		s.buf[i*3+2] = px[s.perm[2]]
	}
	if _, err := s.dev.Write(s.buf); err != nil {
		return fmt.Errorf("spi write: %w", err)
	}
	return nil
}

// Close blanks the strip and releases the port.
func (s *SPI) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return nil
	}
	herr := s.dev.Halt()
	cerr := s.port.Close()
	s.dev = nil
	if herr != nil {
		return fmt.Errorf("spi halt: %w", herr)
	}
	return cerr
}
