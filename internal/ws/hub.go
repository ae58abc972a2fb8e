// Package ws streams frames to browser previews and accepts control messages.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	diag "github.com/coreman2200/funtimes-embers/internal/diagnostics"
	"github.com/coreman2200/funtimes-embers/internal/particle"
	"github.com/coreman2200/funtimes-embers/internal/render"
)

const writeWait = 200 * time.Millisecond

// Status is what the controller reports on /health.
type Status struct {
	Effect    string `json:"effect"`
	Preset    string `json:"preset"`
	Live      int    `json:"live"`
	Particles int    `json:"particles"`
	// EstAmps is the estimated current of the last cube frame.
	EstAmps float64 `json:"est_amps,omitempty"`
	Show    any     `json:"show,omitempty"`
}

// Controller applies control messages. Implementations must be safe for use
// from HTTP handler goroutines.
type Controller interface {
	// Launch fires one emitter; a nil at means a random point.
	Launch(effect, preset string, at *[3]float64) error
	SetEffect(name, preset string) error
	SetParam(name string, v float64)
	SetBool(name string, b bool)
	// Show is one of start, stop, pause, resume.
	Show(cmd string) error
	RunTest(name string) error
	Status() Status
}

// client serialises writes to one connection.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) write(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Hub is a render.Sink that broadcasts every frame to /ws clients.
type Hub struct {
	Ctl Controller
	// Topology is sent to every new /ws and /control client.
	Topology any

	mu          sync.RWMutex
	clients     map[*client]bool
	diagClients map[*client]bool
	frameID     uint64
	startTime   time.Time
	fps         float64
	lastDraw    time.Time
	closed      bool

	up  websocket.Upgrader
	log zerolog.Logger
}

func NewHub(ctl Controller) *Hub {
	return &Hub{
		Ctl:         ctl,
		clients:     map[*client]bool{},
		diagClients: map[*client]bool{},
		startTime:   time.Now(),
		up:          websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		log:         log.With().Str("component", "ws").Logger(),
	}
}

// Routes registers the hub's handlers on mux.
func (h *Hub) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.HandleFramesWS)
	mux.HandleFunc("/diag", h.HandleDiagWS)
	mux.HandleFunc("/control", h.HandleControlWS)
	mux.HandleFunc("/health", h.HandleHealth)
}

type wireEvent struct {
	Kind   particle.EventKind `json:"kind"`
	Effect string             `json:"effect,omitempty"`
	Pos    [3]float64         `json:"pos"`
	Color  [3]float64         `json:"color"`
}

type wireFrame struct {
	ID        uint64      `json:"id"`
	T         float64     `json:"t"`
	Emitters  int         `json:"emitters"`
	Positions []float32   `json:"positions"`
	Colors    []float32   `json:"colors"`
	Sizes     []float32   `json:"sizes"`
	Opacities []float32   `json:"opacities"`
	Events    []wireEvent `json:"events,omitempty"`
}

func encodeFrame(f *render.Frame) ([]byte, error) {
	w := wireFrame{
		ID:        f.ID,
		T:         f.T,
		Emitters:  f.Emitters,
		Positions: nonNil(f.Particles.Positions),
		Colors:    nonNil(f.Particles.Colors),
		Sizes:     nonNil(f.Particles.Sizes),
		Opacities: nonNil(f.Particles.Opacities),
	}
	for _, ev := range f.Events {
		w.Events = append(w.Events, wireEvent{
			Kind:   ev.Kind,
			Effect: ev.Effect,
			Pos:    ev.Pos,
			Color:  [3]float64{ev.Color.R, ev.Color.G, ev.Color.B},
		})
	}
	return json.Marshal(w)
}

func nonNil(s []float32) []float32 {
	if s == nil {
		return []float32{}
	}
	return s
}

// Draw sends f to every frame client. A client that cannot keep up is
// dropped; that is not an error of the sink.
func (h *Hub) Draw(f *render.Frame) error {
	now := time.Now()
	h.mu.Lock()
	h.frameID = f.ID
	if !h.lastDraw.IsZero() {
		if d := now.Sub(h.lastDraw).Seconds(); d > 0 {
			inst := 1 / d
			if h.fps == 0 {
				h.fps = inst
			} else {
				h.fps += (inst - h.fps) * 0.1
			}
		}
	}
	h.lastDraw = now
	n := len(h.clients)
	h.mu.Unlock()
	if n == 0 {
		return nil
	}

	b, err := encodeFrame(f)
	if err != nil {
		return err
	}
	h.broadcast(false, b)
	return nil
}

func (h *Hub) broadcast(toDiag bool, b []byte) {
	h.mu.RLock()
	set := h.clients
	if toDiag {
		set = h.diagClients
	}
	targets := make([]*client, 0, len(set))
	for c := range set {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.write(b); err != nil {
			h.log.Debug().Err(err).Msg("write frame")
			h.drop(c)
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	delete(h.diagClients, c)
	h.mu.Unlock()
	c.conn.Close()
}

// Close disconnects every client.
func (h *Hub) Close() error {
	h.mu.Lock()
	all := make([]*client, 0, len(h.clients)+len(h.diagClients))
	for c := range h.clients {
		all = append(all, c)
	}
	for c := range h.diagClients {
		all = append(all, c)
	}
	h.clients = map[*client]bool{}
	h.diagClients = map[*client]bool{}
	h.closed = true
	h.mu.Unlock()
	for _, c := range all {
		c.conn.Close()
	}
	return nil
}

// Clients returns the number of frame and diag connections.
func (h *Hub) Clients() (frames, diags int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients), len(h.diagClients)
}

func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	h.serveSubscriber(w, r, func() map[*client]bool { return h.clients })
}

func (h *Hub) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	h.serveSubscriber(w, r, func() map[*client]bool { return h.diagClients })
}

// serveSubscriber registers a write-only client and reads until it leaves.
func (h *Hub) serveSubscriber(w http.ResponseWriter, r *http.Request, set func() map[*client]bool) {
	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	set()[c] = true
	h.mu.Unlock()
	h.sendTopology(c)

	go func() {
		defer h.drop(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn}
	defer conn.Close()
	h.sendTopology(c)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg ControlMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			h.reply(c, diag.Diagnostic{Severity: diag.Warn, Code: "CONTROL.BAD_JSON", Summary: err.Error()})
			continue
		}
		for _, d := range h.apply(msg) {
			h.reply(c, d)
		}
	}
}

func (h *Hub) reply(c *client, d diag.Diagnostic) {
	b, _ := json.Marshal(d)
	if err := c.write(b); err != nil {
		h.log.Debug().Err(err).Msg("control reply")
	}
	h.PushDiag(d)
}

// PushDiag sends d to every /diag client.
func (h *Hub) PushDiag(d diag.Diagnostic) {
	b, _ := json.Marshal(d)
	h.broadcast(true, b)
}

// Health is the /health payload.
type Health struct {
	FrameID uint64  `json:"frame_id"`
	UptimeS float64 `json:"uptime_s"`
	FPS     float64 `json:"fps"`
	Clients int     `json:"clients"`
	Status
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	resp := Health{
		FrameID: h.frameID,
		UptimeS: time.Since(h.startTime).Seconds(),
		FPS:     h.fps,
		Clients: len(h.clients),
	}
	h.mu.RUnlock()
	if h.Ctl != nil {
		resp.Status = h.Ctl.Status()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Hub) sendTopology(c *client) {
	if h.Topology == nil {
		return
	}
	b, err := json.Marshal(map[string]any{"topology": h.Topology})
	if err != nil {
		return
	}
	_ = c.write(b)
}
