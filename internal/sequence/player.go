package sequence

import (
	"math"
	"sort"
)

// NewPlayer constructs a Player with provided hooks.
func NewPlayer(h Hooks) *Player {
	return &Player{
		State: Idle,
		hooks: h,
	}
}

// Load replaces the current program. Resets time and state to Idle.
func (p *Player) Load(prog Program) error {
	if len(prog.Clips) == 0 {
		return ErrNoClips
	}
	p.prog = prog
	p.rewind()
	p.pass = 0
	p.State = Idle
	return nil
}

// Program returns the loaded program.
func (p *Player) Program() Program { return p.prog }

// Start moves to Running and primes the current clip.
func (p *Player) Start() {
	if p.State == Running || len(p.prog.Clips) == 0 {
		return
	}
	p.State = Running
	p.enterClip()
}

// Pause pauses playback.
func (p *Player) Pause() {
	if p.State == Running {
		p.State = Paused
	}
}

// Resume resumes playback.
func (p *Player) Resume() {
	if p.State == Paused {
		p.State = Running
	}
}

// Stop stops and resets to start.
func (p *Player) Stop() {
	p.State = Idle
	p.rewind()
	p.pass = 0
}

// Seek jumps to absolute program time t. Clamps into [0, totalDur).
// Cues before t are treated as already fired.
func (p *Player) Seek(t float64) {
	if len(p.prog.Clips) == 0 {
		return
	}
	if t < 0 {
		t = 0
	}
	total := p.totalDuration()
	if total > 0 && t >= total {
		t = math.Nextafter(total, -1)
	}
	acc := 0.0
	idx := len(p.prog.Clips) - 1
	for i, c := range p.prog.Clips {
		if t < acc+c.DurationS {
			idx = i
			break
		}
		acc += c.DurationS
	}
	p.idx = idx
	p.nowS = t
	p.enterClip()
	local := t - acc
	for i, c := range p.prog.Clips[idx].Cues {
		p.fired[i] = c.AtS < local
	}
}

// Tick advances the sequencer by dt seconds and emits control hooks.
func (p *Player) Tick(dt float64) {
	if p.State != Running || len(p.prog.Clips) == 0 {
		return
	}
	if dt <= 0 {
		return
	}
	p.nowS += dt

	clip, localT := p.currentClipAndLocalT()
	if p.hooks.SetParam != nil {
		for _, name := range sortedKeys(clip.Params) {
			p.hooks.SetParam(name, clip.Params[name].Eval(localT))
		}
	}
	if p.hooks.SetBool != nil {
		for _, name := range sortedKeys(clip.Bools) {
			p.hooks.SetBool(name, clip.Bools[name].BoolEval(localT))
		}
	}
	for i, c := range clip.Cues {
		if p.fired[i] || c.AtS > localT {
			continue
		}
		p.fired[i] = true
		if c.Effect == "" {
			c.Effect = clip.Effect
			if c.Preset == "" {
				c.Preset = clip.Preset
			}
		}
		if p.hooks.Launch != nil {
			p.hooks.Launch(c)
		}
	}

	// Clip end?
	if localT >= clip.DurationS {
		p.advanceClip()
	}
}

// Status is a snapshot of the playhead.
type Status struct {
	State  PlayerState `json:"state"`
	Clip   string      `json:"clip"`
	Index  int         `json:"index"`
	LocalS float64     `json:"localS"`
	Pass   int         `json:"pass"`
}

func (p *Player) Status() Status {
	s := Status{State: p.State, Index: p.idx, Pass: p.pass}
	if len(p.prog.Clips) > 0 {
		c, local := p.currentClipAndLocalT()
		s.Clip = c.Name
		s.LocalS = local
	}
	return s
}

func (p *Player) currentClipAndLocalT() (Clip, float64) {
	acc := 0.0
	for i := 0; i < p.idx; i++ {
		acc += p.prog.Clips[i].DurationS
	}
	localT := p.nowS - acc
	return p.prog.Clips[p.idx], localT
}

func (p *Player) totalDuration() float64 {
	total := 0.0
	for _, c := range p.prog.Clips {
		total += c.DurationS
	}
	return total
}

func (p *Player) nextIndex() int {
	if len(p.prog.Clips) == 0 {
		return -1
	}
	ni := p.idx + 1
	if ni >= len(p.prog.Clips) {
		if p.prog.Loop {
			return 0
		}
		return -1
	}
	return ni
}

func (p *Player) advanceClip() {
	next := p.nextIndex()
	if next == -1 {
		// End of program; a later Start replays from the top.
		p.State = Idle
		p.rewind()
		return
	}
	if next <= p.idx {
		// wrapped: keep the overshoot, re-arm cues
		p.nowS -= p.totalDuration()
		if p.nowS < 0 {
			p.nowS = 0
		}
		p.pass++
	}
	p.idx = next
	p.enterClip()
}

// enterClip snaps the effect to the current clip and re-arms its cues.
func (p *Player) enterClip() {
	clip := p.prog.Clips[p.idx]
	p.fired = make([]bool, len(clip.Cues))
	if p.hooks.SetEffect != nil {
		p.hooks.SetEffect(clip.Effect, clip.Preset)
	}
}

func (p *Player) rewind() {
	p.nowS = 0
	p.idx = 0
	p.fired = nil
	if len(p.prog.Clips) > 0 {
		p.fired = make([]bool, len(p.prog.Clips[0].Cues))
	}
}

func sortedKeys(m map[string]Envelope) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
