package app

import (
	"context"
	"time"
)

// Conductor drives a Core at a fixed rate: show first, then the engine.
type Conductor struct {
	Core *Core
	FPS  int
}

func NewConductor(c *Core, fps int) *Conductor {
	if fps <= 0 {
		fps = 60
	}
	return &Conductor{Core: c, FPS: fps}
}

// Run ticks until ctx is cancelled. Sink errors are logged by the engine and
// never stop the loop.
func (c *Conductor) Run(ctx context.Context) {
	dt := time.Second / time.Duration(c.FPS)
	ticker := time.NewTicker(dt)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.Core.Step(dt)
		}
	}
}

// RunFor steps the core up to n times at the conductor rate without waiting,
// for headless runs. It stops early when each returns false.
func (c *Conductor) RunFor(ctx context.Context, n int, each func(i int) bool) int {
	dt := time.Second / time.Duration(c.FPS)
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			return i
		}
		_ = c.Core.Step(dt)
		if each != nil && !each(i) {
			return i + 1
		}
	}
	return n
}
