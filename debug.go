package canopy

import "time"

// FrameStats holds per-frame timing and draw metrics. Timings are only
// measured in debug mode; counts are always kept.
type FrameStats struct {
	Frame          uint64
	UpdateTime     time.Duration
	DrawUpdateTime time.Duration
	CollectTime    time.Duration
	SortTime       time.Duration
	SubmitTime     time.Duration

	Objects  int // registered participants
	Scene    int // live game objects in the arena
	Commands int // draw primitives submitted
	Culled   int // world-space objects rejected by the camera
	Skipped  int // invisible, inactive, or textureless objects
}

// Total returns the sum of the measured phase durations.
func (s FrameStats) Total() time.Duration {
	return s.UpdateTime + s.DrawUpdateTime + s.CollectTime + s.SortTime + s.SubmitTime
}

// debugLog writes the frame's stats at debug level.
func (e *Engine) debugLog() {
	if !e.debug {
		return
	}
	s := e.stats
	e.log.Debug("frame",
		"frame", s.Frame,
		"update", s.UpdateTime,
		"draw_update", s.DrawUpdateTime,
		"collect", s.CollectTime,
		"sort", s.SortTime,
		"submit", s.SubmitTime,
		"total", s.Total(),
	)
	e.log.Debug("draw",
		"objects", s.Objects,
		"scene", s.Scene,
		"commands", s.Commands,
		"culled", s.Culled,
		"skipped", s.Skipped,
	)
}

// debugMaxTreeDepth is the depth past which reparenting logs a warning.
const debugMaxTreeDepth = 32

func (e *Engine) debugCheckTreeDepth(g *GameObject) {
	if depth := g.Depth() + 1; depth > debugMaxTreeDepth {
		e.log.Warn("tree depth exceeds threshold",
			"object", g.Name, "depth", depth, "threshold", debugMaxTreeDepth)
	}
}

// debugMaxChildCount is the child count past which reparenting logs a warning.
const debugMaxChildCount = 1000

func (e *Engine) debugCheckChildCount(g *GameObject) {
	if n := len(g.children); n > debugMaxChildCount {
		e.log.Warn("child count exceeds threshold",
			"object", g.Name, "children", n, "threshold", debugMaxChildCount)
	}
}

// stopwatch measures a phase only in debug mode.
func (e *Engine) stopwatch() func() time.Duration {
	if !e.debug {
		return func() time.Duration { return 0 }
	}
	t0 := time.Now()
	return func() time.Duration { return time.Since(t0) }
}
