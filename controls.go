package canopy

// Control names a logical input ("jump", "fire") independent of the device
// that drives it.
type Control string

// InputSource answers raw "is this control active right now" queries. The
// engine polls it once per frame; it never pushes events.
type InputSource interface {
	Active(c Control) bool
}

// frameStepper is implemented by sources that advance their own state once
// per poll, such as ScriptedInput.
type frameStepper interface {
	Step()
}

// boundLister is implemented by sources that know which controls they map.
type boundLister interface {
	Bound() []Control
}

// Controls derives per-frame control state from an InputSource: Held for the
// current level, Pressed and Released for edges against the previous frame.
type Controls struct {
	source InputSource
	bound  []Control
	known  map[Control]bool
	cur    map[Control]bool
	prev   map[Control]bool
}

// NewControls returns a control layer polling src. A nil src reports every
// control as inactive.
func NewControls(src InputSource) *Controls {
	return &Controls{
		source: src,
		known:  make(map[Control]bool),
		cur:    make(map[Control]bool),
		prev:   make(map[Control]bool),
	}
}

// SetSource replaces the input backend. Edge state carries over.
func (c *Controls) SetSource(src InputSource) { c.source = src }

// Source returns the input backend.
func (c *Controls) Source() InputSource { return c.source }

// Bind registers controls to poll. Controls the source reports through a
// Bound method are polled without binding.
func (c *Controls) Bind(controls ...Control) {
	for _, ctl := range controls {
		if !c.known[ctl] {
			c.known[ctl] = true
			c.bound = append(c.bound, ctl)
		}
	}
}

// Bound returns the polled controls in binding order.
func (c *Controls) Bound() []Control { return c.bound }

// Poll samples the source once. Call it exactly once per frame.
func (c *Controls) Poll() {
	if st, ok := c.source.(frameStepper); ok {
		st.Step()
	}
	if bl, ok := c.source.(boundLister); ok {
		c.Bind(bl.Bound()...)
	}
	c.prev, c.cur = c.cur, c.prev
	clear(c.cur)
	if c.source == nil {
		return
	}
	for _, ctl := range c.bound {
		if c.source.Active(ctl) {
			c.cur[ctl] = true
		}
	}
}

// Held reports whether ctl is active this frame.
func (c *Controls) Held(ctl Control) bool { return c.cur[ctl] }

// Pressed reports whether ctl became active this frame.
func (c *Controls) Pressed(ctl Control) bool { return c.cur[ctl] && !c.prev[ctl] }

// Released reports whether ctl became inactive this frame.
func (c *Controls) Released(ctl Control) bool { return !c.cur[ctl] && c.prev[ctl] }
