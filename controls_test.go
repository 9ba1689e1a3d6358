package canopy

import "testing"

// levelSource reports whatever levels the test sets.
type levelSource map[Control]bool

func (s levelSource) Active(c Control) bool { return s[c] }

func TestControlsEdges(t *testing.T) {
	src := levelSource{}
	c := NewControls(src)
	c.Bind("jump")

	src["jump"] = true
	c.Poll()
	if !c.Held("jump") || !c.Pressed("jump") || c.Released("jump") {
		t.Error("frame 1: expected held and pressed")
	}

	c.Poll()
	if !c.Held("jump") || c.Pressed("jump") {
		t.Error("frame 2: expected held without a new press")
	}

	src["jump"] = false
	c.Poll()
	if c.Held("jump") || !c.Released("jump") {
		t.Error("frame 3: expected released")
	}

	c.Poll()
	if c.Released("jump") {
		t.Error("frame 4: release edge should last one frame")
	}
}

func TestControlsUnboundIgnored(t *testing.T) {
	src := levelSource{"fire": true}
	c := NewControls(src)
	c.Poll()
	if c.Held("fire") {
		t.Error("unbound controls should not be sampled")
	}
}

func TestControlsBindDeduplicates(t *testing.T) {
	c := NewControls(nil)
	c.Bind("a", "b", "a")
	c.Bind("b")
	if got := c.Bound(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Bound = %v, want [a b]", got)
	}
}

func TestControlsNilSource(t *testing.T) {
	c := NewControls(nil)
	c.Bind("a")
	c.Poll()
	if c.Held("a") || c.Pressed("a") {
		t.Error("nil source should report nothing")
	}
}

func TestControlsSwapSourceKeepsEdges(t *testing.T) {
	on := levelSource{"a": true}
	c := NewControls(on)
	c.Bind("a")
	c.Poll()

	c.SetSource(levelSource{"a": true})
	c.Poll()
	if c.Pressed("a") {
		t.Error("swapping sources should not fake a press")
	}
}

func TestEngineUpdatePollsControls(t *testing.T) {
	e := readyEngine(t, nil)
	src := levelSource{"jump": true}
	e.SetInputSource(src)
	e.Controls().Bind("jump")

	var pressed bool
	g := e.NewGameObject("player")
	g.OnUpdate = func(float64) { pressed = e.Controls().Pressed("jump") }
	_ = e.Update(1)
	if !pressed {
		t.Error("controls should be polled before the update pass")
	}
}
