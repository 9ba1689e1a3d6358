package canopy

import (
	"image"
	"math"
	"testing"
)

// spriteAt creates a textured 16x16 game object at a world position.
func spriteAt(e *Engine, name string, pos Vec2) *GameObject {
	g := e.NewGameObject(name)
	g.Texture = testTexture(16, 16)
	g.SetPosition(pos)
	return g
}

func drawnNames(e *Engine, r *recordingRenderer) []string {
	var out []string
	for _, s := range r.sprites {
		for _, g := range e.GameObjects() {
			if g.Texture == s.Texture {
				out = append(out, g.Name)
				break
			}
		}
	}
	return out
}

func TestDrawSortsByDrawOrderThenSequence(t *testing.T) {
	r := &recordingRenderer{}
	e := readyEngine(t, r)
	back := spriteAt(e, "back", Vec2{})
	front := spriteAt(e, "front", Vec2{})
	first := spriteAt(e, "first", Vec2{})
	second := spriteAt(e, "second", Vec2{})
	back.DrawOrder = -5
	front.DrawOrder = 10
	first.DrawOrder = 1
	second.DrawOrder = 1

	if err := e.Draw(1); err != nil {
		t.Fatal(err)
	}
	assertNames(t, drawnNames(e, r), "back", "first", "second", "front")
	if len(r.clears) != 1 || r.clears[0] != e.Config().ClearColor {
		t.Errorf("clears = %v", r.clears)
	}
}

func TestDrawSortIsStableForManyCommands(t *testing.T) {
	r := &recordingRenderer{}
	e := readyEngine(t, r)
	for i := 0; i < 50; i++ {
		g := spriteAt(e, "g", Vec2{})
		g.DrawOrder = float64(i % 3)
	}
	_ = e.Draw(1)
	if len(r.sprites) != 50 {
		t.Fatalf("drew %d sprites, want 50", len(r.sprites))
	}
	for i := 1; i < len(e.commands); i++ {
		a, b := e.commands[i-1], e.commands[i]
		if a.order > b.order || (a.order == b.order && a.seq > b.seq) {
			t.Fatalf("commands out of order at %d: (%v, %d) before (%v, %d)", i, a.order, a.seq, b.order, b.seq)
		}
	}
}

func TestDrawCullsOffscreen(t *testing.T) {
	r := &recordingRenderer{}
	e := readyEngine(t, r)
	spriteAt(e, "near", Vec2{})
	spriteAt(e, "far", Vec2{1000, 1000})

	_ = e.Draw(1)
	assertNames(t, drawnNames(e, r), "near")
	if e.Stats().Culled != 1 {
		t.Errorf("Culled = %d, want 1", e.Stats().Culled)
	}
}

func TestDrawSkipsUndrawable(t *testing.T) {
	r := &recordingRenderer{}
	e := readyEngine(t, r)
	spriteAt(e, "ok", Vec2{})
	e.NewGameObject("no texture")
	hidden := spriteAt(e, "hidden", Vec2{})
	hidden.Visible = false
	idle := spriteAt(e, "idle", Vec2{})
	idle.SetActive(false)
	removed := spriteAt(e, "removed", Vec2{})
	e.Remove(removed)

	_ = e.Draw(1)
	assertNames(t, drawnNames(e, r), "ok")
	if e.Stats().Skipped != 4 {
		t.Errorf("Skipped = %d, want 4", e.Stats().Skipped)
	}
}

func TestDrawWorldSpacePlacement(t *testing.T) {
	r := &recordingRenderer{}
	e := newTestEngine(t, 16)
	e.SetRenderer(r)
	_ = e.Initialize()
	_ = e.LoadContent()

	parent := e.NewGameObject("parent")
	parent.SetPosition(Vec2{1, 0})
	parent.SetRotation(math.Pi / 2)
	_ = parent.SetScale(Vec2{2, 2})
	child := spriteAt(e, "child", Vec2{1, 0})
	_ = child.SetParent(parent)
	e.Camera().Zoom = 0.5

	_ = e.Draw(1)
	if len(r.sprites) != 1 {
		t.Fatalf("drew %d sprites, want 1", len(r.sprites))
	}
	s := r.sprites[0]
	// World position (1, 2) times 8 screen pixels per unit, offset by the
	// window center.
	assertVec(t, "Position", s.Position, Vec2{58, 66})
	assertNear(t, "Rotation", s.Rotation, math.Pi/2)
	assertVec(t, "Scale", s.Scale, Vec2{1, 1})
	assertVec(t, "Pivot", s.Pivot, Vec2{8, 8})
}

func TestDrawScreenSpaceIgnoresCamera(t *testing.T) {
	r := &recordingRenderer{}
	e := readyEngine(t, r)
	hud := spriteAt(e, "hud", Vec2{5, 7})
	hud.WorldSpace = false
	_ = hud.SetScale(Vec2{2, 2})
	e.Camera().Position = Vec2{5000, 5000}
	e.Camera().Zoom = 3

	_ = e.Draw(1)
	if len(r.sprites) != 1 {
		t.Fatalf("drew %d sprites, want 1", len(r.sprites))
	}
	assertVec(t, "Position", r.sprites[0].Position, Vec2{5, 7})
	assertVec(t, "Scale", r.sprites[0].Scale, Vec2{2, 2})
}

func TestDrawCarriesSpriteAttributes(t *testing.T) {
	r := &recordingRenderer{}
	e := readyEngine(t, r)
	g := spriteAt(e, "g", Vec2{})
	src := image.Rect(0, 0, 8, 8)
	g.SourceRect = &src
	g.Tint = Color{1, 0, 0, 0.5}
	g.BlendMode = BlendAdd
	g.DrawOrder = 3

	_ = e.Draw(1)
	s := r.sprites[0]
	if s.SourceRect != &src || s.Tint != g.Tint || s.BlendMode != BlendAdd || s.Depth != 3 {
		t.Errorf("sprite = %+v", s)
	}
	if len(e.DrawList()) != 1 {
		t.Errorf("DrawList = %d entries, want 1", len(e.DrawList()))
	}
}

func TestDrawUpdateRunsBeforeSubmit(t *testing.T) {
	r := &recordingRenderer{}
	e := readyEngine(t, r)
	g := spriteAt(e, "g", Vec2{1000, 0})
	g.OnDrawUpdate = func(float64) { g.SetPosition(Vec2{}) }

	_ = e.Draw(1)
	if len(r.sprites) != 1 {
		t.Error("positions set in DrawUpdate should apply to the same frame")
	}
}

type presentingRenderer struct {
	recordingRenderer
	presented int
}

func (p *presentingRenderer) Present() { p.presented++ }

func TestDrawPresents(t *testing.T) {
	r := &presentingRenderer{}
	e := readyEngine(t, r)
	spriteAt(e, "g", Vec2{})
	_ = e.Draw(1)
	_ = e.Draw(1)
	if r.presented != 2 {
		t.Errorf("presented %d times, want 2", r.presented)
	}
}

func TestDrawHeadless(t *testing.T) {
	e := readyEngine(t, nil)
	spriteAt(e, "g", Vec2{})
	if err := e.Draw(1); err != nil {
		t.Fatal(err)
	}
	if len(e.DrawList()) != 1 {
		t.Error("headless draw should still build the draw list")
	}
}

func TestDestroyedObjectNotDrawn(t *testing.T) {
	r := &recordingRenderer{}
	e := readyEngine(t, r)
	g := spriteAt(e, "g", Vec2{})
	g.Destroy()
	_ = e.Draw(1)
	if len(r.sprites) != 0 {
		t.Error("destroyed objects must not be drawn")
	}
}
