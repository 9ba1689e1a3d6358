package canopy

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

type cell struct {
	r     rune
	style tcell.Style
}

// mockScreen is a minimal tcell.Screen recording cell writes.
type mockScreen struct {
	tcell.Screen
	w, h   int
	cells  map[[2]int]cell
	fills  int
	shows  int
	fillBg tcell.Style
}

func newMockScreen(w, h int) *mockScreen {
	return &mockScreen{w: w, h: h, cells: make(map[[2]int]cell)}
}

func (m *mockScreen) Size() (int, int) { return m.w, m.h }

func (m *mockScreen) Fill(r rune, style tcell.Style) {
	m.fills++
	m.fillBg = style
	clear(m.cells)
}

func (m *mockScreen) SetContent(x, y int, primary rune, combining []rune, style tcell.Style) {
	m.cells[[2]int{x, y}] = cell{primary, style}
}

func (m *mockScreen) Show() { m.shows++ }

func TestTerminalRendererDrawSprite(t *testing.T) {
	scr := newMockScreen(10, 5)
	r := NewTerminalRenderer(scr, Vec2{})
	if r.CellSize() != DefaultCellSize {
		t.Errorf("CellSize = %v, want default", r.CellSize())
	}

	r.Clear(ColorBlack)
	r.DrawSprite(Sprite{Position: Vec2{17, 33}, Tint: Color{1, 0, 0, 1}})
	c, ok := scr.cells[[2]int{2, 2}]
	if !ok {
		t.Fatalf("no glyph at (2, 2); cells = %v", scr.cells)
	}
	if c.r != '█' {
		t.Errorf("glyph = %q, want full block", c.r)
	}
	fg, bg, _ := c.style.Decompose()
	if fg != tcell.NewRGBColor(255, 0, 0) || bg != tcell.NewRGBColor(0, 0, 0) {
		t.Errorf("style fg = %v, bg = %v", fg, bg)
	}
	if r.Drawn() != 1 {
		t.Errorf("Drawn = %d, want 1", r.Drawn())
	}
}

func TestTerminalRendererSkips(t *testing.T) {
	scr := newMockScreen(4, 4)
	r := NewTerminalRenderer(scr, Vec2{1, 1})
	r.Clear(ColorBlack)

	r.DrawSprite(Sprite{Position: Vec2{-1, 0}, Tint: ColorWhite})
	r.DrawSprite(Sprite{Position: Vec2{4, 0}, Tint: ColorWhite})
	r.DrawSprite(Sprite{Position: Vec2{1, 1}, Tint: Color{1, 1, 1, 0}})
	if len(scr.cells) != 0 || r.Drawn() != 0 {
		t.Errorf("expected nothing drawn, got %v", scr.cells)
	}
}

func TestTerminalRendererGlyphAndPresent(t *testing.T) {
	scr := newMockScreen(4, 4)
	r := NewTerminalRenderer(scr, Vec2{1, 1})
	r.Glyph = func(Sprite) rune { return '@' }
	r.Clear(ColorWhite)
	r.DrawSprite(Sprite{Position: Vec2{3, 3}, Tint: ColorWhite})
	r.Present()

	if scr.cells[[2]int{3, 3}].r != '@' {
		t.Error("custom glyph not used")
	}
	if scr.fills != 1 || scr.shows != 1 {
		t.Errorf("fills = %d, shows = %d", scr.fills, scr.shows)
	}
	_, bg, _ := scr.fillBg.Decompose()
	if bg != tcell.NewRGBColor(255, 255, 255) {
		t.Errorf("clear background = %v, want white", bg)
	}
}

func TestTerminalRendererWindowSize(t *testing.T) {
	r := NewTerminalRenderer(newMockScreen(80, 24), Vec2{8, 16})
	w, h := r.WindowSize()
	if w != 640 || h != 384 {
		t.Errorf("WindowSize = %d x %d, want 640 x 384", w, h)
	}
}

func TestTerminalRendererThroughEngine(t *testing.T) {
	scr := newMockScreen(10, 10)
	tr := NewTerminalRenderer(scr, Vec2{10, 10})
	cfg := DefaultConfig()
	cfg.PixelsPerUnit = 10
	cfg.Window = WindowConfig{Width: 100, Height: 100}
	e := NewEngine(cfg, tr)
	e.SetLogger(NopLogger())
	_ = e.Initialize()
	_ = e.LoadContent()

	g := e.NewGameObject("dot")
	g.Texture = testTexture(10, 10)
	g.SetPosition(Vec2{1, 1})

	if err := e.Draw(1); err != nil {
		t.Fatal(err)
	}
	// (1, 1) world units land at pixel (60, 60), cell (6, 6).
	if _, ok := scr.cells[[2]int{6, 6}]; !ok {
		t.Errorf("expected a glyph at (6, 6); cells = %v", scr.cells)
	}
	if scr.shows != 1 {
		t.Errorf("shows = %d, want 1", scr.shows)
	}
}
