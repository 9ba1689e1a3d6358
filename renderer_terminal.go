package canopy

import (
	"math"

	"github.com/gdamore/tcell/v2"
)

// DefaultCellSize is the pixel footprint of one terminal cell. Cells are
// roughly twice as tall as they are wide.
var DefaultCellSize = Vec2{8, 16}

// TerminalRenderer previews a scene in a terminal: each sprite becomes one
// glyph in the cell under its destination, colored by its tint.
type TerminalRenderer struct {
	screen tcell.Screen
	cell   Vec2
	bg     tcell.Color

	// Glyph picks the rune for a sprite. Nil draws a full block.
	Glyph func(s Sprite) rune

	drawn int
}

// NewTerminalRenderer draws onto screen, mapping cellSize pixels to one cell.
// A zero cellSize uses DefaultCellSize.
func NewTerminalRenderer(screen tcell.Screen, cellSize Vec2) *TerminalRenderer {
	if cellSize.X <= 0 || cellSize.Y <= 0 {
		cellSize = DefaultCellSize
	}
	return &TerminalRenderer{screen: screen, cell: cellSize, bg: tcell.ColorBlack}
}

// Screen returns the underlying tcell screen.
func (r *TerminalRenderer) Screen() tcell.Screen { return r.screen }

// CellSize returns the pixel footprint of one cell.
func (r *TerminalRenderer) CellSize() Vec2 { return r.cell }

// WindowSize returns the screen size in pixels, for Engine.SetWindowSize.
func (r *TerminalRenderer) WindowSize() (width, height int) {
	w, h := r.screen.Size()
	return int(float64(w) * r.cell.X), int(float64(h) * r.cell.Y)
}

// Drawn returns the number of cells written since the last Clear.
func (r *TerminalRenderer) Drawn() int { return r.drawn }

// Clear fills every cell with a blank in the clear color.
func (r *TerminalRenderer) Clear(c Color) {
	r.drawn = 0
	r.bg = terminalColor(c)
	r.screen.Fill(' ', tcell.StyleDefault.Background(r.bg))
}

// DrawSprite writes one glyph at the cell containing the sprite position.
// Fully transparent sprites and positions off the screen are skipped.
func (r *TerminalRenderer) DrawSprite(s Sprite) {
	if s.Tint.A <= 0 {
		return
	}
	x := int(math.Floor(s.Position.X / r.cell.X))
	y := int(math.Floor(s.Position.Y / r.cell.Y))
	w, h := r.screen.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	glyph := '█'
	if r.Glyph != nil {
		glyph = r.Glyph(s)
	}
	style := tcell.StyleDefault.Foreground(terminalColor(s.Tint)).Background(r.bg)
	r.screen.SetContent(x, y, glyph, nil, style)
	r.drawn++
}

// Present shows the frame.
func (r *TerminalRenderer) Present() {
	r.screen.Show()
}

func terminalColor(c Color) tcell.Color {
	n := c.NRGBA()
	return tcell.NewRGBColor(int32(n.R), int32(n.G), int32(n.B))
}
