package canopy

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Sprite is one draw primitive: a texture placed at a screen destination.
// The pivot (in pixels of the drawn region) lands on Position; rotation and
// scale are applied about it.
type Sprite struct {
	Texture    Texture
	Position   Vec2
	SourceRect *image.Rectangle
	Tint       Color
	Rotation   float64
	Pivot      Vec2
	Scale      Vec2
	// Depth is the object's draw order. Sprites arrive sorted by it.
	Depth     float64
	BlendMode BlendMode
}

// Renderer is the draw backend. The engine calls Clear once per frame and
// then DrawSprite for each visible object in paint order.
type Renderer interface {
	Clear(c Color)
	DrawSprite(s Sprite)
}

// Presenter is implemented by renderers that need an explicit flush once all
// sprites of a frame are drawn.
type Presenter interface {
	Present()
}

// NRGBA converts c to an 8-bit non-premultiplied color, clamping to [0, 1].
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: unit8(c.R), G: unit8(c.G), B: unit8(c.B), A: unit8(c.A)}
}

func unit8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// EbitenRenderer draws sprites onto an ebiten image. Textures that are not
// *ebiten.Image are skipped.
type EbitenRenderer struct {
	target *ebiten.Image
	op     ebiten.DrawImageOptions
	drawn  int
}

// NewEbitenRenderer returns a renderer drawing onto target. The target may
// be nil and set later with SetTarget (Run does this every frame).
func NewEbitenRenderer(target *ebiten.Image) *EbitenRenderer {
	return &EbitenRenderer{target: target}
}

// SetTarget changes the destination image.
func (r *EbitenRenderer) SetTarget(target *ebiten.Image) { r.target = target }

// Target returns the destination image.
func (r *EbitenRenderer) Target() *ebiten.Image { return r.target }

// Drawn returns the number of DrawImage calls issued since the last Clear.
func (r *EbitenRenderer) Drawn() int { return r.drawn }

// Clear fills the target with c.
func (r *EbitenRenderer) Clear(c Color) {
	r.drawn = 0
	if r.target == nil {
		return
	}
	r.target.Fill(c.NRGBA())
}

// DrawSprite draws s with DrawImage.
func (r *EbitenRenderer) DrawSprite(s Sprite) {
	if r.target == nil {
		return
	}
	img, ok := s.Texture.(*ebiten.Image)
	if !ok || img == nil {
		return
	}
	if s.SourceRect != nil {
		img = img.SubImage(*s.SourceRect).(*ebiten.Image)
	}

	op := &r.op
	op.GeoM.Reset()
	op.GeoM.Translate(-s.Pivot.X, -s.Pivot.Y)
	op.GeoM.Scale(s.Scale.X, s.Scale.Y)
	if s.Rotation != 0 {
		op.GeoM.Rotate(s.Rotation)
	}
	op.GeoM.Translate(s.Position.X, s.Position.Y)

	// Apply premultiplied color scale
	op.ColorScale.Reset()
	a := float32(s.Tint.A)
	op.ColorScale.Scale(float32(s.Tint.R)*a, float32(s.Tint.G)*a, float32(s.Tint.B)*a, a)

	op.Blend = s.BlendMode.EbitenBlend()
	r.target.DrawImage(img, op)
	r.drawn++
}
