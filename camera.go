package canopy

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for the camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera maps world space onto the host window. It is a managed participant:
// register it with the engine (Engine.NewCamera does this) so follow, scroll,
// and bounds clamping advance during the update pass, and attach scripts to
// it like any other Scriptable.
type Camera struct {
	Scriptable

	// Position is the world-space point shown at the center of the window.
	Position Vec2
	// Zoom is the uniform scale factor (1 = no zoom, >1 = zoom in).
	Zoom float64

	ppu       float64
	pixelSnap bool
	window    Vec2

	followTarget *GameObject
	followOffset Vec2
	followLerp   float64

	// BoundsEnabled clamps the camera position so the visible area stays
	// within Bounds.
	BoundsEnabled bool
	// Bounds is the world-space rectangle the camera is clamped to.
	Bounds Rect

	scrollTween *scrollAnim
}

func newCamera(cfg Config, name string) *Camera {
	c := &Camera{
		Zoom:      1,
		ppu:       cfg.PixelsPerUnit,
		pixelSnap: cfg.PixelSnap,
		window:    Vec2{float64(cfg.Window.Width), float64(cfg.Window.Height)},
	}
	c.initScriptable(name, c)
	return c
}

// PixelsPerUnit returns the world-to-pixel scale the camera was created with.
func (c *Camera) PixelsPerUnit() float64 { return c.ppu }

// WindowSize returns the window size in pixels as of the last refresh.
func (c *Camera) WindowSize() Vec2 { return c.window }

// setWindow refreshes the cached window size. The engine calls it once per
// draw pass.
func (c *Camera) setWindow(size Vec2) { c.window = size }

// WorldScaleToScreenScale returns the number of screen pixels per world unit:
// Zoom times the configured pixels per unit.
func (c *Camera) WorldScaleToScreenScale() float64 {
	return c.Zoom * c.ppu
}

// ViewportSize returns the window size measured in world units.
func (c *Camera) ViewportSize() Vec2 {
	s := c.WorldScaleToScreenScale()
	if s == 0 {
		return Vec2{}
	}
	return c.window.Scale(1 / s)
}

// VisibleBounds returns the world-space rectangle currently on screen.
func (c *Camera) VisibleBounds() Rect {
	size := c.ViewportSize()
	pos := c.snapped(c.Position)
	return Rect{X: pos.X - size.X/2, Y: pos.Y - size.Y/2, Width: size.X, Height: size.Y}
}

// snapped quantizes p to the pixel grid when pixel snapping is enabled.
func (c *Camera) snapped(p Vec2) Vec2 {
	if !c.pixelSnap || c.ppu <= 0 {
		return p
	}
	return p.Snap(1 / c.ppu)
}

// WorldToScreen projects a world point to integer screen pixels.
func (c *Camera) WorldToScreen(world Vec2) Vec2 {
	s := c.WorldScaleToScreenScale()
	d := c.snapped(world).Sub(c.snapped(c.Position)).Scale(s).Round()
	return d.Add(c.window.Scale(0.5))
}

// ScreenToWorld converts a screen pixel back into world space. A zero scale
// maps every point to the camera position.
func (c *Camera) ScreenToWorld(screen Vec2) Vec2 {
	s := c.WorldScaleToScreenScale()
	pos := c.snapped(c.Position)
	if s == 0 {
		return pos
	}
	return screen.Sub(c.window.Scale(0.5)).Scale(1 / s).Add(pos)
}

// IsVisible reports whether a circle at the projected screen center with the
// given screen-space radius overlaps the window on both axes. The test is
// conservative near corners.
func (c *Camera) IsVisible(center Vec2, radius float64) bool {
	return center.X+radius >= 0 && center.X-radius <= c.window.X &&
		center.Y+radius >= 0 && center.Y-radius <= c.window.Y
}

// Follow makes the camera track a target object with the given offset and
// lerp factor. A lerp of 1 snaps immediately; lower values smooth the motion.
func (c *Camera) Follow(target *GameObject, offset Vec2, lerp float64) {
	c.followTarget = target
	c.followOffset = offset
	c.followLerp = lerp
}

// Unfollow stops tracking the current target.
func (c *Camera) Unfollow() {
	c.followTarget = nil
}

// Following returns the follow target, or nil.
func (c *Camera) Following() *GameObject { return c.followTarget }

// ScrollTo animates the camera to target over duration seconds.
func (c *Camera) ScrollTo(target Vec2, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.Linear
	}
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.Position.X), float32(target.X), duration, easeFn),
		tweenY: gween.New(float32(c.Position.Y), float32(target.Y), duration, easeFn),
	}
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (c *Camera) Scrolling() bool { return c.scrollTween != nil }

// SetBounds enables bounds clamping.
func (c *Camera) SetBounds(bounds Rect) {
	c.BoundsEnabled = true
	c.Bounds = bounds
}

// ClearBounds disables bounds clamping.
func (c *Camera) ClearBounds() {
	c.BoundsEnabled = false
}

// ClampToBounds immediately clamps the camera position so the visible area
// stays within Bounds. Call it after moving Position directly to avoid a
// frame that shows outside the bounds. No-op if BoundsEnabled is false.
func (c *Camera) ClampToBounds() {
	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

// Update runs the OnUpdate hook, then advances follow, scroll, and bounds
// clamping.
func (c *Camera) Update(dt float64) {
	c.Object.Update(dt)
	c.advance(dt)
}

func (c *Camera) advance(dt float64) {
	if t := c.followTarget; t != nil {
		if t.Destroyed() {
			c.followTarget = nil
		} else {
			target := t.WorldPosition().Add(c.followOffset)
			c.Position = c.Position.Add(target.Sub(c.Position).Scale(c.followLerp))
		}
	}

	if c.scrollTween != nil {
		if !c.scrollTween.doneX {
			val, done := c.scrollTween.tweenX.Update(float32(dt))
			c.Position.X = float64(val)
			c.scrollTween.doneX = done
		}
		if !c.scrollTween.doneY {
			val, done := c.scrollTween.tweenY.Update(float32(dt))
			c.Position.Y = float64(val)
			c.scrollTween.doneY = done
		}
		if c.scrollTween.doneX && c.scrollTween.doneY {
			c.scrollTween = nil
		}
	}

	if c.BoundsEnabled {
		c.clampToBounds()
	}
}

// clampToBounds restricts the position so the visible area stays within
// Bounds. Bounds smaller than the viewport center the camera on that axis.
func (c *Camera) clampToBounds() {
	half := c.ViewportSize().Scale(0.5)

	minX := c.Bounds.Left() + half.X
	maxX := c.Bounds.Right() - half.X
	minY := c.Bounds.Top() + half.Y
	maxY := c.Bounds.Bottom() - half.Y

	if minX > maxX {
		c.Position.X = c.Bounds.Center().X
	} else {
		c.Position.X = math.Max(minX, math.Min(c.Position.X, maxX))
	}
	if minY > maxY {
		c.Position.Y = c.Bounds.Center().Y
	} else {
		c.Position.Y = math.Max(minY, math.Min(c.Position.Y, maxY))
	}
}
