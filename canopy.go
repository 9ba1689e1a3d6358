package canopy

import (
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/colornames"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// ColorBlack is opaque black, the default clear color.
var ColorBlack = Color{0, 0, 0, 1}

// ParseColor resolves a CSS color name ("cornflowerblue") or a hex string
// ("#rrggbb" or "#rrggbbaa") into a Color.
func ParseColor(s string) (Color, error) {
	c, err := parseColor(s)
	if err != nil {
		return Color{}, fmt.Errorf("canopy: %w", err)
	}
	return c, nil
}

// parseColor is ParseColor without the package prefix, for callers that
// wrap the error with their own context.
func parseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return Color{}, fmt.Errorf("parse color: empty string")
	}
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) != 6 && len(hex) != 8 {
			return Color{}, fmt.Errorf("parse color %q: want #rrggbb or #rrggbbaa", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
		if len(hex) == 6 {
			v = v<<8 | 0xff
		}
		return Color{
			R: float64(v>>24&0xff) / 255,
			G: float64(v>>16&0xff) / 255,
			B: float64(v>>8&0xff) / 255,
			A: float64(v&0xff) / 255,
		}, nil
	}
	rgba, ok := colornames.Map[s]
	if !ok {
		return Color{}, fmt.Errorf("parse color: unknown color name %q", s)
	}
	return Color{
		R: float64(rgba.R) / 255,
		G: float64(rgba.G) / 255,
		B: float64(rgba.B) / 255,
		A: float64(rgba.A) / 255,
	}, nil
}

// Vec2 is a 2D vector used for positions, offsets, sizes, and directions
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Mul multiplies component-wise.
func (v Vec2) Mul(o Vec2) Vec2 { return Vec2{v.X * o.X, v.Y * o.Y} }

// Div divides component-wise. The caller guarantees non-zero components.
func (v Vec2) Div(o Vec2) Vec2 { return Vec2{v.X / o.X, v.Y / o.Y} }

// Scale multiplies both components by k.
func (v Vec2) Scale(k float64) Vec2 { return Vec2{v.X * k, v.Y * k} }

// Rotate rotates v counter-clockwise (clockwise on a Y-down screen) by theta radians.
func (v Vec2) Rotate(theta float64) Vec2 {
	if theta == 0 {
		return v
	}
	sin, cos := math.Sincos(theta)
	return Vec2{v.X*cos - v.Y*sin, v.X*sin + v.Y*cos}
}

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Round rounds both components to the nearest integer.
func (v Vec2) Round() Vec2 { return Vec2{math.Round(v.X), math.Round(v.Y)} }

// Snap rounds both components to the nearest multiple of step.
// A non-positive step returns v unchanged.
func (v Vec2) Snap(step float64) Vec2 {
	if step <= 0 {
		return v
	}
	return Vec2{math.Round(v.X/step) * step, math.Round(v.Y/step) * step}
}

// Texture is the read-only handle the engine draws from. *ebiten.Image and
// every image.Image satisfy it. Texture handles are shared and never mutated.
type Texture interface {
	Bounds() image.Rectangle
}

var _ Texture = (*ebiten.Image)(nil)

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// RectFromImage converts an image.Rectangle to a Rect.
func RectFromImage(r image.Rectangle) Rect {
	return Rect{X: float64(r.Min.X), Y: float64(r.Min.Y), Width: float64(r.Dx()), Height: float64(r.Dy())}
}

// Left returns the minimum X edge.
func (r Rect) Left() float64 { return r.X }

// Top returns the minimum Y edge.
func (r Rect) Top() float64 { return r.Y }

// Right returns the maximum X edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the maximum Y edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Vec2 { return Vec2{r.X + r.Width/2, r.Y + r.Height/2} }

// Size returns the width and height as a vector.
func (r Rect) Size() Vec2 { return Vec2{r.Width, r.Height} }

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// Intersection returns the overlapping region of r and other and whether
// they intersect at all. Disjoint rectangles return the zero Rect and false.
func (r Rect) Intersection(other Rect) (Rect, bool) {
	if !r.Intersects(other) {
		return Rect{}, false
	}
	left := math.Max(r.Left(), other.Left())
	top := math.Max(r.Top(), other.Top())
	right := math.Min(r.Right(), other.Right())
	bottom := math.Min(r.Bottom(), other.Bottom())
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}, true
}

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	left := math.Min(r.Left(), other.Left())
	top := math.Min(r.Top(), other.Top())
	right := math.Max(r.Right(), other.Right())
	bottom := math.Max(r.Bottom(), other.Bottom())
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// Side is a bitmask describing where a point lies relative to a rectangle.
type Side uint8

const (
	SideLeft  Side = 1 << iota // point is left of the rectangle
	SideRight                  // point is right of the rectangle
	SideAbove                  // point is above the rectangle (smaller Y)
	SideBelow                  // point is below the rectangle (larger Y)
)

// Side reports which sides of r the point p lies beyond. A point inside or on
// the edge returns 0. Corners combine two bits (e.g. SideLeft|SideAbove).
func (r Rect) Side(p Vec2) Side {
	var s Side
	if p.X < r.Left() {
		s |= SideLeft
	} else if p.X > r.Right() {
		s |= SideRight
	}
	if p.Y < r.Top() {
		s |= SideAbove
	} else if p.Y > r.Bottom() {
		s |= SideBelow
	}
	return s
}

// BlendMode selects a compositing operation. Each maps to a specific ebiten.Blend value.
type BlendMode uint8

const (
	BlendNormal   BlendMode = iota // source-over (standard alpha blending)
	BlendAdd                       // additive / lighter
	BlendMultiply                  // multiply (source * destination; only darkens)
	BlendErase                     // destination-out (punch transparent holes)
	BlendNone                      // opaque copy (skip blending)
)

// EbitenBlend returns the ebiten.Blend value corresponding to this BlendMode.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendAdd:
		return ebiten.BlendLighter
	case BlendMultiply:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
			BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendErase:
		return ebiten.BlendDestinationOut
	case BlendNone:
		return ebiten.BlendCopy
	default:
		return ebiten.BlendSourceOver
	}
}
