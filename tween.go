package canopy

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenProperty selects what a TweenScript animates on its host.
type TweenProperty uint8

const (
	TweenPosition TweenProperty = iota // local position (X, Y)
	TweenScale                         // local scale (X, Y), clamped at zero
	TweenRotation                      // local rotation
	TweenTint                          // tint (R, G, B, A)
)

// TweenScript animates up to four components of a host GameObject
// property. Attach it with AddScript; it starts from the host's current
// value when initialized and destroys itself when finished unless Loop is
// set. A tween on a non-GameObject host finishes immediately.
type TweenScript struct {
	ScriptBase

	// Loop restarts the tween from its start value instead of finishing.
	Loop bool
	// OnComplete runs once when a non-looping tween finishes.
	OnComplete func()

	property TweenProperty
	to       [4]float32
	from     [4]float32
	count    int
	duration float32
	fn       ease.TweenFunc
	tweens   [4]*gween.Tween
	done     bool
}

func newTween(p TweenProperty, to []float32, duration float32, fn ease.TweenFunc) *TweenScript {
	if fn == nil {
		fn = ease.Linear
	}
	t := &TweenScript{
		ScriptBase: NewScriptBase("tween"),
		property:   p,
		count:      len(to),
		duration:   duration,
		fn:         fn,
	}
	copy(t.to[:], to)
	return t
}

// NewTweenPosition tweens the host's local position to `to`.
func NewTweenPosition(to Vec2, duration float32, fn ease.TweenFunc) *TweenScript {
	return newTween(TweenPosition, []float32{float32(to.X), float32(to.Y)}, duration, fn)
}

// NewTweenScale tweens the host's local scale to `to`.
func NewTweenScale(to Vec2, duration float32, fn ease.TweenFunc) *TweenScript {
	return newTween(TweenScale, []float32{float32(to.X), float32(to.Y)}, duration, fn)
}

// NewTweenRotation tweens the host's local rotation to `to` radians.
func NewTweenRotation(to float64, duration float32, fn ease.TweenFunc) *TweenScript {
	return newTween(TweenRotation, []float32{float32(to)}, duration, fn)
}

// NewTweenTint tweens all four tint components to `to`.
func NewTweenTint(to Color, duration float32, fn ease.TweenFunc) *TweenScript {
	return newTween(TweenTint, []float32{float32(to.R), float32(to.G), float32(to.B), float32(to.A)}, duration, fn)
}

// Property returns the animated property.
func (t *TweenScript) Property() TweenProperty { return t.property }

// Done reports whether the tween has finished.
func (t *TweenScript) Done() bool { return t.done }

// Initialize captures the host's current value as the start point.
func (t *TweenScript) Initialize() {
	t.ScriptBase.Initialize()
	g := t.GameObject()
	if g == nil {
		t.done = true
		return
	}
	t.from = t.read(g)
	t.restart()
}

func (t *TweenScript) restart() {
	for i := 0; i < t.count; i++ {
		t.tweens[i] = gween.New(t.from[i], t.to[i], t.duration, t.fn)
	}
}

// Update advances the tween by dt seconds and writes the values to the host.
func (t *TweenScript) Update(dt float64) {
	t.ScriptBase.Update(dt)
	if t.done {
		return
	}
	g := t.GameObject()
	if g == nil || g.Destroyed() {
		t.done = true
		return
	}

	var vals [4]float32
	allDone := true
	for i := 0; i < t.count; i++ {
		val, finished := t.tweens[i].Update(float32(dt))
		vals[i] = val
		if !finished {
			allDone = false
		}
	}
	t.write(g, vals)

	if !allDone {
		return
	}
	if t.Loop {
		t.restart()
		return
	}
	t.done = true
	if t.OnComplete != nil {
		t.OnComplete()
	}
	t.Destroy()
}

func (t *TweenScript) read(g *GameObject) [4]float32 {
	switch t.property {
	case TweenPosition:
		return [4]float32{float32(g.position.X), float32(g.position.Y)}
	case TweenScale:
		return [4]float32{float32(g.scale.X), float32(g.scale.Y)}
	case TweenRotation:
		return [4]float32{float32(g.rotation)}
	default:
		c := g.Tint
		return [4]float32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)}
	}
}

func (t *TweenScript) write(g *GameObject, v [4]float32) {
	switch t.property {
	case TweenPosition:
		g.SetPosition(Vec2{float64(v[0]), float64(v[1])})
	case TweenScale:
		// Overshooting easings may dip below zero.
		g.scale = Vec2{math.Max(0, float64(v[0])), math.Max(0, float64(v[1]))}
	case TweenRotation:
		g.SetRotation(float64(v[0]))
	default:
		g.Tint = Color{float64(v[0]), float64(v[1]), float64(v[2]), float64(v[3])}
	}
}
