package canopy

import "fmt"

// Transform is a 2D similarity transform: translation, rotation in radians,
// and a per-axis scale. Shear is never introduced.
type Transform struct {
	Position Vec2
	Rotation float64
	Scale    Vec2
}

// IdentityTransform leaves points unchanged.
var IdentityTransform = Transform{Scale: Vec2{1, 1}}

// Apply maps a point from the space this transform describes into its parent
// space: rotate, then scale, then translate.
func (t Transform) Apply(p Vec2) Vec2 {
	return p.Rotate(t.Rotation).Mul(t.Scale).Add(t.Position)
}

// Unapply inverts Apply. Returns ErrDegenerateScale when a scale component
// is zero.
func (t Transform) Unapply(p Vec2) (Vec2, error) {
	if t.Scale.X == 0 || t.Scale.Y == 0 {
		return Vec2{}, ErrDegenerateScale
	}
	return p.Sub(t.Position).Div(t.Scale).Rotate(-t.Rotation), nil
}

// Compose expresses child (given relative to t) in t's parent space.
// Rotation adds, scale multiplies component-wise, and the position is the
// child's offset rotated and scaled by t, then translated by t.Position.
func (t Transform) Compose(child Transform) Transform {
	return Transform{
		Position: t.Apply(child.Position),
		Rotation: child.Rotation + t.Rotation,
		Scale:    child.Scale.Mul(t.Scale),
	}
}

// --- Chain resolution ---

// worldTransform composes g's local transform with each ancestor in turn,
// walking up to the root.
func worldTransform(g *GameObject) Transform {
	w := g.LocalTransform()
	for p := g.Parent(); p != nil; p = p.Parent() {
		w = p.LocalTransform().Compose(w)
	}
	return w
}

// ancestorChain returns g's ancestors ordered from the root down to the
// immediate parent.
func ancestorChain(g *GameObject) []*GameObject {
	var chain []*GameObject
	for p := g.Parent(); p != nil; p = p.Parent() {
		chain = append(chain, p)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// localPointFromWorld undoes every ancestor transform of g, from the root
// down, turning a world-space point into g's parent space.
func localPointFromWorld(g *GameObject, world Vec2) (Vec2, error) {
	p := world
	for _, a := range ancestorChain(g) {
		var err error
		p, err = a.LocalTransform().Unapply(p)
		if err != nil {
			return Vec2{}, fmt.Errorf("canopy: back-solve through %q: %w", a.Name, err)
		}
	}
	return p, nil
}

// parentWorld returns the accumulated rotation and scale of g's ancestors.
func parentWorld(g *GameObject) (rotation float64, scale Vec2) {
	scale = Vec2{1, 1}
	for p := g.Parent(); p != nil; p = p.Parent() {
		rotation += p.rotation
		scale = scale.Mul(p.scale)
	}
	return rotation, scale
}
