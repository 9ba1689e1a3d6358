package canopy

import (
	"fmt"
	"image"
	"math"
)

// GameObject is the scene-graph element: a Scriptable with a local transform,
// an optional texture, and a place in a parent/child tree.
//
// Game objects live in their engine's arena; parent and child links are
// arena indices. Create them with Engine.NewGameObject.
type GameObject struct {
	Scriptable

	// Texture is the sprite image; nil objects are never drawn.
	Texture Texture
	// SourceRect, when non-nil, limits drawing to this visible part of Texture
	// (in texture pixel coordinates).
	SourceRect *image.Rectangle
	// Pivot is the logical origin as a fraction of the texture size
	// ({0.5, 0.5} is the center).
	Pivot Vec2

	// DrawOrder is the paint key, independent of the update order. Lower
	// values are painted first (further back).
	DrawOrder float64
	Tint      Color
	BlendMode BlendMode
	Visible   bool
	// WorldSpace objects are projected through the camera and culled.
	// Screen-space objects (false) use their local position and scale as
	// screen pixels.
	WorldSpace bool

	position Vec2
	rotation float64
	scale    Vec2

	index    int32
	parent   int32
	children []int32
}

func newGameObject(e *Engine, name string) *GameObject {
	g := &GameObject{
		Pivot:      Vec2{0.5, 0.5},
		Tint:       ColorWhite,
		Visible:    true,
		WorldSpace: true,
		scale:      Vec2{1, 1},
		parent:     noIndex,
	}
	g.initScriptable(name, g)
	g.engine = e
	g.index = e.arena.alloc(g)
	return g
}

// --- Local transform ---

// Position returns the local position (relative to the parent).
func (g *GameObject) Position() Vec2 { return g.position }

// SetPosition sets the local position.
func (g *GameObject) SetPosition(p Vec2) { g.position = p }

// Rotation returns the local rotation in radians.
func (g *GameObject) Rotation() float64 { return g.rotation }

// SetRotation sets the local rotation in radians.
func (g *GameObject) SetRotation(r float64) { g.rotation = r }

// Scale returns the local scale.
func (g *GameObject) Scale() Vec2 { return g.scale }

// SetScale sets the local scale. Negative components are rejected with
// ErrNegativeScale and leave the scale unchanged.
func (g *GameObject) SetScale(s Vec2) error {
	if s.X < 0 || s.Y < 0 {
		return fmt.Errorf("canopy: set scale of %q to (%v, %v): %w", g.Name, s.X, s.Y, ErrNegativeScale)
	}
	g.scale = s
	return nil
}

// LocalTransform returns the local position, rotation, and scale.
func (g *GameObject) LocalTransform() Transform {
	return Transform{Position: g.position, Rotation: g.rotation, Scale: g.scale}
}

// --- World transform ---

// WorldTransform resolves the world-space transform by walking the ancestor chain.
func (g *GameObject) WorldTransform() Transform { return worldTransform(g) }

// WorldPosition returns the world-space position.
func (g *GameObject) WorldPosition() Vec2 { return worldTransform(g).Position }

// WorldRotation returns the world-space rotation.
func (g *GameObject) WorldRotation() float64 {
	r, _ := parentWorld(g)
	return r + g.rotation
}

// WorldScale returns the world-space scale.
func (g *GameObject) WorldScale() Vec2 {
	_, s := parentWorld(g)
	return g.scale.Mul(s)
}

// SetWorldPosition sets the local position so that the world position
// becomes p under the current parent chain.
func (g *GameObject) SetWorldPosition(p Vec2) error {
	if g.Parent() == nil {
		g.position = p
		return nil
	}
	local, err := localPointFromWorld(g, p)
	if err != nil {
		return err
	}
	g.position = local
	return nil
}

// SetWorldRotation sets the local rotation so that the world rotation becomes r.
func (g *GameObject) SetWorldRotation(r float64) {
	pr, _ := parentWorld(g)
	g.rotation = r - pr
}

// SetWorldScale sets the local scale so that the world scale becomes s.
func (g *GameObject) SetWorldScale(s Vec2) error {
	if s.X < 0 || s.Y < 0 {
		return fmt.Errorf("canopy: set world scale of %q to (%v, %v): %w", g.Name, s.X, s.Y, ErrNegativeScale)
	}
	_, ps := parentWorld(g)
	if ps.X == 0 || ps.Y == 0 {
		return fmt.Errorf("canopy: set world scale of %q: %w", g.Name, ErrDegenerateScale)
	}
	g.scale = s.Div(ps)
	return nil
}

// LocalToWorld converts a point in this object's own space to world space.
func (g *GameObject) LocalToWorld(p Vec2) Vec2 {
	return worldTransform(g).Apply(p)
}

// WorldToLocal converts a world-space point into this object's own space.
func (g *GameObject) WorldToLocal(p Vec2) (Vec2, error) {
	parentSpace, err := localPointFromWorld(g, p)
	if err != nil {
		return Vec2{}, err
	}
	local, err := g.LocalTransform().Unapply(parentSpace)
	if err != nil {
		return Vec2{}, fmt.Errorf("canopy: world to local for %q: %w", g.Name, err)
	}
	return local, nil
}

// --- Tree manipulation ---

// Parent returns the parent object, or nil at the root.
func (g *GameObject) Parent() *GameObject {
	if g.parent == noIndex || g.engine == nil {
		return nil
	}
	return g.engine.arena.get(g.parent)
}

// SetParent reparents g under p, detaching it from its previous parent
// first. A nil p detaches g. Reassigning the current parent is a no-op.
// Cycles, destroyed objects, and objects from other engines are rejected.
func (g *GameObject) SetParent(p *GameObject) error {
	if g.destroyed {
		return fmt.Errorf("canopy: set parent of %q: %w", g.Name, ErrDestroyed)
	}
	if p == nil {
		g.detach()
		return nil
	}
	if p.destroyed {
		return fmt.Errorf("canopy: set parent of %q to %q: %w", g.Name, p.Name, ErrDestroyed)
	}
	if p.engine != g.engine {
		return fmt.Errorf("canopy: set parent of %q to %q: %w", g.Name, p.Name, ErrForeignObject)
	}
	if g.parent == p.index {
		return nil
	}
	if isAncestor(g, p) {
		return fmt.Errorf("canopy: set parent of %q to %q: %w", g.Name, p.Name, ErrCycle)
	}
	g.detach()
	g.parent = p.index
	p.children = append(p.children, g.index)
	if g.engine.debug {
		g.engine.debugCheckTreeDepth(g)
		g.engine.debugCheckChildCount(p)
	}
	return nil
}

// SetParentKeepWorld reparents g under p while preserving its world
// position, rotation, and scale.
func (g *GameObject) SetParentKeepWorld(p *GameObject) error {
	wt := g.WorldTransform()
	local := g.LocalTransform()
	old := g.Parent()
	if err := g.SetParent(p); err != nil {
		return err
	}
	restore := func(err error) error {
		_ = g.SetParent(old)
		g.position, g.rotation, g.scale = local.Position, local.Rotation, local.Scale
		return err
	}
	if err := g.SetWorldScale(wt.Scale); err != nil {
		return restore(err)
	}
	if err := g.SetWorldPosition(wt.Position); err != nil {
		return restore(err)
	}
	g.SetWorldRotation(wt.Rotation)
	return nil
}

// AddChild makes child a child of g. Same rules as SetParent.
func (g *GameObject) AddChild(child *GameObject) error {
	if child == nil {
		panic("canopy: cannot add nil child")
	}
	return child.SetParent(g)
}

// RemoveChild detaches child from g. Returns ErrNotChild when child's parent
// is not g.
func (g *GameObject) RemoveChild(child *GameObject) error {
	if child == nil || child.Parent() != g {
		return fmt.Errorf("canopy: remove child from %q: %w", g.Name, ErrNotChild)
	}
	child.detach()
	return nil
}

// Children returns the children in insertion order.
func (g *GameObject) Children() []*GameObject {
	out := make([]*GameObject, 0, len(g.children))
	for _, i := range g.children {
		if c := g.engine.arena.get(i); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// NumChildren returns the number of children.
func (g *GameObject) NumChildren() int { return len(g.children) }

// ChildAt returns the child at the given index.
func (g *GameObject) ChildAt(index int) *GameObject {
	return g.engine.arena.get(g.children[index])
}

// FindChild returns the first direct child with the given name.
func (g *GameObject) FindChild(name string) *GameObject {
	for _, i := range g.children {
		if c := g.engine.arena.get(i); c != nil && c.Name == name {
			return c
		}
	}
	return nil
}

// Root returns the topmost ancestor (g itself when it has no parent).
func (g *GameObject) Root() *GameObject {
	r := g
	for p := g.Parent(); p != nil; p = p.Parent() {
		r = p
	}
	return r
}

// Depth returns the number of ancestors.
func (g *GameObject) Depth() int {
	d := 0
	for p := g.Parent(); p != nil; p = p.Parent() {
		d++
	}
	return d
}

// IsAncestorOf reports whether g is an ancestor of other.
func (g *GameObject) IsAncestorOf(other *GameObject) bool {
	if other == nil || other == g {
		return false
	}
	return isAncestor(g, other)
}

// isAncestor reports whether candidate is node or one of its ancestors.
func isAncestor(candidate, node *GameObject) bool {
	for p := node; p != nil; p = p.Parent() {
		if p == candidate {
			return true
		}
	}
	return false
}

// detach removes g from its parent's child list and clears the link.
func (g *GameObject) detach() {
	p := g.Parent()
	g.parent = noIndex
	if p == nil {
		return
	}
	p.removeChildIndex(g.index)
}

// removeChildIndex removes idx from g.children, keeping insertion order.
// Uses copy to avoid retaining a stale index in the backing array.
func (g *GameObject) removeChildIndex(idx int32) {
	for i, c := range g.children {
		if c == idx {
			copy(g.children[i:], g.children[i+1:])
			g.children = g.children[:len(g.children)-1]
			return
		}
	}
}

// --- Texture geometry ---

// TextureSize returns the pixel dimensions of the full texture.
func (g *GameObject) TextureSize() (Vec2, error) {
	if g.Texture == nil {
		return Vec2{}, fmt.Errorf("canopy: texture size of %q: %w", g.Name, ErrNoTexture)
	}
	b := g.Texture.Bounds()
	return Vec2{float64(b.Dx()), float64(b.Dy())}, nil
}

// PivotPixels returns the pivot in texture pixels, relative to the top-left
// of the drawn region (the source rectangle when one is set).
func (g *GameObject) PivotPixels() (Vec2, error) {
	size, err := g.TextureSize()
	if err != nil {
		return Vec2{}, err
	}
	p := g.Pivot.Mul(size)
	if g.SourceRect != nil {
		origin := g.Texture.Bounds().Min
		p = p.Sub(Vec2{float64(g.SourceRect.Min.X - origin.X), float64(g.SourceRect.Min.Y - origin.Y)})
	}
	return p, nil
}

// LocalBounds returns the unscaled texture rectangle in world units,
// relative to the pivot.
func (g *GameObject) LocalBounds() (Rect, error) {
	size, err := g.TextureSize()
	if err != nil {
		return Rect{}, err
	}
	ppu := g.engine.cfg.PixelsPerUnit
	w, h := size.X/ppu, size.Y/ppu
	return Rect{X: -g.Pivot.X * w, Y: -g.Pivot.Y * h, Width: w, Height: h}, nil
}

// boundingRadius is the largest distance from the pivot to a corner of the
// local bounds, scaled by the larger world scale component.
func (g *GameObject) boundingRadius(worldScale Vec2) (float64, error) {
	b, err := g.LocalBounds()
	if err != nil {
		return 0, err
	}
	r := math.Max(
		math.Max(Vec2{b.Left(), b.Top()}.Len(), Vec2{b.Right(), b.Top()}.Len()),
		math.Max(Vec2{b.Left(), b.Bottom()}.Len(), Vec2{b.Right(), b.Bottom()}.Len()),
	)
	return r * math.Max(worldScale.X, worldScale.Y), nil
}

// --- Lifecycle ---

// Index returns the object's arena slot, or -1 once destroyed.
func (g *GameObject) Index() int { return int(g.index) }

// Destroy destroys all children (detaching each), then the attached
// scripts, detaches g from its parent, releases its arena slot, and
// unregisters it from the engine. Destroying twice is a no-op.
func (g *GameObject) Destroy() {
	if !g.beginDestroy() {
		return
	}
	for len(g.children) > 0 {
		child := g.engine.arena.get(g.children[0])
		if child == nil {
			g.children = g.children[1:]
			continue
		}
		if child.destroyed {
			// Destruction already in progress further up the stack.
			child.detach()
			continue
		}
		child.Destroy()
	}
	g.children = nil
	g.destroyScripts()
	g.detach()
	g.engine.arena.release(g.index)
	g.index = noIndex
	g.finishDestroy()
}
