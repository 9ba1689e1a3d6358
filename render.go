package canopy

// drawCommand is a single resolved sprite emitted during the collect phase.
type drawCommand struct {
	sprite Sprite
	order  float64
	seq    uint64
}

// collect resolves every drawable game object into a draw command. Objects
// that are inactive, invisible, or have no texture are skipped; world-space
// objects that fail the camera visibility test are culled.
func (e *Engine) collect() {
	e.commands = e.commands[:0]
	e.stats.Culled, e.stats.Skipped = 0, 0
	cam := e.camera
	e.arena.each(func(g *GameObject) {
		if g.destroyed || g.owner == nil || !g.Active() || !g.Visible || g.Texture == nil {
			e.stats.Skipped++
			return
		}
		cmd, ok := e.resolve(g, cam)
		if !ok {
			e.stats.Culled++
			return
		}
		e.commands = append(e.commands, cmd)
	})
}

// resolve computes g's screen-space placement. It reports false when g is a
// world-space object outside the camera view.
func (e *Engine) resolve(g *GameObject, cam *Camera) (drawCommand, bool) {
	pivot, err := g.PivotPixels()
	if err != nil {
		return drawCommand{}, false
	}
	s := Sprite{
		Texture:    g.Texture,
		SourceRect: g.SourceRect,
		Tint:       g.Tint,
		Pivot:      pivot,
		Depth:      g.DrawOrder,
		BlendMode:  g.BlendMode,
	}
	if g.WorldSpace {
		wt := g.WorldTransform()
		center := cam.WorldToScreen(wt.Position)
		radius, err := g.boundingRadius(wt.Scale)
		if err != nil {
			return drawCommand{}, false
		}
		if !cam.IsVisible(center, radius*cam.WorldScaleToScreenScale()) {
			return drawCommand{}, false
		}
		s.Position = center
		s.Rotation = wt.Rotation
		// One texture pixel spans 1/ppu world units, so the pixel-per-unit
		// factor cancels and only zoom remains.
		s.Scale = wt.Scale.Scale(cam.Zoom)
	} else {
		s.Position = g.position
		s.Rotation = g.rotation
		s.Scale = g.scale
	}
	return drawCommand{sprite: s, order: g.DrawOrder, seq: g.seq}, true
}

// submit hands the sorted commands to the renderer.
func (e *Engine) submit() {
	if e.renderer == nil {
		return
	}
	for i := range e.commands {
		e.renderer.DrawSprite(e.commands[i].sprite)
	}
	if p, ok := e.renderer.(Presenter); ok {
		p.Present()
	}
}

// DrawList returns the sprites submitted by the most recent Draw, in paint
// order. The returned slice is rebuilt every frame.
func (e *Engine) DrawList() []Sprite {
	out := make([]Sprite, len(e.commands))
	for i := range e.commands {
		out[i] = e.commands[i].sprite
	}
	return out
}

// --- Merge sort ---

// commandLessOrEqual returns true if a should paint before or at the same
// position as b: draw order ascending, then creation sequence.
func commandLessOrEqual(a, b *drawCommand) bool {
	if a.order != b.order {
		return a.order < b.order
	}
	return a.seq <= b.seq
}

// mergeSort sorts e.commands in-place using e.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the sort buffer reaches its
// high-water mark.
func (e *Engine) mergeSort() {
	n := len(e.commands)
	if n <= 1 {
		return
	}
	if cap(e.sortBuf) < n {
		e.sortBuf = make([]drawCommand, n)
	}
	e.sortBuf = e.sortBuf[:n]

	a := e.commands
	b := e.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(e.commands, e.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []drawCommand, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if commandLessOrEqual(&src[i], &src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}
