package canopy

// noIndex marks an absent arena link.
const noIndex int32 = -1

// arena is the flat store of live game objects. Parent and child links are
// slot indices into it; released slots are reused through a free list.
type arena struct {
	slots []*GameObject
	free  []int32
	live  int
}

func (a *arena) alloc(g *GameObject) int32 {
	a.live++
	if n := len(a.free); n > 0 {
		i := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[i] = g
		return i
	}
	a.slots = append(a.slots, g)
	return int32(len(a.slots) - 1)
}

func (a *arena) release(i int32) {
	if i < 0 || int(i) >= len(a.slots) || a.slots[i] == nil {
		return
	}
	a.slots[i] = nil
	a.free = append(a.free, i)
	a.live--
}

// get returns the object at index i, or nil for noIndex and released slots.
func (a *arena) get(i int32) *GameObject {
	if i < 0 || int(i) >= len(a.slots) {
		return nil
	}
	return a.slots[i]
}

// each visits live objects in slot order.
func (a *arena) each(fn func(*GameObject)) {
	for _, g := range a.slots {
		if g != nil {
			fn(g)
		}
	}
}
