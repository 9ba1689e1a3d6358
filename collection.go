package canopy

import (
	"slices"
	"sort"
)

// Collection is an ordered container of lifecycle participants, sorted by
// (update-order, sequence). It is safe to add and remove items from inside
// an Each pass: while a pass runs, mutations are buffered and drained once
// the pass finishes, adds first and then removes, each in call order.
type Collection[T Lifecycle] struct {
	items    []T
	toAdd    []T
	toRemove []T

	iterating bool
	unsorted  bool

	// onRemoved fires when an item actually leaves the collection.
	onRemoved func(T)
}

// NewCollection returns an empty collection.
func NewCollection[T Lifecycle]() *Collection[T] {
	return &Collection[T]{}
}

// Add registers item. Items already owned by this collection are ignored.
// Panics if the item belongs to a different container.
func (c *Collection[T]) Add(item T) {
	o := item.object()
	o.ensureSequence()
	if o.owner == manager(c) {
		return
	}
	if o.owner != nil {
		panic("canopy: object already belongs to another container")
	}
	o.owner = c
	if c.iterating {
		c.toAdd = append(c.toAdd, item)
		return
	}
	c.insert(item)
}

// Remove unregisters item. The item is not destroyed. Removing an item the
// collection does not own is a no-op.
func (c *Collection[T]) Remove(item T) {
	c.remove(item.object())
}

func (c *Collection[T]) remove(o *Object) {
	if o.owner != manager(c) {
		return
	}
	o.owner = nil
	i := c.indexOf(o)
	if i < 0 {
		// Added and removed within the same pass.
		i = c.pendingIndexOf(o)
		if i < 0 {
			return
		}
		c.toRemove = append(c.toRemove, c.toAdd[i])
		return
	}
	if c.iterating {
		c.toRemove = append(c.toRemove, c.items[i])
		return
	}
	c.removeAt(i)
}

// reorder repositions o after its update-order key changed.
func (c *Collection[T]) reorder(o *Object) {
	if c.iterating {
		c.unsorted = true
		return
	}
	i := c.indexOf(o)
	if i < 0 {
		return
	}
	item := c.items[i]
	c.items = slices.Delete(c.items, i, i+1)
	c.insert(item)
}

// Each runs fn over every item in order. Items added during the pass are
// first visited in the next pass; items removed during the pass are still
// visited in this one. Panics on a nested pass over the same collection.
func (c *Collection[T]) Each(fn func(T)) {
	if c.iterating {
		panic("canopy: nested iteration over the same collection")
	}
	c.iterating = true
	func() {
		defer func() { c.iterating = false }()
		for _, item := range c.items {
			fn(item)
		}
	}()
	c.drain()
}

// drain applies buffered mutations exactly once.
func (c *Collection[T]) drain() {
	if c.unsorted {
		slices.SortStableFunc(c.items, func(a, b T) int {
			if lessKey(a.object(), b.object()) {
				return -1
			}
			if lessKey(b.object(), a.object()) {
				return 1
			}
			return 0
		})
		c.unsorted = false
	}
	if len(c.toAdd) > 0 {
		adds := c.toAdd
		c.toAdd = nil
		for _, item := range adds {
			c.insert(item)
		}
	}
	if len(c.toRemove) > 0 {
		removes := c.toRemove
		c.toRemove = nil
		for _, item := range removes {
			o := item.object()
			if o.owner == manager(c) {
				// Re-added after the removal request.
				continue
			}
			if i := c.indexOf(o); i >= 0 {
				c.removeAt(i)
			}
		}
	}
}

// insert places item at its sorted position. Duplicates are ignored.
func (c *Collection[T]) insert(item T) {
	o := item.object()
	if c.indexOf(o) >= 0 {
		return
	}
	i := sort.Search(len(c.items), func(i int) bool {
		return lessKey(o, c.items[i].object())
	})
	c.items = slices.Insert(c.items, i, item)
}

func (c *Collection[T]) removeAt(i int) {
	item := c.items[i]
	c.items = slices.Delete(c.items, i, i+1)
	if c.onRemoved != nil {
		c.onRemoved(item)
	}
}

func (c *Collection[T]) indexOf(o *Object) int {
	for i, item := range c.items {
		if item.object() == o {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) pendingIndexOf(o *Object) int {
	for i, item := range c.toAdd {
		if item.object() == o {
			return i
		}
	}
	return -1
}

// Contains reports whether item is currently in the live item list.
func (c *Collection[T]) Contains(item T) bool {
	return c.indexOf(item.object()) >= 0
}

// Len returns the number of live items (pending adds excluded).
func (c *Collection[T]) Len() int { return len(c.items) }

// At returns the item at index i in dispatch order.
func (c *Collection[T]) At(i int) T { return c.items[i] }

// Items returns the live items in dispatch order. The returned slice MUST NOT
// be mutated by the caller.
func (c *Collection[T]) Items() []T { return c.items }

// Iterating reports whether an Each pass is in progress.
func (c *Collection[T]) Iterating() bool { return c.iterating }

// Pending returns the number of buffered adds and removes.
func (c *Collection[T]) Pending() (adds, removes int) {
	return len(c.toAdd), len(c.toRemove)
}
