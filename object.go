package canopy

import "sync/atomic"

// Lifecycle is the capability set shared by every participant the engine
// dispatches to: game objects, cameras, scripts, and user types that embed
// Object.
//
// Implementations must embed Object (directly or through Scriptable,
// ScriptBase, or GameObject); the unexported object method ties the
// bookkeeping to that embedded value.
type Lifecycle interface {
	Initialize()
	Update(dt float64)
	DrawUpdate(dt float64)
	Destroy()

	UpdateOrder() float64
	Sequence() uint64
	Active() bool
	Initialized() bool
	Destroyed() bool

	object() *Object
}

// sequenceCounter hands out creation sequence numbers. Zero is never issued.
var sequenceCounter atomic.Uint64

func nextSequence() uint64 {
	return sequenceCounter.Add(1)
}

// manager is the back-reference an Object holds to the container that owns
// it. The container resolves the Object to its stored item by identity.
type manager interface {
	remove(o *Object)
	reorder(o *Object)
}

// Object is the managed-object base: identity, update-order key, owner
// back-reference, and lifecycle flags. Embed it (by value) in custom
// participants and register them with Engine.Add.
type Object struct {
	// Name is free-form and used for lookups and log output.
	Name string

	// Per-object hooks (nil by default; zero cost when unused).
	OnInitialize func()
	OnUpdate     func(dt float64)
	OnDrawUpdate func(dt float64)
	OnDestroy    func()

	seq         uint64
	order       float64
	owner       manager
	inactive    bool
	initialized bool
	destroyed   bool
}

// NewObject returns an Object with a fresh sequence number.
func NewObject(name string) Object {
	return Object{Name: name, seq: nextSequence()}
}

func (o *Object) object() *Object { return o }

// ensureSequence assigns a sequence number to zero-value Objects the first
// time they are registered.
func (o *Object) ensureSequence() {
	if o.seq == 0 {
		o.seq = nextSequence()
	}
}

// Sequence returns the creation sequence number. It never changes and is
// never shared by two objects in the same process.
func (o *Object) Sequence() uint64 { return o.seq }

// UpdateOrder returns the dispatch ordering key. Lower runs earlier.
func (o *Object) UpdateOrder() float64 { return o.order }

// SetUpdateOrder changes the dispatch ordering key and repositions the
// object in its container. During an iteration pass the new position takes
// effect from the next pass.
func (o *Object) SetUpdateOrder(order float64) {
	if o.order == order {
		return
	}
	o.order = order
	if o.owner != nil {
		o.owner.reorder(o)
	}
}

// Active reports whether the object receives Update and DrawUpdate dispatch.
func (o *Object) Active() bool { return !o.inactive }

// SetActive enables or disables dispatch. An inactive object stays in its
// container and resumes dispatch as soon as it is reactivated.
func (o *Object) SetActive(active bool) { o.inactive = !active }

// Initialized reports whether Initialize has been dispatched.
func (o *Object) Initialized() bool { return o.initialized }

// Destroyed reports whether Destroy has been called.
func (o *Object) Destroyed() bool { return o.destroyed }

// Attached reports whether the object is currently registered with a container.
func (o *Object) Attached() bool { return o.owner != nil }

// Initialize runs the OnInitialize hook. The engine calls it exactly once.
func (o *Object) Initialize() {
	if o.OnInitialize != nil {
		o.OnInitialize()
	}
}

// Update runs the OnUpdate hook.
func (o *Object) Update(dt float64) {
	if o.OnUpdate != nil {
		o.OnUpdate(dt)
	}
}

// DrawUpdate runs the OnDrawUpdate hook.
func (o *Object) DrawUpdate(dt float64) {
	if o.OnDrawUpdate != nil {
		o.OnDrawUpdate(dt)
	}
}

// Destroy marks the object destroyed, runs OnDestroy, and detaches it from
// its container. Calling Destroy again is a no-op.
func (o *Object) Destroy() {
	if !o.beginDestroy() {
		return
	}
	o.finishDestroy()
}

// beginDestroy flips the destroyed flag and reports whether this call owns
// the destruction.
func (o *Object) beginDestroy() bool {
	if o.destroyed {
		return false
	}
	o.destroyed = true
	return true
}

// finishDestroy runs the hook and detaches from the owner.
func (o *Object) finishDestroy() {
	if o.OnDestroy != nil {
		o.OnDestroy()
	}
	if o.owner != nil {
		o.owner.remove(o)
	}
}

// Less orders participants by (update-order ascending, sequence ascending).
func Less(a, b Lifecycle) bool {
	return lessKey(a.object(), b.object())
}

func lessKey(a, b *Object) bool {
	if a.order != b.order {
		return a.order < b.order
	}
	return a.seq < b.seq
}

// initialize dispatches Initialize exactly once, then initializes any
// scripts the participant hosts.
func initialize(l Lifecycle) {
	o := l.object()
	if o.initialized || o.destroyed {
		return
	}
	o.initialized = true
	l.Initialize()
	if h, ok := l.(scriptHost); ok {
		h.scriptSet().Each(initializeScript)
	}
}

func initializeScript(s Script) { initialize(s) }

// dispatchUpdate runs one participant's update: hosted scripts first, then
// its own hook. Inactive participants are skipped. A participant destroyed
// earlier in the pass still runs, since its removal only lands when the pass
// drains; a host destroyed by one of its own scripts skips its own hook.
// Destroyed scripts have no host and never run.
func dispatchUpdate(l Lifecycle, dt float64) {
	if !l.Active() {
		return
	}
	if h, ok := l.(scriptHost); ok {
		wasDestroyed := l.Destroyed()
		h.scriptSet().Each(func(s Script) {
			if !s.Destroyed() {
				dispatchUpdate(s, dt)
			}
		})
		if !wasDestroyed && l.Destroyed() {
			return
		}
	}
	l.Update(dt)
}

// dispatchDrawUpdate mirrors dispatchUpdate for the draw-update hook.
func dispatchDrawUpdate(l Lifecycle, dt float64) {
	if !l.Active() {
		return
	}
	if h, ok := l.(scriptHost); ok {
		wasDestroyed := l.Destroyed()
		h.scriptSet().Each(func(s Script) {
			if !s.Destroyed() {
				dispatchDrawUpdate(s, dt)
			}
		})
		if !wasDestroyed && l.Destroyed() {
			return
		}
	}
	l.DrawUpdate(dt)
}
