package canopy

import "fmt"

// Script is a behaviour attached to a Scriptable host. The host forwards its
// lifecycle to attached scripts and owns their lifetime.
//
// Implement Script by embedding ScriptBase and overriding the hooks you need.
// Overrides of Destroy must call the embedded ScriptBase.Destroy.
type Script interface {
	Lifecycle
	Host() *Scriptable
	setHost(h *Scriptable)
}

// scriptHost is implemented by participants that carry attached scripts.
type scriptHost interface {
	scriptSet() *Collection[Script]
}

// Scriptable is a managed object that hosts an ordered set of scripts.
// GameObject and Camera embed it.
type Scriptable struct {
	Object

	scripts *Collection[Script]
	engine  *Engine
	// outer is the concrete participant embedding this Scriptable
	// (a *GameObject or *Camera), used to hand scripts their typed host.
	outer Lifecycle
}

// NewScriptable returns a standalone Scriptable. Register it with Engine.Add.
func NewScriptable(name string) *Scriptable {
	s := &Scriptable{}
	s.initScriptable(name, nil)
	return s
}

func (s *Scriptable) initScriptable(name string, outer Lifecycle) {
	s.Object = NewObject(name)
	s.scripts = NewCollection[Script]()
	s.outer = outer
}

func (s *Scriptable) scriptSet() *Collection[Script] {
	if s.scripts == nil {
		s.scripts = NewCollection[Script]()
	}
	return s.scripts
}

// Engine returns the engine this host is registered with, or nil.
func (s *Scriptable) Engine() *Engine { return s.engine }

// AddScript attaches sc to this host. The script is initialized right away
// when the host already is, otherwise together with the host. Scripts added
// during the host's own dispatch pass start receiving updates next pass.
func (s *Scriptable) AddScript(sc Script) error {
	if sc == nil {
		panic("canopy: cannot add nil script")
	}
	if s.destroyed {
		return fmt.Errorf("canopy: add script %q to %q: %w", sc.object().Name, s.Name, ErrDestroyed)
	}
	if sc.Destroyed() {
		return fmt.Errorf("canopy: add script %q: %w", sc.object().Name, ErrDestroyed)
	}
	if h := sc.Host(); h != nil {
		if h == s {
			return nil
		}
		return fmt.Errorf("canopy: add script %q to %q: %w", sc.object().Name, s.Name, ErrAlreadyAttached)
	}
	sc.setHost(s)
	s.scriptSet().Add(sc)
	if s.initialized {
		initialize(sc)
	}
	return nil
}

// RemoveScript destroys sc if it is attached to this host.
func (s *Scriptable) RemoveScript(sc Script) {
	if sc == nil || sc.Host() != s {
		return
	}
	sc.Destroy()
}

// Scripts returns the attached scripts in dispatch order. The returned slice
// MUST NOT be mutated by the caller.
func (s *Scriptable) Scripts() []Script {
	return s.scriptSet().Items()
}

// NumScripts returns the number of attached scripts.
func (s *Scriptable) NumScripts() int {
	return s.scriptSet().Len()
}

// FindScript returns the first attached script of type T.
func FindScript[T Script](s *Scriptable) (T, bool) {
	for _, sc := range s.scriptSet().Items() {
		if t, ok := sc.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// Destroy destroys every attached script, then the host itself.
func (s *Scriptable) Destroy() {
	if !s.beginDestroy() {
		return
	}
	s.destroyScripts()
	s.finishDestroy()
}

func (s *Scriptable) destroyScripts() {
	// Copy: removal is immediate when the script set is not iterating.
	scripts := append([]Script(nil), s.scriptSet().Items()...)
	adds := s.scriptSet().toAdd
	scripts = append(scripts, adds...)
	for _, sc := range scripts {
		sc.Destroy()
	}
}

// --- ScriptBase ---

// ScriptBase is the embeddable default Script implementation. All hooks are
// no-ops unless the Object callback fields are set.
type ScriptBase struct {
	Object
	host *Scriptable
}

// NewScriptBase returns a ScriptBase with a fresh sequence number.
func NewScriptBase(name string) ScriptBase {
	return ScriptBase{Object: NewObject(name)}
}

// Host returns the Scriptable this script is attached to, or nil once the
// script has been destroyed or before it is attached.
func (b *ScriptBase) Host() *Scriptable { return b.host }

func (b *ScriptBase) setHost(h *Scriptable) { b.host = h }

// GameObject returns the host as a *GameObject, or nil when the host is not
// a game object.
func (b *ScriptBase) GameObject() *GameObject {
	if b.host == nil {
		return nil
	}
	g, _ := b.host.outer.(*GameObject)
	return g
}

// Engine returns the host's engine, or nil when detached.
func (b *ScriptBase) Engine() *Engine {
	if b.host == nil {
		return nil
	}
	return b.host.engine
}

// Instantiate creates a new game object in the host's engine. Returns
// ErrDetached when the script has no live host.
func (b *ScriptBase) Instantiate(name string) (*GameObject, error) {
	e := b.Engine()
	if e == nil {
		return nil, fmt.Errorf("canopy: instantiate %q from script %q: %w", name, b.Name, ErrDetached)
	}
	return e.NewGameObject(name), nil
}

// DestroyHost destroys the script's host (and therefore the script).
// Returns ErrDetached when the script has no live host.
func (b *ScriptBase) DestroyHost() error {
	if b.host == nil || b.host.destroyed {
		return fmt.Errorf("canopy: destroy host from script %q: %w", b.Name, ErrDetached)
	}
	if b.host.outer != nil {
		b.host.outer.Destroy()
		return nil
	}
	b.host.Destroy()
	return nil
}

// Destroy detaches the script from its host and marks it destroyed. The
// host reference is cleared exactly once, here.
func (b *ScriptBase) Destroy() {
	if !b.beginDestroy() {
		return
	}
	b.finishDestroy()
	b.host = nil
}
