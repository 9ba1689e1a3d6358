package canopy

import (
	"errors"
	"fmt"
)

const defaultCommandCap = 1024

// ContentLoader is implemented by participants that load assets during the
// engine's LoadContent phase.
type ContentLoader interface {
	LoadContent() error
}

// Engine owns the registered participants, the scene-object arena, and the
// main camera, and drives them through the host contract: Initialize once,
// LoadContent once, then Update and Draw every frame.
type Engine struct {
	cfg      Config
	renderer Renderer
	log      Logger
	sink     EventSink
	debug    bool

	objects *Collection[Lifecycle]
	arena   arena
	camera  *Camera
	window  Vec2

	initialized   bool
	contentLoaded bool

	controls *Controls
	watcher  *ScriptWatcher
	tengo    []*TengoScript

	// Render state
	commands []drawCommand
	sortBuf  []drawCommand

	stats FrameStats
}

// NewEngine creates an engine drawing through r (which may be nil for
// headless use) and registers a main camera. cfg.PixelsPerUnit must be
// positive; a zero Config is replaced field by field with DefaultConfig
// values.
func NewEngine(cfg Config, r Renderer) *Engine {
	def := DefaultConfig()
	if cfg.PixelsPerUnit == 0 {
		cfg.PixelsPerUnit = def.PixelsPerUnit
	}
	if cfg.PixelsPerUnit < 0 {
		panic(fmt.Sprintf("canopy: pixels per unit must be positive, got %v", cfg.PixelsPerUnit))
	}
	if cfg.Window.Width == 0 && cfg.Window.Height == 0 {
		cfg.Window.Width, cfg.Window.Height = def.Window.Width, def.Window.Height
	}
	var colorErr error
	if cfg.ClearColor == (Color{}) {
		cfg.ClearColor = def.ClearColor
		if cfg.ClearColorName != "" {
			if c, err := parseColor(cfg.ClearColorName); err != nil {
				colorErr = err
			} else {
				cfg.ClearColor = c
			}
		}
	}
	e := &Engine{
		cfg:      cfg,
		renderer: r,
		log:      defaultLogger(cfg.Debug),
		debug:    cfg.Debug,
		objects:  NewCollection[Lifecycle](),
		window:   Vec2{float64(cfg.Window.Width), float64(cfg.Window.Height)},
		controls: NewControls(nil),
		commands: make([]drawCommand, 0, defaultCommandCap),
		sortBuf:  make([]drawCommand, 0, defaultCommandCap),
	}
	e.objects.onRemoved = e.removed
	e.camera = e.NewCamera("main camera")
	if colorErr != nil {
		e.log.Warn("ignoring clear color", "name", cfg.ClearColorName, "err", colorErr)
	}
	return e
}

// Config returns the configuration the engine was created with.
func (e *Engine) Config() Config { return e.cfg }

// PixelsPerUnit returns the world-to-pixel scale.
func (e *Engine) PixelsPerUnit() float64 { return e.cfg.PixelsPerUnit }

// SetRenderer replaces the draw backend.
func (e *Engine) SetRenderer(r Renderer) { e.renderer = r }

// Renderer returns the draw backend, or nil when headless.
func (e *Engine) Renderer() Renderer { return e.renderer }

// SetLogger replaces the engine logger. A nil logger discards output.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger()
	}
	if t, ok := l.(debugToggler); ok {
		t.setDebug(e.debug)
	}
	e.log = l
}

// Logger returns the engine logger.
func (e *Engine) Logger() Logger { return e.log }

// SetEventSink sets the optional lifecycle event receiver.
func (e *Engine) SetEventSink(sink EventSink) { e.sink = sink }

// SetDebugMode enables or disables debug mode. When enabled, per-frame timing
// stats are logged and tree depth and child count warnings are emitted. The
// default logger lowers its level to Debug to match.
func (e *Engine) SetDebugMode(enabled bool) {
	e.debug = enabled
	if t, ok := e.log.(debugToggler); ok {
		t.setDebug(enabled)
	}
}

// Stats returns the metrics of the most recent frame.
func (e *Engine) Stats() FrameStats { return e.stats }

// Controls returns the engine's control-state layer.
func (e *Engine) Controls() *Controls { return e.controls }

// SetInputSource sets the raw input backend polled at the start of Update.
func (e *Engine) SetInputSource(src InputSource) { e.controls.SetSource(src) }

// SetWindowSize records the host window size in pixels. The camera picks it
// up at the start of the next draw pass.
func (e *Engine) SetWindowSize(width, height int) {
	e.window = Vec2{float64(width), float64(height)}
}

// WindowSize returns the last window size reported by the host.
func (e *Engine) WindowSize() Vec2 { return e.window }

// Initialized reports whether the Initialize phase has run.
func (e *Engine) Initialized() bool { return e.initialized }

// ContentLoaded reports whether the LoadContent phase has run.
func (e *Engine) ContentLoaded() bool { return e.contentLoaded }

// --- Registration ---

// Add registers a participant. Game objects and cameras created through the
// engine are registered already. Once the engine has initialized, the
// participant is initialized right away; before that it waits for the
// Initialize pass. While a dispatch pass runs, it joins the live list when
// the pass finishes.
func (e *Engine) Add(l Lifecycle) error {
	if l == nil {
		panic("canopy: cannot add nil object")
	}
	o := l.object()
	if o.owner == manager(e.objects) {
		return nil
	}
	if o.destroyed {
		return fmt.Errorf("canopy: add %q: %w", o.Name, ErrDestroyed)
	}
	if o.owner != nil {
		return fmt.Errorf("canopy: add %q: %w", o.Name, ErrAlreadyAttached)
	}
	if b, ok := l.(interface{ bindEngine(*Engine) bool }); ok && !b.bindEngine(e) {
		return fmt.Errorf("canopy: add %q: %w", o.Name, ErrForeignObject)
	}
	e.objects.Add(l)
	e.emit(EventCreated, l)
	if e.initialized {
		e.initObject(l)
	}
	return nil
}

// Remove unregisters l without destroying it. During a dispatch pass the
// removal takes effect when the pass finishes.
func (e *Engine) Remove(l Lifecycle) {
	e.objects.Remove(l)
}

// NewGameObject creates and registers a root-level game object.
func (e *Engine) NewGameObject(name string) *GameObject {
	g := newGameObject(e, name)
	if err := e.Add(g); err != nil {
		panic(err)
	}
	return g
}

// NewCamera creates and registers a camera. It does not replace the main
// camera; use SetCamera for that.
func (e *Engine) NewCamera(name string) *Camera {
	c := newCamera(e.cfg, name)
	c.engine = e
	if err := e.Add(c); err != nil {
		panic(err)
	}
	return c
}

// Camera returns the main camera used to project world-space objects.
func (e *Engine) Camera() *Camera { return e.camera }

// SetCamera makes c the main camera, registering it first if needed.
func (e *Engine) SetCamera(c *Camera) error {
	if c == nil {
		panic("canopy: cannot set nil camera")
	}
	if err := e.Add(c); err != nil {
		return err
	}
	e.camera = c
	return nil
}

// Objects returns the registered participants in update order. The returned
// slice MUST NOT be mutated.
func (e *Engine) Objects() []Lifecycle { return e.objects.Items() }

// GameObjects returns the registered game objects in update order.
func (e *Engine) GameObjects() []*GameObject {
	var out []*GameObject
	for _, l := range e.objects.Items() {
		if g, ok := l.(*GameObject); ok {
			out = append(out, g)
		}
	}
	return out
}

// Find returns the first registered participant with the given name, in
// update order.
func (e *Engine) Find(name string) Lifecycle {
	for _, l := range e.objects.Items() {
		if l.object().Name == name {
			return l
		}
	}
	return nil
}

// FindGameObject returns the first registered game object with the given name.
func (e *Engine) FindGameObject(name string) *GameObject {
	for _, l := range e.objects.Items() {
		if g, ok := l.(*GameObject); ok && g.Name == name {
			return g
		}
	}
	return nil
}

func (s *Scriptable) bindEngine(e *Engine) bool {
	if s.engine == nil {
		s.engine = e
		return true
	}
	return s.engine == e
}

func (e *Engine) initObject(l Lifecycle) {
	if l.Initialized() {
		return
	}
	initialize(l)
	if l.Initialized() {
		e.emit(EventInitialized, l)
	}
}

// removed is the collection callback for items that actually left.
func (e *Engine) removed(l Lifecycle) {
	if l.Destroyed() {
		e.emit(EventDestroyed, l)
		return
	}
	e.emit(EventRemoved, l)
}

// --- Host contract ---

// Initialize runs the initialize pass over every participant registered so
// far. Participants registered afterwards are initialized on registration.
// Calling it again is a no-op.
func (e *Engine) Initialize() error {
	if e.initialized {
		return nil
	}
	e.initialized = true
	e.objects.Each(e.initObject)
	e.log.Info("engine initialized", "objects", e.objects.Len())
	return nil
}

// LoadContent runs the content phase: participants implementing
// ContentLoader load their assets, and the script watcher starts when
// configured. It must follow Initialize.
func (e *Engine) LoadContent() error {
	if !e.initialized {
		return fmt.Errorf("canopy: load content: %w", ErrNotInitialized)
	}
	if e.contentLoaded {
		return nil
	}
	var errs []error
	e.objects.Each(func(l Lifecycle) {
		if cl, ok := l.(ContentLoader); ok && !l.Destroyed() {
			if err := cl.LoadContent(); err != nil {
				errs = append(errs, fmt.Errorf("canopy: load content for %q: %w", l.object().Name, err))
			}
		}
	})
	if err := errors.Join(errs...); err != nil {
		return err
	}
	if e.cfg.WatchScripts && len(e.cfg.ScriptDirs) > 0 {
		if err := e.WatchScripts(e.cfg.ScriptDirs...); err != nil {
			return err
		}
	}
	e.contentLoaded = true
	return nil
}

func (e *Engine) checkReady(op string) error {
	if !e.initialized || !e.contentLoaded {
		return fmt.Errorf("canopy: %s: %w", op, ErrNotInitialized)
	}
	return nil
}

// Update polls controls, applies pending script reloads, and runs one update
// pass over every active participant in update order.
func (e *Engine) Update(dt float64) error {
	if err := e.checkReady("update"); err != nil {
		return err
	}
	e.stats = FrameStats{Frame: e.stats.Frame + 1}
	elapsed := e.stopwatch()

	e.controls.Poll()
	e.applyReloads()
	e.objects.Each(func(l Lifecycle) { dispatchUpdate(l, dt) })

	e.stats.UpdateTime = elapsed()
	return nil
}

// Draw refreshes the camera window, runs the draw-update pass, clears the
// backdrop, and submits one sprite per visible textured object in draw order.
func (e *Engine) Draw(dt float64) error {
	if err := e.checkReady("draw"); err != nil {
		return err
	}
	e.camera.setWindow(e.window)

	elapsed := e.stopwatch()
	e.objects.Each(func(l Lifecycle) { dispatchDrawUpdate(l, dt) })
	e.stats.DrawUpdateTime = elapsed()

	if e.renderer != nil {
		e.renderer.Clear(e.cfg.ClearColor)
	}

	elapsed = e.stopwatch()
	e.collect()
	e.stats.CollectTime = elapsed()

	elapsed = e.stopwatch()
	e.mergeSort()
	e.stats.SortTime = elapsed()

	elapsed = e.stopwatch()
	e.submit()
	e.stats.SubmitTime = elapsed()

	e.stats.Objects = e.objects.Len()
	e.stats.Scene = e.arena.live
	e.stats.Commands = len(e.commands)
	e.debugLog()
	return nil
}

// Close stops the script watcher if one is running.
func (e *Engine) Close() error {
	if e.watcher == nil {
		return nil
	}
	err := e.watcher.Close()
	e.watcher = nil
	return err
}
