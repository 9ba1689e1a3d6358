package canopy

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// Tengo hook names, in lifecycle order. A script defines any subset of them
// at top level:
//
//	init := func(self) { ... }
//	update := func(self, dt) { ... }
//	draw_update := func(self, dt) { ... }
//	destroy := func(self) { ... }
var tengoHooks = []string{"init", "update", "draw_update", "destroy"}

var tengoHookDecl = regexp.MustCompile(`(?m)^\s*(init|update|draw_update|destroy)\s*:=\s*func\b`)

// tengoDispatch builds the trailer that routes __phase to the declared hooks.
func tengoDispatch(src []byte) string {
	declared := make(map[string]bool)
	for _, m := range tengoHookDecl.FindAllSubmatch(src, -1) {
		declared[string(m[1])] = true
	}
	var b strings.Builder
	b.WriteString("\n")
	for _, h := range tengoHooks {
		if !declared[h] {
			continue
		}
		switch h {
		case "init", "destroy":
			fmt.Fprintf(&b, "if __phase == %q { %s(__self) }\n", h, h)
		default:
			fmt.Fprintf(&b, "if __phase == %q { %s(__self, __dt) }\n", h, h)
		}
	}
	return b.String()
}

// TengoScript runs a Tengo program as a script. Every phase re-runs the
// program and calls the matching hook with a `self` map of bindings:
// position(), set_position(x, y), rotation(), set_rotation(r), scale(),
// set_scale(x, y), destroy(), log(msg...), pressed(control),
// held(control), the frame's dt, and a persistent `state` map.
//
// A runtime error is logged and disables the script until it is reloaded.
type TengoScript struct {
	ScriptBase

	// Path is the source file, when loaded from disk. Reload and the script
	// watcher use it.
	Path string

	source     []byte
	compiled   *tengo.Compiled
	state      *tengo.Map
	err        error
	destroying bool

	// running is set while the program executes; phases requested from
	// inside it (self.destroy() triggering the destroy hook) are queued.
	running bool
	queued  []string
}

// NewTengoScript compiles src.
func NewTengoScript(name string, src []byte) (*TengoScript, error) {
	t := &TengoScript{
		ScriptBase: NewScriptBase(name),
		state:      &tengo.Map{Value: map[string]tengo.Object{}},
	}
	if err := t.SetSource(src); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadTengoScript reads and compiles a .tengo file.
func LoadTengoScript(path string) (*TengoScript, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("canopy: load tengo script %s: %w", path, err)
	}
	t, err := NewTengoScript(filepath.Base(path), src)
	if err != nil {
		return nil, err
	}
	t.Path = path
	return t, nil
}

// SetSource recompiles the script from src. On failure the previous program
// stays in place. On success any runtime failure is cleared.
func (t *TengoScript) SetSource(src []byte) error {
	script := tengo.NewScript(append(append([]byte(nil), src...), tengoDispatch(src)...))
	_ = script.Add("__phase", "")
	_ = script.Add("__self", map[string]any{})
	_ = script.Add("__dt", 0.0)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return fmt.Errorf("canopy: compile tengo script %q: %w", t.Name, err)
	}
	t.source = append([]byte(nil), src...)
	t.compiled = compiled
	t.err = nil
	return nil
}

// Reload re-reads Path and recompiles. The persistent state map survives.
func (t *TengoScript) Reload() error {
	if t.Path == "" {
		return fmt.Errorf("canopy: reload tengo script %q: no path", t.Name)
	}
	src, err := os.ReadFile(t.Path)
	if err != nil {
		return fmt.Errorf("canopy: reload tengo script %s: %w", t.Path, err)
	}
	return t.SetSource(src)
}

// Err returns the runtime error that disabled the script, or nil.
func (t *TengoScript) Err() error { return t.err }

// State returns the persistent state map shared by all phases.
func (t *TengoScript) State() map[string]any {
	out := make(map[string]any, len(t.state.Value))
	for k, v := range t.state.Value {
		out[k] = tengo.ToInterface(v)
	}
	return out
}

func (t *TengoScript) logger() Logger {
	if e := t.Engine(); e != nil {
		return e.log
	}
	return NopLogger()
}

// Initialize registers the script for hot reload and runs the init hook.
func (t *TengoScript) Initialize() {
	t.ScriptBase.Initialize()
	if e := t.Engine(); e != nil {
		e.registerTengo(t)
	}
	t.run("init", 0)
}

// Update runs the update hook.
func (t *TengoScript) Update(dt float64) {
	t.ScriptBase.Update(dt)
	t.run("update", dt)
}

// DrawUpdate runs the draw_update hook.
func (t *TengoScript) DrawUpdate(dt float64) {
	t.ScriptBase.DrawUpdate(dt)
	t.run("draw_update", dt)
}

// Destroy runs the destroy hook, unregisters from hot reload, and detaches
// the script.
func (t *TengoScript) Destroy() {
	if t.Destroyed() || t.destroying {
		return
	}
	t.destroying = true
	if t.Initialized() {
		t.run("destroy", 0)
	}
	if t.running {
		// The destroy hook is queued behind the running phase and still
		// needs the host; run finishes the teardown once it has drained.
		return
	}
	t.detach()
}

func (t *TengoScript) detach() {
	if e := t.Engine(); e != nil {
		e.unregisterTengo(t)
	}
	t.ScriptBase.Destroy()
}

func (t *TengoScript) run(phase string, dt float64) {
	if t.running {
		t.queued = append(t.queued, phase)
		return
	}
	t.running = true
	t.runOne(phase, dt)
	for len(t.queued) > 0 {
		next := t.queued[0]
		t.queued = t.queued[1:]
		t.runOne(next, 0)
	}
	t.running = false
	if t.destroying && !t.Destroyed() {
		t.detach()
	}
}

func (t *TengoScript) runOne(phase string, dt float64) {
	if t.err != nil || t.compiled == nil {
		return
	}
	if err := t.runPhase(phase, dt); err != nil {
		t.err = err
		t.logger().Error("tengo script disabled", "script", t.Name, "phase", phase, "err", err)
	}
}

func (t *TengoScript) runPhase(phase string, dt float64) error {
	if err := t.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := t.compiled.Set("__self", t.bindings(dt)); err != nil {
		return err
	}
	if err := t.compiled.Set("__dt", dt); err != nil {
		return err
	}
	return t.compiled.Run()
}

func (t *TengoScript) bindings(dt float64) *tengo.ImmutableMap {
	values := map[string]tengo.Object{
		"name":  &tengo.String{Value: t.Name},
		"dt":    &tengo.Float{Value: dt},
		"state": t.state,
	}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		g, err := t.hostObject()
		if err != nil {
			return nil, err
		}
		return vecObject(g.Position()), nil
	}}

	values["set_position"] = &tengo.UserFunction{Name: "set_position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		g, err := t.hostObject()
		if err != nil {
			return nil, err
		}
		v, err := vecArgs("set_position", args)
		if err != nil {
			return nil, err
		}
		g.SetPosition(v)
		return tengo.UndefinedValue, nil
	}}

	values["rotation"] = &tengo.UserFunction{Name: "rotation", Value: func(args ...tengo.Object) (tengo.Object, error) {
		g, err := t.hostObject()
		if err != nil {
			return nil, err
		}
		return &tengo.Float{Value: g.Rotation()}, nil
	}}

	values["set_rotation"] = &tengo.UserFunction{Name: "set_rotation", Value: func(args ...tengo.Object) (tengo.Object, error) {
		g, err := t.hostObject()
		if err != nil {
			return nil, err
		}
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		r, ok := tengo.ToFloat64(args[0])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "r", Expected: "float", Found: args[0].TypeName()}
		}
		g.SetRotation(r)
		return tengo.UndefinedValue, nil
	}}

	values["scale"] = &tengo.UserFunction{Name: "scale", Value: func(args ...tengo.Object) (tengo.Object, error) {
		g, err := t.hostObject()
		if err != nil {
			return nil, err
		}
		return vecObject(g.Scale()), nil
	}}

	values["set_scale"] = &tengo.UserFunction{Name: "set_scale", Value: func(args ...tengo.Object) (tengo.Object, error) {
		g, err := t.hostObject()
		if err != nil {
			return nil, err
		}
		v, err := vecArgs("set_scale", args)
		if err != nil {
			return nil, err
		}
		if err := g.SetScale(v); err != nil {
			return nil, err
		}
		return tengo.UndefinedValue, nil
	}}

	values["destroy"] = &tengo.UserFunction{Name: "destroy", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if err := t.DestroyHost(); err != nil {
			return nil, err
		}
		return tengo.UndefinedValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, objectAsString(a))
		}
		t.logger().Info(strings.Join(parts, " "), "script", t.Name)
		return tengo.UndefinedValue, nil
	}}

	values["pressed"] = &tengo.UserFunction{Name: "pressed", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return t.controlQuery(args, (*Controls).Pressed)
	}}

	values["held"] = &tengo.UserFunction{Name: "held", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return t.controlQuery(args, (*Controls).Held)
	}}

	return &tengo.ImmutableMap{Value: values}
}

func (t *TengoScript) hostObject() (*GameObject, error) {
	g := t.GameObject()
	if g == nil {
		return nil, fmt.Errorf("canopy: tengo script %q: %w", t.Name, ErrDetached)
	}
	return g, nil
}

func (t *TengoScript) controlQuery(args []tengo.Object, query func(*Controls, Control) bool) (tengo.Object, error) {
	if len(args) != 1 {
		return nil, tengo.ErrWrongNumArguments
	}
	e := t.Engine()
	if e == nil {
		return tengo.FalseValue, nil
	}
	if query(e.controls, Control(objectAsString(args[0]))) {
		return tengo.TrueValue, nil
	}
	return tengo.FalseValue, nil
}

func vecObject(v Vec2) tengo.Object {
	return &tengo.Array{Value: []tengo.Object{&tengo.Float{Value: v.X}, &tengo.Float{Value: v.Y}}}
}

func vecArgs(fn string, args []tengo.Object) (Vec2, error) {
	if len(args) != 2 {
		return Vec2{}, tengo.ErrWrongNumArguments
	}
	x, ok := tengo.ToFloat64(args[0])
	if !ok {
		return Vec2{}, tengo.ErrInvalidArgumentType{Name: fn + " x", Expected: "float", Found: args[0].TypeName()}
	}
	y, ok := tengo.ToFloat64(args[1])
	if !ok {
		return Vec2{}, tengo.ErrInvalidArgumentType{Name: fn + " y", Expected: "float", Found: args[1].TypeName()}
	}
	return Vec2{x, y}, nil
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

// --- Engine registry ---

func (e *Engine) registerTengo(t *TengoScript) {
	for _, s := range e.tengo {
		if s == t {
			return
		}
	}
	e.tengo = append(e.tengo, t)
}

func (e *Engine) unregisterTengo(t *TengoScript) {
	for i, s := range e.tengo {
		if s == t {
			copy(e.tengo[i:], e.tengo[i+1:])
			e.tengo[len(e.tengo)-1] = nil
			e.tengo = e.tengo[:len(e.tengo)-1]
			return
		}
	}
}

// TengoScripts returns the live Tengo scripts registered for hot reload.
func (e *Engine) TengoScripts() []*TengoScript { return e.tengo }

// ReloadScript recompiles every live Tengo script loaded from path and
// returns how many were reloaded. Failures are logged; the previous program
// keeps running for scripts that fail to compile.
func (e *Engine) ReloadScript(path string) int {
	want := cleanPath(path)
	n := 0
	for _, t := range e.tengo {
		if t.Path == "" || cleanPath(t.Path) != want {
			continue
		}
		if err := t.Reload(); err != nil {
			e.log.Error("script reload failed", "path", path, "script", t.Name, "err", err)
			continue
		}
		e.log.Info("script reloaded", "path", path, "script", t.Name)
		n++
	}
	return n
}

func cleanPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
