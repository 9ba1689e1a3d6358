package canopy

import (
	"errors"
	"testing"
)

// traceScript appends "<name>:<hook>" to a shared log for every hook.
type traceScript struct {
	ScriptBase
	log *[]string
}

func newTraceScript(name string, log *[]string) *traceScript {
	return &traceScript{ScriptBase: NewScriptBase(name), log: log}
}

func (s *traceScript) Initialize()        { *s.log = append(*s.log, s.Name+":init") }
func (s *traceScript) Update(float64)     { *s.log = append(*s.log, s.Name+":update") }
func (s *traceScript) DrawUpdate(float64) { *s.log = append(*s.log, s.Name+":draw") }
func (s *traceScript) Destroy() {
	if !s.Destroyed() {
		*s.log = append(*s.log, s.Name+":destroy")
	}
	s.ScriptBase.Destroy()
}

func TestScriptsRunBeforeHost(t *testing.T) {
	var log []string
	e := readyEngine(t, nil)
	g := e.NewGameObject("host")
	g.OnUpdate = func(float64) { log = append(log, "host:update") }
	if err := g.AddScript(newTraceScript("s1", &log)); err != nil {
		t.Fatal(err)
	}
	if err := g.AddScript(newTraceScript("s2", &log)); err != nil {
		t.Fatal(err)
	}
	log = nil

	if err := e.Update(1); err != nil {
		t.Fatal(err)
	}
	assertNames(t, log, "s1:update", "s2:update", "host:update")
}

func TestScriptUpdateOrder(t *testing.T) {
	var log []string
	e := readyEngine(t, nil)
	g := e.NewGameObject("host")
	late := newTraceScript("late", &log)
	late.SetUpdateOrder(1)
	_ = g.AddScript(late)
	_ = g.AddScript(newTraceScript("early", &log))
	log = nil

	_ = e.Update(1)
	assertNames(t, log, "early:update", "late:update")
}

func TestAddScriptInitializesOnInitializedHost(t *testing.T) {
	var log []string
	e := readyEngine(t, nil)
	g := e.NewGameObject("host")
	s := newTraceScript("s", &log)
	_ = g.AddScript(s)
	assertNames(t, log, "s:init")
	if !s.Initialized() {
		t.Error("script should be initialized")
	}
}

func TestAddScriptWaitsForHostInitialize(t *testing.T) {
	var log []string
	e := newTestEngine(t, 1)
	g := e.NewGameObject("host")
	_ = g.AddScript(newTraceScript("s", &log))
	if len(log) != 0 {
		t.Fatalf("script initialized before engine: %v", log)
	}
	_ = e.Initialize()
	assertNames(t, log, "s:init")
}

func TestAddScriptErrors(t *testing.T) {
	var log []string
	e := readyEngine(t, nil)
	a := e.NewGameObject("a")
	b := e.NewGameObject("b")
	s := newTraceScript("s", &log)

	if err := a.AddScript(s); err != nil {
		t.Fatal(err)
	}
	if err := a.AddScript(s); err != nil {
		t.Errorf("re-adding to the same host should be a no-op, got %v", err)
	}
	if err := b.AddScript(s); !errors.Is(err, ErrAlreadyAttached) {
		t.Errorf("AddScript to second host = %v, want ErrAlreadyAttached", err)
	}

	dead := newTraceScript("dead", &log)
	dead.Destroy()
	if err := a.AddScript(dead); !errors.Is(err, ErrDestroyed) {
		t.Errorf("AddScript(destroyed) = %v, want ErrDestroyed", err)
	}

	b.Destroy()
	if err := b.AddScript(newTraceScript("x", &log)); !errors.Is(err, ErrDestroyed) {
		t.Errorf("AddScript on destroyed host = %v, want ErrDestroyed", err)
	}
}

func TestRemoveScriptDestroysIt(t *testing.T) {
	var log []string
	e := readyEngine(t, nil)
	g := e.NewGameObject("host")
	s := newTraceScript("s", &log)
	_ = g.AddScript(s)

	g.RemoveScript(s)
	if !s.Destroyed() || s.Host() != nil {
		t.Error("removed script should be destroyed and detached")
	}
	if g.NumScripts() != 0 {
		t.Errorf("NumScripts = %d, want 0", g.NumScripts())
	}
}

func TestInactiveScriptSkipped(t *testing.T) {
	var log []string
	e := readyEngine(t, nil)
	g := e.NewGameObject("host")
	s := newTraceScript("s", &log)
	_ = g.AddScript(s)
	s.SetActive(false)
	log = nil

	_ = e.Update(1)
	if len(log) != 0 {
		t.Errorf("inactive script ran: %v", log)
	}
}

func TestInactiveHostSkipsScripts(t *testing.T) {
	var log []string
	e := readyEngine(t, nil)
	g := e.NewGameObject("host")
	_ = g.AddScript(newTraceScript("s", &log))
	g.SetActive(false)
	log = nil

	_ = e.Update(1)
	_ = e.Draw(1)
	if len(log) != 0 {
		t.Errorf("scripts of an inactive host ran: %v", log)
	}
}

func TestHostDestroyCascadesToScripts(t *testing.T) {
	var log []string
	e := readyEngine(t, nil)
	g := e.NewGameObject("host")
	g.OnDestroy = func() { log = append(log, "host:destroy") }
	s1 := newTraceScript("s1", &log)
	s2 := newTraceScript("s2", &log)
	_ = g.AddScript(s1)
	_ = g.AddScript(s2)
	log = nil

	g.Destroy()
	assertNames(t, log, "s1:destroy", "s2:destroy", "host:destroy")
	if s1.Host() != nil || s2.Host() != nil {
		t.Error("destroyed scripts should have no host")
	}
}

func TestScriptDestroysHostDuringUpdate(t *testing.T) {
	e := readyEngine(t, nil)
	g := e.NewGameObject("host")
	hostRan := false
	g.OnUpdate = func(float64) { hostRan = true }
	killer := &killerScript{ScriptBase: NewScriptBase("kill")}
	_ = g.AddScript(killer)

	if err := e.Update(1); err != nil {
		t.Fatal(err)
	}
	if !g.Destroyed() {
		t.Fatal("host should be destroyed")
	}
	if hostRan {
		t.Error("destroyed host should not run its own update")
	}
	if e.FindGameObject("host") != nil {
		t.Error("destroyed host should be unregistered")
	}
	if err := killer.DestroyHost(); !errors.Is(err, ErrDetached) {
		t.Errorf("DestroyHost after destroy = %v, want ErrDetached", err)
	}
}

type killerScript struct{ ScriptBase }

func (k *killerScript) Update(float64) { _ = k.DestroyHost() }

func TestScriptBaseAccessors(t *testing.T) {
	e := readyEngine(t, nil)
	g := e.NewGameObject("host")
	s := &killerScript{ScriptBase: NewScriptBase("s")}

	if s.GameObject() != nil || s.Engine() != nil {
		t.Error("detached script should have no host or engine")
	}
	if _, err := s.Instantiate("x"); !errors.Is(err, ErrDetached) {
		t.Errorf("Instantiate while detached = %v, want ErrDetached", err)
	}

	_ = g.AddScript(s)
	if s.GameObject() != g {
		t.Error("GameObject should return the host")
	}
	if s.Engine() != e {
		t.Error("Engine should return the host engine")
	}
	spawned, err := s.Instantiate("spawned")
	if err != nil {
		t.Fatal(err)
	}
	if e.FindGameObject("spawned") != spawned {
		t.Error("instantiated object should be registered")
	}
}

func TestFindScript(t *testing.T) {
	var log []string
	e := readyEngine(t, nil)
	g := e.NewGameObject("host")
	tr := newTraceScript("trace", &log)
	_ = g.AddScript(tr)

	got, ok := FindScript[*traceScript](&g.Scriptable)
	if !ok || got != tr {
		t.Error("FindScript should return the trace script")
	}
	if _, ok := FindScript[*killerScript](&g.Scriptable); ok {
		t.Error("FindScript should not find an absent type")
	}
}

func TestCameraHostsScripts(t *testing.T) {
	var log []string
	e := readyEngine(t, nil)
	s := newTraceScript("cam", &log)
	if err := e.Camera().AddScript(s); err != nil {
		t.Fatal(err)
	}
	_ = e.Update(1)
	if s.GameObject() != nil {
		t.Error("camera-hosted script should not report a game object")
	}
	assertNames(t, log, "cam:init", "cam:update")
}
