package canopy

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// captureLogger records every message with its level.
type captureLogger struct {
	mu    sync.Mutex
	lines []string
}

func (c *captureLogger) add(level, msg string, kv []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, fmt.Sprintf("%s %s %v", level, msg, kv))
}

func (c *captureLogger) Debug(msg string, kv ...any) { c.add("DEBUG", msg, kv) }
func (c *captureLogger) Info(msg string, kv ...any)  { c.add("INFO", msg, kv) }
func (c *captureLogger) Warn(msg string, kv ...any)  { c.add("WARN", msg, kv) }
func (c *captureLogger) Error(msg string, kv ...any) { c.add("ERROR", msg, kv) }

func (c *captureLogger) has(prefix string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.lines {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

func TestDefaultLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := newDefaultLogger(&buf, false)
	l.Debug("hidden")
	l.Info("shown", "k", 1)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug records should be dropped without debug mode")
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "k=1") || !strings.Contains(out, "lib=canopy") {
		t.Errorf("output = %q", out)
	}

	buf.Reset()
	newDefaultLogger(&buf, true).Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Error("debug records should be written in debug mode")
	}
}

func TestNewSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	l.Warn("careful", "object", "hero")
	if !strings.Contains(buf.String(), `"object":"hero"`) {
		t.Errorf("output = %q", buf.String())
	}
}

func TestDebugModeLogsFrameStats(t *testing.T) {
	log := &captureLogger{}
	e := readyEngine(t, nil)
	e.SetLogger(log)
	e.SetDebugMode(true)

	_ = e.Update(1)
	_ = e.Draw(1)
	if !log.has("DEBUG frame") || !log.has("DEBUG draw") {
		t.Errorf("lines = %v", log.lines)
	}

	log.lines = nil
	e.SetDebugMode(false)
	_ = e.Draw(1)
	if len(log.lines) != 0 {
		t.Errorf("no frame logs expected outside debug mode, got %v", log.lines)
	}
}

func TestSetDebugModeRaisesDefaultLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	e := readyEngine(t, nil)
	e.SetLogger(newDefaultLogger(&buf, false))

	e.SetDebugMode(true)
	_ = e.Update(1)
	_ = e.Draw(1)
	if !strings.Contains(buf.String(), "msg=frame") || !strings.Contains(buf.String(), "msg=draw") {
		t.Fatalf("debug mode should log frame stats, got %q", buf.String())
	}

	buf.Reset()
	e.SetDebugMode(false)
	e.Logger().Debug("quiet")
	if buf.Len() != 0 {
		t.Errorf("leaving debug mode should drop debug records, got %q", buf.String())
	}
}

func TestStatsTimingsOnlyInDebug(t *testing.T) {
	e := readyEngine(t, nil)
	g := e.NewGameObject("g")
	g.Texture = testTexture(4, 4)
	_ = e.Update(1)
	_ = e.Draw(1)
	s := e.Stats()
	if s.Total() != 0 {
		t.Errorf("Total = %v, want 0 outside debug mode", s.Total())
	}
	if s.Commands != 1 || s.Scene != 1 {
		t.Errorf("stats = %+v", s)
	}
	// Main camera plus the game object.
	if s.Objects != 2 {
		t.Errorf("Objects = %d, want 2", s.Objects)
	}
}

func TestDebugTreeDepthWarning(t *testing.T) {
	log := &captureLogger{}
	e := newTestEngine(t, 1)
	e.SetLogger(log)
	e.SetDebugMode(true)

	prev := e.NewGameObject("root")
	for i := 0; i < debugMaxTreeDepth+1; i++ {
		g := e.NewGameObject("link")
		_ = g.SetParent(prev)
		prev = g
	}
	if !log.has("WARN tree depth exceeds threshold") {
		t.Error("expected a tree depth warning")
	}
}

func TestDebugChildCountWarning(t *testing.T) {
	log := &captureLogger{}
	e := newTestEngine(t, 1)
	e.SetLogger(log)
	e.SetDebugMode(true)

	p := e.NewGameObject("crowd")
	for i := 0; i < debugMaxChildCount+1; i++ {
		_ = e.NewGameObject("member").SetParent(p)
	}
	if !log.has("WARN child count exceeds threshold") {
		t.Error("expected a child count warning")
	}
}

func TestTengoRuntimeErrorLogged(t *testing.T) {
	log := &captureLogger{}
	e := readyEngine(t, nil)
	e.SetLogger(log)
	g := e.NewGameObject("g")
	s, err := NewTengoScript("broken", []byte(`update := func(self, dt) { self.set_scale(-1, -1) }`))
	if err != nil {
		t.Fatal(err)
	}
	_ = g.AddScript(s)
	_ = e.Update(1)
	if !log.has("ERROR tengo script disabled") {
		t.Errorf("lines = %v", log.lines)
	}
}
