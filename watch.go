package canopy

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce is how long a file must stay quiet before its change is
// reported. Saving a file usually produces several events (truncate, write).
const reloadDebounce = 100 * time.Millisecond

// ScriptWatcher reports changed .tengo files in a set of directories.
// Events are delivered on a buffered channel from a background goroutine;
// the engine drains it without blocking at the start of each Update.
type ScriptWatcher struct {
	watcher *fsnotify.Watcher
	events  chan string
	errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewScriptWatcher watches dirs for script changes.
func NewScriptWatcher(dirs ...string) (*ScriptWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("canopy: create script watcher: %w", err)
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("canopy: watch %s: %w", dir, err)
		}
	}

	sw := &ScriptWatcher{
		watcher: w,
		events:  make(chan string, 16),
		errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go sw.run()
	return sw, nil
}

// Events delivers the paths of changed script files. It is closed after Close.
func (w *ScriptWatcher) Events() <-chan string { return w.events }

// Errors delivers watcher errors. It is closed after Close.
func (w *ScriptWatcher) Errors() <-chan error { return w.errors }

// Close stops the watcher and waits for the background goroutine to exit.
func (w *ScriptWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *ScriptWatcher) run() {
	defer func() {
		close(w.events)
		close(w.errors)
		close(w.done)
	}()
	pending := make(map[string]time.Time)
	tick := time.NewTicker(reloadDebounce / 2)
	defer tick.Stop()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !isScriptFile(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()
		case now := <-tick.C:
			for name, at := range pending {
				if now.Sub(at) < reloadDebounce {
					continue
				}
				delete(pending, name)
				select {
				case w.events <- name:
				case <-w.closeCh:
					return
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				// Drop: an error is already pending.
			}
		case <-w.closeCh:
			return
		}
	}
}

func isScriptFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".tengo"
}

// WatchScripts starts hot reload for .tengo files under dirs. Changed files
// are recompiled at the start of the next Update.
func (e *Engine) WatchScripts(dirs ...string) error {
	if e.watcher != nil {
		if err := e.watcher.Close(); err != nil {
			e.log.Warn("close previous script watcher", "err", err)
		}
	}
	w, err := NewScriptWatcher(dirs...)
	if err != nil {
		return err
	}
	e.watcher = w
	e.log.Info("watching scripts", "dirs", dirs)
	return nil
}

// applyReloads drains pending watcher events without blocking.
func (e *Engine) applyReloads() {
	if e.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-e.watcher.events:
			if !ok {
				return
			}
			e.ReloadScript(path)
		case err, ok := <-e.watcher.errors:
			if !ok {
				return
			}
			e.log.Warn("script watcher error", "err", err)
		default:
			return
		}
	}
}
