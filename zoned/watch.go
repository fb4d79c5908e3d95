/*
 * Copyright (c) 2024 Johan Stenstam, johani@johani.org
 */
package zoned

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ZoneFileWatcher debounces filesystem change notifications for the
// zone-list file into a single reload callback, so a burst of writes
// during a file save triggers one reconciliation pass rather than many.
// Grounded on user00265-rbldnsd/server/server.go's
// initFileWatcher/watchFiles/scheduleReload trio.
type ZoneFileWatcher struct {
	watcher  *fsnotify.Watcher
	reload   func()
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewZoneFileWatcher watches path and calls reload, debounced by
// debounceMs (2000ms if zero or negative, matching rbldnsd's default).
func NewZoneFileWatcher(path string, debounceMs int, reload func()) (*ZoneFileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("NewZoneFileWatcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("NewZoneFileWatcher: watch %s: %w", path, err)
	}

	if debounceMs <= 0 {
		debounceMs = 2000
	}

	w := &ZoneFileWatcher{
		watcher:  watcher,
		reload:   reload,
		debounce: time.Duration(debounceMs) * time.Millisecond,
	}
	go w.run()

	log.Printf("ZoneFileWatcher: watching %s (debounce %v)", path, w.debounce)
	return w, nil
}

func (w *ZoneFileWatcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				log.Printf("ZoneFileWatcher: %s changed (%v)", event.Name, event.Op)
				w.scheduleReload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("ZoneFileWatcher: error: %v", err)
		}
	}
}

func (w *ZoneFileWatcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *ZoneFileWatcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
