// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package watcher observes a project tree for filesystem changes, applying
// the same include/exclude globs as the Scanner, and feeds debounced and
// batched events to the Indexer.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/kraklabs/codegraph/pkg/scanner"
)

// EventType classifies one filesystem change.
type EventType string

const (
	EventAdd    EventType = "add"
	EventChange EventType = "change"
	EventDelete EventType = "delete"
)

// Event is one filesystem change, with Path relative to the watched root.
type Event struct {
	Path string
	Type EventType
}

// Config tunes debounce timing.
type Config struct {
	DebounceMs int
}

// DefaultConfig returns the standard debounce tuning.
func DefaultConfig() Config {
	return Config{DebounceMs: 500}
}

// Watcher observes root for add/change/delete events, respecting
// scannerCfg's include/exclude globs, debouncing per path and re-emitting
// a coalesced batch roughly every 2x the debounce window.
type Watcher struct {
	cfg        Config
	scannerCfg scanner.Config
	root       string
	logger     *slog.Logger

	fsw     *fsnotify.Watcher
	onEvent func(Event)
	onBatch func([]Event)

	mu         sync.Mutex
	timers     map[string]*time.Timer
	pending    map[string]Event
	batchTimer *time.Timer
}

// New creates a Watcher for root. onEvent fires once per debounced path
// change; onBatch fires on the coalescing timer with everything collected
// since the last batch. Either callback may be nil.
func New(cfg Config, scannerCfg scanner.Config, root string, onEvent func(Event), onBatch func([]Event), logger *slog.Logger) (*Watcher, error) {
	if cfg.DebounceMs <= 0 {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		cfg:        cfg,
		scannerCfg: scannerCfg,
		root:       root,
		logger:     logger,
		fsw:        fsw,
		onEvent:    onEvent,
		onBatch:    onBatch,
		timers:     make(map[string]*time.Timer),
		pending:    make(map[string]Event),
	}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// addTree walks root, registering a watch on every directory not excluded
// by scannerCfg.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if rel != "." && w.excluded(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) excluded(rel string) bool {
	for _, pat := range w.scannerCfg.Exclude {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}

// Run processes fsnotify events until ctx is done. Call in its own
// goroutine; Close (or ctx cancellation) stops it.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFsEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher.fsnotify.error", "err", err)
		}
	}
}

func (w *Watcher) handleFsEvent(ev fsnotify.Event) {
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if w.excluded(rel) {
		return
	}

	if ev.Op&fsnotify.Create != 0 {
		if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
			_ = w.addTree(ev.Name)
			return
		}
	}

	var typ EventType
	switch {
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		typ = EventDelete
	case ev.Op&fsnotify.Create != 0:
		typ = EventAdd
	case ev.Op&fsnotify.Write != 0:
		typ = EventChange
	default:
		return
	}

	w.debounce(Event{Path: rel, Type: typ})
}

// debounce restarts a per-path timer so bursts of writes to the same file
// collapse into a single event.
func (w *Watcher) debounce(e Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[e.Path]; ok {
		t.Stop()
	}
	w.timers[e.Path] = time.AfterFunc(time.Duration(w.cfg.DebounceMs)*time.Millisecond, func() {
		w.fire(e)
	})
}

func (w *Watcher) fire(e Event) {
	if w.onEvent != nil {
		w.onEvent(e)
	}

	w.mu.Lock()
	delete(w.timers, e.Path)
	w.pending[e.Path] = e
	if w.batchTimer == nil {
		w.batchTimer = time.AfterFunc(2*time.Duration(w.cfg.DebounceMs)*time.Millisecond, w.flushBatch)
	}
	w.mu.Unlock()
}

// flushBatch coalesces everything collected since the last flush into one
// onBatch call.
func (w *Watcher) flushBatch() {
	w.mu.Lock()
	events := make([]Event, 0, len(w.pending))
	for _, e := range w.pending {
		events = append(events, e)
	}
	w.pending = make(map[string]Event)
	w.batchTimer = nil
	w.mu.Unlock()

	if w.onBatch != nil && len(events) > 0 {
		w.onBatch(events)
	}
}

// Close stops watching and releases the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	for _, t := range w.timers {
		t.Stop()
	}
	if w.batchTimer != nil {
		w.batchTimer.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}
