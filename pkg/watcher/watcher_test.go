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

package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codegraph/pkg/scanner"
)

type eventRecorder struct {
	mu      sync.Mutex
	events  []Event
	batches [][]Event
}

func (r *eventRecorder) onEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) onBatch(es []Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, es)
}

func (r *eventRecorder) snapshot() ([]Event, [][]Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...), append([][]Event(nil), r.batches...)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached within timeout")
}

func TestWatcherDebouncesBurstsIntoOneEvent(t *testing.T) {
	root := t.TempDir()
	rec := &eventRecorder{}

	w, err := New(Config{DebounceMs: 50}, scanner.Config{}, root, rec.onEvent, rec.onBatch, nil)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	path := filepath.Join(root, "a.go")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("package a\n"), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	waitFor(t, 2*time.Second, func() bool {
		events, _ := rec.snapshot()
		return len(events) > 0
	})

	events, _ := rec.snapshot()
	require.Len(t, events, 1, "a burst of writes to one path must collapse into one event")
	assert.Equal(t, "a.go", events[0].Path)
}

func TestWatcherIgnoresExcludedPaths(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules"), 0o755))
	rec := &eventRecorder{}

	w, err := New(Config{DebounceMs: 30}, scanner.Config{Exclude: []string{"node_modules/**", "node_modules"}}, root, rec.onEvent, nil, nil)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "dep.js"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "kept.go"), []byte("package kept\n"), 0o644))

	waitFor(t, 2*time.Second, func() bool {
		events, _ := rec.snapshot()
		return len(events) > 0
	})

	events, _ := rec.snapshot()
	for _, e := range events {
		assert.NotContains(t, e.Path, "node_modules")
	}
}

func TestWatcherReportsDeletes(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "gone.go")
	require.NoError(t, os.WriteFile(path, []byte("package gone\n"), 0o644))
	rec := &eventRecorder{}

	w, err := New(Config{DebounceMs: 30}, scanner.Config{}, root, rec.onEvent, nil, nil)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.Remove(path))

	waitFor(t, 2*time.Second, func() bool {
		events, _ := rec.snapshot()
		for _, e := range events {
			if e.Path == "gone.go" && e.Type == EventDelete {
				return true
			}
		}
		return false
	})
}

func TestWatcherBatchCoalescesAcrossPaths(t *testing.T) {
	root := t.TempDir()
	rec := &eventRecorder{}

	w, err := New(Config{DebounceMs: 40}, scanner.Config{}, root, nil, rec.onBatch, nil)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(root, "x.go"), []byte("package x\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "y.go"), []byte("package y\n"), 0o644))

	waitFor(t, 3*time.Second, func() bool {
		_, batches := rec.snapshot()
		return len(batches) > 0
	})

	_, batches := rec.snapshot()
	seen := map[string]bool{}
	for _, b := range batches {
		for _, e := range b {
			seen[e.Path] = true
		}
	}
	assert.True(t, seen["x.go"])
	assert.True(t, seen["y.go"])
}
