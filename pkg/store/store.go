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

// Package store implements the namespaced persistent graph database:
// hash/set/sorted-set/scalar containers, project-scoped keys, atomic
// compound mutations, and an advisory single-writer lock. State lives in
// memory under an RWMutex and is snapshotted to disk on Flush.
package store

import (
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"

	cgerrors "github.com/kraklabs/codegraph/internal/errors"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9]`)

// sanitizeProject deterministically turns an absolute project root into a
// namespace component: non-alphanumerics become underscores.
func sanitizeProject(root string) string {
	return nonAlphanumeric.ReplaceAllString(root, "_")
}

// Config configures a Store.
type Config struct {
	// KeyPrefix is the "<app>" component of every key ("<app>:<project>:…").
	KeyPrefix string

	// DataDir, if non-empty, makes the store durable: state is loaded from
	// and snapshotted to "<DataDir>/<KeyPrefix>.snapshot" on Flush and Close.
	// Empty means memory-only (useful for tests).
	DataDir string
}

// Store is a namespaced graph database over primitive containers. All
// exported methods are safe for concurrent use.
type Store struct {
	cfg Config

	// ctxMu serializes project-context switches against operations that read
	// the current namespace, per design note 9 ("project context... switched
	// under a mutex"). It is held only long enough to snapshot s.project.
	ctxMu   sync.RWMutex
	project string

	// mu guards every container below. Held exclusively for mutations
	// (including the compound ones in edges.go) so readers never observe a
	// torn edge or half-removed symbol.
	mu sync.RWMutex

	strings    map[string]string
	hashes     map[string]map[string]string
	sets       map[string]map[string]struct{}
	sortedSets map[string]map[string]float64

	locks   map[string]lockEntry
	locksMu sync.Mutex
}

type lockEntry struct {
	token   string
	expires time.Time
}

// Open creates a Store, pinging the backend (here: validating/creating the
// data directory) and failing fast on the first round-trip. If cfg.DataDir
// is set and a prior snapshot exists, it is loaded.
func Open(cfg Config) (*Store, error) {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "codegraph"
	}

	s := &Store{
		cfg:        cfg,
		strings:    make(map[string]string),
		hashes:     make(map[string]map[string]string),
		sets:       make(map[string]map[string]struct{}),
		sortedSets: make(map[string]map[string]float64),
		locks:      make(map[string]lockEntry),
	}

	if cfg.DataDir != "" {
		if err := s.ensureDataDir(); err != nil {
			return nil, cgerrors.NewBackendUnreachable(
				"Cannot open the store data directory", err.Error(),
				fmt.Sprintf("Check that %s exists and is writable", cfg.DataDir), err)
		}
		if err := s.loadSnapshot(); err != nil {
			return nil, cgerrors.NewBackendUnreachable(
				"Cannot load the store snapshot", err.Error(),
				"Delete the snapshot file and re-run 'codegraph index' to rebuild it", err)
		}
	}

	return s, nil
}

// Close flushes a final snapshot (if durable) and releases resources.
func (s *Store) Close() error {
	if s.cfg.DataDir == "" {
		return nil
	}
	return s.saveSnapshot()
}

// SetProjectContext switches the store's active namespace to the sanitised
// form of root. It is the only method that takes ctxMu exclusively.
func (s *Store) SetProjectContext(root string) {
	s.ctxMu.Lock()
	defer s.ctxMu.Unlock()
	s.project = sanitizeProject(root)
}

// currentNamespace snapshots the active "<prefix>:<project>" namespace.
func (s *Store) currentNamespace() string {
	s.ctxMu.RLock()
	defer s.ctxMu.RUnlock()
	return fmt.Sprintf("%s:%s", s.cfg.KeyPrefix, s.project)
}

// key builds a fully namespaced key from the current project context.
func (s *Store) key(parts ...string) string {
	ns := s.currentNamespace()
	for _, p := range parts {
		ns += ":" + p
	}
	return ns
}

// AcquireLock attempts to take the named advisory lock for ttl. It returns
// whether acquisition succeeded and, on success, an opaque token that must be
// presented to ReleaseLock. This is set-if-absent-with-TTL semantics.
func (s *Store) AcquireLock(name string, ttl time.Duration) (token string, ok bool) {
	fullName := s.key("lock", name)

	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	if entry, exists := s.locks[fullName]; exists && time.Now().Before(entry.expires) {
		return "", false
	}

	token = uuid.NewString()
	s.locks[fullName] = lockEntry{token: token, expires: time.Now().Add(ttl)}
	return token, true
}

// ReleaseLock releases the named lock if token matches the current holder.
// Releasing a lock you no longer hold (e.g. after a crash-and-restart past
// the TTL) is a no-op, not an error.
func (s *Store) ReleaseLock(name, token string) {
	fullName := s.key("lock", name)

	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	if entry, exists := s.locks[fullName]; exists && entry.token == token {
		delete(s.locks, fullName)
	}
}
