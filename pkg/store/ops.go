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

package store

import "sort"

// --- scalar key/value -------------------------------------------------------

// SetString sets a project-scoped scalar value (root, indexed_at, stats, …).
func (s *Store) SetString(key, value string) error {
	full := s.key(key)

	s.mu.Lock()
	s.strings[full] = value
	s.mu.Unlock()

	return s.maybeFlush()
}

// GetString returns a project-scoped scalar value and whether it was present.
func (s *Store) GetString(key string) (string, bool) {
	full := s.key(key)

	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.strings[full]
	return v, ok
}

// --- hash --------------------------------------------------------------

// HashSet writes fields into the hash at key, creating it if absent.
func (s *Store) HashSet(key string, fields map[string]string) error {
	full := s.key(key)

	s.mu.Lock()
	h, ok := s.hashes[full]
	if !ok {
		h = make(map[string]string, len(fields))
		s.hashes[full] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	s.mu.Unlock()

	return s.maybeFlush()
}

// HashGet returns the hash stored at key, or nil if absent. The returned map
// is a copy; mutating it does not affect the store.
func (s *Store) HashGet(key string) map[string]string {
	full := s.key(key)

	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.hashes[full]
	if !ok {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// HashDelete removes the hash at key entirely.
func (s *Store) HashDelete(key string) error {
	full := s.key(key)

	s.mu.Lock()
	delete(s.hashes, full)
	s.mu.Unlock()

	return s.maybeFlush()
}

// --- set -----------------------------------------------------------------

// SetAdd adds members to the set at key.
func (s *Store) SetAdd(key string, members ...string) error {
	full := s.key(key)

	s.mu.Lock()
	set, ok := s.sets[full]
	if !ok {
		set = make(map[string]struct{}, len(members))
		s.sets[full] = set
	}
	for _, m := range members {
		set[m] = struct{}{}
	}
	s.mu.Unlock()

	return s.maybeFlush()
}

// SetRemove removes members from the set at key. An empty resulting set is
// kept (not pruned) so repeated removals stay idempotent; callers that care
// about emptiness use SetMembers's length.
func (s *Store) SetRemove(key string, members ...string) error {
	full := s.key(key)

	s.mu.Lock()
	if set, ok := s.sets[full]; ok {
		for _, m := range members {
			delete(set, m)
		}
	}
	s.mu.Unlock()

	return s.maybeFlush()
}

// SetMembers returns the (unordered) members of the set at key.
func (s *Store) SetMembers(key string) []string {
	full := s.key(key)

	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.sets[full]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	return out
}

// --- sorted set ------------------------------------------------------------

// SortedSetEntry is one (member, score) pair of a sorted set, used for
// ordered retrieval (e.g. PageRank leaderboards).
type SortedSetEntry struct {
	Member string
	Score  float64
}

// SortedSetSet writes a single member's score, creating the set if absent.
func (s *Store) SortedSetSet(key, member string, score float64) error {
	full := s.key(key)

	s.mu.Lock()
	zs, ok := s.sortedSets[full]
	if !ok {
		zs = make(map[string]float64)
		s.sortedSets[full] = zs
	}
	zs[member] = score
	s.mu.Unlock()

	return s.maybeFlush()
}

// SortedSetRemove removes a member from the sorted set at key.
func (s *Store) SortedSetRemove(key, member string) error {
	full := s.key(key)

	s.mu.Lock()
	if zs, ok := s.sortedSets[full]; ok {
		delete(zs, member)
	}
	s.mu.Unlock()

	return s.maybeFlush()
}

// SortedSetScore returns a member's score and whether it is present.
func (s *Store) SortedSetScore(key, member string) (float64, bool) {
	full := s.key(key)

	s.mu.RLock()
	defer s.mu.RUnlock()

	zs, ok := s.sortedSets[full]
	if !ok {
		return 0, false
	}
	score, ok := zs[member]
	return score, ok
}

// SortedSetTopN returns the topN highest-scored members, descending.
// topN <= 0 returns every member.
func (s *Store) SortedSetTopN(key string, topN int) []SortedSetEntry {
	full := s.key(key)

	s.mu.RLock()
	zs, ok := s.sortedSets[full]
	var entries []SortedSetEntry
	if ok {
		entries = make([]SortedSetEntry, 0, len(zs))
		for m, sc := range zs {
			entries = append(entries, SortedSetEntry{Member: m, Score: sc})
		}
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Member < entries[j].Member
	})

	if topN > 0 && topN < len(entries) {
		entries = entries[:topN]
	}
	return entries
}

// SortedSetClear removes every member of the sorted set at key.
func (s *Store) SortedSetClear(key string) error {
	full := s.key(key)

	s.mu.Lock()
	delete(s.sortedSets, full)
	s.mu.Unlock()

	return s.maybeFlush()
}
