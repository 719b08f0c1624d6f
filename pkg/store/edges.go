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

import (
	"encoding/json"

	"github.com/kraklabs/codegraph/pkg/types"
)

// AddEdge atomically writes the edge:from:<f>:to:<t> record, plus reverse
// membership in both deps sets.
func (s *Store) AddEdge(edge types.Edge) error {
	ns := s.currentNamespace()

	fields := map[string]string{"type": string(edge.Type)}
	if edge.Location != nil {
		b, _ := json.Marshal(edge.Location)
		fields["location"] = string(b)
	}

	s.mu.Lock()
	s.hashes[ns+":"+edgeKey(edge.From, edge.To)] = fields
	s.addSet(ns+":deps:from:"+edge.From, edge.To)
	s.addSet(ns+":deps:to:"+edge.To, edge.From)
	s.mu.Unlock()

	return s.maybeFlush()
}

// GetEdge returns the (type, location) record for an edge, or nil.
func (s *Store) GetEdge(from, to string) *types.Edge {
	ns := s.currentNamespace()

	s.mu.RLock()
	h, ok := s.hashes[ns+":"+edgeKey(from, to)]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	e := &types.Edge{From: from, To: to, Type: types.EdgeType(h["type"])}
	if loc, ok := h["location"]; ok && loc != "" {
		var l types.Location
		if json.Unmarshal([]byte(loc), &l) == nil {
			e.Location = &l
		}
	}
	return e
}

// DepsFrom returns the IDs that `id` depends on (edges where id is `from`).
func (s *Store) DepsFrom(id string) []string {
	return s.SetMembers("deps:from:" + id)
}

// DepsTo returns the IDs that depend on `id` (edges where id is `to`).
func (s *Store) DepsTo(id string) []string {
	return s.SetMembers("deps:to:" + id)
}
