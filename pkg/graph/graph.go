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

// Package graph implements the analytics layer: PageRank,
// shortest/critical paths, connected components, cycle detection,
// bottleneck/dead-code scoring, similarity, and impact analysis. Every
// operation reads from the Store on demand; nothing here caches adjacency.
package graph

import (
	"path/filepath"
	"strings"

	"github.com/kraklabs/codegraph/pkg/store"
	"github.com/kraklabs/codegraph/pkg/types"
)

// Graph runs analytics over a project-scoped Store.
type Graph struct {
	store *store.Store
}

// New creates a Graph bound to a project-scoped Store (the caller must have
// already called store.SetProjectContext).
func New(s *store.Store) *Graph {
	return &Graph{store: s}
}

// isEntryPointFile matches conventional program entry points.
func isEntryPointFile(path string) bool {
	base := filepath.Base(path)
	switch base {
	case "index.ts", "index.js", "index.py", "main.ts", "main.js", "main.py":
		return true
	}
	return strings.Contains(path, "/bin/") || strings.Contains(path, "/src/main/")
}

// kindMultiplier is the kind component of the PageRank seed weight.
func kindMultiplier(kind types.Kind) float64 {
	switch kind {
	case types.KindClass, types.KindInterface:
		return 1.2
	case types.KindFunction, types.KindMethod:
		return 1.1
	default:
		return 1.0
	}
}

// seedMultiplier combines the exported, entry-point, and kind factors.
func seedMultiplier(sym *types.Symbol) float64 {
	m := 1.0
	if sym.Exported {
		m *= 1.5
	}
	if isEntryPointFile(sym.FilePath) {
		m *= 2.0
	}
	m *= kindMultiplier(sym.Kind)
	return m
}

// adjacency is the in-memory view of deps:from edges over the symbol set,
// built once per analytics call store round-trips per node).
type adjacency struct {
	out map[string][]string // from -> [to]
	in  map[string][]string // to -> [from]
}

func (g *Graph) buildAdjacency(symbolIDs map[string]struct{}) adjacency {
	adj := adjacency{out: make(map[string][]string), in: make(map[string][]string)}
	for id := range symbolIDs {
		for _, to := range g.store.DepsFrom(id) {
			if _, ok := symbolIDs[to]; !ok {
				continue // ignore edges whose endpoints are not symbols
			}
			adj.out[id] = append(adj.out[id], to)
			adj.in[to] = append(adj.in[to], id)
		}
	}
	return adj
}

func (g *Graph) allSymbolSet() map[string]struct{} {
	ids := g.store.AllSymbolIDs()
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
