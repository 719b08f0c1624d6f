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

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codegraph/pkg/store"
	"github.com/kraklabs/codegraph/pkg/types"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(store.Config{KeyPrefix: "test"})
	require.NoError(t, err)
	s.SetProjectContext("/proj")
	return s
}

func putSym(t *testing.T, s *store.Store, id, name string, kind types.Kind, exported bool) {
	t.Helper()
	require.NoError(t, s.PutSymbol(&types.Symbol{ID: id, Name: name, Kind: kind, FilePath: "/proj/a.go", Exported: exported}))
}

func TestComputePageRankSumsToOneAndFavorsHub(t *testing.T) {
	s := newTestStore(t)
	putSym(t, s, "a", "A", types.KindFunction, true)
	putSym(t, s, "b", "B", types.KindFunction, false)
	putSym(t, s, "c", "C", types.KindFunction, false)
	require.NoError(t, s.AddEdge(types.Edge{From: "a", To: "b", Type: types.EdgeCalls}))
	require.NoError(t, s.AddEdge(types.Edge{From: "c", To: "b", Type: types.EdgeCalls}))

	g := New(s)
	require.NoError(t, g.ComputePageRank(DefaultPageRankConfig()))

	total := g.PageRank("a") + g.PageRank("b") + g.PageRank("c")
	assert.InDelta(t, 1.0, total, 1e-6)
	assert.Greater(t, g.PageRank("b"), g.PageRank("a"), "b receives two inbound edges and should outrank a")
}

func TestFindPathOrdersByEdgeTypePriority(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddEdge(types.Edge{From: "a", To: "b", Type: types.EdgeUses}))
	require.NoError(t, s.AddEdge(types.Edge{From: "b", To: "c", Type: types.EdgeCalls}))

	g := New(s)
	path := g.FindPath("a", "c")
	assert.Equal(t, []string{"a", "b", "c"}, path.Nodes)
	assert.Equal(t, 2, path.Distance)

	// Two equal-length routes p->q->z (uses) and p->r->z (imports): the
	// imports neighbour expands first, so its route wins.
	require.NoError(t, s.AddEdge(types.Edge{From: "p", To: "q", Type: types.EdgeUses}))
	require.NoError(t, s.AddEdge(types.Edge{From: "p", To: "r", Type: types.EdgeImports}))
	require.NoError(t, s.AddEdge(types.Edge{From: "q", To: "z", Type: types.EdgeCalls}))
	require.NoError(t, s.AddEdge(types.Edge{From: "r", To: "z", Type: types.EdgeCalls}))
	assert.Equal(t, []string{"p", "r", "z"}, g.FindPath("p", "z").Nodes)
}

func TestFindPathUnreachableReturnsEmpty(t *testing.T) {
	s := newTestStore(t)
	g := New(s)
	path := g.FindPath("a", "z")
	assert.Nil(t, path.Nodes)
}

func TestFindCyclesDetectsBackEdge(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddEdge(types.Edge{From: "a", To: "b", Type: types.EdgeCalls}))
	require.NoError(t, s.AddEdge(types.Edge{From: "b", To: "c", Type: types.EdgeCalls}))
	require.NoError(t, s.AddEdge(types.Edge{From: "c", To: "a", Type: types.EdgeCalls}))
	putSym(t, s, "a", "A", types.KindFunction, true)
	putSym(t, s, "b", "B", types.KindFunction, true)
	putSym(t, s, "c", "C", types.KindFunction, true)

	g := New(s)
	cycles := g.FindCycles()
	require.Len(t, cycles, 1)
	assert.Contains(t, cycles[0], "a")
	assert.Contains(t, cycles[0], "b")
	assert.Contains(t, cycles[0], "c")
}

func TestFindBottlenecksScoresHighFanInOut(t *testing.T) {
	s := newTestStore(t)
	for _, from := range []string{"x1", "x2", "x3", "x4", "x5"} {
		require.NoError(t, s.AddEdge(types.Edge{From: from, To: "hub", Type: types.EdgeCalls}))
	}
	for _, to := range []string{"y1", "y2", "y3", "y4", "y5"} {
		require.NoError(t, s.AddEdge(types.Edge{From: "hub", To: to, Type: types.EdgeCalls}))
	}
	putSym(t, s, "hub", "Hub", types.KindFunction, true)

	g := New(s)
	bottlenecks := g.FindBottlenecks()
	require.NotEmpty(t, bottlenecks)
	assert.Equal(t, "hub", bottlenecks[0].SymbolID)
	assert.Greater(t, bottlenecks[0].Score, 4.0)
}

func TestFindDeadCodeExcludesExportedAndDependedOn(t *testing.T) {
	s := newTestStore(t)
	putSym(t, s, "dead", "dead", types.KindFunction, false)
	putSym(t, s, "live", "live", types.KindFunction, false)
	putSym(t, s, "pub", "Pub", types.KindFunction, true)
	require.NoError(t, s.AddEdge(types.Edge{From: "caller", To: "live", Type: types.EdgeCalls}))

	g := New(s)
	dead := g.FindDeadCode()
	assert.Contains(t, dead, "dead")
	assert.NotContains(t, dead, "live", "live has a dependent and must not be flagged dead")
	assert.NotContains(t, dead, "pub", "exported symbols must not be flagged dead")
}

func TestFindSimilarRanksNameAndKindMatches(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.PutSymbol(&types.Symbol{ID: "t1", Name: "UserService", Kind: types.KindClass, Language: "go", FilePath: "/proj/a.go"}))
	require.NoError(t, s.PutSymbol(&types.Symbol{ID: "t2", Name: "UserServiceImpl", Kind: types.KindClass, Language: "go", FilePath: "/proj/b.go"}))
	require.NoError(t, s.PutSymbol(&types.Symbol{ID: "t3", Name: "Unrelated", Kind: types.KindVariable, Language: "python", FilePath: "/proj/c.py"}))

	g := New(s)
	matches := g.FindSimilar("t1", 5)

	var sawT2 bool
	for _, m := range matches {
		if m.SymbolID == "t2" {
			sawT2 = true
		}
		assert.NotEqual(t, "t3", m.SymbolID)
	}
	assert.True(t, sawT2)
}

func TestAnalyzeImpactBucketsAndOrdersTopologically(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.PutSymbol(&types.Symbol{ID: "core", Name: "core", FilePath: "/proj/core.go", Exported: true}))
	require.NoError(t, s.PutSymbol(&types.Symbol{ID: "mid", Name: "mid", FilePath: "/proj/mid.go"}))
	require.NoError(t, s.PutSymbol(&types.Symbol{ID: "leaf", Name: "leaf", FilePath: "/proj/leaf.go"}))
	require.NoError(t, s.AddEdge(types.Edge{From: "mid", To: "core", Type: types.EdgeCalls}))
	require.NoError(t, s.AddEdge(types.Edge{From: "leaf", To: "mid", Type: types.EdgeCalls}))

	g := New(s)
	result := g.AnalyzeImpact([]string{"core"})

	assert.Contains(t, result.DirectlyAffected, "mid")
	assert.Contains(t, result.TransitivelyAffected, "leaf")
	assert.Equal(t, []string{"mid", "leaf"}, result.SuggestedOrder)
	assert.Equal(t, 2, result.ImpactSummary.TotalAffected)
}
