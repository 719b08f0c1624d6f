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

package resolver

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

func sym(id, name, file string, line int, parent string, exported bool) types.Symbol {
	return types.Symbol{
		ID: id, Name: name, FilePath: file, Parent: parent, Exported: exported,
		Location: types.Location{Start: types.Position{Line: line}},
	}
}

func TestResolveImportsEmitsSymbolToSymbolEdges(t *testing.T) {
	s := newTestStore(t)
	target := sym("/proj/b.go:Thing:3", "Thing", "/proj/b.go", 3, "", true)
	require.NoError(t, s.PutSymbol(&target))

	from := sym("/proj/a.go:Caller:1", "Caller", "/proj/a.go", 1, "", true)

	r := New(s)
	imports := []types.Edge{{From: "/proj/a.go", To: "./b", Type: types.EdgeImports}}
	edges := r.resolveImports([]types.Symbol{from}, imports)

	require.Len(t, edges, 1)
	assert.Equal(t, from.ID, edges[0].From)
	assert.Equal(t, target.ID, edges[0].To)
	assert.Equal(t, types.EdgeImports, edges[0].Type)
}

func TestResolveImportsRetainsUnresolvedSpecifier(t *testing.T) {
	s := newTestStore(t)
	r := New(s)

	imports := []types.Edge{{From: "/proj/a.go", To: "./missing", Type: types.EdgeImports}}
	edges := r.resolveImports(nil, imports)

	require.Len(t, edges, 1)
	assert.Equal(t, "/proj/a.go", edges[0].From)
	assert.Equal(t, "./missing", edges[0].To)
}

func TestResolveImportsNeverFabricatesUnexportedTargets(t *testing.T) {
	s := newTestStore(t)
	hidden := sym("/proj/b.go:helper:1", "helper", "/proj/b.go", 1, "", false)
	require.NoError(t, s.PutSymbol(&hidden))

	from := sym("/proj/a.go:Caller:1", "Caller", "/proj/a.go", 1, "", true)
	r := New(s)
	imports := []types.Edge{{From: "/proj/a.go", To: "./b", Type: types.EdgeImports}}
	edges := r.resolveImports([]types.Symbol{from}, imports)

	require.Len(t, edges, 1)
	assert.Equal(t, "./b", edges[0].To, "unexported-only target file must retain the raw specifier edge")
}

func TestResolveIntraFileExtendsAndCalls(t *testing.T) {
	s := newTestStore(t)
	r := New(s)

	// Shaped like real parser output: signatures are truncated at the body's
	// start, so call references only appear in Body.
	base := sym("/proj/a.ts:Base:1", "Base", "/proj/a.ts", 1, "", true)
	derived := types.Symbol{
		ID: "/proj/a.ts:Derived:3", Name: "Derived", FilePath: "/proj/a.ts",
		Signature: "class Derived extends Base ",
		Location:  types.Location{Start: types.Position{Line: 3}},
	}
	helper := sym("/proj/a.ts:helper:8", "helper", "/proj/a.ts", 8, "", true)
	caller := types.Symbol{
		ID: "/proj/a.ts:run:10", Name: "run", FilePath: "/proj/a.ts",
		Signature: "function run() ",
		Body:      "{ return helper(); }",
		Location:  types.Location{Start: types.Position{Line: 10}},
	}

	edges := r.resolveIntraFile([]types.Symbol{base, derived, helper, caller})

	var sawExtends, sawCalls bool
	for _, e := range edges {
		if e.Type == types.EdgeExtends && e.From == derived.ID && e.To == base.ID {
			sawExtends = true
		}
		if e.Type == types.EdgeCalls && e.From == caller.ID && e.To == helper.ID {
			sawCalls = true
		}
	}
	assert.True(t, sawExtends, "expected an extends edge from Derived to Base")
	assert.True(t, sawCalls, "expected a calls edge from run's body to helper")
}

func TestResolveIntraFileInstantiatesFromBody(t *testing.T) {
	s := newTestStore(t)
	r := New(s)

	widget := sym("/proj/a.ts:Widget:1", "Widget", "/proj/a.ts", 1, "", true)
	factory := types.Symbol{
		ID: "/proj/a.ts:makeWidget:5", Name: "makeWidget", FilePath: "/proj/a.ts",
		Signature: "function makeWidget() ",
		Body:      "{ return new Widget(); }",
		Location:  types.Location{Start: types.Position{Line: 5}},
	}

	edges := r.resolveIntraFile([]types.Symbol{widget, factory})

	var sawInstantiates bool
	for _, e := range edges {
		if e.Type == types.EdgeInstantiates && e.From == factory.ID && e.To == widget.ID {
			sawInstantiates = true
		}
	}
	assert.True(t, sawInstantiates, "expected an instantiates edge from makeWidget's body to Widget")
}

func TestTransitiveClosureFollowsDepsFrom(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddEdge(types.Edge{From: "a", To: "b", Type: types.EdgeCalls}))
	require.NoError(t, s.AddEdge(types.Edge{From: "b", To: "c", Type: types.EdgeCalls}))
	require.NoError(t, s.AddEdge(types.Edge{From: "c", To: "a", Type: types.EdgeCalls})) // cycle

	r := New(s)
	closure := r.ComputeTransitiveDependencies("a")
	assert.ElementsMatch(t, []string{"b", "c"}, closure)
}

func TestGetDependenciesSplitsDirectAndTransitive(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddEdge(types.Edge{From: "a", To: "b", Type: types.EdgeCalls}))
	require.NoError(t, s.AddEdge(types.Edge{From: "b", To: "c", Type: types.EdgeCalls}))

	r := New(s)
	report := r.GetDependencies("a", 2, nil)
	assert.Equal(t, []string{"b"}, report.Direct)
	assert.Equal(t, []string{"c"}, report.Transitive)
	assert.Equal(t, 2, report.ImpactCount)
}
