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

package queryapi

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codegraph/pkg/indexer"
	"github.com/kraklabs/codegraph/pkg/store"
	"github.com/kraklabs/codegraph/pkg/types"
)

func newTestAPI(t *testing.T) *API {
	t.Helper()
	s, err := store.Open(store.Config{KeyPrefix: "test"})
	require.NoError(t, err)

	api := New(s, "/proj", indexer.DefaultConfig(), nil)

	symbols := []types.Symbol{
		{ID: "a.go:Widget:1", Name: "Widget", Kind: types.KindClass, FilePath: "a.go", Exported: true, Language: "go", Children: []string{"a.go:NewWidget:10"}},
		{ID: "a.go:NewWidget:10", Name: "NewWidget", Kind: types.KindFunction, FilePath: "a.go", Exported: true, Parent: "a.go:Widget:1", Language: "go"},
		{ID: "b.go:Gadget:1", Name: "Gadget", Kind: types.KindClass, FilePath: "b.go", Exported: true, Language: "go"},
	}
	for i := range symbols {
		require.NoError(t, s.PutSymbol(&symbols[i]))
	}
	require.NoError(t, s.AddEdge(types.Edge{From: "a.go:NewWidget:10", To: "b.go:Gadget:1", Type: types.EdgeCalls}))

	return api
}

func TestGetSymbolExactAndFuzzy(t *testing.T) {
	api := newTestAPI(t)

	exact := api.GetSymbol("Widget", GetSymbolOptions{})
	require.Len(t, exact, 3, "NewWidget and Gadget both score 2/3 against Widget")
	require.Equal(t, 1.0, exact[0].Score)

	fuzzy := api.GetSymbol("Widgt", GetSymbolOptions{})
	require.NotEmpty(t, fuzzy)
	require.Less(t, fuzzy[0].Score, 1.0)
}

func TestSearchSymbolsWildcard(t *testing.T) {
	api := newTestAPI(t)

	matches, err := api.SearchSymbols("*Widget", SearchOptions{})
	require.NoError(t, err)
	require.Len(t, matches, 2)
}

func TestGetFileStructureNestsChildren(t *testing.T) {
	api := newTestAPI(t)

	tree := api.GetFileStructure("a.go", FileStructureOptions{})
	require.Len(t, tree, 1)
	require.Equal(t, "Widget", tree[0].Symbol.Name)
	require.Len(t, tree[0].Children, 1)
	require.Equal(t, "NewWidget", tree[0].Children[0].Symbol.Name)
}

func TestGetDependenciesAndDependents(t *testing.T) {
	api := newTestAPI(t)

	deps := api.GetDependencies("a.go:NewWidget:10", 1, nil)
	require.Contains(t, deps.Direct, "b.go:Gadget:1")

	dependents := api.GetDependents("b.go:Gadget:1", 1, DependentsOptions{})
	require.Contains(t, dependents.Direct, "a.go:NewWidget:10")
}

func TestGetImpactSeedsFromFiles(t *testing.T) {
	api := newTestAPI(t)

	result := api.GetImpact([]string{"b.go"}, ImpactOptions{})
	require.Contains(t, result.DirectlyAffected, "a.go:NewWidget:10")
}

func TestGetDependentsAndImpactAttachGitMetaWhenRequested(t *testing.T) {
	api := newTestAPI(t)

	withMeta := api.store.GetSymbol("a.go:NewWidget:10")
	require.NotNil(t, withMeta)
	withMeta.GitMeta = &types.GitMeta{LastCommitSHA: "abc123", ChurnCount: 2, StabilityScore: 1.0 / 3.0}
	require.NoError(t, api.store.PutSymbol(withMeta))

	dependents := api.GetDependents("b.go:Gadget:1", 1, DependentsOptions{IncludeGit: true})
	require.Contains(t, dependents.Git, "a.go:NewWidget:10")
	require.Equal(t, "abc123", dependents.Git["a.go:NewWidget:10"].LastCommitSHA)

	bare := api.GetDependents("b.go:Gadget:1", 1, DependentsOptions{})
	require.Nil(t, bare.Git, "git metadata is attached only on request")

	impact := api.GetImpact([]string{"b.go"}, ImpactOptions{IncludeGit: true})
	require.Contains(t, impact.Git, "a.go:NewWidget:10")
}

func TestGetSymbolHistoryWithoutGitMeta(t *testing.T) {
	api := newTestAPI(t)

	require.Nil(t, api.GetSymbolHistory("a.go:Widget:1", HistoryOptions{}))
}
