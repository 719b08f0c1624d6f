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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codegraph/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{KeyPrefix: "test"})
	require.NoError(t, err)
	s.SetProjectContext("/tmp/project")
	return s
}

func sym(id, name string, line int) *types.Symbol {
	return &types.Symbol{
		ID:       id,
		Name:     name,
		Kind:     types.KindFunction,
		FilePath: "a.go",
		Location: types.Location{Start: types.Position{Line: line}, End: types.Position{Line: line}},
		Language: "go",
	}
}

func TestPutAndGetSymbol(t *testing.T) {
	s := newTestStore(t)
	a := sym("a.go:Foo:1", "Foo", 1)
	require.NoError(t, s.PutSymbol(a))

	got := s.GetSymbol(a.ID)
	require.NotNil(t, got)
	assert.Equal(t, "Foo", got.Name)
	assert.Contains(t, s.SymbolsByFile("a.go"), a.ID)
	assert.Contains(t, s.SymbolsByName("Foo"), a.ID)
	assert.Contains(t, s.AllSymbolIDs(), a.ID)
}

func TestAddEdgeAndDeps(t *testing.T) {
	s := newTestStore(t)
	a := sym("a.go:A:1", "A", 1)
	b := sym("a.go:B:2", "B", 2)
	require.NoError(t, s.PutSymbol(a))
	require.NoError(t, s.PutSymbol(b))

	require.NoError(t, s.AddEdge(types.Edge{From: b.ID, To: a.ID, Type: types.EdgeExtends}))

	assert.Contains(t, s.DepsFrom(b.ID), a.ID)
	assert.Contains(t, s.DepsTo(a.ID), b.ID)

	edge := s.GetEdge(b.ID, a.ID)
	require.NotNil(t, edge)
	assert.Equal(t, types.EdgeExtends, edge.Type)
}

// TestDeletionClosure verifies invariant I1: removing a symbol removes every
// edge incident to it and every reverse-membership trace.
func TestDeletionClosure(t *testing.T) {
	s := newTestStore(t)
	a := sym("a.go:A:1", "A", 1)
	b := sym("a.go:B:2", "B", 2)
	require.NoError(t, s.PutSymbol(a))
	require.NoError(t, s.PutSymbol(b))
	require.NoError(t, s.AddEdge(types.Edge{From: b.ID, To: a.ID, Type: types.EdgeExtends}))
	require.NoError(t, s.SetPageRanks(map[string]float64{a.ID: 0.6, b.ID: 0.4}))

	require.NoError(t, s.RemoveSymbol(a.ID))

	assert.Nil(t, s.GetSymbol(a.ID))
	assert.NotContains(t, s.DepsFrom(b.ID), a.ID)
	assert.Empty(t, s.DepsTo(a.ID))
	_, ok := s.SortedSetScore("pagerank", a.ID)
	assert.False(t, ok)
	assert.Nil(t, s.GetEdge(b.ID, a.ID))
}

func TestSetPageRanksSumsAndMirrors(t *testing.T) {
	s := newTestStore(t)
	a := sym("a.go:A:1", "A", 1)
	b := sym("a.go:B:2", "B", 2)
	require.NoError(t, s.PutSymbol(a))
	require.NoError(t, s.PutSymbol(b))

	require.NoError(t, s.SetPageRanks(map[string]float64{a.ID: 0.7, b.ID: 0.3}))

	top := s.TopSymbolsByPageRank(0)
	require.Len(t, top, 2)
	assert.Equal(t, a.ID, top[0].Member)
	assert.InDelta(t, 1.0, top[0].Score+top[1].Score, 1e-9)

	got := s.GetSymbol(a.ID)
	assert.InDelta(t, 0.7, got.PageRank, 1e-9)
}

func TestAcquireAndReleaseLock(t *testing.T) {
	s := newTestStore(t)

	token, ok := s.AcquireLock("indexing", time.Minute)
	require.True(t, ok)

	_, ok = s.AcquireLock("indexing", time.Minute)
	assert.False(t, ok, "a held lock must refuse a second acquisition")

	s.ReleaseLock("indexing", "wrong-token")
	_, ok = s.AcquireLock("indexing", time.Minute)
	assert.False(t, ok, "releasing with the wrong token must not free the lock")

	s.ReleaseLock("indexing", token)
	_, ok = s.AcquireLock("indexing", time.Minute)
	assert.True(t, ok, "releasing with the correct token frees the lock")
}

func TestLockExpiresAfterTTL(t *testing.T) {
	s := newTestStore(t)
	_, ok := s.AcquireLock("indexing", 10*time.Millisecond)
	require.True(t, ok)

	time.Sleep(30 * time.Millisecond)
	_, ok = s.AcquireLock("indexing", time.Minute)
	assert.True(t, ok, "an expired lock must be acquirable again")
}

func TestProjectNamespacingIsolatesKeys(t *testing.T) {
	s := newTestStore(t)
	a := sym("a.go:A:1", "A", 1)
	require.NoError(t, s.PutSymbol(a))

	s.SetProjectContext("/tmp/other-project")
	assert.Nil(t, s.GetSymbol(a.ID), "a different project namespace must not see the first project's symbols")

	s.SetProjectContext("/tmp/project")
	assert.NotNil(t, s.GetSymbol(a.ID))
}
