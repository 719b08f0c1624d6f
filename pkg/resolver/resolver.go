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

// Package resolver turns the Extractor's raw import edges and per-symbol
// signatures into symbol-to-symbol dependency edges: cross-file
// import resolution, intra-file textual symbolic edges, and the transitive
// dependency/dependent helpers the query surface builds on.
package resolver

import (
	"github.com/kraklabs/codegraph/pkg/store"
	"github.com/kraklabs/codegraph/pkg/types"
)

// Resolver resolves edges against a project's Store.
type Resolver struct {
	store *store.Store
}

// New creates a Resolver bound to a project-scoped Store (the caller must
// have already called store.SetProjectContext).
func New(s *store.Store) *Resolver {
	return &Resolver{store: s}
}

// knownSourceExtensions lists the extensions probed when resolving a
// relative import specifier to a file, matching pkg/parser's routing table.
var knownSourceExtensions = []string{
	".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs",
	".py", ".go", ".rs", ".java",
	".c", ".h", ".cpp", ".cc", ".cxx", ".hpp", ".hxx",
}

// Resolve runs both resolver duties over one batch's symbols and raw import
// edges, returning the full edge set to persist: resolved or retained
// imports, plus synthesised intra-file symbolic edges.
func (r *Resolver) Resolve(symbols []types.Symbol, imports []types.Edge) []types.Edge {
	edges := r.resolveImports(symbols, imports)
	edges = append(edges, r.resolveIntraFile(symbols)...)
	return edges
}
