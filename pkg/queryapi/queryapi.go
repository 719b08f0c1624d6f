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

// Package queryapi exposes the query surface as plain Go methods:
// indexProject, getSymbol, searchSymbols,
// getFileStructure, getProjectOverview, getDependencies, getDependents,
// getImpact, getSymbolHistory, findSimilar. It is a typed wrapper over
// pkg/store, pkg/graph, pkg/resolver, pkg/indexer, and pkg/gitmeta — not a
// JSON-RPC or MCP dispatcher.
package queryapi

import (
	"log/slog"

	"github.com/kraklabs/codegraph/pkg/gitmeta"
	"github.com/kraklabs/codegraph/pkg/indexer"
	"github.com/kraklabs/codegraph/pkg/store"
)

// API answers read queries and drives indexing for one project root.
type API struct {
	store  *store.Store
	root   string
	cfg    indexer.Config
	logger *slog.Logger
}

// New binds an API to a project root. The store's project context is set
// immediately so every subsequent call reads/writes the right namespace.
func New(s *store.Store, root string, cfg indexer.Config, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	s.SetProjectContext(root)
	return &API{store: s, root: root, cfg: cfg, logger: logger}
}

// gitProvider builds a fresh git metadata provider rooted at a.root. Each
// call reprobes whether root is a git repo (cheap: one `rev-parse`), so a
// refresh request always reflects the working tree's current state rather
// than a stale probe taken at API construction time.
func (a *API) gitProvider() *gitmeta.Provider {
	return gitmeta.New(a.cfg.Git, a.root, a.logger)
}
