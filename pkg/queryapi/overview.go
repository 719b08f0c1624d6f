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
	"github.com/kraklabs/codegraph/pkg/graph"
	"github.com/kraklabs/codegraph/pkg/types"
)

// OverviewOptions narrows a GetProjectOverview call").
type OverviewOptions struct {
	TopN       int
	IncludeGit bool
}

// ProjectOverview summarises a project's current indexed state: size
// metadata plus the graph's structural findings.
type ProjectOverview struct {
	Metadata     types.ProjectMetadata
	TopByRank    []types.Symbol
	Bottlenecks  []graph.Bottleneck
	DeadCode     []string
	Cycles       [][]string
	Components   int
}

// GetProjectOverview reports the project's size, its highest-PageRank
// symbols, structural bottlenecks, dead code, and cycles. Git metadata is
// carried on the symbol record itself and is not refetched here; without
// IncludeGit it is stripped from the returned top symbols.
func (a *API) GetProjectOverview(opts OverviewOptions) ProjectOverview {
	g := graph.New(a.store)

	topN := opts.TopN
	if topN <= 0 {
		topN = 10
	}

	var top []types.Symbol
	for _, entry := range a.store.SortedSetTopN("pagerank", topN) {
		if sym := a.store.GetSymbol(entry.Member); sym != nil {
			top = append(top, *sym)
		}
	}

	overview := ProjectOverview{
		Metadata:    a.store.GetProjectMetadata(),
		TopByRank:   top,
		Bottlenecks: g.FindBottlenecks(),
		DeadCode:    g.FindDeadCode(),
		Cycles:      g.FindCycles(),
		Components:  len(g.ConnectedComponents()),
	}
	if !opts.IncludeGit {
		for i := range overview.TopByRank {
			overview.TopByRank[i].GitMeta = nil
		}
	}
	return overview
}
