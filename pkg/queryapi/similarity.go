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
	"sort"

	"github.com/kraklabs/codegraph/pkg/graph"
	"github.com/kraklabs/codegraph/pkg/types"
)

// SimilarOptions narrows a FindSimilar call").
type SimilarOptions struct {
	Kind  types.Kind
	Limit int
}

// FindSimilar resolves description to its best fuzzy name match (as
// GetSymbol does) and runs the graph's similarity scoring from that
// symbol, so a free-text description works the same as an exact symbol
// name. Returns nil if nothing matches description
// at all.
func (a *API) FindSimilar(description string, opts SimilarOptions) []graph.SimilarSymbol {
	candidates := a.GetSymbol(description, GetSymbolOptions{Kind: opts.Kind, Limit: 1})
	if len(candidates) == 0 {
		return nil
	}

	g := graph.New(a.store)
	matches := g.FindSimilar(candidates[0].Symbol.ID, 0)
	if opts.Kind != "" {
		var filtered []graph.SimilarSymbol
		for _, m := range matches {
			if sym := a.store.GetSymbol(m.SymbolID); sym != nil && sym.Kind == opts.Kind {
				filtered = append(filtered, m)
			}
		}
		matches = filtered
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if opts.Limit > 0 && opts.Limit < len(matches) {
		matches = matches[:opts.Limit]
	}
	return matches
}
