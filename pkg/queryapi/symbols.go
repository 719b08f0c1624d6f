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
	"path/filepath"
	"sort"

	"github.com/hbollon/go-edlib"

	"github.com/kraklabs/codegraph/pkg/store"
	"github.com/kraklabs/codegraph/pkg/types"
)

// fuzzyNameThreshold matches pkg/graph's similarity.go threshold for a
// name match to "count" at all.
const fuzzyNameThreshold = 0.5

// SymbolMatch is one getSymbol result: a matched symbol, its match score,
// and the IDs it directly depends on or is depended on by.
type SymbolMatch struct {
	Symbol  types.Symbol
	Score   float64
	Related []string
}

// GetSymbolOptions narrows a GetSymbol call").
type GetSymbolOptions struct {
	FilePath string
	Kind     types.Kind
	Limit    int
}

// GetSymbol fuzzy-matches name against every indexed symbol name, scoring
// exact matches at 1.0 and others by normalised Levenshtein similarity,
// keeping only scores above fuzzyNameThreshold.
func (a *API) GetSymbol(name string, opts GetSymbolOptions) []SymbolMatch {
	var matches []SymbolMatch
	for _, sym := range a.store.AllSymbols() {
		if opts.FilePath != "" && sym.FilePath != opts.FilePath {
			continue
		}
		if opts.Kind != "" && sym.Kind != opts.Kind {
			continue
		}

		score, ok := nameScore(name, sym.Name)
		if !ok {
			continue
		}

		matches = append(matches, SymbolMatch{
			Symbol:  *sym,
			Score:   score,
			Related: relatedSymbols(a.store, sym.ID),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Symbol.PageRank > matches[j].Symbol.PageRank
	})
	return limitMatches(matches, opts.Limit)
}

func nameScore(query, candidate string) (float64, bool) {
	if query == candidate {
		return 1.0, true
	}
	if query == "" || candidate == "" {
		return 0, false
	}
	// edlib's Levenshtein similarity is already 1 - distance/max-length.
	sim, err := edlib.StringsSimilarity(query, candidate, edlib.Levenshtein)
	if err != nil || float64(sim) <= fuzzyNameThreshold {
		return 0, false
	}
	return float64(sim), true
}

func relatedSymbols(s *store.Store, id string) []string {
	related := append([]string{}, s.DepsFrom(id)...)
	related = append(related, s.DepsTo(id)...)
	sort.Strings(related)
	return related
}

func limitMatches(matches []SymbolMatch, limit int) []SymbolMatch {
	if limit > 0 && limit < len(matches) {
		return matches[:limit]
	}
	return matches
}

// SearchOptions narrows a SearchSymbols call").
type SearchOptions struct {
	Kind         types.Kind
	ExportedOnly bool
	Limit        int
}

// SearchSymbols matches every symbol name against a filepath.Match-style
// wildcard pattern ('*', '?', '[...]').
func (a *API) SearchSymbols(pattern string, opts SearchOptions) ([]types.Symbol, error) {
	var out []types.Symbol
	for _, sym := range a.store.AllSymbols() {
		if opts.Kind != "" && sym.Kind != opts.Kind {
			continue
		}
		if opts.ExportedOnly && !sym.Exported {
			continue
		}
		matched, err := filepath.Match(pattern, sym.Name)
		if err != nil {
			return nil, err
		}
		if !matched {
			continue
		}
		out = append(out, *sym)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].PageRank > out[j].PageRank })
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}
