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

package extractor

import (
	"github.com/kraklabs/codegraph/pkg/parser"
	"github.com/kraklabs/codegraph/pkg/types"
)

// normalizeSymbols assigns canonical IDs to every raw symbol from
// one file and resolves name-based Parent references to ID-based ones,
// populating the parent's Children.
func normalizeSymbols(filepath, language string, raw []parser.RawSymbol) []types.Symbol {
	symbols := make([]types.Symbol, len(raw))
	nameToID := make(map[string]string, len(raw))

	for i, r := range raw {
		id := types.SymbolID(filepath, r.Name, r.Location.Start.Line)
		symbols[i] = types.Symbol{
			ID:        id,
			Name:      r.Name,
			Kind:      r.Kind,
			FilePath:  filepath,
			Location:  r.Location,
			Signature: r.Signature,
			Docstring: r.Docstring,
			Exported:  r.Exported,
			Language:  language,
			Body:      r.Body,
		}
		// Last declaration wins on a name collision within a file; parent
		// resolution is a best-effort, same-file approximation.
		nameToID[r.Name] = id
	}

	byID := make(map[string]int, len(symbols))
	for i, s := range symbols {
		byID[s.ID] = i
	}

	for i, r := range raw {
		if r.Parent == "" {
			continue
		}
		parentID, ok := nameToID[r.Parent]
		if !ok {
			continue
		}
		symbols[i].Parent = parentID
		if pi, ok := byID[parentID]; ok {
			symbols[pi].Children = append(symbols[pi].Children, symbols[i].ID)
		}
	}

	return symbols
}

// normalizeImports preserves import edges verbatim: `from` stays the
// importing file's path and `to` stays the raw specifier.
func normalizeImports(filepath string, raw []parser.RawImport) []types.Edge {
	edges := make([]types.Edge, len(raw))
	for i, r := range raw {
		loc := r.Location
		edges[i] = types.Edge{
			From:     filepath,
			To:       r.Specifier,
			Type:     types.EdgeImports,
			Location: &loc,
		}
	}
	return edges
}
