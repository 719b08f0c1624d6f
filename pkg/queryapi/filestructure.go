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

	"github.com/kraklabs/codegraph/pkg/types"
)

// FileNode is one node of the nested symbol tree GetFileStructure returns
// — nested symbol
// tree").
type FileNode struct {
	Symbol   types.Symbol
	Children []*FileNode
}

// FileStructureOptions narrows a GetFileStructure call.
type FileStructureOptions struct {
	IncludePrivate bool
}

// GetFileStructure nests path's symbols under their Parent/Children links
// into a forest of top-level (Parent == "") symbols, each with their
// children attached recursively.
func (a *API) GetFileStructure(path string, opts FileStructureOptions) []*FileNode {
	byID := make(map[string]*types.Symbol)
	for _, id := range a.store.SymbolsByFile(path) {
		sym := a.store.GetSymbol(id)
		if sym == nil {
			continue
		}
		if !opts.IncludePrivate && !sym.Exported {
			continue
		}
		byID[id] = sym
	}

	var roots []*FileNode
	for id, sym := range byID {
		if sym.Parent != "" {
			if _, ok := byID[sym.Parent]; ok {
				continue
			}
		}
		roots = append(roots, buildFileNode(id, byID))
	}

	sort.Slice(roots, func(i, j int) bool {
		return roots[i].Symbol.Location.Start.Line < roots[j].Symbol.Location.Start.Line
	})
	return roots
}

func buildFileNode(id string, byID map[string]*types.Symbol) *FileNode {
	sym := byID[id]
	node := &FileNode{Symbol: *sym}
	for _, childID := range sym.Children {
		if _, ok := byID[childID]; !ok {
			continue
		}
		node.Children = append(node.Children, buildFileNode(childID, byID))
	}
	sort.Slice(node.Children, func(i, j int) bool {
		return node.Children[i].Symbol.Location.Start.Line < node.Children[j].Symbol.Location.Start.Line
	})
	return node
}
