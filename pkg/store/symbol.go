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
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kraklabs/codegraph/pkg/types"
)

func symbolKey(id string) string { return "symbol:" + id }

// encodeSymbol flattens a Symbol into its multi-field hash record.
func encodeSymbol(sym *types.Symbol) map[string]string {
	children, _ := json.Marshal(sym.Children)
	var gitMeta string
	if sym.GitMeta != nil {
		b, _ := json.Marshal(sym.GitMeta)
		gitMeta = string(b)
	}
	return map[string]string{
		"id":          sym.ID,
		"name":        sym.Name,
		"kind":        string(sym.Kind),
		"filepath":    sym.FilePath,
		"startLine":   strconv.Itoa(sym.Location.Start.Line),
		"startColumn": strconv.Itoa(sym.Location.Start.Column),
		"endLine":     strconv.Itoa(sym.Location.End.Line),
		"endColumn":   strconv.Itoa(sym.Location.End.Column),
		"signature":   sym.Signature,
		"docstring":   sym.Docstring,
		"parent":      sym.Parent,
		"children":    string(children),
		"exported":    strconv.FormatBool(sym.Exported),
		"language":    sym.Language,
		"gitMetadata": gitMeta,
		"pageRank":    strconv.FormatFloat(sym.PageRank, 'g', -1, 64),
	}
}

func decodeSymbol(h map[string]string) *types.Symbol {
	if h == nil {
		return nil
	}
	sym := &types.Symbol{
		ID:        h["id"],
		Name:      h["name"],
		Kind:      types.Kind(h["kind"]),
		FilePath:  h["filepath"],
		Signature: h["signature"],
		Docstring: h["docstring"],
		Parent:    h["parent"],
		Exported:  h["exported"] == "true",
		Language:  h["language"],
	}
	sym.Location.Start.Line, _ = strconv.Atoi(h["startLine"])
	sym.Location.Start.Column, _ = strconv.Atoi(h["startColumn"])
	sym.Location.End.Line, _ = strconv.Atoi(h["endLine"])
	sym.Location.End.Column, _ = strconv.Atoi(h["endColumn"])
	if c := h["children"]; c != "" {
		_ = json.Unmarshal([]byte(c), &sym.Children)
	}
	if gm := h["gitMetadata"]; gm != "" {
		var meta types.GitMeta
		if json.Unmarshal([]byte(gm), &meta) == nil {
			sym.GitMeta = &meta
		}
	}
	if pr := h["pageRank"]; pr != "" {
		sym.PageRank, _ = strconv.ParseFloat(pr, 64)
	}
	return sym
}

// PutSymbol writes or replaces a symbol record and its file/name/kind index
// memberships.
func (s *Store) PutSymbol(sym *types.Symbol) error {
	ns := s.currentNamespace()

	s.mu.Lock()
	s.hashes[ns+":"+symbolKey(sym.ID)] = encodeSymbol(sym)
	s.addSet(ns+":idx:file:"+sym.FilePath, sym.ID)
	s.addSet(ns+":idx:name:"+sym.Name, sym.ID)
	s.addSet(ns+":idx:kind:"+string(sym.Kind), sym.ID)
	s.addSet(ns+":idx:all", sym.ID)
	s.mu.Unlock()

	return s.maybeFlush()
}

// GetSymbol reads a symbol by ID, or nil if absent.
func (s *Store) GetSymbol(id string) *types.Symbol {
	ns := s.currentNamespace()

	s.mu.RLock()
	defer s.mu.RUnlock()
	return decodeSymbol(s.hashes[ns+":"+symbolKey(id)])
}

// SymbolsByFile returns every symbol ID indexed under the given file path.
func (s *Store) SymbolsByFile(filepath string) []string {
	return s.SetMembers("idx:file:" + filepath)
}

// SymbolsByName returns every symbol ID with the given name.
func (s *Store) SymbolsByName(name string) []string {
	return s.SetMembers("idx:name:" + name)
}

// SymbolsByKind returns every symbol ID of the given kind.
func (s *Store) SymbolsByKind(kind types.Kind) []string {
	return s.SetMembers("idx:kind:" + string(kind))
}

// AllSymbolIDs returns every symbol ID currently present in the project.
func (s *Store) AllSymbolIDs() []string {
	return s.SetMembers("idx:all")
}

// AllSymbols returns every symbol currently present in the project.
func (s *Store) AllSymbols() []*types.Symbol {
	ids := s.AllSymbolIDs()
	out := make([]*types.Symbol, 0, len(ids))
	for _, id := range ids {
		if sym := s.GetSymbol(id); sym != nil {
			out = append(out, sym)
		}
	}
	return out
}

// RemoveSymbol deletes a symbol and every edge incident to it, enforcing
// invariant I1. It is atomic against concurrent readers.
func (s *Store) RemoveSymbol(id string) error {
	ns := s.currentNamespace()

	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.hashes[ns+":"+symbolKey(id)]
	if !ok {
		return nil
	}
	sym := decodeSymbol(h)

	delete(s.hashes, ns+":"+symbolKey(id))
	s.removeFromSet(ns+":idx:file:"+sym.FilePath, id)
	s.removeFromSet(ns+":idx:name:"+sym.Name, id)
	s.removeFromSet(ns+":idx:kind:"+string(sym.Kind), id)
	s.removeFromSet(ns+":idx:all", id)

	depsFromKey := ns + ":deps:from:" + id
	for to := range s.sets[depsFromKey] {
		delete(s.hashes, ns+":"+edgeKey(id, to))
		s.removeFromSet(ns+":deps:to:"+to, id)
	}
	delete(s.sets, depsFromKey)

	depsToKey := ns + ":deps:to:" + id
	for from := range s.sets[depsToKey] {
		delete(s.hashes, ns+":"+edgeKey(from, id))
		s.removeFromSet(ns+":deps:from:"+from, id)
	}
	delete(s.sets, depsToKey)

	if zs, ok := s.sortedSets[ns+":pagerank"]; ok {
		delete(zs, id)
	}

	return nil
}

// addSet and removeFromSet assume s.mu is already held exclusively; they
// exist so compound operations (PutSymbol, RemoveSymbol, AddEdge) can touch
// several sets under one lock acquisition.
func (s *Store) addSet(fullKey, member string) {
	set, ok := s.sets[fullKey]
	if !ok {
		set = make(map[string]struct{})
		s.sets[fullKey] = set
	}
	set[member] = struct{}{}
}

func (s *Store) removeFromSet(fullKey, member string) {
	if set, ok := s.sets[fullKey]; ok {
		delete(set, member)
	}
}

func edgeKey(from, to string) string {
	return fmt.Sprintf("edge:from:%s:to:%s", from, to)
}
