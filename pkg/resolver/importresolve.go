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

package resolver

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/kraklabs/codegraph/pkg/types"
)

// resolveImports turns file-to-specifier import edges into symbol-to-symbol
// ones where it can. For every edge whose Type is imports, it tries to
// resolve the specifier to a project file and, if resolved, emits an edge
// from the file's representative symbol to every exported top-level
// symbol of the target. Unresolved imports are retained verbatim.
func (r *Resolver) resolveImports(symbols []types.Symbol, imports []types.Edge) []types.Edge {
	representative := representativeByFile(symbols)

	var out []types.Edge
	for _, imp := range imports {
		if imp.Type != types.EdgeImports {
			out = append(out, imp)
			continue
		}

		targetFile, ok := r.resolveSpecifier(imp.From, imp.To)
		if !ok {
			out = append(out, imp)
			continue
		}

		rep, ok := representative[imp.From]
		if !ok {
			// No local symbol to stand in for the file; retain as-is rather
			// than fabricating one.
			out = append(out, imp)
			continue
		}

		targets := r.exportedTopLevelSymbols(targetFile)
		if len(targets) == 0 {
			out = append(out, imp)
			continue
		}
		for _, targetID := range targets {
			out = append(out, types.Edge{From: rep, To: targetID, Type: types.EdgeImports, Location: imp.Location})
		}
	}
	return out
}

// representativeByFile picks, per file, the first top-level (no Parent)
// symbol by start line to stand in for the importing file.
func representativeByFile(symbols []types.Symbol) map[string]string {
	best := make(map[string]types.Symbol)
	for _, s := range symbols {
		if s.Parent != "" {
			continue
		}
		cur, ok := best[s.FilePath]
		if !ok || s.Location.Start.Line < cur.Location.Start.Line {
			best[s.FilePath] = s
		}
	}
	out := make(map[string]string, len(best))
	for file, s := range best {
		out[file] = s.ID
	}
	return out
}

// exportedTopLevelSymbols returns every exported, top-level symbol ID
// declared in filePath, reading from the store so it sees previously
// indexed files too, not just the current batch.
func (r *Resolver) exportedTopLevelSymbols(filePath string) []string {
	ids := r.store.SymbolsByFile(filePath)
	var out []string
	for _, id := range ids {
		sym := r.store.GetSymbol(id)
		if sym != nil && sym.Parent == "" && sym.Exported {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// resolveSpecifier normalises a relative import specifier against the
// importing file's directory and probes known source extensions and
// index.<ext> files, returning the resolved file path.
func (r *Resolver) resolveSpecifier(fromFile, specifier string) (string, bool) {
	if !strings.HasPrefix(specifier, ".") {
		// Bare/package specifiers (e.g. "fmt", "react") aren't project-relative;
		// resolving them would require a module/package graph this system
		// doesn't model.
		return "", false
	}

	dir := filepath.Dir(fromFile)
	joined := filepath.Join(dir, specifier)

	if path, ok := r.fileExists(joined); ok {
		return path, true
	}
	for _, ext := range knownSourceExtensions {
		if path, ok := r.fileExists(joined + ext); ok {
			return path, true
		}
	}
	for _, ext := range knownSourceExtensions {
		candidate := filepath.Join(joined, "index"+ext)
		if path, ok := r.fileExists(candidate); ok {
			return path, true
		}
	}
	return "", false
}

// fileExists reports whether the store has any symbol indexed under path.
func (r *Resolver) fileExists(path string) (string, bool) {
	if len(r.store.SymbolsByFile(path)) > 0 {
		return path, true
	}
	return "", false
}
