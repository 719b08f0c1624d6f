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
	"regexp"
	"strings"

	"github.com/kraklabs/codegraph/pkg/types"
)

var (
	extendsPattern      = regexp.MustCompile(`\bextends\s+([A-Za-z_][A-Za-z0-9_]*)`)
	implementsPattern   = regexp.MustCompile(`\bimplements\s+([A-Za-z_][A-Za-z0-9_, ]*)`)
	instantiatesPattern = regexp.MustCompile(`\bnew\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
	callPattern         = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)\s*\(`)
)

// resolveIntraFile scans each symbol's signature and body text for extends,
// implements, new, call, and bare-word patterns and emits edges to
// same-file symbols with a matching name. This is a deliberate, cheap
// textual approximation, not semantic resolution.
func (r *Resolver) resolveIntraFile(symbols []types.Symbol) []types.Edge {
	byFileName := make(map[string]map[string][]string) // file -> name -> IDs
	for _, s := range symbols {
		m, ok := byFileName[s.FilePath]
		if !ok {
			m = make(map[string][]string)
			byFileName[s.FilePath] = m
		}
		m[s.Name] = append(m[s.Name], s.ID)
	}

	var out []types.Edge
	for _, s := range symbols {
		names := byFileName[s.FilePath]
		classified := make(map[string]bool) // names already emitted as a structural edge type

		// The signature alone only carries declaration-level references
		// (extends/implements clauses, parameter types): every parser
		// truncates it at the body's start. Body-level references — the
		// common case for calls and instantiations — live in Body, so both
		// are scanned.
		scanText := s.Signature
		if s.Body != "" {
			scanText += "\n" + s.Body
		}

		for _, m := range extendsPattern.FindAllStringSubmatch(scanText, -1) {
			out = append(out, emitToNamed(s.ID, m[1], names, types.EdgeExtends)...)
			classified[m[1]] = true
		}
		for _, m := range implementsPattern.FindAllStringSubmatch(scanText, -1) {
			for _, name := range strings.Split(m[1], ",") {
				name = strings.TrimSpace(name)
				if name == "" {
					continue
				}
				out = append(out, emitToNamed(s.ID, name, names, types.EdgeImplements)...)
				classified[name] = true
			}
		}
		for _, m := range instantiatesPattern.FindAllStringSubmatch(scanText, -1) {
			out = append(out, emitToNamed(s.ID, m[1], names, types.EdgeInstantiates)...)
			classified[m[1]] = true
		}
		for _, m := range callPattern.FindAllStringSubmatch(scanText, -1) {
			if classified[m[1]] {
				continue
			}
			out = append(out, emitToNamed(s.ID, m[1], names, types.EdgeCalls)...)
			classified[m[1]] = true
		}
		for name, ids := range names {
			if classified[name] || name == s.Name {
				continue
			}
			if !wordBoundaryMatch(scanText, name) {
				continue
			}
			for _, id := range ids {
				out = append(out, types.Edge{From: s.ID, To: id, Type: types.EdgeUses})
			}
		}
	}
	return out
}

// emitToNamed emits from->id edges of kind for every same-file symbol named
// name, excluding self-edges.
func emitToNamed(from, name string, names map[string][]string, kind types.EdgeType) []types.Edge {
	var out []types.Edge
	for _, id := range names[name] {
		if id == from {
			continue
		}
		out = append(out, types.Edge{From: from, To: id, Type: kind})
	}
	return out
}

func wordBoundaryMatch(text, name string) bool {
	pattern := `\b` + regexp.QuoteMeta(name) + `\b`
	matched, _ := regexp.MatchString(pattern, text)
	return matched
}
