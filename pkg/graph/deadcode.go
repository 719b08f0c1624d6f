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

package graph

const deadCodePageRankThreshold = 1e-4

// FindDeadCode returns non-entry-point, non-exported symbols with
// PR < 1e-4 and no dependents.
func (g *Graph) FindDeadCode() []string {
	var out []string
	for _, sym := range g.store.AllSymbols() {
		if sym.Exported {
			continue
		}
		if isEntryPointFile(sym.FilePath) {
			continue
		}
		if g.PageRank(sym.ID) >= deadCodePageRankThreshold {
			continue
		}
		if len(g.store.DepsTo(sym.ID)) > 0 {
			continue
		}
		out = append(out, sym.ID)
	}
	return out
}
