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

import (
	"math"
	"sort"
)

// Bottleneck is a symbol whose in/out degree product flags it as a
// structural chokepoint.
type Bottleneck struct {
	SymbolID string
	Score    float64
}

// FindBottlenecks scores every symbol as sqrt(indeg*outdeg) and keeps those
// above 4, sorted descending.
func (g *Graph) FindBottlenecks() []Bottleneck {
	var out []Bottleneck
	for _, id := range g.store.AllSymbolIDs() {
		indeg := len(g.store.DepsTo(id))
		outdeg := len(g.store.DepsFrom(id))
		score := math.Sqrt(float64(indeg) * float64(outdeg))
		if score > 4 {
			out = append(out, Bottleneck{SymbolID: id, Score: score})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
