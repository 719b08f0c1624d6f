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

import "sort"

// ConnectedComponents returns groups of symbols connected by an undirected
// union over both edge directions.
func (g *Graph) ConnectedComponents() [][]string {
	ids := g.store.AllSymbolIDs()
	visited := make(map[string]bool, len(ids))
	var components [][]string

	for _, id := range ids {
		if visited[id] {
			continue
		}
		var group []string
		stack := []string{id}
		visited[id] = true
		for len(stack) > 0 {
			n := len(stack) - 1
			cur := stack[n]
			stack = stack[:n]
			group = append(group, cur)

			neighbors := append(append([]string{}, g.store.DepsFrom(cur)...), g.store.DepsTo(cur)...)
			for _, nb := range neighbors {
				if !visited[nb] {
					visited[nb] = true
					stack = append(stack, nb)
				}
			}
		}
		sort.Strings(group)
		components = append(components, group)
	}

	return components
}
