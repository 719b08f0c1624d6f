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

import "github.com/kraklabs/codegraph/pkg/types"

// DependencyReport is the {direct, transitive, impactCount} result of a
// depth-bounded dependency or dependent query.
type DependencyReport struct {
	Direct      []string
	Transitive  []string
	ImpactCount int
}

// ComputeTransitiveDependencies is a DFS closure over deps:from.
func (r *Resolver) ComputeTransitiveDependencies(id string) []string {
	return r.transitiveClosure(id, r.store.DepsFrom)
}

// ComputeTransitiveDependents is a DFS closure over deps:to.
func (r *Resolver) ComputeTransitiveDependents(id string) []string {
	return r.transitiveClosure(id, r.store.DepsTo)
}

func (r *Resolver) transitiveClosure(id string, neighbors func(string) []string) []string {
	visited := map[string]struct{}{id: {}}
	var out []string
	stack := append([]string{}, neighbors(id)...)
	for len(stack) > 0 {
		n := len(stack) - 1
		cur := stack[n]
		stack = stack[:n]
		if _, seen := visited[cur]; seen {
			continue
		}
		visited[cur] = struct{}{}
		out = append(out, cur)
		stack = append(stack, neighbors(cur)...)
	}
	return out
}

// GetDependencies returns {direct, transitive, impactCount} up to depth
// hops over deps:from, optionally restricted to allowed edge types. A nil
// allowed set matches every edge type.
func (r *Resolver) GetDependencies(target string, depth int, allowed map[types.EdgeType]bool) DependencyReport {
	return r.bfsReport(target, depth, allowed, r.store.DepsFrom, r.store.GetEdge)
}

// GetDependents returns {direct, transitive, impactCount} up to depth hops
// over deps:to.
func (r *Resolver) GetDependents(target string, depth int) DependencyReport {
	return r.bfsReport(target, depth, nil, r.store.DepsTo, func(from, to string) *types.Edge {
		return r.store.GetEdge(to, from)
	})
}

// bfsReport performs a bounded-depth BFS, splitting results into the
// depth-1 "direct" set and the remainder "transitive" set.
func (r *Resolver) bfsReport(
	target string,
	depth int,
	allowed map[types.EdgeType]bool,
	neighbors func(string) []string,
	edgeLookup func(a, b string) *types.Edge,
) DependencyReport {
	if depth <= 0 {
		depth = 1
	}

	visited := map[string]struct{}{target: {}}
	frontier := []string{target}
	var direct, transitive []string

	for d := 1; d <= depth && len(frontier) > 0; d++ {
		var next []string
		for _, cur := range frontier {
			for _, n := range neighbors(cur) {
				if _, seen := visited[n]; seen {
					continue
				}
				if allowed != nil {
					e := edgeLookup(cur, n)
					if e == nil || !allowed[e.Type] {
						continue
					}
				}
				visited[n] = struct{}{}
				if d == 1 {
					direct = append(direct, n)
				} else {
					transitive = append(transitive, n)
				}
				next = append(next, n)
			}
		}
		frontier = next
	}

	return DependencyReport{
		Direct:      direct,
		Transitive:  transitive,
		ImpactCount: len(direct) + len(transitive),
	}
}
