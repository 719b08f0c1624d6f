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
	"container/heap"
	"sort"

	"github.com/kraklabs/codegraph/pkg/types"
)

// Path is a reconstructed chain of symbol IDs with its breadth distance.
type Path struct {
	Nodes    []string
	Distance int
}

// orderedNeighbors returns id's outgoing neighbours, ordered by edge-type
// priority.
func (g *Graph) orderedNeighbors(id string) []string {
	neighbors := g.store.DepsFrom(id)
	sort.Slice(neighbors, func(i, j int) bool {
		ei := g.store.GetEdge(id, neighbors[i])
		ej := g.store.GetEdge(id, neighbors[j])
		pi, pj := 99, 99
		if ei != nil {
			pi = types.EdgeTypePriority[ei.Type]
		}
		if ej != nil {
			pj = types.EdgeTypePriority[ej.Type]
		}
		if pi != pj {
			return pi < pj
		}
		return neighbors[i] < neighbors[j]
	})
	return neighbors
}

// FindPath runs a breadth-first search from `from`, expanding neighbours in
// edge-type-priority order, and returns the first chain reaching `to`.
// The zero Path (nil Nodes) means unreachable.
func (g *Graph) FindPath(from, to string) Path {
	if from == to {
		return Path{Nodes: []string{from}, Distance: 0}
	}

	visited := map[string]struct{}{from: {}}
	parent := map[string]string{}
	queue := []string{from}
	dist := map[string]int{from: 0}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, n := range g.orderedNeighbors(cur) {
			if _, seen := visited[n]; seen {
				continue
			}
			visited[n] = struct{}{}
			parent[n] = cur
			dist[n] = dist[cur] + 1
			if n == to {
				return Path{Nodes: reconstructPath(parent, from, to), Distance: dist[n]}
			}
			queue = append(queue, n)
		}
	}
	return Path{}
}

// FindShortestPaths returns the BFS path from `from` to every node it can
// reach.
func (g *Graph) FindShortestPaths(from string) map[string]Path {
	visited := map[string]struct{}{from: {}}
	parent := map[string]string{}
	dist := map[string]int{from: 0}
	queue := []string{from}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range g.orderedNeighbors(cur) {
			if _, seen := visited[n]; seen {
				continue
			}
			visited[n] = struct{}{}
			parent[n] = cur
			dist[n] = dist[cur] + 1
			queue = append(queue, n)
		}
	}

	out := make(map[string]Path, len(dist))
	for node, d := range dist {
		if node == from {
			continue
		}
		out[node] = Path{Nodes: reconstructPath(parent, from, node), Distance: d}
	}
	return out
}

func reconstructPath(parent map[string]string, from, to string) []string {
	chain := []string{to}
	cur := to
	for cur != from {
		p, ok := parent[cur]
		if !ok {
			break
		}
		chain = append(chain, p)
		cur = p
	}
	// reverse
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// pqItem is one entry of the Dijkstra priority queue.
type pqItem struct {
	id   string
	cost float64
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].cost < pq[j].cost }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// FindCriticalPath runs Dijkstra with edge cost 1/(1000·PR(to)+ε); the cost
// falls as PageRank rises, so higher-PageRank intermediates are preferred.
func (g *Graph) FindCriticalPath(from, to string) Path {
	const epsilon = 1e-9

	dist := map[string]float64{from: 0}
	parent := map[string]string{}
	visited := map[string]struct{}{}

	pq := &priorityQueue{{id: from, cost: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqItem)
		if _, done := visited[cur.id]; done {
			continue
		}
		visited[cur.id] = struct{}{}
		if cur.id == to {
			break
		}

		for _, n := range g.store.DepsFrom(cur.id) {
			cost := 1.0 / (1000*g.PageRank(n) + epsilon)
			nd := dist[cur.id] + cost
			if existing, ok := dist[n]; !ok || nd < existing {
				dist[n] = nd
				parent[n] = cur.id
				heap.Push(pq, pqItem{id: n, cost: nd})
			}
		}
	}

	if to == from {
		return Path{Nodes: []string{from}, Distance: 0}
	}
	if _, reached := parent[to]; !reached {
		return Path{}
	}
	nodes := reconstructPath(parent, from, to)
	return Path{Nodes: nodes, Distance: len(nodes) - 1}
}
