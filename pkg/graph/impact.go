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

// RiskBucket classifies an affected symbol's blast radius.
type RiskBucket string

const (
	RiskCritical RiskBucket = "critical"
	RiskHigh     RiskBucket = "high"
	RiskMedium   RiskBucket = "medium"
	RiskLow      RiskBucket = "low"
)

// AffectedSymbol is one node reached by the reverse-BFS impact sweep.
type AffectedSymbol struct {
	SymbolID string
	Score    float64
	Bucket   RiskBucket
	Paths    [][]string
}

// ImpactSummary aggregates the sweep for reporting.
type ImpactSummary struct {
	TotalAffected    int
	CriticalPaths    [][]string
	AffectedFiles    map[string]int
	RiskDistribution map[RiskBucket]int
}

// ImpactResult is the full result of an impact sweep.
type ImpactResult struct {
	DirectlyAffected     []string
	TransitivelyAffected []string
	SuggestedOrder       []string
	HighRisk             []AffectedSymbol
	ImpactSummary        ImpactSummary
}

// AnalyzeImpact runs the four-step impact sweep (reverse BFS, risk scoring,
// topological ordering, critical-path extraction) for a set of edited
// symbol IDs.
func (g *Graph) AnalyzeImpact(edited []string) ImpactResult {
	direct, transitive, paths := g.reverseBFS(edited)

	allAffected := append(append([]string{}, direct...), transitive...)
	affectedSet := make(map[string]struct{}, len(allAffected))
	for _, id := range allAffected {
		affectedSet[id] = struct{}{}
	}

	scored := make([]AffectedSymbol, 0, len(allAffected))
	for _, id := range allAffected {
		score, bucket := g.riskScore(id, len(paths[id]))
		scored = append(scored, AffectedSymbol{SymbolID: id, Score: score, Bucket: bucket, Paths: paths[id]})
	}
	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	var highRisk []AffectedSymbol
	for _, s := range scored {
		if s.Bucket == RiskCritical || s.Bucket == RiskHigh {
			highRisk = append(highRisk, s)
		}
	}

	order := g.topologicalOrder(affectedSet)

	affectedFiles := make(map[string]int)
	var criticalPaths [][]string
	riskDist := map[RiskBucket]int{}
	for _, s := range scored {
		riskDist[s.Bucket]++
		if sym := g.store.GetSymbol(s.SymbolID); sym != nil {
			affectedFiles[sym.FilePath]++
		}
		for _, p := range s.Paths {
			if len(p) > 3 {
				criticalPaths = append(criticalPaths, p)
			}
		}
	}

	return ImpactResult{
		DirectlyAffected:     direct,
		TransitivelyAffected: transitive,
		SuggestedOrder:       order,
		HighRisk:             highRisk,
		ImpactSummary: ImpactSummary{
			TotalAffected:    len(allAffected),
			CriticalPaths:    criticalPaths,
			AffectedFiles:    affectedFiles,
			RiskDistribution: riskDist,
		},
	}
}

// reverseBFS walks deps:to from every edited symbol, gathering the direct
// (depth-1) and transitive (depth>1) affected sets plus every impact path
// (edited symbol -> ... -> affected symbol) reaching each node.
func (g *Graph) reverseBFS(edited []string) (direct, transitive []string, paths map[string][][]string) {
	paths = make(map[string][][]string)
	visited := make(map[string]int) // node -> depth first seen at
	directSet := map[string]struct{}{}

	type queued struct {
		id   string
		path []string
	}
	var queue []queued
	for _, e := range edited {
		queue = append(queue, queued{id: e, path: []string{e}})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, dependent := range g.store.DepsTo(cur.id) {
			path := append(append([]string{}, cur.path...), dependent)
			paths[dependent] = append(paths[dependent], path)

			if _, seen := visited[dependent]; seen {
				continue
			}
			visited[dependent] = len(path) - 1
			if len(path)-1 == 1 {
				directSet[dependent] = struct{}{}
				direct = append(direct, dependent)
			} else {
				transitive = append(transitive, dependent)
			}
			queue = append(queue, queued{id: dependent, path: path})
		}
	}
	return direct, transitive, paths
}

// riskScore computes the blast-radius score and bucket for one affected
// symbol.
func (g *Graph) riskScore(id string, pathCount int) (float64, RiskBucket) {
	sym := g.store.GetSymbol(id)
	if sym == nil {
		return 0, RiskLow
	}
	pr := g.PageRank(id)
	dependentCount := len(g.store.DepsTo(id))

	score := pr * 100
	if pr > 0.01 {
		score += pr * 200
	}
	if isEntryPointFile(sym.FilePath) {
		score += 50
	}
	if sym.Exported {
		score += 30
	}
	if dependentCount > 5 {
		score += 5 * float64(dependentCount)
	}
	if pathCount > 10 {
		score += 2 * float64(pathCount)
	}

	switch {
	case score > 100:
		return score, RiskCritical
	case score > 50:
		return score, RiskHigh
	case score > 20:
		return score, RiskMedium
	default:
		return score, RiskLow
	}
}

// topologicalOrder is a Kahn topological sort of affected restricted to
// edges whose both endpoints are in affected.
func (g *Graph) topologicalOrder(affected map[string]struct{}) []string {
	indeg := make(map[string]int, len(affected))
	adj := make(map[string][]string, len(affected))
	for id := range affected {
		indeg[id] = 0
	}
	for id := range affected {
		for _, to := range g.store.DepsFrom(id) {
			if _, ok := affected[to]; !ok {
				continue
			}
			// to is a dependency of id, so to must come first in the
			// suggested order: edge to -> id (to unblocks id).
			adj[to] = append(adj[to], id)
			indeg[id]++
		}
	}

	var queue []string
	for id := range affected {
		if indeg[id] == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	var order []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)

		var freed []string
		for _, n := range adj[cur] {
			indeg[n]--
			if indeg[n] == 0 {
				freed = append(freed, n)
			}
		}
		sort.Strings(freed)
		queue = append(queue, freed...)
	}
	return order
}
