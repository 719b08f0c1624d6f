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
	"github.com/kraklabs/codegraph/pkg/resolver"
	"github.com/kraklabs/codegraph/pkg/types"
)

// GetDependencies returns target's {direct, transitive, impactCount} up to
// depth hops over deps:from, optionally restricted to edgeTypes. A nil or
// empty edgeTypes matches every edge type.
func (a *API) GetDependencies(target string, depth int, edgeTypes []types.EdgeType) resolver.DependencyReport {
	r := resolver.New(a.store)
	var allowed map[types.EdgeType]bool
	if len(edgeTypes) > 0 {
		allowed = make(map[types.EdgeType]bool, len(edgeTypes))
		for _, t := range edgeTypes {
			allowed[t] = true
		}
	}
	return r.GetDependencies(target, depth, allowed)
}

// DependentsOptions narrows a GetDependents call.
type DependentsOptions struct {
	UnstableOnly       bool
	StabilityThreshold float64
	IncludeGit         bool
}

// DependentsResult is GetDependents' return shape: the base dependency
// report, whether the stability filter was applied to it, and, when
// IncludeGit was set, the stored git metadata of every reported dependent
// keyed by symbol ID.
type DependentsResult struct {
	resolver.DependencyReport
	FilteredByStability bool
	Git                 map[string]*types.GitMeta `json:"git,omitempty"`
}

// GetDependents returns target's {direct, transitive, impactCount} up to
// depth hops over deps:to. When UnstableOnly is set, both lists are
// restricted to dependents whose stored GitMeta.StabilityScore falls below
// StabilityThreshold (symbols with no GitMeta, e.g. git disabled, are kept —
// stability is unknown, not assumed stable). IncludeGit attaches the indexed
// git metadata of each reported dependent.
func (a *API) GetDependents(target string, depth int, opts DependentsOptions) DependentsResult {
	r := resolver.New(a.store)
	report := r.GetDependents(target, depth)

	result := DependentsResult{DependencyReport: report}
	if opts.UnstableOnly {
		result.Direct = a.filterUnstable(report.Direct, opts.StabilityThreshold)
		result.Transitive = a.filterUnstable(report.Transitive, opts.StabilityThreshold)
		result.ImpactCount = len(result.Direct) + len(result.Transitive)
		result.FilteredByStability = true
	}
	if opts.IncludeGit {
		result.Git = a.gitMetaFor(append(append([]string{}, result.Direct...), result.Transitive...))
	}
	return result
}

// gitMetaFor collects the stored git metadata snapshots for ids. IDs whose
// symbol is gone or carries no metadata are simply absent from the map.
func (a *API) gitMetaFor(ids []string) map[string]*types.GitMeta {
	out := make(map[string]*types.GitMeta)
	for _, id := range ids {
		if sym := a.store.GetSymbol(id); sym != nil && sym.GitMeta != nil {
			out[id] = sym.GitMeta
		}
	}
	return out
}

func (a *API) filterUnstable(ids []string, threshold float64) []string {
	var out []string
	for _, id := range ids {
		sym := a.store.GetSymbol(id)
		if sym == nil {
			continue
		}
		if sym.GitMeta == nil || sym.GitMeta.StabilityScore < threshold {
			out = append(out, id)
		}
	}
	return out
}
