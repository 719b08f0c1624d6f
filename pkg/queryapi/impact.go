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
	"github.com/kraklabs/codegraph/pkg/graph"
	"github.com/kraklabs/codegraph/pkg/types"
)

// ImpactOptions narrows a GetImpact call.
type ImpactOptions struct {
	UnstableOnly       bool
	StabilityThreshold float64
	IncludeGit         bool
}

// ImpactReport is GetImpact's return shape: the graph's impact sweep plus,
// when IncludeGit was set, the stored git metadata of every affected symbol
// keyed by symbol ID.
type ImpactReport struct {
	graph.ImpactResult
	Git map[string]*types.GitMeta `json:"git,omitempty"`
}

// GetImpact runs the four-step impact sweep seeded with every
// symbol declared in files. UnstableOnly restricts HighRisk to symbols
// whose stored GitMeta.StabilityScore falls below StabilityThreshold.
// IncludeGit attaches the indexed git metadata of each affected symbol.
func (a *API) GetImpact(files []string, opts ImpactOptions) ImpactReport {
	var edited []string
	for _, f := range files {
		edited = append(edited, a.store.SymbolsByFile(f)...)
	}

	g := graph.New(a.store)
	result := g.AnalyzeImpact(edited)

	if opts.UnstableOnly {
		var filtered []graph.AffectedSymbol
		for _, s := range result.HighRisk {
			sym := a.store.GetSymbol(s.SymbolID)
			if sym == nil {
				continue
			}
			if sym.GitMeta == nil || sym.GitMeta.StabilityScore < opts.StabilityThreshold {
				filtered = append(filtered, s)
			}
		}
		result.HighRisk = filtered
	}

	report := ImpactReport{ImpactResult: result}
	if opts.IncludeGit {
		affected := append(append([]string{}, result.DirectlyAffected...), result.TransitivelyAffected...)
		report.Git = a.gitMetaFor(affected)
	}
	return report
}
