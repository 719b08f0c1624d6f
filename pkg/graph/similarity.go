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
	"fmt"
	"sort"

	"github.com/hbollon/go-edlib"
)

// SimilarSymbol is one scored match returned by FindSimilar.
type SimilarSymbol struct {
	SymbolID string
	Score    float64
	Reason   string
}

const similarityThreshold = 0.3

// FindSimilar scores every other symbol against target and returns the
// top K above the 0.3 threshold.
func (g *Graph) FindSimilar(targetID string, topK int) []SimilarSymbol {
	target := g.store.GetSymbol(targetID)
	if target == nil {
		return nil
	}

	var matches []SimilarSymbol
	for _, sym := range g.store.AllSymbols() {
		if sym.ID == target.ID {
			continue
		}

		score := 0.0
		var reasons []string

		if sym.Kind == target.Kind {
			score += 0.3
			reasons = append(reasons, "same kind")
		}
		if sym.Language == target.Language {
			score += 0.2
			reasons = append(reasons, "same language")
		}
		if nameSim, ok := nameSimilarity(target.Name, sym.Name); ok {
			score += nameSim * 0.3
			reasons = append(reasons, fmt.Sprintf("similar name (%.0f%%)", nameSim*100))
		}
		if sym.FilePath == target.FilePath {
			score += 0.2
			reasons = append(reasons, "same file")
		}

		if score > similarityThreshold {
			matches = append(matches, SimilarSymbol{SymbolID: sym.ID, Score: score, Reason: joinReasons(reasons)})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if topK > 0 && topK < len(matches) {
		matches = matches[:topK]
	}
	return matches
}

// nameSimilarity computes 1 - Levenshtein/max-length via go-edlib. Scores
// at or below 0.5 do not contribute.
func nameSimilarity(a, b string) (float64, bool) {
	if a == "" || b == "" {
		return 0, false
	}
	// edlib already normalizes: its Levenshtein similarity is
	// 1 - distance/max-length.
	sim, err := edlib.StringsSimilarity(a, b, edlib.Levenshtein)
	if err != nil || float64(sim) <= 0.5 {
		return 0, false
	}
	return float64(sim), true
}

func joinReasons(reasons []string) string {
	out := ""
	for i, r := range reasons {
		if i > 0 {
			out += ", "
		}
		out += r
	}
	return out
}
