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

package store

import "strconv"

// pageRankBatchSize bounds how many sorted-set entries SetPageRanks rewrites
// per lock acquisition.
const pageRankBatchSize = 500

// SetPageRanks clears and rewrites the pagerank sorted set, mirroring each
// score into the corresponding symbol hash's pageRank field.
func (s *Store) SetPageRanks(scores map[string]float64) error {
	ns := s.currentNamespace()

	s.mu.Lock()
	delete(s.sortedSets, ns+":pagerank")
	s.mu.Unlock()

	ids := make([]string, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}

	for start := 0; start < len(ids); start += pageRankBatchSize {
		end := start + pageRankBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		s.mu.Lock()
		zs, ok := s.sortedSets[ns+":pagerank"]
		if !ok {
			zs = make(map[string]float64)
			s.sortedSets[ns+":pagerank"] = zs
		}
		for _, id := range ids[start:end] {
			score := scores[id]
			zs[id] = score
			if h, exists := s.hashes[ns+":"+symbolKey(id)]; exists {
				h["pageRank"] = strconv.FormatFloat(score, 'g', -1, 64)
			}
		}
		s.mu.Unlock()
	}

	return s.maybeFlush()
}

// TopSymbolsByPageRank returns the topN (symbol, score) entries ordered by
// descending PageRank.
func (s *Store) TopSymbolsByPageRank(topN int) []SortedSetEntry {
	return s.SortedSetTopN("pagerank", topN)
}
