// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics exposes Prometheus counters and histograms for the
// indexing pipeline: files scanned, changed,
// and deleted; symbols and edges added; parse errors; lock contentions;
// and phase-duration histograms for scan/extract/resolve/pagerank. The
// package-level registry is lazily built exactly once, mirroring
// pkg/ingestion/metrics.go's sync.Once-guarded init.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline holds every metric the indexing pipeline records.
type Pipeline struct {
	once sync.Once

	FilesScanned  prometheus.Counter
	FilesChanged  prometheus.Counter
	FilesDeleted  prometheus.Counter
	SymbolsAdded  prometheus.Counter
	EdgesAdded    prometheus.Counter
	ParseErrors   prometheus.Counter
	LockContended prometheus.Counter

	ScanDuration     prometheus.Histogram
	ExtractDuration  prometheus.Histogram
	ResolveDuration  prometheus.Histogram
	PageRankDuration prometheus.Histogram
}

// Default is the process-wide pipeline registry.
var Default Pipeline

func (m *Pipeline) init() {
	m.once.Do(func() {
		m.FilesScanned = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codegraph_files_scanned_total", Help: "Files enumerated by the scanner",
		})
		m.FilesChanged = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codegraph_files_changed_total", Help: "Files reprocessed by the extractor",
		})
		m.FilesDeleted = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codegraph_files_deleted_total", Help: "Tracked files removed since the last scan",
		})
		m.SymbolsAdded = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codegraph_symbols_added_total", Help: "Symbols written to the store",
		})
		m.EdgesAdded = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codegraph_edges_added_total", Help: "Dependency edges written to the store",
		})
		m.ParseErrors = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codegraph_parse_errors_total", Help: "Per-file parse failures",
		})
		m.LockContended = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codegraph_lock_contended_total", Help: "indexProject invocations that found the project lock held",
		})

		buckets := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
		m.ScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "codegraph_scan_seconds", Help: "Duration of the scan phase", Buckets: buckets,
		})
		m.ExtractDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "codegraph_extract_seconds", Help: "Duration of the extract phase", Buckets: buckets,
		})
		m.ResolveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "codegraph_resolve_seconds", Help: "Duration of the resolve phase", Buckets: buckets,
		})
		m.PageRankDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "codegraph_pagerank_seconds", Help: "Duration of the PageRank recomputation phase", Buckets: buckets,
		})

		prometheus.MustRegister(
			m.FilesScanned, m.FilesChanged, m.FilesDeleted,
			m.SymbolsAdded, m.EdgesAdded, m.ParseErrors, m.LockContended,
			m.ScanDuration, m.ExtractDuration, m.ResolveDuration, m.PageRankDuration,
		)
	})
}

// Init registers Default with the default Prometheus registry. It is safe
// to call more than once; registration happens at most once per process.
func Init() *Pipeline {
	Default.init()
	return &Default
}
