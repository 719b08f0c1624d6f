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

// Package extractor orchestrates the Language Parsers over a batch of
// files: it routes each file to a parser, assigns canonical
// symbol IDs, resolves name-based parent references, normalises import
// edges, deduplicates across the batch, and reports progress.
package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	cgerrors "github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/pkg/parser"
	"github.com/kraklabs/codegraph/pkg/types"
)

// Config tunes batching and concurrency.
type Config struct {
	// BatchSize is the number of files grouped into one progress-reporting unit.
	BatchSize int
	// MaxConcurrency bounds in-flight file-processing tasks within a batch.
	MaxConcurrency int
}

// DefaultConfig sizes the parse worker pool and batch length for a
// parse-only pipeline.
func DefaultConfig() Config {
	return Config{BatchSize: 50, MaxConcurrency: 8}
}

// Progress is emitted after every batch.
type Progress struct {
	FilesProcessed    int
	TotalFiles        int
	SymbolsFound      int
	DependenciesFound int
	Errors            int
}

// FileError records a per-file parse failure. Parsers themselves never
// return an error (they degrade to partial results), so in practice this is
// populated only by read failures.
type FileError struct {
	Path string
	Err  error
}

// Result is the Extractor's output: a deduplicated, ID-normalised batch
// ready for the Resolver and Store.
type Result struct {
	Symbols []types.Symbol
	Edges   []types.Edge
	Errors  []FileError
}

// Extractor runs Language Parsers over a file set.
type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an Extractor. A nil logger falls back to slog.Default.
func New(cfg Config, logger *slog.Logger) *Extractor {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultConfig().MaxConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cfg: cfg, logger: logger}
}

// ProgressFunc receives one Progress report per completed batch.
type ProgressFunc func(Progress)

// fileOutcome is one file's normalised contribution before batch-wide dedup.
type fileOutcome struct {
	path    string
	symbols []types.Symbol
	edges   []types.Edge
	err     error
}

// ExtractBatch parses every file in paths (absolute filesystem paths),
// normalises and deduplicates the results, and reports progress after each
// internal batch of cfg.BatchSize files.
func (e *Extractor) ExtractBatch(ctx context.Context, paths []string, progress ProgressFunc) (*Result, error) {
	symbolsByID := make(map[string]*types.Symbol)
	edgeSeen := make(map[string]struct{})
	var edges []types.Edge
	var fileErrors []FileError

	var processed int
	for start := 0; start < len(paths); start += e.cfg.BatchSize {
		end := start + e.cfg.BatchSize
		if end > len(paths) {
			end = len(paths)
		}
		batch := paths[start:end]

		outcomes := e.runBatch(ctx, batch)
		for _, o := range outcomes {
			processed++
			if o.err != nil {
				fileErrors = append(fileErrors, FileError{Path: o.path, Err: o.err})
				e.logger.Warn("extractor.file.error", "path", o.path, "err", o.err)
				continue
			}
			for i := range o.symbols {
				sym := o.symbols[i]
				symbolsByID[sym.ID] = &sym
			}
			for _, edge := range o.edges {
				key := string(edge.Type) + "\x00" + edge.From + "\x00" + edge.To
				if _, dup := edgeSeen[key]; dup {
					continue
				}
				edgeSeen[key] = struct{}{}
				edges = append(edges, edge)
			}
		}

		if progress != nil {
			progress(Progress{
				FilesProcessed:    processed,
				TotalFiles:        len(paths),
				SymbolsFound:      len(symbolsByID),
				DependenciesFound: len(edges),
				Errors:            len(fileErrors),
			})
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
	}

	symbols := make([]types.Symbol, 0, len(symbolsByID))
	for _, sym := range symbolsByID {
		symbols = append(symbols, *sym)
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i].ID < symbols[j].ID })

	return &Result{Symbols: symbols, Edges: edges, Errors: fileErrors}, nil
}

// runBatch parses every file in batch concurrently, bounded by
// cfg.MaxConcurrency.
func (e *Extractor) runBatch(ctx context.Context, batch []string) []fileOutcome {
	outcomes := make([]fileOutcome, len(batch))
	sem := semaphore.NewWeighted(int64(e.cfg.MaxConcurrency))
	var wg sync.WaitGroup

	for i, path := range batch {
		if err := sem.Acquire(ctx, 1); err != nil {
			outcomes[i] = fileOutcome{path: path, err: err}
			continue
		}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer sem.Release(1)
			outcomes[i] = e.processFile(path)
		}(i, path)
	}

	wg.Wait()
	return outcomes
}

// processFile routes path to its language parser, reads its content, and
// normalises the raw parse result into canonical symbols and edges.
func (e *Extractor) processFile(path string) fileOutcome {
	p := parser.ForPath(path)
	if p == nil {
		return fileOutcome{path: path}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Deleted between scan and parse: recorded and skipped, never a
			// crash.
			return fileOutcome{path: path, err: cgerrors.NewDeletedTarget(
				"File disappeared before parsing", fmt.Sprintf("read %s: %v", path, err), err)}
		}
		return fileOutcome{path: path, err: cgerrors.NewParseFailure(
			"Cannot read file", fmt.Sprintf("read %s: %v", path, err), err)}
	}

	raw := p.Parse(content)
	symbols := normalizeSymbols(path, p.Language(), raw.Symbols)
	edges := normalizeImports(path, raw.Imports)

	return fileOutcome{path: path, symbols: symbols, edges: edges}
}
