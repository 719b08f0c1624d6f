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

// Package indexer implements the top-level indexing pipeline:
// scan -> extract -> resolve -> persist -> PageRank -> metadata, guarded by
// a single named project lock, with incremental or full re-indexing.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	cgerrors "github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/pkg/extractor"
	"github.com/kraklabs/codegraph/pkg/gitmeta"
	"github.com/kraklabs/codegraph/pkg/graph"
	"github.com/kraklabs/codegraph/pkg/metrics"
	"github.com/kraklabs/codegraph/pkg/resolver"
	"github.com/kraklabs/codegraph/pkg/scanner"
	"github.com/kraklabs/codegraph/pkg/store"
	"github.com/kraklabs/codegraph/pkg/types"
)

// lockTTL bounds how long a crashed indexing run can hold the project lock.
const lockTTL = 10 * time.Minute

const indexingLockName = "indexing"

// Options controls one indexProject invocation.
type Options struct {
	// Force re-processes every scanned file regardless of tracking state.
	Force bool
	// Incremental requests change-only reprocessing when prior tracking
	// state exists; ignored (treated as full) when Force is set or no
	// tracking state exists yet.
	Incremental bool
	// StartWatcher starts the filesystem watcher after a successful full
	// (non-incremental) run, iff the watcher is enabled in Config.
	StartWatcher bool
}

// Config wires every tunable the pipeline phases need.
type Config struct {
	Scanner        scanner.Config
	Extractor      extractor.Config
	PageRank       graph.PageRankConfig
	Git            gitmeta.Config
	WatcherEnabled bool
	DebounceMs     int
}

// DefaultConfig composes each phase's own defaults.
func DefaultConfig() Config {
	return Config{
		Scanner:        scanner.DefaultConfig(),
		Extractor:      extractor.DefaultConfig(),
		PageRank:       graph.DefaultPageRankConfig(),
		Git:            gitmeta.DefaultConfig(),
		WatcherEnabled: true,
		DebounceMs:     500,
	}
}

// Result summarizes one indexProject run. Progress and error records from
// the extractor are forwarded to callers verbatim.
type Result struct {
	Incremental    bool
	FilesScanned   int
	FilesChanged   int
	FilesDeleted   int
	Errors         []extractor.FileError
	Stats          types.ProjectStats
	WatcherStarted bool
}

// Indexer runs indexProject against a Store.
type Indexer struct {
	store  *store.Store
	cfg    Config
	logger *slog.Logger
}

// New creates an Indexer bound to a Store. A nil logger falls back to
// slog.Default().
func New(s *store.Store, cfg Config, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	metrics.Init()
	return &Indexer{store: s, cfg: cfg, logger: logger}
}

// ProgressFunc receives extractor progress forwarded verbatim.
type ProgressFunc func(extractor.Progress)

// IndexProject runs the full indexing pipeline against root. The lock is
// always released, including on error.
func (ix *Indexer) IndexProject(ctx context.Context, root string, opts Options, progress ProgressFunc) (*Result, error) {
	ix.store.SetProjectContext(root)

	token, ok := ix.store.AcquireLock(indexingLockName, lockTTL)
	if !ok {
		metrics.Default.LockContended.Inc()
		return nil, cgerrors.NewLockContention(
			"Indexing already in progress",
			fmt.Sprintf("the %q lock for %s is held by another writer", indexingLockName, root),
			"Wait for the other indexing run to finish (the lock expires after its TTL)")
	}

	result, err := ix.runLocked(ctx, root, opts, progress)
	ix.store.ReleaseLock(indexingLockName, token)
	if err != nil {
		return nil, err
	}

	if opts.StartWatcher && ix.cfg.WatcherEnabled && !result.Incremental {
		if _, werr := ix.StartWatching(ctx, root); werr != nil {
			ix.logger.Warn("indexer.watcher.start_error", "err", werr)
		} else {
			result.WatcherStarted = true
		}
	}

	return result, nil
}

func (ix *Indexer) runLocked(ctx context.Context, root string, opts Options, progress ProgressFunc) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("indexProject panic: %v", r)
		}
	}()

	tracked := ix.store.AllTrackedFiles()
	incremental := opts.Incremental && !opts.Force && len(tracked) > 0

	sc := scanner.New(ix.cfg.Scanner, ix.logger)
	var scanTracked map[string]types.FileTracking
	if incremental {
		scanTracked = tracked
	}
	scanStart := time.Now()
	scanResult, err := sc.Scan(root, scanTracked)
	metrics.Default.ScanDuration.Observe(time.Since(scanStart).Seconds())
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	metrics.Default.FilesScanned.Add(float64(len(scanResult.Files)))

	filesToProcess := scanResult.Files
	if incremental {
		filesToProcess = scanResult.Changed
	}

	result, err = ix.processFiles(ctx, root, filesToProcess, scanResult.Deleted, progress)
	if err != nil {
		return nil, err
	}
	result.Incremental = incremental
	result.FilesScanned = len(scanResult.Files)
	return result, nil
}

// processFiles applies the shared put-symbols/resolve/track/pagerank/
// metadata tail of the pipeline to an already
// computed set of changed and deleted project-relative paths. Both the
// mtime-tracked scan path (runLocked) and the git-delta path
// (runLockedSince) funnel through here so the two entry points stay in
// lockstep on every step after "which files changed".
func (ix *Indexer) processFiles(ctx context.Context, root string, filesToProcess, deleted []string, progress ProgressFunc) (*Result, error) {
	metrics.Default.FilesDeleted.Add(float64(len(deleted)))
	for _, rel := range deleted {
		ix.removeFile(rel)
	}

	absPaths := make([]string, len(filesToProcess))
	for i, rel := range filesToProcess {
		absPaths[i] = filepath.Join(root, rel)
	}

	metrics.Default.FilesChanged.Add(float64(len(filesToProcess)))

	ext := extractor.New(ix.cfg.Extractor, ix.logger)
	extractStart := time.Now()
	extractResult, err := ext.ExtractBatch(ctx, absPaths, func(p extractor.Progress) {
		if progress != nil {
			progress(p)
		}
	})
	metrics.Default.ExtractDuration.Observe(time.Since(extractStart).Seconds())
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	metrics.Default.ParseErrors.Add(float64(len(extractResult.Errors)))

	relativizeFilePaths(extractResult.Symbols, root)

	gp := gitmeta.New(ix.cfg.Git, root, ix.logger)
	attachGitMetadata(extractResult.Symbols, gp)

	for _, rel := range filesToProcess {
		ix.removeFile(rel)
	}
	for _, sym := range extractResult.Symbols {
		symCopy := sym
		if err := ix.store.PutSymbol(&symCopy); err != nil {
			return nil, cgerrors.NewStoreIO(
				"Cannot persist symbol", fmt.Sprintf("put %s: %v", sym.ID, err),
				"Re-run the index; the batch is retried wholesale", err)
		}
	}
	metrics.Default.SymbolsAdded.Add(float64(len(extractResult.Symbols)))

	resolveStart := time.Now()
	res := resolver.New(ix.store)
	resolvedEdges := res.Resolve(extractResult.Symbols, extractResult.Edges)
	for _, edge := range resolvedEdges {
		if err := ix.store.AddEdge(edge); err != nil {
			return nil, cgerrors.NewStoreIO(
				"Cannot persist dependency edge",
				fmt.Sprintf("add %s -> %s: %v", edge.From, edge.To, err),
				"Re-run the index; the batch is retried wholesale", err)
		}
	}
	metrics.Default.ResolveDuration.Observe(time.Since(resolveStart).Seconds())
	metrics.Default.EdgesAdded.Add(float64(len(resolvedEdges)))

	for _, rel := range filesToProcess {
		abs := filepath.Join(root, rel)
		hash, hashErr := fileHash(abs)
		if hashErr != nil {
			ix.logger.Warn("indexer.hash.error", "path", rel, "err", hashErr)
			continue
		}
		mtime := time.Now().Unix()
		if info, statErr := os.Stat(abs); statErr == nil {
			mtime = info.ModTime().Unix()
		}
		if err := ix.store.PutFileTracking(rel, types.FileTracking{MTime: mtime, Hash: hash}); err != nil {
			return nil, fmt.Errorf("put file tracking %s: %w", rel, err)
		}
	}

	g := graph.New(ix.store)
	pagerankStart := time.Now()
	if err := g.ComputePageRank(ix.cfg.PageRank); err != nil {
		return nil, fmt.Errorf("compute pagerank: %w", err)
	}
	metrics.Default.PageRankDuration.Observe(time.Since(pagerankStart).Seconds())

	stats := ix.computeStats(root)
	if err := ix.store.PutProjectMetadata(types.ProjectMetadata{
		Root:      root,
		IndexedAt: time.Now().Unix(),
		Stats:     stats,
	}); err != nil {
		return nil, fmt.Errorf("put project metadata: %w", err)
	}

	return &Result{
		FilesChanged: len(filesToProcess),
		FilesDeleted: len(deleted),
		Errors:       extractResult.Errors,
		Stats:        stats,
	}, nil
}

// removeFile removes every symbol indexed under rel and its tracking
// record.
func (ix *Indexer) removeFile(rel string) {
	for _, id := range ix.store.SymbolsByFile(rel) {
		if err := ix.store.RemoveSymbol(id); err != nil {
			ix.logger.Warn("indexer.remove_symbol.error", "id", id, "err", err)
		}
	}
	if err := ix.store.DeleteFileTracking(rel); err != nil {
		ix.logger.Warn("indexer.delete_tracking.error", "path", rel, "err", err)
	}
}

// relativizeFilePaths rewrites each symbol's FilePath from the absolute disk
// path the extractor parsed into the project-relative, slash-normalised form
// the Store, Scanner, and FileTracking all key on.
func relativizeFilePaths(symbols []types.Symbol, root string) {
	for i := range symbols {
		rel, err := filepath.Rel(root, symbols[i].FilePath)
		if err != nil {
			continue
		}
		symbols[i].FilePath = filepath.ToSlash(rel)
	}
}

// attachGitMetadata copies one Git provider lookup per distinct filepath
// onto every symbol of that file. Symbols must already
// have project-relative FilePath values (see relativizeFilePaths).
func attachGitMetadata(symbols []types.Symbol, gp *gitmeta.Provider) {
	cache := make(map[string]*types.GitMeta)
	for i := range symbols {
		rel := symbols[i].FilePath
		meta, ok := cache[rel]
		if !ok {
			meta = gp.ForFile(rel)
			cache[rel] = meta
		}
		symbols[i].GitMeta = meta
	}
}

func (ix *Indexer) computeStats(root string) types.ProjectStats {
	ids := ix.store.AllSymbolIDs()
	files := make(map[string]struct{})
	edges := 0
	for _, id := range ids {
		edges += len(ix.store.DepsFrom(id))
		if sym := ix.store.GetSymbol(id); sym != nil {
			files[sym.FilePath] = struct{}{}
		}
	}
	return types.ProjectStats{Files: len(files), Symbols: len(ids), Edges: edges}
}
