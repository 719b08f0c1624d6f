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

package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kraklabs/codegraph/pkg/extractor"
	"github.com/kraklabs/codegraph/pkg/gitmeta"
	"github.com/kraklabs/codegraph/pkg/graph"
	"github.com/kraklabs/codegraph/pkg/resolver"
	"github.com/kraklabs/codegraph/pkg/scanner"
	"github.com/kraklabs/codegraph/pkg/types"
	"github.com/kraklabs/codegraph/pkg/watcher"
)

// StartWatching starts a filesystem watcher over root and runs it in a
// background goroutine until ctx is cancelled. Each debounced
// event is applied directly against the store; the batch callback is a
// no-op hook point for external subscribers, left as a logged event here
// since this package has no external subscriber protocol of its own.
func (ix *Indexer) StartWatching(ctx context.Context, root string) (*watcher.Watcher, error) {
	w, err := watcher.New(watcher.Config{DebounceMs: ix.cfg.DebounceMs}, ix.cfg.Scanner, root,
		func(e watcher.Event) { ix.applyWatchEvent(root, e) },
		func(events []watcher.Event) {
			ix.logger.Info("watcher.batch", "count", len(events))
		},
		ix.logger,
	)
	if err != nil {
		return nil, fmt.Errorf("start watcher: %w", err)
	}
	go w.Run(ctx)
	return w, nil
}

// applyWatchEvent applies one debounced watch event: delete removes
// symbols and tracking; add/change recomputes the hash, skips if unchanged,
// otherwise parses, replaces, stores, and updates tracking.
func (ix *Indexer) applyWatchEvent(root string, e watcher.Event) {
	ix.store.SetProjectContext(root)

	if e.Type == watcher.EventDelete {
		ix.removeFile(e.Path)
		return
	}

	abs := filepath.Join(root, e.Path)
	hash, err := fileHash(abs)
	if err != nil {
		ix.logger.Warn("watcher.hash.error", "path", e.Path, "err", err)
		return
	}

	if prior := ix.store.GetFileTracking(e.Path); prior != nil && prior.Hash == hash {
		return // unchanged content, e.g. a touch with no content write
	}

	if err := ix.reindexSingleFile(root, e.Path, abs, hash); err != nil {
		ix.logger.Warn("watcher.reindex.error", "path", e.Path, "err", err)
	}
}

func (ix *Indexer) reindexSingleFile(root, rel, abs, hash string) error {
	ix.removeFile(rel)

	ext := extractor.New(ix.cfg.Extractor, ix.logger)
	extractResult, err := ext.ExtractBatch(context.Background(), []string{abs}, nil)
	if err != nil {
		return fmt.Errorf("extract %s: %w", rel, err)
	}

	relativizeFilePaths(extractResult.Symbols, root)

	gp := gitmeta.New(ix.cfg.Git, root, ix.logger)
	attachGitMetadata(extractResult.Symbols, gp)

	for _, sym := range extractResult.Symbols {
		symCopy := sym
		if err := ix.store.PutSymbol(&symCopy); err != nil {
			return fmt.Errorf("put symbol %s: %w", sym.ID, err)
		}
	}

	res := resolver.New(ix.store)
	for _, edge := range res.Resolve(extractResult.Symbols, extractResult.Edges) {
		if err := ix.store.AddEdge(edge); err != nil {
			return fmt.Errorf("add edge %s->%s: %w", edge.From, edge.To, err)
		}
	}

	info, statErr := os.Stat(abs)
	mtime := int64(0)
	if statErr == nil {
		mtime = info.ModTime().Unix()
	}
	if err := ix.store.PutFileTracking(rel, types.FileTracking{MTime: mtime, Hash: hash}); err != nil {
		return fmt.Errorf("put file tracking %s: %w", rel, err)
	}

	g := graph.New(ix.store)
	return g.ComputePageRank(ix.cfg.PageRank)
}

// fileHash computes scanner.HashFile's digest for a single absolute path.
func fileHash(abs string) (string, error) {
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	return scanner.HashFile(abs, info.Size(), info.ModTime().Unix(), func() ([]byte, error) {
		return os.ReadFile(abs)
	})
}
