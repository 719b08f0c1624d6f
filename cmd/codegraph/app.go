// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/kraklabs/codegraph/internal/config"
	"github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/pkg/extractor"
	"github.com/kraklabs/codegraph/pkg/gitmeta"
	"github.com/kraklabs/codegraph/pkg/graph"
	"github.com/kraklabs/codegraph/pkg/indexer"
	"github.com/kraklabs/codegraph/pkg/queryapi"
	"github.com/kraklabs/codegraph/pkg/scanner"
	"github.com/kraklabs/codegraph/pkg/store"
)

// projectRoot resolves the root a command operates against: globals.ConfigPath
// if set, otherwise the current working directory.
func projectRoot(globals GlobalFlags) string {
	if globals.ConfigPath != "" {
		return globals.ConfigPath
	}
	cwd, err := os.Getwd()
	if err != nil {
		errors.FatalError(errors.NewInternalError(
			"Cannot determine current directory", err.Error(),
			"Pass --config <project-root> explicitly", err), globals.JSON)
	}
	return cwd
}

// openAPI loads the project configuration, opens its store, and binds a
// queryapi.API to it. Callers are responsible for closing the returned
// store when done (deferred by every command that calls this).
func openAPI(root string, jsonOut bool) (*queryapi.API, *store.Store, *config.Config) {
	cfg, err := config.Load(root)
	if err != nil {
		errors.FatalError(err, jsonOut)
	}

	s, err := store.Open(store.Config{KeyPrefix: cfg.Store.KeyPrefix, DataDir: cfg.Store.DataDir})
	if err != nil {
		errors.FatalError(errors.AsUser(err, "Cannot open codegraph store",
			fmt.Sprintf("Check permissions on %s", cfg.Store.DataDir)), jsonOut)
	}

	icfg := indexerConfig(cfg)
	logger := slog.Default()
	api := queryapi.New(s, root, icfg, logger)
	return api, s, cfg
}

// indexerConfig bridges the on-disk Config into the typed Config each
// pipeline phase takes directly.
func indexerConfig(cfg *config.Config) indexer.Config {
	return indexer.Config{
		Scanner: scanner.Config{
			Include:     cfg.Indexer.Include,
			Exclude:     cfg.Indexer.Exclude,
			MaxFileSize: cfg.Indexer.MaxFileSize,
		},
		Extractor: extractor.DefaultConfig(),
		PageRank: graph.PageRankConfig{
			Damping:    cfg.PageRank.Damping,
			Tolerance:  cfg.PageRank.Tolerance,
			Iterations: cfg.PageRank.Iterations,
		},
		Git: gitmeta.Config{
			Enabled:          cfg.Git.Enabled,
			HistoryDepth:     cfg.Git.HistoryDepth,
			SampleWindowDays: cfg.Git.SampleWindowDays,
			GitBinary:        cfg.Git.GitBinary,
		},
		WatcherEnabled: cfg.Watcher.Enabled,
		DebounceMs:     cfg.Watcher.DebounceMs,
	}
}
