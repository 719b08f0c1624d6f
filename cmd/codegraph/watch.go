// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/internal/ui"
	"github.com/kraklabs/codegraph/pkg/extractor"
	"github.com/kraklabs/codegraph/pkg/indexer"
)

// runWatch executes the 'watch' CLI command: a full index followed by the
// filesystem watcher, blocking in the foreground until interrupted.
func runWatch(args []string, globals GlobalFlags) {
	fs := newFlagSet("watch")
	_ = fs.Parse(args)

	root := projectRoot(globals)
	api, s, _ := openAPI(root, globals.JSON)
	defer func() { _ = s.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	progressCfg := NewProgressConfig(globals)
	spinner := NewSpinner(progressCfg, "indexing")
	progressFn := func(p extractor.Progress) {
		if spinner != nil {
			spinner.Describe(fmt.Sprintf("indexing (%d/%d files)", p.FilesProcessed, p.TotalFiles))
			_ = spinner.Add(1)
		}
	}

	result, err := api.IndexProject(ctx, indexer.Options{Force: true, StartWatcher: true}, progressFn)
	if spinner != nil {
		_ = spinner.Finish()
	}
	if err != nil {
		errors.FatalError(errors.AsUser(err, "Initial index failed", ""), globals.JSON)
	}

	if !result.WatcherStarted {
		errors.FatalError(errors.NewConfigInvalid(
			"Watcher did not start",
			"the watcher is disabled in .codegraph/project.yaml",
			"Set watcher.enabled: true and retry", nil), globals.JSON)
	}

	ui.Success(fmt.Sprintf("Watching %s for changes (ctrl-c to stop)", root))
	<-ctx.Done()
	ui.Info("Stopping watcher.")
}
