// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/internal/output"
	"github.com/kraklabs/codegraph/internal/ui"
	"github.com/kraklabs/codegraph/pkg/extractor"
	"github.com/kraklabs/codegraph/pkg/indexer"
)

// runIndex executes the 'index' CLI command: runs the full pipeline
// (scan/extract/resolve/persist/pagerank) once over the project root
// through pkg/indexer.IndexProject.
func runIndex(args []string, globals GlobalFlags) {
	fs := newFlagSet("index")
	full := fs.Bool("full", false, "Force a full re-index, ignoring file tracking state")
	watch := fs.Bool("watch", false, "Start the filesystem watcher after indexing completes")
	sinceBase := fs.String("since-base", "", "Base commit SHA for a git delta-based re-scan (requires --since-head)")
	sinceHead := fs.String("since-head", "", "Head commit SHA for a git delta-based re-scan (requires --since-base)")
	_ = fs.Parse(args)

	root := projectRoot(globals)
	api, s, _ := openAPI(root, globals.JSON)
	defer func() { _ = s.Close() }()

	progressCfg := NewProgressConfig(globals)
	var bar *progressWrapper
	progressFn := func(p extractor.Progress) {
		if bar == nil {
			bar = newProgressWrapper(progressCfg, int64(p.TotalFiles))
		}
		bar.set(int64(p.FilesProcessed), fmt.Sprintf("indexing (%d symbols, %d deps)", p.SymbolsFound, p.DependenciesFound))
	}

	var result *indexer.Result
	var err error
	switch {
	case *sinceBase != "" || *sinceHead != "":
		if *sinceBase == "" || *sinceHead == "" {
			errors.FatalError(errors.NewInputError(
				"Both --since-base and --since-head are required together",
				"only one of the two flags was set",
				"Pass both, e.g. --since-base abc123 --since-head def456"), globals.JSON)
		}
		result, err = api.IndexProjectSince(context.Background(), *sinceBase, *sinceHead, progressFn)
	default:
		opts := indexer.Options{
			Force:        *full,
			Incremental:  !*full,
			StartWatcher: *watch,
		}
		result, err = api.IndexProject(context.Background(), opts, progressFn)
	}
	if bar != nil {
		bar.finish()
	}
	if err != nil {
		// AsUser keeps the pipeline's kinded errors (lock contention, store
		// IO, git unavailable) and their exit codes intact.
		errors.FatalError(errors.AsUser(err, "Indexing failed",
			"Check file permissions and that the project root is readable"), globals.JSON)
	}

	if globals.JSON {
		if err := output.JSON(result); err != nil {
			errors.FatalError(errors.NewInternalError("Cannot encode result", err.Error(), "", err), true)
		}
		return
	}

	printIndexResult(result)
}

func printIndexResult(result *indexer.Result) {
	ui.Header("Index complete")
	kind := "incremental"
	if !result.Incremental {
		kind = "full"
	}
	fmt.Printf("  mode:           %s\n", kind)
	fmt.Printf("  files scanned:  %d\n", result.FilesScanned)
	fmt.Printf("  files changed:  %d\n", result.FilesChanged)
	fmt.Printf("  files deleted:  %d\n", result.FilesDeleted)
	fmt.Printf("  symbols:        %d\n", result.Stats.Symbols)
	fmt.Printf("  edges:          %d\n", result.Stats.Edges)
	if result.WatcherStarted {
		fmt.Println("  watcher:        started")
	}
	if len(result.Errors) > 0 {
		ui.Warning(fmt.Sprintf("%d file(s) failed to parse:", len(result.Errors)))
		for _, fe := range result.Errors {
			fmt.Printf("    %s: %v\n", fe.Path, fe.Err)
		}
	} else {
		ui.Success("No parse errors.")
	}
}

// progressWrapper wraps a possibly-nil progressbar so callers can invoke
// set/finish unconditionally instead of nil-checking at every call site.
type progressWrapper struct {
	bar interface {
		Describe(string)
		Set64(int64) error
		Finish() error
	}
}

func newProgressWrapper(cfg ProgressConfig, total int64) *progressWrapper {
	bar := NewProgressBar(cfg, total, "indexing")
	if bar == nil {
		return &progressWrapper{}
	}
	return &progressWrapper{bar: bar}
}

func (p *progressWrapper) set(n int64, desc string) {
	if p.bar == nil {
		return
	}
	p.bar.Describe(desc)
	_ = p.bar.Set64(n)
}

func (p *progressWrapper) finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
