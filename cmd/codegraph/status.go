// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/internal/output"
	"github.com/kraklabs/codegraph/internal/ui"
	"github.com/kraklabs/codegraph/pkg/queryapi"
)

// runStatus executes the status CLI command: a structural overview of the
// currently indexed project (stats, top symbols by PageRank, bottlenecks,
// dead code, cycles), driven by queryapi.GetProjectOverview.
func runStatus(args []string, globals GlobalFlags) {
	fs := newFlagSet("status")
	topN := fs.Int("top", 10, "Number of top symbols by PageRank to show")
	includeGit := fs.Bool("git", true, "Include git metadata on reported symbols")
	_ = fs.Parse(args)

	root := projectRoot(globals)
	api, s, _ := openAPI(root, globals.JSON)
	defer func() { _ = s.Close() }()

	overview := api.GetProjectOverview(queryapi.OverviewOptions{TopN: *topN, IncludeGit: *includeGit})

	if globals.JSON {
		if err := output.JSON(overview); err != nil {
			errors.FatalError(errors.NewInternalError("Cannot encode overview", err.Error(), "", err), true)
		}
		return
	}

	printOverview(overview)
}

func printOverview(o queryapi.ProjectOverview) {
	ui.Header("Project status")
	fmt.Printf("  root:     %s\n", o.Metadata.Root)
	fmt.Printf("  indexed:  %s\n", time.Unix(o.Metadata.IndexedAt, 0).Format("2006-01-02 15:04:05"))
	fmt.Printf("  files:    %d\n", o.Metadata.Stats.Files)
	fmt.Printf("  symbols:  %d\n", o.Metadata.Stats.Symbols)
	fmt.Printf("  edges:    %d\n", o.Metadata.Stats.Edges)
	fmt.Printf("  components: %d\n", o.Components)
	fmt.Println()

	ui.SubHeader("Top symbols by PageRank")
	if len(o.TopByRank) == 0 {
		fmt.Println("  (none)")
	}
	for _, sym := range o.TopByRank {
		fmt.Printf("  %s %s  %s\n", ui.Rank(sym.PageRank), sym.Name, ui.Path(sym.FilePath))
	}
	fmt.Println()

	ui.SubHeader("Bottlenecks")
	if len(o.Bottlenecks) == 0 {
		fmt.Println("  (none)")
	}
	for _, b := range o.Bottlenecks {
		fmt.Printf("  %-8.2f %s\n", b.Score, b.SymbolID)
	}
	fmt.Println()

	ui.SubHeader("Dead code")
	if len(o.DeadCode) == 0 {
		fmt.Println("  (none)")
	}
	for _, id := range o.DeadCode {
		fmt.Printf("  %s\n", id)
	}
	fmt.Println()

	ui.SubHeader("Cycles")
	if len(o.Cycles) == 0 {
		fmt.Println("  (none)")
	}
	for _, cycle := range o.Cycles {
		fmt.Printf("  %s\n", strings.Join(cycle, " -> "))
	}
}
