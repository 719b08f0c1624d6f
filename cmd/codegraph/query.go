// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/internal/output"
	"github.com/kraklabs/codegraph/internal/ui"
	"github.com/kraklabs/codegraph/pkg/queryapi"
	"github.com/kraklabs/codegraph/pkg/types"
)

// runQuery dispatches the 'query' CLI command to one of the read-only
// queryapi.API methods via a subcommand table.
func runQuery(args []string, globals GlobalFlags) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: codegraph query <symbol|search|deps|dependents|impact|structure|similar|history> ...")
		os.Exit(1)
	}

	sub, rest := args[0], args[1:]
	root := projectRoot(globals)
	api, s, _ := openAPI(root, globals.JSON)
	defer func() { _ = s.Close() }()

	switch sub {
	case "symbol":
		queryRunSymbol(api, rest, globals)
	case "search":
		queryRunSearch(api, rest, globals)
	case "deps":
		queryRunDeps(api, rest, globals)
	case "dependents":
		queryRunDependents(api, rest, globals)
	case "impact":
		queryRunImpact(api, rest, globals)
	case "structure":
		queryRunStructure(api, rest, globals)
	case "similar":
		queryRunSimilar(api, rest, globals)
	case "history":
		queryRunHistory(api, rest, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown query subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func emit(data any, globals GlobalFlags, print func()) {
	if globals.JSON {
		if err := output.JSON(data); err != nil {
			errors.FatalError(errors.NewInternalError("Cannot encode result", err.Error(), "", err), true)
		}
		return
	}
	print()
}

func queryRunSymbol(api *queryapi.API, args []string, globals GlobalFlags) {
	fs := newFlagSet("query symbol")
	filePath := fs.String("filepath", "", "Restrict matches to this file")
	kind := fs.String("kind", "", "Restrict matches to this symbol kind")
	limit := fs.Int("limit", 20, "Maximum matches to return")
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: codegraph query symbol <name> [--filepath f] [--kind k] [--limit n]")
		os.Exit(1)
	}
	name := fs.Arg(0)

	matches := api.GetSymbol(name, queryapi.GetSymbolOptions{
		FilePath: *filePath,
		Kind:     types.Kind(*kind),
		Limit:    *limit,
	})

	emit(matches, globals, func() {
		ui.Header(fmt.Sprintf("Matches for %q", name))
		if len(matches) == 0 {
			fmt.Println("  (no matches)")
			return
		}
		for _, m := range matches {
			fmt.Printf("  [%.2f] %s (%s) %s:%d\n", m.Score, m.Symbol.Name, m.Symbol.Kind, m.Symbol.FilePath, m.Symbol.Location.Start.Line)
			if len(m.Related) > 0 {
				fmt.Printf("        related: %s\n", strings.Join(m.Related, ", "))
			}
		}
	})
}

func queryRunSearch(api *queryapi.API, args []string, globals GlobalFlags) {
	fs := newFlagSet("query search")
	kind := fs.String("kind", "", "Restrict to this symbol kind")
	exportedOnly := fs.Bool("exported", false, "Restrict to exported symbols")
	limit := fs.Int("limit", 50, "Maximum matches to return")
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: codegraph query search <pattern> [--kind k] [--exported] [--limit n]")
		os.Exit(1)
	}
	pattern := fs.Arg(0)

	results, err := api.SearchSymbols(pattern, queryapi.SearchOptions{
		Kind:         types.Kind(*kind),
		ExportedOnly: *exportedOnly,
		Limit:        *limit,
	})
	if err != nil {
		errors.FatalError(errors.NewInputError("Invalid search pattern", err.Error(), "Check the wildcard syntax"), globals.JSON)
	}

	emit(results, globals, func() {
		ui.Header(fmt.Sprintf("Search results for %q", pattern))
		if len(results) == 0 {
			fmt.Println("  (no matches)")
			return
		}
		for _, sym := range results {
			fmt.Printf("  %s (%s) %s:%d\n", sym.Name, sym.Kind, sym.FilePath, sym.Location.Start.Line)
		}
	})
}

func queryRunDeps(api *queryapi.API, args []string, globals GlobalFlags) {
	fs := newFlagSet("query deps")
	depth := fs.Int("depth", 0, "Hop limit (0 = unbounded)")
	edgeType := fs.String("type", "", "Restrict to this edge type")
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: codegraph query deps <symbol-id> [--depth n] [--type t]")
		os.Exit(1)
	}
	target := fs.Arg(0)

	var types_ []types.EdgeType
	if *edgeType != "" {
		types_ = []types.EdgeType{types.EdgeType(*edgeType)}
	}

	report := api.GetDependencies(target, *depth, types_)
	printDependencyReport(report, globals, "Dependencies of", target)
}

func queryRunDependents(api *queryapi.API, args []string, globals GlobalFlags) {
	fs := newFlagSet("query dependents")
	depth := fs.Int("depth", 0, "Hop limit (0 = unbounded)")
	unstableOnly := fs.Bool("unstable-only", false, "Restrict to unstable dependents")
	threshold := fs.Float64("stability-threshold", 0.5, "Stability score threshold for --unstable-only")
	includeGit := fs.Bool("git", false, "Include git metadata")
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: codegraph query dependents <symbol-id> [--depth n] [--unstable-only]")
		os.Exit(1)
	}
	target := fs.Arg(0)

	result := api.GetDependents(target, *depth, queryapi.DependentsOptions{
		UnstableOnly:       *unstableOnly,
		StabilityThreshold: *threshold,
		IncludeGit:         *includeGit,
	})
	printDependencyReport(result.DependencyReport, globals, "Dependents of", target)
}

func printDependencyReport(report any, globals GlobalFlags, label, target string) {
	emit(report, globals, func() {
		ui.Header(fmt.Sprintf("%s %s", label, target))
		fmt.Printf("%+v\n", report)
	})
}

func queryRunImpact(api *queryapi.API, args []string, globals GlobalFlags) {
	fs := newFlagSet("query impact")
	unstableOnly := fs.Bool("unstable-only", false, "Restrict high-risk results to unstable symbols")
	threshold := fs.Float64("stability-threshold", 0.5, "Stability score threshold for --unstable-only")
	includeGit := fs.Bool("git", false, "Include git metadata")
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: codegraph query impact <file> [<file> ...] [--unstable-only]")
		os.Exit(1)
	}

	result := api.GetImpact(fs.Args(), queryapi.ImpactOptions{
		UnstableOnly:       *unstableOnly,
		StabilityThreshold: *threshold,
		IncludeGit:         *includeGit,
	})

	emit(result, globals, func() {
		ui.Header("Impact analysis")
		fmt.Printf("  directly affected:     %d\n", len(result.DirectlyAffected))
		fmt.Printf("  transitively affected: %d\n", len(result.TransitivelyAffected))
		fmt.Printf("  suggested test order:  %s\n", strings.Join(result.SuggestedOrder, " -> "))
		fmt.Println()
		ui.SubHeader("High risk")
		if len(result.HighRisk) == 0 {
			fmt.Println("  (none)")
		}
		for _, a := range result.HighRisk {
			fmt.Printf("  %s %-8.2f %s\n", ui.Risk(string(a.Bucket)), a.Score, a.SymbolID)
		}
	})
}

func queryRunStructure(api *queryapi.API, args []string, globals GlobalFlags) {
	fs := newFlagSet("query structure")
	includePrivate := fs.Bool("private", false, "Include non-exported symbols")
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: codegraph query structure <file>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	roots := api.GetFileStructure(path, queryapi.FileStructureOptions{IncludePrivate: *includePrivate})
	emit(roots, globals, func() {
		ui.Header(fmt.Sprintf("Structure of %s", path))
		if len(roots) == 0 {
			fmt.Println("  (no symbols)")
			return
		}
		for _, r := range roots {
			printFileNode(r, 0)
		}
	})
}

func printFileNode(node *queryapi.FileNode, depth int) {
	fmt.Printf("%s%s (%s) :%d\n", strings.Repeat("  ", depth), node.Symbol.Name, node.Symbol.Kind, node.Symbol.Location.Start.Line)
	for _, c := range node.Children {
		printFileNode(c, depth+1)
	}
}

func queryRunSimilar(api *queryapi.API, args []string, globals GlobalFlags) {
	fs := newFlagSet("query similar")
	kind := fs.String("kind", "", "Restrict to this symbol kind")
	limit := fs.Int("limit", 10, "Maximum matches to return")
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: codegraph query similar <description>")
		os.Exit(1)
	}
	description := strings.Join(fs.Args(), " ")

	matches := api.FindSimilar(description, queryapi.SimilarOptions{Kind: types.Kind(*kind), Limit: *limit})
	emit(matches, globals, func() {
		ui.Header(fmt.Sprintf("Similar to %q", description))
		if len(matches) == 0 {
			fmt.Println("  (no matches)")
			return
		}
		for _, m := range matches {
			fmt.Printf("  [%.2f] %s (%s)\n", m.Score, m.SymbolID, m.Reason)
		}
	})
}

func queryRunHistory(api *queryapi.API, args []string, globals GlobalFlags) {
	fs := newFlagSet("query history")
	refresh := fs.Bool("refresh", false, "Re-probe git instead of using the last indexed snapshot")
	_ = fs.Parse(args)
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: codegraph query history <symbol-id> [--refresh]")
		os.Exit(1)
	}
	target := fs.Arg(0)

	meta := api.GetSymbolHistory(target, queryapi.HistoryOptions{Refresh: *refresh})
	emit(meta, globals, func() {
		ui.Header(fmt.Sprintf("History of %s", target))
		if meta == nil {
			fmt.Println("  (no git metadata available)")
			return
		}
		fmt.Printf("  last commit:   %s\n", meta.LastCommitSHA)
		fmt.Printf("  churn:         %d\n", meta.ChurnCount)
		fmt.Printf("  stability:     %.3f\n", meta.StabilityScore)
		fmt.Printf("  freshness:     %d days\n", meta.FreshnessDays)
		fmt.Printf("  contributors:  %s\n", strings.Join(meta.TopContributors, ", "))
	})
}
