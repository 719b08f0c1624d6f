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

// Package main implements the codegraph CLI: a standalone driver for the
// indexing engine and analysis graph described by this module. It is a thin
// adapter over pkg/queryapi; it does not host a daemon or speak any
// request/response protocol.
//
// Usage:
//
//	codegraph init                 Create .codegraph/project.yaml configuration
//	codegraph index                Index the current repository
//	codegraph status [--json]      Show project status and structural overview
//	codegraph query <subcommand>   Run a read query against the indexed graph
//	codegraph watch                Watch the project tree and index incrementally
//	codegraph reset                Delete local indexed data
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/internal/ui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags holds flags recognized before the subcommand name.
type GlobalFlags struct {
	ConfigPath string
	JSON       bool
	Quiet      bool
	NoColor    bool
}

func main() {
	fs := pflag.NewFlagSet("codegraph", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true

	showVersion := fs.Bool("version", false, "Show version and exit")
	configPath := fs.String("config", "", "Project root containing .codegraph/project.yaml (default: current directory)")
	jsonOut := fs.Bool("json", false, "Output as JSON where supported")
	quiet := fs.BoolP("quiet", "q", false, "Suppress progress output")
	noColor := fs.Bool("no-color", false, "Disable colored output")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usageText)
	}
	_ = fs.Parse(os.Args[1:])

	ui.InitColors(*noColor)

	globals := GlobalFlags{ConfigPath: *configPath, JSON: *jsonOut, Quiet: *quiet, NoColor: *noColor}

	if *showVersion {
		fmt.Printf("codegraph version %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		return
	}

	args := fs.Args()
	if len(args) == 0 {
		fs.Usage()
		os.Exit(1)
	}

	command, cmdArgs := args[0], args[1:]
	switch command {
	case "init":
		runInit(cmdArgs)
	case "index":
		runIndex(cmdArgs, globals)
	case "status":
		runStatus(cmdArgs, globals)
	case "query":
		runQuery(cmdArgs, globals)
	case "watch":
		runWatch(cmdArgs, globals)
	case "reset":
		runReset(cmdArgs, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		fs.Usage()
		os.Exit(1)
	}
}

const usageText = `codegraph - knowledge graph over a source tree

Usage:
  codegraph <command> [options]

Commands:
  init     Create .codegraph/project.yaml configuration
  index    Index the current repository (incremental by default)
  status   Show project stats, top symbols, bottlenecks, dead code, cycles
  query    Run a read query: symbol, search, deps, dependents, impact,
           structure, similar, history
  watch    Watch the project tree and reindex changed files incrementally
  reset    Delete local indexed data (destructive)

Global Options:
  --config   Project root containing .codegraph/project.yaml (default: cwd)
  --json     Output as JSON where supported
  -q, --quiet  Suppress progress output
  --no-color Disable colored output
  --version  Show version and exit

Examples:
  codegraph init
  codegraph index --full
  codegraph index --since-base abc123 --since-head def456
  codegraph status --json
  codegraph query symbol Indexer
  codegraph query impact pkg/graph/pagerank.go
`

// exitOnUserError prints a UserError (or plain error) and exits with the
// matching code, honoring --json.
func exitOnUserError(err error, jsonOut bool) {
	if err == nil {
		return
	}
	errors.FatalError(err, jsonOut)
}

// newFlagSet gives every subcommand the same exit-on-error flag handling.
func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ExitOnError)
}
