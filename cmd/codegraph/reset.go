// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/codegraph/internal/config"
	"github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/internal/ui"
)

// runReset executes the 'reset' CLI command: deletes the project's local
// store data directory after a confirmation prompt (bypassed by --yes).
func runReset(args []string, globals GlobalFlags) {
	fs := newFlagSet("reset")
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")
	_ = fs.Parse(args)

	root := projectRoot(globals)
	cfg, err := config.Load(root)
	if err != nil {
		errors.FatalError(err, globals.JSON)
	}

	dataDir := cfg.Store.DataDir
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(root, dataDir)
	}

	if !*yes {
		fmt.Printf("This will delete all indexed data for project %q at %s.\n", cfg.ProjectID, dataDir)
		reader := bufio.NewReader(os.Stdin)
		answer := prompt(reader, "Continue? (y/N)", "n")
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Aborted.")
			return
		}
	}

	if err := os.RemoveAll(dataDir); err != nil {
		errors.FatalError(errors.NewStoreIO(
			"Cannot delete store data",
			err.Error(),
			fmt.Sprintf("Check permissions on %s", dataDir), err), globals.JSON)
	}

	ui.Success(fmt.Sprintf("Deleted %s", dataDir))
}
