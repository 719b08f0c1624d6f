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
	"github.com/kraklabs/codegraph/internal/ui"
)

// runInit executes the 'init' CLI command, creating a .codegraph/project.yaml
// configuration file: an interactive prompt over the defaults, plus
// .gitignore bookkeeping.
func runInit(args []string) {
	fs := newFlagSet("init")
	force := fs.Bool("force", false, "Overwrite existing configuration")
	nonInteractive := fs.Bool("y", false, "Non-interactive mode (use defaults)")
	projectID := fs.String("project-id", "", "Project identifier (default: directory name)")
	_ = fs.Parse(args)

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot get current directory: %v\n", err)
		os.Exit(1)
	}

	configPath := config.Path(cwd)
	if _, err := os.Stat(configPath); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Error: %s already exists. Use --force to overwrite.\n", configPath)
		os.Exit(1)
	}

	id := *projectID
	if id == "" {
		id = filepath.Base(cwd)
	}
	cfg := config.DefaultConfig(id)

	if !*nonInteractive {
		reader := bufio.NewReader(os.Stdin)
		runInteractiveConfig(reader, cfg)
	}

	if err := config.Save(cfg, cwd); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot save configuration: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created %s\n", configPath)
	addToGitignore(cwd)

	ui.Success(fmt.Sprintf("Project %q configured.", cfg.ProjectID))
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Review and edit .codegraph/project.yaml if needed")
	fmt.Println("  2. Run 'codegraph index' to index your repository")
	fmt.Println("  3. Run 'codegraph status' to verify indexing")
}

func runInteractiveConfig(reader *bufio.Reader, cfg *config.Config) {
	fmt.Println("codegraph Project Configuration")
	fmt.Println("================================")
	fmt.Println()

	cfg.ProjectID = prompt(reader, "Project ID", cfg.ProjectID)
	cfg.Indexer.MaxFileSize = promptInt(reader, "Max file size (bytes)", cfg.Indexer.MaxFileSize)

	watch := prompt(reader, "Enable filesystem watcher after indexing? (Y/n)", "y")
	cfg.Watcher.Enabled = !isNo(watch)

	git := prompt(reader, "Enable git metadata (stability/churn)? (Y/n)", "y")
	cfg.Git.Enabled = !isNo(git)

	fmt.Println()
}

func isNo(answer string) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "n" || answer == "no"
}

// prompt displays an interactive prompt and reads user input from stdin,
// returning defaultValue on a bare Enter.
func prompt(reader *bufio.Reader, label, defaultValue string) string {
	if defaultValue != "" {
		fmt.Printf("%s [%s]: ", label, defaultValue)
	} else {
		fmt.Printf("%s: ", label)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultValue
	}
	return input
}

func promptInt(reader *bufio.Reader, label string, defaultValue int64) int64 {
	raw := prompt(reader, label, fmt.Sprintf("%d", defaultValue))
	var n int64
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

// addToGitignore adds .codegraph/ to the project's .gitignore if not
// already present, silently doing nothing if there is no .gitignore.
func addToGitignore(dir string) {
	gitignorePath := filepath.Join(dir, ".gitignore")

	content, err := os.ReadFile(gitignorePath) //nolint:gosec // G304: built from repo dir
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == ".codegraph/" || line == ".codegraph" || line == "/.codegraph/" || line == "/.codegraph" {
			return
		}
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec // G304
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()

	if len(content) > 0 && content[len(content)-1] != '\n' {
		_, _ = f.WriteString("\n")
	}
	_, _ = f.WriteString("\n# codegraph local index\n.codegraph/\n")
	fmt.Println("Added .codegraph/ to .gitignore")
}
