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

// Package config loads the per-project project.yaml configuration:
// store location, indexer include/exclude globs, PageRank tuning, watcher
// debounce, and git metadata settings. A missing configuration file is
// fatal at startup.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	cgerrors "github.com/kraklabs/codegraph/internal/errors"
)

// ConfigDirName is the per-project configuration directory.
const ConfigDirName = ".codegraph"

// ConfigFileName is the file inside ConfigDirName holding project settings.
const ConfigFileName = "project.yaml"

// StoreConfig configures the persistent store.
type StoreConfig struct {
	DataDir   string `yaml:"dataDir"`
	KeyPrefix string `yaml:"keyPrefix"`
}

// IndexerConfig configures the scan/extract phase.
type IndexerConfig struct {
	Include     []string `yaml:"include"`
	Exclude     []string `yaml:"exclude"`
	MaxFileSize int64    `yaml:"maxFileSize"`
}

// PageRankConfig configures the graph's PageRank pass.
type PageRankConfig struct {
	Damping    float64 `yaml:"damping"`
	Iterations int     `yaml:"iterations"`
	Tolerance  float64 `yaml:"tolerance"`
}

// WatcherConfig configures the filesystem watcher.
type WatcherConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMs int  `yaml:"debounceMs"`
}

// GitConfig configures the git metadata provider.
type GitConfig struct {
	Enabled          bool   `yaml:"enabled"`
	HistoryDepth     int    `yaml:"historyDepth"`
	SampleWindowDays int    `yaml:"sampleWindowDays"`
	GitBinary        string `yaml:"gitBinary"`
}

// Config is the full recognized configuration.
type Config struct {
	ProjectID string         `yaml:"projectId"`
	Store     StoreConfig    `yaml:"store"`
	Indexer   IndexerConfig  `yaml:"indexer"`
	PageRank  PageRankConfig `yaml:"pagerank"`
	Watcher   WatcherConfig  `yaml:"watcher"`
	Git       GitConfig      `yaml:"git"`
}

// DefaultConfig returns the configuration `init` writes out for a new
// project.
func DefaultConfig(projectID string) *Config {
	return &Config{
		ProjectID: projectID,
		Store: StoreConfig{
			DataDir:   filepath.Join(ConfigDirName, "store"),
			KeyPrefix: "codegraph",
		},
		Indexer: IndexerConfig{
			Include:     []string{"**/*"},
			Exclude:     []string{"**/.git/**", "**/node_modules/**", "**/vendor/**", "**/dist/**", "**/build/**"},
			MaxFileSize: 2 << 20,
		},
		PageRank: PageRankConfig{
			Damping:    0.85,
			Iterations: 30,
			Tolerance:  1e-6,
		},
		Watcher: WatcherConfig{
			Enabled:    true,
			DebounceMs: 500,
		},
		Git: GitConfig{
			Enabled:          true,
			HistoryDepth:     50,
			SampleWindowDays: 90,
			GitBinary:        "git",
		},
	}
}

// Dir returns the `.codegraph` directory under root.
func Dir(root string) string {
	return filepath.Join(root, ConfigDirName)
}

// Path returns the `.codegraph/project.yaml` path under root.
func Path(root string) string {
	return filepath.Join(Dir(root), ConfigFileName)
}

// Load reads and parses the project configuration at root. A missing
// config file is a fatal UserError with a config exit code, not a silent
// fallback to defaults.
func Load(root string) (*Config, error) {
	path := Path(root)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cgerrors.NewConfigInvalid(
				"No codegraph configuration found",
				fmt.Sprintf("%s does not exist", path),
				"Run 'codegraph init' to create one",
				err,
			)
		}
		return nil, cgerrors.NewConfigInvalid(
			"Cannot read codegraph configuration",
			err.Error(),
			fmt.Sprintf("Check permissions on %s", path),
			err,
		)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, cgerrors.NewConfigInvalid(
			"Cannot parse codegraph configuration",
			err.Error(),
			fmt.Sprintf("Check %s for valid YAML", path),
			err,
		)
	}
	return &cfg, nil
}

// Save writes cfg as YAML to root's project.yaml, creating ConfigDirName
// if needed.
func Save(cfg *Config, root string) error {
	if err := os.MkdirAll(Dir(root), 0o750); err != nil {
		return fmt.Errorf("create %s: %w", Dir(root), err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(Path(root), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", Path(root), err)
	}
	return nil
}
