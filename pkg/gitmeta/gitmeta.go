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

// Package gitmeta implements the pluggable git metadata source: per-file
// {lastCommitSha, lastCommitAt, churnCount, topContributors,
// stabilityScore, freshnessDays, ownershipConfidence}, degrading silently
// to nil when git is unavailable, disabled, or a call exceeds its timeout.
package gitmeta

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	cgerrors "github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/pkg/types"
)

// Config controls the git metadata Provider.
type Config struct {
	Enabled          bool
	HistoryDepth     int           // commits to walk per file, 0 means unbounded
	SampleWindowDays int           // churn is counted only over this trailing window; 0 means unbounded
	GitBinary        string        // defaults to "git"
	Timeout          time.Duration // per-call timeout, defaults to 3s
}

// DefaultConfig returns the standard history-depth and timeout tuning.
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		HistoryDepth:     50,
		SampleWindowDays: 90,
		GitBinary:        "git",
		Timeout:          3 * time.Second,
	}
}

// Provider resolves per-file git metadata for a repository root.
type Provider struct {
	cfg      Config
	repoRoot string
	logger   *slog.Logger
	isRepo   bool
}

// New creates a Provider rooted at repoRoot. It probes once whether repoRoot
// is actually a git repository; if not (or if cfg.Enabled is false), every
// subsequent ForFile call degrades to nil without shelling out again.
func New(cfg Config, repoRoot string, logger *slog.Logger) *Provider {
	if cfg.GitBinary == "" {
		cfg.GitBinary = "git"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Provider{cfg: cfg, repoRoot: repoRoot, logger: logger}
	if cfg.Enabled {
		p.isRepo = p.probe()
	}
	return p
}

func (p *Provider) probe() bool {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.Timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, p.cfg.GitBinary, "rev-parse", "--git-dir")
	cmd.Dir = p.repoRoot
	return cmd.Run() == nil
}

// ForFile returns the git metadata for a file relative to the repo root, or
// nil if the provider is disabled, the repo isn't git-tracked, or the
// subprocess call fails or times out.
func (p *Provider) ForFile(relPath string) *types.GitMeta {
	if !p.cfg.Enabled || !p.isRepo {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.Timeout)
	defer cancel()

	commits, err := p.logCommits(ctx, relPath)
	if err != nil || len(commits) == 0 {
		p.logger.Debug("gitmeta.unavailable", "path", relPath, "err", err)
		return nil
	}

	churn := p.churnCount(commits)
	meta := types.NewGitMeta(churn)
	meta.LastCommitSHA = commits[0].sha
	meta.LastCommitAt = commits[0].at.Unix()
	meta.TopContributors = topContributors(commits)
	meta.FreshnessDays = int(time.Since(commits[0].at).Hours() / 24)
	meta.OwnershipConfidence = ownershipConfidence(commits)
	return meta
}

type commit struct {
	sha    string
	at     time.Time
	author string
}

// logCommits runs `git log --format=<sha>%x1f<unix>%x1f<author> -- <path>`,
// bounded by HistoryDepth.
func (p *Provider) logCommits(ctx context.Context, relPath string) ([]commit, error) {
	args := []string{"log", "--format=%H\x1f%at\x1f%an"}
	if p.cfg.HistoryDepth > 0 {
		args = append(args, fmt.Sprintf("-n%d", p.cfg.HistoryDepth))
	}
	args = append(args, "--", filepath.ToSlash(relPath))

	cmd := exec.CommandContext(ctx, p.cfg.GitBinary, args...)
	cmd.Dir = p.repoRoot
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git log %s: %w", relPath, err)
	}

	var commits []commit
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\x1f", 3)
		if len(parts) != 3 {
			continue
		}
		unix, convErr := strconv.ParseInt(parts[1], 10, 64)
		if convErr != nil {
			continue
		}
		commits = append(commits, commit{sha: parts[0], at: time.Unix(unix, 0), author: parts[2]})
	}
	return commits, nil
}

// churnCount counts commits within SampleWindowDays (or all, if unset).
func (p *Provider) churnCount(commits []commit) int {
	if p.cfg.SampleWindowDays <= 0 {
		return len(commits)
	}
	cutoff := time.Now().AddDate(0, 0, -p.cfg.SampleWindowDays)
	n := 0
	for _, c := range commits {
		if c.at.After(cutoff) {
			n++
		}
	}
	return n
}

// topContributors returns authors ordered by commit count, most first.
func topContributors(commits []commit) []string {
	counts := make(map[string]int)
	for _, c := range commits {
		counts[c.author]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > 5 {
		names = names[:5]
	}
	return names
}

// Delta computes the set of project-relative paths changed or deleted
// between two commits by shelling out to `git diff --name-status -M
// baseSHA headSHA`. Renames are reported by git as "R<score>\told\tnew";
// these are treated as delete-old plus add-new, so callers never need to
// special-case renames.
func (p *Provider) Delta(ctx context.Context, baseSHA, headSHA string) (changed, deleted []string, err error) {
	if !p.cfg.Enabled || !p.isRepo {
		return nil, nil, cgerrors.NewGitUnavailable(
			"Cannot compute a git delta",
			fmt.Sprintf("%s is not a git repository, or git metadata is disabled", p.repoRoot),
			"Run a plain incremental index instead", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.cfg.GitBinary, "diff", "--name-status", "-M", baseSHA, headSHA)
	cmd.Dir = p.repoRoot
	out, runErr := cmd.Output()
	if runErr != nil {
		return nil, nil, cgerrors.NewGitUnavailable(
			"Cannot compute a git delta",
			fmt.Sprintf("git diff %s..%s: %v", baseSHA, headSHA, runErr),
			"Check that both commits exist in this repository", runErr)
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		status := fields[0]
		switch {
		case status == "D":
			deleted = append(deleted, filepath.ToSlash(fields[1]))
		case status == "A" || status == "M":
			changed = append(changed, filepath.ToSlash(fields[1]))
		case strings.HasPrefix(status, "R"):
			if len(fields) < 3 {
				continue
			}
			deleted = append(deleted, filepath.ToSlash(fields[1]))
			changed = append(changed, filepath.ToSlash(fields[2]))
		}
	}
	return changed, deleted, nil
}

// ownershipConfidence is the share of commits attributed to the single
// largest contributor.
func ownershipConfidence(commits []commit) float64 {
	if len(commits) == 0 {
		return 0
	}
	counts := make(map[string]int)
	max := 0
	for _, c := range commits {
		counts[c.author]++
		if counts[c.author] > max {
			max = counts[c.author]
		}
	}
	return float64(max) / float64(len(commits))
}
