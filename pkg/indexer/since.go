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

package indexer

import (
	"context"
	"fmt"

	cgerrors "github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/pkg/gitmeta"
	"github.com/kraklabs/codegraph/pkg/metrics"
)

// IndexProjectSince runs a git delta-based incremental re-scan: instead of
// walking the tree and comparing mtimes, it asks git for exactly what
// changed between baseSHA and headSHA via `git diff --name-status -M`,
// then funnels those paths through the same processFiles tail IndexProject
// uses. This is an additional entry point alongside the mtime-tracked
// incremental mode, not a replacement for it; both hold the same named
// project lock, so they can never race each other.
func (ix *Indexer) IndexProjectSince(ctx context.Context, root, baseSHA, headSHA string, progress ProgressFunc) (*Result, error) {
	ix.store.SetProjectContext(root)

	if !ix.cfg.Git.Enabled {
		return nil, cgerrors.NewGitUnavailable(
			"Cannot run a git delta re-scan",
			"git metadata is disabled in the project configuration",
			"Set git.enabled: true in .codegraph/project.yaml, or run a plain incremental index", nil)
	}

	token, ok := ix.store.AcquireLock(indexingLockName, lockTTL)
	if !ok {
		metrics.Default.LockContended.Inc()
		return nil, cgerrors.NewLockContention(
			"Indexing already in progress",
			fmt.Sprintf("the %q lock for %s is held by another writer", indexingLockName, root),
			"Wait for the other indexing run to finish (the lock expires after its TTL)")
	}
	defer ix.store.ReleaseLock(indexingLockName, token)

	gp := gitmeta.New(ix.cfg.Git, root, ix.logger)
	changed, deleted, err := gp.Delta(ctx, baseSHA, headSHA)
	if err != nil {
		return nil, fmt.Errorf("compute git delta %s..%s: %w", baseSHA, headSHA, err)
	}

	result, err := ix.processFiles(ctx, root, changed, deleted, progress)
	if err != nil {
		return nil, err
	}
	result.Incremental = true
	return result, nil
}
