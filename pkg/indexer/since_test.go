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
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codegraph/pkg/gitmeta"
	"github.com/kraklabs/codegraph/pkg/store"
)

func runGitIn(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	require.NoError(t, cmd.Run())
}

func headSHA(t *testing.T, dir string) string {
	t.Helper()
	cmd := exec.Command("git", "rev-parse", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	return strings.TrimSpace(string(out))
}

func TestIndexProjectSinceIndexesOnlyGitDelta(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	root := t.TempDir()
	runGitIn(t, root, "init", "-q")
	runGitIn(t, root, "config", "user.email", "test@example.com")
	runGitIn(t, root, "config", "user.name", "Test")

	writeFile(t, root, "a.go", "package sample\n\nfunc A() {}\n")
	runGitIn(t, root, "add", "a.go")
	runGitIn(t, root, "commit", "-q", "-m", "initial")
	base := headSHA(t, root)

	writeFile(t, root, "b.go", "package sample\n\nfunc B() {}\n")
	runGitIn(t, root, "add", "b.go")
	runGitIn(t, root, "commit", "-q", "-m", "add b")
	head := headSHA(t, root)

	s, err := store.Open(store.Config{KeyPrefix: "test"})
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Git = gitmeta.DefaultConfig()
	ix := New(s, cfg, nil)

	result, err := ix.IndexProjectSince(context.Background(), root, base, head, nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Incremental)
	assert.Equal(t, 1, result.FilesChanged)
	assert.Equal(t, 0, result.FilesScanned)

	s.SetProjectContext(root)
	assert.Len(t, s.SymbolsByFile("b.go"), 1)
	assert.Empty(t, s.SymbolsByFile("a.go"))
}

func TestIndexProjectSinceRefusesConcurrentRun(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	root := t.TempDir()
	runGitIn(t, root, "init", "-q")
	runGitIn(t, root, "config", "user.email", "test@example.com")
	runGitIn(t, root, "config", "user.name", "Test")
	writeFile(t, root, "a.go", "package sample\n\nfunc A() {}\n")
	runGitIn(t, root, "add", "a.go")
	runGitIn(t, root, "commit", "-q", "-m", "initial")
	sha := headSHA(t, root)

	s, err := store.Open(store.Config{KeyPrefix: "test"})
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.Git = gitmeta.DefaultConfig()
	ix := New(s, cfg, nil)

	s.SetProjectContext(root)
	token, ok := s.AcquireLock(indexingLockName, lockTTL)
	require.True(t, ok)
	defer s.ReleaseLock(indexingLockName, token)

	_, err = ix.IndexProjectSince(context.Background(), root, sha, sha, nil)
	require.Error(t, err)
}

func TestIndexProjectSinceRequiresGitEnabled(t *testing.T) {
	ix, _, root := newTestIndexer(t) // testConfig() disables Git

	_, err := ix.IndexProjectSince(context.Background(), root, "HEAD~1", "HEAD", nil)
	require.Error(t, err)
}
