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

package gitmeta

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cgerrors "github.com/kraklabs/codegraph/internal/errors"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		require.NoError(t, cmd.Run())
	}
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
	run("init", "-q")
	run("config", "user.email", "test@example.com")
	run("config", "user.name", "Test")

	file := filepath.Join(dir, "a.go")
	require.NoError(t, os.WriteFile(file, []byte("package a\n"), 0o644))
	run("add", "a.go")
	run("commit", "-q", "-m", "initial")
	return dir
}

func TestForFileReturnsNilWhenDisabled(t *testing.T) {
	p := New(Config{Enabled: false}, "/does/not/matter", nil)
	assert.Nil(t, p.ForFile("a.go"))
}

func TestForFileReturnsNilOutsideGitRepo(t *testing.T) {
	dir := t.TempDir()
	p := New(DefaultConfig(), dir, nil)
	assert.Nil(t, p.ForFile("a.go"))
}

func TestForFileReturnsMetadataInsideGitRepo(t *testing.T) {
	dir := initRepo(t)
	p := New(DefaultConfig(), dir, nil)

	meta := p.ForFile("a.go")
	require.NotNil(t, meta)
	assert.NotEmpty(t, meta.LastCommitSHA)
	assert.Equal(t, 1, meta.ChurnCount)
	assert.InDelta(t, 0.5, meta.StabilityScore, 1e-9)
	assert.Contains(t, meta.TopContributors, "Test")
	assert.Equal(t, 1.0, meta.OwnershipConfidence)
}

func TestForFileReturnsNilForUntrackedPath(t *testing.T) {
	dir := initRepo(t)
	p := New(DefaultConfig(), dir, nil)
	assert.Nil(t, p.ForFile("missing.go"))
}

func commitSHA(t *testing.T, dir string) string {
	t.Helper()
	cmd := exec.Command("git", "rev-parse", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	return strings.TrimSpace(string(out))
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	require.NoError(t, cmd.Run())
}

func TestDeltaReportsAddedModifiedAndDeleted(t *testing.T) {
	dir := initRepo(t)
	base := commitSHA(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n\nfunc A() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.go"), []byte("package a\n"), 0o644))
	runGit(t, dir, "add", "a.go", "b.go")
	runGit(t, dir, "commit", "-q", "-m", "modify a, add b")
	head := commitSHA(t, dir)

	p := New(DefaultConfig(), dir, nil)
	changed, deleted, err := p.Delta(context.Background(), base, head)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.go", "b.go"}, changed)
	assert.Empty(t, deleted)
}

func TestDeltaTreatsRenameAsDeleteAndAdd(t *testing.T) {
	dir := initRepo(t)
	base := commitSHA(t, dir)

	require.NoError(t, os.Rename(filepath.Join(dir, "a.go"), filepath.Join(dir, "renamed.go")))
	runGit(t, dir, "add", "-A")
	runGit(t, dir, "commit", "-q", "-m", "rename a -> renamed")
	head := commitSHA(t, dir)

	p := New(DefaultConfig(), dir, nil)
	changed, deleted, err := p.Delta(context.Background(), base, head)
	require.NoError(t, err)
	assert.Equal(t, []string{"renamed.go"}, changed)
	assert.Equal(t, []string{"a.go"}, deleted)
}

func TestDeltaErrorsOutsideGitRepo(t *testing.T) {
	dir := t.TempDir()
	p := New(DefaultConfig(), dir, nil)
	_, _, err := p.Delta(context.Background(), "HEAD~1", "HEAD")
	assert.Error(t, err)
	assert.True(t, cgerrors.IsKind(err, cgerrors.KindGitUnavailable))
}
