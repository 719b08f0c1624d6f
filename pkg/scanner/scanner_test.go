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

package scanner

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codegraph/pkg/types"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestScanFindsIncludedFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, "vendor/dep/dep.go", "package dep")
	writeFile(t, root, "node_modules/x/index.js", "module.exports = {}")

	sc := New(DefaultConfig(), nil)
	result, err := sc.Scan(root, nil)
	require.NoError(t, err)

	assert.Contains(t, result.Files, "main.go")
	assert.NotContains(t, result.Files, "vendor/dep/dep.go")
	assert.NotContains(t, result.Files, "node_modules/x/index.js")
	assert.ElementsMatch(t, result.Files, result.Changed, "with no tracking map, Changed must equal Files")
	assert.Empty(t, result.Deleted)
}

func TestScanRespectsMaxFileSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "big.go", "package main\n// 0123456789")

	cfg := DefaultConfig()
	cfg.MaxFileSize = 5
	sc := New(cfg, nil)

	result, err := sc.Scan(root, nil)
	require.NoError(t, err)
	assert.NotContains(t, result.Files, "big.go")
}

func TestScanDetectsChangedAndDeleted(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a")
	writeFile(t, root, "b.go", "package b")

	sc := New(DefaultConfig(), nil)

	infoA, err := os.Stat(filepath.Join(root, "a.go"))
	require.NoError(t, err)
	infoB, err := os.Stat(filepath.Join(root, "b.go"))
	require.NoError(t, err)

	tracked := map[string]types.FileTracking{
		"a.go": {MTime: infoA.ModTime().Unix(), Hash: "stale-but-matching"},
		"b.go": {MTime: infoB.ModTime().Unix() - int64(time.Hour.Seconds()), Hash: "stale"},
		"c.go": {MTime: 0, Hash: "gone"},
	}

	result, err := sc.Scan(root, tracked)
	require.NoError(t, err)

	assert.Contains(t, result.Changed, "b.go")
	assert.NotContains(t, result.Changed, "a.go")
	assert.Contains(t, result.Deleted, "c.go")
}

func TestHashFileUsesContentDigestBelowThreshold(t *testing.T) {
	h1, err := HashFile("a.go", 13, 0, func() ([]byte, error) { return []byte("package main\n"), nil })
	require.NoError(t, err)
	h2, err := HashFile("b.go", 13, 0, func() ([]byte, error) { return []byte("package main\n"), nil })
	require.NoError(t, err)
	assert.Equal(t, h1, h2, "identical content must hash identically regardless of path")
}

func TestHashFileUsesMetadataDigestAboveThreshold(t *testing.T) {
	called := false
	h, err := HashFile("big.bin", hashThreshold+1, 1700000000, func() ([]byte, error) {
		called = true
		return nil, nil
	})
	require.NoError(t, err)
	assert.False(t, called, "content must not be read for files above the threshold")
	assert.Contains(t, h, "meta:")
}
