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

package extractor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cgerrors "github.com/kraklabs/codegraph/internal/errors"
	"github.com/kraklabs/codegraph/pkg/types"
)

func writeSourceFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtractBatchAssignsCanonicalIDsAndResolvesParent(t *testing.T) {
	dir := t.TempDir()
	path := writeSourceFile(t, dir, "greeter.go", `package sample

import "fmt"

type Greeter struct {
	Name string
}

func (g *Greeter) Greet() string {
	return fmt.Sprintf("hi %s", g.Name)
}
`)

	e := New(Config{BatchSize: 10, MaxConcurrency: 2}, nil)
	res, err := e.ExtractBatch(context.Background(), []string{path}, nil)
	require.NoError(t, err)
	require.Empty(t, res.Errors)

	var greeter, greet *types.Symbol
	for i := range res.Symbols {
		switch res.Symbols[i].Name {
		case "Greeter":
			greeter = &res.Symbols[i]
		case "Greet":
			greet = &res.Symbols[i]
		}
	}
	require.NotNil(t, greeter)
	require.NotNil(t, greet)

	assert.Equal(t, types.SymbolID(path, "Greeter", greeter.Location.Start.Line), greeter.ID)
	assert.Equal(t, greeter.ID, greet.Parent)
	assert.Contains(t, greeter.Children, greet.ID)

	require.Len(t, res.Edges, 1)
	assert.Equal(t, types.EdgeImports, res.Edges[0].Type)
	assert.Equal(t, path, res.Edges[0].From)
	assert.Equal(t, "fmt", res.Edges[0].To)
}

func TestExtractBatchSkipsUnknownExtensions(t *testing.T) {
	dir := t.TempDir()
	path := writeSourceFile(t, dir, "notes.txt", "just some notes")

	e := New(DefaultConfig(), nil)
	res, err := e.ExtractBatch(context.Background(), []string{path}, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Symbols)
	assert.Empty(t, res.Edges)
	assert.Empty(t, res.Errors)
}

func TestExtractBatchRecordsReadErrors(t *testing.T) {
	e := New(DefaultConfig(), nil)
	res, err := e.ExtractBatch(context.Background(), []string{"/nonexistent/path/file.go"}, nil)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "/nonexistent/path/file.go", res.Errors[0].Path)
	assert.True(t, cgerrors.IsKind(res.Errors[0].Err, cgerrors.KindDeletedTarget),
		"a file missing at read time is a deleted target, not a parse failure")
}

func TestExtractBatchDeduplicatesAcrossBatches(t *testing.T) {
	dir := t.TempDir()
	path := writeSourceFile(t, dir, "dup.go", `package sample

import "fmt"

func A() { fmt.Println("a") }
`)

	e := New(Config{BatchSize: 1, MaxConcurrency: 1}, nil)
	var progressCalls int
	res, err := e.ExtractBatch(context.Background(), []string{path, path, path}, func(p Progress) {
		progressCalls++
	})
	require.NoError(t, err)
	assert.Equal(t, 3, progressCalls)

	count := 0
	for _, s := range res.Symbols {
		if s.Name == "A" {
			count++
		}
	}
	assert.Equal(t, 1, count, "duplicate symbol IDs across files in the batch must collapse to one")
	assert.Len(t, res.Edges, 1, "duplicate (from,to,type) edges must collapse to one")
}
