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

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cgerrors "github.com/kraklabs/codegraph/internal/errors"
)

func TestLoadMissingConfigIsFatal(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir)
	require.Error(t, err)
	var uerr *cgerrors.UserError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, cgerrors.KindConfigInvalid, uerr.Kind)
	assert.Equal(t, cgerrors.ExitConfig, uerr.ExitCode)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig("demo")
	cfg.Watcher.DebounceMs = 750

	require.NoError(t, Save(cfg, dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "demo", loaded.ProjectID)
	assert.Equal(t, 750, loaded.Watcher.DebounceMs)
	assert.Equal(t, 0.85, loaded.PageRank.Damping)
}
