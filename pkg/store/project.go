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

package store

import (
	"encoding/json"
	"fmt"

	"github.com/kraklabs/codegraph/pkg/types"
)

// PutFileTracking stores the {mtime, hash} record for a processed file.
func (s *Store) PutFileTracking(path string, t types.FileTracking) error {
	return s.HashSet("file:"+path, map[string]string{
		"mtime": fmt.Sprintf("%d", t.MTime),
		"hash":  t.Hash,
	})
}

// GetFileTracking returns the tracked {mtime, hash} for a file, or nil.
func (s *Store) GetFileTracking(path string) *types.FileTracking {
	h := s.HashGet("file:" + path)
	if h == nil {
		return nil
	}
	var t types.FileTracking
	fmt.Sscanf(h["mtime"], "%d", &t.MTime)
	t.Hash = h["hash"]
	return &t
}

// DeleteFileTracking removes a file's tracking record.
func (s *Store) DeleteFileTracking(path string) error {
	return s.HashDelete("file:" + path)
}

// AllTrackedFiles returns every currently tracked file path and its record.
// It derives the path set from the "file:*" tracking hashes, not from the
// "idx:file:*" index — tracked files with symbols removed (e.g. emptied)
// still carry a tracking record until FileTracking is explicitly deleted by
// the caller.
func (s *Store) AllTrackedFiles() map[string]types.FileTracking {
	ns := s.currentNamespace()
	prefix := ns + ":file:"

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]types.FileTracking)
	for k, h := range s.hashes {
		if len(k) <= len(prefix) || k[:len(prefix)] != prefix {
			continue
		}
		path := k[len(prefix):]
		var t types.FileTracking
		fmt.Sscanf(h["mtime"], "%d", &t.MTime)
		t.Hash = h["hash"]
		out[path] = t
	}
	return out
}

// PutProjectMetadata overwrites the project's root/indexed_at/stats records.
func (s *Store) PutProjectMetadata(meta types.ProjectMetadata) error {
	statsJSON, _ := json.Marshal(meta.Stats)
	if err := s.SetString("root", meta.Root); err != nil {
		return err
	}
	if err := s.SetString("indexed_at", fmt.Sprintf("%d", meta.IndexedAt)); err != nil {
		return err
	}
	return s.SetString("stats", string(statsJSON))
}

// GetProjectMetadata reads back the project's metadata record.
func (s *Store) GetProjectMetadata() types.ProjectMetadata {
	var meta types.ProjectMetadata
	meta.Root, _ = s.GetString("root")
	if at, ok := s.GetString("indexed_at"); ok {
		fmt.Sscanf(at, "%d", &meta.IndexedAt)
	}
	if stats, ok := s.GetString("stats"); ok {
		_ = json.Unmarshal([]byte(stats), &meta.Stats)
	}
	return meta
}
