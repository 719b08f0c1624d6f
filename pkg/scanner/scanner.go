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

// Package scanner enumerates candidate source files under a project root and
// reports which of a previously tracked set have changed or disappeared.
package scanner

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"

	"github.com/kraklabs/codegraph/pkg/types"
)

// hashThreshold is the byte size above which file hashing switches from a
// full content digest to a cheap metadata digest.
const hashThreshold = 1 << 20 // 1 MiB

// Config controls which files Scan considers.
type Config struct {
	Include     []string // doublestar glob patterns, relative to root
	Exclude     []string
	MaxFileSize int64 // bytes; 0 means unbounded
}

// DefaultConfig covers the mainstream source extensions and the usual
// vendored/generated directories.
func DefaultConfig() Config {
	return Config{
		Include: []string{"**/*"},
		Exclude: []string{
			"**/.git/**",
			"**/node_modules/**",
			"**/vendor/**",
			"**/dist/**",
			"**/build/**",
			"**/.venv/**",
			"**/target/**",
		},
		MaxFileSize: 2 << 20, // 2 MiB
	}
}

// Result is the output of a Scan: every matching file, plus the subsets that
// changed or were deleted relative to a prior tracking map.
type Result struct {
	Files   []string
	Changed []string
	Deleted []string
}

// Scanner walks a project tree applying include/exclude globs and a size cap.
type Scanner struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Scanner. A nil logger falls back to slog.Default().
func New(cfg Config, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{cfg: cfg, logger: logger}
}

// Scan enumerates files under root. When tracked is non-nil, Changed is every
// file whose mtime differs from the tracked value, and Deleted is every
// tracked path no longer present. When tracked is nil, Changed equals Files
// and Deleted is empty.
func (sc *Scanner) Scan(root string, tracked map[string]types.FileTracking) (Result, error) {
	var result Result
	seen := make(map[string]struct{}, len(tracked))

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			sc.logger.Warn("scanner.walk.error", "path", path, "err", err)
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && sc.excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !sc.included(rel) || sc.excluded(rel) {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		if sc.cfg.MaxFileSize > 0 && info.Size() > sc.cfg.MaxFileSize {
			sc.logger.Warn("scanner.skip.too_large", "path", rel, "size", info.Size(), "limit", sc.cfg.MaxFileSize)
			return nil
		}

		result.Files = append(result.Files, rel)
		seen[rel] = struct{}{}

		mtime := info.ModTime().Unix()
		prior, wasTracked := tracked[rel]
		if tracked == nil {
			result.Changed = append(result.Changed, rel)
			return nil
		}
		if !wasTracked || prior.MTime != mtime {
			result.Changed = append(result.Changed, rel)
		}
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("scan %s: %w", root, err)
	}

	for path := range tracked {
		if _, ok := seen[path]; !ok {
			result.Deleted = append(result.Deleted, path)
		}
	}

	return result, nil
}

func (sc *Scanner) included(rel string) bool {
	if len(sc.cfg.Include) == 0 {
		return true
	}
	for _, pat := range sc.cfg.Include {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}

func (sc *Scanner) excluded(rel string) bool {
	for _, pat := range sc.cfg.Exclude {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}

// HashFile computes a stable digest for change detection: SHA-256 of content
// for files at or below hashThreshold, and a cheap constant-time metadata
// digest xxhash64(path) ⊕ xxhash64(mtime) ⊕ xxhash64(size) otherwise.
func HashFile(absPath string, size, mtime int64, readContent func() ([]byte, error)) (string, error) {
	if size <= hashThreshold {
		data, err := readContent()
		if err != nil {
			return "", fmt.Errorf("read %s: %w", absPath, err)
		}
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:]), nil
	}

	pathHash := xxhash.Sum64String(absPath)
	mtimeHash := xxhash.Sum64String(fmt.Sprintf("%d", mtime))
	sizeHash := xxhash.Sum64String(fmt.Sprintf("%d", size))
	return fmt.Sprintf("meta:%016x", pathHash^mtimeHash^sizeHash), nil
}
