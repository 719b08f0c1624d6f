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

package errors

import (
	goerrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestConstructorsAssignKindAndExitCode(t *testing.T) {
	underlying := goerrors.New("boom")

	tests := []struct {
		name     string
		err      *UserError
		wantKind Kind
		wantExit int
	}{
		{"config invalid", NewConfigInvalid("m", "c", "f", underlying), KindConfigInvalid, ExitConfig},
		{"backend unreachable", NewBackendUnreachable("m", "c", "f", underlying), KindBackendUnreachable, ExitStore},
		{"lock contention", NewLockContention("m", "c", "f"), KindLockContention, ExitLock},
		{"store io", NewStoreIO("m", "c", "f", underlying), KindStoreIO, ExitStore},
		{"parse failure", NewParseFailure("m", "c", underlying), KindParseFailure, ExitParse},
		{"git unavailable", NewGitUnavailable("m", "c", "f", underlying), KindGitUnavailable, ExitGit},
		{"deleted target", NewDeletedTarget("m", "c", underlying), KindDeletedTarget, ExitParse},
		{"input", NewInputError("m", "c", "f"), KindInput, ExitInput},
		{"not found", NewNotFoundError("m", "c", "f"), KindNotFound, ExitNotFound},
		{"internal", NewInternalError("m", "c", "f", underlying), KindInternal, ExitInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", tt.err.Kind, tt.wantKind)
			}
			if tt.err.ExitCode != tt.wantExit {
				t.Errorf("ExitCode = %d, want %d", tt.err.ExitCode, tt.wantExit)
			}
		})
	}
}

func TestErrorIncludesUnderlyingMessage(t *testing.T) {
	underlying := goerrors.New("disk full")
	err := NewStoreIO("Cannot persist symbol", "write failed", "free disk space", underlying)

	if got := err.Error(); got != "Cannot persist symbol: disk full" {
		t.Errorf("Error() = %q", got)
	}

	bare := NewLockContention("Indexing already in progress", "lock held", "retry later")
	if got := bare.Error(); got != "Indexing already in progress" {
		t.Errorf("Error() without underlying = %q", got)
	}
}

func TestUnwrapAndIsKindThroughWrapping(t *testing.T) {
	underlying := goerrors.New("timeout")
	kinded := NewGitUnavailable("Git call failed", "timed out after 3s", "", underlying)
	wrapped := fmt.Errorf("index project: %w", kinded)

	if !goerrors.Is(wrapped, underlying) {
		t.Error("errors.Is should reach the underlying error through the chain")
	}
	if !IsKind(wrapped, KindGitUnavailable) {
		t.Error("IsKind should find the kinded error through fmt.Errorf wrapping")
	}
	if IsKind(wrapped, KindLockContention) {
		t.Error("IsKind must not match a different kind")
	}
	if IsKind(goerrors.New("plain"), KindInternal) {
		t.Error("IsKind must be false for non-UserError values")
	}
}

func TestAsUserPreservesKindedErrors(t *testing.T) {
	kinded := NewLockContention("Indexing already in progress", "lock held", "retry")
	wrapped := fmt.Errorf("outer: %w", kinded)

	got := AsUser(wrapped, "fallback message", "fallback fix")
	if got.Kind != KindLockContention {
		t.Errorf("AsUser lost the kind: got %q", got.Kind)
	}
	if got.ExitCode != ExitLock {
		t.Errorf("AsUser lost the exit code: got %d", got.ExitCode)
	}

	plain := AsUser(goerrors.New("oops"), "Indexing failed", "check permissions")
	if plain.Kind != KindInternal {
		t.Errorf("AsUser should wrap plain errors as internal, got %q", plain.Kind)
	}
	if plain.Message != "Indexing failed" {
		t.Errorf("AsUser wrapped message = %q", plain.Message)
	}
}

func TestFormatRendersSectionsAndOmitsEmpty(t *testing.T) {
	err := NewConfigInvalid(
		"Cannot load codegraph configuration",
		"The config file .codegraph/project.yaml is missing",
		"Run 'codegraph init' to create a new configuration",
		nil,
	)

	out := err.Format(true)
	for _, want := range []string{
		"Error: Cannot load codegraph configuration",
		"Cause: The config file .codegraph/project.yaml is missing",
		"Fix:   Run 'codegraph init' to create a new configuration",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format missing %q in:\n%s", want, out)
		}
	}

	terse := (&UserError{Kind: KindInternal, Message: "boom", ExitCode: ExitInternal}).Format(true)
	if strings.Contains(terse, "Cause:") || strings.Contains(terse, "Fix:") {
		t.Errorf("empty Cause/Fix must be omitted, got:\n%s", terse)
	}
}

func TestToJSONCarriesKind(t *testing.T) {
	err := NewLockContention("Indexing already in progress", "held by another writer", "retry later")
	j := err.ToJSON()

	if j.Kind != KindLockContention {
		t.Errorf("ToJSON Kind = %q", j.Kind)
	}
	if j.Error != "Indexing already in progress" {
		t.Errorf("ToJSON Error = %q", j.Error)
	}
	if j.ExitCode != ExitLock {
		t.Errorf("ToJSON ExitCode = %d", j.ExitCode)
	}
}

func TestExitCodesAreDistinctPerFatalClass(t *testing.T) {
	codes := map[int]Kind{}
	for _, kind := range []Kind{
		KindConfigInvalid, KindLockContention, KindInput,
		KindNotFound, KindGitUnavailable, KindParseFailure, KindInternal,
	} {
		code := exitCodeFor(kind)
		if prev, dup := codes[code]; dup {
			t.Errorf("kinds %q and %q share exit code %d", prev, kind, code)
		}
		codes[code] = kind
	}
	// store_io and backend_unreachable intentionally share ExitStore: both
	// mean "the store did not take the write".
	if exitCodeFor(KindStoreIO) != exitCodeFor(KindBackendUnreachable) {
		t.Error("store kinds should share one exit code")
	}
}
