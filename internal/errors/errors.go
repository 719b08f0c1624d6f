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

// Package errors defines the failure taxonomy shared by the indexing
// pipeline and the codegraph CLI.
//
// Every failure that can surface to a user is a UserError carrying a Kind
// (which failure mode it is), a message/cause/fix triple for rendering,
// and a semantic exit code. The pipeline packages (store, indexer,
// extractor, gitmeta) construct kinded errors at the point of failure;
// the CLI renders them with Format or ToJSON and exits with their code,
// so `codegraph index; echo $?` distinguishes a held lock from an
// unreachable store without parsing output.
//
//	_, err := api.IndexProject(ctx, opts, nil)
//	if errors.IsKind(err, errors.KindLockContention) {
//	    // another indexer holds the project lock; retry later
//	}
package errors

import (
	"encoding/json"
	goerrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Kind names one failure mode of the engine or CLI.
type Kind string

// Engine kinds, one per pipeline failure mode.
const (
	// KindConfigInvalid: the project configuration is missing or malformed.
	// Fatal at startup.
	KindConfigInvalid Kind = "config_invalid"

	// KindBackendUnreachable: the store backend failed its first
	// round-trip (unreadable data directory, corrupt snapshot). Fatal at
	// store initialisation.
	KindBackendUnreachable Kind = "backend_unreachable"

	// KindLockContention: the project's advisory indexing lock is held by
	// another writer. The caller surfaces it and retries later.
	KindLockContention Kind = "lock_contention"

	// KindStoreIO: a store write failed mid-batch. Fatal to the current
	// batch; the caller may retry the whole batch.
	KindStoreIO Kind = "store_io"

	// KindParseFailure: one file could not be read or parsed. Recorded
	// per file and skipped, never fatal to the run.
	KindParseFailure Kind = "parse_failure"

	// KindGitUnavailable: a git subprocess failed, timed out, or the
	// project is not a repository. Metadata lookups degrade to nil; the
	// explicit delta entry point reports it.
	KindGitUnavailable Kind = "git_unavailable"

	// KindDeletedTarget: a file or symbol disappeared between being
	// discovered and being processed. The worker skips it and continues.
	KindDeletedTarget Kind = "deleted_target"
)

// CLI-side kinds for failures that originate in the command layer.
const (
	KindInput    Kind = "input"
	KindNotFound Kind = "not_found"
	KindInternal Kind = "internal"
)

// Exit codes, one per fatal failure class.
const (
	ExitSuccess  = 0
	ExitConfig   = 1 // config_invalid
	ExitStore    = 2 // store_io, backend_unreachable
	ExitLock     = 3 // lock_contention
	ExitInput    = 4 // input
	ExitNotFound = 6 // not_found
	ExitGit      = 7 // git_unavailable
	ExitParse    = 8 // parse_failure, deleted_target (when surfaced as fatal)
	ExitInternal = 10
)

// exitCodeFor maps each kind to its exit code. Unknown kinds are internal.
func exitCodeFor(kind Kind) int {
	switch kind {
	case KindConfigInvalid:
		return ExitConfig
	case KindBackendUnreachable, KindStoreIO:
		return ExitStore
	case KindLockContention:
		return ExitLock
	case KindInput:
		return ExitInput
	case KindNotFound:
		return ExitNotFound
	case KindGitUnavailable:
		return ExitGit
	case KindParseFailure, KindDeletedTarget:
		return ExitParse
	default:
		return ExitInternal
	}
}

// UserError is a kinded error with structured context for end users.
//
// It provides three levels of information:
//   - Message: what went wrong (user-facing description)
//   - Cause: why it happened (diagnostic information)
//   - Fix: how to resolve it (actionable suggestion)
type UserError struct {
	// Kind classifies the failure mode.
	Kind Kind

	// Message describes what went wrong in user-friendly language.
	Message string

	// Cause explains why the error occurred.
	Cause string

	// Fix provides an actionable suggestion on how to resolve the error.
	Fix string

	// ExitCode is used when the process exits due to this error.
	ExitCode int

	// Err is the underlying error (optional), kept for errors.Is/As chains.
	Err error
}

// Error implements the error interface.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As compatibility.
func (e *UserError) Unwrap() error {
	return e.Err
}

// New constructs a kinded UserError. The exit code is derived from kind.
func New(kind Kind, msg, cause, fix string, err error) *UserError {
	return &UserError{
		Kind:     kind,
		Message:  msg,
		Cause:    cause,
		Fix:      fix,
		ExitCode: exitCodeFor(kind),
		Err:      err,
	}
}

// NewConfigInvalid reports a missing or malformed project configuration.
//
//	return NewConfigInvalid(
//	    "Cannot load codegraph configuration",
//	    "The config file .codegraph/project.yaml is missing",
//	    "Run 'codegraph init' to create a new configuration",
//	    nil,
//	)
func NewConfigInvalid(msg, cause, fix string, err error) *UserError {
	return New(KindConfigInvalid, msg, cause, fix, err)
}

// NewBackendUnreachable reports a store backend that failed its first
// round-trip.
func NewBackendUnreachable(msg, cause, fix string, err error) *UserError {
	return New(KindBackendUnreachable, msg, cause, fix, err)
}

// NewLockContention reports a project lock held by another writer.
func NewLockContention(msg, cause, fix string) *UserError {
	return New(KindLockContention, msg, cause, fix, nil)
}

// NewStoreIO reports a failed store write. The enclosing batch is
// considered failed and may be retried wholesale.
func NewStoreIO(msg, cause, fix string, err error) *UserError {
	return New(KindStoreIO, msg, cause, fix, err)
}

// NewParseFailure reports a file that could not be read or parsed. It is
// recorded against the file and the run continues.
func NewParseFailure(msg, cause string, err error) *UserError {
	return New(KindParseFailure, msg, cause, "", err)
}

// NewGitUnavailable reports a failed or timed-out git subprocess.
func NewGitUnavailable(msg, cause, fix string, err error) *UserError {
	return New(KindGitUnavailable, msg, cause, fix, err)
}

// NewDeletedTarget reports a file or symbol that vanished between
// discovery and processing. The worker skips it and continues.
func NewDeletedTarget(msg, cause string, err error) *UserError {
	return New(KindDeletedTarget, msg, cause, "", err)
}

// NewInputError reports invalid user input (bad arguments, bad patterns).
// Input errors do not wrap an underlying error.
func NewInputError(msg, cause, fix string) *UserError {
	return New(KindInput, msg, cause, fix, nil)
}

// NewNotFoundError reports a missing resource (symbol, file, project).
func NewNotFoundError(msg, cause, fix string) *UserError {
	return New(KindNotFound, msg, cause, fix, nil)
}

// NewInternalError reports a bug: unexpected nil, unreachable state,
// recovered panic.
func NewInternalError(msg, cause, fix string, err error) *UserError {
	return New(KindInternal, msg, cause, fix, err)
}

// IsKind reports whether err is (or wraps) a UserError of the given kind.
func IsKind(err error, kind Kind) bool {
	var ue *UserError
	return goerrors.As(err, &ue) && ue.Kind == kind
}

// AsUser returns err as a *UserError, preserving an existing kinded error
// anywhere in the chain. Anything else is wrapped as KindInternal with the
// given message and fix.
func AsUser(err error, msg, fix string) *UserError {
	var ue *UserError
	if goerrors.As(err, &ue) {
		return ue
	}
	return NewInternalError(msg, err.Error(), fix, err)
}

// Color definitions for error formatting.
var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns a formatted error message for terminal display:
//
//	Error: Cannot open the codegraph store
//	Cause: The snapshot file is unreadable
//	Fix:   Check permissions on .codegraph/data
//
// Empty Cause or Fix fields are omitted. Color output respects the
// NO_COLOR environment variable and the noColor parameter.
func (e *UserError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}

	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}

	return out.String()
}

// ErrorJSON is the machine-readable rendering for --json mode.
type ErrorJSON struct {
	Kind     Kind   `json:"kind"`
	Error    string `json:"error"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the UserError to its JSON rendering.
func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{
		Kind:     e.Kind,
		Error:    e.Message,
		Cause:    e.Cause,
		Fix:      e.Fix,
		ExitCode: e.ExitCode,
	}
}

// FatalError prints the error and exits with its code. UserErrors render
// through Format or ToJSON; anything else prints plainly and exits
// ExitInternal. This function never returns.
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}

	var ue *UserError
	if goerrors.As(err, &ue) {
		if jsonOutput {
			enc := json.NewEncoder(os.Stderr)
			enc.SetIndent("", "  ")
			// Encode failures are ignored: the process is about to exit
			// with the right code either way.
			_ = enc.Encode(ue.ToJSON())
		} else {
			fmt.Fprint(os.Stderr, ue.Format(false))
		}
		os.Exit(ue.ExitCode)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(ExitInternal)
}
