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

// Package ui renders the codegraph CLI's human-readable output: status
// lines, section headers, and the score/risk/path formatting shared by the
// status and query commands.
//
// Color output is controlled by the --no-color flag via InitColors, which
// sets the global color switch outright; the NO_COLOR environment variable
// and the TTY check that fatih/color applies by default are overridden once
// InitColors is called.
package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	cyan   = color.New(color.FgCyan)
	bold   = color.New(color.Bold)
	dim    = color.New(color.Faint)
)

// InitColors configures global color output based on the --no-color flag.
// Call it once in main() after parsing flags.
func InitColors(noColor bool) {
	color.NoColor = noColor
}

// Success prints a green line with a checkmark prefix.
//
// Example output: "✓ Indexed 42 files"
func Success(msg string) {
	_, _ = green.Println("✓ " + msg)
}

// Warning prints a yellow line with a warning prefix.
//
// Example output: "⚠ 3 file(s) failed to parse"
func Warning(msg string) {
	_, _ = yellow.Println("⚠ " + msg)
}

// Info prints a cyan line with an info prefix.
//
// Example output: "ℹ Stopping watcher."
func Info(msg string) {
	_, _ = cyan.Println("ℹ " + msg)
}

// Header prints a bold section header with an underline separator.
//
// Example output:
//
//	Project status
//	==============
func Header(text string) {
	_, _ = bold.Println(text)
	fmt.Println(strings.Repeat("=", len(text)))
}

// SubHeader prints a bold sub-section header without an underline.
func SubHeader(text string) {
	_, _ = bold.Println(text)
}

// Rank formats a PageRank score for leaderboard rows: fixed width so
// symbol names line up, dimmed so the names carry the emphasis.
func Rank(score float64) string {
	return dim.Sprintf("%-8.5f", score)
}

// Risk returns a risk-bucket tag colored by severity: critical and high in
// red, medium in yellow, low dimmed.
func Risk(bucket string) string {
	tag := "[" + bucket + "]"
	switch bucket {
	case "critical", "high":
		return red.Sprint(tag)
	case "medium":
		return yellow.Sprint(tag)
	default:
		return dim.Sprint(tag)
	}
}

// Path dims a file path so it reads as context, not content.
func Path(p string) string {
	return dim.Sprint(p)
}
