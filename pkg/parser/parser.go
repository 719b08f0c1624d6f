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

// Package parser walks a concrete-syntax tree for one source file and emits
// the symbols and import edges it declares. Cross-file and
// intra-file symbolic edges are the Resolver's job, not the parser's.
package parser

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kraklabs/codegraph/pkg/types"
)

// RawSymbol is a parser-local symbol: parent/children are still plain names
// (or empty), not the canonical IDs the Extractor assigns.
type RawSymbol struct {
	Name      string
	Kind      types.Kind
	Location  types.Location
	Signature string
	Docstring string
	Parent    string // enclosing symbol's name, empty at top level
	Exported  bool

	// Body carries a function-like declaration's body text, which the
	// signature deliberately truncates away. The Resolver scans it for
	// call/instantiation/use references; it is never persisted.
	Body string
}

// RawImport is a file-level import edge: `to` is the raw specifier as
// written, untouched by resolution.
type RawImport struct {
	Specifier string
	Location  types.Location
}

// Result is one file's parse output.
type Result struct {
	Symbols []RawSymbol
	Imports []RawImport
}

// LanguageParser walks one language's concrete-syntax tree.
type LanguageParser interface {
	// Language is the tag stored on every emitted Symbol.
	Language() string
	// Parse extracts symbols and imports from content. It must never panic
	// and must return partial results for malformed input.
	Parse(content []byte) Result
}

// extensionTable routes file extensions to parsers. Extensions absent from
// the table yield no parser and no result.
var extensionTable = map[string]func() LanguageParser{
	".ts":   newTypeScriptParser(false),
	".tsx":  newTypeScriptParser(false),
	".js":   newTypeScriptParser(false),
	".jsx":  newTypeScriptParser(false),
	".mjs":  newTypeScriptParser(false),
	".cjs":  newTypeScriptParser(false),
	".py":   func() LanguageParser { return newPythonParser() },
	".go":   func() LanguageParser { return newGoParser() },
	".rs":   func() LanguageParser { return newRustParser() },
	".java": func() LanguageParser { return newJavaParser() },
	".c":    func() LanguageParser { return newCParser(false) },
	".h":    func() LanguageParser { return newCParser(false) },
	".cpp":  func() LanguageParser { return newCParser(true) },
	".cc":   func() LanguageParser { return newCParser(true) },
	".cxx":  func() LanguageParser { return newCParser(true) },
	".hpp":  func() LanguageParser { return newCParser(true) },
	".hxx":  func() LanguageParser { return newCParser(true) },
}

// ForPath returns the parser registered for path's extension, or nil if the
// extension is unknown.
func ForPath(path string) LanguageParser {
	ext := strings.ToLower(filepath.Ext(path))
	ctor, ok := extensionTable[ext]
	if !ok {
		return nil
	}
	return ctor()
}

// --- shared walking helpers, used by every per-language file ----------------

// nodeLocation converts a tree-sitter node's range into the module's
// location convention: 1-based lines, 0-based columns.
func nodeLocation(n *sitter.Node) types.Location {
	start := n.StartPoint()
	end := n.EndPoint()
	return types.Location{
		Start: types.Position{Line: int(start.Row) + 1, Column: int(start.Column)},
		End:   types.Position{Line: int(end.Row) + 1, Column: int(end.Column)},
	}
}

// text returns a node's source text, tolerating a nil node.
func text(n *sitter.Node, content []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(content)
}

// oneLine collapses a signature rendering onto a single line and caps its
// length.
func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	const maxLen = 160
	if len(s) > maxLen {
		s = s[:maxLen-1] + "…"
	}
	return s
}

// runQuery executes a tree-sitter query against root and returns, for each
// match, the captures keyed by capture name. Malformed queries yield no
// results rather than a panic.
func runQuery(pattern string, lang *sitter.Language, root *sitter.Node, content []byte) []map[string]*sitter.Node {
	q, err := sitter.NewQuery([]byte(pattern), lang)
	if err != nil {
		return nil
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, root)

	var matches []map[string]*sitter.Node
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		captures := make(map[string]*sitter.Node, len(m.Captures))
		for _, c := range m.Captures {
			captures[q.CaptureNameForId(c.Index)] = c.Node
		}
		matches = append(matches, captures)
	}
	return matches
}

// safeParse parses content with lang, recovering from any tree-sitter panic
// so a single malformed file can never crash a batch. It returns
// nil on failure.
func safeParse(lang *sitter.Language, content []byte) (root *sitter.Node, ok bool) {
	defer func() {
		if recover() != nil {
			root, ok = nil, false
		}
	}()

	p := sitter.NewParser()
	p.SetLanguage(lang)
	tree, err := p.ParseCtx(context.Background(), nil, content)
	if err != nil || tree == nil {
		return nil, false
	}
	return tree.RootNode(), true
}
