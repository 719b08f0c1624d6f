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

package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// linePrefixDocstring walks contiguous comment lines immediately above a
// 1-based declaration line that start with prefix (Godoc "//", Rustdoc
// "///"), stopping at the first non-matching or blank line.
func linePrefixDocstring(lines []string, declLine int, prefix string) string {
	var collected []string
	for i := declLine - 2; i >= 0; i-- {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, prefix) {
			break
		}
		collected = append(collected, strings.TrimSpace(strings.TrimPrefix(trimmed, prefix)))
	}
	for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
		collected[i], collected[j] = collected[j], collected[i]
	}
	return strings.TrimSpace(strings.Join(collected, " "))
}

// blockCommentDocstring looks for a "/* ... */" or "/** ... */" block ending
// on the line immediately above declLine (JSDoc, Javadoc, C/C++) and returns
// its de-commented text.
func blockCommentDocstring(lines []string, declLine int) string {
	end := declLine - 2
	for end >= 0 && strings.TrimSpace(lines[end]) == "" {
		end--
	}
	if end < 0 || !strings.HasSuffix(strings.TrimSpace(lines[end]), "*/") {
		return ""
	}

	start := end
	for start >= 0 {
		t := strings.TrimSpace(lines[start])
		if strings.HasPrefix(t, "/*") {
			break
		}
		start--
	}
	if start < 0 {
		return ""
	}

	var b strings.Builder
	for i := start; i <= end; i++ {
		t := strings.TrimSpace(lines[i])
		t = strings.TrimPrefix(t, "/**")
		t = strings.TrimPrefix(t, "/*")
		t = strings.TrimSuffix(t, "*/")
		t = strings.TrimPrefix(strings.TrimSpace(t), "*")
		t = strings.TrimSpace(t)
		if t != "" {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(t)
		}
	}
	return b.String()
}

// pythonDocstring returns the first statement of body when it is a bare
// string expression.
func pythonDocstring(body *sitter.Node, content []byte) string {
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str.Type() != "string" {
		return ""
	}
	raw := str.Content(content)
	raw = strings.Trim(raw, "\"'")
	return strings.TrimSpace(raw)
}
