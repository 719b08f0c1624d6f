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

package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestJSONToPrettyPrintsWithStableIndent(t *testing.T) {
	var buf bytes.Buffer

	stats := struct {
		Files   int `json:"files"`
		Symbols int `json:"symbols"`
		Edges   int `json:"edges"`
	}{Files: 3, Symbols: 17, Edges: 9}

	if err := JSONTo(&buf, stats); err != nil {
		t.Fatalf("JSONTo failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "  \"files\": 3") {
		t.Errorf("expected 2-space indentation, got:\n%s", out)
	}
	if !strings.Contains(out, "\"symbols\": 17") {
		t.Errorf("missing symbols field, got:\n%s", out)
	}
	if !strings.HasSuffix(out, "}\n") {
		t.Errorf("expected trailing newline, got %q", out)
	}
}

func TestJSONToRespectsTags(t *testing.T) {
	var buf bytes.Buffer

	report := struct {
		SymbolID string  `json:"symbolId"`
		PageRank float64 `json:"pageRank,omitempty"`
		Body     string  `json:"-"`
	}{SymbolID: "a.go:Foo:1", Body: "never serialized"}

	if err := JSONTo(&buf, report); err != nil {
		t.Fatalf("JSONTo failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `"symbolId": "a.go:Foo:1"`) {
		t.Errorf("missing tagged field, got:\n%s", out)
	}
	if strings.Contains(out, "pageRank") {
		t.Errorf("zero omitempty field must be omitted, got:\n%s", out)
	}
	if strings.Contains(out, "never serialized") {
		t.Errorf("json:\"-\" field must be excluded, got:\n%s", out)
	}
}

func TestJSONToReportsUnencodableValues(t *testing.T) {
	var buf bytes.Buffer
	if err := JSONTo(&buf, map[string]any{"ch": make(chan int)}); err == nil {
		t.Fatal("expected an error for an unencodable value")
	}
}
