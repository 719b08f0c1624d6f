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
	"github.com/smacker/go-tree-sitter/python"

	"github.com/kraklabs/codegraph/pkg/types"
)

type pyParser struct {
	lang *sitter.Language
}

func newPythonParser() *pyParser { return &pyParser{lang: python.GetLanguage()} }

func (p *pyParser) Language() string { return "python" }

func (p *pyParser) Parse(content []byte) Result {
	var res Result
	defer func() { recover() }() //nolint:errcheck

	root, ok := safeParse(p.lang, content)
	if !ok {
		return res
	}

	p.walkModule(root, content, &res)
	return res
}

// walkModule descends decorated_definition wrappers transparently so a
// decorated class or function is still recorded.
func (p *pyParser) walkModule(n *sitter.Node, content []byte, res *Result) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		p.walkStatement(n.NamedChild(i), content, res, "")
	}
}

func (p *pyParser) walkStatement(stmt *sitter.Node, content []byte, res *Result, owner string) {
	switch stmt.Type() {
	case "decorated_definition":
		def := stmt.ChildByFieldName("definition")
		if def != nil {
			p.walkStatement(def, content, res, owner)
		}
	case "class_definition":
		p.emitClass(stmt, content, res, owner)
	case "function_definition":
		p.emitFunction(stmt, content, res, owner)
	case "import_statement", "import_from_statement":
		p.emitImport(stmt, content, res)
	case "expression_statement":
		p.emitModuleAssignment(stmt, content, res, owner)
	}
}

func (p *pyParser) emitClass(n *sitter.Node, content []byte, res *Result, owner string) {
	nameNode := n.ChildByFieldName("name")
	name := text(nameNode, content)
	res.Symbols = append(res.Symbols, RawSymbol{
		Name:      name,
		Kind:      types.KindClass,
		Location:  nodeLocation(n),
		Signature: oneLine(pyHeader(n, content)),
		Docstring: pythonDocstring(n.ChildByFieldName("body"), content),
		Parent:    owner,
		Exported:  owner == "",
	})

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		p.walkStatement(body.NamedChild(i), content, res, name)
	}
}

func (p *pyParser) emitFunction(n *sitter.Node, content []byte, res *Result, owner string) {
	nameNode := n.ChildByFieldName("name")
	name := text(nameNode, content)
	kind := types.KindFunction
	if owner != "" {
		kind = types.KindMethod
	}
	res.Symbols = append(res.Symbols, RawSymbol{
		Name:      name,
		Kind:      kind,
		Location:  nodeLocation(n),
		Signature: oneLine(pyHeader(n, content)),
		Docstring: pythonDocstring(n.ChildByFieldName("body"), content),
		Parent:    owner,
		Exported:  owner == "",
		Body:      text(n.ChildByFieldName("body"), content),
	})

	if body := n.ChildByFieldName("body"); body != nil {
		p.emitSelfAssignments(body, content, res, name)
	}
}

func pyHeader(n *sitter.Node, content []byte) string {
	body := n.ChildByFieldName("body")
	full := text(n, content)
	if body == nil {
		return full
	}
	cut := int(body.StartByte()) - int(n.StartByte())
	if cut < 0 || cut > len(full) {
		return full
	}
	return full[:cut]
}

func (p *pyParser) emitImport(n *sitter.Node, content []byte, res *Result) {
	if n.Type() == "import_from_statement" {
		// Only the module is a file-level import target; the imported names
		// are symbols inside it.
		if mod := n.ChildByFieldName("module_name"); mod != nil {
			res.Imports = append(res.Imports, RawImport{Specifier: text(mod, content), Location: nodeLocation(n)})
		}
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "dotted_name", "aliased_import":
			spec := text(child, content)
			if child.Type() == "aliased_import" {
				if name := child.ChildByFieldName("name"); name != nil {
					spec = text(name, content)
				}
			}
			res.Imports = append(res.Imports, RawImport{Specifier: spec, Location: nodeLocation(n)})
		}
	}
}

// emitModuleAssignment handles "NAME = expr" (a bare identifier target) at
// the top level of a module or class body; "self.NAME = expr" inside methods
// is handled by emitSelfAssignments.
func (p *pyParser) emitModuleAssignment(stmt *sitter.Node, content []byte, res *Result, owner string) {
	if stmt.NamedChildCount() == 0 {
		return
	}
	assign := stmt.NamedChild(0)
	if assign.Type() != "assignment" {
		return
	}
	left := assign.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return
	}
	name := text(left, content)
	kind := types.KindVariable
	if isAllCapsUnderscore(name) {
		kind = types.KindConstant
	}
	res.Symbols = append(res.Symbols, RawSymbol{
		Name:     name,
		Kind:     kind,
		Location: nodeLocation(assign),
		Parent:   owner,
		Exported: owner == "",
	})
}

func (p *pyParser) emitSelfAssignments(body *sitter.Node, content []byte, res *Result, owner string) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
			continue
		}
		assign := stmt.NamedChild(0)
		if assign.Type() != "assignment" {
			continue
		}
		left := assign.ChildByFieldName("left")
		if left == nil || left.Type() != "attribute" {
			continue
		}
		obj := left.ChildByFieldName("object")
		attr := left.ChildByFieldName("attribute")
		if obj == nil || attr == nil || text(obj, content) != "self" {
			continue
		}
		name := text(attr, content)
		kind := types.KindVariable
		if isAllCapsUnderscore(name) {
			kind = types.KindConstant
		}
		res.Symbols = append(res.Symbols, RawSymbol{
			Name:     name,
			Kind:     kind,
			Location: nodeLocation(assign),
			Parent:   owner,
		})
	}
}

func isAllCapsUnderscore(name string) bool {
	if name == "" {
		return false
	}
	hasUpper := false
	for _, r := range name {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasUpper = true
		}
	}
	return hasUpper && !strings.Contains(name, " ")
}
