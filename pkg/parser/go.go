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
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/kraklabs/codegraph/pkg/types"
)

// goParser walks Go source. Unlike the query-based parsers it walks the
// tree manually, node kind by node kind.
type goParser struct {
	lang *sitter.Language
}

func newGoParser() *goParser { return &goParser{lang: golang.GetLanguage()} }

func (p *goParser) Language() string { return "go" }

func (p *goParser) Parse(content []byte) Result {
	var res Result
	defer func() { recover() }() //nolint:errcheck // malformed input must never escape

	root, ok := safeParse(p.lang, content)
	if !ok {
		return res
	}

	lines := strings.Split(string(content), "\n")

	p.walk(root, content, lines, &res)
	return res
}

func goExported(name string) bool {
	if name == "" {
		return false
	}
	r := []rune(name)[0]
	return unicode.IsUpper(r)
}

func (p *goParser) walk(n *sitter.Node, content []byte, lines []string, res *Result) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "import_declaration":
			p.emitImports(child, content, res)
		case "type_declaration":
			p.emitTypeDecl(child, content, lines, res)
		case "function_declaration":
			p.emitFunc(child, content, lines, res, "")
		case "method_declaration":
			p.emitMethod(child, content, lines, res)
		case "var_declaration", "const_declaration":
			p.emitVarConst(child, content, lines, res, child.Type() == "const_declaration", "")
		default:
			p.walk(child, content, lines, res)
		}
	}
}

func (p *goParser) emitImports(n *sitter.Node, content []byte, res *Result) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		spec := n.NamedChild(i)
		if spec.Type() != "import_spec" {
			continue
		}
		pathNode := spec.ChildByFieldName("path")
		if pathNode == nil {
			continue
		}
		specifier := strings.Trim(text(pathNode, content), `"`)
		res.Imports = append(res.Imports, RawImport{Specifier: specifier, Location: nodeLocation(spec)})
	}
}

func (p *goParser) emitTypeDecl(n *sitter.Node, content []byte, lines []string, res *Result) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		spec := n.NamedChild(i)
		if spec.Type() != "type_spec" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		typeNode := spec.ChildByFieldName("type")
		name := text(nameNode, content)
		kind := types.KindType
		if typeNode != nil {
			switch typeNode.Type() {
			case "struct_type":
				kind = types.KindClass
			case "interface_type":
				kind = types.KindInterface
			}
		}
		sym := RawSymbol{
			Name:      name,
			Kind:      kind,
			Location:  nodeLocation(spec),
			Signature: oneLine(text(spec, content)),
			Docstring: linePrefixDocstring(lines, int(n.StartPoint().Row)+1, "//"),
			Exported:  goExported(name),
		}
		res.Symbols = append(res.Symbols, sym)

		if typeNode != nil && typeNode.Type() == "struct_type" {
			p.emitStructFields(typeNode, content, name, res)
		}
	}
}

func (p *goParser) emitStructFields(structType *sitter.Node, content []byte, owner string, res *Result) {
	var fieldList *sitter.Node
	for i := 0; i < int(structType.NamedChildCount()); i++ {
		if c := structType.NamedChild(i); c.Type() == "field_declaration_list" {
			fieldList = c
			break
		}
	}
	if fieldList == nil {
		return
	}
	for i := 0; i < int(fieldList.NamedChildCount()); i++ {
		decl := fieldList.NamedChild(i)
		if decl.Type() != "field_declaration" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		name := text(nameNode, content)
		if name == "" {
			continue
		}
		res.Symbols = append(res.Symbols, RawSymbol{
			Name:      name,
			Kind:      types.KindProperty,
			Location:  nodeLocation(decl),
			Signature: oneLine(text(decl, content)),
			Parent:    owner,
			Exported:  goExported(name),
		})
	}
}

func (p *goParser) emitFunc(n *sitter.Node, content []byte, lines []string, res *Result, owner string) {
	nameNode := n.ChildByFieldName("name")
	name := text(nameNode, content)
	sym := RawSymbol{
		Name:      name,
		Kind:      types.KindFunction,
		Location:  nodeLocation(n),
		Signature: oneLine(funcSignature(n, content)),
		Docstring: linePrefixDocstring(lines, int(n.StartPoint().Row)+1, "//"),
		Parent:    owner,
		Exported:  goExported(name),
		Body:      text(n.ChildByFieldName("body"), content),
	}
	res.Symbols = append(res.Symbols, sym)

	if body := n.ChildByFieldName("body"); body != nil {
		p.emitLocalShortVars(body, content, name, res)
	}
}

func (p *goParser) emitMethod(n *sitter.Node, content []byte, lines []string, res *Result) {
	nameNode := n.ChildByFieldName("name")
	name := text(nameNode, content)
	receiver := n.ChildByFieldName("receiver")
	owner := extractReceiverTypeName(receiver, content)

	sym := RawSymbol{
		Name:      name,
		Kind:      types.KindMethod,
		Location:  nodeLocation(n),
		Signature: oneLine(funcSignature(n, content)),
		Docstring: linePrefixDocstring(lines, int(n.StartPoint().Row)+1, "//"),
		Parent:    owner,
		Exported:  goExported(name),
		Body:      text(n.ChildByFieldName("body"), content),
	}
	res.Symbols = append(res.Symbols, sym)

	if body := n.ChildByFieldName("body"); body != nil {
		p.emitLocalShortVars(body, content, name, res)
	}
}

func extractReceiverTypeName(receiver *sitter.Node, content []byte) string {
	if receiver == nil || receiver.NamedChildCount() == 0 {
		return ""
	}
	param := receiver.NamedChild(0)
	typeNode := param.ChildByFieldName("type")
	if typeNode == nil {
		return ""
	}
	name := text(typeNode, content)
	return strings.TrimPrefix(name, "*")
}

func funcSignature(n *sitter.Node, content []byte) string {
	// Render everything up to (but excluding) the body, e.g. "func Foo(a int) error".
	body := n.ChildByFieldName("body")
	full := text(n, content)
	if body == nil {
		return full
	}
	bodyStart := int(body.StartByte()) - int(n.StartByte())
	if bodyStart < 0 || bodyStart > len(full) {
		return full
	}
	return full[:bodyStart]
}

// emitLocalShortVars captures `:=` declarations directly inside a function
// body, without descending into nested functions.
func (p *goParser) emitLocalShortVars(body *sitter.Node, content []byte, owner string, res *Result) {
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == "func_literal" {
				continue // nested function: its own scope
			}
			if child.Type() == "short_var_declaration" {
				left := child.ChildByFieldName("left")
				if left != nil {
					for j := 0; j < int(left.NamedChildCount()); j++ {
						id := left.NamedChild(j)
						if id.Type() != "identifier" {
							continue
						}
						name := text(id, content)
						res.Symbols = append(res.Symbols, RawSymbol{
							Name:     name,
							Kind:     types.KindVariable,
							Location: nodeLocation(id),
							Parent:   owner,
							Exported: goExported(name),
						})
					}
				}
			}
			walk(child)
		}
	}
	walk(body)
}

func (p *goParser) emitVarConst(n *sitter.Node, content []byte, lines []string, res *Result, isConst bool, owner string) {
	kind := types.KindVariable
	if isConst {
		kind = types.KindConstant
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		spec := n.NamedChild(i)
		if spec.Type() != "var_spec" && spec.Type() != "const_spec" {
			continue
		}
		nameList := spec.ChildByFieldName("name")
		if nameList == nil {
			continue
		}
		names := []*sitter.Node{nameList}
		// Multiple names (var a, b = 1, 2) show up as repeated "name" fields;
		// go-tree-sitter exposes them as siblings typed identifier.
		for j := 0; j < int(spec.NamedChildCount()); j++ {
			c := spec.NamedChild(j)
			if c.Type() == "identifier" && c != nameList {
				names = append(names, c)
			}
		}
		for _, id := range names {
			name := text(id, content)
			res.Symbols = append(res.Symbols, RawSymbol{
				Name:      name,
				Kind:      kind,
				Location:  nodeLocation(id),
				Signature: oneLine(text(spec, content)),
				Docstring: linePrefixDocstring(lines, int(n.StartPoint().Row)+1, "//"),
				Parent:    owner,
				Exported:  goExported(name),
			})
		}
	}
}
