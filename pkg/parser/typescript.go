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
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/kraklabs/codegraph/pkg/types"
)

// tsQuery captures one declaration kind per line; each capture name encodes
// the resulting types.Kind (e.g. "class.name" → class).
const tsQuery = `
(class_declaration name: (type_identifier) @class.name) @class.node
(interface_declaration name: (type_identifier) @interface.name) @interface.node
(enum_declaration name: (identifier) @enum.name) @enum.node
(type_alias_declaration name: (type_identifier) @type.name) @type.node
(module name: (identifier) @namespace.name) @namespace.node
(function_declaration name: (identifier) @function.name) @function.node
(method_definition name: (property_identifier) @method.name) @method.node
(public_field_definition name: (property_identifier) @property.name) @property.node
(property_signature name: (property_identifier) @property.name) @property.node
(variable_declarator name: (identifier) @function.name value: [(arrow_function) (function_expression)]) @function.node
(variable_declarator name: (identifier) @var.name) @var.node
(import_statement source: (string) @import.specifier) @import.node
`

// typeScriptParser handles .ts/.tsx/.js/.jsx/.mjs/.cjs via tree-sitter
// queries.
type typeScriptParser struct {
	lang *sitter.Language
}

// newTypeScriptParser ignores tsx: TSX/JSX variants share the typescript
// grammar, since the declaration shapes this parser queries for are
// identical between the two.
func newTypeScriptParser(tsx bool) func() LanguageParser {
	return func() LanguageParser { return &typeScriptParser{lang: typescript.GetLanguage()} }
}

func (p *typeScriptParser) Language() string { return "typescript" }

func (p *typeScriptParser) Parse(content []byte) Result {
	var res Result
	defer func() { recover() }() //nolint:errcheck

	root, ok := safeParse(p.lang, content)
	if !ok {
		return res
	}

	for _, m := range runQuery(tsQuery, p.lang, root, content) {
		switch {
		case m["import.specifier"] != nil:
			spec := strings.Trim(text(m["import.specifier"], content), `"'`)
			res.Imports = append(res.Imports, RawImport{Specifier: spec, Location: nodeLocation(m["import.node"])})
		case m["class.name"] != nil:
			res.Symbols = append(res.Symbols, tsSymbol(m["class.node"], m["class.name"], content, types.KindClass))
		case m["interface.name"] != nil:
			res.Symbols = append(res.Symbols, tsSymbol(m["interface.node"], m["interface.name"], content, types.KindInterface))
		case m["enum.name"] != nil:
			res.Symbols = append(res.Symbols, tsSymbol(m["enum.node"], m["enum.name"], content, types.KindEnum))
			res.Symbols = append(res.Symbols, tsEnumMembers(m["enum.node"], content, text(m["enum.name"], content))...)
		case m["type.name"] != nil:
			res.Symbols = append(res.Symbols, tsSymbol(m["type.node"], m["type.name"], content, types.KindType))
		case m["namespace.name"] != nil:
			res.Symbols = append(res.Symbols, tsSymbol(m["namespace.node"], m["namespace.name"], content, types.KindNamespace))
		case m["function.name"] != nil:
			node := m["function.node"]
			sym := tsSymbol(node, m["function.name"], content, types.KindFunction)
			body := node.ChildByFieldName("body")
			if body == nil {
				// function-valued declarator: the body hangs off the
				// arrow/function expression in the value field.
				if value := node.ChildByFieldName("value"); value != nil {
					body = value.ChildByFieldName("body")
				}
			}
			sym.Body = text(body, content)
			res.Symbols = append(res.Symbols, sym)
		case m["method.name"] != nil:
			sym := tsSymbol(m["method.node"], m["method.name"], content, types.KindMethod)
			sym.Parent = tsEnclosingName(m["method.node"], content)
			sym.Body = text(m["method.node"].ChildByFieldName("body"), content)
			res.Symbols = append(res.Symbols, sym)
		case m["property.name"] != nil:
			sym := tsSymbol(m["property.node"], m["property.name"], content, types.KindProperty)
			sym.Parent = tsEnclosingName(m["property.node"], content)
			res.Symbols = append(res.Symbols, sym)
		case m["var.name"] != nil:
			kind := types.KindVariable
			if decl := tsVarDeclKeyword(m["var.node"]); decl == "const" {
				kind = types.KindConstant
			}
			res.Symbols = append(res.Symbols, tsSymbol(m["var.node"], m["var.name"], content, kind))
		}
	}

	return res
}

func tsSymbol(node, nameNode *sitter.Node, content []byte, kind types.Kind) RawSymbol {
	name := text(nameNode, content)
	return RawSymbol{
		Name:      name,
		Kind:      kind,
		Location:  nodeLocation(node),
		Signature: oneLine(tsHeaderText(node, content)),
		Docstring: blockCommentDocstring(strings.Split(string(content), "\n"), int(node.StartPoint().Row)+1),
		Exported:  tsIsExported(node),
	}
}

// tsHeaderText renders everything up to a block body, mirroring funcSignature.
func tsHeaderText(n *sitter.Node, content []byte) string {
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

// tsIsExported walks up from a declaration to see whether it (or its
// variable_declaration/lexical_declaration wrapper) sits directly under an
// export_statement.
func tsIsExported(n *sitter.Node) bool {
	cur := n
	for cur != nil {
		parent := cur.Parent()
		if parent == nil {
			return false
		}
		if parent.Type() == "export_statement" {
			return true
		}
		switch parent.Type() {
		case "variable_declaration", "lexical_declaration", "variable_declarator":
			cur = parent
			continue
		}
		return false
	}
	return false
}

// tsVarDeclKeyword returns "const", "let", or "var" for the declaration
// wrapping a variable_declarator node.
func tsVarDeclKeyword(declarator *sitter.Node) string {
	cur := declarator.Parent()
	for cur != nil {
		if cur.Type() == "lexical_declaration" || cur.Type() == "variable_declaration" {
			if cur.Child(0) != nil {
				return cur.Child(0).Type()
			}
		}
		cur = cur.Parent()
	}
	return "let"
}

// tsEnclosingName returns the name of the nearest enclosing class/interface,
// or "" at top level.
func tsEnclosingName(n *sitter.Node, content []byte) string {
	cur := n.Parent()
	for cur != nil {
		if cur.Type() == "class_declaration" || cur.Type() == "interface_declaration" {
			if nameNode := cur.ChildByFieldName("name"); nameNode != nil {
				return text(nameNode, content)
			}
		}
		cur = cur.Parent()
	}
	return ""
}

func tsEnumMembers(enumNode *sitter.Node, content []byte, owner string) []RawSymbol {
	body := enumNode.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var out []RawSymbol
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		nameNode := member.ChildByFieldName("name")
		if nameNode == nil {
			nameNode = member
		}
		out = append(out, RawSymbol{
			Name:     text(nameNode, content),
			Kind:     types.KindConstant,
			Location: nodeLocation(member),
			Parent:   owner,
			Exported: true,
		})
	}
	return out
}
