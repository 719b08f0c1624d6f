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
	"github.com/smacker/go-tree-sitter/java"

	"github.com/kraklabs/codegraph/pkg/types"
)

const javaQuery = `
(class_declaration name: (identifier) @class.name) @class.node
(interface_declaration name: (identifier) @interface.name) @interface.node
(enum_declaration name: (identifier) @enum.name) @enum.node
(method_declaration name: (identifier) @method.name) @method.node
(constructor_declaration name: (identifier) @ctor.name) @ctor.node
(field_declaration declarator: (variable_declarator name: (identifier) @field.name)) @field.node
(local_variable_declaration declarator: (variable_declarator name: (identifier) @var.name)) @var.node
(import_declaration (scoped_identifier) @import.specifier) @import.node
`

type javaParser struct {
	lang *sitter.Language
}

func newJavaParser() *javaParser { return &javaParser{lang: java.GetLanguage()} }

func (p *javaParser) Language() string { return "java" }

func (p *javaParser) Parse(content []byte) Result {
	var res Result
	defer func() { recover() }() //nolint:errcheck

	root, ok := safeParse(p.lang, content)
	if !ok {
		return res
	}

	for _, m := range runQuery(javaQuery, p.lang, root, content) {
		switch {
		case m["import.specifier"] != nil:
			res.Imports = append(res.Imports, RawImport{
				Specifier: text(m["import.specifier"], content),
				Location:  nodeLocation(m["import.node"]),
			})
		case m["class.name"] != nil:
			res.Symbols = append(res.Symbols, javaSymbol(m["class.node"], m["class.name"], content, types.KindClass))
		case m["interface.name"] != nil:
			res.Symbols = append(res.Symbols, javaSymbol(m["interface.node"], m["interface.name"], content, types.KindInterface))
		case m["enum.name"] != nil:
			res.Symbols = append(res.Symbols, javaSymbol(m["enum.node"], m["enum.name"], content, types.KindEnum))
			res.Symbols = append(res.Symbols, javaEnumConstants(m["enum.node"], content, text(m["enum.name"], content))...)
		case m["method.name"] != nil:
			sym := javaSymbol(m["method.node"], m["method.name"], content, types.KindMethod)
			sym.Parent = javaEnclosingTypeName(m["method.node"], content)
			sym.Exported = javaHasPublicModifier(m["method.node"], content) || !javaHasVisibilityModifier(m["method.node"], content)
			sym.Body = text(m["method.node"].ChildByFieldName("body"), content)
			res.Symbols = append(res.Symbols, sym)
		case m["ctor.name"] != nil:
			sym := javaSymbol(m["ctor.node"], m["ctor.name"], content, types.KindConstructor)
			sym.Parent = javaEnclosingTypeName(m["ctor.node"], content)
			sym.Body = text(m["ctor.node"].ChildByFieldName("body"), content)
			res.Symbols = append(res.Symbols, sym)
		case m["field.name"] != nil:
			kind := types.KindProperty
			if javaHasStaticModifier(m["field.node"], content) {
				kind = types.KindConstant
			}
			sym := javaSymbol(m["field.node"], m["field.name"], content, kind)
			sym.Parent = javaEnclosingTypeName(m["field.node"], content)
			sym.Exported = javaHasPublicModifier(m["field.node"], content)
			res.Symbols = append(res.Symbols, sym)
		case m["var.name"] != nil:
			res.Symbols = append(res.Symbols, javaSymbol(m["var.node"], m["var.name"], content, types.KindVariable))
		}
	}

	return res
}

func javaSymbol(node, nameNode *sitter.Node, content []byte, kind types.Kind) RawSymbol {
	name := text(nameNode, content)
	return RawSymbol{
		Name:      name,
		Kind:      kind,
		Location:  nodeLocation(node),
		Signature: oneLine(javaHeader(node, content)),
		Docstring: blockCommentDocstring(strings.Split(string(content), "\n"), int(node.StartPoint().Row)+1),
		Exported:  javaHasPublicModifier(node, content),
	}
}

func javaHeader(n *sitter.Node, content []byte) string {
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

func javaModifiers(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "modifiers" {
			return n.Child(i)
		}
	}
	return nil
}

func javaHasPublicModifier(n *sitter.Node, content []byte) bool {
	mods := javaModifiers(n)
	if mods == nil {
		return false
	}
	return strings.Contains(text(mods, content), "public")
}

func javaHasVisibilityModifier(n *sitter.Node, content []byte) bool {
	mods := javaModifiers(n)
	if mods == nil {
		return false
	}
	src := text(mods, content)
	return strings.Contains(src, "public") || strings.Contains(src, "private") || strings.Contains(src, "protected")
}

func javaHasStaticModifier(n *sitter.Node, content []byte) bool {
	mods := javaModifiers(n)
	if mods == nil {
		return false
	}
	return strings.Contains(text(mods, content), "static")
}

func javaEnclosingTypeName(n *sitter.Node, content []byte) string {
	cur := n.Parent()
	for cur != nil {
		switch cur.Type() {
		case "class_declaration", "interface_declaration", "enum_declaration":
			if nameNode := cur.ChildByFieldName("name"); nameNode != nil {
				return text(nameNode, content)
			}
		}
		cur = cur.Parent()
	}
	return ""
}

func javaEnumConstants(enumNode *sitter.Node, content []byte, owner string) []RawSymbol {
	body := enumNode.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var out []RawSymbol
	for i := 0; i < int(body.NamedChildCount()); i++ {
		constNode := body.NamedChild(i)
		if constNode.Type() != "enum_constant" {
			continue
		}
		nameNode := constNode.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		out = append(out, RawSymbol{
			Name:     text(nameNode, content),
			Kind:     types.KindConstant,
			Location: nodeLocation(constNode),
			Parent:   owner,
			Exported: true,
		})
	}
	return out
}
