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
	"github.com/smacker/go-tree-sitter/rust"

	"github.com/kraklabs/codegraph/pkg/types"
)

const rustQuery = `
(mod_item name: (identifier) @namespace.name) @namespace.node
(struct_item name: (type_identifier) @class.name) @class.node
(enum_item name: (type_identifier) @enum.name) @enum.node
(trait_item name: (type_identifier) @interface.name) @interface.node
(impl_item type: (type_identifier) @impl.type) @impl.node
(function_item name: (identifier) @function.name) @function.node
(const_item name: (identifier) @const.name) @const.node
(static_item name: (identifier) @const.name) @const.node
(type_item name: (type_identifier) @type.name) @type.node
(let_declaration pattern: (identifier) @var.name) @var.node
(use_declaration argument: (_) @import.specifier) @import.node
`

type rustParser struct {
	lang *sitter.Language
}

func newRustParser() *rustParser { return &rustParser{lang: rust.GetLanguage()} }

func (p *rustParser) Language() string { return "rust" }

func (p *rustParser) Parse(content []byte) Result {
	var res Result
	defer func() { recover() }() //nolint:errcheck

	root, ok := safeParse(p.lang, content)
	if !ok {
		return res
	}

	// impl blocks establish the owning type for the fn items nested inside;
	// function_item captures look up their enclosing impl/mod by walking
	// parents, the same way tsEnclosingName does for TS classes.
	for _, m := range runQuery(rustQuery, p.lang, root, content) {
		switch {
		case m["import.specifier"] != nil:
			res.Imports = append(res.Imports, RawImport{
				Specifier: text(m["import.specifier"], content),
				Location:  nodeLocation(m["import.node"]),
			})
		case m["namespace.name"] != nil:
			res.Symbols = append(res.Symbols, rustSymbol(m["namespace.node"], m["namespace.name"], content, types.KindNamespace))
		case m["class.name"] != nil:
			owner := rustEnclosingImplOrMod(m["class.node"], content)
			sym := rustSymbol(m["class.node"], m["class.name"], content, types.KindClass)
			sym.Parent = owner
			res.Symbols = append(res.Symbols, sym)
			res.Symbols = append(res.Symbols, rustStructFields(m["class.node"], content, text(m["class.name"], content))...)
		case m["enum.name"] != nil:
			res.Symbols = append(res.Symbols, rustSymbol(m["enum.node"], m["enum.name"], content, types.KindEnum))
			res.Symbols = append(res.Symbols, rustEnumVariants(m["enum.node"], content, text(m["enum.name"], content))...)
		case m["interface.name"] != nil:
			res.Symbols = append(res.Symbols, rustSymbol(m["interface.node"], m["interface.name"], content, types.KindInterface))
		case m["function.name"] != nil:
			owner := rustEnclosingImplOrMod(m["function.node"], content)
			kind := types.KindFunction
			if owner != "" && rustOwnerIsImpl(m["function.node"]) {
				kind = types.KindMethod
			}
			sym := rustSymbol(m["function.node"], m["function.name"], content, kind)
			sym.Parent = owner
			sym.Body = text(m["function.node"].ChildByFieldName("body"), content)
			res.Symbols = append(res.Symbols, sym)
		case m["const.name"] != nil:
			res.Symbols = append(res.Symbols, rustSymbol(m["const.node"], m["const.name"], content, types.KindConstant))
		case m["type.name"] != nil:
			res.Symbols = append(res.Symbols, rustSymbol(m["type.node"], m["type.name"], content, types.KindType))
		case m["var.name"] != nil:
			owner := rustEnclosingFunctionName(m["var.node"], content)
			sym := rustSymbol(m["var.node"], m["var.name"], content, types.KindVariable)
			sym.Parent = owner
			res.Symbols = append(res.Symbols, sym)
		}
	}

	return res
}

func rustSymbol(node, nameNode *sitter.Node, content []byte, kind types.Kind) RawSymbol {
	name := text(nameNode, content)
	return RawSymbol{
		Name:      name,
		Kind:      kind,
		Location:  nodeLocation(node),
		Signature: oneLine(rustHeader(node, content)),
		Docstring: linePrefixDocstring(strings.Split(string(content), "\n"), int(node.StartPoint().Row)+1, "///"),
		Exported:  rustIsPub(node),
	}
}

func rustHeader(n *sitter.Node, content []byte) string {
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

func rustIsPub(n *sitter.Node) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "visibility_modifier" {
			return true
		}
	}
	return false
}

func rustEnclosingImplOrMod(n *sitter.Node, content []byte) string {
	cur := n.Parent()
	for cur != nil {
		if cur.Type() == "impl_item" {
			if t := cur.ChildByFieldName("type"); t != nil {
				return text(t, content)
			}
		}
		if cur.Type() == "mod_item" {
			if nameNode := cur.ChildByFieldName("name"); nameNode != nil {
				return text(nameNode, content)
			}
		}
		cur = cur.Parent()
	}
	return ""
}

func rustOwnerIsImpl(n *sitter.Node) bool {
	cur := n.Parent()
	for cur != nil {
		if cur.Type() == "impl_item" {
			return true
		}
		cur = cur.Parent()
	}
	return false
}

func rustEnclosingFunctionName(n *sitter.Node, content []byte) string {
	cur := n.Parent()
	for cur != nil {
		if cur.Type() == "function_item" {
			if nameNode := cur.ChildByFieldName("name"); nameNode != nil {
				return text(nameNode, content)
			}
		}
		cur = cur.Parent()
	}
	return ""
}

func rustStructFields(structNode *sitter.Node, content []byte, owner string) []RawSymbol {
	body := structNode.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var out []RawSymbol
	for i := 0; i < int(body.NamedChildCount()); i++ {
		field := body.NamedChild(i)
		if field.Type() != "field_declaration" {
			continue
		}
		nameNode := field.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		out = append(out, RawSymbol{
			Name:     text(nameNode, content),
			Kind:     types.KindProperty,
			Location: nodeLocation(field),
			Parent:   owner,
			Exported: rustIsPub(field),
		})
	}
	return out
}

func rustEnumVariants(enumNode *sitter.Node, content []byte, owner string) []RawSymbol {
	body := enumNode.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var out []RawSymbol
	for i := 0; i < int(body.NamedChildCount()); i++ {
		variant := body.NamedChild(i)
		nameNode := variant.ChildByFieldName("name")
		if nameNode == nil {
			nameNode = variant
		}
		out = append(out, RawSymbol{
			Name:     text(nameNode, content),
			Kind:     types.KindConstant,
			Location: nodeLocation(variant),
			Parent:   owner,
			Exported: true,
		})
	}
	return out
}
