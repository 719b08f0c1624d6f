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
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"

	"github.com/kraklabs/codegraph/pkg/types"
)

const cQuery = `
(namespace_definition name: (identifier) @namespace.name) @namespace.node
(struct_specifier name: (type_identifier) @class.name) @class.node
(class_specifier name: (type_identifier) @interface.name) @interface.node
(union_specifier name: (type_identifier) @type.name) @type.node
(function_definition declarator: (function_declarator declarator: (identifier) @function.name)) @function.node
(preproc_def name: (identifier) @const.name) @const.node
(preproc_include path: (_) @import.specifier) @import.node
`

// cParser covers both C and C++ via the matching grammar; the only
// behavioral difference is which header extensions route to it.
type cParser struct {
	lang  *sitter.Language
	isCpp bool
}

func newCParser(isCpp bool) *cParser {
	lang := c.GetLanguage()
	if isCpp {
		lang = cpp.GetLanguage()
	}
	return &cParser{lang: lang, isCpp: isCpp}
}

func (p *cParser) Language() string {
	if p.isCpp {
		return "cpp"
	}
	return "c"
}

func (p *cParser) Parse(content []byte) Result {
	var res Result
	defer func() { recover() }() //nolint:errcheck

	root, ok := safeParse(p.lang, content)
	if !ok {
		return res
	}

	query := cQuery
	if !p.isCpp {
		// The C grammar has no namespace or class nodes, and a query naming a
		// node type its grammar lacks does not compile.
		var kept []string
		for _, line := range strings.Split(cQuery, "\n") {
			if !strings.Contains(line, "namespace_definition") && !strings.Contains(line, "class_specifier") {
				kept = append(kept, line)
			}
		}
		query = strings.Join(kept, "\n")
	}

	for _, m := range runQuery(query, p.lang, root, content) {
		switch {
		case m["import.specifier"] != nil:
			spec := strings.Trim(text(m["import.specifier"], content), `"<>`)
			res.Imports = append(res.Imports, RawImport{Specifier: spec, Location: nodeLocation(m["import.node"])})
		case m["namespace.name"] != nil:
			res.Symbols = append(res.Symbols, cSymbol(m["namespace.node"], m["namespace.name"], content, types.KindNamespace))
		case m["class.name"] != nil:
			res.Symbols = append(res.Symbols, cSymbol(m["class.node"], m["class.name"], content, types.KindClass))
			res.Symbols = append(res.Symbols, cFields(m["class.node"], content, text(m["class.name"], content))...)
		case m["interface.name"] != nil:
			res.Symbols = append(res.Symbols, cSymbol(m["interface.node"], m["interface.name"], content, types.KindInterface))
			res.Symbols = append(res.Symbols, cFields(m["interface.node"], content, text(m["interface.name"], content))...)
		case m["type.name"] != nil:
			res.Symbols = append(res.Symbols, cSymbol(m["type.node"], m["type.name"], content, types.KindType))
		case m["function.name"] != nil:
			owner := cEnclosingTypeName(m["function.node"], content)
			kind := types.KindFunction
			if owner != "" {
				kind = types.KindMethod
			}
			sym := cSymbol(m["function.node"], m["function.name"], content, kind)
			sym.Parent = owner
			sym.Body = text(m["function.node"].ChildByFieldName("body"), content)
			res.Symbols = append(res.Symbols, sym)
		case m["const.name"] != nil:
			res.Symbols = append(res.Symbols, cSymbol(m["const.node"], m["const.name"], content, types.KindConstant))
		}
	}

	return res
}

func cSymbol(node, nameNode *sitter.Node, content []byte, kind types.Kind) RawSymbol {
	name := text(nameNode, content)
	return RawSymbol{
		Name:      name,
		Kind:      kind,
		Location:  nodeLocation(node),
		Signature: oneLine(cHeader(node, content)),
		Docstring: blockCommentDocstring(strings.Split(string(content), "\n"), int(node.StartPoint().Row)+1),
		Exported:  true, // exported/visibility is not namespace-scoped in C/C++; presence is enough
	}
}

func cHeader(n *sitter.Node, content []byte) string {
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

func cEnclosingTypeName(n *sitter.Node, content []byte) string {
	cur := n.Parent()
	for cur != nil {
		switch cur.Type() {
		case "struct_specifier", "class_specifier":
			if nameNode := cur.ChildByFieldName("name"); nameNode != nil {
				return text(nameNode, content)
			}
		}
		cur = cur.Parent()
	}
	return ""
}

func cFields(typeNode *sitter.Node, content []byte, owner string) []RawSymbol {
	body := typeNode.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	var out []RawSymbol
	for i := 0; i < int(body.NamedChildCount()); i++ {
		field := body.NamedChild(i)
		if field.Type() != "field_declaration" {
			continue
		}
		declarator := field.ChildByFieldName("declarator")
		if declarator == nil {
			continue
		}
		name := text(declarator, content)
		out = append(out, RawSymbol{
			Name:     name,
			Kind:     types.KindProperty,
			Location: nodeLocation(field),
			Parent:   owner,
			Exported: true,
		})
	}
	return out
}
