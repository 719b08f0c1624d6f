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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/codegraph/pkg/types"
)

func findSymbol(symbols []RawSymbol, name string) *RawSymbol {
	for i := range symbols {
		if symbols[i].Name == name {
			return &symbols[i]
		}
	}
	return nil
}

func TestForPathRoutesKnownExtensions(t *testing.T) {
	assert.NotNil(t, ForPath("main.go"))
	assert.NotNil(t, ForPath("app.tsx"))
	assert.NotNil(t, ForPath("lib.rs"))
	assert.Nil(t, ForPath("README.md"))
}

func TestGoParserExtractsTopLevelDeclarations(t *testing.T) {
	src := []byte(`package sample

import "fmt"

// Greeter produces greetings.
type Greeter struct {
	Name string
}

// Greet renders a greeting.
func (g *Greeter) Greet() string {
	msg := fmt.Sprintf("hello %s", g.Name)
	return msg
}

func unexportedHelper() {}

const MaxRetries = 3
`)
	p := newGoParser()
	res := p.Parse(src)

	require.NotEmpty(t, res.Imports)
	assert.Equal(t, "fmt", res.Imports[0].Specifier)

	greeter := findSymbol(res.Symbols, "Greeter")
	require.NotNil(t, greeter)
	assert.Equal(t, types.KindClass, greeter.Kind)
	assert.True(t, greeter.Exported)
	assert.Contains(t, greeter.Docstring, "produces greetings")

	greet := findSymbol(res.Symbols, "Greet")
	require.NotNil(t, greet)
	assert.Equal(t, types.KindMethod, greet.Kind)
	assert.Equal(t, "Greeter", greet.Parent)
	assert.NotContains(t, greet.Signature, "Sprintf", "signature stops at the body")
	assert.Contains(t, greet.Body, "fmt.Sprintf", "body text carries the call references")

	helper := findSymbol(res.Symbols, "unexportedHelper")
	require.NotNil(t, helper)
	assert.False(t, helper.Exported)

	msg := findSymbol(res.Symbols, "msg")
	require.NotNil(t, msg)
	assert.Equal(t, types.KindVariable, msg.Kind)
	assert.Equal(t, "Greet", msg.Parent)

	maxRetries := findSymbol(res.Symbols, "MaxRetries")
	require.NotNil(t, maxRetries)
	assert.Equal(t, types.KindConstant, maxRetries.Kind)
}

func TestGoParserTolerantOfMalformedInput(t *testing.T) {
	p := newGoParser()
	assert.NotPanics(t, func() {
		p.Parse([]byte("package broken\nfunc ((( invalid"))
	})
}

func TestTypeScriptParserExportedClassAndConstFunction(t *testing.T) {
	src := []byte(`
import { thing } from "./other";

export class Widget {
	render(): void {}
}

const factory = () => new Widget();

let counter = 0;
`)
	p := newTypeScriptParser(false)()
	res := p.Parse(src)

	require.NotEmpty(t, res.Imports)
	assert.Equal(t, "./other", res.Imports[0].Specifier)

	widget := findSymbol(res.Symbols, "Widget")
	require.NotNil(t, widget)
	assert.Equal(t, types.KindClass, widget.Kind)
	assert.True(t, widget.Exported)

	render := findSymbol(res.Symbols, "render")
	require.NotNil(t, render)
	assert.Equal(t, types.KindMethod, render.Kind)
	assert.Equal(t, "Widget", render.Parent)

	factory := findSymbol(res.Symbols, "factory")
	require.NotNil(t, factory)
	assert.Equal(t, types.KindFunction, factory.Kind)

	counter := findSymbol(res.Symbols, "counter")
	require.NotNil(t, counter)
	assert.Equal(t, types.KindVariable, counter.Kind)
}

func TestPythonParserClassMethodsAndConstants(t *testing.T) {
	src := []byte(`
import os
from collections import OrderedDict

MAX_SIZE = 100

class Service:
    """Handles requests."""

    def __init__(self):
        self.count = 0

    def handle(self, req):
        return req


def helper():
    pass
`)
	p := newPythonParser()
	res := p.Parse(src)

	require.Len(t, res.Imports, 2)

	service := findSymbol(res.Symbols, "Service")
	require.NotNil(t, service)
	assert.Equal(t, types.KindClass, service.Kind)
	assert.Contains(t, service.Docstring, "Handles requests")

	handle := findSymbol(res.Symbols, "handle")
	require.NotNil(t, handle)
	assert.Equal(t, types.KindMethod, handle.Kind)
	assert.Equal(t, "Service", handle.Parent)

	maxSize := findSymbol(res.Symbols, "MAX_SIZE")
	require.NotNil(t, maxSize)
	assert.Equal(t, types.KindConstant, maxSize.Kind)

	helper := findSymbol(res.Symbols, "helper")
	require.NotNil(t, helper)
	assert.Equal(t, types.KindFunction, helper.Kind)
	assert.True(t, helper.Exported)
}
