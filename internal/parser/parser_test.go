package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLanguage_Python(t *testing.T) {
	code := "import os\n\ndef greet(name):\n    self.value = name\n    return name\n"
	assert.Equal(t, "python", detectLanguage(code))
}

func TestDetectLanguage_PHP(t *testing.T) {
	code := "<?php\nclass Foo {\n  public function bar() { return Foo::baz(); }\n}\n"
	assert.Equal(t, "php", detectLanguage(code))
}

func TestDetectLanguage_TypeScript(t *testing.T) {
	code := "interface Point { x: number; y: number; }\nconst p: Point = { x: 1, y: 2 };\n"
	assert.Equal(t, "typescript", detectLanguage(code))
}

func TestParsePython_ValidCode_RoundTripIsStable(t *testing.T) {
	code := `import os
from typing import List, Optional as Opt

class Greeter:
    """Greets people."""

    def __init__(self, name: str):
        self.name = name

    def greet(self, times: int = 1) -> str:
        """Return a greeting."""
        return self.name

GREETING = "hello"
`
	p := New()
	view1, err := p.Parse(code, "python")
	require.NoError(t, err)
	require.True(t, view1.Valid)
	require.True(t, view1.ASTValid)
	require.Empty(t, view1.Error)

	require.Len(t, view1.Imports, 3)
	require.Len(t, view1.Classes, 1)
	assert.Equal(t, "Greeter", view1.Classes[0].Name)
	assert.Equal(t, "Greets people.", view1.Classes[0].Docstring)
	require.Len(t, view1.Classes[0].Methods, 2)
	assert.Equal(t, "greet", view1.Classes[0].Methods[1].Name)
	assert.Equal(t, "str", view1.Classes[0].Methods[1].ReturnType)
	require.Len(t, view1.Variables, 1)
	assert.Equal(t, "GREETING", view1.Variables[0].Name)

	view2, err := p.Parse(code, "python")
	require.NoError(t, err)
	assert.Equal(t, view1, view2)
}

func TestParsePython_SyntaxError_FallsBackToRegexAndStaysValid(t *testing.T) {
	code := "def broken(:\n    pass\n\nclass Foo\n"
	p := New()
	view, err := p.Parse(code, "python")
	require.NoError(t, err)
	assert.True(t, view.Valid)
	assert.False(t, view.ASTValid)
}

func TestPythonRegexFallback_ExtractsBestEffortSymbols(t *testing.T) {
	code := "import os\nfrom collections import OrderedDict\n\ndef foo(a, b=1):\n    pass\n\nclass Bar(Base):\n    pass\n"
	v := &View{Language: "python", Valid: true}
	pythonRegexFallback(v, code)

	assert.False(t, v.ASTValid)
	require.Len(t, v.Imports, 2)
	require.Len(t, v.Functions, 1)
	assert.Equal(t, "foo", v.Functions[0].Name)
	require.Len(t, v.Classes, 1)
	assert.Equal(t, "Bar", v.Classes[0].Name)
	assert.Equal(t, []string{"Base"}, v.Classes[0].Bases)
}

func TestParseTypeScript_ExtractsInterfacesAndTypes(t *testing.T) {
	code := `import { useState } from 'react';

interface User {
  id: number;
  name: string;
}

type UserID = number;

const current: User = { id: 1, name: "a" };

export function getUser(id: number): User {
  return current;
}
`
	p := New()
	view, err := p.Parse(code, "typescript")
	require.NoError(t, err)
	assert.True(t, view.Valid)
	assert.False(t, view.ASTValid)
	require.Len(t, view.Imports, 1)
	require.Len(t, view.Interfaces, 1)
	assert.Equal(t, "User", view.Interfaces[0].Name)
	require.Len(t, view.Types, 1)
	require.Len(t, view.Functions, 1)
	assert.Equal(t, "getUser", view.Functions[0].Name)
}

func TestParsePHP_ExtractsUseAndClass(t *testing.T) {
	code := "<?php\nuse App\\Models\\User as UserModel;\n\nclass Controller extends Base implements Loggable {\n  public function index() {}\n}\n"
	p := New()
	view, err := p.Parse(code, "php")
	require.NoError(t, err)
	require.Len(t, view.Imports, 1)
	assert.Equal(t, "UserModel", view.Imports[0].Alias)
	require.Len(t, view.Classes, 1)
	assert.Equal(t, "Controller", view.Classes[0].Name)
	assert.Contains(t, view.Classes[0].Bases, "Base")
	assert.Contains(t, view.Classes[0].Bases, "Loggable")
}

func TestParse_UnknownLanguage_ReturnsInvalidViewNotError(t *testing.T) {
	p := New()
	view, err := p.Parse("whatever", "cobol")
	require.NoError(t, err)
	assert.False(t, view.Valid)
	assert.NotEmpty(t, view.Error)
}

func TestParse_EmptyLanguage_Autodetects(t *testing.T) {
	p := New()
	view, err := p.Parse("def f():\n    pass\n", "")
	require.NoError(t, err)
	assert.Equal(t, "python", view.Language)
}
