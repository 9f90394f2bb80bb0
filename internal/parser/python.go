package parser

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// parsePython attempts a real tree-sitter AST parse. On success (no syntax
// errors in the tree) it derives imports, functions, classes, and top-level
// assignments from the AST. On a syntax error it falls back to a
// regex-level extraction and sets ASTValid=false, per spec §4.1.
func parsePython(code string) *View {
	v := &View{Language: "python", Valid: true}

	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())

	tree, err := p.ParseCtx(context.Background(), nil, []byte(code))
	if err != nil || tree == nil {
		pythonRegexFallback(v, code)
		v.ASTValid = false
		if err != nil {
			v.Error = err.Error()
		}
		return v
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		pythonRegexFallback(v, code)
		v.ASTValid = false
		return v
	}

	v.ASTValid = true
	src := []byte(code)
	walkPythonModule(root, src, v)
	return v
}

func text(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return string(src[n.StartByte():n.EndByte()])
}

func line(n *sitter.Node) int {
	if n == nil {
		return 0
	}
	return int(n.StartPoint().Row) + 1
}

func walkPythonModule(root *sitter.Node, src []byte, v *View) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "import_statement":
			v.Imports = append(v.Imports, parsePyImportStatement(child, src)...)
		case "import_from_statement":
			v.Imports = append(v.Imports, parsePyImportFrom(child, src)...)
		case "function_definition":
			v.Functions = append(v.Functions, parsePyFunction(child, src))
		case "class_definition":
			v.Classes = append(v.Classes, parsePyClass(child, src))
		case "decorated_definition":
			inner := lastNamedChild(child)
			if inner == nil {
				continue
			}
			switch inner.Type() {
			case "function_definition":
				v.Functions = append(v.Functions, parsePyFunction(inner, src))
			case "class_definition":
				v.Classes = append(v.Classes, parsePyClass(inner, src))
			}
		case "expression_statement":
			if va, ok := parsePyModuleAssignment(child, src); ok {
				v.Variables = append(v.Variables, va)
			}
		}
	}
}

func lastNamedChild(n *sitter.Node) *sitter.Node {
	c := int(n.NamedChildCount())
	if c == 0 {
		return nil
	}
	return n.NamedChild(c - 1)
}

func parsePyImportStatement(n *sitter.Node, src []byte) []Import {
	var out []Import
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "dotted_name":
			out = append(out, Import{Module: text(c, src), Line: line(n)})
		case "aliased_import":
			name := c.ChildByFieldName("name")
			alias := c.ChildByFieldName("alias")
			out = append(out, Import{Module: text(name, src), Alias: text(alias, src), Line: line(n)})
		}
	}
	return out
}

func parsePyImportFrom(n *sitter.Node, src []byte) []Import {
	moduleNode := n.ChildByFieldName("module_name")
	module := text(moduleNode, src)

	var out []Import
	wildcard := false
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "wildcard_import":
			wildcard = true
		case "dotted_name":
			if c == moduleNode {
				continue
			}
			out = append(out, Import{Module: module, Name: text(c, src), Line: line(n)})
		case "aliased_import":
			name := c.ChildByFieldName("name")
			alias := c.ChildByFieldName("alias")
			out = append(out, Import{Module: module, Name: text(name, src), Alias: text(alias, src), Line: line(n)})
		}
	}
	if wildcard {
		out = append(out, Import{Module: module, Name: "*", Line: line(n)})
	}
	return out
}

func parsePyFunction(n *sitter.Node, src []byte) Function {
	nameNode := n.ChildByFieldName("name")
	paramsNode := n.ChildByFieldName("parameters")
	retNode := n.ChildByFieldName("return_type")
	bodyNode := n.ChildByFieldName("body")

	fn := Function{
		Name: text(nameNode, src),
		Line: line(n),
	}
	if retNode != nil {
		fn.ReturnType = text(retNode, src)
	}
	if paramsNode != nil {
		fn.Params = parsePyParams(paramsNode, src)
	}
	if bodyNode != nil {
		fn.Body = text(bodyNode, src)
		fn.Docstring = extractPyDocstring(bodyNode, src)
	}
	return fn
}

func parsePyParams(n *sitter.Node, src []byte) []Param {
	var out []Param
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "identifier":
			name := text(c, src)
			if name == "self" || name == "cls" {
				continue
			}
			out = append(out, Param{Name: name})
		case "typed_parameter":
			nameNode := c.NamedChild(0)
			p := Param{Name: text(nameNode, src)}
			if typeNode := c.ChildByFieldName("type"); typeNode != nil {
				p.Annotation = text(typeNode, src)
			}
			out = append(out, p)
		case "default_parameter":
			nameNode := c.ChildByFieldName("name")
			valNode := c.ChildByFieldName("value")
			out = append(out, Param{Name: text(nameNode, src), Default: text(valNode, src)})
		case "typed_default_parameter":
			nameNode := c.ChildByFieldName("name")
			typeNode := c.ChildByFieldName("type")
			valNode := c.ChildByFieldName("value")
			out = append(out, Param{Name: text(nameNode, src), Annotation: text(typeNode, src), Default: text(valNode, src)})
		}
	}
	return out
}

func extractPyDocstring(body *sitter.Node, src []byte) string {
	if body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	strNode := first.NamedChild(0)
	if strNode.Type() != "string" {
		return ""
	}
	return strings.Trim(text(strNode, src), "\"'")
}

func parsePyClass(n *sitter.Node, src []byte) Class {
	nameNode := n.ChildByFieldName("name")
	superclasses := n.ChildByFieldName("superclasses")
	bodyNode := n.ChildByFieldName("body")

	cls := Class{
		Name: text(nameNode, src),
		Line: line(n),
	}
	if superclasses != nil {
		for i := 0; i < int(superclasses.NamedChildCount()); i++ {
			cls.Bases = append(cls.Bases, text(superclasses.NamedChild(i), src))
		}
	}
	if bodyNode != nil {
		cls.Docstring = extractPyDocstring(bodyNode, src)
		for i := 0; i < int(bodyNode.NamedChildCount()); i++ {
			c := bodyNode.NamedChild(i)
			switch c.Type() {
			case "function_definition":
				cls.Methods = append(cls.Methods, parsePyFunction(c, src))
			case "decorated_definition":
				inner := lastNamedChild(c)
				if inner != nil && inner.Type() == "function_definition" {
					cls.Methods = append(cls.Methods, parsePyFunction(inner, src))
				}
			case "expression_statement":
				if attr, ok := parsePyClassAttribute(c, src); ok {
					cls.Attributes = append(cls.Attributes, attr)
				}
			}
		}
	}
	return cls
}

func parsePyClassAttribute(n *sitter.Node, src []byte) (string, bool) {
	if n.NamedChildCount() == 0 {
		return "", false
	}
	assign := n.NamedChild(0)
	if assign.Type() != "assignment" {
		return "", false
	}
	left := assign.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return "", false
	}
	return text(left, src), true
}

func parsePyModuleAssignment(n *sitter.Node, src []byte) (Variable, bool) {
	if n.NamedChildCount() == 0 {
		return Variable{}, false
	}
	assign := n.NamedChild(0)
	if assign.Type() != "assignment" {
		return Variable{}, false
	}
	left := assign.ChildByFieldName("left")
	right := assign.ChildByFieldName("right")
	if left == nil || left.Type() != "identifier" {
		return Variable{}, false
	}
	return Variable{Name: text(left, src), Value: text(right, src), Line: line(n)}, true
}
