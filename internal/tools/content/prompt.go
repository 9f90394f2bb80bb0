// Package content implements the LLM-assisted content tools of spec
// §4.11: generation, explanation, refactoring, documentation, and test
// generation. Every tool builds a structured prompt from the request plus
// parser-derived structural hints, requests a completion through the
// shared LLM contract, and always falls back to a deterministic local
// result when no provider is configured or the call fails.
package content

import (
	"fmt"
	"strings"

	"github.com/collegue/specmcp/internal/parser"
)

// structuralHints renders a compact, model-readable summary of a parsed
// view: function/class names and signatures, used to ground every prompt
// in the actual shape of the code instead of raw text alone.
func structuralHints(view parser.View) string {
	if !view.Valid {
		return "(no structural hints available)"
	}
	var b strings.Builder
	for _, fn := range view.Functions {
		fmt.Fprintf(&b, "function %s(%s)\n", fn.Name, paramNames(fn.Params))
	}
	for _, cls := range view.Classes {
		fmt.Fprintf(&b, "class %s:\n", cls.Name)
		for _, m := range cls.Methods {
			fmt.Fprintf(&b, "  method %s(%s)\n", m.Name, paramNames(m.Params))
		}
	}
	for _, imp := range view.Imports {
		name := imp.Module
		if name == "" {
			name = imp.Name
		}
		fmt.Fprintf(&b, "import %s\n", name)
	}
	if b.Len() == 0 {
		return "(no top-level symbols found)"
	}
	return b.String()
}

func paramNames(params []parser.Param) string {
	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

// parseView safely parses code, returning a zero-value invalid view on
// any error rather than failing the whole tool call — structural hints
// are a best-effort enrichment, never a hard requirement.
func parseView(p *parser.Parser, code, language string) parser.View {
	if p == nil || code == "" {
		return parser.View{}
	}
	view, err := p.Parse(code, language)
	if err != nil {
		return parser.View{}
	}
	return view
}
