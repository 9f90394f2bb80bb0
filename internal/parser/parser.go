package parser

import "fmt"

// Parser is a stateless, deterministic façade over the per-language
// extractors. It holds no fields because every extractor is a pure
// function of its input buffer. Its Parse returns the concrete View, so
// *Parser does not satisfy contract.Parser (whose Parse returns
// contract.ParsedView).
type Parser struct{}

// New returns a ready-to-use Parser.
func New() *Parser {
	return &Parser{}
}

// DetectLanguage exposes the heuristic language detector described in
// spec §4.1.
func (p *Parser) DetectLanguage(code string) string {
	return detectLanguage(code)
}

// Parse dispatches to the language-appropriate extractor. An explicit
// language overrides detection; an empty language triggers detection. An
// unrecognized language never panics: it returns a View with Valid=false
// and a descriptive Error, per the "never throws" guarantee of spec §4.1.
func (p *Parser) Parse(code string, language string) (View, error) {
	lang := language
	if lang == "" {
		lang = detectLanguage(code)
	}

	var v *View
	switch lang {
	case "python":
		v = parsePython(code)
	case "typescript", "javascript", "php":
		v = parseRegexLanguage(lang, code)
	default:
		return View{
			Language: lang,
			Valid:    false,
			Error:    fmt.Sprintf("unsupported language: %q", lang),
		}, nil
	}
	return *v, nil
}
