package parser

import (
	"regexp"
	"strings"
)

var (
	pyImportRe     = regexp.MustCompile(`^\s*import\s+([\w.]+)(?:\s+as\s+(\w+))?`)
	pyFromImportRe = regexp.MustCompile(`^\s*from\s+([\w.]+)\s+import\s+(.+)`)
	pyDefRe        = regexp.MustCompile(`^\s*(?:async\s+)?def\s+(\w+)\s*\(([^)]*)\)(?:\s*->\s*([^:]+))?:`)
	pyClassRe      = regexp.MustCompile(`^\s*class\s+(\w+)\s*(?:\(([^)]*)\))?:`)
)

// pythonRegexFallback is the best-effort extraction used when the
// tree-sitter parse reports a syntax error (spec §4.1 "on SyntaxError, fall
// back to a regex-level extraction ... still returning best-effort lists").
func pythonRegexFallback(v *View, code string) {
	lines := strings.Split(code, "\n")
	for i, l := range lines {
		lineNo := i + 1
		if m := pyImportRe.FindStringSubmatch(l); m != nil {
			v.Imports = append(v.Imports, Import{Module: m[1], Alias: m[2], Line: lineNo})
			continue
		}
		if m := pyFromImportRe.FindStringSubmatch(l); m != nil {
			for _, name := range strings.Split(m[2], ",") {
				name = strings.TrimSpace(strings.TrimSuffix(name, ")"))
				name = strings.TrimPrefix(name, "(")
				if name == "" {
					continue
				}
				alias := ""
				if parts := strings.SplitN(name, " as ", 2); len(parts) == 2 {
					name, alias = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
				}
				v.Imports = append(v.Imports, Import{Module: m[1], Name: name, Alias: alias, Line: lineNo})
			}
			continue
		}
		if m := pyDefRe.FindStringSubmatch(l); m != nil {
			v.Functions = append(v.Functions, Function{Name: m[1], Params: splitParams(m[2]), ReturnType: strings.TrimSpace(m[3]), Line: lineNo})
			continue
		}
		if m := pyClassRe.FindStringSubmatch(l); m != nil {
			var bases []string
			if m[2] != "" {
				for _, b := range strings.Split(m[2], ",") {
					if b = strings.TrimSpace(b); b != "" {
						bases = append(bases, b)
					}
				}
			}
			v.Classes = append(v.Classes, Class{Name: m[1], Bases: bases, Line: lineNo})
		}
	}
}

func splitParams(raw string) []Param {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []Param
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" || p == "self" || p == "cls" {
			continue
		}
		name := p
		def := ""
		if idx := strings.Index(p, "="); idx >= 0 {
			name = strings.TrimSpace(p[:idx])
			def = strings.TrimSpace(p[idx+1:])
		}
		annotation := ""
		if idx := strings.Index(name, ":"); idx >= 0 {
			annotation = strings.TrimSpace(name[idx+1:])
			name = strings.TrimSpace(name[:idx])
		}
		out = append(out, Param{Name: name, Annotation: annotation, Default: def})
	}
	return out
}

var (
	jsImportNamedRe   = regexp.MustCompile(`import\s*\{([^}]*)\}\s*from\s*['"]([^'"]+)['"]`)
	jsImportDefaultRe = regexp.MustCompile(`import\s+(\w+)\s*from\s*['"]([^'"]+)['"]`)
	jsImportStarRe    = regexp.MustCompile(`import\s*\*\s*as\s+(\w+)\s*from\s*['"]([^'"]+)['"]`)
	jsRequireRe       = regexp.MustCompile(`(?:const|let|var)\s+(\{[^}]*\}|\w+)\s*=\s*require\(['"]([^'"]+)['"]\)`)
	phpUseRe          = regexp.MustCompile(`use\s+([\w\\]+)(?:\s+as\s+(\w+))?\s*;`)

	jsFuncDeclRe  = regexp.MustCompile(`(?:export\s+)?(?:async\s+)?function\s*\*?\s+(\w+)\s*\(([^)]*)\)`)
	jsArrowFuncRe = regexp.MustCompile(`(?:export\s+)?(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s*)?\(([^)]*)\)\s*(?::\s*([^=]+))?=>`)
	jsMethodRe    = regexp.MustCompile(`^\s*(?:async\s+)?(\w+)\s*\(([^)]*)\)\s*\{`)

	jsClassRe       = regexp.MustCompile(`(?:export\s+)?class\s+(\w+)(?:\s+extends\s+(\w+))?(?:\s+implements\s+([\w,\s]+))?`)
	phpClassRe      = regexp.MustCompile(`class\s+(\w+)(?:\s+extends\s+(\w+))?(?:\s+implements\s+([\w,\s]+))?`)
	tsInterfaceRe   = regexp.MustCompile(`(?:export\s+)?interface\s+(\w+)(?:\s+extends\s+([\w,\s]+))?`)
	tsTypeAliasRe   = regexp.MustCompile(`(?:export\s+)?type\s+(\w+)\s*=`)
	tsVarTypedRe    = regexp.MustCompile(`(?:export\s+)?(?:const|let|var)\s+(\w+)\s*:\s*([\w<>\[\].| ]+)\s*=`)
)

// parseRegexLanguage handles TypeScript, JavaScript, and PHP, per spec
// §4.1: regex-grade extraction covering imports, functions, classes, and
// (TS-only) interfaces/type aliases/typed variables.
func parseRegexLanguage(language, code string) *View {
	v := &View{Language: language, Valid: true, ASTValid: false}
	lines := strings.Split(code, "\n")

	for i, l := range lines {
		lineNo := i + 1

		if language == "php" {
			if m := phpUseRe.FindStringSubmatch(l); m != nil {
				v.Imports = append(v.Imports, Import{Module: m[1], Alias: m[2], Line: lineNo})
			}
		} else {
			if m := jsImportNamedRe.FindStringSubmatch(l); m != nil {
				for _, name := range strings.Split(m[1], ",") {
					name = strings.TrimSpace(name)
					if name == "" {
						continue
					}
					alias := ""
					if parts := strings.SplitN(name, " as ", 2); len(parts) == 2 {
						name, alias = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
					}
					v.Imports = append(v.Imports, Import{Module: m[2], Name: name, Alias: alias, Line: lineNo})
				}
			}
			if m := jsImportDefaultRe.FindStringSubmatch(l); m != nil {
				v.Imports = append(v.Imports, Import{Module: m[2], Name: "default", Alias: m[1], Line: lineNo})
			}
			if m := jsImportStarRe.FindStringSubmatch(l); m != nil {
				v.Imports = append(v.Imports, Import{Module: m[2], Name: "*", Alias: m[1], Line: lineNo})
			}
			if m := jsRequireRe.FindStringSubmatch(l); m != nil {
				v.Imports = append(v.Imports, Import{Module: m[2], Name: strings.Trim(m[1], "{} "), Line: lineNo})
			}
		}

		if m := jsFuncDeclRe.FindStringSubmatch(l); m != nil {
			v.Functions = append(v.Functions, Function{Name: m[1], Params: splitJSParams(m[2]), Line: lineNo})
		}
		if m := jsArrowFuncRe.FindStringSubmatch(l); m != nil {
			v.Functions = append(v.Functions, Function{Name: m[1], Params: splitJSParams(m[2]), ReturnType: strings.TrimSpace(m[3]), Line: lineNo})
		}

		if language != "php" {
			if m := jsClassRe.FindStringSubmatch(l); m != nil {
				bases := []string{}
				if m[2] != "" {
					bases = append(bases, m[2])
				}
				if m[3] != "" {
					for _, iface := range strings.Split(m[3], ",") {
						bases = append(bases, strings.TrimSpace(iface))
					}
				}
				v.Classes = append(v.Classes, Class{Name: m[1], Bases: bases, Line: lineNo})
			}
		} else {
			if m := phpClassRe.FindStringSubmatch(l); m != nil {
				bases := []string{}
				if m[2] != "" {
					bases = append(bases, m[2])
				}
				if m[3] != "" {
					for _, iface := range strings.Split(m[3], ",") {
						bases = append(bases, strings.TrimSpace(iface))
					}
				}
				v.Classes = append(v.Classes, Class{Name: m[1], Bases: bases, Line: lineNo})
			}
		}

		if language == "typescript" {
			if m := tsInterfaceRe.FindStringSubmatch(l); m != nil {
				var extends []string
				if m[2] != "" {
					for _, e := range strings.Split(m[2], ",") {
						extends = append(extends, strings.TrimSpace(e))
					}
				}
				v.Interfaces = append(v.Interfaces, Interface{Name: m[1], Extends: extends, Line: lineNo})
			}
			if m := tsTypeAliasRe.FindStringSubmatch(l); m != nil {
				v.Types = append(v.Types, TypeAlias{Name: m[1], Line: lineNo})
			}
			if m := tsVarTypedRe.FindStringSubmatch(l); m != nil {
				v.Variables = append(v.Variables, Variable{Name: m[1], Value: strings.TrimSpace(m[2]), Line: lineNo})
			}
		}
	}

	return v
}

func splitJSParams(raw string) []Param {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []Param
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		name := p
		def := ""
		if idx := strings.Index(p, "="); idx >= 0 {
			name = strings.TrimSpace(p[:idx])
			def = strings.TrimSpace(p[idx+1:])
		}
		annotation := ""
		if idx := strings.Index(name, ":"); idx >= 0 {
			annotation = strings.TrimSpace(name[idx+1:])
			name = strings.TrimSpace(name[:idx])
		}
		out = append(out, Param{Name: name, Annotation: annotation, Default: def})
	}
	return out
}
