package symbols

import (
	"regexp"
	"strings"
)

var (
	reCPPNamespace = regexp.MustCompile(`(?m)^\s*namespace\s+([A-Za-z_][\w:]*)\s*\{`)
	reCPPType      = regexp.MustCompile(`(?m)^[ \t]*(?:template\s*<[^>]*>\s*)?(class|struct|enum(?:\s+class)?)\s+([A-Za-z_]\w*)[^;{\n]*(?:\{|$)`)
	reCPPMacro     = regexp.MustCompile(`(?m)^[ \t]*#\s*define\s+([A-Za-z_]\w*)`)
	// indent, return type (ends in blank/*/&), possibly qualified name
	reCPPFunc = regexp.MustCompile(`(?m)^([ \t]*)([A-Za-z_][\w:<>,\*& \t]*[\*& \t])(~?[A-Za-z_]\w*(?:::~?[A-Za-z_]\w*)*)\s*\(`)
)

// statement keywords that make a function-looking line something else
var cppStatementWords = map[string]struct{}{
	"return": {}, "else": {}, "new": {}, "delete": {}, "throw": {}, "case": {},
	"goto": {}, "using": {}, "typedef": {}, "co_return": {}, "co_yield": {},
}

// extractCPP does a shallow regex scan of preprocessed C/C++ source.
//
// It reports the first namespace (dot-joined), every class/struct/enum
// definition, #define'd macros, and function-like lines:
//   - Type::name(...)     -> method of Type
//   - name(...) at col 0  -> free function
//   - indented name(...)  -> method of the nearest type declared above
func extractCPP(relPath string, src []byte) []Symbol {
	s := string(src)
	lines := newLineIndex(src)

	var ns string
	if m := reCPPNamespace.FindStringSubmatch(s); m != nil {
		ns = strings.Trim(strings.ReplaceAll(m[1], "::", "."), ".")
	}

	var syms []Symbol
	type typeAt struct {
		name string
		line int
	}
	var types []typeAt
	for _, m := range reCPPType.FindAllStringSubmatchIndex(s, -1) {
		kind := strings.Fields(s[m[2]:m[3]])[0]
		name := s[m[4]:m[5]]
		line := lines.lineOf(m[0])
		types = append(types, typeAt{name: name, line: line})
		syms = append(syms, Symbol{Symbol: qualify(ns, name), Kind: kind, Path: relPath, Start: line})
	}
	enclosing := func(line int) string {
		name := ""
		for _, t := range types {
			if t.line > line {
				break
			}
			name = t.name
		}
		return name
	}

	for _, m := range reCPPMacro.FindAllStringSubmatchIndex(s, -1) {
		syms = append(syms, Symbol{Symbol: s[m[2]:m[3]], Kind: "macro", Path: relPath, Start: lines.lineOf(m[0])})
	}

	for _, m := range reCPPFunc.FindAllStringSubmatchIndex(s, -1) {
		indent := s[m[2]:m[3]]
		retType := strings.Fields(s[m[4]:m[5]])
		if len(retType) == 0 {
			continue
		}
		if _, stmt := cppStatementWords[retType[0]]; stmt {
			continue
		}
		line := lines.lineOf(m[0])
		parts := strings.Split(s[m[6]:m[7]], "::")
		switch {
		case len(parts) > 1:
			syms = append(syms, Symbol{Symbol: qualify(ns, strings.Join(parts, ".")), Kind: "method", Path: relPath, Start: line})
		case indent == "":
			syms = append(syms, Symbol{Symbol: qualify(ns, parts[0]), Kind: "func", Path: relPath, Start: line})
		default:
			if owner := enclosing(line); owner != "" {
				syms = append(syms, Symbol{Symbol: qualify(ns, owner, parts[0]), Kind: "method", Path: relPath, Start: line})
			}
		}
	}
	return syms
}
