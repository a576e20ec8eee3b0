package symbols

import (
	"go/build/constraint"
	"regexp"
	"strings"
)

var (
	reGoPkg  = regexp.MustCompile(`(?m)^\s*package\s+([A-Za-z0-9_]+)\s*$`)
	reGoFunc = regexp.MustCompile(`(?m)^func\s+(\([^)]+\)\s*)?([A-Za-z0-9_]+)\s*[\[(]`)
	reGoType = regexp.MustCompile(`(?m)^type\s+([A-Za-z0-9_]+)(?:\[[^\]]*\])?\s+(struct|interface)\b`)
)

// extractGo reports top-level types, functions and methods of a Go file.
// A //go:build line is evaluated against defines (used as build tags); a
// file excluded by it yields no symbols.
func extractGo(relPath string, src []byte, defines []string) []Symbol {
	if !goBuildSatisfied(src, defines) {
		return nil
	}
	lines := newLineIndex(src)
	pkg := ""
	if m := reGoPkg.FindSubmatch(src); m != nil {
		pkg = string(m[1])
	}

	var syms []Symbol
	for _, m := range reGoType.FindAllSubmatchIndex(src, -1) {
		syms = append(syms, Symbol{
			Symbol: qualify(pkg, string(src[m[2]:m[3]])),
			Kind:   string(src[m[4]:m[5]]),
			Path:   relPath,
			Start:  lines.lineOf(m[0]),
		})
	}
	for _, m := range reGoFunc.FindAllSubmatchIndex(src, -1) {
		recv := ""
		if m[2] >= 0 {
			recv = receiverBaseType(string(src[m[2]:m[3]]))
		}
		kind := "func"
		if recv != "" {
			kind = "method"
		}
		syms = append(syms, Symbol{
			Symbol: qualify(pkg, recv, string(src[m[4]:m[5]])),
			Kind:   kind,
			Path:   relPath,
			Start:  lines.lineOf(m[0]),
		})
	}
	return syms
}

// goBuildSatisfied evaluates the file's //go:build constraint, if any,
// treating defines as the set of enabled tags.
func goBuildSatisfied(src []byte, defines []string) bool {
	tags := make(map[string]bool, len(defines))
	for _, d := range defines {
		tags[macroName(d)] = true
	}
	for _, line := range strings.Split(string(src), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "package ") {
			return true
		}
		if !constraint.IsGoBuild(line) {
			continue
		}
		expr, err := constraint.Parse(line)
		if err != nil {
			return true
		}
		return expr.Eval(func(tag string) bool { return tags[tag] })
	}
	return true
}

// receiverBaseType reduces a receiver block to its bare type name:
//
//	"(s *Server)"      -> "Server"
//	"(p *pkg.Type[T])" -> "Type"
func receiverBaseType(block string) string {
	s := strings.TrimSpace(block)
	s = strings.TrimPrefix(s, "(")
	if i := strings.IndexAny(s, ")["); i >= 0 {
		s = s[:i]
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	typ := strings.TrimLeft(fields[len(fields)-1], "*&")
	if i := strings.LastIndexByte(typ, '.'); i >= 0 {
		typ = typ[i+1:]
	}
	return typ
}
