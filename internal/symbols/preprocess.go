package symbols

import (
	"bytes"
	"regexp"
	"strings"
)

var (
	reDirective = regexp.MustCompile(`^\s*#\s*(\w+)\s*(.*?)\s*(?://.*)?$`)
	reDefined   = regexp.MustCompile(`^(!?)\s*defined\s*\(?\s*([A-Za-z_]\w*)\s*\)?$`)
)

// condFrame is one open #if block.
type condFrame struct {
	outer  bool // enclosing region is live
	taken  bool // some branch of this block already matched
	active bool // current branch is live
}

// preprocess blanks every line of a C/C++ source that sits in a conditional
// branch disabled under defines. Line numbers are preserved so symbol
// positions still point into the original file. #define/#undef in live
// regions update the macro set for the rest of the file.
//
// Supported conditions: #ifdef, #ifndef, #if/#elif with a literal 0/1, a
// bare macro name or [!]defined(NAME). Any other #if expression is taken as
// true.
func preprocess(data []byte, defines []string) []byte {
	macros := make(map[string]bool, len(defines))
	for _, d := range defines {
		if name := macroName(d); name != "" {
			macros[name] = true
		}
	}

	lines := bytes.SplitAfter(data, []byte("\n"))
	var stack []condFrame
	live := func() bool { return len(stack) == 0 || stack[len(stack)-1].active }

	out := make([]byte, 0, len(data))
	for _, line := range lines {
		m := reDirective.FindSubmatch(bytes.TrimRight(line, "\r\n"))
		if m == nil {
			out = appendLine(out, line, live())
			continue
		}
		arg := string(m[2])
		switch string(m[1]) {
		case "ifdef":
			stack = push(stack, live(), macros[macroName(arg)])
		case "ifndef":
			stack = push(stack, live(), !macros[macroName(arg)])
		case "if":
			stack = push(stack, live(), evalCond(arg, macros))
		case "elif":
			if n := len(stack); n > 0 {
				f := &stack[n-1]
				f.active = f.outer && !f.taken && evalCond(arg, macros)
				f.taken = f.taken || f.active
			}
		case "else":
			if n := len(stack); n > 0 {
				f := &stack[n-1]
				f.active = f.outer && !f.taken
				f.taken = true
			}
		case "endif":
			if n := len(stack); n > 0 {
				stack = stack[:n-1]
			}
		case "define":
			if live() {
				macros[macroName(arg)] = true
			}
		case "undef":
			if live() {
				delete(macros, macroName(arg))
			}
		}
		// Directive lines stay visible when live so #define can be indexed.
		out = appendLine(out, line, live() || isConditional(string(m[1])))
	}
	return out
}

func push(stack []condFrame, outer, cond bool) []condFrame {
	active := outer && cond
	return append(stack, condFrame{outer: outer, taken: active, active: active})
}

func evalCond(expr string, macros map[string]bool) bool {
	expr = strings.TrimSpace(expr)
	switch expr {
	case "0":
		return false
	case "1":
		return true
	}
	if m := reDefined.FindStringSubmatch(expr); m != nil {
		return macros[m[2]] != (m[1] == "!")
	}
	if name := macroName(expr); name == expr && name != "" {
		return macros[name]
	}
	return true
}

// macroName strips "=value" and any parameter list from a define spelling.
func macroName(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "=( \t"); i >= 0 {
		s = s[:i]
	}
	return s
}

func isConditional(directive string) bool {
	switch directive {
	case "if", "ifdef", "ifndef", "elif", "else", "endif":
		return true
	}
	return false
}

// appendLine copies line when keep is set, otherwise only its newline.
func appendLine(out, line []byte, keep bool) []byte {
	if keep {
		return append(out, line...)
	}
	if bytes.HasSuffix(line, []byte("\n")) {
		return append(out, '\n')
	}
	return out
}
