// Package symbols extracts navigation symbols from source files. It is the
// collector side of an indexing task: the queue hands it a file and the
// defines of a build configuration, and it returns what it found.
package symbols

import "cmp"

// Symbol is one discovered code symbol. Start/End are 1-based line numbers
// within Path; End is the line before the next symbol (or EOF).
type Symbol struct {
	Symbol string `json:"symbol"` // qualified, e.g. "ns.Widget.paint"
	Kind   string `json:"kind"`   // "func"|"method"|"class"|"struct"|"enum"|"macro"
	Path   string `json:"path"`   // project-relative file path
	Start  int    `json:"start"`  // 1-based
	End    int    `json:"end"`    // 1-based
}

// Compare orders symbols by path, start line, then name and kind.
func Compare(a, b Symbol) int {
	if c := cmp.Compare(a.Path, b.Path); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Start, b.Start); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Symbol, b.Symbol); c != 0 {
		return c
	}
	return cmp.Compare(a.Kind, b.Kind)
}
