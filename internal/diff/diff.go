// Package diff renders symbol-level change reports as unified diffs. It uses
// github.com/pmezard/go-difflib/difflib to produce classic unified patches
// (---/+++ headers, @@ hunks, lines prefixed with ' ', '-', '+') over one
// listing line per symbol.
package diff

import (
	"fmt"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"

	"symbol-indexer/internal/symbols"
)

// Options controls patch generation behavior.
type Options struct {
	// MaxLines caps the size of the two listings combined. When exceeded,
	// a placeholder patch is returned and oversize=true. 0 means no limit.
	MaxLines int

	// Context is the number of context lines in unified hunks.
	// If 0, default to 2.
	Context int
}

// Symbols produces a unified patch between two symbol listings of the same
// file under the same configuration. An empty string means no change.
func Symbols(config, path string, before, after []symbols.Symbol, opt Options) (body string, oversize bool) {
	from := fmt.Sprintf("a/%s@%s", path, config)
	to := fmt.Sprintf("b/%s@%s", path, config)
	if before == nil {
		from = "/dev/null"
	}

	ua := listing(before)
	ub := listing(after)
	if opt.MaxLines > 0 && len(ua)+len(ub) > opt.MaxLines {
		return omitted(from, to), true
	}

	ctx := opt.Context
	if ctx <= 0 {
		ctx = 2
	}
	s, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        ua,
		B:        ub,
		FromFile: from,
		ToFile:   to,
		Context:  ctx,
	})
	if err != nil {
		return omitted(from, to), false
	}
	return s, false
}

// listing renders one line per symbol. Line spans are left out so that a
// symbol which merely moved does not show up as changed.
func listing(syms []symbols.Symbol) []string {
	out := make([]string, 0, len(syms))
	for _, s := range syms {
		out = append(out, s.Kind+" "+s.Symbol+"\n")
	}
	return out
}

// omitted returns a compact placeholder when size limits are exceeded.
func omitted(from, to string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n+++ %s\n@@\n# diff omitted (oversize)\n", from, to)
	return b.String()
}
