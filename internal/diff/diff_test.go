package diff

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"symbol-indexer/internal/symbols"
)

func sym(kind, name string, start int) symbols.Symbol {
	return symbols.Symbol{Symbol: name, Kind: kind, Path: "w.cpp", Start: start, End: start}
}

func TestSymbolsUnchangedIsEmpty(t *testing.T) {
	before := []symbols.Symbol{sym("func", "app.main", 1)}
	after := []symbols.Symbol{sym("func", "app.main", 9)}
	body, oversize := Symbols("debug", "w.cpp", before, after, Options{})
	assert.Empty(t, body)
	assert.False(t, oversize)
}

func TestSymbolsAddedAndRemoved(t *testing.T) {
	before := []symbols.Symbol{sym("class", "app.Widget", 1), sym("method", "app.Widget.paint", 3)}
	after := []symbols.Symbol{sym("class", "app.Widget", 1), sym("method", "app.Widget.draw", 3)}

	body, oversize := Symbols("debug", "w.cpp", before, after, Options{})
	assert.False(t, oversize)
	assert.True(t, strings.HasPrefix(body, "--- a/w.cpp@debug\n+++ b/w.cpp@debug\n"), body)
	assert.Contains(t, body, "-method app.Widget.paint\n")
	assert.Contains(t, body, "+method app.Widget.draw\n")
	assert.Contains(t, body, " class app.Widget\n")
}

func TestSymbolsNewFile(t *testing.T) {
	body, _ := Symbols("release", "w.cpp", nil, []symbols.Symbol{sym("func", "f", 1)}, Options{})
	assert.Contains(t, body, "--- /dev/null\n")
	assert.Contains(t, body, "+func f\n")
}

func TestSymbolsOversize(t *testing.T) {
	after := []symbols.Symbol{sym("func", "a", 1), sym("func", "b", 2)}
	body, oversize := Symbols("debug", "w.cpp", nil, after, Options{MaxLines: 1})
	assert.True(t, oversize)
	assert.Contains(t, body, "# diff omitted (oversize)")
}
