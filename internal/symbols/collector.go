package symbols

import (
	"bytes"
	"path"
	"slices"
	"sort"
)

// Collector accumulates symbols over one or more Collect calls. A Collector
// is owned by a single worker; it is not safe for concurrent use.
type Collector struct {
	syms []Symbol
}

// NewCollector returns an empty collector.
func NewCollector() *Collector { return &Collector{} }

// Collect extracts symbols from data as seen under the given defines.
// Files of unknown language are accepted and contribute nothing.
func (c *Collector) Collect(relPath string, data []byte, defines []string) error {
	data = normalizeEOL(data)
	var found []Symbol
	switch LangByExt(path.Ext(relPath)) {
	case LangCPP:
		found = extractCPP(relPath, preprocess(data, defines))
	case LangGo:
		found = extractGo(relPath, data, defines)
	default:
		return nil
	}
	c.syms = append(c.syms, finalizeEnds(found, newLineIndex(data).count())...)
	return nil
}

// Symbols returns the collected symbols sorted and de-duplicated.
func (c *Collector) Symbols() []Symbol {
	out := slices.Clone(c.syms)
	slices.SortFunc(out, Compare)
	return slices.CompactFunc(out, func(a, b Symbol) bool { return Compare(a, b) == 0 })
}

// normalizeEOL rewrites CRLF line ends to LF. Line numbers are unchanged.
func normalizeEOL(b []byte) []byte {
	if !bytes.Contains(b, []byte("\r\n")) {
		return b
	}
	return bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
}

// Clear drops everything collected so far.
func (c *Collector) Clear() { c.syms = c.syms[:0] }

// finalizeEnds sets each symbol's End to the line before the next symbol
// start in the same file, or to the last line.
func finalizeEnds(syms []Symbol, total int) []Symbol {
	if len(syms) == 0 {
		return nil
	}
	sort.SliceStable(syms, func(i, j int) bool { return syms[i].Start < syms[j].Start })
	for i := range syms {
		end := total
		for k := i + 1; k < len(syms); k++ {
			if syms[k].Start > syms[i].Start {
				end = syms[k].Start - 1
				break
			}
		}
		syms[i].End = max(end, syms[i].Start)
	}
	return syms
}

// lineIndex answers offset -> 1-based line queries.
type lineIndex struct {
	newlines []int
	size     int
}

func newLineIndex(data []byte) lineIndex {
	li := lineIndex{size: len(data)}
	for off := 0; ; {
		i := bytes.IndexByte(data[off:], '\n')
		if i < 0 {
			break
		}
		li.newlines = append(li.newlines, off+i)
		off += i + 1
	}
	return li
}

func (li lineIndex) lineOf(off int) int {
	n, _ := slices.BinarySearch(li.newlines, off)
	return n + 1
}

// count is the number of lines, counting a final unterminated line.
func (li lineIndex) count() int {
	n := len(li.newlines)
	if li.size > 0 && (n == 0 || li.newlines[n-1] != li.size-1) {
		n++
	}
	return max(n, 1)
}
