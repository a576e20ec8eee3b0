package symbols

import "strings"

// Language tags understood by the collector.
const (
	LangGo  = "go"
	LangCPP = "cpp"
)

// LangByExt maps a file extension (with or without the dot, any case) to a
// language tag. Unknown extensions map to "".
func LangByExt(ext string) string {
	e := strings.ToLower(strings.TrimSpace(ext))
	e = strings.TrimPrefix(e, ".")
	switch e {
	case "go":
		return LangGo
	case "c", "cc", "cpp", "cxx", "h", "hh", "hpp", "hxx", "inl":
		return LangCPP
	}
	return ""
}

// qualify joins non-empty name segments with '.'.
//
//	qualify("ns", "Widget", "paint") => "ns.Widget.paint"
//	qualify("", "", "main")          => "main"
func qualify(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(p)
	}
	return b.String()
}
