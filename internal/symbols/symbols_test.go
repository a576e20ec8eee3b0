package symbols

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const widgetCPP = `namespace app {
#ifdef USE_GL
class GLWidget {
#else
class Widget {
#endif
  public:
    void paint(int x);
};
}
#define VERSION 3
void Widget::paint(int x) {
}
int main(int argc, char** argv) {
  return run(argc);
}
`

const serverGo = `//go:build linux

package srv

type Server struct {
}

func (s *Server) Start() error {
	return nil
}

func New[T any](v T) *Server {
	return nil
}
`

func names(syms []Symbol) []string {
	out := make([]string, 0, len(syms))
	for _, s := range syms {
		out = append(out, s.Kind+" "+s.Symbol)
	}
	return out
}

func TestCollectCPPHonorsDefines(t *testing.T) {
	c := NewCollector()
	require.NoError(t, c.Collect("src/widget.cpp", []byte(widgetCPP), nil))
	got := c.Symbols()
	assert.Equal(t, []string{
		"class app.Widget",
		"method app.Widget.paint",
		"macro VERSION",
		"method app.Widget.paint",
		"func app.main",
	}, names(got))
	assert.Equal(t, Symbol{Symbol: "app.Widget", Kind: "class", Path: "src/widget.cpp", Start: 5, End: 7}, got[0])
	assert.Equal(t, 14, got[4].Start)
	assert.Equal(t, 16, got[4].End)

	c.Clear()
	require.NoError(t, c.Collect("src/widget.cpp", []byte(widgetCPP), []string{"USE_GL=1"}))
	got = c.Symbols()
	assert.Equal(t, "class app.GLWidget", names(got)[0])
	assert.Equal(t, 3, got[0].Start)
	assert.Contains(t, names(got), "method app.GLWidget.paint")
}

func TestCollectGoBuildTags(t *testing.T) {
	c := NewCollector()
	require.NoError(t, c.Collect("srv/server.go", []byte(serverGo), nil))
	assert.Empty(t, c.Symbols())

	require.NoError(t, c.Collect("srv/server.go", []byte(serverGo), []string{"linux"}))
	got := c.Symbols()
	assert.Equal(t, []string{
		"struct srv.Server",
		"method srv.Server.Start",
		"func srv.New",
	}, names(got))
	assert.Equal(t, []int{5, 8, 12}, []int{got[0].Start, got[1].Start, got[2].Start})
	assert.Equal(t, 14, got[2].End)
}

func TestCollectCPPOneLineTypes(t *testing.T) {
	src := "struct Point { int x; int y; };\nclass Forward;\nenum class Color { Red, Green };\nstruct Point origin;\n"
	c := NewCollector()
	require.NoError(t, c.Collect("geom.h", []byte(src), nil))
	assert.Equal(t, []string{"struct Point", "enum Color"}, names(c.Symbols()))
}

func TestCollectCRLF(t *testing.T) {
	c := NewCollector()
	src := strings.ReplaceAll(widgetCPP, "\n", "\r\n")
	require.NoError(t, c.Collect("src/widget.cpp", []byte(src), nil))
	got := c.Symbols()
	require.NotEmpty(t, got)
	assert.Equal(t, "class app.Widget", names(got)[0])
	assert.Equal(t, 5, got[0].Start)
}

func TestCollectUnknownLanguageAndDedupe(t *testing.T) {
	c := NewCollector()
	require.NoError(t, c.Collect("README.md", []byte("# hi\n"), nil))
	assert.Empty(t, c.Symbols())

	src := []byte("int f(int a) {\n}\n")
	require.NoError(t, c.Collect("a.c", src, nil))
	require.NoError(t, c.Collect("a.c", src, nil))
	assert.Len(t, c.Symbols(), 1)
}

func TestPreprocess(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		defines []string
		kept    []string
		dropped []string
	}{
		{
			name:    "ifndef and else",
			src:     "#ifndef NDEBUG\ndebug_only\n#else\nrelease_only\n#endif\n",
			defines: []string{"NDEBUG"},
			kept:    []string{"release_only"},
			dropped: []string{"debug_only"},
		},
		{
			name:    "nested blocks inside dead branch stay dead",
			src:     "#if 0\n#ifdef A\ninner\n#else\nother\n#endif\n#endif\nafter\n",
			defines: []string{"A"},
			kept:    []string{"after"},
			dropped: []string{"inner", "other"},
		},
		{
			name:    "elif chain takes first match only",
			src:     "#if defined(A)\na\n#elif defined(B)\nb\n#elif !defined(C)\nc\n#else\nd\n#endif\n",
			defines: []string{"B"},
			kept:    []string{"b"},
			dropped: []string{"a", "c", "d"},
		},
		{
			name:    "define and undef in file",
			src:     "#define LOCAL\n#ifdef LOCAL\nx\n#endif\n#undef LOCAL\n#ifdef LOCAL\ny\n#endif\n",
			kept:    []string{"x"},
			dropped: []string{"y"},
		},
		{
			name: "unknown expression counts as true",
			src:  "#if VERSION > 2\nnew_api\n#endif\n",
			kept: []string{"new_api"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := string(preprocess([]byte(tt.src), tt.defines))
			assert.Equal(t, strings.Count(tt.src, "\n"), strings.Count(out, "\n"), "line count must be preserved")
			for _, k := range tt.kept {
				assert.Contains(t, out, k)
			}
			for _, d := range tt.dropped {
				assert.NotContains(t, strings.Split(out, "\n"), d)
			}
		})
	}
}

func TestLangByExt(t *testing.T) {
	assert.Equal(t, LangCPP, LangByExt(".HPP"))
	assert.Equal(t, LangCPP, LangByExt("cc"))
	assert.Equal(t, LangGo, LangByExt(".go"))
	assert.Equal(t, "", LangByExt(".java"))
	assert.Equal(t, "", LangByExt(""))
}

func TestReceiverBaseType(t *testing.T) {
	assert.Equal(t, "Server", receiverBaseType("(s *Server) "))
	assert.Equal(t, "Conn", receiverBaseType("(c db.Conn)"))
	assert.Equal(t, "Map", receiverBaseType("(m *Map[K, V])"))
	assert.Equal(t, "", receiverBaseType("()"))
}
