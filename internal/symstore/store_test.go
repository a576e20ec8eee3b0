package symstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symbol-indexer/internal/symbols"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreFileSymbolsReturnsPrevious(t *testing.T) {
	s := openTest(t)
	v1 := []symbols.Symbol{{Symbol: "app.main", Kind: "func", Path: "main.cpp", Start: 1, End: 3}}
	v2 := []symbols.Symbol{{Symbol: "app.run", Kind: "func", Path: "main.cpp", Start: 1, End: 5}}

	prev, err := s.StoreFileSymbols("debug", "main.cpp", 11, v1)
	require.NoError(t, err)
	assert.Nil(t, prev)

	prev, err = s.StoreFileSymbols("debug", "main.cpp", 22, v2)
	require.NoError(t, err)
	assert.Equal(t, v1, prev)

	got, err := s.FileSymbols("debug", "main.cpp")
	require.NoError(t, err)
	assert.Equal(t, v2, got)

	fp, ok, err := s.Fingerprint("debug", "main.cpp")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(22), fp)
}

func TestFingerprintMissing(t *testing.T) {
	s := openTest(t)
	_, ok, err := s.Fingerprint("debug", "nope.cpp")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.FileSymbols("debug", "nope.cpp")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteConfigurationIsScoped(t *testing.T) {
	s := openTest(t)
	for _, cfg := range []string{"debug", "debug2", "release"} {
		for _, p := range []string{"a.cpp", "b/c.h"} {
			_, err := s.StoreFileSymbols(cfg, p, 1, nil)
			require.NoError(t, err)
		}
	}

	require.NoError(t, s.DeleteConfiguration("debug"))

	paths, err := s.Paths("debug")
	require.NoError(t, err)
	assert.Empty(t, paths)
	for _, cfg := range []string{"debug2", "release"} {
		paths, err := s.Paths(cfg)
		require.NoError(t, err)
		assert.Equal(t, []string{"a.cpp", "b/c.h"}, paths, cfg)
	}
}

func TestFingerprintDigest(t *testing.T) {
	a := Fingerprint([]byte("int main() {}\n"))
	assert.Equal(t, a, Fingerprint([]byte("int main() {}\n")))
	assert.NotEqual(t, a, Fingerprint([]byte("int main() { return 1; }\n")))
	assert.NotEqual(t, a, Fingerprint([]byte("int main() {}\n"), "NDEBUG"))
	assert.NotEqual(t, Fingerprint([]byte("x"), "AB"), Fingerprint([]byte("x"), "A", "B"))
}
