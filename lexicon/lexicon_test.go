package lexicon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadParsesValenceAndIgnoresExtraColumns(t *testing.T) {
	lx, err := Load(strings.NewReader("good\t1.9\t0.9\t[1,2,3]\nbad\t-2.5\n# comment\n\nnotab\n"), nil)
	require.NoError(t, err)

	v, ok := lx.Valence("good")
	require.True(t, ok)
	require.InDelta(t, float32(1.9), v, 1e-9)

	v, ok = lx.Valence("bad")
	require.True(t, ok)
	require.InDelta(t, -2.5, v, 1e-9)

	_, ok = lx.Valence("notab")
	require.False(t, ok)

	_, ok = lx.Valence("missing")
	require.False(t, ok)
}

func TestLoadParsesEmojiMap(t *testing.T) {
	lx, err := Load(nil, strings.NewReader("🙂\thappy face smiley\n"))
	require.NoError(t, err)

	phrase, ok := lx.EmojiPhrase("🙂")
	require.True(t, ok)
	require.Equal(t, "happy face smiley", phrase)
}

func TestDefaultLoadsEmbeddedData(t *testing.T) {
	lx, err := Default()
	require.NoError(t, err)
	require.Greater(t, lx.Len(), 0)

	v, ok := lx.Valence("good")
	require.True(t, ok)
	require.Greater(t, v, float32(0))
}
