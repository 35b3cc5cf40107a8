package guid

import (
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifyIsStable(t *testing.T) {
	paths := []string{
		"default/island.pf",
		"default/sample.p",
		"extra/textures/sky.hdr",
		"",
	}

	for _, path := range paths {
		first := Identify(path)
		assert.Equal(t, first, Identify(path), "identify should be deterministic for %q", path)
		// Persisted content embeds these values, so the function is pinned
		// to xxhash64 of the path.
		assert.Equal(t, GUID(xxhash.Sum64String(path)), first)
	}
}

func TestIdentifyDistinguishesPaths(t *testing.T) {
	assert.NotEqual(t, Identify("default/a.p"), Identify("default/b.p"))
	assert.NotEqual(t, Identify("default/a.p"), Identify("extra/a.p"))
}

func TestIdentifySeparators(t *testing.T) {
	assert.Equal(t, Identify("default/models/tree.v"), Identify("default\\models\\tree.v"))
}

func TestStringParse(t *testing.T) {
	id := Identify("default/island.pf")
	text := id.String()
	assert.Len(t, text, 16)

	parsed, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	parsed, err = Parse("0x" + text)
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = Parse("not a guid")
	assert.Error(t, err)
}

func TestNull(t *testing.T) {
	assert.True(t, Null.IsNull())
	assert.False(t, Identify("default/island.pf").IsNull())
	assert.Equal(t, "0000000000000000", Null.String())
}

func TestIdentifyCleansPaths(t *testing.T) {
	id := Identify("default/a.wren")
	assert.Equal(t, id, Identify("default/sub/../a.wren"))
	assert.Equal(t, id, Identify("default//a.wren"))
	assert.Equal(t, id, Identify("./default/a.wren"))
	assert.Equal(t, "default/a.wren", Clean("default\\sub\\..\\a.wren"))
	assert.Equal(t, "", Clean(""))
}
