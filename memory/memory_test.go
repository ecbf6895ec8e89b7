package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roy-ht/pathlibfs/core"
	"github.com/roy-ht/pathlibfs/fstest"
)

func TestConformance(t *testing.T) {
	fstest.TestSuite(t, func() core.Backend {
		return New()
	})
}

func TestProtocols(t *testing.T) {
	m := New()
	assert.Equal(t, []string{"memory"}, m.Protocols())
	assert.Equal(t, "/", m.Sep())
	assert.Equal(t, "memory://a/b.txt", m.UnstripProtocol("a/b.txt"))
	assert.Equal(t, "memory://a/b.txt", m.UnstripProtocol("/a/b.txt"))
}

func TestCreatedUnsupported(t *testing.T) {
	m := New()
	require.NoError(t, m.PipeFile("x.txt", []byte("x")))
	_, err := m.Created("x.txt")
	assert.ErrorIs(t, err, core.ErrUnsupported)
}

func TestIsolatedInstances(t *testing.T) {
	a, b := New(), New()
	require.NoError(t, a.PipeFile("only-a.txt", []byte("a")))

	ok, err := b.Exists("only-a.txt")
	require.NoError(t, err)
	assert.False(t, ok, "stores must not leak between instances")
}

func TestGlobDoubleStar(t *testing.T) {
	m := New()
	require.NoError(t, m.PipeFile("data/a.txt", []byte("a")))
	require.NoError(t, m.PipeFile("data/sub/b.txt", []byte("b")))

	matches, err := m.Glob("data/**/*.txt")
	require.NoError(t, err)
	assert.Contains(t, matches, "data/a.txt")
	assert.Contains(t, matches, "data/sub/b.txt")
}
