package local

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roy-ht/pathlibfs/core"
	"github.com/roy-ht/pathlibfs/fstest"
)

func TestConformance(t *testing.T) {
	fstest.TestSuiteWithConfig(t, func() core.Backend {
		return New(core.Options{})
	}, fstest.Config{BasePath: t.TempDir()})
}

func TestProtocols(t *testing.T) {
	l := New(core.Options{})
	assert.Equal(t, []string{"file", "local"}, l.Protocols())
	assert.Equal(t, "/", l.Sep())
	assert.Equal(t, "file:///etc/hosts", l.UnstripProtocol("/etc/hosts"))
	assert.Equal(t, "/", l.Unwrap().Root())
}

func TestChecksum(t *testing.T) {
	l := New(core.Options{})
	p := filepath.Join(t.TempDir(), "sum.txt")
	require.NoError(t, os.WriteFile(p, []byte("hello"), 0o644))

	sum, err := l.Checksum(p)
	require.NoError(t, err)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", sum)
}

func TestCreated(t *testing.T) {
	l := New(core.Options{})
	p := filepath.Join(t.TempDir(), "born.txt")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))

	created, err := l.Created(p)
	if runtime.GOOS != "linux" {
		assert.ErrorIs(t, err, core.ErrUnsupported)
		return
	}
	require.NoError(t, err)
	assert.False(t, created.IsZero())
}

func TestAutoMkdir(t *testing.T) {
	l := New(core.Options{AutoMkdir: true})
	p := filepath.Join(t.TempDir(), "deep", "nested", "f.txt")

	f, err := l.Open(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	require.NoError(t, err)
	_, err = f.Write([]byte("auto"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := l.CatFile(p)
	require.NoError(t, err)
	assert.Equal(t, "auto", string(data))
}

func TestOpenReadMissing(t *testing.T) {
	l := New(core.Options{})
	_, err := l.Open(filepath.Join(t.TempDir(), "nope.txt"), os.O_RDONLY)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotExist) || os.IsNotExist(err))
}

func TestRmFileOnDirectory(t *testing.T) {
	l := New(core.Options{})
	dir := filepath.Join(t.TempDir(), "d")
	require.NoError(t, l.Makedirs(dir, false))

	err := l.RmFile(dir)
	require.Error(t, err)
}

func TestUKeyChangesWithContent(t *testing.T) {
	l := New(core.Options{})
	p := filepath.Join(t.TempDir(), "u.txt")
	require.NoError(t, l.PipeFile(p, []byte("one")))
	k1, err := l.UKey(p)
	require.NoError(t, err)

	require.NoError(t, l.PipeFile(p, []byte("other")))
	k2, err := l.UKey(p)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}
