package pathlibfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalOnlyRejectRemote(t *testing.T) {
	p := mustPath(t, "memory://guard/x.txt")

	_, err := p.AsPosix()
	assert.ErrorIs(t, err, ErrMustBeLocal)

	assert.ErrorIs(t, p.Chmod(0o644), ErrMustBeLocal)
	assert.ErrorIs(t, p.SymlinkTo(mustPath(t, "/tmp/t")), ErrMustBeLocal)

	_, err = p.Owner()
	assert.ErrorIs(t, err, ErrMustBeLocal)
	_, err = p.Group()
	assert.ErrorIs(t, err, ErrMustBeLocal)
	_, err = p.IsSymlink()
	assert.ErrorIs(t, err, ErrMustBeLocal)
	_, err = p.IsMount()
	assert.ErrorIs(t, err, ErrMustBeLocal)
	_, err = p.IsSocket()
	assert.ErrorIs(t, err, ErrMustBeLocal)
}

func TestAsPosix(t *testing.T) {
	got, err := mustPath(t, "/a/b").AsPosix()
	require.NoError(t, err)
	assert.Equal(t, "/a/b", got)
}

func TestChmod(t *testing.T) {
	f := filepath.Join(t.TempDir(), "mode.txt")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))

	p := mustPath(t, f)
	require.NoError(t, p.Chmod(0o600))

	info, err := os.Stat(f)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSymlink(t *testing.T) {
	dir := t.TempDir()
	target := mustPath(t, filepath.Join(dir, "target.txt"))
	require.NoError(t, target.WriteText("pointed at"))

	link := mustPath(t, filepath.Join(dir, "link.txt"))
	require.NoError(t, link.SymlinkTo(target))

	ok, err := link.IsSymlink()
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = target.IsSymlink()
	require.NoError(t, err)
	assert.False(t, ok)

	// Equal resolves symlinks, so the link and its target compare equal.
	assert.True(t, link.Equal(target))

	text, err := link.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "pointed at", text)
}

func TestOwnerGroup(t *testing.T) {
	f := filepath.Join(t.TempDir(), "owned.txt")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))

	p := mustPath(t, f)
	owner, err := p.Owner()
	require.NoError(t, err)
	assert.NotEmpty(t, owner)

	group, err := p.Group()
	require.NoError(t, err)
	assert.NotEmpty(t, group)
}

func TestFileModePredicates(t *testing.T) {
	f := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))

	p := mustPath(t, f)
	for name, probe := range map[string]func() (bool, error){
		"socket":       p.IsSocket,
		"fifo":         p.IsFifo,
		"block device": p.IsBlockDevice,
		"char device":  p.IsCharDevice,
	} {
		ok, err := probe()
		require.NoError(t, err, name)
		assert.False(t, ok, "a regular file is not a %s", name)
	}

	// Missing paths report false rather than an error.
	missing := mustPath(t, filepath.Join(t.TempDir(), "gone"))
	ok, err := missing.IsSocket()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsMountRoot(t *testing.T) {
	ok, err := mustPath(t, "/").IsMount()
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = mustPath(t, t.TempDir()).IsMount()
	require.NoError(t, err)
	assert.False(t, ok)
}
