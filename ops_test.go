package pathlibfs

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roy-ht/pathlibfs/core"
)

// The operation tests run against the in-memory backend; one store is
// shared per process, so every test works under its own key prefix.

func TestReadWriteText(t *testing.T) {
	p := mustPath(t, "memory://ops-rw/greeting.txt")
	require.NoError(t, p.WriteText("hello"))

	text, err := p.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	data, err := p.ReadBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	size, err := p.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)

	assert.True(t, p.IsFile())
	assert.False(t, p.IsDir())

	ok, err := p.Exists()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInfoAndTimes(t *testing.T) {
	p := mustPath(t, "memory://ops-info/x.txt")
	require.NoError(t, p.WriteBytes([]byte("abc")))

	info, err := p.Info()
	require.NoError(t, err)
	assert.Equal(t, "x.txt", info.Name())
	assert.Equal(t, int64(3), info.Size)
	assert.False(t, info.IsDir())

	mod, err := p.Modified()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), mod, time.Minute)

	_, err = p.Created()
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestLs(t *testing.T) {
	base := mustPath(t, "memory://ops-ls")
	require.NoError(t, base.Join("a.txt").WriteText("a"))
	require.NoError(t, base.Join("sub/b.txt").WriteText("b"))

	children, err := base.Ls()
	require.NoError(t, err)
	require.Len(t, children, 2)
	for _, c := range children {
		assert.False(t, c.Equal(base), "listing must not include the path itself")
		assert.Equal(t, "memory", c.Protocol())
	}

	// Listing a file yields the file key itself on the backend, which the
	// self filter removes: a file has no children.
	children, err = base.Join("a.txt").Ls()
	require.NoError(t, err)
	assert.Empty(t, children)

	_, err = base.Join("nope").Ls()
	assert.Error(t, err)
}

func TestIterdir(t *testing.T) {
	base := mustPath(t, "memory://ops-iter")
	require.NoError(t, base.Join("a.txt").WriteText("a"))
	require.NoError(t, base.Join("b.txt").WriteText("b"))

	var seen int
	require.NoError(t, base.Iterdir(func(c *Path) error {
		seen++
		return nil
	}))
	assert.Equal(t, 2, seen)

	// A non-nil error stops the iteration and surfaces unchanged.
	sentinel := errors.New("stop")
	seen = 0
	err := base.Iterdir(func(c *Path) error {
		seen++
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, seen)
}

func TestGlob(t *testing.T) {
	base := mustPath(t, "memory://ops-glob")
	require.NoError(t, base.Join("a.txt").WriteText("a"))
	require.NoError(t, base.Join("b.csv").WriteText("b"))
	require.NoError(t, base.Join("sub/c.txt").WriteText("c"))

	matches, err := base.Glob("*.txt")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a.txt", matches[0].Name())

	matches, err = base.RGlob("*.txt")
	require.NoError(t, err)
	var names []string
	for _, m := range matches {
		names = append(names, m.Name())
	}
	assert.Contains(t, names, "a.txt")
	assert.Contains(t, names, "c.txt")
}

func TestWalk(t *testing.T) {
	base := mustPath(t, "memory://ops-walk")
	require.NoError(t, base.Join("a.txt").WriteText("a"))
	require.NoError(t, base.Join("sub/b.txt").WriteText("b"))

	var dirs []*Path
	err := base.Walk(0, func(dir *Path, subdirs, files []string) error {
		dirs = append(dirs, dir)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, dirs, 2)
	assert.True(t, dirs[0].Equal(base))
	assert.Equal(t, "sub", dirs[1].Name())
}

func TestFindAndExpandPath(t *testing.T) {
	base := mustPath(t, "memory://ops-find")
	require.NoError(t, base.Join("a.txt").WriteText("a"))
	require.NoError(t, base.Join("sub/b.txt").WriteText("b"))

	found, err := base.Find(core.FindOptions{})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = base.Find(core.FindOptions{MaxDepth: 1})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	expanded, err := base.ExpandPath(core.ExpandOptions{Recursive: true})
	require.NoError(t, err)
	var names []string
	for _, e := range expanded {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "b.txt")
}

func TestTouch(t *testing.T) {
	p := mustPath(t, "memory://ops-touch/new.txt")
	require.NoError(t, p.Touch(false, false))
	assert.True(t, p.IsFile())

	err := p.Touch(false, false)
	assert.ErrorIs(t, err, ErrExist)

	require.NoError(t, p.WriteText("content"))
	require.NoError(t, p.Touch(true, false))
	text, err := p.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "content", text)

	require.NoError(t, p.Touch(true, true))
	size, err := p.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestBlockReads(t *testing.T) {
	p := mustPath(t, "memory://ops-block/digits.txt")
	require.NoError(t, p.WriteText("0123456789"))

	block, err := p.ReadBlock(2, 3)
	require.NoError(t, err)
	assert.Equal(t, "234", string(block))

	head, err := p.Head(4)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(head))

	tail, err := p.Tail(4)
	require.NoError(t, err)
	assert.Equal(t, "6789", string(tail))
}

func TestDu(t *testing.T) {
	base := mustPath(t, "memory://ops-du")
	require.NoError(t, base.Join("a.txt").WriteText("aaaa"))
	require.NoError(t, base.Join("sub/b.txt").WriteText("bb"))

	total, err := base.DuTotal(0)
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)

	sizes, err := base.Du(0)
	require.NoError(t, err)
	assert.Len(t, sizes, 2)
}

func TestMkdirAndRemove(t *testing.T) {
	base := mustPath(t, "memory://ops-dirs")
	require.NoError(t, base.Join("a/b").Mkdir(true, true))
	assert.True(t, base.Join("a/b").IsDir())

	require.NoError(t, base.Join("a/b").Rmdir())
	assert.False(t, base.Join("a/b").IsDir())

	require.NoError(t, base.Join("tree/x.txt").WriteText("x"))
	require.NoError(t, base.Join("tree").Rm(core.RmOptions{Recursive: true}))
	ok, err := base.Join("tree").Exists()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSignUnsupported(t *testing.T) {
	p := mustPath(t, "memory://ops-sign/x.txt")
	_, err := p.Sign(time.Minute)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestChecksumAndUKey(t *testing.T) {
	p := mustPath(t, "memory://ops-sum/x.txt")
	require.NoError(t, p.WriteText("stable"))

	sum1, err := p.Checksum()
	require.NoError(t, err)
	sum2, err := p.Checksum()
	require.NoError(t, err)
	assert.Equal(t, sum1, sum2)

	key1, err := p.UKey()
	require.NoError(t, err)
	require.NoError(t, p.WriteText("changed!"))
	key2, err := p.UKey()
	require.NoError(t, err)
	assert.NotEqual(t, key1, key2)
}
