package pathlibfs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roy-ht/pathlibfs/core"
	"github.com/roy-ht/pathlibfs/memory"
)

// mem2Backend is a second in-memory protocol, registered so the transfer
// dispatcher sees two distinct remote protocols and has to stage through
// local disk.
type mem2Backend struct{ *memory.Memory }

func (mem2Backend) Protocols() []string             { return []string{"mem2"} }
func (mem2Backend) UnstripProtocol(p string) string { return "mem2://" + p }

// rejectPutBackend is a third in-memory protocol whose upload primitive
// always fails, so the second leg of a staged copy can be driven into its
// error path.
type rejectPutBackend struct{ *memory.Memory }

func (rejectPutBackend) Protocols() []string             { return []string{"mem3"} }
func (rejectPutBackend) UnstripProtocol(p string) string { return "mem3://" + p }
func (rejectPutBackend) Put(string, string, core.TransferOptions) error {
	return errors.New("upload rejected")
}

func init() {
	core.Register(func(core.Options) (core.Backend, error) {
		return mem2Backend{memory.New()}, nil
	}, "mem2")
	core.Register(func(core.Options) (core.Backend, error) {
		return rejectPutBackend{memory.New()}, nil
	}, "mem3")
}

// stagingDirs lists the staging directories currently present under the OS
// temp directory.
func stagingDirs(t *testing.T) []string {
	t.Helper()
	dirs, err := filepath.Glob(filepath.Join(os.TempDir(), "pathlibfs-stage-*"))
	require.NoError(t, err)
	return dirs
}

func TestCopyRemoteToLocal(t *testing.T) {
	src := mustPath(t, "memory://xfer-down/data.txt")
	require.NoError(t, src.WriteText("downloaded"))

	dst := mustPath(t, filepath.Join(t.TempDir(), "data.txt"))
	require.NoError(t, src.Copy(dst, core.TransferOptions{}))

	text, err := dst.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "downloaded", text)
}

func TestCopyLocalToRemote(t *testing.T) {
	local := filepath.Join(t.TempDir(), "up.txt")
	require.NoError(t, os.WriteFile(local, []byte("uploaded"), 0o644))

	src := mustPath(t, local)
	dst := mustPath(t, "memory://xfer-up/up.txt")
	require.NoError(t, src.Copy(dst, core.TransferOptions{}))

	text, err := dst.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "uploaded", text)
}

func TestCopySameProtocol(t *testing.T) {
	src := mustPath(t, "memory://xfer-same/src.txt")
	require.NoError(t, src.WriteText("native"))

	dst := mustPath(t, "memory://xfer-same/dst.txt")
	require.NoError(t, src.Copy(dst, core.TransferOptions{}))

	text, err := dst.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "native", text)

	// The source survives a copy.
	ok, err := src.Exists()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCopyStagedBetweenRemotes(t *testing.T) {
	src := mustPath(t, "memory://xfer-stage/src.txt")
	require.NoError(t, src.WriteText("staged bytes"))

	dst := mustPath(t, "mem2://xfer-stage/dst.txt")
	require.NoError(t, src.Copy(dst, core.TransferOptions{}))

	text, err := dst.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "staged bytes", text)
}

func TestCopyStagedTree(t *testing.T) {
	src := mustPath(t, "memory://xfer-stage-tree")
	require.NoError(t, src.Join("a/b.txt").WriteText("deep"))

	dst := mustPath(t, "mem2://xfer-stage-tree-out")
	require.NoError(t, src.Copy(dst, core.TransferOptions{Recursive: true}))

	text, err := dst.Join("a/b.txt").ReadText()
	require.NoError(t, err)
	assert.Equal(t, "deep", text)
}

func TestStagedCopyRemovesStagingDir(t *testing.T) {
	before := stagingDirs(t)

	src := mustPath(t, "memory://xfer-stage-clean/src.txt")
	require.NoError(t, src.WriteText("ephemeral"))
	require.NoError(t, src.Copy(mustPath(t, "mem2://xfer-stage-clean/dst.txt"), core.TransferOptions{}))

	assert.ElementsMatch(t, before, stagingDirs(t),
		"staging directory must not survive a successful copy")

	// The destination rejects the upload after the download leg succeeded.
	err := src.Copy(mustPath(t, "mem3://xfer-stage-clean/dst.txt"), core.TransferOptions{})
	require.Error(t, err)

	assert.ElementsMatch(t, before, stagingDirs(t),
		"staging directory must not survive a failed copy")
}

func TestCopyLocalAliases(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "alias.txt")
	require.NoError(t, os.WriteFile(local, []byte("aliased"), 0o644))

	src := mustPath(t, "local://"+local)
	dst := mustPath(t, filepath.Join(dir, "copy.txt"))

	// Alias spellings resolve to the same backend handle, so the copy is
	// one native call rather than a staged round-trip.
	assert.Same(t, src.Backend(), dst.Backend())

	before := stagingDirs(t)
	require.NoError(t, src.Copy(dst, core.TransferOptions{}))
	assert.ElementsMatch(t, before, stagingDirs(t))

	text, err := dst.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "aliased", text)
}

func TestMoveSameProtocol(t *testing.T) {
	src := mustPath(t, "memory://xfer-mv/src.txt")
	require.NoError(t, src.WriteText("moving"))

	dst := mustPath(t, "memory://xfer-mv/dst.txt")
	require.NoError(t, src.Move(dst, core.TransferOptions{}))

	ok, err := src.Exists()
	require.NoError(t, err)
	assert.False(t, ok, "source must be gone after a move")

	text, err := dst.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "moving", text)
}

func TestMoveAcrossProtocols(t *testing.T) {
	src := mustPath(t, "memory://xfer-mv-x/src.txt")
	require.NoError(t, src.WriteText("crossing"))

	dst := mustPath(t, "mem2://xfer-mv-x/dst.txt")
	require.NoError(t, src.Move(dst, core.TransferOptions{}))

	ok, err := src.Exists()
	require.NoError(t, err)
	assert.False(t, ok)

	text, err := dst.ReadText()
	require.NoError(t, err)
	assert.Equal(t, "crossing", text)
}

func TestRename(t *testing.T) {
	src := mustPath(t, "memory://xfer-ren/src.txt")
	require.NoError(t, src.WriteText("renamed"))

	dst := mustPath(t, "memory://xfer-ren/dst.txt")
	require.NoError(t, src.Rename(dst, core.TransferOptions{}))
	ok, err := dst.Exists()
	require.NoError(t, err)
	assert.True(t, ok)

	err = dst.Rename(mustPath(t, "mem2://xfer-ren/other.txt"), core.TransferOptions{})
	assert.ErrorIs(t, err, ErrProtocolMismatch)
}

func TestPutGetValidation(t *testing.T) {
	local := mustPath(t, filepath.Join(t.TempDir(), "f.txt"))
	remote := mustPath(t, "memory://xfer-valid/f.txt")

	err := local.Put(local, core.TransferOptions{})
	assert.ErrorIs(t, err, ErrMustBeRemote)

	err = local.Get(local, core.TransferOptions{})
	assert.ErrorIs(t, err, ErrMustBeRemote)

	err = remote.Put(mustPath(t, "mem2://xfer-valid/f.txt"), core.TransferOptions{})
	assert.ErrorIs(t, err, ErrMustBeLocalTarget)

	err = remote.Get(mustPath(t, "mem2://xfer-valid/f.txt"), core.TransferOptions{})
	assert.ErrorIs(t, err, ErrMustBeLocalTarget)
}

func TestPutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "round.txt")
	require.NoError(t, os.WriteFile(local, []byte("round trip"), 0o644))

	remote := mustPath(t, "memory://xfer-round/round.txt")
	require.NoError(t, remote.Put(mustPath(t, local), core.TransferOptions{}))

	back := filepath.Join(dir, "back.txt")
	require.NoError(t, remote.Get(mustPath(t, back), core.TransferOptions{}))

	data, err := os.ReadFile(back)
	require.NoError(t, err)
	assert.Equal(t, "round trip", string(data))
}
