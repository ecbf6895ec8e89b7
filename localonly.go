package pathlibfs

import (
	"io/fs"
	"os"
	"os/user"
	"strconv"
	"syscall"

	"github.com/roy-ht/pathlibfs/core"
)

// The operations in this file only make sense on the local filesystem.
// Invoked on a remote path they fail with ErrMustBeLocal; the lexical
// defaults (Drive, Root, IsAbsolute, IsReserved) live in algebra.go and
// return documented constants instead.

func (p *Path) requireLocal(op string) error {
	if !p.IsLocal() {
		return core.PathError(op, p.path, core.ErrMustBeLocal)
	}
	return nil
}

// AsPosix returns the path with forward slashes. Remote paths fail with
// ErrMustBeLocal.
func (p *Path) AsPosix() (string, error) {
	if err := p.requireLocal("as_posix"); err != nil {
		return "", err
	}
	return p.path, nil
}

// Chmod changes the permission bits of a local file.
func (p *Path) Chmod(mode fs.FileMode) error {
	if err := p.requireLocal("chmod"); err != nil {
		return err
	}
	return os.Chmod(p.path, mode)
}

// SymlinkTo creates the receiver as a symbolic link pointing at target.
// Both paths must be local.
func (p *Path) SymlinkTo(target *Path) error {
	if err := p.requireLocal("symlink_to"); err != nil {
		return err
	}
	if err := target.requireLocal("symlink_to"); err != nil {
		return err
	}
	return os.Symlink(target.path, p.path)
}

// Owner returns the user name owning a local file.
func (p *Path) Owner() (string, error) {
	uid, _, err := p.ids("owner")
	if err != nil {
		return "", err
	}
	u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

// Group returns the group name owning a local file.
func (p *Path) Group() (string, error) {
	_, gid, err := p.ids("group")
	if err != nil {
		return "", err
	}
	g, err := user.LookupGroupId(strconv.FormatUint(uint64(gid), 10))
	if err != nil {
		return "", err
	}
	return g.Name, nil
}

func (p *Path) ids(op string) (uid, gid uint32, err error) {
	if err := p.requireLocal(op); err != nil {
		return 0, 0, err
	}
	info, err := os.Stat(p.path)
	if err != nil {
		return 0, 0, err
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, core.PathError(op, p.path, core.ErrUnsupported)
	}
	return st.Uid, st.Gid, nil
}

// IsSymlink reports whether a local path is a symbolic link. A missing path
// reports false.
func (p *Path) IsSymlink() (bool, error) {
	if err := p.requireLocal("is_symlink"); err != nil {
		return false, err
	}
	info, err := os.Lstat(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode()&fs.ModeSymlink != 0, nil
}

// IsMount reports whether a local path is a mount point: its device differs
// from its parent's.
func (p *Path) IsMount() (bool, error) {
	if err := p.requireLocal("is_mount"); err != nil {
		return false, err
	}
	info, err := os.Stat(p.path)
	if err != nil || !info.IsDir() {
		return false, err
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return false, core.PathError("is_mount", p.path, core.ErrUnsupported)
	}
	parentInfo, err := os.Stat(p.Parent().path)
	if err != nil {
		return false, err
	}
	pst, ok := parentInfo.Sys().(*syscall.Stat_t)
	if !ok {
		return false, core.PathError("is_mount", p.path, core.ErrUnsupported)
	}
	return st.Dev != pst.Dev || st.Ino == pst.Ino, nil
}

// IsSocket reports whether a local path is a unix socket.
func (p *Path) IsSocket() (bool, error) {
	return p.hasMode("is_socket", fs.ModeSocket)
}

// IsFifo reports whether a local path is a named pipe.
func (p *Path) IsFifo() (bool, error) {
	return p.hasMode("is_fifo", fs.ModeNamedPipe)
}

// IsBlockDevice reports whether a local path is a block device.
func (p *Path) IsBlockDevice() (bool, error) {
	ok, err := p.hasMode("is_block_device", fs.ModeDevice)
	if err != nil || !ok {
		return false, err
	}
	char, err := p.hasMode("is_block_device", fs.ModeCharDevice)
	return !char, err
}

// IsCharDevice reports whether a local path is a character device.
func (p *Path) IsCharDevice() (bool, error) {
	return p.hasMode("is_char_device", fs.ModeCharDevice)
}

func (p *Path) hasMode(op string, bit fs.FileMode) (bool, error) {
	if err := p.requireLocal(op); err != nil {
		return false, err
	}
	info, err := os.Stat(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode()&bit != 0, nil
}
