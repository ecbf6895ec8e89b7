// Package local implements the "file" protocol backend on the local
// filesystem, backed by go-billy's osfs. It registers itself for the "file"
// and "local" schemes on import.
package local

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/roy-ht/pathlibfs/core"
)

func init() {
	core.Register(func(opts core.Options) (core.Backend, error) {
		return New(opts), nil
	}, "file", "local")
}

// Local implements core.Backend for the local filesystem. Relative paths
// are interpreted against the working directory at call time, absolute
// paths as-is.
type Local struct {
	fs        billy.Filesystem
	autoMkdir bool
}

// New creates a local filesystem backend. With Options.AutoMkdir set,
// opening a file for writing creates missing parent directories.
func New(opts core.Options) *Local {
	return &Local{
		fs:        osfs.New("/"),
		autoMkdir: opts.AutoMkdir,
	}
}

// abs anchors a relative path at the current working directory.
func (l *Local) abs(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	wd, err := os.Getwd()
	if err != nil {
		return filepath.Clean(p)
	}
	return filepath.Join(wd, p)
}

// Protocols returns the scheme aliases of the local backend.
func (l *Local) Protocols() []string { return []string{"file", "local"} }

// Sep returns the path separator.
func (l *Local) Sep() string { return "/" }

// UnstripProtocol reconstructs the file:// URI form. An absolute path
// yields the conventional tripled slash (file:///etc/hosts).
func (l *Local) UnstripProtocol(path string) string {
	return "file://" + path
}

// Exists reports whether the path exists.
func (l *Local) Exists(path string) (bool, error) {
	_, err := l.fs.Stat(l.abs(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Info returns the entry for path. The entry path is absolute.
func (l *Local) Info(path string) (*core.Entry, error) {
	abs := l.abs(path)
	info, err := l.fs.Stat(abs)
	if err != nil {
		return nil, err
	}
	return entryFromInfo(abs, info), nil
}

// IsDir reports whether path is an existing directory.
func (l *Local) IsDir(path string) bool {
	info, err := l.fs.Stat(l.abs(path))
	return err == nil && info.IsDir()
}

// IsFile reports whether path is an existing regular file.
func (l *Local) IsFile(path string) bool {
	info, err := l.fs.Stat(l.abs(path))
	return err == nil && info.Mode().IsRegular()
}

// Size returns the byte size of the file at path.
func (l *Local) Size(path string) (int64, error) {
	info, err := l.fs.Stat(l.abs(path))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Checksum returns the hex SHA-256 of the file content.
func (l *Local) Checksum(path string) (string, error) {
	f, err := l.fs.Open(l.abs(path))
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", core.PathError("checksum", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// UKey returns a token derived from size and modification time; it changes
// whenever the file content changes.
func (l *Local) UKey(path string) (string, error) {
	info, err := l.fs.Stat(l.abs(path))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%d", info.Size(), info.ModTime().UnixNano()), nil
}

// Modified returns the last-modification time of path.
func (l *Local) Modified(path string) (time.Time, error) {
	info, err := l.fs.Stat(l.abs(path))
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Created returns the inode change time, the closest the platform gets to
// a creation time.
func (l *Local) Created(path string) (time.Time, error) {
	info, err := l.fs.Stat(l.abs(path))
	if err != nil {
		return time.Time{}, err
	}
	return createdTime(info)
}

// Ls lists the direct children of a directory, or the entry itself when
// path is a file. Entry paths are absolute and sorted.
func (l *Local) Ls(path string) ([]*core.Entry, error) {
	abs := l.abs(path)
	info, err := l.fs.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []*core.Entry{entryFromInfo(abs, info)}, nil
	}
	infos, err := l.fs.ReadDir(abs)
	if err != nil {
		return nil, err
	}
	entries := make([]*core.Entry, 0, len(infos))
	for _, fi := range infos {
		entries = append(entries, entryFromInfo(filepath.Join(abs, fi.Name()), fi))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Glob expands a pattern with *, ?, [...] and ** wildcards.
func (l *Local) Glob(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(l.abs(pattern))
	if err != nil {
		return nil, core.PathError("glob", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// Find returns the files under path recursively, as sorted absolute paths.
func (l *Local) Find(path string, opts core.FindOptions) ([]string, error) {
	root := l.abs(path)
	info, err := l.fs.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	var out []string
	err = l.Walk(root, opts.MaxDepth, func(dir string, dirs, files []string) error {
		if opts.WithDirs && dir != root {
			out = append(out, dir)
		}
		for _, f := range files {
			out = append(out, filepath.Join(dir, f))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// Walk traverses the tree rooted at path top-down. Returning fs.SkipDir
// from fn skips descending into that directory.
func (l *Local) Walk(path string, maxDepth int, fn core.WalkFunc) error {
	return l.walk(l.abs(path), 1, maxDepth, fn)
}

func (l *Local) walk(dir string, depth, maxDepth int, fn core.WalkFunc) error {
	infos, err := l.fs.ReadDir(dir)
	if err != nil {
		return err
	}
	var dirs, files []string
	for _, fi := range infos {
		if fi.IsDir() {
			dirs = append(dirs, fi.Name())
		} else {
			files = append(files, fi.Name())
		}
	}
	sort.Strings(dirs)
	sort.Strings(files)
	if err := fn(dir, dirs, files); err != nil {
		if errors.Is(err, fs.SkipDir) {
			return nil
		}
		return err
	}
	if maxDepth > 0 && depth >= maxDepth {
		return nil
	}
	for _, d := range dirs {
		if err := l.walk(filepath.Join(dir, d), depth+1, maxDepth, fn); err != nil {
			return err
		}
	}
	return nil
}

// ExpandPath resolves a path, possibly containing wildcards, into the
// concrete paths it covers.
func (l *Local) ExpandPath(path string, opts core.ExpandOptions) ([]string, error) {
	var roots []string
	if hasMagic(path) {
		matches, err := l.Glob(path)
		if err != nil {
			return nil, err
		}
		roots = matches
	} else {
		abs := l.abs(path)
		if _, err := l.fs.Stat(abs); err != nil {
			return nil, err
		}
		roots = []string{abs}
	}
	if !opts.Recursive {
		return roots, nil
	}
	seen := make(map[string]struct{})
	var out []string
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	for _, root := range roots {
		add(root)
		if l.IsDir(root) {
			children, err := l.Find(root, core.FindOptions{MaxDepth: opts.MaxDepth, WithDirs: true})
			if err != nil {
				return nil, err
			}
			for _, c := range children {
				add(c)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// Du returns per-file sizes under path.
func (l *Local) Du(path string, maxDepth int) (map[string]int64, error) {
	root := l.abs(path)
	info, err := l.fs.Stat(root)
	if err != nil {
		return nil, err
	}
	sizes := make(map[string]int64)
	if !info.IsDir() {
		sizes[root] = info.Size()
		return sizes, nil
	}
	err = l.Walk(root, maxDepth, func(dir string, dirs, files []string) error {
		for _, f := range files {
			p := filepath.Join(dir, f)
			fi, err := l.fs.Stat(p)
			if err != nil {
				return err
			}
			sizes[p] = fi.Size()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sizes, nil
}

// Open opens path with os.O_* flags. With AutoMkdir, write modes create
// missing parent directories first.
func (l *Local) Open(path string, flag int) (core.File, error) {
	abs := l.abs(path)
	if l.autoMkdir && flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE) != 0 {
		if err := l.fs.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return nil, err
		}
	}
	f, err := l.fs.OpenFile(abs, flag, 0o666)
	if err != nil {
		return nil, err
	}
	return &file{f: f, backend: l, path: abs}, nil
}

// CatFile reads the whole file at path.
func (l *Local) CatFile(path string) ([]byte, error) {
	f, err := l.fs.Open(l.abs(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// PipeFile writes data as the complete new content of path.
func (l *Local) PipeFile(path string, data []byte) error {
	f, err := l.Open(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Write(data); err != nil {
		return core.PathError("pipe_file", path, err)
	}
	return f.Close()
}

// ReadBlock reads length bytes starting at offset. A negative length reads
// to the end.
func (l *Local) ReadBlock(path string, offset, length int64) ([]byte, error) {
	f, err := l.fs.Open(l.abs(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, core.PathError("read_block", path, err)
	}
	if length < 0 {
		return io.ReadAll(f)
	}
	buf := make([]byte, length)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, core.PathError("read_block", path, err)
	}
	return buf[:n], nil
}

// Head reads the first n bytes of path.
func (l *Local) Head(path string, n int64) ([]byte, error) {
	return l.ReadBlock(path, 0, n)
}

// Tail reads the last n bytes of path.
func (l *Local) Tail(path string, n int64) ([]byte, error) {
	size, err := l.Size(path)
	if err != nil {
		return nil, err
	}
	offset := size - n
	if offset < 0 {
		offset = 0
	}
	return l.ReadBlock(path, offset, -1)
}

// Touch creates an empty file at path, or refreshes the modification time
// of an existing one. With truncate set, existing content is discarded.
func (l *Local) Touch(path string, truncate bool) error {
	abs := l.abs(path)
	if _, err := l.fs.Stat(abs); err == nil && !truncate {
		now := time.Now()
		return os.Chtimes(abs, now, now)
	}
	f, err := l.Open(abs, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return err
	}
	return f.Close()
}

// Mkdir creates the directory at path; missing ancestors require
// createParents.
func (l *Local) Mkdir(path string, createParents bool) error {
	abs := l.abs(path)
	if createParents {
		return l.fs.MkdirAll(abs, 0o755)
	}
	if _, err := l.fs.Stat(abs); err == nil {
		return core.PathError("mkdir", path, core.ErrExist)
	}
	if _, err := l.fs.Stat(filepath.Dir(abs)); err != nil {
		return err
	}
	return l.fs.MkdirAll(abs, 0o755)
}

// Makedirs creates path and all missing ancestors. Without existOK an
// existing directory is an ErrExist failure.
func (l *Local) Makedirs(path string, existOK bool) error {
	abs := l.abs(path)
	if !existOK {
		if _, err := l.fs.Stat(abs); err == nil {
			return core.PathError("makedirs", path, core.ErrExist)
		}
	}
	return l.fs.MkdirAll(abs, 0o755)
}

// Rm removes path. Directories require opts.Recursive.
func (l *Local) Rm(path string, opts core.RmOptions) error {
	abs := l.abs(path)
	info, err := l.fs.Stat(abs)
	if err != nil {
		return err
	}
	if info.IsDir() && opts.Recursive {
		return os.RemoveAll(abs)
	}
	return l.fs.Remove(abs)
}

// RmFile removes the single file at path.
func (l *Local) RmFile(path string) error {
	abs := l.abs(path)
	info, err := l.fs.Stat(abs)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return core.PathErrorf("rm_file", path, "is a directory")
	}
	return l.fs.Remove(abs)
}

// Rmdir removes the empty directory at path. Non-empty directories fail.
func (l *Local) Rmdir(path string) error {
	abs := l.abs(path)
	info, err := l.fs.Stat(abs)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return core.PathErrorf("rmdir", path, "not a directory")
	}
	return l.fs.Remove(abs)
}

// Mv moves src to dst.
func (l *Local) Mv(src, dst string, _ core.TransferOptions) error {
	return l.fs.Rename(l.abs(src), l.abs(dst))
}

// Copy copies src to dst. Directories require opts.Recursive.
func (l *Local) Copy(src, dst string, opts core.TransferOptions) error {
	absSrc, absDst := l.abs(src), l.abs(dst)
	info, err := l.fs.Stat(absSrc)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return l.copyFile(absSrc, absDst)
	}
	if !opts.Recursive {
		return core.PathErrorf("copy", src, "is a directory (copy requires Recursive)")
	}
	return l.Walk(absSrc, opts.MaxDepth, func(dir string, dirs, files []string) error {
		rel, err := filepath.Rel(absSrc, dir)
		if err != nil {
			return err
		}
		target := filepath.Join(absDst, rel)
		if err := l.fs.MkdirAll(target, 0o755); err != nil {
			return err
		}
		for _, f := range files {
			if err := l.copyFile(filepath.Join(dir, f), filepath.Join(target, f)); err != nil {
				if opts.OnError == core.OnErrorIgnore {
					continue
				}
				return err
			}
		}
		return nil
	})
}

func (l *Local) copyFile(src, dst string) error {
	in, err := l.fs.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	if err := l.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := l.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()
	if _, err := io.Copy(out, in); err != nil {
		return core.PathError("copy", dst, err)
	}
	return out.Close()
}

// Put copies a local tree into this backend; both sides are local disk, so
// it is Copy.
func (l *Local) Put(localSrc, dst string, opts core.TransferOptions) error {
	return l.Copy(localSrc, dst, opts)
}

// Get copies out of this backend onto local disk; both sides are local
// disk, so it is Copy.
func (l *Local) Get(src, localDst string, opts core.TransferOptions) error {
	return l.Copy(src, localDst, opts)
}

// InvalidateCache is a no-op; the local backend keeps no cache.
func (l *Local) InvalidateCache(string) {}

// Unwrap returns the underlying billy.Filesystem.
func (l *Local) Unwrap() billy.Filesystem { return l.fs }

func entryFromInfo(path string, info fs.FileInfo) *core.Entry {
	t := core.EntryTypeFile
	switch {
	case info.IsDir():
		t = core.EntryTypeDirectory
	case !info.Mode().IsRegular():
		t = core.EntryTypeOther
	}
	return &core.Entry{
		Path:    path,
		Size:    info.Size(),
		Type:    t,
		ModTime: info.ModTime(),
	}
}

// hasMagic reports whether p contains glob wildcards.
func hasMagic(p string) bool {
	return strings.ContainsAny(p, "*?[")
}

// Compile-time interface check.
var _ core.Backend = (*Local)(nil)
