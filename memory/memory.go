// Package memory implements the "memory" protocol backend, an in-process
// filesystem backed by go-billy's memfs. It registers itself on import.
//
// Keys live in a flat namespace with "/" separators and no leading
// separator; one instance is shared per option set through the registry's
// instance cache, so two Paths created with the same options see the same
// store.
package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/helper/iofs"
	"github.com/go-git/go-billy/v5/memfs"

	"github.com/roy-ht/pathlibfs/core"
)

func init() {
	core.Register(func(opts core.Options) (core.Backend, error) {
		return New(), nil
	}, "memory")
}

// Memory implements core.Backend over an in-process filesystem.
type Memory struct {
	fs billy.Filesystem
}

// New creates an empty in-memory backend.
func New() *Memory {
	return &Memory{fs: memfs.New()}
}

// abs converts a key into the rooted form memfs expects.
func (m *Memory) abs(key string) string {
	return "/" + strings.TrimLeft(key, "/")
}

// key converts a rooted memfs path back into key form.
func key(abs string) string {
	return strings.TrimLeft(abs, "/")
}

// Protocols returns the scheme aliases of the memory backend.
func (m *Memory) Protocols() []string { return []string{"memory"} }

// Sep returns the key separator.
func (m *Memory) Sep() string { return "/" }

// UnstripProtocol reconstructs the memory:// URI form.
func (m *Memory) UnstripProtocol(p string) string {
	return "memory://" + key(p)
}

// Exists reports whether the key exists.
func (m *Memory) Exists(p string) (bool, error) {
	_, err := m.fs.Stat(m.abs(p))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Info returns the entry for the key.
func (m *Memory) Info(p string) (*core.Entry, error) {
	info, err := m.fs.Stat(m.abs(p))
	if err != nil {
		return nil, err
	}
	return m.entryFromInfo(m.abs(p), info), nil
}

// IsDir reports whether the key is a directory.
func (m *Memory) IsDir(p string) bool {
	info, err := m.fs.Stat(m.abs(p))
	return err == nil && info.IsDir()
}

// IsFile reports whether the key is a regular file.
func (m *Memory) IsFile(p string) bool {
	info, err := m.fs.Stat(m.abs(p))
	return err == nil && !info.IsDir()
}

// Size returns the byte size of the file at the key.
func (m *Memory) Size(p string) (int64, error) {
	info, err := m.fs.Stat(m.abs(p))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Checksum returns the hex SHA-256 of the content.
func (m *Memory) Checksum(p string) (string, error) {
	data, err := m.CatFile(p)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// UKey returns a token that changes whenever the content changes.
func (m *Memory) UKey(p string) (string, error) {
	info, err := m.fs.Stat(m.abs(p))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%d", info.Size(), info.ModTime().UnixNano()), nil
}

// Modified returns the last-modification time of the key.
func (m *Memory) Modified(p string) (time.Time, error) {
	info, err := m.fs.Stat(m.abs(p))
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Created is not tracked by the in-memory store.
func (m *Memory) Created(p string) (time.Time, error) {
	return time.Time{}, core.PathError("created", p, core.ErrUnsupported)
}

// Ls lists the direct children of a directory key, or the entry itself for
// a file key. Entries are in key form, sorted.
func (m *Memory) Ls(p string) ([]*core.Entry, error) {
	abs := m.abs(p)
	info, err := m.fs.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []*core.Entry{m.entryFromInfo(abs, info)}, nil
	}
	infos, err := m.fs.ReadDir(abs)
	if err != nil {
		return nil, err
	}
	entries := make([]*core.Entry, 0, len(infos))
	for _, fi := range infos {
		entries = append(entries, m.entryFromInfo(path.Join(abs, fi.Name()), fi))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Glob expands a key pattern with *, ?, [...] and ** wildcards.
func (m *Memory) Glob(pattern string) ([]string, error) {
	matches, err := doublestar.Glob(iofs.New(m.fs), key(pattern))
	if err != nil {
		return nil, core.PathError("glob", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// Find returns the file keys under p recursively, sorted.
func (m *Memory) Find(p string, opts core.FindOptions) ([]string, error) {
	abs := m.abs(p)
	info, err := m.fs.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{key(abs)}, nil
	}
	var out []string
	err = m.Walk(p, opts.MaxDepth, func(dir string, dirs, files []string) error {
		if opts.WithDirs && dir != key(abs) {
			out = append(out, dir)
		}
		for _, f := range files {
			out = append(out, path.Join(dir, f))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}

// Walk traverses the tree rooted at p top-down. Directory arguments to fn
// are in key form; returning fs.SkipDir skips descending.
func (m *Memory) Walk(p string, maxDepth int, fn core.WalkFunc) error {
	return m.walk(key(m.abs(p)), 1, maxDepth, fn)
}

func (m *Memory) walk(dir string, depth, maxDepth int, fn core.WalkFunc) error {
	infos, err := m.fs.ReadDir(m.abs(dir))
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
		if err := m.walk(path.Join(dir, d), depth+1, maxDepth, fn); err != nil {
			return err
		}
	}
	return nil
}

// ExpandPath resolves a key, possibly containing wildcards, into the
// concrete keys it covers.
func (m *Memory) ExpandPath(p string, opts core.ExpandOptions) ([]string, error) {
	var roots []string
	if strings.ContainsAny(p, "*?[") {
		matches, err := m.Glob(p)
		if err != nil {
			return nil, err
		}
		roots = matches
	} else {
		if _, err := m.fs.Stat(m.abs(p)); err != nil {
			return nil, err
		}
		roots = []string{key(m.abs(p))}
	}
	if !opts.Recursive {
		return roots, nil
	}
	seen := make(map[string]struct{})
	var out []string
	add := func(k string) {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	for _, root := range roots {
		add(root)
		if m.IsDir(root) {
			children, err := m.Find(root, core.FindOptions{MaxDepth: opts.MaxDepth, WithDirs: true})
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

// Du returns per-file sizes under the key.
func (m *Memory) Du(p string, maxDepth int) (map[string]int64, error) {
	info, err := m.fs.Stat(m.abs(p))
	if err != nil {
		return nil, err
	}
	sizes := make(map[string]int64)
	if !info.IsDir() {
		sizes[key(m.abs(p))] = info.Size()
		return sizes, nil
	}
	err = m.Walk(p, maxDepth, func(dir string, dirs, files []string) error {
		for _, f := range files {
			k := path.Join(dir, f)
			fi, err := m.fs.Stat(m.abs(k))
			if err != nil {
				return err
			}
			sizes[k] = fi.Size()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sizes, nil
}

// Open opens the key with os.O_* flags. Write modes create missing parents;
// object namespaces have no mkdir-first requirement.
func (m *Memory) Open(p string, flag int) (core.File, error) {
	abs := m.abs(p)
	f, err := m.fs.OpenFile(abs, flag, 0o666)
	if err != nil {
		return nil, err
	}
	return &file{f: f, backend: m, path: abs}, nil
}

// CatFile reads the whole content of the key.
func (m *Memory) CatFile(p string) ([]byte, error) {
	f, err := m.fs.Open(m.abs(p))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// PipeFile writes data as the complete new content of the key.
func (m *Memory) PipeFile(p string, data []byte) error {
	f, err := m.Open(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Write(data); err != nil {
		return core.PathError("pipe_file", p, err)
	}
	return f.Close()
}

// ReadBlock reads length bytes starting at offset. A negative length reads
// to the end.
func (m *Memory) ReadBlock(p string, offset, length int64) ([]byte, error) {
	f, err := m.fs.Open(m.abs(p))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, core.PathError("read_block", p, err)
	}
	if length < 0 {
		return io.ReadAll(f)
	}
	buf := make([]byte, length)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, core.PathError("read_block", p, err)
	}
	return buf[:n], nil
}

// Head reads the first n bytes of the key.
func (m *Memory) Head(p string, n int64) ([]byte, error) {
	return m.ReadBlock(p, 0, n)
}

// Tail reads the last n bytes of the key.
func (m *Memory) Tail(p string, n int64) ([]byte, error) {
	size, err := m.Size(p)
	if err != nil {
		return nil, err
	}
	offset := size - n
	if offset < 0 {
		offset = 0
	}
	return m.ReadBlock(p, offset, -1)
}

// Touch creates an empty file at the key or, with truncate, discards the
// existing content. Modification time refresh is handled by rewriting.
func (m *Memory) Touch(p string, truncate bool) error {
	if !truncate {
		if ok, err := m.Exists(p); err != nil {
			return err
		} else if ok {
			data, err := m.CatFile(p)
			if err != nil {
				return err
			}
			return m.PipeFile(p, data)
		}
	}
	f, err := m.Open(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return err
	}
	return f.Close()
}

// Mkdir creates the directory at the key; missing ancestors require
// createParents.
func (m *Memory) Mkdir(p string, createParents bool) error {
	abs := m.abs(p)
	if _, err := m.fs.Stat(abs); err == nil {
		return core.PathError("mkdir", p, core.ErrExist)
	}
	if !createParents {
		parent := path.Dir(abs)
		if parent != "/" {
			if _, err := m.fs.Stat(parent); err != nil {
				return err
			}
		}
	}
	return m.fs.MkdirAll(abs, 0o755)
}

// Makedirs creates the key and all missing ancestors.
func (m *Memory) Makedirs(p string, existOK bool) error {
	if !existOK {
		if _, err := m.fs.Stat(m.abs(p)); err == nil {
			return core.PathError("makedirs", p, core.ErrExist)
		}
	}
	return m.fs.MkdirAll(m.abs(p), 0o755)
}

// Rm removes the key. Directories require opts.Recursive.
func (m *Memory) Rm(p string, opts core.RmOptions) error {
	abs := m.abs(p)
	info, err := m.fs.Stat(abs)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return m.fs.Remove(abs)
	}
	infos, err := m.fs.ReadDir(abs)
	if err != nil {
		return err
	}
	if len(infos) > 0 && !opts.Recursive {
		return core.PathErrorf("rm", p, "directory not empty (rm requires Recursive)")
	}
	return m.removeAll(abs)
}

// removeAll removes a tree bottom-up; memfs has no native recursive remove.
func (m *Memory) removeAll(abs string) error {
	infos, err := m.fs.ReadDir(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, fi := range infos {
		child := path.Join(abs, fi.Name())
		if fi.IsDir() {
			if err := m.removeAll(child); err != nil {
				return err
			}
		} else if err := m.fs.Remove(child); err != nil {
			return err
		}
	}
	if err := m.fs.Remove(abs); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// RmFile removes the single file at the key.
func (m *Memory) RmFile(p string) error {
	abs := m.abs(p)
	info, err := m.fs.Stat(abs)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return core.PathErrorf("rm_file", p, "is a directory")
	}
	return m.fs.Remove(abs)
}

// Rmdir removes the empty directory at the key; non-empty directories fail.
func (m *Memory) Rmdir(p string) error {
	abs := m.abs(p)
	info, err := m.fs.Stat(abs)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return core.PathErrorf("rmdir", p, "not a directory")
	}
	infos, err := m.fs.ReadDir(abs)
	if err != nil {
		return err
	}
	if len(infos) > 0 {
		return core.PathErrorf("rmdir", p, "directory not empty")
	}
	if err := m.fs.Remove(abs); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Mv moves src to dst within the store.
func (m *Memory) Mv(src, dst string, _ core.TransferOptions) error {
	return m.fs.Rename(m.abs(src), m.abs(dst))
}

// Copy copies src to dst within the store. Directories require
// opts.Recursive.
func (m *Memory) Copy(src, dst string, opts core.TransferOptions) error {
	info, err := m.fs.Stat(m.abs(src))
	if err != nil {
		return err
	}
	if !info.IsDir() {
		data, err := m.CatFile(src)
		if err != nil {
			return err
		}
		return m.PipeFile(dst, data)
	}
	if !opts.Recursive {
		return core.PathErrorf("copy", src, "is a directory (copy requires Recursive)")
	}
	srcKey := key(m.abs(src))
	return m.Walk(src, opts.MaxDepth, func(dir string, dirs, files []string) error {
		rel := strings.TrimPrefix(strings.TrimPrefix(dir, srcKey), "/")
		target := path.Join(key(m.abs(dst)), rel)
		if err := m.fs.MkdirAll(m.abs(target), 0o755); err != nil {
			return err
		}
		for _, f := range files {
			data, err := m.CatFile(path.Join(dir, f))
			if err == nil {
				err = m.PipeFile(path.Join(target, f), data)
			}
			if err != nil {
				if opts.OnError == core.OnErrorIgnore {
					continue
				}
				return err
			}
		}
		return nil
	})
}

// Put copies a local file or tree at localSrc into the store at dst.
func (m *Memory) Put(localSrc, dst string, opts core.TransferOptions) error {
	info, err := os.Stat(localSrc)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		data, err := os.ReadFile(localSrc)
		if err != nil {
			return err
		}
		return m.PipeFile(dst, data)
	}
	if !opts.Recursive {
		return core.PathErrorf("put", localSrc, "is a directory (put requires Recursive)")
	}
	return filepath.WalkDir(localSrc, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(localSrc, p)
		if err != nil {
			return err
		}
		target := path.Join(key(m.abs(dst)), filepath.ToSlash(rel))
		if d.IsDir() {
			return m.fs.MkdirAll(m.abs(target), 0o755)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			if opts.OnError == core.OnErrorIgnore {
				return nil
			}
			return err
		}
		return m.PipeFile(target, data)
	})
}

// Get copies a key or tree at src out of the store onto local disk at
// localDst.
func (m *Memory) Get(src, localDst string, opts core.TransferOptions) error {
	info, err := m.fs.Stat(m.abs(src))
	if err != nil {
		return err
	}
	if !info.IsDir() {
		data, err := m.CatFile(src)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(localDst), 0o755); err != nil {
			return err
		}
		return os.WriteFile(localDst, data, 0o666)
	}
	if !opts.Recursive {
		return core.PathErrorf("get", src, "is a directory (get requires Recursive)")
	}
	srcKey := key(m.abs(src))
	return m.Walk(src, opts.MaxDepth, func(dir string, dirs, files []string) error {
		rel := strings.TrimPrefix(strings.TrimPrefix(dir, srcKey), "/")
		target := filepath.Join(localDst, filepath.FromSlash(rel))
		if err := os.MkdirAll(target, 0o755); err != nil {
			return err
		}
		for _, f := range files {
			data, err := m.CatFile(path.Join(dir, f))
			if err == nil {
				err = os.WriteFile(filepath.Join(target, f), data, 0o666)
			}
			if err != nil {
				if opts.OnError == core.OnErrorIgnore {
					continue
				}
				return err
			}
		}
		return nil
	})
}

// InvalidateCache is a no-op; the store is its own source of truth.
func (m *Memory) InvalidateCache(string) {}

func (m *Memory) entryFromInfo(abs string, info fs.FileInfo) *core.Entry {
	t := core.EntryTypeFile
	if info.IsDir() {
		t = core.EntryTypeDirectory
	}
	return &core.Entry{
		Path:    key(abs),
		Size:    info.Size(),
		Type:    t,
		ModTime: info.ModTime(),
	}
}

var _ core.Backend = (*Memory)(nil)
