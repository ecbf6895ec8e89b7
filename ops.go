package pathlibfs

import (
	"time"

	"github.com/roy-ht/pathlibfs/core"
)

// Exists reports whether the path exists on its backend.
func (p *Path) Exists() (bool, error) {
	return p.backend.Exists(p.path)
}

// Info returns the backend's metadata entry for the path.
func (p *Path) Info() (*core.Entry, error) {
	return p.backend.Info(p.path)
}

// IsDir reports whether the path is an existing directory.
func (p *Path) IsDir() bool {
	return p.backend.IsDir(p.path)
}

// IsFile reports whether the path is an existing regular file.
func (p *Path) IsFile() bool {
	return p.backend.IsFile(p.path)
}

// Size returns the byte size of the file.
func (p *Path) Size() (int64, error) {
	return p.backend.Size(p.path)
}

// Checksum returns the backend-specific content checksum.
func (p *Path) Checksum() (string, error) {
	return p.backend.Checksum(p.path)
}

// UKey returns a token that changes whenever the file content changes.
func (p *Path) UKey() (string, error) {
	return p.backend.UKey(p.path)
}

// Modified returns the last-modification time.
func (p *Path) Modified() (time.Time, error) {
	return p.backend.Modified(p.path)
}

// Created returns the creation time, if the backend records one.
func (p *Path) Created() (time.Time, error) {
	return p.backend.Created(p.path)
}

// Ls lists the direct children as derived Paths. The listing never includes
// the path itself (an object store listing a file key reports the key).
func (p *Path) Ls() ([]*Path, error) {
	entries, err := p.backend.Ls(p.path)
	if err != nil {
		return nil, err
	}
	out := make([]*Path, 0, len(entries))
	for _, e := range entries {
		child := p.clone(e.Path)
		if child.Equal(p) {
			continue
		}
		out = append(out, child)
	}
	return out, nil
}

// Iterdir iterates over the direct children, calling fn per child. It is Ls
// with early termination: a non-nil error from fn stops the iteration and
// is returned.
func (p *Path) Iterdir(fn func(*Path) error) error {
	children, err := p.Ls()
	if err != nil {
		return err
	}
	for _, c := range children {
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

// Glob expands pattern relative to the path and returns the matches as
// derived Paths.
func (p *Path) Glob(pattern string) ([]*Path, error) {
	matches, err := p.backend.Glob(p.Join(pattern).path)
	if err != nil {
		return nil, err
	}
	return p.cloneAll(matches), nil
}

// RGlob is Glob with an implicit "**/" in front of the pattern, matching at
// any depth below the path.
func (p *Path) RGlob(pattern string) ([]*Path, error) {
	return p.Join("**").Glob(pattern)
}

// Find returns the files under the path, recursively, as derived Paths.
func (p *Path) Find(opts core.FindOptions) ([]*Path, error) {
	results, err := p.backend.Find(p.path, opts)
	if err != nil {
		return nil, err
	}
	return p.cloneAll(results), nil
}

// ExpandPath resolves the path, possibly containing wildcards, into the
// concrete paths it covers.
func (p *Path) ExpandPath(opts core.ExpandOptions) ([]*Path, error) {
	results, err := p.backend.ExpandPath(p.path, opts)
	if err != nil {
		return nil, err
	}
	return p.cloneAll(results), nil
}

// WalkFunc is called by Walk once per directory with the directory as a
// derived Path and the names of its subdirectories and files.
type WalkFunc func(dir *Path, dirs, files []string) error

// Walk traverses the tree under the path top-down. maxDepth limits descent;
// zero means unlimited.
func (p *Path) Walk(maxDepth int, fn WalkFunc) error {
	return p.backend.Walk(p.path, maxDepth, func(dir string, dirs, files []string) error {
		return fn(p.clone(dir), dirs, files)
	})
}

// Du returns per-file sizes under the path. maxDepth limits descent; zero
// means unlimited.
func (p *Path) Du(maxDepth int) (map[string]int64, error) {
	return p.backend.Du(p.path, maxDepth)
}

// DuTotal returns the total size of everything under the path.
func (p *Path) DuTotal(maxDepth int) (int64, error) {
	sizes, err := p.Du(maxDepth)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, s := range sizes {
		total += s
	}
	return total, nil
}

// Open opens the file with os.O_* flags. Flag support varies by backend.
func (p *Path) Open(flag int) (core.File, error) {
	return p.backend.Open(p.path, flag)
}

// ReadBytes reads the whole file content.
func (p *Path) ReadBytes() ([]byte, error) {
	return p.backend.CatFile(p.path)
}

// WriteBytes replaces the file content with data.
func (p *Path) WriteBytes(data []byte) error {
	return p.backend.PipeFile(p.path, data)
}

// ReadText reads the whole file content as a string.
func (p *Path) ReadText() (string, error) {
	data, err := p.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteText replaces the file content with text.
func (p *Path) WriteText(text string) error {
	return p.WriteBytes([]byte(text))
}

// ReadBlock reads length bytes starting at offset. A negative length reads
// to the end.
func (p *Path) ReadBlock(offset, length int64) ([]byte, error) {
	return p.backend.ReadBlock(p.path, offset, length)
}

// Head reads the first n bytes of the file.
func (p *Path) Head(n int64) ([]byte, error) {
	return p.backend.Head(p.path, n)
}

// Tail reads the last n bytes of the file.
func (p *Path) Tail(n int64) ([]byte, error) {
	return p.backend.Tail(p.path, n)
}

// Touch creates an empty file, or updates the modification time of an
// existing one. Without existOK an existing path fails with ErrExist; with
// truncate existing content is discarded.
func (p *Path) Touch(existOK, truncate bool) error {
	if !existOK {
		ok, err := p.Exists()
		if err != nil {
			return err
		}
		if ok {
			return core.PathError("touch", p.path, core.ErrExist)
		}
	}
	return p.backend.Touch(p.path, truncate)
}

// Mkdir creates the directory. With parents set, missing ancestors are
// created too; with existOK an existing directory is not an error.
func (p *Path) Mkdir(parents, existOK bool) error {
	if existOK && parents {
		return p.backend.Makedirs(p.path, true)
	}
	return p.backend.Mkdir(p.path, parents)
}

// Makedirs creates the directory and all missing ancestors.
func (p *Path) Makedirs(existOK bool) error {
	return p.backend.Makedirs(p.path, existOK)
}

// Rm removes the path. Directories require opts.Recursive.
func (p *Path) Rm(opts core.RmOptions) error {
	return p.backend.Rm(p.path, opts)
}

// RmFile removes the single file at the path.
func (p *Path) RmFile() error {
	return p.backend.RmFile(p.path)
}

// Rmdir removes the directory, which must be empty. A non-empty directory
// is an error, never a recursive delete.
func (p *Path) Rmdir() error {
	return p.backend.Rmdir(p.path)
}

// Sign returns a presigned URL granting access for the given duration, for
// backends with the Signer capability; others fail with ErrUnsupported.
func (p *Path) Sign(expiresIn time.Duration) (string, error) {
	signer, ok := p.backend.(core.Signer)
	if !ok {
		return "", core.PathError("sign", p.path, core.ErrUnsupported)
	}
	return signer.Sign(p.path, expiresIn)
}

// InvalidateCache drops any backend cache entries for the path.
func (p *Path) InvalidateCache() {
	p.backend.InvalidateCache(p.path)
}

// ClearInstanceCache drops every cached backend instance process-wide.
func (p *Path) ClearInstanceCache() {
	core.ClearInstanceCache()
}

func (p *Path) cloneAll(paths []string) []*Path {
	out := make([]*Path, len(paths))
	for i, s := range paths {
		out[i] = p.clone(s)
	}
	return out
}
