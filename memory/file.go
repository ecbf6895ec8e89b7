package memory

import (
	"io/fs"

	"github.com/go-git/go-billy/v5"

	"github.com/roy-ht/pathlibfs/core"
)

// file wraps a billy.File to satisfy core.File.
type file struct {
	f       billy.File
	backend *Memory
	path    string
}

func (f *file) Name() string { return f.f.Name() }

func (f *file) Read(p []byte) (int, error) { return f.f.Read(p) }

func (f *file) Write(p []byte) (int, error) { return f.f.Write(p) }

func (f *file) Seek(offset int64, whence int) (int64, error) { return f.f.Seek(offset, whence) }

func (f *file) Close() error { return f.f.Close() }

func (f *file) Stat() (fs.FileInfo, error) { return f.backend.fs.Stat(f.path) }

var _ core.File = (*file)(nil)
