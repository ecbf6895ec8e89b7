package core

import (
	"io"
	"io/fs"
	"time"
)

// WalkFunc is called by Backend.Walk once per visited directory with the
// directory path and the names (not paths) of its subdirectories and files.
// Returning fs.SkipDir skips descending into the directory; any other
// non-nil error aborts the walk.
type WalkFunc func(dir string, dirs, files []string) error

// FindOptions controls Backend.Find.
type FindOptions struct {
	// MaxDepth limits recursion depth. Zero means unlimited.
	MaxDepth int

	// WithDirs includes directories in the result set.
	WithDirs bool
}

// ExpandOptions controls Backend.ExpandPath.
type ExpandOptions struct {
	// Recursive expands directories into their full content.
	Recursive bool

	// MaxDepth limits recursion depth when Recursive is set. Zero means
	// unlimited.
	MaxDepth int
}

// RmOptions controls Backend.Rm.
type RmOptions struct {
	// Recursive removes directories and their content.
	Recursive bool

	// MaxDepth limits recursion depth when Recursive is set. Zero means
	// unlimited.
	MaxDepth int
}

// OnError selects how bulk operations treat per-entry failures.
type OnError int

const (
	// OnErrorRaise stops at the first failure and returns it.
	OnErrorRaise OnError = iota
	// OnErrorIgnore skips failing entries and keeps going.
	OnErrorIgnore
)

// TransferOptions is passed through verbatim to the backend copy, move,
// upload and download primitives. The dispatcher in the root package never
// interprets these fields itself.
type TransferOptions struct {
	// Recursive transfers directories and their content.
	Recursive bool

	// MaxDepth limits recursion depth when Recursive is set. Zero means
	// unlimited.
	MaxDepth int

	// OnError selects the per-entry failure policy for bulk transfers.
	OnError OnError
}

// File is an open handle returned by Backend.Open. It extends fs.File with
// writing; whether reads, writes or both work depends on the open flags.
//
// Optional capabilities (use type assertions):
//
//   - io.Seeker
//   - io.ReaderAt
type File interface {
	fs.File
	io.Writer

	// Name returns the backend path the file was opened with.
	Name() string
}

// Backend is the primitive storage driver for one protocol family. All paths
// are backend-relative strings in the backend's own namespace; the Path type
// in the root package owns every URI and path-algebra concern.
//
// Implementations translate driver-native failures to stdlib sentinels and
// wrap them in *fs.PathError (see PathError).
type Backend interface {
	// Protocols returns the scheme aliases this backend serves. The first
	// alias is canonical and is used for instance-cache keying and for
	// UnstripProtocol.
	Protocols() []string

	// Sep returns the path separator, "/" for every built-in backend.
	Sep() string

	// UnstripProtocol reconstructs a fully-qualified URI from a bare path.
	UnstripProtocol(path string) string

	// Exists reports whether the path exists.
	Exists(path string) (bool, error)

	// Info returns the entry describing path.
	Info(path string) (*Entry, error)

	// IsDir reports whether path is an existing directory. Lookup failures
	// report false.
	IsDir(path string) bool

	// IsFile reports whether path is an existing regular file. Lookup
	// failures report false.
	IsFile(path string) bool

	// Size returns the byte size of the file at path.
	Size(path string) (int64, error)

	// Checksum returns a checksum of the file content. The algorithm is
	// backend-specific (ETag for object stores, content hash locally) and is
	// only comparable within one backend.
	Checksum(path string) (string, error)

	// UKey returns a token that changes whenever the file content changes.
	UKey(path string) (string, error)

	// Modified returns the last-modification time of path.
	Modified(path string) (time.Time, error)

	// Created returns the creation time of path. Backends that do not record
	// it return ErrUnsupported.
	Created(path string) (time.Time, error)

	// Ls lists the direct children of path, or the entry itself if path is a
	// file.
	Ls(path string) ([]*Entry, error)

	// Find returns the files under path, recursively.
	Find(path string, opts FindOptions) ([]string, error)

	// Glob expands a pattern with *, ?, [...] and ** wildcards into the
	// matching paths.
	Glob(pattern string) ([]string, error)

	// Walk traverses the tree rooted at path top-down, calling fn per
	// directory. maxDepth limits descent; zero means unlimited.
	Walk(path string, maxDepth int, fn WalkFunc) error

	// ExpandPath resolves a path, possibly containing wildcards, into the
	// concrete paths it covers.
	ExpandPath(path string, opts ExpandOptions) ([]string, error)

	// Du returns per-file sizes under path. maxDepth limits descent; zero
	// means unlimited.
	Du(path string, maxDepth int) (map[string]int64, error)

	// Open opens path with os.O_* flags. Flag support varies by backend;
	// object stores reject O_RDWR and O_APPEND with ErrUnsupported.
	Open(path string, flag int) (File, error)

	// CatFile reads the whole file at path.
	CatFile(path string) ([]byte, error)

	// PipeFile writes data as the complete new content of path.
	PipeFile(path string, data []byte) error

	// ReadBlock reads length bytes starting at offset. A negative length
	// reads to the end.
	ReadBlock(path string, offset, length int64) ([]byte, error)

	// Head reads the first n bytes of path.
	Head(path string, n int64) ([]byte, error)

	// Tail reads the last n bytes of path.
	Tail(path string, n int64) ([]byte, error)

	// Touch creates an empty file at path, or updates its modification time
	// if it exists. With truncate set, existing content is discarded.
	Touch(path string, truncate bool) error

	// Mkdir creates the directory at path. With createParents set, missing
	// ancestors are created too. Object stores with virtual directories
	// treat this as a no-op.
	Mkdir(path string, createParents bool) error

	// Makedirs creates path and all missing ancestors. Without existOK an
	// existing directory is an ErrExist failure.
	Makedirs(path string, existOK bool) error

	// Rm removes path. Directories require opts.Recursive.
	Rm(path string, opts RmOptions) error

	// RmFile removes the single file at path.
	RmFile(path string) error

	// Rmdir removes the empty directory at path. A non-empty directory is an
	// error, never a recursive delete.
	Rmdir(path string) error

	// Mv moves src to dst within this backend.
	Mv(src, dst string, opts TransferOptions) error

	// Copy copies src to dst within this backend.
	Copy(src, dst string, opts TransferOptions) error

	// Put uploads the local-disk file or tree at localSrc to dst in this
	// backend.
	Put(localSrc, dst string, opts TransferOptions) error

	// Get downloads src in this backend to the local-disk path localDst.
	Get(src, localDst string, opts TransferOptions) error

	// InvalidateCache drops any listing/metadata cache the backend keeps for
	// path and its descendants. Backends without caches do nothing.
	InvalidateCache(path string)
}

// Signer is an optional capability for backends that can produce presigned
// URLs granting temporary access to a path.
//
// Use a type assertion to check for it:
//
//	if s, ok := backend.(Signer); ok {
//	    url, err := s.Sign(path, 15*time.Minute)
//	}
type Signer interface {
	// Sign returns a URL granting access to path for the given duration.
	Sign(path string, expiresIn time.Duration) (string, error)
}
