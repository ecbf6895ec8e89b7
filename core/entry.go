package core

import (
	"path"
	"time"
)

// EntryType classifies a listing entry.
type EntryType int

const (
	// EntryTypeFile is a regular file or object.
	EntryTypeFile EntryType = iota
	// EntryTypeDirectory is a real or virtual directory.
	EntryTypeDirectory
	// EntryTypeOther covers symlinks, devices and anything else the backend
	// can enumerate but the abstraction does not model.
	EntryTypeOther
)

// String returns a string representation of the EntryType.
func (t EntryType) String() string {
	switch t {
	case EntryTypeFile:
		return "file"
	case EntryTypeDirectory:
		return "directory"
	default:
		return "other"
	}
}

// Entry describes a single file or directory as reported by a backend.
// Path is backend-relative, in the same form the backend accepts as input
// (bucket/key for object stores, absolute path for the local filesystem).
type Entry struct {
	Path    string
	Size    int64
	Type    EntryType
	ModTime time.Time
}

// Name returns the final component of the entry path.
func (e *Entry) Name() string {
	return path.Base(e.Path)
}

// IsDir reports whether the entry is a directory.
func (e *Entry) IsDir() bool {
	return e.Type == EntryTypeDirectory
}
