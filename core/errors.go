package core

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrNotExist is returned when a file or directory does not exist.
	// Re-exported from io/fs for convenience.
	ErrNotExist = fs.ErrNotExist

	// ErrExist is returned when a file or directory already exists.
	// Re-exported from io/fs for convenience.
	ErrExist = fs.ErrExist

	// ErrPermission is returned when permission is denied.
	// Re-exported from io/fs for convenience.
	ErrPermission = fs.ErrPermission

	// ErrUnsupported is returned when an operation is not supported by the
	// backend. For example, symlink operations on object stores.
	ErrUnsupported = errors.New("operation not supported")

	// ErrUnknownProtocol is returned by Resolve when no backend is registered
	// for the URI scheme.
	ErrUnknownProtocol = errors.New("unknown protocol")

	// ErrProtocolMismatch is returned when an operation requires both paths
	// to share a protocol and they do not.
	ErrProtocolMismatch = errors.New("protocol mismatch")

	// ErrNotASubpath is returned by RelativeTo when the target is not a
	// prefix of the path.
	ErrNotASubpath = errors.New("not a subpath")

	// ErrEmptyName is returned by WithName when the path has no final
	// component to replace.
	ErrEmptyName = errors.New("path has an empty name")

	// ErrMustBeLocal is returned when a local-filesystem-only operation is
	// invoked on a remote path.
	ErrMustBeLocal = errors.New("path must be local")

	// ErrMustBeRemote is returned by Put and Get when the receiver is a
	// local path; directional transfers require a remote endpoint.
	ErrMustBeRemote = errors.New("path must be remote")

	// ErrMustBeLocalTarget is returned by Put and Get when the opposite side
	// of a directional transfer is not a local path.
	ErrMustBeLocalTarget = errors.New("transfer peer must be local")
)

// PathError wraps an error in a fs.PathError for the given operation and path.
// If the error is nil, returns nil.
func PathError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &fs.PathError{Op: op, Path: path, Err: err}
}

// PathErrorf creates a fs.PathError with a formatted error message.
func PathErrorf(op, path, format string, args ...any) error {
	return &fs.PathError{Op: op, Path: path, Err: fmt.Errorf(format, args...)}
}
