package pathlibfs

import "github.com/roy-ht/pathlibfs/core"

// The error taxonomy lives in core so backends and the Path type share one
// set of sentinels; the common ones are re-exported here for callers that
// only import the root package. Match them with errors.Is: operations wrap
// sentinels in *fs.PathError carrying the operation and path.
var (
	// ErrUnknownProtocol: the URI scheme has no registered backend.
	ErrUnknownProtocol = core.ErrUnknownProtocol

	// ErrProtocolMismatch: both sides of the operation must share a protocol.
	ErrProtocolMismatch = core.ErrProtocolMismatch

	// ErrNotASubpath: the RelativeTo target does not prefix the path.
	ErrNotASubpath = core.ErrNotASubpath

	// ErrEmptyName: WithName or WithSuffix on a path without a name.
	ErrEmptyName = core.ErrEmptyName

	// ErrMustBeLocal: a local-only operation was invoked on a remote path.
	ErrMustBeLocal = core.ErrMustBeLocal

	// ErrMustBeRemote: Put/Get on a local receiver.
	ErrMustBeRemote = core.ErrMustBeRemote

	// ErrMustBeLocalTarget: the peer of a directional transfer is remote.
	ErrMustBeLocalTarget = core.ErrMustBeLocalTarget

	// ErrUnsupported: the backend cannot perform the operation.
	ErrUnsupported = core.ErrUnsupported

	// ErrExist: the target already exists (Touch without existOK).
	ErrExist = core.ErrExist

	// ErrNotExist: the target does not exist.
	ErrNotExist = core.ErrNotExist
)
