package pathlibfs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/roy-ht/pathlibfs/core"
)

// Copy copies the path to dst, choosing the transfer strategy from the
// backend pair:
//
//   - same backend: one native backend copy
//   - local to remote: the destination backend's upload primitive
//   - remote to local: the source backend's download primitive
//   - remote to a different remote: staged through a temporary local
//     directory that is removed again on every exit path
//
// Backends are compared by instance, not by scheme string, so alias
// spellings of one backend ("file:///a" vs "local:///b") still take the
// native path. opts is handed to whichever backend primitive runs,
// verbatim.
func (p *Path) Copy(dst *Path, opts core.TransferOptions) error {
	switch {
	case !p.IsLocal() && dst.IsLocal():
		return p.Get(dst, opts)
	case p.IsLocal() && !dst.IsLocal():
		return dst.Put(p, opts)
	case p.backend == dst.backend:
		return p.backend.Copy(p.path, dst.path, opts)
	default:
		return p.stagedCopy(dst, opts)
	}
}

// stagedCopy moves bytes between two different remote protocols through a
// scoped local staging directory. Both legs receive opts unchanged.
func (p *Path) stagedCopy(dst *Path, opts core.TransferOptions) error {
	tmp, err := os.MkdirTemp("", "pathlibfs-stage-")
	if err != nil {
		return core.PathError("copy", p.path, err)
	}
	defer func() { _ = os.RemoveAll(tmp) }()

	staged := filepath.Join(tmp, "staged")
	if err := p.backend.Get(p.path, staged, opts); err != nil {
		return err
	}
	return dst.backend.Put(staged, dst.path, opts)
}

// Move transfers the path to dst and removes the source. A same-backend
// move is one native backend call; across backends it is Copy followed by
// removing the source.
func (p *Path) Move(dst *Path, opts core.TransferOptions) error {
	if p.backend == dst.backend {
		return p.backend.Mv(p.path, dst.path, opts)
	}
	if err := p.Copy(dst, opts); err != nil {
		return err
	}
	return p.Rm(core.RmOptions{Recursive: opts.Recursive, MaxDepth: opts.MaxDepth})
}

// Rename is the strictly same-backend native move. A destination on a
// different backend fails with ErrProtocolMismatch; use Move for
// cross-backend transfers.
func (p *Path) Rename(dst *Path, opts core.TransferOptions) error {
	if p.backend != dst.backend {
		return core.PathError("rename", p.path,
			fmt.Errorf("%w: %s vs %s", core.ErrProtocolMismatch, p.protocol, dst.protocol))
	}
	return p.backend.Mv(p.path, dst.path, opts)
}

// Put uploads src, which must be a local path, into the receiver, which
// must be remote. A local receiver fails with ErrMustBeRemote, a non-local
// source with ErrMustBeLocalTarget; the strictness keeps an explicitly
// directional transfer from silently degrading into a generic copy.
func (p *Path) Put(src *Path, opts core.TransferOptions) error {
	if p.IsLocal() {
		return core.PathError("put", p.path, core.ErrMustBeRemote)
	}
	if !src.IsLocal() {
		return core.PathError("put", src.path, core.ErrMustBeLocalTarget)
	}
	return p.backend.Put(src.path, p.path, opts)
}

// Get downloads the receiver, which must be remote, into dst, which must be
// a local path. The validation mirrors Put.
func (p *Path) Get(dst *Path, opts core.TransferOptions) error {
	if p.IsLocal() {
		return core.PathError("get", p.path, core.ErrMustBeRemote)
	}
	if !dst.IsLocal() {
		return core.PathError("get", dst.path, core.ErrMustBeLocalTarget)
	}
	return p.backend.Get(p.path, dst.path, opts)
}
