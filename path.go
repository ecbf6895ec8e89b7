package pathlibfs

import (
	"strings"
	"sync"

	"github.com/roy-ht/pathlibfs/core"
	"github.com/roy-ht/pathlibfs/internal/pathutil"
	_ "github.com/roy-ht/pathlibfs/local" // the default "file" protocol is always available
)

// PathLike is the capability to coerce a value into a URI-like string that
// New understands. *Path implements it, as can any application type that
// knows its own storage location.
type PathLike interface {
	// FSPath returns the canonical URI form, including any chain prefix.
	FSPath() string
}

// Path is an immutable value addressing a file or directory on one storage
// backend. Every path-algebra operation returns a new Path sharing the same
// backend handle; nothing mutates a Path in place.
//
// A Path is created by parsing a URI with New, or derived from an existing
// one via Join, Parent, Glob, Ls and friends.
type Path struct {
	backend  core.Backend
	protocol string
	chain    string
	path     string

	parentOnce sync.Once
	parentVal  *Path
}

// New parses a URI-like string into a Path. Supported forms:
//
//	/etc/hosts                       local, relative or absolute
//	file:///etc/hosts                local, fully qualified
//	s3://bucket/key.txt              object store (bucket is part of the path)
//	simplecache::s3://bucket/key     chained form; the chain prefix is carried
//	                                 through opaquely and ignored by equality
//
// The scheme is resolved through the backend registry; an unregistered
// scheme fails with ErrUnknownProtocol.
func New(urlpath string) (*Path, error) {
	return NewWithOptions(urlpath, core.Options{})
}

// NewWithOptions is New with explicit backend options, for endpoints and
// credentials that cannot come from the environment.
func NewWithOptions(urlpath string, opts core.Options) (*Path, error) {
	// Split off the chain prefix: everything before the last "::".
	chain := ""
	rest := urlpath
	if i := strings.LastIndex(urlpath, "::"); i >= 0 {
		chain = urlpath[:i]
		rest = urlpath[i+len("::"):]
	}

	backend, rpath, err := core.Resolve(rest, opts)
	if err != nil {
		return nil, err
	}

	protocol := selectProtocol(backend.Protocols(), rest)

	if protocol == "file" || protocol == "local" {
		// Recompute from the original text so a relative path stays
		// relative: strip everything up to and including the last "://".
		rpath = rest
		if j := strings.LastIndex(rest, "://"); j >= 0 {
			rpath = rest[j+len("://"):]
		}
	}

	p := &Path{
		backend:  backend,
		protocol: protocol,
		chain:    chain,
		path:     normalizeFor(protocol, rpath, backend.Sep()),
	}
	return p, nil
}

// NewLike parses anything carrying the PathLike capability, including
// another *Path (copy-construction: the canonical URI is re-parsed).
func NewLike(v PathLike) (*Path, error) {
	return New(v.FSPath())
}

// selectProtocol picks the scheme alias to report for a backend with
// several: the first alias whose "alias://" form literally appears in the
// input, falling back to the first declared alias.
func selectProtocol(aliases []string, urlpath string) string {
	for _, alias := range aliases {
		if strings.Contains(urlpath, alias+"://") {
			return alias
		}
	}
	return aliases[0]
}

// normalizeFor applies the per-protocol raw-path normalization rule:
// local paths collapse "." and ".." and redundant separators, object store
// keys lose a single leading separator, everything else is untouched.
func normalizeFor(protocol, p, sep string) string {
	switch protocol {
	case "file", "local":
		return pathutil.NormalizeLocal(p)
	case "s3", "s3a", "gs", "gcs", "memory":
		return pathutil.StripLeadingSep(p, sep)
	default:
		return p
	}
}

// clone derives a new Path on the same backend with a different raw path,
// re-applying the local normalization rule. The chain prefix is carried
// along unchanged.
func (p *Path) clone(path string) *Path {
	if p.IsLocal() {
		path = pathutil.NormalizeLocal(path)
	}
	return &Path{
		backend:  p.backend,
		protocol: p.protocol,
		chain:    p.chain,
		path:     path,
	}
}

// samePath reports lexical identity: same protocol, same raw path. Unlike
// Equal it never touches the filesystem.
func (p *Path) samePath(o *Path) bool {
	return p.protocol == o.protocol && p.path == o.path
}

// Protocol returns the resolved scheme identifier, e.g. "file", "s3", "gs".
func (p *Path) Protocol() string { return p.protocol }

// Chain returns the chain prefix preceding "::" in the original URI, or "".
func (p *Path) Chain() string { return p.chain }

// Sep returns the backend's path separator.
func (p *Path) Sep() string { return p.backend.Sep() }

// Backend exposes the underlying storage backend handle.
func (p *Path) Backend() core.Backend { return p.backend }

// IsLocal reports whether the path lives on the local filesystem.
func (p *Path) IsLocal() bool {
	return p.protocol == "file" || p.protocol == "local"
}

// Path returns the backend-relative raw path, without chain prefix or
// scheme. For the local protocol it is normalized; for object stores it is
// the bucket/key form without a leading separator.
func (p *Path) Path() string { return p.path }

// FullPath returns the fully-qualified form, e.g. "file:///etc/hosts" or
// "s3://bucket/key.txt".
func (p *Path) FullPath() string {
	return p.backend.UnstripProtocol(p.path)
}

// URLPath returns the full form including the chain prefix, e.g.
// "simplecache::s3://bucket/key.txt". It round-trips through New.
func (p *Path) URLPath() string {
	if p.chain != "" {
		return p.chain + "::" + p.FullPath()
	}
	return p.FullPath()
}

// FSPath implements PathLike.
func (p *Path) FSPath() string { return p.URLPath() }

// String returns the fully-qualified form.
func (p *Path) String() string { return p.FullPath() }
