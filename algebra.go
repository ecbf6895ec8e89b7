package pathlibfs

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/roy-ht/pathlibfs/core"
	"github.com/roy-ht/pathlibfs/internal/pathutil"
)

// Join appends segments to the path, os.path.join style: a segment with a
// leading separator replaces everything accumulated so far, anything else is
// appended with a single separator in between. The leading-separator state
// of the receiver is preserved on the result. "." and ".." are only
// collapsed on local paths.
func (p *Path) Join(segments ...string) *Path {
	return p.clone(pathutil.JoinFold(p.path, p.Sep(), segments...))
}

// Parent returns the logical parent of the path. The root of a protocol is
// its own parent, which makes Parents finite. The result is computed once
// per value and cached; Parent is pure.
func (p *Path) Parent() *Path {
	p.parentOnce.Do(func() {
		p.parentVal = p.computeParent()
	})
	return p.parentVal
}

func (p *Path) computeParent() *Path {
	sep := p.Sep()
	trimmed := strings.TrimRight(p.path, sep)
	if trimmed == "" {
		// "/" locally, "" on a flat namespace: already at the root.
		return p
	}
	i := strings.LastIndex(trimmed, sep)
	if i < 0 {
		// Single component. A local relative path steps up to ".";
		// a flat namespace cannot go above its first key segment.
		if p.IsLocal() {
			return p.clone("")
		}
		return p
	}
	head := trimmed[:i]
	if head == "" {
		// "/etc" locally parents to "/"; a flat "/x" has nothing above it.
		if p.IsLocal() {
			return p.clone(sep)
		}
		return p
	}
	return p.clone(head)
}

// HasParent reports whether the path has a parent distinct from itself.
func (p *Path) HasParent() bool {
	return !p.Parent().samePath(p)
}

// Parents returns the ancestors from nearest to furthest, ending at the
// protocol root (the fixed point of Parent).
func (p *Path) Parents() []*Path {
	var out []*Path
	cur := p
	for {
		par := cur.Parent()
		if par.samePath(cur) {
			return out
		}
		out = append(out, par)
		cur = par
	}
}

// Name returns the final path component, such as a file name. The root has
// no name.
func (p *Path) Name() string {
	if p.IsLocal() {
		return pathutil.LocalName(p.path)
	}
	return pathutil.Name(p.path, p.Sep())
}

// Suffix returns the file extension of the final component, including the
// dot, or "" if there is none.
func (p *Path) Suffix() string {
	return pathutil.Suffix(p.Name())
}

// Suffixes returns every extension of the final component in order, e.g.
// [".tar", ".gz"].
func (p *Path) Suffixes() []string {
	return pathutil.Suffixes(p.Name())
}

// Stem returns the final component without its last suffix.
func (p *Path) Stem() string {
	return pathutil.Stem(p.Name())
}

// Parts splits the path into its components. Local paths are split
// hierarchically with the root as its own leading part; flat remote paths
// are split on the separator with interior empty segments preserved.
func (p *Path) Parts() []string {
	if p.IsLocal() {
		return pathutil.LocalParts(p.path)
	}
	return pathutil.FlatParts(p.path, p.Sep())
}

// Drive returns the drive prefix of a local path, "" on this platform and
// on every remote protocol.
func (p *Path) Drive() string { return "" }

// Root returns the root of a local path ("/" when absolute), "" otherwise.
func (p *Path) Root() string {
	if p.IsLocal() && strings.HasPrefix(p.path, p.Sep()) {
		return p.Sep()
	}
	return ""
}

// Anchor returns Drive joined with Root.
func (p *Path) Anchor() string {
	return p.Drive() + p.Root()
}

// IsAbsolute reports whether a local path is absolute. Remote paths are
// always absolute in their namespace.
func (p *Path) IsAbsolute() bool {
	if p.IsLocal() {
		return strings.HasPrefix(p.path, p.Sep())
	}
	return true
}

// IsReserved reports whether the path is reserved by the system. Always
// false on this platform and on remote protocols.
func (p *Path) IsReserved() bool { return false }

// Match reports whether the path matches a glob pattern with pathlib
// semantics: relative patterns match from the right, absolute patterns must
// cover the whole path. On flat remote paths the path is treated as
// absolute, and a non-slash separator is rewritten so the same matcher
// applies.
func (p *Path) Match(pattern string) (bool, error) {
	if p.IsLocal() {
		return pathutil.Match(p.path, pattern)
	}
	return pathutil.MatchFlat(p.path, pattern, p.Sep())
}

// WithName replaces the final path component. A path without a name (the
// root) fails with ErrEmptyName.
func (p *Path) WithName(name string) (*Path, error) {
	cur := p.Name()
	if cur == "" {
		return nil, core.PathError("with_name", p.path, core.ErrEmptyName)
	}
	if name == "" || strings.Contains(name, p.Sep()) {
		return nil, core.PathErrorf("with_name", p.path, "invalid name %q", name)
	}
	return p.clone(p.path[:len(p.path)-len(cur)] + name), nil
}

// WithSuffix replaces the suffix of the final component. An empty suffix
// removes it; a non-empty one must start with a dot. A path without a name
// fails with ErrEmptyName.
func (p *Path) WithSuffix(suffix string) (*Path, error) {
	if p.Name() == "" {
		return nil, core.PathError("with_suffix", p.path, core.ErrEmptyName)
	}
	if suffix != "" && (!strings.HasPrefix(suffix, ".") || suffix == "." || strings.Contains(suffix, p.Sep())) {
		return nil, core.PathErrorf("with_suffix", p.path, "invalid suffix %q", suffix)
	}
	cur := p.Suffix()
	return p.clone(p.path[:len(p.path)-len(cur)] + suffix), nil
}

// RelativeTo returns the path relative to other. Both paths must share a
// protocol (ErrProtocolMismatch). Locally, other must be a lexical
// whole-component prefix; on remote protocols the fully-qualified form of
// other plus a separator must literally prefix the receiver's. Anything
// else fails with ErrNotASubpath.
func (p *Path) RelativeTo(other *Path) (string, error) {
	if p.protocol != other.protocol {
		return "", core.PathError("relative_to", p.path,
			fmt.Errorf("%w: %s vs %s", core.ErrProtocolMismatch, p.protocol, other.protocol))
	}
	if p.IsLocal() {
		rel, ok := pathutil.RelativeLocal(p.path, other.path)
		if !ok {
			return "", core.PathError("relative_to", p.path,
				fmt.Errorf("%w of %s", core.ErrNotASubpath, other.path))
		}
		return rel, nil
	}
	full := p.FullPath()
	prefix := other.FullPath()
	if !strings.HasSuffix(prefix, p.Sep()) {
		prefix += p.Sep()
	}
	if !strings.HasPrefix(full, prefix) {
		return "", core.PathError("relative_to", p.path,
			fmt.Errorf("%w of %s", core.ErrNotASubpath, other.path))
	}
	return full[len(prefix):], nil
}

// Equal reports value equality. Two local paths compare by their resolved
// (symlink-free, absolute) forms; any other pair compares by protocol and
// raw path. The chain prefix never participates.
func (p *Path) Equal(other *Path) bool {
	if other == nil {
		return false
	}
	if p.IsLocal() && other.IsLocal() {
		return resolveLocal(p.path) == resolveLocal(other.path)
	}
	return p.samePath(other)
}

// SameFile reports whether other addresses the same file as the receiver.
func (p *Path) SameFile(other *Path) bool {
	return p.Equal(other)
}

// Resolve returns the canonical absolute form of a local path, with
// symlinks resolved. Remote paths fail with ErrMustBeLocal.
func (p *Path) Resolve() (*Path, error) {
	if !p.IsLocal() {
		return nil, core.PathError("resolve", p.path, core.ErrMustBeLocal)
	}
	return p.clone(resolveLocal(p.path)), nil
}

// resolveLocal canonicalizes best-effort: absolutize, then resolve
// symlinks when the path exists. A non-existent path keeps its lexical
// absolute form.
func resolveLocal(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
