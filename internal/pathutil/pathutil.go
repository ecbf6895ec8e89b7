// Package pathutil provides the pure path-string computations behind the
// pathlibfs path algebra: join folding, name/suffix decomposition, pattern
// matching and part splitting for both hierarchical local paths and flat
// object-store keys.
package pathutil

import (
	"path"
	"path/filepath"
	"strings"
)

// slashToken temporarily stands in for literal slashes while a non-slash
// separator is rewritten to "/" so the stdlib matcher can be reused.
const slashToken = "\x00slash\x00"

// NormalizeLocal collapses ".", ".." and redundant separators the way the
// local filesystem path algebra expects. The empty path normalizes to ".".
func NormalizeLocal(p string) string {
	return filepath.Clean(p)
}

// StripLeadingSep removes a single leading separator. Object store backends
// encode keys without one.
func StripLeadingSep(p, sep string) string {
	return strings.TrimPrefix(p, sep)
}

// JoinFold folds segments onto base the way os.path.join does: a segment
// with a leading separator replaces the accumulated path, anything else is
// appended with exactly one separator in between. The leading-separator
// state of base is preserved on the result, so joining cannot silently turn
// a bucket-rooted key into a separator-rooted one or vice versa.
func JoinFold(base, sep string, segments ...string) string {
	p := base
	for _, seg := range segments {
		switch {
		case strings.HasPrefix(seg, sep):
			p = seg
		case p == "" || strings.HasSuffix(p, sep):
			p += seg
		default:
			p += sep + seg
		}
	}
	if strings.HasPrefix(base, sep) && !strings.HasPrefix(p, sep) {
		p = sep + p
	} else if !strings.HasPrefix(base, sep) && strings.HasPrefix(p, sep) {
		p = strings.TrimLeft(p, sep)
	}
	return p
}

// Name returns the final component of a flat path: the substring after the
// last separator.
func Name(p, sep string) string {
	if i := strings.LastIndex(p, sep); i >= 0 {
		return p[i+len(sep):]
	}
	return p
}

// LocalName returns the final component of a hierarchical path. The root
// and the empty-ish paths have no name.
func LocalName(p string) string {
	p = NormalizeLocal(p)
	if p == "/" || p == "." {
		return ""
	}
	return path.Base(p)
}

// Suffix returns the file extension of name including the dot, or "" when
// name has none. A leading dot alone (".bashrc") is not an extension.
func Suffix(name string) string {
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return name[i:]
}

// Suffixes returns every extension of name in order, e.g. [".tar", ".gz"]
// for "a.tar.gz". The leading dot group of a hidden file is not an
// extension.
func Suffixes(name string) []string {
	if strings.HasSuffix(name, ".") {
		return nil
	}
	trimmed := strings.TrimLeft(name, ".")
	groups := strings.Split(trimmed, ".")
	if len(groups) <= 1 {
		return nil
	}
	out := make([]string, 0, len(groups)-1)
	for _, g := range groups[1:] {
		out = append(out, "."+g)
	}
	return out
}

// Stem returns name with its final suffix removed.
func Stem(name string) string {
	return strings.TrimSuffix(name, Suffix(name))
}

// LocalParts splits a hierarchical path into pathlib-style parts: the root
// is its own leading part, "." and "" have none.
func LocalParts(p string) []string {
	p = NormalizeLocal(p)
	if p == "." {
		return nil
	}
	if p == "/" {
		return []string{"/"}
	}
	var parts []string
	if strings.HasPrefix(p, "/") {
		parts = append(parts, "/")
		p = p[1:]
	}
	return append(parts, strings.Split(p, "/")...)
}

// FlatParts splits a flat path on sep, preserving interior empty segments
// ("a//b" keeps the empty middle). A leading separator contributes no part.
func FlatParts(p, sep string) []string {
	if p == "" {
		return nil
	}
	parts := strings.Split(p, sep)
	if parts[0] == "" {
		parts = parts[1:]
	}
	return parts
}

// Match reports whether p matches the glob pattern with pathlib semantics:
// a relative pattern matches from the right against the trailing components
// of p, an absolute pattern must cover the whole path. Matching is
// per-component with *, ? and [...] wildcards; a wildcard never crosses a
// separator.
func Match(p, pattern string) (bool, error) {
	patAbs := strings.HasPrefix(pattern, "/")
	pathParts := matchParts(p)
	patParts := matchParts(pattern)
	if len(patParts) == 0 {
		return false, nil
	}
	if patAbs {
		if len(pathParts) != len(patParts) {
			return false, nil
		}
	} else if len(patParts) > len(pathParts) {
		return false, nil
	}
	// Right-anchored comparison.
	pathParts = pathParts[len(pathParts)-len(patParts):]
	for i, pat := range patParts {
		ok, err := path.Match(pat, pathParts[i])
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchParts(p string) []string {
	var parts []string
	if strings.HasPrefix(p, "/") {
		parts = append(parts, "/")
	}
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return parts
}

// MatchFlat matches a flat path against a pattern, rewriting a non-slash
// separator to "/" first (literal slashes are protected) and forcing the
// path absolute, since flat remote paths are semantically always absolute.
func MatchFlat(p, pattern, sep string) (bool, error) {
	if sep != "/" {
		p = strings.ReplaceAll(p, "/", slashToken)
		p = strings.ReplaceAll(p, sep, "/")
		pattern = strings.ReplaceAll(pattern, "/", slashToken)
		pattern = strings.ReplaceAll(pattern, sep, "/")
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return Match(p, pattern)
}

// RelativeLocal computes the path of p relative to base with pathlib
// semantics: base must be a lexical prefix of p in whole components. The
// second return value reports whether it was.
func RelativeLocal(p, base string) (string, bool) {
	pParts := LocalParts(p)
	bParts := LocalParts(base)
	if len(bParts) > len(pParts) {
		return "", false
	}
	for i, b := range bParts {
		if pParts[i] != b {
			return "", false
		}
	}
	rest := pParts[len(bParts):]
	if len(rest) == 0 {
		return ".", true
	}
	return strings.Join(rest, "/"), true
}
