package gcs

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	storage "google.golang.org/api/storage/v1"

	"github.com/roy-ht/pathlibfs/core"
)

// listDir lists one delimiter level under bucket/prefix, returning file
// objects and the child directory names.
func (g *GCS) listDir(bucket, prefix string) ([]*storage.Object, []string, error) {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	var objects []*storage.Object
	var dirs []string
	err := g.svc.Objects.List(bucket).Prefix(prefix).Delimiter("/").
		Pages(context.Background(), func(res *storage.Objects) error {
			for _, obj := range res.Items {
				if obj.Name == prefix {
					continue
				}
				objects = append(objects, obj)
			}
			for _, p := range res.Prefixes {
				d := strings.TrimSuffix(strings.TrimPrefix(p, prefix), "/")
				if d != "" {
					dirs = append(dirs, d)
				}
			}
			return nil
		})
	if err != nil {
		return nil, nil, translate(err)
	}
	return objects, dirs, nil
}

// listAll lists every object under bucket/prefix recursively.
func (g *GCS) listAll(bucket, prefix string) ([]*storage.Object, error) {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	var objects []*storage.Object
	err := g.svc.Objects.List(bucket).Prefix(prefix).
		Pages(context.Background(), func(res *storage.Objects) error {
			objects = append(objects, res.Items...)
			return nil
		})
	if err != nil {
		return nil, translate(err)
	}
	return objects, nil
}

// Ls lists the direct children of the path: the project's buckets for the
// empty path, one delimiter level below a prefix otherwise. A file path
// lists the entry itself.
func (g *GCS) Ls(p string) ([]*core.Entry, error) {
	trimmed := strings.Trim(p, "/")

	if trimmed == "" {
		if g.project == "" {
			return nil, core.PathErrorf("ls", p, "listing buckets requires the Project option")
		}
		var entries []*core.Entry
		err := g.svc.Buckets.List(g.project).
			Pages(context.Background(), func(res *storage.Buckets) error {
				for _, b := range res.Items {
					entries = append(entries, &core.Entry{
						Path: b.Name,
						Type: core.EntryTypeDirectory,
					})
				}
				return nil
			})
		if err != nil {
			return nil, core.PathError("ls", p, translate(err))
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
		return entries, nil
	}

	bucket, key := split(trimmed)
	if key != "" {
		if obj, err := g.statKey(bucket, key); err == nil && !strings.HasSuffix(obj.Name, "/") {
			return []*core.Entry{g.entryFromObject(bucket, obj)}, nil
		}
	}

	objects, dirs, err := g.listDir(bucket, key)
	if err != nil {
		return nil, core.PathError("ls", p, err)
	}
	var entries []*core.Entry
	for _, obj := range objects {
		entries = append(entries, g.entryFromObject(bucket, obj))
	}
	base := key
	if base != "" {
		base += "/"
	}
	for _, d := range dirs {
		entries = append(entries, &core.Entry{
			Path: join(bucket, base+d),
			Type: core.EntryTypeDirectory,
		})
	}
	if len(entries) == 0 {
		if ok, err := g.Exists(trimmed); err != nil {
			return nil, err
		} else if !ok {
			return nil, core.PathError("ls", p, core.ErrNotExist)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Find returns the objects under the path recursively, in sorted
// bucket/key form. With WithDirs the implied directory prefixes are
// included as well.
func (g *GCS) Find(p string, opts core.FindOptions) ([]string, error) {
	trimmed := strings.Trim(p, "/")
	bucket, key := split(trimmed)

	if key != "" {
		if obj, err := g.statKey(bucket, key); err == nil && !strings.HasSuffix(obj.Name, "/") {
			return []string{trimmed}, nil
		}
	}

	objects, err := g.listAll(bucket, key)
	if err != nil {
		return nil, core.PathError("find", p, err)
	}
	prefix := key
	if prefix != "" {
		prefix += "/"
	}
	seen := make(map[string]struct{})
	var out []string
	add := func(k string) {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	for _, obj := range objects {
		rel := strings.TrimPrefix(obj.Name, prefix)
		isMarker := strings.HasSuffix(rel, "/")
		rel = strings.TrimSuffix(rel, "/")
		if rel == "" {
			continue
		}
		depth := strings.Count(rel, "/") + 1
		inDepth := opts.MaxDepth <= 0 || depth <= opts.MaxDepth
		if inDepth && !isMarker {
			add(join(bucket, prefix+rel))
		}
		if opts.WithDirs {
			for d := path.Dir(rel); d != "."; d = path.Dir(d) {
				if opts.MaxDepth > 0 && strings.Count(d, "/")+1 > opts.MaxDepth {
					continue
				}
				add(join(bucket, prefix+d))
			}
			if isMarker && inDepth {
				add(join(bucket, prefix+rel))
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// Glob expands a bucket/key pattern with *, ?, [...] and ** wildcards. The
// bucket segment must be literal.
func (g *GCS) Glob(pattern string) ([]string, error) {
	trimmed := strings.Trim(pattern, "/")
	bucket, keyPattern := split(trimmed)
	if strings.ContainsAny(bucket, "*?[") {
		return nil, core.PathErrorf("glob", pattern, "bucket segment cannot contain wildcards")
	}
	if keyPattern == "" {
		return []string{bucket}, nil
	}

	fixed := keyPattern
	if i := strings.IndexAny(keyPattern, "*?["); i >= 0 {
		fixed = keyPattern[:i]
		if j := strings.LastIndex(fixed, "/"); j >= 0 {
			fixed = fixed[:j]
		} else {
			fixed = ""
		}
	}

	objects, err := g.listAll(bucket, fixed)
	if err != nil {
		return nil, core.PathError("glob", pattern, err)
	}
	seen := make(map[string]struct{})
	var candidates []string
	add := func(k string) {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			candidates = append(candidates, k)
		}
	}
	for _, obj := range objects {
		k := strings.TrimSuffix(obj.Name, "/")
		if k == "" {
			continue
		}
		add(k)
		for d := path.Dir(k); d != "."; d = path.Dir(d) {
			add(d)
		}
	}

	var out []string
	for _, k := range candidates {
		ok, err := doublestar.Match(keyPattern, k)
		if err != nil {
			return nil, core.PathError("glob", pattern, err)
		}
		if ok {
			out = append(out, join(bucket, k))
		}
	}
	sort.Strings(out)
	return out, nil
}

// Walk traverses the tree rooted at the path top-down, one delimiter
// listing per directory. Returning fs.SkipDir skips descending.
func (g *GCS) Walk(p string, maxDepth int, fn core.WalkFunc) error {
	return g.walk(strings.Trim(p, "/"), 1, maxDepth, fn)
}

func (g *GCS) walk(dir string, depth, maxDepth int, fn core.WalkFunc) error {
	bucket, key := split(dir)
	objects, dirs, err := g.listDir(bucket, key)
	if err != nil {
		return core.PathError("walk", dir, err)
	}
	prefix := key
	if prefix != "" {
		prefix += "/"
	}
	var files []string
	for _, obj := range objects {
		rel := strings.TrimSuffix(strings.TrimPrefix(obj.Name, prefix), "/")
		if rel == "" {
			continue
		}
		if strings.HasSuffix(obj.Name, "/") {
			dirs = append(dirs, rel)
		} else {
			files = append(files, rel)
		}
	}
	sort.Strings(dirs)
	sort.Strings(files)
	if err := fn(dir, dirs, files); err != nil {
		if errors.Is(err, fs.SkipDir) {
			return nil
		}
		return err
	}
	if maxDepth > 0 && depth >= maxDepth {
		return nil
	}
	for _, d := range dirs {
		if err := g.walk(dir+"/"+d, depth+1, maxDepth, fn); err != nil {
			return err
		}
	}
	return nil
}

// ExpandPath resolves a path, possibly containing wildcards, into the
// concrete paths it covers.
func (g *GCS) ExpandPath(p string, opts core.ExpandOptions) ([]string, error) {
	var roots []string
	if strings.ContainsAny(p, "*?[") {
		matches, err := g.Glob(p)
		if err != nil {
			return nil, err
		}
		roots = matches
	} else {
		trimmed := strings.Trim(p, "/")
		if ok, err := g.Exists(trimmed); err != nil {
			return nil, err
		} else if !ok {
			return nil, core.PathError("expand_path", p, core.ErrNotExist)
		}
		roots = []string{trimmed}
	}
	if !opts.Recursive {
		return roots, nil
	}
	seen := make(map[string]struct{})
	var out []string
	add := func(k string) {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	for _, root := range roots {
		add(root)
		if g.IsDir(root) {
			children, err := g.Find(root, core.FindOptions{MaxDepth: opts.MaxDepth, WithDirs: true})
			if err != nil {
				return nil, err
			}
			for _, c := range children {
				add(c)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// Du returns per-object sizes under the path.
func (g *GCS) Du(p string, maxDepth int) (map[string]int64, error) {
	trimmed := strings.Trim(p, "/")
	bucket, key := split(trimmed)

	sizes := make(map[string]int64)
	if key != "" {
		if obj, err := g.statKey(bucket, key); err == nil && !strings.HasSuffix(obj.Name, "/") {
			sizes[trimmed] = int64(obj.Size)
			return sizes, nil
		}
	}

	objects, err := g.listAll(bucket, key)
	if err != nil {
		return nil, core.PathError("du", p, err)
	}
	prefix := key
	if prefix != "" {
		prefix += "/"
	}
	for _, obj := range objects {
		if strings.HasSuffix(obj.Name, "/") {
			continue
		}
		rel := strings.TrimPrefix(obj.Name, prefix)
		if maxDepth > 0 && strings.Count(rel, "/")+1 > maxDepth {
			continue
		}
		sizes[join(bucket, obj.Name)] = int64(obj.Size)
	}
	return sizes, nil
}
