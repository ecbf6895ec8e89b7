package s3

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/minio/minio-go/v7"

	"github.com/roy-ht/pathlibfs/core"
)

// Ls lists the direct children of the path: the buckets for the empty
// path, the top of the bucket for a bucket path, one delimiter level below
// a prefix otherwise. A file path lists the entry itself.
func (s *S3) Ls(p string) ([]*core.Entry, error) {
	ctx := context.Background()
	trimmed := strings.Trim(p, "/")

	if trimmed == "" {
		buckets, err := s.client.ListBuckets(ctx)
		if err != nil {
			return nil, core.PathError("ls", p, translate(err))
		}
		entries := make([]*core.Entry, 0, len(buckets))
		for _, b := range buckets {
			entries = append(entries, &core.Entry{
				Path:    b.Name,
				Type:    core.EntryTypeDirectory,
				ModTime: b.CreationDate,
			})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
		return entries, nil
	}

	bucket, key := split(trimmed)
	if key != "" {
		if info, err := s.statKey(bucket, key); err == nil && !strings.HasSuffix(info.Key, "/") {
			return []*core.Entry{s.entryFromObject(bucket, info)}, nil
		}
	}

	prefix := key
	if prefix != "" {
		prefix += "/"
	}
	var entries []*core.Entry
	for object := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix: prefix,
	}) {
		if object.Err != nil {
			return nil, core.PathError("ls", p, translate(object.Err))
		}
		if object.Key == prefix {
			continue
		}
		entries = append(entries, s.entryFromObject(bucket, object))
	}
	if len(entries) == 0 {
		if ok, err := s.Exists(trimmed); err != nil {
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
func (s *S3) Find(p string, opts core.FindOptions) ([]string, error) {
	trimmed := strings.Trim(p, "/")
	bucket, key := split(trimmed)

	if key != "" {
		if info, err := s.statKey(bucket, key); err == nil && !strings.HasSuffix(info.Key, "/") {
			return []string{trimmed}, nil
		}
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
	for object := range s.client.ListObjects(context.Background(), bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, core.PathError("find", p, translate(object.Err))
		}
		rel := strings.TrimPrefix(object.Key, prefix)
		isMarker := strings.HasSuffix(rel, "/")
		rel = strings.TrimSuffix(rel, "/")
		if rel == "" {
			continue
		}
		depth := strings.Count(rel, "/") + 1
		if opts.MaxDepth > 0 && depth > opts.MaxDepth {
			if !opts.WithDirs {
				continue
			}
		} else if !isMarker {
			add(join(bucket, prefix+rel))
		}
		if opts.WithDirs {
			for d := path.Dir(rel); d != "."; d = path.Dir(d) {
				dDepth := strings.Count(d, "/") + 1
				if opts.MaxDepth > 0 && dDepth > opts.MaxDepth {
					continue
				}
				add(join(bucket, prefix+d))
			}
			if isMarker && (opts.MaxDepth <= 0 || depth <= opts.MaxDepth) {
				add(join(bucket, prefix+rel))
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// Glob expands a bucket/key pattern with *, ?, [...] and ** wildcards. The
// bucket segment must be literal.
func (s *S3) Glob(pattern string) ([]string, error) {
	trimmed := strings.Trim(pattern, "/")
	bucket, keyPattern := split(trimmed)
	if strings.ContainsAny(bucket, "*?[") {
		return nil, core.PathErrorf("glob", pattern, "bucket segment cannot contain wildcards")
	}
	if keyPattern == "" {
		return []string{bucket}, nil
	}

	// List once under the longest wildcard-free prefix, then match keys.
	fixed := keyPattern
	if i := strings.IndexAny(keyPattern, "*?["); i >= 0 {
		fixed = keyPattern[:i]
		if j := strings.LastIndex(fixed, "/"); j >= 0 {
			fixed = fixed[:j+1]
		} else {
			fixed = ""
		}
	}

	seen := make(map[string]struct{})
	var candidates []string
	add := func(k string) {
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			candidates = append(candidates, k)
		}
	}
	for object := range s.client.ListObjects(context.Background(), bucket, minio.ListObjectsOptions{
		Prefix:    fixed,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, core.PathError("glob", pattern, translate(object.Err))
		}
		k := strings.TrimSuffix(object.Key, "/")
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
func (s *S3) Walk(p string, maxDepth int, fn core.WalkFunc) error {
	return s.walk(strings.Trim(p, "/"), 1, maxDepth, fn)
}

func (s *S3) walk(dir string, depth, maxDepth int, fn core.WalkFunc) error {
	bucket, key := split(dir)
	prefix := key
	if prefix != "" {
		prefix += "/"
	}
	var dirs, files []string
	for object := range s.client.ListObjects(context.Background(), bucket, minio.ListObjectsOptions{
		Prefix: prefix,
	}) {
		if object.Err != nil {
			return core.PathError("walk", dir, translate(object.Err))
		}
		if object.Key == prefix {
			continue
		}
		rel := strings.TrimPrefix(object.Key, prefix)
		if strings.HasSuffix(rel, "/") {
			dirs = append(dirs, strings.TrimSuffix(rel, "/"))
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
		if err := s.walk(dir+"/"+d, depth+1, maxDepth, fn); err != nil {
			return err
		}
	}
	return nil
}

// ExpandPath resolves a path, possibly containing wildcards, into the
// concrete paths it covers.
func (s *S3) ExpandPath(p string, opts core.ExpandOptions) ([]string, error) {
	var roots []string
	if strings.ContainsAny(p, "*?[") {
		matches, err := s.Glob(p)
		if err != nil {
			return nil, err
		}
		roots = matches
	} else {
		trimmed := strings.Trim(p, "/")
		if ok, err := s.Exists(trimmed); err != nil {
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
		if s.IsDir(root) {
			children, err := s.Find(root, core.FindOptions{MaxDepth: opts.MaxDepth, WithDirs: true})
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
func (s *S3) Du(p string, maxDepth int) (map[string]int64, error) {
	trimmed := strings.Trim(p, "/")
	bucket, key := split(trimmed)

	sizes := make(map[string]int64)
	if key != "" {
		if info, err := s.statKey(bucket, key); err == nil && !strings.HasSuffix(info.Key, "/") {
			sizes[trimmed] = info.Size
			return sizes, nil
		}
	}

	prefix := key
	if prefix != "" {
		prefix += "/"
	}
	for object := range s.client.ListObjects(context.Background(), bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return nil, core.PathError("du", p, translate(object.Err))
		}
		if strings.HasSuffix(object.Key, "/") {
			continue
		}
		rel := strings.TrimPrefix(object.Key, prefix)
		if maxDepth > 0 && strings.Count(rel, "/")+1 > maxDepth {
			continue
		}
		sizes[join(bucket, object.Key)] = object.Size
	}
	return sizes, nil
}
