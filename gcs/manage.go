package gcs

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	storage "google.golang.org/api/storage/v1"

	"github.com/roy-ht/pathlibfs/core"
)

// transferConcurrency bounds the worker pool for tree transfers.
const transferConcurrency = 10

// Mkdir creates a bucket for a bucket-level path, and a zero-byte "key/"
// marker object otherwise.
func (g *GCS) Mkdir(p string, createParents bool) error {
	bucket, key := split(p)

	if key == "" {
		if g.project == "" {
			return core.PathErrorf("mkdir", p, "creating a bucket requires the Project option")
		}
		_, err := g.svc.Buckets.Insert(g.project, &storage.Bucket{Name: bucket}).Do()
		if err != nil {
			return core.PathError("mkdir", p, translate(err))
		}
		return nil
	}

	if !createParents {
		if _, err := g.svc.Buckets.Get(bucket).Do(); err != nil {
			return core.PathError("mkdir", p, translate(err))
		}
	} else if err := g.ensureBucket(bucket); err != nil {
		return core.PathError("mkdir", p, err)
	}
	return g.putMarker(bucket, key)
}

// Makedirs creates the path and any missing bucket. Without existOK an
// existing path is an ErrExist failure.
func (g *GCS) Makedirs(p string, existOK bool) error {
	if !existOK {
		if ok, err := g.Exists(p); err != nil {
			return err
		} else if ok {
			return core.PathError("makedirs", p, core.ErrExist)
		}
	}
	bucket, key := split(p)
	if err := g.ensureBucket(bucket); err != nil {
		return core.PathError("makedirs", p, err)
	}
	if key == "" {
		return nil
	}
	return g.putMarker(bucket, key)
}

func (g *GCS) ensureBucket(bucket string) error {
	_, err := g.svc.Buckets.Get(bucket).Do()
	if err == nil {
		return nil
	}
	if !errors.Is(translate(err), core.ErrNotExist) {
		return translate(err)
	}
	if g.project == "" {
		return errors.New("creating a bucket requires the Project option")
	}
	_, err = g.svc.Buckets.Insert(g.project, &storage.Bucket{Name: bucket}).Do()
	if err != nil {
		err = translate(err)
		if errors.Is(err, core.ErrExist) {
			return nil
		}
		return err
	}
	return nil
}

func (g *GCS) putMarker(bucket, key string) error {
	_, err := g.svc.Objects.Insert(bucket, &storage.Object{Name: key + "/"}).
		Media(bytes.NewReader(nil)).
		Do()
	if err != nil {
		return core.PathError("mkdir", join(bucket, key), translate(err))
	}
	return nil
}

// Rm removes the path. A directory prefix requires opts.Recursive; a
// recursive bucket-level remove also drops the bucket.
func (g *GCS) Rm(p string, opts core.RmOptions) error {
	bucket, key := split(p)

	if key != "" {
		if obj, err := g.statKey(bucket, key); err == nil && !strings.HasSuffix(obj.Name, "/") {
			return g.RmFile(p)
		}
	}

	if !opts.Recursive {
		return g.Rmdir(p)
	}
	objects, err := g.listAll(bucket, key)
	if err != nil {
		return core.PathError("rm", p, err)
	}
	for _, obj := range objects {
		if err := g.svc.Objects.Delete(bucket, obj.Name).Do(); err != nil {
			return core.PathError("rm", p, translate(err))
		}
	}
	if key == "" {
		if err := g.svc.Buckets.Delete(bucket).Do(); err != nil {
			return core.PathError("rm", p, translate(err))
		}
	}
	return nil
}

// RmFile removes the single object at the path.
func (g *GCS) RmFile(p string) error {
	bucket, key := split(p)
	if key == "" {
		return core.PathErrorf("rm_file", p, "is a bucket")
	}
	if err := g.svc.Objects.Delete(bucket, key).Do(); err != nil {
		return core.PathError("rm_file", p, translate(err))
	}
	return nil
}

// Rmdir removes an empty bucket or an empty directory marker. Non-empty
// directories fail.
func (g *GCS) Rmdir(p string) error {
	bucket, key := split(p)

	if key == "" {
		if err := g.svc.Buckets.Delete(bucket).Do(); err != nil {
			return core.PathError("rmdir", p, translate(err))
		}
		return nil
	}

	objects, err := g.listAll(bucket, key)
	if err != nil {
		return core.PathError("rmdir", p, err)
	}
	marker := key + "/"
	for _, obj := range objects {
		if obj.Name != marker {
			return core.PathErrorf("rmdir", p, "directory not empty")
		}
	}
	if err := g.svc.Objects.Delete(bucket, marker).Do(); err != nil {
		return core.PathError("rmdir", p, translate(err))
	}
	return nil
}

// Mv moves src to dst as copy plus delete. The store has no rename; the
// operation is not atomic, and a failure can leave objects at both paths.
func (g *GCS) Mv(src, dst string, opts core.TransferOptions) error {
	srcBucket, srcKey := split(src)

	if obj, err := g.statKey(srcBucket, srcKey); err == nil && !strings.HasSuffix(obj.Name, "/") {
		dstBucket, dstKey := split(dst)
		if err := g.copyObject(srcBucket, srcKey, dstBucket, dstKey); err != nil {
			return core.PathError("mv", src, err)
		}
		return g.RmFile(src)
	}

	copied, err := g.parallelCopy(src, dst, opts)
	if err != nil {
		return core.PathError("mv", src, err)
	}
	if len(copied) == 0 {
		return core.PathError("mv", src, core.ErrNotExist)
	}
	for _, k := range copied {
		if err := g.svc.Objects.Delete(srcBucket, k).Do(); err != nil {
			return core.PathError("mv", src, translate(err))
		}
	}
	return nil
}

// Copy copies src to dst natively with server-side object copies.
// Directories require opts.Recursive.
func (g *GCS) Copy(src, dst string, opts core.TransferOptions) error {
	srcBucket, srcKey := split(src)

	if obj, err := g.statKey(srcBucket, srcKey); err == nil && !strings.HasSuffix(obj.Name, "/") {
		dstBucket, dstKey := split(dst)
		if err := g.copyObject(srcBucket, srcKey, dstBucket, dstKey); err != nil {
			return core.PathError("copy", src, err)
		}
		return nil
	}

	if !opts.Recursive {
		return core.PathErrorf("copy", src, "is a directory (copy requires Recursive)")
	}
	copied, err := g.parallelCopy(src, dst, opts)
	if err != nil {
		return core.PathError("copy", src, err)
	}
	if len(copied) == 0 {
		return core.PathError("copy", src, core.ErrNotExist)
	}
	return nil
}

func (g *GCS) copyObject(srcBucket, srcKey, dstBucket, dstKey string) error {
	_, err := g.svc.Objects.Copy(srcBucket, srcKey, dstBucket, dstKey, nil).Do()
	return translate(err)
}

// parallelCopy copies every object under src to the same relative key
// under dst with a bounded worker pool. It returns the source keys that
// were copied.
func (g *GCS) parallelCopy(src, dst string, opts core.TransferOptions) ([]string, error) {
	srcBucket, srcKey := split(src)
	dstBucket, dstKey := split(dst)

	objects, err := g.listAll(srcBucket, srcKey)
	if err != nil {
		return nil, err
	}
	srcPrefix := srcKey
	if srcPrefix != "" {
		srcPrefix += "/"
	}
	dstPrefix := dstKey
	if dstPrefix != "" {
		dstPrefix += "/"
	}

	eg, _ := errgroup.WithContext(context.Background())
	eg.SetLimit(transferConcurrency)

	copied := make([]string, 0, len(objects))
	results := make([]string, len(objects))
	for i, obj := range objects {
		rel := strings.TrimPrefix(obj.Name, srcPrefix)
		if opts.MaxDepth > 0 && strings.Count(strings.TrimSuffix(rel, "/"), "/")+1 > opts.MaxDepth {
			continue
		}
		i, name := i, obj.Name
		eg.Go(func() error {
			err := g.copyObject(srcBucket, name, dstBucket, dstPrefix+rel)
			if err != nil {
				if opts.OnError == core.OnErrorIgnore {
					return nil
				}
				return err
			}
			results[i] = name
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	for _, k := range results {
		if k != "" {
			copied = append(copied, k)
		}
	}
	return copied, nil
}

// Put uploads the local file or tree at localSrc to the path at dst, with
// a bounded worker pool for trees.
func (g *GCS) Put(localSrc, dst string, opts core.TransferOptions) error {
	info, err := os.Stat(localSrc)
	if err != nil {
		return err
	}
	dstBucket, dstKey := split(dst)

	if !info.IsDir() {
		return g.uploadFile(localSrc, dstBucket, dstKey)
	}

	if !opts.Recursive {
		return core.PathErrorf("put", localSrc, "is a directory (put requires Recursive)")
	}
	eg, _ := errgroup.WithContext(context.Background())
	eg.SetLimit(transferConcurrency)
	err = filepath.WalkDir(localSrc, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(localSrc, p)
		if err != nil {
			return err
		}
		target := dstKey
		if target != "" {
			target += "/"
		}
		target += filepath.ToSlash(rel)
		eg.Go(func() error {
			err := g.uploadFile(p, dstBucket, target)
			if err != nil && opts.OnError == core.OnErrorIgnore {
				return nil
			}
			return err
		})
		return nil
	})
	if err != nil {
		return core.PathError("put", localSrc, err)
	}
	if err := eg.Wait(); err != nil {
		return core.PathError("put", dst, err)
	}
	return nil
}

func (g *GCS) uploadFile(localPath, bucket, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = g.svc.Objects.Insert(bucket, &storage.Object{Name: key}).Media(f).Do()
	return translate(err)
}

// Get downloads the object or tree at src to the local path at localDst,
// with a bounded worker pool for trees.
func (g *GCS) Get(src, localDst string, opts core.TransferOptions) error {
	srcBucket, srcKey := split(src)

	if obj, err := g.statKey(srcBucket, srcKey); err == nil && !strings.HasSuffix(obj.Name, "/") {
		return g.downloadFile(srcBucket, srcKey, localDst)
	}

	if !opts.Recursive {
		return core.PathErrorf("get", src, "is a directory (get requires Recursive)")
	}
	objects, err := g.listAll(srcBucket, srcKey)
	if err != nil {
		return core.PathError("get", src, err)
	}
	if len(objects) == 0 {
		return core.PathError("get", src, core.ErrNotExist)
	}
	prefix := srcKey
	if prefix != "" {
		prefix += "/"
	}
	eg, _ := errgroup.WithContext(context.Background())
	eg.SetLimit(transferConcurrency)
	for _, obj := range objects {
		rel := strings.TrimPrefix(obj.Name, prefix)
		if strings.HasSuffix(rel, "/") || rel == "" {
			continue
		}
		if opts.MaxDepth > 0 && strings.Count(rel, "/")+1 > opts.MaxDepth {
			continue
		}
		name := obj.Name
		target := filepath.Join(localDst, filepath.FromSlash(rel))
		eg.Go(func() error {
			err := g.downloadFile(srcBucket, name, target)
			if err != nil && opts.OnError == core.OnErrorIgnore {
				return nil
			}
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return core.PathError("get", src, err)
	}
	return os.MkdirAll(localDst, 0o755)
}

func (g *GCS) downloadFile(bucket, key, localPath string) error {
	resp, err := g.svc.Objects.Get(bucket, key).Download()
	if err != nil {
		return translate(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return err
	}
	out, err := os.Create(localPath)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()
	if _, err := out.ReadFrom(resp.Body); err != nil {
		return err
	}
	return out.Close()
}
