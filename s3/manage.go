package s3

import (
	"context"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"golang.org/x/sync/errgroup"

	"github.com/roy-ht/pathlibfs/core"
)

// Mkdir creates a bucket for a bucket-level path, and a zero-byte "key/"
// marker object otherwise. Directory prefixes need no marker to be
// listable, so the marker only pins otherwise-empty directories.
func (s *S3) Mkdir(p string, createParents bool) error {
	bucket, key := split(p)
	ctx := context.Background()

	if key == "" {
		err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
		if err != nil {
			return core.PathError("mkdir", p, translate(err))
		}
		return nil
	}

	if !createParents {
		ok, err := s.client.BucketExists(ctx, bucket)
		if err != nil {
			return core.PathError("mkdir", p, translate(err))
		}
		if !ok {
			return core.PathError("mkdir", p, core.ErrNotExist)
		}
	} else if err := s.ensureBucket(ctx, bucket); err != nil {
		return core.PathError("mkdir", p, err)
	}
	return s.putMarker(ctx, bucket, key)
}

// Makedirs creates the path and any missing bucket. Without existOK an
// existing path is an ErrExist failure.
func (s *S3) Makedirs(p string, existOK bool) error {
	if !existOK {
		if ok, err := s.Exists(p); err != nil {
			return err
		} else if ok {
			return core.PathError("makedirs", p, core.ErrExist)
		}
	}
	bucket, key := split(p)
	ctx := context.Background()
	if err := s.ensureBucket(ctx, bucket); err != nil {
		return core.PathError("makedirs", p, err)
	}
	if key == "" {
		return nil
	}
	return s.putMarker(ctx, bucket, key)
}

func (s *S3) ensureBucket(ctx context.Context, bucket string) error {
	ok, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return translate(err)
	}
	if ok {
		return nil
	}
	if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		err = translate(err)
		if errors.Is(err, core.ErrExist) {
			return nil
		}
		return err
	}
	return nil
}

func (s *S3) putMarker(ctx context.Context, bucket, key string) error {
	_, err := s.client.PutObject(ctx, bucket, key+"/", strings.NewReader(""), 0,
		minio.PutObjectOptions{})
	if err != nil {
		return core.PathError("mkdir", join(bucket, key), translate(err))
	}
	return nil
}

// Rm removes the path. A directory prefix requires opts.Recursive and is
// removed as one batch delete; a recursive bucket-level remove also drops
// the bucket.
func (s *S3) Rm(p string, opts core.RmOptions) error {
	bucket, key := split(p)
	ctx := context.Background()

	if key != "" {
		if info, err := s.statKey(bucket, key); err == nil && !strings.HasSuffix(info.Key, "/") {
			return s.RmFile(p)
		}
	}

	if !opts.Recursive {
		return s.Rmdir(p)
	}
	if err := s.removePrefix(ctx, bucket, key); err != nil {
		return core.PathError("rm", p, err)
	}
	if key == "" {
		if err := s.client.RemoveBucket(ctx, bucket); err != nil {
			return core.PathError("rm", p, translate(err))
		}
	}
	return nil
}

// removePrefix batch-deletes every object under bucket/key/.
func (s *S3) removePrefix(ctx context.Context, bucket, key string) error {
	prefix := key
	if prefix != "" {
		prefix += "/"
	}

	objectsCh := make(chan minio.ObjectInfo, 100)
	var listErr error
	go func() {
		defer close(objectsCh)
		for object := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
			Prefix:    prefix,
			Recursive: true,
		}) {
			if object.Err != nil {
				listErr = object.Err
				return
			}
			objectsCh <- object
		}
	}()

	errorCh := s.client.RemoveObjects(ctx, bucket, objectsCh, minio.RemoveObjectsOptions{})
	var errList []error
	for err := range errorCh {
		if err.Err != nil {
			errList = append(errList, err.Err)
		}
	}
	if listErr != nil {
		return translate(listErr)
	}
	if len(errList) > 0 {
		return translate(errList[0])
	}
	return nil
}

// RmFile removes the single object at the path.
func (s *S3) RmFile(p string) error {
	bucket, key := split(p)
	if key == "" {
		return core.PathErrorf("rm_file", p, "is a bucket")
	}
	if err := s.client.RemoveObject(context.Background(), bucket, key,
		minio.RemoveObjectOptions{}); err != nil {
		return core.PathError("rm_file", p, translate(err))
	}
	return nil
}

// Rmdir removes an empty bucket or an empty directory marker. Non-empty
// directories fail.
func (s *S3) Rmdir(p string) error {
	bucket, key := split(p)
	ctx := context.Background()

	if key == "" {
		if err := s.client.RemoveBucket(ctx, bucket); err != nil {
			return core.PathError("rmdir", p, translate(err))
		}
		return nil
	}

	prefix := key + "/"
	for object := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return core.PathError("rmdir", p, translate(object.Err))
		}
		if object.Key != prefix {
			return core.PathErrorf("rmdir", p, "directory not empty")
		}
	}
	if err := s.client.RemoveObject(ctx, bucket, prefix, minio.RemoveObjectOptions{}); err != nil {
		err = translate(err)
		if errors.Is(err, core.ErrNotExist) {
			return core.PathError("rmdir", p, core.ErrNotExist)
		}
		return core.PathError("rmdir", p, err)
	}
	return nil
}

// Mv moves src to dst as copy plus delete. The store has no rename; the
// operation is not atomic, and a failure can leave objects at both paths.
func (s *S3) Mv(src, dst string, opts core.TransferOptions) error {
	srcBucket, srcKey := split(src)

	if info, err := s.statKey(srcBucket, srcKey); err == nil && !strings.HasSuffix(info.Key, "/") {
		dstBucket, dstKey := split(dst)
		if err := s.copyObject(srcBucket, srcKey, dstBucket, dstKey); err != nil {
			return core.PathError("mv", src, err)
		}
		return s.RmFile(src)
	}

	copied, err := s.parallelCopy(context.Background(), src, dst, opts)
	if err != nil {
		return core.PathError("mv", src, err)
	}
	if len(copied) == 0 {
		return core.PathError("mv", src, core.ErrNotExist)
	}

	toDelete := make(chan minio.ObjectInfo, len(copied))
	go func() {
		defer close(toDelete)
		for _, k := range copied {
			toDelete <- minio.ObjectInfo{Key: k}
		}
	}()
	errorCh := s.client.RemoveObjects(context.Background(), srcBucket, toDelete,
		minio.RemoveObjectsOptions{})
	for err := range errorCh {
		if err.Err != nil {
			return core.PathError("mv", src, translate(err.Err))
		}
	}
	return nil
}

// Copy copies src to dst natively with server-side object copies.
// Directories require opts.Recursive.
func (s *S3) Copy(src, dst string, opts core.TransferOptions) error {
	srcBucket, srcKey := split(src)

	if info, err := s.statKey(srcBucket, srcKey); err == nil && !strings.HasSuffix(info.Key, "/") {
		dstBucket, dstKey := split(dst)
		if err := s.copyObject(srcBucket, srcKey, dstBucket, dstKey); err != nil {
			return core.PathError("copy", src, err)
		}
		return nil
	}

	if !opts.Recursive {
		return core.PathErrorf("copy", src, "is a directory (copy requires Recursive)")
	}
	copied, err := s.parallelCopy(context.Background(), src, dst, opts)
	if err != nil {
		return core.PathError("copy", src, err)
	}
	if len(copied) == 0 {
		return core.PathError("copy", src, core.ErrNotExist)
	}
	return nil
}

func (s *S3) copyObject(srcBucket, srcKey, dstBucket, dstKey string) error {
	_, err := s.client.CopyObject(context.Background(),
		minio.CopyDestOptions{Bucket: dstBucket, Object: dstKey},
		minio.CopySrcOptions{Bucket: srcBucket, Object: srcKey},
	)
	return translate(err)
}

// parallelCopy copies every object under src to the same relative key
// under dst with a bounded worker pool. It returns the source keys that
// were copied.
func (s *S3) parallelCopy(ctx context.Context, src, dst string, opts core.TransferOptions) ([]string, error) {
	srcBucket, srcKey := split(src)
	dstBucket, dstKey := split(dst)

	srcPrefix := srcKey
	if srcPrefix != "" {
		srcPrefix += "/"
	}
	dstPrefix := dstKey
	if dstPrefix != "" {
		dstPrefix += "/"
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)

	var copiedMu sync.Mutex
	var copied []string

	for object := range s.client.ListObjects(egCtx, srcBucket, minio.ListObjectsOptions{
		Prefix:    srcPrefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return copied, translate(object.Err)
		}
		objectKey := object.Key
		rel := strings.TrimPrefix(objectKey, srcPrefix)
		if opts.MaxDepth > 0 && strings.Count(strings.TrimSuffix(rel, "/"), "/")+1 > opts.MaxDepth {
			continue
		}
		eg.Go(func() error {
			err := s.copyObject(srcBucket, objectKey, dstBucket, dstPrefix+rel)
			if err != nil {
				if opts.OnError == core.OnErrorIgnore {
					return nil
				}
				return err
			}
			copiedMu.Lock()
			copied = append(copied, objectKey)
			copiedMu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return copied, err
	}
	return copied, nil
}

// Put uploads the local file or tree at localSrc to the path at dst, with
// a bounded worker pool for trees.
func (s *S3) Put(localSrc, dst string, opts core.TransferOptions) error {
	info, err := os.Stat(localSrc)
	if err != nil {
		return err
	}
	ctx := context.Background()
	dstBucket, dstKey := split(dst)

	if !info.IsDir() {
		if _, err := s.client.FPutObject(ctx, dstBucket, dstKey, localSrc,
			minio.PutObjectOptions{}); err != nil {
			return core.PathError("put", dst, translate(err))
		}
		return nil
	}

	if !opts.Recursive {
		return core.PathErrorf("put", localSrc, "is a directory (put requires Recursive)")
	}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)
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
			_, err := s.client.FPutObject(egCtx, dstBucket, target, p, minio.PutObjectOptions{})
			if err != nil && opts.OnError == core.OnErrorIgnore {
				return nil
			}
			return translate(err)
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

// Get downloads the object or tree at src to the local path at localDst,
// with a bounded worker pool for trees.
func (s *S3) Get(src, localDst string, opts core.TransferOptions) error {
	srcBucket, srcKey := split(src)
	ctx := context.Background()

	if info, err := s.statKey(srcBucket, srcKey); err == nil && !strings.HasSuffix(info.Key, "/") {
		if err := s.client.FGetObject(ctx, srcBucket, srcKey, localDst,
			minio.GetObjectOptions{}); err != nil {
			return core.PathError("get", src, translate(err))
		}
		return nil
	}

	if !opts.Recursive {
		return core.PathErrorf("get", src, "is a directory (get requires Recursive)")
	}
	prefix := srcKey
	if prefix != "" {
		prefix += "/"
	}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.concurrency)
	found := false
	for object := range s.client.ListObjects(ctx, srcBucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if object.Err != nil {
			return core.PathError("get", src, translate(object.Err))
		}
		found = true
		objectKey := object.Key
		rel := strings.TrimPrefix(objectKey, prefix)
		if strings.HasSuffix(rel, "/") || rel == "" {
			continue
		}
		if opts.MaxDepth > 0 && strings.Count(rel, "/")+1 > opts.MaxDepth {
			continue
		}
		target := filepath.Join(localDst, filepath.FromSlash(rel))
		eg.Go(func() error {
			err := s.client.FGetObject(egCtx, srcBucket, objectKey, target,
				minio.GetObjectOptions{})
			if err != nil && opts.OnError == core.OnErrorIgnore {
				return nil
			}
			return translate(err)
		})
	}
	if !found {
		return core.PathError("get", src, core.ErrNotExist)
	}
	if err := eg.Wait(); err != nil {
		return core.PathError("get", src, err)
	}
	return os.MkdirAll(localDst, 0o755)
}

// Sign returns a presigned GET URL for the object, valid for expiresIn.
func (s *S3) Sign(p string, expiresIn time.Duration) (string, error) {
	bucket, key := split(p)
	u, err := s.client.PresignedGetObject(context.Background(), bucket, key, expiresIn,
		url.Values{})
	if err != nil {
		return "", core.PathError("sign", p, translate(err))
	}
	return u.String(), nil
}

var _ core.Signer = (*S3)(nil)
