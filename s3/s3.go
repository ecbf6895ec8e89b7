// Package s3 implements the "s3" protocol backend on any S3-compatible
// object store via minio-go. It registers itself for the "s3" and "s3a"
// schemes on import.
//
// Paths take the bucket/key form: the first segment names the bucket, the
// rest is the object key. The namespace is flat; directories are prefixes
// derived from the keys that exist, plus explicit zero-byte "dir/" markers
// created by Mkdir.
package s3

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/roy-ht/pathlibfs/core"
)

func init() {
	core.Register(func(opts core.Options) (core.Backend, error) {
		return New(opts)
	}, "s3", "s3a")
}

const defaultEndpoint = "s3.amazonaws.com"

// S3 implements core.Backend for S3-compatible object storage. One backend
// spans all buckets reachable with its credentials.
type S3 struct {
	client      *minio.Client
	concurrency int
}

// New creates an S3 backend. With no explicit AccessKey the credential
// chain falls back to the AWS environment variables, the shared
// credentials file and the instance metadata service, in that order.
func New(opts core.Options) (*S3, error) {
	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	secure := !opts.DisableSSL
	if strings.Contains(endpoint, "://") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, core.PathError("new", endpoint, err)
		}
		secure = u.Scheme == "https"
		endpoint = u.Host
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentialsFor(opts),
		Secure: secure,
		Region: opts.Region,
	})
	if err != nil {
		return nil, core.PathError("new", endpoint, translate(err))
	}

	return &S3{client: client, concurrency: 10}, nil
}

// split separates a bucket/key path into its bucket and key parts. The key
// is empty for a bucket-level path.
func split(p string) (bucket, key string) {
	p = strings.Trim(p, "/")
	if i := strings.Index(p, "/"); i >= 0 {
		return p[:i], p[i+1:]
	}
	return p, ""
}

// join rebuilds a bucket/key path.
func join(bucket, key string) string {
	if key == "" {
		return bucket
	}
	return bucket + "/" + key
}

// Protocols returns the scheme aliases of the S3 backend.
func (s *S3) Protocols() []string { return []string{"s3", "s3a"} }

// Sep returns the key separator.
func (s *S3) Sep() string { return "/" }

// UnstripProtocol reconstructs the s3:// URI form.
func (s *S3) UnstripProtocol(p string) string {
	return "s3://" + strings.TrimLeft(p, "/")
}

// statKey stats a single object.
func (s *S3) statKey(bucket, key string) (minio.ObjectInfo, error) {
	info, err := s.client.StatObject(context.Background(), bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return minio.ObjectInfo{}, translate(err)
	}
	return info, nil
}

// prefixExists reports whether at least one object lives under prefix/.
func (s *S3) prefixExists(bucket, prefix string) (bool, error) {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	for object := range s.client.ListObjects(ctx, bucket, minio.ListObjectsOptions{
		Prefix:  prefix,
		MaxKeys: 1,
	}) {
		if object.Err != nil {
			return false, translate(object.Err)
		}
		return true, nil
	}
	return false, nil
}

// Exists reports whether the path exists as a bucket, an object, or a
// non-empty prefix.
func (s *S3) Exists(p string) (bool, error) {
	bucket, key := split(p)
	if key == "" {
		ok, err := s.client.BucketExists(context.Background(), bucket)
		if err != nil {
			return false, core.PathError("exists", p, translate(err))
		}
		return ok, nil
	}
	if _, err := s.statKey(bucket, key); err == nil {
		return true, nil
	} else if !errors.Is(err, core.ErrNotExist) {
		return false, core.PathError("exists", p, err)
	}
	ok, err := s.prefixExists(bucket, key)
	if err != nil {
		return false, core.PathError("exists", p, err)
	}
	return ok, nil
}

// Info returns the entry for the path. Prefix-only directories report
// EntryTypeDirectory with zero size.
func (s *S3) Info(p string) (*core.Entry, error) {
	bucket, key := split(p)
	if key == "" {
		ok, err := s.client.BucketExists(context.Background(), bucket)
		if err != nil {
			return nil, core.PathError("info", p, translate(err))
		}
		if !ok {
			return nil, core.PathError("info", p, core.ErrNotExist)
		}
		return &core.Entry{Path: bucket, Type: core.EntryTypeDirectory}, nil
	}

	info, err := s.statKey(bucket, key)
	if err == nil && !strings.HasSuffix(info.Key, "/") {
		return s.entryFromObject(bucket, info), nil
	}
	if err != nil && !errors.Is(err, core.ErrNotExist) {
		return nil, core.PathError("info", p, err)
	}

	ok, err := s.prefixExists(bucket, key)
	if err != nil {
		return nil, core.PathError("info", p, err)
	}
	if !ok {
		return nil, core.PathError("info", p, core.ErrNotExist)
	}
	return &core.Entry{Path: join(bucket, key), Type: core.EntryTypeDirectory}, nil
}

// IsDir reports whether the path is a bucket or a directory prefix.
func (s *S3) IsDir(p string) bool {
	info, err := s.Info(p)
	return err == nil && info.IsDir()
}

// IsFile reports whether the path is an existing object.
func (s *S3) IsFile(p string) bool {
	bucket, key := split(p)
	if key == "" {
		return false
	}
	info, err := s.statKey(bucket, key)
	return err == nil && !strings.HasSuffix(info.Key, "/")
}

// Size returns the byte size of the object at the path.
func (s *S3) Size(p string) (int64, error) {
	bucket, key := split(p)
	info, err := s.statKey(bucket, key)
	if err != nil {
		return 0, core.PathError("size", p, err)
	}
	return info.Size, nil
}

// Checksum returns the object's ETag.
func (s *S3) Checksum(p string) (string, error) {
	bucket, key := split(p)
	info, err := s.statKey(bucket, key)
	if err != nil {
		return "", core.PathError("checksum", p, err)
	}
	return strings.Trim(info.ETag, `"`), nil
}

// UKey returns the object's ETag; it changes whenever the content does.
func (s *S3) UKey(p string) (string, error) {
	return s.Checksum(p)
}

// Modified returns the object's last-modified time.
func (s *S3) Modified(p string) (time.Time, error) {
	bucket, key := split(p)
	info, err := s.statKey(bucket, key)
	if err != nil {
		return time.Time{}, core.PathError("modified", p, err)
	}
	return info.LastModified, nil
}

// Created is not recorded by S3; only the last-modified time exists.
func (s *S3) Created(p string) (time.Time, error) {
	return time.Time{}, core.PathError("created", p, core.ErrUnsupported)
}

// InvalidateCache is a no-op; every call goes to the store.
func (s *S3) InvalidateCache(string) {}

// Client exposes the underlying minio client.
func (s *S3) Client() *minio.Client { return s.client }

func (s *S3) entryFromObject(bucket string, info minio.ObjectInfo) *core.Entry {
	key := strings.TrimSuffix(info.Key, "/")
	t := core.EntryTypeFile
	if strings.HasSuffix(info.Key, "/") {
		t = core.EntryTypeDirectory
	}
	return &core.Entry{
		Path:    join(bucket, key),
		Size:    info.Size,
		Type:    t,
		ModTime: info.LastModified,
	}
}

var _ core.Backend = (*S3)(nil)
