// Package gcs implements the "gs" protocol backend on Google Cloud Storage
// via the google.golang.org/api discovery client. It registers itself for
// the "gs" and "gcs" schemes on import.
//
// Paths take the bucket/key form, like the s3 backend: the first segment
// names the bucket, the rest is the object key.
package gcs

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"

	"github.com/roy-ht/pathlibfs/core"
)

func init() {
	core.Register(func(opts core.Options) (core.Backend, error) {
		return New(opts)
	}, "gs", "gcs")
}

// GCS implements core.Backend for Google Cloud Storage. One backend spans
// all buckets reachable with its credentials; the Project option scopes
// bucket creation and listing.
type GCS struct {
	svc     *storage.Service
	project string
}

// New creates a GCS backend. Credentials default to the application
// default chain; CredentialsFile overrides it and Anonymous disables
// authentication entirely, which together with Endpoint suits emulators.
func New(opts core.Options) (*GCS, error) {
	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}
	if opts.Anonymous {
		clientOpts = append(clientOpts, option.WithoutAuthentication())
	}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	svc, err := storage.NewService(context.Background(), clientOpts...)
	if err != nil {
		return nil, core.PathError("new", "gs://", translate(err))
	}
	return &GCS{svc: svc, project: opts.Project}, nil
}

// split separates a bucket/key path into its bucket and key parts.
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

// Protocols returns the scheme aliases of the GCS backend.
func (g *GCS) Protocols() []string { return []string{"gs", "gcs"} }

// Sep returns the key separator.
func (g *GCS) Sep() string { return "/" }

// UnstripProtocol reconstructs the gs:// URI form.
func (g *GCS) UnstripProtocol(p string) string {
	return "gs://" + strings.TrimLeft(p, "/")
}

// statKey stats a single object.
func (g *GCS) statKey(bucket, key string) (*storage.Object, error) {
	obj, err := g.svc.Objects.Get(bucket, key).Do()
	if err != nil {
		return nil, translate(err)
	}
	return obj, nil
}

// prefixExists reports whether at least one object lives under prefix/.
func (g *GCS) prefixExists(bucket, prefix string) (bool, error) {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	res, err := g.svc.Objects.List(bucket).Prefix(prefix).MaxResults(1).Do()
	if err != nil {
		return false, translate(err)
	}
	return len(res.Items) > 0 || len(res.Prefixes) > 0, nil
}

// Exists reports whether the path exists as a bucket, an object, or a
// non-empty prefix.
func (g *GCS) Exists(p string) (bool, error) {
	bucket, key := split(p)
	if key == "" {
		_, err := g.svc.Buckets.Get(bucket).Do()
		if err == nil {
			return true, nil
		}
		if errors.Is(translate(err), core.ErrNotExist) {
			return false, nil
		}
		return false, core.PathError("exists", p, translate(err))
	}
	if _, err := g.statKey(bucket, key); err == nil {
		return true, nil
	} else if !errors.Is(err, core.ErrNotExist) {
		return false, core.PathError("exists", p, err)
	}
	ok, err := g.prefixExists(bucket, key)
	if err != nil {
		return false, core.PathError("exists", p, err)
	}
	return ok, nil
}

// Info returns the entry for the path. Prefix-only directories report
// EntryTypeDirectory with zero size.
func (g *GCS) Info(p string) (*core.Entry, error) {
	bucket, key := split(p)
	if key == "" {
		if _, err := g.svc.Buckets.Get(bucket).Do(); err != nil {
			return nil, core.PathError("info", p, translate(err))
		}
		return &core.Entry{Path: bucket, Type: core.EntryTypeDirectory}, nil
	}

	obj, err := g.statKey(bucket, key)
	if err == nil && !strings.HasSuffix(obj.Name, "/") {
		return g.entryFromObject(bucket, obj), nil
	}
	if err != nil && !errors.Is(err, core.ErrNotExist) {
		return nil, core.PathError("info", p, err)
	}

	ok, err := g.prefixExists(bucket, key)
	if err != nil {
		return nil, core.PathError("info", p, err)
	}
	if !ok {
		return nil, core.PathError("info", p, core.ErrNotExist)
	}
	return &core.Entry{Path: join(bucket, key), Type: core.EntryTypeDirectory}, nil
}

// IsDir reports whether the path is a bucket or a directory prefix.
func (g *GCS) IsDir(p string) bool {
	info, err := g.Info(p)
	return err == nil && info.IsDir()
}

// IsFile reports whether the path is an existing object.
func (g *GCS) IsFile(p string) bool {
	bucket, key := split(p)
	if key == "" {
		return false
	}
	obj, err := g.statKey(bucket, key)
	return err == nil && !strings.HasSuffix(obj.Name, "/")
}

// Size returns the byte size of the object at the path.
func (g *GCS) Size(p string) (int64, error) {
	bucket, key := split(p)
	obj, err := g.statKey(bucket, key)
	if err != nil {
		return 0, core.PathError("size", p, err)
	}
	return int64(obj.Size), nil
}

// Checksum returns the object's base64 MD5 hash.
func (g *GCS) Checksum(p string) (string, error) {
	bucket, key := split(p)
	obj, err := g.statKey(bucket, key)
	if err != nil {
		return "", core.PathError("checksum", p, err)
	}
	return obj.Md5Hash, nil
}

// UKey returns the object's etag; it changes whenever the content does.
func (g *GCS) UKey(p string) (string, error) {
	bucket, key := split(p)
	obj, err := g.statKey(bucket, key)
	if err != nil {
		return "", core.PathError("ukey", p, err)
	}
	return obj.Etag, nil
}

// Modified returns the object's last-update time.
func (g *GCS) Modified(p string) (time.Time, error) {
	bucket, key := split(p)
	obj, err := g.statKey(bucket, key)
	if err != nil {
		return time.Time{}, core.PathError("modified", p, err)
	}
	t, err := time.Parse(time.RFC3339, obj.Updated)
	if err != nil {
		return time.Time{}, core.PathError("modified", p, err)
	}
	return t, nil
}

// Created returns the object's creation time.
func (g *GCS) Created(p string) (time.Time, error) {
	bucket, key := split(p)
	obj, err := g.statKey(bucket, key)
	if err != nil {
		return time.Time{}, core.PathError("created", p, err)
	}
	t, err := time.Parse(time.RFC3339, obj.TimeCreated)
	if err != nil {
		return time.Time{}, core.PathError("created", p, err)
	}
	return t, nil
}

// InvalidateCache is a no-op; every call goes to the store.
func (g *GCS) InvalidateCache(string) {}

// Service exposes the underlying storage service.
func (g *GCS) Service() *storage.Service { return g.svc }

func (g *GCS) entryFromObject(bucket string, obj *storage.Object) *core.Entry {
	key := strings.TrimSuffix(obj.Name, "/")
	t := core.EntryTypeFile
	if strings.HasSuffix(obj.Name, "/") {
		t = core.EntryTypeDirectory
	}
	modTime, _ := time.Parse(time.RFC3339, obj.Updated)
	return &core.Entry{
		Path:    join(bucket, key),
		Size:    int64(obj.Size),
		Type:    t,
		ModTime: modTime,
	}
}

var _ core.Backend = (*GCS)(nil)
