package gcs

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"time"

	storage "google.golang.org/api/storage/v1"

	"github.com/roy-ht/pathlibfs/core"
)

// file is an object handle. Read mode streams the media download; write
// mode buffers and uploads the object on Close.
type file struct {
	backend *GCS
	bucket  string
	key     string
	name    string

	// read mode
	body io.ReadCloser
	size int64

	// write mode
	buffer *bytes.Buffer
	closed bool
}

func newFileRead(g *GCS, bucket, key, name string) (*file, error) {
	obj, err := g.statKey(bucket, key)
	if err != nil {
		return nil, core.PathError("open", name, err)
	}
	resp, err := g.svc.Objects.Get(bucket, key).Download()
	if err != nil {
		return nil, core.PathError("open", name, translate(err))
	}
	return &file{
		backend: g,
		bucket:  bucket,
		key:     key,
		name:    name,
		body:    resp.Body,
		size:    int64(obj.Size),
	}, nil
}

func newFileWrite(g *GCS, bucket, key, name string) *file {
	return &file{
		backend: g,
		bucket:  bucket,
		key:     key,
		name:    name,
		buffer:  new(bytes.Buffer),
	}
}

func (f *file) Name() string { return f.name }

func (f *file) Read(p []byte) (int, error) {
	if f.body == nil {
		return 0, core.PathError("read", f.name, fs.ErrInvalid)
	}
	return f.body.Read(p)
}

func (f *file) Write(p []byte) (int, error) {
	if f.buffer == nil {
		return 0, core.PathError("write", f.name, fs.ErrInvalid)
	}
	return f.buffer.Write(p)
}

func (f *file) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	if f.body != nil {
		return f.body.Close()
	}
	_, err := f.backend.svc.Objects.Insert(f.bucket, &storage.Object{Name: f.key}).
		Media(bytes.NewReader(f.buffer.Bytes())).
		Do()
	if err != nil {
		return core.PathError("close", f.name, translate(err))
	}
	return nil
}

func (f *file) Stat() (fs.FileInfo, error) {
	if f.body != nil {
		return objectFileInfo{name: path.Base(f.name), size: f.size}, nil
	}
	return objectFileInfo{name: path.Base(f.name), size: int64(f.buffer.Len()), modTime: time.Now()}, nil
}

var _ core.File = (*file)(nil)

// objectFileInfo is the fs.FileInfo view of an object.
type objectFileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (i objectFileInfo) Name() string       { return i.name }
func (i objectFileInfo) Size() int64        { return i.size }
func (i objectFileInfo) Mode() fs.FileMode  { return 0o644 }
func (i objectFileInfo) ModTime() time.Time { return i.modTime }
func (i objectFileInfo) IsDir() bool        { return false }
func (i objectFileInfo) Sys() any           { return nil }
