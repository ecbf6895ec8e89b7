package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/roy-ht/pathlibfs/core"
)

// multipartThreshold is the buffered-write size beyond which a write
// handle switches to streaming the upload through a pipe.
const multipartThreshold = 5 * 1024 * 1024

// file is an object handle. Read mode streams the object through the
// minio client; write mode buffers small payloads and switches to a
// background streaming upload past multipartThreshold. The object becomes
// visible on Close.
type file struct {
	backend *S3
	bucket  string
	key     string
	name    string
	mode    int

	// read mode
	obj *minio.Object

	// write mode
	buffer       *bytes.Buffer
	pipeW        *io.PipeWriter
	putRes       chan error
	bytesWritten int64
	closed       bool
}

func newFileRead(s *S3, bucket, key, name string) (*file, error) {
	obj, err := s.client.GetObject(context.Background(), bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, core.PathError("open", name, translate(err))
	}
	// GetObject is lazy; surface a missing object at open time.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, core.PathError("open", name, translate(err))
	}
	return &file{backend: s, bucket: bucket, key: key, name: name, mode: os.O_RDONLY, obj: obj}, nil
}

func newFileWrite(s *S3, bucket, key, name string, flag int) *file {
	return &file{
		backend: s,
		bucket:  bucket,
		key:     key,
		name:    name,
		mode:    flag,
		buffer:  new(bytes.Buffer),
	}
}

func (f *file) Name() string { return f.name }

func (f *file) Read(p []byte) (int, error) {
	if f.obj == nil {
		return 0, core.PathError("read", f.name, fs.ErrInvalid)
	}
	n, err := f.obj.Read(p)
	if err == nil || errors.Is(err, io.EOF) {
		return n, err
	}
	return n, core.PathError("read", f.name, translate(err))
}

func (f *file) Seek(offset int64, whence int) (int64, error) {
	if f.obj == nil {
		return 0, core.PathError("seek", f.name, fs.ErrInvalid)
	}
	return f.obj.Seek(offset, whence)
}

func (f *file) Write(p []byte) (int, error) {
	if f.buffer == nil && f.pipeW == nil {
		return 0, core.PathError("write", f.name, fs.ErrInvalid)
	}
	if f.pipeW != nil {
		n, err := f.pipeW.Write(p)
		f.bytesWritten += int64(n)
		if err != nil {
			return n, core.PathError("write", f.name, err)
		}
		return n, nil
	}
	if int64(f.buffer.Len()+len(p)) > multipartThreshold {
		return f.transitionToStreaming(p)
	}
	n, err := f.buffer.Write(p)
	f.bytesWritten += int64(n)
	return n, err
}

// transitionToStreaming flushes the buffer into a pipe feeding a
// background upload and writes p through it.
func (f *file) transitionToStreaming(p []byte) (int, error) {
	pr, pw := io.Pipe()
	f.pipeW = pw
	f.putRes = make(chan error, 1)

	go func() {
		_, err := f.backend.client.PutObject(
			context.Background(), f.bucket, f.key, pr, -1,
			minio.PutObjectOptions{ContentType: "application/octet-stream"},
		)
		_ = pr.Close()
		f.putRes <- translate(err)
		close(f.putRes)
	}()

	if f.buffer.Len() > 0 {
		if _, err := pw.Write(f.buffer.Bytes()); err != nil {
			return 0, core.PathError("write", f.name, err)
		}
	}
	f.buffer = nil

	n, err := pw.Write(p)
	f.bytesWritten += int64(n)
	if err != nil {
		return n, core.PathError("write", f.name, err)
	}
	return n, nil
}

func (f *file) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true

	if f.obj != nil {
		return f.obj.Close()
	}
	if f.pipeW != nil {
		if err := f.pipeW.Close(); err != nil {
			return core.PathError("close", f.name, err)
		}
		if err := <-f.putRes; err != nil {
			return core.PathError("close", f.name, err)
		}
		return nil
	}
	_, err := f.backend.client.PutObject(
		context.Background(), f.bucket, f.key, bytes.NewReader(f.buffer.Bytes()),
		int64(f.buffer.Len()),
		minio.PutObjectOptions{ContentType: "application/octet-stream"},
	)
	if err != nil {
		return core.PathError("close", f.name, translate(err))
	}
	return nil
}

func (f *file) Stat() (fs.FileInfo, error) {
	if f.obj != nil {
		info, err := f.obj.Stat()
		if err != nil {
			return nil, core.PathError("stat", f.name, translate(err))
		}
		return objectFileInfo{name: path.Base(f.name), size: info.Size, modTime: info.LastModified}, nil
	}
	return objectFileInfo{name: path.Base(f.name), size: f.bytesWritten, modTime: time.Now()}, nil
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
