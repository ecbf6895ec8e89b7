package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"

	"github.com/minio/minio-go/v7"

	"github.com/roy-ht/pathlibfs/core"
)

// Open opens the object with os.O_* flags. The store has no in-place
// updates: O_RDWR and O_APPEND fail with ErrUnsupported, and a write
// handle replaces the object on Close.
func (s *S3) Open(p string, flag int) (core.File, error) {
	if flag&os.O_RDWR != 0 {
		return nil, core.PathErrorf("open", p, "%w: O_RDWR on object storage", core.ErrUnsupported)
	}
	if flag&os.O_APPEND != 0 {
		return nil, core.PathErrorf("open", p, "%w: O_APPEND on object storage", core.ErrUnsupported)
	}

	bucket, key := split(p)
	if flag&(os.O_WRONLY|os.O_CREATE) != 0 {
		return newFileWrite(s, bucket, key, p, flag), nil
	}
	return newFileRead(s, bucket, key, p)
}

// CatFile reads the whole object.
func (s *S3) CatFile(p string) ([]byte, error) {
	bucket, key := split(p)
	ctx := context.Background()

	info, err := s.statKey(bucket, key)
	if err != nil {
		return nil, core.PathError("cat_file", p, err)
	}
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, core.PathError("cat_file", p, translate(err))
	}
	defer func() { _ = obj.Close() }()

	buf := make([]byte, info.Size)
	if _, err := io.ReadFull(obj, buf); err != nil {
		return nil, core.PathError("cat_file", p, err)
	}
	return buf, nil
}

// PipeFile writes data as the complete new content of the object.
func (s *S3) PipeFile(p string, data []byte) error {
	bucket, key := split(p)
	_, err := s.client.PutObject(
		context.Background(), bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"},
	)
	if err != nil {
		return core.PathError("pipe_file", p, translate(err))
	}
	return nil
}

// ReadBlock reads length bytes starting at offset via an HTTP range
// request. A negative length reads to the end of the object.
func (s *S3) ReadBlock(p string, offset, length int64) ([]byte, error) {
	bucket, key := split(p)
	opts := minio.GetObjectOptions{}
	end := int64(0)
	if length > 0 {
		end = offset + length - 1
	} else if length == 0 {
		return []byte{}, nil
	}
	if err := opts.SetRange(offset, end); err != nil {
		return nil, core.PathError("read_block", p, err)
	}
	obj, err := s.client.GetObject(context.Background(), bucket, key, opts)
	if err != nil {
		return nil, core.PathError("read_block", p, translate(err))
	}
	defer func() { _ = obj.Close() }()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, core.PathError("read_block", p, translate(err))
	}
	return data, nil
}

// Head reads the first n bytes of the object.
func (s *S3) Head(p string, n int64) ([]byte, error) {
	return s.ReadBlock(p, 0, n)
}

// Tail reads the last n bytes of the object.
func (s *S3) Tail(p string, n int64) ([]byte, error) {
	size, err := s.Size(p)
	if err != nil {
		return nil, err
	}
	offset := size - n
	if offset < 0 {
		offset = 0
	}
	return s.ReadBlock(p, offset, -1)
}

// Touch creates an empty object, or refreshes the modification time of an
// existing one by copying it onto itself. With truncate the existing
// content is replaced by an empty object.
func (s *S3) Touch(p string, truncate bool) error {
	bucket, key := split(p)
	ctx := context.Background()

	if !truncate {
		_, err := s.statKey(bucket, key)
		if err == nil {
			// Self-copy with replaced metadata bumps LastModified.
			src := minio.CopySrcOptions{Bucket: bucket, Object: key}
			dst := minio.CopyDestOptions{
				Bucket:          bucket,
				Object:          key,
				ReplaceMetadata: true,
			}
			if _, err := s.client.CopyObject(ctx, dst, src); err != nil {
				return core.PathError("touch", p, translate(err))
			}
			return nil
		}
		if !errors.Is(err, core.ErrNotExist) {
			return core.PathError("touch", p, err)
		}
	}
	return s.PipeFile(p, nil)
}
