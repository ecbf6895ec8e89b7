package gcs

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/roy-ht/pathlibfs/core"
)

// Open opens the object with os.O_* flags. The store has no in-place
// updates: O_RDWR and O_APPEND fail with ErrUnsupported, and a write
// handle replaces the object on Close.
func (g *GCS) Open(p string, flag int) (core.File, error) {
	if flag&os.O_RDWR != 0 {
		return nil, core.PathErrorf("open", p, "%w: O_RDWR on object storage", core.ErrUnsupported)
	}
	if flag&os.O_APPEND != 0 {
		return nil, core.PathErrorf("open", p, "%w: O_APPEND on object storage", core.ErrUnsupported)
	}

	bucket, key := split(p)
	if flag&(os.O_WRONLY|os.O_CREATE) != 0 {
		return newFileWrite(g, bucket, key, p), nil
	}
	return newFileRead(g, bucket, key, p)
}

// CatFile reads the whole object.
func (g *GCS) CatFile(p string) ([]byte, error) {
	bucket, key := split(p)
	resp, err := g.svc.Objects.Get(bucket, key).Download()
	if err != nil {
		return nil, core.PathError("cat_file", p, translate(err))
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.PathError("cat_file", p, err)
	}
	return data, nil
}

// PipeFile writes data as the complete new content of the object.
func (g *GCS) PipeFile(p string, data []byte) error {
	bucket, key := split(p)
	f := newFileWrite(g, bucket, key, p)
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Close()
}

// ReadBlock reads length bytes starting at offset via an HTTP range
// request. A negative length reads to the end of the object.
func (g *GCS) ReadBlock(p string, offset, length int64) ([]byte, error) {
	if length == 0 {
		return []byte{}, nil
	}
	bucket, key := split(p)
	call := g.svc.Objects.Get(bucket, key)
	if length > 0 {
		call.Header().Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+length-1))
	} else {
		call.Header().Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}
	resp, err := call.Download()
	if err != nil {
		return nil, core.PathError("read_block", p, translate(err))
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.PathError("read_block", p, err)
	}
	return data, nil
}

// Head reads the first n bytes of the object.
func (g *GCS) Head(p string, n int64) ([]byte, error) {
	return g.ReadBlock(p, 0, n)
}

// Tail reads the last n bytes of the object.
func (g *GCS) Tail(p string, n int64) ([]byte, error) {
	size, err := g.Size(p)
	if err != nil {
		return nil, err
	}
	offset := size - n
	if offset < 0 {
		offset = 0
	}
	return g.ReadBlock(p, offset, -1)
}

// Touch creates an empty object, or rewrites an existing one to refresh
// its update time. With truncate the existing content is replaced by an
// empty object.
func (g *GCS) Touch(p string, truncate bool) error {
	bucket, key := split(p)
	if !truncate {
		_, err := g.statKey(bucket, key)
		if err == nil {
			data, err := g.CatFile(p)
			if err != nil {
				return err
			}
			return g.PipeFile(p, data)
		}
		if !errors.Is(err, core.ErrNotExist) {
			return core.PathError("touch", p, err)
		}
	}
	return g.PipeFile(p, nil)
}
