//go:build !linux

package local

import (
	"io/fs"
	"time"

	"github.com/roy-ht/pathlibfs/core"
)

func createdTime(info fs.FileInfo) (time.Time, error) {
	return time.Time{}, core.ErrUnsupported
}
