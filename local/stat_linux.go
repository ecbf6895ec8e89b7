//go:build linux

package local

import (
	"io/fs"
	"syscall"
	"time"

	"github.com/roy-ht/pathlibfs/core"
)

func createdTime(info fs.FileInfo) (time.Time, error) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, core.ErrUnsupported
	}
	return time.Unix(st.Ctim.Sec, st.Ctim.Nsec), nil
}
