package fstest

import (
	"bytes"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/roy-ht/pathlibfs/core"
)

// TestReadOps tests the read-side contract: Exists, Info, Size, CatFile,
// Open in read mode, Head, Tail and ReadBlock.
func TestReadOps(t *testing.T, backend core.Backend, config Config) {
	content := []byte("conformance file content")
	if err := backend.PipeFile(config.at("readdir/data.txt"), content); err != nil {
		t.Fatalf("PipeFile: setup failed: %v", err)
	}

	t.Run("ExistsFile", func(t *testing.T) {
		ok, err := backend.Exists(config.at("readdir/data.txt"))
		if err != nil {
			t.Fatalf("Exists: got error %v, want nil", err)
		}
		if !ok {
			t.Errorf("Exists: got false, want true")
		}
	})
	t.Run("ExistsDir", func(t *testing.T) {
		ok, err := backend.Exists(config.at("readdir"))
		if err != nil {
			t.Fatalf("Exists: got error %v, want nil", err)
		}
		if !ok {
			t.Errorf("Exists(dir): got false, want true")
		}
	})
	t.Run("ExistsNotExist", func(t *testing.T) {
		ok, err := backend.Exists(config.at("missing"))
		if err != nil {
			t.Fatalf("Exists: got error %v, want nil", err)
		}
		if ok {
			t.Errorf("Exists(missing): got true, want false")
		}
	})
	t.Run("InfoFile", func(t *testing.T) {
		info, err := backend.Info(config.at("readdir/data.txt"))
		if err != nil {
			t.Fatalf("Info: got error %v, want nil", err)
		}
		if info.IsDir() {
			t.Errorf("Info: IsDir() = true, want false")
		}
		if info.Size != int64(len(content)) {
			t.Errorf("Info: Size = %d, want %d", info.Size, len(content))
		}
		if info.Name() != "data.txt" {
			t.Errorf("Info: Name() = %q, want %q", info.Name(), "data.txt")
		}
	})
	t.Run("InfoDir", func(t *testing.T) {
		info, err := backend.Info(config.at("readdir"))
		if err != nil {
			t.Fatalf("Info(dir): got error %v, want nil", err)
		}
		if !info.IsDir() {
			t.Errorf("Info(dir): IsDir() = false, want true")
		}
	})
	t.Run("InfoNotExist", func(t *testing.T) {
		_, err := backend.Info(config.at("missing"))
		if !errors.Is(err, core.ErrNotExist) {
			t.Errorf("Info(missing): got error %v, want ErrNotExist", err)
		}
	})
	t.Run("IsDirIsFile", func(t *testing.T) {
		if !backend.IsFile(config.at("readdir/data.txt")) {
			t.Errorf("IsFile(file): got false, want true")
		}
		if backend.IsDir(config.at("readdir/data.txt")) {
			t.Errorf("IsDir(file): got true, want false")
		}
		if !backend.IsDir(config.at("readdir")) {
			t.Errorf("IsDir(dir): got false, want true")
		}
		if backend.IsFile(config.at("readdir")) {
			t.Errorf("IsFile(dir): got true, want false")
		}
	})
	t.Run("Size", func(t *testing.T) {
		size, err := backend.Size(config.at("readdir/data.txt"))
		if err != nil {
			t.Fatalf("Size: got error %v, want nil", err)
		}
		if size != int64(len(content)) {
			t.Errorf("Size: got %d, want %d", size, len(content))
		}
	})
	t.Run("CatFile", func(t *testing.T) {
		data, err := backend.CatFile(config.at("readdir/data.txt"))
		if err != nil {
			t.Fatalf("CatFile: got error %v, want nil", err)
		}
		if !bytes.Equal(data, content) {
			t.Errorf("CatFile: got %q, want %q", data, content)
		}
	})
	t.Run("OpenRead", func(t *testing.T) {
		f, err := backend.Open(config.at("readdir/data.txt"), os.O_RDONLY)
		if err != nil {
			t.Fatalf("Open: got error %v, want nil", err)
		}
		defer func() { _ = f.Close() }()
		data, err := io.ReadAll(f)
		if err != nil {
			t.Fatalf("ReadAll: got error %v, want nil", err)
		}
		if !bytes.Equal(data, content) {
			t.Errorf("Open/Read: got %q, want %q", data, content)
		}
	})
	t.Run("OpenNotExist", func(t *testing.T) {
		f, err := backend.Open(config.at("missing"), os.O_RDONLY)
		if err == nil {
			_ = f.Close()
		}
		if !errors.Is(err, core.ErrNotExist) {
			t.Errorf("Open(missing): got error %v, want ErrNotExist", err)
		}
	})
	t.Run("Head", func(t *testing.T) {
		data, err := backend.Head(config.at("readdir/data.txt"), 4)
		if err != nil {
			t.Fatalf("Head: got error %v, want nil", err)
		}
		if !bytes.Equal(data, content[:4]) {
			t.Errorf("Head: got %q, want %q", data, content[:4])
		}
	})
	t.Run("Tail", func(t *testing.T) {
		data, err := backend.Tail(config.at("readdir/data.txt"), 7)
		if err != nil {
			t.Fatalf("Tail: got error %v, want nil", err)
		}
		if !bytes.Equal(data, content[len(content)-7:]) {
			t.Errorf("Tail: got %q, want %q", data, content[len(content)-7:])
		}
	})
	t.Run("ReadBlock", func(t *testing.T) {
		data, err := backend.ReadBlock(config.at("readdir/data.txt"), 12, 4)
		if err != nil {
			t.Fatalf("ReadBlock: got error %v, want nil", err)
		}
		if !bytes.Equal(data, content[12:16]) {
			t.Errorf("ReadBlock: got %q, want %q", data, content[12:16])
		}
	})
	t.Run("Checksum", func(t *testing.T) {
		sum, err := backend.Checksum(config.at("readdir/data.txt"))
		if err != nil {
			t.Fatalf("Checksum: got error %v, want nil", err)
		}
		if sum == "" {
			t.Errorf("Checksum: got empty string")
		}
	})
	t.Run("Modified", func(t *testing.T) {
		mt, err := backend.Modified(config.at("readdir/data.txt"))
		if err != nil {
			t.Fatalf("Modified: got error %v, want nil", err)
		}
		if mt.IsZero() {
			t.Errorf("Modified: got zero time")
		}
	})
}
