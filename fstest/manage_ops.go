package fstest

import (
	"errors"
	"testing"

	"github.com/roy-ht/pathlibfs/core"
)

// TestManageOps tests the management contract: Mkdir, Makedirs, Rm,
// RmFile, Rmdir, Mv and same-backend Copy.
func TestManageOps(t *testing.T, backend core.Backend, config Config) {
	t.Run("MakedirsAndExists", func(t *testing.T) {
		if err := backend.Makedirs(config.at("made/a/b"), false); err != nil {
			t.Fatalf("Makedirs: got error %v, want nil", err)
		}
		ok, err := backend.Exists(config.at("made/a/b"))
		if err != nil {
			t.Fatalf("Exists: got error %v, want nil", err)
		}
		if !ok {
			t.Errorf("Makedirs: created directory does not exist")
		}
	})
	t.Run("MakedirsExistOK", func(t *testing.T) {
		p := config.at("made/again")
		if err := backend.Makedirs(p, false); err != nil {
			t.Fatalf("Makedirs: got error %v, want nil", err)
		}
		if err := backend.Makedirs(p, true); err != nil {
			t.Errorf("Makedirs(existOK): got error %v, want nil", err)
		}
		if err := backend.Makedirs(p, false); !errors.Is(err, core.ErrExist) {
			t.Errorf("Makedirs(existing): got error %v, want ErrExist", err)
		}
	})
	t.Run("RmFile", func(t *testing.T) {
		p := config.at("manage/doomed.txt")
		if err := backend.PipeFile(p, []byte("x")); err != nil {
			t.Fatalf("PipeFile: setup failed: %v", err)
		}
		if err := backend.RmFile(p); err != nil {
			t.Fatalf("RmFile: got error %v, want nil", err)
		}
		ok, err := backend.Exists(p)
		if err != nil {
			t.Fatalf("Exists: got error %v, want nil", err)
		}
		if ok {
			t.Errorf("RmFile: file still exists")
		}
	})
	t.Run("RmdirNonEmptyFails", func(t *testing.T) {
		if err := backend.PipeFile(config.at("manage/full/inner.txt"), []byte("x")); err != nil {
			t.Fatalf("PipeFile: setup failed: %v", err)
		}
		if err := backend.Rmdir(config.at("manage/full")); err == nil {
			t.Errorf("Rmdir(non-empty): got nil error, want failure")
		}
		ok, err := backend.Exists(config.at("manage/full/inner.txt"))
		if err != nil || !ok {
			t.Errorf("Rmdir(non-empty): contents disturbed (exists=%v, err=%v)", ok, err)
		}
	})
	t.Run("RmRecursive", func(t *testing.T) {
		if err := backend.PipeFile(config.at("manage/prune/a/b.txt"), []byte("x")); err != nil {
			t.Fatalf("PipeFile: setup failed: %v", err)
		}
		if err := backend.Rm(config.at("manage/prune"), core.RmOptions{Recursive: true}); err != nil {
			t.Fatalf("Rm(recursive): got error %v, want nil", err)
		}
		ok, err := backend.Exists(config.at("manage/prune/a/b.txt"))
		if err != nil {
			t.Fatalf("Exists: got error %v, want nil", err)
		}
		if ok {
			t.Errorf("Rm(recursive): contents survived")
		}
	})
	t.Run("RmDirWithoutRecursiveFails", func(t *testing.T) {
		if err := backend.PipeFile(config.at("manage/keep/a.txt"), []byte("x")); err != nil {
			t.Fatalf("PipeFile: setup failed: %v", err)
		}
		if err := backend.Rm(config.at("manage/keep"), core.RmOptions{}); err == nil {
			t.Errorf("Rm(dir, non-recursive): got nil error, want failure")
		}
	})
	t.Run("MvFile", func(t *testing.T) {
		src := config.at("manage/mv-src.txt")
		dst := config.at("manage/mv-dst.txt")
		if err := backend.PipeFile(src, []byte("moving")); err != nil {
			t.Fatalf("PipeFile: setup failed: %v", err)
		}
		if err := backend.Mv(src, dst, core.TransferOptions{}); err != nil {
			t.Fatalf("Mv: got error %v, want nil", err)
		}
		if ok, _ := backend.Exists(src); ok {
			t.Errorf("Mv: source still exists")
		}
		data, err := backend.CatFile(dst)
		if err != nil {
			t.Fatalf("CatFile: got error %v, want nil", err)
		}
		if string(data) != "moving" {
			t.Errorf("Mv: got %q, want %q", data, "moving")
		}
	})
	t.Run("CopyFile", func(t *testing.T) {
		src := config.at("manage/cp-src.txt")
		dst := config.at("manage/cp-dst.txt")
		if err := backend.PipeFile(src, []byte("copied")); err != nil {
			t.Fatalf("PipeFile: setup failed: %v", err)
		}
		if err := backend.Copy(src, dst, core.TransferOptions{}); err != nil {
			t.Fatalf("Copy: got error %v, want nil", err)
		}
		for _, p := range []string{src, dst} {
			data, err := backend.CatFile(p)
			if err != nil {
				t.Fatalf("CatFile(%s): got error %v, want nil", p, err)
			}
			if string(data) != "copied" {
				t.Errorf("Copy: %s = %q, want %q", p, data, "copied")
			}
		}
	})
	t.Run("CopyTree", func(t *testing.T) {
		if err := backend.PipeFile(config.at("manage/treecp/x/y.txt"), []byte("nested")); err != nil {
			t.Fatalf("PipeFile: setup failed: %v", err)
		}
		err := backend.Copy(config.at("manage/treecp"), config.at("manage/treecp2"),
			core.TransferOptions{Recursive: true})
		if err != nil {
			t.Fatalf("Copy(tree): got error %v, want nil", err)
		}
		data, err := backend.CatFile(config.at("manage/treecp2/x/y.txt"))
		if err != nil {
			t.Fatalf("CatFile: got error %v, want nil", err)
		}
		if string(data) != "nested" {
			t.Errorf("Copy(tree): got %q, want %q", data, "nested")
		}
	})
}
