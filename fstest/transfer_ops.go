package fstest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/roy-ht/pathlibfs/core"
)

// TestTransferOps tests the local-disk transfer contract: Put uploads the
// exact local path given, Get downloads to the exact local path given,
// both for single files and trees.
func TestTransferOps(t *testing.T, backend core.Backend, config Config) {
	t.Run("PutFile", func(t *testing.T) {
		local := filepath.Join(t.TempDir(), "up.txt")
		if err := os.WriteFile(local, []byte("uploaded"), 0o644); err != nil {
			t.Fatalf("WriteFile: setup failed: %v", err)
		}
		if err := backend.Put(local, config.at("xfer/up.txt"), core.TransferOptions{}); err != nil {
			t.Fatalf("Put: got error %v, want nil", err)
		}
		data, err := backend.CatFile(config.at("xfer/up.txt"))
		if err != nil {
			t.Fatalf("CatFile: got error %v, want nil", err)
		}
		if string(data) != "uploaded" {
			t.Errorf("Put: got %q, want %q", data, "uploaded")
		}
	})
	t.Run("PutTree", func(t *testing.T) {
		root := t.TempDir()
		if err := os.MkdirAll(filepath.Join(root, "inner"), 0o755); err != nil {
			t.Fatalf("MkdirAll: setup failed: %v", err)
		}
		if err := os.WriteFile(filepath.Join(root, "inner", "leaf.txt"), []byte("leaf"), 0o644); err != nil {
			t.Fatalf("WriteFile: setup failed: %v", err)
		}
		err := backend.Put(root, config.at("xfer/tree"), core.TransferOptions{Recursive: true})
		if err != nil {
			t.Fatalf("Put(tree): got error %v, want nil", err)
		}
		data, err := backend.CatFile(config.at("xfer/tree/inner/leaf.txt"))
		if err != nil {
			t.Fatalf("CatFile: got error %v, want nil", err)
		}
		if string(data) != "leaf" {
			t.Errorf("Put(tree): got %q, want %q", data, "leaf")
		}
	})
	t.Run("GetFile", func(t *testing.T) {
		if err := backend.PipeFile(config.at("xfer/down.txt"), []byte("downloaded")); err != nil {
			t.Fatalf("PipeFile: setup failed: %v", err)
		}
		local := filepath.Join(t.TempDir(), "down.txt")
		if err := backend.Get(config.at("xfer/down.txt"), local, core.TransferOptions{}); err != nil {
			t.Fatalf("Get: got error %v, want nil", err)
		}
		data, err := os.ReadFile(local)
		if err != nil {
			t.Fatalf("ReadFile: got error %v, want nil", err)
		}
		if string(data) != "downloaded" {
			t.Errorf("Get: got %q, want %q", data, "downloaded")
		}
	})
	t.Run("GetTree", func(t *testing.T) {
		if err := backend.PipeFile(config.at("xfer/dtree/a/b.txt"), []byte("deep")); err != nil {
			t.Fatalf("PipeFile: setup failed: %v", err)
		}
		local := filepath.Join(t.TempDir(), "dtree")
		err := backend.Get(config.at("xfer/dtree"), local, core.TransferOptions{Recursive: true})
		if err != nil {
			t.Fatalf("Get(tree): got error %v, want nil", err)
		}
		data, err := os.ReadFile(filepath.Join(local, "a", "b.txt"))
		if err != nil {
			t.Fatalf("ReadFile: got error %v, want nil", err)
		}
		if string(data) != "deep" {
			t.Errorf("Get(tree): got %q, want %q", data, "deep")
		}
	})
}
