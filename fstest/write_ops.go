package fstest

import (
	"bytes"
	"os"
	"testing"

	"github.com/roy-ht/pathlibfs/core"
)

// TestWriteOps tests the write-side contract: PipeFile, Open in write
// mode, Touch and UKey change tracking.
func TestWriteOps(t *testing.T, backend core.Backend, config Config) {
	t.Run("PipeFileRoundTrip", func(t *testing.T) {
		content := []byte("written through pipe_file")
		if err := backend.PipeFile(config.at("writedir/piped.txt"), content); err != nil {
			t.Fatalf("PipeFile: got error %v, want nil", err)
		}
		data, err := backend.CatFile(config.at("writedir/piped.txt"))
		if err != nil {
			t.Fatalf("CatFile: got error %v, want nil", err)
		}
		if !bytes.Equal(data, content) {
			t.Errorf("round trip: got %q, want %q", data, content)
		}
	})
	t.Run("PipeFileOverwrite", func(t *testing.T) {
		p := config.at("writedir/overwrite.txt")
		if err := backend.PipeFile(p, []byte("first")); err != nil {
			t.Fatalf("PipeFile: got error %v, want nil", err)
		}
		if err := backend.PipeFile(p, []byte("second")); err != nil {
			t.Fatalf("PipeFile: got error %v, want nil", err)
		}
		data, err := backend.CatFile(p)
		if err != nil {
			t.Fatalf("CatFile: got error %v, want nil", err)
		}
		if string(data) != "second" {
			t.Errorf("overwrite: got %q, want %q", data, "second")
		}
	})
	t.Run("OpenWrite", func(t *testing.T) {
		p := config.at("writedir/opened.txt")
		f, err := backend.Open(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
		if err != nil {
			t.Fatalf("Open: got error %v, want nil", err)
		}
		if _, err := f.Write([]byte("part one ")); err != nil {
			t.Fatalf("Write: got error %v, want nil", err)
		}
		if _, err := f.Write([]byte("part two")); err != nil {
			t.Fatalf("Write: got error %v, want nil", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("Close: got error %v, want nil", err)
		}
		data, err := backend.CatFile(p)
		if err != nil {
			t.Fatalf("CatFile: got error %v, want nil", err)
		}
		if string(data) != "part one part two" {
			t.Errorf("Open/Write: got %q, want %q", data, "part one part two")
		}
	})
	t.Run("TouchCreates", func(t *testing.T) {
		p := config.at("writedir/touched.txt")
		if err := backend.Touch(p, false); err != nil {
			t.Fatalf("Touch: got error %v, want nil", err)
		}
		size, err := backend.Size(p)
		if err != nil {
			t.Fatalf("Size: got error %v, want nil", err)
		}
		if size != 0 {
			t.Errorf("Touch: size = %d, want 0", size)
		}
	})
	t.Run("TouchKeepsContent", func(t *testing.T) {
		p := config.at("writedir/kept.txt")
		if err := backend.PipeFile(p, []byte("keep me")); err != nil {
			t.Fatalf("PipeFile: got error %v, want nil", err)
		}
		if err := backend.Touch(p, false); err != nil {
			t.Fatalf("Touch: got error %v, want nil", err)
		}
		data, err := backend.CatFile(p)
		if err != nil {
			t.Fatalf("CatFile: got error %v, want nil", err)
		}
		if string(data) != "keep me" {
			t.Errorf("Touch without truncate: got %q, want %q", data, "keep me")
		}
	})
	t.Run("TouchTruncates", func(t *testing.T) {
		p := config.at("writedir/truncated.txt")
		if err := backend.PipeFile(p, []byte("about to vanish")); err != nil {
			t.Fatalf("PipeFile: got error %v, want nil", err)
		}
		if err := backend.Touch(p, true); err != nil {
			t.Fatalf("Touch: got error %v, want nil", err)
		}
		size, err := backend.Size(p)
		if err != nil {
			t.Fatalf("Size: got error %v, want nil", err)
		}
		if size != 0 {
			t.Errorf("Touch with truncate: size = %d, want 0", size)
		}
	})
	t.Run("UKeyChanges", func(t *testing.T) {
		p := config.at("writedir/ukey.txt")
		if err := backend.PipeFile(p, []byte("version one")); err != nil {
			t.Fatalf("PipeFile: got error %v, want nil", err)
		}
		k1, err := backend.UKey(p)
		if err != nil {
			t.Fatalf("UKey: got error %v, want nil", err)
		}
		if err := backend.PipeFile(p, []byte("version two, longer")); err != nil {
			t.Fatalf("PipeFile: got error %v, want nil", err)
		}
		k2, err := backend.UKey(p)
		if err != nil {
			t.Fatalf("UKey: got error %v, want nil", err)
		}
		if k1 == k2 {
			t.Errorf("UKey: unchanged across content change: %q", k1)
		}
	})
}
