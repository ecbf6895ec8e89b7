package fstest

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/roy-ht/pathlibfs/core"
)

// TestListOps tests the listing contract: Ls, Find, Glob, Walk, Du and
// ExpandPath over a small fixed tree.
func TestListOps(t *testing.T, backend core.Backend, config Config) {
	// tree/
	//   a.txt
	//   b.csv
	//   sub/
	//     c.txt
	//     deep/
	//       d.txt
	seed := map[string]string{
		"tree/a.txt":          "aaaa",
		"tree/b.csv":          "bb",
		"tree/sub/c.txt":      "cccccc",
		"tree/sub/deep/d.txt": "d",
	}
	for p, content := range seed {
		if err := backend.PipeFile(config.at(p), []byte(content)); err != nil {
			t.Fatalf("PipeFile(%s): setup failed: %v", p, err)
		}
	}

	// hasSuffix matches a listed path against a test-relative one without
	// assuming how the backend spells its absolute form.
	hasSuffix := func(paths []string, rel string) bool {
		for _, p := range paths {
			if p == rel || strings.HasSuffix(p, "/"+rel) {
				return true
			}
		}
		return false
	}

	t.Run("Ls", func(t *testing.T) {
		entries, err := backend.Ls(config.at("tree"))
		if err != nil {
			t.Fatalf("Ls: got error %v, want nil", err)
		}
		var names []string
		dirs := 0
		for _, e := range entries {
			names = append(names, e.Name())
			if e.IsDir() {
				dirs++
			}
		}
		if len(entries) != 3 {
			t.Fatalf("Ls: got %d entries (%v), want 3", len(entries), names)
		}
		if dirs != 1 {
			t.Errorf("Ls: got %d directory entries, want 1", dirs)
		}
	})
	t.Run("LsFile", func(t *testing.T) {
		entries, err := backend.Ls(config.at("tree/a.txt"))
		if err != nil {
			t.Fatalf("Ls(file): got error %v, want nil", err)
		}
		if len(entries) != 1 || entries[0].Name() != "a.txt" {
			t.Errorf("Ls(file): got %v, want the file itself", entries)
		}
	})
	t.Run("LsNotExist", func(t *testing.T) {
		_, err := backend.Ls(config.at("tree/missing"))
		if err == nil {
			t.Errorf("Ls(missing): got nil error, want ErrNotExist")
		}
	})
	t.Run("Find", func(t *testing.T) {
		paths, err := backend.Find(config.at("tree"), core.FindOptions{})
		if err != nil {
			t.Fatalf("Find: got error %v, want nil", err)
		}
		for _, rel := range []string{"tree/a.txt", "tree/b.csv", "tree/sub/c.txt", "tree/sub/deep/d.txt"} {
			if !hasSuffix(paths, rel) {
				t.Errorf("Find: missing %s in %v", rel, paths)
			}
		}
	})
	t.Run("FindMaxDepth", func(t *testing.T) {
		paths, err := backend.Find(config.at("tree"), core.FindOptions{MaxDepth: 1})
		if err != nil {
			t.Fatalf("Find: got error %v, want nil", err)
		}
		if !hasSuffix(paths, "tree/a.txt") {
			t.Errorf("Find(depth 1): missing tree/a.txt in %v", paths)
		}
		if hasSuffix(paths, "tree/sub/c.txt") {
			t.Errorf("Find(depth 1): unexpected tree/sub/c.txt in %v", paths)
		}
	})
	t.Run("FindWithDirs", func(t *testing.T) {
		paths, err := backend.Find(config.at("tree"), core.FindOptions{WithDirs: true})
		if err != nil {
			t.Fatalf("Find: got error %v, want nil", err)
		}
		if !hasSuffix(paths, "tree/sub") {
			t.Errorf("Find(with dirs): missing tree/sub in %v", paths)
		}
	})
	t.Run("GlobStar", func(t *testing.T) {
		paths, err := backend.Glob(config.at("tree/*.txt"))
		if err != nil {
			t.Fatalf("Glob: got error %v, want nil", err)
		}
		if !hasSuffix(paths, "tree/a.txt") || hasSuffix(paths, "tree/b.csv") {
			t.Errorf("Glob(*.txt): got %v", paths)
		}
		if hasSuffix(paths, "tree/sub/c.txt") {
			t.Errorf("Glob(*.txt): matched across separator: %v", paths)
		}
	})
	t.Run("GlobDoubleStar", func(t *testing.T) {
		paths, err := backend.Glob(config.at("tree/**/*.txt"))
		if err != nil {
			t.Fatalf("Glob: got error %v, want nil", err)
		}
		if !hasSuffix(paths, "tree/sub/c.txt") || !hasSuffix(paths, "tree/sub/deep/d.txt") {
			t.Errorf("Glob(**): got %v", paths)
		}
	})
	t.Run("Walk", func(t *testing.T) {
		visited := map[string][]string{}
		err := backend.Walk(config.at("tree"), 0, func(dir string, dirs, files []string) error {
			visited[dir] = files
			return nil
		})
		if err != nil {
			t.Fatalf("Walk: got error %v, want nil", err)
		}
		if len(visited) != 3 {
			t.Errorf("Walk: visited %d directories, want 3: %v", len(visited), visited)
		}
	})
	t.Run("WalkSkipDir", func(t *testing.T) {
		var dirsSeen int
		err := backend.Walk(config.at("tree"), 0, func(dir string, dirs, files []string) error {
			dirsSeen++
			if strings.HasSuffix(dir, "/sub") || strings.HasSuffix(dir, "tree/sub") {
				return fs.SkipDir
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Walk: got error %v, want nil", err)
		}
		if dirsSeen != 2 {
			t.Errorf("Walk with SkipDir: visited %d directories, want 2", dirsSeen)
		}
	})
	t.Run("WalkMaxDepth", func(t *testing.T) {
		var dirsSeen int
		err := backend.Walk(config.at("tree"), 1, func(dir string, dirs, files []string) error {
			dirsSeen++
			return nil
		})
		if err != nil {
			t.Fatalf("Walk: got error %v, want nil", err)
		}
		if dirsSeen != 1 {
			t.Errorf("Walk(depth 1): visited %d directories, want 1", dirsSeen)
		}
	})
	t.Run("Du", func(t *testing.T) {
		sizes, err := backend.Du(config.at("tree"), 0)
		if err != nil {
			t.Fatalf("Du: got error %v, want nil", err)
		}
		var total int64
		for _, s := range sizes {
			total += s
		}
		if total != 13 {
			t.Errorf("Du: total = %d, want 13 (%v)", total, sizes)
		}
	})
	t.Run("ExpandPathGlob", func(t *testing.T) {
		paths, err := backend.ExpandPath(config.at("tree/*.txt"), core.ExpandOptions{})
		if err != nil {
			t.Fatalf("ExpandPath: got error %v, want nil", err)
		}
		if !hasSuffix(paths, "tree/a.txt") {
			t.Errorf("ExpandPath: got %v", paths)
		}
	})
	t.Run("ExpandPathRecursive", func(t *testing.T) {
		paths, err := backend.ExpandPath(config.at("tree"), core.ExpandOptions{Recursive: true})
		if err != nil {
			t.Fatalf("ExpandPath: got error %v, want nil", err)
		}
		if !hasSuffix(paths, "tree/sub/deep/d.txt") {
			t.Errorf("ExpandPath(recursive): got %v", paths)
		}
	})
}
