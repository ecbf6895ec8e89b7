// Package fstest provides a conformance test suite for validating backend
// implementations against the core.Backend contract.
//
// Backend packages import it and run the suite against a fresh backend per
// test group:
//
//	func TestConformance(t *testing.T) {
//	    fstest.TestSuite(t, func() core.Backend {
//	        return memory.New()
//	    })
//	}
//
// The suite validates the contract, not backend-specific behavior; the
// Config struct describes the documented differences (virtual directories,
// bucket namespaces) so the same tests fit every backend.
package fstest

import (
	"testing"

	"github.com/roy-ht/pathlibfs/core"
)

// Config adapts the suite to backend behavior characteristics.
type Config struct {
	// BasePath is prepended to every test path. Object-store backends set
	// it to a bucket that the newBackend function has created.
	BasePath string

	// VirtualDirectories indicates directories are prefixes derived from
	// keys: they appear when children exist and cannot hold local-style
	// permission or time metadata.
	VirtualDirectories bool

	// SkipTests lists test names to skip, as "Group/SubTest".
	SkipTests []string
}

// POSIXConfig returns the configuration for hierarchical backends.
func POSIXConfig() Config {
	return Config{}
}

// ObjectStoreConfig returns the configuration for flat bucket/key
// backends, rooting all test paths in the given bucket.
func ObjectStoreConfig(bucket string) Config {
	return Config{
		BasePath:           bucket,
		VirtualDirectories: true,
	}
}

// TestSuite runs all conformance tests with POSIX behavior. newBackend
// must return a fresh, empty backend; tests create and remove files.
func TestSuite(t *testing.T, newBackend func() core.Backend) {
	TestSuiteWithConfig(t, newBackend, POSIXConfig())
}

// TestSuiteWithConfig runs all conformance tests with explicit behavior
// configuration.
func TestSuiteWithConfig(t *testing.T, newBackend func() core.Backend, config Config) {
	shouldSkip := func(name string) bool {
		for _, skip := range config.SkipTests {
			if skip == name {
				return true
			}
		}
		return false
	}

	groups := []struct {
		name string
		run  func(*testing.T, core.Backend, Config)
	}{
		{"ReadOps", TestReadOps},
		{"WriteOps", TestWriteOps},
		{"ListOps", TestListOps},
		{"ManageOps", TestManageOps},
		{"TransferOps", TestTransferOps},
	}
	for _, group := range groups {
		t.Run(group.name, func(t *testing.T) {
			if shouldSkip(group.name) {
				t.Skip("skipped by backend configuration")
				return
			}
			group.run(t, newBackend(), config)
		})
	}
}

// at joins the configured base path with a test-relative path.
func (c Config) at(p string) string {
	if c.BasePath == "" {
		return p
	}
	if p == "" {
		return c.BasePath
	}
	return c.BasePath + "/" + p
}
