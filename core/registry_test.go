package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBackend is the minimal Backend used to exercise the registry. Every
// operation fails with ErrUnsupported; the registry only cares about
// identity and construction counts.
type stubBackend struct {
	id int
}

func (s *stubBackend) Protocols() []string                 { return []string{"stub", "stub2"} }
func (s *stubBackend) Sep() string                         { return "/" }
func (s *stubBackend) UnstripProtocol(path string) string  { return "stub://" + path }
func (s *stubBackend) Exists(string) (bool, error)         { return false, ErrUnsupported }
func (s *stubBackend) Info(p string) (*Entry, error)       { return nil, PathError("info", p, ErrUnsupported) }
func (s *stubBackend) IsDir(string) bool                   { return false }
func (s *stubBackend) IsFile(string) bool                  { return false }
func (s *stubBackend) Size(string) (int64, error)          { return 0, ErrUnsupported }
func (s *stubBackend) Checksum(string) (string, error)     { return "", ErrUnsupported }
func (s *stubBackend) UKey(string) (string, error)         { return "", ErrUnsupported }
func (s *stubBackend) Modified(string) (time.Time, error)  { return time.Time{}, ErrUnsupported }
func (s *stubBackend) Created(string) (time.Time, error)   { return time.Time{}, ErrUnsupported }
func (s *stubBackend) Ls(string) ([]*Entry, error)         { return nil, ErrUnsupported }
func (s *stubBackend) Find(string, FindOptions) ([]string, error) {
	return nil, ErrUnsupported
}
func (s *stubBackend) Glob(string) ([]string, error)  { return nil, ErrUnsupported }
func (s *stubBackend) Walk(string, int, WalkFunc) error { return ErrUnsupported }
func (s *stubBackend) ExpandPath(string, ExpandOptions) ([]string, error) {
	return nil, ErrUnsupported
}
func (s *stubBackend) Du(string, int) (map[string]int64, error) { return nil, ErrUnsupported }
func (s *stubBackend) Open(string, int) (File, error)           { return nil, ErrUnsupported }
func (s *stubBackend) CatFile(string) ([]byte, error)           { return nil, ErrUnsupported }
func (s *stubBackend) PipeFile(string, []byte) error            { return ErrUnsupported }
func (s *stubBackend) ReadBlock(string, int64, int64) ([]byte, error) {
	return nil, ErrUnsupported
}
func (s *stubBackend) Head(string, int64) ([]byte, error)       { return nil, ErrUnsupported }
func (s *stubBackend) Tail(string, int64) ([]byte, error)       { return nil, ErrUnsupported }
func (s *stubBackend) Touch(string, bool) error                 { return ErrUnsupported }
func (s *stubBackend) Mkdir(string, bool) error                 { return ErrUnsupported }
func (s *stubBackend) Makedirs(string, bool) error              { return ErrUnsupported }
func (s *stubBackend) Rm(string, RmOptions) error               { return ErrUnsupported }
func (s *stubBackend) RmFile(string) error                      { return ErrUnsupported }
func (s *stubBackend) Rmdir(string) error                       { return ErrUnsupported }
func (s *stubBackend) Mv(string, string, TransferOptions) error { return ErrUnsupported }
func (s *stubBackend) Copy(string, string, TransferOptions) error {
	return ErrUnsupported
}
func (s *stubBackend) Put(string, string, TransferOptions) error { return ErrUnsupported }
func (s *stubBackend) Get(string, string, TransferOptions) error { return ErrUnsupported }
func (s *stubBackend) InvalidateCache(string)                    {}

var _ Backend = (*stubBackend)(nil)

var stubCount int

func init() {
	Register(func(Options) (Backend, error) {
		stubCount++
		return &stubBackend{id: stubCount}, nil
	}, "stub", "stub2")
}

func TestSplitProtocol(t *testing.T) {
	tests := []struct {
		in       string
		protocol string
		rest     string
	}{
		{"s3://bucket/key.txt", "s3", "bucket/key.txt"},
		{"file:///etc/hosts", "file", "/etc/hosts"},
		{"/etc/hosts", "", "/etc/hosts"},
		{"relative/path", "", "relative/path"},
		{"memory://", "memory", ""},
	}
	for _, tt := range tests {
		protocol, rest := SplitProtocol(tt.in)
		assert.Equal(t, tt.protocol, protocol, "SplitProtocol(%q)", tt.in)
		assert.Equal(t, tt.rest, rest, "SplitProtocol(%q)", tt.in)
	}
}

func TestResolveUnknownProtocol(t *testing.T) {
	_, _, err := Resolve("nosuch://x", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownProtocol)
}

func TestResolveInstanceCache(t *testing.T) {
	ClearInstanceCache()

	b1, rest, err := Resolve("stub://a/b", Options{})
	require.NoError(t, err)
	assert.Equal(t, "a/b", rest)

	// Same scheme and options share the instance.
	b2, _, err := Resolve("stub://c", Options{})
	require.NoError(t, err)
	assert.Same(t, b1, b2)

	// Aliases of one registration share the instance too.
	b3, _, err := Resolve("stub2://c", Options{})
	require.NoError(t, err)
	assert.Same(t, b1, b3)

	// Different options get a distinct instance.
	b4, _, err := Resolve("stub://c", Options{Endpoint: "localhost:9000"})
	require.NoError(t, err)
	assert.NotSame(t, b1, b4)

	// Clearing the cache forces fresh construction.
	ClearInstanceCache()
	b5, _, err := Resolve("stub://c", Options{})
	require.NoError(t, err)
	assert.NotSame(t, b1, b5)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	assert.Panics(t, func() {
		Register(func(Options) (Backend, error) { return &stubBackend{}, nil }, "stub")
	})
	assert.Panics(t, func() {
		Register(func(Options) (Backend, error) { return &stubBackend{}, nil })
	})
}

func TestRegisteredProtocols(t *testing.T) {
	protocols := RegisteredProtocols()
	assert.Contains(t, protocols, "stub")
	assert.Contains(t, protocols, "stub2")
}

func TestPathError(t *testing.T) {
	assert.NoError(t, PathError("op", "p", nil))

	err := PathError("touch", "/tmp/x", ErrExist)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExist)
	assert.Contains(t, err.Error(), "touch")
	assert.Contains(t, err.Error(), "/tmp/x")

	err = PathErrorf("open", "k", "%w: flag", ErrUnsupported)
	assert.ErrorIs(t, err, ErrUnsupported)
}
