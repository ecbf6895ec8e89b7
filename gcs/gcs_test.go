package gcs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/roy-ht/pathlibfs/core"
)

func testBackend(t *testing.T) *GCS {
	t.Helper()
	g, err := New(core.Options{
		Anonymous: true,
		Endpoint:  "http://localhost:4443/storage/v1/",
	})
	require.NoError(t, err)
	return g
}

func TestSplitJoin(t *testing.T) {
	tests := []struct {
		p      string
		bucket string
		key    string
	}{
		{"bucket/a/b.txt", "bucket", "a/b.txt"},
		{"bucket", "bucket", ""},
		{"/bucket/key", "bucket", "key"},
		{"", "", ""},
	}
	for _, tt := range tests {
		bucket, key := split(tt.p)
		assert.Equal(t, tt.bucket, bucket, "split(%q)", tt.p)
		assert.Equal(t, tt.key, key, "split(%q)", tt.p)
	}

	assert.Equal(t, "bucket/a/b.txt", join("bucket", "a/b.txt"))
	assert.Equal(t, "bucket", join("bucket", ""))
}

func TestProtocols(t *testing.T) {
	g := testBackend(t)
	assert.Equal(t, []string{"gs", "gcs"}, g.Protocols())
	assert.Equal(t, "/", g.Sep())
	assert.Equal(t, "gs://bucket/key.txt", g.UnstripProtocol("bucket/key.txt"))
	assert.Equal(t, "gs://bucket/key.txt", g.UnstripProtocol("/bucket/key.txt"))
	assert.Equal(t, "http://localhost:4443/storage/v1/", g.Service().BasePath)
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{404, core.ErrNotExist},
		{403, core.ErrPermission},
		{409, core.ErrExist},
	}
	for _, tt := range tests {
		err := translate(&googleapi.Error{Code: tt.code})
		assert.ErrorIs(t, err, tt.want, "status %d", tt.code)
	}

	assert.NoError(t, translate(nil))

	other := errors.New("wire broke")
	assert.ErrorIs(t, translate(other), other)
}
