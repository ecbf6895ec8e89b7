package s3

import (
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roy-ht/pathlibfs/core"
)

func testBackend(t *testing.T) *S3 {
	t.Helper()
	s, err := New(core.Options{
		Endpoint:   "localhost:9000",
		AccessKey:  "minioadmin",
		SecretKey:  "minioadmin",
		DisableSSL: true,
	})
	require.NoError(t, err)
	return s
}

func TestSplitJoin(t *testing.T) {
	tests := []struct {
		p      string
		bucket string
		key    string
	}{
		{"bucket/a/b.txt", "bucket", "a/b.txt"},
		{"bucket", "bucket", ""},
		{"bucket/", "bucket", ""},
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
	s := testBackend(t)
	assert.Equal(t, []string{"s3", "s3a"}, s.Protocols())
	assert.Equal(t, "/", s.Sep())
	assert.Equal(t, "s3://bucket/key.txt", s.UnstripProtocol("bucket/key.txt"))
	assert.Equal(t, "s3://bucket/key.txt", s.UnstripProtocol("/bucket/key.txt"))
}

func TestNewEndpointParsing(t *testing.T) {
	s, err := New(core.Options{
		Endpoint:  "https://play.min.io",
		AccessKey: "a",
		SecretKey: "b",
	})
	require.NoError(t, err)
	u := s.Client().EndpointURL()
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "play.min.io", u.Host)

	s, err = New(core.Options{
		Endpoint:  "http://localhost:9000",
		AccessKey: "a",
		SecretKey: "b",
	})
	require.NoError(t, err)
	u = s.Client().EndpointURL()
	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "localhost:9000", u.Host)
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{"NoSuchKey", core.ErrNotExist},
		{"NoSuchBucket", core.ErrNotExist},
		{"BucketAlreadyOwnedByYou", core.ErrExist},
		{"BucketAlreadyExists", core.ErrExist},
		{"AccessDenied", core.ErrPermission},
	}
	for _, tt := range tests {
		err := translate(minio.ErrorResponse{Code: tt.code, Message: tt.code})
		assert.ErrorIs(t, err, tt.want, "code %s", tt.code)
	}

	assert.NoError(t, translate(nil))

	other := errors.New("wire broke")
	got := translate(other)
	assert.ErrorIs(t, got, other)
}

func TestCredentialCache(t *testing.T) {
	opts := core.Options{
		AccessKey:        "ak",
		SecretKey:        "sk",
		CacheCredentials: true,
	}
	c1 := credentialsFor(opts)
	c2 := credentialsFor(opts)
	assert.Same(t, c1, c2, "identical options must share the chain")

	opts.AccessKey = "other"
	c3 := credentialsFor(opts)
	assert.NotSame(t, c1, c3)

	// Without caching every call builds a fresh chain.
	opts.CacheCredentials = false
	c4 := credentialsFor(opts)
	c5 := credentialsFor(opts)
	assert.NotSame(t, c4, c5)
}
