package s3

import (
	"context"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/roy-ht/pathlibfs/core"
	"github.com/roy-ht/pathlibfs/fstest"
)

// setupMinIOContainer starts a MinIO container and returns its endpoint and
// a cleanup function.
func setupMinIOContainer(t *testing.T) (string, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "minio/minio:latest",
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     "minioadmin",
			"MINIO_ROOT_PASSWORD": "minioadmin",
		},
		Cmd:        []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp"),
	}

	minioC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start MinIO container")

	endpoint, err := minioC.Endpoint(ctx, "")
	require.NoError(t, err, "failed to get container endpoint")

	return endpoint, func() { _ = minioC.Terminate(ctx) }
}

// setupBackend creates an S3 backend against the container and ensures the
// test bucket exists.
func setupBackend(t *testing.T, endpoint, bucket string) *S3 {
	t.Helper()

	s, err := New(core.Options{
		Endpoint:   endpoint,
		AccessKey:  "minioadmin",
		SecretKey:  "minioadmin",
		DisableSSL: true,
	})
	require.NoError(t, err, "failed to create backend")

	require.NoError(t, s.Makedirs(bucket, true), "failed to ensure test bucket")
	return s
}

func TestConformance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	endpoint, cleanup := setupMinIOContainer(t)
	defer cleanup()

	const bucket = "conformance-bucket"
	fstest.TestSuiteWithConfig(t, func() core.Backend {
		return setupBackend(t, endpoint, bucket)
	}, fstest.ObjectStoreConfig(bucket))
}

func TestLargeObjectStreaming(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	endpoint, cleanup := setupMinIOContainer(t)
	defer cleanup()

	s := setupBackend(t, endpoint, "large-bucket")

	// 10MB crosses the multipart threshold, so the write path switches
	// from the in-memory buffer to the streaming upload.
	data := make([]byte, 10*1024*1024)
	for i := range data {
		data[i] = byte(i % 256)
	}

	f, err := s.Open("large-bucket/big.bin", os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	require.NoError(t, err)
	n, err := f.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.NoError(t, f.Close())

	size, err := s.Size("large-bucket/big.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), size)

	got, err := s.CatFile("large-bucket/big.bin")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestSign(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	endpoint, cleanup := setupMinIOContainer(t)
	defer cleanup()

	s := setupBackend(t, endpoint, "sign-bucket")
	require.NoError(t, s.PipeFile("sign-bucket/secret.txt", []byte("signed content")))

	u, err := s.Sign("sign-bucket/secret.txt", time.Minute)
	require.NoError(t, err)

	resp, err := http.Get(u)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "signed content", string(body))
}

func TestErrorTranslation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	endpoint, cleanup := setupMinIOContainer(t)
	defer cleanup()

	s := setupBackend(t, endpoint, "err-bucket")

	_, err := s.CatFile("err-bucket/absent.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotExist)

	_, err = s.CatFile("no-such-bucket-anywhere/x.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotExist)

	ok, err := s.Exists("err-bucket/absent.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMarkerDirectories(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	endpoint, cleanup := setupMinIOContainer(t)
	defer cleanup()

	s := setupBackend(t, endpoint, "marker-bucket")

	// Mkdir on a key creates a zero-byte marker so the empty directory is
	// visible before any object lives under it.
	require.NoError(t, s.Mkdir("marker-bucket/empty", false))
	assert.True(t, s.IsDir("marker-bucket/empty"))

	require.NoError(t, s.Rmdir("marker-bucket/empty"))
	ok, err := s.Exists("marker-bucket/empty")
	require.NoError(t, err)
	assert.False(t, ok)
}
