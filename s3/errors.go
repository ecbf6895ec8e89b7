package s3

import (
	"fmt"

	"github.com/minio/minio-go/v7"

	"github.com/roy-ht/pathlibfs/core"
)

// translate converts MinIO error responses to the shared sentinels so
// callers can match with errors.Is regardless of backend.
func translate(err error) error {
	if err == nil {
		return nil
	}

	errResp := minio.ToErrorResponse(err)

	switch errResp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return core.ErrNotExist
	case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
		return core.ErrExist
	case "AccessDenied":
		return core.ErrPermission
	}

	return fmt.Errorf("s3: %w", err)
}
