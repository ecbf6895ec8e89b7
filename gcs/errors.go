package gcs

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"

	"github.com/roy-ht/pathlibfs/core"
)

// translate converts googleapi error responses to the shared sentinels so
// callers can match with errors.Is regardless of backend.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		switch gErr.Code {
		case 404:
			return core.ErrNotExist
		case 403:
			return core.ErrPermission
		case 409:
			return core.ErrExist
		}
	}
	return fmt.Errorf("gcs: %w", err)
}
