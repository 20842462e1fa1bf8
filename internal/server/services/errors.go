package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophnotes/internal/common"
)

// known are the sentinels that already carry meaning for callers.
var known = []error{
	common.ErrNotFound,
	common.ErrAlreadyExists,
	common.ErrInvalidCredentials,
	common.ErrDuplicateUsername,
	common.ErrForbidden,
	common.ErrRateLimited,
	common.ErrValidation,
	common.ErrStorageUnavailable,
	common.ErrInternal,
}

// storageErr passes taxonomy errors through and reports anything else from
// the storage layer as a transient outage.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, k := range known {
		if errors.Is(err, k) {
			return err
		}
	}
	return fmt.Errorf("%w: %s: %v", common.ErrStorageUnavailable, op, err)
}
