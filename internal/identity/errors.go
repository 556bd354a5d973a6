package identity

import (
	"errors"
	"fmt"

	"github.com/samber/oops"

	"github.com/photo-portfolio/photo_portfolio/internal/apperr"
)

// ErrUserNotFound is returned by repositories when no credential matches.
var ErrUserNotFound = fmt.Errorf("user %w", apperr.ErrNotFound)

// storeError marks err as an infrastructure failure of the given backend.
func storeError(backend, op string, err error) error {
	return oops.
		In("credential_store").
		Code("store_unavailable").
		With("backend", backend).
		With("op", op).
		Wrapf(errors.Join(apperr.ErrStoreUnavailable, err), "%s %s", backend, op)
}
