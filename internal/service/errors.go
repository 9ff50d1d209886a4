package service

import (
	"context"
	"errors"

	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// storeError converts a store failure into a domain error. Cancellation is
// returned as is so callers can tell an aborted request from a broken store.
func storeError(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, store.ErrInvalidInput):
		return domainerrors.Wrap(err, domainerrors.CodeValidation, err.Error())
	default:
		return domainerrors.Storage(err, op)
	}
}
