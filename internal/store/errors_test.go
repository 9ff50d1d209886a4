package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

func TestError_ErrorWithCause(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := &store.Error{Kind: "not_found", Message: "not found", Err: cause}

	assert.Contains(t, err.Error(), "not found")
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.ErrorIs(t, err, cause)
}

func TestError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("update book: %w", store.ErrNotFound.WithMessage("book not found"))

	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NotErrorIs(t, err, store.ErrAlreadyExists)
}
