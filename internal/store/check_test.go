package store_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

func TestCheckBook(t *testing.T) {
	now := time.Now()
	valid := func() *domain.Book {
		return &domain.Book{
			ID: "book-1", UserID: "user-1", Title: "Dune", Author: "Frank Herbert",
			Rating: 4, CreatedAt: now, UpdatedAt: now,
		}
	}

	assert.NoError(t, store.CheckBook(valid()))

	tests := map[string]func(*domain.Book){
		"missing owner":  func(b *domain.Book) { b.UserID = "" },
		"blank title":    func(b *domain.Book) { b.Title = "   " },
		"missing author": func(b *domain.Book) { b.Author = "" },
		"long title":     func(b *domain.Book) { b.Title = strings.Repeat("x", 201) },
		"rating zero":    func(b *domain.Book) { b.Rating = 0 },
		"rating six":     func(b *domain.Book) { b.Rating = 6 },
		"no updated at":  func(b *domain.Book) { b.UpdatedAt = time.Time{} },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			b := valid()
			mutate(b)
			assert.ErrorIs(t, store.CheckBook(b), store.ErrInvalidInput)
		})
	}
}
